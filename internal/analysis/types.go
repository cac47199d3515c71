package analysis

import (
	"encoding/json"

	"sentiboard/internal/history"
)

// Label is the backend's classification.
type Label string

const (
	Positive Label = "Positive"
	Neutral  Label = "Neutral"
	Negative Label = "Negative"
)

// DefaultModel is sent when the caller does not pick one.
const DefaultModel = "vader"

// Scores are the independent sentiment scores. They need not sum to one.
type Scores struct {
	Pos      float64 `json:"pos"`
	Neu      float64 `json:"neu"`
	Neg      float64 `json:"neg"`
	Compound float64 `json:"compound"`
}

// Meta is extra information some endpoints attach.
type Meta struct {
	Chars int `json:"chars"`
}

// Result is a normalized analysis response. A missing scores object decodes to all zeros.
type Result struct {
	Label        Label    `json:"label"`
	Emoji        string   `json:"emoji"`
	Scores       Scores   `json:"scores"`
	Keywords     []string `json:"keywords,omitempty"`
	Lang         string   `json:"lang,omitempty"`
	WordcloudPNG string   `json:"wordcloud_png_b64,omitempty"`
	Meta         *Meta    `json:"meta,omitempty"`
}

// CSVPreview is the inline JSON form of a batch analysis.
type CSVPreview struct {
	Count int               `json:"count"`
	Items []json.RawMessage `json:"items"`
}

// Batch is the outcome of a CSV analysis: exactly one of Preview or CSV is set.
type Batch struct {
	Preview *CSVPreview
	CSV     []byte
}

// Sentiment is the bot's view of its own reply.
type Sentiment struct {
	Emoji  string  `json:"emoji"`
	Scores *Scores `json:"scores,omitempty"`
}

// ChatReply is the /chat response.
type ChatReply struct {
	Reply       string    `json:"reply"`
	Tone        string    `json:"tone"`
	Sentiment   Sentiment `json:"sentiment"`
	Suggestions []string  `json:"suggestions,omitempty"`
}

// HistoryResponse is the /history response envelope.
type HistoryResponse struct {
	Items []history.Record `json:"items"`
}

// PageContext is what the server renders into the dashboard page root.
type PageContext struct {
	ServerAccent  string
	Authenticated bool
}

type analyzeRequest struct {
	Text  string `json:"text"`
	Model string `json:"model"`
}

type chatRequest struct {
	Message string `json:"message"`
	Tone    string `json:"tone"`
}
