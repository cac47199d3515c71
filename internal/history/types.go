package history

// Record is one row of the analysis history as returned by the backend.
type Record struct {
	CreatedAt   string  `json:"created_at"`
	Source      string  `json:"source"`
	Label       string  `json:"label"`
	Pos         float64 `json:"pos"`
	Neu         float64 `json:"neu"`
	Neg         float64 `json:"neg"`
	Compound    float64 `json:"compound"`
	TextSnippet string  `json:"text_snippet"`
}

// Key names a sortable column. Values match the backend's JSON field names.
type Key string

const (
	KeyCreatedAt   Key = "created_at"
	KeySource      Key = "source"
	KeyLabel       Key = "label"
	KeyPos         Key = "pos"
	KeyNeu         Key = "neu"
	KeyNeg         Key = "neg"
	KeyCompound    Key = "compound"
	KeyTextSnippet Key = "text_snippet"
)

// Keys lists every sortable column in display order.
var Keys = []Key{KeyCreatedAt, KeySource, KeyLabel, KeyPos, KeyNeu, KeyNeg, KeyCompound, KeyTextSnippet}

// Valid reports whether k is a known column.
func (k Key) Valid() bool {
	for _, known := range Keys {
		if k == known {
			return true
		}
	}
	return false
}

// Direction is the sort direction.
type Direction string

const (
	Asc  Direction = "asc"
	Desc Direction = "desc"
)

// Sort is the active column and direction.
type Sort struct {
	Key Key
	Dir Direction
}

// ViewState distinguishes "never loaded" from "loaded but nothing matches".
type ViewState int

const (
	NotLoaded ViewState = iota
	Empty
	Rows
)

func (s ViewState) String() string {
	switch s {
	case NotLoaded:
		return "not loaded"
	case Empty:
		return "no data"
	default:
		return "rows"
	}
}

// View is the derived, filtered and sorted table.
type View struct {
	State  ViewState
	Rows   []Record
	Filter string
	Sort   Sort
}
