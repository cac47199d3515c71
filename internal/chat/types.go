package chat

import (
	"time"

	"github.com/google/uuid"

	"sentiboard/internal/analysis"
)

// Speaker identifies who wrote a message
type Speaker int

const (
	User Speaker = iota
	Bot
)

func (s Speaker) String() string {
	if s == Bot {
		return "Bot"
	}
	return "You"
}

// Tones understood by the backend
const (
	ToneListening = "listening"
	ToneCoaching  = "coaching"
)

// Message is one entry of the chat log. The log is append-only.
type Message struct {
	ID        uuid.UUID
	Speaker   Speaker
	Text      string
	Scores    *analysis.Scores
	Tone      string
	Err       bool
	Timestamp time.Time
}

// State is where a round trip currently is.
type State int

const (
	Idle State = iota
	AwaitingSelfAnalysis
	AwaitingBotReply
	TypingSimulation
)

func (s State) String() string {
	switch s {
	case AwaitingSelfAnalysis:
		return "awaiting self-analysis"
	case AwaitingBotReply:
		return "awaiting bot reply"
	case TypingSimulation:
		return "typing"
	}
	return "idle"
}

// Round is a single user-message/bot-reply exchange.
type Round struct {
	ID    uuid.UUID
	Text  string
	State State
}
