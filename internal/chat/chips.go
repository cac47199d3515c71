package chat

// Chip is a canned quick reply offered under the chat.
type Chip struct {
	ID      string
	Label   string
	Message string
}

var baseChips = []Chip{
	{ID: "breathing", Label: "Do breathing", Message: "I feel stressed. Can we do a 4-7-8 breathing exercise?"},
	{ID: "tinyplan", Label: "Make a tiny plan", Message: "I'm overwhelmed. Help me pick a tiny first step."},
	{ID: "sleep", Label: "Improve sleep", Message: "I can't sleep. Any tips to wind down?"},
	{ID: "focus", Label: "Focus for 25m", Message: "I can't focus. Can you guide me with a 25/5 cycle?"},
	{ID: "history", Label: "Show history", Message: "Show my recent analysis history"},
}

// suggestion text from the backend -> chip id
var suggestionChips = map[string]string{
	"Do breathing":          "breathing",
	"Urgent vs important":   "tinyplan",
	"Make a mini plan":      "tinyplan",
	"Pick first topic":      "tinyplan",
	"Body scan":             "sleep",
	"Wind-down tips":        "sleep",
	"Start 10-minute timer": "focus",
	"25/5 Pomodoro":         "focus",
	"Show history":          "history",
	"Analyze my text":       "tinyplan",
}

// QuickReplies maps backend suggestions to chips, keeping first-seen order and
// dropping duplicates and unknown suggestions. With nothing recognized it
// falls back to breathing and tiny plan.
func QuickReplies(suggestions []string) []Chip {
	seen := make(map[string]bool)
	var ids []string
	for _, s := range suggestions {
		id, ok := suggestionChips[s]
		if !ok || seen[id] {
			continue
		}
		seen[id] = true
		ids = append(ids, id)
	}
	if len(ids) == 0 {
		ids = []string{"breathing", "tinyplan"}
	}

	chips := make([]Chip, 0, len(ids))
	for _, id := range ids {
		if c, ok := ChipByID(id); ok {
			chips = append(chips, c)
		}
	}
	return chips
}

// ChipByID looks up a canned chip.
func ChipByID(id string) (Chip, bool) {
	for _, c := range baseChips {
		if c.ID == id {
			return c, true
		}
	}
	return Chip{}, false
}
