package dashboard

import "sync"

// Action is a kind of request where a newer request makes older ones moot.
type Action string

const (
	ActionAnalyze Action = "analyze"
	ActionBatch   Action = "batch"
	ActionHistory Action = "history"
	ActionPDF     Action = "pdf"
)

// Sequencer hands out increasing tickets per action. Only the holder of the
// latest ticket may render its result.
type Sequencer struct {
	mu      sync.Mutex
	current map[Action]uint64
}

// NewSequencer creates an empty sequencer.
func NewSequencer() *Sequencer {
	return &Sequencer{current: make(map[Action]uint64)}
}

// Next issues a ticket for a, superseding every earlier one.
func (s *Sequencer) Next(a Action) uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.current[a]++
	return s.current[a]
}

// Current reports whether ticket is still the latest for a.
func (s *Sequencer) Current(a Action, ticket uint64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.current[a] == ticket
}
