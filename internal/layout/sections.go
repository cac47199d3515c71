package layout

import (
	"fmt"
	"sync"

	"sentiboard/internal/prefs"
)

// Measurer reports the natural height of a section's content in lines.
type Measurer interface {
	Measure(key string) int
}

// MeasureFunc adapts a function to Measurer.
type MeasureFunc func(key string) int

func (f MeasureFunc) Measure(key string) int { return f(key) }

// Section is one collapsible panel. Height is zero while collapsed.
type Section struct {
	Key      string
	Title    string
	Default  bool
	Expanded bool
	Height   int
}

// Sections keeps expand/collapse state for every registered panel and writes
// each transition through to the preference store.
type Sections struct {
	mu       sync.Mutex
	prefs    *prefs.Preferences
	measurer Measurer
	order    []string
	byKey    map[string]*Section
}

// NewSections creates an empty registry.
func NewSections(p *prefs.Preferences, m Measurer) *Sections {
	if m == nil {
		m = MeasureFunc(func(string) int { return 0 })
	}
	return &Sections{
		prefs:    p,
		measurer: m,
		byKey:    make(map[string]*Section),
	}
}

// Register adds a panel. Its initial state is the persisted flag when there
// is one, otherwise def. Registering a key twice re-reads the store.
func (s *Sections) Register(key, title string, def bool) Section {
	s.mu.Lock()
	defer s.mu.Unlock()

	expanded, ok := s.prefs.Section(key)
	if !ok {
		expanded = def
	}

	sec, exists := s.byKey[key]
	if !exists {
		sec = &Section{Key: key}
		s.byKey[key] = sec
		s.order = append(s.order, key)
	}
	sec.Title = title
	sec.Default = def
	sec.Expanded = expanded
	s.applyHeight(sec)
	return *sec
}

// Get returns a copy of the section.
func (s *Sections) Get(key string) (Section, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sec, ok := s.byKey[key]
	if !ok {
		return Section{}, false
	}
	return *sec, true
}

// All returns the sections in registration order.
func (s *Sections) All() []Section {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Section, 0, len(s.order))
	for _, k := range s.order {
		out = append(out, *s.byKey[k])
	}
	return out
}

// Toggle flips a section.
func (s *Sections) Toggle(key string) (Section, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sec, ok := s.byKey[key]
	if !ok {
		return Section{}, fmt.Errorf("unknown section %q", key)
	}
	err := s.transition(sec, !sec.Expanded)
	return *sec, err
}

// Set moves a section to the given state. Setting the current state still
// persists it.
func (s *Sections) Set(key string, expanded bool) (Section, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sec, ok := s.byKey[key]
	if !ok {
		return Section{}, fmt.Errorf("unknown section %q", key)
	}
	err := s.transition(sec, expanded)
	return *sec, err
}

// ExpandAll expands every section.
func (s *Sections) ExpandAll() error {
	return s.setAll(true)
}

// CollapseAll collapses every section.
func (s *Sections) CollapseAll() error {
	return s.setAll(false)
}

func (s *Sections) setAll(expanded bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	var firstErr error
	for _, k := range s.order {
		if err := s.transition(s.byKey[k], expanded); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

// Resize re-measures every expanded section. Expand state is untouched.
func (s *Sections) Resize() {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, k := range s.order {
		s.applyHeight(s.byKey[k])
	}
}

// Reflow re-measures one section after its content changed.
func (s *Sections) Reflow(key string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if sec, ok := s.byKey[key]; ok {
		s.applyHeight(sec)
	}
}

// transition applies the new state in memory first; a store failure is
// reported but does not undo it.
func (s *Sections) transition(sec *Section, expanded bool) error {
	sec.Expanded = expanded
	s.applyHeight(sec)
	if err := s.prefs.SetSection(sec.Key, expanded); err != nil {
		return fmt.Errorf("failed to persist section %s: %w", sec.Key, err)
	}
	return nil
}

func (s *Sections) applyHeight(sec *Section) {
	if !sec.Expanded {
		sec.Height = 0
		return
	}
	sec.Height = s.measurer.Measure(sec.Key)
}
