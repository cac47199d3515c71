package prefs

import "fmt"

// Well-known keys.
const (
	KeyThemeMode     = "theme-mode"
	KeyAccent        = "accent-theme"
	sectionKeyPrefix = "section:"
)

// ThemeMode is the light/dark switch.
type ThemeMode string

const (
	ThemeLight ThemeMode = "light"
	ThemeDark  ThemeMode = "dark"
)

// DefaultAccent is the accent used when nothing is set.
const DefaultAccent = "blue"

// Preferences is a typed view over a Store. Read failures are treated as
// "unset", matching how the dashboard treats an unavailable local storage.
type Preferences struct {
	store Store
}

// New wraps store.
func New(store Store) *Preferences {
	return &Preferences{store: store}
}

// ThemeMode returns the persisted mode. Values other than light/dark count as unset.
func (p *Preferences) ThemeMode() (ThemeMode, bool) {
	v, ok := p.get(KeyThemeMode)
	if !ok {
		return "", false
	}
	switch ThemeMode(v) {
	case ThemeLight, ThemeDark:
		return ThemeMode(v), true
	}
	return "", false
}

// SetThemeMode persists mode.
func (p *Preferences) SetThemeMode(mode ThemeMode) error {
	if mode != ThemeLight && mode != ThemeDark {
		return fmt.Errorf("invalid theme mode %q", mode)
	}
	return p.store.Set(KeyThemeMode, string(mode))
}

// Accent returns the persisted accent name, if any.
func (p *Preferences) Accent() (string, bool) {
	v, ok := p.get(KeyAccent)
	if !ok || v == "" {
		return "", false
	}
	return v, true
}

// SetAccent persists accent.
func (p *Preferences) SetAccent(accent string) error {
	if accent == "" {
		accent = DefaultAccent
	}
	return p.store.Set(KeyAccent, accent)
}

// Section returns the persisted expand flag for key. Only "1" and "0" are recognized.
func (p *Preferences) Section(key string) (expanded bool, ok bool) {
	if key == "" {
		return false, false
	}
	v, present := p.get(SectionKey(key))
	if !present {
		return false, false
	}
	switch v {
	case "1":
		return true, true
	case "0":
		return false, true
	}
	return false, false
}

// SetSection persists the expand flag for key. Sections without a key are not persisted.
func (p *Preferences) SetSection(key string, expanded bool) error {
	if key == "" {
		return nil
	}
	v := "0"
	if expanded {
		v = "1"
	}
	return p.store.Set(SectionKey(key), v)
}

// SectionKey namespaces a section identifier.
func SectionKey(key string) string {
	return sectionKeyPrefix + key
}

func (p *Preferences) get(key string) (string, bool) {
	v, ok, err := p.store.Get(key)
	if err != nil {
		return "", false
	}
	return v, ok
}
