package ui

import (
	"github.com/charmbracelet/lipgloss"

	"sentiboard/internal/prefs"
)

// Accents maps accent names to their base color. Unknown names fall back to blue.
var Accents = map[string]lipgloss.Color{
	"blue":   lipgloss.Color("#3B82F6"),
	"green":  lipgloss.Color("#10B981"),
	"violet": lipgloss.Color("#8B5CF6"),
	"rose":   lipgloss.Color("#F43F5E"),
	"amber":  lipgloss.Color("#F59E0B"),
	"teal":   lipgloss.Color("#14B8A6"),
}

// Styles is every style the display uses for one mode/accent pair.
type Styles struct {
	Title   lipgloss.Style
	Accent  lipgloss.Style
	Muted   lipgloss.Style
	Text    lipgloss.Style
	Pos     lipgloss.Style
	Neu     lipgloss.Style
	Neg     lipgloss.Style
	Info    lipgloss.Style
	Warning lipgloss.Style
	Error   lipgloss.Style
	Success lipgloss.Style
	Badge   lipgloss.Style
	Chip    lipgloss.Style
	Header  lipgloss.Style
	Toast   lipgloss.Style
}

type palette struct {
	text, muted, pos, neu, neg, warn, err lipgloss.Color
}

var (
	lightPalette = palette{
		text:  "#1F2937",
		muted: "#6B7280",
		pos:   "#15803D",
		neu:   "#6B7280",
		neg:   "#B91C1C",
		warn:  "#B45309",
		err:   "#B91C1C",
	}
	darkPalette = palette{
		text:  "#E5E7EB",
		muted: "#9CA3AF",
		pos:   "#4ADE80",
		neu:   "#9E9E9E",
		neg:   "#F87171",
		warn:  "#FBBF24",
		err:   "#F87171",
	}
)

// AccentColor resolves an accent name.
func AccentColor(name string) lipgloss.Color {
	if c, ok := Accents[name]; ok {
		return c
	}
	return Accents[prefs.DefaultAccent]
}

// NewStyles builds the style set for mode and accent on r.
func NewStyles(r *lipgloss.Renderer, mode prefs.ThemeMode, accent string) Styles {
	p := lightPalette
	if mode == prefs.ThemeDark {
		p = darkPalette
	}
	ac := AccentColor(accent)

	return Styles{
		Title:   r.NewStyle().Bold(true).Foreground(ac),
		Accent:  r.NewStyle().Foreground(ac),
		Muted:   r.NewStyle().Foreground(p.muted),
		Text:    r.NewStyle().Foreground(p.text),
		Pos:     r.NewStyle().Foreground(p.pos),
		Neu:     r.NewStyle().Foreground(p.neu),
		Neg:     r.NewStyle().Foreground(p.neg),
		Info:    r.NewStyle().Foreground(ac),
		Warning: r.NewStyle().Foreground(p.warn),
		Error:   r.NewStyle().Foreground(p.err),
		Success: r.NewStyle().Foreground(p.pos),
		Badge:   r.NewStyle().Bold(true).Foreground(ac),
		Chip:    r.NewStyle().Foreground(ac).Underline(true),
		Header:  r.NewStyle().Bold(true).Foreground(p.text),
		Toast:   r.NewStyle().Foreground(p.text).BorderStyle(lipgloss.NormalBorder()).BorderLeft(true).BorderForeground(ac).PaddingLeft(1),
	}
}

// LabelStyle picks the style for a sentiment label.
func (s Styles) LabelStyle(label string) lipgloss.Style {
	switch label {
	case "Positive":
		return s.Pos
	case "Negative":
		return s.Neg
	}
	return s.Neu
}
