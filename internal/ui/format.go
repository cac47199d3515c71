package ui

import (
	"fmt"
	"math"
	"time"

	"github.com/mattn/go-runewidth"

	"sentiboard/internal/analysis"
)

const (
	// SnippetWidth is how much of a history snippet is shown before the ellipsis.
	SnippetWidth = 60
	// BarUnits is the total width the chat sentiment bar is split over.
	BarUnits = 120
	// MaxExtraKeywords and MaxKeywordChips bound the keyword lists of a result.
	MaxExtraKeywords = 8
	MaxKeywordChips  = 12
)

// FmtNum formats a score with two decimals. Non-finite values print as 0.00.
func FmtNum(v float64) string {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return "0.00"
	}
	return fmt.Sprintf("%.2f", v)
}

// Percent rounds a 0..1 score to a whole percentage.
func Percent(v float64) int {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	return int(math.Round(v * 100))
}

// BarWidths splits BarUnits across pos/neu/neg proportionally. Each score is
// clamped to [0,1]; negative takes whatever is left so the parts always add up.
func BarWidths(s analysis.Scores) (pos, neu, neg int) {
	p, n, g := clamp01(s.Pos), clamp01(s.Neu), clamp01(s.Neg)
	total := p + n + g
	if total == 0 {
		total = 1
	}
	pos = int(math.Round(p / total * BarUnits))
	neu = int(math.Round(n / total * BarUnits))
	neg = BarUnits - pos - neu
	if neg < 0 {
		neg = 0
	}
	return pos, neu, neg
}

func clamp01(v float64) float64 {
	if math.IsNaN(v) {
		return 0
	}
	return math.Max(0, math.Min(1, v))
}

// TruncateSnippet cuts s to SnippetWidth cells and appends an ellipsis when
// anything was cut.
func TruncateSnippet(s string) string {
	if runewidth.StringWidth(s) <= SnippetWidth {
		return s
	}
	return runewidth.Truncate(s, SnippetWidth, "") + "…"
}

// FormatTime renders a chat timestamp as HH:MM.
func FormatTime(t time.Time) string {
	if t.IsZero() {
		t = time.Now()
	}
	return t.Format("15:04")
}

// LabelOrDefault and EmojiOrDefault fill in what the backend left out.
func LabelOrDefault(l analysis.Label) analysis.Label {
	if l == "" {
		return analysis.Neutral
	}
	return l
}

func EmojiOrDefault(e string) string {
	if e == "" {
		return "😐"
	}
	return e
}

// CSVSummary is the status line after a batch analysis with an inline preview.
func CSVSummary(count int) string {
	return fmt.Sprintf("Analyzed %d rows (showing up to 50 in API response).", count)
}

func formatDuration(d time.Duration) string {
	if d < time.Second {
		return fmt.Sprintf("%dms", d.Milliseconds())
	}
	return fmt.Sprintf("%.1fs", d.Seconds())
}

func padRight(s string, width int) string {
	return runewidth.FillRight(runewidth.Truncate(s, width, "…"), width)
}
