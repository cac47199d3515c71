package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"sentiboard/internal/analysis"
	"sentiboard/internal/chat"
	"sentiboard/internal/history"
	"sentiboard/internal/layout"
)

const meterWidth = 20

// RenderResult composes the summary, score bars, extras and keyword chips of
// an analysis result.
func (d *Display) RenderResult(res *analysis.Result) string {
	st := d.Styles()
	label := LabelOrDefault(res.Label)
	emoji := EmojiOrDefault(res.Emoji)
	s := res.Scores

	var b strings.Builder
	b.WriteString(st.LabelStyle(string(label)).Bold(true).Render(fmt.Sprintf("%s %s", label, emoji)))
	b.WriteString("\n")
	b.WriteString(st.Text.Render(fmt.Sprintf("Positive: %s | Neutral: %s | Negative: %s | Compound: %s",
		FmtNum(s.Pos), FmtNum(s.Neu), FmtNum(s.Neg), FmtNum(s.Compound))))
	b.WriteString("\n")

	b.WriteString(meter(st.Pos, "Positive", s.Pos))
	b.WriteString(meter(st.Neu, "Neutral ", s.Neu))
	b.WriteString(meter(st.Neg, "Negative", s.Neg))

	if res.Lang != "" {
		b.WriteString(st.Muted.Render("Language: ") + res.Lang + "\n")
	}
	if len(res.Keywords) > 0 {
		kw := res.Keywords
		if len(kw) > MaxExtraKeywords {
			kw = kw[:MaxExtraKeywords]
		}
		b.WriteString(st.Muted.Render("Keywords: ") + strings.Join(kw, ", ") + "\n")
	}
	if res.Label != "" {
		b.WriteString(st.Muted.Render("Classification: ") + strings.TrimSpace(string(res.Label)+" "+res.Emoji) + "\n")
	}
	if res.Meta != nil && res.Meta.Chars > 0 {
		b.WriteString(st.Muted.Render(fmt.Sprintf("Characters: %d", res.Meta.Chars)) + "\n")
	}
	if len(res.Keywords) > 0 {
		chips := res.Keywords
		if len(chips) > MaxKeywordChips {
			chips = chips[:MaxKeywordChips]
		}
		rendered := make([]string, len(chips))
		for i, k := range chips {
			rendered[i] = st.Chip.Render("[" + k + "]")
		}
		b.WriteString(strings.Join(rendered, " ") + "\n")
	}
	return b.String()
}

func meter(style lipgloss.Style, name string, v float64) string {
	pct := Percent(v)
	filled := pct * meterWidth / 100
	if filled < 0 {
		filled = 0
	}
	if filled > meterWidth {
		filled = meterWidth
	}
	bar := style.Render(strings.Repeat("█", filled)) + strings.Repeat("░", meterWidth-filled)
	return fmt.Sprintf("%s %s %3d%%\n", name, bar, pct)
}

// PrintResult renders res in one write.
func (d *Display) PrintResult(res *analysis.Result) {
	d.write(d.RenderResult(res))
}

// RenderMessage composes one chat line: speaker, text, tone badge, sentiment
// bar and time.
func (d *Display) RenderMessage(m chat.Message) string {
	st := d.Styles()

	var b strings.Builder
	speaker := st.Header.Render(m.Speaker.String() + ":")
	if m.Speaker == chat.Bot && d.markdown && !m.Err {
		b.WriteString(speaker + "\n" + d.renderMarkdown(m.Text))
	} else {
		text := m.Text
		if m.Err {
			text = st.Error.Render(text)
		}
		b.WriteString(speaker + " " + text)
	}
	if m.Tone != "" && m.Speaker == chat.Bot {
		b.WriteString(" " + st.Badge.Render("["+m.Tone+"]"))
	}
	b.WriteString("\n")
	if m.Scores != nil {
		b.WriteString(d.sentimentBar(*m.Scores) + "\n")
	}
	b.WriteString(st.Muted.Render(FormatTime(m.Timestamp)) + "\n")
	return b.String()
}

func (d *Display) renderMarkdown(text string) string {
	d.mu.Lock()
	md := d.md
	d.mu.Unlock()
	if md == nil {
		return text
	}
	out, err := md.Render(text)
	if err != nil {
		return text
	}
	return strings.TrimRight(out, "\n")
}

// sentimentBar draws the 120-unit pos/neu/neg split scaled to the bar cells.
func (d *Display) sentimentBar(s analysis.Scores) string {
	st := d.Styles()
	pos, neu, _ := BarWidths(s)
	cells := BarUnits / 5
	p := pos * cells / BarUnits
	n := neu * cells / BarUnits
	g := cells - p - n
	return st.Pos.Render(strings.Repeat("▆", p)) +
		st.Neu.Render(strings.Repeat("▆", n)) +
		st.Neg.Render(strings.Repeat("▆", g))
}

// RenderTyping is the placeholder shown while a reply is pending.
func (d *Display) RenderTyping() string {
	st := d.Styles()
	return st.Header.Render("Bot:") + " " + st.Muted.Render("typing…")
}

// PrintMessage renders one chat message.
func (d *Display) PrintMessage(m chat.Message) {
	d.write(d.RenderMessage(m))
}

// RenderChips lists quick replies with their number for selection.
func (d *Display) RenderChips(chips []chat.Chip) string {
	st := d.Styles()
	parts := make([]string, len(chips))
	for i, c := range chips {
		parts[i] = st.Chip.Render(fmt.Sprintf("%d) %s", i+1, c.Label))
	}
	return st.Muted.Render("Quick replies: ") + strings.Join(parts, "  ")
}

// RenderHistory composes the history table for a view.
func (d *Display) RenderHistory(v history.View) string {
	st := d.Styles()

	switch v.State {
	case history.NotLoaded:
		return st.Muted.Render("History not loaded yet. Use /history to fetch it.")
	case history.Empty:
		return st.Muted.Render("No history yet")
	}

	var b strings.Builder
	header := fmt.Sprintf("%s %s %s %s %s",
		padRight(sortHeader("Date", history.KeyCreatedAt, v.Sort), 20),
		padRight(sortHeader("Source", history.KeySource, v.Sort), 8),
		padRight(sortHeader("Label", history.KeyLabel, v.Sort), 10),
		padRight("Pos/Neg/Neu/Cmp", 23),
		"Snippet")
	b.WriteString(st.Header.Render(header) + "\n")

	for _, r := range v.Rows {
		scores := fmt.Sprintf("%s/%s/%s/%s", FmtNum(r.Pos), FmtNum(r.Neg), FmtNum(r.Neu), FmtNum(r.Compound))
		fmt.Fprintf(&b, "%s %s %s %s %s\n",
			padRight(r.CreatedAt, 20),
			padRight(r.Source, 8),
			st.LabelStyle(r.Label).Render(padRight(r.Label, 10)),
			padRight(scores, 23),
			TruncateSnippet(r.TextSnippet))
	}
	if v.Filter != "" {
		b.WriteString(st.Muted.Render(fmt.Sprintf("%d rows matching %q", len(v.Rows), v.Filter)) + "\n")
	}
	return b.String()
}

func sortHeader(title string, key history.Key, s history.Sort) string {
	if s.Key != key {
		return title
	}
	if s.Dir == history.Asc {
		return title + " ▴"
	}
	return title + " ▾"
}

// PrintHistory renders the table in one write.
func (d *Display) PrintHistory(v history.View) {
	d.write(d.RenderHistory(v))
}

// RenderSection frames a panel's body under its title. Collapsed panels
// show only the title line.
func (d *Display) RenderSection(sec layout.Section, body string) string {
	st := d.Styles()
	marker := "▸"
	if sec.Expanded {
		marker = "▾"
	}
	title := st.Title.Render(fmt.Sprintf("%s %s", marker, sec.Title)) + st.Muted.Render(" ("+sec.Key+")")
	if !sec.Expanded || body == "" {
		return title
	}
	return title + "\n" + strings.TrimRight(body, "\n")
}

// RenderSectionList summarizes all panels and their state.
func (d *Display) RenderSectionList(sections []layout.Section) string {
	st := d.Styles()
	var b strings.Builder
	for _, sec := range sections {
		state := "collapsed"
		if sec.Expanded {
			state = fmt.Sprintf("expanded, %d lines", sec.Height)
		}
		fmt.Fprintf(&b, "%s %s\n", st.Accent.Render(padRight(sec.Key, 10)), st.Muted.Render(sec.Title+" · "+state))
	}
	return b.String()
}

// LineCount is the rendered height of a block.
func LineCount(block string) int {
	if block == "" {
		return 0
	}
	return lipgloss.Height(strings.TrimRight(block, "\n"))
}
