package ui

import (
	"fmt"
	"io"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"

	"sentiboard/internal/prefs"
)

// Options configures a Display.
type Options struct {
	Width       int
	Mode        prefs.ThemeMode
	Accent      string
	DownloadDir string
	// Markdown renders bot replies through glamour. Off for non-terminal output.
	Markdown bool
	ToastTTL time.Duration
	Now      func() time.Time
}

// Display renders dashboard state to a terminal. Every Print call composes
// its full output first and writes it with a single Write, so concurrent
// renders never interleave.
type Display struct {
	mu          sync.Mutex
	out         io.Writer
	renderer    *lipgloss.Renderer
	styles      Styles
	md          *glamour.TermRenderer
	markdown    bool
	mode        prefs.ThemeMode
	width       int
	downloadDir string
	toastTTL    time.Duration
	toasts      []Toast
	now         func() time.Time
}

// NewDisplay creates a display writing to out
func NewDisplay(out io.Writer, opts Options) *Display {
	if opts.Width <= 0 {
		opts.Width = 80
	}
	if opts.Mode == "" {
		opts.Mode = prefs.ThemeLight
	}
	if opts.DownloadDir == "" {
		opts.DownloadDir = "."
	}
	if opts.ToastTTL <= 0 {
		opts.ToastTTL = 3500 * time.Millisecond
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}

	r := lipgloss.NewRenderer(out)
	d := &Display{
		out:         out,
		renderer:    r,
		markdown:    opts.Markdown,
		mode:        opts.Mode,
		width:       opts.Width,
		downloadDir: opts.DownloadDir,
		toastTTL:    opts.ToastTTL,
		now:         opts.Now,
	}
	d.styles = NewStyles(r, opts.Mode, opts.Accent)
	d.md = newMarkdown(opts.Mode, opts.Width)
	return d
}

func newMarkdown(mode prefs.ThemeMode, width int) *glamour.TermRenderer {
	style := "light"
	if mode == prefs.ThemeDark {
		style = "dark"
	}
	wrap := width - 10
	if wrap < 20 {
		wrap = 20
	}
	renderer, err := glamour.NewTermRenderer(
		glamour.WithStandardStyle(style),
		glamour.WithWordWrap(wrap),
	)
	if err != nil {
		return nil
	}
	return renderer
}

// SetTheme rebuilds the styles for a new mode or accent.
func (d *Display) SetTheme(mode prefs.ThemeMode, accent string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.styles = NewStyles(d.renderer, mode, accent)
	if mode != d.mode {
		d.md = newMarkdown(mode, d.width)
	}
	d.mode = mode
}

// Resize records a new terminal width.
func (d *Display) Resize(width int) {
	if width <= 0 {
		return
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	if width != d.width {
		d.width = width
		d.md = newMarkdown(d.mode, width)
	}
}

// Width is the current render width.
func (d *Display) Width() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.width
}

// Styles returns the active style set.
func (d *Display) Styles() Styles {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.styles
}

// write emits one composed block.
func (d *Display) write(s string) {
	if !strings.HasSuffix(s, "\n") {
		s += "\n"
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	io.WriteString(d.out, s)
}

// Print writes an already composed block.
func (d *Display) Print(block string) {
	d.write(block)
}

// PrintWelcome displays the banner
func (d *Display) PrintWelcome(backend, model string) {
	st := d.Styles()
	var b strings.Builder
	b.WriteString(st.Title.Render("sentiboard · sentiment dashboard"))
	b.WriteString("\n")
	b.WriteString(st.Muted.Render(fmt.Sprintf("Backend: %s · Model: %s", backend, model)))
	b.WriteString("\n")
	b.WriteString(st.Muted.Render("Type a message to chat, /help for commands, /quit to exit"))
	b.WriteString("\n")
	d.write(b.String())
}

// PrintGoodbye displays goodbye message
func (d *Display) PrintGoodbye() {
	d.write(d.Styles().Accent.Render("Goodbye! 👋"))
}

// PrintInfo displays info message
func (d *Display) PrintInfo(msg string) {
	d.write(d.Styles().Info.Render("ℹ " + msg))
}

// PrintWarning displays warning message
func (d *Display) PrintWarning(msg string) {
	d.write(d.Styles().Warning.Render("⚠ " + msg))
}

// PrintError displays error message
func (d *Display) PrintError(err error) {
	d.write(d.Styles().Error.Render(fmt.Sprintf("✗ %v", err)))
}

// PrintSuccess displays success message
func (d *Display) PrintSuccess(msg string) {
	d.write(d.Styles().Success.Render("✓ " + msg))
}

// PrintSeparator prints a visual separator
func (d *Display) PrintSeparator() {
	w := d.Width()
	if w > 80 {
		w = 80
	}
	d.write(d.Styles().Muted.Render(strings.Repeat("─", w)))
}

// PrintElapsed reports how long an action took.
func (d *Display) PrintElapsed(action string, elapsed time.Duration) {
	d.write(d.Styles().Muted.Render(fmt.Sprintf("⏱ %s · %s", action, formatDuration(elapsed))))
}
