// Package dashboard owns the session state and maps user commands onto the
// analysis backend, the chat session and the local view state.
package dashboard

import (
	"context"
	"io"
	"strings"
	"sync"

	"github.com/rs/zerolog"

	"sentiboard/internal/analysis"
	"sentiboard/internal/chat"
	"sentiboard/internal/config"
	"sentiboard/internal/dropzone"
	"sentiboard/internal/history"
	"sentiboard/internal/layout"
	"sentiboard/internal/prefs"
	"sentiboard/internal/ui"
)

// Backend is every endpoint the dashboard calls.
type Backend interface {
	AnalyzeText(ctx context.Context, text, model string) (*analysis.Result, error)
	AnalyzeFile(ctx context.Context, filename string, r io.Reader, model string) (*analysis.Result, error)
	AnalyzeCSV(ctx context.Context, filename string, data []byte, model string) (*analysis.Batch, error)
	DownloadCSV(ctx context.Context, filename string, data []byte, model string) ([]byte, error)
	Chat(ctx context.Context, message, tone string) (*analysis.ChatReply, error)
	History(ctx context.Context, limit int) ([]history.Record, error)
	SaveSettings(ctx context.Context, fields map[string]string, asJSON bool) error
	ExportPDF(ctx context.Context, text, model string) ([]byte, error)
}

// Section keys
const (
	SectionAnalyze = "analyze"
	SectionBatch   = "batch"
	SectionChat    = "chat"
	SectionHistory = "history"
)

// Options wires a Controller.
type Options struct {
	Config    *config.Config
	Backend   Backend
	Prefs     *prefs.Preferences
	Display   *ui.Display
	Page      *analysis.PageContext
	OSDark    func() bool
	Scheduler chat.Scheduler
	Logger    zerolog.Logger
}

// Controller is the single owner of dashboard state. Network calls run on
// their own goroutines; their results are applied under mu.
type Controller struct {
	cfg        *config.Config
	backend    Backend
	display    *ui.Display
	logger     zerolog.Logger
	session    *chat.Session
	table      *history.Table
	sections   *layout.Sections
	appearance *layout.Appearance
	seq        *Sequencer
	commands   map[string]command

	mu          sync.Mutex
	model       string
	tone        string
	lastText    string
	result      *analysis.Result
	selection   *dropzone.Selection
	csvData     []byte
	csvStatus   string
	canDownload bool

	// chatMu serializes chat output so each message is printed once, in log order.
	chatMu      sync.Mutex
	shownMsgs   int
	shownTyping int

	wg sync.WaitGroup
}

// New builds a controller and restores persisted view state.
func New(opts Options) *Controller {
	cfg := opts.Config
	if cfg == nil {
		cfg = config.NewConfig()
	}

	c := &Controller{
		cfg:     cfg,
		backend: opts.Backend,
		display: opts.Display,
		logger:  opts.Logger,
		table:   history.NewTable(),
		seq:     NewSequencer(),
		model:   cfg.Model,
		tone:    cfg.Tone,
	}

	c.session = chat.NewSession(opts.Backend, opts.Backend, chat.Options{
		Model:          cfg.Model,
		ReducedMotion:  cfg.ReducedMotion,
		SelfScoreGrace: cfg.SelfScoreGrace,
		Scheduler:      opts.Scheduler,
		Logger:         opts.Logger,
	})
	c.session.OnChange(c.onChatChange)

	c.sections = layout.NewSections(opts.Prefs, layout.MeasureFunc(c.measure))
	c.sections.Register(SectionAnalyze, "Analysis", true)
	c.sections.Register(SectionBatch, "Batch CSV", false)
	c.sections.Register(SectionChat, "Chat", true)
	c.sections.Register(SectionHistory, "History", false)

	c.appearance = layout.NewAppearance(opts.Prefs, layout.AppearanceOptions{
		OSDark:   opts.OSDark,
		Page:     opts.Page,
		Syncer:   opts.Backend,
		Notifier: opts.Display,
		Logger:   opts.Logger,
	})
	c.display.SetTheme(c.appearance.Mode(), c.appearance.Accent())

	c.commands = c.buildCommands()
	return c
}

// Start prints the banner and loads history, as a fresh page load does.
func (c *Controller) Start(ctx context.Context) {
	c.display.PrintWelcome(c.cfg.BackendOrigin, c.Model())
	c.display.Print(c.display.RenderChips(c.session.Chips()))
	c.refreshHistory(ctx)
}

// Wait blocks until all in-flight requests and chat rounds have finished.
func (c *Controller) Wait() {
	c.wg.Wait()
	c.session.Wait()
	c.appearance.WaitSync()
}

// Model is the model selector sent with analysis requests.
func (c *Controller) Model() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.model
}

// Tone is the chat tone.
func (c *Controller) Tone() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.tone
}

// Sections exposes the panel registry.
func (c *Controller) Sections() *layout.Sections {
	return c.sections
}

// Appearance exposes theme and accent state.
func (c *Controller) Appearance() *layout.Appearance {
	return c.appearance
}

// History exposes the history table.
func (c *Controller) History() *history.Table {
	return c.table
}

// Chat exposes the chat session.
func (c *Controller) Chat() *chat.Session {
	return c.session
}

// Result is the last rendered analysis result.
func (c *Controller) Result() *analysis.Result {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.result
}

// Resize applies a new terminal width and re-measures expanded panels.
func (c *Controller) Resize(width int) {
	if width > 0 && width != c.display.Width() {
		c.display.Resize(width)
		c.sections.Resize()
	}
}

// goRun runs fn as a tracked background request.
func (c *Controller) goRun(fn func()) {
	c.wg.Add(1)
	go func() {
		defer c.wg.Done()
		fn()
	}()
}

// onChatChange prints chat messages that have not been shown yet and a
// typing placeholder whenever another reply starts pending.
func (c *Controller) onChatChange() {
	c.chatMu.Lock()
	defer c.chatMu.Unlock()

	msgs := c.session.Messages()
	typing := c.session.Typing()
	if c.shownMsgs > len(msgs) {
		c.shownMsgs = len(msgs)
	}

	var b strings.Builder
	botReplied := false
	for _, m := range msgs[c.shownMsgs:] {
		b.WriteString(c.display.RenderMessage(m))
		if m.Speaker == chat.Bot && !m.Err {
			botReplied = true
		}
	}
	c.shownMsgs = len(msgs)
	if typing > c.shownTyping {
		b.WriteString(c.display.RenderTyping() + "\n")
	}
	c.shownTyping = typing
	if botReplied {
		b.WriteString(c.display.RenderChips(c.session.Chips()) + "\n")
	}

	if b.Len() > 0 {
		c.display.Print(b.String())
		c.sections.Reflow(SectionChat)
	}
}

// measure reports the natural height of a panel's body.
func (c *Controller) measure(key string) int {
	return ui.LineCount(c.sectionBody(key))
}

// sectionBody renders the current content of a panel.
func (c *Controller) sectionBody(key string) string {
	switch key {
	case SectionAnalyze:
		c.mu.Lock()
		res := c.result
		c.mu.Unlock()
		if res == nil {
			return ""
		}
		return c.display.RenderResult(res)
	case SectionBatch:
		c.mu.Lock()
		defer c.mu.Unlock()
		var parts []string
		if c.selection != nil {
			parts = append(parts, "Selected: "+c.selection.Label())
		}
		if c.csvStatus != "" {
			parts = append(parts, c.csvStatus)
		}
		return strings.Join(parts, "\n")
	case SectionChat:
		if c.session == nil {
			return ""
		}
		var b strings.Builder
		for _, m := range c.session.Messages() {
			b.WriteString(c.display.RenderMessage(m))
		}
		return b.String()
	case SectionHistory:
		return c.display.RenderHistory(c.table.View())
	}
	return ""
}

// RenderDashboard composes every panel, collapsed ones as title lines only.
func (c *Controller) RenderDashboard() string {
	var b strings.Builder
	for _, sec := range c.sections.All() {
		body := ""
		if sec.Expanded {
			body = c.sectionBody(sec.Key)
		}
		b.WriteString(c.display.RenderSection(sec, body))
		b.WriteString("\n")
	}
	return b.String()
}

// WatchInbox applies drops from the inbox watcher until the channel closes
// or ctx is done.
func (c *Controller) WatchInbox(ctx context.Context, events <-chan dropzone.Event) {
	c.goRun(func() {
		for {
			select {
			case <-ctx.Done():
				return
			case ev, ok := <-events:
				if !ok {
					return
				}
				if ev.Err != nil {
					c.display.PrintWarning(ev.Err.Error())
					continue
				}
				c.selectCSV(ev.Selection)
			}
		}
	})
}
