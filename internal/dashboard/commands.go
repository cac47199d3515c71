package dashboard

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"

	"sentiboard/internal/analysis"
	"sentiboard/internal/chat"
	"sentiboard/internal/dropzone"
	"sentiboard/internal/history"
	"sentiboard/internal/prefs"
	"sentiboard/internal/ui"
)

type command struct {
	usage string
	help  string
	run   func(ctx context.Context, args string) error
}

// errQuit ends the REPL.
var errQuit = errors.New("quit")

// errUsage asks the dispatcher to print the command's usage line.
var errUsage = errors.New("usage")

func (c *Controller) buildCommands() map[string]command {
	return map[string]command{
		"/help":         {"/help", "Show commands", c.cmdHelp},
		"/analyze":      {"/analyze <text>", "Analyze a piece of text", c.cmdAnalyze},
		"/file":         {"/file <path.txt>", "Analyze a text file", c.cmdFile},
		"/csv":          {"/csv [path.csv]", "Select (optional) and analyze a CSV batch", c.cmdCSV},
		"/download":     {"/download", "Download the full CSV result", c.cmdDownload},
		"/pdf":          {"/pdf [text]", "Export a PDF report", c.cmdPDF},
		"/wordcloud":    {"/wordcloud", "Save the last result's word cloud", c.cmdWordcloud},
		"/history":      {"/history", "Refresh the analysis history", c.cmdHistory},
		"/search":       {"/search [term]", "Filter history by label or source", c.cmdSearch},
		"/sort":         {"/sort <column>", "Sort history (again to reverse)", c.cmdSort},
		"/show":         {"/show", "Render all panels", c.cmdShow},
		"/sections":     {"/sections", "List panels and their state", c.cmdSections},
		"/toggle":       {"/toggle <panel>", "Expand or collapse a panel", c.cmdToggle},
		"/expand-all":   {"/expand-all", "Expand every panel", c.cmdExpandAll},
		"/collapse-all": {"/collapse-all", "Collapse every panel", c.cmdCollapseAll},
		"/theme":        {"/theme [light|dark]", "Toggle or set the theme", c.cmdTheme},
		"/accent":       {"/accent <name>", "Set the accent color", c.cmdAccent},
		"/settings":     {"/settings key=value ...", "Save account settings", c.cmdSettings},
		"/model":        {"/model [name]", "Show or set the analysis model", c.cmdModel},
		"/tone":         {"/tone [listening|coaching]", "Show or set the chat tone", c.cmdTone},
		"/chat":         {"/chat <message>", "Send a chat message", c.cmdChat},
		"/chip":         {"/chip <n>", "Send a quick reply", c.cmdChip},
		"/quit":         {"/quit", "Exit", c.cmdQuit},
		"/exit":         {"/exit", "Exit", c.cmdQuit},
	}
}

// Commands lists command names for completion.
func (c *Controller) Commands() []string {
	names := make([]string, 0, len(c.commands))
	for name := range c.commands {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Dispatch handles one input line. Plain text is a chat message. It reports
// false once the user asked to quit.
func (c *Controller) Dispatch(ctx context.Context, line string) bool {
	line = strings.TrimSpace(line)
	if line == "" {
		return true
	}
	if !strings.HasPrefix(line, "/") {
		c.sendChat(ctx, line)
		return true
	}

	name, args, _ := strings.Cut(line, " ")
	cmd, ok := c.commands[strings.ToLower(name)]
	if !ok {
		c.display.PrintWarning(fmt.Sprintf("Unknown command %s (try /help)", name))
		return true
	}

	err := cmd.run(ctx, strings.TrimSpace(args))
	switch {
	case err == nil:
	case errors.Is(err, errQuit):
		return false
	case errors.Is(err, errUsage):
		c.display.PrintInfo("Usage: " + cmd.usage)
	default:
		c.display.PrintError(err)
	}
	return true
}

func (c *Controller) cmdHelp(ctx context.Context, args string) error {
	var b strings.Builder
	for _, name := range c.Commands() {
		cmd := c.commands[name]
		fmt.Fprintf(&b, "  %-28s %s\n", cmd.usage, cmd.help)
	}
	b.WriteString("  Anything else is sent to the chat.\n")
	c.display.Print(b.String())
	return nil
}

func (c *Controller) cmdQuit(ctx context.Context, args string) error {
	return errQuit
}

// --- analysis ---

func (c *Controller) cmdAnalyze(ctx context.Context, args string) error {
	if args == "" {
		return errUsage
	}
	c.mu.Lock()
	c.lastText = args
	model := c.model
	c.mu.Unlock()

	ticket := c.seq.Next(ActionAnalyze)
	c.goRun(func() {
		start := time.Now()
		res, err := c.backend.AnalyzeText(ctx, args, model)
		c.applyResult(ticket, res, err, time.Since(start))
	})
	return nil
}

func (c *Controller) cmdFile(ctx context.Context, args string) error {
	if args == "" {
		return errors.New("Please select a .txt file first")
	}
	f, err := os.Open(args)
	if err != nil {
		return fmt.Errorf("failed to open %s: %w", args, err)
	}
	model := c.Model()

	ticket := c.seq.Next(ActionAnalyze)
	c.goRun(func() {
		defer f.Close()
		start := time.Now()
		res, err := c.backend.AnalyzeFile(ctx, filepath.Base(args), f, model)
		c.applyResult(ticket, res, err, time.Since(start))
	})
	return nil
}

// applyResult renders a text or file analysis unless a newer one was started.
func (c *Controller) applyResult(ticket uint64, res *analysis.Result, err error, elapsed time.Duration) {
	if !c.seq.Current(ActionAnalyze, ticket) {
		c.logger.Debug().Uint64("ticket", ticket).Msg("dropping superseded analysis")
		return
	}
	if err != nil {
		c.logger.Info().Err(err).Str("kind", analysis.Kind(err).String()).Msg("analysis failed")
		c.display.PrintError(err)
		return
	}

	c.mu.Lock()
	c.result = res
	c.mu.Unlock()

	c.display.PrintResult(res)
	c.display.PrintElapsed("analysis", elapsed)
	c.sections.Reflow(SectionAnalyze)
}

func (c *Controller) cmdWordcloud(ctx context.Context, args string) error {
	res := c.Result()
	if res == nil || res.WordcloudPNG == "" {
		return errors.New("No word cloud available for the last result")
	}
	path, err := c.display.SaveWordcloud(res.WordcloudPNG)
	if err != nil {
		return err
	}
	c.display.PrintSuccess("Word cloud saved to " + path)
	return nil
}

func (c *Controller) cmdPDF(ctx context.Context, args string) error {
	text := args
	c.mu.Lock()
	if text == "" {
		text = c.lastText
	}
	model := c.model
	c.mu.Unlock()
	if strings.TrimSpace(text) == "" {
		return errors.New("Enter text first")
	}

	ticket := c.seq.Next(ActionPDF)
	c.goRun(func() {
		data, err := c.backend.ExportPDF(ctx, text, model)
		if !c.seq.Current(ActionPDF, ticket) {
			return
		}
		if err != nil {
			c.display.PrintError(fmt.Errorf("Failed to export PDF: %w", err))
			return
		}
		path, err := c.display.SaveDownload(ui.PDFFileName, data)
		if err != nil {
			c.display.PrintError(err)
			return
		}
		c.display.PrintSuccess("PDF saved to " + path)
	})
	return nil
}

// --- batch ---

func (c *Controller) selectCSV(sel dropzone.Selection) {
	c.mu.Lock()
	c.selection = &sel
	c.csvData = nil
	c.canDownload = false
	c.csvStatus = ""
	c.mu.Unlock()

	c.display.PrintInfo("Selected " + sel.Label())
	c.sections.Reflow(SectionBatch)
}

func (c *Controller) cmdCSV(ctx context.Context, args string) error {
	if args != "" {
		sel, err := dropzone.Select(args)
		if err != nil {
			return err
		}
		c.selectCSV(sel)
	}

	c.mu.Lock()
	sel := c.selection
	model := c.model
	c.canDownload = false
	c.mu.Unlock()
	if sel == nil {
		return errors.New("Please select a .csv file first")
	}

	data, err := os.ReadFile(sel.Path)
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", sel.Name, err)
	}
	c.setCSVStatus("Uploading and analyzing...")

	ticket := c.seq.Next(ActionBatch)
	c.goRun(func() {
		batch, err := c.backend.AnalyzeCSV(ctx, sel.Name, data, model)
		if !c.seq.Current(ActionBatch, ticket) {
			c.logger.Debug().Uint64("ticket", ticket).Msg("dropping superseded batch")
			return
		}
		if err != nil {
			c.setCSVStatus(err.Error())
			c.display.PrintError(err)
			return
		}

		if batch.Preview != nil {
			c.mu.Lock()
			c.csvData = data
			c.canDownload = true
			c.mu.Unlock()
			status := ui.CSVSummary(batch.Preview.Count)
			c.setCSVStatus(status)
			c.display.PrintSuccess(status + " Use /download for the full CSV.")
			return
		}

		path, err := c.display.SaveDownload(ui.CSVFileName, batch.CSV)
		if err != nil {
			c.display.PrintError(err)
			return
		}
		c.setCSVStatus("CSV downloaded.")
		c.display.PrintSuccess("CSV downloaded to " + path)
	})
	return nil
}

func (c *Controller) cmdDownload(ctx context.Context, args string) error {
	c.mu.Lock()
	sel, data, ok, model := c.selection, c.csvData, c.canDownload, c.model
	c.mu.Unlock()
	if !ok || sel == nil {
		return errors.New("Nothing to download yet; run /csv first")
	}

	c.goRun(func() {
		out, err := c.backend.DownloadCSV(ctx, sel.Name, data, model)
		if err != nil {
			c.display.PrintError(err)
			return
		}
		path, err := c.display.SaveDownload(ui.CSVFileName, out)
		if err != nil {
			c.display.PrintError(err)
			return
		}
		c.display.PrintSuccess("CSV downloaded to " + path)
	})
	return nil
}

func (c *Controller) setCSVStatus(status string) {
	c.mu.Lock()
	c.csvStatus = status
	c.mu.Unlock()
	c.sections.Reflow(SectionBatch)
}

// --- history ---

func (c *Controller) cmdHistory(ctx context.Context, args string) error {
	c.refreshHistory(ctx)
	return nil
}

// refreshHistory replaces the snapshot. A failed fetch leaves an empty,
// loaded table behind and reports the error.
func (c *Controller) refreshHistory(ctx context.Context) {
	ticket := c.seq.Next(ActionHistory)
	c.goRun(func() {
		rows, err := c.backend.History(ctx, c.cfg.HistoryLimit)
		if !c.seq.Current(ActionHistory, ticket) {
			return
		}
		if err != nil {
			c.logger.Info().Err(err).Msg("history fetch failed")
			rows = nil
		}
		c.table.SetSnapshot(rows)
		c.sections.Reflow(SectionHistory)

		if err != nil {
			c.display.PrintError(err)
		}
		c.display.PrintHistory(c.table.View())
	})
}

func (c *Controller) cmdSearch(ctx context.Context, args string) error {
	c.table.SetFilter(args)
	c.sections.Reflow(SectionHistory)
	c.display.PrintHistory(c.table.View())
	return nil
}

func (c *Controller) cmdSort(ctx context.Context, args string) error {
	if args == "" {
		return errUsage
	}
	key := history.Key(strings.ToLower(args))
	if _, err := c.table.ToggleSort(key); err != nil {
		return err
	}
	c.display.PrintHistory(c.table.View())
	return nil
}

// --- layout ---

func (c *Controller) cmdShow(ctx context.Context, args string) error {
	c.display.Print(c.RenderDashboard())
	return nil
}

func (c *Controller) cmdSections(ctx context.Context, args string) error {
	c.display.Print(c.display.RenderSectionList(c.sections.All()))
	return nil
}

func (c *Controller) cmdToggle(ctx context.Context, args string) error {
	if args == "" {
		return errUsage
	}
	sec, err := c.sections.Toggle(args)
	if err != nil {
		return err
	}
	body := ""
	if sec.Expanded {
		body = c.sectionBody(sec.Key)
	}
	c.display.Print(c.display.RenderSection(sec, body))
	return nil
}

func (c *Controller) cmdExpandAll(ctx context.Context, args string) error {
	if err := c.sections.ExpandAll(); err != nil {
		return err
	}
	return c.cmdShow(ctx, args)
}

func (c *Controller) cmdCollapseAll(ctx context.Context, args string) error {
	if err := c.sections.CollapseAll(); err != nil {
		return err
	}
	return c.cmdShow(ctx, args)
}

func (c *Controller) cmdTheme(ctx context.Context, args string) error {
	var err error
	mode := prefs.ThemeMode(strings.ToLower(args))
	switch mode {
	case "":
		mode, err = c.appearance.ToggleMode()
	case prefs.ThemeLight, prefs.ThemeDark:
		err = c.appearance.SetMode(mode)
	default:
		return errUsage
	}
	if err != nil {
		return err
	}
	c.display.SetTheme(mode, c.appearance.Accent())
	c.display.PrintSuccess("Theme: " + string(mode))
	return nil
}

func (c *Controller) cmdAccent(ctx context.Context, args string) error {
	if args == "" {
		c.display.PrintInfo("Accent: " + c.appearance.Accent())
		return nil
	}
	accent := strings.ToLower(args)
	if _, ok := ui.Accents[accent]; !ok {
		return fmt.Errorf("unknown accent %q (try %s)", accent, strings.Join(accentNames(), ", "))
	}
	if err := c.appearance.SetAccent(ctx, accent); err != nil {
		return err
	}
	c.display.SetTheme(c.appearance.Mode(), accent)
	return nil
}

func accentNames() []string {
	names := make([]string, 0, len(ui.Accents))
	for name := range ui.Accents {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// cmdSettings posts key=value pairs as JSON. On success an accent_theme value
// is mirrored locally.
func (c *Controller) cmdSettings(ctx context.Context, args string) error {
	fields := map[string]string{}
	for _, pair := range strings.Fields(args) {
		k, v, ok := strings.Cut(pair, "=")
		if !ok || k == "" {
			return errUsage
		}
		fields[k] = v
	}
	if len(fields) == 0 {
		return errUsage
	}

	c.goRun(func() {
		err := c.backend.SaveSettings(ctx, fields, true)
		switch analysis.Kind(err) {
		case analysis.KindNone:
			if accent, ok := fields["accent_theme"]; ok {
				if err := c.appearance.AdoptAccent(accent); err != nil {
					c.logger.Warn().Err(err).Msg("failed to persist accent locally")
				}
				c.display.SetTheme(c.appearance.Mode(), c.appearance.Accent())
			}
			c.display.Toast("Settings saved", 0)
		case analysis.KindNetwork:
			c.logger.Info().Err(err).Msg("settings save failed")
			c.display.Toast("Network error", 0)
		default:
			c.logger.Info().Err(err).Msg("settings save failed")
			c.display.Toast("Save failed", 0)
		}
	})
	return nil
}

func (c *Controller) cmdModel(ctx context.Context, args string) error {
	if args == "" {
		c.display.PrintInfo("Model: " + c.Model())
		return nil
	}
	c.mu.Lock()
	c.model = args
	c.mu.Unlock()
	c.display.PrintSuccess("Model: " + args)
	return nil
}

func (c *Controller) cmdTone(ctx context.Context, args string) error {
	switch args {
	case "":
		c.display.PrintInfo("Tone: " + c.Tone())
		return nil
	case chat.ToneListening, chat.ToneCoaching:
	default:
		return errUsage
	}
	c.mu.Lock()
	c.tone = args
	c.mu.Unlock()
	c.display.PrintSuccess("Tone: " + args)
	return nil
}

// --- chat ---

func (c *Controller) cmdChat(ctx context.Context, args string) error {
	if args == "" {
		return errUsage
	}
	c.sendChat(ctx, args)
	return nil
}

func (c *Controller) cmdChip(ctx context.Context, args string) error {
	n, err := strconv.Atoi(args)
	if err != nil {
		return errUsage
	}
	chips := c.session.Chips()
	if n < 1 || n > len(chips) {
		return fmt.Errorf("no quick reply %d", n)
	}
	c.sendChat(ctx, chips[n-1].Message)
	return nil
}

func (c *Controller) sendChat(ctx context.Context, text string) {
	c.session.Send(ctx, text, c.Tone())
}
