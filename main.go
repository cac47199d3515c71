package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	"sentiboard/internal/analysis"
	"sentiboard/internal/config"
	"sentiboard/internal/dashboard"
	"sentiboard/internal/dropzone"
	"sentiboard/internal/prefs"
	"sentiboard/internal/terminal"
	"sentiboard/internal/ui"
)

const (
	pageContextTimeout = 5 * time.Second
	inboxDebounce      = 300 * time.Millisecond
)

func main() {
	// Set the GetEnv function for config
	config.GetEnv = os.Getenv

	cfg, err := loadConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Configuration error: %v\n", err)
		os.Exit(1)
	}

	logger, closeLog := newLogger(cfg)
	defer closeLog()

	// Fall back to in-memory preferences when the database cannot be opened
	var store prefs.Store
	if sqlStore, err := prefs.OpenSQLite(cfg.PrefsPath); err != nil {
		logger.Warn().Err(err).Str("path", cfg.PrefsPath).Msg("preferences will not persist")
		store = prefs.NewMemoryStore()
	} else {
		defer sqlStore.Close()
		store = sqlStore
	}

	client := analysis.NewClient(cfg.BackendOrigin, cfg.RequestTimeout, logger)

	display := ui.NewDisplay(os.Stdout, ui.Options{
		Width:       terminal.Width(),
		DownloadDir: cfg.DownloadDir,
		Markdown:    terminal.IsTerminal(),
		ToastTTL:    cfg.ToastTTL,
	})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	page := fetchPageContext(ctx, client, display, logger)

	ctrl := dashboard.New(dashboard.Options{
		Config:  cfg,
		Backend: client,
		Prefs:   prefs.New(store),
		Display: display,
		Page:    page,
		Logger:  logger,
	})

	ctrl.Start(ctx)

	if cfg.InboxDir != "" {
		watcher, err := startInbox(ctx, ctrl, cfg.InboxDir, logger)
		if err != nil {
			display.PrintWarning(fmt.Sprintf("Drop folder disabled: %v", err))
		} else {
			defer watcher.Close()
			display.PrintInfo("Watching " + cfg.InboxDir + " for dropped .csv files")
		}
	}

	wd, _ := os.Getwd()
	input := terminal.NewInput(filepath.Join(filepath.Dir(cfg.PrefsPath), "input_history"), wd, ctrl.Commands())
	defer input.Close()

	// Setup graceful shutdown
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigChan
		display.PrintInfo("Shutting down gracefully...")
		cancel()
		input.Close()
		os.Exit(0)
	}()

	// Main loop
	for ctx.Err() == nil {
		ctrl.Resize(terminal.Width())

		line, err := input.ReadInput("› ")
		if errors.Is(err, terminal.ErrAborted) {
			continue
		}
		if err != nil {
			if !errors.Is(err, io.EOF) {
				logger.Error().Err(err).Msg("failed to read input")
			}
			break
		}

		if !ctrl.Dispatch(ctx, line) {
			break
		}
	}

	cancel()
	ctrl.Wait()
	display.PrintGoodbye()
}

// loadConfig layers defaults, the TOML file, the environment and flags, in
// that order.
func loadConfig() (*config.Config, error) {
	configPath := flag.String("config", config.DefaultPath(), "Path to the TOML config file")
	envFile := flag.String("env-file", ".env", "Optional .env file with SENTIBOARD_* overrides")
	backend := flag.String("backend", "", "Backend origin, e.g. http://127.0.0.1:5000")
	model := flag.String("model", "", "Analysis model")
	tone := flag.String("tone", "", "Chat tone (listening or coaching)")
	inbox := flag.String("inbox", "", "Folder to watch for dropped .csv files")
	downloads := flag.String("downloads", "", "Folder for downloaded reports")
	verbose := flag.Bool("verbose", false, "Log debug output to stderr")
	reducedMotion := flag.Bool("reduced-motion", false, "Reveal chat replies without a typing delay")
	flag.Parse()

	cfg := config.NewConfig()
	if err := cfg.LoadFile(*configPath); err != nil {
		return nil, err
	}
	if err := cfg.LoadEnv(*envFile); err != nil {
		return nil, err
	}

	if *backend != "" {
		cfg.BackendOrigin = *backend
	}
	if *model != "" {
		cfg.Model = *model
	}
	if *tone != "" {
		cfg.Tone = *tone
	}
	if *inbox != "" {
		cfg.InboxDir = *inbox
	}
	if *downloads != "" {
		cfg.DownloadDir = *downloads
	}
	if *verbose {
		cfg.Verbose = true
	}
	if *reducedMotion {
		cfg.ReducedMotion = true
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// newLogger writes JSON logs to the log file. Verbose mode logs to stderr
// at debug level instead.
func newLogger(cfg *config.Config) (zerolog.Logger, func()) {
	zerolog.TimeFieldFormat = time.RFC3339

	if cfg.Verbose {
		out := zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: "15:04:05"}
		return zerolog.New(out).Level(zerolog.DebugLevel).With().Timestamp().Logger(), func() {}
	}

	if cfg.LogPath == "" {
		return zerolog.Nop(), func() {}
	}
	if err := os.MkdirAll(filepath.Dir(cfg.LogPath), 0755); err != nil {
		return zerolog.Nop(), func() {}
	}
	f, err := os.OpenFile(cfg.LogPath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return zerolog.Nop(), func() {}
	}
	logger := zerolog.New(f).Level(zerolog.InfoLevel).With().Timestamp().Logger()
	return logger, func() { f.Close() }
}

// fetchPageContext reads the server accent and sign-in state. Failures leave
// the dashboard anonymous with local preferences.
func fetchPageContext(ctx context.Context, client *analysis.Client, display *ui.Display, logger zerolog.Logger) *analysis.PageContext {
	spinner := terminal.NewSpinner(os.Stdout)
	if terminal.IsTerminal() {
		spinner.Start("Connecting to " + client.BaseURL())
	}

	ctx, cancel := context.WithTimeout(ctx, pageContextTimeout)
	defer cancel()
	page, err := client.PageContext(ctx)
	spinner.Stop()

	if err != nil {
		logger.Warn().Err(err).Msg("page context unavailable")
		display.PrintWarning(fmt.Sprintf("Could not reach %s: %v", client.BaseURL(), err))
		return nil
	}
	return page
}

func startInbox(ctx context.Context, ctrl *dashboard.Controller, dir string, logger zerolog.Logger) (*dropzone.Watcher, error) {
	watcher, err := dropzone.NewWatcher(dir, inboxDebounce, logger)
	if err != nil {
		return nil, err
	}
	if err := watcher.Watch(); err != nil {
		watcher.Close()
		return nil, err
	}
	ctrl.WatchInbox(ctx, watcher.Events())
	return watcher, nil
}
