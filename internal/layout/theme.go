package layout

import (
	"context"
	"sync"
	"time"

	"github.com/muesli/termenv"
	"github.com/rs/zerolog"

	"sentiboard/internal/analysis"
	"sentiboard/internal/prefs"
)

// AccentToastTTL is how long the accent confirmation stays up.
const AccentToastTTL = 1800 * time.Millisecond

// SettingsSyncer mirrors preferences to the server.
type SettingsSyncer interface {
	SaveSettings(ctx context.Context, fields map[string]string, asJSON bool) error
}

// Notifier shows a transient message.
type Notifier interface {
	Toast(msg string, ttl time.Duration)
}

// AppearanceOptions wires an Appearance. All fields are optional.
type AppearanceOptions struct {
	// OSDark reports the terminal's dark-background signal. Defaults to termenv.
	OSDark   func() bool
	Page     *analysis.PageContext
	Syncer   SettingsSyncer
	Notifier Notifier
	Logger   zerolog.Logger
}

// Appearance is the light/dark mode and accent state.
type Appearance struct {
	mu     sync.Mutex
	prefs  *prefs.Preferences
	opts   AppearanceOptions
	mode   prefs.ThemeMode
	accent string

	pending sync.WaitGroup
}

// NewAppearance resolves mode and accent from the store, the terminal and the
// page context.
func NewAppearance(p *prefs.Preferences, opts AppearanceOptions) *Appearance {
	if opts.OSDark == nil {
		opts.OSDark = termenv.HasDarkBackground
	}
	a := &Appearance{prefs: p, opts: opts}
	a.mode = ResolveThemeMode(p, opts.OSDark)
	a.accent = a.loadAccent()
	return a
}

// ResolveThemeMode picks the persisted mode, else dark when the OS signals it, else light.
func ResolveThemeMode(p *prefs.Preferences, osDark func() bool) prefs.ThemeMode {
	if mode, ok := p.ThemeMode(); ok {
		return mode
	}
	if osDark != nil && osDark() {
		return prefs.ThemeDark
	}
	return prefs.ThemeLight
}

// ResolveAccent returns the local accent, else the authenticated server's, else
// blue. adopt is true when the server value differs from the local one and
// must replace it.
func ResolveAccent(local string, page *analysis.PageContext) (accent string, adopt bool) {
	server := ""
	if page != nil && page.Authenticated {
		server = page.ServerAccent
	}
	switch {
	case server != "" && server != local:
		return server, true
	case local != "":
		return local, false
	}
	return prefs.DefaultAccent, false
}

// loadAccent runs once at startup. Later local changes win for the rest of the session.
func (a *Appearance) loadAccent() string {
	local, _ := a.prefs.Accent()
	accent, adopt := ResolveAccent(local, a.opts.Page)
	if adopt {
		if err := a.prefs.SetAccent(accent); err != nil {
			a.opts.Logger.Warn().Err(err).Str("accent", accent).Msg("failed to persist server accent")
		}
	}
	return accent
}

// Mode returns the current theme mode.
func (a *Appearance) Mode() prefs.ThemeMode {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.mode
}

// Accent returns the current accent.
func (a *Appearance) Accent() string {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.accent
}

// Authenticated reports whether preference changes are mirrored to the server.
func (a *Appearance) Authenticated() bool {
	return a.opts.Page != nil && a.opts.Page.Authenticated
}

// ToggleMode flips light/dark and persists the result.
func (a *Appearance) ToggleMode() (prefs.ThemeMode, error) {
	a.mu.Lock()
	next := prefs.ThemeDark
	if a.mode == prefs.ThemeDark {
		next = prefs.ThemeLight
	}
	a.mu.Unlock()
	return next, a.SetMode(next)
}

// SetMode persists mode.
func (a *Appearance) SetMode(mode prefs.ThemeMode) error {
	if err := a.prefs.SetThemeMode(mode); err != nil {
		return err
	}
	a.mu.Lock()
	a.mode = mode
	a.mu.Unlock()
	return nil
}

// SetAccent persists accent locally, confirms it with a toast and, for an
// authenticated session, posts it to the server in the background. Sync
// failures only produce a toast.
func (a *Appearance) SetAccent(ctx context.Context, accent string) error {
	if accent == "" {
		accent = prefs.DefaultAccent
	}
	a.mu.Lock()
	a.accent = accent
	a.mu.Unlock()

	if err := a.prefs.SetAccent(accent); err != nil {
		return err
	}

	if a.Authenticated() && a.opts.Syncer != nil {
		a.pending.Add(1)
		go func() {
			defer a.pending.Done()
			err := a.opts.Syncer.SaveSettings(ctx, map[string]string{"accent_theme": accent}, false)
			if err != nil {
				a.opts.Logger.Warn().Err(err).Str("accent", accent).Msg("accent sync failed")
				a.toast("Could not save accent to your account", AccentToastTTL)
			}
		}()
	}

	a.toast("Accent theme: "+accent, AccentToastTTL)
	return nil
}

// AdoptAccent records an accent the server already knows about (for example
// after a successful settings save) without syncing it back.
func (a *Appearance) AdoptAccent(accent string) error {
	if accent == "" {
		return nil
	}
	a.mu.Lock()
	a.accent = accent
	a.mu.Unlock()
	return a.prefs.SetAccent(accent)
}

// WaitSync blocks until background accent syncs have finished.
func (a *Appearance) WaitSync() {
	a.pending.Wait()
}

func (a *Appearance) toast(msg string, ttl time.Duration) {
	if a.opts.Notifier != nil {
		a.opts.Notifier.Toast(msg, ttl)
	}
}
