package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func withEnv(t *testing.T, env map[string]string) {
	t.Helper()
	prev := GetEnv
	GetEnv = func(key string) string { return env[key] }
	t.Cleanup(func() { GetEnv = prev })
}

func TestNewConfig_Defaults(t *testing.T) {
	withEnv(t, map[string]string{"HOME": "/home/test"})

	cfg := NewConfig()
	require.Equal(t, "http://127.0.0.1:5000", cfg.BackendOrigin)
	require.Equal(t, "vader", cfg.Model)
	require.Equal(t, ToneListening, cfg.Tone)
	require.Equal(t, 10, cfg.HistoryLimit)
	require.Equal(t, 3500*time.Millisecond, cfg.ToastTTL)
	require.Equal(t, "/home/test/.sentiboard/prefs.db", cfg.PrefsPath)
	require.NoError(t, cfg.Validate())
}

func TestValidate(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*Config)
	}{
		{"empty origin", func(c *Config) { c.BackendOrigin = "" }},
		{"non http origin", func(c *Config) { c.BackendOrigin = "ftp://example" }},
		{"empty model", func(c *Config) { c.Model = "" }},
		{"unknown tone", func(c *Config) { c.Tone = "supportive" }},
		{"zero history limit", func(c *Config) { c.HistoryLimit = 0 }},
		{"negative grace", func(c *Config) { c.SelfScoreGrace = -time.Second }},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := NewConfig()
			tc.mutate(cfg)
			require.Error(t, cfg.Validate())
		})
	}
}

func TestLoadFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")
	body := `
backend_origin = "http://analysis.local:8080"
model = "transformer"
tone = "coaching"
history_limit = 25
reduced_motion = true
request_timeout_ms = 1500
self_score_grace_ms = 0
`
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))

	cfg := NewConfig()
	require.NoError(t, cfg.LoadFile(path))
	require.Equal(t, "http://analysis.local:8080", cfg.BackendOrigin)
	require.Equal(t, "transformer", cfg.Model)
	require.Equal(t, ToneCoaching, cfg.Tone)
	require.Equal(t, 25, cfg.HistoryLimit)
	require.True(t, cfg.ReducedMotion)
	require.Equal(t, 1500*time.Millisecond, cfg.RequestTimeout)
	require.Equal(t, time.Duration(0), cfg.SelfScoreGrace)
	// untouched values keep their defaults
	require.Equal(t, 3500*time.Millisecond, cfg.ToastTTL)
}

func TestLoadFile_Missing(t *testing.T) {
	cfg := NewConfig()
	require.NoError(t, cfg.LoadFile(filepath.Join(t.TempDir(), "nope.toml")))
	require.Equal(t, "vader", cfg.Model)
}

func TestLoadFile_Invalid(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.toml")
	require.NoError(t, os.WriteFile(path, []byte("model = ["), 0o644))
	require.Error(t, NewConfig().LoadFile(path))
}

func TestLoadEnv_Overrides(t *testing.T) {
	withEnv(t, map[string]string{
		"BACKEND_ORIGIN":            "http://fallback:5000",
		"SENTIBOARD_MODEL":          "textblob",
		"SENTIBOARD_REDUCED_MOTION": "true",
	})

	cfg := NewConfig()
	require.NoError(t, cfg.LoadEnv(""))
	require.Equal(t, "http://fallback:5000", cfg.BackendOrigin)
	require.Equal(t, "textblob", cfg.Model)
	require.True(t, cfg.ReducedMotion)
}

func TestLoadEnv_PrimaryBackendWins(t *testing.T) {
	withEnv(t, map[string]string{
		"SENTIBOARD_BACKEND": "http://primary:5000",
		"BACKEND_ORIGIN":     "http://fallback:5000",
	})

	cfg := NewConfig()
	require.NoError(t, cfg.LoadEnv(""))
	require.Equal(t, "http://primary:5000", cfg.BackendOrigin)
}

func TestLoadEnv_BadBool(t *testing.T) {
	withEnv(t, map[string]string{"SENTIBOARD_REDUCED_MOTION": "sometimes"})
	require.Error(t, NewConfig().LoadEnv(""))
}

func TestLoadEnv_MissingDotEnvIsFine(t *testing.T) {
	withEnv(t, nil)
	require.NoError(t, NewConfig().LoadEnv(filepath.Join(t.TempDir(), ".env")))
}
