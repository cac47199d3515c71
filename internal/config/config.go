package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"
)

// Config holds all application configuration
type Config struct {
	// Backend settings
	BackendOrigin  string        `toml:"backend_origin"`
	RequestTimeout time.Duration `toml:"-"`
	HistoryLimit   int           `toml:"history_limit"`

	// Analysis defaults
	Model string `toml:"model"`
	Tone  string `toml:"tone"`

	// Local state
	PrefsPath   string `toml:"prefs_path"`
	DownloadDir string `toml:"download_dir"`
	InboxDir    string `toml:"inbox_dir"`

	// Chat pacing
	ReducedMotion  bool          `toml:"reduced_motion"`
	SelfScoreGrace time.Duration `toml:"-"`

	// Notifications
	ToastTTL time.Duration `toml:"-"`

	// Diagnostics
	Verbose bool   `toml:"verbose"`
	LogPath string `toml:"log_path"`
}

// fileConfig mirrors Config for TOML decoding; durations are given in milliseconds.
type fileConfig struct {
	Config
	RequestTimeoutMs int  `toml:"request_timeout_ms"`
	SelfScoreGraceMs *int `toml:"self_score_grace_ms"`
	ToastTTLMs       int  `toml:"toast_ttl_ms"`
}

// Tones accepted by the chat endpoint's pacing logic.
const (
	ToneListening = "listening"
	ToneCoaching  = "coaching"
)

// NewConfig creates a new configuration with default values
func NewConfig() *Config {
	return &Config{
		BackendOrigin:  "http://127.0.0.1:5000",
		RequestTimeout: 60 * time.Second,
		HistoryLimit:   10,

		Model: "vader",
		Tone:  ToneListening,

		PrefsPath:   expandHome("~/.sentiboard/prefs.db"),
		DownloadDir: ".",
		InboxDir:    "",

		ReducedMotion:  false,
		SelfScoreGrace: 150 * time.Millisecond,

		ToastTTL: 3500 * time.Millisecond,

		Verbose: false,
		LogPath: expandHome("~/.sentiboard/sentiboard.log"),
	}
}

// DefaultPath is where LoadFile looks when no explicit path is given.
func DefaultPath() string {
	return expandHome("~/.sentiboard/config.toml")
}

// LoadFile overlays values from a TOML file. A missing file is not an error.
func (c *Config) LoadFile(path string) error {
	if path == "" {
		path = DefaultPath()
	}
	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		return nil
	}

	fc := fileConfig{Config: *c}
	if _, err := toml.DecodeFile(path, &fc); err != nil {
		return fmt.Errorf("failed to parse config file %s: %w", path, err)
	}

	*c = fc.Config
	if fc.RequestTimeoutMs > 0 {
		c.RequestTimeout = time.Duration(fc.RequestTimeoutMs) * time.Millisecond
	}
	if fc.SelfScoreGraceMs != nil {
		c.SelfScoreGrace = time.Duration(*fc.SelfScoreGraceMs) * time.Millisecond
	}
	if fc.ToastTTLMs > 0 {
		c.ToastTTL = time.Duration(fc.ToastTTLMs) * time.Millisecond
	}
	c.PrefsPath = expandHome(c.PrefsPath)
	c.LogPath = expandHome(c.LogPath)
	c.DownloadDir = expandHome(c.DownloadDir)
	c.InboxDir = expandHome(c.InboxDir)
	return nil
}

// LoadEnv reads an optional .env file into the process environment and then
// applies environment overrides. Variables already set in the environment win.
func (c *Config) LoadEnv(envFile string) error {
	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil && !errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("failed to load %s: %w", envFile, err)
		}
	}

	if v := GetEnv("SENTIBOARD_BACKEND"); v != "" {
		c.BackendOrigin = v
	} else if v := GetEnv("BACKEND_ORIGIN"); v != "" {
		c.BackendOrigin = v
	}
	if v := GetEnv("SENTIBOARD_MODEL"); v != "" {
		c.Model = v
	}
	if v := GetEnv("SENTIBOARD_TONE"); v != "" {
		c.Tone = v
	}
	if v := GetEnv("SENTIBOARD_REDUCED_MOTION"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("invalid SENTIBOARD_REDUCED_MOTION %q: %w", v, err)
		}
		c.ReducedMotion = b
	}
	return nil
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	if c.BackendOrigin == "" {
		return fmt.Errorf("backend origin cannot be empty")
	}
	if !strings.HasPrefix(c.BackendOrigin, "http://") && !strings.HasPrefix(c.BackendOrigin, "https://") {
		return fmt.Errorf("backend origin must be an http(s) URL, got %q", c.BackendOrigin)
	}
	if c.Model == "" {
		return fmt.Errorf("model cannot be empty")
	}
	if c.Tone != ToneListening && c.Tone != ToneCoaching {
		return fmt.Errorf("tone must be %q or %q", ToneListening, ToneCoaching)
	}
	if c.HistoryLimit < 1 {
		return fmt.Errorf("history limit must be at least 1")
	}
	if c.RequestTimeout <= 0 {
		return fmt.Errorf("request timeout must be positive")
	}
	if c.SelfScoreGrace < 0 {
		return fmt.Errorf("self score grace cannot be negative")
	}
	if c.PrefsPath == "" {
		return fmt.Errorf("prefs path cannot be empty")
	}
	return nil
}

// expandHome expands the ~ in file paths to the user's home directory
func expandHome(path string) string {
	if len(path) > 0 && path[0] == '~' {
		homeDir := getHomeDir()
		return homeDir + path[1:]
	}
	return path
}

// getHomeDir returns the user's home directory
func getHomeDir() string {
	if home := GetEnv("HOME"); home != "" {
		return home
	}
	// Fallback for Windows
	if home := GetEnv("USERPROFILE"); home != "" {
		return home
	}
	return "."
}

// GetEnv is a wrapper around os.Getenv for easier testing
var GetEnv = func(key string) string {
	// Will be replaced with os.Getenv in main
	return ""
}
