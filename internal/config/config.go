package config

import (
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// Defaults for the TalkToText backend and local state.
const (
	DefaultAPIBaseURL    = "http://127.0.0.1:8000"
	DefaultClientTimeout = 5 * time.Minute
)

// Config holds all configuration values.
type Config struct {
	// Backend
	APIBaseURL    string
	ClientTimeout time.Duration

	// Persisted session (token + user profile)
	SessionFile string

	// Logging
	LogFile     string
	LogLevel    slog.Level
	StderrLevel slog.Level
}

// Load reads configuration from environment variables.
func Load() Config {
	return Config{
		APIBaseURL:    strings.TrimRight(getEnv("TALKTOTEXT_API_BASE_URL", DefaultAPIBaseURL), "/"),
		ClientTimeout: parseDuration(getEnv("TALKTOTEXT_CLIENT_TIMEOUT", ""), DefaultClientTimeout),

		SessionFile: getEnv("TALKTOTEXT_SESSION_FILE", defaultStatePath("session.yaml")),

		LogFile:     getEnv("TALKTOTEXT_LOG_FILE", defaultStatePath("talktotext.log")),
		LogLevel:    parseLogLevel(getEnv("TALKTOTEXT_LOG_LEVEL", "INFO")),
		StderrLevel: parseLogLevel(getEnv("TALKTOTEXT_STDERR_LOG_LEVEL", "WARN")),
	}
}

func getEnv(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}

// defaultStatePath returns name inside the user config dir, falling back to
// the temp dir when no home is available.
func defaultStatePath(name string) string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return filepath.Join(os.TempDir(), "talktotext", name)
	}
	return filepath.Join(dir, "talktotext", name)
}

// parseDuration accepts Go durations ("90s") or plain seconds ("90").
func parseDuration(s string, def time.Duration) time.Duration {
	s = strings.TrimSpace(s)
	if s == "" {
		return def
	}
	if d, err := time.ParseDuration(s); err == nil && d > 0 {
		return d
	}
	if d, err := time.ParseDuration(s + "s"); err == nil && d > 0 {
		return d
	}
	return def
}

func parseLogLevel(s string) slog.Level {
	switch strings.ToUpper(s) {
	case "DEBUG":
		return slog.LevelDebug
	case "INFO":
		return slog.LevelInfo
	case "WARN", "WARNING":
		return slog.LevelWarn
	case "ERROR":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
