// Package logging configures the process-wide zerolog logger.
package logging

import (
	"io"
	"os"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

const (
	EnvLogLevel     = "PYSETUP_LOG_LEVEL"
	EnvLogTimestamp = "PYSETUP_LOG_TIMESTAMP"
	EnvLogNoColor   = "PYSETUP_LOG_NOCOLOR"
	EnvLogFile      = "PYSETUP_LOG_FILE"
)

type Profile int

const (
	ProfileRuntime Profile = iota
	ProfileTest
	// ProfileTUI keeps stderr clean for the alternate screen; diagnostics go
	// to PYSETUP_LOG_FILE or are discarded.
	ProfileTUI
)

type Config struct {
	Level     zerolog.Level
	Timestamp bool
	NoColor   bool
	File      string
}

var configureOnce sync.Once

func ConfigureRuntime() {
	Configure(ProfileRuntime)
}

func ConfigureTests() {
	Configure(ProfileTest)
}

func ConfigureTUI() {
	Configure(ProfileTUI)
}

func Configure(profile Profile) {
	configureOnce.Do(func() {
		cfg := defaultConfig(profile)
		applyEnvOverrides(&cfg)
		log.Logger = newLogger(cfg, profile)
	})
}

func defaultConfig(profile Profile) Config {
	switch profile {
	case ProfileTest:
		return Config{Level: zerolog.DebugLevel}
	case ProfileTUI:
		return Config{Level: zerolog.InfoLevel, Timestamp: true, NoColor: true}
	default:
		return Config{Level: zerolog.InfoLevel, Timestamp: true}
	}
}

func applyEnvOverrides(cfg *Config) {
	if lvl, ok := parseLevel(os.Getenv(EnvLogLevel)); ok {
		cfg.Level = lvl
	}
	if v, ok := parseBool(os.Getenv(EnvLogTimestamp)); ok {
		cfg.Timestamp = v
	}
	if v, ok := parseBool(os.Getenv(EnvLogNoColor)); ok {
		cfg.NoColor = v
	}
	if p := strings.TrimSpace(os.Getenv(EnvLogFile)); p != "" {
		cfg.File = p
	}
}

func newLogger(cfg Config, profile Profile) zerolog.Logger {
	out := output(cfg, profile)
	w := zerolog.ConsoleWriter{Out: out, NoColor: cfg.NoColor || out != os.Stderr, TimeFormat: time.TimeOnly}
	if !cfg.Timestamp {
		w.PartsExclude = []string{zerolog.TimestampFieldName}
	}
	l := zerolog.New(w).Level(cfg.Level)
	if cfg.Timestamp {
		l = l.With().Timestamp().Logger()
	}
	return l
}

func output(cfg Config, profile Profile) io.Writer {
	if cfg.File != "" {
		f, err := os.OpenFile(cfg.File, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err == nil {
			return f
		}
	}
	if profile == ProfileTUI {
		return io.Discard
	}
	return os.Stderr
}

func parseLevel(raw string) (zerolog.Level, bool) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "":
		return zerolog.InfoLevel, false
	case "trace":
		return zerolog.TraceLevel, true
	case "debug":
		return zerolog.DebugLevel, true
	case "info":
		return zerolog.InfoLevel, true
	case "warn", "warning":
		return zerolog.WarnLevel, true
	case "error":
		return zerolog.ErrorLevel, true
	case "disabled", "disable", "off", "none":
		return zerolog.Disabled, true
	default:
		return zerolog.InfoLevel, false
	}
}

func parseBool(raw string) (bool, bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return false, false
	}
	v, err := strconv.ParseBool(raw)
	if err != nil {
		return false, false
	}
	return v, true
}
