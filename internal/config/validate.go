package config

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/go-ozzo/ozzo-validation/v4/is"
	"github.com/joho/godotenv"
)

// Log levels accepted by log_level.
const (
	LevelDebug = "debug"
	LevelInfo  = "info"
	LevelWarn  = "warn"
	LevelError = "error"
)

// Validate validates the configuration.
func (c *Config) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.ClientID, validation.Required, is.Digit),
		validation.Field(&c.TimestampOffset, validation.Min(int64(0))),
		validation.Field(&c.LogLevel, validation.In(LevelDebug, LevelInfo, LevelWarn, LevelError)),
	)
}

// SlogLevel maps LogLevel to a slog.Level, defaulting to info.
func (c *Config) SlogLevel() slog.Level {
	switch strings.ToLower(c.LogLevel) {
	case LevelDebug:
		return slog.LevelDebug
	case LevelWarn:
		return slog.LevelWarn
	case LevelError:
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// Environment overrides applied by ApplyEnv.
const (
	EnvClientID        = "GLINT_CLIENT_ID"
	EnvLogLevel        = "GLINT_LOG_LEVEL"
	EnvTimestampOffset = "GLINT_TIMESTAMP_OFFSET"
)

// LoadEnv loads variables from the given .env files into the process
// environment. Missing files are skipped; existing variables are kept.
func LoadEnv(files ...string) error {
	for _, f := range files {
		if _, err := os.Stat(f); err != nil {
			continue
		}
		if err := godotenv.Load(f); err != nil {
			return fmt.Errorf("load %s: %w", f, err)
		}
	}
	return nil
}

// ApplyEnv overrides cfg with GLINT_* variables from the environment.
func ApplyEnv(cfg *Config) error {
	if v := os.Getenv(EnvClientID); v != "" {
		cfg.ClientID = v
	}
	if v := os.Getenv(EnvLogLevel); v != "" {
		cfg.LogLevel = strings.ToLower(v)
	}
	if v := os.Getenv(EnvTimestampOffset); v != "" {
		n, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return fmt.Errorf("%s: %w", EnvTimestampOffset, err)
		}
		cfg.TimestampOffset = n
	}
	return nil
}
