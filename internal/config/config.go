// Package config loads studyaid settings from a YAML file, the environment
// and command-line flags, in that order of precedence (flags win).
package config

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	APIKey         string        `yaml:"api_key"`
	Model          string        `yaml:"model"`
	Language       string        `yaml:"language"`
	Listen         string        `yaml:"listen"`
	DBPath         string        `yaml:"db_path"`
	SessionTTL     time.Duration `yaml:"session_ttl"`
	MaxFileMB      int           `yaml:"max_file_mb"`
	MaxUploadMB    int           `yaml:"max_upload_mb"`
	QuizCount      int           `yaml:"quiz_count"`
	FlashcardCount int           `yaml:"flashcard_count"`
	LogLevel       string        `yaml:"log_level"`
	LogFormat      string        `yaml:"log_format"`
	WatchDebounce  time.Duration `yaml:"watch_debounce"`
}

func Default() *Config {
	return &Config{
		Model:          "gemini-2.5-flash",
		Language:       "English",
		Listen:         ":8080",
		SessionTTL:     24 * time.Hour,
		MaxFileMB:      50,
		MaxUploadMB:    200,
		QuizCount:      5,
		FlashcardCount: 10,
		LogLevel:       "info",
		LogFormat:      "text",
		WatchDebounce:  500 * time.Millisecond,
	}
}

// Load reads path over the defaults, then applies the environment. An empty
// path skips the file.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config %s: %w", path, err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config %s: %w", path, err)
		}
	}
	cfg.applyEnv(os.Getenv)
	return cfg, nil
}

func (c *Config) applyEnv(getenv func(string) string) {
	set := func(dst *string, keys ...string) {
		for _, k := range keys {
			if v := getenv(k); v != "" {
				*dst = v
				return
			}
		}
	}
	set(&c.APIKey, "GOOGLE_API_KEY", "GEMINI_API_KEY")
	set(&c.Model, "STUDYAID_MODEL")
	set(&c.DBPath, "STUDYAID_DB")
	set(&c.Listen, "STUDYAID_LISTEN")
	set(&c.LogLevel, "STUDYAID_LOG_LEVEL")
}

func (c *Config) Validate() error {
	var errs []error
	if c.Model == "" {
		errs = append(errs, errors.New("model is required"))
	}
	if c.MaxFileMB <= 0 {
		errs = append(errs, errors.New("max_file_mb must be > 0"))
	}
	if c.MaxUploadMB < c.MaxFileMB {
		errs = append(errs, fmt.Errorf("max_upload_mb (%d) must be >= max_file_mb (%d)", c.MaxUploadMB, c.MaxFileMB))
	}
	if c.QuizCount < 1 || c.QuizCount > 50 {
		errs = append(errs, fmt.Errorf("quiz_count must be within 1..50, got %d", c.QuizCount))
	}
	if c.FlashcardCount < 1 || c.FlashcardCount > 50 {
		errs = append(errs, fmt.Errorf("flashcard_count must be within 1..50, got %d", c.FlashcardCount))
	}
	switch strings.ToLower(c.LogFormat) {
	case "text", "json":
	default:
		errs = append(errs, fmt.Errorf("unsupported log_format %q (use text or json)", c.LogFormat))
	}
	if _, err := parseLevel(c.LogLevel); err != nil {
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}

// MaxFileBytes returns the per-document limit in bytes.
func (c *Config) MaxFileBytes() int64 { return int64(c.MaxFileMB) * 1024 * 1024 }

// MaxUploadBytes returns the per-request upload limit in bytes.
func (c *Config) MaxUploadBytes() int64 { return int64(c.MaxUploadMB) * 1024 * 1024 }

// NewLogger builds the process logger from the configured level and format.
func (c *Config) NewLogger(w io.Writer) *slog.Logger {
	lvl, _ := parseLevel(c.LogLevel)
	opts := &slog.HandlerOptions{Level: lvl}
	if strings.EqualFold(c.LogFormat, "json") {
		return slog.New(slog.NewJSONHandler(w, opts))
	}
	return slog.New(slog.NewTextHandler(w, opts))
}

func parseLevel(s string) (slog.Level, error) {
	switch strings.ToLower(s) {
	case "debug":
		return slog.LevelDebug, nil
	case "", "info":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return slog.LevelInfo, fmt.Errorf("unsupported log_level %q", s)
	}
}
