package testsupport

import (
	"path/filepath"
	"testing"

	"sleeve/internal/config"
)

// ConfigOption customizes the generated test configuration.
type ConfigOption func(*config.Config)

// NewConfig produces a config seeded with unique temp directories per test.
func NewConfig(t testing.TB, opts ...ConfigOption) *config.Config {
	t.Helper()

	base := t.TempDir()
	cfg := config.Default()
	cfg.Paths.OutputDir = filepath.Join(base, "covers")
	cfg.Paths.LogDir = filepath.Join(base, "logs")
	cfg.Notifications.NtfyTopic = ""

	for _, opt := range opts {
		opt(&cfg)
	}
	return &cfg
}

// WithOverwrite enables overwriting existing cover files.
func WithOverwrite() ConfigOption {
	return func(cfg *config.Config) {
		cfg.Output.OverwriteExisting = true
	}
}

// WithAlwaysAsk forces chooser escalation for every item.
func WithAlwaysAsk() ConfigOption {
	return func(cfg *config.Config) {
		cfg.Selection.AlwaysAsk = true
	}
}
