package config

import (
	"fmt"
	"strings"
)

func (c *Config) normalize() error {
	if err := c.normalizePaths(); err != nil {
		return err
	}
	c.normalizeProviders()
	c.normalizeSelection()
	c.normalizeLogging()
	c.normalizeNotifications()
	return nil
}

func (c *Config) normalizePaths() error {
	var err error
	if c.Paths.OutputDir, err = expandPath(c.Paths.OutputDir); err != nil {
		return fmt.Errorf("paths.output_dir: %w", err)
	}
	if c.Paths.LogDir, err = expandPath(c.Paths.LogDir); err != nil {
		return fmt.Errorf("paths.log_dir: %w", err)
	}
	return nil
}

func (c *Config) normalizeProviders() {
	if c.Providers.LimitPerProvider < 1 {
		c.Providers.LimitPerProvider = 1
	}
	// The aggregation pool never runs below two workers.
	if c.Providers.Parallelism < 2 {
		c.Providers.Parallelism = 2
	}
	if c.Providers.RequestTimeout <= 0 {
		c.Providers.RequestTimeout = defaultRequestTimeout
	}
	if strings.TrimSpace(c.Providers.UserAgent) == "" {
		c.Providers.UserAgent = defaultUserAgent
	}
}

func (c *Config) normalizeSelection() {
	if c.Selection.YearTolerance < 0 {
		c.Selection.YearTolerance = 0
	}
}

func (c *Config) normalizeLogging() {
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	if c.Logging.Format == "" {
		c.Logging.Format = defaultLogFormat
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
}

func (c *Config) normalizeNotifications() {
	c.Notifications.NtfyTopic = strings.TrimSpace(c.Notifications.NtfyTopic)
	if c.Notifications.RequestTimeout <= 0 {
		c.Notifications.RequestTimeout = defaultNotifyRequestTimeout
	}
}
