// Package config loads, normalizes, and validates sleeve configuration data.
//
// It supplies repository defaults, expands user paths (including tilde
// shortcuts), and reads TOML files. The Config type centralizes every knob
// the CLI needs: output and log directories, provider toggles and limits,
// selection thresholds, and notification settings. Load applies defaults
// first, then file overrides, then normalization (clamping and path
// expansion), then validation.
package config
