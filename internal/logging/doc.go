// Package logging assembles the structured slog loggers used across sleeve.
//
// It owns the configurable console/JSON handlers and centralizes level and
// output plumbing, so every component emits records with the same shape. The
// package also provides attr helper aliases and a no-op logger for tests and
// wiring code that cannot fail.
package logging
