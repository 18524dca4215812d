// Package queue persists the per-row state of a cover run so interrupted or
// partially failed runs can be resumed and redone without re-fetching what
// already succeeded.
package queue
