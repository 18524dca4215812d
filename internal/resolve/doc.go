// Package resolve drives a single album query to a terminal outcome,
// escalating ambiguous results to a chooser and looping on retries.
package resolve
