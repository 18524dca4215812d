// Package services defines the shared error taxonomy for the resolution
// pipeline.
//
// Sentinel errors classify failures (transport, parse, configuration,
// cancellation) so callers can branch on errors.Is without string matching,
// while Wrap attaches component and operation context to the chain.
package services
