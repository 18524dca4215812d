// Package workflow walks pending registry items through resolution,
// download, and placement, reporting progress over a typed event channel.
package workflow
