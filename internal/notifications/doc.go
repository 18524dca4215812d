// Package notifications delivers run progress to ntfy topics so long batch
// runs can be watched from a phone.
package notifications
