package workflow

import "sleeve/internal/queue"

// EventType classifies workflow events.
type EventType string

const (
	// EventItemStarted fires when an item enters processing.
	EventItemStarted EventType = "item_started"
	// EventItemResolved fires when a cover URL has been chosen.
	EventItemResolved EventType = "item_resolved"
	// EventItemSaved fires when a cover file has been written.
	EventItemSaved EventType = "item_saved"
	// EventItemExists fires when the target file already existed and was kept.
	EventItemExists EventType = "item_exists"
	// EventItemSkipped fires when the chooser declined the item.
	EventItemSkipped EventType = "item_skipped"
	// EventItemNotFound fires when no provider had a usable candidate.
	EventItemNotFound EventType = "item_not_found"
	// EventItemFailed fires when processing an item errored.
	EventItemFailed EventType = "item_failed"
)

// Event is one progress report. Item is a snapshot of the registry row at
// emission time. URL and Path are set when the event type implies them; Err
// is set for failures.
type Event struct {
	Type EventType
	Item queue.Item
	URL  string
	Path string
	Err  error
}
