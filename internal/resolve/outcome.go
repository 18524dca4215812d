package resolve

import "sleeve/internal/providers"

// OutcomeKind enumerates the terminal states of a resolution.
type OutcomeKind int

const (
	// OutcomeResolved means an image URL was chosen.
	OutcomeResolved OutcomeKind = iota
	// OutcomeSkipped means the chooser declined the item.
	OutcomeSkipped
	// OutcomeNotFound means no provider produced a candidate.
	OutcomeNotFound
	// OutcomeErrored means resolution failed; Err carries the cause.
	OutcomeErrored
)

// String returns the lowercase name of the outcome kind.
func (k OutcomeKind) String() string {
	switch k {
	case OutcomeResolved:
		return "resolved"
	case OutcomeSkipped:
		return "skipped"
	case OutcomeNotFound:
		return "not_found"
	case OutcomeErrored:
		return "errored"
	default:
		return "unknown"
	}
}

// Outcome is the terminal result of resolving one query. Query records the
// final query used, which differs from the original after retries.
type Outcome struct {
	Kind  OutcomeKind
	URL   string
	Err   error
	Query providers.Query
}
