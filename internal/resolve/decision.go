package resolve

import (
	"context"

	"sleeve/internal/providers"
)

// DecisionKind enumerates what a chooser can do with a candidate list.
type DecisionKind int

const (
	// DecisionPick selects a candidate's image URL.
	DecisionPick DecisionKind = iota
	// DecisionSkip abandons the item without an image.
	DecisionSkip
	// DecisionRetry replaces the query and searches again.
	DecisionRetry
)

// Decision is a chooser's verdict. URL is set for picks; Query is set for
// retries and becomes the next search.
type Decision struct {
	Kind  DecisionKind
	URL   string
	Query providers.Query
}

// Chooser resolves ambiguity the policy could not. Implementations must
// honor context cancellation: a chooser blocked on input returns when ctx
// is done.
type Chooser interface {
	Choose(ctx context.Context, query providers.Query, candidates []providers.Candidate) (Decision, error)
}
