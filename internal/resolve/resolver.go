package resolve

import (
	"context"
	"log/slog"

	"sleeve/internal/logging"
	"sleeve/internal/providers"
	"sleeve/internal/selection"
	"sleeve/internal/services"
)

// Searcher produces candidates for a query. The aggregator satisfies this.
type Searcher interface {
	Search(ctx context.Context, query providers.Query) ([]providers.Candidate, error)
}

// Resolver loops a query through search, unattended selection, and chooser
// escalation until it reaches a terminal outcome.
type Resolver struct {
	searcher  Searcher
	chooser   Chooser
	policy    selection.Policy
	autoPick  bool
	alwaysAsk bool
	logger    *slog.Logger
}

// Options configures a Resolver.
type Options struct {
	Searcher Searcher

	// Chooser handles escalation. Nil is allowed; escalations then skip.
	Chooser Chooser

	Policy selection.Policy

	// AutoPick enables unattended selection. When false every ambiguous
	// candidate list escalates; lone candidates still resolve directly.
	AutoPick bool

	// AlwaysAsk escalates even when the policy is confident.
	AlwaysAsk bool

	Logger *slog.Logger
}

// New constructs a Resolver.
func New(opts Options) *Resolver {
	return &Resolver{
		searcher:  opts.Searcher,
		chooser:   opts.Chooser,
		policy:    opts.Policy,
		autoPick:  opts.AutoPick,
		alwaysAsk: opts.AlwaysAsk,
		logger:    logging.WithComponent(opts.Logger, "resolve"),
	}
}

// Resolve drives query to a terminal outcome. Retries from the chooser
// replace the query and re-run the search, so the loop only ends at a pick,
// a skip, an empty result, an error, or cancellation.
func (r *Resolver) Resolve(ctx context.Context, query providers.Query) Outcome {
	for {
		if err := ctx.Err(); err != nil {
			return Outcome{Kind: OutcomeErrored, Err: services.Wrap(services.ErrCancelled, "resolve", "search", "resolution cancelled", err), Query: query}
		}

		candidates, err := r.searcher.Search(ctx, query)
		if err != nil {
			return Outcome{Kind: OutcomeErrored, Err: err, Query: query}
		}
		if len(candidates) == 0 {
			r.logger.Info("no candidates", logging.String("query", query.String()))
			return Outcome{Kind: OutcomeNotFound, Query: query}
		}

		// A lone candidate needs no policy: there is nothing to choose
		// between, so it resolves directly unless the user asked to
		// review everything.
		if !r.alwaysAsk && (r.autoPick || len(candidates) == 1) {
			if url, score, ok := r.policy.AutoPick(query, candidates); ok {
				r.logger.Info("picked candidate",
					logging.String("query", query.String()),
					logging.String("provider", score.Candidate.Provider),
					logging.Float64("similarity", score.Similarity))
				return Outcome{Kind: OutcomeResolved, URL: url, Query: query}
			}
		}

		decision, err := r.escalate(ctx, query, candidates)
		if err != nil {
			if services.IsCancelled(err) {
				return Outcome{Kind: OutcomeErrored, Err: services.Wrap(services.ErrCancelled, "resolve", "choose", "resolution cancelled", err), Query: query}
			}
			return Outcome{Kind: OutcomeErrored, Err: err, Query: query}
		}

		switch decision.Kind {
		case DecisionPick:
			return Outcome{Kind: OutcomeResolved, URL: decision.URL, Query: query}
		case DecisionRetry:
			r.logger.Info("retrying with revised query",
				logging.String("previous", query.String()),
				logging.String("next", decision.Query.String()))
			query = decision.Query
		default:
			return Outcome{Kind: OutcomeSkipped, Query: query}
		}
	}
}

func (r *Resolver) escalate(ctx context.Context, query providers.Query, candidates []providers.Candidate) (Decision, error) {
	if r.chooser == nil {
		r.logger.Warn("no chooser configured, skipping ambiguous item",
			logging.String("query", query.String()),
			logging.Int("candidates", len(candidates)))
		return Decision{Kind: DecisionSkip}, nil
	}
	return r.chooser.Choose(ctx, query, candidates)
}
