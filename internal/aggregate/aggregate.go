package aggregate

import (
	"context"
	"log/slog"
	"sync"

	"golang.org/x/sync/errgroup"

	"sleeve/internal/logging"
	"sleeve/internal/providers"
)

// minParallelism keeps the pool wide enough that one slow provider cannot
// serialize the rest.
const minParallelism = 2

// Aggregator runs provider searches concurrently. Provider failures are
// logged and dropped; a search only surfaces the candidates of the providers
// that answered.
type Aggregator struct {
	providers       []providers.Provider
	limit           int
	parallelism     int
	yearTolerance   int
	applyYearFilter bool
	logger          *slog.Logger
}

// Options configures an Aggregator.
type Options struct {
	// Providers to query. Each provider's batch stays contiguous in the
	// merged result; batches land in completion order.
	Providers []providers.Provider

	// Limit caps the candidates requested from each provider.
	Limit int

	// Parallelism bounds concurrent provider calls. Values below two are
	// raised to two.
	Parallelism int

	// YearTolerance widens the soft year filter. Only meaningful when
	// FilterByYear is set.
	YearTolerance int

	// FilterByYear drops candidates whose known year falls outside the
	// query year by more than YearTolerance. Candidates with unknown
	// years always pass.
	FilterByYear bool

	Logger *slog.Logger
}

// New constructs an Aggregator from options, normalizing degenerate values.
func New(opts Options) *Aggregator {
	parallelism := opts.Parallelism
	if parallelism < minParallelism {
		parallelism = minParallelism
	}
	limit := opts.Limit
	if limit < 1 {
		limit = 1
	}
	return &Aggregator{
		providers:       opts.Providers,
		limit:           limit,
		parallelism:     parallelism,
		yearTolerance:   opts.YearTolerance,
		applyYearFilter: opts.FilterByYear,
		logger:          logging.WithComponent(opts.Logger, "aggregate"),
	}
}

// Search queries every provider and returns the merged candidate list.
// Candidate order is completion order across providers, preserving each
// provider's own ordering within its batch. Duplicated image URLs keep the
// first-seen candidate. The error return is reserved for context
// cancellation; provider errors never abort the search.
func (a *Aggregator) Search(ctx context.Context, query providers.Query) ([]providers.Candidate, error) {
	if len(a.providers) == 0 {
		return nil, nil
	}

	var (
		mu        sync.Mutex
		collected []providers.Candidate
	)

	group, groupCtx := errgroup.WithContext(ctx)
	group.SetLimit(a.parallelism)
	for _, provider := range a.providers {
		provider := provider
		group.Go(func() error {
			batch, err := provider.Search(groupCtx, query, a.limit)
			if err != nil {
				if groupCtx.Err() != nil {
					return groupCtx.Err()
				}
				a.logger.Warn("provider search failed",
					logging.String("provider", provider.Name()),
					logging.String("query", query.String()),
					logging.Error(err))
				return nil
			}
			a.logger.Debug("provider answered",
				logging.String("provider", provider.Name()),
				logging.Int("candidates", len(batch)))
			mu.Lock()
			collected = append(collected, batch...)
			mu.Unlock()
			return nil
		})
	}
	if err := group.Wait(); err != nil {
		return nil, err
	}

	if a.applyYearFilter && query.Year != 0 {
		collected = SoftYearFilter(collected, query.Year, a.yearTolerance)
	}
	return DedupByImage(collected), nil
}
