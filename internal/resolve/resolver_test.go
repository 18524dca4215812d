package resolve

import (
	"context"
	"errors"
	"testing"

	"sleeve/internal/providers"
	"sleeve/internal/selection"
	"sleeve/internal/services"
)

type stubSearcher struct {
	results [][]providers.Candidate
	err     error
	queries []providers.Query
}

func (s *stubSearcher) Search(ctx context.Context, query providers.Query) ([]providers.Candidate, error) {
	s.queries = append(s.queries, query)
	if s.err != nil {
		return nil, s.err
	}
	if len(s.results) == 0 {
		return nil, nil
	}
	batch := s.results[0]
	if len(s.results) > 1 {
		s.results = s.results[1:]
	}
	return batch, nil
}

type scriptedChooser struct {
	decisions []Decision
	err       error
	calls     int
}

func (c *scriptedChooser) Choose(ctx context.Context, query providers.Query, candidates []providers.Candidate) (Decision, error) {
	if err := ctx.Err(); err != nil {
		return Decision{}, err
	}
	c.calls++
	if c.err != nil {
		return Decision{}, c.err
	}
	decision := c.decisions[0]
	if len(c.decisions) > 1 {
		c.decisions = c.decisions[1:]
	}
	return decision, nil
}

func defaultPolicy() selection.Policy {
	return selection.Policy{Threshold: 0.92, YearTolerance: 1}
}

func TestResolveAutoPick(t *testing.T) {
	searcher := &stubSearcher{results: [][]providers.Candidate{{
		{Provider: "itunes", Title: "OK Computer", ImageURL: "https://img/ok.jpg", Year: 1997},
		{Provider: "deezer", Title: "The Bends", ImageURL: "https://img/bends.jpg", Year: 1995},
	}}}
	chooser := &scriptedChooser{}

	resolver := New(Options{Searcher: searcher, Chooser: chooser, Policy: defaultPolicy(), AutoPick: true})
	outcome := resolver.Resolve(context.Background(), providers.Query{Artist: "Radiohead", Album: "OK Computer", Year: 1997})

	if outcome.Kind != OutcomeResolved {
		t.Fatalf("kind = %v, err = %v", outcome.Kind, outcome.Err)
	}
	if outcome.URL != "https://img/ok.jpg" {
		t.Errorf("url = %q", outcome.URL)
	}
	if chooser.calls != 0 {
		t.Errorf("confident pick must not escalate, chooser called %d times", chooser.calls)
	}
}

func TestResolveNotFound(t *testing.T) {
	resolver := New(Options{Searcher: &stubSearcher{}, Policy: defaultPolicy(), AutoPick: true})
	outcome := resolver.Resolve(context.Background(), providers.Query{Artist: "Nobody", Album: "Nothing"})
	if outcome.Kind != OutcomeNotFound {
		t.Fatalf("kind = %v", outcome.Kind)
	}
}

func TestResolveEscalatesAmbiguity(t *testing.T) {
	searcher := &stubSearcher{results: [][]providers.Candidate{{
		{Provider: "itunes", Title: "OK Computer Live", ImageURL: "https://img/a.jpg"},
		{Provider: "deezer", Title: "OK Computer Remix", ImageURL: "https://img/b.jpg"},
	}}}
	chooser := &scriptedChooser{decisions: []Decision{{Kind: DecisionPick, URL: "https://img/b.jpg"}}}

	resolver := New(Options{Searcher: searcher, Chooser: chooser, Policy: defaultPolicy(), AutoPick: true})
	outcome := resolver.Resolve(context.Background(), providers.Query{Artist: "Radiohead", Album: "OK Computer"})

	if outcome.Kind != OutcomeResolved || outcome.URL != "https://img/b.jpg" {
		t.Fatalf("outcome = %+v", outcome)
	}
	if chooser.calls != 1 {
		t.Errorf("chooser calls = %d", chooser.calls)
	}
}

func TestResolveRetryRerunsSearch(t *testing.T) {
	searcher := &stubSearcher{results: [][]providers.Candidate{
		{
			{Provider: "itunes", Title: "Completely Different", ImageURL: "https://img/wrong.jpg"},
			{Provider: "deezer", Title: "Other Album", ImageURL: "https://img/other.jpg"},
		},
		{
			{Provider: "itunes", Title: "Right Album", ImageURL: "https://img/right.jpg"},
		},
	}}
	revised := providers.Query{Artist: "Radiohead", Album: "Right Album"}
	chooser := &scriptedChooser{decisions: []Decision{{Kind: DecisionRetry, Query: revised}}}

	resolver := New(Options{Searcher: searcher, Chooser: chooser, Policy: defaultPolicy(), AutoPick: true})
	outcome := resolver.Resolve(context.Background(), providers.Query{Artist: "Radiohead", Album: "Wrong Album"})

	if outcome.Kind != OutcomeResolved || outcome.URL != "https://img/right.jpg" {
		t.Fatalf("outcome = %+v", outcome)
	}
	if len(searcher.queries) != 2 {
		t.Fatalf("search calls = %d, want 2", len(searcher.queries))
	}
	if searcher.queries[1].Album != "Right Album" {
		t.Errorf("retry should replace the query, got %+v", searcher.queries[1])
	}
	if outcome.Query.Album != "Right Album" {
		t.Errorf("outcome should carry the final query, got %+v", outcome.Query)
	}
}

func TestResolveSkip(t *testing.T) {
	searcher := &stubSearcher{results: [][]providers.Candidate{{
		{Provider: "itunes", Title: "A", ImageURL: "https://img/a.jpg"},
		{Provider: "itunes", Title: "B", ImageURL: "https://img/b.jpg"},
	}}}
	chooser := &scriptedChooser{decisions: []Decision{{Kind: DecisionSkip}}}

	resolver := New(Options{Searcher: searcher, Chooser: chooser, Policy: defaultPolicy(), AutoPick: true})
	outcome := resolver.Resolve(context.Background(), providers.Query{Artist: "x", Album: "y"})
	if outcome.Kind != OutcomeSkipped {
		t.Fatalf("kind = %v", outcome.Kind)
	}
}

func TestResolveAlwaysAskBypassesPolicy(t *testing.T) {
	searcher := &stubSearcher{results: [][]providers.Candidate{{
		{Provider: "itunes", Title: "OK Computer", ImageURL: "https://img/ok.jpg", Year: 1997},
	}}}
	chooser := &scriptedChooser{decisions: []Decision{{Kind: DecisionPick, URL: "https://img/ok.jpg"}}}

	resolver := New(Options{Searcher: searcher, Chooser: chooser, Policy: defaultPolicy(), AutoPick: true, AlwaysAsk: true})
	outcome := resolver.Resolve(context.Background(), providers.Query{Artist: "Radiohead", Album: "OK Computer", Year: 1997})

	if outcome.Kind != OutcomeResolved {
		t.Fatalf("outcome = %+v", outcome)
	}
	if chooser.calls != 1 {
		t.Errorf("always-ask must escalate even confident matches, chooser calls = %d", chooser.calls)
	}
}

func TestResolveSingleCandidateWithoutAutoPick(t *testing.T) {
	searcher := &stubSearcher{results: [][]providers.Candidate{{
		{Provider: "itunes", Title: "Unrelated Title", ImageURL: "https://img/only.jpg"},
	}}}
	chooser := &scriptedChooser{}

	resolver := New(Options{Searcher: searcher, Chooser: chooser, Policy: defaultPolicy()})
	outcome := resolver.Resolve(context.Background(), providers.Query{Artist: "x", Album: "y"})

	if outcome.Kind != OutcomeResolved || outcome.URL != "https://img/only.jpg" {
		t.Fatalf("outcome = %+v", outcome)
	}
	if chooser.calls != 0 {
		t.Errorf("a lone candidate should not escalate, chooser calls = %d", chooser.calls)
	}
}

func TestResolveNilChooserSkips(t *testing.T) {
	searcher := &stubSearcher{results: [][]providers.Candidate{{
		{Provider: "itunes", Title: "A", ImageURL: "https://img/a.jpg"},
		{Provider: "itunes", Title: "B", ImageURL: "https://img/b.jpg"},
	}}}

	resolver := New(Options{Searcher: searcher, Policy: defaultPolicy(), AutoPick: true})
	outcome := resolver.Resolve(context.Background(), providers.Query{Artist: "x", Album: "y"})
	if outcome.Kind != OutcomeSkipped {
		t.Fatalf("kind = %v", outcome.Kind)
	}
}

func TestResolveSearchError(t *testing.T) {
	boom := errors.New("upstream exploded")
	resolver := New(Options{Searcher: &stubSearcher{err: boom}, Policy: defaultPolicy(), AutoPick: true})
	outcome := resolver.Resolve(context.Background(), providers.Query{Artist: "x", Album: "y"})
	if outcome.Kind != OutcomeErrored || !errors.Is(outcome.Err, boom) {
		t.Fatalf("outcome = %+v", outcome)
	}
}

func TestResolveCancelledBeforeSearch(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	searcher := &stubSearcher{}
	resolver := New(Options{Searcher: searcher, Policy: defaultPolicy(), AutoPick: true})
	outcome := resolver.Resolve(ctx, providers.Query{Artist: "x", Album: "y"})

	if outcome.Kind != OutcomeErrored {
		t.Fatalf("kind = %v", outcome.Kind)
	}
	if !services.IsCancelled(outcome.Err) {
		t.Errorf("error should be classified as cancellation: %v", outcome.Err)
	}
	if len(searcher.queries) != 0 {
		t.Errorf("cancelled resolve must not search")
	}
}

func TestResolveCancelledDuringChoose(t *testing.T) {
	searcher := &stubSearcher{results: [][]providers.Candidate{{
		{Provider: "itunes", Title: "A", ImageURL: "https://img/a.jpg"},
		{Provider: "itunes", Title: "B", ImageURL: "https://img/b.jpg"},
	}}}
	chooser := &scriptedChooser{err: context.Canceled}

	resolver := New(Options{Searcher: searcher, Chooser: chooser, Policy: defaultPolicy(), AutoPick: true})
	outcome := resolver.Resolve(context.Background(), providers.Query{Artist: "x", Album: "y"})

	if outcome.Kind != OutcomeErrored || !services.IsCancelled(outcome.Err) {
		t.Fatalf("outcome = %+v", outcome)
	}
}
