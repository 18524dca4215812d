package workflow_test

import (
	"context"
	"errors"
	"os"
	"sync"
	"testing"
	"time"

	"sleeve/internal/logging"
	"sleeve/internal/organizer"
	"sleeve/internal/providers"
	"sleeve/internal/queue"
	"sleeve/internal/resolve"
	"sleeve/internal/services"
	"sleeve/internal/testsupport"
	"sleeve/internal/workflow"
	"sleeve/internal/worklist"
)

type stubResolver struct {
	outcomes map[string]resolve.Outcome
}

func (s *stubResolver) Resolve(ctx context.Context, query providers.Query) resolve.Outcome {
	if outcome, ok := s.outcomes[query.Album]; ok {
		return outcome
	}
	return resolve.Outcome{Kind: resolve.OutcomeNotFound, Query: query}
}

type stubDownloader struct {
	data map[string][]byte
	errs map[string]error
}

func (s *stubDownloader) GetBytes(ctx context.Context, rawURL string) ([]byte, error) {
	if err, ok := s.errs[rawURL]; ok {
		return nil, err
	}
	if data, ok := s.data[rawURL]; ok {
		return data, nil
	}
	return nil, errors.New("no such url")
}

type recordingNotifier struct {
	mu       sync.Mutex
	started  []int
	finished [][2]int
	failures []string
}

func (r *recordingNotifier) NotifyRunStarted(ctx context.Context, count int) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.started = append(r.started, count)
	return nil
}

func (r *recordingNotifier) NotifyRunCompleted(ctx context.Context, saved, failed int, duration time.Duration) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.finished = append(r.finished, [2]int{saved, failed})
	return nil
}

func (r *recordingNotifier) NotifyItemFailed(ctx context.Context, label string, err error) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.failures = append(r.failures, label)
	return nil
}

func (r *recordingNotifier) TestNotification(ctx context.Context) error { return nil }

type fixture struct {
	manager  *workflow.Manager
	store    *queue.Store
	org      *organizer.Organizer
	notifier *recordingNotifier
	events   []workflow.Event
	drained  chan struct{}
}

func newFixture(t *testing.T, rows []worklist.Row, resolver workflow.ItemResolver, downloader workflow.Downloader) *fixture {
	t.Helper()

	cfg := testsupport.NewConfig(t)
	store, err := queue.Open(cfg)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })
	if err := store.SyncRows(context.Background(), rows); err != nil {
		t.Fatalf("SyncRows: %v", err)
	}

	org := organizer.New(cfg, logging.NewNop())
	notifier := &recordingNotifier{}
	manager := workflow.NewManager(cfg, store, resolver, downloader, org, notifier, logging.NewNop())

	f := &fixture{manager: manager, store: store, org: org, notifier: notifier, drained: make(chan struct{})}
	go func() {
		defer close(f.drained)
		for event := range manager.Events() {
			f.events = append(f.events, event)
		}
	}()
	return f
}

func (f *fixture) run(t *testing.T, ctx context.Context) (workflow.Summary, error) {
	t.Helper()
	summary, err := f.manager.Run(ctx)
	<-f.drained
	return summary, err
}

func (f *fixture) eventTypes() []workflow.EventType {
	types := make([]workflow.EventType, 0, len(f.events))
	for _, event := range f.events {
		types = append(types, event.Type)
	}
	return types
}

func TestRunSavesResolvedCovers(t *testing.T) {
	rows := []worklist.Row{
		{Index: 1, Genre: "Rock", Artist: "Radiohead", Album: "OK Computer", Year: 1997},
	}
	resolver := &stubResolver{outcomes: map[string]resolve.Outcome{
		"OK Computer": {Kind: resolve.OutcomeResolved, URL: "https://img/ok.jpg"},
	}}
	downloader := &stubDownloader{data: map[string][]byte{
		"https://img/ok.jpg": []byte("jpeg-bytes"),
	}}

	f := newFixture(t, rows, resolver, downloader)
	summary, err := f.run(t, context.Background())
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if summary.Total != 1 || summary.Saved != 1 {
		t.Fatalf("summary = %+v", summary)
	}
	if summary.RunID == "" {
		t.Error("run id should be set")
	}

	item, _ := f.store.ItemByRowIndex(context.Background(), 1)
	if item.Status != queue.StatusSaved {
		t.Fatalf("status = %s", item.Status)
	}
	if item.RunID != summary.RunID {
		t.Errorf("item run id = %q", item.RunID)
	}
	data, err := os.ReadFile(item.SavedPath)
	if err != nil {
		t.Fatalf("read saved cover: %v", err)
	}
	if string(data) != "jpeg-bytes" {
		t.Errorf("saved %q", data)
	}

	want := []workflow.EventType{workflow.EventItemStarted, workflow.EventItemResolved, workflow.EventItemSaved}
	got := f.eventTypes()
	if len(got) != len(want) {
		t.Fatalf("events = %v", got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("events = %v, want %v", got, want)
		}
	}

	if len(f.notifier.started) != 1 || f.notifier.started[0] != 1 {
		t.Errorf("start notifications = %v", f.notifier.started)
	}
	if len(f.notifier.finished) != 1 || f.notifier.finished[0] != [2]int{1, 0} {
		t.Errorf("completion notifications = %v", f.notifier.finished)
	}
}

func TestRunTerminalStates(t *testing.T) {
	rows := []worklist.Row{
		{Index: 1, Artist: "A", Album: "Skip Me"},
		{Index: 2, Artist: "B", Album: "Missing"},
		{Index: 3, Artist: "C", Album: "Broken"},
	}
	resolver := &stubResolver{outcomes: map[string]resolve.Outcome{
		"Skip Me": {Kind: resolve.OutcomeSkipped},
		"Broken":  {Kind: resolve.OutcomeErrored, Err: errors.New("provider meltdown")},
	}}

	f := newFixture(t, rows, resolver, &stubDownloader{})
	summary, err := f.run(t, context.Background())
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if summary.Skipped != 1 || summary.NotFound != 1 || summary.Failed != 1 {
		t.Fatalf("summary = %+v", summary)
	}

	counts, _ := f.store.CountByStatus(context.Background())
	if counts[queue.StatusSkipped] != 1 || counts[queue.StatusNotFound] != 1 || counts[queue.StatusFailed] != 1 {
		t.Errorf("counts = %v", counts)
	}

	if len(f.notifier.failures) != 1 || f.notifier.failures[0] != "C - Broken" {
		t.Errorf("failure notifications = %v", f.notifier.failures)
	}

	item, _ := f.store.ItemByRowIndex(context.Background(), 3)
	if item.ErrorMessage != "provider meltdown" {
		t.Errorf("error message = %q", item.ErrorMessage)
	}
}

func TestRunKeepsExistingCovers(t *testing.T) {
	rows := []worklist.Row{
		{Index: 1, Genre: "Rock", Artist: "Radiohead", Album: "OK Computer", Year: 1997},
	}
	resolver := &stubResolver{outcomes: map[string]resolve.Outcome{
		"OK Computer": {Kind: resolve.OutcomeResolved, URL: "https://img/ok.jpg"},
	}}
	// No downloader data: a download attempt would fail the item.
	f := newFixture(t, rows, resolver, &stubDownloader{})

	item, _ := f.store.ItemByRowIndex(context.Background(), 1)
	testsupport.WriteFile(t, f.org.CoverPath(item, "https://img/ok.jpg"), 10)

	summary, err := f.run(t, context.Background())
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if summary.Exists != 1 || summary.Failed != 0 {
		t.Fatalf("summary = %+v", summary)
	}
	updated, _ := f.store.ItemByRowIndex(context.Background(), 1)
	if updated.Status != queue.StatusExists {
		t.Errorf("status = %s", updated.Status)
	}
}

func TestRunDownloadFailureMarksItemFailed(t *testing.T) {
	rows := []worklist.Row{
		{Index: 1, Artist: "A", Album: "B"},
	}
	resolver := &stubResolver{outcomes: map[string]resolve.Outcome{
		"B": {Kind: resolve.OutcomeResolved, URL: "https://img/gone.jpg"},
	}}
	downloader := &stubDownloader{errs: map[string]error{
		"https://img/gone.jpg": errors.New("image vanished"),
	}}

	f := newFixture(t, rows, resolver, downloader)
	summary, err := f.run(t, context.Background())
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if summary.Failed != 1 {
		t.Fatalf("summary = %+v", summary)
	}
}

func TestRunCancellationResetsInFlightItem(t *testing.T) {
	rows := []worklist.Row{
		{Index: 1, Artist: "A", Album: "Cancelled"},
		{Index: 2, Artist: "B", Album: "Never Reached"},
	}
	resolver := &stubResolver{outcomes: map[string]resolve.Outcome{
		"Cancelled": {
			Kind: resolve.OutcomeErrored,
			Err:  services.Wrap(services.ErrCancelled, "resolve", "choose", "resolution cancelled", context.Canceled),
		},
	}}

	f := newFixture(t, rows, resolver, &stubDownloader{})
	_, err := f.run(t, context.Background())
	if err == nil {
		t.Fatal("expected cancellation error")
	}

	pending, _ := f.store.ItemsByStatuses(context.Background(), queue.StatusPending)
	if len(pending) != 2 {
		t.Errorf("cancelled and unreached items should stay pending, got %d", len(pending))
	}
}

func TestRunResolverPanicFailsItemOnly(t *testing.T) {
	rows := []worklist.Row{
		{Index: 1, Artist: "A", Album: "Boom"},
		{Index: 2, Artist: "B", Album: "Fine"},
	}
	resolver := &panickyResolver{safe: &stubResolver{outcomes: map[string]resolve.Outcome{
		"Fine": {Kind: resolve.OutcomeResolved, URL: "https://img/fine.jpg"},
	}}}
	downloader := &stubDownloader{data: map[string][]byte{
		"https://img/fine.jpg": []byte("bytes"),
	}}

	f := newFixture(t, rows, resolver, downloader)
	summary, err := f.run(t, context.Background())
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if summary.Failed != 1 || summary.Saved != 1 {
		t.Fatalf("summary = %+v", summary)
	}
}

type panickyResolver struct {
	safe workflow.ItemResolver
}

func (p *panickyResolver) Resolve(ctx context.Context, query providers.Query) resolve.Outcome {
	if query.Album == "Boom" {
		panic("resolver bug")
	}
	return p.safe.Resolve(ctx, query)
}

func TestRunNoPendingItems(t *testing.T) {
	f := newFixture(t, nil, &stubResolver{}, &stubDownloader{})
	summary, err := f.run(t, context.Background())
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if summary.Total != 0 {
		t.Errorf("summary = %+v", summary)
	}
	if len(f.notifier.started) != 0 {
		t.Errorf("no notification expected for an empty run")
	}
}
