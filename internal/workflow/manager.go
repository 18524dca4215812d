package workflow

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"sleeve/internal/config"
	"sleeve/internal/logging"
	"sleeve/internal/notifications"
	"sleeve/internal/organizer"
	"sleeve/internal/providers"
	"sleeve/internal/queue"
	"sleeve/internal/resolve"
	"sleeve/internal/services"
)

// ItemResolver drives one query to a terminal outcome. The resolve package
// satisfies this.
type ItemResolver interface {
	Resolve(ctx context.Context, query providers.Query) resolve.Outcome
}

// Downloader fetches image bytes. The fetch client satisfies this.
type Downloader interface {
	GetBytes(ctx context.Context, rawURL string) ([]byte, error)
}

// Summary totals the terminal states of one run.
type Summary struct {
	RunID    string
	Total    int
	Saved    int
	Exists   int
	Skipped  int
	NotFound int
	Failed   int
	Duration time.Duration
}

// Manager processes registry items sequentially. Providers already fan out
// per item; processing items one at a time keeps the chooser interaction
// coherent.
type Manager struct {
	cfg        *config.Config
	store      *queue.Store
	resolver   ItemResolver
	downloader Downloader
	organizer  *organizer.Organizer
	notifier   notifications.Service
	logger     *slog.Logger
	events     chan Event
}

// NewManager constructs a workflow manager. The event channel is created
// here; consume it with Events before calling Run.
func NewManager(
	cfg *config.Config,
	store *queue.Store,
	resolver ItemResolver,
	downloader Downloader,
	org *organizer.Organizer,
	notifier notifications.Service,
	logger *slog.Logger,
) *Manager {
	return &Manager{
		cfg:        cfg,
		store:      store,
		resolver:   resolver,
		downloader: downloader,
		organizer:  org,
		notifier:   notifier,
		logger:     logging.WithComponent(logger, "workflow"),
		events:     make(chan Event, 16),
	}
}

// Events returns the progress channel. It is closed when Run returns.
func (m *Manager) Events() <-chan Event { return m.events }

// Run processes every pending item. The returned summary covers the items
// this run touched, including items abandoned by cancellation. Cancellation
// resets the in-flight item to pending and returns the context error.
func (m *Manager) Run(ctx context.Context) (Summary, error) {
	defer close(m.events)

	start := time.Now()
	summary := Summary{RunID: uuid.NewString()}

	items, err := m.store.ItemsByStatuses(ctx, queue.StatusPending)
	if err != nil {
		return summary, err
	}
	summary.Total = len(items)
	if len(items) == 0 {
		return summary, nil
	}

	m.logger.Info("run started",
		logging.String("run_id", summary.RunID),
		logging.Int("pending", len(items)))
	if err := m.notifier.NotifyRunStarted(ctx, len(items)); err != nil {
		m.logger.Warn("run start notification failed", logging.Error(err))
	}

	for _, item := range items {
		if err := ctx.Err(); err != nil {
			m.finish(&summary, start)
			return summary, err
		}
		if err := m.processItem(ctx, item, &summary); err != nil {
			m.finish(&summary, start)
			return summary, err
		}
	}

	m.finish(&summary, start)
	if err := m.notifier.NotifyRunCompleted(context.WithoutCancel(ctx), summary.Saved, summary.Failed, summary.Duration); err != nil {
		m.logger.Warn("run completion notification failed", logging.Error(err))
	}
	return summary, nil
}

func (m *Manager) finish(summary *Summary, start time.Time) {
	summary.Duration = time.Since(start)
	m.logger.Info("run finished",
		logging.String("run_id", summary.RunID),
		logging.Int("total", summary.Total),
		logging.Int("saved", summary.Saved),
		logging.Int("exists", summary.Exists),
		logging.Int("skipped", summary.Skipped),
		logging.Int("not_found", summary.NotFound),
		logging.Int("failed", summary.Failed),
		logging.Duration("duration", summary.Duration))
}

// processItem takes one item to a terminal status. Its only non-nil error
// return is cancellation; everything else is recorded on the item.
func (m *Manager) processItem(ctx context.Context, item *queue.Item, summary *Summary) (err error) {
	defer func() {
		if r := recover(); r != nil {
			message := fmt.Sprintf("panic: %v", r)
			m.logger.Error("item processing panicked",
				logging.String("item", item.Label()),
				logging.String("panic", message))
			m.markFailed(ctx, item, summary, fmt.Errorf("%s", message))
			err = nil
		}
	}()

	if err := m.store.MarkSearching(ctx, item.ID, summary.RunID); err != nil {
		return err
	}
	item.Status = queue.StatusSearching
	item.RunID = summary.RunID
	m.emit(Event{Type: EventItemStarted, Item: *item})

	query := providers.Query{Artist: item.Artist, Album: item.Album, Year: item.Year}
	outcome := m.resolver.Resolve(ctx, query)

	switch outcome.Kind {
	case resolve.OutcomeResolved:
		return m.place(ctx, item, summary, outcome.URL)
	case resolve.OutcomeSkipped:
		if err := m.store.MarkSkipped(ctx, item.ID); err != nil {
			return err
		}
		item.Status = queue.StatusSkipped
		summary.Skipped++
		m.emit(Event{Type: EventItemSkipped, Item: *item})
		return nil
	case resolve.OutcomeNotFound:
		if err := m.store.MarkNotFound(ctx, item.ID); err != nil {
			return err
		}
		item.Status = queue.StatusNotFound
		summary.NotFound++
		m.emit(Event{Type: EventItemNotFound, Item: *item})
		return nil
	default:
		if services.IsCancelled(outcome.Err) {
			return m.abandon(ctx, item, outcome.Err)
		}
		m.markFailed(ctx, item, summary, outcome.Err)
		return nil
	}
}

// place downloads the resolved cover and writes it, honoring the existing
// file policy.
func (m *Manager) place(ctx context.Context, item *queue.Item, summary *Summary, imageURL string) error {
	if err := m.store.MarkResolved(ctx, item.ID, imageURL); err != nil {
		return err
	}
	item.Status = queue.StatusResolved
	item.ImageURL = imageURL
	m.emit(Event{Type: EventItemResolved, Item: *item, URL: imageURL})

	path := m.organizer.CoverPath(item, imageURL)
	keep, err := m.organizer.Exists(path)
	if err != nil {
		m.markFailed(ctx, item, summary, err)
		return nil
	}
	if keep {
		if err := m.store.MarkExists(ctx, item.ID, path); err != nil {
			return err
		}
		item.Status = queue.StatusExists
		item.SavedPath = path
		summary.Exists++
		m.emit(Event{Type: EventItemExists, Item: *item, Path: path})
		return nil
	}

	data, err := m.downloader.GetBytes(ctx, imageURL)
	if err != nil {
		if services.IsCancelled(err) {
			return m.abandon(ctx, item, err)
		}
		m.markFailed(ctx, item, summary, err)
		return nil
	}
	if err := m.organizer.Save(path, data); err != nil {
		m.markFailed(ctx, item, summary, err)
		return nil
	}

	if err := m.store.MarkSaved(ctx, item.ID, path); err != nil {
		return err
	}
	item.Status = queue.StatusSaved
	item.SavedPath = path
	summary.Saved++
	m.emit(Event{Type: EventItemSaved, Item: *item, Path: path})
	return nil
}

func (m *Manager) markFailed(ctx context.Context, item *queue.Item, summary *Summary, cause error) {
	message := "unknown failure"
	if cause != nil {
		message = cause.Error()
	}
	if err := m.store.MarkFailed(context.WithoutCancel(ctx), item.ID, message); err != nil {
		m.logger.Error("recording failure failed",
			logging.String("item", item.Label()),
			logging.Error(err))
	}
	item.Status = queue.StatusFailed
	item.ErrorMessage = message
	summary.Failed++
	m.emit(Event{Type: EventItemFailed, Item: *item, Err: cause})
	if err := m.notifier.NotifyItemFailed(context.WithoutCancel(ctx), item.Label(), cause); err != nil {
		m.logger.Warn("failure notification failed", logging.Error(err))
	}
}

// abandon returns a cancelled item to pending so the next run retries it.
func (m *Manager) abandon(ctx context.Context, item *queue.Item, cause error) error {
	if err := m.store.ResetForRedo(context.WithoutCancel(ctx), item.ID); err != nil {
		m.logger.Error("resetting cancelled item failed",
			logging.String("item", item.Label()),
			logging.Error(err))
	}
	if cause != nil {
		return cause
	}
	return ctx.Err()
}

func (m *Manager) emit(event Event) {
	select {
	case m.events <- event:
	default:
		// A stalled consumer must not stall the run.
		m.logger.Debug("event dropped", logging.String("type", string(event.Type)))
	}
}
