package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/mattn/go-isatty"

	"sleeve/internal/aggregate"
	"sleeve/internal/config"
	"sleeve/internal/fetch"
	"sleeve/internal/notifications"
	"sleeve/internal/organizer"
	"sleeve/internal/providers"
	"sleeve/internal/queue"
	"sleeve/internal/resolve"
	"sleeve/internal/selection"
	"sleeve/internal/workflow"
)

type pipelineOptions struct {
	noInput   bool
	alwaysAsk bool
	overwrite bool
	yearMatch bool
}

// buildProviders assembles the enabled provider adapters around a shared
// HTTP client and response cache.
func buildProviders(cfg *config.Config, client *fetch.Client) []providers.Provider {
	enabled := make([]providers.Provider, 0, 3)
	if cfg.Providers.ITunes {
		enabled = append(enabled, providers.NewITunes(client))
	}
	if cfg.Providers.Deezer {
		enabled = append(enabled, providers.NewDeezer(client, cfg.Providers.DeezerReleaseDates))
	}
	if cfg.Providers.MusicBrainz {
		enabled = append(enabled, providers.NewMusicBrainz(client, cfg.Providers.UserAgent))
	}
	return enabled
}

// runPipeline processes the registry's pending items and prints a summary.
func runPipeline(ctx context.Context, cfg *config.Config, store *queue.Store, logger *slog.Logger, opts pipelineOptions) error {
	if opts.overwrite {
		cfg.Output.OverwriteExisting = true
	}
	if opts.alwaysAsk {
		cfg.Selection.AlwaysAsk = true
	}

	client := fetch.New(fetch.Options{
		Timeout:   time.Duration(cfg.Providers.RequestTimeout) * time.Second,
		UserAgent: cfg.Providers.UserAgent,
		Cache:     fetch.NewCache(),
	})

	enabled := buildProviders(cfg, client)
	if len(enabled) == 0 {
		return fmt.Errorf("no providers enabled; enable at least one in the [providers] config section")
	}

	aggregator := aggregate.New(aggregate.Options{
		Providers:     enabled,
		Limit:         cfg.Providers.LimitPerProvider,
		Parallelism:   cfg.Providers.Parallelism,
		YearTolerance: cfg.Selection.YearTolerance,
		FilterByYear:  opts.yearMatch,
		Logger:        logger,
	})

	var chooser resolve.Chooser
	if !opts.noInput && isatty.IsTerminal(os.Stdin.Fd()) {
		chooser = newInteractiveChooser(os.Stdin, os.Stdout)
	}

	resolver := resolve.New(resolve.Options{
		Searcher: aggregator,
		Chooser:  chooser,
		Policy: selection.Policy{
			Threshold:     cfg.Selection.SimilarityThreshold,
			YearTolerance: cfg.Selection.YearTolerance,
		},
		AutoPick:  cfg.Selection.AutoPick,
		AlwaysAsk: cfg.Selection.AlwaysAsk,
		Logger:    logger,
	})

	manager := workflow.NewManager(
		cfg,
		store,
		resolver,
		client,
		organizer.New(cfg, logger),
		notifications.NewService(cfg),
		logger,
	)

	done := make(chan struct{})
	go func() {
		defer close(done)
		for event := range manager.Events() {
			printEvent(event)
		}
	}()

	summary, err := manager.Run(ctx)
	<-done
	printSummary(summary)
	return err
}

func printEvent(event workflow.Event) {
	label := event.Item.Label()
	switch event.Type {
	case workflow.EventItemStarted:
		fmt.Printf("→ %s\n", label)
	case workflow.EventItemResolved:
		fmt.Printf("  resolved %s\n", event.URL)
	case workflow.EventItemSaved:
		fmt.Printf("  saved %s\n", event.Path)
	case workflow.EventItemExists:
		fmt.Printf("  exists %s\n", event.Path)
	case workflow.EventItemSkipped:
		fmt.Printf("  skipped\n")
	case workflow.EventItemNotFound:
		fmt.Printf("  not found\n")
	case workflow.EventItemFailed:
		fmt.Printf("  failed: %v\n", event.Err)
	}
}

func printSummary(summary workflow.Summary) {
	rows := [][]string{
		{"Total", fmt.Sprint(summary.Total)},
		{"Saved", fmt.Sprint(summary.Saved)},
		{"Already present", fmt.Sprint(summary.Exists)},
		{"Skipped", fmt.Sprint(summary.Skipped)},
		{"Not found", fmt.Sprint(summary.NotFound)},
		{"Failed", fmt.Sprint(summary.Failed)},
		{"Duration", summary.Duration.Round(time.Second).String()},
	}
	fmt.Println(renderTable([]string{"Result", "Count"}, rows, []columnAlignment{alignLeft, alignRight}))
}
