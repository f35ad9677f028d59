// Package pipeline wires the fetch, aggregation, catalog, event and export
// stages into one runnable unit. A single Run brings every month from the
// configured start up to the current month.
package pipeline

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"boxoffice/internal/aggregate"
	"boxoffice/internal/amqp"
	"boxoffice/internal/config"
	"boxoffice/internal/core"
	"boxoffice/internal/dimension"
	"boxoffice/internal/export"
	"boxoffice/internal/fetch"
	"boxoffice/internal/merge"
	"boxoffice/internal/movielist"
	"boxoffice/internal/store"
)

// Config holds the pipeline settings.
type Config struct {
	// StartMonth is the first month to process (YYYY-MM).
	StartMonth string

	// Mode selects incremental merging or a full rebuild per month.
	Mode merge.Mode

	// Policy tunes the per-month processing window.
	Policy merge.Policy
}

// DefaultConfig returns sensible defaults: incremental merging from the
// current month only, no catalog maintenance.
func DefaultConfig(clock merge.Clock) Config {
	if clock == nil {
		clock = merge.SystemClock{}
	}
	today := clock.Today()
	return Config{
		StartMonth: fmt.Sprintf("%04d-%02d", today.Year(), int(today.Month())),
		Mode:       merge.ModeIncremental,
	}
}

// Exporter pushes a finished month to an external report target.
type Exporter interface {
	ExportMonth(ctx context.Context, doc *core.MonthDoc) error
}

// Pipeline is the top-level orchestrator.
type Pipeline struct {
	store    store.Store
	merger   *merge.Merger
	catalog  *movielist.Builder
	events   *amqp.Client
	exporter Exporter
	clock    merge.Clock
	config   Config
	logger   *slog.Logger
}

// New assembles a pipeline. The events client and exporter are optional.
func New(
	st store.Store,
	merger *merge.Merger,
	catalog *movielist.Builder,
	events *amqp.Client,
	exporter Exporter,
	clock merge.Clock,
	cfg Config,
	logger *slog.Logger,
) *Pipeline {
	if clock == nil {
		clock = merge.SystemClock{}
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Pipeline{
		store:    st,
		merger:   merger,
		catalog:  catalog,
		events:   events,
		exporter: exporter,
		clock:    clock,
		config:   cfg,
		logger:   logger,
	}
}

// FromConfig builds the full collaborator graph from environment
// configuration. The caller owns the returned store and should Close it.
func FromConfig(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*Pipeline, store.Store, error) {
	st, err := store.Open(store.Backend(cfg.StoreBackend), cfg.SQLiteDBPath)
	if err != nil {
		return nil, nil, fmt.Errorf("open store: %w", err)
	}

	opts := []fetch.Option{
		fetch.WithTimeout(cfg.FetchTimeout),
		fetch.WithWorkers(cfg.FetchWorkers),
		fetch.WithLogger(logger),
	}
	if cfg.DetailedFeed {
		opts = append(opts, fetch.WithDetailedFeed())
	}
	fetcher := fetch.NewClient(cfg.SnapshotBaseURL, opts...)

	chainCfg := dimension.DefaultChainConfig()
	if cfg.ChainConfigPath != "" {
		chainCfg, err = dimension.LoadChainConfig(cfg.ChainConfigPath)
		if err != nil {
			st.Close()
			return nil, nil, fmt.Errorf("load chain config: %w", err)
		}
	}

	var strategy dimension.Strategy
	switch cfg.ChainStrategy {
	case config.StrategyToken:
		strategy = dimension.FirstToken{}
	default:
		strategy = dimension.NewListMatch(chainCfg.Chains)
	}

	var discount *aggregate.DiscountModel
	if cfg.ApplyDiscount {
		discount = aggregate.NewDiscountModel(chainCfg.BlockRates)
	}

	clock := merge.SystemClock{}
	merger := merge.New(st, fetcher, strategy, discount, clock, logger)

	var catalog *movielist.Builder
	if cfg.MovieListEnabled {
		catalog = movielist.NewBuilder(st, fetcher, cfg.MovieListStart, clock.Today, logger)
	}

	var events *amqp.Client
	if cfg.AMQPURL != "" {
		events, err = amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
		if err != nil {
			st.Close()
			return nil, nil, fmt.Errorf("connect AMQP: %w", err)
		}
	}

	var exporter Exporter
	if cfg.ReportSpreadsheetID != "" {
		exporter, err = export.NewSheetsFromEnv(ctx)
		if err != nil {
			if events != nil {
				events.Close()
			}
			st.Close()
			return nil, nil, fmt.Errorf("init sheets exporter: %w", err)
		}
	}

	pcfg := Config{
		StartMonth: cfg.StartMonth,
		Mode:       merge.Mode(cfg.Mode),
		Policy: merge.Policy{
			ForceToday:     cfg.ForceToday,
			RefetchCurrent: cfg.RefetchCurrent,
			FutureBuffer:   cfg.FutureBuffer,
			RebuildAll:     cfg.RebuildAll,
		},
	}

	return New(st, merger, catalog, events, exporter, clock, pcfg, logger), st, nil
}

// Run processes every month from the start month through the current month,
// oldest first, then refreshes the movie catalog. Month failures abort the
// run; catalog and event failures are logged and do not.
func (p *Pipeline) Run(ctx context.Context) error {
	start, err := time.Parse("2006-01", p.config.StartMonth)
	if err != nil {
		return fmt.Errorf("parse start month %q: %w", p.config.StartMonth, err)
	}

	today := p.clock.Today()
	current := time.Date(today.Year(), today.Month(), 1, 0, 0, 0, 0, today.Location())

	p.logger.Info("pipeline run starting",
		"start_month", p.config.StartMonth, "mode", string(p.config.Mode))

	for cursor := start; !cursor.After(current); cursor = cursor.AddDate(0, 1, 0) {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := p.processMonth(ctx, cursor.Year(), cursor.Month()); err != nil {
			return err
		}
	}

	if p.catalog != nil {
		if err := p.catalog.Update(ctx); err != nil {
			p.logger.Error("movie catalog update failed", "error", err)
		}
	}

	p.logger.Info("pipeline run finished")
	return nil
}

func (p *Pipeline) processMonth(ctx context.Context, year int, month time.Month) error {
	// Past months get the base policy; current-month knobs only apply to the
	// month still in flight.
	policy := p.config.Policy
	today := p.clock.Today()
	if today.Year() != year || today.Month() != month {
		policy.ForceToday = false
		policy.RefetchCurrent = false
	}

	monthKey := fmt.Sprintf("%04d-%02d", year, int(month))
	before, err := p.store.LoadMonth(ctx, monthKey)
	if err != nil {
		return err
	}

	if err := p.merger.ProcessMonth(ctx, year, month, p.config.Mode, policy); err != nil {
		return fmt.Errorf("process month %04d-%02d: %w", year, int(month), err)
	}

	doc, err := p.store.LoadMonth(ctx, monthKey)
	if err != nil || doc == nil {
		return err
	}
	if unchanged(before, doc) {
		// Skipped (locked or future) month: nothing new to announce.
		return nil
	}

	covered := datesOf(before)
	for date, movies := range datesOf(doc) {
		if covered[date] == 0 {
			p.publish(ctx, amqp.NewDayProcessedEvent(date, movies))
		}
	}
	p.publish(ctx, amqp.NewMonthSavedEvent(monthKey, len(doc.Movies)))

	if p.exporter != nil {
		if err := p.exporter.ExportMonth(ctx, doc); err != nil {
			p.logger.Error("month export failed", "month", monthKey, "error", err)
		}
	}
	return nil
}

// unchanged reports whether two stored month documents marshal identically.
// The document encoding is deterministic, so byte equality is exact.
func unchanged(before, after *core.MonthDoc) bool {
	if before == nil || after == nil {
		return false
	}
	a, errA := json.Marshal(before)
	b, errB := json.Marshal(after)
	return errA == nil && errB == nil && bytes.Equal(a, b)
}

// datesOf maps each covered date to the number of movies carrying it.
func datesOf(doc *core.MonthDoc) map[string]int {
	out := make(map[string]int)
	if doc == nil {
		return out
	}
	for _, mm := range doc.Movies {
		for date := range mm.Daily {
			out[date]++
		}
	}
	return out
}

func (p *Pipeline) publish(ctx context.Context, event *amqp.RunEvent) {
	if p.events == nil {
		return
	}
	if err := p.events.PublishEvent(ctx, event); err != nil {
		p.logger.Error("event publish failed", "kind", event.Kind, "error", err)
	}
}
