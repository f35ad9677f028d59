// Package merge applies daily aggregation results to persistent monthly
// rollups. It is the idempotency-critical part of the pipeline: re-running
// over already-processed days, or re-deriving a month from stored data, must
// reproduce the same document without double-counting.
package merge

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"boxoffice/internal/aggregate"
	"boxoffice/internal/core"
	"boxoffice/internal/dimension"
	"boxoffice/internal/snapshot"
	"boxoffice/internal/store"
)

// Mode selects how a month is brought up to date.
type Mode string

const (
	// ModeIncremental fetches only dates whose daily entries are missing and
	// trusts everything already stored.
	ModeIncremental Mode = "incremental"
	// ModeRebuild recomputes the whole month from raw daily snapshots. It is
	// fully idempotent: any number of re-runs yields identical output.
	ModeRebuild Mode = "rebuild"
)

// Valid reports whether the mode is known.
func (m Mode) Valid() bool {
	return m == ModeIncremental || m == ModeRebuild
}

// Policy tunes the processing window.
type Policy struct {
	// ForceToday refreshes only the current date while trusting all other
	// stored days. Applies to the current month only.
	ForceToday bool
	// RefetchCurrent refetches every day of the current month instead of
	// reusing stored raw snapshots.
	RefetchCurrent bool
	// FutureBuffer extends the current month's window this many days past
	// today. Advance-sales feeds publish data for upcoming dates.
	FutureBuffer int
	// RebuildAll ignores the locked-month rule and reprocesses past months.
	RebuildAll bool
}

// Fetcher is the remote-source collaborator. A (nil, nil) return is the
// missing-day signal.
type Fetcher interface {
	FetchDay(ctx context.Context, date string) ([]byte, error)
}

// BatchFetcher lets rebuilds pull many dates concurrently. Missing days are
// absent from the result map.
type BatchFetcher interface {
	FetchBatch(ctx context.Context, dates []string, workers int) (map[string][]byte, error)
}

// Merger folds daily snapshots into monthly documents.
type Merger struct {
	store    store.Store
	fetcher  Fetcher
	parser   *snapshot.Parser
	strategy dimension.Strategy
	discount *aggregate.DiscountModel
	clock    Clock
	logger   *slog.Logger
}

// New builds a Merger. A nil discount model disables chain adjustment; a nil
// clock uses the system clock in the reference timezone.
func New(st store.Store, fetcher Fetcher, strategy dimension.Strategy, discount *aggregate.DiscountModel, clock Clock, logger *slog.Logger) *Merger {
	if clock == nil {
		clock = SystemClock{}
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Merger{
		store:    st,
		fetcher:  fetcher,
		parser:   snapshot.NewParser(logger),
		strategy: strategy,
		discount: discount,
		clock:    clock,
		logger:   logger,
	}
}

// Rebuild computes a month document purely from the given raw days. It never
// reads prior cumulative state, so it can run any number of times with
// identical output.
func (m *Merger) Rebuild(monthKey string, rawDays map[string]*snapshot.Day) *core.MonthDoc {
	accum := newMonthAccum(monthKey)
	for _, date := range sortedDates(rawDays) {
		accum.mergeDay(rawDays[date], m.strategy, m.discount, true)
	}
	return accum.finalize()
}

// ProcessMonth brings one calendar month up to date and persists the result.
// Future months are never processed; past months with an existing document
// are locked unless the policy says otherwise.
func (m *Merger) ProcessMonth(ctx context.Context, year int, month time.Month, mode Mode, policy Policy) error {
	if !mode.Valid() {
		return fmt.Errorf("unknown merge mode %q", mode)
	}

	monthKey := core.MonthKey(year, month)
	today := m.clock.Today()
	monthStart := time.Date(year, month, 1, 0, 0, 0, 0, today.Location())

	if monthStart.After(today) {
		m.logger.Info("skipping future month", "month", monthKey)
		return nil
	}

	isCurrent := today.Year() == year && today.Month() == month
	if !isCurrent && !policy.RebuildAll && mode == ModeIncremental {
		exists, err := m.store.HasMonth(ctx, monthKey)
		if err != nil {
			return fmt.Errorf("check locked month %s: %w", monthKey, err)
		}
		if exists {
			m.logger.Info("skipping locked month", "month", monthKey)
			return nil
		}
	}

	window := monthWindow(year, month, today, isCurrent, policy.FutureBuffer)

	var (
		doc *core.MonthDoc
		err error
	)
	switch mode {
	case ModeRebuild:
		doc, err = m.rebuildMonth(ctx, monthKey, window, isCurrent, policy)
	case ModeIncremental:
		doc, err = m.incrementalMonth(ctx, monthKey, window, isCurrent, policy)
	}
	if err != nil {
		return err
	}

	doc.LastUpdated = Stamp(m.clock)
	if err := m.store.SaveMonth(ctx, doc); err != nil {
		return err
	}

	m.logger.Info("month processed",
		"month", monthKey, "mode", string(mode), "movies", len(doc.Movies))
	return nil
}

// rebuildMonth re-derives the whole month from raw snapshots. Stored raw days
// are the source of truth; window dates without a stored snapshot (or all
// dates, when the policy forces a refetch) are fetched first.
func (m *Merger) rebuildMonth(ctx context.Context, monthKey string, window []string, isCurrent bool, policy Policy) (*core.MonthDoc, error) {
	stored, err := m.store.ListRawDays(ctx, monthKey)
	if err != nil {
		return nil, err
	}
	have := make(map[string]bool, len(stored))
	for _, d := range stored {
		have[d] = true
	}

	refetchAll := isCurrent && policy.RefetchCurrent
	var missing []string
	for _, date := range window {
		if have[date] && !refetchAll {
			continue
		}
		missing = append(missing, date)
	}
	if err := m.fetchAndStoreAll(ctx, missing); err != nil {
		return nil, err
	}

	rawDays, err := m.loadRawDays(ctx, monthKey)
	if err != nil {
		return nil, err
	}
	return m.Rebuild(monthKey, rawDays), nil
}

// incrementalMonth loads the existing document, replays stored raw days to
// seed the uncapped dimension tables, fetches only window dates that are not
// already present, and re-caps after merging. Existing daily entries are
// preserved verbatim.
func (m *Merger) incrementalMonth(ctx context.Context, monthKey string, window []string, isCurrent bool, policy Policy) (*core.MonthDoc, error) {
	doc, err := m.store.LoadMonth(ctx, monthKey)
	if err != nil {
		return nil, err
	}

	// A force-refreshed date is fetched first and replaces stored data only
	// when the fetch succeeds. On a missing-day result the stored entry
	// survives untouched, so a source hiccup never shrinks the saved month.
	refreshed := make(map[string]*snapshot.Day)
	if isCurrent && policy.ForceToday {
		date := m.clock.Today().Format(time.DateOnly)
		day, err := m.fetchParsed(ctx, date)
		if err != nil {
			return nil, err
		}
		if day != nil {
			refreshed[date] = day
		} else {
			m.logger.Warn("refresh fetch came back empty, keeping stored day", "date", date)
		}
	}
	skip := make(map[string]bool, len(refreshed))
	for date := range refreshed {
		skip[date] = true
	}

	accum := newMonthAccum(monthKey)
	accum.seedDaily(doc, skip)

	rawDays, err := m.loadRawDays(ctx, monthKey)
	if err != nil {
		return nil, err
	}
	for _, date := range sortedDates(rawDays) {
		if skip[date] {
			continue
		}
		accum.mergeDay(rawDays[date], m.strategy, m.discount, true)
	}
	for _, date := range sortedDates(refreshed) {
		accum.mergeDay(refreshed[date], m.strategy, m.discount, true)
	}

	for _, date := range window {
		if skip[date] || accum.hasAnyDay(date) || rawDays[date] != nil {
			continue
		}
		day, err := m.fetchParsed(ctx, date)
		if err != nil {
			return nil, err
		}
		if day == nil {
			// Missing day: absent from daily, retried on the next run. Never
			// recorded as a zeroed entry, which would wrongly read as
			// already-processed.
			continue
		}
		accum.mergeDay(day, m.strategy, m.discount, true)
	}

	return accum.finalize(), nil
}

// fetchAndStoreAll fetches the given dates and persists the raw snapshots
// that exist. A batch-capable fetcher pulls them concurrently; the store
// writes stay single-threaded either way.
func (m *Merger) fetchAndStoreAll(ctx context.Context, dates []string) error {
	if len(dates) == 0 {
		return nil
	}

	if bf, ok := m.fetcher.(BatchFetcher); ok {
		bodies, err := bf.FetchBatch(ctx, dates, 0)
		if err != nil {
			return err
		}
		for _, date := range dates {
			if body := bodies[date]; body != nil {
				if err := m.store.SaveRawDay(ctx, date, body); err != nil {
					return err
				}
			}
		}
		return nil
	}

	for _, date := range dates {
		body, err := m.fetcher.FetchDay(ctx, date)
		if err != nil {
			return err
		}
		if body == nil {
			continue
		}
		if err := m.store.SaveRawDay(ctx, date, body); err != nil {
			return err
		}
	}
	return nil
}

// fetchParsed fetches, persists and parses a date. A missing or unparseable
// day returns (nil, nil).
func (m *Merger) fetchParsed(ctx context.Context, date string) (*snapshot.Day, error) {
	body, err := m.fetcher.FetchDay(ctx, date)
	if err != nil {
		return nil, err
	}
	if body == nil {
		return nil, nil
	}
	day, perr := m.parser.Parse(date, body)
	if perr != nil {
		m.logger.Warn("malformed day document, treating as missing", "date", date, "error", perr)
		return nil, nil
	}
	if err := m.store.SaveRawDay(ctx, date, body); err != nil {
		return nil, err
	}
	return day, nil
}

// loadRawDays parses every stored raw snapshot of a month. Snapshots that no
// longer parse are skipped with a warning.
func (m *Merger) loadRawDays(ctx context.Context, monthKey string) (map[string]*snapshot.Day, error) {
	dates, err := m.store.ListRawDays(ctx, monthKey)
	if err != nil {
		return nil, err
	}
	out := make(map[string]*snapshot.Day, len(dates))
	for _, date := range dates {
		body, err := m.store.LoadRawDay(ctx, date)
		if err != nil {
			return nil, err
		}
		if body == nil {
			continue
		}
		day, perr := m.parser.Parse(date, body)
		if perr != nil {
			m.logger.Warn("stored raw day no longer parses, skipping", "date", date, "error", perr)
			continue
		}
		out[date] = day
	}
	return out, nil
}

// monthWindow returns the ISO dates of the month to process, capped at today
// (plus the future buffer) for the current month and never crossing the month
// boundary.
func monthWindow(year int, month time.Month, today time.Time, isCurrent bool, futureBuffer int) []string {
	start := time.Date(year, month, 1, 0, 0, 0, 0, today.Location())
	end := start.AddDate(0, 1, -1)
	if isCurrent {
		limit := today.AddDate(0, 0, futureBuffer)
		if limit.Before(end) {
			end = limit
		}
	}

	var dates []string
	for d := start; !d.After(end); d = d.AddDate(0, 0, 1) {
		dates = append(dates, d.Format(time.DateOnly))
	}
	return dates
}

func sortedDates(days map[string]*snapshot.Day) []string {
	dates := make([]string, 0, len(days))
	for d := range days {
		dates = append(dates, d)
	}
	sort.Strings(dates)
	return dates
}
