// Package movielist maintains the movie catalog derived from daily snapshots:
// which titles ran, in which languages, over which date range.
package movielist

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sort"
	"strconv"
	"time"

	"boxoffice/internal/core"
	"boxoffice/internal/snapshot"
	"boxoffice/internal/store"
)

// Entry is one catalog row: a base title, every language it was seen in, and
// the first and last date it appeared.
type Entry struct {
	Movie     string   `json:"movie"`
	Languages []string `json:"languages"`
	Dates     []string `json:"dates"`
}

// Catalog is the persisted movie list document.
type Catalog struct {
	LastUpdated string  `json:"last_updated"`
	Movies      []Entry `json:"movies"`
}

// Fetcher is the remote-source collaborator; (nil, nil) means no data.
type Fetcher interface {
	FetchDay(ctx context.Context, date string) ([]byte, error)
}

// Builder updates the catalog incrementally: dates already covered by some
// movie's range are skipped on re-runs, except today, which is always
// re-checked while the day is still changing.
type Builder struct {
	store     store.MovieListStore
	fetcher   Fetcher
	parser    *snapshot.Parser
	startDate string
	today     func() time.Time
	logger    *slog.Logger
}

// NewBuilder creates a catalog builder scanning from startDate (ISO date).
func NewBuilder(st store.MovieListStore, fetcher Fetcher, startDate string, today func() time.Time, logger *slog.Logger) *Builder {
	if logger == nil {
		logger = slog.Default()
	}
	return &Builder{
		store:     st,
		fetcher:   fetcher,
		parser:    snapshot.NewParser(logger),
		startDate: startDate,
		today:     today,
		logger:    logger,
	}
}

type movieSpan struct {
	languages map[string]struct{}
	first     string
	last      string
}

// Update scans new dates into the catalog and persists it.
func (b *Builder) Update(ctx context.Context) error {
	catalog, err := b.load(ctx)
	if err != nil {
		return err
	}

	spans := make(map[string]*movieSpan)
	for _, e := range catalog.Movies {
		if len(e.Dates) == 0 {
			continue
		}
		span := &movieSpan{
			languages: make(map[string]struct{}),
			first:     e.Dates[0],
			last:      e.Dates[len(e.Dates)-1],
		}
		for _, l := range e.Languages {
			span.languages[l] = struct{}{}
		}
		spans[e.Movie] = span
	}

	start := b.startDate
	for _, span := range spans {
		if span.first < start {
			start = span.first
		}
	}

	current, err := time.Parse(time.DateOnly, start)
	if err != nil {
		return fmt.Errorf("invalid start date %q: %w", start, err)
	}
	today := b.today()
	todayStr := today.Format(time.DateOnly)

	for d := current; d.Format(time.DateOnly) <= todayStr; d = d.AddDate(0, 0, 1) {
		date := d.Format(time.DateOnly)
		if date != todayStr && covered(spans, date) {
			continue
		}

		body, err := b.fetcher.FetchDay(ctx, date)
		if err != nil {
			return err
		}
		if body == nil {
			continue
		}
		day, perr := b.parser.Parse(date, body)
		if perr != nil {
			b.logger.Warn("skipping malformed day in catalog scan", "date", date, "error", perr)
			continue
		}

		for rawKey := range day.Movies {
			key := core.ParseMovieKey(rawKey)
			span, ok := spans[key.Title]
			if !ok {
				span = &movieSpan{
					languages: make(map[string]struct{}),
					first:     date,
					last:      date,
				}
				spans[key.Title] = span
			}
			span.languages[key.Language] = struct{}{}
			if date < span.first {
				span.first = date
			}
			if date > span.last {
				span.last = date
			}
		}
	}

	catalog = buildCatalog(spans)
	catalog.LastUpdated = today.Format("2006-01-02 15:04:05")

	data, err := json.Marshal(catalog)
	if err != nil {
		return fmt.Errorf("encode movie list: %w", err)
	}
	if err := b.store.SaveMovieList(ctx, data); err != nil {
		return err
	}

	b.logger.Info("movie list updated", "movies", len(catalog.Movies))
	return nil
}

func (b *Builder) load(ctx context.Context) (Catalog, error) {
	data, err := b.store.LoadMovieList(ctx)
	if err != nil {
		return Catalog{}, err
	}
	if data == nil {
		return Catalog{}, nil
	}
	var catalog Catalog
	if err := json.Unmarshal(data, &catalog); err != nil {
		b.logger.Error("STORED MOVIE LIST IS CORRUPT, starting from scratch", "error", err)
		return Catalog{}, nil
	}
	return catalog, nil
}

func covered(spans map[string]*movieSpan, date string) bool {
	for _, span := range spans {
		if date >= span.first && date <= span.last {
			return true
		}
	}
	return false
}

// buildCatalog orders entries by latest first-seen month, then by language
// count, then by how many days the title has been running.
func buildCatalog(spans map[string]*movieSpan) Catalog {
	entries := make([]Entry, 0, len(spans))
	for title, span := range spans {
		langs := make([]string, 0, len(span.languages))
		for l := range span.languages {
			langs = append(langs, l)
		}
		sort.Strings(langs)
		entries = append(entries, Entry{
			Movie:     title,
			Languages: langs,
			Dates:     []string{span.first, span.last},
		})
	}

	sort.SliceStable(entries, func(i, j int) bool {
		mi, mj := firstMonth(entries[i]), firstMonth(entries[j])
		if mi != mj {
			return mi > mj
		}
		if len(entries[i].Languages) != len(entries[j].Languages) {
			return len(entries[i].Languages) > len(entries[j].Languages)
		}
		if di, dj := daysAvailable(entries[i]), daysAvailable(entries[j]); di != dj {
			return di > dj
		}
		return entries[i].Movie < entries[j].Movie
	})

	return Catalog{Movies: entries}
}

func firstMonth(e Entry) int {
	if len(e.Dates) == 0 || len(e.Dates[0]) < 7 {
		return 0
	}
	m, err := strconv.Atoi(e.Dates[0][5:7])
	if err != nil {
		return 0
	}
	return m
}

func daysAvailable(e Entry) int {
	first, err1 := time.Parse(time.DateOnly, e.Dates[0])
	last, err2 := time.Parse(time.DateOnly, e.Dates[len(e.Dates)-1])
	if err1 != nil || err2 != nil {
		return 0
	}
	return int(last.Sub(first).Hours() / 24)
}
