package merge

import (
	"sort"

	"boxoffice/internal/aggregate"
	"boxoffice/internal/core"
	"boxoffice/internal/dimension"
	"boxoffice/internal/snapshot"
)

// monthAccum accumulates one month in uncapped form. The persisted document's
// dimension tables are capped to their top 10 and must never be summed onto,
// so every merge runs through this intermediate representation and the cap is
// applied exactly once, in finalize.
type monthAccum struct {
	monthKey string
	movies   map[string]*movieAccum
}

type movieAccum struct {
	daily  map[string]core.DailySummary
	cities *core.DimTable
	states *core.DimTable
	chains *core.DimTable
}

func newMonthAccum(monthKey string) *monthAccum {
	return &monthAccum{monthKey: monthKey, movies: make(map[string]*movieAccum)}
}

func (a *monthAccum) movie(key string) *movieAccum {
	if m, ok := a.movies[key]; ok {
		return m
	}
	m := &movieAccum{
		daily:  make(map[string]core.DailySummary),
		cities: core.NewDimTable(),
		states: core.NewDimTable(),
		chains: core.NewDimTable(),
	}
	a.movies[key] = m
	return m
}

// hasDay is the per-(movie, date) idempotence guard.
func (a *monthAccum) hasDay(movieKey, date string) bool {
	m, ok := a.movies[movieKey]
	if !ok {
		return false
	}
	_, ok = m.daily[date]
	return ok
}

// hasAnyDay reports whether any movie already carries the date. Incremental
// runs use it as the conservative whole-store fetch guard.
func (a *monthAccum) hasAnyDay(date string) bool {
	for _, m := range a.movies {
		if _, ok := m.daily[date]; ok {
			return true
		}
	}
	return false
}

// seedDaily copies an existing document's daily entries verbatim. A stored
// daily entry is final; it is never recomputed. Dates in skip are left out so
// a forced refresh can rebuild them.
func (a *monthAccum) seedDaily(doc *core.MonthDoc, skip map[string]bool) {
	if doc == nil {
		return
	}
	for movieKey, mm := range doc.Movies {
		for date, day := range mm.Daily {
			if skip[date] {
				continue
			}
			a.movie(movieKey).daily[date] = day
		}
	}
}

// mergeDay folds one parsed day into the accumulator. Dimension sums are
// added before any cap; daily entries are written at most once per
// (movie, date). Strategy and discount shape the chain table the same way on
// every path, so incremental and rebuild converge on identical content.
func (a *monthAccum) mergeDay(day *snapshot.Day, strategy dimension.Strategy, discount *aggregate.DiscountModel, withDaily bool) {
	movieKeys := day.MovieKeys()
	sort.Strings(movieKeys)

	for _, movieKey := range movieKeys {
		records := day.Movies[movieKey]
		result := aggregate.FoldDay(records, strategy)
		if result.Empty() {
			continue
		}
		if discount != nil {
			discount.Apply(result.Chains)
		}

		m := a.movie(movieKey)
		if withDaily && !a.hasDay(movieKey, day.Date) {
			m.daily[day.Date] = result.Summary
		}
		m.cities.Merge(result.Cities)
		m.states.Merge(result.States)
		m.chains.Merge(result.Chains)
	}
}

// finalize produces the persistable document: the monthly summary is the sum
// of the daily entries (conservation), occupancy is re-derived from summed
// sold/totalSeats, and the dimension cap is applied here and nowhere else.
func (a *monthAccum) finalize() *core.MonthDoc {
	doc := core.NewMonthDoc(a.monthKey)

	for movieKey, m := range a.movies {
		if len(m.daily) == 0 {
			continue
		}
		mm := core.NewMovieMonth()
		for date, day := range m.daily {
			mm.Daily[date] = day
			mm.Summary.Shows += day.Shows
			mm.Summary.Sold += day.Sold
			mm.Summary.TotalSeats += day.TotalSeats
			mm.Summary.Gross += day.Gross
		}
		mm.Summary.Gross = core.Round2(mm.Summary.Gross)
		mm.Summary.Occupancy = core.Occupancy(mm.Summary.Sold, mm.Summary.TotalSeats)

		m.cities.FinalizeOccupancy()
		m.states.FinalizeOccupancy()
		m.chains.FinalizeOccupancy()
		mm.Cities = aggregate.Top10(m.cities)
		mm.States = aggregate.Top10(m.states)
		mm.Chains = aggregate.Top10(m.chains)

		doc.Movies[movieKey] = mm
	}

	return doc
}
