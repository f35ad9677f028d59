// Package aggregate folds show records into daily summaries and dimension
// tables, and reduces dimension tables to ranked top-N form.
package aggregate

import (
	"boxoffice/internal/core"
	"boxoffice/internal/dimension"
)

// DayResult is the per-movie outcome of folding one day's show records: the
// daily summary plus that day's uncapped dimension subtotals.
type DayResult struct {
	Summary core.DailySummary
	Cities  *core.DimTable
	States  *core.DimTable
	Chains  *core.DimTable
}

// FoldDay folds one movie's show records for one day. It is pure: the same
// record list always yields the same result, with no dependence on prior
// state. Occupancy for every scope is computed once at the end from the summed
// sold/totalSeats, never by averaging per-show values.
func FoldDay(records []core.ShowRecord, strategy dimension.Strategy) DayResult {
	res := DayResult{
		Cities: core.NewDimTable(),
		States: core.NewDimTable(),
		Chains: core.NewDimTable(),
	}

	venues := make(map[string]struct{})
	cities := make(map[string]struct{})

	for _, rec := range records {
		res.Summary.Shows++
		res.Summary.Sold += rec.Sold
		res.Summary.TotalSeats += rec.TotalSeats
		res.Summary.Gross += rec.Gross

		venues[rec.Venue] = struct{}{}
		city := dimension.City(rec)
		state := dimension.State(rec)
		cities[city] = struct{}{}

		occ := dimension.ShowOccupancy(rec)
		if core.IsFastFilling(occ) {
			res.Summary.FastFilling++
		}
		if core.IsHousefull(occ) {
			res.Summary.Housefull++
		}

		cityAgg := res.Cities.Upsert(city)
		addShow(cityAgg, rec)
		if cityAgg.State == "" {
			cityAgg.State = state
		}

		addShow(res.States.Upsert(state), rec)

		if chain, ok := strategy.Chain(rec.Venue); ok {
			addShow(res.Chains.Upsert(chain), rec)
		}
	}

	res.Summary.Venues = len(venues)
	res.Summary.Cities = len(cities)
	res.Summary.Occupancy = core.Occupancy(res.Summary.Sold, res.Summary.TotalSeats)
	res.Summary.Gross = core.Round2(res.Summary.Gross)

	res.Cities.FinalizeOccupancy()
	res.States.FinalizeOccupancy()
	res.Chains.FinalizeOccupancy()

	return res
}

func addShow(agg *core.DimensionAggregate, rec core.ShowRecord) {
	agg.Shows++
	agg.Sold += rec.Sold
	agg.TotalSeats += rec.TotalSeats
	agg.Gross += rec.Gross
}

// Empty reports whether the fold produced nothing, meaning the movie must not
// appear in the day's output at all.
func (r DayResult) Empty() bool {
	return r.Summary.Shows == 0
}
