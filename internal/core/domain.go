package core

import (
	"errors"
	"math"
)

// ShowRecord is one showtime at one venue on one day. Records are ephemeral:
// they exist only while a single day's snapshot is being folded.
type ShowRecord struct {
	City       string  `json:"city"`
	State      string  `json:"state"`
	Venue      string  `json:"venue"`
	TotalSeats int     `json:"totalSeats"`
	Sold       int     `json:"sold"`
	Gross      float64 `json:"gross"`
}

// DailySummary is the per-movie result of one day. It is created once per
// (movie, date) and never mutated afterwards: a day is either absent or final.
type DailySummary struct {
	Shows       int     `json:"shows"`
	Sold        int     `json:"sold"`
	TotalSeats  int     `json:"totalSeats"`
	Gross       float64 `json:"gross"`
	Occupancy   float64 `json:"occupancy"`
	Venues      int     `json:"venues"`
	Cities      int     `json:"cities"`
	FastFilling int     `json:"fastfilling"`
	Housefull   int     `json:"housefull"`
}

// MonthlySummary has the same numeric shape as DailySummary aggregated over a
// whole month. Occupancy is re-derived from the summed sold/totalSeats, never
// averaged across days.
type MonthlySummary struct {
	Shows      int     `json:"shows"`
	Sold       int     `json:"sold"`
	TotalSeats int     `json:"totalSeats"`
	Gross      float64 `json:"gross"`
	Occupancy  float64 `json:"occupancy"`
}

// DimensionAggregate is the cumulative total for one city, state or chain.
// State carries a city's state identity; it can only be captured from raw show
// records, which is why dimension tables must stay rebuildable from raw data.
type DimensionAggregate struct {
	Shows      int     `json:"shows"`
	Sold       int     `json:"sold"`
	TotalSeats int     `json:"totalSeats"`
	Gross      float64 `json:"gross"`
	Occupancy  float64 `json:"occupancy"`
	State      string  `json:"state,omitempty"`
}

// MovieMonth is everything stored for one movie in one month.
type MovieMonth struct {
	Summary MonthlySummary          `json:"summary"`
	Cities  *DimTable               `json:"cities"`
	States  *DimTable               `json:"states"`
	Chains  *DimTable               `json:"chains"`
	Daily   map[string]DailySummary `json:"daily"`
}

// NewMovieMonth returns a fully zeroed movie record.
func NewMovieMonth() *MovieMonth {
	return &MovieMonth{
		Cities: NewDimTable(),
		States: NewDimTable(),
		Chains: NewDimTable(),
		Daily:  make(map[string]DailySummary),
	}
}

// HasDay reports whether the given ISO date already has a final daily entry.
// This is the idempotence guard: a present date is never re-added.
func (m *MovieMonth) HasDay(date string) bool {
	_, ok := m.Daily[date]
	return ok
}

var ErrInvalidMonthKey = errors.New("invalid month key, want YYYY-MM")

// Occupancy returns sold/totalSeats*100 rounded to 2 decimals, or 0 when
// totalSeats is 0. Division by zero is a defined case here, not an error.
func Occupancy(sold, totalSeats int) float64 {
	if totalSeats == 0 {
		return 0
	}
	return Round2(float64(sold) / float64(totalSeats) * 100)
}

// Round2 rounds to 2 decimal places. Applied only at presentation boundaries;
// intermediate sums keep full precision.
func Round2(v float64) float64 {
	return math.Round(v*100) / 100
}

// Occupancy thresholds for per-show classification.
const (
	FastFillingMin = 50.0
	HousefullMin   = 98.0
)

// IsFastFilling reports whether a show's occupancy is in the fast-filling band.
func IsFastFilling(occ float64) bool {
	return occ >= FastFillingMin && occ < HousefullMin
}

// IsHousefull reports whether a show is effectively sold out.
func IsHousefull(occ float64) bool {
	return occ >= HousefullMin
}
