package aggregate

import (
	"math"

	"boxoffice/internal/core"
)

// DiscountModel adjusts chain-level sums downward for seats a chain never
// offers for public sale (press and industry holds). Rates are fractions of
// total seats, keyed by chain name.
type DiscountModel struct {
	rates map[string]float64
}

// NewDiscountModel builds a model from per-chain block rates. Chains without a
// configured rate pass through unchanged.
func NewDiscountModel(rates map[string]float64) *DiscountModel {
	if rates == nil {
		rates = map[string]float64{}
	}
	return &DiscountModel{rates: rates}
}

// Enabled reports whether any chain has a non-zero rate.
func (m *DiscountModel) Enabled() bool {
	for _, r := range m.rates {
		if r > 0 {
			return true
		}
	}
	return false
}

// Apply rewrites a day's chain table in place, once, after the day fold and
// before the merge into the month. Sold and gross can never go negative.
func (m *DiscountModel) Apply(chains *core.DimTable) {
	for _, key := range chains.Keys() {
		rate := m.rates[key]
		if rate <= 0 {
			continue
		}
		agg := chains.Get(key)
		sold, gross := AdjustForBlockedSeats(agg.Sold, agg.Gross, agg.TotalSeats, rate)
		agg.Sold = sold
		agg.Gross = gross
		agg.Occupancy = core.Occupancy(agg.Sold, agg.TotalSeats)
	}
}

// AdjustForBlockedSeats removes blocked seats from sold and scales gross by
// the original average ticket price. Results are clamped at zero.
func AdjustForBlockedSeats(sold int, gross float64, totalSeats int, rate float64) (int, float64) {
	if sold <= 0 || rate <= 0 {
		return max(sold, 0), math.Max(gross, 0)
	}
	avgPrice := gross / float64(sold)
	adjusted := int(math.Round(float64(sold) - float64(totalSeats)*rate))
	if adjusted < 0 {
		adjusted = 0
	}
	adjGross := float64(adjusted) * avgPrice
	if adjGross < 0 {
		adjGross = 0
	}
	return adjusted, adjGross
}
