package aggregate

import (
	"reflect"
	"testing"

	"boxoffice/internal/core"
	"boxoffice/internal/dimension"
)

func sampleRecords() []core.ShowRecord {
	return []core.ShowRecord{
		{City: "Mumbai", State: "Maharashtra", Venue: "PVR Phoenix", TotalSeats: 200, Sold: 150, Gross: 45000},
		{City: "Mumbai", State: "Maharashtra", Venue: "PVR Phoenix", TotalSeats: 200, Sold: 199, Gross: 60000},
		{City: "Pune", State: "Maharashtra", Venue: "INOX Bund Garden", TotalSeats: 100, Sold: 20, Gross: 4000},
		{City: "Chennai", State: "Tamil Nadu", Venue: "Sathyam Cinemas", TotalSeats: 300, Sold: 100, Gross: 25000},
	}
}

func TestFoldDaySummary(t *testing.T) {
	strategy := dimension.NewListMatch(dimension.DefaultChainConfig().Chains)
	res := FoldDay(sampleRecords(), strategy)

	s := res.Summary
	if s.Shows != 4 {
		t.Errorf("Shows = %d", s.Shows)
	}
	if s.Sold != 469 || s.TotalSeats != 800 {
		t.Errorf("Sold/TotalSeats = %d/%d", s.Sold, s.TotalSeats)
	}
	if s.Gross != 134000 {
		t.Errorf("Gross = %v", s.Gross)
	}
	// 469/800*100 = 58.625 -> 58.63, derived from sums, not per-show averages.
	if s.Occupancy != 58.63 {
		t.Errorf("Occupancy = %v, want 58.63", s.Occupancy)
	}
	if s.Venues != 3 {
		t.Errorf("Venues = %d, want 3 distinct", s.Venues)
	}
	if s.Cities != 3 {
		t.Errorf("Cities = %d, want 3 distinct", s.Cities)
	}
	// 75% is fast-filling, 99.5% is housefull, 20% and 33.33% are neither.
	if s.FastFilling != 1 {
		t.Errorf("FastFilling = %d, want 1", s.FastFilling)
	}
	if s.Housefull != 1 {
		t.Errorf("Housefull = %d, want 1", s.Housefull)
	}
}

func TestFoldDayDimensions(t *testing.T) {
	strategy := dimension.NewListMatch(dimension.DefaultChainConfig().Chains)
	res := FoldDay(sampleRecords(), strategy)

	mumbai := res.Cities.Get("Mumbai")
	if mumbai == nil || mumbai.Shows != 2 || mumbai.Sold != 349 || mumbai.Gross != 105000 {
		t.Errorf("Mumbai = %+v", mumbai)
	}
	if mumbai.State != "Maharashtra" {
		t.Errorf("Mumbai state identity = %q", mumbai.State)
	}

	mh := res.States.Get("Maharashtra")
	if mh == nil || mh.Shows != 3 || mh.Sold != 369 {
		t.Errorf("Maharashtra = %+v", mh)
	}

	// Sathyam is not a known chain, so its show is excluded from chains.
	if got := res.Chains.Get("PVR"); got == nil || got.Shows != 2 {
		t.Errorf("PVR = %+v", got)
	}
	if got := res.Chains.Get("INOX"); got == nil || got.Shows != 1 {
		t.Errorf("INOX = %+v", got)
	}
	if res.Chains.Len() != 2 {
		t.Errorf("chain keys = %v, want PVR and INOX only", res.Chains.Keys())
	}
}

func TestFoldDayIsPure(t *testing.T) {
	strategy := dimension.NewListMatch(dimension.DefaultChainConfig().Chains)
	records := sampleRecords()

	a := FoldDay(records, strategy)
	b := FoldDay(records, strategy)

	if !reflect.DeepEqual(a.Summary, b.Summary) {
		t.Errorf("summaries differ: %+v vs %+v", a.Summary, b.Summary)
	}
	if !reflect.DeepEqual(a.Cities.Keys(), b.Cities.Keys()) {
		t.Errorf("city orders differ: %v vs %v", a.Cities.Keys(), b.Cities.Keys())
	}
}

func TestFoldDayUnknownCityState(t *testing.T) {
	records := []core.ShowRecord{
		{Venue: "Mystery Hall", TotalSeats: 100, Sold: 10, Gross: 1000},
	}
	res := FoldDay(records, dimension.FirstToken{})

	if got := res.Cities.Get("Unknown"); got == nil || got.Shows != 1 {
		t.Errorf("Unknown city = %+v", got)
	}
	if got := res.States.Get("Unknown"); got == nil {
		t.Error("Unknown state missing")
	}
	if got := res.Chains.Get("Mystery"); got == nil {
		t.Errorf("FirstToken chain missing, keys = %v", res.Chains.Keys())
	}
}

func TestFoldDayEmpty(t *testing.T) {
	res := FoldDay(nil, dimension.FirstToken{})
	if !res.Empty() {
		t.Error("fold of no records must be empty")
	}
	if res.Summary.Occupancy != 0 {
		t.Errorf("empty occupancy = %v", res.Summary.Occupancy)
	}
}
