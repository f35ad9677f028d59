package core

import (
	"encoding/json"
	"reflect"
	"testing"
)

func TestDimTableUpsertPreservesOrder(t *testing.T) {
	table := NewDimTable()
	table.Upsert("Mumbai").Gross = 100
	table.Upsert("Delhi").Gross = 200
	table.Upsert("Mumbai").Shows = 5

	want := []string{"Mumbai", "Delhi"}
	if !reflect.DeepEqual(table.Keys(), want) {
		t.Errorf("Keys() = %v, want %v", table.Keys(), want)
	}
	if table.Len() != 2 {
		t.Errorf("Len() = %d, want 2", table.Len())
	}
	if got := table.Get("Mumbai"); got.Gross != 100 || got.Shows != 5 {
		t.Errorf("Upsert should return the same entry on re-encounter, got %+v", got)
	}
}

func TestDimTableMerge(t *testing.T) {
	a := NewDimTable()
	agg := a.Upsert("Mumbai")
	agg.Shows, agg.Sold, agg.TotalSeats, agg.Gross = 2, 100, 200, 5000
	agg.State = "Maharashtra"

	b := NewDimTable()
	agg = b.Upsert("Mumbai")
	agg.Shows, agg.Sold, agg.TotalSeats, agg.Gross = 1, 50, 100, 2500
	agg = b.Upsert("Pune")
	agg.Shows, agg.Sold, agg.TotalSeats, agg.Gross = 3, 30, 300, 900
	agg.State = "Maharashtra"

	a.Merge(b)

	mumbai := a.Get("Mumbai")
	if mumbai.Shows != 3 || mumbai.Sold != 150 || mumbai.TotalSeats != 300 || mumbai.Gross != 7500 {
		t.Errorf("merged Mumbai = %+v", mumbai)
	}
	if mumbai.State != "Maharashtra" {
		t.Errorf("merge must keep the first-seen state, got %q", mumbai.State)
	}
	if pune := a.Get("Pune"); pune == nil || pune.State != "Maharashtra" {
		t.Errorf("merged Pune = %+v", pune)
	}
	if !reflect.DeepEqual(a.Keys(), []string{"Mumbai", "Pune"}) {
		t.Errorf("merged keys = %v", a.Keys())
	}
}

func TestDimTableMergeNil(t *testing.T) {
	a := NewDimTable()
	a.Upsert("Mumbai")
	a.Merge(nil)
	if a.Len() != 1 {
		t.Errorf("merging nil changed the table: %v", a.Keys())
	}
}

func TestDimTableFinalizeOccupancy(t *testing.T) {
	table := NewDimTable()
	agg := table.Upsert("Mumbai")
	agg.Sold, agg.TotalSeats = 150, 200
	agg = table.Upsert("Ghost Town")
	agg.Sold, agg.TotalSeats = 0, 0

	table.FinalizeOccupancy()

	if got := table.Get("Mumbai").Occupancy; got != 75.00 {
		t.Errorf("Mumbai occupancy = %v, want 75", got)
	}
	if got := table.Get("Ghost Town").Occupancy; got != 0 {
		t.Errorf("zero-seat occupancy = %v, want 0", got)
	}
}

func TestDimTableJSONRoundTrip(t *testing.T) {
	table := NewDimTable()
	agg := table.Upsert("Zulu")
	agg.Shows, agg.Sold, agg.TotalSeats, agg.Gross, agg.Occupancy = 1, 10, 20, 500, 50
	agg = table.Upsert("Alpha")
	agg.Shows, agg.Sold, agg.TotalSeats, agg.Gross, agg.Occupancy = 2, 5, 10, 250, 50
	agg.State = "Kerala"

	data, err := json.Marshal(table)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}

	// Insertion order survives serialization, not lexical order.
	want := `{"Zulu":{"shows":1,"sold":10,"totalSeats":20,"gross":500,"occupancy":50},` +
		`"Alpha":{"shows":2,"sold":5,"totalSeats":10,"gross":250,"occupancy":50,"state":"Kerala"}}`
	if string(data) != want {
		t.Errorf("marshal = %s, want %s", data, want)
	}

	var back DimTable
	if err := json.Unmarshal(data, &back); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if !reflect.DeepEqual(back.Keys(), []string{"Zulu", "Alpha"}) {
		t.Errorf("round-trip keys = %v", back.Keys())
	}
	if got := back.Get("Alpha"); got.State != "Kerala" || got.Gross != 250 {
		t.Errorf("round-trip Alpha = %+v", got)
	}
}

func TestDimTableUnmarshalRejectsNonObject(t *testing.T) {
	var table DimTable
	if err := json.Unmarshal([]byte(`[1,2,3]`), &table); err == nil {
		t.Error("expected error for non-object input")
	}
}
