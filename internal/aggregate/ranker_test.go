package aggregate

import (
	"fmt"
	"reflect"
	"testing"

	"boxoffice/internal/core"
)

func TestTop10CapsAndOrders(t *testing.T) {
	table := core.NewDimTable()
	// 15 cities with strictly increasing gross.
	for i := 1; i <= 15; i++ {
		agg := table.Upsert(fmt.Sprintf("City-%02d", i))
		agg.Shows = 1
		agg.Gross = float64(i * 1000)
	}

	top := Top10(table)

	if top.Len() != 10 {
		t.Fatalf("Len = %d, want 10", top.Len())
	}
	want := []string{
		"City-15", "City-14", "City-13", "City-12", "City-11",
		"City-10", "City-09", "City-08", "City-07", "City-06",
	}
	if !reflect.DeepEqual(top.Keys(), want) {
		t.Errorf("Keys = %v, want %v", top.Keys(), want)
	}
	if top.Get("City-15").Gross != 15000 {
		t.Errorf("top gross = %v", top.Get("City-15").Gross)
	}
	// The source table is untouched.
	if table.Len() != 15 {
		t.Errorf("source table mutated, Len = %d", table.Len())
	}
}

func TestTopNTieKeepsInsertionOrder(t *testing.T) {
	table := core.NewDimTable()
	table.Upsert("First").Gross = 500
	table.Upsert("Second").Gross = 500
	table.Upsert("Third").Gross = 500

	top := TopN(table, 2)

	want := []string{"First", "Second"}
	if !reflect.DeepEqual(top.Keys(), want) {
		t.Errorf("Keys = %v, want %v (stable tie-break)", top.Keys(), want)
	}
}

func TestTopNCopiesEntries(t *testing.T) {
	table := core.NewDimTable()
	table.Upsert("Mumbai").Gross = 1000.005

	top := TopN(table, 10)
	top.Get("Mumbai").Shows = 99

	if table.Get("Mumbai").Shows != 0 {
		t.Error("TopN must copy entries, not alias them")
	}
	if top.Get("Mumbai").Gross != 1000.01 {
		t.Errorf("gross not rounded: %v", top.Get("Mumbai").Gross)
	}
}

func TestTopNSmallerThanN(t *testing.T) {
	table := core.NewDimTable()
	table.Upsert("Only").Gross = 100

	top := Top10(table)
	if top.Len() != 1 {
		t.Errorf("Len = %d, want 1", top.Len())
	}
}
