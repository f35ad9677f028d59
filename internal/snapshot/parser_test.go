package snapshot

import (
	"testing"
)

func TestParseValidDay(t *testing.T) {
	raw := []byte(`{
		"date": "2025-09-01",
		"lastUpdated": "11:30 PM, 01 September 2025",
		"Dhurandhar | Hindi": [
			{"city":"Mumbai","state":"Maharashtra","venue":"PVR Phoenix","totalSeats":200,"sold":150,"gross":45000},
			{"city":"Pune","state":"Maharashtra","venue":"INOX Bund Garden","totalSeats":100,"sold":40,"gross":9000}
		]
	}`)

	day, err := NewParser(nil).Parse("2025-09-01", raw)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}

	if day.Date != "2025-09-01" {
		t.Errorf("Date = %q", day.Date)
	}
	if day.LastUpdated != "11:30 PM, 01 September 2025" {
		t.Errorf("LastUpdated = %q", day.LastUpdated)
	}
	records := day.Movies["Dhurandhar | Hindi"]
	if len(records) != 2 {
		t.Fatalf("records = %d, want 2", len(records))
	}
	if records[0].City != "Mumbai" || records[0].Sold != 150 || records[0].Gross != 45000 {
		t.Errorf("first record = %+v", records[0])
	}
}

func TestParseSkipsMalformedEntries(t *testing.T) {
	raw := []byte(`{
		"Mixed Movie | Hindi": [
			null,
			"not an object",
			42,
			{"city":"Chennai","state":"Tamil Nadu","venue":"PVR Grand","totalSeats":100,"sold":80,"gross":20000}
		]
	}`)

	day, err := NewParser(nil).Parse("2025-09-01", raw)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}

	records := day.Movies["Mixed Movie | Hindi"]
	if len(records) != 1 {
		t.Fatalf("records = %d, want 1 (malformed entries dropped)", len(records))
	}
	if records[0].City != "Chennai" {
		t.Errorf("surviving record = %+v", records[0])
	}
}

func TestParseDropsAllMalformedMovie(t *testing.T) {
	raw := []byte(`{"Broken Movie | Hindi": [null, "x"]}`)

	day, err := NewParser(nil).Parse("2025-09-01", raw)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if _, ok := day.Movies["Broken Movie | Hindi"]; ok {
		t.Error("a movie with zero surviving entries must not appear at all")
	}
}

func TestParseSkipsNonListMovie(t *testing.T) {
	raw := []byte(`{
		"Scalar Movie | Hindi": "oops",
		"Good Movie | Hindi": [{"city":"Delhi","venue":"PVR Select","totalSeats":50,"sold":25,"gross":7000}]
	}`)

	day, err := NewParser(nil).Parse("2025-09-01", raw)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if _, ok := day.Movies["Scalar Movie | Hindi"]; ok {
		t.Error("non-list movie value must be skipped")
	}
	if _, ok := day.Movies["Good Movie | Hindi"]; !ok {
		t.Error("valid movie lost")
	}
}

func TestParseMissingFieldsDefaultToZero(t *testing.T) {
	raw := []byte(`{"Sparse Movie | Hindi": [{"venue":"Solo Screen"}]}`)

	day, err := NewParser(nil).Parse("2025-09-01", raw)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	rec := day.Movies["Sparse Movie | Hindi"][0]
	if rec.Venue != "Solo Screen" || rec.Sold != 0 || rec.TotalSeats != 0 || rec.Gross != 0 {
		t.Errorf("record = %+v", rec)
	}
}

func TestParseMetadataKeysAreNotMovies(t *testing.T) {
	raw := []byte(`{"date":"2025-09-02","lastUpdated":"x"}`)

	day, err := NewParser(nil).Parse("2025-09-01", raw)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if len(day.Movies) != 0 {
		t.Errorf("metadata-only document produced movies: %v", day.MovieKeys())
	}
	// An embedded date overrides the requested one.
	if day.Date != "2025-09-02" {
		t.Errorf("Date = %q, want embedded date", day.Date)
	}
}

func TestParseNonObjectDocument(t *testing.T) {
	if _, err := NewParser(nil).Parse("2025-09-01", []byte(`[1,2]`)); err == nil {
		t.Error("expected error for non-object document")
	}
}
