// Package snapshot validates and normalizes one day's raw box-office feed
// into per-movie show records.
package snapshot

import (
	"bytes"
	"encoding/json"
	"fmt"
	"log/slog"

	"boxoffice/internal/core"
)

// Day is the validated form of one date's snapshot: every surviving entry is a
// well-formed show record. Movies whose entries were all dropped do not appear
// at all, so they can never produce a stray zeroed daily entry downstream.
type Day struct {
	Date        string
	LastUpdated string
	Movies      map[string][]core.ShowRecord
}

// MovieKeys returns the movie keys present for this day.
func (d *Day) MovieKeys() []string {
	keys := make([]string, 0, len(d.Movies))
	for k := range d.Movies {
		keys = append(keys, k)
	}
	return keys
}

// entryKind is decided once per raw entry; downstream code only ever sees
// valid show records.
type entryKind int

const (
	entryValid entryKind = iota
	entryMalformed
)

// Parser turns raw day documents into Days, dropping malformed pieces without
// failing the whole day.
type Parser struct {
	logger *slog.Logger
}

// NewParser returns a parser logging skipped entries through logger (nil means
// slog.Default).
func NewParser(logger *slog.Logger) *Parser {
	if logger == nil {
		logger = slog.Default()
	}
	return &Parser{logger: logger}
}

// Parse decodes one date's raw snapshot. The document maps movie keys to lists
// of show entries; the reserved keys "date" and "lastUpdated" are metadata.
// A movie whose value is not a list is skipped, as is any entry that is not an
// object. Missing numeric fields default to zero. Parse fails only when the
// whole document is not a JSON object; callers treat that as a missing day.
func (p *Parser) Parse(date string, raw []byte) (*Day, error) {
	var doc map[string]json.RawMessage
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("decode day document %s: %w", date, err)
	}

	day := &Day{Date: date, Movies: make(map[string][]core.ShowRecord)}

	for key, val := range doc {
		switch key {
		case core.MetaDate:
			var s string
			if err := json.Unmarshal(val, &s); err == nil && s != "" {
				day.Date = s
			}
			continue
		case core.MetaLastUpdated:
			_ = json.Unmarshal(val, &day.LastUpdated)
			continue
		}

		var entries []json.RawMessage
		if err := json.Unmarshal(val, &entries); err != nil {
			p.logger.Warn("skipping movie with non-list value", "date", date, "movie", key)
			continue
		}

		var records []core.ShowRecord
		skipped := 0
		for _, entry := range entries {
			rec, kind := classifyEntry(entry)
			if kind == entryMalformed {
				skipped++
				continue
			}
			records = append(records, rec)
		}
		if skipped > 0 {
			p.logger.Warn("skipped malformed show entries",
				"date", date, "movie", key, "skipped", skipped, "kept", len(records))
		}
		if len(records) > 0 {
			day.Movies[key] = records
		}
	}

	return day, nil
}

// classifyEntry decides once whether a raw entry is a usable show record.
// Nulls, strings, numbers and broken objects are malformed; absent numeric
// fields in a well-formed object are zero, not an error.
func classifyEntry(raw json.RawMessage) (core.ShowRecord, entryKind) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || trimmed[0] != '{' {
		return core.ShowRecord{}, entryMalformed
	}
	var rec core.ShowRecord
	if err := json.Unmarshal(trimmed, &rec); err != nil {
		return core.ShowRecord{}, entryMalformed
	}
	return rec, entryValid
}
