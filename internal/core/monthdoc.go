package core

import (
	"bytes"
	"encoding/json"
	"fmt"
	"regexp"
	"sort"
	"time"
)

// Reserved top-level keys in day and month documents. Everything else is a
// movie key.
const (
	MetaDate        = "date"
	MetaLastUpdated = "lastUpdated"
	MetaMonth       = "month"
)

var monthKeyRe = regexp.MustCompile(`^\d{4}-(0[1-9]|1[0-2])$`)

// MonthKey formats a year/month pair as "YYYY-MM".
func MonthKey(year int, month time.Month) string {
	return fmt.Sprintf("%04d-%02d", year, int(month))
}

// MonthKeyOf returns the month key of an ISO date string's month.
func MonthKeyOf(t time.Time) string {
	return MonthKey(t.Year(), t.Month())
}

// ValidMonthKey reports whether s is a well-formed "YYYY-MM" key.
func ValidMonthKey(s string) bool {
	return monthKeyRe.MatchString(s)
}

// MonthDoc is the persisted rollup for one calendar month: one MovieMonth per
// movie key plus display metadata. It is created lazily when the first day of
// a month is processed and grows append-only in each movie's Daily map.
type MonthDoc struct {
	Month       string
	LastUpdated string
	Movies      map[string]*MovieMonth
}

// NewMonthDoc returns an empty document for the given month key.
func NewMonthDoc(monthKey string) *MonthDoc {
	return &MonthDoc{
		Month:  monthKey,
		Movies: make(map[string]*MovieMonth),
	}
}

// Movie returns the record for a movie key, creating a zeroed one on first
// encounter.
func (d *MonthDoc) Movie(key string) *MovieMonth {
	if m, ok := d.Movies[key]; ok {
		return m
	}
	m := NewMovieMonth()
	d.Movies[key] = m
	return m
}

// MarshalJSON writes the document with "month" first, movies sorted by key and
// "lastUpdated" last, matching the published file layout. Sorting makes
// repeated rebuilds byte-identical.
func (d *MonthDoc) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')

	writeField := func(name string, v any) error {
		if buf.Len() > 1 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(name)
		if err != nil {
			return err
		}
		buf.Write(key)
		buf.WriteByte(':')
		val, err := json.Marshal(v)
		if err != nil {
			return err
		}
		buf.Write(val)
		return nil
	}

	if d.Month != "" {
		if err := writeField(MetaMonth, d.Month); err != nil {
			return nil, err
		}
	}
	names := make([]string, 0, len(d.Movies))
	for name := range d.Movies {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		if err := writeField(name, d.Movies[name]); err != nil {
			return nil, err
		}
	}
	if d.LastUpdated != "" {
		if err := writeField(MetaLastUpdated, d.LastUpdated); err != nil {
			return nil, err
		}
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// UnmarshalJSON reads a persisted month document, separating the reserved
// metadata keys from movie entries.
func (d *MonthDoc) UnmarshalJSON(data []byte) error {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	d.Movies = make(map[string]*MovieMonth)
	for key, val := range raw {
		switch key {
		case MetaMonth:
			if err := json.Unmarshal(val, &d.Month); err != nil {
				return fmt.Errorf("month field: %w", err)
			}
		case MetaLastUpdated:
			if err := json.Unmarshal(val, &d.LastUpdated); err != nil {
				return fmt.Errorf("lastUpdated field: %w", err)
			}
		case MetaDate:
			// tolerated leftover from day documents
		default:
			var m MovieMonth
			if err := json.Unmarshal(val, &m); err != nil {
				return fmt.Errorf("movie %q: %w", key, err)
			}
			if m.Daily == nil {
				m.Daily = make(map[string]DailySummary)
			}
			d.Movies[key] = &m
		}
	}
	return nil
}
