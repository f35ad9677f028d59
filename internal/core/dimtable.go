package core

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// DimTable is an insertion-ordered table of dimension aggregates. Order
// matters: top-10 capping breaks gross ties by the order keys were first seen,
// so an ordinary map would make re-runs non-reproducible.
type DimTable struct {
	keys    []string
	entries map[string]*DimensionAggregate
}

// NewDimTable returns an empty table.
func NewDimTable() *DimTable {
	return &DimTable{entries: make(map[string]*DimensionAggregate)}
}

// Upsert returns the aggregate for key, creating a zeroed one on first
// encounter. New keys are appended to the insertion order.
func (t *DimTable) Upsert(key string) *DimensionAggregate {
	if agg, ok := t.entries[key]; ok {
		return agg
	}
	agg := &DimensionAggregate{}
	t.entries[key] = agg
	t.keys = append(t.keys, key)
	return agg
}

// Get returns the aggregate for key, or nil when absent.
func (t *DimTable) Get(key string) *DimensionAggregate {
	return t.entries[key]
}

// Keys returns the keys in insertion order. The caller must not mutate it.
func (t *DimTable) Keys() []string {
	return t.keys
}

// Len returns the number of entries.
func (t *DimTable) Len() int {
	return len(t.entries)
}

// Merge adds the counters of other into this table, preserving the earliest
// State identity seen for each key. Both tables must be uncapped: merging a
// capped table would silently undercount keys outside its top 10.
func (t *DimTable) Merge(other *DimTable) {
	if other == nil {
		return
	}
	for _, key := range other.keys {
		src := other.entries[key]
		dst := t.Upsert(key)
		dst.Shows += src.Shows
		dst.Sold += src.Sold
		dst.TotalSeats += src.TotalSeats
		dst.Gross += src.Gross
		if dst.State == "" {
			dst.State = src.State
		}
	}
}

// FinalizeOccupancy recomputes occupancy for every entry from its summed
// sold/totalSeats.
func (t *DimTable) FinalizeOccupancy() {
	for _, agg := range t.entries {
		agg.Occupancy = Occupancy(agg.Sold, agg.TotalSeats)
	}
}

// MarshalJSON writes entries as a JSON object in insertion order.
func (t *DimTable) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, key := range t.keys {
		if i > 0 {
			buf.WriteByte(',')
		}
		name, err := json.Marshal(key)
		if err != nil {
			return nil, err
		}
		buf.Write(name)
		buf.WriteByte(':')
		entry, err := json.Marshal(t.entries[key])
		if err != nil {
			return nil, err
		}
		buf.Write(entry)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// UnmarshalJSON reads a JSON object preserving key order.
func (t *DimTable) UnmarshalJSON(data []byte) error {
	t.keys = nil
	t.entries = make(map[string]*DimensionAggregate)

	dec := json.NewDecoder(bytes.NewReader(data))
	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if d, ok := tok.(json.Delim); !ok || d != '{' {
		return fmt.Errorf("dimension table: expected object, got %v", tok)
	}
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return err
		}
		key, ok := tok.(string)
		if !ok {
			return fmt.Errorf("dimension table: expected string key, got %v", tok)
		}
		var agg DimensionAggregate
		if err := dec.Decode(&agg); err != nil {
			return fmt.Errorf("dimension table entry %q: %w", key, err)
		}
		t.entries[key] = &agg
		t.keys = append(t.keys, key)
	}
	if _, err := dec.Token(); err != nil {
		return err
	}
	return nil
}
