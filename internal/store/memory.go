package store

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"sync"

	"boxoffice/internal/core"
)

// Memory is an in-process store used by tests and the memory backend. Month
// documents round-trip through JSON so tests observe exactly what the SQLite
// backend would persist.
type Memory struct {
	mu        sync.Mutex
	months    map[string][]byte
	rawDays   map[string][]byte
	movieList []byte
}

// NewMemory returns an empty in-memory store.
func NewMemory() *Memory {
	return &Memory{
		months:  make(map[string][]byte),
		rawDays: make(map[string][]byte),
	}
}

func (m *Memory) LoadMonth(_ context.Context, monthKey string) (*core.MonthDoc, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	data, ok := m.months[monthKey]
	if !ok {
		return nil, nil
	}
	var doc core.MonthDoc
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("decode month %s: %w", monthKey, err)
	}
	if doc.Month == "" {
		doc.Month = monthKey
	}
	return &doc, nil
}

func (m *Memory) SaveMonth(_ context.Context, doc *core.MonthDoc) error {
	if !core.ValidMonthKey(doc.Month) {
		return fmt.Errorf("save month: %w: %q", core.ErrInvalidMonthKey, doc.Month)
	}
	data, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("encode month %s: %w", doc.Month, err)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.months[doc.Month] = data
	return nil
}

func (m *Memory) HasMonth(_ context.Context, monthKey string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.months[monthKey]
	return ok, nil
}

func (m *Memory) SaveRawDay(_ context.Context, date string, doc []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.rawDays[date] = append([]byte(nil), doc...)
	return nil
}

func (m *Memory) LoadRawDay(_ context.Context, date string) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	data, ok := m.rawDays[date]
	if !ok {
		return nil, nil
	}
	return append([]byte(nil), data...), nil
}

func (m *Memory) ListRawDays(_ context.Context, monthKey string) ([]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var dates []string
	for date := range m.rawDays {
		if strings.HasPrefix(date, monthKey+"-") {
			dates = append(dates, date)
		}
	}
	sort.Strings(dates)
	return dates, nil
}

func (m *Memory) LoadMovieList(_ context.Context) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.movieList == nil {
		return nil, nil
	}
	return append([]byte(nil), m.movieList...), nil
}

func (m *Memory) SaveMovieList(_ context.Context, doc []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.movieList = append([]byte(nil), doc...)
	return nil
}

func (m *Memory) Close() error { return nil }

var _ Store = (*Memory)(nil)
