// Package store persists monthly rollups, raw daily snapshots and the movie
// catalog.
package store

import (
	"context"
	"fmt"

	"boxoffice/internal/core"
)

// MonthStore loads and saves monthly rollup documents. LoadMonth returns
// (nil, nil) when the month has never been saved.
type MonthStore interface {
	LoadMonth(ctx context.Context, monthKey string) (*core.MonthDoc, error)
	SaveMonth(ctx context.Context, doc *core.MonthDoc) error
	// HasMonth reports whether a document exists for the month, without
	// decoding it. Locked-month checks use this.
	HasMonth(ctx context.Context, monthKey string) (bool, error)
}

// RawDayStore keeps the raw daily snapshots the rollup was built from. They
// are the single source of truth for rebuilds: dimension identity (a city's
// state, a venue's chain) only exists in raw show records.
type RawDayStore interface {
	SaveRawDay(ctx context.Context, date string, doc []byte) error
	// LoadRawDay returns (nil, nil) when the date has no stored snapshot.
	LoadRawDay(ctx context.Context, date string) ([]byte, error)
	// ListRawDays returns the stored dates of a month in ascending order.
	ListRawDays(ctx context.Context, monthKey string) ([]string, error)
}

// MovieListStore persists the movie catalog document.
type MovieListStore interface {
	LoadMovieList(ctx context.Context) ([]byte, error)
	SaveMovieList(ctx context.Context, doc []byte) error
}

// Store is the full persistence surface of the pipeline.
type Store interface {
	MonthStore
	RawDayStore
	MovieListStore
	Close() error
}

// Backend selects a store implementation.
type Backend string

const (
	SQLiteBackend Backend = "sqlite"
	MemoryBackend Backend = "memory"
)

// IsValid returns true if the backend type is valid
func (b Backend) IsValid() bool {
	switch b {
	case SQLiteBackend, MemoryBackend:
		return true
	default:
		return false
	}
}

// Open creates the configured store.
func Open(backend Backend, sqlitePath string) (Store, error) {
	switch backend {
	case SQLiteBackend:
		return OpenSQLite(sqlitePath)
	case MemoryBackend:
		return NewMemory(), nil
	default:
		return nil, fmt.Errorf("unsupported store backend: %s", backend)
	}
}
