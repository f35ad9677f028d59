package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"boxoffice/internal/core"

	_ "modernc.org/sqlite"
)

// SQLite is the durable store backend. Month documents and raw day snapshots
// are stored as JSON text; numbers round-trip without extra rounding, so
// 2-decimal rounding happens only at the Ranker/presentation boundary.
type SQLite struct {
	db *sql.DB
}

// OpenSQLite opens (creating if needed) the database at dbPath and runs
// pending migrations.
func OpenSQLite(dbPath string) (*SQLite, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if err := RunMigrations(dbPath); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &SQLite{db: db}, nil
}

func (s *SQLite) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// LoadMonth returns the stored document for monthKey, or (nil, nil) when
// absent. A document that no longer parses is treated as an empty store for
// that month: the month will be rebuilt from raw data, and the loss is logged
// loudly rather than silently propagated.
func (s *SQLite) LoadMonth(ctx context.Context, monthKey string) (*core.MonthDoc, error) {
	var data []byte
	err := s.db.QueryRowContext(ctx,
		`SELECT doc FROM months WHERE month_key = ?`, monthKey).Scan(&data)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("load month %s: %w", monthKey, err)
	}

	var doc core.MonthDoc
	if err := json.Unmarshal(data, &doc); err != nil {
		slog.ErrorContext(ctx, "STORED MONTH DOCUMENT IS CORRUPT, treating as empty and rebuilding",
			"month", monthKey, "error", err)
		return nil, nil
	}
	if doc.Month == "" {
		doc.Month = monthKey
	}
	return &doc, nil
}

func (s *SQLite) SaveMonth(ctx context.Context, doc *core.MonthDoc) error {
	if !core.ValidMonthKey(doc.Month) {
		return fmt.Errorf("save month: %w: %q", core.ErrInvalidMonthKey, doc.Month)
	}
	data, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("encode month %s: %w", doc.Month, err)
	}
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO months (month_key, doc, last_updated, saved_at)
		 VALUES (?, ?, ?, ?)
		 ON CONFLICT(month_key) DO UPDATE SET doc = excluded.doc,
		   last_updated = excluded.last_updated, saved_at = excluded.saved_at`,
		doc.Month, data, doc.LastUpdated, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("save month %s: %w", doc.Month, err)
	}

	slog.InfoContext(ctx, "Month document saved",
		"month", doc.Month,
		"movies", len(doc.Movies),
		"bytes", len(data))
	return nil
}

func (s *SQLite) HasMonth(ctx context.Context, monthKey string) (bool, error) {
	var one int
	err := s.db.QueryRowContext(ctx,
		`SELECT 1 FROM months WHERE month_key = ?`, monthKey).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("check month %s: %w", monthKey, err)
	}
	return true, nil
}

func (s *SQLite) SaveRawDay(ctx context.Context, date string, doc []byte) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO raw_days (day, doc, saved_at) VALUES (?, ?, ?)
		 ON CONFLICT(day) DO UPDATE SET doc = excluded.doc, saved_at = excluded.saved_at`,
		date, doc, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("save raw day %s: %w", date, err)
	}
	return nil
}

func (s *SQLite) LoadRawDay(ctx context.Context, date string) ([]byte, error) {
	var data []byte
	err := s.db.QueryRowContext(ctx,
		`SELECT doc FROM raw_days WHERE day = ?`, date).Scan(&data)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("load raw day %s: %w", date, err)
	}
	return data, nil
}

func (s *SQLite) ListRawDays(ctx context.Context, monthKey string) ([]string, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT day FROM raw_days WHERE day LIKE ? || '-%' ORDER BY day`, monthKey)
	if err != nil {
		return nil, fmt.Errorf("list raw days for %s: %w", monthKey, err)
	}
	defer rows.Close()

	var dates []string
	for rows.Next() {
		var d string
		if err := rows.Scan(&d); err != nil {
			return nil, fmt.Errorf("scan raw day: %w", err)
		}
		dates = append(dates, d)
	}
	return dates, rows.Err()
}

func (s *SQLite) LoadMovieList(ctx context.Context) ([]byte, error) {
	var data []byte
	err := s.db.QueryRowContext(ctx,
		`SELECT doc FROM movie_list WHERE id = 1`).Scan(&data)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("load movie list: %w", err)
	}
	return data, nil
}

func (s *SQLite) SaveMovieList(ctx context.Context, doc []byte) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO movie_list (id, doc, saved_at) VALUES (1, ?, ?)
		 ON CONFLICT(id) DO UPDATE SET doc = excluded.doc, saved_at = excluded.saved_at`,
		doc, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("save movie list: %w", err)
	}
	return nil
}

var _ Store = (*SQLite)(nil)
