// Package store keeps daily bars and the watchlist in SQLite.
package store

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"sync"
	"time"

	"SignalSentinel/internal/model"

	"github.com/rs/zerolog/log"
	_ "modernc.org/sqlite"
)

const dateLayout = "2006-01-02"

// WatchEntry is one watchlist row.
type WatchEntry struct {
	Symbol string
	Count  int
}

// Store is a SQLite-backed bar source and watchlist.
type Store struct {
	db *sql.DB
	mu sync.Mutex
}

// Open opens (or creates) the database at path and runs migrations.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite", path+"?_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("set WAL mode: %w", err)
	}

	s := &Store{db: db}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}
	log.Info().Str("path", path).Msg("bar store opened")
	return s, nil
}

func (s *Store) migrate() error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS charts (
			id     INTEGER PRIMARY KEY AUTOINCREMENT,
			symbol TEXT NOT NULL,
			date   TEXT NOT NULL,
			open   REAL,
			high   REAL,
			low    REAL,
			close  REAL,
			volume INTEGER,
			UNIQUE(symbol, date)
		)`,
		`CREATE INDEX IF NOT EXISTS idx_charts_symbol_date ON charts(symbol, date)`,

		`CREATE TABLE IF NOT EXISTS user_symbols (
			id     INTEGER PRIMARY KEY AUTOINCREMENT,
			symbol TEXT NOT NULL UNIQUE,
			count  INTEGER NOT NULL DEFAULT 0
		)`,
	}
	for _, stmt := range stmts {
		if _, err := s.db.Exec(stmt); err != nil {
			return fmt.Errorf("exec %q: %w", stmt[:30], err)
		}
	}
	return nil
}

func normalize(symbol string) string { return strings.ToUpper(strings.TrimSpace(symbol)) }

// SaveBars upserts bars for symbol in one transaction and returns how many were written.
func (s *Store) SaveBars(ctx context.Context, symbol string, bars []model.Bar) (int, error) {
	symbol = normalize(symbol)
	if symbol == "" {
		return 0, fmt.Errorf("save bars: empty symbol: %w", model.ErrInvalidInput)
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, `INSERT INTO charts (symbol, date, open, high, low, close, volume)
		VALUES (?,?,?,?,?,?,?)
		ON CONFLICT(symbol, date) DO UPDATE SET
			open = excluded.open, high = excluded.high, low = excluded.low,
			close = excluded.close, volume = excluded.volume`)
	if err != nil {
		return 0, fmt.Errorf("prepare upsert: %w", err)
	}
	defer stmt.Close()

	for _, b := range bars {
		if _, err := stmt.ExecContext(ctx, symbol, b.Date.UTC().Format(dateLayout),
			b.Open, b.High, b.Low, b.Close, b.Volume); err != nil {
			return 0, fmt.Errorf("upsert %s %s: %w", symbol, b.Date.Format(dateLayout), err)
		}
	}
	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit: %w", err)
	}
	return len(bars), nil
}

// GetBars returns stored bars for symbol, oldest first. With limit > 0 only the most
// recent limit bars are returned.
func (s *Store) GetBars(ctx context.Context, symbol string, limit int) ([]model.Bar, error) {
	symbol = normalize(symbol)

	query := `SELECT date, open, high, low, close, volume FROM charts WHERE symbol = ? ORDER BY date ASC`
	args := []any{symbol}
	if limit > 0 {
		query = `SELECT date, open, high, low, close, volume FROM charts WHERE symbol = ? ORDER BY date DESC LIMIT ?`
		args = append(args, limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query bars for %s: %w", symbol, err)
	}
	defer rows.Close()

	var bars []model.Bar
	for rows.Next() {
		var (
			date string
			b    model.Bar
		)
		if err := rows.Scan(&date, &b.Open, &b.High, &b.Low, &b.Close, &b.Volume); err != nil {
			return nil, fmt.Errorf("scan bar: %w", err)
		}
		if b.Date, err = time.Parse(dateLayout, date); err != nil {
			return nil, fmt.Errorf("parse date %q: %w", date, err)
		}
		bars = append(bars, b)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	if limit > 0 {
		// newest first from the query
		bars = model.ReverseBars(bars)
	}
	return bars, nil
}

// DeleteSymbol drops the stored history and the watchlist entry for symbol.
// It returns model.ErrUnknownSymbol when neither existed.
func (s *Store) DeleteSymbol(ctx context.Context, symbol string) error {
	symbol = normalize(symbol)
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()

	var removed int64
	for _, q := range []string{
		`DELETE FROM charts WHERE UPPER(symbol) = ?`,
		`DELETE FROM user_symbols WHERE UPPER(symbol) = ?`,
	} {
		res, err := tx.ExecContext(ctx, q, symbol)
		if err != nil {
			return fmt.Errorf("delete %s: %w", symbol, err)
		}
		n, _ := res.RowsAffected()
		removed += n
	}
	if removed == 0 {
		return fmt.Errorf("delete %s: %w", symbol, model.ErrUnknownSymbol)
	}
	return tx.Commit()
}

// AddSymbol puts symbol on the watchlist. It reports false when it was already there.
func (s *Store) AddSymbol(ctx context.Context, symbol string, count int) (bool, error) {
	symbol = normalize(symbol)
	if symbol == "" {
		return false, fmt.Errorf("add symbol: %w", model.ErrInvalidInput)
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	res, err := s.db.ExecContext(ctx,
		`INSERT INTO user_symbols (symbol, count) VALUES (?, ?) ON CONFLICT(symbol) DO NOTHING`,
		symbol, count)
	if err != nil {
		return false, fmt.Errorf("add symbol %s: %w", symbol, err)
	}
	n, _ := res.RowsAffected()
	return n > 0, nil
}

// Watchlist returns every watched symbol in alphabetical order.
func (s *Store) Watchlist(ctx context.Context) ([]WatchEntry, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT symbol, count FROM user_symbols ORDER BY symbol`)
	if err != nil {
		return nil, fmt.Errorf("query watchlist: %w", err)
	}
	defer rows.Close()

	var out []WatchEntry
	for rows.Next() {
		var e WatchEntry
		if err := rows.Scan(&e.Symbol, &e.Count); err != nil {
			return nil, fmt.Errorf("scan watchlist: %w", err)
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

// Symbols returns the watched tickers.
func (s *Store) Symbols(ctx context.Context) ([]string, error) {
	entries, err := s.Watchlist(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]string, len(entries))
	for i, e := range entries {
		out[i] = e.Symbol
	}
	return out, nil
}

// DB exposes the handle so other components can share the file.
func (s *Store) DB() *sql.DB { return s.db }

func (s *Store) Close() error {
	log.Info().Msg("closing bar store")
	return s.db.Close()
}
