package recorder

import (
	"context"
	"database/sql"
	"fmt"
	"math"
	"sync"

	"SignalSentinel/internal/model"

	"github.com/rs/zerolog/log"
	_ "modernc.org/sqlite"
)

// SQLiteRecorder persists reports to a SQLite database.
type SQLiteRecorder struct {
	db *sql.DB
	mu sync.Mutex
}

// NewSQLiteRecorder opens (or creates) the SQLite database and runs migrations.
func NewSQLiteRecorder(dbPath string) (*SQLiteRecorder, error) {
	db, err := sql.Open("sqlite", dbPath+"?_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	// WAL lets dashboards read while runs are written.
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("set WAL mode: %w", err)
	}

	r := &SQLiteRecorder{db: db}
	if err := r.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}

	log.Info().Str("path", dbPath).Msg("sqlite recorder opened")
	return r, nil
}

func (r *SQLiteRecorder) migrate() error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS analysis_runs (
			id                INTEGER PRIMARY KEY AUTOINCREMENT,
			run_id            TEXT NOT NULL UNIQUE,
			symbol            TEXT NOT NULL,
			state             TEXT NOT NULL,
			bars              INTEGER,
			as_of             TEXT,
			probability       REAL,
			prediction_signal TEXT,
			prediction_error  TEXT,
			error             TEXT,
			generated_at      INTEGER NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_runs_symbol_ts ON analysis_runs(symbol, generated_at)`,

		`CREATE TABLE IF NOT EXISTS indicator_results (
			id           INTEGER PRIMARY KEY AUTOINCREMENT,
			run_id       TEXT NOT NULL,
			symbol       TEXT NOT NULL,
			name         TEXT NOT NULL,
			value        REAL,
			formatted    TEXT,
			signal       TEXT NOT NULL,
			generated_at INTEGER NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_results_run ON indicator_results(run_id)`,
	}

	for _, s := range stmts {
		if _, err := r.db.Exec(s); err != nil {
			return fmt.Errorf("exec %q: %w", s[:40], err)
		}
	}
	return nil
}

func (r *SQLiteRecorder) RecordReport(ctx context.Context, rep *model.Report) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	ts := rep.GeneratedAt.Unix()
	asOf := ""
	if !rep.AsOf.IsZero() {
		asOf = rep.AsOf.Format("2006-01-02")
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, `INSERT INTO analysis_runs
		(run_id, symbol, state, bars, as_of, probability, prediction_signal, prediction_error, error, generated_at)
		VALUES (?,?,?,?,?,?,?,?,?,?)`,
		rep.RunID, rep.Symbol, string(rep.State), rep.Bars, asOf,
		probability(rep.Prediction), string(rep.Prediction.Signal), errText(rep.Prediction.Err),
		errText(rep.Err), ts,
	)
	if err != nil {
		return fmt.Errorf("insert run %s: %w", rep.RunID, err)
	}

	for _, ind := range rep.Indicators {
		var value any
		v := ind.Value.Value
		if ind.Value.Status != model.ReadingMissing && !math.IsNaN(v) && !math.IsInf(v, 0) {
			value = v
		}
		_, err := tx.ExecContext(ctx, `INSERT INTO indicator_results
			(run_id, symbol, name, value, formatted, signal, generated_at)
			VALUES (?,?,?,?,?,?,?)`,
			rep.RunID, rep.Symbol, ind.Name, value, ind.FormattedValue(), string(ind.Signal), ts,
		)
		if err != nil {
			return fmt.Errorf("insert %s result: %w", ind.Name, err)
		}
	}
	return tx.Commit()
}

// LatestTriples returns the display rows of the most recent run for symbol.
func (r *SQLiteRecorder) LatestTriples(ctx context.Context, symbol string) ([]model.Triple, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT name, formatted, signal FROM indicator_results
		WHERE run_id = (SELECT run_id FROM analysis_runs WHERE symbol = ? ORDER BY generated_at DESC, id DESC LIMIT 1)
		ORDER BY id`, symbol)
	if err != nil {
		return nil, fmt.Errorf("query latest triples: %w", err)
	}
	defer rows.Close()

	var out []model.Triple
	for rows.Next() {
		var (
			t      model.Triple
			signal string
		)
		if err := rows.Scan(&t.Name, &t.Value, &signal); err != nil {
			return nil, err
		}
		t.Signal = model.Signal(signal)
		out = append(out, t)
	}
	return out, rows.Err()
}

func (r *SQLiteRecorder) Close() error {
	log.Info().Msg("closing sqlite recorder")
	return r.db.Close()
}
