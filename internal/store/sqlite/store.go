// Package sqlite persists price history, analysis runs, and generated
// signals. Single-writer with WAL mode and transaction batching.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"time"

	"stockpredictions/internal/model"

	_ "github.com/mattn/go-sqlite3"
)

// Config configures the SQLite store.
type Config struct {
	DBPath string // path to SQLite database file, e.g. "data/analysis.db"
}

// Store is a single-writer SQLite store.
type Store struct {
	db *sql.DB
}

// DB returns the underlying sql.DB for health checks.
func (s *Store) DB() *sql.DB { return s.db }

// New opens the database with WAL mode and initializes the schema.
func New(cfg Config) (*Store, error) {
	db, err := sql.Open("sqlite3", cfg.DBPath+"?_journal_mode=WAL&_synchronous=NORMAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("sqlite open: %w", err)
	}

	// Single-writer connection pool
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	if err := createSchema(db); err != nil {
		return nil, fmt.Errorf("sqlite schema: %w", err)
	}

	log.Printf("[sqlite] opened database at %s", cfg.DBPath)
	return &Store{db: db}, nil
}

func createSchema(db *sql.DB) error {
	_, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS prices (
			symbol  TEXT    NOT NULL,
			date    INTEGER NOT NULL,
			open    REAL    NOT NULL,
			high    REAL    NOT NULL,
			low     REAL    NOT NULL,
			close   REAL    NOT NULL,
			volume  REAL    NOT NULL,
			PRIMARY KEY (symbol, date)
		);

		CREATE TABLE IF NOT EXISTS analysis_runs (
			id         INTEGER PRIMARY KEY AUTOINCREMENT,
			symbol     TEXT    NOT NULL,
			ts         INTEGER NOT NULL,
			overall    TEXT    NOT NULL,
			strength   REAL    NOT NULL,
			confidence REAL    NOT NULL,
			trend      TEXT    NOT NULL,
			momentum   TEXT    NOT NULL,
			volatility TEXT    NOT NULL,
			payload    TEXT    NOT NULL
		);
		CREATE INDEX IF NOT EXISTS idx_analysis_runs_symbol_ts ON analysis_runs (symbol, ts);

		CREATE TABLE IF NOT EXISTS signals (
			id          INTEGER PRIMARY KEY AUTOINCREMENT,
			symbol      TEXT    NOT NULL,
			indicator   TEXT    NOT NULL,
			signal      TEXT    NOT NULL,
			strength    REAL    NOT NULL,
			value       REAL    NOT NULL,
			ts          INTEGER NOT NULL,
			description TEXT    NOT NULL
		);
		CREATE INDEX IF NOT EXISTS idx_signals_symbol_ts ON signals (symbol, ts);
	`)
	return err
}

// Close closes the database.
func (s *Store) Close() error { return s.db.Close() }

// SavePrices upserts a price series for one symbol in a single transaction.
func (s *Store) SavePrices(ctx context.Context, symbol string, prices []model.PriceData) error {
	if len(prices) == 0 {
		return nil
	}
	start := time.Now()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("sqlite begin: %w", err)
	}
	stmt, err := tx.Prepare(`
		INSERT OR REPLACE INTO prices (symbol, date, open, high, low, close, volume)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		tx.Rollback()
		return fmt.Errorf("sqlite prepare: %w", err)
	}
	defer stmt.Close()

	for _, p := range prices {
		if _, err := stmt.Exec(symbol, p.Date.Unix(), p.Open, p.High, p.Low, p.Close, p.Volume); err != nil {
			tx.Rollback()
			return fmt.Errorf("sqlite insert price: %w", err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("sqlite commit: %w", err)
	}

	log.Printf("[sqlite] committed %d prices for %s in %v", len(prices), symbol, time.Since(start))
	return nil
}

// LoadPrices returns up to limit most recent bars for a symbol in ascending
// date order. limit <= 0 means no limit.
func (s *Store) LoadPrices(ctx context.Context, symbol string, limit int) ([]model.PriceData, error) {
	query := `
		SELECT date, open, high, low, close, volume FROM (
			SELECT date, open, high, low, close, volume FROM prices
			WHERE symbol = ? ORDER BY date DESC LIMIT ?
		) ORDER BY date ASC`
	if limit <= 0 {
		limit = -1
	}

	rows, err := s.db.QueryContext(ctx, query, symbol, limit)
	if err != nil {
		return nil, fmt.Errorf("sqlite load prices: %w", err)
	}
	defer rows.Close()

	var out []model.PriceData
	for rows.Next() {
		var p model.PriceData
		var unix int64
		if err := rows.Scan(&unix, &p.Open, &p.High, &p.Low, &p.Close, &p.Volume); err != nil {
			return nil, fmt.Errorf("sqlite scan price: %w", err)
		}
		p.Date = time.Unix(unix, 0).UTC()
		out = append(out, p)
	}
	return out, rows.Err()
}

// LastPriceDate returns the most recent stored bar date for a symbol, or the
// zero time when none exist.
func (s *Store) LastPriceDate(ctx context.Context, symbol string) (time.Time, error) {
	var ts sql.NullInt64
	err := s.db.QueryRowContext(ctx,
		`SELECT MAX(date) FROM prices WHERE symbol = ?`, symbol,
	).Scan(&ts)
	if err != nil {
		return time.Time{}, fmt.Errorf("sqlite last price date: %w", err)
	}
	if !ts.Valid {
		return time.Time{}, nil
	}
	return time.Unix(ts.Int64, 0).UTC(), nil
}

// SaveAnalysis persists one run's summary, full payload, and signals in a
// single transaction.
func (s *Store) SaveAnalysis(ctx context.Context, result *model.TechnicalAnalysisResult) error {
	start := time.Now()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("sqlite begin: %w", err)
	}

	_, err = tx.Exec(`
		INSERT INTO analysis_runs (symbol, ts, overall, strength, confidence, trend, momentum, volatility, payload)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		result.Symbol, result.Timestamp.Unix(),
		string(result.Summary.Overall), result.Summary.Strength, result.Summary.Confidence,
		string(result.Summary.TrendDirection), string(result.Summary.Momentum), string(result.Summary.Volatility),
		string(result.JSON()),
	)
	if err != nil {
		tx.Rollback()
		return fmt.Errorf("sqlite insert run: %w", err)
	}

	stmt, err := tx.Prepare(`
		INSERT INTO signals (symbol, indicator, signal, strength, value, ts, description)
		VALUES (?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		tx.Rollback()
		return fmt.Errorf("sqlite prepare signals: %w", err)
	}
	defer stmt.Close()

	for _, sig := range result.Signals {
		_, err := stmt.Exec(result.Symbol, sig.Indicator, string(sig.Signal), sig.Strength, sig.Value, sig.Timestamp.Unix(), sig.Description)
		if err != nil {
			tx.Rollback()
			return fmt.Errorf("sqlite insert signal: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("sqlite commit: %w", err)
	}
	log.Printf("[sqlite] committed analysis for %s (%d signals) in %v", result.Symbol, len(result.Signals), time.Since(start))
	return nil
}

// RecentSignals returns the most recent stored signals for a symbol, newest
// first.
func (s *Store) RecentSignals(ctx context.Context, symbol string, limit int) ([]model.TechnicalSignal, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := s.db.QueryContext(ctx, `
		SELECT indicator, signal, strength, value, ts, description FROM signals
		WHERE symbol = ? ORDER BY ts DESC, id DESC LIMIT ?`, symbol, limit)
	if err != nil {
		return nil, fmt.Errorf("sqlite recent signals: %w", err)
	}
	defer rows.Close()

	var out []model.TechnicalSignal
	for rows.Next() {
		var sig model.TechnicalSignal
		var signal string
		var unix int64
		if err := rows.Scan(&sig.Indicator, &signal, &sig.Strength, &sig.Value, &unix, &sig.Description); err != nil {
			return nil, fmt.Errorf("sqlite scan signal: %w", err)
		}
		sig.Signal = model.SignalType(signal)
		sig.Timestamp = time.Unix(unix, 0).UTC()
		out = append(out, sig)
	}
	return out, rows.Err()
}
