package recorder

import (
	"database/sql"
	"fmt"
	"log"
	"sync"
	"time"

	_ "modernc.org/sqlite"
)

// SQLiteRecorder persists historical data to a SQLite database.
type SQLiteRecorder struct {
	db *sql.DB
	mu sync.Mutex
}

// NewSQLiteRecorder opens (or creates) the SQLite database and runs migrations.
func NewSQLiteRecorder(dbPath string) (*SQLiteRecorder, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	// WAL mode so dashboard-side readers don't block the writer.
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("set WAL mode: %w", err)
	}

	r := &SQLiteRecorder{db: db}
	if err := r.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}

	log.Printf("[INFO] sqlite recorder opened: %s", dbPath)
	return r, nil
}

func (r *SQLiteRecorder) migrate() error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS net_worth_history (
			id        INTEGER PRIMARY KEY AUTOINCREMENT,
			timestamp INTEGER NOT NULL,
			total     REAL,
			yesterday REAL,
			delta     REAL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_networth_ts ON net_worth_history(timestamp)`,

		`CREATE TABLE IF NOT EXISTS refresh_events (
			id        INTEGER PRIMARY KEY AUTOINCREMENT,
			timestamp INTEGER NOT NULL,
			job       TEXT,
			success   INTEGER,
			note      TEXT
		)`,
		`CREATE INDEX IF NOT EXISTS idx_refresh_ts ON refresh_events(timestamp)`,
	}
	for _, stmt := range stmts {
		if _, err := r.db.Exec(stmt); err != nil {
			return fmt.Errorf("exec migration: %w", err)
		}
	}
	return nil
}

// RecordNetWorth inserts a net-worth history row.
func (r *SQLiteRecorder) RecordNetWorth(rec *NetWorthRecord) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, err := r.db.Exec(
		`INSERT INTO net_worth_history (timestamp, total, yesterday, delta) VALUES (?, ?, ?, ?)`,
		time.Now().Unix(), rec.Total, rec.Yesterday, rec.Delta,
	)
	if err != nil {
		return fmt.Errorf("insert net worth: %w", err)
	}
	return nil
}

// RecordRefresh inserts a refresh event row.
func (r *SQLiteRecorder) RecordRefresh(evt *RefreshEvent) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	success := 0
	if evt.Success {
		success = 1
	}
	_, err := r.db.Exec(
		`INSERT INTO refresh_events (timestamp, job, success, note) VALUES (?, ?, ?, ?)`,
		time.Now().Unix(), evt.Job, success, evt.Note,
	)
	if err != nil {
		return fmt.Errorf("insert refresh event: %w", err)
	}
	return nil
}

// Close closes the database.
func (r *SQLiteRecorder) Close() error {
	return r.db.Close()
}
