package timelog

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	_ "modernc.org/sqlite" // pure-Go sqlite driver
)

// snapshotKey is the single row under which the serialized log lives.
const snapshotKey = "time_entries"

// SQLiteSnapshot stores the log as a single keyed blob in a SQLite
// database. The table mirrors the flat snapshot model: one key, one
// serialized array, rewritten on every save.
type SQLiteSnapshot struct {
	db *sql.DB
}

// OpenSQLiteSnapshot opens (and if needed initializes) a SQLite-backed
// snapshot at dsn. Use ":memory:" for an ephemeral store.
func OpenSQLiteSnapshot(dsn string) (*SQLiteSnapshot, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite snapshot: %w", err)
	}
	// The snapshot has a single writer; one connection avoids
	// SQLITE_BUSY on concurrent reads during a save.
	db.SetMaxOpenConns(1)

	const schema = `
CREATE TABLE IF NOT EXISTS snapshots (
    key        TEXT PRIMARY KEY,
    data       BLOB NOT NULL,
    updated_at INTEGER NOT NULL
);`
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("ensure snapshot table: %w", err)
	}

	return &SQLiteSnapshot{db: db}, nil
}

// Load reads and decodes the snapshot row. No row means an empty log.
func (s *SQLiteSnapshot) Load() ([]Entry, error) {
	var data []byte
	err := s.db.QueryRow(`SELECT data FROM snapshots WHERE key = ?`, snapshotKey).Scan(&data)
	if errors.Is(err, sql.ErrNoRows) {
		return []Entry{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read snapshot row: %w", err)
	}

	var entries []Entry
	if err := json.Unmarshal(data, &entries); err != nil {
		return nil, fmt.Errorf("corrupt snapshot row: %w", err)
	}
	if entries == nil {
		entries = []Entry{}
	}
	return entries, nil
}

// Save upserts the snapshot row with the serialized collection.
func (s *SQLiteSnapshot) Save(entries []Entry) error {
	data, err := json.Marshal(entries)
	if err != nil {
		return fmt.Errorf("marshal snapshot: %w", err)
	}

	_, err = s.db.Exec(`
INSERT INTO snapshots (key, data, updated_at) VALUES (?, ?, ?)
ON CONFLICT(key) DO UPDATE SET data = excluded.data, updated_at = excluded.updated_at`,
		snapshotKey, data, time.Now().Unix())
	if err != nil {
		return fmt.Errorf("write snapshot row: %w", err)
	}
	return nil
}

// Close closes the underlying database.
func (s *SQLiteSnapshot) Close() error {
	return s.db.Close()
}
