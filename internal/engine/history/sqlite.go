package history

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "modernc.org/sqlite"
)

// SQLiteStore keeps history in a local SQLite file.
type SQLiteStore struct {
	db *sql.DB
}

// OpenSQLite opens (or creates) the database at path, creating its directory.
// A leading "~/" is expanded to $HOME.
func OpenSQLite(path string) (*SQLiteStore, error) {
	if strings.HasPrefix(path, "~/") {
		path = filepath.Join(os.Getenv("HOME"), path[2:])
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0750); err != nil {
			return nil, fmt.Errorf("history: mkdir %s: %w", dir, err)
		}
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("history: open db: %w", err)
	}
	db.SetMaxOpenConns(1) // SQLite: single writer
	if err := initSQLiteSchema(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("history: init schema: %w", err)
	}
	return &SQLiteStore{db: db}, nil
}

// created_at is Unix nanoseconds so ORDER BY sorts by time.
func initSQLiteSchema(db *sql.DB) error {
	_, err := db.Exec(`CREATE TABLE IF NOT EXISTS analyses (
		id         INTEGER PRIMARY KEY AUTOINCREMENT,
		mode       TEXT NOT NULL,
		target_id  TEXT NOT NULL,
		title      TEXT,
		stats      TEXT NOT NULL,
		comments   INTEGER NOT NULL DEFAULT 0,
		aligned    INTEGER NOT NULL DEFAULT 0,
		created_at INTEGER NOT NULL
	);
	CREATE INDEX IF NOT EXISTS analyses_target ON analyses (target_id, created_at)`)
	return err
}

// Record inserts e and returns its id. A zero CreatedAt is stamped with the current time.
func (s *SQLiteStore) Record(ctx context.Context, e Entry) (int64, error) {
	if err := validate(e); err != nil {
		return 0, err
	}
	if e.CreatedAt.IsZero() {
		e.CreatedAt = time.Now()
	}
	stats, err := json.Marshal(e.Stats)
	if err != nil {
		return 0, fmt.Errorf("history: marshal stats: %w", err)
	}
	res, err := s.db.ExecContext(ctx,
		`INSERT INTO analyses (mode, target_id, title, stats, comments, aligned, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		string(e.Mode), e.TargetID, e.Title, string(stats), e.Comments, e.Aligned,
		e.CreatedAt.UnixNano(),
	)
	if err != nil {
		return 0, fmt.Errorf("history: insert: %w", err)
	}
	return res.LastInsertId()
}

// List returns matching entries, newest first.
func (s *SQLiteStore) List(ctx context.Context, f Filter) ([]Entry, error) {
	var (
		where []string
		args  []any
	)
	if f.Mode != "" {
		where = append(where, "mode = ?")
		args = append(args, string(f.Mode))
	}
	if f.TargetID != "" {
		where = append(where, "target_id = ?")
		args = append(args, f.TargetID)
	}
	q := `SELECT id, mode, target_id, title, stats, comments, aligned, created_at FROM analyses`
	if len(where) > 0 {
		q += " WHERE " + strings.Join(where, " AND ")
	}
	q += " ORDER BY created_at DESC, id DESC LIMIT ?"
	args = append(args, f.limit())

	rows, err := s.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("history: query: %w", err)
	}
	defer rows.Close()

	entries := []Entry{}
	for rows.Next() {
		var (
			e       Entry
			mode    string
			title   sql.NullString
			stats   string
			created int64
		)
		if err := rows.Scan(&e.ID, &mode, &e.TargetID, &title, &stats, &e.Comments, &e.Aligned, &created); err != nil {
			return nil, fmt.Errorf("history: scan: %w", err)
		}
		e.Mode = Mode(mode)
		e.Title = title.String
		if err := json.Unmarshal([]byte(stats), &e.Stats); err != nil {
			return nil, fmt.Errorf("history: decode stats of %d: %w", e.ID, err)
		}
		e.CreatedAt = time.Unix(0, created).UTC()
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// Close closes the database.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}
