package history

import (
	"context"
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"strconv"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

//go:embed schema/*.sql
var schemaFS embed.FS

// PostgresStore keeps history in Postgres through a pgx pool.
type PostgresStore struct {
	pool *pgxpool.Pool
}

// ConnectPostgres creates a pgx pool and applies the embedded schema.
func ConnectPostgres(ctx context.Context, databaseURL string) (*PostgresStore, error) {
	if databaseURL == "" {
		return nil, errors.New("DATABASE_URL is required")
	}

	config, err := pgxpool.ParseConfig(databaseURL)
	if err != nil {
		return nil, fmt.Errorf("parse DATABASE_URL: %w", err)
	}
	config.MaxConns = 4
	config.MinConns = 1

	pool, err := pgxpool.NewWithConfig(ctx, config)
	if err != nil {
		return nil, fmt.Errorf("create pgx pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}

	s := &PostgresStore{pool: pool}
	if err := s.runMigrations(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	slog.Info("history postgres connected", slog.String("addr", config.ConnConfig.Host))
	return s, nil
}

func (s *PostgresStore) runMigrations(ctx context.Context) error {
	entries, err := schemaFS.ReadDir("schema")
	if err != nil {
		return fmt.Errorf("read schema dir: %w", err)
	}
	sort.Slice(entries, func(i, j int) bool {
		return entries[i].Name() < entries[j].Name()
	})

	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".sql") {
			continue
		}
		data, err := schemaFS.ReadFile("schema/" + entry.Name())
		if err != nil {
			return fmt.Errorf("read %s: %w", entry.Name(), err)
		}
		if _, err := s.pool.Exec(ctx, string(data)); err != nil {
			return fmt.Errorf("execute %s: %w", entry.Name(), err)
		}
		slog.Debug("migration applied", slog.String("file", entry.Name()))
	}
	return nil
}

// Record inserts e and returns its id. A zero CreatedAt defaults to now() on the server.
func (s *PostgresStore) Record(ctx context.Context, e Entry) (int64, error) {
	if err := validate(e); err != nil {
		return 0, err
	}
	stats, err := json.Marshal(e.Stats)
	if err != nil {
		return 0, fmt.Errorf("history: marshal stats: %w", err)
	}

	var id int64
	if e.CreatedAt.IsZero() {
		err = s.pool.QueryRow(ctx,
			`INSERT INTO yt_analyses (mode, target_id, title, stats, comments, aligned)
			 VALUES ($1, $2, $3, $4, $5, $6) RETURNING id`,
			string(e.Mode), e.TargetID, e.Title, stats, e.Comments, e.Aligned,
		).Scan(&id)
	} else {
		err = s.pool.QueryRow(ctx,
			`INSERT INTO yt_analyses (mode, target_id, title, stats, comments, aligned, created_at)
			 VALUES ($1, $2, $3, $4, $5, $6, $7) RETURNING id`,
			string(e.Mode), e.TargetID, e.Title, stats, e.Comments, e.Aligned, e.CreatedAt,
		).Scan(&id)
	}
	if err != nil {
		return 0, fmt.Errorf("history: insert: %w", err)
	}
	return id, nil
}

// List returns matching entries, newest first.
func (s *PostgresStore) List(ctx context.Context, f Filter) ([]Entry, error) {
	var (
		where []string
		args  []any
	)
	if f.Mode != "" {
		args = append(args, string(f.Mode))
		where = append(where, "mode = $"+strconv.Itoa(len(args)))
	}
	if f.TargetID != "" {
		args = append(args, f.TargetID)
		where = append(where, "target_id = $"+strconv.Itoa(len(args)))
	}
	q := `SELECT id, mode, target_id, title, stats, comments, aligned, created_at FROM yt_analyses`
	if len(where) > 0 {
		q += " WHERE " + strings.Join(where, " AND ")
	}
	args = append(args, f.limit())
	q += " ORDER BY created_at DESC, id DESC LIMIT $" + strconv.Itoa(len(args))

	rows, err := s.pool.Query(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("history: query: %w", err)
	}
	entries, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (Entry, error) {
		var (
			e     Entry
			mode  string
			stats []byte
		)
		if err := row.Scan(&e.ID, &mode, &e.TargetID, &e.Title, &stats, &e.Comments, &e.Aligned, &e.CreatedAt); err != nil {
			return Entry{}, err
		}
		e.Mode = Mode(mode)
		if err := json.Unmarshal(stats, &e.Stats); err != nil {
			return Entry{}, fmt.Errorf("decode stats of %d: %w", e.ID, err)
		}
		return e, nil
	})
	if err != nil {
		return nil, fmt.Errorf("history: collect: %w", err)
	}
	if entries == nil {
		entries = []Entry{}
	}
	return entries, nil
}

// Close closes the pool.
func (s *PostgresStore) Close() error {
	s.pool.Close()
	return nil
}
