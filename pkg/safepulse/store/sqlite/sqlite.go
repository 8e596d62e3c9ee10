package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "modernc.org/sqlite"

	"github.com/gaurvviii/safepulse/pkg/safepulse/store"
)

// snapshot implements store.Snapshot on SQLite. Save replaces the
// whole incident list in one transaction, so readers either see the
// previous snapshot or the new one, never a partial write.
type snapshot struct {
	db *sql.DB
}

// Open opens (or creates) the snapshot database at path with WAL mode
// enabled.
func Open(ctx context.Context, path string) (store.Snapshot, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}

	// Enable WAL mode for better concurrency
	if _, err := db.ExecContext(ctx, "PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, err
	}

	if err := initSchema(ctx, db); err != nil {
		db.Close()
		return nil, err
	}

	return &snapshot{db: db}, nil
}

func initSchema(ctx context.Context, db *sql.DB) error {
	schema := `
CREATE TABLE IF NOT EXISTS incidents (
	id TEXT NOT NULL,
	title TEXT NOT NULL,
	summary TEXT,
	source_url TEXT,
	source_name TEXT,
	lat REAL NOT NULL,
	lon REAL NOT NULL,
	published_at TEXT,
	position INTEGER NOT NULL,
	PRIMARY KEY(position)
);
`
	_, err := db.ExecContext(ctx, schema)
	return err
}

// Close closes the database connection.
func (s *snapshot) Close() error {
	return s.db.Close()
}

// Load returns the persisted incident list in stored order.
func (s *snapshot) Load(ctx context.Context) ([]store.Incident, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, title, summary, source_url, source_name, lat, lon, published_at
		FROM incidents ORDER BY position`)
	if err != nil {
		return nil, fmt.Errorf("sqlite: load: %w", err)
	}
	defer rows.Close()

	var incidents []store.Incident
	for rows.Next() {
		var inc store.Incident
		var publishedAt string
		if err := rows.Scan(&inc.ID, &inc.Title, &inc.Summary, &inc.SourceURL,
			&inc.SourceName, &inc.Coordinate.Lat, &inc.Coordinate.Lon, &publishedAt); err != nil {
			return nil, fmt.Errorf("sqlite: scan: %w", err)
		}
		if ts, err := time.Parse(time.RFC3339Nano, publishedAt); err == nil {
			inc.PublishedAt = ts
		}
		incidents = append(incidents, inc)
	}
	return incidents, rows.Err()
}

// Save atomically replaces the persisted list.
func (s *snapshot) Save(ctx context.Context, incidents []store.Incident) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("sqlite: begin: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM incidents`); err != nil {
		return fmt.Errorf("sqlite: clear: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO incidents(id, title, summary, source_url, source_name, lat, lon, published_at, position)
		VALUES(?,?,?,?,?,?,?,?,?)`)
	if err != nil {
		return fmt.Errorf("sqlite: prepare: %w", err)
	}
	defer stmt.Close()

	for pos, inc := range incidents {
		_, err := stmt.ExecContext(ctx, inc.ID, inc.Title, inc.Summary, inc.SourceURL,
			inc.SourceName, inc.Coordinate.Lat, inc.Coordinate.Lon,
			inc.PublishedAt.UTC().Format(time.RFC3339Nano), pos)
		if err != nil {
			return fmt.Errorf("sqlite: insert %s: %w", inc.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("sqlite: commit: %w", err)
	}
	return nil
}
