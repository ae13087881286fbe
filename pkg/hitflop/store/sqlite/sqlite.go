package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	_ "modernc.org/sqlite"

	"github.com/cognicore/hitflop/pkg/hitflop/internalerr"
	"github.com/cognicore/hitflop/pkg/hitflop/store"
)

// sqliteStore implements the PosterStore interface using SQLite
type sqliteStore struct {
	db *sql.DB
}

// OpenSQLite opens a SQLite poster index with WAL mode enabled, creating the
// schema when missing.
func OpenSQLite(ctx context.Context, path string) (store.PosterStore, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %v: %w", path, err, internalerr.ErrStoreUnavailable)
	}

	// WAL lets the server read while index-posters writes
	if _, err := db.ExecContext(ctx, "PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("enable WAL on %s: %v: %w", path, err, internalerr.ErrStoreUnavailable)
	}

	if err := initSchema(ctx, db); err != nil {
		db.Close()
		return nil, err
	}

	return &sqliteStore{db: db}, nil
}

// Close closes the database connection
func (s *sqliteStore) Close() error {
	return s.db.Close()
}

// initSchema creates tables if they don't exist
func initSchema(ctx context.Context, db *sql.DB) error {
	schema := `
CREATE TABLE IF NOT EXISTS posters (
	content_type TEXT NOT NULL,
	imdb_id TEXT NOT NULL,
	title TEXT,
	poster_path TEXT,
	PRIMARY KEY(content_type, imdb_id)
);

CREATE INDEX IF NOT EXISTS posters_title ON posters(content_type, title);
`

	_, err := db.ExecContext(ctx, schema)
	return err
}

// UpsertPosters inserts posters in one transaction. Existing ids are kept.
func (s *sqliteStore) UpsertPosters(ctx context.Context, contentType string, posters []store.Poster) (int, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, err
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, `
INSERT INTO posters (content_type, imdb_id, title, poster_path)
VALUES (?, ?, ?, ?)
ON CONFLICT(content_type, imdb_id) DO NOTHING;
`)
	if err != nil {
		return 0, err
	}
	defer stmt.Close()

	added := 0
	for _, p := range posters {
		id := strings.TrimSpace(p.IMDbID)
		if id == "" {
			continue
		}
		res, err := stmt.ExecContext(ctx, contentType, id, p.Title, p.Path)
		if err != nil {
			return 0, err
		}
		if n, err := res.RowsAffected(); err == nil {
			added += int(n)
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, err
	}
	return added, nil
}

// GetPoster returns the poster for an IMDb id
func (s *sqliteStore) GetPoster(ctx context.Context, contentType, imdbID string) (store.Poster, bool, error) {
	var (
		p     store.Poster
		title sql.NullString
		path  sql.NullString
	)
	err := s.db.QueryRowContext(ctx, `
SELECT imdb_id, title, poster_path FROM posters
WHERE content_type=? AND imdb_id=?
`, contentType, strings.TrimSpace(imdbID)).Scan(&p.IMDbID, &title, &path)
	if err == sql.ErrNoRows {
		return store.Poster{}, false, nil
	}
	if err != nil {
		return store.Poster{}, false, err
	}
	p.Title = title.String
	p.Path = path.String
	return p, true, nil
}

// CountPosters counts stored posters for a content type
func (s *sqliteStore) CountPosters(ctx context.Context, contentType string) (int, error) {
	var n int
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM posters WHERE content_type=?`, contentType).Scan(&n)
	return n, err
}
