package sqlite

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cognicore/hitflop/pkg/hitflop/store"
)

func TestSchemaCreationIdempotent(t *testing.T) {
	ctx := context.Background()
	dbPath := filepath.Join(t.TempDir(), "posters.db")

	db, err := sql.Open("sqlite", dbPath)
	require.NoError(t, err)
	defer db.Close()

	for i := 0; i < 3; i++ {
		require.NoError(t, initSchema(ctx, db), "iteration %d", i)
	}

	var count int
	err = db.QueryRowContext(ctx, "SELECT COUNT(*) FROM sqlite_master WHERE type='table' AND name NOT LIKE 'sqlite_%'").Scan(&count)
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}

func TestSQLiteUpsertAndGet(t *testing.T) {
	ctx := context.Background()
	dbPath := filepath.Join(t.TempDir(), "posters.db")

	st, err := OpenSQLite(ctx, dbPath)
	require.NoError(t, err)
	defer st.Close()

	added, err := st.UpsertPosters(ctx, "movie", []store.Poster{
		{IMDbID: "tt0078748", Title: "Alien", Path: "/alien.jpg"},
		{IMDbID: "tt0078748", Title: "Alien", Path: "/later.jpg"},
		{IMDbID: "tt0113277", Title: "Heat"},
		{IMDbID: "  ", Title: "blank"},
	})
	require.NoError(t, err)
	assert.Equal(t, 2, added)

	p, found, err := st.GetPoster(ctx, "movie", "tt0078748")
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, "/alien.jpg", p.Path, "first row wins")

	p, found, err = st.GetPoster(ctx, "movie", "tt0113277")
	require.NoError(t, err)
	require.True(t, found)
	assert.False(t, p.Valid(), "poster without path")

	_, found, _ = st.GetPoster(ctx, "drama", "tt0078748")
	assert.False(t, found, "posters are scoped by content type")
}

func TestSQLiteReopenKeepsData(t *testing.T) {
	ctx := context.Background()
	dbPath := filepath.Join(t.TempDir(), "posters.db")

	st, err := OpenSQLite(ctx, dbPath)
	require.NoError(t, err)
	_, err = st.UpsertPosters(ctx, "drama", []store.Poster{{IMDbID: "tt1", Path: "/a.jpg"}})
	require.NoError(t, err)
	st.Close()

	st, err = OpenSQLite(ctx, dbPath)
	require.NoError(t, err)
	defer st.Close()

	n, err := st.CountPosters(ctx, "drama")
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}
