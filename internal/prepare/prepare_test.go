package prepare

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cognicore/hitflop/internal/fixture"
	"github.com/cognicore/hitflop/pkg/hitflop/dataset"
)

func TestSourcePath(t *testing.T) {
	assert.Equal(t, filepath.Join("src", "TF-IDF_Drama", SourceFile), SourcePath("src", "drama"))
	assert.Equal(t, filepath.Join("src", "TF-IDF_Movie", SourceFile), SourcePath("src", "movie"))
}

func TestRunCopiesDeltaTables(t *testing.T) {
	source, root := t.TempDir(), t.TempDir()
	fixture.WriteFile(t, source, filepath.Join("TF-IDF_Drama", SourceFile), fixture.Deltas)

	p := &Preparer{Source: source, Root: root}
	results, err := p.Run(context.Background())
	require.NoError(t, err)
	require.Len(t, results, 2)

	drama, movie := results[0], results[1]
	assert.True(t, drama.Copied)
	assert.Equal(t, int64(len(fixture.Deltas)), drama.Bytes)
	assert.False(t, movie.Copied, "missing movie table is skipped")

	got, err := os.ReadFile(filepath.Join(root, dataset.DeltaPath("drama")))
	require.NoError(t, err)
	assert.Equal(t, fixture.Deltas, string(got))

	_, err = os.Stat(filepath.Join(root, dataset.DeltaPath("movie")))
	assert.True(t, os.IsNotExist(err))
}

func TestRunOverwritesAndLoads(t *testing.T) {
	source, root := t.TempDir(), t.TempDir()
	fixture.WriteFile(t, root, dataset.DeltaPath("movie"), "keyword,direction\nold,hit+\n")
	fixture.WriteFile(t, source, filepath.Join("TF-IDF_Movie", SourceFile), "keyword,direction,delta_value\nnew,hit+,1\n")

	_, err := (&Preparer{Source: source, Root: root}).Run(context.Background())
	require.NoError(t, err)

	kws, err := dataset.NewLoader(dataset.LoaderOptions{Root: root}).Keywords(context.Background(), "movie", "hit")
	require.NoError(t, err)
	require.Len(t, kws, 1)
	assert.Equal(t, "new", kws[0].Keyword)
}

func TestRunCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := (&Preparer{Source: t.TempDir(), Root: t.TempDir()}).Run(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}
