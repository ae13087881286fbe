package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cognicore/hitflop/pkg/hitflop/internalerr"
	"github.com/cognicore/hitflop/pkg/hitflop/topics"
)

const namesYAML = `
movie:
  hit:
    clusters:
      0: "Crime & Heists"
    topics:
      3: "Space Missions"
  flop:
    clusters:
      1: "Slasher Sequels"
drama:
  HIT:
    topics:
      2: "Office Romance"
  genre:
    topics:
      9: "ignored"
stop_terms: [the, And]
`

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadNames(t *testing.T) {
	nf, err := LoadNames(writeFile(t, "names.yaml", namesYAML))
	require.NoError(t, err)

	assert.Equal(t, "Crime & Heists", nf.Movie["hit"].Clusters[0])
	assert.Equal(t, "Space Missions", nf.Movie["hit"].Topics[3])
	assert.Len(t, nf.StopTerms, 2)
}

func TestLoadNamesInvalidYAML(t *testing.T) {
	_, err := LoadNames(writeFile(t, "names.yaml", "movie: [unclosed"))
	assert.ErrorIs(t, err, internalerr.ErrInvalidConfig)
}

func TestLoadStoplist(t *testing.T) {
	sl, err := LoadStoplist(writeFile(t, "stoplist.yaml", "terms:\n  - movie\n  - film\n"))
	require.NoError(t, err)
	assert.Equal(t, []string{"movie", "film"}, sl.Terms)
}

func TestLoaderAllEmpty(t *testing.T) {
	loader := Loader{}

	comp, err := loader.Load()
	require.NoError(t, err)

	require.NotNil(t, comp.Names)
	assert.Zero(t, comp.Names.Len())
	require.NotNil(t, comp.Stoplist)
	assert.Empty(t, comp.Stoplist.All())
}

func TestLoaderMissingFiles(t *testing.T) {
	for _, l := range []Loader{
		{NamesPath: "/nonexistent/names.yaml"},
		{StoplistPath: "/nonexistent/stoplist.yaml"},
	} {
		_, err := l.Load()
		assert.Error(t, err, "%+v", l)
	}
}

func TestLoaderValidFiles(t *testing.T) {
	loader := Loader{
		NamesPath:    writeFile(t, "names.yaml", namesYAML),
		StoplistPath: writeFile(t, "stoplist.yaml", "terms: [movie]\n"),
	}

	comp, err := loader.Load()
	require.NoError(t, err)

	assert.Equal(t, 4, comp.Names.Len())
	assert.Equal(t, "Crime & Heists", comp.Names.Display("movie", "hit", topics.KindCluster, 0))
	assert.Equal(t, "Slasher Sequels", comp.Names.Display("movie", "flop", topics.KindCluster, 1))
	assert.Equal(t, "Office Romance", comp.Names.Display("drama", "hit", topics.KindTopic, 2), "category is normalised")

	assert.Equal(t, []string{"and", "movie", "the"}, comp.Stoplist.All())
}
