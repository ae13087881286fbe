package frame

import (
	"path/filepath"
	"strings"
	"testing"

	"github.com/parquet-go/parquet-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cognicore/hitflop/pkg/hitflop/internalerr"
)

func TestDecodeCSVStripsBOMAndPadsRows(t *testing.T) {
	data := "\ufefftitle,year,hit\nAlpha,2019,1\nBeta,2020\n"

	f, err := DecodeCSV(strings.NewReader(data))
	require.NoError(t, err)

	assert.Equal(t, []string{"title", "year", "hit"}, f.Columns())
	assert.Equal(t, 2, f.Len())
	assert.Equal(t, "", f.Value(1, "hit"))

	year, ok := f.Int(0, "year")
	assert.True(t, ok)
	assert.Equal(t, 2019, year)
}

func TestDecodeCSVEmpty(t *testing.T) {
	f, err := DecodeCSV(strings.NewReader(""))
	require.NoError(t, err)
	assert.True(t, f.Empty())
}

func TestReadCSVMissingFile(t *testing.T) {
	_, err := ReadCSV(filepath.Join(t.TempDir(), "nope.csv"))
	require.Error(t, err)
	assert.ErrorIs(t, err, internalerr.ErrNotFound)
}

func TestFilterDoesNotMutateSource(t *testing.T) {
	f := New([]string{"k"}, [][]string{{"a"}, {"b"}, {"c"}})

	out := f.Filter(func(r Row) bool { return r.Get("k") != "b" })

	assert.Equal(t, 3, f.Len())
	assert.Equal(t, []string{"a", "c"}, out.Column("k"))
	assert.Equal(t, 1, out.Row(1).Index())
}

func TestWithColumnAddsAndReplaces(t *testing.T) {
	f := New([]string{"k"}, [][]string{{"a"}, {"b"}})

	added := f.WithColumn("v", []string{"1", "2"})
	assert.Equal(t, []string{"k", "v"}, added.Columns())
	assert.False(t, f.Has("v"))

	replaced := added.WithColumn("k", []string{"x", "y"})
	assert.Equal(t, []string{"x", "y"}, replaced.Column("k"))
	assert.Equal(t, []string{"a", "b"}, added.Column("k"))
}

func TestRenameAndSelect(t *testing.T) {
	f := New([]string{"delta_value", "keyword"}, [][]string{{"0.5", "love"}})

	renamed := f.Rename(map[string]string{"delta_value": "score"})
	assert.True(t, renamed.Has("score"))
	assert.False(t, renamed.Has("delta_value"))

	sel := renamed.Select("keyword", "score", "missing")
	assert.Equal(t, []string{"keyword", "score"}, sel.Columns())
}

func TestParseInt(t *testing.T) {
	tests := []struct {
		in   string
		want int
		ok   bool
	}{
		{"12", 12, true},
		{" 12.0 ", 12, true},
		{"12.5", 0, false},
		{"", 0, false},
		{"nan", 0, false},
		{"abc", 0, false},
	}
	for _, tt := range tests {
		got, ok := ParseInt(tt.in)
		assert.Equal(t, tt.ok, ok, tt.in)
		assert.Equal(t, tt.want, got, tt.in)
	}
}

func TestParseFloatRejectsNonFinite(t *testing.T) {
	for _, in := range []string{"nan", "NaN", "inf", "+Inf", "-inf", "Infinity", "", "x"} {
		_, ok := ParseFloat(in)
		assert.False(t, ok, in)
	}

	v, ok := ParseFloat(" 6.5 ")
	assert.True(t, ok)
	assert.Equal(t, 6.5, v)

	_, ok = ParseInt("inf")
	assert.False(t, ok)
}

func TestNilFrameIsSafe(t *testing.T) {
	var f *Frame
	assert.Equal(t, 0, f.Len())
	assert.False(t, f.Has("x"))
	assert.Nil(t, f.Filter(func(Row) bool { return true }))
	assert.Empty(t, f.Records())
}

type posterRow struct {
	IMDbID     string  `parquet:"imdb_id"`
	Title      string  `parquet:"title"`
	PosterPath string  `parquet:"poster_path"`
	Score      float64 `parquet:"score"`
}

func TestReadParquet(t *testing.T) {
	path := filepath.Join(t.TempDir(), "posters.parquet")
	rows := []posterRow{
		{IMDbID: "tt1", Title: "Alpha", PosterPath: "/a.jpg", Score: 0.5},
		{IMDbID: "tt2", Title: "Beta", PosterPath: "", Score: 1},
	}
	require.NoError(t, parquet.WriteFile(path, rows))

	f, err := ReadParquet(path, "imdb_id", "poster_path")
	require.NoError(t, err)
	assert.Equal(t, []string{"imdb_id", "poster_path"}, f.Columns())
	assert.Equal(t, 2, f.Len())
	assert.Equal(t, "/a.jpg", f.Value(0, "poster_path"))

	all, err := ReadParquet(path)
	require.NoError(t, err)
	score, ok := all.Float(0, "score")
	assert.True(t, ok)
	assert.InDelta(t, 0.5, score, 1e-9)
}

func TestReadParquetMissingColumn(t *testing.T) {
	path := filepath.Join(t.TempDir(), "posters.parquet")
	require.NoError(t, parquet.WriteFile(path, []posterRow{{IMDbID: "tt1"}}))

	_, err := ReadParquet(path, "nope")
	assert.ErrorIs(t, err, internalerr.ErrSchema)
}

func TestReadParquetMissingFile(t *testing.T) {
	_, err := ReadParquet(filepath.Join(t.TempDir(), "none.parquet"))
	assert.ErrorIs(t, err, internalerr.ErrNotFound)
}
