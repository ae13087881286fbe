// Package wordcloud prepares weighted word lists for a client-side word
// cloud renderer.
package wordcloud

import (
	"fmt"
	"hash/fnv"
	"sort"

	"github.com/cognicore/hitflop/pkg/hitflop/dataset"
	"github.com/cognicore/hitflop/pkg/hitflop/frame"
	"github.com/cognicore/hitflop/pkg/hitflop/internalerr"
	"github.com/cognicore/hitflop/pkg/hitflop/normalize"
	"github.com/cognicore/hitflop/pkg/hitflop/stoplist"
)

// ErrNoScoreColumn is returned when a table has no recognised score column.
var ErrNoScoreColumn = fmt.Errorf("no tf-idf score column: %w", internalerr.ErrSchema)

// ScoreColumns are tried in order.
var ScoreColumns = []string{"score", "hit_mean_tfidf", "nonhit_mean_tfidf"}

// Palettes.
var (
	MovieHit = []string{"#fc8d59", "#f781bf", "#ff4c42"}
	DramaHit = []string{"#d73027", "#fc8d59", "#f781bf"}
	FlopAll  = []string{"#4d4d4d", "#91bfdb", "#c2a5cf"}
)

// Palette returns the colour palette of a content type and cohort.
func Palette(contentType, category string) []string {
	if category != dataset.Hit {
		return FlopAll
	}
	if contentType == normalize.Drama {
		return DramaHit
	}
	return MovieHit
}

// Options controls cloud size.
type Options struct {
	MaxWords int
	Width    int
	Height   int
	Stops    *stoplist.Manager
}

// DefaultOptions returns 60 words on an 800x500 canvas.
func DefaultOptions() Options {
	return Options{MaxWords: 60, Width: 800, Height: 500}
}

// Word is one placed word. Weight is the score relative to the top word.
type Word struct {
	Text   string  `json:"text"`
	Score  float64 `json:"score"`
	Weight float64 `json:"weight"`
	Color  string  `json:"color"`
}

// Cloud is the renderer input.
type Cloud struct {
	Width  int    `json:"width"`
	Height int    `json:"height"`
	Words  []Word `json:"words"`
}

// Build keeps the MaxWords highest-scoring keywords. A repeated keyword
// takes its last score; non-positive scores and stop terms are dropped.
func Build(keywords []dataset.Keyword, palette []string, opts Options) Cloud {
	if opts.MaxWords <= 0 {
		opts.MaxWords = DefaultOptions().MaxWords
	}
	cloud := Cloud{Width: opts.Width, Height: opts.Height, Words: []Word{}}

	order := make([]string, 0, len(keywords))
	scores := make(map[string]float64, len(keywords))
	for _, k := range keywords {
		if k.Keyword == "" || opts.Stops.IsStop(k.Keyword) {
			continue
		}
		if _, seen := scores[k.Keyword]; !seen {
			order = append(order, k.Keyword)
		}
		scores[k.Keyword] = k.Score
	}

	words := make([]Word, 0, len(order))
	for _, text := range order {
		if s := scores[text]; s > 0 {
			words = append(words, Word{Text: text, Score: s})
		}
	}
	sort.SliceStable(words, func(i, j int) bool { return words[i].Score > words[j].Score })
	if len(words) > opts.MaxWords {
		words = words[:opts.MaxWords]
	}
	if len(words) == 0 {
		return cloud
	}

	top := words[0].Score
	for i := range words {
		words[i].Weight = words[i].Score / top
		words[i].Color = Color(words[i].Text, palette)
	}
	cloud.Words = words
	return cloud
}

// FromFrame builds a cloud from a table with a keyword column and one of
// ScoreColumns.
func FromFrame(f *frame.Frame, palette []string, opts Options) (Cloud, error) {
	col := f.First(ScoreColumns...)
	if col == "" || !f.Has("keyword") {
		return Cloud{}, ErrNoScoreColumn
	}
	kws := make([]dataset.Keyword, 0, f.Len())
	for i := 0; i < f.Len(); i++ {
		score, ok := f.Float(i, col)
		if !ok {
			continue
		}
		kws = append(kws, dataset.Keyword{Keyword: f.Value(i, "keyword"), Score: score})
	}
	return Build(kws, palette, opts), nil
}

// Color picks a palette entry from a hash of the word, so a word keeps its
// colour across renders.
func Color(word string, palette []string) string {
	if len(palette) == 0 {
		return ""
	}
	h := fnv.New32a()
	h.Write([]byte(word))
	return palette[h.Sum32()%uint32(len(palette))]
}
