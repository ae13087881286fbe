package dataset

import (
	"fmt"
	"strings"

	"github.com/cognicore/hitflop/pkg/hitflop/filter"
	"github.com/cognicore/hitflop/pkg/hitflop/frame"
	"github.com/cognicore/hitflop/pkg/hitflop/internalerr"
	"github.com/cognicore/hitflop/pkg/hitflop/stoplist"
)

// Limits applied while parsing keyword and title lists.
const (
	MaxKeywords = 10
)

// clusterAliases maps alternate cluster table headers onto canonical ones.
var clusterAliases = map[string]string{
	"클러스터": "cluster",
	"토픽번호": "topic_id",
	"키워드":  "keywords",
}

func requireColumns(f *frame.Frame, what string, cols ...string) error {
	for _, c := range cols {
		if !f.Has(c) {
			return fmt.Errorf("%s: column %q: %w", what, c, internalerr.ErrSchema)
		}
	}
	return nil
}

// ParseDeltas reads keyword, direction and delta_value (or score).
func ParseDeltas(f *frame.Frame) ([]KeywordDelta, error) {
	scoreCol := f.First("delta_value", "score")
	if err := requireColumns(f, "keyword deltas", "keyword", "direction"); err != nil {
		return nil, err
	}
	if scoreCol == "" {
		return nil, fmt.Errorf("keyword deltas: column %q: %w", "delta_value", internalerr.ErrSchema)
	}

	out := make([]KeywordDelta, 0, f.Len())
	for i := 0; i < f.Len(); i++ {
		score, _ := f.Float(i, scoreCol)
		out = append(out, KeywordDelta{
			Keyword:   f.Value(i, "keyword"),
			Direction: strings.TrimSpace(f.Value(i, "direction")),
			Score:     score,
		})
	}
	return out, nil
}

// KeywordsFor keeps the deltas favouring category: "hit" keeps hit+, any
// other category keeps nonhit+. File order is preserved.
func KeywordsFor(deltas []KeywordDelta, category string) []Keyword {
	want := DirectionNonHit
	if category == Hit {
		want = DirectionHit
	}
	out := make([]Keyword, 0, len(deltas))
	for _, d := range deltas {
		if d.Direction == want {
			out = append(out, Keyword{Keyword: d.Keyword, Score: d.Score})
		}
	}
	return out
}

// ParseTitles reads a cohort's UMAP map. Only topic is required; rows with an
// unparsable topic are treated as noise.
func ParseTitles(f *frame.Frame, contentType, category string) ([]Title, error) {
	if err := requireColumns(f, "umap map", "topic"); err != nil {
		return nil, err
	}
	hasCluster := f.Has("cluster")
	yearOf := filter.YearOf(f)
	label := HitLabelFor(category)

	out := make([]Title, 0, f.Len())
	for i := 0; i < f.Len(); i++ {
		r := f.Row(i)
		t := Title{
			Title:       strings.TrimSpace(r.Get("title")),
			ContentType: contentType,
			HitLabel:    label,
			Topic:       NoiseID,
			Cluster:     NoiseID,
			HasCluster:  hasCluster,
			IMDbID:      strings.TrimSpace(r.Get("imdb_id")),
		}
		if v, ok := r.Int("topic"); ok {
			t.Topic = v
		}
		if hasCluster {
			if v, ok := r.Int("cluster"); ok {
				t.Cluster = v
			}
		}
		x, okX := r.Float("umap_x")
		y, okY := r.Float("umap_y")
		if okX && okY {
			t.X, t.Y, t.HasXY = x, y, true
		}
		if v, ok := r.Float("hit_score"); ok {
			score := v
			t.HitScore = &score
		}
		if yearOf != nil {
			if y, ok := yearOf(r); ok {
				t.Year = y
			}
		}
		out = append(out, t)
	}
	return out, nil
}

// TitlesFromTopics builds placeholder titles from a topic-info table, one per
// topic row, with empty titles and no coordinates.
func TitlesFromTopics(f *frame.Frame, contentType, category string) ([]Title, error) {
	return ParseTitles(f.Rename(map[string]string{"Topic": "topic"}).
		WithColumn("title", make([]string, f.Len())), contentType, category)
}

// ParseTopics reads a topic-info table (Topic, Name, Count,
// Representative_Docs_Titles). Keywords come from Name split on "_" with
// numeric tokens and stop terms removed.
func ParseTopics(f *frame.Frame, stops *stoplist.Manager) ([]Topic, error) {
	idCol := f.First("Topic", "topic")
	if idCol == "" {
		return nil, fmt.Errorf("topic info: column %q: %w", "Topic", internalerr.ErrSchema)
	}

	out := make([]Topic, 0, f.Len())
	for i := 0; i < f.Len(); i++ {
		r := f.Row(i)
		id, ok := r.Int(idCol)
		if !ok {
			continue
		}
		count, _ := r.Int("Count")
		name := r.Get("Name")
		out = append(out, Topic{
			ID:       id,
			Name:     name,
			Keywords: stops.Tokens(name, "_", MaxKeywords),
			Count:    count,
			Titles:   SplitTitles(r.Get("Representative_Docs_Titles")),
		})
	}
	return out, nil
}

// SplitTitles parses a pipe-delimited title list, dropping empty entries.
func SplitTitles(raw string) []string {
	var out []string
	for _, t := range strings.Split(raw, "|") {
		if t = strings.TrimSpace(t); t != "" {
			out = append(out, t)
		}
	}
	return out
}

// CanonicalClusters renames alternate cluster headers to cluster, topic_id
// and keywords.
func CanonicalClusters(f *frame.Frame) *frame.Frame {
	return f.Rename(clusterAliases)
}

// ParseClusters reads a cluster table after header canonicalisation. Rows
// without a numeric cluster and topic id are skipped.
func ParseClusters(f *frame.Frame, stops *stoplist.Manager) ([]Cluster, error) {
	f = CanonicalClusters(f)
	if err := requireColumns(f, "clusters", "cluster", "topic_id"); err != nil {
		return nil, err
	}

	out := make([]Cluster, 0, f.Len())
	for i := 0; i < f.Len(); i++ {
		r := f.Row(i)
		id, ok := r.Int("cluster")
		if !ok {
			continue
		}
		topic, ok := r.Int("topic_id")
		if !ok {
			continue
		}
		out = append(out, Cluster{
			ID:       id,
			TopicID:  topic,
			Keywords: stops.Tokens(r.Get("keywords"), ",", MaxKeywords),
		})
	}
	return out, nil
}

// ParseComparison reads the unique-keyword comparison table. Scores of
// empty cells are zero.
func ParseComparison(f *frame.Frame) ([]KeywordComparison, error) {
	if f.First("hit_unique_keyword", "flop_unique_keyword") == "" {
		return nil, fmt.Errorf("keyword comparison: %w", internalerr.ErrSchema)
	}
	out := make([]KeywordComparison, 0, f.Len())
	for i := 0; i < f.Len(); i++ {
		r := f.Row(i)
		hs, _ := r.Float("hit_unique_score")
		fs, _ := r.Float("flop_unique_score")
		out = append(out, KeywordComparison{
			HitKeyword:  strings.TrimSpace(r.Get("hit_unique_keyword")),
			HitScore:    hs,
			FlopKeyword: strings.TrimSpace(r.Get("flop_unique_keyword")),
			FlopScore:   fs,
		})
	}
	return out, nil
}
