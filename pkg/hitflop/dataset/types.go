// Package dataset turns the dashboard's flat-file artifacts into typed
// records and serves them through a read-through cache.
package dataset

import (
	"fmt"
	"strings"

	"github.com/cognicore/hitflop/pkg/hitflop/internalerr"
	"github.com/cognicore/hitflop/pkg/hitflop/normalize"
)

// Cohort categories.
const (
	Hit  = "hit"
	Flop = "flop"
)

// Keyword-delta directions.
const (
	DirectionHit    = "hit+"
	DirectionNonHit = "nonhit+"
)

// NoiseID marks titles that belong to no topic or cluster.
const NoiseID = -1

// Title is one row of a cohort's UMAP map.
type Title struct {
	Title       string   `json:"title"`
	ContentType string   `json:"content_type"`
	HitLabel    string   `json:"hit_label"`
	Year        int      `json:"year,omitempty"`
	Topic       int      `json:"topic_id"`
	Cluster     int      `json:"cluster_id"`
	HasCluster  bool     `json:"-"`
	X           float64  `json:"umap_x"`
	Y           float64  `json:"umap_y"`
	HasXY       bool     `json:"-"`
	HitScore    *float64 `json:"hit_score,omitempty"`
	IMDbID      string   `json:"imdb_id,omitempty"`
}

// Topic is one row of a cohort's topic-info table.
type Topic struct {
	ID       int      `json:"topic_id"`
	Name     string   `json:"name"`
	Keywords []string `json:"keywords"`
	Count    int      `json:"count"`
	Titles   []string `json:"representative_titles"`
}

// Cluster maps one topic to its cluster.
type Cluster struct {
	ID       int      `json:"cluster_id"`
	TopicID  int      `json:"topic_id"`
	Keywords []string `json:"keywords"`
}

// KeywordDelta is one row of the TF-IDF delta table.
type KeywordDelta struct {
	Keyword   string  `json:"keyword"`
	Direction string  `json:"direction"`
	Score     float64 `json:"score"`
}

// Keyword is a scored keyword.
type Keyword struct {
	Keyword string  `json:"keyword"`
	Score   float64 `json:"score"`
}

// KeywordComparison is one row of the hit/flop unique keyword table. Either
// side may be empty.
type KeywordComparison struct {
	HitKeyword  string  `json:"hit_keyword"`
	HitScore    float64 `json:"hit_score"`
	FlopKeyword string  `json:"flop_keyword"`
	FlopScore   float64 `json:"flop_score"`
}

// Cohort holds the BERTopic artifacts of one category.
type Cohort struct {
	Category string
	Titles   []Title
	Clusters []Cluster
	Topics   []Topic

	// HasCoordinates is false when the UMAP map was replaced by the
	// topic-info fallback or lacks umap_x/umap_y.
	HasCoordinates bool
	// HasClusterColumn is true when the map already carried cluster ids.
	HasClusterColumn bool
}

// Topic returns the topic-info row for id.
func (c *Cohort) Topic(id int) (Topic, bool) {
	for _, t := range c.Topics {
		if t.ID == id {
			return t, true
		}
	}
	return Topic{}, false
}

// Bundle is everything the synopsis page needs for one content type.
type Bundle struct {
	ContentType string
	Cohorts     map[string]*Cohort
	// Comparison is nil when keyword_comparison.csv is absent.
	Comparison []KeywordComparison
}

// Cohort returns the cohort for category.
func (b *Bundle) Cohort(category string) (*Cohort, error) {
	if b == nil {
		return nil, internalerr.ErrNotFound
	}
	c, ok := b.Cohorts[category]
	if !ok {
		return nil, fmt.Errorf("cohort %q: %w", category, internalerr.ErrNotFound)
	}
	return c, nil
}

// ParseContentType accepts any label the content-type normalizer knows.
func ParseContentType(s string) (string, error) {
	ct, ok := normalize.ContentType.Value(s)
	if !ok {
		return "", fmt.Errorf("content type %q: %w", s, internalerr.ErrInvalidInput)
	}
	return ct, nil
}

// ParseCategory accepts hit or flop, case-insensitively.
func ParseCategory(s string) (string, error) {
	switch c := strings.ToLower(strings.TrimSpace(s)); c {
	case Hit, Flop:
		return c, nil
	default:
		return "", fmt.Errorf("category %q: %w", s, internalerr.ErrInvalidInput)
	}
}

// HitLabelFor maps a cohort category to its canonical hit label.
func HitLabelFor(category string) string {
	if category == Hit {
		return normalize.Hit
	}
	return normalize.NonHit
}
