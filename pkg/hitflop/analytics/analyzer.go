package analytics

import (
	"fmt"
	"sort"
	"strings"

	"github.com/cognicore/hitflop/pkg/hitflop/filter"
	"github.com/cognicore/hitflop/pkg/hitflop/frame"
	"github.com/cognicore/hitflop/pkg/hitflop/normalize"
)

// TopN is the length of the overview leaderboard.
const TopN = 5

// Column candidates, first present wins.
var (
	RatingColumns = []string{"rating", "vote_average", "avg_rating"}
	ReviewColumns = []string{"review_count", "num_reviews"}
)

// Record is one title as seen by the analyzer.
type Record struct {
	Title    string
	HitLabel string
	Year     int // 0 when unknown
	Rating   *float64
	Reviews  *float64
	HitScore *float64
}

// Analyzer aggregates title-level KPIs.
type Analyzer struct {
	total     int
	labelled  int
	hits      int
	ratingSum float64
	ratingN   int
	reviews   float64
	reviewsN  int
	yearly    map[int]map[string]int
	records   []Record
}

// NewAnalyzer creates an empty analyzer.
func NewAnalyzer() *Analyzer {
	return &Analyzer{yearly: make(map[int]map[string]int)}
}

// Process consumes one title.
func (a *Analyzer) Process(r Record) {
	a.total++
	if r.HitLabel != "" {
		a.labelled++
		if r.HitLabel == normalize.Hit {
			a.hits++
		}
	}
	if r.Rating != nil {
		a.ratingSum += *r.Rating
		a.ratingN++
	}
	if r.Reviews != nil {
		a.reviews += *r.Reviews
		a.reviewsN++
	}
	if r.Year != 0 {
		label := r.HitLabel
		if label == "" {
			label = "Unlabelled"
		}
		if a.yearly[r.Year] == nil {
			a.yearly[r.Year] = make(map[string]int)
		}
		a.yearly[r.Year][label]++
	}
	a.records = append(a.records, r)
}

// KPI is a metric that may be unavailable when its column is missing.
type KPI struct {
	Value     float64 `json:"value"`
	Available bool    `json:"available"`
}

// Format renders the value with layout, or "-" when unavailable.
func (k KPI) Format(layout string) string {
	if !k.Available {
		return "-"
	}
	return fmt.Sprintf(layout, k.Value)
}

// YearCount is the number of titles of one label in one year.
type YearCount struct {
	Year  int    `json:"year"`
	Label string `json:"label"`
	Count int    `json:"count"`
}

// TopTitle is one leaderboard entry.
type TopTitle struct {
	Title    string  `json:"title"`
	Score    float64 `json:"score"`
	HitLabel string  `json:"hit_label,omitempty"`
	Year     int     `json:"year,omitempty"`
}

// Summary is the overview page's data.
type Summary struct {
	TotalTitles  int         `json:"total_titles"`
	HitRate      KPI         `json:"hit_rate"`
	AvgRating    KPI         `json:"avg_rating"`
	TotalReviews KPI         `json:"total_reviews"`
	Yearly       []YearCount `json:"yearly"`
	Top          []TopTitle  `json:"top"`
	TopBy        string      `json:"top_by,omitempty"`
}

// Snapshot returns the aggregated summary. Hit rate is the share of Hit
// among labelled titles, as a percentage.
func (a *Analyzer) Snapshot() Summary {
	s := Summary{TotalTitles: a.total, Yearly: []YearCount{}, Top: []TopTitle{}}
	if a.labelled > 0 {
		s.HitRate = KPI{Value: 100 * float64(a.hits) / float64(a.labelled), Available: true}
	}
	if a.ratingN > 0 {
		s.AvgRating = KPI{Value: a.ratingSum / float64(a.ratingN), Available: true}
	}
	if a.reviewsN > 0 {
		s.TotalReviews = KPI{Value: a.reviews, Available: true}
	}

	years := make([]int, 0, len(a.yearly))
	for y := range a.yearly {
		years = append(years, y)
	}
	sort.Ints(years)
	for _, y := range years {
		labels := make([]string, 0, len(a.yearly[y]))
		for l := range a.yearly[y] {
			labels = append(labels, l)
		}
		sort.Strings(labels)
		for _, l := range labels {
			s.Yearly = append(s.Yearly, YearCount{Year: y, Label: l, Count: a.yearly[y][l]})
		}
	}

	s.Top, s.TopBy = a.top()
	return s
}

func (a *Analyzer) top() ([]TopTitle, string) {
	pick := func(r Record) *float64 { return r.HitScore }
	by := "hit_score"
	if !a.any(pick) {
		pick = func(r Record) *float64 { return r.Rating }
		by = "rating"
		if !a.any(pick) {
			return []TopTitle{}, ""
		}
	}

	out := make([]TopTitle, 0, len(a.records))
	for _, r := range a.records {
		if v := pick(r); v != nil {
			out = append(out, TopTitle{Title: r.Title, Score: *v, HitLabel: r.HitLabel, Year: r.Year})
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Score > out[j].Score })
	if len(out) > TopN {
		out = out[:TopN]
	}
	return out, by
}

func (a *Analyzer) any(pick func(Record) *float64) bool {
	for _, r := range a.records {
		if pick(r) != nil {
			return true
		}
	}
	return false
}

// Records converts a normalised frame into analyzer records.
func Records(f *frame.Frame) []Record {
	ratingCol := f.First(RatingColumns...)
	reviewCol := f.First(ReviewColumns...)
	yearOf := filter.YearOf(f)

	out := make([]Record, 0, f.Len())
	for i := 0; i < f.Len(); i++ {
		r := f.Row(i)
		rec := Record{
			Title:    strings.TrimSpace(r.Get("title")),
			HitLabel: r.Get(normalize.ColumnHitLabel),
			Rating:   floatPtr(r, ratingCol),
			Reviews:  floatPtr(r, reviewCol),
			HitScore: floatPtr(r, "hit_score"),
		}
		if yearOf != nil {
			if y, ok := yearOf(r); ok {
				rec.Year = y
			}
		}
		out = append(out, rec)
	}
	return out
}

// Summarize runs an analyzer over every row of f.
func Summarize(f *frame.Frame) Summary {
	a := NewAnalyzer()
	for _, r := range Records(f) {
		a.Process(r)
	}
	return a.Snapshot()
}

func floatPtr(r frame.Row, col string) *float64 {
	if col == "" {
		return nil
	}
	v, ok := r.Float(col)
	if !ok {
		return nil
	}
	return &v
}
