// Package normalize maps heterogeneous categorical columns onto a closed set
// of canonical labels. Rows whose value has no mapping are dropped; the
// number of dropped rows is reported so callers can surface data-quality
// problems.
package normalize

import (
	"strings"

	"github.com/cognicore/hitflop/pkg/hitflop/frame"
)

// Canonical column names written by the built-in fields.
const (
	ColumnContentType = "content_type"
	ColumnHitLabel    = "hit_label"
)

// Canonical values.
const (
	Movie  = "movie"
	Drama  = "drama"
	Hit    = "Hit"
	NonHit = "Non-Hit"
)

// Field describes one logical field: where to look for it and how raw values
// map to canonical ones. Mapping keys are lower-case and trimmed.
type Field struct {
	Canonical  string
	Candidates []string
	Mapping    map[string]string
}

// ContentType normalizes movie/drama labels.
var ContentType = Field{
	Canonical:  ColumnContentType,
	Candidates: []string{"content_type", "type", "content"},
	Mapping: map[string]string{
		"movie":     Movie,
		"film":      Movie,
		"tv":        Drama,
		"drama":     Drama,
		"series":    Drama,
		"tv_series": Drama,
	},
}

// HitLabel normalizes hit/non-hit labels.
var HitLabel = Field{
	Canonical:  ColumnHitLabel,
	Candidates: []string{"hit_label", "hit_type", "hit"},
	Mapping: map[string]string{
		"hit":     Hit,
		"1":       Hit,
		"true":    Hit,
		"non-hit": NonHit,
		"nonhit":  NonHit,
		"0":       NonHit,
		"false":   NonHit,
	},
}

// Result reports what Apply did.
type Result struct {
	Field   string
	Column  string // source column used, "" when none was present
	Dropped int
}

// Apply normalizes field in f. The input frame is never modified.
func Apply(f *frame.Frame, field Field) (*frame.Frame, Result) {
	res := Result{Field: field.Canonical}
	if f.Empty() {
		return f, res
	}

	col := f.First(field.Candidates...)
	if col == "" {
		return f, res
	}
	res.Column = col

	raw := f.Column(col)
	canonical := make([]string, len(raw))
	for i, v := range raw {
		raw[i] = Clean(v)
		canonical[i] = field.Mapping[raw[i]]
	}

	out := f.WithColumn(col, raw).WithColumn(field.Canonical, canonical)
	kept := out.Filter(func(r frame.Row) bool {
		return r.Get(field.Canonical) != ""
	})
	res.Dropped = out.Len() - kept.Len()
	return kept, res
}

// Value maps a single raw value, reporting whether it is known.
func (fd Field) Value(raw string) (string, bool) {
	v, ok := fd.Mapping[Clean(raw)]
	return v, ok
}

// Clean lower-cases and trims a raw categorical value.
func Clean(v string) string {
	return strings.ToLower(strings.TrimSpace(v))
}
