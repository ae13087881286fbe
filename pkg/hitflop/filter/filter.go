// Package filter implements the common filter engine shared by every page:
// content type, inclusive year range and hit label, applied in that order
// after normalization.
package filter

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/araddon/dateparse"

	"github.com/cognicore/hitflop/pkg/hitflop/frame"
	"github.com/cognicore/hitflop/pkg/hitflop/internalerr"
	"github.com/cognicore/hitflop/pkg/hitflop/normalize"
)

// All disables a categorical predicate.
const All = "All"

// YearColumns lists year-like columns in priority order. Only the first one
// present is used.
var YearColumns = []string{"year", "release_year", "review_year"}

// DateColumns hold full dates. They give a display year when no year column
// exists but never drive the year filter.
var DateColumns = []string{"release_date"}

// YearRange is an inclusive [Start, End] range.
type YearRange struct {
	Start int
	End   int
}

// Contains reports whether year lies within the range, both bounds included.
func (y YearRange) Contains(year float64) bool {
	return year >= float64(y.Start) && year <= float64(y.End)
}

// Spec selects rows. Zero values behave like "All" / no range.
type Spec struct {
	ContentType string
	Years       *YearRange
	HitType     string
}

// Stats describes one Apply call.
type Stats struct {
	Normalized []normalize.Result
	YearColumn string
	InputRows  int
	OutputRows int
}

// Dropped sums rows removed by normalization.
func (s Stats) Dropped() int {
	n := 0
	for _, r := range s.Normalized {
		n += r.Dropped
	}
	return n
}

// Apply runs normalization and the three predicates. Nil or empty input is
// returned unchanged.
func Apply(f *frame.Frame, spec Spec) (*frame.Frame, Stats) {
	stats := Stats{InputRows: f.Len()}
	if f.Empty() {
		return f, stats
	}

	out, ctRes := normalize.Apply(f, normalize.ContentType)
	out, hitRes := normalize.Apply(out, normalize.HitLabel)
	stats.Normalized = []normalize.Result{ctRes, hitRes}

	if ct := spec.ContentType; ct != "" && ct != All && out.Has(normalize.ColumnContentType) {
		want := strings.ToLower(ct)
		out = out.Filter(func(r frame.Row) bool {
			return r.Get(normalize.ColumnContentType) == want
		})
	}

	if spec.Years != nil {
		if col := out.First(YearColumns...); col != "" {
			stats.YearColumn = col
			yr := *spec.Years
			out = out.Filter(func(r frame.Row) bool {
				year, ok := Year(r.Get(col))
				return ok && yr.Contains(year)
			})
		}
	}

	if ht := spec.HitType; ht != "" && ht != All && out.Has(normalize.ColumnHitLabel) {
		out = out.Filter(func(r frame.Row) bool {
			return r.Get(normalize.ColumnHitLabel) == ht
		})
	}

	stats.OutputRows = out.Len()
	return out, stats
}

// Year reads a numeric year cell ("2019", "2019.0"). Anything else is
// missing.
func Year(v string) (float64, bool) {
	return frame.ParseFloat(v)
}

// DateYear reads the year of a date cell ("2019-05-01", "March 3, 2021").
func DateYear(v string) (int, bool) {
	v = strings.TrimSpace(v)
	if v == "" {
		return 0, false
	}
	t, err := dateparse.ParseAny(v)
	if err != nil {
		return 0, false
	}
	return t.Year(), true
}

// YearOf returns a reader for the year of a row of f: the first of
// YearColumns present, else the first of DateColumns. It returns nil when f
// has neither.
func YearOf(f *frame.Frame) func(frame.Row) (int, bool) {
	if col := f.First(YearColumns...); col != "" {
		return func(r frame.Row) (int, bool) {
			y, ok := Year(r.Get(col))
			return int(y), ok
		}
	}
	if col := f.First(DateColumns...); col != "" {
		return func(r frame.Row) (int, bool) {
			return DateYear(r.Get(col))
		}
	}
	return nil
}

// ParseSpec reads a spec from query parameters content_type, start, end and
// hit_type. Missing parameters mean "All"; a range needs both bounds.
func ParseSpec(q url.Values) (Spec, error) {
	spec := Spec{ContentType: All, HitType: All}

	if ct := strings.TrimSpace(q.Get("content_type")); ct != "" && !strings.EqualFold(ct, All) {
		canonical, ok := normalize.ContentType.Value(ct)
		if !ok {
			return Spec{}, fmt.Errorf("content_type %q: %w", ct, internalerr.ErrInvalidInput)
		}
		spec.ContentType = canonical
	}

	if ht := strings.TrimSpace(q.Get("hit_type")); ht != "" && !strings.EqualFold(ht, All) {
		canonical, ok := normalize.HitLabel.Value(ht)
		if !ok {
			return Spec{}, fmt.Errorf("hit_type %q: %w", ht, internalerr.ErrInvalidInput)
		}
		spec.HitType = canonical
	}

	start, end := q.Get("start"), q.Get("end")
	if start != "" && end != "" {
		s, err := strconv.Atoi(start)
		if err != nil {
			return Spec{}, fmt.Errorf("start %q: %w", start, internalerr.ErrInvalidInput)
		}
		e, err := strconv.Atoi(end)
		if err != nil {
			return Spec{}, fmt.Errorf("end %q: %w", end, internalerr.ErrInvalidInput)
		}
		if s > e {
			return Spec{}, fmt.Errorf("start %d after end %d: %w", s, e, internalerr.ErrInvalidInput)
		}
		spec.Years = &YearRange{Start: s, End: e}
	}

	return spec, nil
}
