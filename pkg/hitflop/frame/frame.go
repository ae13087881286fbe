// Package frame provides the small immutable string table every loader
// produces. Cells are kept as strings (schema-on-read); typed accessors
// coerce on demand the way the dashboard needs them.
package frame

import (
	"math"
	"strconv"
	"strings"
)

// Frame is an immutable table. Operations return new frames and never
// modify the receiver, so cached frames can be shared between requests.
type Frame struct {
	columns []string
	index   map[string]int
	rows    [][]string
}

// New builds a frame from a header and rows. Short rows are padded with
// empty cells, long rows are truncated to the header width.
func New(columns []string, rows [][]string) *Frame {
	cols := make([]string, len(columns))
	copy(cols, columns)

	f := &Frame{
		columns: cols,
		index:   make(map[string]int, len(cols)),
		rows:    make([][]string, 0, len(rows)),
	}
	for i, c := range cols {
		if _, dup := f.index[c]; !dup {
			f.index[c] = i
		}
	}
	for _, r := range rows {
		f.rows = append(f.rows, fitRow(r, len(cols)))
	}
	return f
}

func fitRow(r []string, width int) []string {
	out := make([]string, width)
	copy(out, r)
	return out
}

// Len returns the number of rows. A nil frame has zero rows.
func (f *Frame) Len() int {
	if f == nil {
		return 0
	}
	return len(f.rows)
}

// Empty reports whether the frame is nil or has no rows.
func (f *Frame) Empty() bool {
	return f.Len() == 0
}

// Columns returns a copy of the header.
func (f *Frame) Columns() []string {
	if f == nil {
		return nil
	}
	out := make([]string, len(f.columns))
	copy(out, f.columns)
	return out
}

// Has reports whether the column exists.
func (f *Frame) Has(col string) bool {
	if f == nil {
		return false
	}
	_, ok := f.index[col]
	return ok
}

// First returns the first candidate column present in the frame, or "".
func (f *Frame) First(candidates ...string) string {
	for _, c := range candidates {
		if f.Has(c) {
			return c
		}
	}
	return ""
}

// Value returns the cell at (row, col); missing columns yield "".
func (f *Frame) Value(row int, col string) string {
	if f == nil || row < 0 || row >= len(f.rows) {
		return ""
	}
	i, ok := f.index[col]
	if !ok {
		return ""
	}
	return f.rows[row][i]
}

// Float parses the cell as a number. Empty and NaN cells report false.
func (f *Frame) Float(row int, col string) (float64, bool) {
	return ParseFloat(f.Value(row, col))
}

// Int parses the cell as an integer, accepting "3.0"-style floats.
func (f *Frame) Int(row int, col string) (int, bool) {
	return ParseInt(f.Value(row, col))
}

// Row returns a view of row i.
func (f *Frame) Row(i int) Row {
	return Row{f: f, i: i}
}

// Column returns a copy of all values of col.
func (f *Frame) Column(col string) []string {
	if !f.Has(col) {
		return nil
	}
	out := make([]string, f.Len())
	for i := range out {
		out[i] = f.Value(i, col)
	}
	return out
}

// Filter keeps rows for which keep returns true. Row order is preserved and
// positions are renumbered from zero.
func (f *Frame) Filter(keep func(r Row) bool) *Frame {
	if f == nil {
		return nil
	}
	out := &Frame{columns: f.columns, index: f.index}
	for i, r := range f.rows {
		if keep(Row{f: f, i: i}) {
			out.rows = append(out.rows, r)
		}
	}
	return out
}

// WithColumn returns a frame where col holds values, appending the column
// when it does not exist yet. values must have one entry per row.
func (f *Frame) WithColumn(col string, values []string) *Frame {
	if f == nil {
		return nil
	}
	cols := f.Columns()
	pos, exists := f.index[col]
	if !exists {
		cols = append(cols, col)
		pos = len(cols) - 1
	}
	rows := make([][]string, len(f.rows))
	for i, r := range f.rows {
		nr := fitRow(r, len(cols))
		if i < len(values) {
			nr[pos] = values[i]
		}
		rows[i] = nr
	}
	return New(cols, rows)
}

// Map returns a frame with fn applied to every value of col. Missing
// columns leave the frame unchanged.
func (f *Frame) Map(col string, fn func(string) string) *Frame {
	if !f.Has(col) {
		return f
	}
	values := f.Column(col)
	for i, v := range values {
		values[i] = fn(v)
	}
	return f.WithColumn(col, values)
}

// Rename returns a frame with columns renamed per mapping. Renaming onto an
// existing column name is skipped.
func (f *Frame) Rename(mapping map[string]string) *Frame {
	if f == nil {
		return nil
	}
	cols := f.Columns()
	for i, c := range cols {
		to, ok := mapping[c]
		if !ok || to == c || f.Has(to) {
			continue
		}
		cols[i] = to
	}
	return New(cols, f.rows)
}

// Select projects the frame onto cols; absent columns are skipped.
func (f *Frame) Select(cols ...string) *Frame {
	if f == nil {
		return nil
	}
	var keep []string
	for _, c := range cols {
		if f.Has(c) {
			keep = append(keep, c)
		}
	}
	rows := make([][]string, len(f.rows))
	for i := range f.rows {
		nr := make([]string, len(keep))
		for j, c := range keep {
			nr[j] = f.Value(i, c)
		}
		rows[i] = nr
	}
	return New(keep, rows)
}

// Head returns the first n rows.
func (f *Frame) Head(n int) *Frame {
	if f == nil {
		return nil
	}
	if n < 0 {
		n = 0
	}
	if n > len(f.rows) {
		n = len(f.rows)
	}
	return &Frame{columns: f.columns, index: f.index, rows: f.rows[:n]}
}

// Records returns every row as a column→value map, for JSON output.
func (f *Frame) Records() []map[string]string {
	out := make([]map[string]string, 0, f.Len())
	for i := 0; i < f.Len(); i++ {
		rec := make(map[string]string, len(f.columns))
		for _, c := range f.columns {
			rec[c] = f.Value(i, c)
		}
		out = append(out, rec)
	}
	return out
}

// Row is a read-only view of one frame row.
type Row struct {
	f *Frame
	i int
}

// Index returns the row position.
func (r Row) Index() int { return r.i }

// Get returns the value of col.
func (r Row) Get(col string) string { return r.f.Value(r.i, col) }

// Float parses col as a number.
func (r Row) Float(col string) (float64, bool) { return r.f.Float(r.i, col) }

// Int parses col as an integer.
func (r Row) Int(col string) (int, bool) { return r.f.Int(r.i, col) }

// ParseFloat is the lenient number parser used for every numeric cell.
// NaN and infinities count as missing.
func ParseFloat(s string) (float64, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, false
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, false
	}
	return v, true
}

// ParseInt parses integers and integral floats ("12", "12.0").
func ParseInt(s string) (int, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, false
	}
	if v, err := strconv.Atoi(s); err == nil {
		return v, true
	}
	v, ok := ParseFloat(s)
	if !ok || v != math.Trunc(v) {
		return 0, false
	}
	return int(v), true
}
