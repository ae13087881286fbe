package frame

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"strconv"
	"strings"

	"github.com/parquet-go/parquet-go"

	"github.com/cognicore/hitflop/pkg/hitflop/internalerr"
)

const (
	utf8BOM          = "\ufeff"
	pandasIndexLevel = "__index_level_"
	parquetBatchSize = 256
)

// ReadCSV loads a CSV file with a header row. A missing file is reported as
// internalerr.ErrNotFound.
func ReadCSV(path string) (*Frame, error) {
	fh, err := os.Open(path)
	if err != nil {
		return nil, openError(path, err)
	}
	defer fh.Close()

	f, err := DecodeCSV(fh)
	if err != nil {
		return nil, fmt.Errorf("read csv %s: %w", path, err)
	}
	return f, nil
}

// DecodeCSV parses CSV data with a header row. Ragged rows are tolerated and
// a leading UTF-8 byte order mark is stripped from the header.
func DecodeCSV(r io.Reader) (*Frame, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.LazyQuotes = true

	header, err := cr.Read()
	if errors.Is(err, io.EOF) {
		return New(nil, nil), nil
	}
	if err != nil {
		return nil, err
	}
	for i := range header {
		header[i] = strings.TrimSpace(strings.TrimPrefix(header[i], utf8BOM))
	}

	var rows [][]string
	for {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, err
		}
		rows = append(rows, rec)
	}
	return New(header, rows), nil
}

// ReadParquet loads a flat Parquet file. When columns are given only those
// are kept, and a missing one is reported as internalerr.ErrSchema.
// Repeated leaf values are joined with "|".
func ReadParquet(path string, columns ...string) (*Frame, error) {
	fh, err := os.Open(path)
	if err != nil {
		return nil, openError(path, err)
	}
	defer fh.Close()

	info, err := fh.Stat()
	if err != nil {
		return nil, fmt.Errorf("stat %s: %w", path, err)
	}

	pf, err := parquet.OpenFile(fh, info.Size())
	if err != nil {
		return nil, fmt.Errorf("open parquet %s: %w", path, err)
	}

	leaves := pf.Schema().Columns()
	names := make([]string, len(leaves))
	for i, p := range leaves {
		names[i] = strings.Join(p, ".")
	}

	var rows [][]string
	buf := make([]parquet.Row, parquetBatchSize)
	for _, rg := range pf.RowGroups() {
		batch, err := readRowGroup(rg, buf, len(names))
		if err != nil {
			return nil, fmt.Errorf("read parquet %s: %w", path, err)
		}
		rows = append(rows, batch...)
	}

	f := New(names, rows)
	var keep []string
	for _, n := range names {
		if !strings.HasPrefix(n, pandasIndexLevel) {
			keep = append(keep, n)
		}
	}
	if len(columns) > 0 {
		for _, c := range columns {
			if !f.Has(c) {
				return nil, fmt.Errorf("parquet %s: column %q: %w", path, c, internalerr.ErrSchema)
			}
		}
		keep = columns
	}
	return f.Select(keep...), nil
}

func readRowGroup(rg parquet.RowGroup, buf []parquet.Row, width int) ([][]string, error) {
	reader := rg.Rows()
	defer reader.Close()

	var out [][]string
	for {
		n, err := reader.ReadRows(buf)
		for _, row := range buf[:n] {
			cells := make([]string, width)
			for _, v := range row {
				col := v.Column()
				if col < 0 || col >= width || v.IsNull() {
					continue
				}
				s := valueString(v)
				if cells[col] != "" {
					cells[col] += "|" + s
				} else {
					cells[col] = s
				}
			}
			out = append(out, cells)
		}
		if errors.Is(err, io.EOF) {
			return out, nil
		}
		if err != nil {
			return nil, err
		}
	}
}

func valueString(v parquet.Value) string {
	switch v.Kind() {
	case parquet.Boolean:
		return strconv.FormatBool(v.Boolean())
	case parquet.Int32:
		return strconv.FormatInt(int64(v.Int32()), 10)
	case parquet.Int64:
		return strconv.FormatInt(v.Int64(), 10)
	case parquet.Float:
		return strconv.FormatFloat(float64(v.Float()), 'g', -1, 32)
	case parquet.Double:
		return strconv.FormatFloat(v.Double(), 'g', -1, 64)
	case parquet.ByteArray, parquet.FixedLenByteArray:
		return string(v.ByteArray())
	default:
		return fmt.Sprint(v)
	}
}

func openError(path string, err error) error {
	if errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("%s: %w", path, internalerr.ErrNotFound)
	}
	return fmt.Errorf("open %s: %w", path, err)
}
