// Package prepare copies the TF-IDF delta keyword tables produced by the
// analysis notebooks into the dashboard data layout.
package prepare

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/cognicore/hitflop/pkg/hitflop/dataset"
	"github.com/cognicore/hitflop/pkg/hitflop/normalize"
)

// SourceFile is the delta table name inside each TF-IDF_<Type> directory.
const SourceFile = "04_keywords_delta_len150_p20.csv"

// SourcePath is the delta table of a content type below the analysis root.
func SourcePath(source, contentType string) string {
	dir := "TF-IDF_" + strings.ToUpper(contentType[:1]) + contentType[1:]
	return filepath.Join(source, dir, SourceFile)
}

// Result describes one content type's copy.
type Result struct {
	ContentType string `json:"content_type"`
	From        string `json:"from"`
	To          string `json:"to"`
	Copied      bool   `json:"copied"`
	Bytes       int64  `json:"bytes,omitempty"`
}

// Preparer copies delta tables from an analysis root into a data root.
type Preparer struct {
	Source string
	Root   string
	Logger *zerolog.Logger
}

// Run copies the drama and movie delta tables. A missing source table is
// logged and reported with Copied false; any other failure aborts.
func (p *Preparer) Run(ctx context.Context) ([]Result, error) {
	logger := p.Logger
	if logger == nil {
		nop := zerolog.Nop()
		logger = &nop
	}

	types := []string{normalize.Drama, normalize.Movie}
	results := make([]Result, len(types))

	g, ctx := errgroup.WithContext(ctx)
	for i, ct := range types {
		g.Go(func() error {
			res := Result{
				ContentType: ct,
				From:        SourcePath(p.Source, ct),
				To:          filepath.Join(p.Root, dataset.DeltaPath(ct)),
			}
			if err := ctx.Err(); err != nil {
				return err
			}
			n, err := copyFile(res.From, res.To)
			switch {
			case os.IsNotExist(err):
				logger.Warn().Str("content_type", ct).Str("from", res.From).Msg("delta table missing")
			case err != nil:
				return fmt.Errorf("copy %s delta: %w", ct, err)
			default:
				res.Copied, res.Bytes = true, n
				logger.Info().Str("content_type", ct).Str("to", res.To).Int64("bytes", n).Msg("delta table copied")
			}
			results[i] = res
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

// copyFile copies src to dst through a temporary file, keeping src's
// modification time.
func copyFile(src, dst string) (int64, error) {
	in, err := os.Open(src)
	if err != nil {
		return 0, err
	}
	defer in.Close()

	info, err := in.Stat()
	if err != nil {
		return 0, err
	}
	if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		return 0, fmt.Errorf("create %s: %w", filepath.Dir(dst), err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(dst), ".delta-*")
	if err != nil {
		return 0, fmt.Errorf("create temp file: %w", err)
	}
	defer os.Remove(tmp.Name())
	if err := tmp.Chmod(0o644); err != nil {
		tmp.Close()
		return 0, fmt.Errorf("chmod temp file: %w", err)
	}

	n, err := io.Copy(tmp, in)
	if err != nil {
		tmp.Close()
		return 0, fmt.Errorf("write %s: %w", dst, err)
	}
	if err := tmp.Close(); err != nil {
		return 0, fmt.Errorf("close %s: %w", dst, err)
	}
	if err := os.Rename(tmp.Name(), dst); err != nil {
		return 0, fmt.Errorf("rename into %s: %w", dst, err)
	}
	if err := os.Chtimes(dst, info.ModTime(), info.ModTime()); err != nil {
		return n, fmt.Errorf("set times on %s: %w", dst, err)
	}
	return n, nil
}
