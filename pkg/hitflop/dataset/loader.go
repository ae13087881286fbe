package dataset

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/cognicore/hitflop/pkg/hitflop/cache"
	"github.com/cognicore/hitflop/pkg/hitflop/frame"
	"github.com/cognicore/hitflop/pkg/hitflop/internalerr"
	"github.com/cognicore/hitflop/pkg/hitflop/normalize"
	"github.com/cognicore/hitflop/pkg/hitflop/stoplist"
	"github.com/cognicore/hitflop/pkg/hitflop/store"
)

// Observer receives cache traffic and load failures.
type Observer interface {
	cache.Observer
	LoadError(kind string)
}

// LoaderOptions configures a Loader.
type LoaderOptions struct {
	Root         string
	OverviewPath string // relative to Root; DefaultOverviewPath when empty
	Stops        *stoplist.Manager
	Logger       *zerolog.Logger
	Observer     Observer
}

// Loader reads dashboard artifacts below a data root. Every file is read at
// most once per process; failed reads are retried on the next call.
type Loader struct {
	root     string
	overview string
	stops    *stoplist.Manager
	logger   *zerolog.Logger
	observer Observer

	frames   *cache.Cache[*frame.Frame]
	keywords *cache.Cache[[]Keyword]
	bundles  *cache.Cache[*Bundle]
}

// NewLoader creates a loader.
func NewLoader(opts LoaderOptions) *Loader {
	logger := opts.Logger
	if logger == nil {
		nop := zerolog.Nop()
		logger = &nop
	}
	overview := opts.OverviewPath
	if overview == "" {
		overview = DefaultOverviewPath
	}
	var obs cache.Observer
	if opts.Observer != nil {
		obs = opts.Observer
	}
	return &Loader{
		root:     opts.Root,
		overview: overview,
		stops:    opts.Stops,
		logger:   logger,
		observer: opts.Observer,
		frames:   cache.New[*frame.Frame]("frame", obs),
		keywords: cache.New[[]Keyword]("keywords", obs),
		bundles:  cache.New[*Bundle]("bundle", obs),
	}
}

// Root returns the data root.
func (l *Loader) Root() string { return l.root }

// Reset drops every cached table so the next call rereads the files.
func (l *Loader) Reset() {
	l.frames.Reset()
	l.keywords.Reset()
	l.bundles.Reset()
}

func (l *Loader) fail(kind string, err error) error {
	if err != nil && l.observer != nil {
		l.observer.LoadError(kind)
	}
	return err
}

func (l *Loader) read(ctx context.Context, key cache.Key, columns ...string) (*frame.Frame, error) {
	return l.frames.Get(ctx, key, func(ctx context.Context) (*frame.Frame, error) {
		path := filepath.Join(l.root, key.Path)
		var (
			f   *frame.Frame
			err error
		)
		if strings.EqualFold(filepath.Ext(path), ".parquet") {
			f, err = frame.ReadParquet(path, columns...)
		} else {
			f, err = frame.ReadCSV(path)
		}
		if err != nil {
			return nil, err
		}
		l.logger.Debug().Str("path", key.Path).Int("rows", f.Len()).Msg("loaded table")
		return f, nil
	})
}

// Deltas returns the TF-IDF delta table of a content type.
func (l *Loader) Deltas(ctx context.Context, contentType string) ([]KeywordDelta, error) {
	ct, err := ParseContentType(contentType)
	if err != nil {
		return nil, err
	}
	f, err := l.read(ctx, cache.Key{Path: DeltaPath(ct), ContentType: ct})
	if err != nil {
		return nil, l.fail("deltas", err)
	}
	rows, err := ParseDeltas(f)
	return rows, l.fail("deltas", err)
}

// Keywords returns the keywords favouring a cohort, in file order.
func (l *Loader) Keywords(ctx context.Context, contentType, category string) ([]Keyword, error) {
	ct, err := ParseContentType(contentType)
	if err != nil {
		return nil, err
	}
	cat, err := ParseCategory(category)
	if err != nil {
		return nil, err
	}
	key := cache.Key{Path: DeltaPath(ct), ContentType: ct, Category: cat}
	return l.keywords.Get(ctx, key, func(ctx context.Context) ([]Keyword, error) {
		deltas, err := l.Deltas(ctx, ct)
		if err != nil {
			return nil, err
		}
		return KeywordsFor(deltas, cat), nil
	})
}

// Bundle loads the BERTopic artifacts of both cohorts of a content type.
// A missing required file yields internalerr.ErrNotFound; a missing keyword
// comparison leaves Comparison nil.
func (l *Loader) Bundle(ctx context.Context, contentType string) (*Bundle, error) {
	ct, err := ParseContentType(contentType)
	if err != nil {
		return nil, err
	}
	key := cache.Key{Path: filepath.Join(SynopsisDir, ct), ContentType: ct}
	b, err := l.bundles.Get(ctx, key, func(ctx context.Context) (*Bundle, error) {
		return l.loadBundle(ctx, ct)
	})
	return b, l.fail("bundle", err)
}

func (l *Loader) loadBundle(ctx context.Context, ct string) (*Bundle, error) {
	b := &Bundle{ContentType: ct, Cohorts: make(map[string]*Cohort, 2)}
	cohorts := []*Cohort{{Category: Hit}, {Category: Flop}}

	g, gctx := errgroup.WithContext(ctx)
	for _, c := range cohorts {
		b.Cohorts[c.Category] = c
		g.Go(func() error { return l.loadTitles(gctx, ct, c) })
		g.Go(func() error {
			f, err := l.read(gctx, cache.Key{Path: ClustersPath(ct, c.Category), ContentType: ct, Category: c.Category})
			if err != nil {
				return err
			}
			c.Clusters, err = ParseClusters(f, l.stops)
			return err
		})
		g.Go(func() error {
			f, err := l.read(gctx, cache.Key{Path: TopicInfoPath(ct, c.Category), ContentType: ct, Category: c.Category})
			if err != nil {
				return err
			}
			c.Topics, err = ParseTopics(f, l.stops)
			return err
		})
	}
	g.Go(func() error {
		f, err := l.read(gctx, cache.Key{Path: ComparisonPath(ct), ContentType: ct})
		if errors.Is(err, internalerr.ErrNotFound) {
			return nil
		}
		if err != nil {
			return err
		}
		b.Comparison, err = ParseComparison(f)
		return err
	})

	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("load %s bundle: %w", ct, err)
	}
	return b, nil
}

func (l *Loader) loadTitles(ctx context.Context, ct string, c *Cohort) error {
	f, err := l.read(ctx, cache.Key{Path: MapPath(ct, c.Category), ContentType: ct, Category: c.Category})
	if errors.Is(err, internalerr.ErrNotFound) && ct == normalize.Movie {
		l.logger.Warn().Str("content_type", ct).Str("category", c.Category).
			Msg("umap map missing, falling back to topic info")
		f, err = l.read(ctx, cache.Key{Path: TopicInfoPath(ct, c.Category), ContentType: ct, Category: c.Category})
		if err != nil {
			return err
		}
		c.Titles, err = TitlesFromTopics(f, ct, c.Category)
		return err
	}
	if err != nil {
		return err
	}

	c.HasCoordinates = f.Has("umap_x") && f.Has("umap_y")
	c.HasClusterColumn = f.Has("cluster")
	c.Titles, err = ParseTitles(f, ct, c.Category)
	return err
}

// Cohort is a shortcut for Bundle followed by Bundle.Cohort.
func (l *Loader) Cohort(ctx context.Context, contentType, category string) (*Cohort, *Bundle, error) {
	cat, err := ParseCategory(category)
	if err != nil {
		return nil, nil, err
	}
	b, err := l.Bundle(ctx, contentType)
	if err != nil {
		return nil, nil, err
	}
	c, err := b.Cohort(cat)
	return c, b, err
}

// ReviewKeywords returns the review TF-IDF keyword table.
func (l *Loader) ReviewKeywords(ctx context.Context) (*frame.Frame, error) {
	f, err := l.read(ctx, cache.Key{Path: filepath.Join(ReviewDir, ReviewKeywordsFile)})
	return f, l.fail("review", err)
}

// ReviewSummary returns the overall review topic summary.
func (l *Loader) ReviewSummary(ctx context.Context) (*frame.Frame, error) {
	f, err := l.read(ctx, cache.Key{Path: filepath.Join(ReviewDir, ReviewSummaryFile)})
	return f, l.fail("review", err)
}

// ReviewSummaryByType returns the review topic summary split by type.
func (l *Loader) ReviewSummaryByType(ctx context.Context) (*frame.Frame, error) {
	f, err := l.read(ctx, cache.Key{Path: filepath.Join(ReviewDir, ReviewSummaryByTypeFile)})
	return f, l.fail("review", err)
}

// Overview returns the optional overview titles table (CSV or Parquet).
func (l *Loader) Overview(ctx context.Context) (*frame.Frame, error) {
	f, err := l.read(ctx, cache.Key{Path: l.overview})
	return f, l.fail("overview", err)
}

// Posters reads the poster table of a content type.
func (l *Loader) Posters(ctx context.Context, contentType string) ([]store.Poster, error) {
	ct, err := ParseContentType(contentType)
	if err != nil {
		return nil, err
	}
	f, err := l.read(ctx, cache.Key{Path: PosterPath(ct), ContentType: ct}, "imdb_id", "title", "poster_path")
	if err != nil {
		return nil, l.fail("posters", err)
	}
	out := make([]store.Poster, 0, f.Len())
	for i := 0; i < f.Len(); i++ {
		out = append(out, store.Poster{
			IMDbID: f.Value(i, "imdb_id"),
			Title:  f.Value(i, "title"),
			Path:   f.Value(i, "poster_path"),
		})
	}
	return out, nil
}
