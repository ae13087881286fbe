// Package hitflop is the dashboard facade. A Dashboard answers every page and
// API query from the cached loaders; the HTTP server, the MCP server and the
// report CLI all go through it.
package hitflop

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"

	"github.com/rs/zerolog"

	"github.com/cognicore/hitflop/pkg/hitflop/analytics"
	"github.com/cognicore/hitflop/pkg/hitflop/cache"
	"github.com/cognicore/hitflop/pkg/hitflop/cards"
	"github.com/cognicore/hitflop/pkg/hitflop/chart"
	"github.com/cognicore/hitflop/pkg/hitflop/dataset"
	"github.com/cognicore/hitflop/pkg/hitflop/filter"
	"github.com/cognicore/hitflop/pkg/hitflop/frame"
	"github.com/cognicore/hitflop/pkg/hitflop/internalerr"
	"github.com/cognicore/hitflop/pkg/hitflop/poster"
	"github.com/cognicore/hitflop/pkg/hitflop/stoplist"
	"github.com/cognicore/hitflop/pkg/hitflop/store"
	"github.com/cognicore/hitflop/pkg/hitflop/store/memstore"
	"github.com/cognicore/hitflop/pkg/hitflop/topics"
	"github.com/cognicore/hitflop/pkg/hitflop/wordcloud"
)

// Dashboard is the main query facade
type Dashboard struct {
	loader   *dataset.Loader
	names    *topics.Names
	stops    *stoplist.Manager
	posters  store.PosterStore
	seed     bool
	seeded   *cache.Cache[int]
	views    *cache.Cache[*topics.View]
	cards    *cards.Builder
	baseURL  string
	logger   *zerolog.Logger
	onPoster poster.Observer
	onFilter func(filter.Stats)
}

// Options configures a Dashboard
type Options struct {
	Loader *dataset.Loader
	Names  *topics.Names
	Stops  *stoplist.Manager
	// Posters is the poster index. When nil, an in-memory store is filled
	// from the poster parquet tables on first use per content type.
	Posters       store.PosterStore
	PosterBaseURL string
	Logger        *zerolog.Logger
	CacheObserver cache.Observer
	OnPoster      poster.Observer
	OnFilter      func(filter.Stats)
}

// New creates a Dashboard with the given dependencies
func New(opts Options) *Dashboard {
	logger := opts.Logger
	if logger == nil {
		nop := zerolog.Nop()
		logger = &nop
	}
	d := &Dashboard{
		loader:   opts.Loader,
		names:    opts.Names,
		stops:    opts.Stops,
		posters:  opts.Posters,
		seeded:   cache.New[int]("posters", opts.CacheObserver),
		views:    cache.New[*topics.View]("view", opts.CacheObserver),
		cards:    cards.New(),
		baseURL:  opts.PosterBaseURL,
		logger:   logger,
		onPoster: opts.OnPoster,
		onFilter: opts.OnFilter,
	}
	if d.posters == nil {
		d.posters = memstore.New()
		d.seed = true
	}
	return d
}

// Close releases the poster store
func (d *Dashboard) Close() error {
	return d.posters.Close()
}

// Reload drops every cached table and view. Data written under the root since
// the last read is picked up by the next query.
func (d *Dashboard) Reload() {
	d.loader.Reset()
	d.views.Reset()
	d.logger.Info().Str("root", d.loader.Root()).Msg("dashboard caches reset")
}

// Keywords returns the TF-IDF keywords favouring a cohort.
func (d *Dashboard) Keywords(ctx context.Context, contentType, category string) ([]dataset.Keyword, error) {
	return d.loader.Keywords(ctx, contentType, category)
}

// WordCloud returns the word cloud of a cohort's keywords.
func (d *Dashboard) WordCloud(ctx context.Context, contentType, category string) (wordcloud.Cloud, error) {
	kws, err := d.loader.Keywords(ctx, contentType, category)
	if err != nil {
		return wordcloud.Cloud{}, err
	}
	ct, _ := dataset.ParseContentType(contentType)
	cat, _ := dataset.ParseCategory(category)
	opts := wordcloud.DefaultOptions()
	opts.Stops = d.stops
	return wordcloud.Build(kws, wordcloud.Palette(ct, cat), opts), nil
}

// View returns the indexed topic view of a cohort.
func (d *Dashboard) View(ctx context.Context, contentType, category string) (*topics.View, error) {
	ct, err := dataset.ParseContentType(contentType)
	if err != nil {
		return nil, err
	}
	cat, err := dataset.ParseCategory(category)
	if err != nil {
		return nil, err
	}
	key := cache.Key{Path: filepath.Join(dataset.SynopsisDir, ct), ContentType: ct, Category: cat}
	return d.views.Get(ctx, key, func(ctx context.Context) (*topics.View, error) {
		c, _, err := d.loader.Cohort(ctx, ct, cat)
		if err != nil {
			return nil, err
		}
		return topics.NewView(ct, c, d.names), nil
	})
}

// MapMetrics are the counts shown above the topic map.
type MapMetrics struct {
	Titles int `json:"titles"`
	Groups int `json:"groups"`
}

// TopicMap is the topic map of a cohort with its selector options.
type TopicMap struct {
	Figure  chart.Figure  `json:"figure"`
	Metrics MapMetrics    `json:"metrics"`
	Options []GroupOption `json:"options"`
}

// GroupOption is one selectable topic or cluster.
type GroupOption struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}

// TopicMap builds the UMAP scatter for the selected groups.
func (d *Dashboard) TopicMap(ctx context.Context, contentType, category string, kind topics.Kind, ids []int) (TopicMap, error) {
	v, err := d.View(ctx, contentType, category)
	if err != nil {
		return TopicMap{}, err
	}
	opts := v.Options(kind)
	return TopicMap{
		Figure:  chart.TopicMap(v, kind, ids),
		Metrics: MapMetrics{Titles: len(v.Titles), Groups: len(opts)},
		Options: groupOptions(v, kind, opts),
	}, nil
}

func groupOptions(v *topics.View, kind topics.Kind, ids []int) []GroupOption {
	out := make([]GroupOption, len(ids))
	for i, id := range ids {
		out[i] = GroupOption{ID: id, Name: v.Name(kind, id)}
	}
	return out
}

// Distribution builds the per-group title count chart.
func (d *Dashboard) Distribution(ctx context.Context, contentType, category string, kind topics.Kind) (chart.Figure, error) {
	v, err := d.View(ctx, contentType, category)
	if err != nil {
		return chart.Figure{}, err
	}
	return chart.Distribution(v, kind), nil
}

// KeywordComparison builds the hit-only vs flop-only keyword chart. A content
// type without a comparison table yields internalerr.ErrNotFound.
func (d *Dashboard) KeywordComparison(ctx context.Context, contentType string, topN int) (chart.Figure, error) {
	b, err := d.loader.Bundle(ctx, contentType)
	if err != nil {
		return chart.Figure{}, err
	}
	if b.Comparison == nil {
		return chart.Figure{}, fmt.Errorf("%s keyword comparison: %w", b.ContentType, internalerr.ErrNotFound)
	}
	hit, flop := dataset.CompareKeywords(b.Comparison, topN)
	return chart.KeywordComparison(hit, flop), nil
}

// Representatives is the representative-works section of a cohort.
type Representatives struct {
	Options []GroupOption `json:"options"`
	Cards   []cards.Card  `json:"cards"`
}

// Representatives builds explainable cards for the selected topics or
// clusters, with poster URLs where both joins resolve. No ids means all.
func (d *Dashboard) Representatives(ctx context.Context, contentType, category string, kind topics.Kind, ids []int) (Representatives, error) {
	v, err := d.View(ctx, contentType, category)
	if err != nil {
		return Representatives{}, err
	}
	secs := v.Representatives(kind, ids)

	if err := d.seedPosters(ctx, v.ContentType); err != nil {
		d.logger.Warn().Err(err).Str("content_type", v.ContentType).Msg("poster table unavailable")
	}
	r := poster.Resolver{
		ContentType: v.ContentType,
		Titles:      poster.IndexTitles(v.Titles),
		Posters:     d.posters,
		BaseURL:     d.baseURL,
		Logger:      d.logger,
		Observer:    d.onPoster,
	}
	urls := r.Resolve(ctx, topics.NeededTitles(secs))

	return Representatives{
		Options: groupOptions(v, kind, v.RepresentativeOptions(kind)),
		Cards:   d.cards.BuildAll(secs, urls),
	}, nil
}

// seedPosters fills the in-memory store from the poster parquet table once per
// content type. A missing table leaves the store empty.
func (d *Dashboard) seedPosters(ctx context.Context, ct string) error {
	if !d.seed {
		return nil
	}
	_, err := d.seeded.Get(ctx, cache.Key{Path: dataset.PosterPath(ct), ContentType: ct}, func(ctx context.Context) (int, error) {
		rows, err := d.loader.Posters(ctx, ct)
		if errors.Is(err, internalerr.ErrNotFound) {
			d.logger.Debug().Str("content_type", ct).Msg("no poster table")
			return 0, nil
		}
		if err != nil {
			return 0, err
		}
		return d.posters.UpsertPosters(ctx, ct, rows)
	})
	return err
}

// Review is the filtered review page data.
type Review struct {
	Rows    []map[string]string  `json:"rows"`
	Columns []string             `json:"columns"`
	KPIs    analytics.ReviewKPIs `json:"kpis"`
	Total   int                  `json:"total"`
	Dropped int                  `json:"dropped"` // rows with unmapped labels
}

// Review applies the common filters to the review topic summary by type.
func (d *Dashboard) Review(ctx context.Context, spec filter.Spec) (Review, error) {
	f, err := d.loader.ReviewSummaryByType(ctx)
	if err != nil {
		return Review{}, err
	}
	out, stats := d.filter(f, spec)
	return Review{
		Rows:    out.Records(),
		Columns: out.Columns(),
		KPIs:    analytics.Reviews(out),
		Total:   out.Len(),
		Dropped: stats.Dropped(),
	}, nil
}

// ReviewAll applies the year and hit filters to the overall review topic
// summary. That table spans every content type, so the content type filter is
// not applied.
func (d *Dashboard) ReviewAll(ctx context.Context, spec filter.Spec) (Review, error) {
	f, err := d.loader.ReviewSummary(ctx)
	if err != nil {
		return Review{}, err
	}
	spec.ContentType = filter.All
	out, stats := d.filter(f, spec)
	return Review{
		Rows:    out.Records(),
		Columns: out.Columns(),
		KPIs:    analytics.Reviews(out),
		Total:   out.Len(),
		Dropped: stats.Dropped(),
	}, nil
}

// ReviewKeywords returns the review TF-IDF keywords, filtered like the review
// summary.
func (d *Dashboard) ReviewKeywords(ctx context.Context, spec filter.Spec) (*frame.Frame, error) {
	f, err := d.loader.ReviewKeywords(ctx)
	if err != nil {
		return nil, err
	}
	out, _ := d.filter(f, spec)
	return out, nil
}

// ReviewCloud builds a word cloud from the filtered review keyword table,
// taking its score from the first of wordcloud.ScoreColumns present. The hit
// palette of the selected content type is used.
func (d *Dashboard) ReviewCloud(f *frame.Frame, spec filter.Spec) (wordcloud.Cloud, error) {
	opts := wordcloud.DefaultOptions()
	opts.Stops = d.stops
	return wordcloud.FromFrame(f, wordcloud.Palette(spec.ContentType, dataset.Hit), opts)
}

// Overview is the overview page data.
type Overview struct {
	Summary analytics.Summary `json:"summary"`
	Trend   chart.Figure      `json:"trend"`
}

// Overview summarises the filtered overview titles table.
func (d *Dashboard) Overview(ctx context.Context, spec filter.Spec) (Overview, error) {
	f, err := d.loader.Overview(ctx)
	if err != nil {
		return Overview{}, err
	}
	out, _ := d.filter(f, spec)
	s := analytics.Summarize(out)
	return Overview{Summary: s, Trend: chart.YearlyTrend(s)}, nil
}

func (d *Dashboard) filter(f *frame.Frame, spec filter.Spec) (*frame.Frame, filter.Stats) {
	out, stats := filter.Apply(f, spec)
	if d.onFilter != nil {
		d.onFilter(stats)
	}
	if n := stats.Dropped(); n > 0 {
		d.logger.Debug().Int("dropped", n).Int("rows", stats.OutputRows).Msg("filtered table")
	}
	return out, stats
}
