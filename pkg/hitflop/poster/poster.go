// Package poster resolves representative work titles to poster image URLs by
// joining the cohort map (title → IMDb id) with a poster store (IMDb id →
// poster path).
package poster

import (
	"context"
	"strings"

	"github.com/rs/zerolog"

	"github.com/cognicore/hitflop/pkg/hitflop/dataset"
	"github.com/cognicore/hitflop/pkg/hitflop/store"
)

// DefaultBaseURL is the TMDB w300 image prefix.
const DefaultBaseURL = "https://image.tmdb.org/t/p/w300"

// Outcomes reported to the Observer.
const (
	OutcomeResolved   = "resolved"
	OutcomeNoTitle    = "no_title"
	OutcomeNoPoster   = "no_poster"
	OutcomeEmptyPath  = "empty_path"
	OutcomeStoreError = "store_error"
)

// Observer is told the outcome of every lookup.
type Observer func(outcome string)

// TitleIndex maps a title to the IMDb id of its first row.
type TitleIndex map[string]string

// IndexTitles builds a TitleIndex. The first row per title wins, including
// rows without an IMDb id.
func IndexTitles(titles []dataset.Title) TitleIndex {
	idx := make(TitleIndex, len(titles))
	for _, t := range titles {
		if t.Title == "" {
			continue
		}
		if _, ok := idx[t.Title]; !ok {
			idx[t.Title] = t.IMDbID
		}
	}
	return idx
}

// Resolver resolves poster URLs for one content type.
type Resolver struct {
	ContentType string
	Titles      TitleIndex
	Posters     store.PosterStore
	BaseURL     string
	Logger      *zerolog.Logger
	Observer    Observer
}

// Resolve returns title → poster URL for every needed title that resolves.
// Titles missing from either join, and posters with an empty path, are
// omitted. Store errors are logged and treated as misses.
func (r *Resolver) Resolve(ctx context.Context, needed []string) map[string]string {
	out := make(map[string]string, len(needed))
	if r == nil || r.Posters == nil {
		return out
	}
	base := r.BaseURL
	if base == "" {
		base = DefaultBaseURL
	}

	for _, title := range needed {
		if _, done := out[title]; done {
			continue
		}
		imdbID, ok := r.Titles[title]
		if !ok || strings.TrimSpace(imdbID) == "" {
			r.observe(OutcomeNoTitle)
			continue
		}
		p, found, err := r.Posters.GetPoster(ctx, r.ContentType, imdbID)
		if err != nil {
			if r.Logger != nil {
				r.Logger.Warn().Err(err).Str("title", title).Str("imdb_id", imdbID).Msg("poster lookup failed")
			}
			r.observe(OutcomeStoreError)
			continue
		}
		if !found {
			r.observe(OutcomeNoPoster)
			continue
		}
		if !p.Valid() {
			r.observe(OutcomeEmptyPath)
			continue
		}
		out[title] = base + strings.TrimSpace(p.Path)
		r.observe(OutcomeResolved)
	}
	return out
}

func (r *Resolver) observe(outcome string) {
	if r.Observer != nil {
		r.Observer(outcome)
	}
}
