package store

import (
	"context"
	"strings"
)

// PosterStore persists poster paths keyed by content type and IMDb id.
type PosterStore interface {
	Close() error

	// UpsertPosters adds posters for a content type. The first row stored
	// for an IMDb id wins; later duplicates are ignored. Returns how many
	// rows were newly stored.
	UpsertPosters(ctx context.Context, contentType string, posters []Poster) (int, error)
	GetPoster(ctx context.Context, contentType, imdbID string) (Poster, bool, error)
	CountPosters(ctx context.Context, contentType string) (int, error)
}

// Poster is one row of a poster table.
type Poster struct {
	IMDbID string `json:"imdb_id"`
	Title  string `json:"title"`
	Path   string `json:"poster_path"`
}

// Valid reports whether the poster can be joined and rendered.
func (p Poster) Valid() bool {
	return strings.TrimSpace(p.IMDbID) != "" && strings.TrimSpace(p.Path) != ""
}
