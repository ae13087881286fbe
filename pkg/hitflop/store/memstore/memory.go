package memstore

import (
	"context"
	"strings"
	"sync"

	"github.com/cognicore/hitflop/pkg/hitflop/store"
)

// Store is an in-memory implementation of store.PosterStore. It backs the
// server when no SQLite index is configured and is used in tests.
type Store struct {
	mu      sync.RWMutex
	posters map[string]map[string]store.Poster // content type -> imdb id -> poster
}

// New creates a new in-memory store.
func New() *Store {
	return &Store{posters: make(map[string]map[string]store.Poster)}
}

// Close implements store.PosterStore.
func (s *Store) Close() error { return nil }

// UpsertPosters stores posters; rows without an IMDb id are skipped and the
// first row per id wins, even when its path is empty.
func (s *Store) UpsertPosters(ctx context.Context, contentType string, posters []store.Poster) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	byID, ok := s.posters[contentType]
	if !ok {
		byID = make(map[string]store.Poster, len(posters))
		s.posters[contentType] = byID
	}

	added := 0
	for _, p := range posters {
		id := strings.TrimSpace(p.IMDbID)
		if id == "" {
			continue
		}
		if _, exists := byID[id]; exists {
			continue
		}
		p.IMDbID = id
		byID[id] = p
		added++
	}
	return added, nil
}

// GetPoster returns the poster for an IMDb id.
func (s *Store) GetPoster(ctx context.Context, contentType, imdbID string) (store.Poster, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	p, ok := s.posters[contentType][strings.TrimSpace(imdbID)]
	return p, ok, nil
}

// CountPosters returns the number of stored posters for a content type.
func (s *Store) CountPosters(ctx context.Context, contentType string) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.posters[contentType]), nil
}
