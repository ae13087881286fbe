package cards

import (
	"crypto/rand"
	"fmt"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/cognicore/hitflop/pkg/hitflop/topics"
)

// Builder constructs representative-work cards
type Builder struct {
	mu      sync.Mutex
	entropy *ulid.MonotonicEntropy
}

// New creates a new card builder
func New() *Builder {
	return &Builder{
		entropy: ulid.Monotonic(rand.Reader, 0),
	}
}

// Card is one topic or cluster with its representative works
type Card struct {
	ID       string      `json:"id"`
	Kind     topics.Kind `json:"kind"`
	GroupID  int         `json:"group_id"`
	Title    string      `json:"title"`
	Subtitle string      `json:"subtitle"`
	Works    []Work      `json:"works"`
	Keywords []string    `json:"keywords"`
}

// Work is a representative title. Works without a poster render a
// placeholder.
type Work struct {
	Title     string `json:"title"`
	PosterURL string `json:"poster_url,omitempty"`
	HasPoster bool   `json:"has_poster"`
}

func (b *Builder) newID() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return ulid.MustNew(ulid.Timestamp(time.Now()), b.entropy).String()
}

// Build creates a card from a section and a title → poster URL map
func (b *Builder) Build(sec topics.Section, posters map[string]string) Card {
	card := Card{
		ID:       b.newID(),
		Kind:     sec.Kind,
		GroupID:  sec.ID,
		Title:    sec.Name,
		Subtitle: subtitle(sec),
		Works:    make([]Work, 0, len(sec.Works)),
		Keywords: append([]string(nil), sec.Keywords...),
	}
	for _, title := range sec.Works {
		url, ok := posters[title]
		card.Works = append(card.Works, Work{Title: title, PosterURL: url, HasPoster: ok})
	}
	return card
}

// BuildAll creates one card per section
func (b *Builder) BuildAll(secs []topics.Section, posters map[string]string) []Card {
	out := make([]Card, 0, len(secs))
	for _, s := range secs {
		out = append(out, b.Build(s, posters))
	}
	return out
}

func subtitle(sec topics.Section) string {
	if sec.Kind == topics.KindCluster {
		ids := make([]string, len(sec.Topics))
		for i, t := range sec.Topics {
			ids[i] = strconv.Itoa(t)
		}
		return "Topics: " + strings.Join(ids, ", ")
	}
	return fmt.Sprintf("Works: %d", sec.Count)
}
