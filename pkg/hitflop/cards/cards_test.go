package cards

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cognicore/hitflop/pkg/hitflop/topics"
)

func TestBuilderPlaceholders(t *testing.T) {
	builder := New()
	sec := topics.Section{
		Kind:     topics.KindTopic,
		ID:       4,
		Name:     "Space Missions",
		Count:    12,
		Keywords: []string{"space", "crew"},
		Works:    []string{"Alien", "Moon"},
	}

	card := builder.Build(sec, map[string]string{"Alien": "https://img/alien.jpg"})

	assert.Equal(t, "Space Missions", card.Title)
	assert.Equal(t, "Works: 12", card.Subtitle)
	require.Len(t, card.Works, 2)
	assert.True(t, card.Works[0].HasPoster)
	assert.Equal(t, "https://img/alien.jpg", card.Works[0].PosterURL)
	assert.False(t, card.Works[1].HasPoster, "Moon is a placeholder")
	assert.Empty(t, card.Works[1].PosterURL)
}

func TestBuilderClusterSubtitle(t *testing.T) {
	card := New().Build(topics.Section{Kind: topics.KindCluster, Topics: []int{0, 2}}, nil)

	assert.Equal(t, "Topics: 0, 2", card.Subtitle)
	assert.Empty(t, card.Works)
}

func TestBuilderULIDUniqueness(t *testing.T) {
	builder := New()

	var (
		mu  sync.Mutex
		ids = make(map[string]bool)
		wg  sync.WaitGroup
	)
	for g := 0; g < 4; g++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < 250; i++ {
				card := builder.Build(topics.Section{}, nil)
				mu.Lock()
				ids[card.ID] = true
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	assert.Len(t, ids, 1000)
}

func TestBuildAllKeepsOrder(t *testing.T) {
	secs := []topics.Section{{ID: 3, Name: "c"}, {ID: 1, Name: "a"}}

	cards := New().BuildAll(secs, nil)

	require.Len(t, cards, 2)
	assert.Equal(t, 3, cards[0].GroupID)
	assert.Equal(t, 1, cards[1].GroupID)
}
