package stoplist

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTopicNameTokens(t *testing.T) {
	var m *Manager

	got := m.Tokens("12_love_war_ 2019 _family", "_", 10)

	assert.Equal(t, []string{"love", "war", "family"}, got)
}

func TestTokensLimit(t *testing.T) {
	m := NewManager(nil)

	got := m.Tokens("a, b, c, d", ",", 2)

	assert.Equal(t, []string{"a", "b"}, got)
}

func TestStopTermsAreCaseInsensitive(t *testing.T) {
	m := NewManager([]string{" The ", "AND"})

	assert.True(t, m.IsStop("the"))
	assert.True(t, m.IsStop("And"))
	assert.False(t, m.Keep("THE"))
	assert.True(t, m.Keep("love"))
	assert.Equal(t, []string{"and", "the"}, m.All())
}

func TestIsNumeric(t *testing.T) {
	assert.True(t, IsNumeric("2019"))
	assert.True(t, IsNumeric("٣"))
	assert.False(t, IsNumeric("19a"))
	assert.False(t, IsNumeric(""))
}
