package stoplist

import (
	"sort"
	"strings"
	"unicode"
)

// Manager holds stop terms that are hidden from keyword tags and word clouds.
// A Manager is read-only once built and safe to share.
type Manager struct {
	stops map[string]struct{}
}

// NewManager creates a manager from an initial list of terms.
func NewManager(initialStops []string) *Manager {
	m := &Manager{stops: make(map[string]struct{}, len(initialStops))}
	for _, s := range initialStops {
		m.Add(s)
	}
	return m
}

// IsStop checks if a token is a configured stop term. A nil manager has none.
func (m *Manager) IsStop(token string) bool {
	if m == nil {
		return false
	}
	_, ok := m.stops[strings.ToLower(strings.TrimSpace(token))]
	return ok
}

// Add adds a term.
func (m *Manager) Add(token string) {
	token = strings.ToLower(strings.TrimSpace(token))
	if token == "" {
		return
	}
	m.stops[token] = struct{}{}
}

// All returns all stop terms, sorted.
func (m *Manager) All() []string {
	if m == nil {
		return nil
	}
	result := make([]string, 0, len(m.stops))
	for s := range m.stops {
		result = append(result, s)
	}
	sort.Strings(result)
	return result
}

// Keep reports whether a keyword token should be shown: non-empty, not made
// of digits only, and not a stop term.
func (m *Manager) Keep(token string) bool {
	token = strings.TrimSpace(token)
	if token == "" || IsNumeric(token) {
		return false
	}
	return !m.IsStop(token)
}

// Tokens splits raw on sep, trims every part, drops what Keep rejects and
// returns at most limit tokens (limit <= 0 keeps all).
func (m *Manager) Tokens(raw, sep string, limit int) []string {
	var out []string
	for _, part := range strings.Split(raw, sep) {
		part = strings.TrimSpace(part)
		if !m.Keep(part) {
			continue
		}
		out = append(out, part)
		if limit > 0 && len(out) == limit {
			break
		}
	}
	return out
}

// IsNumeric reports whether s is non-empty and consists of digits only.
func IsNumeric(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if !unicode.IsDigit(r) {
			return false
		}
	}
	return true
}
