package topics

import (
	"fmt"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

type nameKey struct {
	contentType string
	category    string
	kind        Kind
	id          int
}

// Names holds human-readable topic and cluster names. The zero value and a
// nil *Names are valid and fall back to generated names.
type Names struct {
	names map[nameKey]string
}

// NewNames creates an empty name table.
func NewNames() *Names {
	return &Names{names: make(map[nameKey]string)}
}

// Set registers a display name.
func (n *Names) Set(contentType, category string, kind Kind, id int, name string) {
	name = strings.TrimSpace(name)
	if name == "" {
		return
	}
	if n.names == nil {
		n.names = make(map[nameKey]string)
	}
	n.names[nameKey{contentType, category, kind, id}] = name
}

// Len returns the number of registered names.
func (n *Names) Len() int {
	if n == nil {
		return 0
	}
	return len(n.names)
}

// Display returns the name of a group. NoiseID is always "Noise"; unknown ids
// fall back to "Cluster <id>" / "Topic <id>".
func (n *Names) Display(contentType, category string, kind Kind, id int) string {
	if id == NoiseID {
		return NoiseName
	}
	if n != nil {
		if name, ok := n.names[nameKey{contentType, category, kind, id}]; ok {
			return name
		}
	}
	return fmt.Sprintf("%s %d", KindLabel(kind), id)
}

// KindLabel is the capitalised kind, e.g. "Cluster".
func KindLabel(kind Kind) string {
	// a Caser keeps state, so one per call
	return cases.Title(language.English).String(string(kind))
}
