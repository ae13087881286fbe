package config

import (
	"fmt"

	"github.com/cognicore/hitflop/pkg/hitflop/dataset"
	"github.com/cognicore/hitflop/pkg/hitflop/normalize"
	"github.com/cognicore/hitflop/pkg/hitflop/stoplist"
	"github.com/cognicore/hitflop/pkg/hitflop/topics"
)

// Loader loads all configuration files and constructs components
type Loader struct {
	NamesPath    string
	StoplistPath string
}

// Components holds all loaded configuration components
type Components struct {
	Names    *topics.Names
	Stoplist *stoplist.Manager
}

// Load reads all configuration files and returns initialized components.
// Missing paths yield empty components.
func (l *Loader) Load() (*Components, error) {
	comp := &Components{Names: topics.NewNames()}
	var stops []string

	if l.NamesPath != "" {
		nf, err := LoadNames(l.NamesPath)
		if err != nil {
			return nil, fmt.Errorf("load names: %w", err)
		}
		addNames(comp.Names, normalize.Movie, nf.Movie)
		addNames(comp.Names, normalize.Drama, nf.Drama)
		stops = append(stops, nf.StopTerms...)
	}

	if l.StoplistPath != "" {
		sl, err := LoadStoplist(l.StoplistPath)
		if err != nil {
			return nil, fmt.Errorf("load stoplist: %w", err)
		}
		stops = append(stops, sl.Terms...)
	}

	comp.Stoplist = stoplist.NewManager(stops)
	return comp, nil
}

func addNames(names *topics.Names, contentType string, sets map[string]NameSet) {
	for cat, set := range sets {
		category, err := dataset.ParseCategory(cat)
		if err != nil {
			continue
		}
		for id, name := range set.Clusters {
			names.Set(contentType, category, topics.KindCluster, id, name)
		}
		for id, name := range set.Topics {
			names.Set(contentType, category, topics.KindTopic, id, name)
		}
	}
}
