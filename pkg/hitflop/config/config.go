// Package config loads the dashboard's domain configuration files.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/cognicore/hitflop/pkg/hitflop/internalerr"
)

// NameSet holds display names for one cohort.
type NameSet struct {
	Clusters map[int]string `yaml:"clusters"`
	Topics   map[int]string `yaml:"topics"`
}

// NamesFile is the display-name file, keyed by content type then category.
type NamesFile struct {
	Movie     map[string]NameSet `yaml:"movie"`
	Drama     map[string]NameSet `yaml:"drama"`
	StopTerms []string           `yaml:"stop_terms"`
}

// LoadNames loads display names from a YAML file
func LoadNames(path string) (*NamesFile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var nf NamesFile
	if err := yaml.Unmarshal(data, &nf); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", internalerr.ErrInvalidConfig, path, err)
	}
	return &nf, nil
}

// Stoplist represents the stop-term list configuration
type Stoplist struct {
	Terms []string `yaml:"terms"`
}

// LoadStoplist loads stop terms from a YAML file
func LoadStoplist(path string) (*Stoplist, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var sl Stoplist
	if err := yaml.Unmarshal(data, &sl); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", internalerr.ErrInvalidConfig, path, err)
	}
	return &sl, nil
}
