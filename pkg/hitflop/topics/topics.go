// Package topics maps titles onto BERTopic topics and clusters: cluster
// assignment, display names, ordering, selection and per-group summaries.
package topics

import (
	"fmt"
	"sort"
	"strings"

	"github.com/cognicore/hitflop/pkg/hitflop/dataset"
	"github.com/cognicore/hitflop/pkg/hitflop/internalerr"
)

// Kind selects the grouping level.
type Kind string

const (
	KindCluster Kind = "cluster"
	KindTopic   Kind = "topic"
)

// NoiseID is the id of the noise group.
const NoiseID = dataset.NoiseID

// NoiseName is the display name of the noise group.
const NoiseName = "Noise"

// ParseKind accepts "cluster" and "topic"; empty defaults to cluster.
func ParseKind(s string) (Kind, error) {
	switch k := Kind(strings.ToLower(strings.TrimSpace(s))); k {
	case "":
		return KindCluster, nil
	case KindCluster, KindTopic:
		return k, nil
	default:
		return "", fmt.Errorf("view %q: %w", s, internalerr.ErrInvalidInput)
	}
}

// AssignClusters derives cluster ids from the topic→cluster table when the
// titles carry none. The last table row for a topic wins; topics absent from
// the table get NoiseID. The input is not modified.
func AssignClusters(titles []dataset.Title, clusters []dataset.Cluster) []dataset.Title {
	out := make([]dataset.Title, len(titles))
	copy(out, titles)
	if len(out) == 0 || out[0].HasCluster {
		return out
	}

	topicToCluster := make(map[int]int, len(clusters))
	for _, c := range clusters {
		topicToCluster[c.TopicID] = c.ID
	}
	for i := range out {
		if id, ok := topicToCluster[out[i].Topic]; ok {
			out[i].Cluster = id
		} else {
			out[i].Cluster = NoiseID
		}
	}
	return out
}

// SortKey orders noise after every real id.
func SortKey(id int) int {
	if id == NoiseID {
		return 999
	}
	return id
}

// SortIDs returns ids ascending with NoiseID last: [3,-1,1] → [1,3,-1].
func SortIDs(ids []int) []int {
	out := make([]int, len(ids))
	copy(out, ids)
	sort.SliceStable(out, func(i, j int) bool {
		ki, kj := SortKey(out[i]), SortKey(out[j])
		if ki != kj {
			return ki < kj
		}
		return out[i] < out[j]
	})
	return out
}

// GroupID returns the title's id at the given level.
func GroupID(t dataset.Title, kind Kind) int {
	if kind == KindTopic {
		return t.Topic
	}
	return t.Cluster
}
