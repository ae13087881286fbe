package topics

import "sort"

// MaxWorks is the number of representative works shown per section.
const MaxWorks = 3

// Section describes one topic or cluster on the representative works tab.
type Section struct {
	Kind     Kind     `json:"kind"`
	ID       int      `json:"id"`
	Name     string   `json:"name"`
	Count    int      `json:"count"`
	Topics   []int    `json:"topics,omitempty"`
	Keywords []string `json:"keywords"`
	Works    []string `json:"works"`
}

// RepresentativeOptions lists the ids offered on the representative works
// tab: topic-info ids without noise, or every id of the cluster table.
func (v *View) RepresentativeOptions(kind Kind) []int {
	seen := make(map[int]struct{})
	var ids []int
	add := func(id int) {
		if _, ok := seen[id]; ok {
			return
		}
		seen[id] = struct{}{}
		ids = append(ids, id)
	}
	if kind == KindTopic {
		for _, t := range v.Cohort.Topics {
			if t.ID != NoiseID {
				add(t.ID)
			}
		}
		sort.Ints(ids)
		return ids
	}
	for _, c := range v.Cohort.Clusters {
		add(c.ID)
	}
	return SortIDs(ids)
}

// Representatives builds the sections for the selected ids. An empty
// selection means every option.
func (v *View) Representatives(kind Kind, ids []int) []Section {
	selected := make(map[int]bool, len(ids))
	for _, id := range ids {
		selected[id] = true
	}
	want := func(id int) bool { return len(ids) == 0 || selected[id] }

	if kind == KindTopic {
		var out []Section
		// topic-info order, which is how the table was written
		for _, t := range v.Cohort.Topics {
			if t.ID == NoiseID || !want(t.ID) {
				continue
			}
			out = append(out, Section{
				Kind:     KindTopic,
				ID:       t.ID,
				Name:     v.Name(KindTopic, t.ID),
				Count:    t.Count,
				Keywords: t.Keywords,
				Works:    firstN(t.Titles, MaxWorks),
			})
		}
		return out
	}

	var out []Section
	for _, id := range v.RepresentativeOptions(KindCluster) {
		if !want(id) {
			continue
		}
		sec := Section{Kind: KindCluster, ID: id, Name: v.Name(KindCluster, id)}
		var works []string
		first := true
		for _, c := range v.Cohort.Clusters {
			if c.ID != id {
				continue
			}
			if first {
				sec.Keywords = c.Keywords
				first = false
			}
			sec.Topics = append(sec.Topics, c.TopicID)
			if t, ok := v.Cohort.Topic(c.TopicID); ok {
				works = append(works, t.Titles...)
			}
		}
		sec.Works = firstN(works, MaxWorks)
		sec.Count = v.Count(KindCluster, id)
		out = append(out, sec)
	}
	return out
}

// NeededTitles is the set of works across sections, in first-seen order.
func NeededTitles(sections []Section) []string {
	seen := make(map[string]struct{})
	var out []string
	for _, s := range sections {
		for _, w := range s.Works {
			if _, ok := seen[w]; ok {
				continue
			}
			seen[w] = struct{}{}
			out = append(out, w)
		}
	}
	return out
}

func firstN(s []string, n int) []string {
	if len(s) > n {
		s = s[:n]
	}
	out := make([]string, len(s))
	copy(out, s)
	return out
}
