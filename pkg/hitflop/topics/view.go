package topics

import (
	"sort"

	"github.com/RoaringBitmap/roaring"

	"github.com/cognicore/hitflop/pkg/hitflop/dataset"
)

// Group is one display group of titles.
type Group struct {
	ID     int             `json:"id"`
	Name   string          `json:"name"`
	Count  int             `json:"count"`
	Titles []dataset.Title `json:"-"`
}

// View is a cohort with clusters assigned and row bitmaps per topic and per
// cluster. A View is immutable and safe for concurrent use.
type View struct {
	ContentType string
	Category    string
	Cohort      *dataset.Cohort
	Titles      []dataset.Title

	names     *Names
	byTopic   map[int]*roaring.Bitmap
	byCluster map[int]*roaring.Bitmap
}

// NewView indexes a cohort. names may be nil.
func NewView(contentType string, cohort *dataset.Cohort, names *Names) *View {
	v := &View{
		ContentType: contentType,
		Category:    cohort.Category,
		Cohort:      cohort,
		Titles:      AssignClusters(cohort.Titles, cohort.Clusters),
		names:       names,
		byTopic:     make(map[int]*roaring.Bitmap),
		byCluster:   make(map[int]*roaring.Bitmap),
	}
	for i, t := range v.Titles {
		addRow(v.byTopic, t.Topic, uint32(i))
		addRow(v.byCluster, t.Cluster, uint32(i))
	}
	return v
}

func addRow(m map[int]*roaring.Bitmap, id int, row uint32) {
	bm, ok := m[id]
	if !ok {
		bm = roaring.New()
		m[id] = bm
	}
	bm.Add(row)
}

func (v *View) index(kind Kind) map[int]*roaring.Bitmap {
	if kind == KindTopic {
		return v.byTopic
	}
	return v.byCluster
}

// Name returns the display name of a group.
func (v *View) Name(kind Kind, id int) string {
	return v.names.Display(v.ContentType, v.Category, kind, id)
}

// Options lists the selectable ids of the map (noise excluded), ascending.
func (v *View) Options(kind Kind) []int {
	var ids []int
	for id := range v.index(kind) {
		if id != NoiseID {
			ids = append(ids, id)
		}
	}
	sort.Ints(ids)
	return ids
}

// Select returns the titles in the selected groups, in file order. An empty
// selection returns every title.
func (v *View) Select(kind Kind, ids []int) []dataset.Title {
	if len(ids) == 0 {
		out := make([]dataset.Title, len(v.Titles))
		copy(out, v.Titles)
		return out
	}
	idx := v.index(kind)
	rows := roaring.New()
	for _, id := range ids {
		if bm, ok := idx[id]; ok {
			rows.Or(bm)
		}
	}
	out := make([]dataset.Title, 0, rows.GetCardinality())
	it := rows.Iterator()
	for it.HasNext() {
		out = append(out, v.Titles[it.Next()])
	}
	return out
}

// Groups splits the selected titles by display group, ordered by id with
// noise last.
func (v *View) Groups(kind Kind, ids []int) []Group {
	titles := v.Select(kind, ids)
	byID := make(map[int][]dataset.Title)
	for _, t := range titles {
		id := GroupID(t, kind)
		byID[id] = append(byID[id], t)
	}
	keys := make([]int, 0, len(byID))
	for id := range byID {
		keys = append(keys, id)
	}
	out := make([]Group, 0, len(keys))
	for _, id := range SortIDs(keys) {
		out = append(out, Group{
			ID:     id,
			Name:   v.Name(kind, id),
			Count:  len(byID[id]),
			Titles: byID[id],
		})
	}
	return out
}

// Distribution counts titles per group with noise removed, ordered by id.
func (v *View) Distribution(kind Kind) []Group {
	idx := v.index(kind)
	out := make([]Group, 0, len(idx))
	for _, id := range v.Options(kind) {
		out = append(out, Group{
			ID:    id,
			Name:  v.Name(kind, id),
			Count: int(idx[id].GetCardinality()),
		})
	}
	return out
}

// Count returns the number of titles in a group.
func (v *View) Count(kind Kind, id int) int {
	if bm, ok := v.index(kind)[id]; ok {
		return int(bm.GetCardinality())
	}
	return 0
}
