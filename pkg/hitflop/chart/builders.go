package chart

import (
	"fmt"
	"math"
	"sort"

	"github.com/cognicore/hitflop/pkg/hitflop/analytics"
	"github.com/cognicore/hitflop/pkg/hitflop/dataset"
	"github.com/cognicore/hitflop/pkg/hitflop/normalize"
	"github.com/cognicore/hitflop/pkg/hitflop/topics"
)

// Notices shown in place of a chart.
const (
	NoSelection    = "No data for the selected items"
	NoCoordinates  = "UMAP coordinates are missing; the map cannot be drawn"
	NoYearlyTrend  = "No year column in the selected data"
	mapHeight      = 600
	markerSize     = 10
	markerOpacity  = 0.75
	markerLineGrey = "DarkSlateGray"
)

// CategoryLabel names a cohort for titles.
func CategoryLabel(category string) string {
	if category == dataset.Hit {
		return "Hit"
	}
	return "Flop"
}

// ContentLabel names a content type for titles.
func ContentLabel(contentType string) string {
	if contentType == normalize.Drama {
		return "Drama"
	}
	return "Movie"
}

// TopicMap draws the UMAP scatter of the selected groups, one trace per
// display group with noise last.
func TopicMap(v *topics.View, kind topics.Kind, ids []int) Figure {
	if !v.Cohort.HasCoordinates {
		return Message(NoCoordinates)
	}
	groups := v.Groups(kind, ids)
	if len(groups) == 0 {
		return Message(NoSelection)
	}

	palette := Set2
	if kind == topics.KindTopic {
		palette = Light24
	}
	kindLabel := topics.KindLabel(kind)

	fig := Figure{Data: make([]Trace, 0, len(groups))}
	for i, g := range groups {
		var (
			xs, ys []float64
			text   []string
			custom [][]interface{}
		)
		for _, t := range g.Titles {
			if !t.HasXY {
				continue
			}
			xs = append(xs, t.X)
			ys = append(ys, t.Y)
			text = append(text, t.Title)
			score := ""
			if t.HitScore != nil {
				score = fmt.Sprintf("%.4f", round4(*t.HitScore))
			}
			custom = append(custom, []interface{}{t.Topic, g.Name, score})
		}
		fig.Data = append(fig.Data, Trace{
			Type:       "scatter",
			Mode:       "markers",
			Name:       g.Name,
			X:          xs,
			Y:          ys,
			Text:       text,
			CustomData: custom,
			HoverTemplate: "title=%{text}<br>topic=%{customdata[0]}<br>" + kindLabel +
				"=%{customdata[1]}<br>hit_score=%{customdata[2]}<extra></extra>",
			Marker: &Marker{
				Size:    markerSize,
				Opacity: markerOpacity,
				Color:   palette[i%len(palette)],
				Line:    &Line{Width: 0.5, Color: markerLineGrey},
			},
		})
	}

	fig.Layout = Layout{
		Title: &Title{
			Text: fmt.Sprintf("%s %s %s Map", CategoryLabel(v.Category), ContentLabel(v.ContentType), kindLabel),
			Font: &Font{Color: black, Size: 16},
		},
		Height:       mapHeight,
		PlotBGColor:  white,
		PaperBGColor: white,
		XAxis:        &Axis{Title: &Title{Text: "UMAP X"}, ShowGrid: true, GridColor: gridColor, TickFont: blackFont()},
		YAxis:        &Axis{Title: &Title{Text: "UMAP Y"}, ShowGrid: true, GridColor: gridColor, TickFont: blackFont()},
		Legend: &Legend{
			Orientation: "v", X: 1.02, Y: 0.99, XAnchor: "left", YAnchor: "top",
			BGColor: "rgba(255,255,255,0.9)", BorderColor: "#d0d0d0", BorderWidth: 1,
		},
		Margin: &Margin{R: 250},
	}
	return fig
}

func round4(v float64) float64 {
	return math.Round(v*1e4) / 1e4
}

// KeywordComparison draws hit-only and flop-only keywords as two horizontal
// bar subplots.
func KeywordComparison(hit, flop []dataset.Keyword) Figure {
	fig := Figure{Data: []Trace{}}
	if len(hit) > 0 {
		fig.Data = append(fig.Data, keywordBars(hit, "Hit", "mediumseagreen", "x", "y"))
	}
	if len(flop) > 0 {
		fig.Data = append(fig.Data, keywordBars(flop, "Flop", "indianred", "x2", "y2"))
	}

	scoreTitle := &Title{Text: "c-TF-IDF Score", Font: blackFont()}
	tick := &Font{Color: black, Size: 16}
	fig.Layout = Layout{
		Height:       mapHeight,
		PlotBGColor:  white,
		PaperBGColor: white,
		XAxis:        &Axis{Title: scoreTitle, Domain: []float64{0, 0.425}, Anchor: "y", TickFont: blackFont()},
		XAxis2:       &Axis{Title: scoreTitle, Domain: []float64{0.575, 1}, Anchor: "y2", TickFont: blackFont()},
		YAxis:        &Axis{Anchor: "x", TickFont: tick},
		YAxis2:       &Axis{Anchor: "x2", TickFont: tick},
		Annotations: []Annotation{
			subplotTitle("Hit-only keywords", 0.22),
			subplotTitle("Flop-only keywords", 0.78),
		},
	}
	return fig
}

func keywordBars(kws []dataset.Keyword, name, color, xaxis, yaxis string) Trace {
	words := make([]string, len(kws))
	scores := make([]float64, len(kws))
	for i, k := range kws {
		words[i] = k.Keyword
		scores[i] = k.Score
	}
	return Trace{
		Type:        "bar",
		Orientation: "h",
		Name:        name,
		X:           scores,
		Y:           words,
		Marker:      &Marker{Color: color},
		XAxis:       xaxis,
		YAxis:       yaxis,
		ShowLegend:  boolPtr(false),
	}
}

func subplotTitle(text string, x float64) Annotation {
	return Annotation{
		Text: text, XRef: "paper", YRef: "paper", X: x, Y: 1.08,
		XAnchor: "center", YAnchor: "bottom", Font: &Font{Color: black, Size: 18},
	}
}

// YAxisRange returns the fixed distribution axis of a content type.
func YAxisRange(contentType string) (max, step float64) {
	if contentType == normalize.Drama {
		return 250, 50
	}
	return 1600, 400
}

// Distribution draws title counts per group, noise excluded, coloured on a
// green to orange scale.
func Distribution(v *topics.View, kind topics.Kind) Figure {
	groups := v.Distribution(kind)
	names := make([]string, len(groups))
	counts := make([]int, len(groups))
	text := make([]string, len(groups))
	for i, g := range groups {
		names[i] = g.Name
		counts[i] = g.Count
		text[i] = fmt.Sprint(g.Count)
	}

	max, step := YAxisRange(v.ContentType)
	kindLabel := topics.KindLabel(kind)
	return Figure{
		Data: []Trace{{
			Type:         "bar",
			X:            names,
			Y:            counts,
			Text:         text,
			TextPosition: "outside",
			Marker:       &Marker{Color: counts, ColorScale: DistributionScale, ShowScale: true},
		}},
		Layout: Layout{
			Title: &Title{
				Text: fmt.Sprintf("%s %s per %s", CategoryLabel(v.Category), ContentLabel(v.ContentType), kindLabel),
				Font: &Font{Color: black, Size: 16},
			},
			Height:       mapHeight,
			PlotBGColor:  white,
			PaperBGColor: white,
			XAxis:        &Axis{Title: &Title{Text: kindLabel}, TickAngle: -45, TickFont: blackFont()},
			YAxis: &Axis{
				Title:    &Title{Text: ContentLabel(v.ContentType) + " count"},
				Range:    []float64{0, max},
				DTick:    step,
				TickFont: blackFont(),
			},
		},
	}
}

// YearlyTrend draws titles per year, one line per hit label.
func YearlyTrend(s analytics.Summary) Figure {
	if len(s.Yearly) == 0 {
		return Message(NoYearlyTrend)
	}
	byLabel := make(map[string]map[int]int)
	yearSet := make(map[int]struct{})
	for _, yc := range s.Yearly {
		if byLabel[yc.Label] == nil {
			byLabel[yc.Label] = make(map[int]int)
		}
		byLabel[yc.Label][yc.Year] += yc.Count
		yearSet[yc.Year] = struct{}{}
	}
	years := make([]int, 0, len(yearSet))
	for y := range yearSet {
		years = append(years, y)
	}
	sort.Ints(years)
	labels := make([]string, 0, len(byLabel))
	for l := range byLabel {
		labels = append(labels, l)
	}
	sort.Strings(labels)

	fig := Figure{Data: make([]Trace, 0, len(labels))}
	for i, l := range labels {
		counts := make([]int, len(years))
		for j, y := range years {
			counts[j] = byLabel[l][y]
		}
		fig.Data = append(fig.Data, Trace{
			Type:   "scatter",
			Mode:   "lines+markers",
			Name:   l,
			X:      years,
			Y:      counts,
			Marker: &Marker{Color: Set2[i%len(Set2)]},
		})
	}
	fig.Layout = Layout{
		Title:        &Title{Text: "Yearly Trend", Font: &Font{Color: black, Size: 16}},
		PlotBGColor:  white,
		PaperBGColor: white,
		XAxis:        &Axis{Title: &Title{Text: "Year"}, DTick: 1, TickFont: blackFont()},
		YAxis:        &Axis{Title: &Title{Text: "Titles"}, ShowGrid: true, GridColor: gridColor, TickFont: blackFont()},
	}
	return fig
}
