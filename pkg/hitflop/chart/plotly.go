// Package chart builds Plotly figure JSON for the dashboard's charts. The
// browser renders the figures with plotly.js; nothing here draws.
package chart

// Figure is a Plotly figure.
type Figure struct {
	Data   []Trace `json:"data"`
	Layout Layout  `json:"layout"`
}

// Trace is one Plotly trace. Only the attributes the dashboard uses are
// modelled.
type Trace struct {
	Type          string          `json:"type"`
	Name          string          `json:"name,omitempty"`
	Mode          string          `json:"mode,omitempty"`
	Orientation   string          `json:"orientation,omitempty"`
	X             interface{}     `json:"x"`
	Y             interface{}     `json:"y"`
	Text          []string        `json:"text,omitempty"`
	TextPosition  string          `json:"textposition,omitempty"`
	CustomData    [][]interface{} `json:"customdata,omitempty"`
	HoverTemplate string          `json:"hovertemplate,omitempty"`
	Marker        *Marker         `json:"marker,omitempty"`
	XAxis         string          `json:"xaxis,omitempty"`
	YAxis         string          `json:"yaxis,omitempty"`
	ShowLegend    *bool           `json:"showlegend,omitempty"`
}

// Marker styles trace points or bars.
type Marker struct {
	Size       float64         `json:"size,omitempty"`
	Opacity    float64         `json:"opacity,omitempty"`
	Color      interface{}     `json:"color,omitempty"`
	ColorScale [][]interface{} `json:"colorscale,omitempty"`
	ShowScale  bool            `json:"showscale,omitempty"`
	Line       *Line           `json:"line,omitempty"`
}

// Line is a marker outline.
type Line struct {
	Width float64 `json:"width"`
	Color string  `json:"color"`
}

// Font is a text style.
type Font struct {
	Color string  `json:"color,omitempty"`
	Size  float64 `json:"size,omitempty"`
}

// Title is a layout or axis title.
type Title struct {
	Text string `json:"text"`
	Font *Font  `json:"font,omitempty"`
}

// Axis is a cartesian axis.
type Axis struct {
	Title     *Title    `json:"title,omitempty"`
	Domain    []float64 `json:"domain,omitempty"`
	Anchor    string    `json:"anchor,omitempty"`
	Range     []float64 `json:"range,omitempty"`
	DTick     float64   `json:"dtick,omitempty"`
	TickAngle float64   `json:"tickangle,omitempty"`
	TickFont  *Font     `json:"tickfont,omitempty"`
	ShowGrid  bool      `json:"showgrid,omitempty"`
	GridColor string    `json:"gridcolor,omitempty"`
}

// Legend places the legend.
type Legend struct {
	Orientation string  `json:"orientation,omitempty"`
	X           float64 `json:"x"`
	Y           float64 `json:"y"`
	XAnchor     string  `json:"xanchor,omitempty"`
	YAnchor     string  `json:"yanchor,omitempty"`
	BGColor     string  `json:"bgcolor,omitempty"`
	BorderColor string  `json:"bordercolor,omitempty"`
	BorderWidth float64 `json:"borderwidth,omitempty"`
}

// Margin in pixels.
type Margin struct {
	L int `json:"l,omitempty"`
	R int `json:"r,omitempty"`
	T int `json:"t,omitempty"`
	B int `json:"b,omitempty"`
}

// Annotation is free text placed on the figure.
type Annotation struct {
	Text      string  `json:"text"`
	XRef      string  `json:"xref"`
	YRef      string  `json:"yref"`
	X         float64 `json:"x"`
	Y         float64 `json:"y"`
	XAnchor   string  `json:"xanchor,omitempty"`
	YAnchor   string  `json:"yanchor,omitempty"`
	ShowArrow bool    `json:"showarrow"`
	Font      *Font   `json:"font,omitempty"`
}

// Layout is the figure layout.
type Layout struct {
	Title        *Title       `json:"title,omitempty"`
	Height       int          `json:"height,omitempty"`
	PlotBGColor  string       `json:"plot_bgcolor,omitempty"`
	PaperBGColor string       `json:"paper_bgcolor,omitempty"`
	XAxis        *Axis        `json:"xaxis,omitempty"`
	XAxis2       *Axis        `json:"xaxis2,omitempty"`
	YAxis        *Axis        `json:"yaxis,omitempty"`
	YAxis2       *Axis        `json:"yaxis2,omitempty"`
	Legend       *Legend      `json:"legend,omitempty"`
	Margin       *Margin      `json:"margin,omitempty"`
	Annotations  []Annotation `json:"annotations,omitempty"`
}

// Set2 is Plotly's qualitative Set2 sequence.
var Set2 = []string{
	"rgb(102,194,165)", "rgb(252,141,98)", "rgb(141,160,203)", "rgb(231,138,195)",
	"rgb(166,216,84)", "rgb(255,217,47)", "rgb(229,196,148)", "rgb(179,179,179)",
}

// Light24 is Plotly's qualitative Light24 sequence.
var Light24 = []string{
	"#FD3216", "#00FE35", "#6A76FC", "#FED4C4", "#FE00CE", "#0DF9FF",
	"#F6F926", "#FF9616", "#479B55", "#EEA6FB", "#DC587D", "#D626FF",
	"#6E899C", "#00B5F7", "#B68E00", "#C9FBE5", "#FF0092", "#22FFA7",
	"#E3EE9E", "#86CE00", "#BC7196", "#7E7DCD", "#FC6955", "#E48F72",
}

// DistributionScale runs light green → yellow → light orange.
var DistributionScale = [][]interface{}{{0, "#c8e6c9"}, {0.5, "#ffeb3b"}, {1, "#ffcc80"}}

const (
	white     = "white"
	black     = "black"
	gridColor = "rgba(200,200,200,0.3)"
)

func blackFont() *Font { return &Font{Color: black} }

func boolPtr(b bool) *bool { return &b }

// Message is an empty figure carrying a centred notice.
func Message(text string) Figure {
	return Figure{
		Data: []Trace{},
		Layout: Layout{
			PlotBGColor:  white,
			PaperBGColor: white,
			Annotations: []Annotation{{
				Text: text, XRef: "paper", YRef: "paper", X: 0.5, Y: 0.5,
			}},
		},
	}
}
