package server

import (
	"embed"
	"fmt"
	"html/template"
	"io"

	"github.com/cognicore/hitflop/pkg/hitflop/analytics"
	"github.com/cognicore/hitflop/pkg/hitflop/chart"
	"github.com/cognicore/hitflop/pkg/hitflop/wordcloud"
)

//go:embed templates/*.html
var templateFS embed.FS

// Template function helpers.
var templateFuncs = template.FuncMap{
	"kpi": func(k analytics.KPI, layout string) string {
		return k.Format(layout)
	},
	// font size of a word cloud word, 14px to 56px
	"fontSize": func(w wordcloud.Word) int {
		return 14 + int(w.Weight*42)
	},
	"plot": func(id string, fig chart.Figure) plotData {
		return plotData{ID: id, Figure: fig}
	},
	"inc": func(i int) int { return i + 1 },
}

// plotData is the argument of the "plot" template.
type plotData struct {
	ID     string
	Figure chart.Figure
}

// Renderer handles HTML template rendering.
type Renderer struct {
	pages *template.Template
}

// NewRenderer parses the embedded page templates.
func NewRenderer() (*Renderer, error) {
	pages, err := template.New("pages").
		Funcs(templateFuncs).
		ParseFS(templateFS, "templates/*.html")
	if err != nil {
		return nil, fmt.Errorf("parse page templates: %w", err)
	}

	return &Renderer{pages: pages}, nil
}

// Render executes the named page template.
func (r *Renderer) Render(w io.Writer, name string, data any) error {
	if err := r.pages.ExecuteTemplate(w, name, data); err != nil {
		return fmt.Errorf("execute %s template: %w", name, err)
	}

	return nil
}
