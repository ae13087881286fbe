package server

import (
	"bytes"
	"errors"
	"net/http"
	"net/url"

	"github.com/cognicore/hitflop/pkg/hitflop"
	"github.com/cognicore/hitflop/pkg/hitflop/chart"
	"github.com/cognicore/hitflop/pkg/hitflop/dataset"
	"github.com/cognicore/hitflop/pkg/hitflop/filter"
	"github.com/cognicore/hitflop/pkg/hitflop/internalerr"
	"github.com/cognicore/hitflop/pkg/hitflop/normalize"
	"github.com/cognicore/hitflop/pkg/hitflop/topics"
	"github.com/cognicore/hitflop/pkg/hitflop/wordcloud"
)

// Page names.
const (
	pageNameOverview   = "Overview"
	pageNameSynopsis   = "Synopsis"
	pageNameReview     = "Review"
	pageNamePrediction = "Prediction"
)

// pageBase is shared by every page.
type pageBase struct {
	Title  string
	Active string
}

// filterForm echoes the common filter parameters back into the sidebar form.
type filterForm struct {
	ContentType string
	Start       string
	End         string
	HitType     string
}

func formFrom(q url.Values) filterForm {
	return filterForm{
		ContentType: q.Get("content_type"),
		Start:       q.Get("start"),
		End:         q.Get("end"),
		HitType:     q.Get("hit_type"),
	}
}

// ErrorData contains data for rendering error pages.
type ErrorData struct {
	pageBase
	Code    int
	Message string
}

func (s *Server) render(w http.ResponseWriter, r *http.Request, name string, data any) {
	var buf bytes.Buffer
	if err := s.renderer.Render(&buf, name, data); err != nil {
		loggerFrom(r.Context()).Error().Err(err).Str("template", name).Msg("render failed")
		s.renderError(w, http.StatusInternalServerError, "Error", "Failed to render page.")
		return
	}
	w.Header().Set(headerContentType, "text/html; charset=utf-8")
	_, _ = buf.WriteTo(w)
}

func (s *Server) renderError(w http.ResponseWriter, code int, title, message string) {
	w.Header().Set(headerContentType, "text/html; charset=utf-8")
	w.WriteHeader(code)
	data := ErrorData{pageBase: pageBase{Title: title}, Code: code, Message: message}
	if err := s.renderer.Render(w, "error.html", data); err != nil {
		s.logger.Error().Err(err).Msg("render error page failed")
	}
}

// notice turns a load error into the message shown in place of a section.
func (s *Server) notice(r *http.Request, what string, err error) string {
	if errors.Is(err, internalerr.ErrNotFound) || errors.Is(err, internalerr.ErrSchema) {
		loggerFrom(r.Context()).Debug().Err(err).Str("section", what).Msg("section data missing")
		return "Data not found: " + what
	}
	loggerFrom(r.Context()).Error().Err(err).Str("section", what).Msg("section failed")
	return "Failed to load " + what
}

// overviewData contains all data for rendering the overview page.
type overviewData struct {
	pageBase
	Filter   filterForm
	Overview *hitflop.Overview
	Notice   string
}

func (s *Server) pageOverview(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	spec, err := filter.ParseSpec(q)
	if err != nil {
		s.renderError(w, http.StatusBadRequest, "Bad Request", err.Error())
		return
	}

	data := overviewData{pageBase: pageBase{Title: pageNameOverview, Active: pageNameOverview}, Filter: formFrom(q)}
	if o, err := s.dash.Overview(r.Context(), spec); err != nil {
		data.Notice = s.notice(r, "overview titles", err)
	} else {
		data.Overview = &o
	}
	s.render(w, r, "overview.html", data)
}

// cohortSection is one cohort's half of the synopsis page.
type cohortSection struct {
	Category     string
	Label        string
	Cloud        *wordcloud.Cloud
	CloudNotice  string
	Map          *hitflop.TopicMap
	Distribution *chart.Figure
	Reps         *hitflop.Representatives
	Notice       string
}

// synopsisData contains all data for rendering the synopsis page.
type synopsisData struct {
	pageBase
	ContentType      string
	ContentLabel     string
	View             topics.Kind
	KindLabel        string
	TopN             int
	TopNMin          int
	TopNMax          int
	TopNStep         int
	Cohorts          []cohortSection
	Comparison       *chart.Figure
	ComparisonNotice string
}

func (s *Server) pageSynopsis(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	ct, err := contentTypeOr(q, normalize.Movie)
	if err != nil {
		s.renderError(w, http.StatusBadRequest, "Bad Request", err.Error())
		return
	}
	kind, err := topics.ParseKind(q.Get("view"))
	if err != nil {
		s.renderError(w, http.StatusBadRequest, "Bad Request", err.Error())
		return
	}
	topN, err := dataset.ParseTopN(q.Get("top_n"))
	if err != nil {
		s.renderError(w, http.StatusBadRequest, "Bad Request", err.Error())
		return
	}

	data := synopsisData{
		pageBase:     pageBase{Title: pageNameSynopsis, Active: pageNameSynopsis},
		ContentType:  ct,
		ContentLabel: chart.ContentLabel(ct),
		View:         kind,
		KindLabel:    topics.KindLabel(kind),
		TopN:         topN,
		TopNMin:      dataset.MinTopN,
		TopNMax:      dataset.MaxTopN,
		TopNStep:     dataset.TopNStep,
	}

	for _, cat := range []string{dataset.Hit, dataset.Flop} {
		ids, err := parseIDs(q, cat+"_ids")
		if err != nil {
			s.renderError(w, http.StatusBadRequest, "Bad Request", err.Error())
			return
		}
		data.Cohorts = append(data.Cohorts, s.cohortSection(r, ct, cat, kind, ids))
	}

	if fig, err := s.dash.KeywordComparison(r.Context(), ct, topN); err != nil {
		data.ComparisonNotice = s.notice(r, "keyword comparison", err)
	} else {
		data.Comparison = &fig
	}

	s.render(w, r, "synopsis.html", data)
}

func (s *Server) cohortSection(r *http.Request, ct, cat string, kind topics.Kind, ids []int) cohortSection {
	ctx := r.Context()
	sec := cohortSection{Category: cat, Label: chart.CategoryLabel(cat)}

	if cloud, err := s.dash.WordCloud(ctx, ct, cat); err != nil {
		sec.CloudNotice = s.notice(r, "TF-IDF keywords", err)
	} else {
		sec.Cloud = &cloud
	}

	m, err := s.dash.TopicMap(ctx, ct, cat, kind, ids)
	if err != nil {
		sec.Notice = s.notice(r, "BERTopic results", err)
		return sec
	}
	sec.Map = &m

	if fig, err := s.dash.Distribution(ctx, ct, cat, kind); err == nil {
		sec.Distribution = &fig
	}
	if reps, err := s.dash.Representatives(ctx, ct, cat, kind, ids); err == nil {
		sec.Reps = &reps
	}
	return sec
}

// reviewData contains all data for rendering the review page.
type reviewData struct {
	pageBase
	Filter          filterForm
	Review          *hitflop.Review
	Notice          string
	All             *hitflop.Review
	AllNotice       string
	KeywordColumns  []string
	Keywords        []map[string]string
	KeywordsNotice  string
	KeywordsOmitted int
	Cloud           *wordcloud.Cloud
	CloudNotice     string
}

// maxKeywordRows caps the review keyword table.
const maxKeywordRows = 50

func (s *Server) pageReview(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	spec, err := filter.ParseSpec(q)
	if err != nil {
		s.renderError(w, http.StatusBadRequest, "Bad Request", err.Error())
		return
	}

	data := reviewData{pageBase: pageBase{Title: pageNameReview, Active: pageNameReview}, Filter: formFrom(q)}
	if rev, err := s.dash.Review(r.Context(), spec); err != nil {
		data.Notice = s.notice(r, "review topic summary", err)
	} else {
		data.Review = &rev
	}
	if all, err := s.dash.ReviewAll(r.Context(), spec); err != nil {
		data.AllNotice = s.notice(r, "overall review topic summary", err)
	} else {
		data.All = &all
	}

	if f, err := s.dash.ReviewKeywords(r.Context(), spec); err != nil {
		data.KeywordsNotice = s.notice(r, "review keywords", err)
	} else {
		head := f.Head(maxKeywordRows)
		data.KeywordColumns = head.Columns()
		data.Keywords = head.Records()
		data.KeywordsOmitted = f.Len() - head.Len()
		if cloud, err := s.dash.ReviewCloud(f, spec); err != nil {
			data.CloudNotice = s.notice(r, "review keyword scores", err)
		} else {
			data.Cloud = &cloud
		}
	}

	s.render(w, r, "review.html", data)
}

func (s *Server) pagePrediction(w http.ResponseWriter, r *http.Request) {
	s.render(w, r, "prediction.html", pageBase{Title: pageNamePrediction, Active: pageNamePrediction})
}
