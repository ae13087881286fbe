package server

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/cognicore/hitflop/pkg/hitflop/dataset"
	"github.com/cognicore/hitflop/pkg/hitflop/filter"
	"github.com/cognicore/hitflop/pkg/hitflop/internalerr"
)

type errorBody struct {
	Error string `json:"error"`
}

// writeJSON marshals v before writing headers; a marshal failure is a 500.
func writeJSON(w http.ResponseWriter, status int, v any) {
	data, err := json.Marshal(v)
	if err != nil {
		status = http.StatusInternalServerError
		data, _ = json.Marshal(errorBody{Error: "internal error"})
	}
	w.Header().Set(headerContentType, "application/json")
	w.WriteHeader(status)
	_, _ = w.Write(append(data, '\n'))
}

// statusFor maps an error to an HTTP status and a client-facing message.
// Schema mismatches count as missing data: the step is skipped.
func statusFor(err error) (int, string) {
	switch {
	case errors.Is(err, internalerr.ErrNotFound), errors.Is(err, internalerr.ErrSchema):
		return http.StatusNotFound, internalerr.ErrNotFound.Error()
	case errors.Is(err, internalerr.ErrInvalidInput):
		return http.StatusBadRequest, err.Error()
	default:
		return http.StatusInternalServerError, "internal error"
	}
}

func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status, msg := statusFor(err)
	evt := loggerFrom(r.Context()).Warn()
	if status == http.StatusInternalServerError {
		evt = loggerFrom(r.Context()).Error()
	}
	evt.Err(err).Str("path", r.URL.Path).Msg("request failed")
	writeJSON(w, status, errorBody{Error: msg})
}

func (s *Server) apiKeywords(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	kws, err := s.dash.Keywords(r.Context(), q.Get("content_type"), q.Get("category"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, kws)
}

func (s *Server) apiWordCloud(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	cloud, err := s.dash.WordCloud(r.Context(), q.Get("content_type"), q.Get("category"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, cloud)
}

func (s *Server) apiTopicMap(w http.ResponseWriter, r *http.Request) {
	p, err := parseCohort(r.URL.Query())
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	m, err := s.dash.TopicMap(r.Context(), p.ContentType, p.Category, p.Kind, p.IDs)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, m)
}

func (s *Server) apiDistribution(w http.ResponseWriter, r *http.Request) {
	p, err := parseCohort(r.URL.Query())
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	fig, err := s.dash.Distribution(r.Context(), p.ContentType, p.Category, p.Kind)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, fig)
}

func (s *Server) apiKeywordComparison(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	topN, err := dataset.ParseTopN(q.Get("top_n"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	fig, err := s.dash.KeywordComparison(r.Context(), q.Get("content_type"), topN)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, fig)
}

func (s *Server) apiRepresentatives(w http.ResponseWriter, r *http.Request) {
	p, err := parseCohort(r.URL.Query())
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	reps, err := s.dash.Representatives(r.Context(), p.ContentType, p.Category, p.Kind, p.IDs)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, reps)
}

func (s *Server) apiReview(w http.ResponseWriter, r *http.Request) {
	spec, err := filter.ParseSpec(r.URL.Query())
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	rev, err := s.dash.Review(r.Context(), spec)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, rev)
}

func (s *Server) apiOverview(w http.ResponseWriter, r *http.Request) {
	spec, err := filter.ParseSpec(r.URL.Query())
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	o, err := s.dash.Overview(r.Context(), spec)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, o)
}
