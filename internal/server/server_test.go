package server

import (
	"encoding/json"
	"math"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/net/html"

	"github.com/cognicore/hitflop/internal/fixture"
	"github.com/cognicore/hitflop/pkg/hitflop"
	"github.com/cognicore/hitflop/pkg/hitflop/dataset"
	"github.com/cognicore/hitflop/pkg/hitflop/internalerr"
	"github.com/cognicore/hitflop/pkg/hitflop/metrics"
)

func newTestServer(t *testing.T, rps float64, burst int) http.Handler {
	t.Helper()
	return newTestServerAt(t, fixture.DataDir(t), rps, burst)
}

func newTestServerAt(t *testing.T, root string, rps float64, burst int) http.Handler {
	t.Helper()

	logger := zerolog.Nop()
	loader := dataset.NewLoader(dataset.LoaderOptions{Root: root, Logger: &logger})
	dash := hitflop.New(hitflop.Options{Loader: loader, Logger: &logger})
	t.Cleanup(func() { dash.Close() })

	srv, err := New(dash, Options{RateLimitRPS: rps, RateLimitBurst: burst, Logger: &logger})
	require.NoError(t, err)

	return srv.Handler()
}

func get(t *testing.T, h http.Handler, target string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, target, nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func decode(t *testing.T, rec *httptest.ResponseRecorder, v any) {
	t.Helper()
	require.Equal(t, "application/json", rec.Header().Get(headerContentType))
	require.NoError(t, json.NewDecoder(rec.Body).Decode(v))
}

func TestHealthz(t *testing.T) {
	rec := get(t, newTestServer(t, 100, 100), "/healthz")

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "OK", rec.Body.String())
}

func TestAPIStatusCodes(t *testing.T) {
	h := newTestServer(t, 1000, 1000)

	tests := []struct {
		name       string
		target     string
		wantStatus int
		wantError  string
	}{
		{"keywords", "/api/keywords?content_type=drama&category=hit", http.StatusOK, ""},
		{"missing data", "/api/keywords?content_type=movie&category=hit", http.StatusNotFound, "data not found"},
		{"unknown content type", "/api/keywords?content_type=anime&category=hit", http.StatusBadRequest, ""},
		{"unknown category", "/api/wordcloud?content_type=drama&category=meh", http.StatusBadRequest, ""},
		{"bad ids", "/api/topic-map?content_type=drama&category=hit&ids=x", http.StatusBadRequest, ""},
		{"bad view", "/api/distribution?content_type=drama&category=hit&view=genre", http.StatusBadRequest, ""},
		{"top_n off step", "/api/keyword-comparison?content_type=drama&top_n=12", http.StatusBadRequest, ""},
		{"missing comparison", "/api/keyword-comparison?content_type=movie", http.StatusNotFound, "data not found"},
		{"reversed years", "/api/overview?start=2021&end=2019", http.StatusBadRequest, ""},
		{"review", "/api/review?content_type=drama", http.StatusOK, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := get(t, h, tt.target)

			assert.Equal(t, tt.wantStatus, rec.Code, rec.Body.String())
			assert.NotEmpty(t, rec.Header().Get(headerRequestID))
			if tt.wantError != "" {
				var body errorBody
				decode(t, rec, &body)
				assert.Equal(t, tt.wantError, body.Error)
			}
		})
	}
}

func TestAPITopicMap(t *testing.T) {
	h := newTestServer(t, 1000, 1000)

	rec := get(t, h, "/api/topic-map?content_type=drama&category=hit&view=cluster&ids=0")
	require.Equal(t, http.StatusOK, rec.Code)

	var m hitflop.TopicMap
	decode(t, rec, &m)
	assert.Equal(t, hitflop.MapMetrics{Titles: 4, Groups: 2}, m.Metrics)
	require.Len(t, m.Figure.Data, 1)
	assert.Equal(t, "Cluster 0", m.Figure.Data[0].Name)
}

func TestAPIRepresentatives(t *testing.T) {
	h := newTestServer(t, 1000, 1000)

	rec := get(t, h, "/api/representatives?content_type=drama&category=hit&view=topic&id=0")
	require.Equal(t, http.StatusOK, rec.Code)

	var reps hitflop.Representatives
	decode(t, rec, &reps)
	require.Len(t, reps.Cards, 1)
	assert.Equal(t, []string{"love", "family"}, reps.Cards[0].Keywords)
	assert.True(t, reps.Cards[0].Works[0].HasPoster)
	assert.NotEmpty(t, reps.Cards[0].ID)
}

func TestAPIReview(t *testing.T) {
	h := newTestServer(t, 1000, 1000)

	rec := get(t, h, "/api/review?content_type=drama&hit_type=Hit")
	require.Equal(t, http.StatusOK, rec.Code)

	var rev hitflop.Review
	decode(t, rec, &rev)
	assert.Equal(t, 1, rev.Total)
	assert.Equal(t, "100", rev.Rows[0]["review_count"])
}

func TestAPIOverviewSkipsInfiniteCells(t *testing.T) {
	root := fixture.DataDir(t)
	fixture.WriteFile(t, root, dataset.DefaultOverviewPath,
		"title,type,release_year,hit,vote_average,num_reviews,hit_score\n"+
			"Alpha,drama,2019,1,8.0,100,0.9\n"+
			"Beta,drama,2020,0,inf,50,0.2\n"+
			"Omega,movie,2020,0,5.0,10,-Inf\n")
	h := newTestServerAt(t, root, 1000, 1000)

	rec := get(t, h, "/api/overview")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var o hitflop.Overview
	decode(t, rec, &o)
	assert.Equal(t, 3, o.Summary.TotalTitles)
	assert.InDelta(t, 6.5, o.Summary.AvgRating.Value, 1e-9)
}

func TestWriteJSONUnencodableValue(t *testing.T) {
	rec := httptest.NewRecorder()

	writeJSON(rec, http.StatusOK, map[string]float64{"x": math.Inf(1)})

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	var body errorBody
	decode(t, rec, &body)
	assert.Equal(t, "internal error", body.Error)
}

func TestRateLimit(t *testing.T) {
	h := newTestServer(t, 0.001, 1)
	before := testutil.ToFloat64(metrics.RequestsTotal.WithLabelValues("/api/keywords", "429"))

	first := get(t, h, "/api/keywords?content_type=drama&category=hit")
	second := get(t, h, "/api/keywords?content_type=drama&category=hit")
	page := get(t, h, "/prediction")

	assert.Equal(t, http.StatusOK, first.Code)
	assert.Equal(t, http.StatusTooManyRequests, second.Code)
	assert.Equal(t, http.StatusTooManyRequests, page.Code)
	assert.Contains(t, page.Header().Get(headerContentType), "text/html")
	assert.Equal(t, before+1, testutil.ToFloat64(metrics.RequestsTotal.WithLabelValues("/api/keywords", "429")))
}

func TestRequestIDIsEchoed(t *testing.T) {
	h := newTestServer(t, 1000, 1000)
	req := httptest.NewRequest(http.MethodGet, "/prediction", nil)
	req.Header.Set(headerRequestID, "abc-123")
	rec := httptest.NewRecorder()

	h.ServeHTTP(rec, req)

	assert.Equal(t, "abc-123", rec.Header().Get(headerRequestID))
}

func TestClientIP(t *testing.T) {
	proxies, err := parseProxies([]string{"10.0.0.0/8", "127.0.0.1"})
	require.NoError(t, err)

	tests := []struct {
		name   string
		remote string
		xff    string
		realIP string
		want   string
	}{
		{"direct", "203.0.113.5:5555", "", "", "203.0.113.5"},
		{"untrusted peer spoofs header", "203.0.113.5:5555", "1.2.3.4", "5.6.7.8", "203.0.113.5"},
		{"trusted proxy", "10.0.0.1:5555", "1.2.3.4", "", "1.2.3.4"},
		{"rightmost untrusted hop", "10.0.0.1:5555", "6.6.6.6, 1.2.3.4, 10.0.0.2", "", "1.2.3.4"},
		{"all hops trusted", "127.0.0.1:5555", "10.0.0.3, 10.0.0.2", "", "10.0.0.3"},
		{"real ip from proxy", "10.0.0.1:5555", "", "1.2.3.4", "1.2.3.4"},
		{"ipv6 peer", "[2001:db8::1]:5555", "1.2.3.4", "", "2001:db8::1"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			req.RemoteAddr = tt.remote
			if tt.xff != "" {
				req.Header.Set("X-Forwarded-For", tt.xff)
			}
			if tt.realIP != "" {
				req.Header.Set("X-Real-IP", tt.realIP)
			}

			assert.Equal(t, tt.want, getClientIP(req, proxies))
		})
	}
}

func TestParseProxiesInvalid(t *testing.T) {
	_, err := parseProxies([]string{"10.0.0.0/33"})
	assert.ErrorIs(t, err, internalerr.ErrInvalidConfig)

	_, err = parseProxies([]string{"proxy.local"})
	assert.ErrorIs(t, err, internalerr.ErrInvalidConfig)

	_, err = New(nil, Options{TrustedProxies: []string{"nope"}})
	assert.ErrorIs(t, err, internalerr.ErrInvalidConfig)
}

func TestSpoofedForwardedForIsRateLimited(t *testing.T) {
	h := newTestServer(t, 0.001, 1)

	for i, xff := range []string{"1.1.1.1", "2.2.2.2"} {
		req := httptest.NewRequest(http.MethodGet, "/prediction", nil)
		req.Header.Set("X-Forwarded-For", xff)
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)

		want := http.StatusOK
		if i > 0 {
			want = http.StatusTooManyRequests
		}
		assert.Equal(t, want, rec.Code, xff)
	}
}

func TestLimiterSetDropsIdleClients(t *testing.T) {
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	l := newLimiterSet(1, 1)
	l.now = func() time.Time { return now }

	assert.True(t, l.allow("a"))
	assert.True(t, l.allow("b"))
	assert.False(t, l.allow("a"))
	assert.Equal(t, 2, l.len())

	now = now.Add(limiterIdle)
	assert.True(t, l.allow("c"))
	assert.Equal(t, 1, l.len(), "a and b were idle")
}

func parsePage(t *testing.T, rec *httptest.ResponseRecorder) *html.Node {
	t.Helper()
	require.Contains(t, rec.Header().Get(headerContentType), "text/html")
	doc, err := html.Parse(rec.Body)
	require.NoError(t, err)
	return doc
}

func findByID(n *html.Node, id string) *html.Node {
	if n.Type == html.ElementNode {
		for _, a := range n.Attr {
			if a.Key == "id" && a.Val == id {
				return n
			}
		}
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if found := findByID(c, id); found != nil {
			return found
		}
	}
	return nil
}

func findAllByClass(n *html.Node, class string) []*html.Node {
	var out []*html.Node
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode {
			for _, a := range n.Attr {
				if a.Key == "class" && hasClass(a.Val, class) {
					out = append(out, n)
				}
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(n)
	return out
}

func attr(n *html.Node, key string) string {
	for _, a := range n.Attr {
		if a.Key == key {
			return a.Val
		}
	}
	return ""
}

func hasClass(attr, class string) bool {
	for _, c := range strings.Fields(attr) {
		if c == class {
			return true
		}
	}
	return false
}

// textOf joins the text nodes below n with single spaces.
func textOf(n *html.Node) string {
	var parts []string
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.TextNode {
			parts = append(parts, strings.Fields(n.Data)...)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(n)
	return strings.Join(parts, " ")
}

func kpiValue(t *testing.T, doc *html.Node, id string) string {
	t.Helper()
	kpi := findByID(doc, id)
	require.NotNil(t, kpi, id)
	values := findAllByClass(kpi, "value")
	require.Len(t, values, 1)
	return textOf(values[0])
}

func TestOverviewPage(t *testing.T) {
	h := newTestServer(t, 1000, 1000)

	doc := parsePage(t, get(t, h, "/"))

	assert.Equal(t, "3", kpiValue(t, doc, "kpi-total-titles"))
	assert.Equal(t, "33.3%", kpiValue(t, doc, "kpi-hit-rate"))
	assert.Equal(t, "6.33", kpiValue(t, doc, "kpi-avg-rating"))
	assert.Equal(t, "160", kpiValue(t, doc, "kpi-total-reviews"))
	assert.NotNil(t, findByID(doc, "trend"))

	top := findByID(doc, "top-titles")
	require.NotNil(t, top)
	assert.Contains(t, textOf(top), "1 Alpha 2019 Hit")
}

func TestOverviewPageFiltered(t *testing.T) {
	h := newTestServer(t, 1000, 1000)

	doc := parsePage(t, get(t, h, "/?content_type=movie"))

	assert.Equal(t, "1", kpiValue(t, doc, "kpi-total-titles"))
	assert.Equal(t, "0.0%", kpiValue(t, doc, "kpi-hit-rate"))
}

func TestSynopsisPage(t *testing.T) {
	h := newTestServer(t, 1000, 1000)

	rec := get(t, h, "/synopsis?content_type=drama&view=topic&hit_ids=0,1")
	require.Equal(t, http.StatusOK, rec.Code)
	doc := parsePage(t, rec)

	cloud := findByID(doc, "cloud-hit")
	require.NotNil(t, cloud)
	assert.Len(t, findAllByClass(cloud, "word"), 2)

	var step string
	for _, in := range findAllByTag(doc, "input") {
		if attr(in, "name") == "top_n" {
			step = attr(in, "step")
		}
	}
	assert.Equal(t, "5", step)

	hit := findByID(doc, "cohort-hit")
	require.NotNil(t, hit)
	metric := findAllByClass(hit, "metric-titles")
	require.Len(t, metric, 1)
	assert.Equal(t, "4", textOf(findAllByClass(metric[0], "value")[0]))
	assert.NotNil(t, findByID(doc, "map-hit"))
	assert.NotNil(t, findByID(doc, "dist-hit"))

	cards := findByID(doc, "cards-hit")
	require.NotNil(t, cards)
	assert.Len(t, findAllByClass(cards, "card"), 2, "selected topics only")
	assert.Len(t, findAllByClass(cards, "placeholder"), 2, "Gamma and Beta have no poster")

	flop := findByID(doc, "cohort-flop")
	require.NotNil(t, flop)
	assert.Len(t, findAllByClass(findByID(doc, "cards-flop"), "card"), 1)

	assert.NotNil(t, findByID(doc, "comparison"))
	assert.Empty(t, findAllByClass(findByID(doc, "comparison"), "notice"))
}

func TestSynopsisPageMissingData(t *testing.T) {
	h := newTestServer(t, 1000, 1000)

	rec := get(t, h, "/synopsis")
	require.Equal(t, http.StatusOK, rec.Code)
	doc := parsePage(t, rec)

	notices := findAllByClass(doc, "notice")
	require.NotEmpty(t, notices)
	assert.Contains(t, textOf(notices[0]), "Data not found")
	assert.Nil(t, findByID(doc, "map-hit"))
}

func TestSynopsisPageBadView(t *testing.T) {
	rec := get(t, newTestServer(t, 1000, 1000), "/synopsis?view=genre")

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "Bad Request")
}

func TestReviewPage(t *testing.T) {
	h := newTestServer(t, 1000, 1000)

	doc := parsePage(t, get(t, h, "/review?content_type=drama"))

	assert.Equal(t, "140", kpiValue(t, doc, "kpi-total-reviews"))
	assert.Equal(t, "+0.400", kpiValue(t, doc, "kpi-hit-gap"))

	table := findByID(doc, "review-summary")
	require.NotNil(t, table)
	assert.Len(t, findAllByTag(table, "tr"), 3, "header and two drama rows")

	all := findByID(doc, "review-summary-all")
	require.NotNil(t, all)
	assert.Len(t, findAllByTag(all, "tr"), 3, "content type does not apply")

	kw := findByID(doc, "review-keywords")
	require.NotNil(t, kw)
	assert.Contains(t, textOf(kw), "acting")
	assert.NotContains(t, textOf(kw), "plot")

	cloud := findByID(doc, "cloud-review")
	require.NotNil(t, cloud)
	words := findAllByClass(cloud, "word")
	require.Len(t, words, 1)
	assert.Equal(t, "acting", textOf(words[0]))
}

func TestReviewPageCloudFallsBackToTFIDFColumn(t *testing.T) {
	root := fixture.DataDir(t)
	fixture.WriteParquet(t, root, filepath.Join(dataset.ReviewDir, dataset.ReviewKeywordsFile), []struct {
		Type    string  `parquet:"content_type"`
		Keyword string  `parquet:"keyword"`
		Hit     float64 `parquet:"hit_mean_tfidf"`
	}{
		{Type: "drama", Keyword: "ending", Hit: 0.2},
		{Type: "drama", Keyword: "cast", Hit: 0.6},
	})
	h := newTestServerAt(t, root, 1000, 1000)

	doc := parsePage(t, get(t, h, "/review?content_type=drama"))

	cloud := findByID(doc, "cloud-review")
	require.NotNil(t, cloud)
	words := findAllByClass(cloud, "word")
	require.Len(t, words, 2)
	assert.Equal(t, "cast", textOf(words[0]), "highest score first")
}

func TestReviewPageKeywordsWithoutScore(t *testing.T) {
	root := fixture.DataDir(t)
	fixture.WriteParquet(t, root, filepath.Join(dataset.ReviewDir, dataset.ReviewKeywordsFile), []struct {
		Type    string `parquet:"content_type"`
		Keyword string `parquet:"keyword"`
	}{
		{Type: "drama", Keyword: "ending"},
	})
	h := newTestServerAt(t, root, 1000, 1000)

	doc := parsePage(t, get(t, h, "/review?content_type=drama"))

	assert.Nil(t, findByID(doc, "cloud-review"))
	assert.NotNil(t, findByID(doc, "review-keywords"))
	assert.Contains(t, textOf(doc), "Data not found")
}

func TestReviewPageAllTypesFiltered(t *testing.T) {
	h := newTestServer(t, 1000, 1000)

	doc := parsePage(t, get(t, h, "/review?hit_type=Hit&start=2019&end=2019"))

	all := findByID(doc, "review-summary-all")
	require.NotNil(t, all)
	assert.Len(t, findAllByTag(all, "tr"), 2)
	assert.Contains(t, textOf(all), "160")
}

func TestPredictionPage(t *testing.T) {
	rec := get(t, newTestServer(t, 1000, 1000), "/prediction")

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Predicted Hit Probability")
}

func TestUnknownPath(t *testing.T) {
	rec := get(t, newTestServer(t, 1000, 1000), "/nope")

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func findAllByTag(n *html.Node, tag string) []*html.Node {
	var out []*html.Node
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode && n.Data == tag {
			out = append(out, n)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(n)
	return out
}
