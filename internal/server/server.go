// Package server serves the dashboard pages and its JSON API.
package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/netip"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"github.com/cognicore/hitflop/pkg/hitflop"
)

const (
	defaultShutdownTimeout = 5 * time.Second
	readHeaderTimeout      = 10 * time.Second
)

// Options configures a Server.
type Options struct {
	Addr            string
	RateLimitRPS    float64
	RateLimitBurst  int
	ShutdownTimeout time.Duration
	TrustedProxies  []string // addresses or CIDR ranges allowed to set forwarding headers
	Logger          *zerolog.Logger
}

// Server serves the dashboard.
type Server struct {
	dash     *hitflop.Dashboard
	opts     Options
	renderer *Renderer
	logger   *zerolog.Logger
	limiters *limiterSet
	proxies  []netip.Prefix
}

// New creates a server over a dashboard.
func New(dash *hitflop.Dashboard, opts Options) (*Server, error) {
	renderer, err := NewRenderer()
	if err != nil {
		return nil, err
	}
	proxies, err := parseProxies(opts.TrustedProxies)
	if err != nil {
		return nil, err
	}

	logger := opts.Logger
	if logger == nil {
		nop := zerolog.Nop()
		logger = &nop
	}
	if opts.ShutdownTimeout <= 0 {
		opts.ShutdownTimeout = defaultShutdownTimeout
	}

	return &Server{
		dash:     dash,
		opts:     opts,
		renderer: renderer,
		logger:   logger,
		limiters: newLimiterSet(opts.RateLimitRPS, opts.RateLimitBurst),
		proxies:  proxies,
	}, nil
}

// Handler returns the routed, instrumented handler.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = fmt.Fprint(w, "OK")
	})
	mux.Handle("GET /metrics", promhttp.Handler())

	routes := []struct {
		route   string
		handler http.HandlerFunc
	}{
		{"/", s.pageOverview},
		{"/synopsis", s.pageSynopsis},
		{"/review", s.pageReview},
		{"/prediction", s.pagePrediction},
		{"/api/keywords", s.apiKeywords},
		{"/api/wordcloud", s.apiWordCloud},
		{"/api/topic-map", s.apiTopicMap},
		{"/api/distribution", s.apiDistribution},
		{"/api/keyword-comparison", s.apiKeywordComparison},
		{"/api/representatives", s.apiRepresentatives},
		{"/api/review", s.apiReview},
		{"/api/overview", s.apiOverview},
	}
	for _, rt := range routes {
		pattern := "GET " + rt.route
		if rt.route == "/" {
			// exact match only; other paths 404
			pattern += "{$}"
		}
		mux.Handle(pattern, s.instrument(rt.route, rt.handler))
	}

	return mux
}

// Start serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Start(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.opts.Addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: readHeaderTimeout,
	}

	go func() {
		<-ctx.Done()

		shutdownCtx, cancel := context.WithTimeout(context.Background(), s.opts.ShutdownTimeout)

		defer cancel()

		//nolint:errcheck,contextcheck // shutdown in signal handler is best-effort, non-inherited context intentional
		_ = srv.Shutdown(shutdownCtx)
	}()

	s.logger.Info().Str("addr", s.opts.Addr).Msg("dashboard server starting")

	if err := srv.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("http server error: %w", err)
	}

	s.logger.Info().Msg("dashboard server stopped")

	return nil
}
