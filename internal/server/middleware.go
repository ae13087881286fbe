package server

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"net/netip"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"golang.org/x/time/rate"

	"github.com/cognicore/hitflop/pkg/hitflop/internalerr"
	"github.com/cognicore/hitflop/pkg/hitflop/metrics"
)

// HTTP header constants.
const (
	headerContentType = "Content-Type"
	headerRequestID   = "X-Request-ID"
)

type ctxKey int

const requestIDKey ctxKey = iota

// RequestID returns the id attached by the request middleware.
func RequestID(ctx context.Context) string {
	id, _ := ctx.Value(requestIDKey).(string)
	return id
}

// statusRecorder captures the response status for logs and metrics.
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

// Idle client buckets are swept at most once per limiterSweep and dropped
// after limiterIdle without a request.
const (
	limiterSweep = time.Minute
	limiterIdle  = 10 * time.Minute
)

type clientLimiter struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// limiterSet holds one token bucket per client IP.
type limiterSet struct {
	mu        sync.Mutex
	limiters  map[string]*clientLimiter
	rps       rate.Limit
	burst     int
	lastSweep time.Time
	now       func() time.Time
}

func newLimiterSet(rps float64, burst int) *limiterSet {
	return &limiterSet{
		limiters: make(map[string]*clientLimiter),
		rps:      rate.Limit(rps),
		burst:    burst,
		now:      time.Now,
	}
}

func (l *limiterSet) allow(ip string) bool {
	l.mu.Lock()

	now := l.now()
	if now.Sub(l.lastSweep) >= limiterSweep {
		for k, c := range l.limiters {
			if now.Sub(c.lastSeen) >= limiterIdle {
				delete(l.limiters, k)
			}
		}
		l.lastSweep = now
	}

	c, ok := l.limiters[ip]
	if !ok {
		c = &clientLimiter{limiter: rate.NewLimiter(l.rps, l.burst)}
		l.limiters[ip] = c
	}
	c.lastSeen = now

	l.mu.Unlock()

	return c.limiter.AllowN(now, 1)
}

func (l *limiterSet) len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.limiters)
}

// parseProxies reads trusted proxy addresses or CIDR ranges.
func parseProxies(raw []string) ([]netip.Prefix, error) {
	var out []netip.Prefix
	for _, p := range raw {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		if strings.Contains(p, "/") {
			prefix, err := netip.ParsePrefix(p)
			if err != nil {
				return nil, fmt.Errorf("trusted proxy %q: %w", p, internalerr.ErrInvalidConfig)
			}
			out = append(out, prefix.Masked())
			continue
		}
		addr, err := netip.ParseAddr(p)
		if err != nil {
			return nil, fmt.Errorf("trusted proxy %q: %w", p, internalerr.ErrInvalidConfig)
		}
		out = append(out, netip.PrefixFrom(addr.Unmap(), addr.Unmap().BitLen()))
	}
	return out, nil
}

func trusted(proxies []netip.Prefix, ip string) bool {
	addr, err := netip.ParseAddr(ip)
	if err != nil {
		return false
	}
	addr = addr.Unmap()
	for _, p := range proxies {
		if p.Contains(addr) {
			return true
		}
	}
	return false
}

// getClientIP keys rate limiting. Forwarding headers are honoured only when
// the direct peer is a trusted proxy; X-Forwarded-For is then walked from the
// right, skipping trusted hops.
func getClientIP(r *http.Request, proxies []netip.Prefix) string {
	peer := r.RemoteAddr
	if host, _, err := net.SplitHostPort(r.RemoteAddr); err == nil {
		peer = host
	}
	if !trusted(proxies, peer) {
		return peer
	}

	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		hops := strings.Split(xff, ",")
		for i := len(hops) - 1; i >= 0; i-- {
			hop := strings.TrimSpace(hops[i])
			if hop != "" && !trusted(proxies, hop) {
				return hop
			}
		}
		if first := strings.TrimSpace(hops[0]); first != "" {
			return first
		}
	}

	if xri := strings.TrimSpace(r.Header.Get("X-Real-IP")); xri != "" {
		return xri
	}
	return peer
}

// instrument wraps a route with request ids, rate limiting, logging and
// metrics. Health and metrics endpoints are not wrapped.
func (s *Server) instrument(route string, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		id := r.Header.Get(headerRequestID)
		if id == "" {
			id = uuid.NewString()
		}
		w.Header().Set(headerRequestID, id)
		ctx := context.WithValue(r.Context(), requestIDKey, id)
		logger := s.logger.With().Str("request_id", id).Logger()
		ctx = logger.WithContext(ctx)

		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}

		if s.limiters.allow(getClientIP(r, s.proxies)) {
			next.ServeHTTP(rec, r.WithContext(ctx))
		} else {
			s.tooManyRequests(rec, route)
		}

		elapsed := time.Since(start)
		metrics.RequestsTotal.WithLabelValues(route, strconv.Itoa(rec.status)).Inc()
		metrics.RequestLatency.WithLabelValues(route).Observe(elapsed.Seconds())

		evt := logger.Debug()
		if rec.status >= http.StatusInternalServerError {
			evt = logger.Error()
		}
		evt.Str("route", route).
			Str("path", r.URL.Path).
			Int("status", rec.status).
			Dur("duration", elapsed).
			Msg("request")
	})
}

func (s *Server) tooManyRequests(w http.ResponseWriter, route string) {
	if strings.HasPrefix(route, "/api/") {
		writeJSON(w, http.StatusTooManyRequests, errorBody{Error: "too many requests"})
		return
	}
	s.renderError(w, http.StatusTooManyRequests, "Too Many Requests", "Please wait before trying again.")
}

// loggerFrom returns the request-scoped logger.
func loggerFrom(ctx context.Context) *zerolog.Logger {
	return zerolog.Ctx(ctx)
}
