// internal/handlers/middleware/guard.go
package middleware

import (
	"bytes"
	"context"
	"math"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/time/rate"

	"github.com/ammerola/analytics-reports/internal/pkg/metrics"
)

const limiterIdle = 10 * time.Minute

type callerLimiter struct {
	limiter  *rate.Limiter
	lastSeen atomic.Int64
}

// callerLimiters holds one token bucket per caller key.
type callerLimiters struct {
	callers  sync.Map
	every    time.Duration
	requests int
}

func (c *callerLimiters) get(key string, now time.Time) *rate.Limiter {
	v, _ := c.callers.LoadOrStore(key, &callerLimiter{limiter: rate.NewLimiter(rate.Every(c.every), c.requests)})
	cl := v.(*callerLimiter)
	cl.lastSeen.Store(now.UnixNano())
	return cl.limiter
}

// sweep forgets callers not seen since cutoff.
func (c *callerLimiters) sweep(cutoff time.Time) {
	c.callers.Range(func(k, v any) bool {
		if v.(*callerLimiter).lastSeen.Load() < cutoff.UnixNano() {
			c.callers.Delete(k)
		}
		return true
	})
}

// evictIdle sweeps every interval until ctx is done.
func (c *callerLimiters) evictIdle(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			c.sweep(now.Add(-limiterIdle))
		}
	}
}

// RateLimit allows requests per window for each caller. Behind the gateway
// every request shares one source address, so the caller is the user id
// header when present and the client IP otherwise. Idle callers are evicted
// until ctx is done.
func RateLimit(ctx context.Context, requests int, per time.Duration, userHeader string) func(http.Handler) http.Handler {
	if userHeader == "" {
		userHeader = "X-User-ID"
	}
	limiters := &callerLimiters{every: per / time.Duration(max(requests, 1)), requests: requests}
	retryAfter := strconv.Itoa(int(math.Ceil(limiters.every.Seconds())))

	go limiters.evictIdle(ctx, limiterIdle)

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			key := "ip:" + getClientIP(r)
			if user := strings.TrimSpace(r.Header.Get(userHeader)); user != "" {
				key = "user:" + user
			}

			if !limiters.get(key, time.Now()).Allow() {
				w.Header().Set("Retry-After", retryAfter)
				writeError(w, http.StatusTooManyRequests, "rate limit exceeded")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// CORS answers preflights and reflects allowed origins. "*" allows any.
func CORS(allowedOrigins []string) func(http.Handler) http.Handler {
	allowAll := false
	allowed := make(map[string]struct{}, len(allowedOrigins))
	for _, o := range allowedOrigins {
		if o == "*" {
			allowAll = true
		}
		allowed[o] = struct{}{}
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			h := w.Header()
			h.Add("Vary", "Origin")

			origin := r.Header.Get("Origin")
			if _, ok := allowed[origin]; origin != "" && (ok || allowAll) {
				h.Set("Access-Control-Allow-Origin", origin)
				h.Set("Access-Control-Allow-Credentials", "true")
				h.Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
				h.Set("Access-Control-Allow-Headers", "Accept, Content-Type, Authorization, X-Request-ID, X-User-ID")
				h.Set("Access-Control-Expose-Headers", "X-Request-ID, Content-Disposition")
				h.Set("Access-Control-Max-Age", "86400")
			}

			if r.Method == http.MethodOptions {
				w.WriteHeader(http.StatusNoContent)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// SecureHeaders sets the headers a JSON and xlsx API needs. HSTS is only
// sent over TLS.
func SecureHeaders(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		h := w.Header()
		h.Set("X-Content-Type-Options", "nosniff")
		h.Set("X-Frame-Options", "DENY")
		h.Set("Referrer-Policy", "no-referrer")
		h.Set("Content-Security-Policy", "default-src 'none'; frame-ancestors 'none'")
		if r.TLS != nil {
			h.Set("Strict-Transport-Security", "max-age=31536000; includeSubDomains")
		}
		next.ServeHTTP(w, r)
	})
}

// Metrics records request count and latency per route. route maps a request
// to its registered pattern so path parameters do not explode label
// cardinality; an empty result is recorded as "unmatched".
func Metrics(route func(*http.Request) string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			started := time.Now()
			rw := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}

			next.ServeHTTP(rw, r)

			pattern := route(r)
			if pattern == "" {
				pattern = "unmatched"
			}
			metrics.RecordHTTPRequest(r.Method, pattern, rw.statusCode, time.Since(started))
		})
	}
}

// Timeout cancels the request context after d and answers 504. The handler
// writes into a buffer, so a late write cannot interleave with the 504.
func Timeout(d time.Duration) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx, cancel := context.WithTimeout(r.Context(), d)
			defer cancel()

			bw := &bufferedWriter{header: make(http.Header), code: http.StatusOK}
			done := make(chan struct{})
			panicked := make(chan any, 1)

			go func() {
				defer func() {
					if p := recover(); p != nil {
						panicked <- p
					}
				}()
				next.ServeHTTP(bw, r.WithContext(ctx))
				close(done)
			}()

			select {
			case p := <-panicked:
				panic(p)
			case <-done:
				bw.flushTo(w)
			case <-ctx.Done():
				bw.abandon()
				writeError(w, http.StatusGatewayTimeout, "request timeout")
			}
		})
	}
}

type bufferedWriter struct {
	mu        sync.Mutex
	header    http.Header
	body      bytes.Buffer
	code      int
	committed bool
	abandoned bool
}

func (bw *bufferedWriter) Header() http.Header { return bw.header }

func (bw *bufferedWriter) WriteHeader(code int) {
	bw.mu.Lock()
	defer bw.mu.Unlock()
	if bw.abandoned || bw.committed {
		return
	}
	bw.code = code
	bw.committed = true
}

func (bw *bufferedWriter) Write(b []byte) (int, error) {
	bw.mu.Lock()
	defer bw.mu.Unlock()
	if bw.abandoned {
		return 0, http.ErrHandlerTimeout
	}
	bw.committed = true
	return bw.body.Write(b)
}

func (bw *bufferedWriter) flushTo(w http.ResponseWriter) {
	bw.mu.Lock()
	defer bw.mu.Unlock()
	dst := w.Header()
	for k, v := range bw.header {
		dst[k] = v
	}
	w.WriteHeader(bw.code)
	_, _ = w.Write(bw.body.Bytes())
}

func (bw *bufferedWriter) abandon() {
	bw.mu.Lock()
	bw.abandoned = true
	bw.mu.Unlock()
}
