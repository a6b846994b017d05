package handlers

import (
	"context"
	"log/slog"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/alextreichler/spiritflow/internal/metrics"
)

// LoggingMiddleware logs the details of each HTTP request and records it in metrics
func LoggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		// Wrap ResponseWriter to capture status code
		ww := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}
		next.ServeHTTP(ww, r)

		route := ww.route
		if route == "" {
			route = "unmatched"
		}
		elapsed := time.Since(start)
		metrics.ObserveRequest(r.Method, route, ww.statusCode, elapsed)
		slog.Info("HTTP Request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.statusCode,
			"duration", elapsed,
			"ip", r.RemoteAddr,
		)
	})
}

// Custom ResponseWriter to capture status code
type responseWriter struct {
	http.ResponseWriter
	statusCode int
	route      string
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}

// RouteMiddleware tags the response with the mux pattern that will serve the
// request, so LoggingMiddleware can label metrics by route. It must sit
// inside LoggingMiddleware.
func RouteMiddleware(mux *http.ServeMux) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if rw, ok := w.(*responseWriter); ok {
			_, rw.route = mux.Handler(r)
		}
		mux.ServeHTTP(w, r)
	})
}

// SecurityHeadersMiddleware adds standard security headers
func SecurityHeadersMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Content-Type-Options", "nosniff")
		w.Header().Set("X-Frame-Options", "DENY")
		w.Header().Set("Referrer-Policy", "same-origin")
		// Product and hero images are hotlinked from https hosts
		w.Header().Set("Content-Security-Policy", "default-src 'self'; style-src 'self' 'unsafe-inline'; img-src 'self' data: https:; script-src 'self'")
		next.ServeHTTP(w, r)
	})
}

// RateLimiter allows one request per client IP per window.
type RateLimiter struct {
	visitors sync.Map
	mu       sync.Mutex // serializes check-and-record in Allow
	window   time.Duration
}

// NewRateLimiter creates a rate limiter. Old entries are swept until ctx is done.
func NewRateLimiter(ctx context.Context, window time.Duration) *RateLimiter {
	rl := &RateLimiter{
		window: window,
	}
	go rl.cleanup(ctx)
	return rl
}

// cleanup removes old entries to prevent memory leaks
func (rl *RateLimiter) cleanup(ctx context.Context) {
	ticker := time.NewTicker(time.Minute)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			rl.visitors.Range(func(key, value any) bool {
				if now.Sub(value.(time.Time)) > rl.window {
					rl.visitors.Delete(key)
				}
				return true
			})
		}
	}
}

func clientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

// Allow reports whether the client may proceed and, if so, starts a new
// window for it. Callers invoke it once a request is known to be acted on, so
// rejected input does not use up the client's turn.
func (rl *RateLimiter) Allow(r *http.Request) bool {
	if rl == nil || rl.window <= 0 {
		return true
	}
	ip := clientIP(r)
	now := time.Now()

	rl.mu.Lock()
	defer rl.mu.Unlock()
	if lastSeen, ok := rl.visitors.Load(ip); ok && now.Sub(lastSeen.(time.Time)) < rl.window {
		slog.Warn("Rate limit exceeded", "ip", ip, "path", r.URL.Path)
		return false
	}
	rl.visitors.Store(ip, now)
	return true
}
