// Package server exposes the inventory over a JSON REST API.
package server

import (
	"context"
	"crypto/subtle"
	"log/slog"
	"mime"
	"net"
	"net/http"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/time/rate"

	"github.com/matijazezelj/assetutil/internal/inventory"
	"github.com/matijazezelj/assetutil/internal/metrics"
)

const maxJSONBody = 1 << 20

// Options configures the HTTP surface.
type Options struct {
	Listen         string
	ReadOnly       bool
	APIToken       string
	CORSOrigin     string
	MaxUploadBytes int64
	RateLimit      int // requests per second per client IP; 0 disables
}

// Server is the assetutil HTTP server.
type Server struct {
	inv    *inventory.Inventory
	logger *slog.Logger
	opts   Options
	srv    *http.Server

	// rate limiter state
	limiters sync.Map // map[string]*ipLimiter
}

type ipLimiter struct {
	limiter  *rate.Limiter
	lastSeen atomic.Int64 // unix nanos, written by requests and read by pruneLimiters
}

func (il *ipLimiter) touch(now time.Time) {
	il.lastSeen.Store(now.UnixNano())
}

func (il *ipLimiter) idle(now time.Time) time.Duration {
	return now.Sub(time.Unix(0, il.lastSeen.Load()))
}

// pruneLimiters forgets clients not seen for maxIdle.
func (s *Server) pruneLimiters(now time.Time, maxIdle time.Duration) {
	s.limiters.Range(func(key, value any) bool {
		if value.(*ipLimiter).idle(now) > maxIdle {
			s.limiters.Delete(key)
		}
		return true
	})
}

// New creates a new Server.
func New(inv *inventory.Inventory, logger *slog.Logger, opts Options) *Server {
	if opts.MaxUploadBytes <= 0 {
		opts.MaxUploadBytes = 32 << 20
	}
	return &Server{inv: inv, logger: logger, opts: opts}
}

// securityHeaders adds standard security headers to all responses.
func securityHeaders(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Content-Type-Options", "nosniff")
		w.Header().Set("X-Frame-Options", "DENY")
		w.Header().Set("Referrer-Policy", "strict-origin-when-cross-origin")
		w.Header().Set("Content-Security-Policy", "default-src 'none'; frame-ancestors 'none'")
		next.ServeHTTP(w, r)
	})
}

// limitBody caps request bodies on mutating methods: 1 MB for JSON and the
// configured upload size for multipart forms.
func (s *Server) limitBody(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodPost || r.Method == http.MethodPut || r.Method == http.MethodPatch {
			limit := int64(maxJSONBody)
			if isMultipart(r) {
				limit = s.opts.MaxUploadBytes
			}
			r.Body = http.MaxBytesReader(w, r.Body, limit)
		}
		next.ServeHTTP(w, r)
	})
}

func isMultipart(r *http.Request) bool {
	mt, _, err := mime.ParseMediaType(r.Header.Get("Content-Type"))
	return err == nil && mt == "multipart/form-data"
}

// rateLimiter limits API requests per client IP to RateLimit/sec with a
// burst of twice that.
func (s *Server) rateLimiter(ctx context.Context, next http.Handler) http.Handler {
	if s.opts.RateLimit <= 0 {
		return next
	}

	// Clean up stale entries every 5 minutes.
	go func() {
		ticker := time.NewTicker(5 * time.Minute)
		defer ticker.Stop()
		for {
			select {
			case now := <-ticker.C:
				s.pruneLimiters(now, 10*time.Minute)
			case <-ctx.Done():
				return
			}
		}
	}()

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !strings.HasPrefix(r.URL.Path, "/api/") {
			next.ServeHTTP(w, r)
			return
		}

		ip, _, _ := net.SplitHostPort(r.RemoteAddr)
		if ip == "" {
			ip = r.RemoteAddr
		}

		val, _ := s.limiters.LoadOrStore(ip, &ipLimiter{
			limiter: rate.NewLimiter(rate.Limit(s.opts.RateLimit), 2*s.opts.RateLimit),
		})
		il := val.(*ipLimiter)
		il.touch(time.Now())

		if !il.limiter.Allow() {
			writeError(w, http.StatusTooManyRequests, "rate limit exceeded")
			return
		}

		next.ServeHTTP(w, r)
	})
}

// corsMiddleware adds CORS headers when a cors_origin is configured.
func (s *Server) corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if s.opts.CORSOrigin != "" && strings.HasPrefix(r.URL.Path, "/api/") {
			w.Header().Set("Access-Control-Allow-Origin", s.opts.CORSOrigin)
			w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, PATCH, DELETE, OPTIONS")
			w.Header().Set("Access-Control-Allow-Headers", "Authorization, Content-Type, X-Actor")
			w.Header().Set("Access-Control-Max-Age", "86400")

			if r.Method == http.MethodOptions {
				w.WriteHeader(http.StatusNoContent)
				return
			}
		}
		next.ServeHTTP(w, r)
	})
}

// authMiddleware returns a handler that checks for a valid bearer token
// on /api/ routes when an API token is configured.
func (s *Server) authMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// Only protect API routes (not healthz or metrics)
		if s.opts.APIToken != "" && strings.HasPrefix(r.URL.Path, "/api/") {
			auth := r.Header.Get("Authorization")
			token := strings.TrimPrefix(auth, "Bearer ")
			if token == auth || subtle.ConstantTimeCompare([]byte(token), []byte(s.opts.APIToken)) != 1 {
				writeError(w, http.StatusUnauthorized, "unauthorized")
				return
			}
		}
		next.ServeHTTP(w, r)
	})
}

// Handler builds the routed handler with the full middleware chain. The
// rate limiter's cleanup loop stops when ctx is done.
func (s *Server) Handler(ctx context.Context) http.Handler {
	mux := http.NewServeMux()
	RegisterRoutes(mux, s)

	// Middleware chain: security headers → body limit → CORS → rate limit → auth → metrics → mux
	var handler http.Handler = mux
	handler = metrics.Middleware(handler)
	handler = s.authMiddleware(handler)
	handler = s.rateLimiter(ctx, handler)
	handler = s.corsMiddleware(handler)
	handler = s.limitBody(handler)
	handler = securityHeaders(handler)
	return handler
}

// Start serves until Shutdown is called or the listener fails.
func (s *Server) Start(ctx context.Context) error {
	s.srv = &http.Server{
		Addr:         s.opts.Listen,
		Handler:      s.Handler(ctx),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	s.logger.Info("starting server", "listen", s.opts.Listen, "read_only", s.opts.ReadOnly)
	if s.opts.APIToken != "" {
		s.logger.Info("API authentication enabled")
	} else {
		s.logger.Warn("API authentication disabled (set server.api_token to enable)")
	}

	return s.srv.ListenAndServe()
}

// Shutdown gracefully shuts down the server.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.srv == nil {
		return nil
	}
	return s.srv.Shutdown(ctx)
}
