package web

import (
	"crypto/sha256"
	"crypto/subtle"
	"net"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"paperlearn/internal/infra/api"
	"paperlearn/internal/infra/metrics"
	"paperlearn/internal/infra/ratelimit"
	"paperlearn/internal/infra/storage"
	"paperlearn/internal/usecase"
)

type Server struct {
	papers  usecase.PaperUseCase
	posts   usecase.ArticleUseCase
	tools   usecase.ToolUseCase
	brain   usecase.BrainContextUseCase
	jobsUC  usecase.JobUseCase
	limiter *ratelimit.Limiter
	store   storage.Store

	adminToken string
	rateLimit  int
	rateWindow time.Duration

	log *zerolog.Logger
}

func NewServer(
	papers usecase.PaperUseCase,
	posts usecase.ArticleUseCase,
	tools usecase.ToolUseCase,
	brain usecase.BrainContextUseCase,
	jobsUC usecase.JobUseCase,
	limiter *ratelimit.Limiter,
	store storage.Store,
	adminToken string,
	rateLimit int,
	rateWindow time.Duration,
	logger *zerolog.Logger,
) *Server {
	return &Server{
		papers:     papers,
		posts:      posts,
		tools:      tools,
		brain:      brain,
		jobsUC:     jobsUC,
		limiter:    limiter,
		store:      store,
		adminToken: adminToken,
		rateLimit:  rateLimit,
		rateWindow: rateWindow,
		log:        logger,
	}
}

// Router assembles the public and admin surface.
func (s *Server) Router() *chi.Mux {
	r := chi.NewRouter()

	r.Get("/api/health", s.healthHandler)
	r.Method(http.MethodGet, "/metrics", promhttp.Handler())

	// Public API, rate limited per client IP and endpoint.
	r.Group(func(r chi.Router) {
		r.Use(s.rateLimitMiddleware)
		r.Get("/api/v1/papers", s.papersListHandler)
		r.Get("/api/v1/learn/posts", s.postsListHandler)
		r.Get("/api/v1/tools", s.toolsListHandler)
		r.Post("/api/v1/brain-context", s.brainContextHandler)
	})

	// HTML article pages and cover assets are not counted against the
	// API quota.
	r.Get("/learn/{slug}", s.learnPageHandler)
	r.Get("/assets/covers/{name}", s.coverHandler)

	r.Route("/api/v1/admin", func(r chi.Router) {
		r.Use(s.authMiddleware)
		r.Post("/jobs", s.jobCreateHandler)
		r.Get("/jobs/{id}", s.jobGetHandler)
	})

	return r
}

func (s *Server) healthHandler(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(`{"status":"ok"}`))
}

// rateLimitMiddleware enforces the fixed-window quota. Denials report
// Retry-After as the time left in the current window.
func (s *Server) rateLimitMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if s.limiter == nil {
			next.ServeHTTP(w, r)
			return
		}

		// Every rate-limited route is a static path, so the raw path is
		// already the endpoint key.
		endpoint := r.URL.Path

		now := time.Now().UTC()
		identity := ratelimit.IdentityHash(clientIP(r))
		allowed, err := s.limiter.Allow(r.Context(), identity, endpoint, s.rateLimit, s.rateWindow, now)
		if err != nil {
			s.log.Error().Err(err).Msg("rate limit check failed")
			writeError(w, http.StatusInternalServerError, "rate limit unavailable")
			return
		}
		if !allowed {
			metrics.IncRateLimitDenied(endpoint)
			retry := ratelimit.RetryAfter(s.rateWindow, now)
			w.Header().Set("Retry-After", strconv.Itoa(int(retry.Seconds())+1))
			writeError(w, http.StatusTooManyRequests, "rate limit exceeded")
			return
		}
		next.ServeHTTP(w, r)
	})
}

// authMiddleware guards the admin API with the shared bearer token.
// Tokens are compared in constant time over their digests.
func (s *Server) authMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if s.adminToken == "" {
			s.log.Error().Msg("admin token is not configured")
			writeError(w, http.StatusForbidden, "forbidden")
			return
		}

		authHeader := r.Header.Get("Authorization")
		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
			writeError(w, http.StatusUnauthorized, "unauthorized")
			return
		}

		got := sha256.Sum256([]byte(parts[1]))
		want := sha256.Sum256([]byte(s.adminToken))
		if subtle.ConstantTimeCompare(got[:], want[:]) != 1 {
			writeError(w, http.StatusUnauthorized, "unauthorized")
			return
		}
		next.ServeHTTP(w, r)
	})
}

// clientIP strips the port from RemoteAddr; a reverse proxy in front
// is expected to rewrite RemoteAddr rather than relying on headers.
func clientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

// Handler wraps the router in the shared guard chain.
func (s *Server) Handler(requestTimeout time.Duration) http.Handler {
	return api.Chain(s.Router(),
		api.Recover(s.log),
		api.TraceID(),
		api.RequestLog(s.log),
		api.Timeout(requestTimeout),
	)
}
