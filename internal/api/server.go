// Package api serves the quiz workflows over HTTP with chi.
package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/amrixahmad/questionsmith/internal/logging"
	"github.com/amrixahmad/questionsmith/internal/service"
)

// Options configures the router.
type Options struct {
	// CORSOrigins lists allowed browser origins. Empty disables CORS.
	CORSOrigins []string

	// RequestTimeout bounds each request. Generation calls an LLM, so this
	// should exceed the LLM timeout.
	RequestTimeout time.Duration

	// PublicBaseURL prefixes share link URLs, e.g. "https://quiz.example".
	PublicBaseURL string
}

// Server holds handler dependencies.
type Server struct {
	svc    *service.Services
	auth   *Authenticator
	logger logging.Logger
	opts   Options
}

func NewServer(svc *service.Services, auth *Authenticator, logger logging.Logger, opts Options) *Server {
	if logger == nil {
		logger = logging.Discard()
	}
	if opts.RequestTimeout <= 0 {
		opts.RequestTimeout = 90 * time.Second
	}
	return &Server{svc: svc, auth: auth, logger: logger.With("component", "api"), opts: opts}
}

// Handler builds the route tree.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID, middleware.RealIP, s.requestLogger, middleware.Recoverer)
	r.Use(middleware.Timeout(s.opts.RequestTimeout))
	if len(s.opts.CORSOrigins) > 0 {
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins:   s.opts.CORSOrigins,
			AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
			AllowedHeaders:   []string{"Authorization", "Content-Type"},
			ExposedHeaders:   []string{"Content-Length"},
			AllowCredentials: true,
			MaxAge:           300,
		}))
	}

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	r.Get("/s/{token}", s.openShared)

	r.Group(func(pr chi.Router) {
		pr.Use(s.auth.Middleware)

		pr.Route("/quizzes", func(qr chi.Router) {
			qr.Post("/generate", s.generateQuiz)
			qr.Get("/", s.listQuizzes)
			qr.Route("/{id}", func(ir chi.Router) {
				ir.Get("/", s.getQuiz)
				ir.Delete("/", s.deleteQuiz)
				ir.Post("/publish", s.publishQuiz)
				ir.Post("/unpublish", s.unpublishQuiz)
				ir.Put("/max-attempts", s.setMaxAttempts)
				ir.Post("/attempts", s.startAttempt)
				ir.Post("/share", s.createShareLink)
				ir.Delete("/share", s.revokeShareLinks)
			})
		})

		pr.Get("/attempts", s.listAttempts)
		pr.Get("/attempts/{id}", s.getAttempt)
		pr.Post("/attempts/{id}/submit", s.submitAttempt)
	})

	return r
}

// requestLogger logs one line per request through the structured logger.
func (s *Server) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		defer func() {
			status := ww.Status()
			if status == 0 {
				status = http.StatusOK
			}
			s.logger.LogRequest(r.Method, r.URL.Path, status, time.Since(start).String(),
				"request_id", middleware.GetReqID(r.Context()),
				"bytes", ww.BytesWritten())
		}()
		next.ServeHTTP(ww, r)
	})
}
