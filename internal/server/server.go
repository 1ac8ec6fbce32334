// Package server exposes study sessions over a JSON HTTP API.
package server

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/thywilljoshua/studyaid/internal/session"
	"github.com/thywilljoshua/studyaid/internal/study"
)

type Config struct {
	// MaxUploadBytes bounds one documents request body.
	MaxUploadBytes int64
	Logger         *slog.Logger
}

type Server struct {
	store  session.Store
	tutor  *study.Tutor
	cfg    Config
	logger *slog.Logger
}

func New(store session.Store, tutor *study.Tutor, cfg Config) *Server {
	if cfg.MaxUploadBytes <= 0 {
		cfg.MaxUploadBytes = 200 << 20
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	return &Server{store: store, tutor: tutor, cfg: cfg, logger: cfg.Logger}
}

// Handler returns the routed API.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(s.logRequests)

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	r.Route("/api/sessions", func(r chi.Router) {
		r.Get("/", s.handleList)
		r.Post("/", s.handleCreate)
		r.Route("/{id}", func(r chi.Router) {
			r.Get("/", s.handleGet)
			r.Delete("/", s.handleDelete)
			r.Post("/documents", s.handleDocuments)
			r.Post("/ask", s.handleAsk)
			r.Post("/quiz", s.handleQuiz)
			r.Post("/quiz/answers", s.handleAnswers)
			r.Post("/flashcards", s.handleFlashcards)
			r.Post("/mindmap", s.handleMindMap)
		})
	})
	return r
}

func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)
		s.logger.Info("http request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"bytes", ww.BytesWritten(),
			"duration", time.Since(start),
			"request_id", middleware.GetReqID(r.Context()),
		)
	})
}
