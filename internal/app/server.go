package app

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/sirupsen/logrus"

	"github.com/markdave123-py/Pagewise/internal/api/handlers"
	appMiddleware "github.com/markdave123-py/Pagewise/internal/api/middlewares"
	"github.com/markdave123-py/Pagewise/internal/api/views"
	"github.com/markdave123-py/Pagewise/internal/config"
	"github.com/markdave123-py/Pagewise/internal/services"
)

// Server wraps the HTTP server instance and its handlers.
type Server struct {
	httpServer *http.Server
	logger     *logrus.Logger
}

// NewServer builds and wires all routes.
func NewServer(cfg *config.Config, logger *logrus.Logger, docs *services.DocumentService, study *services.StudyService, renderer *views.Renderer) *Server {
	pageHandler := handlers.NewPageHandler(study, renderer, cfg.MaxUploadBytes, logger)
	docHandler := handlers.NewDocumentHandler(study, docs, cfg.MaxUploadBytes, logger)
	studyHandler := handlers.NewStudyHandler(study, logger)
	sessions := appMiddleware.NewSessions(cfg.SessionSecret, logger)

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(appMiddleware.RequestLogger(logger))
	r.Use(middleware.Recoverer)
	// agent runs are synchronous, so requests may take as long as one run
	r.Use(middleware.Timeout(cfg.AgentTimeout + 30*time.Second))

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
	}))

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	r.Group(func(web chi.Router) {
		web.Use(sessions.Middleware)

		// browser UI
		web.Get("/", pageHandler.Index)
		web.Post("/upload", docHandler.UploadForm)
		web.Post("/actions/{kind}", studyHandler.RunForm)

		// API routes
		web.Route("/api", func(api chi.Router) {
			api.Post("/documents", docHandler.UploadDocument)
			api.Get("/documents", docHandler.GetDocuments)
			api.Get("/session", studyHandler.GetSession)
			api.Post("/{kind}", studyHandler.RunAction)
		})
	})

	httpSrv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	return &Server{httpServer: httpSrv, logger: logger}
}

func (s *Server) Handler() http.Handler {
	return s.httpServer.Handler
}

// Start runs the HTTP server until Shutdown is called.
func (s *Server) Start() error {
	s.logger.WithField("addr", s.httpServer.Addr).Info("HTTP server listening")
	if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Shutdown gracefully stops the server.
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("Shutting down HTTP server...")
	return s.httpServer.Shutdown(ctx)
}
