package api

import (
	"net/http"

	"github.com/futig/rag-playground/internal/api/chat"
	"github.com/futig/rag-playground/internal/api/docs"
	"github.com/futig/rag-playground/internal/api/document"
	"github.com/futig/rag-playground/internal/api/middleware"
	"github.com/futig/rag-playground/internal/api/prompt"
	"github.com/futig/rag-playground/internal/api/search"
	"github.com/futig/rag-playground/internal/api/thread"
	"github.com/futig/rag-playground/internal/config"
	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/cors"
	"go.uber.org/zap"
)

type Handlers struct {
	Chat     *chat.Handler
	Prompt   *prompt.Handler
	Thread   *thread.Handler
	Document *document.Handler
	Search   *search.Handler
}

// SetupRouter creates and configures the HTTP router
func SetupRouter(cfg config.APIConfig, h Handlers, registry *prometheus.Registry, logger *zap.Logger) http.Handler {
	r := chi.NewRouter()

	// Middleware stack
	r.Use(chimiddleware.Recoverer)
	r.Use(chimiddleware.RequestID)
	r.Use(middleware.Logger(logger))
	if cfg.RequestTimeout > 0 {
		r.Use(chimiddleware.Timeout(cfg.RequestTimeout))
	}

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"healthy"}`))
	})

	r.Handle("/metrics", promhttp.HandlerFor(registry, promhttp.HandlerOpts{}))

	// Swagger documentation endpoints
	docs.RegisterRoutes(r)

	chat.RegisterRoutes(r, h.Chat)
	prompt.RegisterRoutes(r, h.Prompt)
	thread.RegisterRoutes(r, h.Thread)
	document.RegisterRoutes(r, h.Document)
	search.RegisterRoutes(r, h.Search)

	return cors.New(cors.Options{
		AllowedOrigins:   cfg.AllowedOrigins,
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete, http.MethodOptions},
		AllowedHeaders:   []string{"Content-Type", "Authorization", "X-Request-ID"},
		ExposedHeaders:   []string{"Content-Disposition"},
		AllowCredentials: true,
	}).Handler(r)
}
