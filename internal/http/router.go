package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"islamqa-ai/internal/handlers"
	"islamqa-ai/internal/indexer"
	"islamqa-ai/internal/vectorstore"
)

// Deps holds dependencies for the HTTP router.
type Deps struct {
	AnswerService  handlers.AnswerService
	ReadyReporter  handlers.ReadyReporter
	VectorStore    vectorstore.VectorStore
	IngestStats    *indexer.IngestStats
	CollectionName string
	AllowedOrigins []string
}

// NewRouter creates a new HTTP router with the provided dependencies.
func NewRouter(deps *Deps) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(LoggerMiddleware)
	r.Use(CORS(deps.AllowedOrigins))

	chatHandler := handlers.NewChatHandler(deps.AnswerService)
	healthHandler := handlers.NewHealthHandler(deps.VectorStore, deps.CollectionName)
	statusHandler := handlers.NewStatusHandler(deps.ReadyReporter, deps.IngestStats)

	r.Route("/api", func(r chi.Router) {
		r.Method(http.MethodPost, "/chat", chatHandler)
		r.Method(http.MethodGet, "/health", healthHandler)
		r.Method(http.MethodGet, "/status", statusHandler)
	})

	return r
}
