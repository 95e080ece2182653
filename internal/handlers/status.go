package handlers

import (
	"encoding/json"
	"net/http"

	"islamqa-ai/internal/contextutil"
	"islamqa-ai/internal/indexer"
)

// ReadyReporter reports whether the answering service has been initialized.
type ReadyReporter interface {
	Ready() bool
}

// StatusHandler exposes ingestion results and answering readiness.
type StatusHandler struct {
	reporter ReadyReporter
	stats    *indexer.IngestStats // nil until a build completes
}

// NewStatusHandler creates a new StatusHandler. stats may be nil when the
// startup build failed; the handler reports ready=false in that case.
func NewStatusHandler(reporter ReadyReporter, stats *indexer.IngestStats) *StatusHandler {
	return &StatusHandler{reporter: reporter, stats: stats}
}

// StatusResponse represents the status payload.
type StatusResponse struct {
	Ready  bool                 `json:"ready"`
	Ingest *indexer.IngestStats `json:"ingest,omitempty"`
}

// ServeHTTP handles GET /api/status.
func (h *StatusHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := contextutil.LoggerFromContext(ctx)

	if r.Method != http.MethodGet {
		logger.WarnContext(ctx, "method not allowed", "method", r.Method)
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(StatusResponse{
		Ready:  h.reporter.Ready(),
		Ingest: h.stats,
	})
}
