package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"islamqa-ai/internal/indexer"
)

type stubReporter struct {
	ready bool
}

func (s *stubReporter) Ready() bool { return s.ready }

func TestStatusHandler_Ready(t *testing.T) {
	stats := &indexer.IngestStats{
		DocsProcessed:  6348,
		QuranDocs:      6236,
		HadithDocs:     112,
		ChunksEmbedded: 7100,
	}
	handler := NewStatusHandler(&stubReporter{ready: true}, stats)

	req := httptest.NewRequest(http.MethodGet, "/api/status", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}

	var resp StatusResponse
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if !resp.Ready {
		t.Error("ready = false, want true")
	}
	if resp.Ingest == nil || resp.Ingest.DocsProcessed != 6348 {
		t.Errorf("ingest = %+v, want the build stats", resp.Ingest)
	}
}

func TestStatusHandler_NotReadyWithoutStats(t *testing.T) {
	handler := NewStatusHandler(&stubReporter{}, nil)

	req := httptest.NewRequest(http.MethodGet, "/api/status", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}

	var raw map[string]json.RawMessage
	if err := json.NewDecoder(rec.Body).Decode(&raw); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if string(raw["ready"]) != "false" {
		t.Errorf("ready = %s, want false", raw["ready"])
	}
	if _, present := raw["ingest"]; present {
		t.Error("ingest present in payload, want omitted when nil")
	}
}

func TestStatusHandler_MethodNotAllowed(t *testing.T) {
	handler := NewStatusHandler(&stubReporter{ready: true}, nil)

	req := httptest.NewRequest(http.MethodPost, "/api/status", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusMethodNotAllowed {
		t.Errorf("status = %d, want 405", rec.Code)
	}
}
