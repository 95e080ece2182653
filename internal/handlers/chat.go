package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"islamqa-ai/internal/answer"
	"islamqa-ai/internal/contextutil"
)

// AnswerService is the part of the answering service the chat endpoint needs.
type AnswerService interface {
	Answer(ctx context.Context, question string) (answer.Result, error)
}

// ChatHandler handles HTTP requests for question answering.
type ChatHandler struct {
	service AnswerService
}

// NewChatHandler creates a new ChatHandler.
func NewChatHandler(service AnswerService) *ChatHandler {
	return &ChatHandler{service: service}
}

// ChatRequest represents the HTTP request payload for chat.
type ChatRequest struct {
	Question string `json:"question"`
}

// ChatResponse represents the HTTP response payload for chat.
type ChatResponse struct {
	Answer string `json:"answer"`
}

// ErrorResponse represents an error response.
type ErrorResponse struct {
	Detail string `json:"detail"`
}

// ServeHTTP handles POST /api/chat.
// Answering errors (invalid question, service not ready, bad generation)
// map to 400 with a detail message; anything unexpected maps to 500.
func (h *ChatHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := contextutil.LoggerFromContext(ctx)

	if r.Method != http.MethodPost {
		logger.WarnContext(ctx, "method not allowed", "method", r.Method)
		h.writeError(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}

	var req ChatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		logger.WarnContext(ctx, "invalid request body", "error", err)
		h.writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	result, err := h.service.Answer(ctx, req.Question)
	if err != nil {
		h.handleAnswerError(w, ctx, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(ChatResponse{Answer: result.Answer}); err != nil {
		logger.ErrorContext(ctx, "failed to encode response", "error", err)
		h.writeError(w, http.StatusInternalServerError, "Failed to encode response")
		return
	}
}

// handleAnswerError maps answering errors to HTTP status codes.
func (h *ChatHandler) handleAnswerError(w http.ResponseWriter, ctx context.Context, err error) {
	logger := contextutil.LoggerFromContext(ctx)
	logger.ErrorContext(ctx, "answer error", "error", err)

	var validationErr *answer.ValidationError
	switch {
	case errors.As(err, &validationErr):
		h.writeError(w, http.StatusBadRequest, "Please provide a valid question.")
	case errors.Is(err, answer.ErrNotReady):
		h.writeError(w, http.StatusBadRequest, "Answering service not initialized. Please try again later.")
	case errors.Is(err, answer.ErrGenerationInvalid):
		h.writeError(w, http.StatusBadRequest, "Generated response was invalid or too short.")
	case errors.Is(err, answer.ErrGenerationTimeout):
		h.writeError(w, http.StatusBadRequest, "The answer took too long to generate. Please try again.")
	default:
		h.writeError(w, http.StatusInternalServerError, fmt.Sprintf("An error occurred: %s", err.Error()))
	}
}

// writeError writes an error response.
func (h *ChatHandler) writeError(w http.ResponseWriter, statusCode int, detail string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	_ = json.NewEncoder(w).Encode(ErrorResponse{Detail: detail})
}
