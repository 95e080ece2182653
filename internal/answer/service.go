package answer

//go:generate go run go.uber.org/mock/mockgen@latest -destination=mocks/mock_answer.go -package=mocks islamqa-ai/internal/answer Embedder,Searcher,ChunkStore,Generator

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync/atomic"

	"islamqa-ai/internal/contextutil"
	"islamqa-ai/internal/llm"
	"islamqa-ai/internal/storage"
	"islamqa-ai/internal/vectorstore"
)

const (
	// TopK is the number of chunks retrieved per question.
	TopK = 10
	// minAnswerLength is the minimum accepted completion length.
	minAnswerLength = 10
	// generationTemperature keeps completions close to the retrieved sources.
	generationTemperature = 0.2
)

// Embedder embeds question text. Defined consumer-first so the service is
// tested against mocks, independent of any specific provider.
type Embedder interface {
	EmbedTexts(ctx context.Context, texts []string) ([][]float32, error)
}

// Searcher retrieves the top k points by vector similarity.
type Searcher interface {
	Search(ctx context.Context, collection string, query []float32, k int) ([]vectorstore.SearchResult, error)
}

// ChunkStore resolves a retrieved point ID back to its chunk text.
type ChunkStore interface {
	GetByID(ctx context.Context, id string) (*storage.ChunkRecord, error)
}

// Generator produces a chat completion for the rendered prompt.
type Generator interface {
	ChatWithMessages(ctx context.Context, messages []llm.Message, params llm.ChatParams) (string, error)
}

// Result carries a successful answer. Formatting and markup inside Answer
// are the model's responsibility and are returned verbatim.
type Result struct {
	Answer string
}

// Service answers questions over the prebuilt index. It starts uninitialized
// and serves only errors until MarkReady is called after a successful index
// build. Each question is independent; the service holds no per-call state,
// so concurrent Answer calls are safe once ready.
type Service struct {
	embedder   Embedder
	searcher   Searcher
	chunks     ChunkStore
	generator  Generator
	collection string
	ready      atomic.Bool
	logger     *slog.Logger
}

// NewService creates an answering service in the uninitialized state.
func NewService(embedder Embedder, searcher Searcher, chunks ChunkStore, generator Generator, collection string) *Service {
	return &Service{
		embedder:   embedder,
		searcher:   searcher,
		chunks:     chunks,
		generator:  generator,
		collection: collection,
		logger:     slog.Default(),
	}
}

// MarkReady transitions the service to Ready. Called once after the index
// build succeeds; there is no way back to Uninitialized.
func (s *Service) MarkReady() {
	s.ready.Store(true)
}

// Ready reports whether the service can answer questions.
func (s *Service) Ready() bool {
	return s.ready.Load()
}

// Answer retrieves the top chunks for the question and asks the model for a
// structured, citation-bearing answer.
func (s *Service) Answer(ctx context.Context, question string) (Result, error) {
	logger := contextutil.LoggerFromContext(ctx)

	if !s.ready.Load() {
		return Result{}, ErrNotReady
	}

	if strings.TrimSpace(question) == "" {
		return Result{}, &ValidationError{Field: "question", Message: "cannot be empty"}
	}

	embeddings, err := s.embedder.EmbedTexts(ctx, []string{question})
	if err != nil {
		return Result{}, fmt.Errorf("failed to embed question: %w", err)
	}
	if len(embeddings) == 0 {
		return Result{}, fmt.Errorf("no embedding returned for question")
	}

	results, err := s.searcher.Search(ctx, s.collection, embeddings[0], TopK)
	if err != nil {
		return Result{}, fmt.Errorf("failed to search index: %w", err)
	}
	logger.InfoContext(ctx, "retrieved chunks", "count", len(results), "k", TopK)

	var contextBuilder strings.Builder
	for _, result := range results {
		chunk, err := s.chunks.GetByID(ctx, result.PointID)
		if err != nil {
			logger.WarnContext(ctx, "failed to resolve chunk text", "chunk_id", result.PointID, "error", err)
			continue
		}
		if contextBuilder.Len() > 0 {
			contextBuilder.WriteString("\n\n")
		}
		contextBuilder.WriteString(chunk.Text)
	}

	prompt := renderPrompt(contextBuilder.String(), question)

	text, err := s.generator.ChatWithMessages(ctx, []llm.Message{
		{Role: "user", Content: prompt},
	}, llm.ChatParams{Temperature: generationTemperature})
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return Result{}, fmt.Errorf("%w: %v", ErrGenerationTimeout, err)
		}
		return Result{}, fmt.Errorf("failed to generate answer: %w", err)
	}

	if len(strings.TrimSpace(text)) < minAnswerLength {
		return Result{}, ErrGenerationInvalid
	}

	logger.InfoContext(ctx, "question answered", "question_length", len(question), "answer_length", len(text))
	return Result{Answer: text}, nil
}
