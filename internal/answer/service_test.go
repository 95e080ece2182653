package answer_test

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"go.uber.org/mock/gomock"

	"islamqa-ai/internal/answer"
	"islamqa-ai/internal/answer/mocks"
	"islamqa-ai/internal/llm"
	"islamqa-ai/internal/storage"
	"islamqa-ai/internal/vectorstore"
)

const testCollection = "islamic_texts"

func newReadyService(ctrl *gomock.Controller) (*answer.Service, *mocks.MockEmbedder, *mocks.MockSearcher, *mocks.MockChunkStore, *mocks.MockGenerator) {
	embedder := mocks.NewMockEmbedder(ctrl)
	searcher := mocks.NewMockSearcher(ctrl)
	chunks := mocks.NewMockChunkStore(ctrl)
	generator := mocks.NewMockGenerator(ctrl)
	svc := answer.NewService(embedder, searcher, chunks, generator, testCollection)
	svc.MarkReady()
	return svc, embedder, searcher, chunks, generator
}

func TestService_Answer_NotReady(t *testing.T) {
	ctrl := gomock.NewController(t)
	embedder := mocks.NewMockEmbedder(ctrl)
	searcher := mocks.NewMockSearcher(ctrl)
	chunks := mocks.NewMockChunkStore(ctrl)
	generator := mocks.NewMockGenerator(ctrl)

	// No expectations: an uninitialized service must not touch any dependency.
	svc := answer.NewService(embedder, searcher, chunks, generator, testCollection)

	_, err := svc.Answer(context.Background(), "What does the Quran say about patience?")
	if !errors.Is(err, answer.ErrNotReady) {
		t.Fatalf("Answer() error = %v, want ErrNotReady", err)
	}
	if svc.Ready() {
		t.Error("Ready() = true before MarkReady")
	}
}

func TestService_Answer_EmptyQuestion(t *testing.T) {
	tests := []struct {
		name     string
		question string
	}{
		{"empty", ""},
		{"whitespace", "   "},
		{"newlines", "\n\t"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			svc, _, _, _, _ := newReadyService(ctrl)

			_, err := svc.Answer(context.Background(), tt.question)

			var validationErr *answer.ValidationError
			if !errors.As(err, &validationErr) {
				t.Fatalf("Answer(%q) error = %v, want *ValidationError", tt.question, err)
			}
			if validationErr.Field != "question" {
				t.Errorf("ValidationError.Field = %q, want question", validationErr.Field)
			}
		})
	}
}

func TestService_Answer_Success(t *testing.T) {
	ctrl := gomock.NewController(t)
	svc, embedder, searcher, chunks, generator := newReadyService(ctrl)

	question := "What does the Quran say about patience?"
	queryVec := []float32{0.1, 0.2, 0.3}
	chunkText := "Quran 2:153\nArabic: ...\nEnglish: O you who have attained to faith! Seek aid in steadfast patience and prayer."

	embedder.EXPECT().EmbedTexts(gomock.Any(), []string{question}).
		Return([][]float32{queryVec}, nil)

	searcher.EXPECT().Search(gomock.Any(), testCollection, queryVec, answer.TopK).
		Return([]vectorstore.SearchResult{
			{PointID: "chunk-1", Score: 0.91},
			{PointID: "chunk-2", Score: 0.80},
		}, nil)

	chunks.EXPECT().GetByID(gomock.Any(), "chunk-1").
		Return(&storage.ChunkRecord{ID: "chunk-1", Text: chunkText}, nil)
	chunks.EXPECT().GetByID(gomock.Any(), "chunk-2").
		Return(nil, storage.ErrNotFound)

	generated := "[Summary]\nPatience is repeatedly commanded. Source: (Quran 2:153)\n[Conclusion]\nBe patient."
	generator.EXPECT().ChatWithMessages(gomock.Any(), gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, messages []llm.Message, params llm.ChatParams) (string, error) {
			if len(messages) != 1 || messages[0].Role != "user" {
				return "", fmt.Errorf("unexpected messages: %+v", messages)
			}
			prompt := messages[0].Content
			if !strings.Contains(prompt, chunkText) {
				t.Errorf("prompt does not contain retrieved chunk text")
			}
			if !strings.Contains(prompt, "Question: "+question) {
				t.Errorf("prompt does not contain the question")
			}
			if !strings.Contains(prompt, "---Quranic Verses---") || !strings.Contains(prompt, "---Hadiths---") {
				t.Errorf("prompt missing structured answer sections")
			}
			if params.Temperature != 0.2 {
				t.Errorf("Temperature = %v, want 0.2", params.Temperature)
			}
			return generated, nil
		})

	result, err := svc.Answer(context.Background(), question)
	if err != nil {
		t.Fatalf("Answer() unexpected error: %v", err)
	}
	if result.Answer != generated {
		t.Errorf("Answer = %q, want the completion verbatim", result.Answer)
	}
}

func TestService_Answer_ShortCompletionRejected(t *testing.T) {
	ctrl := gomock.NewController(t)
	svc, embedder, searcher, _, generator := newReadyService(ctrl)

	embedder.EXPECT().EmbedTexts(gomock.Any(), gomock.Any()).
		Return([][]float32{{0.5}}, nil)
	searcher.EXPECT().Search(gomock.Any(), testCollection, gomock.Any(), answer.TopK).
		Return(nil, nil)
	generator.EXPECT().ChatWithMessages(gomock.Any(), gomock.Any(), gomock.Any()).
		Return("   ok   ", nil)

	_, err := svc.Answer(context.Background(), "a question")
	if !errors.Is(err, answer.ErrGenerationInvalid) {
		t.Fatalf("Answer() error = %v, want ErrGenerationInvalid", err)
	}
}

func TestService_Answer_GenerationTimeout(t *testing.T) {
	ctrl := gomock.NewController(t)
	svc, embedder, searcher, _, generator := newReadyService(ctrl)

	embedder.EXPECT().EmbedTexts(gomock.Any(), gomock.Any()).
		Return([][]float32{{0.5}}, nil)
	searcher.EXPECT().Search(gomock.Any(), testCollection, gomock.Any(), answer.TopK).
		Return(nil, nil)
	generator.EXPECT().ChatWithMessages(gomock.Any(), gomock.Any(), gomock.Any()).
		Return("", fmt.Errorf("generation timed out: %w", context.DeadlineExceeded))

	_, err := svc.Answer(context.Background(), "a question")
	if !errors.Is(err, answer.ErrGenerationTimeout) {
		t.Fatalf("Answer() error = %v, want ErrGenerationTimeout", err)
	}
}

func TestService_Answer_SearchError(t *testing.T) {
	ctrl := gomock.NewController(t)
	svc, embedder, searcher, _, _ := newReadyService(ctrl)

	embedder.EXPECT().EmbedTexts(gomock.Any(), gomock.Any()).
		Return([][]float32{{0.5}}, nil)
	searcher.EXPECT().Search(gomock.Any(), testCollection, gomock.Any(), answer.TopK).
		Return(nil, errors.New("qdrant unavailable"))

	_, err := svc.Answer(context.Background(), "a question")
	if err == nil {
		t.Fatal("Answer() error = nil, want search failure")
	}
	if errors.Is(err, answer.ErrGenerationInvalid) || errors.Is(err, answer.ErrGenerationTimeout) {
		t.Errorf("search failure mapped to a generation error: %v", err)
	}
}
