package indexer

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"islamqa-ai/internal/contextutil"
	"islamqa-ai/internal/corpus"
	"islamqa-ai/internal/storage"
	"islamqa-ai/internal/vectorstore"
)

// embedBatchSize bounds one embeddings API call.
const embedBatchSize = 64

// Embedder generates embedding vectors for texts.
// Defined here consumer-first so the pipeline can be tested against a fake.
type Embedder interface {
	EmbedTexts(ctx context.Context, texts []string) ([][]float32, error)
}

// Pipeline builds the vector index from normalized documents: it splits each
// document, mirrors chunk text into SQLite and upserts embeddings to Qdrant.
// The build runs once at startup and is not safe for concurrent use.
type Pipeline struct {
	docRepo     storage.DocumentStore
	chunkRepo   storage.ChunkStore
	embedder    Embedder
	vectorStore vectorstore.VectorStore
	collection  string
	splitter    *Splitter
}

// NewPipeline creates a new indexing pipeline.
func NewPipeline(
	docRepo storage.DocumentStore,
	chunkRepo storage.ChunkStore,
	embedder Embedder,
	vectorStore vectorstore.VectorStore,
	collection string,
) *Pipeline {
	return &Pipeline{
		docRepo:     docRepo,
		chunkRepo:   chunkRepo,
		embedder:    embedder,
		vectorStore: vectorStore,
		collection:  collection,
		splitter:    NewSplitter(),
	}
}

// BuildIndex indexes all documents into a freshly recreated collection.
// Any storage, embedding or vector store failure aborts the build; the
// caller decides what a failed build means for the serving process.
func (p *Pipeline) BuildIndex(ctx context.Context, docs []corpus.Document) (*IngestStats, error) {
	logger := contextutil.LoggerFromContext(ctx)

	if err := p.docRepo.DeleteAll(ctx); err != nil {
		return nil, fmt.Errorf("failed to clear previous corpus: %w", err)
	}

	stats := &IngestStats{}

	var pendingTexts []string
	var pendingPoints []vectorstore.Point

	flush := func() error {
		if len(pendingTexts) == 0 {
			return nil
		}
		embeddings, err := p.embedder.EmbedTexts(ctx, pendingTexts)
		if err != nil {
			return fmt.Errorf("failed to generate embeddings: %w", err)
		}
		if len(embeddings) != len(pendingPoints) {
			return fmt.Errorf("embedding count mismatch: expected %d, got %d", len(pendingPoints), len(embeddings))
		}
		for i := range pendingPoints {
			pendingPoints[i].Vec = embeddings[i]
		}
		if err := p.vectorStore.Upsert(ctx, p.collection, pendingPoints); err != nil {
			return fmt.Errorf("failed to upsert vectors: %w", err)
		}
		stats.ChunksEmbedded += len(pendingPoints)
		pendingTexts = nil
		pendingPoints = nil
		return nil
	}

	for _, doc := range docs {
		select {
		case <-ctx.Done():
			return stats, ctx.Err()
		default:
		}

		docID := uuid.New().String()
		if err := p.docRepo.Insert(ctx, &storage.DocumentRecord{
			ID:        docID,
			Source:    string(doc.Source),
			Reference: doc.Reference,
			Text:      doc.Text,
		}); err != nil {
			return stats, err
		}

		stats.DocsProcessed++
		switch doc.Source {
		case corpus.SourceQuran:
			stats.QuranDocs++
		case corpus.SourceHadith:
			stats.HadithDocs++
		}

		chunks := p.splitter.Split(doc.Text)
		if len(chunks) == 0 {
			stats.DocsWithZeroChunks++
			logger.WarnContext(ctx, "document produced no chunks", "reference", doc.Reference)
			continue
		}

		for idx, text := range chunks {
			chunkID := uuid.New().String()
			if err := p.chunkRepo.Insert(ctx, &storage.ChunkRecord{
				ID:         chunkID,
				DocumentID: docID,
				ChunkIndex: idx,
				Text:       text,
			}); err != nil {
				return stats, err
			}

			pendingTexts = append(pendingTexts, text)
			pendingPoints = append(pendingPoints, vectorstore.Point{
				ID: chunkID,
				Meta: map[string]any{
					"document_id": docID,
					"source":      string(doc.Source),
					"reference":   doc.Reference,
					"chunk_index": idx,
				},
			})

			if len(pendingTexts) >= embedBatchSize {
				if err := flush(); err != nil {
					return stats, err
				}
			}
		}
	}

	if err := flush(); err != nil {
		return stats, err
	}

	logger.InfoContext(ctx, "index build completed",
		"documents", stats.DocsProcessed,
		"quran", stats.QuranDocs,
		"hadith", stats.HadithDocs,
		"chunks", stats.ChunksEmbedded,
	)
	return stats, nil
}
