package main

import (
	"context"
	"log"
	"log/slog"
	nethttp "net/http"
	"os"

	"islamqa-ai/internal/answer"
	"islamqa-ai/internal/config"
	"islamqa-ai/internal/corpus"
	"islamqa-ai/internal/http"
	"islamqa-ai/internal/indexer"
	"islamqa-ai/internal/llm"
	"islamqa-ai/internal/sources"
	"islamqa-ai/internal/storage"
	"islamqa-ai/internal/vectorstore"
)

func main() {
	// Load configuration first (needed for log level)
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Configure structured logging with configurable level and format
	opts := &slog.HandlerOptions{
		Level: cfg.LogLevel,
	}
	var handler slog.Handler
	if cfg.LogFormat == "json" {
		handler = slog.NewJSONHandler(os.Stdout, opts)
	} else {
		handler = slog.NewTextHandler(os.Stdout, opts)
	}
	slog.SetDefault(slog.New(handler))

	// Initialize database
	db, err := storage.New(cfg.DBPath)
	if err != nil {
		log.Fatalf("Failed to open database: %v", err)
	}
	defer func() {
		_ = db.Close()
	}()

	if err := storage.Migrate(db); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}
	slog.Info("Database initialized", "path", cfg.DBPath)

	docRepo := storage.NewDocumentRepo(db)
	chunkRepo := storage.NewChunkRepo(db)

	vectorStore, err := vectorstore.NewQdrantStore(cfg.QdrantURL)
	if err != nil {
		log.Fatalf("Failed to create Qdrant client: %v", err)
	}

	embedder := llm.NewEmbeddingsClient(cfg.EmbeddingBaseURL, cfg.LLMAPIKey, cfg.EmbeddingModelName, cfg.QdrantVectorSize)
	llmClient := llm.NewClient(cfg.LLMBaseURL, cfg.LLMAPIKey, cfg.LLMModelName)

	// The answering service starts uninitialized and only serves errors
	// until the index build below succeeds.
	answerService := answer.NewService(embedder, vectorStore, chunkRepo, llmClient, cfg.QdrantCollection)

	// Ingestion runs once, synchronously, before the server accepts
	// requests. A failed build is fatal to the answering capability but not
	// to the process: the API still serves health/status and typed errors.
	ctx := context.Background()
	stats, err := ingest(ctx, cfg, embedder, vectorStore, docRepo, chunkRepo)
	if err != nil {
		slog.Error("Index build failed; answering service left uninitialized", "error", err)
	} else {
		answerService.MarkReady()
		slog.Info("Answering service ready",
			"documents", stats.DocsProcessed,
			"chunks", stats.ChunksEmbedded,
		)
	}

	deps := &http.Deps{
		AnswerService:  answerService,
		ReadyReporter:  answerService,
		VectorStore:    vectorStore,
		IngestStats:    stats,
		CollectionName: cfg.QdrantCollection,
		AllowedOrigins: cfg.AllowedOrigins,
	}
	router := http.NewRouter(deps)

	addr := ":" + cfg.APIPort
	slog.Info("Starting API server", "addr", addr)
	if err := nethttp.ListenAndServe(addr, router); err != nil {
		log.Fatalf("API server failed to start: %v", err)
	}
}

// ingest fetches both sources, normalizes the records and builds the index.
// Source fetching is best-effort (a failed surah or collection is skipped);
// embedding or vector store failures abort the build.
func ingest(
	ctx context.Context,
	cfg *config.Config,
	embedder *llm.EmbeddingsClient,
	vectorStore vectorstore.VectorStore,
	docRepo storage.DocumentStore,
	chunkRepo storage.ChunkStore,
) (*indexer.IngestStats, error) {
	// Fail fast if the embedding provider is unreachable or misconfigured
	// before spending an hour fetching sources.
	probe, err := embedder.EmbedTexts(ctx, []string{"probe"})
	if err != nil {
		return nil, err
	}
	slog.Info("Embedding client validated", "vector_size", len(probe[0]))

	if err := vectorStore.Recreate(ctx, cfg.QdrantCollection, cfg.QdrantVectorSize); err != nil {
		return nil, err
	}

	var docs []corpus.Document

	slog.Info("Fetching Quran data")
	quranClient := sources.NewQuranClient(cfg.QuranAPIBaseURL)
	verses, err := quranClient.FetchAll(ctx)
	if err != nil {
		return nil, err
	}
	for _, v := range verses {
		docs = append(docs, corpus.FromVerse(v))
	}
	slog.Info("Quran fetch finished", "verses", len(verses))

	if cfg.HadithAPIKey == "" {
		slog.Warn("HADITH_API_KEY not set; skipping hadith collections")
	} else {
		hadithClient := sources.NewHadithClient(cfg.HadithAPIBaseURL, cfg.HadithAPIKey)
		for _, collection := range cfg.HadithCollections {
			slog.Info("Fetching hadith collection", "collection", collection)
			hadiths, err := hadithClient.FetchCollection(ctx, collection)
			if err != nil {
				return nil, err
			}
			for _, h := range hadiths {
				docs = append(docs, corpus.FromHadith(h))
			}
			slog.Info("Collection fetch finished", "collection", collection, "hadiths", len(hadiths))
		}
	}

	pipeline := indexer.NewPipeline(docRepo, chunkRepo, embedder, vectorStore, cfg.QdrantCollection)
	return pipeline.BuildIndex(ctx, docs)
}
