package main

import (
	"log"
	"log/slog"
	nethttp "net/http"
	"os"
	"strings"

	"tabular-rag/internal/config"
	"tabular-rag/internal/http"
	"tabular-rag/internal/ingest"
	"tabular-rag/internal/llm"
	"tabular-rag/internal/rag"
	"tabular-rag/internal/storage"
	"tabular-rag/internal/vectorstore"
)

func main() {
	// Load configuration first (needed for log level)
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Configure structured logging with configurable level and format
	opts := &slog.HandlerOptions{
		Level: parseLogLevel(cfg.LogLevel),
	}
	var handler slog.Handler
	if cfg.LogFormat == "json" {
		handler = slog.NewJSONHandler(os.Stdout, opts)
	} else {
		handler = slog.NewTextHandler(os.Stdout, opts)
	}
	logger := slog.New(handler)
	slog.SetDefault(logger)
	slog.Debug("Logging configured", "level", cfg.LogLevel, "format", cfg.LogFormat)

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

	// Create repository instances
	containerRepo := storage.NewContainerRepo(db)
	chunkRepo := storage.NewChunkRepo(db)

	// Initialize the vector backends
	qdrantStore, err := vectorstore.NewQdrantStore(cfg.QdrantURL)
	if err != nil {
		log.Fatalf("Failed to create Qdrant client: %v", err)
	}
	openSearchStore, err := vectorstore.NewOpenSearchStore([]string{cfg.OpenSearchURL})
	if err != nil {
		log.Fatalf("Failed to create OpenSearch client: %v", err)
	}
	localStore := vectorstore.NewLocalStore(containerRepo)

	stores := map[string]vectorstore.Store{
		"opensearch": openSearchStore,
		"local":      localStore,
		"qdrant":     qdrantStore,
	}
	slog.Info("Vector backends initialized", "backends", "opensearch, local, qdrant")

	// Create LLM gateways
	embedder := llm.NewEmbeddingsClient(cfg.EmbeddingBaseURL, cfg.EmbeddingModelName, cfg.EmbeddingDimension)
	generator := llm.NewGeneratorClient(cfg.GenerateBaseURL, cfg.GenerateModelName)

	// Create orchestrators
	ingestor := ingest.NewIngestor(containerRepo, chunkRepo, stores, embedder, ingest.Options{
		MaxWords:  cfg.ChunkMaxWords,
		Overlap:   cfg.ChunkOverlap,
		BatchSize: cfg.BatchSize,
	})
	engine := rag.NewEngine(stores, containerRepo, chunkRepo, embedder, generator)
	slog.Info("Query engine initialized",
		"embedding_model", cfg.EmbeddingModelName,
		"embedding_dim", cfg.EmbeddingDimension,
		"generate_model", cfg.GenerateModelName,
	)

	// Create router with dependencies
	router := http.NewRouter(&http.Deps{
		DB:         db,
		Containers: containerRepo,
		Stores:     stores,
		Scheduler:  ingestor,
		Engine:     engine,
	})

	// Start API server
	addr := ":" + cfg.APIPort
	slog.Info("Starting API server", "addr", addr)
	if err := nethttp.ListenAndServe(addr, router); err != nil {
		log.Fatalf("API server failed to start: %v", err)
	}
}

// parseLogLevel maps the configured level string to a slog level.
func parseLogLevel(level string) slog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
