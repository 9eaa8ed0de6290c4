package di

import (
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"rag-gateway/internal/adapter/chat_http"
	"rag-gateway/internal/adapter/llm"
	"rag-gateway/internal/adapter/repository"
	"rag-gateway/internal/adapter/sports"
	"rag-gateway/internal/adapter/websearch"
	"rag-gateway/internal/domain"
	"rag-gateway/internal/infra/config"
	"rag-gateway/internal/usecase"
	"rag-gateway/internal/worker"
)

// ApplicationComponents holds all wired dependencies for the application.
type ApplicationComponents struct {
	VectorStore domain.VectorStore
	CacheRepo   domain.WebCacheRepository
	Searcher    domain.WebSearcher

	ChatUsecase     usecase.ChatUsecase
	RetrieveUsecase usecase.RetrieveContextUsecase

	Handler       *chat_http.Handler
	CleanupWorker *worker.CacheCleanupWorker
}

// NewApplicationComponents wires all dependencies from config and database pool.
func NewApplicationComponents(cfg *config.Config, pool *pgxpool.Pool, log *slog.Logger) *ApplicationComponents {
	txManager := repository.NewPostgresTransactionManager(pool)
	cacheRepo := repository.NewWebCacheRepository(pool, time.Duration(cfg.ContentCacheTTLMin)*time.Minute)

	embedder := llm.NewEmbedder(cfg.LLMBaseURL, cfg.EmbeddingModel, time.Duration(cfg.LLMTimeout)*time.Second)
	generator := llm.NewGenerator(cfg.LLMBaseURL, cfg.GenerationModel, time.Duration(cfg.LLMTimeout)*time.Second)
	vectorStore := repository.NewVectorStoreRepository(pool, embedder)

	fetcher := websearch.NewFetcher(
		time.Duration(cfg.FetchTimeout)*time.Second,
		time.Duration(cfg.FetchHostInterval)*time.Millisecond,
		cfg.ExtractionMemoSize,
	)
	searcher := websearch.NewClient(
		websearch.Engines(cfg.BraveAPIKey, cfg.SerperAPIKey, time.Duration(cfg.SearchTimeout)*time.Second),
		cacheRepo,
		txManager,
		fetcher,
		log,
		websearch.ClientConfig{
			DefaultEngine: domain.SearchEngine(cfg.SearchEngine),
			QueryTTL:      time.Duration(cfg.QueryCacheTTLMin) * time.Minute,
		},
	)

	oddsClient := sports.NewOddsClient(cfg.OddsAPIBaseURL, cfg.OddsAPIKey, time.Duration(cfg.SportsTimeout)*time.Second)
	statsClient := sports.NewSyntheticStatsClient()
	newsClient := sports.NewNewsClient(searcher)

	classifier := usecase.NewClassifyIntentUsecase(generator)
	retrieveUsecase := usecase.NewRetrieveContextUsecase(vectorStore, searcher, log, cfg.WebSupplementRatio)
	sportsUsecase := usecase.NewSportsPredictionUsecase(
		oddsClient, statsClient, newsClient, searcher,
		domain.SubstringTeamMatcher{}, log,
	)
	chatUsecase := usecase.NewChatUsecase(
		classifier, retrieveUsecase, sportsUsecase, generator, log,
		cfg.DefaultLimit, cfg.DefaultThreshold,
	)

	handler := chat_http.NewHandler(chatUsecase, retrieveUsecase, cacheRepo, pool)
	cleanupWorker := worker.NewCacheCleanupWorker(
		cacheRepo,
		time.Duration(cfg.CacheCleanupPeriod)*time.Minute,
		log,
	)

	return &ApplicationComponents{
		VectorStore:     vectorStore,
		CacheRepo:       cacheRepo,
		Searcher:        searcher,
		ChatUsecase:     chatUsecase,
		RetrieveUsecase: retrieveUsecase,
		Handler:         handler,
		CleanupWorker:   cleanupWorker,
	}
}
