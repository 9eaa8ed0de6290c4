package config

import (
	"os"
	"strconv"
	"strings"
)

type Config struct {
	Env  string
	Port string

	// OTelLogEnabled mirrors log records to the global OpenTelemetry
	// log provider in addition to stdout.
	OTelLogEnabled bool

	DBHost     string
	DBPort     string
	DBUser     string
	DBPassword string
	DBName     string

	// LLM backend (Ollama-compatible chat/embed endpoints).
	LLMBaseURL      string
	LLMTimeout      int // seconds
	EmbeddingModel  string
	GenerationModel string

	// Retrieval defaults.
	DefaultThreshold   float64
	DefaultLimit       int
	WebSupplementRatio float64 // fraction of limit requested from web search

	// Web search.
	SearchEngine      string
	BraveAPIKey       string
	SerperAPIKey      string
	SearchTimeout     int // seconds
	FetchTimeout      int // seconds, per-URL content fetch
	FetchHostInterval int // milliseconds between fetches to the same host

	// Cache TTLs.
	QueryCacheTTLMin   int
	ContentCacheTTLMin int
	CacheCleanupPeriod int // minutes between cleanup sweeps
	ExtractionMemoSize int

	// Sports data providers.
	OddsAPIKey     string
	OddsAPIBaseURL string
	SportsTimeout  int // seconds
}

func Load() *Config {
	return &Config{
		Env:  getEnv("ENV", "development"),
		Port: getEnv("PORT", "9020"),

		OTelLogEnabled: getEnvBool("LOG_OTEL_ENABLED", false),

		DBHost:     getEnv("DB_HOST", "rag-db"),
		DBPort:     getEnv("DB_PORT", "5432"),
		DBUser:     getEnv("DB_USER", "rag_user"),
		DBPassword: getSecret("DB_PASSWORD", "DB_PASSWORD_FILE", "rag_password"),
		DBName:     getEnv("DB_NAME", "rag_db"),

		LLMBaseURL:      getEnv("LLM_BASE_URL", "http://ollama:11434"),
		LLMTimeout:      getEnvInt("LLM_TIMEOUT", 120),
		EmbeddingModel:  getEnv("EMBEDDING_MODEL", "embeddinggemma"),
		GenerationModel: getEnv("GENERATION_MODEL", "gpt-oss20b-cpu"),

		DefaultThreshold:   getEnvFloat("RAG_DEFAULT_THRESHOLD", 0.3),
		DefaultLimit:       getEnvInt("RAG_DEFAULT_LIMIT", 5),
		WebSupplementRatio: getEnvFloat("WEB_SUPPLEMENT_RATIO", 0.4),

		SearchEngine:      getEnv("SEARCH_ENGINE", "duckduckgo"),
		BraveAPIKey:       getSecret("BRAVE_SEARCH_API_KEY", "BRAVE_SEARCH_API_KEY_FILE", ""),
		SerperAPIKey:      getSecret("SERPER_API_KEY", "SERPER_API_KEY_FILE", ""),
		SearchTimeout:     getEnvInt("SEARCH_TIMEOUT", 10),
		FetchTimeout:      getEnvInt("FETCH_TIMEOUT", 15),
		FetchHostInterval: getEnvInt("FETCH_HOST_INTERVAL_MS", 500),

		QueryCacheTTLMin:   getEnvInt("WEB_QUERY_CACHE_TTL_MIN", 30),
		ContentCacheTTLMin: getEnvInt("WEB_CONTENT_CACHE_TTL_MIN", 60),
		CacheCleanupPeriod: getEnvInt("CACHE_CLEANUP_PERIOD_MIN", 15),
		ExtractionMemoSize: getEnvInt("EXTRACTION_MEMO_SIZE", 256),

		OddsAPIKey:     getSecret("THE_ODDS_API_KEY", "THE_ODDS_API_KEY_FILE", ""),
		OddsAPIBaseURL: getEnv("ODDS_API_BASE_URL", "https://api.the-odds-api.com/v4"),
		SportsTimeout:  getEnvInt("SPORTS_TIMEOUT", 10),
	}
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return fallback
}

// getSecret reads the variable directly, then from the file named by
// fileEnvKey (container secrets), then falls back.
func getSecret(envKey, fileEnvKey, fallback string) string {
	if value, ok := os.LookupEnv(envKey); ok {
		return value
	}
	if filePath, ok := os.LookupEnv(fileEnvKey); ok {
		content, err := os.ReadFile(filePath)
		if err == nil {
			return strings.TrimSpace(string(content))
		}
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if value, ok := os.LookupEnv(key); ok {
		if parsed, err := strconv.Atoi(value); err == nil {
			return parsed
		}
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	if value, ok := os.LookupEnv(key); ok {
		if parsed, err := strconv.ParseBool(value); err == nil {
			return parsed
		}
	}
	return fallback
}

func getEnvFloat(key string, fallback float64) float64 {
	if value, ok := os.LookupEnv(key); ok {
		if parsed, err := strconv.ParseFloat(value, 64); err == nil {
			return parsed
		}
	}
	return fallback
}
