package chat_http

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"net/http"

	"rag-gateway/internal/domain"
	"rag-gateway/internal/usecase"

	"github.com/labstack/echo/v4"
)

// Response headers carrying chat metadata alongside the streamed body.
const (
	HeaderChatSources = "X-Chat-Sources"
	HeaderSessionID   = "X-Session-Id"
)

// Pinger reports backend liveness for the readiness probe.
type Pinger interface {
	Ping(ctx context.Context) error
}

type Handler struct {
	chatUsecase     usecase.ChatUsecase
	retrieveUsecase usecase.RetrieveContextUsecase
	cacheRepo       domain.WebCacheRepository
	db              Pinger
}

func NewHandler(
	chatUsecase usecase.ChatUsecase,
	retrieveUsecase usecase.RetrieveContextUsecase,
	cacheRepo domain.WebCacheRepository,
	db Pinger,
) *Handler {
	return &Handler{
		chatUsecase:     chatUsecase,
		retrieveUsecase: retrieveUsecase,
		cacheRepo:       cacheRepo,
		db:              db,
	}
}

// RegisterRoutes attaches all endpoints to the echo instance.
func (h *Handler) RegisterRoutes(e *echo.Echo) {
	e.POST("/v1/chat", h.Chat)
	e.POST("/v1/chat/completion", h.ChatCompletion)
	e.POST("/v1/retrieve", h.Retrieve)
	e.POST("/internal/cache/cleanup", h.CacheCleanup)
	e.GET("/internal/cache/stats", h.CacheStats)
	e.GET("/healthz", h.Health)
	e.GET("/readyz", h.Ready)
}

type chatRequest struct {
	Message         string  `json:"message"`
	SessionID       string  `json:"sessionId"`
	UseWebSearch    bool    `json:"useWebSearch"`
	PredictionType  string  `json:"predictionType"`
	ConfidenceLevel bool    `json:"confidenceLevel"`
	Limit           int     `json:"limit"`
	Threshold       float64 `json:"threshold"`
	SearchEngine    string  `json:"searchEngine"`
	BypassCache     bool    `json:"bypassCache"`
}

func (r chatRequest) toInput() usecase.ChatInput {
	return usecase.ChatInput{
		Query:           r.Message,
		SessionID:       r.SessionID,
		UseWebSearch:    r.UseWebSearch,
		PredictionType:  r.PredictionType,
		ConfidenceLevel: r.ConfidenceLevel,
		Limit:           r.Limit,
		Threshold:       r.Threshold,
		SearchEngine:    domain.SearchEngine(r.SearchEngine),
		BypassCache:     r.BypassCache,
	}
}

// Chat streams the answer as plain UTF-8 text. Sources and session id
// travel in response headers, set before the first body byte, so clients
// can render provenance while tokens arrive.
// (POST /v1/chat)
func (h *Handler) Chat(ctx echo.Context) error {
	var req chatRequest
	if err := ctx.Bind(&req); err != nil {
		return ctx.JSON(http.StatusBadRequest, map[string]string{"error": "invalid request"})
	}

	reqCtx := ctx.Request().Context()
	events := h.chatUsecase.Stream(reqCtx, req.toInput())

	resp := ctx.Response()
	started := false

	for event := range events {
		switch event.Kind {
		case usecase.StreamEventKindMeta:
			meta := event.Payload.(usecase.StreamMeta)
			resp.Header().Set(HeaderSessionID, meta.SessionID)
			resp.Header().Set(HeaderChatSources, encodeSources(meta.Sources))
			resp.Header().Set(echo.HeaderContentType, "text/plain; charset=utf-8")
			resp.WriteHeader(http.StatusOK)
			started = true

		case usecase.StreamEventKindDelta:
			if _, err := fmt.Fprint(resp, event.Payload.(string)); err != nil {
				return nil
			}
			resp.Flush()

		case usecase.StreamEventKindFallback, usecase.StreamEventKindError:
			msg := fmt.Sprint(event.Payload)
			if !started {
				status := http.StatusInternalServerError
				if event.Kind == usecase.StreamEventKindError {
					status = http.StatusBadRequest
				}
				return ctx.JSON(status, map[string]string{"error": msg})
			}
			// Headers are gone; the best remaining signal is truncation.
			return nil

		case usecase.StreamEventKindDone:
			resp.Flush()
		}
	}
	return nil
}

type completionResponse struct {
	Answer    string              `json:"answer"`
	SessionID string              `json:"session_id"`
	Sources   []usecase.SourceRef `json:"sources"`
	Intent    domain.QueryIntent  `json:"intent"`
}

// ChatCompletion returns the whole answer in one JSON response.
// (POST /v1/chat/completion)
func (h *Handler) ChatCompletion(ctx echo.Context) error {
	var req chatRequest
	if err := ctx.Bind(&req); err != nil {
		return ctx.JSON(http.StatusBadRequest, map[string]string{"error": "invalid request"})
	}

	output, err := h.chatUsecase.Execute(ctx.Request().Context(), req.toInput())
	if err != nil {
		return ctx.JSON(http.StatusInternalServerError, map[string]string{"error": err.Error()})
	}

	return ctx.JSON(http.StatusOK, completionResponse{
		Answer:    output.Answer,
		SessionID: output.SessionID,
		Sources:   output.Sources,
		Intent:    output.Intent,
	})
}

type retrieveRequest struct {
	Query        string  `json:"query"`
	Limit        int     `json:"limit"`
	Threshold    float64 `json:"threshold"`
	UseWebSearch bool    `json:"useWebSearch"`
}

type retrievedItemResponse struct {
	ID         string  `json:"id"`
	Content    string  `json:"content"`
	Similarity float64 `json:"similarity"`
	SourceType string  `json:"source_type"`
	Title      string  `json:"title,omitempty"`
}

// Retrieve runs retrieval without generation, for debugging relevance.
// (POST /v1/retrieve)
func (h *Handler) Retrieve(ctx echo.Context) error {
	var req retrieveRequest
	if err := ctx.Bind(&req); err != nil {
		return ctx.JSON(http.StatusBadRequest, map[string]string{"error": "invalid request"})
	}

	output, err := h.retrieveUsecase.Execute(ctx.Request().Context(), usecase.RetrieveContextInput{
		Query:          req.Query,
		Limit:          req.Limit,
		Threshold:      req.Threshold,
		AllowWebSearch: req.UseWebSearch,
	})
	if err != nil {
		return ctx.JSON(http.StatusInternalServerError, map[string]string{"error": err.Error()})
	}

	items := make([]retrievedItemResponse, 0, len(output.Items))
	for _, item := range output.Items {
		items = append(items, retrievedItemResponse{
			ID:         item.ID,
			Content:    item.Content,
			Similarity: item.Similarity,
			SourceType: string(item.SourceType),
			Title:      item.OriginTitle,
		})
	}

	return ctx.JSON(http.StatusOK, map[string]interface{}{
		"items":           items,
		"used_web_search": output.UsedWebSearch,
		"degraded":        output.Degraded,
	})
}

// CacheCleanup deletes expired cache rows on demand.
// (POST /internal/cache/cleanup)
func (h *Handler) CacheCleanup(ctx echo.Context) error {
	deleted, err := h.cacheRepo.CleanupExpired(ctx.Request().Context())
	if err != nil {
		return ctx.JSON(http.StatusInternalServerError, map[string]string{"error": err.Error()})
	}
	return ctx.JSON(http.StatusOK, map[string]int64{"deleted": deleted})
}

// CacheStats reports cache row counts.
// (GET /internal/cache/stats)
func (h *Handler) CacheStats(ctx echo.Context) error {
	stats, err := h.cacheRepo.Stats(ctx.Request().Context())
	if err != nil {
		return ctx.JSON(http.StatusInternalServerError, map[string]string{"error": err.Error()})
	}
	return ctx.JSON(http.StatusOK, map[string]int64{
		"queries":         stats.Queries,
		"content_entries": stats.ContentEntries,
		"expired_queries": stats.ExpiredQueries,
		"expired_content": stats.ExpiredContent,
	})
}

// Health is the liveness probe.
// (GET /healthz)
func (h *Handler) Health(ctx echo.Context) error {
	return ctx.JSON(http.StatusOK, map[string]string{"status": "ok"})
}

// Ready verifies the database is reachable.
// (GET /readyz)
func (h *Handler) Ready(ctx echo.Context) error {
	if h.db != nil {
		if err := h.db.Ping(ctx.Request().Context()); err != nil {
			return ctx.JSON(http.StatusServiceUnavailable, map[string]string{"status": "db unreachable"})
		}
	}
	return ctx.JSON(http.StatusOK, map[string]string{"status": "ready"})
}

func encodeSources(sources []usecase.SourceRef) string {
	raw, err := json.Marshal(sources)
	if err != nil {
		return ""
	}
	return base64.StdEncoding.EncodeToString(raw)
}
