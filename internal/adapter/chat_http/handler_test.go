package chat_http

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"rag-gateway/internal/domain"
	"rag-gateway/internal/usecase"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubChatUsecase struct {
	output *usecase.ChatOutput
	err    error
	events []usecase.StreamEvent
	input  usecase.ChatInput
}

func (s *stubChatUsecase) Execute(_ context.Context, input usecase.ChatInput) (*usecase.ChatOutput, error) {
	s.input = input
	return s.output, s.err
}

func (s *stubChatUsecase) Stream(_ context.Context, input usecase.ChatInput) <-chan usecase.StreamEvent {
	s.input = input
	events := make(chan usecase.StreamEvent, len(s.events))
	for _, ev := range s.events {
		events <- ev
	}
	close(events)
	return events
}

type stubRetriever struct {
	out *usecase.RetrieveContextOutput
	err error
}

func (s *stubRetriever) Execute(context.Context, usecase.RetrieveContextInput) (*usecase.RetrieveContextOutput, error) {
	return s.out, s.err
}

type stubCache struct {
	deleted int64
	err     error
}

func (s *stubCache) LookupResults(context.Context, string, domain.SearchEngine) ([]domain.WebSearchResult, error) {
	return nil, nil
}

func (s *stubCache) StoreResults(context.Context, domain.CachedSearchQuery, []domain.WebSearchResult) error {
	return nil
}

func (s *stubCache) CleanupExpired(context.Context) (int64, error) { return s.deleted, s.err }

func (s *stubCache) Stats(context.Context) (domain.CacheStats, error) {
	return domain.CacheStats{Queries: 7, ContentEntries: 12}, nil
}

type stubPinger struct{ err error }

func (s stubPinger) Ping(context.Context) error { return s.err }

func doRequest(h *Handler, method, path, body string) *httptest.ResponseRecorder {
	e := echo.New()
	h.RegisterRoutes(e)
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if body != "" {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func TestChat_StreamsTextWithSourceHeaders(t *testing.T) {
	chat := &stubChatUsecase{events: []usecase.StreamEvent{
		{Kind: usecase.StreamEventKindMeta, Payload: usecase.StreamMeta{
			SessionID: "sess-9",
			Sources:   []usecase.SourceRef{{ID: "chunk-1", Type: "document", Similarity: 0.8}},
		}},
		{Kind: usecase.StreamEventKindDelta, Payload: "Hel"},
		{Kind: usecase.StreamEventKindDelta, Payload: "lo"},
		{Kind: usecase.StreamEventKindDone, Payload: &usecase.ChatOutput{Answer: "Hello"}},
	}}
	h := NewHandler(chat, &stubRetriever{}, &stubCache{}, stubPinger{})

	rec := doRequest(h, http.MethodPost, "/v1/chat", `{"message":"hi"}`)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Hello", rec.Body.String())
	assert.Equal(t, "sess-9", rec.Header().Get(HeaderSessionID))

	decoded, err := base64.StdEncoding.DecodeString(rec.Header().Get(HeaderChatSources))
	require.NoError(t, err)
	var sources []usecase.SourceRef
	require.NoError(t, json.Unmarshal(decoded, &sources))
	require.Len(t, sources, 1)
	assert.Equal(t, "chunk-1", sources[0].ID)
}

func TestChat_BindsWireContractFields(t *testing.T) {
	chat := &stubChatUsecase{events: []usecase.StreamEvent{
		{Kind: usecase.StreamEventKindMeta, Payload: usecase.StreamMeta{SessionID: "s"}},
		{Kind: usecase.StreamEventKindDone, Payload: &usecase.ChatOutput{}},
	}}
	h := NewHandler(chat, &stubRetriever{}, &stubCache{}, stubPinger{})

	body := `{"message":"who wins tonight?","sessionId":"sess-3","useWebSearch":true,"predictionType":"winner","confidenceLevel":true}`
	rec := doRequest(h, http.MethodPost, "/v1/chat", body)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "who wins tonight?", chat.input.Query)
	assert.Equal(t, "sess-3", chat.input.SessionID)
	assert.True(t, chat.input.UseWebSearch)
	assert.Equal(t, "winner", chat.input.PredictionType)
	assert.True(t, chat.input.ConfidenceLevel)
}

func TestChat_ErrorBeforeStreamIsJSON(t *testing.T) {
	chat := &stubChatUsecase{events: []usecase.StreamEvent{
		{Kind: usecase.StreamEventKindError, Payload: "query is required"},
	}}
	h := NewHandler(chat, &stubRetriever{}, &stubCache{}, stubPinger{})

	rec := doRequest(h, http.MethodPost, "/v1/chat", `{"message":""}`)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "query is required")
}

func TestChatCompletion_ReturnsJSON(t *testing.T) {
	chat := &stubChatUsecase{output: &usecase.ChatOutput{
		Answer:    "full answer",
		SessionID: "sess-1",
		Sources:   []usecase.SourceRef{{ID: "a", Type: "document"}},
	}}
	h := NewHandler(chat, &stubRetriever{}, &stubCache{}, stubPinger{})

	rec := doRequest(h, http.MethodPost, "/v1/chat/completion", `{"message":"hi"}`)

	assert.Equal(t, http.StatusOK, rec.Code)
	var resp completionResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "full answer", resp.Answer)
	assert.Equal(t, "sess-1", resp.SessionID)
}

func TestRetrieve_ReturnsItems(t *testing.T) {
	retriever := &stubRetriever{out: &usecase.RetrieveContextOutput{
		Items: []domain.RetrievedItem{{
			ID: "c1", Content: "text", Similarity: 0.5, SourceType: domain.SourceDocument,
		}},
		UsedWebSearch: true,
	}}
	h := NewHandler(&stubChatUsecase{}, retriever, &stubCache{}, stubPinger{})

	rec := doRequest(h, http.MethodPost, "/v1/retrieve", `{"query":"hi","limit":3}`)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"used_web_search":true`)
	assert.Contains(t, rec.Body.String(), `"source_type":"document"`)
}

func TestCacheCleanup(t *testing.T) {
	h := NewHandler(&stubChatUsecase{}, &stubRetriever{}, &stubCache{deleted: 42}, stubPinger{})

	rec := doRequest(h, http.MethodPost, "/internal/cache/cleanup", "")

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"deleted":42`)
}

func TestReady(t *testing.T) {
	h := NewHandler(&stubChatUsecase{}, &stubRetriever{}, &stubCache{}, stubPinger{})
	rec := doRequest(h, http.MethodGet, "/readyz", "")
	assert.Equal(t, http.StatusOK, rec.Code)

	h = NewHandler(&stubChatUsecase{}, &stubRetriever{}, &stubCache{}, stubPinger{err: errors.New("down")})
	rec = doRequest(h, http.MethodGet, "/readyz", "")
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestHealth(t *testing.T) {
	h := NewHandler(&stubChatUsecase{}, &stubRetriever{}, &stubCache{}, stubPinger{})
	rec := doRequest(h, http.MethodGet, "/healthz", "")
	assert.Equal(t, http.StatusOK, rec.Code)
}
