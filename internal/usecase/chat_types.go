package usecase

import (
	"context"

	"rag-gateway/internal/domain"
)

// ChatInput encapsulates the parameters that drive one chat turn.
// UseWebSearch lets the caller opt in to web supplementation even when
// the document corpus delivers; PredictionType and ConfidenceLevel shape
// the prediction prompt when the sports path activates.
type ChatInput struct {
	Query           string
	SessionID       string
	UseWebSearch    bool
	PredictionType  string
	ConfidenceLevel bool
	Limit           int
	Threshold       float64
	SearchEngine    domain.SearchEngine
	BypassCache     bool
}

// SourceRef is the per-item provenance exposed to API clients.
type SourceRef struct {
	ID         string  `json:"id"`
	Type       string  `json:"type"`
	Title      string  `json:"title,omitempty"`
	URL        string  `json:"url,omitempty"`
	Similarity float64 `json:"similarity"`
}

// ChatOutput is the non-streaming chat response.
type ChatOutput struct {
	Answer    string
	SessionID string
	Sources   []SourceRef
	Intent    domain.QueryIntent
}

// ChatUsecase answers user queries with retrieved context.
type ChatUsecase interface {
	Execute(ctx context.Context, input ChatInput) (*ChatOutput, error)
	Stream(ctx context.Context, input ChatInput) <-chan StreamEvent
}

type StreamEventKind string

const (
	StreamEventKindMeta     StreamEventKind = "meta"
	StreamEventKindDelta    StreamEventKind = "delta"
	StreamEventKindDone     StreamEventKind = "done"
	StreamEventKindFallback StreamEventKind = "fallback"
	StreamEventKindError    StreamEventKind = "error"
)

type StreamEvent struct {
	Kind    StreamEventKind
	Payload interface{}
}

// StreamMeta is emitted once, before the first delta.
type StreamMeta struct {
	SessionID string             `json:"session_id"`
	Sources   []SourceRef        `json:"sources"`
	Intent    domain.QueryIntent `json:"intent"`
}
