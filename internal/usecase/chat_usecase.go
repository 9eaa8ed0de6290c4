package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"rag-gateway/internal/domain"

	"github.com/google/uuid"
)

const maxQueryLength = 2000

type chatUsecase struct {
	classifier domain.IntentClassifier
	retriever  RetrieveContextUsecase
	sports     SportsPredictionUsecase
	llm        domain.LLMClient
	log        *slog.Logger

	defaultLimit     int
	defaultThreshold float64
}

// NewChatUsecase wires the full chat pipeline: sanitize, classify,
// retrieve, format, generate.
func NewChatUsecase(
	classifier domain.IntentClassifier,
	retriever RetrieveContextUsecase,
	sports SportsPredictionUsecase,
	llm domain.LLMClient,
	log *slog.Logger,
	defaultLimit int,
	defaultThreshold float64,
) ChatUsecase {
	return &chatUsecase{
		classifier:       classifier,
		retriever:        retriever,
		sports:           sports,
		llm:              llm,
		log:              log,
		defaultLimit:     defaultLimit,
		defaultThreshold: defaultThreshold,
	}
}

// preparedTurn is everything decided before generation starts.
type preparedTurn struct {
	input        ChatInput
	intent       domain.QueryIntent
	items        []domain.RetrievedItem
	systemPrompt string
	userPrompt   string
}

func (u *chatUsecase) prepare(ctx context.Context, input ChatInput) (*preparedTurn, error) {
	query := strings.TrimSpace(input.Query)
	if query == "" {
		return nil, fmt.Errorf("query is required")
	}
	if len(query) > maxQueryLength {
		query = query[:maxQueryLength]
	}
	input.Query = query

	if input.SessionID == "" {
		input.SessionID = uuid.NewString()
	}
	if input.Limit <= 0 {
		input.Limit = u.defaultLimit
	}
	if input.Threshold <= 0 {
		input.Threshold = u.defaultThreshold
	}

	// Classification failure falls back to the general path; a broken
	// classifier must not take chat down with it.
	intent := domain.BestEffort(ctx, u.log, "classify intent", domain.GeneralQueryIntent(),
		func(ctx context.Context) (domain.QueryIntent, error) {
			return u.classifier.Classify(ctx, query)
		})

	// Prediction queries take the sports orchestration path; everything
	// else goes through document-priority retrieval.
	var items []domain.RetrievedItem
	systemPrompt := documentPrioritySystemPrompt
	if intent.IsPrediction() {
		items = u.sports.Execute(ctx, intent, query)
		systemPrompt = predictionSystemPrompt(input.PredictionType, input.ConfidenceLevel)
	} else {
		retrieved, err := u.retriever.Execute(ctx, RetrieveContextInput{
			Query:          query,
			Limit:          input.Limit,
			Threshold:      input.Threshold,
			AllowWebSearch: input.UseWebSearch,
			SearchEngine:   input.SearchEngine,
			BypassCache:    input.BypassCache,
		})
		if err != nil {
			u.log.Warn("retrieval failed, continuing without document context",
				slog.String("error", err.Error()))
		} else {
			items = retrieved.Items
		}
	}

	return &preparedTurn{
		input:        input,
		intent:       intent,
		items:        items,
		systemPrompt: systemPrompt,
		userPrompt:   fmt.Sprintf("Context:\n%s\n\nQuestion: %s", FormatContext(items), query),
	}, nil
}

func (u *chatUsecase) Execute(ctx context.Context, input ChatInput) (*ChatOutput, error) {
	turn, err := u.prepare(ctx, input)
	if err != nil {
		return nil, err
	}

	answer, err := u.llm.Generate(ctx, turn.systemPrompt, turn.userPrompt, domain.GenerateOptions{
		Temperature: 0.3,
	})
	if err != nil {
		return nil, fmt.Errorf("generation failed: %w", err)
	}

	return &ChatOutput{
		Answer:    answer,
		SessionID: turn.input.SessionID,
		Sources:   SourceRefs(turn.items),
		Intent:    turn.intent,
	}, nil
}

// Stream runs the pipeline and emits events: one meta, zero or more
// deltas, then done. Errors after meta arrive as error events on the same
// channel.
func (u *chatUsecase) Stream(ctx context.Context, input ChatInput) <-chan StreamEvent {
	events := make(chan StreamEvent, 4)
	go func() {
		defer close(events)

		turn, err := u.prepare(ctx, input)
		if err != nil {
			u.send(ctx, events, StreamEvent{Kind: StreamEventKindError, Payload: err.Error()})
			return
		}

		meta := StreamMeta{
			SessionID: turn.input.SessionID,
			Sources:   SourceRefs(turn.items),
			Intent:    turn.intent,
		}
		if !u.send(ctx, events, StreamEvent{Kind: StreamEventKindMeta, Payload: meta}) {
			return
		}

		chunks, errs, err := u.llm.GenerateStream(ctx, turn.systemPrompt, turn.userPrompt, domain.GenerateOptions{
			Temperature: 0.3,
		})
		if err != nil {
			u.send(ctx, events, StreamEvent{
				Kind:    StreamEventKindFallback,
				Payload: fmt.Sprintf("stream setup failed: %v", err),
			})
			return
		}

		var answer strings.Builder
		for chunks != nil || errs != nil {
			select {
			case <-ctx.Done():
				return
			case chunk, ok := <-chunks:
				if !ok {
					chunks = nil
					continue
				}
				answer.WriteString(chunk)
				if !u.send(ctx, events, StreamEvent{Kind: StreamEventKindDelta, Payload: chunk}) {
					return
				}
			case streamErr, ok := <-errs:
				if !ok {
					errs = nil
					continue
				}
				u.send(ctx, events, StreamEvent{
					Kind:    StreamEventKindError,
					Payload: fmt.Sprintf("stream failed: %v", streamErr),
				})
				return
			}
		}

		u.send(ctx, events, StreamEvent{
			Kind: StreamEventKindDone,
			Payload: &ChatOutput{
				Answer:    answer.String(),
				SessionID: turn.input.SessionID,
				Sources:   meta.Sources,
				Intent:    turn.intent,
			},
		})
	}()
	return events
}

func (u *chatUsecase) send(ctx context.Context, events chan<- StreamEvent, event StreamEvent) bool {
	select {
	case <-ctx.Done():
		return false
	case events <- event:
		return true
	}
}
