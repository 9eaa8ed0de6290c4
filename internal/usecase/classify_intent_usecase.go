package usecase

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"rag-gateway/internal/domain"
)

const classifySystemPrompt = `You classify user queries for a retrieval system.
Respond with a single JSON object and nothing else:
{"intent":"prediction"|"general_query","sport":"nba|nfl|mlb|nhl|soccer|...","teams":["..."],"date":"YYYY-MM-DD","factors":["..."]}

Use "prediction" only when the user asks about the outcome, odds or analysis
of a specific upcoming or recent sports game and names at least one team.
Leave sport, teams, date and factors empty for general_query.
Omit date when the user does not name one.`

type classifyIntentUsecase struct {
	llm domain.LLMClient
}

// NewClassifyIntentUsecase builds an IntentClassifier backed by the
// generation model in JSON mode.
func NewClassifyIntentUsecase(llm domain.LLMClient) domain.IntentClassifier {
	return &classifyIntentUsecase{llm: llm}
}

func (u *classifyIntentUsecase) Classify(ctx context.Context, query string) (domain.QueryIntent, error) {
	raw, err := u.llm.Generate(ctx, classifySystemPrompt, query, domain.GenerateOptions{
		MaxTokens:   200,
		Temperature: 0,
		JSONMode:    true,
	})
	if err != nil {
		return domain.GeneralQueryIntent(), fmt.Errorf("classification call failed: %w", err)
	}

	var intent domain.QueryIntent
	if err := json.Unmarshal([]byte(stripCodeFence(raw)), &intent); err != nil {
		return domain.GeneralQueryIntent(), fmt.Errorf("classification produced invalid json: %w", err)
	}

	if intent.Intent != domain.IntentPrediction && intent.Intent != domain.IntentGeneralQuery {
		return domain.GeneralQueryIntent(), fmt.Errorf("classification produced unknown intent %q", intent.Intent)
	}
	return intent, nil
}

// stripCodeFence tolerates models that wrap JSON in markdown fences
// despite JSON mode.
func stripCodeFence(s string) string {
	s = strings.TrimSpace(s)
	if strings.HasPrefix(s, "```") {
		s = strings.TrimPrefix(s, "```json")
		s = strings.TrimPrefix(s, "```")
		if idx := strings.LastIndex(s, "```"); idx >= 0 {
			s = s[:idx]
		}
	}
	return strings.TrimSpace(s)
}
