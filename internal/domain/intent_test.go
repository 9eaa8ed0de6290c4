package domain_test

import (
	"testing"

	"rag-gateway/internal/domain"

	"github.com/stretchr/testify/assert"
)

func TestQueryIntent_IsPrediction(t *testing.T) {
	tests := []struct {
		name   string
		intent domain.QueryIntent
		want   bool
	}{
		{
			name:   "full prediction intent",
			intent: domain.QueryIntent{Intent: domain.IntentPrediction, Sport: "basketball_nba", Teams: []string{"Lakers", "Celtics"}},
			want:   true,
		},
		{
			name:   "prediction without sport falls back",
			intent: domain.QueryIntent{Intent: domain.IntentPrediction, Teams: []string{"Lakers"}},
			want:   false,
		},
		{
			name:   "prediction without teams falls back",
			intent: domain.QueryIntent{Intent: domain.IntentPrediction, Sport: "basketball_nba"},
			want:   false,
		},
		{
			name:   "general query",
			intent: domain.GeneralQueryIntent(),
			want:   false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.intent.IsPrediction())
		})
	}
}

func TestSubstringTeamMatcher(t *testing.T) {
	m := domain.SubstringTeamMatcher{}

	assert.True(t, m.Matches("Los Angeles Lakers", []string{"Lakers"}))
	assert.True(t, m.Matches("Boston Celtics", []string{"lakers", "celtics"}))
	assert.False(t, m.Matches("Golden State Warriors", []string{"Lakers", "Celtics"}))
	assert.False(t, m.Matches("Los Angeles Lakers", nil))
	assert.False(t, m.Matches("Los Angeles Lakers", []string{"  "}))
}

func TestHashQuery_Normalizes(t *testing.T) {
	a := domain.HashQuery("  Lakers Celtics  ", domain.EngineDuckDuckGo, 5)
	b := domain.HashQuery("lakers celtics", domain.EngineDuckDuckGo, 5)
	c := domain.HashQuery("lakers celtics", domain.EngineDuckDuckGo, 10)

	assert.Equal(t, a, b)
	assert.NotEqual(t, a, c)
	assert.Len(t, a, 64)
}
