package domain

import (
	"context"
	"strings"
)

// Intent classifies what retrieval strategy a user query should take.
type Intent string

const (
	IntentPrediction   Intent = "prediction"
	IntentGeneralQuery Intent = "general_query"
)

// QueryIntent is the classifier output. Sport, Teams, Date and Factors are
// populated only for prediction intents.
type QueryIntent struct {
	Intent  Intent   `json:"intent"`
	Sport   string   `json:"sport,omitempty"`
	Teams   []string `json:"teams,omitempty"`
	Date    string   `json:"date,omitempty"`
	Factors []string `json:"factors,omitempty"`
}

// IsPrediction reports whether the prediction path can activate: the
// intent must name a sport and at least one team, otherwise callers fall
// back to the general/document path.
func (q QueryIntent) IsPrediction() bool {
	return q.Intent == IntentPrediction && q.Sport != "" && len(q.Teams) > 0
}

// GeneralQueryIntent is the safe default used when classification fails.
func GeneralQueryIntent() QueryIntent {
	return QueryIntent{Intent: IntentGeneralQuery}
}

// IntentClassifier determines whether a query asks for a sports prediction
// or general knowledge.
type IntentClassifier interface {
	Classify(ctx context.Context, query string) (QueryIntent, error)
}

// TeamMatcher decides whether a scheduled game involves one of the teams
// named in a query. It is a pluggable strategy so the approximate default
// can be swapped for a stricter matcher without touching the orchestrator.
type TeamMatcher interface {
	Matches(gameTeam string, queryTeams []string) bool
}

// SubstringTeamMatcher matches by case-insensitive substring containment.
// Known approximation: short or common nicknames can mis-fire.
type SubstringTeamMatcher struct{}

func (SubstringTeamMatcher) Matches(gameTeam string, queryTeams []string) bool {
	lower := strings.ToLower(gameTeam)
	for _, team := range queryTeams {
		t := strings.ToLower(strings.TrimSpace(team))
		if t != "" && strings.Contains(lower, t) {
			return true
		}
	}
	return false
}

var _ TeamMatcher = SubstringTeamMatcher{}
