package usecase

import (
	"context"
	"errors"
	"testing"

	"rag-gateway/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeSportsData struct {
	games     []domain.GameSchedule
	schedErr  error
	oddsErr   error
	oddsCalls []string
}

func (f *fakeSportsData) GameSchedule(context.Context, string, string) ([]domain.GameSchedule, error) {
	return f.games, f.schedErr
}

func (f *fakeSportsData) GameOdds(_ context.Context, _ string, gameID string) ([]domain.GameSchedule, error) {
	f.oddsCalls = append(f.oddsCalls, gameID)
	if f.oddsErr != nil {
		return nil, f.oddsErr
	}
	for _, g := range f.games {
		if g.ID == gameID {
			return []domain.GameSchedule{g}, nil
		}
	}
	return nil, nil
}

type fakeStats struct {
	err   error
	calls []string
}

func (f *fakeStats) TeamStats(_ context.Context, team, sport string) (*domain.TeamStats, error) {
	f.calls = append(f.calls, team)
	if f.err != nil {
		return nil, f.err
	}
	return &domain.TeamStats{Team: team, Sport: sport, Wins: 30, Losses: 20, RecentForm: "W-W-L-W-L"}, nil
}

func (f *fakeStats) PlayerStats(context.Context, string, string, string) (*domain.PlayerStats, error) {
	return nil, errors.New("not used")
}

type fakeNews struct {
	items []domain.SportsNewsItem
	query string
}

func (f *fakeNews) News(_ context.Context, query string, _ int) ([]domain.SportsNewsItem, error) {
	f.query = query
	return f.items, nil
}

func predictionIntent() domain.QueryIntent {
	return domain.QueryIntent{
		Intent: domain.IntentPrediction,
		Sport:  "nba",
		Teams:  []string{"Lakers", "Celtics"},
	}
}

func games(ids ...string) []domain.GameSchedule {
	out := make([]domain.GameSchedule, 0, len(ids))
	for i, id := range ids {
		home, away := "Lakers", "Celtics"
		if i > 0 {
			home, away = "Warriors", "Suns"
		}
		out = append(out, domain.GameSchedule{ID: id, SportTitle: "NBA", HomeTeam: home, AwayTeam: away})
	}
	return out
}

func TestSportsPrediction_GathersAllSources(t *testing.T) {
	data := &fakeSportsData{games: games("g1")}
	stats := &fakeStats{}
	news := &fakeNews{items: []domain.SportsNewsItem{
		{Title: "Injury report", URL: "https://n.example", RelevanceScore: 0.8},
	}}
	searcher := &fakeSearcher{results: []domain.WebSearchResult{
		{Title: "coverage", URL: "https://c.example", Content: "recent coverage"},
	}}
	u := NewSportsPredictionUsecase(data, stats, news, searcher, domain.SubstringTeamMatcher{}, testLogger())

	items := u.Execute(context.Background(), predictionIntent(), "lakers vs celtics prediction")

	// 1 game + 2 team stats + 1 news + 1 web hit
	require.Len(t, items, 5)
	assert.Equal(t, []string{"Lakers", "Celtics"}, stats.calls)
	assert.Contains(t, news.query, "Lakers Celtics nba game prediction analysis injury report")
	for _, item := range items[:4] {
		assert.Equal(t, domain.SourceSportsData, item.SourceType)
	}
	assert.Equal(t, domain.SourceWebContent, items[4].SourceType)
}

func TestSportsPrediction_OddsLimitedToTwoGames(t *testing.T) {
	data := &fakeSportsData{games: []domain.GameSchedule{
		{ID: "g1", HomeTeam: "Lakers", AwayTeam: "Nets"},
		{ID: "g2", HomeTeam: "Celtics", AwayTeam: "Heat"},
		{ID: "g3", HomeTeam: "Lakers Reserves", AwayTeam: "Celtics Reserves"},
	}}
	u := NewSportsPredictionUsecase(data, &fakeStats{}, &fakeNews{}, &fakeSearcher{}, domain.SubstringTeamMatcher{}, testLogger())

	u.Execute(context.Background(), predictionIntent(), "q")

	assert.Equal(t, []string{"g1", "g2"}, data.oddsCalls)
}

func TestSportsPrediction_UnmatchedTeamsKeepFullSchedule(t *testing.T) {
	data := &fakeSportsData{games: []domain.GameSchedule{
		{ID: "g1", HomeTeam: "Warriors", AwayTeam: "Suns"},
	}}
	u := NewSportsPredictionUsecase(data, &fakeStats{}, &fakeNews{}, &fakeSearcher{}, domain.SubstringTeamMatcher{}, testLogger())

	items := u.Execute(context.Background(), predictionIntent(), "q")

	var gameItems int
	for _, item := range items {
		if item.ID == "game:g1" {
			gameItems++
		}
	}
	assert.Equal(t, 1, gameItems)
}

func TestSportsPrediction_StepFailuresDoNotAbort(t *testing.T) {
	data := &fakeSportsData{schedErr: errors.New("odds api down")}
	stats := &fakeStats{err: errors.New("stats down")}
	news := &fakeNews{items: []domain.SportsNewsItem{
		{Title: "Still works", URL: "https://n.example", RelevanceScore: 0.9},
	}}
	u := NewSportsPredictionUsecase(data, stats, news, &fakeSearcher{}, domain.SubstringTeamMatcher{}, testLogger())

	items := u.Execute(context.Background(), predictionIntent(), "q")

	require.Len(t, items, 1)
	assert.Equal(t, "news:https://n.example", items[0].ID)
}
