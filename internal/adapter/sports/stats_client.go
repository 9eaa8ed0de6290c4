package sports

import (
	"context"
	"fmt"
	"hash/fnv"
	"math/rand"
	"strings"
	"time"

	"rag-gateway/internal/domain"
)

// SyntheticStatsClient produces deterministic, plausible statistics
// derived from the team or player name. The same name always yields the
// same numbers, so formatted context stays stable across a session. It
// stands in until a licensed stats feed is available.
type SyntheticStatsClient struct {
	Season string
}

func NewSyntheticStatsClient() *SyntheticStatsClient {
	year := time.Now().Year()
	return &SyntheticStatsClient{
		Season: fmt.Sprintf("%d-%d", year-1, year),
	}
}

func seededRand(parts ...string) *rand.Rand {
	h := fnv.New64a()
	for _, p := range parts {
		_, _ = h.Write([]byte(strings.ToLower(strings.TrimSpace(p))))
		_, _ = h.Write([]byte{'|'})
	}
	return rand.New(rand.NewSource(int64(h.Sum64())))
}

func recentForm(r *rand.Rand, winRate float64) string {
	marks := make([]string, 5)
	for i := range marks {
		if r.Float64() < winRate {
			marks[i] = "W"
		} else {
			marks[i] = "L"
		}
	}
	return strings.Join(marks, "-")
}

func (c *SyntheticStatsClient) TeamStats(_ context.Context, team, sport string) (*domain.TeamStats, error) {
	if strings.TrimSpace(team) == "" {
		return nil, fmt.Errorf("team name is empty")
	}
	r := seededRand(team, sport)

	gamesPlayed := 40 + r.Intn(30)
	winRate := 0.3 + r.Float64()*0.4
	wins := int(float64(gamesPlayed) * winRate)

	return &domain.TeamStats{
		Team:                 team,
		Sport:                sport,
		Season:               c.Season,
		Wins:                 wins,
		Losses:               gamesPlayed - wins,
		PointsPerGame:        95 + r.Float64()*25,
		PointsAllowedPerGame: 95 + r.Float64()*25,
		RecentForm:           recentForm(r, winRate),
		LastUpdated:          time.Now().UTC().Format(time.RFC3339),
	}, nil
}

func (c *SyntheticStatsClient) PlayerStats(_ context.Context, player, sport, team string) (*domain.PlayerStats, error) {
	if strings.TrimSpace(player) == "" {
		return nil, fmt.Errorf("player name is empty")
	}
	r := seededRand(player, sport, team)

	positions := []string{"G", "F", "C", "G-F", "F-C"}
	injuries := []string{"healthy", "healthy", "healthy", "questionable", "day-to-day"}

	return &domain.PlayerStats{
		Player:          player,
		Team:            team,
		Sport:           sport,
		Season:          c.Season,
		Position:        positions[r.Intn(len(positions))],
		GamesPlayed:     30 + r.Intn(40),
		PointsPerGame:   8 + r.Float64()*22,
		ReboundsPerGame: 2 + r.Float64()*9,
		AssistsPerGame:  1 + r.Float64()*8,
		InjuryStatus:    injuries[r.Intn(len(injuries))],
		LastUpdated:     time.Now().UTC().Format(time.RFC3339),
	}, nil
}

var _ domain.StatsClient = (*SyntheticStatsClient)(nil)
