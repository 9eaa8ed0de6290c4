package domain

import "context"

// GameSchedule is one scheduled (or in-play) game, optionally with
// bookmaker odds attached.
type GameSchedule struct {
	ID           string
	SportKey     string
	SportTitle   string
	CommenceTime string // RFC3339
	HomeTeam     string
	AwayTeam     string
	Bookmakers   []Bookmaker
}

// Bookmaker carries one bookmaker's markets for a game.
type Bookmaker struct {
	Key        string
	Title      string
	LastUpdate string
	Markets    []Market
}

// Market is a betting market: "h2h" (moneyline), "spreads" or "totals".
type Market struct {
	Key        string
	LastUpdate string
	Outcomes   []Outcome
}

// Outcome is one priced side of a market. Price is in American odds
// format; Point is set for spreads and totals.
type Outcome struct {
	Name  string
	Price float64
	Point *float64
}

// TeamStats summarizes a team's season record and recent form.
type TeamStats struct {
	Team                 string
	Sport                string
	Season               string
	Wins                 int
	Losses               int
	PointsPerGame        float64
	PointsAllowedPerGame float64
	RecentForm           string // e.g. "W-L-W-W-L"
	LastUpdated          string
}

// PlayerStats summarizes one player's season averages and availability.
type PlayerStats struct {
	Player          string
	Team            string
	Sport           string
	Season          string
	Position        string
	GamesPlayed     int
	PointsPerGame   float64
	ReboundsPerGame float64
	AssistsPerGame  float64
	InjuryStatus    string
	LastUpdated     string
}

// SportsNewsItem is one news/analysis hit relevant to a query.
type SportsNewsItem struct {
	Title          string
	Summary        string
	URL            string
	PublishedDate  string
	Source         string
	RelevanceScore float64
}

// SportsDataClient fetches schedules and odds from an external provider.
type SportsDataClient interface {
	GameSchedule(ctx context.Context, sport, date string) ([]GameSchedule, error)
	GameOdds(ctx context.Context, sport, gameID string) ([]GameSchedule, error)
}

// StatsClient fetches team and player statistics.
type StatsClient interface {
	TeamStats(ctx context.Context, team, sport string) (*TeamStats, error)
	PlayerStats(ctx context.Context, player, sport, team string) (*PlayerStats, error)
}

// SportsNewsClient fetches news and expert analysis for a text query.
type SportsNewsClient interface {
	News(ctx context.Context, query string, maxResults int) ([]SportsNewsItem, error)
}
