package sports

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"rag-gateway/internal/domain"
	"rag-gateway/internal/infra/httpclient"
)

// sportKeys maps the short sport names produced by intent classification
// to The Odds API sport keys.
var sportKeys = map[string]string{
	"nba":    "basketball_nba",
	"ncaab":  "basketball_ncaab",
	"nfl":    "americanfootball_nfl",
	"ncaaf":  "americanfootball_ncaaf",
	"mlb":    "baseball_mlb",
	"nhl":    "icehockey_nhl",
	"soccer": "soccer_epl",
	"mma":    "mma_mixed_martial_arts",
}

// OddsClient fetches schedules and bookmaker odds from The Odds API.
// Without an API key every call returns ErrNotConfigured.
type OddsClient struct {
	BaseURL string
	APIKey  string
	Client  *http.Client
}

func NewOddsClient(baseURL, apiKey string, timeout time.Duration) *OddsClient {
	return &OddsClient{
		BaseURL: strings.TrimRight(baseURL, "/"),
		APIKey:  apiKey,
		Client:  httpclient.NewPooledClient(timeout),
	}
}

type oddsAPIEvent struct {
	ID           string `json:"id"`
	SportKey     string `json:"sport_key"`
	SportTitle   string `json:"sport_title"`
	CommenceTime string `json:"commence_time"`
	HomeTeam     string `json:"home_team"`
	AwayTeam     string `json:"away_team"`
	Bookmakers   []struct {
		Key        string `json:"key"`
		Title      string `json:"title"`
		LastUpdate string `json:"last_update"`
		Markets    []struct {
			Key        string `json:"key"`
			LastUpdate string `json:"last_update"`
			Outcomes   []struct {
				Name  string   `json:"name"`
				Price float64  `json:"price"`
				Point *float64 `json:"point"`
			} `json:"outcomes"`
		} `json:"markets"`
	} `json:"bookmakers"`
}

func (c *OddsClient) resolveSportKey(sport string) string {
	if key, ok := sportKeys[strings.ToLower(strings.TrimSpace(sport))]; ok {
		return key
	}
	return sport
}

func (c *OddsClient) get(ctx context.Context, path string, params url.Values) ([]oddsAPIEvent, error) {
	if c.APIKey == "" {
		return nil, fmt.Errorf("odds api: %w", domain.ErrNotConfigured)
	}
	params.Set("apiKey", c.APIKey)
	params.Set("dateFormat", "iso")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.BaseURL+path+"?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := c.Client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("odds api request failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("odds api returned status %d", resp.StatusCode)
	}

	var events []oddsAPIEvent
	if err := json.NewDecoder(resp.Body).Decode(&events); err != nil {
		return nil, fmt.Errorf("failed to decode odds api response: %w", err)
	}
	return events, nil
}

// GameSchedule lists events for a sport. The events endpoint has no date
// parameter, so the date filter (YYYY-MM-DD, empty means all) is applied
// client-side against the commence time.
func (c *OddsClient) GameSchedule(ctx context.Context, sport, date string) ([]domain.GameSchedule, error) {
	events, err := c.get(ctx, fmt.Sprintf("/sports/%s/events", c.resolveSportKey(sport)), url.Values{})
	if err != nil {
		return nil, err
	}

	var games []domain.GameSchedule
	for _, ev := range events {
		if date != "" && !strings.HasPrefix(ev.CommenceTime, date) {
			continue
		}
		games = append(games, toGameSchedule(ev))
	}
	return games, nil
}

// GameOdds fetches h2h, spreads and totals markets for one event, priced
// in American odds from US-region bookmakers.
func (c *OddsClient) GameOdds(ctx context.Context, sport, gameID string) ([]domain.GameSchedule, error) {
	params := url.Values{}
	params.Set("regions", "us")
	params.Set("markets", "h2h,spreads,totals")
	params.Set("oddsFormat", "american")
	params.Set("eventIds", gameID)

	events, err := c.get(ctx, fmt.Sprintf("/sports/%s/odds", c.resolveSportKey(sport)), params)
	if err != nil {
		return nil, err
	}

	games := make([]domain.GameSchedule, 0, len(events))
	for _, ev := range events {
		games = append(games, toGameSchedule(ev))
	}
	return games, nil
}

func toGameSchedule(ev oddsAPIEvent) domain.GameSchedule {
	game := domain.GameSchedule{
		ID:           ev.ID,
		SportKey:     ev.SportKey,
		SportTitle:   ev.SportTitle,
		CommenceTime: ev.CommenceTime,
		HomeTeam:     ev.HomeTeam,
		AwayTeam:     ev.AwayTeam,
	}
	for _, bm := range ev.Bookmakers {
		bookmaker := domain.Bookmaker{Key: bm.Key, Title: bm.Title, LastUpdate: bm.LastUpdate}
		for _, mk := range bm.Markets {
			market := domain.Market{Key: mk.Key, LastUpdate: mk.LastUpdate}
			for _, out := range mk.Outcomes {
				market.Outcomes = append(market.Outcomes, domain.Outcome{
					Name:  out.Name,
					Price: out.Price,
					Point: out.Point,
				})
			}
			bookmaker.Markets = append(bookmaker.Markets, market)
		}
		game.Bookmakers = append(game.Bookmakers, bookmaker)
	}
	return game
}

// FormatAmericanOdds renders an American price with its explicit sign.
func FormatAmericanOdds(price float64) string {
	if price > 0 {
		return fmt.Sprintf("+%.0f", price)
	}
	return fmt.Sprintf("%.0f", price)
}

var _ domain.SportsDataClient = (*OddsClient)(nil)
