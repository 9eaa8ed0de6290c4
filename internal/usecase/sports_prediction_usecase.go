package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"rag-gateway/internal/adapter/sports"
	"rag-gateway/internal/domain"
)

const (
	maxOddsGames     = 2
	maxBookmakers    = 3
	maxStatsTeams    = 2
	maxNewsItems     = 3
	maxSportsWebHits = 2
	sportsDataScore  = 0.9
	sportsWebScore   = 0.65
)

// SportsPredictionUsecase gathers live context for a prediction query:
// schedule, odds, team statistics, news and recent web coverage. Every
// step is best-effort; whatever was gathered is returned even when other
// sources fail.
type SportsPredictionUsecase interface {
	Execute(ctx context.Context, intent domain.QueryIntent, originalQuery string) []domain.RetrievedItem
}

type sportsPredictionUsecase struct {
	data     domain.SportsDataClient
	stats    domain.StatsClient
	news     domain.SportsNewsClient
	searcher domain.WebSearcher
	matcher  domain.TeamMatcher
	log      *slog.Logger
}

func NewSportsPredictionUsecase(
	data domain.SportsDataClient,
	stats domain.StatsClient,
	news domain.SportsNewsClient,
	searcher domain.WebSearcher,
	matcher domain.TeamMatcher,
	log *slog.Logger,
) SportsPredictionUsecase {
	return &sportsPredictionUsecase{
		data:     data,
		stats:    stats,
		news:     news,
		searcher: searcher,
		matcher:  matcher,
		log:      log,
	}
}

func (u *sportsPredictionUsecase) Execute(ctx context.Context, intent domain.QueryIntent, originalQuery string) []domain.RetrievedItem {
	var items []domain.RetrievedItem

	games := u.gatherSchedule(ctx, intent)
	items = append(items, u.gatherOdds(ctx, intent, games)...)
	items = append(items, u.gatherTeamStats(ctx, intent)...)
	items = append(items, u.gatherNews(ctx, intent)...)
	items = append(items, u.gatherWebCoverage(ctx, originalQuery)...)

	u.log.Info("sports context gathered",
		slog.String("sport", intent.Sport),
		slog.Int("items", len(items)))
	return items
}

// gatherSchedule lists the sport's games and keeps the ones involving a
// queried team. When the filter matches nothing the unfiltered schedule
// is kept so odds lookup still has candidates.
func (u *sportsPredictionUsecase) gatherSchedule(ctx context.Context, intent domain.QueryIntent) []domain.GameSchedule {
	games := domain.BestEffort(ctx, u.log, "fetch game schedule", nil,
		func(ctx context.Context) ([]domain.GameSchedule, error) {
			return u.data.GameSchedule(ctx, intent.Sport, intent.Date)
		})

	var matched []domain.GameSchedule
	for _, game := range games {
		if u.matcher.Matches(game.HomeTeam, intent.Teams) || u.matcher.Matches(game.AwayTeam, intent.Teams) {
			matched = append(matched, game)
		}
	}
	if len(matched) == 0 {
		return games
	}
	return matched
}

func (u *sportsPredictionUsecase) gatherOdds(ctx context.Context, intent domain.QueryIntent, games []domain.GameSchedule) []domain.RetrievedItem {
	var items []domain.RetrievedItem
	for i, game := range games {
		if i >= maxOddsGames {
			break
		}

		priced := domain.BestEffort(ctx, u.log, "fetch game odds", nil,
			func(ctx context.Context) ([]domain.GameSchedule, error) {
				return u.data.GameOdds(ctx, intent.Sport, game.ID)
			})

		target := game
		if len(priced) > 0 {
			target = priced[0]
		}
		items = append(items, domain.RetrievedItem{
			ID:           "game:" + game.ID,
			Content:      formatGame(target),
			Similarity:   sportsDataScore,
			SourceType:   domain.SourceSportsData,
			OriginID:     game.ID,
			OriginTitle:  fmt.Sprintf("%s @ %s", target.AwayTeam, target.HomeTeam),
			PositionHint: -1,
		})
	}
	return items
}

func (u *sportsPredictionUsecase) gatherTeamStats(ctx context.Context, intent domain.QueryIntent) []domain.RetrievedItem {
	var items []domain.RetrievedItem
	for i, team := range intent.Teams {
		if i >= maxStatsTeams {
			break
		}

		stats := domain.BestEffort(ctx, u.log, "fetch team stats", nil,
			func(ctx context.Context) (*domain.TeamStats, error) {
				return u.stats.TeamStats(ctx, team, intent.Sport)
			})
		if stats == nil {
			continue
		}
		items = append(items, domain.RetrievedItem{
			ID:           "stats:" + strings.ToLower(team),
			Content:      formatTeamStats(stats),
			Similarity:   sportsDataScore,
			SourceType:   domain.SourceSportsData,
			OriginID:     team,
			OriginTitle:  team + " season statistics",
			PositionHint: -1,
		})
	}
	return items
}

func (u *sportsPredictionUsecase) gatherNews(ctx context.Context, intent domain.QueryIntent) []domain.RetrievedItem {
	query := fmt.Sprintf("%s %s game prediction analysis injury report",
		strings.Join(intent.Teams, " "), intent.Sport)

	news := domain.BestEffort(ctx, u.log, "fetch sports news", nil,
		func(ctx context.Context) ([]domain.SportsNewsItem, error) {
			return u.news.News(ctx, query, maxNewsItems)
		})

	var items []domain.RetrievedItem
	for _, item := range news {
		items = append(items, domain.RetrievedItem{
			ID:           "news:" + item.URL,
			Content:      item.Title + ": " + item.Summary,
			Similarity:   item.RelevanceScore,
			SourceType:   domain.SourceSportsData,
			OriginID:     item.URL,
			OriginTitle:  item.Title,
			PositionHint: -1,
		})
	}
	return items
}

func (u *sportsPredictionUsecase) gatherWebCoverage(ctx context.Context, originalQuery string) []domain.RetrievedItem {
	results := domain.BestEffort(ctx, u.log, "fetch web coverage", nil,
		func(ctx context.Context) ([]domain.WebSearchResult, error) {
			return u.searcher.Search(ctx, domain.WebSearchOptions{
				Query:          originalQuery,
				MaxResults:     maxSportsWebHits,
				IncludeContent: true,
				TimeRange:      domain.TimeRangeDay,
			})
		})

	var items []domain.RetrievedItem
	for _, res := range results {
		item := webResultToItem(res)
		item.Similarity = sportsWebScore
		items = append(items, item)
	}
	return items
}

func formatGame(game domain.GameSchedule) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s: %s @ %s, starts %s.", game.SportTitle, game.AwayTeam, game.HomeTeam, game.CommenceTime)

	for i, bm := range game.Bookmakers {
		if i >= maxBookmakers {
			break
		}
		fmt.Fprintf(&b, "\n%s:", bm.Title)
		for _, market := range bm.Markets {
			fmt.Fprintf(&b, " [%s]", market.Key)
			for _, outcome := range market.Outcomes {
				if outcome.Point != nil {
					fmt.Fprintf(&b, " %s %+.1f (%s)", outcome.Name, *outcome.Point, sports.FormatAmericanOdds(outcome.Price))
				} else {
					fmt.Fprintf(&b, " %s (%s)", outcome.Name, sports.FormatAmericanOdds(outcome.Price))
				}
			}
		}
	}
	return b.String()
}

func formatTeamStats(stats *domain.TeamStats) string {
	return fmt.Sprintf("%s (%s, %s season): %d-%d, %.1f points per game, %.1f allowed, last five %s.",
		stats.Team, stats.Sport, stats.Season,
		stats.Wins, stats.Losses,
		stats.PointsPerGame, stats.PointsAllowedPerGame,
		stats.RecentForm)
}
