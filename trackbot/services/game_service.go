package services

import (
	"context"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/ellavondegurechaff/pitytrack/trackbot/database/models"
	"github.com/ellavondegurechaff/pitytrack/trackbot/database/repositories"
	"github.com/ellavondegurechaff/pitytrack/trackbot/results"
)

type GameService struct {
	games    repositories.GameRepository
	banners  repositories.BannerRepository
	currency repositories.CurrencyRepository
}

func NewGameService(games repositories.GameRepository, banners repositories.BannerRepository, currency repositories.CurrencyRepository) *GameService {
	return &GameService{games: games, banners: banners, currency: currency}
}

func (s *GameService) CreateGame(ctx context.Context, name, channelID string) results.Result[*models.Game] {
	name = strings.TrimSpace(name)
	if name == "" {
		return results.Fail[*models.Game]("EMPTY_GAME_NAME", "Game name cannot be empty", "")
	}
	if channelID == "" {
		return results.Fail[*models.Game]("EMPTY_CHANNEL_ID", "A channel is required to register a game", "")
	}

	res := s.games.Add(ctx, name, channelID)
	if !res.Success && res.Code != "GAME_ALREADY_EXISTS" {
		return results.Recode[*models.Game]("CREATE_GAME_FAILED", res)
	}
	return res
}

func (s *GameService) GetGameForChannel(ctx context.Context, channelID string) results.Result[*models.Game] {
	if channelID == "" {
		return results.Fail[*models.Game]("EMPTY_CHANNEL_ID", "A channel is required", "")
	}
	return s.games.GetByChannelID(ctx, channelID)
}

func (s *GameService) ListGames(ctx context.Context) results.Result[[]*models.Game] {
	return s.games.List(ctx)
}

func (s *GameService) RenameGame(ctx context.Context, id int64, newName string) results.Result[struct{}] {
	if id <= 0 {
		return results.Fail[struct{}]("EMPTY_GAME_ID", "A game is required", "")
	}
	newName = strings.TrimSpace(newName)
	if newName == "" {
		return results.Fail[struct{}]("EMPTY_GAME_NAME", "Game name cannot be empty", "")
	}

	res := s.games.Rename(ctx, id, newName)
	if !res.Success && res.Code != "GAME_NOT_FOUND" {
		return results.Recode[struct{}]("RENAME_GAME_FAILED", res)
	}
	return res
}

func (s *GameService) DeleteGame(ctx context.Context, id int64) results.Result[struct{}] {
	if id <= 0 {
		return results.Fail[struct{}]("EMPTY_GAME_ID", "A game is required", "")
	}

	res := s.games.Delete(ctx, id)
	if !res.Success && res.Code != "GAME_NOT_FOUND" && res.Code != "GAME_HAS_BANNERS" {
		return results.Recode[struct{}]("DELETE_GAME_FAILED", res)
	}
	return res
}

// GameSummary is the per-game overview shown by the game info command.
// Currency is nil when tracking is not installed for the game.
type GameSummary struct {
	Game     *models.Game
	Banners  []*models.Banner
	Currency *models.GameCurrency
}

// Summary fetches the game's banners and currency concurrently. A missing
// banner list or uninstalled currency is not a failure; the summary just
// carries the empty slots.
func (s *GameService) Summary(ctx context.Context, id int64) results.Result[*GameSummary] {
	if id <= 0 {
		return results.Fail[*GameSummary]("EMPTY_GAME_ID", "A game is required", "")
	}

	gameRes := s.games.Get(ctx, id)
	if !gameRes.Success {
		return results.Recode[*GameSummary](gameRes.Code, gameRes)
	}

	summary := &GameSummary{Game: gameRes.Data}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		if res := s.banners.GetByGame(gctx, id); res.Success {
			summary.Banners = res.Data
		}
		return nil
	})
	g.Go(func() error {
		if res := s.currency.GetByGame(gctx, id); res.Success {
			summary.Currency = res.Data
		}
		return nil
	})
	_ = g.Wait()

	return results.Ok("GAME_SUMMARY_RETRIEVED", "Game summary assembled", summary)
}
