package services

import (
	"context"
	"strings"

	"github.com/ellavondegurechaff/pitytrack/trackbot/database/models"
	"github.com/ellavondegurechaff/pitytrack/trackbot/database/repositories"
	"github.com/ellavondegurechaff/pitytrack/trackbot/results"
)

type CurrencyService struct {
	repo repositories.CurrencyRepository
}

func NewCurrencyService(repo repositories.CurrencyRepository) *CurrencyService {
	return &CurrencyService{repo: repo}
}

func (s *CurrencyService) Install(ctx context.Context, gameID, currency, pullTokens int64) results.Result[*models.GameCurrency] {
	if gameID <= 0 {
		return results.Fail[*models.GameCurrency]("EMPTY_GAME_ID", "A game is required to install currency tracking", "")
	}
	if currency < 0 || pullTokens < 0 {
		return results.Fail[*models.GameCurrency]("INVALID_AMOUNT", "Starting amounts cannot be negative", "")
	}

	res := s.repo.Install(ctx, gameID, currency, pullTokens)
	if !res.Success && res.Code != "GAME_NOT_FOUND" && res.Code != "CURRENCY_ALREADY_INSTALLED" {
		return results.Recode[*models.GameCurrency]("INSTALL_CURRENCY_FAILED", res)
	}
	return res
}

func (s *CurrencyService) Status(ctx context.Context, gameID int64) results.Result[*models.GameCurrency] {
	if gameID <= 0 {
		return results.Fail[*models.GameCurrency]("EMPTY_GAME_ID", "A game is required", "")
	}
	return s.repo.GetByGame(ctx, gameID)
}

func (s *CurrencyService) SetGoal(ctx context.Context, gameID, goal int64) results.Result[struct{}] {
	if gameID <= 0 {
		return results.Fail[struct{}]("EMPTY_GAME_ID", "A game is required", "")
	}
	if goal <= 0 {
		return results.Fail[struct{}]("INVALID_AMOUNT", "Goal must be positive", "")
	}
	return s.repo.SetGoal(ctx, gameID, goal)
}

func (s *CurrencyService) UnsetGoal(ctx context.Context, gameID int64) results.Result[struct{}] {
	if gameID <= 0 {
		return results.Fail[struct{}]("EMPTY_GAME_ID", "A game is required", "")
	}
	return s.repo.UnsetGoal(ctx, gameID)
}

// Adjust applies a signed currency delta with an optional note for the
// audit log.
func (s *CurrencyService) Adjust(ctx context.Context, gameID, delta int64, note string) results.Result[struct{}] {
	if gameID <= 0 {
		return results.Fail[struct{}]("EMPTY_GAME_ID", "A game is required", "")
	}
	if delta == 0 {
		return results.Fail[struct{}]("INVALID_AMOUNT", "Adjustment cannot be zero", "")
	}
	return s.repo.AddAmount(ctx, gameID, delta, strings.TrimSpace(note))
}

func (s *CurrencyService) AdjustTokens(ctx context.Context, gameID, delta int64, note string) results.Result[struct{}] {
	if gameID <= 0 {
		return results.Fail[struct{}]("EMPTY_GAME_ID", "A game is required", "")
	}
	if delta == 0 {
		return results.Fail[struct{}]("INVALID_AMOUNT", "Adjustment cannot be zero", "")
	}
	return s.repo.AddTokens(ctx, gameID, delta, strings.TrimSpace(note))
}

func (s *CurrencyService) History(ctx context.Context, gameID int64, limit int) results.Result[[]*models.CurrencyLog] {
	if gameID <= 0 {
		return results.Fail[[]*models.CurrencyLog]("EMPTY_GAME_ID", "A game is required", "")
	}
	if limit <= 0 {
		limit = 10
	}
	return s.repo.GetLogs(ctx, gameID, limit)
}
