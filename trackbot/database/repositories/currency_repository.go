package repositories

import (
	"context"
	"database/sql"
	"time"

	"github.com/ellavondegurechaff/pitytrack/trackbot/database/models"
	"github.com/ellavondegurechaff/pitytrack/trackbot/results"
	"github.com/uptrace/bun"
)

type CurrencyRepository interface {
	Install(ctx context.Context, gameID, currency, pullTokens int64) results.Result[*models.GameCurrency]
	GetByGame(ctx context.Context, gameID int64) results.Result[*models.GameCurrency]
	SetGoal(ctx context.Context, gameID, goal int64) results.Result[struct{}]
	UnsetGoal(ctx context.Context, gameID int64) results.Result[struct{}]
	AddAmount(ctx context.Context, gameID, delta int64, note string) results.Result[struct{}]
	AddTokens(ctx context.Context, gameID, delta int64, note string) results.Result[struct{}]
	GetLogs(ctx context.Context, gameID int64, limit int) results.Result[[]*models.CurrencyLog]
}

type currencyRepository struct {
	BaseRepository
}

func NewCurrencyRepository(db *bun.DB) CurrencyRepository {
	return &currencyRepository{BaseRepository: NewBaseRepository(db)}
}

func (r *currencyRepository) Install(ctx context.Context, gameID, currency, pullTokens int64) results.Result[*models.GameCurrency] {
	if !r.connGuard() {
		return connFail[*models.GameCurrency]()
	}

	gameExists, err := r.db.NewSelect().
		Model((*models.Game)(nil)).
		Where("id = ?", gameID).
		Exists(ctx)
	if err != nil {
		return results.Fail[*models.GameCurrency]("GAME_EXISTS_CHECK_FAILED", "Could not check for the game", errString(err))
	}
	if !gameExists {
		return results.Fail[*models.GameCurrency]("GAME_NOT_FOUND", "Game does not exist", "")
	}

	installed, err := r.db.NewSelect().
		Model((*models.GameCurrency)(nil)).
		Where("game_id = ?", gameID).
		Exists(ctx)
	if err != nil {
		return results.Fail[*models.GameCurrency]("CURRENCY_EXISTS_CHECK_FAILED", "Could not check for installed currency", errString(err))
	}
	if installed {
		return results.Fail[*models.GameCurrency]("CURRENCY_ALREADY_INSTALLED", "Currency tracking is already installed for this game", "")
	}

	gc := &models.GameCurrency{
		GameID:     gameID,
		Currency:   currency,
		PullTokens: pullTokens,
		UpdatedAt:  time.Now().UTC(),
	}

	err = r.RunInTx(ctx, func(ctx context.Context, tx bun.Tx) error {
		if _, err := tx.NewInsert().Model(gc).Exec(ctx); err != nil {
			return err
		}
		return insertLog(ctx, tx, gameID, "install", currency, "")
	})
	if err != nil {
		return results.Fail[*models.GameCurrency]("CURRENCY_INSERT_FAILED", "Failed to install currency tracking", errString(err))
	}

	return results.Ok("CURRENCY_INSTALLED", "Currency tracking installed", gc)
}

func (r *currencyRepository) GetByGame(ctx context.Context, gameID int64) results.Result[*models.GameCurrency] {
	if !r.connGuard() {
		return connFail[*models.GameCurrency]()
	}

	gc := new(models.GameCurrency)
	err := r.db.NewSelect().
		Model(gc).
		Where("game_id = ?", gameID).
		Scan(ctx)
	if err != nil {
		if isNoRows(err) {
			return results.Fail[*models.GameCurrency]("NO_CURRENCY_FOUND", "Currency tracking is not installed for this game", "")
		}
		return results.Fail[*models.GameCurrency]("CURRENCY_FETCH_FAILED", "Failed to fetch currency info", errString(err))
	}

	return results.Ok("CURRENCY_RETRIEVED", "Currency info fetched", gc)
}

func (r *currencyRepository) SetGoal(ctx context.Context, gameID, goal int64) results.Result[struct{}] {
	return r.update(ctx, gameID, "set_goal", goal, func(q *bun.UpdateQuery) *bun.UpdateQuery {
		return q.Set("goal = ?", goal)
	})
}

func (r *currencyRepository) UnsetGoal(ctx context.Context, gameID int64) results.Result[struct{}] {
	return r.update(ctx, gameID, "unset_goal", 0, func(q *bun.UpdateQuery) *bun.UpdateQuery {
		return q.Set("goal = NULL")
	})
}

func (r *currencyRepository) AddAmount(ctx context.Context, gameID, delta int64, note string) results.Result[struct{}] {
	return r.updateWithNote(ctx, gameID, "add_amount", delta, note, func(q *bun.UpdateQuery) *bun.UpdateQuery {
		return q.Set("currency = currency + ?", delta)
	})
}

func (r *currencyRepository) AddTokens(ctx context.Context, gameID, delta int64, note string) results.Result[struct{}] {
	return r.updateWithNote(ctx, gameID, "add_tokens", delta, note, func(q *bun.UpdateQuery) *bun.UpdateQuery {
		return q.Set("pull_tokens = pull_tokens + ?", delta)
	})
}

func (r *currencyRepository) update(ctx context.Context, gameID int64, action string, amount int64, set func(*bun.UpdateQuery) *bun.UpdateQuery) results.Result[struct{}] {
	return r.updateWithNote(ctx, gameID, action, amount, "", set)
}

func (r *currencyRepository) updateWithNote(ctx context.Context, gameID int64, action string, amount int64, note string, set func(*bun.UpdateQuery) *bun.UpdateQuery) results.Result[struct{}] {
	if !r.connGuard() {
		return connFail[struct{}]()
	}

	installed, err := r.db.NewSelect().
		Model((*models.GameCurrency)(nil)).
		Where("game_id = ?", gameID).
		Exists(ctx)
	if err != nil {
		return results.Fail[struct{}]("CURRENCY_EXISTS_CHECK_FAILED", "Could not check for installed currency", errString(err))
	}
	if !installed {
		return results.Fail[struct{}]("NO_CURRENCY_FOUND", "Currency tracking is not installed for this game", "")
	}

	err = r.RunInTx(ctx, func(ctx context.Context, tx bun.Tx) error {
		q := tx.NewUpdate().
			Model((*models.GameCurrency)(nil)).
			Set("updated_at = ?", time.Now().UTC()).
			Where("game_id = ?", gameID)
		res, err := set(q).Exec(ctx)
		if err != nil {
			return err
		}
		if rowsAffected(res) == 0 {
			return sql.ErrNoRows
		}
		return insertLog(ctx, tx, gameID, action, amount, note)
	})
	if err != nil {
		return results.Fail[struct{}]("CURRENCY_UPDATE_FAILED", "Failed to update currency", errString(err))
	}

	return results.OkMsg[struct{}]("CURRENCY_UPDATED", "Currency updated")
}

func (r *currencyRepository) GetLogs(ctx context.Context, gameID int64, limit int) results.Result[[]*models.CurrencyLog] {
	if !r.connGuard() {
		return connFail[[]*models.CurrencyLog]()
	}

	var logs []*models.CurrencyLog
	err := r.db.NewSelect().
		Model(&logs).
		Where("game_id = ?", gameID).
		Order("created_at DESC").
		Limit(limit).
		Scan(ctx)
	if err != nil {
		return results.Fail[[]*models.CurrencyLog]("CURRENCY_LOG_FAILED", "Failed to list currency logs", errString(err))
	}
	if len(logs) == 0 {
		return results.Fail[[]*models.CurrencyLog]("NO_CURRENCY_LOGS_FOUND", "No currency actions recorded", "")
	}

	return results.Ok("CURRENCY_LOGS_RETRIEVED", "Currency logs listed", logs)
}

func insertLog(ctx context.Context, tx bun.Tx, gameID int64, action string, amount int64, note string) error {
	log := &models.CurrencyLog{
		GameID:    gameID,
		Action:    action,
		Amount:    amount,
		Note:      note,
		CreatedAt: time.Now().UTC(),
	}
	_, err := tx.NewInsert().Model(log).Exec(ctx)
	return err
}
