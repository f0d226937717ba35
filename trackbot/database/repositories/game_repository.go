package repositories

import (
	"context"
	"time"

	"github.com/ellavondegurechaff/pitytrack/trackbot/database/models"
	"github.com/ellavondegurechaff/pitytrack/trackbot/results"
	"github.com/uptrace/bun"
)

type GameRepository interface {
	Add(ctx context.Context, name, channelID string) results.Result[*models.Game]
	GetByChannelID(ctx context.Context, channelID string) results.Result[*models.Game]
	Get(ctx context.Context, id int64) results.Result[*models.Game]
	List(ctx context.Context) results.Result[[]*models.Game]
	Rename(ctx context.Context, id int64, newName string) results.Result[struct{}]
	Delete(ctx context.Context, id int64) results.Result[struct{}]
}

type gameRepository struct {
	BaseRepository
}

func NewGameRepository(db *bun.DB) GameRepository {
	return &gameRepository{BaseRepository: NewBaseRepository(db)}
}

func (r *gameRepository) Add(ctx context.Context, name, channelID string) results.Result[*models.Game] {
	if !r.connGuard() {
		return connFail[*models.Game]()
	}

	exists, err := r.db.NewSelect().
		Model((*models.Game)(nil)).
		Where("channel_id = ?", channelID).
		Exists(ctx)
	if err != nil {
		return results.Fail[*models.Game]("GAME_EXISTS_CHECK_FAILED", "Could not check for an existing game", errString(err))
	}
	if exists {
		return results.Fail[*models.Game]("GAME_ALREADY_EXISTS", "A game is already registered for this channel", "")
	}

	now := time.Now().UTC()
	game := &models.Game{
		Name:      name,
		ChannelID: channelID,
		CreatedAt: now,
		UpdatedAt: now,
	}

	err = r.RunInTx(ctx, func(ctx context.Context, tx bun.Tx) error {
		_, err := tx.NewInsert().Model(game).Exec(ctx)
		return err
	})
	if err != nil {
		return results.Fail[*models.Game]("GAME_INSERT_FAILED", "Failed to save the new game", errString(err))
	}

	return results.Ok("GAME_ADDED", "Game registered", game)
}

func (r *gameRepository) GetByChannelID(ctx context.Context, channelID string) results.Result[*models.Game] {
	if !r.connGuard() {
		return connFail[*models.Game]()
	}

	game := new(models.Game)
	err := r.db.NewSelect().
		Model(game).
		Where("channel_id = ?", channelID).
		Scan(ctx)
	if err != nil {
		if isNoRows(err) {
			return results.Fail[*models.Game]("GAME_NOT_FOUND", "No game registered for this channel", "")
		}
		return results.Fail[*models.Game]("GAME_FETCH_FAILED", "Failed to fetch the game", errString(err))
	}

	return results.Ok("GAME_FETCHED", "Game found", game)
}

func (r *gameRepository) Get(ctx context.Context, id int64) results.Result[*models.Game] {
	if !r.connGuard() {
		return connFail[*models.Game]()
	}

	game := new(models.Game)
	err := r.db.NewSelect().
		Model(game).
		Where("id = ?", id).
		Scan(ctx)
	if err != nil {
		if isNoRows(err) {
			return results.Fail[*models.Game]("GAME_NOT_FOUND", "Game does not exist", "")
		}
		return results.Fail[*models.Game]("GAME_FETCH_FAILED", "Failed to fetch the game", errString(err))
	}

	return results.Ok("GAME_FETCHED", "Game found", game)
}

func (r *gameRepository) List(ctx context.Context) results.Result[[]*models.Game] {
	if !r.connGuard() {
		return connFail[[]*models.Game]()
	}

	var games []*models.Game
	err := r.db.NewSelect().
		Model(&games).
		Order("name ASC").
		Scan(ctx)
	if err != nil {
		return results.Fail[[]*models.Game]("GAME_LIST_FAILED", "Failed to list games", errString(err))
	}
	if len(games) == 0 {
		return results.Fail[[]*models.Game]("NO_GAMES_FOUND", "No registered games", "")
	}

	return results.Ok("GAME_LIST_RETRIEVED", "Games listed", games)
}

func (r *gameRepository) Rename(ctx context.Context, id int64, newName string) results.Result[struct{}] {
	if !r.connGuard() {
		return connFail[struct{}]()
	}

	exists, err := r.db.NewSelect().
		Model((*models.Game)(nil)).
		Where("id = ?", id).
		Exists(ctx)
	if err != nil {
		return results.Fail[struct{}]("GAME_EXISTS_CHECK_FAILED", "Could not check for the game", errString(err))
	}
	if !exists {
		return results.Fail[struct{}]("GAME_NOT_FOUND", "Game does not exist", "")
	}

	var affected int64
	err = r.RunInTx(ctx, func(ctx context.Context, tx bun.Tx) error {
		res, err := tx.NewUpdate().
			Model((*models.Game)(nil)).
			Set("name = ?", newName).
			Set("updated_at = ?", time.Now().UTC()).
			Where("id = ?", id).
			Exec(ctx)
		affected = rowsAffected(res)
		return err
	})
	if err != nil {
		return results.Fail[struct{}]("GAME_UPDATE_FAILED", "Failed to rename the game", errString(err))
	}
	if affected == 0 {
		return results.Fail[struct{}]("GAME_UPDATE_FAILED", "Rename changed no rows", "zero rows affected")
	}

	return results.OkMsg[struct{}]("GAME_RENAMED", "Game renamed")
}

// Delete rejects games that still own banners: no implicit cascade, no
// orphaned banner or pull rows.
func (r *gameRepository) Delete(ctx context.Context, id int64) results.Result[struct{}] {
	if !r.connGuard() {
		return connFail[struct{}]()
	}

	exists, err := r.db.NewSelect().
		Model((*models.Game)(nil)).
		Where("id = ?", id).
		Exists(ctx)
	if err != nil {
		return results.Fail[struct{}]("GAME_EXISTS_CHECK_FAILED", "Could not check for the game", errString(err))
	}
	if !exists {
		return results.Fail[struct{}]("GAME_NOT_FOUND", "Game does not exist", "")
	}

	hasBanners, err := r.db.NewSelect().
		Model((*models.Banner)(nil)).
		Where("game_id = ?", id).
		Exists(ctx)
	if err != nil {
		return results.Fail[struct{}]("GAME_EXISTS_CHECK_FAILED", "Could not check the game's banners", errString(err))
	}
	if hasBanners {
		return results.Fail[struct{}]("GAME_HAS_BANNERS", "Delete the game's banners before deleting the game", "")
	}

	var affected int64
	err = r.RunInTx(ctx, func(ctx context.Context, tx bun.Tx) error {
		res, err := tx.NewDelete().
			Model((*models.Game)(nil)).
			Where("id = ?", id).
			Exec(ctx)
		affected = rowsAffected(res)
		return err
	})
	if err != nil {
		return results.Fail[struct{}]("GAME_DELETE_FAILED", "Failed to delete the game", errString(err))
	}
	if affected == 0 {
		return results.Fail[struct{}]("GAME_DELETE_FAILED", "Delete removed no rows", "zero rows affected")
	}

	return results.OkMsg[struct{}]("GAME_DELETED", "Game deleted")
}
