package repositories

import (
	"context"
	"time"

	"github.com/ellavondegurechaff/pitytrack/trackbot/database/models"
	"github.com/ellavondegurechaff/pitytrack/trackbot/results"
	"github.com/uptrace/bun"
)

type BannerRepository interface {
	Add(ctx context.Context, gameID int64, name string, currentPity, maxPity int) results.Result[*models.Banner]
	Get(ctx context.Context, id int64) results.Result[*models.Banner]
	GetByGame(ctx context.Context, gameID int64) results.Result[[]*models.Banner]
	NameExists(ctx context.Context, name string) results.Result[bool]
	UpdatePity(ctx context.Context, id int64, pity int) results.Result[struct{}]
	UpdateMaxPity(ctx context.Context, id int64, maxPity int) results.Result[struct{}]
	UpdatePityDetail(ctx context.Context, id int64, pity, maxPity int) results.Result[struct{}]
	Rename(ctx context.Context, id int64, newName string) results.Result[struct{}]
	Delete(ctx context.Context, id int64) results.Result[struct{}]
}

type bannerRepository struct {
	BaseRepository
}

func NewBannerRepository(db *bun.DB) BannerRepository {
	return &bannerRepository{BaseRepository: NewBaseRepository(db)}
}

// NameExists checks the banner name against the whole banner namespace.
// Banner names are unique across games, not per game.
func (r *bannerRepository) NameExists(ctx context.Context, name string) results.Result[bool] {
	if !r.connGuard() {
		return connFail[bool]()
	}

	exists, err := r.db.NewSelect().
		Model((*models.Banner)(nil)).
		Where("name = ?", name).
		Exists(ctx)
	if err != nil {
		return results.Fail[bool]("BANNER_EXISTS_CHECK_FAILED", "Could not check for an existing banner", errString(err))
	}

	return results.Ok("BANNER_EXISTS_CHECKED", "Checked banner name", exists)
}

func (r *bannerRepository) Add(ctx context.Context, gameID int64, name string, currentPity, maxPity int) results.Result[*models.Banner] {
	if !r.connGuard() {
		return connFail[*models.Banner]()
	}

	gameExists, err := r.db.NewSelect().
		Model((*models.Game)(nil)).
		Where("id = ?", gameID).
		Exists(ctx)
	if err != nil {
		return results.Fail[*models.Banner]("GAME_EXISTS_CHECK_FAILED", "Could not check for the owning game", errString(err))
	}
	if !gameExists {
		return results.Fail[*models.Banner]("GAME_NOT_FOUND", "Owning game does not exist", "")
	}

	nameTaken, err := r.db.NewSelect().
		Model((*models.Banner)(nil)).
		Where("name = ?", name).
		Exists(ctx)
	if err != nil {
		return results.Fail[*models.Banner]("BANNER_EXISTS_CHECK_FAILED", "Could not check for an existing banner", errString(err))
	}
	if nameTaken {
		return results.Fail[*models.Banner]("BANNER_ALREADY_EXISTS", "Banner name already exists", "")
	}

	banner := &models.Banner{
		GameID:      gameID,
		Name:        name,
		CurrentPity: currentPity,
		MaxPity:     maxPity,
		LastUpdated: time.Now().UTC(),
	}

	// The unique index on name is the second line of defense behind the
	// pre-check above.
	err = r.RunInTx(ctx, func(ctx context.Context, tx bun.Tx) error {
		_, err := tx.NewInsert().Model(banner).Exec(ctx)
		return err
	})
	if err != nil {
		return results.Fail[*models.Banner]("BANNER_INSERT_FAILED", "Failed to save the new banner", errString(err))
	}

	return results.Ok("BANNER_ADDED", "Banner created", banner)
}

func (r *bannerRepository) Get(ctx context.Context, id int64) results.Result[*models.Banner] {
	if !r.connGuard() {
		return connFail[*models.Banner]()
	}

	banner := new(models.Banner)
	err := r.db.NewSelect().
		Model(banner).
		Where("id = ?", id).
		Scan(ctx)
	if err != nil {
		if isNoRows(err) {
			return results.Fail[*models.Banner]("BANNER_NOT_FOUND", "Banner does not exist", "")
		}
		return results.Fail[*models.Banner]("BANNER_FETCH_FAILED", "Failed to fetch the banner", errString(err))
	}

	return results.Ok("BANNER_FETCHED", "Banner found", banner)
}

func (r *bannerRepository) GetByGame(ctx context.Context, gameID int64) results.Result[[]*models.Banner] {
	if !r.connGuard() {
		return connFail[[]*models.Banner]()
	}

	var banners []*models.Banner
	err := r.db.NewSelect().
		Model(&banners).
		Where("game_id = ?", gameID).
		Order("last_updated DESC").
		Scan(ctx)
	if err != nil {
		return results.Fail[[]*models.Banner]("BANNER_LIST_FAILED", "Failed to list banners", errString(err))
	}
	if len(banners) == 0 {
		return results.Fail[[]*models.Banner]("NO_BANNERS_FOUND", "The game has no banners", "")
	}

	return results.Ok("BANNERS_RETRIEVED", "Banners listed", banners)
}

func (r *bannerRepository) UpdatePity(ctx context.Context, id int64, pity int) results.Result[struct{}] {
	return r.setFields(ctx, id, map[string]interface{}{"current_pity": pity})
}

func (r *bannerRepository) UpdateMaxPity(ctx context.Context, id int64, maxPity int) results.Result[struct{}] {
	return r.setFields(ctx, id, map[string]interface{}{"max_pity": maxPity})
}

// UpdatePityDetail writes both pity fields in one transaction so a
// failure can never leave the pair half-updated.
func (r *bannerRepository) UpdatePityDetail(ctx context.Context, id int64, pity, maxPity int) results.Result[struct{}] {
	return r.setFields(ctx, id, map[string]interface{}{
		"current_pity": pity,
		"max_pity":     maxPity,
	})
}

func (r *bannerRepository) Rename(ctx context.Context, id int64, newName string) results.Result[struct{}] {
	if !r.connGuard() {
		return connFail[struct{}]()
	}

	nameTaken, err := r.db.NewSelect().
		Model((*models.Banner)(nil)).
		Where("name = ? AND id != ?", newName, id).
		Exists(ctx)
	if err != nil {
		return results.Fail[struct{}]("BANNER_EXISTS_CHECK_FAILED", "Could not check for an existing banner", errString(err))
	}
	if nameTaken {
		return results.Fail[struct{}]("BANNER_ALREADY_EXISTS", "Banner name already exists", "")
	}

	return r.setFields(ctx, id, map[string]interface{}{"name": newName})
}

// setFields applies the column updates plus the last_updated bump in one
// transaction, with the existence pre-check and the zero-rows defense.
func (r *bannerRepository) setFields(ctx context.Context, id int64, fields map[string]interface{}) results.Result[struct{}] {
	if !r.connGuard() {
		return connFail[struct{}]()
	}

	exists, err := r.db.NewSelect().
		Model((*models.Banner)(nil)).
		Where("id = ?", id).
		Exists(ctx)
	if err != nil {
		return results.Fail[struct{}]("BANNER_EXISTS_CHECK_FAILED", "Could not check for the banner", errString(err))
	}
	if !exists {
		return results.Fail[struct{}]("BANNER_NOT_FOUND", "Banner does not exist", "")
	}

	var affected int64
	err = r.RunInTx(ctx, func(ctx context.Context, tx bun.Tx) error {
		q := tx.NewUpdate().
			Model((*models.Banner)(nil)).
			Set("last_updated = ?", time.Now().UTC()).
			Where("id = ?", id)
		for col, val := range fields {
			q = q.Set(col+" = ?", val)
		}
		res, err := q.Exec(ctx)
		affected = rowsAffected(res)
		return err
	})
	if err != nil {
		return results.Fail[struct{}]("BANNER_UPDATE_FAILED", "Failed to update the banner", errString(err))
	}
	if affected == 0 {
		return results.Fail[struct{}]("BANNER_UPDATE_FAILED", "Update changed no rows", "zero rows affected")
	}

	return results.OkMsg[struct{}]("BANNER_UPDATED", "Banner updated")
}

func (r *bannerRepository) Delete(ctx context.Context, id int64) results.Result[struct{}] {
	if !r.connGuard() {
		return connFail[struct{}]()
	}

	exists, err := r.db.NewSelect().
		Model((*models.Banner)(nil)).
		Where("id = ?", id).
		Exists(ctx)
	if err != nil {
		return results.Fail[struct{}]("BANNER_EXISTS_CHECK_FAILED", "Could not check for the banner", errString(err))
	}
	if !exists {
		return results.Fail[struct{}]("BANNER_NOT_FOUND", "Banner does not exist", "")
	}

	var affected int64
	err = r.RunInTx(ctx, func(ctx context.Context, tx bun.Tx) error {
		res, err := tx.NewDelete().
			Model((*models.Banner)(nil)).
			Where("id = ?", id).
			Exec(ctx)
		affected = rowsAffected(res)
		return err
	})
	if err != nil {
		return results.Fail[struct{}]("BANNER_DELETE_FAILED", "Failed to delete the banner", errString(err))
	}
	if affected == 0 {
		return results.Fail[struct{}]("BANNER_DELETE_FAILED", "Delete removed no rows", "zero rows affected")
	}

	return results.OkMsg[struct{}]("BANNER_DELETED", "Banner deleted")
}
