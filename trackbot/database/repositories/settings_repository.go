package repositories

import (
	"context"
	"time"

	"github.com/ellavondegurechaff/pitytrack/trackbot/database/models"
	"github.com/ellavondegurechaff/pitytrack/trackbot/results"
	"github.com/uptrace/bun"
)

type SettingsRepository interface {
	Init(ctx context.Context) results.Result[struct{}]
	Get(ctx context.Context) results.Result[*models.Settings]
	UpdatePagination(ctx context.Context, size int) results.Result[struct{}]
	UpdateFeatures(ctx context.Context, features string) results.Result[struct{}]
	GetMeta(ctx context.Context, version string) results.Result[*models.Meta]
	TouchMeta(ctx context.Context, version string) results.Result[struct{}]
}

type settingsRepository struct {
	BaseRepository
}

func NewSettingsRepository(db *bun.DB) SettingsRepository {
	return &settingsRepository{BaseRepository: NewBaseRepository(db)}
}

// Init seeds the singleton row if it is missing. The CHECK (id = 1)
// constraint keeps the table a singleton by construction.
func (r *settingsRepository) Init(ctx context.Context) results.Result[struct{}] {
	if !r.connGuard() {
		return connFail[struct{}]()
	}

	err := r.RunInTx(ctx, func(ctx context.Context, tx bun.Tx) error {
		settings := &models.Settings{
			ID:              models.SettingsRowID,
			PaginationSize:  10,
			FeaturesEnabled: "{}",
		}
		_, err := tx.NewInsert().
			Model(settings).
			On("CONFLICT (id) DO NOTHING").
			Exec(ctx)
		return err
	})
	if err != nil {
		return results.Fail[struct{}]("SETTINGS_INIT_FAILED", "Failed to initialize settings", errString(err))
	}

	return results.OkMsg[struct{}]("SETTINGS_INITIALIZED", "Settings ready")
}

func (r *settingsRepository) Get(ctx context.Context) results.Result[*models.Settings] {
	if !r.connGuard() {
		return connFail[*models.Settings]()
	}

	settings := new(models.Settings)
	err := r.db.NewSelect().
		Model(settings).
		Where("id = ?", models.SettingsRowID).
		Scan(ctx)
	if err != nil {
		if isNoRows(err) {
			return results.Fail[*models.Settings]("NO_SETTINGS_FOUND", "Settings row is missing", "")
		}
		return results.Fail[*models.Settings]("SETTINGS_FETCH_FAILED", "Failed to fetch settings", errString(err))
	}

	return results.Ok("SETTINGS_RETRIEVED", "Settings fetched", settings)
}

func (r *settingsRepository) UpdatePagination(ctx context.Context, size int) results.Result[struct{}] {
	return r.set(ctx, "pagination_size", size)
}

func (r *settingsRepository) UpdateFeatures(ctx context.Context, features string) results.Result[struct{}] {
	return r.set(ctx, "features_enabled", features)
}

func (r *settingsRepository) set(ctx context.Context, column string, value interface{}) results.Result[struct{}] {
	if !r.connGuard() {
		return connFail[struct{}]()
	}

	var affected int64
	err := r.RunInTx(ctx, func(ctx context.Context, tx bun.Tx) error {
		res, err := tx.NewUpdate().
			Model((*models.Settings)(nil)).
			Set(column+" = ?", value).
			Where("id = ?", models.SettingsRowID).
			Exec(ctx)
		affected = rowsAffected(res)
		return err
	})
	if err != nil {
		return results.Fail[struct{}]("SETTINGS_UPDATE_FAILED", "Failed to update settings", errString(err))
	}
	if affected == 0 {
		return results.Fail[struct{}]("SETTINGS_UPDATE_FAILED", "Update changed no rows", "zero rows affected")
	}

	return results.OkMsg[struct{}]("SETTINGS_UPDATED", "Settings updated")
}

func (r *settingsRepository) GetMeta(ctx context.Context, version string) results.Result[*models.Meta] {
	if !r.connGuard() {
		return connFail[*models.Meta]()
	}

	meta := new(models.Meta)
	err := r.db.NewSelect().
		Model(meta).
		Where("version = ?", version).
		Order("created_at DESC").
		Limit(1).
		Scan(ctx)
	if err != nil {
		if isNoRows(err) {
			return results.Fail[*models.Meta]("META_NOT_FOUND", "Schema version is not recorded", "")
		}
		return results.Fail[*models.Meta]("META_FETCH_FAILED", "Failed to fetch the meta record", errString(err))
	}

	return results.Ok("META_RETRIEVED", "Meta fetched", meta)
}

func (r *settingsRepository) TouchMeta(ctx context.Context, version string) results.Result[struct{}] {
	if !r.connGuard() {
		return connFail[struct{}]()
	}

	exists, err := r.db.NewSelect().
		Model((*models.Meta)(nil)).
		Where("version = ?", version).
		Exists(ctx)
	if err != nil {
		return results.Fail[struct{}]("META_EXISTS_CHECK_FAILED", "Could not check for the meta record", errString(err))
	}

	err = r.RunInTx(ctx, func(ctx context.Context, tx bun.Tx) error {
		now := time.Now().UTC()
		if exists {
			_, err := tx.NewUpdate().
				Model((*models.Meta)(nil)).
				Set("last_modified = ?", now).
				Where("version = ?", version).
				Exec(ctx)
			return err
		}
		meta := &models.Meta{Version: version, CreatedAt: now}
		_, err := tx.NewInsert().Model(meta).Exec(ctx)
		return err
	})
	if err != nil {
		return results.Fail[struct{}]("META_UPDATE_FAILED", "Failed to update the meta record", errString(err))
	}

	return results.OkMsg[struct{}]("META_UPDATED", "Meta updated")
}
