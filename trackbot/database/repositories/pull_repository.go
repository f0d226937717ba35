package repositories

import (
	"context"
	"database/sql"
	"time"

	"github.com/ellavondegurechaff/pitytrack/trackbot/database/models"
	"github.com/ellavondegurechaff/pitytrack/trackbot/results"
	"github.com/uptrace/bun"
)

type PullRepository interface {
	Add(ctx context.Context, bannerID int64, entryName string, pity int, notes string) results.Result[*models.PullEntry]
	GetByBanner(ctx context.Context, bannerID int64) results.Result[[]*models.PullEntry]
	Update(ctx context.Context, id int64, entryName string, pity int, notes string) results.Result[struct{}]
	Delete(ctx context.Context, id int64) results.Result[struct{}]
}

type pullRepository struct {
	BaseRepository
}

func NewPullRepository(db *bun.DB) PullRepository {
	return &pullRepository{BaseRepository: NewBaseRepository(db)}
}

// Add records a pull and sets the owning banner's current pity to the
// pity value attached to the pull. The pull's pity is the source of
// truth, not a running increment. GameID is copied from the banner at
// insert time. Both writes happen in one transaction.
func (r *pullRepository) Add(ctx context.Context, bannerID int64, entryName string, pity int, notes string) results.Result[*models.PullEntry] {
	if !r.connGuard() {
		return connFail[*models.PullEntry]()
	}

	banner := new(models.Banner)
	err := r.db.NewSelect().
		Model(banner).
		Where("id = ?", bannerID).
		Scan(ctx)
	if err != nil {
		if isNoRows(err) {
			return results.Fail[*models.PullEntry]("BANNER_NOT_FOUND", "Banner does not exist", "")
		}
		return results.Fail[*models.PullEntry]("BANNER_FETCH_FAILED", "Failed to fetch the banner", errString(err))
	}

	now := time.Now().UTC()
	entry := &models.PullEntry{
		BannerID:  bannerID,
		GameID:    banner.GameID,
		EntryName: entryName,
		Pity:      pity,
		Notes:     notes,
		Timestamp: now,
	}

	err = r.RunInTx(ctx, func(ctx context.Context, tx bun.Tx) error {
		if _, err := tx.NewInsert().Model(entry).Exec(ctx); err != nil {
			return err
		}

		res, err := tx.NewUpdate().
			Model((*models.Banner)(nil)).
			Set("current_pity = ?", pity).
			Set("last_updated = ?", now).
			Where("id = ?", bannerID).
			Exec(ctx)
		if err != nil {
			return err
		}
		if rowsAffected(res) == 0 {
			return sql.ErrNoRows
		}
		return nil
	})
	if err != nil {
		return results.Fail[*models.PullEntry]("PULL_INSERT_FAILED", "Failed to record the pull", errString(err))
	}

	return results.Ok("PULL_ADDED", "Pull recorded", entry)
}

func (r *pullRepository) GetByBanner(ctx context.Context, bannerID int64) results.Result[[]*models.PullEntry] {
	if !r.connGuard() {
		return connFail[[]*models.PullEntry]()
	}

	var pulls []*models.PullEntry
	err := r.db.NewSelect().
		Model(&pulls).
		Where("banner_id = ?", bannerID).
		Order("timestamp DESC").
		Scan(ctx)
	if err != nil {
		return results.Fail[[]*models.PullEntry]("PULL_LIST_FAILED", "Failed to list pull history", errString(err))
	}
	if len(pulls) == 0 {
		return results.Fail[[]*models.PullEntry]("NO_PULL_ENTRIES_FOUND", "The banner has no recorded pulls", "")
	}

	return results.Ok("PULL_HISTORY_RETRIEVED", "Pull history listed", pulls)
}

// Update edits a historical record in place. It deliberately does not
// touch the banner's current pity; the correction applies to the history
// row only.
func (r *pullRepository) Update(ctx context.Context, id int64, entryName string, pity int, notes string) results.Result[struct{}] {
	if !r.connGuard() {
		return connFail[struct{}]()
	}

	exists, err := r.db.NewSelect().
		Model((*models.PullEntry)(nil)).
		Where("id = ?", id).
		Exists(ctx)
	if err != nil {
		return results.Fail[struct{}]("PULL_EXISTS_CHECK_FAILED", "Could not check for the pull entry", errString(err))
	}
	if !exists {
		return results.Fail[struct{}]("PULL_NOT_FOUND", "Pull entry does not exist", "")
	}

	var affected int64
	err = r.RunInTx(ctx, func(ctx context.Context, tx bun.Tx) error {
		res, err := tx.NewUpdate().
			Model((*models.PullEntry)(nil)).
			Set("entry_name = ?", entryName).
			Set("pity = ?", pity).
			Set("notes = ?", notes).
			Where("id = ?", id).
			Exec(ctx)
		affected = rowsAffected(res)
		return err
	})
	if err != nil {
		return results.Fail[struct{}]("PULL_UPDATE_FAILED", "Failed to edit the pull entry", errString(err))
	}
	if affected == 0 {
		return results.Fail[struct{}]("PULL_UPDATE_FAILED", "Edit changed no rows", "zero rows affected")
	}

	return results.OkMsg[struct{}]("PULL_UPDATED", "Pull entry edited")
}

func (r *pullRepository) Delete(ctx context.Context, id int64) results.Result[struct{}] {
	if !r.connGuard() {
		return connFail[struct{}]()
	}

	exists, err := r.db.NewSelect().
		Model((*models.PullEntry)(nil)).
		Where("id = ?", id).
		Exists(ctx)
	if err != nil {
		return results.Fail[struct{}]("PULL_EXISTS_CHECK_FAILED", "Could not check for the pull entry", errString(err))
	}
	if !exists {
		return results.Fail[struct{}]("PULL_NOT_FOUND", "Pull entry does not exist", "")
	}

	var affected int64
	err = r.RunInTx(ctx, func(ctx context.Context, tx bun.Tx) error {
		res, err := tx.NewDelete().
			Model((*models.PullEntry)(nil)).
			Where("id = ?", id).
			Exec(ctx)
		affected = rowsAffected(res)
		return err
	})
	if err != nil {
		return results.Fail[struct{}]("PULL_DELETE_FAILED", "Failed to delete the pull entry", errString(err))
	}
	if affected == 0 {
		return results.Fail[struct{}]("PULL_DELETE_FAILED", "Delete removed no rows", "zero rows affected")
	}

	return results.OkMsg[struct{}]("PULL_DELETED", "Pull entry deleted")
}
