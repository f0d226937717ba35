package models

import (
	"time"

	"github.com/uptrace/bun"
)

// PullEntry is a point-in-time record of one recorded pull. GameID is
// denormalized from the owning banner at insert time so history rows stay
// self-contained even if the banner is later reassigned.
type PullEntry struct {
	bun.BaseModel `bun:"table:pull_history,alias:p"`

	ID        int64     `bun:"id,pk,autoincrement"`
	BannerID  int64     `bun:"banner_id,notnull"`
	GameID    int64     `bun:"game_id,notnull"`
	EntryName string    `bun:"entry_name,notnull"`
	Pity      int       `bun:"pity,notnull,default:0"`
	Notes     string    `bun:"notes,nullzero"`
	Timestamp time.Time `bun:"timestamp,notnull"`
}
