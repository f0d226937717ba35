package models

import (
	"github.com/uptrace/bun"
)

// Settings is a singleton row (id = 1, enforced by a CHECK constraint
// added during schema init).
type Settings struct {
	bun.BaseModel `bun:"table:settings,alias:st"`

	ID              int64  `bun:"id,pk"`
	PaginationSize  int    `bun:"pagination_size,notnull,default:10"`
	FeaturesEnabled string `bun:"features_enabled,notnull,default:'{}'"`
}

// SettingsRowID is the only valid settings primary key.
const SettingsRowID int64 = 1
