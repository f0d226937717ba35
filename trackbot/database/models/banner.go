package models

import (
	"time"

	"github.com/uptrace/bun"
)

// Banner is a named pity counter owned by exactly one game. Banner names
// are unique across all games, not per game. CurrentPity is never clamped
// to MaxPity here; cap enforcement belongs to callers.
type Banner struct {
	bun.BaseModel `bun:"table:banners,alias:b"`

	ID          int64     `bun:"id,pk,autoincrement"`
	GameID      int64     `bun:"game_id,notnull"`
	Name        string    `bun:"name,notnull,unique"`
	CurrentPity int       `bun:"current_pity,notnull,default:0"`
	MaxPity     int       `bun:"max_pity,notnull,default:0"`
	LastUpdated time.Time `bun:"last_updated,notnull"`
}
