package models

import (
	"time"

	"github.com/uptrace/bun"
)

// Game scopes banners to a Discord channel. At most one game may be
// registered per channel.
type Game struct {
	bun.BaseModel `bun:"table:games,alias:g"`

	ID        int64     `bun:"id,pk,autoincrement"`
	Name      string    `bun:"name,notnull"`
	ChannelID string    `bun:"channel_id,unique,nullzero"`
	CreatedAt time.Time `bun:"created_at,notnull"`
	UpdatedAt time.Time `bun:"updated_at,notnull"`
}
