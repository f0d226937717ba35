package models

import (
	"time"

	"github.com/uptrace/bun"
)

// GameCurrency tracks a game's premium currency balance, pull tokens and
// an optional savings goal. One row per game.
type GameCurrency struct {
	bun.BaseModel `bun:"table:game_currencies,alias:gc"`

	ID         int64     `bun:"id,pk,autoincrement"`
	GameID     int64     `bun:"game_id,notnull,unique"`
	Currency   int64     `bun:"currency,notnull,default:0"`
	PullTokens int64     `bun:"pull_tokens,notnull,default:0"`
	Goal       *int64    `bun:"goal,nullzero"`
	UpdatedAt  time.Time `bun:"updated_at,notnull"`
}

// CurrencyLog is an append-only record of currency actions for a game.
type CurrencyLog struct {
	bun.BaseModel `bun:"table:currency_logs,alias:cl"`

	ID        int64     `bun:"id,pk,autoincrement"`
	GameID    int64     `bun:"game_id,notnull"`
	Action    string    `bun:"action,notnull"`
	Amount    int64     `bun:"amount,notnull,default:0"`
	Note      string    `bun:"note,nullzero"`
	CreatedAt time.Time `bun:"created_at,notnull"`
}
