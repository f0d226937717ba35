package models

import (
	"time"

	"github.com/uptrace/bun"
)

// Meta records schema versions. Not a singleton: multiple versions may
// coexist and "current" is whichever version the caller names.
type Meta struct {
	bun.BaseModel `bun:"table:meta,alias:m"`

	ID           int64      `bun:"id,pk,autoincrement"`
	Version      string     `bun:"version,notnull"`
	CreatedAt    time.Time  `bun:"created_at,notnull"`
	LastModified *time.Time `bun:"last_modified,nullzero"`
}
