package models

import (
	"time"

	"github.com/uptrace/bun"
)

// Session is one continuous span of tracked activity. EndTime is nil
// while the session is still running. BreakSeconds accumulates as breaks
// finish; TotalSeconds is written once at close-out. ChannelID is the
// scope the session was started in.
type Session struct {
	bun.BaseModel `bun:"table:sessions,alias:s"`

	ID           int64      `bun:"id,pk,autoincrement"`
	ChannelID    string     `bun:"channel_id,notnull,default:''"`
	Name         string     `bun:"name,notnull"`
	StartTime    time.Time  `bun:"start_time,notnull"`
	EndTime      *time.Time `bun:"end_time,nullzero"`
	BreakSeconds int64      `bun:"break_seconds,notnull,default:0"`
	TotalSeconds int64      `bun:"total_seconds,notnull,default:0"`

	Breaks []*SessionBreak `bun:"rel:has-many,join:id=session_id"`
}

// SessionBreak belongs to exactly one session. BreakEnd is nil while the
// break is in progress.
type SessionBreak struct {
	bun.BaseModel `bun:"table:session_breaks,alias:sb"`

	ID              int64      `bun:"id,pk,autoincrement"`
	SessionID       int64      `bun:"session_id,notnull"`
	BreakStart      time.Time  `bun:"break_start,notnull"`
	BreakEnd        *time.Time `bun:"break_end,nullzero"`
	DurationSeconds int64      `bun:"duration_seconds,notnull,default:0"`
	Finished        bool       `bun:"finished,notnull,default:false"`
}
