package repositories

import (
	"context"
	"database/sql"
	"time"

	"github.com/ellavondegurechaff/pitytrack/trackbot/database/models"
	"github.com/ellavondegurechaff/pitytrack/trackbot/results"
	"github.com/uptrace/bun"
)

type SessionRepository interface {
	Start(ctx context.Context, channelID, name string, start time.Time) results.Result[*models.Session]
	Get(ctx context.Context, id int64) results.Result[*models.Session]
	AddBreak(ctx context.Context, sessionID int64, start time.Time) results.Result[*models.SessionBreak]
	EndBreak(ctx context.Context, breakID int64, end time.Time) results.Result[*models.SessionBreak]
	End(ctx context.Context, sessionID int64, end time.Time) results.Result[*models.Session]
	Browse(ctx context.Context) results.Result[[]*models.Session]
	Delete(ctx context.Context, id int64) results.Result[struct{}]
	DeleteBreak(ctx context.Context, breakID int64) results.Result[struct{}]
}

type sessionRepository struct {
	BaseRepository
}

func NewSessionRepository(db *bun.DB) SessionRepository {
	return &sessionRepository{BaseRepository: NewBaseRepository(db)}
}

func (r *sessionRepository) Start(ctx context.Context, channelID, name string, start time.Time) results.Result[*models.Session] {
	if !r.connGuard() {
		return connFail[*models.Session]()
	}

	session := &models.Session{
		ChannelID: channelID,
		Name:      name,
		StartTime: start,
	}

	err := r.RunInTx(ctx, func(ctx context.Context, tx bun.Tx) error {
		_, err := tx.NewInsert().Model(session).Exec(ctx)
		return err
	})
	if err != nil {
		return results.Fail[*models.Session]("SESSION_INSERT_FAILED", "Failed to save the new session", errString(err))
	}

	return results.Ok("SESSION_ADDED", "Session saved", session)
}

func (r *sessionRepository) Get(ctx context.Context, id int64) results.Result[*models.Session] {
	if !r.connGuard() {
		return connFail[*models.Session]()
	}

	session := new(models.Session)
	err := r.db.NewSelect().
		Model(session).
		Relation("Breaks").
		Where("s.id = ?", id).
		Scan(ctx)
	if err != nil {
		if isNoRows(err) {
			return results.Fail[*models.Session]("SESSION_NOT_FOUND", "Session does not exist", "")
		}
		return results.Fail[*models.Session]("SESSION_FETCH_FAILED", "Failed to fetch the session", errString(err))
	}

	return results.Ok("SESSION_FETCHED", "Session found", session)
}

func (r *sessionRepository) AddBreak(ctx context.Context, sessionID int64, start time.Time) results.Result[*models.SessionBreak] {
	if !r.connGuard() {
		return connFail[*models.SessionBreak]()
	}

	session := new(models.Session)
	err := r.db.NewSelect().
		Model(session).
		Where("id = ?", sessionID).
		Scan(ctx)
	if err != nil {
		if isNoRows(err) {
			return results.Fail[*models.SessionBreak]("SESSION_NOT_FOUND", "Session does not exist", "")
		}
		return results.Fail[*models.SessionBreak]("SESSION_FETCH_FAILED", "Failed to fetch the session", errString(err))
	}
	if session.EndTime != nil {
		return results.Fail[*models.SessionBreak]("SESSION_ALREADY_ENDED", "Cannot add a break to an ended session", "")
	}

	// Defense behind the engine's single-break guard
	openBreak, err := r.db.NewSelect().
		Model((*models.SessionBreak)(nil)).
		Where("session_id = ? AND finished = false", sessionID).
		Exists(ctx)
	if err != nil {
		return results.Fail[*models.SessionBreak]("BREAK_EXISTS_CHECK_FAILED", "Could not check for an open break", errString(err))
	}
	if openBreak {
		return results.Fail[*models.SessionBreak]("BREAK_ALREADY_ACTIVE", "A break is already in progress", "")
	}

	brk := &models.SessionBreak{
		SessionID:  sessionID,
		BreakStart: start,
	}

	err = r.RunInTx(ctx, func(ctx context.Context, tx bun.Tx) error {
		_, err := tx.NewInsert().Model(brk).Exec(ctx)
		return err
	})
	if err != nil {
		return results.Fail[*models.SessionBreak]("BREAK_INSERT_FAILED", "Failed to save the break", errString(err))
	}

	return results.Ok("BREAK_ADDED", "Break saved", brk)
}

// EndBreak closes the break and folds its duration into the owning
// session's accumulated break seconds, in one transaction.
func (r *sessionRepository) EndBreak(ctx context.Context, breakID int64, end time.Time) results.Result[*models.SessionBreak] {
	if !r.connGuard() {
		return connFail[*models.SessionBreak]()
	}

	brk := new(models.SessionBreak)
	err := r.db.NewSelect().
		Model(brk).
		Where("id = ?", breakID).
		Scan(ctx)
	if err != nil {
		if isNoRows(err) {
			return results.Fail[*models.SessionBreak]("BREAK_NOT_FOUND", "Break does not exist", "")
		}
		return results.Fail[*models.SessionBreak]("BREAK_FETCH_FAILED", "Failed to fetch the break", errString(err))
	}
	if brk.Finished {
		return results.Fail[*models.SessionBreak]("BREAK_ALREADY_ENDED", "The break already ended", "")
	}

	duration := int64(end.Sub(brk.BreakStart).Seconds())

	err = r.RunInTx(ctx, func(ctx context.Context, tx bun.Tx) error {
		res, err := tx.NewUpdate().
			Model((*models.SessionBreak)(nil)).
			Set("break_end = ?", end).
			Set("duration_seconds = ?", duration).
			Set("finished = true").
			Where("id = ? AND finished = false", breakID).
			Exec(ctx)
		if err != nil {
			return err
		}
		if rowsAffected(res) == 0 {
			return sql.ErrNoRows
		}

		res, err = tx.NewUpdate().
			Model((*models.Session)(nil)).
			Set("break_seconds = break_seconds + ?", duration).
			Where("id = ?", brk.SessionID).
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
		return results.Fail[*models.SessionBreak]("BREAK_UPDATE_FAILED", "Failed to end the break", errString(err))
	}

	brk.BreakEnd = &end
	brk.DurationSeconds = duration
	brk.Finished = true
	return results.Ok("BREAK_ENDED", "Break ended", brk)
}

// End closes the session. If a break is still open its partial duration
// up to the end instant is folded into the accumulated break time before
// the totals are written; nothing is dropped. All writes share one
// transaction.
func (r *sessionRepository) End(ctx context.Context, sessionID int64, end time.Time) results.Result[*models.Session] {
	if !r.connGuard() {
		return connFail[*models.Session]()
	}

	session := new(models.Session)
	err := r.db.NewSelect().
		Model(session).
		Where("id = ?", sessionID).
		Scan(ctx)
	if err != nil {
		if isNoRows(err) {
			return results.Fail[*models.Session]("SESSION_NOT_FOUND", "Session does not exist", "")
		}
		return results.Fail[*models.Session]("SESSION_FETCH_FAILED", "Failed to fetch the session", errString(err))
	}
	if session.EndTime != nil {
		return results.Fail[*models.Session]("SESSION_ALREADY_ENDED", "The session already ended", "")
	}

	openBreak := new(models.SessionBreak)
	hasOpenBreak := true
	err = r.db.NewSelect().
		Model(openBreak).
		Where("session_id = ? AND finished = false", sessionID).
		Scan(ctx)
	if err != nil {
		if !isNoRows(err) {
			return results.Fail[*models.Session]("BREAK_FETCH_FAILED", "Failed to fetch the open break", errString(err))
		}
		hasOpenBreak = false
	}

	breakSeconds := session.BreakSeconds
	if hasOpenBreak {
		breakSeconds += int64(end.Sub(openBreak.BreakStart).Seconds())
	}
	totalSeconds := int64(end.Sub(session.StartTime).Seconds())

	err = r.RunInTx(ctx, func(ctx context.Context, tx bun.Tx) error {
		if hasOpenBreak {
			partial := int64(end.Sub(openBreak.BreakStart).Seconds())
			res, err := tx.NewUpdate().
				Model((*models.SessionBreak)(nil)).
				Set("break_end = ?", end).
				Set("duration_seconds = ?", partial).
				Set("finished = true").
				Where("id = ? AND finished = false", openBreak.ID).
				Exec(ctx)
			if err != nil {
				return err
			}
			if rowsAffected(res) == 0 {
				return sql.ErrNoRows
			}
		}

		res, err := tx.NewUpdate().
			Model((*models.Session)(nil)).
			Set("end_time = ?", end).
			Set("break_seconds = ?", breakSeconds).
			Set("total_seconds = ?", totalSeconds).
			Where("id = ? AND end_time IS NULL", sessionID).
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
		return results.Fail[*models.Session]("SESSION_UPDATE_FAILED", "Failed to end the session", errString(err))
	}

	session.EndTime = &end
	session.BreakSeconds = breakSeconds
	session.TotalSeconds = totalSeconds
	return results.Ok("SESSION_ENDED", "Session ended", session)
}

// Browse returns all sessions newest-first with their breaks loaded, the
// engine's input snapshot for reporting. Pure read.
func (r *sessionRepository) Browse(ctx context.Context) results.Result[[]*models.Session] {
	if !r.connGuard() {
		return connFail[[]*models.Session]()
	}

	var sessions []*models.Session
	err := r.db.NewSelect().
		Model(&sessions).
		Relation("Breaks").
		Order("start_time DESC").
		Scan(ctx)
	if err != nil {
		return results.Fail[[]*models.Session]("SESSION_LIST_FAILED", "Failed to list sessions", errString(err))
	}
	if len(sessions) == 0 {
		return results.Fail[[]*models.Session]("NO_SESSIONS_FOUND", "No sessions recorded yet", "")
	}

	return results.Ok("SESSION_LIST_RETRIEVED", "Sessions listed", sessions)
}

func (r *sessionRepository) Delete(ctx context.Context, id int64) results.Result[struct{}] {
	if !r.connGuard() {
		return connFail[struct{}]()
	}

	exists, err := r.db.NewSelect().
		Model((*models.Session)(nil)).
		Where("id = ?", id).
		Exists(ctx)
	if err != nil {
		return results.Fail[struct{}]("SESSION_EXISTS_CHECK_FAILED", "Could not check for the session", errString(err))
	}
	if !exists {
		return results.Fail[struct{}]("SESSION_NOT_FOUND", "Session does not exist", "")
	}

	var affected int64
	err = r.RunInTx(ctx, func(ctx context.Context, tx bun.Tx) error {
		if _, err := tx.NewDelete().
			Model((*models.SessionBreak)(nil)).
			Where("session_id = ?", id).
			Exec(ctx); err != nil {
			return err
		}

		res, err := tx.NewDelete().
			Model((*models.Session)(nil)).
			Where("id = ?", id).
			Exec(ctx)
		affected = rowsAffected(res)
		return err
	})
	if err != nil {
		return results.Fail[struct{}]("SESSION_DELETE_FAILED", "Failed to delete the session", errString(err))
	}
	if affected == 0 {
		return results.Fail[struct{}]("SESSION_DELETE_FAILED", "Delete removed no rows", "zero rows affected")
	}

	return results.OkMsg[struct{}]("SESSION_DELETED", "Session deleted")
}

// DeleteBreak removes a break row. A finished break's duration is
// subtracted from the owning session's accumulated break time so the
// session's net duration stays consistent with its remaining breaks.
func (r *sessionRepository) DeleteBreak(ctx context.Context, breakID int64) results.Result[struct{}] {
	if !r.connGuard() {
		return connFail[struct{}]()
	}

	brk := new(models.SessionBreak)
	err := r.db.NewSelect().
		Model(brk).
		Where("id = ?", breakID).
		Scan(ctx)
	if err != nil {
		if isNoRows(err) {
			return results.Fail[struct{}]("BREAK_NOT_FOUND", "Break does not exist", "")
		}
		return results.Fail[struct{}]("BREAK_FETCH_FAILED", "Failed to fetch the break", errString(err))
	}

	var affected int64
	err = r.RunInTx(ctx, func(ctx context.Context, tx bun.Tx) error {
		if brk.Finished && brk.DurationSeconds > 0 {
			res, err := tx.NewUpdate().
				Model((*models.Session)(nil)).
				Set("break_seconds = break_seconds - ?", brk.DurationSeconds).
				Where("id = ?", brk.SessionID).
				Exec(ctx)
			if err != nil {
				return err
			}
			if rowsAffected(res) == 0 {
				return sql.ErrNoRows
			}
		}

		res, err := tx.NewDelete().
			Model((*models.SessionBreak)(nil)).
			Where("id = ?", breakID).
			Exec(ctx)
		affected = rowsAffected(res)
		return err
	})
	if err != nil {
		return results.Fail[struct{}]("BREAK_DELETE_FAILED", "Failed to delete the break", errString(err))
	}
	if affected == 0 {
		return results.Fail[struct{}]("BREAK_DELETE_FAILED", "Delete removed no rows", "zero rows affected")
	}

	return results.OkMsg[struct{}]("BREAK_DELETED", "Break deleted")
}
