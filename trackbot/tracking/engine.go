package tracking

import (
	"context"
	"sync"
	"time"

	"github.com/ellavondegurechaff/pitytrack/trackbot/database/models"
	"github.com/ellavondegurechaff/pitytrack/trackbot/database/repositories"
	"github.com/ellavondegurechaff/pitytrack/trackbot/results"
	"github.com/ellavondegurechaff/pitytrack/trackbot/utils"
)

// slot is the in-memory view of one scope's live session. breakID is zero
// unless a break is open.
type slot struct {
	sessionID int64
	breakID   int64
}

// Engine drives the per-scope session state machine: Idle, Running,
// OnBreak. A scope (one Discord channel) holds at most one live session,
// and a live session at most one open break. State transitions write
// through the repository first; the in-memory slot only advances when the
// write succeeded, so a storage failure leaves the machine where it was.
type Engine struct {
	mu    sync.Mutex
	slots map[string]*slot
	repo  repositories.SessionRepository
	now   func() time.Time
}

func NewEngine(repo repositories.SessionRepository) *Engine {
	return &Engine{
		slots: make(map[string]*slot),
		repo:  repo,
		now:   func() time.Time { return time.Now().UTC() },
	}
}

// StartSession moves the scope from Idle to Running.
func (e *Engine) StartSession(ctx context.Context, scope, name string) results.Result[*models.Session] {
	if name == "" {
		return results.Fail[*models.Session]("EMPTY_SESSION_NAME", "Session name cannot be empty", "")
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	if _, active := e.slots[scope]; active {
		return results.Fail[*models.Session]("SESSION_ALREADY_ACTIVE", "A session is already running here", "")
	}

	res := e.repo.Start(ctx, scope, name, e.now())
	if !res.Success {
		return results.Recode[*models.Session]("START_SESSION_FAILED", res)
	}

	e.slots[scope] = &slot{sessionID: res.Data.ID}
	return res
}

// AddBreak moves the scope from Running to OnBreak.
func (e *Engine) AddBreak(ctx context.Context, scope string) results.Result[*models.SessionBreak] {
	e.mu.Lock()
	defer e.mu.Unlock()

	sl, active := e.slots[scope]
	if !active {
		return results.Fail[*models.SessionBreak]("ADD_BREAK_FAILED", "No session is running here", "")
	}
	if sl.breakID != 0 {
		return results.Fail[*models.SessionBreak]("BREAK_ALREADY_ACTIVE", "A break is already in progress", "")
	}

	res := e.repo.AddBreak(ctx, sl.sessionID, e.now())
	if !res.Success {
		if res.Code == "BREAK_ALREADY_ACTIVE" {
			return res
		}
		return results.Recode[*models.SessionBreak]("ADD_BREAK_FAILED", res)
	}

	sl.breakID = res.Data.ID
	return res
}

// EndBreak moves the scope from OnBreak back to Running.
func (e *Engine) EndBreak(ctx context.Context, scope string) results.Result[*models.SessionBreak] {
	e.mu.Lock()
	defer e.mu.Unlock()

	sl, active := e.slots[scope]
	if !active {
		return results.Fail[*models.SessionBreak]("END_BREAK_FAILED", "No session is running here", "")
	}
	if sl.breakID == 0 {
		return results.Fail[*models.SessionBreak]("END_BREAK_FAILED", "No break is in progress", "")
	}

	res := e.repo.EndBreak(ctx, sl.breakID, e.now())
	if !res.Success {
		if res.Code == "BREAK_ALREADY_ENDED" {
			sl.breakID = 0
			return res
		}
		return results.Recode[*models.SessionBreak]("END_BREAK_FAILED", res)
	}

	sl.breakID = 0
	return res
}

// Report summarizes a closed session. Net is gross total minus accumulated
// break time, clamped at zero.
type Report struct {
	Session      *models.Session
	TotalSeconds int64
	BreakSeconds int64
	NetSeconds   int64
	Total        string
	Break        string
	Net          string
}

func buildReport(session *models.Session) *Report {
	net := session.TotalSeconds - session.BreakSeconds
	if net < 0 {
		net = 0
	}
	return &Report{
		Session:      session,
		TotalSeconds: session.TotalSeconds,
		BreakSeconds: session.BreakSeconds,
		NetSeconds:   net,
		Total:        utils.FormatDuration(session.TotalSeconds),
		Break:        utils.FormatDuration(session.BreakSeconds),
		Net:          utils.FormatDuration(net),
	}
}

// EndSession closes the scope's session from either Running or OnBreak and
// returns the final report. An open break is folded into the break total by
// the repository as part of the close-out. The slot is freed only when the
// write succeeded.
func (e *Engine) EndSession(ctx context.Context, scope string) results.Result[*Report] {
	e.mu.Lock()
	defer e.mu.Unlock()

	sl, active := e.slots[scope]
	if !active {
		return results.Fail[*Report]("END_SESSION_FAILED", "No session is running here", "")
	}

	res := e.repo.End(ctx, sl.sessionID, e.now())
	if !res.Success {
		if res.Code == "SESSION_ALREADY_ENDED" || res.Code == "SESSION_NOT_FOUND" {
			delete(e.slots, scope)
		}
		return results.Recode[*Report]("END_SESSION_FAILED", res)
	}

	delete(e.slots, scope)
	return results.Ok("SESSION_ENDED", "Session ended", buildReport(res.Data))
}

// Current reports the scope's live session with elapsed and break time as
// of now. Pure read; the stored row is not modified.
func (e *Engine) Current(ctx context.Context, scope string) results.Result[*Report] {
	e.mu.Lock()
	sl, active := e.slots[scope]
	var sessionID int64
	if active {
		sessionID = sl.sessionID
	}
	e.mu.Unlock()

	if !active {
		return results.Fail[*Report]("NO_ACTIVE_SESSION", "No session is running here", "")
	}

	res := e.repo.Get(ctx, sessionID)
	if !res.Success {
		return results.Recode[*Report]("GET_SESSION_FAILED", res)
	}

	session := res.Data
	now := e.now()
	session.TotalSeconds = int64(now.Sub(session.StartTime).Seconds())
	breakSeconds := session.BreakSeconds
	for _, brk := range session.Breaks {
		if !brk.Finished {
			breakSeconds += int64(now.Sub(brk.BreakStart).Seconds())
		}
	}
	session.BreakSeconds = breakSeconds

	return results.Ok("SESSION_FETCHED", "Live session", buildReport(session))
}

// Browse returns reports for every stored session, newest first. Live
// sessions show elapsed time as of now.
func (e *Engine) Browse(ctx context.Context) results.Result[[]*Report] {
	res := e.repo.Browse(ctx)
	if !res.Success {
		return results.Recode[[]*Report](res.Code, res)
	}

	now := e.now()
	reports := make([]*Report, 0, len(res.Data))
	for _, session := range res.Data {
		if session.EndTime == nil {
			session.TotalSeconds = int64(now.Sub(session.StartTime).Seconds())
			breakSeconds := session.BreakSeconds
			for _, brk := range session.Breaks {
				if !brk.Finished {
					breakSeconds += int64(now.Sub(brk.BreakStart).Seconds())
				}
			}
			session.BreakSeconds = breakSeconds
		}
		reports = append(reports, buildReport(session))
	}

	return results.Ok("SESSION_LIST_RETRIEVED", "Sessions listed", reports)
}

// DeleteSession removes a stored session. If it is the live session for
// some scope the slot is freed too.
func (e *Engine) DeleteSession(ctx context.Context, id int64) results.Result[struct{}] {
	e.mu.Lock()
	defer e.mu.Unlock()

	res := e.repo.Delete(ctx, id)
	if !res.Success {
		if res.Code == "SESSION_NOT_FOUND" {
			return res
		}
		return results.Recode[struct{}]("DELETE_SESSION_FAILED", res)
	}

	for scope, sl := range e.slots {
		if sl.sessionID == id {
			delete(e.slots, scope)
		}
	}
	return res
}

// DeleteBreak removes a stored break. If it is the open break for some
// scope the slot returns to Running.
func (e *Engine) DeleteBreak(ctx context.Context, breakID int64) results.Result[struct{}] {
	e.mu.Lock()
	defer e.mu.Unlock()

	res := e.repo.DeleteBreak(ctx, breakID)
	if !res.Success {
		if res.Code == "BREAK_NOT_FOUND" {
			return res
		}
		return results.Recode[struct{}]("DELETE_BREAK_FAILED", res)
	}

	for _, sl := range e.slots {
		if sl.breakID == breakID {
			sl.breakID = 0
		}
	}
	return res
}

// Resume rebuilds the in-memory slots from storage after a restart. Open
// sessions keep running across process restarts; only the newest open
// session is bound per scope, which matches the one-live-session rule.
func (e *Engine) Resume(ctx context.Context) results.Result[int] {
	res := e.repo.Browse(ctx)
	if !res.Success {
		if res.Code == "NO_SESSIONS_FOUND" {
			return results.Ok("ENGINE_RESUMED", "No sessions to resume", 0)
		}
		return results.Recode[int]("RESUME_FAILED", res)
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	resumed := 0
	for _, session := range res.Data {
		if session.EndTime != nil {
			continue
		}
		scope := session.ChannelID
		if scope == "" {
			continue
		}
		if _, taken := e.slots[scope]; taken {
			continue
		}
		sl := &slot{sessionID: session.ID}
		for _, brk := range session.Breaks {
			if !brk.Finished {
				sl.breakID = brk.ID
				break
			}
		}
		e.slots[scope] = sl
		resumed++
	}

	return results.Ok("ENGINE_RESUMED", "Open sessions resumed", resumed)
}
