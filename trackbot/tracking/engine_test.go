package tracking

import (
	"context"
	"testing"
	"time"

	"github.com/ellavondegurechaff/pitytrack/trackbot/database/models"
	"github.com/ellavondegurechaff/pitytrack/trackbot/results"
)

// fakeSessionRepo is an in-memory stand-in for the Postgres repository
// with the same close-out semantics: finished breaks accumulate into
// break_seconds, an open break is folded in when the session ends.
type fakeSessionRepo struct {
	sessions map[int64]*models.Session
	breaks   map[int64]*models.SessionBreak
	nextID   int64
	failNext string
}

func newFakeSessionRepo() *fakeSessionRepo {
	return &fakeSessionRepo{
		sessions: make(map[int64]*models.Session),
		breaks:   make(map[int64]*models.SessionBreak),
	}
}

func (f *fakeSessionRepo) fail() bool {
	if f.failNext != "" {
		f.failNext = ""
		return true
	}
	return false
}

func (f *fakeSessionRepo) Start(_ context.Context, channelID, name string, start time.Time) results.Result[*models.Session] {
	if f.fail() {
		return results.Fail[*models.Session]("SESSION_INSERT_FAILED", "Failed to save the new session", "boom")
	}
	f.nextID++
	session := &models.Session{ID: f.nextID, ChannelID: channelID, Name: name, StartTime: start}
	f.sessions[session.ID] = session
	return results.Ok("SESSION_ADDED", "Session saved", session)
}

func (f *fakeSessionRepo) Get(_ context.Context, id int64) results.Result[*models.Session] {
	session, ok := f.sessions[id]
	if !ok {
		return results.Fail[*models.Session]("SESSION_NOT_FOUND", "Session does not exist", "")
	}
	copied := *session
	copied.Breaks = nil
	for _, brk := range f.breaks {
		if brk.SessionID == id {
			b := *brk
			copied.Breaks = append(copied.Breaks, &b)
		}
	}
	return results.Ok("SESSION_FETCHED", "Session found", &copied)
}

func (f *fakeSessionRepo) AddBreak(_ context.Context, sessionID int64, start time.Time) results.Result[*models.SessionBreak] {
	if f.fail() {
		return results.Fail[*models.SessionBreak]("BREAK_INSERT_FAILED", "Failed to save the break", "boom")
	}
	if _, ok := f.sessions[sessionID]; !ok {
		return results.Fail[*models.SessionBreak]("SESSION_NOT_FOUND", "Session does not exist", "")
	}
	for _, brk := range f.breaks {
		if brk.SessionID == sessionID && !brk.Finished {
			return results.Fail[*models.SessionBreak]("BREAK_ALREADY_ACTIVE", "A break is already in progress", "")
		}
	}
	f.nextID++
	brk := &models.SessionBreak{ID: f.nextID, SessionID: sessionID, BreakStart: start}
	f.breaks[brk.ID] = brk
	return results.Ok("BREAK_ADDED", "Break saved", brk)
}

func (f *fakeSessionRepo) EndBreak(_ context.Context, breakID int64, end time.Time) results.Result[*models.SessionBreak] {
	brk, ok := f.breaks[breakID]
	if !ok {
		return results.Fail[*models.SessionBreak]("BREAK_NOT_FOUND", "Break does not exist", "")
	}
	if brk.Finished {
		return results.Fail[*models.SessionBreak]("BREAK_ALREADY_ENDED", "The break already ended", "")
	}
	brk.BreakEnd = &end
	brk.DurationSeconds = int64(end.Sub(brk.BreakStart).Seconds())
	brk.Finished = true
	f.sessions[brk.SessionID].BreakSeconds += brk.DurationSeconds
	return results.Ok("BREAK_ENDED", "Break ended", brk)
}

func (f *fakeSessionRepo) End(_ context.Context, sessionID int64, end time.Time) results.Result[*models.Session] {
	if f.fail() {
		return results.Fail[*models.Session]("SESSION_UPDATE_FAILED", "Failed to end the session", "boom")
	}
	session, ok := f.sessions[sessionID]
	if !ok {
		return results.Fail[*models.Session]("SESSION_NOT_FOUND", "Session does not exist", "")
	}
	if session.EndTime != nil {
		return results.Fail[*models.Session]("SESSION_ALREADY_ENDED", "The session already ended", "")
	}
	for _, brk := range f.breaks {
		if brk.SessionID == sessionID && !brk.Finished {
			brk.BreakEnd = &end
			brk.DurationSeconds = int64(end.Sub(brk.BreakStart).Seconds())
			brk.Finished = true
			session.BreakSeconds += brk.DurationSeconds
		}
	}
	session.EndTime = &end
	session.TotalSeconds = int64(end.Sub(session.StartTime).Seconds())
	return results.Ok("SESSION_ENDED", "Session ended", session)
}

func (f *fakeSessionRepo) Browse(_ context.Context) results.Result[[]*models.Session] {
	if len(f.sessions) == 0 {
		return results.Fail[[]*models.Session]("NO_SESSIONS_FOUND", "No sessions recorded yet", "")
	}
	var sessions []*models.Session
	for id := range f.sessions {
		sessions = append(sessions, f.Get(context.Background(), id).Data)
	}
	return results.Ok("SESSION_LIST_RETRIEVED", "Sessions listed", sessions)
}

func (f *fakeSessionRepo) Delete(_ context.Context, id int64) results.Result[struct{}] {
	if _, ok := f.sessions[id]; !ok {
		return results.Fail[struct{}]("SESSION_NOT_FOUND", "Session does not exist", "")
	}
	delete(f.sessions, id)
	for bid, brk := range f.breaks {
		if brk.SessionID == id {
			delete(f.breaks, bid)
		}
	}
	return results.OkMsg[struct{}]("SESSION_DELETED", "Session deleted")
}

func (f *fakeSessionRepo) DeleteBreak(_ context.Context, breakID int64) results.Result[struct{}] {
	brk, ok := f.breaks[breakID]
	if !ok {
		return results.Fail[struct{}]("BREAK_NOT_FOUND", "Break does not exist", "")
	}
	if brk.Finished {
		f.sessions[brk.SessionID].BreakSeconds -= brk.DurationSeconds
	}
	delete(f.breaks, breakID)
	return results.OkMsg[struct{}]("BREAK_DELETED", "Break deleted")
}

// testEngine returns an engine whose clock starts at a fixed instant and
// only moves when the test advances it.
func testEngine(repo *fakeSessionRepo) (*Engine, func(d time.Duration)) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	e := NewEngine(repo)
	e.now = func() time.Time { return now }
	return e, func(d time.Duration) { now = now.Add(d) }
}

func TestEndSessionWithoutBreaks(t *testing.T) {
	e, advance := testEngine(newFakeSessionRepo())
	ctx := context.Background()

	if res := e.StartSession(ctx, "chan", "farming"); !res.Success {
		t.Fatalf("StartSession failed: %s", res.Code)
	}
	advance(90 * time.Minute)

	res := e.EndSession(ctx, "chan")
	if !res.Success {
		t.Fatalf("EndSession failed: %s", res.Code)
	}
	if res.Data.TotalSeconds != 5400 {
		t.Errorf("TotalSeconds = %d, want 5400", res.Data.TotalSeconds)
	}
	if res.Data.NetSeconds != res.Data.TotalSeconds {
		t.Errorf("net %d != total %d with no breaks", res.Data.NetSeconds, res.Data.TotalSeconds)
	}
	if res.Data.Net != "1:30:00" {
		t.Errorf("Net = %q, want 1:30:00", res.Data.Net)
	}
}

func TestEndSessionSubtractsFinishedBreaks(t *testing.T) {
	e, advance := testEngine(newFakeSessionRepo())
	ctx := context.Background()

	e.StartSession(ctx, "chan", "farming")
	advance(20 * time.Minute)
	if res := e.AddBreak(ctx, "chan"); !res.Success {
		t.Fatalf("AddBreak failed: %s", res.Code)
	}
	advance(10 * time.Minute)
	if res := e.EndBreak(ctx, "chan"); !res.Success {
		t.Fatalf("EndBreak failed: %s", res.Code)
	}
	advance(30 * time.Minute)

	res := e.EndSession(ctx, "chan")
	if !res.Success {
		t.Fatalf("EndSession failed: %s", res.Code)
	}
	if res.Data.TotalSeconds != 3600 {
		t.Errorf("TotalSeconds = %d, want 3600", res.Data.TotalSeconds)
	}
	if res.Data.BreakSeconds != 600 {
		t.Errorf("BreakSeconds = %d, want 600", res.Data.BreakSeconds)
	}
	if res.Data.NetSeconds != 3000 {
		t.Errorf("NetSeconds = %d, want 3000", res.Data.NetSeconds)
	}
}

func TestEndSessionFoldsOpenBreak(t *testing.T) {
	e, advance := testEngine(newFakeSessionRepo())
	ctx := context.Background()

	e.StartSession(ctx, "chan", "farming")
	advance(40 * time.Minute)
	e.AddBreak(ctx, "chan")
	advance(5 * time.Minute)

	// End while still on break; the open break counts up to the end instant
	res := e.EndSession(ctx, "chan")
	if !res.Success {
		t.Fatalf("EndSession failed: %s", res.Code)
	}
	if res.Data.BreakSeconds != 300 {
		t.Errorf("BreakSeconds = %d, want 300", res.Data.BreakSeconds)
	}
	if res.Data.NetSeconds != 2400 {
		t.Errorf("NetSeconds = %d, want 2400", res.Data.NetSeconds)
	}
}

func TestStateMachineRejections(t *testing.T) {
	e, _ := testEngine(newFakeSessionRepo())
	ctx := context.Background()

	tests := []struct {
		name string
		run  func() (bool, string)
		code string
	}{
		{
			name: "break with no session",
			run: func() (bool, string) {
				res := e.AddBreak(ctx, "idle")
				return res.Success, res.Code
			},
			code: "ADD_BREAK_FAILED",
		},
		{
			name: "end break with no session",
			run: func() (bool, string) {
				res := e.EndBreak(ctx, "idle")
				return res.Success, res.Code
			},
			code: "END_BREAK_FAILED",
		},
		{
			name: "end with no session",
			run: func() (bool, string) {
				res := e.EndSession(ctx, "idle")
				return res.Success, res.Code
			},
			code: "END_SESSION_FAILED",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			success, code := tt.run()
			if success {
				t.Fatal("expected failure")
			}
			if code != tt.code {
				t.Errorf("code = %s, want %s", code, tt.code)
			}
		})
	}
}

func TestDoubleStartAndDoubleBreak(t *testing.T) {
	e, _ := testEngine(newFakeSessionRepo())
	ctx := context.Background()

	e.StartSession(ctx, "chan", "first")
	if res := e.StartSession(ctx, "chan", "second"); res.Success || res.Code != "SESSION_ALREADY_ACTIVE" {
		t.Errorf("second start: success=%v code=%s", res.Success, res.Code)
	}

	e.AddBreak(ctx, "chan")
	if res := e.AddBreak(ctx, "chan"); res.Success || res.Code != "BREAK_ALREADY_ACTIVE" {
		t.Errorf("second break: success=%v code=%s", res.Success, res.Code)
	}

	// A second scope is independent
	if res := e.StartSession(ctx, "other", "parallel"); !res.Success {
		t.Errorf("other scope start failed: %s", res.Code)
	}
}

func TestStorageFailureLeavesSlotUnchanged(t *testing.T) {
	repo := newFakeSessionRepo()
	e, _ := testEngine(repo)
	ctx := context.Background()

	repo.failNext = "start"
	if res := e.StartSession(ctx, "chan", "doomed"); res.Success || res.Code != "START_SESSION_FAILED" {
		t.Fatalf("success=%v code=%s", res.Success, res.Code)
	}
	// Scope is still Idle, so a retry works
	if res := e.StartSession(ctx, "chan", "retry"); !res.Success {
		t.Fatalf("retry failed: %s", res.Code)
	}

	repo.failNext = "end"
	if res := e.EndSession(ctx, "chan"); res.Success {
		t.Fatal("expected end failure")
	}
	// Session still live after the failed end
	if res := e.Current(ctx, "chan"); !res.Success {
		t.Errorf("session lost after failed end: %s", res.Code)
	}
}

func TestCurrentCountsOpenBreak(t *testing.T) {
	e, advance := testEngine(newFakeSessionRepo())
	ctx := context.Background()

	e.StartSession(ctx, "chan", "farming")
	advance(10 * time.Minute)
	e.AddBreak(ctx, "chan")
	advance(2 * time.Minute)

	res := e.Current(ctx, "chan")
	if !res.Success {
		t.Fatalf("Current failed: %s", res.Code)
	}
	if res.Data.TotalSeconds != 720 {
		t.Errorf("TotalSeconds = %d, want 720", res.Data.TotalSeconds)
	}
	if res.Data.BreakSeconds != 120 {
		t.Errorf("BreakSeconds = %d, want 120", res.Data.BreakSeconds)
	}
	if res.Data.NetSeconds != 600 {
		t.Errorf("NetSeconds = %d, want 600", res.Data.NetSeconds)
	}
}

func TestDeleteBreakReturnsSlotToRunning(t *testing.T) {
	e, advance := testEngine(newFakeSessionRepo())
	ctx := context.Background()

	e.StartSession(ctx, "chan", "farming")
	brk := e.AddBreak(ctx, "chan")
	if !brk.Success {
		t.Fatalf("AddBreak failed: %s", brk.Code)
	}
	advance(time.Minute)

	if res := e.DeleteBreak(ctx, brk.Data.ID); !res.Success {
		t.Fatalf("DeleteBreak failed: %s", res.Code)
	}
	// Back to Running, a new break is allowed
	if res := e.AddBreak(ctx, "chan"); !res.Success {
		t.Errorf("break after delete failed: %s", res.Code)
	}
}

func TestResumeRebuildsSlots(t *testing.T) {
	repo := newFakeSessionRepo()
	e, advance := testEngine(repo)
	ctx := context.Background()

	e.StartSession(ctx, "chan-a", "open one")
	advance(time.Minute)
	e.StartSession(ctx, "chan-b", "open two")
	e.AddBreak(ctx, "chan-b")
	e.StartSession(ctx, "chan-c", "closed")
	e.EndSession(ctx, "chan-c")

	// Fresh engine over the same storage, as after a restart
	restarted, _ := testEngine(repo)
	res := restarted.Resume(ctx)
	if !res.Success {
		t.Fatalf("Resume failed: %s", res.Code)
	}
	if res.Data != 2 {
		t.Errorf("resumed = %d, want 2", res.Data)
	}

	if res := restarted.StartSession(ctx, "chan-a", "dup"); res.Success {
		t.Error("scope with open session accepted a new one after resume")
	}
	if res := restarted.AddBreak(ctx, "chan-b"); res.Success || res.Code != "BREAK_ALREADY_ACTIVE" {
		t.Errorf("open break not resumed: success=%v code=%s", res.Success, res.Code)
	}
	if res := restarted.EndBreak(ctx, "chan-b"); !res.Success {
		t.Errorf("resumed break cannot be ended: %s", res.Code)
	}
}

func TestBrowseReportsLiveAndClosed(t *testing.T) {
	e, advance := testEngine(newFakeSessionRepo())
	ctx := context.Background()

	e.StartSession(ctx, "chan-a", "closed")
	advance(30 * time.Minute)
	e.EndSession(ctx, "chan-a")
	e.StartSession(ctx, "chan-b", "live")
	advance(10 * time.Minute)

	res := e.Browse(ctx)
	if !res.Success {
		t.Fatalf("Browse failed: %s", res.Code)
	}
	if len(res.Data) != 2 {
		t.Fatalf("len = %d, want 2", len(res.Data))
	}
	for _, report := range res.Data {
		switch report.Session.Name {
		case "closed":
			if report.TotalSeconds != 1800 {
				t.Errorf("closed total = %d, want 1800", report.TotalSeconds)
			}
		case "live":
			if report.TotalSeconds != 600 {
				t.Errorf("live total = %d, want 600", report.TotalSeconds)
			}
		}
	}
}
