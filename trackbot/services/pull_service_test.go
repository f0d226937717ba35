package services

import (
	"context"
	"testing"
	"time"

	"github.com/ellavondegurechaff/pitytrack/trackbot/database/models"
	"github.com/ellavondegurechaff/pitytrack/trackbot/results"
)

// fakePullRepo mirrors the real repository's absolute pity rule: recording
// a pull sets the owning banner's current pity to the pull's value.
type fakePullRepo struct {
	banners *fakeBannerRepo
	pulls   map[int64]*models.PullEntry
	nextID  int64
}

func newFakePullRepo(banners *fakeBannerRepo) *fakePullRepo {
	return &fakePullRepo{banners: banners, pulls: make(map[int64]*models.PullEntry)}
}

func (f *fakePullRepo) Add(_ context.Context, bannerID int64, entryName string, pity int, notes string) results.Result[*models.PullEntry] {
	banner, ok := f.banners.banners[bannerID]
	if !ok {
		return results.Fail[*models.PullEntry]("BANNER_NOT_FOUND", "Banner does not exist", "")
	}
	f.nextID++
	entry := &models.PullEntry{
		ID:        f.nextID,
		BannerID:  bannerID,
		GameID:    banner.GameID,
		EntryName: entryName,
		Pity:      pity,
		Notes:     notes,
		Timestamp: time.Now().UTC(),
	}
	f.pulls[entry.ID] = entry
	banner.CurrentPity = pity
	return results.Ok("PULL_ADDED", "Pull recorded", entry)
}

func (f *fakePullRepo) GetByBanner(_ context.Context, bannerID int64) results.Result[[]*models.PullEntry] {
	var pulls []*models.PullEntry
	for _, pull := range f.pulls {
		if pull.BannerID == bannerID {
			pulls = append(pulls, pull)
		}
	}
	if len(pulls) == 0 {
		return results.Fail[[]*models.PullEntry]("NO_PULL_ENTRIES_FOUND", "The banner has no recorded pulls", "")
	}
	return results.Ok("PULL_HISTORY_RETRIEVED", "Pull history listed", pulls)
}

func (f *fakePullRepo) Update(_ context.Context, id int64, entryName string, pity int, notes string) results.Result[struct{}] {
	pull, ok := f.pulls[id]
	if !ok {
		return results.Fail[struct{}]("PULL_NOT_FOUND", "Pull entry does not exist", "")
	}
	pull.EntryName = entryName
	pull.Pity = pity
	pull.Notes = notes
	return results.OkMsg[struct{}]("PULL_UPDATED", "Pull entry edited")
}

func (f *fakePullRepo) Delete(_ context.Context, id int64) results.Result[struct{}] {
	if _, ok := f.pulls[id]; !ok {
		return results.Fail[struct{}]("PULL_NOT_FOUND", "Pull entry does not exist", "")
	}
	delete(f.pulls, id)
	return results.OkMsg[struct{}]("PULL_DELETED", "Pull entry deleted")
}

func pullFixture(t *testing.T) (*PullService, *BannerService, int64) {
	t.Helper()
	bannerRepo := newFakeBannerRepo()
	bannerService := NewBannerService(bannerRepo)
	pullService := NewPullService(newFakePullRepo(bannerRepo), bannerService)

	created := bannerService.CreateBanner(context.Background(), 1, "Limited", 30, 90)
	if !created.Success {
		t.Fatalf("fixture banner failed: %s", created.Code)
	}
	return pullService, bannerService, created.Data.ID
}

func TestAddPullSetsAbsolutePity(t *testing.T) {
	pulls, banners, bannerID := pullFixture(t)
	ctx := context.Background()

	// Pity 75 is the recorded value, not an increment on the banner's 30
	res := pulls.AddPull(ctx, bannerID, "Neuvillette", 75, "won the 50/50")
	if !res.Success {
		t.Fatalf("AddPull failed: %s", res.Code)
	}

	banner := banners.GetBanner(ctx, bannerID)
	if banner.Data.CurrentPity != 75 {
		t.Errorf("banner pity = %d, want 75", banner.Data.CurrentPity)
	}

	// A later pull at a lower value overwrites, it does not accumulate
	pulls.AddPull(ctx, bannerID, "Zhongli", 3, "")
	banner = banners.GetBanner(ctx, bannerID)
	if banner.Data.CurrentPity != 3 {
		t.Errorf("banner pity = %d, want 3", banner.Data.CurrentPity)
	}
}

func TestEditPullLeavesBannerPityAlone(t *testing.T) {
	pulls, banners, bannerID := pullFixture(t)
	ctx := context.Background()

	added := pulls.AddPull(ctx, bannerID, "Neuvillette", 75, "")
	if res := pulls.EditPull(ctx, added.Data.ID, "Neuvillette C1", 74, "typo fix"); !res.Success {
		t.Fatalf("EditPull failed: %s", res.Code)
	}

	banner := banners.GetBanner(ctx, bannerID)
	if banner.Data.CurrentPity != 75 {
		t.Errorf("banner pity changed by history edit: %d", banner.Data.CurrentPity)
	}

	history := pulls.GetBannerPulls(ctx, bannerID)
	if history.Data[0].EntryName != "Neuvillette C1" || history.Data[0].Pity != 74 {
		t.Errorf("edit not applied: %+v", history.Data[0])
	}
}

func TestPullValidation(t *testing.T) {
	pulls, _, bannerID := pullFixture(t)
	ctx := context.Background()

	tests := []struct {
		name string
		run  func() (bool, string)
		code string
	}{
		{
			name: "missing banner id",
			run: func() (bool, string) {
				res := pulls.AddPull(ctx, 0, "x", 1, "")
				return res.Success, res.Code
			},
			code: "EMPTY_BANNER_ID",
		},
		{
			name: "blank entry",
			run: func() (bool, string) {
				res := pulls.AddPull(ctx, bannerID, "  ", 1, "")
				return res.Success, res.Code
			},
			code: "EMPTY_ENTRY_NAME",
		},
		{
			name: "negative pity",
			run: func() (bool, string) {
				res := pulls.AddPull(ctx, bannerID, "x", -1, "")
				return res.Success, res.Code
			},
			code: "INVALID_PITY",
		},
		{
			name: "unknown banner",
			run: func() (bool, string) {
				res := pulls.AddPull(ctx, 999, "x", 1, "")
				return res.Success, res.Code
			},
			code: "BANNER_NOT_FOUND",
		},
		{
			name: "delete unknown pull",
			run: func() (bool, string) {
				res := pulls.DeletePull(ctx, 999)
				return res.Success, res.Code
			},
			code: "PULL_NOT_FOUND",
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
