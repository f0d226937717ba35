package services

import (
	"context"
	"testing"
	"time"

	"github.com/ellavondegurechaff/pitytrack/trackbot/database/models"
	"github.com/ellavondegurechaff/pitytrack/trackbot/results"
)

// fakeBannerRepo is an in-memory stand-in with the repository's global
// name uniqueness rule. calls counts repository hits per method so tests
// can assert validation short-circuits and cache hits.
type fakeBannerRepo struct {
	banners map[int64]*models.Banner
	nextID  int64
	calls   map[string]int
	failAll bool
}

func newFakeBannerRepo() *fakeBannerRepo {
	return &fakeBannerRepo{
		banners: make(map[int64]*models.Banner),
		calls:   make(map[string]int),
	}
}

func (f *fakeBannerRepo) Add(_ context.Context, gameID int64, name string, currentPity, maxPity int) results.Result[*models.Banner] {
	f.calls["Add"]++
	if f.failAll {
		return results.Fail[*models.Banner]("BANNER_INSERT_FAILED", "Failed to save the new banner", "boom")
	}
	for _, banner := range f.banners {
		if banner.Name == name {
			return results.Fail[*models.Banner]("BANNER_ALREADY_EXISTS", "Banner name already exists", "")
		}
	}
	f.nextID++
	banner := &models.Banner{
		ID:          f.nextID,
		GameID:      gameID,
		Name:        name,
		CurrentPity: currentPity,
		MaxPity:     maxPity,
		LastUpdated: time.Now().UTC(),
	}
	f.banners[banner.ID] = banner
	return results.Ok("BANNER_ADDED", "Banner created", banner)
}

func (f *fakeBannerRepo) Get(_ context.Context, id int64) results.Result[*models.Banner] {
	f.calls["Get"]++
	banner, ok := f.banners[id]
	if !ok {
		return results.Fail[*models.Banner]("BANNER_NOT_FOUND", "Banner does not exist", "")
	}
	return results.Ok("BANNER_FETCHED", "Banner found", banner)
}

func (f *fakeBannerRepo) GetByGame(_ context.Context, gameID int64) results.Result[[]*models.Banner] {
	f.calls["GetByGame"]++
	var banners []*models.Banner
	for _, banner := range f.banners {
		if banner.GameID == gameID {
			banners = append(banners, banner)
		}
	}
	if len(banners) == 0 {
		return results.Fail[[]*models.Banner]("NO_BANNERS_FOUND", "The game has no banners", "")
	}
	return results.Ok("BANNERS_RETRIEVED", "Banners listed", banners)
}

func (f *fakeBannerRepo) NameExists(_ context.Context, name string) results.Result[bool] {
	for _, banner := range f.banners {
		if banner.Name == name {
			return results.Ok("BANNER_EXISTS_CHECKED", "Checked banner name", true)
		}
	}
	return results.Ok("BANNER_EXISTS_CHECKED", "Checked banner name", false)
}

func (f *fakeBannerRepo) UpdatePity(_ context.Context, id int64, pity int) results.Result[struct{}] {
	f.calls["UpdatePity"]++
	banner, ok := f.banners[id]
	if !ok {
		return results.Fail[struct{}]("BANNER_NOT_FOUND", "Banner does not exist", "")
	}
	banner.CurrentPity = pity
	return results.OkMsg[struct{}]("BANNER_UPDATED", "Banner updated")
}

func (f *fakeBannerRepo) UpdateMaxPity(_ context.Context, id int64, maxPity int) results.Result[struct{}] {
	banner, ok := f.banners[id]
	if !ok {
		return results.Fail[struct{}]("BANNER_NOT_FOUND", "Banner does not exist", "")
	}
	banner.MaxPity = maxPity
	return results.OkMsg[struct{}]("BANNER_UPDATED", "Banner updated")
}

func (f *fakeBannerRepo) UpdatePityDetail(_ context.Context, id int64, pity, maxPity int) results.Result[struct{}] {
	banner, ok := f.banners[id]
	if !ok {
		return results.Fail[struct{}]("BANNER_NOT_FOUND", "Banner does not exist", "")
	}
	banner.CurrentPity = pity
	banner.MaxPity = maxPity
	return results.OkMsg[struct{}]("BANNER_UPDATED", "Banner updated")
}

func (f *fakeBannerRepo) Rename(_ context.Context, id int64, newName string) results.Result[struct{}] {
	banner, ok := f.banners[id]
	if !ok {
		return results.Fail[struct{}]("BANNER_NOT_FOUND", "Banner does not exist", "")
	}
	for otherID, other := range f.banners {
		if otherID != id && other.Name == newName {
			return results.Fail[struct{}]("BANNER_ALREADY_EXISTS", "Banner name already exists", "")
		}
	}
	banner.Name = newName
	return results.OkMsg[struct{}]("BANNER_UPDATED", "Banner updated")
}

func (f *fakeBannerRepo) Delete(_ context.Context, id int64) results.Result[struct{}] {
	if _, ok := f.banners[id]; !ok {
		return results.Fail[struct{}]("BANNER_NOT_FOUND", "Banner does not exist", "")
	}
	delete(f.banners, id)
	return results.OkMsg[struct{}]("BANNER_DELETED", "Banner deleted")
}

func TestCreateBannerValidation(t *testing.T) {
	repo := newFakeBannerRepo()
	s := NewBannerService(repo)
	ctx := context.Background()

	tests := []struct {
		name        string
		gameID      int64
		bannerName  string
		currentPity int
		maxPity     int
		code        string
	}{
		{name: "missing game", gameID: 0, bannerName: "x", maxPity: 90, code: "EMPTY_GAME_ID"},
		{name: "blank name", gameID: 1, bannerName: "   ", maxPity: 90, code: "EMPTY_BANNER_NAME"},
		{name: "negative pity", gameID: 1, bannerName: "x", currentPity: -1, maxPity: 90, code: "INVALID_PITY"},
		{name: "zero max pity", gameID: 1, bannerName: "x", maxPity: 0, code: "INVALID_MAX_PITY"},
		{name: "pity above max", gameID: 1, bannerName: "x", currentPity: 91, maxPity: 90, code: "INVALID_PITY"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := s.CreateBanner(ctx, tt.gameID, tt.bannerName, tt.currentPity, tt.maxPity)
			if res.Success {
				t.Fatal("expected failure")
			}
			if res.Code != tt.code {
				t.Errorf("code = %s, want %s", res.Code, tt.code)
			}
		})
	}
	if repo.calls["Add"] != 0 {
		t.Errorf("repository hit %d times on invalid input", repo.calls["Add"])
	}
}

func TestCreateBannerRoundTrip(t *testing.T) {
	repo := newFakeBannerRepo()
	s := NewBannerService(repo)
	ctx := context.Background()

	created := s.CreateBanner(ctx, 1, "Chronicled Wish", 10, 90)
	if !created.Success {
		t.Fatalf("CreateBanner failed: %s", created.Code)
	}

	got := s.GetBanner(ctx, created.Data.ID)
	if !got.Success {
		t.Fatalf("GetBanner failed: %s", got.Code)
	}
	if got.Data.Name != "Chronicled Wish" || got.Data.CurrentPity != 10 || got.Data.MaxPity != 90 {
		t.Errorf("round trip mismatch: %+v", got.Data)
	}

	dup := s.CreateBanner(ctx, 2, "Chronicled Wish", 0, 80)
	if dup.Success || dup.Code != "BANNER_ALREADY_EXISTS" {
		t.Errorf("duplicate name: success=%v code=%s", dup.Success, dup.Code)
	}
}

func TestCreateBannerRecodesStorageFailure(t *testing.T) {
	repo := newFakeBannerRepo()
	repo.failAll = true
	s := NewBannerService(repo)

	res := s.CreateBanner(context.Background(), 1, "x", 0, 90)
	if res.Success {
		t.Fatal("expected failure")
	}
	if res.Code != "CREATE_BANNER_FAILED" {
		t.Errorf("code = %s, want CREATE_BANNER_FAILED", res.Code)
	}
	if res.Message != "Failed to save the new banner" {
		t.Errorf("message not preserved: %q", res.Message)
	}
	if res.Error != "boom" {
		t.Errorf("diagnostic not preserved: %q", res.Error)
	}
}

func TestGetBannerCacheInvalidation(t *testing.T) {
	repo := newFakeBannerRepo()
	s := NewBannerService(repo)
	ctx := context.Background()

	created := s.CreateBanner(ctx, 1, "Standard", 0, 90)
	id := created.Data.ID

	s.GetBanner(ctx, id)
	s.GetBanner(ctx, id)
	if repo.calls["Get"] != 1 {
		t.Errorf("Get calls = %d, want 1 (second read cached)", repo.calls["Get"])
	}

	if res := s.UpdatePity(ctx, id, 42); !res.Success {
		t.Fatalf("UpdatePity failed: %s", res.Code)
	}
	got := s.GetBanner(ctx, id)
	if got.Data.CurrentPity != 42 {
		t.Errorf("stale read after mutation: pity = %d, want 42", got.Data.CurrentPity)
	}
	if repo.calls["Get"] != 2 {
		t.Errorf("Get calls = %d, want 2 (cache evicted by update)", repo.calls["Get"])
	}
}

func TestSearchBanners(t *testing.T) {
	repo := newFakeBannerRepo()
	s := NewBannerService(repo)
	ctx := context.Background()

	s.CreateBanner(ctx, 1, "Chronicled Wish", 0, 90)
	s.CreateBanner(ctx, 1, "Weapon Banner", 0, 80)
	s.CreateBanner(ctx, 1, "Standard Wish", 0, 90)

	res := s.SearchBanners(ctx, 1, "wish")
	if !res.Success {
		t.Fatalf("SearchBanners failed: %s", res.Code)
	}
	for _, banner := range res.Data {
		if banner.Name == "Weapon Banner" {
			t.Errorf("non-matching banner returned: %s", banner.Name)
		}
	}
	if len(res.Data) != 2 {
		t.Errorf("len = %d, want 2", len(res.Data))
	}

	empty := s.SearchBanners(ctx, 1, "   ")
	if empty.Success || empty.Code != "EMPTY_SEARCH_QUERY" {
		t.Errorf("blank query: success=%v code=%s", empty.Success, empty.Code)
	}

	none := s.SearchBanners(ctx, 1, "zzzzqqq")
	if none.Success || none.Code != "NO_BANNERS_FOUND" {
		t.Errorf("no match: success=%v code=%s", none.Success, none.Code)
	}
}
