package services

import (
	"context"
	"strings"

	"github.com/ellavondegurechaff/pitytrack/trackbot/database/models"
	"github.com/ellavondegurechaff/pitytrack/trackbot/database/repositories"
	"github.com/ellavondegurechaff/pitytrack/trackbot/results"
)

type PullService struct {
	pulls   repositories.PullRepository
	banners *BannerService
}

func NewPullService(pulls repositories.PullRepository, banners *BannerService) *PullService {
	return &PullService{pulls: pulls, banners: banners}
}

// AddPull records a pull against the banner. The pull's pity value becomes
// the banner's current pity, so the banner cache entry is evicted.
func (s *PullService) AddPull(ctx context.Context, bannerID int64, entryName string, pity int, notes string) results.Result[*models.PullEntry] {
	if bannerID <= 0 {
		return results.Fail[*models.PullEntry]("EMPTY_BANNER_ID", "A banner is required to record a pull", "")
	}
	entryName = strings.TrimSpace(entryName)
	if entryName == "" {
		return results.Fail[*models.PullEntry]("EMPTY_ENTRY_NAME", "Pull entry name cannot be empty", "")
	}
	if pity < 0 {
		return results.Fail[*models.PullEntry]("INVALID_PITY", "Pity cannot be negative", "")
	}

	res := s.pulls.Add(ctx, bannerID, entryName, pity, notes)
	if res.Success {
		s.banners.cache.Remove(bannerID)
	} else if res.Code != "BANNER_NOT_FOUND" {
		return results.Recode[*models.PullEntry]("ADD_PULL_FAILED", res)
	}
	return res
}

func (s *PullService) GetBannerPulls(ctx context.Context, bannerID int64) results.Result[[]*models.PullEntry] {
	if bannerID <= 0 {
		return results.Fail[[]*models.PullEntry]("EMPTY_BANNER_ID", "A banner is required", "")
	}
	return s.pulls.GetByBanner(ctx, bannerID)
}

// EditPull corrects a history row. It never touches the banner's current
// pity; a correction to history is not a new pull.
func (s *PullService) EditPull(ctx context.Context, id int64, entryName string, pity int, notes string) results.Result[struct{}] {
	if id <= 0 {
		return results.Fail[struct{}]("EMPTY_PULL_ID", "A pull entry is required", "")
	}
	entryName = strings.TrimSpace(entryName)
	if entryName == "" {
		return results.Fail[struct{}]("EMPTY_ENTRY_NAME", "Pull entry name cannot be empty", "")
	}
	if pity < 0 {
		return results.Fail[struct{}]("INVALID_PITY", "Pity cannot be negative", "")
	}

	res := s.pulls.Update(ctx, id, entryName, pity, notes)
	if !res.Success && res.Code != "PULL_NOT_FOUND" {
		return results.Recode[struct{}]("EDIT_PULL_FAILED", res)
	}
	return res
}

func (s *PullService) DeletePull(ctx context.Context, id int64) results.Result[struct{}] {
	if id <= 0 {
		return results.Fail[struct{}]("EMPTY_PULL_ID", "A pull entry is required", "")
	}

	res := s.pulls.Delete(ctx, id)
	if !res.Success && res.Code != "PULL_NOT_FOUND" {
		return results.Recode[struct{}]("DELETE_PULL_FAILED", res)
	}
	return res
}
