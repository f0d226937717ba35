package services

import (
	"context"
	"strings"

	lru "github.com/hashicorp/golang-lru"
	"github.com/sahilm/fuzzy"

	"github.com/ellavondegurechaff/pitytrack/trackbot/config"
	"github.com/ellavondegurechaff/pitytrack/trackbot/database/models"
	"github.com/ellavondegurechaff/pitytrack/trackbot/database/repositories"
	"github.com/ellavondegurechaff/pitytrack/trackbot/results"
)

// BannerService validates input, then delegates to the repository. Every
// failure coming back up is re-coded to this layer's vocabulary; message
// and diagnostic detail pass through untouched.
type BannerService struct {
	repo  repositories.BannerRepository
	cache *lru.Cache
}

func NewBannerService(repo repositories.BannerRepository) *BannerService {
	cache, _ := lru.New(config.BannerCacheSize)
	return &BannerService{repo: repo, cache: cache}
}

func (s *BannerService) CreateBanner(ctx context.Context, gameID int64, name string, currentPity, maxPity int) results.Result[*models.Banner] {
	if gameID <= 0 {
		return results.Fail[*models.Banner]("EMPTY_GAME_ID", "A game is required to create a banner", "")
	}
	name = strings.TrimSpace(name)
	if name == "" {
		return results.Fail[*models.Banner]("EMPTY_BANNER_NAME", "Banner name cannot be empty", "")
	}
	if currentPity < 0 {
		return results.Fail[*models.Banner]("INVALID_PITY", "Pity cannot be negative", "")
	}
	if maxPity <= 0 {
		return results.Fail[*models.Banner]("INVALID_MAX_PITY", "Max pity must be positive", "")
	}
	if currentPity > maxPity {
		return results.Fail[*models.Banner]("INVALID_PITY", "Pity cannot exceed max pity", "")
	}

	res := s.repo.Add(ctx, gameID, name, currentPity, maxPity)
	if !res.Success {
		if res.Code == "BANNER_ALREADY_EXISTS" || res.Code == "GAME_NOT_FOUND" {
			return res
		}
		return results.Recode[*models.Banner]("CREATE_BANNER_FAILED", res)
	}
	return res
}

func (s *BannerService) GetBanners(ctx context.Context, gameID int64) results.Result[[]*models.Banner] {
	if gameID <= 0 {
		return results.Fail[[]*models.Banner]("EMPTY_GAME_ID", "A game is required to list banners", "")
	}
	return s.repo.GetByGame(ctx, gameID)
}

// GetBanner serves reads from a small LRU snapshot cache. Mutating
// operations evict the entry, so a hit is at worst as stale as the last
// write through this service.
func (s *BannerService) GetBanner(ctx context.Context, id int64) results.Result[*models.Banner] {
	if id <= 0 {
		return results.Fail[*models.Banner]("EMPTY_BANNER_ID", "A banner is required", "")
	}

	if cached, ok := s.cache.Get(id); ok {
		return results.Ok("BANNER_FETCHED", "Banner found", cached.(*models.Banner))
	}

	res := s.repo.Get(ctx, id)
	if res.Success {
		s.cache.Add(id, res.Data)
	}
	return res
}

func (s *BannerService) UpdatePity(ctx context.Context, id int64, pity int) results.Result[struct{}] {
	if id <= 0 {
		return results.Fail[struct{}]("EMPTY_BANNER_ID", "A banner is required", "")
	}
	if pity < 0 {
		return results.Fail[struct{}]("INVALID_PITY", "Pity cannot be negative", "")
	}

	res := s.repo.UpdatePity(ctx, id, pity)
	if res.Success {
		s.cache.Remove(id)
	} else if res.Code != "BANNER_NOT_FOUND" {
		return results.Recode[struct{}]("UPDATE_PITY_FAILED", res)
	}
	return res
}

func (s *BannerService) UpdateMaxPity(ctx context.Context, id int64, maxPity int) results.Result[struct{}] {
	if id <= 0 {
		return results.Fail[struct{}]("EMPTY_BANNER_ID", "A banner is required", "")
	}
	if maxPity <= 0 {
		return results.Fail[struct{}]("INVALID_MAX_PITY", "Max pity must be positive", "")
	}

	res := s.repo.UpdateMaxPity(ctx, id, maxPity)
	if res.Success {
		s.cache.Remove(id)
	} else if res.Code != "BANNER_NOT_FOUND" {
		return results.Recode[struct{}]("UPDATE_PITY_FAILED", res)
	}
	return res
}

// UpdatePityDetail sets both pity fields at once.
func (s *BannerService) UpdatePityDetail(ctx context.Context, id int64, pity, maxPity int) results.Result[struct{}] {
	if id <= 0 {
		return results.Fail[struct{}]("EMPTY_BANNER_ID", "A banner is required", "")
	}
	if pity < 0 {
		return results.Fail[struct{}]("INVALID_PITY", "Pity cannot be negative", "")
	}
	if maxPity <= 0 {
		return results.Fail[struct{}]("INVALID_MAX_PITY", "Max pity must be positive", "")
	}
	if pity > maxPity {
		return results.Fail[struct{}]("INVALID_PITY", "Pity cannot exceed max pity", "")
	}

	res := s.repo.UpdatePityDetail(ctx, id, pity, maxPity)
	if res.Success {
		s.cache.Remove(id)
	} else if res.Code != "BANNER_NOT_FOUND" {
		return results.Recode[struct{}]("UPDATE_PITY_FAILED", res)
	}
	return res
}

func (s *BannerService) RenameBanner(ctx context.Context, id int64, newName string) results.Result[struct{}] {
	if id <= 0 {
		return results.Fail[struct{}]("EMPTY_BANNER_ID", "A banner is required", "")
	}
	newName = strings.TrimSpace(newName)
	if newName == "" {
		return results.Fail[struct{}]("EMPTY_BANNER_NAME", "Banner name cannot be empty", "")
	}

	res := s.repo.Rename(ctx, id, newName)
	if res.Success {
		s.cache.Remove(id)
	} else if res.Code != "BANNER_NOT_FOUND" && res.Code != "BANNER_ALREADY_EXISTS" {
		return results.Recode[struct{}]("RENAME_BANNER_FAILED", res)
	}
	return res
}

func (s *BannerService) DeleteBanner(ctx context.Context, id int64) results.Result[struct{}] {
	if id <= 0 {
		return results.Fail[struct{}]("EMPTY_BANNER_ID", "A banner is required", "")
	}

	res := s.repo.Delete(ctx, id)
	if res.Success {
		s.cache.Remove(id)
	} else if res.Code != "BANNER_NOT_FOUND" {
		return results.Recode[struct{}]("DELETE_BANNER_FAILED", res)
	}
	return res
}

type bannerSource []*models.Banner

func (b bannerSource) String(i int) string { return b[i].Name }
func (b bannerSource) Len() int            { return len(b) }

// SearchBanners fuzzy-matches the query against the game's banner names
// and returns up to MaxSearchResults banners, best match first.
func (s *BannerService) SearchBanners(ctx context.Context, gameID int64, query string) results.Result[[]*models.Banner] {
	query = strings.TrimSpace(query)
	if query == "" {
		return results.Fail[[]*models.Banner]("EMPTY_SEARCH_QUERY", "Search query cannot be empty", "")
	}

	ctx, cancel := context.WithTimeout(ctx, config.SearchTimeout)
	defer cancel()

	listed := s.repo.GetByGame(ctx, gameID)
	if !listed.Success {
		return listed
	}

	matches := fuzzy.FindFrom(query, bannerSource(listed.Data))
	if len(matches) == 0 {
		return results.Fail[[]*models.Banner]("NO_BANNERS_FOUND", "No banners match the search", "")
	}

	limit := len(matches)
	if limit > config.MaxSearchResults {
		limit = config.MaxSearchResults
	}
	found := make([]*models.Banner, 0, limit)
	for _, m := range matches[:limit] {
		found = append(found, listed.Data[m.Index])
	}

	return results.Ok("BANNERS_RETRIEVED", "Banners matched", found)
}
