package services

import (
	"context"
	"sync/atomic"

	"github.com/ellavondegurechaff/pitytrack/trackbot/config"
	"github.com/ellavondegurechaff/pitytrack/trackbot/database"
	"github.com/ellavondegurechaff/pitytrack/trackbot/database/models"
	"github.com/ellavondegurechaff/pitytrack/trackbot/database/repositories"
	"github.com/ellavondegurechaff/pitytrack/trackbot/results"
)

// SettingsService keeps the singleton settings row seeded and caches the
// pagination size in memory, since every list command reads it.
type SettingsService struct {
	repo     repositories.SettingsRepository
	pageSize atomic.Int64
}

func NewSettingsService(repo repositories.SettingsRepository) *SettingsService {
	s := &SettingsService{repo: repo}
	s.pageSize.Store(int64(config.DefaultPageSize))
	return s
}

// Initialize seeds the settings row and the schema meta record, then
// primes the page size cache.
func (s *SettingsService) Initialize(ctx context.Context) results.Result[struct{}] {
	if res := s.repo.Init(ctx); !res.Success {
		return results.Recode[struct{}]("SETTINGS_INIT_FAILED", res)
	}
	if res := s.repo.TouchMeta(ctx, database.SchemaVersion); !res.Success {
		return results.Recode[struct{}]("SETTINGS_INIT_FAILED", res)
	}

	if res := s.repo.Get(ctx); res.Success {
		s.pageSize.Store(int64(res.Data.PaginationSize))
	}
	return results.OkMsg[struct{}]("SETTINGS_INITIALIZED", "Settings ready")
}

func (s *SettingsService) GetAll(ctx context.Context) results.Result[*models.Settings] {
	return s.repo.Get(ctx)
}

// PageSize is the cached pagination size. Safe to call from command
// handlers without a database round trip.
func (s *SettingsService) PageSize() int {
	return int(s.pageSize.Load())
}

func (s *SettingsService) UpdatePagination(ctx context.Context, size int) results.Result[struct{}] {
	if size <= 0 || size > config.MaxPageSize {
		return results.Fail[struct{}]("INVALID_PAGE_SIZE", "Page size must be between 1 and 25", "")
	}

	res := s.repo.UpdatePagination(ctx, size)
	if res.Success {
		s.pageSize.Store(int64(size))
	} else if res.Code != "SETTINGS_UPDATE_FAILED" {
		return results.Recode[struct{}]("UPDATE_SETTINGS_FAILED", res)
	}
	return res
}

func (s *SettingsService) UpdateFeatures(ctx context.Context, features string) results.Result[struct{}] {
	if features == "" {
		return results.Fail[struct{}]("EMPTY_FEATURES", "Feature flags cannot be empty", "")
	}
	return s.repo.UpdateFeatures(ctx, features)
}

func (s *SettingsService) SchemaMeta(ctx context.Context) results.Result[*models.Meta] {
	return s.repo.GetMeta(ctx, database.SchemaVersion)
}
