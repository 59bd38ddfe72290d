package services

import (
	"context"
	"encoding/json"
	"log"

	"github.com/wahealth/sca-simulator/internal/domain/providers"
	"github.com/wahealth/sca-simulator/internal/domain/repositories"
	"github.com/wahealth/sca-simulator/internal/infrastructure/observability"
)

const (
	statsCacheKey = "admin:stats"
	statsCacheTTL = 30 // seconds
)

// AdminService exposes dashboard stats and connectivity probes
type AdminService struct {
	statsRepo repositories.StatsRepository
	cache     providers.CacheProvider
	metrics   *observability.Metrics
}

// NewAdminService creates a new admin service
func NewAdminService(statsRepo repositories.StatsRepository, cache providers.CacheProvider, metrics *observability.Metrics) *AdminService {
	return &AdminService{
		statsRepo: statsRepo,
		cache:     cache,
		metrics:   metrics,
	}
}

// Stats returns user/case/consultation counts via a short-lived cache
func (s *AdminService) Stats(ctx context.Context) (*repositories.Stats, error) {
	if s.cache != nil {
		if cached, err := s.cache.Get(ctx, statsCacheKey); err == nil {
			var stats repositories.Stats
			if err := json.Unmarshal(cached, &stats); err == nil {
				if s.metrics != nil {
					observability.RecordCacheHit(ctx, s.metrics, statsCacheKey)
				}
				return &stats, nil
			}
		}
		if s.metrics != nil {
			observability.RecordCacheMiss(ctx, s.metrics, statsCacheKey)
		}
	}

	stats, err := s.statsRepo.Counts(ctx)
	if err != nil {
		return nil, err
	}

	if s.cache != nil {
		if data, err := json.Marshal(stats); err == nil {
			if err := s.cache.Set(ctx, statsCacheKey, data, statsCacheTTL); err != nil {
				log.Printf("Warning: Failed to cache admin stats: %v", err)
			}
		}
	}

	return stats, nil
}
