package app

import (
	"context"
	"fmt"
	"time"

	"water_map/internal/domain"
)

type QueryService struct {
	repo     domain.RestaurantRepository
	cache    domain.Cache
	cacheTTL time.Duration
}

func NewQueryService(r domain.RestaurantRepository, c domain.Cache, ttl time.Duration) *QueryService {
	return &QueryService{repo: r, cache: c, cacheTTL: ttl}
}

// ListApproved returns the public map projection. The cache key embeds
// the generation that was current before the store read: a reader that
// snapshots the store just before an approval commits writes its stale
// list under the old generation, which no reader consults after the
// approval bumps the counter. The cached copy therefore always matches
// the committed state.
func (s *QueryService) ListApproved(ctx context.Context) ([]domain.ApprovedRestaurant, error) {
	var out []domain.ApprovedRestaurant
	var key string
	if s.cache != nil {
		if k, err := s.approvedKey(ctx); err == nil {
			key = k
			if ok, _ := s.cache.Get(ctx, key, &out); ok {
				return out, nil
			}
		}
	}
	out, err := s.repo.ListApproved(ctx)
	if err != nil {
		return nil, err
	}
	if key != "" {
		_ = s.cache.Set(ctx, key, out, int(s.cacheTTL.Seconds()))
	}
	return out, nil
}

func (s *QueryService) approvedKey(ctx context.Context) (string, error) {
	var gen int64
	ok, err := s.cache.Get(ctx, ApprovedGenKey, &gen)
	if err != nil {
		return "", err
	}
	if !ok {
		gen = 0
	}
	return fmt.Sprintf("%s:%d", ApprovedCacheKey, gen), nil
}

// ListPending is the admin-panel view. Never cached: it changes on every
// submission and every review.
func (s *QueryService) ListPending(ctx context.Context) ([]domain.PendingRestaurant, error) {
	return s.repo.ListPending(ctx)
}

// GetByID returns the full record, nulls included, with no status filter.
func (s *QueryService) GetByID(ctx context.Context, id int64) (domain.Restaurant, error) {
	return s.repo.GetByID(ctx, id)
}
