package app

import (
	"context"
	"fmt"
	"strings"

	"github.com/rs/zerolog/log"

	"water_map/internal/domain"
)

// The public map projection is cached under generation-suffixed keys
// ("restaurants:approved:<gen>"). Every approval bumps the generation
// counter, which retires the key current readers consult. A reader that
// raced the approval can only repopulate a retired key, so its stale
// snapshot is never served again.
const (
	ApprovedCacheKey = "restaurants:approved"
	ApprovedGenKey   = "restaurants:approved:gen"
)

type ReviewService struct {
	repo  domain.RestaurantRepository
	cache domain.Cache
}

func NewReviewService(r domain.RestaurantRepository, cache domain.Cache) *ReviewService {
	return &ReviewService{repo: r, cache: cache}
}

// Review applies the terminal pending → approved|rejected transition.
// reviewedBy must be the authenticated principal, never a client-supplied
// name. The store-level conditional update guarantees a single winner when
// two reviews race on the same id: the loser sees ErrInvalidReviewState.
func (s *ReviewService) Review(ctx context.Context, id int64, action domain.ReviewAction, reviewedBy string, notes *string) (string, error) {
	if action != domain.ActionApprove && action != domain.ActionReject {
		return "", domain.Invalid("action", `must be "approve" or "reject"`)
	}
	if strings.TrimSpace(reviewedBy) == "" {
		return "", domain.Invalid("reviewed_by", "must not be empty")
	}

	ok, err := s.repo.MarkReviewed(ctx, id, action, reviewedBy, notes)
	if err != nil {
		return "", err
	}
	if !ok {
		// Absent and already-reviewed are reported identically.
		return "", domain.ErrInvalidReviewState
	}

	past := "rejected"
	if action == domain.ActionApprove {
		past = "approved"
		if s.cache != nil {
			// Bump first, then evict the superseded entry. The bump alone
			// is what keeps readers fresh; the Del just frees the slot
			// early instead of waiting out the TTL.
			if gen, err := s.cache.Incr(ctx, ApprovedGenKey); err == nil {
				_ = s.cache.Del(ctx, fmt.Sprintf("%s:%d", ApprovedCacheKey, gen-1))
			}
		}
	}

	log.Info().Int64("id", id).Str("action", string(action)).Str("by", reviewedBy).Msg("submission reviewed")
	return fmt.Sprintf("Restaurant submission has been %s by %s.", past, reviewedBy), nil
}
