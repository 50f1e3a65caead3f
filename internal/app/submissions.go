package app

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/rs/zerolog/log"

	"water_map/internal/domain"
)

type SubmissionService struct {
	repo domain.RestaurantRepository
}

func NewSubmissionService(r domain.RestaurantRepository) *SubmissionService {
	return &SubmissionService{repo: r}
}

// Submit validates an anonymous submission and inserts it as pending.
// Returns the success message shown to the submitter.
func (s *SubmissionService) Submit(ctx context.Context, in domain.NewRestaurant) (string, error) {
	if err := validateSubmission(in); err != nil {
		return "", err
	}

	// Pre-check for an existing (name, address) row. This is only a fast
	// path: two identical submissions can both pass it, so the insert
	// relies on the store's unique key and maps its violation back to
	// ErrDuplicateSubmission.
	if _, err := s.repo.FindByNameAddress(ctx, in.Name, in.Address); err == nil {
		return "", domain.ErrDuplicateSubmission
	} else if !errors.Is(err, domain.ErrNotFound) {
		return "", err
	}

	id, err := s.repo.Insert(ctx, in)
	if err != nil {
		return "", err
	}

	log.Info().Int64("id", id).Str("name", in.Name).Msg("submission recorded")
	return fmt.Sprintf("Restaurant %q has been submitted for review. Thank you for your contribution!", in.Name), nil
}

func validateSubmission(in domain.NewRestaurant) error {
	if strings.TrimSpace(in.Name) == "" {
		return domain.Invalid("name", "must not be empty")
	}
	if strings.TrimSpace(in.Address) == "" {
		return domain.Invalid("address", "must not be empty")
	}
	if in.Latitude < -90 || in.Latitude > 90 {
		return domain.Invalid("latitude", "must be between -90 and 90")
	}
	if in.Longitude < -180 || in.Longitude > 180 {
		return domain.Invalid("longitude", "must be between -180 and 180")
	}
	if in.Policy != domain.WaterFree && in.Policy != domain.WaterPaid {
		return domain.Invalid("water_billing_policy", `must be "free" or "paid"`)
	}
	return nil
}
