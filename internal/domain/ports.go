package domain

import "context"

type RestaurantRepository interface {
	// Write paths
	// Insert persists a new pending submission and returns the assigned id.
	// The store's unique (name, address) key is the duplicate guard of
	// record; Insert returns ErrDuplicateSubmission when it trips.
	Insert(ctx context.Context, n NewRestaurant) (int64, error)
	// MarkReviewed applies the terminal transition iff the row is still
	// pending at write time. Returns false when no pending row matched,
	// covering both "absent" and "already reviewed".
	MarkReviewed(ctx context.Context, id int64, action ReviewAction, reviewedBy string, notes *string) (bool, error)

	// Read paths
	GetByID(ctx context.Context, id int64) (Restaurant, error)
	FindByNameAddress(ctx context.Context, name, address string) (Restaurant, error)
	ListApproved(ctx context.Context) ([]ApprovedRestaurant, error)
	ListPending(ctx context.Context) ([]PendingRestaurant, error)
}

type AdminRepository interface {
	GetAdminByUsername(ctx context.Context, username string) (AdminUser, error)
}

type Cache interface {
	Get(ctx context.Context, key string, dst any) (bool, error)
	Set(ctx context.Context, key string, v any, ttlSec int) error
	Del(ctx context.Context, key string) error
	// Incr atomically bumps an integer counter and returns the new value.
	// A missing key counts from zero.
	Incr(ctx context.Context, key string) (int64, error)
}
