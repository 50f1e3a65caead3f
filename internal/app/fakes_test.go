package app_test

import (
	"context"
	"encoding/json"
	"strconv"
	"sync"
	"time"

	"water_map/internal/domain"
)

// fakeStore keeps records in a map guarded by a mutex, so the unique key
// and the conditional update behave like the real store's atomic
// primitives.
type fakeStore struct {
	mu     sync.Mutex
	nextID int64
	recs   map[int64]domain.Restaurant
	admins map[string]domain.AdminUser

	// listApprovedHook, when set, runs after the snapshot is taken and
	// the lock released. Tests use it to park a reader mid-flight.
	listApprovedHook func()
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		recs:   map[int64]domain.Restaurant{},
		admins: map[string]domain.AdminUser{},
	}
}

func (f *fakeStore) Insert(ctx context.Context, n domain.NewRestaurant) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, r := range f.recs {
		if r.Name == n.Name && r.Address == n.Address {
			return 0, domain.ErrDuplicateSubmission
		}
	}
	f.nextID++
	f.recs[f.nextID] = domain.Restaurant{
		ID:          f.nextID,
		Name:        n.Name,
		Address:     n.Address,
		Latitude:    n.Latitude,
		Longitude:   n.Longitude,
		Policy:      n.Policy,
		Status:      domain.StatusPending,
		SubmittedAt: time.Now(),
	}
	return f.nextID, nil
}

func (f *fakeStore) MarkReviewed(ctx context.Context, id int64, action domain.ReviewAction, reviewedBy string, notes *string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	rec, ok := f.recs[id]
	if !ok || rec.Status != domain.StatusPending {
		return false, nil
	}
	rec.Status = domain.StatusRejected
	if action == domain.ActionApprove {
		rec.Status = domain.StatusApproved
	}
	now := time.Now()
	rec.ReviewedAt = &now
	rec.ReviewedBy = &reviewedBy
	rec.Notes = notes
	f.recs[id] = rec
	return true, nil
}

func (f *fakeStore) GetByID(ctx context.Context, id int64) (domain.Restaurant, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	rec, ok := f.recs[id]
	if !ok {
		return domain.Restaurant{}, domain.ErrNotFound
	}
	return rec, nil
}

func (f *fakeStore) FindByNameAddress(ctx context.Context, name, address string) (domain.Restaurant, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, r := range f.recs {
		if r.Name == name && r.Address == address {
			return r, nil
		}
	}
	return domain.Restaurant{}, domain.ErrNotFound
}

func (f *fakeStore) ListApproved(ctx context.Context) ([]domain.ApprovedRestaurant, error) {
	f.mu.Lock()
	var out []domain.ApprovedRestaurant
	for _, r := range f.recs {
		if r.Status != domain.StatusApproved {
			continue
		}
		out = append(out, domain.ApprovedRestaurant{
			ID: r.ID, Name: r.Name, Address: r.Address,
			Latitude: r.Latitude, Longitude: r.Longitude, Policy: r.Policy,
		})
	}
	hook := f.listApprovedHook
	f.mu.Unlock()
	if hook != nil {
		hook()
	}
	return out, nil
}

func (f *fakeStore) ListPending(ctx context.Context) ([]domain.PendingRestaurant, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []domain.PendingRestaurant
	for _, r := range f.recs {
		if r.Status != domain.StatusPending {
			continue
		}
		out = append(out, domain.PendingRestaurant{
			ID: r.ID, Name: r.Name, Address: r.Address,
			Latitude: r.Latitude, Longitude: r.Longitude, Policy: r.Policy,
			Status: r.Status, SubmittedAt: r.SubmittedAt, Notes: r.Notes,
		})
	}
	return out, nil
}

func (f *fakeStore) GetAdminByUsername(ctx context.Context, username string) (domain.AdminUser, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	a, ok := f.admins[username]
	if !ok {
		return domain.AdminUser{}, domain.ErrNotFound
	}
	return a, nil
}

// fakeCache records operations so tests can assert on invalidation.
type fakeCache struct {
	mu    sync.Mutex
	store map[string][]byte
	dels  []string
}

func newFakeCache() *fakeCache { return &fakeCache{store: map[string][]byte{}} }

func (c *fakeCache) Get(ctx context.Context, key string, dst any) (bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	b, ok := c.store[key]
	if !ok {
		return false, nil
	}
	return true, json.Unmarshal(b, dst)
}

func (c *fakeCache) Set(ctx context.Context, key string, v any, ttlSec int) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	b, err := json.Marshal(v)
	if err != nil {
		return err
	}
	c.store[key] = b
	return nil
}

func (c *fakeCache) Del(ctx context.Context, key string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.store, key)
	c.dels = append(c.dels, key)
	return nil
}

func (c *fakeCache) Incr(ctx context.Context, key string) (int64, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	var n int64
	if b, ok := c.store[key]; ok {
		n, _ = strconv.ParseInt(string(b), 10, 64)
	}
	n++
	c.store[key] = []byte(strconv.FormatInt(n, 10))
	return n, nil
}

func (c *fakeCache) deleted(key string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, k := range c.dels {
		if k == key {
			return true
		}
	}
	return false
}
