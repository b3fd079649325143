package database

import (
	"context"
	"encoding/json"
	"fmt"
	"log"

	"github.com/nerve-health/referral/backend/internal/domain/entities"
	"github.com/nerve-health/referral/backend/internal/domain/providers"
	"github.com/nerve-health/referral/backend/internal/domain/repositories"
)

// CachedHospitalAdapter wraps a HospitalRepository with read-through
// caching. Status updates invalidate aggressively: stale capacity data
// must never drive a referral.
type CachedHospitalAdapter struct {
	adapter repositories.HospitalRepository
	cache   providers.CacheProvider
}

// NewCachedHospitalAdapter creates a new cached hospital adapter
func NewCachedHospitalAdapter(adapter repositories.HospitalRepository, cache providers.CacheProvider) repositories.HospitalRepository {
	return &CachedHospitalAdapter{
		adapter: adapter,
		cache:   cache,
	}
}

// Cache TTLs (in seconds). The accepting list feeds live referrals, so
// it expires fastest.
const (
	hospitalByIDTTL  = 300
	hospitalListTTL  = 120
	acceptingListTTL = 30
)

const acceptingListCacheKey = "hospitals:accepting"

func hospitalCacheKey(id string) string {
	return fmt.Sprintf("hospital:%s", id)
}

func hospitalListCacheKey(filter repositories.HospitalFilter) string {
	return fmt.Sprintf("hospitals:list:%s:%t:%t:%d:%d",
		filter.Specialization, filter.EmergencyOnly, filter.AcceptingOnly, filter.Limit, filter.Offset)
}

// GetByID retrieves a hospital by ID with caching
func (a *CachedHospitalAdapter) GetByID(ctx context.Context, id string) (*entities.Hospital, error) {
	cacheKey := hospitalCacheKey(id)

	if cached, err := a.cache.Get(ctx, cacheKey); err == nil {
		var hospital entities.Hospital
		if err := json.Unmarshal(cached, &hospital); err == nil {
			return &hospital, nil
		}
		log.Printf("Failed to unmarshal cached hospital %s: %v", id, err)
	}

	hospital, err := a.adapter.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	go func() {
		bgCtx := context.Background()
		if data, err := json.Marshal(hospital); err == nil {
			if err := a.cache.Set(bgCtx, cacheKey, data, hospitalByIDTTL); err != nil {
				log.Printf("Failed to cache hospital %s: %v", id, err)
			}
		}
	}()

	return hospital, nil
}

// List retrieves hospitals with caching
func (a *CachedHospitalAdapter) List(ctx context.Context, filter repositories.HospitalFilter) ([]*entities.Hospital, error) {
	cacheKey := hospitalListCacheKey(filter)

	if cached, err := a.cache.Get(ctx, cacheKey); err == nil {
		var hospitals []*entities.Hospital
		if err := json.Unmarshal(cached, &hospitals); err == nil {
			return hospitals, nil
		}
		log.Printf("Failed to unmarshal cached hospital list: %v", err)
	}

	hospitals, err := a.adapter.List(ctx, filter)
	if err != nil {
		return nil, err
	}

	go func() {
		bgCtx := context.Background()
		if data, err := json.Marshal(hospitals); err == nil {
			if err := a.cache.Set(bgCtx, cacheKey, data, hospitalListTTL); err != nil {
				log.Printf("Failed to cache hospital list: %v", err)
			}
		}
	}()

	return hospitals, nil
}

// ListAccepting retrieves accepting hospitals with short-lived caching
func (a *CachedHospitalAdapter) ListAccepting(ctx context.Context) ([]*entities.Hospital, error) {
	if cached, err := a.cache.Get(ctx, acceptingListCacheKey); err == nil {
		var hospitals []*entities.Hospital
		if err := json.Unmarshal(cached, &hospitals); err == nil {
			return hospitals, nil
		}
		log.Printf("Failed to unmarshal cached accepting list: %v", err)
	}

	hospitals, err := a.adapter.ListAccepting(ctx)
	if err != nil {
		return nil, err
	}

	go func() {
		bgCtx := context.Background()
		if data, err := json.Marshal(hospitals); err == nil {
			if err := a.cache.Set(bgCtx, acceptingListCacheKey, data, acceptingListTTL); err != nil {
				log.Printf("Failed to cache accepting list: %v", err)
			}
		}
	}()

	return hospitals, nil
}

// Create creates a hospital and invalidates the list caches
func (a *CachedHospitalAdapter) Create(ctx context.Context, hospital *entities.Hospital) error {
	if err := a.adapter.Create(ctx, hospital); err != nil {
		return err
	}
	a.invalidateLists()
	return nil
}

// Update updates a hospital and invalidates its caches
func (a *CachedHospitalAdapter) Update(ctx context.Context, hospital *entities.Hospital) error {
	if err := a.adapter.Update(ctx, hospital); err != nil {
		return err
	}
	a.invalidateHospital(hospital.ID)
	return nil
}

// UpdateStatus updates the capacity snapshot and invalidates its caches
func (a *CachedHospitalAdapter) UpdateStatus(ctx context.Context, id string, status *entities.HospitalStatus) error {
	if err := a.adapter.UpdateStatus(ctx, id, status); err != nil {
		return err
	}
	a.invalidateHospital(id)
	return nil
}

// Delete deletes a hospital and invalidates its caches
func (a *CachedHospitalAdapter) Delete(ctx context.Context, id string) error {
	if err := a.adapter.Delete(ctx, id); err != nil {
		return err
	}
	a.invalidateHospital(id)
	return nil
}

func (a *CachedHospitalAdapter) invalidateHospital(id string) {
	go func() {
		bgCtx := context.Background()
		if err := a.cache.Delete(bgCtx, hospitalCacheKey(id)); err != nil {
			log.Printf("Failed to invalidate hospital cache %s: %v", id, err)
		}
		if err := a.cache.Delete(bgCtx, acceptingListCacheKey); err != nil {
			log.Printf("Failed to invalidate accepting list cache: %v", err)
		}
	}()
}

func (a *CachedHospitalAdapter) invalidateLists() {
	go func() {
		bgCtx := context.Background()
		if err := a.cache.Delete(bgCtx, acceptingListCacheKey); err != nil {
			log.Printf("Failed to invalidate accepting list cache: %v", err)
		}
	}()
}
