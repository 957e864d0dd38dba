package cache

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/citypulse/eventdiscovery/internal/domain/entities"
	"github.com/citypulse/eventdiscovery/internal/domain/providers"
	"github.com/citypulse/eventdiscovery/internal/domain/repositories"
)

const (
	userProfileKeyPrefix = "user:profile:"
	userProfileTTLSecs   = 60
)

// CachedUserRepository wraps a UserRepository with a short-TTL cache so the
// ranking path does not hit the database on every search. Cache failures
// fall through to the underlying repository; lookup errors are never cached.
type CachedUserRepository struct {
	inner repositories.UserRepository
	cache providers.CacheProvider
}

var _ repositories.UserRepository = (*CachedUserRepository)(nil)

// NewCachedUserRepository wraps repo with the given cache
func NewCachedUserRepository(repo repositories.UserRepository, cache providers.CacheProvider) *CachedUserRepository {
	return &CachedUserRepository{inner: repo, cache: cache}
}

func (r *CachedUserRepository) GetByID(ctx context.Context, id string) (*entities.User, error) {
	key := fmt.Sprintf("%s%s", userProfileKeyPrefix, id)

	if data, err := r.cache.Get(ctx, key); err == nil && len(data) > 0 {
		user := &entities.User{}
		if err := json.Unmarshal(data, user); err == nil {
			return user, nil
		}
	}

	user, err := r.inner.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if data, err := json.Marshal(user); err == nil {
		// best effort, a failed write just means a DB hit next time
		_ = r.cache.Set(ctx, key, data, userProfileTTLSecs)
	}

	return user, nil
}
