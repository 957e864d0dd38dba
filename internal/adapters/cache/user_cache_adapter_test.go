package cache

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/citypulse/eventdiscovery/internal/domain/entities"
	apperrors "github.com/citypulse/eventdiscovery/pkg/errors"
)

type fakeCache struct {
	data map[string][]byte
	fail bool
}

func newFakeCache() *fakeCache {
	return &fakeCache{data: map[string][]byte{}}
}

func (c *fakeCache) Get(ctx context.Context, key string) ([]byte, error) {
	if c.fail {
		return nil, errors.New("cache down")
	}
	v, ok := c.data[key]
	if !ok {
		return nil, errors.New("key not found")
	}
	return v, nil
}

func (c *fakeCache) Set(ctx context.Context, key string, value []byte, expirationSeconds int) error {
	if c.fail {
		return errors.New("cache down")
	}
	c.data[key] = value
	return nil
}

func (c *fakeCache) Delete(ctx context.Context, key string) error {
	delete(c.data, key)
	return nil
}

func (c *fakeCache) Exists(ctx context.Context, key string) (bool, error) {
	_, ok := c.data[key]
	return ok, nil
}

func (c *fakeCache) Append(ctx context.Context, key string, value []byte, maxLen, expirationSeconds int) error {
	return nil
}

func (c *fakeCache) List(ctx context.Context, key string) ([][]byte, error) {
	return nil, nil
}

type countingUserRepo struct {
	user  *entities.User
	err   error
	calls int
}

func (r *countingUserRepo) GetByID(ctx context.Context, id string) (*entities.User, error) {
	r.calls++
	if r.err != nil {
		return nil, r.err
	}
	return r.user, nil
}

func TestCachedUserRepository_SecondLookupServedFromCache(t *testing.T) {
	repo := &countingUserRepo{user: &entities.User{
		ID:          "u1",
		Email:       "ada@example.com",
		SavedEvents: []string{"e1"},
		Preferences: entities.UserPreferences{Categories: []string{"music"}},
	}}
	cached := NewCachedUserRepository(repo, newFakeCache())

	first, err := cached.GetByID(context.Background(), "u1")
	require.NoError(t, err)

	second, err := cached.GetByID(context.Background(), "u1")
	require.NoError(t, err)

	assert.Equal(t, 1, repo.calls)
	assert.Equal(t, first.SavedEvents, second.SavedEvents)
	assert.Equal(t, first.Preferences.Categories, second.Preferences.Categories)
}

func TestCachedUserRepository_CacheFailureFallsThrough(t *testing.T) {
	repo := &countingUserRepo{user: &entities.User{ID: "u1"}}
	cached := NewCachedUserRepository(repo, &fakeCache{fail: true})

	_, err := cached.GetByID(context.Background(), "u1")
	require.NoError(t, err)

	_, err = cached.GetByID(context.Background(), "u1")
	require.NoError(t, err)

	assert.Equal(t, 2, repo.calls)
}

func TestCachedUserRepository_NotFoundNotCached(t *testing.T) {
	repo := &countingUserRepo{err: apperrors.NewNotFoundError("user not found")}
	store := newFakeCache()
	cached := NewCachedUserRepository(repo, store)

	_, err := cached.GetByID(context.Background(), "missing")
	assert.True(t, apperrors.IsType(err, apperrors.ErrorTypeNotFound))

	_, err = cached.GetByID(context.Background(), "missing")
	assert.Error(t, err)
	assert.Equal(t, 2, repo.calls)
	assert.Empty(t, store.data)
}
