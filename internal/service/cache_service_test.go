package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type brokenCacheRepo struct{}

func (brokenCacheRepo) Get(context.Context, string, interface{}) error {
	return errors.New("redis: connection refused")
}

func (brokenCacheRepo) Set(context.Context, string, interface{}, time.Duration) error {
	return errors.New("redis: connection refused")
}

func (brokenCacheRepo) DeleteByPattern(context.Context, string) error {
	return errors.New("redis: connection refused")
}

type cachedCount struct {
	Value int `json:"value"`
}

func countingLoader(calls *int) func(context.Context) (*cachedCount, error) {
	return func(context.Context) (*cachedCount, error) {
		*calls++
		return &cachedCount{Value: 42}, nil
	}
}

func TestRememberStoresThenServesFromCache(t *testing.T) {
	cache := NewCacheService(newMemoryCacheRepo(), nil, time.Minute, nil, true)
	calls := 0

	value, hit, err := Remember(context.Background(), cache, "dashboard:count", 0, countingLoader(&calls))
	require.NoError(t, err)
	assert.False(t, hit)
	assert.Equal(t, 42, value.Value)

	value, hit, err = Remember(context.Background(), cache, "dashboard:count", 0, countingLoader(&calls))
	require.NoError(t, err)
	assert.True(t, hit)
	assert.Equal(t, 42, value.Value)
	assert.Equal(t, 1, calls)
}

func TestRememberLoadErrorStoresNothing(t *testing.T) {
	repo := newMemoryCacheRepo()
	cache := NewCacheService(repo, nil, time.Minute, nil, true)

	_, _, err := Remember(context.Background(), cache, "dashboard:count", 0, func(context.Context) (*cachedCount, error) {
		return nil, errors.New("db down")
	})
	require.EqualError(t, err, "db down")
	assert.Empty(t, repo.items)
}

func TestRememberToleratesBrokenCache(t *testing.T) {
	cache := NewCacheService(brokenCacheRepo{}, nil, time.Minute, nil, true)
	calls := 0

	value, hit, err := Remember(context.Background(), cache, "dashboard:count", 0, countingLoader(&calls))
	require.NoError(t, err)
	assert.False(t, hit)
	assert.Equal(t, 42, value.Value)

	hit, err = cache.Get(context.Background(), "dashboard:count", &cachedCount{})
	assert.False(t, hit)
	assert.Error(t, err)
	assert.Error(t, cache.Invalidate(context.Background(), "dashboard:*"))
}

func TestDisabledCacheIsInert(t *testing.T) {
	repo := newMemoryCacheRepo()
	disabled := NewCacheService(repo, nil, time.Minute, nil, false)
	var nilCache *CacheService

	for _, cache := range []*CacheService{disabled, nilCache, NewCacheService(nil, nil, 0, nil, true)} {
		assert.False(t, cache.Enabled())
		require.NoError(t, cache.Set(context.Background(), "k", cachedCount{Value: 1}, 0))
		hit, err := cache.Get(context.Background(), "k", &cachedCount{})
		require.NoError(t, err)
		assert.False(t, hit)
		require.NoError(t, cache.Invalidate(context.Background(), "*"))
	}
	assert.Empty(t, repo.items)
}
