package repository

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	appErrors "github.com/noah-isme/guru-admin-api/pkg/errors"
)

func TestCacheRepositoryWithoutClient(t *testing.T) {
	repo := NewCacheRepository(nil, "guru-admin", nil)
	ctx := context.Background()

	assert.False(t, repo.Enabled())
	var dest map[string]int
	assert.True(t, errors.Is(repo.Get(ctx, "dashboard:summary", &dest), appErrors.ErrCacheMiss))
	assert.NoError(t, repo.Set(ctx, "dashboard:summary", map[string]int{"a": 1}, time.Minute))
	assert.NoError(t, repo.DeleteByPattern(ctx, "dashboard:*"))
	assert.NoError(t, repo.Close())
}

func TestCacheRepositoryKeyPrefix(t *testing.T) {
	assert.Equal(t, "guru-admin:dashboard:summary", NewCacheRepository(nil, "guru-admin", nil).key("dashboard:summary"))
	assert.Equal(t, "dashboard:summary", NewCacheRepository(nil, "", nil).key("dashboard:summary"))
}
