package service

import (
	"context"
	"database/sql"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/guru-admin-api/internal/models"
	appErrors "github.com/noah-isme/guru-admin-api/pkg/errors"
)

type weightRepoMock struct {
	stored    *models.WeightConfig
	getErr    error
	upsertErr error
	upserts   int
}

func (m *weightRepoMock) Get(ctx context.Context) (*models.WeightConfig, error) {
	if m.getErr != nil {
		return nil, m.getErr
	}
	if m.stored == nil {
		return nil, sql.ErrNoRows
	}
	copy := *m.stored
	return &copy, nil
}

func (m *weightRepoMock) Upsert(ctx context.Context, weights *models.WeightConfig) error {
	if m.upsertErr != nil {
		return m.upsertErr
	}
	m.upserts++
	copy := *weights
	m.stored = &copy
	return nil
}

type invalidatorMock struct {
	patterns []string
}

func (m *invalidatorMock) Invalidate(ctx context.Context, pattern string) error {
	m.patterns = append(m.patterns, pattern)
	return nil
}

func intPtr(v int) *int { return &v }

func weightsRequest(f, m, ft, a int) models.UpdateWeightsRequest {
	return models.UpdateWeightsRequest{Formative: intPtr(f), MidTerm: intPtr(m), FinalTerm: intPtr(ft), Attendance: intPtr(a)}
}

func TestWeightServiceGetFallsBackToDefaultsWithoutWriting(t *testing.T) {
	repo := &weightRepoMock{}
	svc := NewWeightService(repo, nil, nil, nil)

	weights, err := svc.Get(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 25, weights.Formative)
	assert.Equal(t, 25, weights.MidTerm)
	assert.Equal(t, 30, weights.FinalTerm)
	assert.Equal(t, 20, weights.Attendance)
	assert.Zero(t, repo.upserts)
	assert.Nil(t, repo.stored)
}

func TestWeightServiceEnsureDefaults(t *testing.T) {
	repo := &weightRepoMock{}
	svc := NewWeightService(repo, nil, nil, nil)

	weights, created, err := svc.EnsureDefaults(context.Background())
	require.NoError(t, err)
	assert.True(t, created)
	assert.Equal(t, models.DefaultWeights(), *weights)
	assert.Equal(t, 1, repo.upserts)

	_, created, err = svc.EnsureDefaults(context.Background())
	require.NoError(t, err)
	assert.False(t, created)
	assert.Equal(t, 1, repo.upserts)
}

func TestWeightServiceEnsureDefaultsWriteFailure(t *testing.T) {
	svc := NewWeightService(&weightRepoMock{upsertErr: errors.New("read-only transaction")}, nil, nil, nil)

	_, _, err := svc.EnsureDefaults(context.Background())
	assert.True(t, errors.Is(err, appErrors.ErrInternal))
}

func TestWeightServiceGetReturnsStored(t *testing.T) {
	repo := &weightRepoMock{stored: &models.WeightConfig{Formative: 40, MidTerm: 30, FinalTerm: 30}}
	svc := NewWeightService(repo, nil, nil, nil)

	weights, err := svc.Get(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 40, weights.Formative)
	assert.Zero(t, repo.upserts)
}

func TestWeightServiceGetFailure(t *testing.T) {
	svc := NewWeightService(&weightRepoMock{getErr: errors.New("db down")}, nil, nil, nil)

	_, err := svc.Get(context.Background())
	assert.True(t, errors.Is(err, appErrors.ErrInternal))
}

func TestWeightServiceSetAcceptsSumOfHundred(t *testing.T) {
	repo := &weightRepoMock{}
	cache := &invalidatorMock{}
	svc := NewWeightService(repo, cache, nil, nil)

	weights, err := svc.Set(context.Background(), weightsRequest(25, 25, 50, 0))
	require.NoError(t, err)
	assert.Equal(t, 100, weights.Total())
	assert.Equal(t, 50, repo.stored.FinalTerm)
	assert.Equal(t, []string{dashboardCachePattern}, cache.patterns)
}

func TestWeightServiceSetRejectsOtherSums(t *testing.T) {
	for _, req := range []models.UpdateWeightsRequest{
		weightsRequest(25, 25, 30, 10),
		weightsRequest(50, 50, 50, 0),
		weightsRequest(0, 0, 0, 0),
	} {
		repo := &weightRepoMock{}
		svc := NewWeightService(repo, nil, nil, nil)

		_, err := svc.Set(context.Background(), req)
		require.Error(t, err)
		appErr := appErrors.FromError(err)
		assert.Equal(t, appErrors.ErrInvalidWeights.Code, appErr.Code)
		assert.Equal(t, 400, appErr.Status)
		assert.Nil(t, repo.stored)
	}
}

func TestWeightServiceSetAcceptsNegativeValues(t *testing.T) {
	svc := NewWeightService(&weightRepoMock{}, nil, nil, nil)

	weights, err := svc.Set(context.Background(), weightsRequest(-10, 50, 40, 20))
	require.NoError(t, err)
	assert.Equal(t, -10, weights.Formative)
}

func TestWeightServiceSetRequiresAllFields(t *testing.T) {
	svc := NewWeightService(&weightRepoMock{}, nil, nil, nil)

	_, err := svc.Set(context.Background(), models.UpdateWeightsRequest{Formative: intPtr(100)})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
}

func TestValidateWeights(t *testing.T) {
	assert.NoError(t, ValidateWeights(models.DefaultWeights()))
	assert.ErrorContains(t, ValidateWeights(models.WeightConfig{Formative: 99}), "got 99")
}
