package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/guru-admin-api/internal/models"
	appErrors "github.com/noah-isme/guru-admin-api/pkg/errors"
)

type weightRepository interface {
	Get(ctx context.Context) (*models.WeightConfig, error)
	Upsert(ctx context.Context, weights *models.WeightConfig) error
}

type cacheInvalidator interface {
	Invalidate(ctx context.Context, pattern string) error
}

// WeightService reads and replaces the grading-weight configuration.
type WeightService struct {
	repo      weightRepository
	cache     cacheInvalidator
	validator *validator.Validate
	logger    *zap.Logger
}

// NewWeightService constructs a WeightService.
func NewWeightService(repo weightRepository, cache cacheInvalidator, validate *validator.Validate, logger *zap.Logger) *WeightService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &WeightService{repo: repo, cache: cache, validator: validate, logger: logger}
}

// ValidateWeights rejects a configuration whose percentages do not sum to 100. Individual values are
// not range checked.
func ValidateWeights(w models.WeightConfig) error {
	if total := w.Total(); total != models.WeightTotal {
		return appErrors.Clone(appErrors.ErrInvalidWeights, fmt.Sprintf("grade weights must total %d, got %d", models.WeightTotal, total))
	}
	return nil
}

// Get returns the stored weights, or the defaults when none are stored. It never writes.
func (s *WeightService) Get(ctx context.Context) (*models.WeightConfig, error) {
	weights, err := s.repo.Get(ctx)
	if err == nil {
		return weights, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return nil, appErrors.Internal(err, "failed to load grade weights")
	}
	defaults := models.DefaultWeights()
	return &defaults, nil
}

// EnsureDefaults stores the default weights when no configuration exists yet and reports whether it
// wrote them.
func (s *WeightService) EnsureDefaults(ctx context.Context) (*models.WeightConfig, bool, error) {
	weights, err := s.repo.Get(ctx)
	if err == nil {
		return weights, false, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return nil, false, appErrors.Internal(err, "failed to load grade weights")
	}
	defaults := models.DefaultWeights()
	if err := s.repo.Upsert(ctx, &defaults); err != nil {
		return nil, false, appErrors.Internal(err, "failed to store default grade weights")
	}
	s.logger.Info("default grade weights stored")
	return &defaults, true, nil
}

// Set validates and replaces the weight configuration.
func (s *WeightService) Set(ctx context.Context, req models.UpdateWeightsRequest) (*models.WeightConfig, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Validation(err, "invalid grade weights payload")
	}
	weights := models.WeightConfig{
		Formative:  *req.Formative,
		MidTerm:    *req.MidTerm,
		FinalTerm:  *req.FinalTerm,
		Attendance: *req.Attendance,
	}
	if err := ValidateWeights(weights); err != nil {
		return nil, err
	}
	if err := s.repo.Upsert(ctx, &weights); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to save grade weights")
	}
	s.invalidateDashboard(ctx)
	s.logger.Info("grade weights updated",
		zap.Int("formative", weights.Formative),
		zap.Int("mid_term", weights.MidTerm),
		zap.Int("final_term", weights.FinalTerm),
		zap.Int("attendance", weights.Attendance),
	)
	return &weights, nil
}

func (s *WeightService) invalidateDashboard(ctx context.Context) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Invalidate(ctx, dashboardCachePattern); err != nil {
		s.logger.Warn("failed to invalidate dashboard cache", zap.Error(err))
	}
}
