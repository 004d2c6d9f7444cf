package service

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/guru-admin-api/internal/models"
	appErrors "github.com/noah-isme/guru-admin-api/pkg/errors"
)

type materialRepository interface {
	List(ctx context.Context, filter models.MaterialFilter) ([]models.Material, int, error)
	FindByID(ctx context.Context, id string) (*models.Material, error)
	Create(ctx context.Context, material *models.Material) error
	Update(ctx context.Context, material *models.Material) error
	Delete(ctx context.Context, id string) error
}

// MaterialService manages teaching materials.
type MaterialService struct {
	repo      materialRepository
	classes   classFinder
	cache     cacheInvalidator
	validator *validator.Validate
	logger    *zap.Logger
}

// NewMaterialService constructs the material service.
func NewMaterialService(repo materialRepository, classes classFinder, cache cacheInvalidator, validate *validator.Validate, logger *zap.Logger) *MaterialService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &MaterialService{repo: repo, classes: classes, cache: cache, validator: validate, logger: logger}
}

// List returns materials with pagination metadata.
func (s *MaterialService) List(ctx context.Context, filter models.MaterialFilter) ([]models.Material, *models.Pagination, error) {
	materials, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, nil, appErrors.Internal(err, "failed to list materials")
	}
	return materials, paginationFor(filter.Page, filter.PageSize, total), nil
}

// Get returns a single material.
func (s *MaterialService) Get(ctx context.Context, id string) (*models.Material, error) {
	material, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "material not found")
		}
		return nil, appErrors.Internal(err, "failed to load material")
	}
	return material, nil
}

// Create stores a material for an existing class.
func (s *MaterialService) Create(ctx context.Context, req models.CreateMaterialRequest) (*models.Material, error) {
	req.Title = strings.TrimSpace(req.Title)
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Validation(err, "invalid material payload")
	}
	class, err := lookupClass(ctx, s.classes, req.ClassID)
	if err != nil {
		return nil, err
	}

	material := &models.Material{
		Title:           req.Title,
		ClassID:         &class.ID,
		ClassName:       class.Name,
		Category:        req.Category,
		Description:     req.Description,
		BasicCompetency: req.BasicCompetency,
		Difficulty:      req.Difficulty,
		EstimatedHours:  models.DefaultMaterialHours,
	}
	if material.Difficulty == "" {
		material.Difficulty = models.DefaultMaterialDifficulty
	}
	if req.EstimatedHours != nil {
		material.EstimatedHours = *req.EstimatedHours
	}
	if err := s.repo.Create(ctx, material); err != nil {
		return nil, appErrors.Internal(err, "failed to create material")
	}
	s.invalidate(ctx)
	s.logger.Info("material created", zap.String("material_id", material.ID), zap.String("class_id", class.ID))
	return material, nil
}

// Update applies the non-nil fields of req.
func (s *MaterialService) Update(ctx context.Context, id string, req models.UpdateMaterialRequest) (*models.Material, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Validation(err, "invalid material payload")
	}
	material, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.ClassID != nil {
		class, err := lookupClass(ctx, s.classes, *req.ClassID)
		if err != nil {
			return nil, err
		}
		material.ClassID = &class.ID
		material.ClassName = class.Name
	}
	if req.Title != nil {
		material.Title = strings.TrimSpace(*req.Title)
	}
	if req.Category != nil {
		material.Category = *req.Category
	}
	if req.Description != nil {
		material.Description = *req.Description
	}
	if req.BasicCompetency != nil {
		material.BasicCompetency = *req.BasicCompetency
	}
	if req.Difficulty != nil {
		material.Difficulty = *req.Difficulty
	}
	if req.EstimatedHours != nil {
		material.EstimatedHours = *req.EstimatedHours
	}

	if err := s.repo.Update(ctx, material); err != nil {
		return nil, appErrors.Internal(err, "failed to update material")
	}
	return material, nil
}

// Delete removes a material.
func (s *MaterialService) Delete(ctx context.Context, id string) error {
	if _, err := s.Get(ctx, id); err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return appErrors.Internal(err, "failed to delete material")
	}
	s.invalidate(ctx)
	s.logger.Info("material deleted", zap.String("material_id", id))
	return nil
}

func (s *MaterialService) invalidate(ctx context.Context) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Invalidate(ctx, dashboardCachePattern); err != nil {
		s.logger.Warn("failed to invalidate dashboard cache", zap.Error(err))
	}
}

// lookupClass resolves a class referenced by a payload; a missing class is a validation error.
func lookupClass(ctx context.Context, classes classFinder, id string) (*models.Class, error) {
	class, err := classes.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrValidation, "class not found")
		}
		return nil, appErrors.Internal(err, "failed to load class")
	}
	return class, nil
}
