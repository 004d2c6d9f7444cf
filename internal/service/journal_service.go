package service

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/guru-admin-api/internal/models"
	appErrors "github.com/noah-isme/guru-admin-api/pkg/errors"
)

type journalRepository interface {
	List(ctx context.Context, filter models.JournalFilter) ([]models.Journal, int, error)
	FindByID(ctx context.Context, id string) (*models.Journal, error)
	Create(ctx context.Context, journal *models.Journal) error
	Update(ctx context.Context, journal *models.Journal) error
	Delete(ctx context.Context, id string) error
}

type materialFinder interface {
	FindByID(ctx context.Context, id string) (*models.Material, error)
}

// JournalDeps groups the collaborators of JournalService.
type JournalDeps struct {
	Repo      journalRepository
	Classes   classFinder
	Materials materialFinder
	Semesters semesterResolver
	Cache     cacheInvalidator
}

// JournalService records teaching journals against the active semester.
type JournalService struct {
	repo      journalRepository
	classes   classFinder
	materials materialFinder
	semesters semesterResolver
	cache     cacheInvalidator
	validator *validator.Validate
	logger    *zap.Logger
}

// NewJournalService constructs the journal service.
func NewJournalService(deps JournalDeps, validate *validator.Validate, logger *zap.Logger) *JournalService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &JournalService{
		repo:      deps.Repo,
		classes:   deps.Classes,
		materials: deps.Materials,
		semesters: deps.Semesters,
		cache:     deps.Cache,
		validator: validate,
		logger:    logger,
	}
}

// List returns journals, optionally narrowed to a class and a calendar month.
func (s *JournalService) List(ctx context.Context, filter models.JournalFilter) ([]models.Journal, *models.Pagination, error) {
	if (filter.Month > 0) != (filter.Year > 0) {
		return nil, nil, appErrors.Clone(appErrors.ErrValidation, "month and year must be given together")
	}
	if filter.Month < 0 || filter.Month > 12 || filter.Year < 0 {
		return nil, nil, appErrors.Clone(appErrors.ErrValidation, "month must be between 1 and 12")
	}
	journals, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, nil, appErrors.Internal(err, "failed to list journals")
	}
	return journals, paginationFor(filter.Page, filter.PageSize, total), nil
}

// Get returns a single journal.
func (s *JournalService) Get(ctx context.Context, id string) (*models.Journal, error) {
	journal, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "journal not found")
		}
		return nil, appErrors.Internal(err, "failed to load journal")
	}
	return journal, nil
}

// Create records a lesson in the active semester.
func (s *JournalService) Create(ctx context.Context, req models.CreateJournalRequest) (*models.Journal, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Validation(err, "invalid journal payload")
	}
	semester, err := s.semesters.Resolve(ctx, "")
	if err != nil {
		return nil, err
	}
	class, err := lookupClass(ctx, s.classes, req.ClassID)
	if err != nil {
		return nil, err
	}
	day, _ := time.Parse(dateLayout, req.Date)

	journal := &models.Journal{
		Date:          day,
		ClassID:       &class.ID,
		ClassName:     class.Name,
		Subject:       req.Subject,
		Topic:         req.Topic,
		LessonPeriod:  req.LessonPeriod,
		Duration:      models.DefaultJournalHours,
		Objectives:    req.Objectives,
		Activities:    req.Activities,
		Media:         req.Media,
		Assessment:    req.Assessment,
		Understanding: req.Understanding,
		Notes:         req.Notes,
		FollowUp:      req.FollowUp,
		Status:        req.Status,
		Signed:        req.Signed,
		SemesterID:    &semester.ID,
	}
	if journal.Status == "" {
		journal.Status = models.JournalDraft
	}
	if req.Duration != nil {
		journal.Duration = *req.Duration
	}
	if err := s.linkMaterial(ctx, journal, req.MaterialID); err != nil {
		return nil, err
	}

	if err := s.repo.Create(ctx, journal); err != nil {
		return nil, appErrors.Internal(err, "failed to create journal")
	}
	s.invalidate(ctx)
	s.logger.Info("journal recorded",
		zap.String("journal_id", journal.ID),
		zap.String("class_id", class.ID),
		zap.String("semester_id", semester.ID),
	)
	return journal, nil
}

// Update applies the non-nil fields of req.
func (s *JournalService) Update(ctx context.Context, id string, req models.UpdateJournalRequest) (*models.Journal, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Validation(err, "invalid journal payload")
	}
	journal, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.Date != nil {
		journal.Date, _ = time.Parse(dateLayout, *req.Date)
	}
	if req.ClassID != nil {
		class, err := lookupClass(ctx, s.classes, *req.ClassID)
		if err != nil {
			return nil, err
		}
		journal.ClassID = &class.ID
		journal.ClassName = class.Name
	}
	if req.MaterialID != nil {
		if err := s.linkMaterial(ctx, journal, *req.MaterialID); err != nil {
			return nil, err
		}
	}
	assignString(&journal.Subject, req.Subject)
	assignString(&journal.Topic, req.Topic)
	assignString(&journal.LessonPeriod, req.LessonPeriod)
	assignString(&journal.Objectives, req.Objectives)
	assignString(&journal.Activities, req.Activities)
	assignString(&journal.Media, req.Media)
	assignString(&journal.Assessment, req.Assessment)
	assignString(&journal.Understanding, req.Understanding)
	assignString(&journal.Notes, req.Notes)
	assignString(&journal.FollowUp, req.FollowUp)
	if req.Duration != nil {
		journal.Duration = *req.Duration
	}
	if req.Status != nil {
		journal.Status = *req.Status
	}
	if req.Signed != nil {
		journal.Signed = *req.Signed
	}

	if err := s.repo.Update(ctx, journal); err != nil {
		return nil, appErrors.Internal(err, "failed to update journal")
	}
	return journal, nil
}

// Delete removes a journal.
func (s *JournalService) Delete(ctx context.Context, id string) error {
	if _, err := s.Get(ctx, id); err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return appErrors.Internal(err, "failed to delete journal")
	}
	s.invalidate(ctx)
	s.logger.Info("journal deleted", zap.String("journal_id", id))
	return nil
}

// linkMaterial points journal at materialID and copies its title. An empty id unlinks.
func (s *JournalService) linkMaterial(ctx context.Context, journal *models.Journal, materialID string) error {
	if materialID == "" {
		journal.MaterialID = nil
		journal.MaterialTitle = ""
		return nil
	}
	material, err := s.materials.FindByID(ctx, materialID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrValidation, "material not found")
		}
		return appErrors.Internal(err, "failed to load material")
	}
	journal.MaterialID = &material.ID
	journal.MaterialTitle = material.Title
	return nil
}

func (s *JournalService) invalidate(ctx context.Context) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Invalidate(ctx, dashboardCachePattern); err != nil {
		s.logger.Warn("failed to invalidate dashboard cache", zap.Error(err))
	}
}

func assignString(dst *string, src *string) {
	if src != nil {
		*dst = *src
	}
}
