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

type semesterRepository interface {
	List(ctx context.Context) ([]models.Semester, error)
	FindByID(ctx context.Context, id string) (*models.Semester, error)
	FindActive(ctx context.Context) (*models.Semester, error)
	Exists(ctx context.Context, academicYear, term, excludeID string) (bool, error)
	Create(ctx context.Context, semester *models.Semester) error
	Update(ctx context.Context, semester *models.Semester) error
	SetActive(ctx context.Context, id string) error
	Delete(ctx context.Context, id string) error
}

// SemesterService manages academic semesters. At most one semester is active.
type SemesterService struct {
	repo      semesterRepository
	cache     cacheInvalidator
	validator *validator.Validate
	logger    *zap.Logger
}

// NewSemesterService constructs SemesterService.
func NewSemesterService(repo semesterRepository, cache cacheInvalidator, validate *validator.Validate, logger *zap.Logger) *SemesterService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SemesterService{repo: repo, cache: cache, validator: validate, logger: logger}
}

// List returns every semester, newest first.
func (s *SemesterService) List(ctx context.Context) ([]models.Semester, error) {
	semesters, err := s.repo.List(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list semesters")
	}
	return semesters, nil
}

// Get returns a semester by id.
func (s *SemesterService) Get(ctx context.Context, id string) (*models.Semester, error) {
	semester, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "semester not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load semester")
	}
	return semester, nil
}

// Active returns the active semester or NO_ACTIVE_SEMESTER.
func (s *SemesterService) Active(ctx context.Context) (*models.Semester, error) {
	semester, err := s.repo.FindActive(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.ErrNoActiveSemester
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load active semester")
	}
	return semester, nil
}

// Resolve returns the semester with the given id, or the active one when id is empty.
func (s *SemesterService) Resolve(ctx context.Context, id string) (*models.Semester, error) {
	if id == "" {
		return s.Active(ctx)
	}
	return s.Get(ctx, id)
}

// Create adds a semester. Creating it as active deactivates the others.
func (s *SemesterService) Create(ctx context.Context, req models.CreateSemesterRequest) (*models.Semester, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Validation(err, "invalid semester payload")
	}
	start, end, err := parseSemesterRange(req.StartDate, req.EndDate)
	if err != nil {
		return nil, err
	}
	if err := s.ensureUnique(ctx, req.AcademicYear, req.Term, ""); err != nil {
		return nil, err
	}

	semester := &models.Semester{
		AcademicYear:  req.AcademicYear,
		Term:          req.Term,
		StartDate:     start,
		EndDate:       end,
		Status:        models.SemesterStatusInactive,
		MinAttendance: models.DefaultMinAttendance,
		PassingGrade:  models.DefaultPassingGrade,
	}
	if req.Status != "" {
		semester.Status = req.Status
	}
	if req.MinAttendance != nil {
		semester.MinAttendance = *req.MinAttendance
	}
	if req.PassingGrade != nil {
		semester.PassingGrade = *req.PassingGrade
	}
	if err := s.repo.Create(ctx, semester); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create semester")
	}
	if semester.IsActive() {
		s.invalidate(ctx)
	}
	s.logger.Info("semester created", zap.String("semester_id", semester.ID), zap.String("label", semester.Label()))
	return semester, nil
}

// Update edits a semester.
func (s *SemesterService) Update(ctx context.Context, id string, req models.UpdateSemesterRequest) (*models.Semester, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Validation(err, "invalid semester payload")
	}
	semester, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.AcademicYear != nil {
		semester.AcademicYear = *req.AcademicYear
	}
	if req.Term != nil {
		semester.Term = *req.Term
	}
	if req.AcademicYear != nil || req.Term != nil {
		if err := s.ensureUnique(ctx, semester.AcademicYear, semester.Term, id); err != nil {
			return nil, err
		}
	}
	startDate := semester.StartDate.Format(dateLayout)
	endDate := semester.EndDate.Format(dateLayout)
	if req.StartDate != nil {
		startDate = *req.StartDate
	}
	if req.EndDate != nil {
		endDate = *req.EndDate
	}
	start, end, err := parseSemesterRange(startDate, endDate)
	if err != nil {
		return nil, err
	}
	semester.StartDate = start
	semester.EndDate = end
	if req.Status != nil {
		semester.Status = *req.Status
	}
	if req.MinAttendance != nil {
		semester.MinAttendance = *req.MinAttendance
	}
	if req.PassingGrade != nil {
		semester.PassingGrade = *req.PassingGrade
	}

	if err := s.repo.Update(ctx, semester); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update semester")
	}
	s.invalidate(ctx)
	return semester, nil
}

// Activate makes the semester the only active one.
func (s *SemesterService) Activate(ctx context.Context, id string) (*models.Semester, error) {
	semester, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.repo.SetActive(ctx, id); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to activate semester")
	}
	semester.Status = models.SemesterStatusActive
	s.invalidate(ctx)
	s.logger.Info("semester activated", zap.String("semester_id", id), zap.String("label", semester.Label()))
	return semester, nil
}

// Delete removes an inactive semester.
func (s *SemesterService) Delete(ctx context.Context, id string) error {
	semester, err := s.Get(ctx, id)
	if err != nil {
		return err
	}
	if semester.IsActive() {
		return appErrors.Clone(appErrors.ErrPreconditionFailed, "cannot delete active semester")
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete semester")
	}
	return nil
}

func (s *SemesterService) ensureUnique(ctx context.Context, academicYear, term, excludeID string) error {
	exists, err := s.repo.Exists(ctx, academicYear, term, excludeID)
	if err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check semester")
	}
	if exists {
		return appErrors.Clone(appErrors.ErrConflict, "semester already exists")
	}
	return nil
}

func (s *SemesterService) invalidate(ctx context.Context) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Invalidate(ctx, dashboardCachePattern); err != nil {
		s.logger.Warn("failed to invalidate dashboard cache", zap.Error(err))
	}
}

func parseSemesterRange(startDate, endDate string) (time.Time, time.Time, error) {
	start, err := time.Parse(dateLayout, startDate)
	if err != nil {
		return time.Time{}, time.Time{}, appErrors.Clone(appErrors.ErrValidation, "invalid start_date")
	}
	end, err := time.Parse(dateLayout, endDate)
	if err != nil {
		return time.Time{}, time.Time{}, appErrors.Clone(appErrors.ErrValidation, "invalid end_date")
	}
	if end.Before(start) {
		return time.Time{}, time.Time{}, appErrors.Clone(appErrors.ErrValidation, "end_date must not be before start_date")
	}
	return start, end, nil
}
