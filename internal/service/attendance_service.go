package service

import (
	"context"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/guru-admin-api/internal/models"
	appErrors "github.com/noah-isme/guru-admin-api/pkg/errors"
)

type attendanceRepository interface {
	Roster(ctx context.Context, classID string, date time.Time) ([]models.AttendanceRosterEntry, error)
	BulkUpsert(ctx context.Context, records []models.Attendance) error
	Recap(ctx context.Context, filter models.AttendanceRecapFilter) ([]models.AttendanceRecapRow, error)
}

// AttendanceRecapRequest carries recap query parameters as received from the client.
type AttendanceRecapRequest struct {
	ClassID    string `form:"classId"`
	SemesterID string `form:"semesterId"`
	Status     string `form:"status" validate:"omitempty,oneof=Hadir Sakit Izin Alpa"`
	From       string `form:"from" validate:"omitempty,datetime=2006-01-02"`
	To         string `form:"to" validate:"omitempty,datetime=2006-01-02"`
}

// AttendanceService coordinates daily attendance workflows.
type AttendanceService struct {
	repo      attendanceRepository
	semesters semesterResolver
	cache     cacheInvalidator
	validator *validator.Validate
	logger    *zap.Logger
}

// NewAttendanceService constructs the attendance service.
func NewAttendanceService(repo attendanceRepository, semesters semesterResolver, cache cacheInvalidator, validate *validator.Validate, logger *zap.Logger) *AttendanceService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AttendanceService{repo: repo, semesters: semesters, cache: cache, validator: validate, logger: logger}
}

// Roster returns the attendance sheet of a class on date within the active semester.
func (s *AttendanceService) Roster(ctx context.Context, classID, date string) (*models.AttendanceRoster, error) {
	if classID == "" {
		return nil, appErrors.Clone(appErrors.ErrValidation, "classId is required")
	}
	day, err := time.Parse(dateLayout, date)
	if err != nil {
		return nil, appErrors.Clone(appErrors.ErrValidation, "date must be YYYY-MM-DD")
	}
	semester, err := s.semesters.Resolve(ctx, "")
	if err != nil {
		return nil, err
	}
	entries, err := s.repo.Roster(ctx, classID, day)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load attendance roster")
	}
	return &models.AttendanceRoster{ClassID: classID, SemesterID: semester.ID, Date: date, Entries: entries}, nil
}

// Save upserts attendance for every student in the request in one transaction.
func (s *AttendanceService) Save(ctx context.Context, req models.SaveAttendanceRequest) (*models.SaveResult, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Validation(err, "invalid attendance payload")
	}
	semester, err := s.semesters.Resolve(ctx, "")
	if err != nil {
		return nil, err
	}
	day, _ := time.Parse(dateLayout, req.Date)

	records := make([]models.Attendance, 0, len(req.Entries))
	for _, entry := range req.Entries {
		records = append(records, models.Attendance{
			StudentID:  entry.StudentID,
			ClassID:    req.ClassID,
			SemesterID: semester.ID,
			Date:       day,
			Status:     entry.Status,
			Note:       entry.Note,
		})
	}
	if err := s.repo.BulkUpsert(ctx, records); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to save attendance")
	}
	if s.cache != nil {
		if err := s.cache.Invalidate(ctx, dashboardCachePattern); err != nil {
			s.logger.Warn("failed to invalidate dashboard cache", zap.Error(err))
		}
	}
	s.logger.Info("attendance saved", zap.String("class_id", req.ClassID), zap.String("date", req.Date), zap.Int("saved", len(records)))
	return &models.SaveResult{Saved: len(records)}, nil
}

// Recap lists recorded attendance with a per-status tally. The semester defaults to the active one.
func (s *AttendanceService) Recap(ctx context.Context, req AttendanceRecapRequest) (*models.AttendanceRecap, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Validation(err, "invalid recap filter")
	}
	semester, err := s.semesters.Resolve(ctx, req.SemesterID)
	if err != nil {
		return nil, err
	}
	filter := models.AttendanceRecapFilter{
		ClassID:    req.ClassID,
		SemesterID: semester.ID,
		Status:     models.AttendanceStatus(req.Status),
		From:       parseOptionalDate(req.From),
		To:         parseOptionalDate(req.To),
	}
	if filter.From != nil && filter.To != nil && filter.To.Before(*filter.From) {
		return nil, appErrors.Clone(appErrors.ErrValidation, "to must not be before from")
	}

	rows, err := s.repo.Recap(ctx, filter)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load attendance recap")
	}
	summary := make(map[models.AttendanceStatus]int, len(models.AttendanceStatuses))
	for _, status := range models.AttendanceStatuses {
		summary[status] = 0
	}
	for _, row := range rows {
		summary[row.Status]++
	}
	return &models.AttendanceRecap{Rows: rows, Summary: summary, Total: len(rows)}, nil
}
