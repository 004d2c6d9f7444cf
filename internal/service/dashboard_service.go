package service

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/guru-admin-api/internal/models"
	appErrors "github.com/noah-isme/guru-admin-api/pkg/errors"
)

const (
	dashboardCachePattern = "dashboard:*"
	dashboardSummaryKey   = "dashboard:summary"
)

type entityCounter interface {
	Count(ctx context.Context) (int, error)
}

type activeSemesterFinder interface {
	FindActive(ctx context.Context) (*models.Semester, error)
}

type presenceRateProvider interface {
	PresenceRate(ctx context.Context, semesterID string, from, to time.Time) (present, total int, err error)
}

type formativeAverager interface {
	AverageFormative(ctx context.Context, semesterID string) (float64, error)
}

// DashboardServiceParams groups constructor dependencies.
type DashboardServiceParams struct {
	Students   entityCounter
	Classes    entityCounter
	Materials  entityCounter
	Semesters  activeSemesterFinder
	Attendance presenceRateProvider
	Scores     formativeAverager
	Weights    weightProvider
	Cache      *CacheService
	CacheTTL   time.Duration
	Logger     *zap.Logger
}

// DashboardService composes the landing-page summary.
type DashboardService struct {
	students   entityCounter
	classes    entityCounter
	materials  entityCounter
	semesters  activeSemesterFinder
	attendance presenceRateProvider
	scores     formativeAverager
	weights    weightProvider
	cache      *CacheService
	cacheTTL   time.Duration
	logger     *zap.Logger
	now        func() time.Time
}

// NewDashboardService constructs a DashboardService with sane defaults.
func NewDashboardService(params DashboardServiceParams) *DashboardService {
	ttl := params.CacheTTL
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	logger := params.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &DashboardService{
		students:   params.Students,
		classes:    params.Classes,
		materials:  params.Materials,
		semesters:  params.Semesters,
		attendance: params.Attendance,
		scores:     params.Scores,
		weights:    params.Weights,
		cache:      params.Cache,
		cacheTTL:   ttl,
		logger:     logger,
		now:        time.Now,
	}
}

// Summary returns the dashboard summary and whether it was served from cache.
func (s *DashboardService) Summary(ctx context.Context) (*models.DashboardSummary, bool, error) {
	return Remember(ctx, s.cache, dashboardSummaryKey, s.cacheTTL, s.compose)
}

// Invalidate drops every cached dashboard payload.
func (s *DashboardService) Invalidate(ctx context.Context) {
	if err := s.cache.Invalidate(ctx, dashboardCachePattern); err != nil {
		s.logger.Warn("dashboard cache invalidate failed", zap.Error(err))
	}
}

func (s *DashboardService) compose(ctx context.Context) (*models.DashboardSummary, error) {
	now := s.now().UTC()
	monthStart := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC)

	students, err := s.students.Count(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to count students")
	}
	classes, err := s.classes.Count(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to count classes")
	}
	materials := 0
	if s.materials != nil {
		if materials, err = s.materials.Count(ctx); err != nil {
			return nil, appErrors.Internal(err, "failed to count materials")
		}
	}
	weights, err := s.weights.Get(ctx)
	if err != nil {
		return nil, err
	}

	summary := &models.DashboardSummary{
		TotalStudents:         students,
		TotalClasses:          classes,
		TotalMaterials:        materials,
		AttendanceMonth:       monthStart.Format("2006-01"),
		AverageFormativeGrade: GradeLetter(0),
		Weights:               *weights,
		GeneratedAt:           now,
	}

	semester, err := s.semesters.FindActive(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return summary, nil
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load active semester")
	}
	summary.ActiveSemesterID = semester.ID
	summary.ActiveSemesterLabel = semester.Label()

	present, total, err := s.attendance.PresenceRate(ctx, semester.ID, monthStart, monthStart.AddDate(0, 1, 0))
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load attendance rate")
	}
	if total > 0 {
		summary.AttendancePercentage = float64(present) * 100 / float64(total)
	}

	avg, err := s.scores.AverageFormative(ctx, semester.ID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load formative average")
	}
	summary.AverageFormativeScore = avg
	summary.AverageFormativeGrade = GradeLetter(avg)
	return summary, nil
}
