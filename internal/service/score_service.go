package service

import (
	"context"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/guru-admin-api/internal/models"
	appErrors "github.com/noah-isme/guru-admin-api/pkg/errors"
)

type scoreRepository interface {
	FormativeRoster(ctx context.Context, classID, semesterID, topic string) ([]models.ScoreRosterEntry, error)
	SummativeRoster(ctx context.Context, classID, semesterID string, kind models.SummativeKind) ([]models.ScoreRosterEntry, error)
	Topics(ctx context.Context, classID, semesterID string) ([]string, error)
	SaveBatch(ctx context.Context, batch models.ScoreBatch) error
}

type semesterResolver interface {
	Resolve(ctx context.Context, id string) (*models.Semester, error)
}

type studentFinder interface {
	Get(ctx context.Context, id string) (*models.Student, error)
}

// ScoreService records formative, mid-term and final-term scores.
type ScoreService struct {
	repo      scoreRepository
	students  studentFinder
	semesters semesterResolver
	cache     cacheInvalidator
	validator *validator.Validate
	logger    *zap.Logger
	now       func() time.Time
}

// NewScoreService constructs a ScoreService.
func NewScoreService(repo scoreRepository, students studentFinder, semesters semesterResolver, cache cacheInvalidator, validate *validator.Validate, logger *zap.Logger) *ScoreService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ScoreService{
		repo:      repo,
		students:  students,
		semesters: semesters,
		cache:     cache,
		validator: validate,
		logger:    logger,
		now:       time.Now,
	}
}

// FormativeRoster returns the class roster with scores recorded for topic in the active semester.
func (s *ScoreService) FormativeRoster(ctx context.Context, classID, topic string) (*models.ScoreRoster, error) {
	if classID == "" || topic == "" {
		return nil, appErrors.Clone(appErrors.ErrValidation, "classId and topic are required")
	}
	semester, err := s.semesters.Resolve(ctx, "")
	if err != nil {
		return nil, err
	}
	entries, err := s.repo.FormativeRoster(ctx, classID, semester.ID, topic)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load formative roster")
	}
	return &models.ScoreRoster{ClassID: classID, SemesterID: semester.ID, Category: models.ScoreFormative, Topic: topic, Entries: entries}, nil
}

// SummativeRoster returns the class roster with UTS or UAS scores in the active semester.
func (s *ScoreService) SummativeRoster(ctx context.Context, classID string, kind models.SummativeKind) (*models.ScoreRoster, error) {
	category, ok := categoryForKind(kind)
	if classID == "" || !ok {
		return nil, appErrors.Clone(appErrors.ErrValidation, "classId and a kind of UTS or UAS are required")
	}
	semester, err := s.semesters.Resolve(ctx, "")
	if err != nil {
		return nil, err
	}
	entries, err := s.repo.SummativeRoster(ctx, classID, semester.ID, kind)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load summative roster")
	}
	return &models.ScoreRoster{ClassID: classID, SemesterID: semester.ID, Category: category, Entries: entries}, nil
}

// Topics lists formative topics recorded for a class in the active semester.
func (s *ScoreService) Topics(ctx context.Context, classID string) ([]string, error) {
	if classID == "" {
		return nil, appErrors.Clone(appErrors.ErrValidation, "classId is required")
	}
	semester, err := s.semesters.Resolve(ctx, "")
	if err != nil {
		return nil, err
	}
	topics, err := s.repo.Topics(ctx, classID, semester.ID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load formative topics")
	}
	return topics, nil
}

// SaveFormative stores a topic's scores for a class in the active semester.
func (s *ScoreService) SaveFormative(ctx context.Context, req models.SaveFormativeRequest) (*models.SaveResult, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Validation(err, "invalid formative scores payload")
	}
	semester, err := s.semesters.Resolve(ctx, "")
	if err != nil {
		return nil, err
	}
	date, _ := time.Parse(dateLayout, req.Date)
	return s.BulkSave(ctx, models.ScoreBatch{
		ClassID:    req.ClassID,
		SemesterID: semester.ID,
		Category:   models.ScoreFormative,
		Topic:      req.Topic,
		Date:       date,
		Entries:    req.Entries,
	})
}

// SaveSummative stores UTS or UAS scores for a class in the active semester.
func (s *ScoreService) SaveSummative(ctx context.Context, req models.SaveSummativeRequest) (*models.SaveResult, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Validation(err, "invalid summative scores payload")
	}
	category, _ := categoryForKind(req.Kind)
	semester, err := s.semesters.Resolve(ctx, "")
	if err != nil {
		return nil, err
	}
	date, _ := time.Parse(dateLayout, req.Date)
	return s.BulkSave(ctx, models.ScoreBatch{
		ClassID:    req.ClassID,
		SemesterID: semester.ID,
		Category:   category,
		Date:       date,
		Entries:    req.Entries,
	})
}

// BulkSave upserts every entry of a batch atomically. Entries without a score are skipped.
func (s *ScoreService) BulkSave(ctx context.Context, batch models.ScoreBatch) (*models.SaveResult, error) {
	if batch.ClassID == "" || batch.SemesterID == "" {
		return nil, appErrors.Clone(appErrors.ErrValidation, "class and semester are required")
	}
	switch batch.Category {
	case models.ScoreFormative:
		if batch.Topic == "" {
			return nil, appErrors.Clone(appErrors.ErrValidation, "topic is required for formative scores")
		}
	case models.ScoreMidTerm, models.ScoreFinalTerm:
	default:
		return nil, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("unknown score category %q", batch.Category))
	}
	if batch.Date.IsZero() {
		batch.Date = s.today()
	}

	saved := 0
	for _, entry := range batch.Entries {
		if entry.StudentID == "" {
			return nil, appErrors.Clone(appErrors.ErrValidation, "student_id is required for every entry")
		}
		if entry.Score != nil {
			saved++
		}
	}
	if err := s.repo.SaveBatch(ctx, batch); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to save scores")
	}
	s.invalidate(ctx)
	s.logger.Info("scores saved",
		zap.String("class_id", batch.ClassID),
		zap.String("semester_id", batch.SemesterID),
		zap.String("category", string(batch.Category)),
		zap.Int("saved", saved),
	)
	return &models.SaveResult{Saved: saved}, nil
}

// UpdateSingleScore sets one student's score for one category. The semester defaults to the active
// one and the date to today.
func (s *ScoreService) UpdateSingleScore(ctx context.Context, req models.UpdateSingleScoreRequest) (*models.SaveResult, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Validation(err, "invalid score payload")
	}
	student, err := s.students.Get(ctx, req.StudentID)
	if err != nil {
		return nil, err
	}
	semester, err := s.semesters.Resolve(ctx, req.SemesterID)
	if err != nil {
		return nil, err
	}
	date := s.today()
	if req.Date != "" {
		date, _ = time.Parse(dateLayout, req.Date)
	}
	return s.BulkSave(ctx, models.ScoreBatch{
		ClassID:    student.ClassID,
		SemesterID: semester.ID,
		Category:   req.Category,
		Topic:      req.Topic,
		Date:       date,
		Entries:    []models.ScoreEntryInput{{StudentID: student.ID, Score: req.Value}},
	})
}

func (s *ScoreService) today() time.Time {
	now := s.now()
	return time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
}

func (s *ScoreService) invalidate(ctx context.Context) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Invalidate(ctx, dashboardCachePattern); err != nil {
		s.logger.Warn("failed to invalidate dashboard cache", zap.Error(err))
	}
}

func categoryForKind(kind models.SummativeKind) (models.ScoreCategory, bool) {
	switch kind {
	case models.SummativeMidTerm:
		return models.ScoreMidTerm, true
	case models.SummativeFinalTerm:
		return models.ScoreFinalTerm, true
	default:
		return "", false
	}
}
