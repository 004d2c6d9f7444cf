package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/guru-admin-api/internal/models"
	appErrors "github.com/noah-isme/guru-admin-api/pkg/errors"
)

type mockScoreRepo struct {
	batches []models.ScoreBatch
	roster  []models.ScoreRosterEntry
	topics  []string
	saveErr error
	lastSem string
}

func (m *mockScoreRepo) FormativeRoster(ctx context.Context, classID, semesterID, topic string) ([]models.ScoreRosterEntry, error) {
	m.lastSem = semesterID
	return m.roster, nil
}

func (m *mockScoreRepo) SummativeRoster(ctx context.Context, classID, semesterID string, kind models.SummativeKind) ([]models.ScoreRosterEntry, error) {
	m.lastSem = semesterID
	return m.roster, nil
}

func (m *mockScoreRepo) Topics(ctx context.Context, classID, semesterID string) ([]string, error) {
	return m.topics, nil
}

func (m *mockScoreRepo) SaveBatch(ctx context.Context, batch models.ScoreBatch) error {
	if m.saveErr != nil {
		return m.saveErr
	}
	m.batches = append(m.batches, batch)
	return nil
}

type mockStudentFinder struct {
	students map[string]models.Student
}

func (m *mockStudentFinder) Get(ctx context.Context, id string) (*models.Student, error) {
	if s, ok := m.students[id]; ok {
		return &s, nil
	}
	return nil, appErrors.Clone(appErrors.ErrNotFound, "student not found")
}

func newScoreService(repo *mockScoreRepo, semesters *mockSemesterRepo, cache cacheInvalidator) *ScoreService {
	students := &mockStudentFinder{students: map[string]models.Student{
		"s-1": {ID: "s-1", ClassID: "class-1", FullName: "Ani"},
	}}
	svc := NewScoreService(repo, students, NewSemesterService(semesters, nil, nil, nil), cache, nil, nil)
	svc.now = func() time.Time { return time.Date(2024, 10, 3, 14, 20, 0, 0, time.Local) }
	return svc
}

func score(v float64) *float64 { return &v }

func TestScoreServiceUpdateSingleScoreDefaults(t *testing.T) {
	repo := &mockScoreRepo{}
	cache := &invalidatorMock{}
	svc := newScoreService(repo, semesterFixture(), cache)

	result, err := svc.UpdateSingleScore(context.Background(), models.UpdateSingleScoreRequest{
		StudentID: "s-1",
		Category:  models.ScoreMidTerm,
		Value:     score(88),
	})
	require.NoError(t, err)
	assert.Equal(t, 1, result.Saved)
	require.Len(t, repo.batches, 1)

	batch := repo.batches[0]
	assert.Equal(t, "class-1", batch.ClassID)
	assert.Equal(t, "sem-1", batch.SemesterID)
	assert.Equal(t, models.ScoreMidTerm, batch.Category)
	assert.Equal(t, time.Date(2024, 10, 3, 0, 0, 0, 0, time.UTC), batch.Date)
	require.Len(t, batch.Entries, 1)
	assert.Equal(t, 88.0, *batch.Entries[0].Score)
	assert.Equal(t, []string{dashboardCachePattern}, cache.patterns)
}

func TestScoreServiceUpdateSingleScoreExplicitSemester(t *testing.T) {
	repo := &mockScoreRepo{}
	svc := newScoreService(repo, semesterFixture(), nil)

	_, err := svc.UpdateSingleScore(context.Background(), models.UpdateSingleScoreRequest{
		StudentID:  "s-1",
		Category:   models.ScoreFormative,
		Topic:      "Persamaan Kuadrat",
		Value:      score(-4),
		Date:       "2024-09-20",
		SemesterID: "sem-2",
	})
	require.NoError(t, err)
	assert.Equal(t, "sem-2", repo.batches[0].SemesterID)
	assert.Equal(t, "Persamaan Kuadrat", repo.batches[0].Topic)
	assert.Equal(t, -4.0, *repo.batches[0].Entries[0].Score)
}

func TestScoreServiceUpdateSingleScoreValidation(t *testing.T) {
	svc := newScoreService(&mockScoreRepo{}, semesterFixture(), nil)

	cases := map[string]models.UpdateSingleScoreRequest{
		"formative without topic": {StudentID: "s-1", Category: models.ScoreFormative, Value: score(80)},
		"unknown category":        {StudentID: "s-1", Category: "ATTENDANCE", Value: score(80)},
		"missing value":           {StudentID: "s-1", Category: models.ScoreFinalTerm},
	}
	for name, req := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := svc.UpdateSingleScore(context.Background(), req)
			require.Error(t, err)
			assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
		})
	}
}

func TestScoreServiceUpdateSingleScoreLookups(t *testing.T) {
	semesters := semesterFixture()
	semesters.activeID = ""
	svc := newScoreService(&mockScoreRepo{}, semesters, nil)

	_, err := svc.UpdateSingleScore(context.Background(), models.UpdateSingleScoreRequest{StudentID: "missing", Category: models.ScoreMidTerm, Value: score(1)})
	assert.True(t, errors.Is(err, appErrors.ErrNotFound))

	_, err = svc.UpdateSingleScore(context.Background(), models.UpdateSingleScoreRequest{StudentID: "s-1", Category: models.ScoreMidTerm, Value: score(1)})
	assert.True(t, errors.Is(err, appErrors.ErrNoActiveSemester))
}

func TestScoreServiceSaveSummative(t *testing.T) {
	repo := &mockScoreRepo{}
	svc := newScoreService(repo, semesterFixture(), nil)

	result, err := svc.SaveSummative(context.Background(), models.SaveSummativeRequest{
		ClassID: "class-1",
		Kind:    models.SummativeFinalTerm,
		Date:    "2024-12-02",
		Entries: []models.ScoreEntryInput{
			{StudentID: "s-1", Score: score(90)},
			{StudentID: "s-2", Score: score(72.5)},
		},
	})
	require.NoError(t, err)
	assert.Equal(t, 2, result.Saved)
	assert.Equal(t, models.ScoreFinalTerm, repo.batches[0].Category)
	assert.Equal(t, "sem-1", repo.batches[0].SemesterID)
}

func TestScoreServiceBulkSaveFailureIsAtomic(t *testing.T) {
	repo := &mockScoreRepo{saveErr: errors.New("deadlock detected")}
	cache := &invalidatorMock{}
	svc := newScoreService(repo, semesterFixture(), cache)

	_, err := svc.BulkSave(context.Background(), models.ScoreBatch{
		ClassID: "class-1", SemesterID: "sem-1", Category: models.ScoreMidTerm,
		Entries: []models.ScoreEntryInput{{StudentID: "s-1", Score: score(70)}},
	})
	require.Error(t, err)
	assert.True(t, errors.Is(err, appErrors.ErrInternal))
	assert.Empty(t, cache.patterns)
}

func TestScoreServiceBulkSaveRejectsUnknownCategory(t *testing.T) {
	svc := newScoreService(&mockScoreRepo{}, semesterFixture(), nil)

	_, err := svc.BulkSave(context.Background(), models.ScoreBatch{ClassID: "class-1", SemesterID: "sem-1", Category: "PRACTICE"})
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
}

func TestScoreServiceRosters(t *testing.T) {
	repo := &mockScoreRepo{roster: []models.ScoreRosterEntry{{StudentID: "s-1", Score: score(80)}}, topics: []string{"Aljabar"}}
	svc := newScoreService(repo, semesterFixture(), nil)

	roster, err := svc.FormativeRoster(context.Background(), "class-1", "Aljabar")
	require.NoError(t, err)
	assert.Equal(t, "sem-1", roster.SemesterID)
	assert.Len(t, roster.Entries, 1)

	roster, err = svc.SummativeRoster(context.Background(), "class-1", models.SummativeMidTerm)
	require.NoError(t, err)
	assert.Equal(t, models.ScoreMidTerm, roster.Category)

	_, err = svc.SummativeRoster(context.Background(), "class-1", "QUIZ")
	assert.Error(t, err)

	topics, err := svc.Topics(context.Background(), "class-1")
	require.NoError(t, err)
	assert.Equal(t, []string{"Aljabar"}, topics)
}
