package service

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"path"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/guru-admin-api/internal/models"
	appErrors "github.com/noah-isme/guru-admin-api/pkg/errors"
)

type fakeCounter struct {
	count int
	err   error
	calls int
}

func (f *fakeCounter) Count(context.Context) (int, error) {
	f.calls++
	return f.count, f.err
}

type fakeActiveSemester struct {
	semester *models.Semester
	err      error
}

func (f *fakeActiveSemester) FindActive(context.Context) (*models.Semester, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.semester, nil
}

type fakePresence struct {
	present, total int
	from, to       time.Time
}

func (f *fakePresence) PresenceRate(_ context.Context, _ string, from, to time.Time) (int, int, error) {
	f.from, f.to = from, to
	return f.present, f.total, nil
}

type fakeFormativeAverage struct {
	avg float64
}

func (f *fakeFormativeAverage) AverageFormative(context.Context, string) (float64, error) {
	return f.avg, nil
}

type memoryCacheRepo struct {
	items map[string][]byte
}

func newMemoryCacheRepo() *memoryCacheRepo {
	return &memoryCacheRepo{items: map[string][]byte{}}
}

func (m *memoryCacheRepo) Get(_ context.Context, key string, dest interface{}) error {
	raw, ok := m.items[key]
	if !ok {
		return appErrors.ErrCacheMiss
	}
	return json.Unmarshal(raw, dest)
}

func (m *memoryCacheRepo) Set(_ context.Context, key string, value interface{}, _ time.Duration) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return err
	}
	m.items[key] = raw
	return nil
}

func (m *memoryCacheRepo) DeleteByPattern(_ context.Context, pattern string) error {
	for key := range m.items {
		if ok, _ := path.Match(pattern, key); ok {
			delete(m.items, key)
		}
	}
	return nil
}

type dashboardFixture struct {
	students  *fakeCounter
	classes   *fakeCounter
	materials *fakeCounter
	semesters *fakeActiveSemester
	presence  *fakePresence
	scores    *fakeFormativeAverage
	weights   *weightProviderMock
	cacheRepo *memoryCacheRepo
}

func newDashboardFixture() *dashboardFixture {
	return &dashboardFixture{
		students:  &fakeCounter{count: 64},
		classes:   &fakeCounter{count: 2},
		materials: &fakeCounter{count: 12},
		semesters: &fakeActiveSemester{semester: &models.Semester{ID: "sem-1", AcademicYear: "2024/2025", Term: models.TermOdd, Status: models.SemesterStatusActive}},
		presence:  &fakePresence{present: 45, total: 50},
		scores:    &fakeFormativeAverage{avg: 78.4},
		weights:   &weightProviderMock{weights: models.DefaultWeights()},
		cacheRepo: newMemoryCacheRepo(),
	}
}

func (f *dashboardFixture) service() *DashboardService {
	svc := NewDashboardService(DashboardServiceParams{
		Students:   f.students,
		Classes:    f.classes,
		Materials:  f.materials,
		Semesters:  f.semesters,
		Attendance: f.presence,
		Scores:     f.scores,
		Weights:    f.weights,
		Cache:      NewCacheService(f.cacheRepo, nil, time.Minute, nil, true),
	})
	svc.now = func() time.Time { return time.Date(2024, 11, 18, 9, 30, 0, 0, time.UTC) }
	return svc
}

func TestDashboardSummary(t *testing.T) {
	f := newDashboardFixture()

	summary, hit, err := f.service().Summary(context.Background())
	require.NoError(t, err)
	assert.False(t, hit)
	assert.Equal(t, 64, summary.TotalStudents)
	assert.Equal(t, 2, summary.TotalClasses)
	assert.Equal(t, 12, summary.TotalMaterials)
	assert.Equal(t, "2024/2025 Ganjil", summary.ActiveSemesterLabel)
	assert.Equal(t, "2024-11", summary.AttendanceMonth)
	assert.Equal(t, 90.0, summary.AttendancePercentage)
	assert.Equal(t, 78.4, summary.AverageFormativeScore)
	assert.Equal(t, "B", summary.AverageFormativeGrade)
	assert.Equal(t, 30, summary.Weights.FinalTerm)
	assert.Equal(t, time.Date(2024, 11, 1, 0, 0, 0, 0, time.UTC), f.presence.from)
	assert.Equal(t, time.Date(2024, 12, 1, 0, 0, 0, 0, time.UTC), f.presence.to)
}

func TestDashboardSummaryServedFromCache(t *testing.T) {
	f := newDashboardFixture()
	svc := f.service()

	_, _, err := svc.Summary(context.Background())
	require.NoError(t, err)
	summary, hit, err := svc.Summary(context.Background())
	require.NoError(t, err)
	assert.True(t, hit)
	assert.Equal(t, 64, summary.TotalStudents)
	assert.Equal(t, 1, f.students.calls)

	svc.Invalidate(context.Background())
	_, hit, err = svc.Summary(context.Background())
	require.NoError(t, err)
	assert.False(t, hit)
	assert.Equal(t, 2, f.students.calls)
}

func TestDashboardSummaryWeightChangeInvalidatesCache(t *testing.T) {
	f := newDashboardFixture()
	cache := NewCacheService(f.cacheRepo, nil, time.Minute, nil, true)
	svc := f.service()
	weights := NewWeightService(&weightRepoMock{}, cache, nil, nil)

	_, _, err := svc.Summary(context.Background())
	require.NoError(t, err)
	_, err = weights.Set(context.Background(), weightsRequest(30, 30, 40, 0))
	require.NoError(t, err)

	_, hit, err := svc.Summary(context.Background())
	require.NoError(t, err)
	assert.False(t, hit)
}

func TestDashboardSummaryWithoutActiveSemester(t *testing.T) {
	f := newDashboardFixture()
	f.semesters.err = sql.ErrNoRows
	f.presence.total = 0

	summary, _, err := f.service().Summary(context.Background())
	require.NoError(t, err)
	assert.Empty(t, summary.ActiveSemesterID)
	assert.Zero(t, summary.AttendancePercentage)
	assert.Equal(t, "D", summary.AverageFormativeGrade)
}

func TestDashboardSummaryCountFailure(t *testing.T) {
	f := newDashboardFixture()
	f.students.err = errors.New("db down")

	_, _, err := f.service().Summary(context.Background())
	require.Error(t, err)
	assert.True(t, errors.Is(err, appErrors.ErrInternal))
	assert.Empty(t, f.cacheRepo.items)
}

func TestDashboardSummaryWithoutCache(t *testing.T) {
	f := newDashboardFixture()
	svc := NewDashboardService(DashboardServiceParams{
		Students:   f.students,
		Classes:    f.classes,
		Materials:  f.materials,
		Semesters:  f.semesters,
		Attendance: f.presence,
		Scores:     f.scores,
		Weights:    f.weights,
	})

	_, hit, err := svc.Summary(context.Background())
	require.NoError(t, err)
	assert.False(t, hit)
}
