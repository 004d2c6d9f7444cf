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

type mockClassRepo struct {
	classes  map[string]models.Class
	names    map[string]string
	students map[string]int
	deleted  []string
	findErr  error
}

func (m *mockClassRepo) List(ctx context.Context, filter models.ClassFilter) ([]models.Class, int, error) {
	out := make([]models.Class, 0, len(m.classes))
	for _, c := range m.classes {
		out = append(out, c)
	}
	return out, len(out), nil
}

func (m *mockClassRepo) FindByID(ctx context.Context, id string) (*models.Class, error) {
	if m.findErr != nil {
		return nil, m.findErr
	}
	if c, ok := m.classes[id]; ok {
		return &c, nil
	}
	return nil, sql.ErrNoRows
}

func (m *mockClassRepo) ExistsByName(ctx context.Context, name string, excludeID string) (bool, error) {
	id, ok := m.names[name]
	return ok && id != excludeID, nil
}

func (m *mockClassRepo) Create(ctx context.Context, class *models.Class) error {
	if m.classes == nil {
		m.classes = map[string]models.Class{}
	}
	class.ID = "class-new"
	m.classes[class.ID] = *class
	return nil
}

func (m *mockClassRepo) Update(ctx context.Context, class *models.Class) error {
	m.classes[class.ID] = *class
	return nil
}

func (m *mockClassRepo) Delete(ctx context.Context, id string) error {
	m.deleted = append(m.deleted, id)
	return nil
}

func (m *mockClassRepo) CountStudents(ctx context.Context, classID string) (int, error) {
	return m.students[classID], nil
}

func TestClassServiceCreateDefaultsCapacity(t *testing.T) {
	repo := &mockClassRepo{}
	svc := NewClassService(repo, nil, nil, nil)

	class, err := svc.Create(context.Background(), models.CreateClassRequest{Name: " X IPA 1 ", Level: "X"})
	require.NoError(t, err)
	assert.Equal(t, "X IPA 1", class.Name)
	assert.Equal(t, models.DefaultClassCapacity, class.Capacity)
}

func TestClassServiceCreateConflict(t *testing.T) {
	repo := &mockClassRepo{names: map[string]string{"X IPA 1": "class-1"}}
	svc := NewClassService(repo, nil, nil, nil)

	_, err := svc.Create(context.Background(), models.CreateClassRequest{Name: "X IPA 1"})
	require.Error(t, err)
	assert.Equal(t, 409, appErrors.FromError(err).Status)
}

func TestClassServiceUpdate(t *testing.T) {
	repo := &mockClassRepo{
		classes: map[string]models.Class{"class-1": {ID: "class-1", Name: "X IPA 1", Capacity: 36}},
		names:   map[string]string{"X IPA 1": "class-1", "X IPA 2": "class-2"},
	}
	svc := NewClassService(repo, nil, nil, nil)

	capacity := 32
	class, err := svc.Update(context.Background(), "class-1", models.UpdateClassRequest{Capacity: &capacity})
	require.NoError(t, err)
	assert.Equal(t, 32, class.Capacity)

	name := "X IPA 2"
	_, err = svc.Update(context.Background(), "class-1", models.UpdateClassRequest{Name: &name})
	assert.Equal(t, appErrors.ErrConflict.Code, appErrors.FromError(err).Code)
}

func TestClassServiceDeleteWithStudents(t *testing.T) {
	repo := &mockClassRepo{
		classes:  map[string]models.Class{"class-1": {ID: "class-1"}},
		students: map[string]int{"class-1": 3},
	}
	svc := NewClassService(repo, nil, nil, nil)

	err := svc.Delete(context.Background(), "class-1")
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrPreconditionFailed.Code, appErrors.FromError(err).Code)
	assert.Empty(t, repo.deleted)
}

func TestClassServiceDelete(t *testing.T) {
	repo := &mockClassRepo{classes: map[string]models.Class{"class-1": {ID: "class-1"}}}
	cache := &invalidatorMock{}
	svc := NewClassService(repo, cache, nil, nil)

	require.NoError(t, svc.Delete(context.Background(), "class-1"))
	assert.Equal(t, []string{"class-1"}, repo.deleted)
	assert.Len(t, cache.patterns, 1)
}

func TestClassServiceGetErrors(t *testing.T) {
	svc := NewClassService(&mockClassRepo{}, nil, nil, nil)
	_, err := svc.Get(context.Background(), "missing")
	assert.True(t, errors.Is(err, appErrors.ErrNotFound))

	svc = NewClassService(&mockClassRepo{findErr: errors.New("db down")}, nil, nil, nil)
	_, err = svc.Get(context.Background(), "class-1")
	assert.True(t, errors.Is(err, appErrors.ErrInternal))
}
