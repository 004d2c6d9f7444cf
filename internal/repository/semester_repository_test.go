package repository

import (
	"context"
	"errors"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/guru-admin-api/internal/models"
)

func TestSemesterRepositorySetActive(t *testing.T) {
	db, mock, cleanup := newMockDB(t)
	defer cleanup()
	repo := NewSemesterRepository(db)

	mock.ExpectBegin()
	mock.ExpectExec(`UPDATE semesters SET status = \$1, updated_at = \$2 WHERE status = \$3 AND id <> \$4`).
		WithArgs(models.SemesterStatusInactive, sqlmock.AnyArg(), models.SemesterStatusActive, "sem-2").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(`UPDATE semesters SET status = \$1, updated_at = \$2 WHERE id = \$3`).
		WithArgs(models.SemesterStatusActive, sqlmock.AnyArg(), "sem-2").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	require.NoError(t, repo.SetActive(context.Background(), "sem-2"))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSemesterRepositoryCreateActiveRollsBackOnError(t *testing.T) {
	db, mock, cleanup := newMockDB(t)
	defer cleanup()
	repo := NewSemesterRepository(db)

	mock.ExpectBegin()
	mock.ExpectExec(`UPDATE semesters SET status`).WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(`INSERT INTO semesters`).WillReturnError(errors.New("duplicate key"))
	mock.ExpectRollback()

	semester := &models.Semester{AcademicYear: "2024/2025", Term: models.TermOdd, Status: models.SemesterStatusActive,
		StartDate: time.Date(2024, 7, 15, 0, 0, 0, 0, time.UTC), EndDate: time.Date(2024, 12, 20, 0, 0, 0, 0, time.UTC)}
	err := repo.Create(context.Background(), semester)
	assert.ErrorContains(t, err, "create semester")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSemesterRepositoryCreateInactiveSkipsDeactivation(t *testing.T) {
	db, mock, cleanup := newMockDB(t)
	defer cleanup()
	repo := NewSemesterRepository(db)

	mock.ExpectBegin()
	mock.ExpectExec(`INSERT INTO semesters`).WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectCommit()

	semester := &models.Semester{AcademicYear: "2024/2025", Term: models.TermEven, Status: models.SemesterStatusInactive}
	require.NoError(t, repo.Create(context.Background(), semester))
	assert.NotEmpty(t, semester.ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}
