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

func TestAttendanceSummaryByClass(t *testing.T) {
	db, mock, cleanup := newMockDB(t)
	defer cleanup()
	repo := NewAttendanceRepository(db)

	mock.ExpectQuery(`SELECT COUNT\(DISTINCT date\) FROM attendance WHERE class_id = \$1 AND semester_id = \$2`).
		WithArgs("c-1", "sem-1").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(4))
	mock.ExpectQuery(`SELECT student_id, COUNT\(\*\) AS present FROM attendance`).
		WithArgs("c-1", "sem-1", models.AttendancePresent).
		WillReturnRows(sqlmock.NewRows([]string{"student_id", "present"}).AddRow("s-1", 3).AddRow("s-2", 4))

	summary, err := repo.SummaryByClass(context.Background(), "c-1", "sem-1")
	require.NoError(t, err)
	assert.Equal(t, map[string]float64{"s-1": 75, "s-2": 100}, summary)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAttendanceSummaryByClassWithoutMeetings(t *testing.T) {
	db, mock, cleanup := newMockDB(t)
	defer cleanup()
	repo := NewAttendanceRepository(db)

	mock.ExpectQuery(`SELECT COUNT\(DISTINCT date\)`).
		WithArgs("c-1", "sem-1").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(0))

	summary, err := repo.SummaryByClass(context.Background(), "c-1", "sem-1")
	require.NoError(t, err)
	assert.Empty(t, summary)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAttendanceBulkUpsert(t *testing.T) {
	db, mock, cleanup := newMockDB(t)
	defer cleanup()
	repo := NewAttendanceRepository(db)

	date := time.Date(2024, 8, 1, 0, 0, 0, 0, time.UTC)
	mock.ExpectBegin()
	mock.ExpectExec(`(?s)INSERT INTO attendance .* ON CONFLICT \(student_id, date\)`).
		WithArgs(sqlmock.AnyArg(), "s-1", "c-1", "sem-1", date, models.AttendancePresent, "", sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectExec(`INSERT INTO attendance`).
		WithArgs(sqlmock.AnyArg(), "s-2", "c-1", "sem-1", date, models.AttendanceSick, "demam", sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectCommit()

	err := repo.BulkUpsert(context.Background(), []models.Attendance{
		{StudentID: "s-1", ClassID: "c-1", SemesterID: "sem-1", Date: date, Status: models.AttendancePresent},
		{StudentID: "s-2", ClassID: "c-1", SemesterID: "sem-1", Date: date, Status: models.AttendanceSick, Note: "demam"},
	})
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAttendanceBulkUpsertRollsBack(t *testing.T) {
	db, mock, cleanup := newMockDB(t)
	defer cleanup()
	repo := NewAttendanceRepository(db)

	mock.ExpectBegin()
	mock.ExpectExec(`INSERT INTO attendance`).WillReturnError(errors.New("fk violation"))
	mock.ExpectRollback()

	err := repo.BulkUpsert(context.Background(), []models.Attendance{{StudentID: "missing", Status: models.AttendancePresent}})
	assert.ErrorContains(t, err, "upsert attendance for student missing")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAttendanceRecapFilters(t *testing.T) {
	db, mock, cleanup := newMockDB(t)
	defer cleanup()
	repo := NewAttendanceRepository(db)

	from := time.Date(2024, 8, 1, 0, 0, 0, 0, time.UTC)
	mock.ExpectQuery(`WHERE 1=1 AND a.semester_id = \$1 AND a.status = \$2 AND a.date >= \$3 ORDER BY a.date DESC`).
		WithArgs("sem-1", models.AttendanceAbsent, from).
		WillReturnRows(sqlmock.NewRows([]string{"date", "student_id", "nisn", "student_name", "class_name", "status", "note"}).
			AddRow(from, "s-1", "001", "Ani", "X IPA 1", "Alpa", ""))

	rows, err := repo.Recap(context.Background(), models.AttendanceRecapFilter{SemesterID: "sem-1", Status: models.AttendanceAbsent, From: &from})
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, models.AttendanceAbsent, rows[0].Status)
	assert.NoError(t, mock.ExpectationsWereMet())
}
