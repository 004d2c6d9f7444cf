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

var studentRowColumns = []string{"id", "nisn", "full_name", "class_id", "class_name", "gender", "birth_place", "birth_date", "address", "phone", "email", "created_at", "updated_at"}

func TestStudentRepositoryListByClassOrdersByName(t *testing.T) {
	db, mock, cleanup := newMockDB(t)
	defer cleanup()
	repo := NewStudentRepository(db)

	now := time.Now()
	rows := sqlmock.NewRows(studentRowColumns).
		AddRow("s-1", "001", "Ani", "c-1", "X IPA 1", "P", "", nil, "", "", "", now, now).
		AddRow("s-2", "002", "Budi", "c-1", "X IPA 1", "L", "", nil, "", "", "", now, now)
	mock.ExpectQuery(`FROM students s JOIN classes c ON c.id = s.class_id WHERE s.class_id = \$1 ORDER BY s.full_name ASC, s.nisn ASC`).
		WithArgs("c-1").
		WillReturnRows(rows)

	students, err := repo.ListByClass(context.Background(), "c-1")
	require.NoError(t, err)
	require.Len(t, students, 2)
	assert.Equal(t, "Ani", students[0].FullName)
	assert.Equal(t, "X IPA 1", students[1].ClassName)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestStudentRepositoryListByClassError(t *testing.T) {
	db, mock, cleanup := newMockDB(t)
	defer cleanup()
	repo := NewStudentRepository(db)

	mock.ExpectQuery("FROM students s").WithArgs("c-1").WillReturnError(errors.New("connection reset"))

	_, err := repo.ListByClass(context.Background(), "c-1")
	assert.ErrorContains(t, err, "list class roster")
}

func TestStudentRepositoryListFilters(t *testing.T) {
	db, mock, cleanup := newMockDB(t)
	defer cleanup()
	repo := NewStudentRepository(db)

	mock.ExpectQuery(`WHERE 1=1 AND s.class_id = \$1 AND \(LOWER\(s.full_name\) LIKE \$2 OR s.nisn LIKE \$2\) ORDER BY s.full_name ASC, s.nisn ASC LIMIT 10 OFFSET 10`).
		WithArgs("c-1", "%ani%").
		WillReturnRows(sqlmock.NewRows(studentRowColumns))
	mock.ExpectQuery(`SELECT COUNT\(\*\) FROM students s`).
		WithArgs("c-1", "%ani%").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(11))

	students, total, err := repo.List(context.Background(), models.StudentFilter{ClassID: "c-1", Search: "Ani", Page: 2, PageSize: 10})
	require.NoError(t, err)
	assert.Empty(t, students)
	assert.Equal(t, 11, total)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestStudentRepositoryCreate(t *testing.T) {
	db, mock, cleanup := newMockDB(t)
	defer cleanup()
	repo := NewStudentRepository(db)

	mock.ExpectExec("INSERT INTO students").
		WithArgs(sqlmock.AnyArg(), "0051234567", "Ani", "c-1", "P", "", sqlmock.AnyArg(), "", "", "", sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(1, 1))

	err := repo.Create(context.Background(), &models.Student{NISN: "0051234567", FullName: "Ani", ClassID: "c-1", Gender: "P"})
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestStudentRepositoryExistsByNISN(t *testing.T) {
	db, mock, cleanup := newMockDB(t)
	defer cleanup()
	repo := NewStudentRepository(db)

	mock.ExpectQuery(`SELECT 1 FROM students WHERE nisn = \$1 LIMIT 1`).
		WithArgs("001").
		WillReturnRows(sqlmock.NewRows([]string{"?column?"}).AddRow(1))

	exists, err := repo.ExistsByNISN(context.Background(), "001", "")
	require.NoError(t, err)
	assert.True(t, exists)
}
