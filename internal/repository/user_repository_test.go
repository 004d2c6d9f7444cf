package repository

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/guru-admin-api/internal/models"
)

func TestUserRepositoryFindByEmail(t *testing.T) {
	db, mock, cleanup := newMockDB(t)
	defer cleanup()
	repo := NewUserRepository(db)

	now := time.Now()
	rows := sqlmock.NewRows([]string{"id", "email", "password_hash", "full_name", "nip", "position", "subject", "role", "active", "last_login_at", "created_at", "updated_at"}).
		AddRow("u-1", "guru@sekolah.local", "hash", "Bu Sari", "1987", "Guru Mapel", "Matematika", "TEACHER", true, nil, now, now)
	mock.ExpectQuery(`FROM users WHERE LOWER\(email\) = LOWER\(\$1\) LIMIT 1`).
		WithArgs("guru@sekolah.local").
		WillReturnRows(rows)

	user, err := repo.FindByEmail(context.Background(), "guru@sekolah.local")
	require.NoError(t, err)
	assert.Equal(t, models.RoleTeacher, user.Role)
	assert.Equal(t, "Matematika", user.Subject)
	assert.Nil(t, user.LastLoginAt)
}

func TestUserRepositoryFindByEmailNotFound(t *testing.T) {
	db, mock, cleanup := newMockDB(t)
	defer cleanup()
	repo := NewUserRepository(db)

	mock.ExpectQuery(`FROM users`).WithArgs("x@y.z").WillReturnError(sql.ErrNoRows)

	_, err := repo.FindByEmail(context.Background(), "x@y.z")
	assert.True(t, errors.Is(err, sql.ErrNoRows))
}

func TestUserRepositoryCreate(t *testing.T) {
	db, mock, cleanup := newMockDB(t)
	defer cleanup()
	repo := NewUserRepository(db)

	mock.ExpectExec("INSERT INTO users").
		WithArgs(sqlmock.AnyArg(), "admin@sekolah.local", "hash", "Administrator", "", "", "", models.RoleAdmin, true, sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(1, 1))

	user := &models.User{Email: "admin@sekolah.local", PasswordHash: "hash", FullName: "Administrator", Role: models.RoleAdmin, Active: true}
	require.NoError(t, repo.Create(context.Background(), user))
	assert.NotEmpty(t, user.ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}
