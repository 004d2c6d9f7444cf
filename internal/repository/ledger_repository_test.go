package repository

import (
	"context"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/guru-admin-api/internal/models"
)

func TestLedgerRepositoryUpsertSnapshots(t *testing.T) {
	db, mock, cleanup := newMockDB(t)
	defer cleanup()
	repo := NewLedgerRepository(db)

	now := time.Now().UTC()
	mock.ExpectBegin()
	for i := 0; i < 2; i++ {
		mock.ExpectExec(`(?s)INSERT INTO ledger_snapshots .* ON CONFLICT \(student_id, semester_id\)`).
			WillReturnResult(sqlmock.NewResult(1, 1))
	}
	mock.ExpectCommit()

	snapshots := []models.LedgerSnapshot{
		{StudentID: "s-1", ClassID: "c-1", SemesterID: "sem-1", FinalScore: 82.5, GradeLetter: "B", GeneratedAt: now},
		{StudentID: "s-2", ClassID: "c-1", SemesterID: "sem-1", FinalScore: 90, GradeLetter: "A", GeneratedAt: now},
	}
	require.NoError(t, repo.UpsertSnapshots(context.Background(), snapshots))
	assert.NotEmpty(t, snapshots[0].ID)
	assert.NotEqual(t, snapshots[0].ID, snapshots[1].ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestLedgerRepositoryUpsertNothing(t *testing.T) {
	db, mock, cleanup := newMockDB(t)
	defer cleanup()

	require.NoError(t, NewLedgerRepository(db).UpsertSnapshots(context.Background(), nil))
	assert.NoError(t, mock.ExpectationsWereMet())
}
