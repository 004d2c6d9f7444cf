package repository

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/guru-admin-api/internal/models"
)

// LedgerRepository stores archived ledger snapshots.
type LedgerRepository struct {
	db *sqlx.DB
}

// NewLedgerRepository constructs the repository.
func NewLedgerRepository(db *sqlx.DB) *LedgerRepository {
	return &LedgerRepository{db: db}
}

// UpsertSnapshots writes one snapshot per student, replacing an earlier one for the same semester.
func (r *LedgerRepository) UpsertSnapshots(ctx context.Context, snapshots []models.LedgerSnapshot) (err error) {
	if len(snapshots) == 0 {
		return nil
	}
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin ledger snapshot tx: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	const query = `INSERT INTO ledger_snapshots (id, student_id, class_id, semester_id, attendance_percentage, formative_score,
    mid_term_score, final_term_score, final_score, grade_letter, generated_at)
VALUES (:id, :student_id, :class_id, :semester_id, :attendance_percentage, :formative_score,
    :mid_term_score, :final_term_score, :final_score, :grade_letter, :generated_at)
ON CONFLICT (student_id, semester_id)
DO UPDATE SET class_id = EXCLUDED.class_id, attendance_percentage = EXCLUDED.attendance_percentage,
    formative_score = EXCLUDED.formative_score, mid_term_score = EXCLUDED.mid_term_score,
    final_term_score = EXCLUDED.final_term_score, final_score = EXCLUDED.final_score,
    grade_letter = EXCLUDED.grade_letter, generated_at = EXCLUDED.generated_at`
	for i := range snapshots {
		if snapshots[i].ID == "" {
			snapshots[i].ID = uuid.NewString()
		}
		if _, err = tx.NamedExecContext(ctx, query, &snapshots[i]); err != nil {
			return fmt.Errorf("upsert ledger snapshot for student %s: %w", snapshots[i].StudentID, err)
		}
	}
	if err = tx.Commit(); err != nil {
		return fmt.Errorf("commit ledger snapshot tx: %w", err)
	}
	return nil
}

// ListSnapshots returns archived rows for a class and semester.
func (r *LedgerRepository) ListSnapshots(ctx context.Context, classID, semesterID string) ([]models.LedgerSnapshot, error) {
	const query = `SELECT id, student_id, class_id, semester_id, attendance_percentage, formative_score, mid_term_score,
    final_term_score, final_score, grade_letter, generated_at
FROM ledger_snapshots WHERE class_id = $1 AND semester_id = $2 ORDER BY final_score DESC`
	snapshots := make([]models.LedgerSnapshot, 0)
	if err := r.db.SelectContext(ctx, &snapshots, query, classID, semesterID); err != nil {
		return nil, fmt.Errorf("list ledger snapshots: %w", err)
	}
	return snapshots, nil
}
