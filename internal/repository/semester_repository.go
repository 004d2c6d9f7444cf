package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/guru-admin-api/internal/models"
)

const semesterColumns = `id, academic_year, term, start_date, end_date, status, min_attendance, passing_grade, created_at, updated_at`

// SemesterRepository manages academic semesters.
type SemesterRepository struct {
	db *sqlx.DB
}

// NewSemesterRepository constructs a semester repository.
func NewSemesterRepository(db *sqlx.DB) *SemesterRepository {
	return &SemesterRepository{db: db}
}

// List returns every semester, newest first.
func (r *SemesterRepository) List(ctx context.Context) ([]models.Semester, error) {
	semesters := make([]models.Semester, 0)
	query := "SELECT " + semesterColumns + " FROM semesters ORDER BY start_date DESC, term DESC"
	if err := r.db.SelectContext(ctx, &semesters, query); err != nil {
		return nil, fmt.Errorf("list semesters: %w", err)
	}
	return semesters, nil
}

// FindByID returns a semester by ID.
func (r *SemesterRepository) FindByID(ctx context.Context, id string) (*models.Semester, error) {
	var semester models.Semester
	if err := r.db.GetContext(ctx, &semester, "SELECT "+semesterColumns+" FROM semesters WHERE id = $1", id); err != nil {
		return nil, err
	}
	return &semester, nil
}

// FindActive returns the active semester.
func (r *SemesterRepository) FindActive(ctx context.Context) (*models.Semester, error) {
	var semester models.Semester
	query := "SELECT " + semesterColumns + " FROM semesters WHERE status = $1 ORDER BY updated_at DESC LIMIT 1"
	if err := r.db.GetContext(ctx, &semester, query, models.SemesterStatusActive); err != nil {
		return nil, err
	}
	return &semester, nil
}

// Exists checks for a semester with the same academic year and term.
func (r *SemesterRepository) Exists(ctx context.Context, academicYear, term, excludeID string) (bool, error) {
	query := "SELECT 1 FROM semesters WHERE academic_year = $1 AND term = $2"
	args := []interface{}{academicYear, term}
	if excludeID != "" {
		query += " AND id <> $3"
		args = append(args, excludeID)
	}
	var exists int
	if err := r.db.GetContext(ctx, &exists, query+" LIMIT 1", args...); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return false, nil
		}
		return false, fmt.Errorf("check semester: %w", err)
	}
	return true, nil
}

// Create inserts a semester. An active semester deactivates every other one in the same transaction.
func (r *SemesterRepository) Create(ctx context.Context, semester *models.Semester) (err error) {
	if semester.ID == "" {
		semester.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if semester.CreatedAt.IsZero() {
		semester.CreatedAt = now
	}
	semester.UpdatedAt = now

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin create semester tx: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	if semester.IsActive() {
		if err = deactivateOthers(ctx, tx, semester.ID, now); err != nil {
			return err
		}
	}
	const query = `INSERT INTO semesters (id, academic_year, term, start_date, end_date, status, min_attendance, passing_grade, created_at, updated_at)
VALUES (:id, :academic_year, :term, :start_date, :end_date, :status, :min_attendance, :passing_grade, :created_at, :updated_at)`
	if _, err = tx.NamedExecContext(ctx, query, semester); err != nil {
		return fmt.Errorf("create semester: %w", err)
	}
	if err = tx.Commit(); err != nil {
		return fmt.Errorf("commit create semester tx: %w", err)
	}
	return nil
}

// Update modifies a semester, deactivating the others when it becomes active.
func (r *SemesterRepository) Update(ctx context.Context, semester *models.Semester) (err error) {
	now := time.Now().UTC()
	semester.UpdatedAt = now

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin update semester tx: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	if semester.IsActive() {
		if err = deactivateOthers(ctx, tx, semester.ID, now); err != nil {
			return err
		}
	}
	const query = `UPDATE semesters SET academic_year = :academic_year, term = :term, start_date = :start_date, end_date = :end_date,
status = :status, min_attendance = :min_attendance, passing_grade = :passing_grade, updated_at = :updated_at WHERE id = :id`
	if _, err = tx.NamedExecContext(ctx, query, semester); err != nil {
		return fmt.Errorf("update semester: %w", err)
	}
	if err = tx.Commit(); err != nil {
		return fmt.Errorf("commit update semester tx: %w", err)
	}
	return nil
}

// SetActive marks the provided semester as active and deactivates the rest.
func (r *SemesterRepository) SetActive(ctx context.Context, id string) (err error) {
	now := time.Now().UTC()
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin set active tx: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	if err = deactivateOthers(ctx, tx, id, now); err != nil {
		return err
	}
	if _, err = tx.ExecContext(ctx, `UPDATE semesters SET status = $1, updated_at = $2 WHERE id = $3`, models.SemesterStatusActive, now, id); err != nil {
		return fmt.Errorf("activate semester: %w", err)
	}
	if err = tx.Commit(); err != nil {
		return fmt.Errorf("commit set active tx: %w", err)
	}
	return nil
}

// Delete removes a semester permanently.
func (r *SemesterRepository) Delete(ctx context.Context, id string) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM semesters WHERE id = $1`, id); err != nil {
		return fmt.Errorf("delete semester: %w", err)
	}
	return nil
}

func deactivateOthers(ctx context.Context, tx *sqlx.Tx, keepID string, now time.Time) error {
	const query = `UPDATE semesters SET status = $1, updated_at = $2 WHERE status = $3 AND id <> $4`
	if _, err := tx.ExecContext(ctx, query, models.SemesterStatusInactive, now, models.SemesterStatusActive, keepID); err != nil {
		return fmt.Errorf("deactivate other semesters: %w", err)
	}
	return nil
}
