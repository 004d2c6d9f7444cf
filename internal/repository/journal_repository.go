package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/guru-admin-api/internal/models"
)

const journalColumns = `j.id, j.date, j.class_id, j.class_name, j.subject, j.material_id, j.material_title, j.topic,
        j.lesson_period, j.duration, j.objectives, j.activities, j.media, j.assessment, j.understanding, j.notes,
        j.follow_up, j.status, j.signed, j.semester_id, j.created_at, j.updated_at`

// JournalRepository manages persistence for teaching journals.
type JournalRepository struct {
	db *sqlx.DB
}

// NewJournalRepository constructs a journal repository.
func NewJournalRepository(db *sqlx.DB) *JournalRepository {
	return &JournalRepository{db: db}
}

// List returns journals matching filter, latest lesson first.
func (r *JournalRepository) List(ctx context.Context, filter models.JournalFilter) ([]models.Journal, int, error) {
	base := "FROM journals j WHERE 1=1"
	var args []interface{}

	if filter.ClassID != "" {
		args = append(args, filter.ClassID)
		base += fmt.Sprintf(" AND j.class_id = $%d", len(args))
	}
	if filter.Month > 0 && filter.Year > 0 {
		args = append(args, filter.Month, filter.Year)
		base += fmt.Sprintf(" AND EXTRACT(MONTH FROM j.date) = $%d AND EXTRACT(YEAR FROM j.date) = $%d", len(args)-1, len(args))
	}

	limit, offset := pageBounds(filter.Page, filter.PageSize)
	query := fmt.Sprintf("SELECT %s %s ORDER BY j.date DESC, j.created_at DESC LIMIT %d OFFSET %d", journalColumns, base, limit, offset)
	journals := make([]models.Journal, 0)
	if err := r.db.SelectContext(ctx, &journals, query, args...); err != nil {
		return nil, 0, fmt.Errorf("list journals: %w", err)
	}

	var total int
	if err := r.db.GetContext(ctx, &total, "SELECT COUNT(*) "+base, args...); err != nil {
		return nil, 0, fmt.Errorf("count journals: %w", err)
	}
	return journals, total, nil
}

// FindByID returns a journal by ID.
func (r *JournalRepository) FindByID(ctx context.Context, id string) (*models.Journal, error) {
	query := fmt.Sprintf("SELECT %s FROM journals j WHERE j.id = $1", journalColumns)
	var journal models.Journal
	if err := r.db.GetContext(ctx, &journal, query, id); err != nil {
		return nil, err
	}
	return &journal, nil
}

// Create persists a journal.
func (r *JournalRepository) Create(ctx context.Context, journal *models.Journal) error {
	if journal.ID == "" {
		journal.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	journal.CreatedAt = now
	journal.UpdatedAt = now

	const query = `INSERT INTO journals (id, date, class_id, class_name, subject, material_id, material_title, topic, lesson_period,
duration, objectives, activities, media, assessment, understanding, notes, follow_up, status, signed, semester_id,
created_at, updated_at)
VALUES (:id, :date, :class_id, :class_name, :subject, :material_id, :material_title, :topic, :lesson_period,
:duration, :objectives, :activities, :media, :assessment, :understanding, :notes, :follow_up, :status, :signed, :semester_id,
:created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, journal); err != nil {
		return fmt.Errorf("create journal: %w", err)
	}
	return nil
}

// Update modifies a journal.
func (r *JournalRepository) Update(ctx context.Context, journal *models.Journal) error {
	journal.UpdatedAt = time.Now().UTC()
	const query = `UPDATE journals SET date = :date, class_id = :class_id, class_name = :class_name, subject = :subject,
material_id = :material_id, material_title = :material_title, topic = :topic, lesson_period = :lesson_period,
duration = :duration, objectives = :objectives, activities = :activities, media = :media, assessment = :assessment,
understanding = :understanding, notes = :notes, follow_up = :follow_up, status = :status, signed = :signed,
updated_at = :updated_at WHERE id = :id`
	if _, err := r.db.NamedExecContext(ctx, query, journal); err != nil {
		return fmt.Errorf("update journal: %w", err)
	}
	return nil
}

// Delete removes a journal.
func (r *JournalRepository) Delete(ctx context.Context, id string) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM journals WHERE id = $1`, id); err != nil {
		return fmt.Errorf("delete journal: %w", err)
	}
	return nil
}
