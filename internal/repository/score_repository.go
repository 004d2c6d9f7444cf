package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/guru-admin-api/internal/models"
)

// ScoreRepository persists formative and summative scores.
type ScoreRepository struct {
	db *sqlx.DB
}

// NewScoreRepository constructs the repository.
func NewScoreRepository(db *sqlx.DB) *ScoreRepository {
	return &ScoreRepository{db: db}
}

// FormativeRoster lists the class roster with each student's score for topic.
func (r *ScoreRepository) FormativeRoster(ctx context.Context, classID, semesterID, topic string) ([]models.ScoreRosterEntry, error) {
	const query = `SELECT s.id AS student_id, s.nisn, s.full_name AS student_name, f.score, COALESCE(f.note, '') AS note
FROM students s
LEFT JOIN formative_scores f ON f.student_id = s.id AND f.semester_id = $2 AND f.topic = $3
WHERE s.class_id = $1
ORDER BY s.full_name ASC, s.nisn ASC`
	entries := make([]models.ScoreRosterEntry, 0)
	if err := r.db.SelectContext(ctx, &entries, query, classID, semesterID, topic); err != nil {
		return nil, fmt.Errorf("formative roster: %w", err)
	}
	return entries, nil
}

// SummativeRoster lists the class roster with each student's UTS or UAS score.
func (r *ScoreRepository) SummativeRoster(ctx context.Context, classID, semesterID string, kind models.SummativeKind) ([]models.ScoreRosterEntry, error) {
	const query = `SELECT s.id AS student_id, s.nisn, s.full_name AS student_name, m.score, COALESCE(m.note, '') AS note
FROM students s
LEFT JOIN summative_scores m ON m.student_id = s.id AND m.semester_id = $2 AND m.kind = $3
WHERE s.class_id = $1
ORDER BY s.full_name ASC, s.nisn ASC`
	entries := make([]models.ScoreRosterEntry, 0)
	if err := r.db.SelectContext(ctx, &entries, query, classID, semesterID, kind); err != nil {
		return nil, fmt.Errorf("summative roster: %w", err)
	}
	return entries, nil
}

// Topics returns the distinct formative topics recorded for a class in a semester.
func (r *ScoreRepository) Topics(ctx context.Context, classID, semesterID string) ([]string, error) {
	const query = `SELECT topic FROM formative_scores WHERE class_id = $1 AND semester_id = $2
GROUP BY topic ORDER BY MIN(date) ASC, topic ASC`
	topics := make([]string, 0)
	if err := r.db.SelectContext(ctx, &topics, query, classID, semesterID); err != nil {
		return nil, fmt.Errorf("formative topics: %w", err)
	}
	return topics, nil
}

// SaveBatch upserts every entry of the batch in one transaction.
func (r *ScoreRepository) SaveBatch(ctx context.Context, batch models.ScoreBatch) (err error) {
	if len(batch.Entries) == 0 {
		return nil
	}
	var query string
	var discriminator interface{}
	switch batch.Category {
	case models.ScoreFormative:
		query = `INSERT INTO formative_scores (id, student_id, class_id, semester_id, topic, date, score, note, created_at, updated_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $9)
ON CONFLICT (student_id, semester_id, topic)
DO UPDATE SET score = EXCLUDED.score, note = EXCLUDED.note, date = EXCLUDED.date, class_id = EXCLUDED.class_id, updated_at = EXCLUDED.updated_at`
		discriminator = batch.Topic
	case models.ScoreMidTerm, models.ScoreFinalTerm:
		kind, _ := batch.Category.SummativeKind()
		query = `INSERT INTO summative_scores (id, student_id, class_id, semester_id, kind, date, score, note, created_at, updated_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $9)
ON CONFLICT (student_id, semester_id, kind)
DO UPDATE SET score = EXCLUDED.score, note = EXCLUDED.note, date = EXCLUDED.date, class_id = EXCLUDED.class_id, updated_at = EXCLUDED.updated_at`
		discriminator = kind
	default:
		return fmt.Errorf("save scores: unknown category %q", batch.Category)
	}

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin score tx: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	now := time.Now().UTC()
	for _, entry := range batch.Entries {
		if entry.Score == nil {
			continue
		}
		if _, err = tx.ExecContext(ctx, query, uuid.NewString(), entry.StudentID, batch.ClassID, batch.SemesterID,
			discriminator, batch.Date, *entry.Score, entry.Note, now); err != nil {
			return fmt.Errorf("save %s score for student %s: %w", batch.Category, entry.StudentID, err)
		}
	}
	if err = tx.Commit(); err != nil {
		return fmt.Errorf("commit score tx: %w", err)
	}
	return nil
}

// ScoresByCategory returns per-student scores for one category of a class in a semester. Formative is
// the average over all topics; mid-term and final-term are the UTS and UAS results.
func (r *ScoreRepository) ScoresByCategory(ctx context.Context, classID, semesterID string, category models.ScoreCategory) (map[string]float64, error) {
	var query string
	args := []interface{}{classID, semesterID}
	switch category {
	case models.ScoreFormative:
		query = `SELECT student_id, AVG(score) AS score FROM formative_scores
WHERE class_id = $1 AND semester_id = $2 GROUP BY student_id`
	case models.ScoreMidTerm, models.ScoreFinalTerm:
		kind, _ := category.SummativeKind()
		query = `SELECT student_id, score FROM summative_scores
WHERE class_id = $1 AND semester_id = $2 AND kind = $3`
		args = append(args, kind)
	default:
		return nil, fmt.Errorf("scores by category: unknown category %q", category)
	}

	var rows []struct {
		StudentID string  `db:"student_id"`
		Score     float64 `db:"score"`
	}
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("scores by category %s: %w", category, err)
	}
	scores := make(map[string]float64, len(rows))
	for _, row := range rows {
		scores[row.StudentID] = row.Score
	}
	return scores, nil
}

// AverageFormative returns the mean formative score of a semester, 0 when none are recorded.
func (r *ScoreRepository) AverageFormative(ctx context.Context, semesterID string) (float64, error) {
	var avg float64
	if err := r.db.GetContext(ctx, &avg, `SELECT COALESCE(AVG(score), 0) FROM formative_scores WHERE semester_id = $1`, semesterID); err != nil {
		return 0, fmt.Errorf("average formative: %w", err)
	}
	return avg, nil
}
