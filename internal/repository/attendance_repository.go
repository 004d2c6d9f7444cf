package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/guru-admin-api/internal/models"
)

// AttendanceRepository persists daily attendance.
type AttendanceRepository struct {
	db *sqlx.DB
}

// NewAttendanceRepository constructs the repository.
func NewAttendanceRepository(db *sqlx.DB) *AttendanceRepository {
	return &AttendanceRepository{db: db}
}

// Roster lists the class roster with any attendance recorded on date. Unrecorded students report Hadir.
func (r *AttendanceRepository) Roster(ctx context.Context, classID string, date time.Time) ([]models.AttendanceRosterEntry, error) {
	const query = `SELECT s.id AS student_id, s.nisn, s.full_name AS student_name,
        COALESCE(a.status, $3) AS status, COALESCE(a.note, '') AS note, a.id IS NOT NULL AS recorded
FROM students s
LEFT JOIN attendance a ON a.student_id = s.id AND a.date = $2
WHERE s.class_id = $1
ORDER BY s.full_name ASC, s.nisn ASC`
	entries := make([]models.AttendanceRosterEntry, 0)
	if err := r.db.SelectContext(ctx, &entries, query, classID, date, models.AttendancePresent); err != nil {
		return nil, fmt.Errorf("attendance roster: %w", err)
	}
	return entries, nil
}

// BulkUpsert writes attendance rows atomically, replacing any existing row for the same student and date.
func (r *AttendanceRepository) BulkUpsert(ctx context.Context, records []models.Attendance) (err error) {
	if len(records) == 0 {
		return nil
	}
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin attendance tx: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	const query = `INSERT INTO attendance (id, student_id, class_id, semester_id, date, status, note, created_at, updated_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
ON CONFLICT (student_id, date)
DO UPDATE SET status = EXCLUDED.status, note = EXCLUDED.note, class_id = EXCLUDED.class_id,
    semester_id = EXCLUDED.semester_id, updated_at = EXCLUDED.updated_at`
	now := time.Now().UTC()
	for i := range records {
		rec := &records[i]
		if rec.ID == "" {
			rec.ID = uuid.NewString()
		}
		if rec.CreatedAt.IsZero() {
			rec.CreatedAt = now
		}
		rec.UpdatedAt = now
		if _, err = tx.ExecContext(ctx, query, rec.ID, rec.StudentID, rec.ClassID, rec.SemesterID, rec.Date, rec.Status, rec.Note, rec.CreatedAt, rec.UpdatedAt); err != nil {
			return fmt.Errorf("upsert attendance for student %s: %w", rec.StudentID, err)
		}
	}
	if err = tx.Commit(); err != nil {
		return fmt.Errorf("commit attendance tx: %w", err)
	}
	return nil
}

// Recap returns recorded attendance matching the filter ordered by date then student name.
func (r *AttendanceRepository) Recap(ctx context.Context, filter models.AttendanceRecapFilter) ([]models.AttendanceRecapRow, error) {
	query := `SELECT a.date, s.id AS student_id, s.nisn, s.full_name AS student_name, c.name AS class_name, a.status, a.note
FROM attendance a
JOIN students s ON s.id = a.student_id
JOIN classes c ON c.id = a.class_id
WHERE 1=1`
	var args []interface{}
	if filter.SemesterID != "" {
		args = append(args, filter.SemesterID)
		query += fmt.Sprintf(" AND a.semester_id = $%d", len(args))
	}
	if filter.ClassID != "" {
		args = append(args, filter.ClassID)
		query += fmt.Sprintf(" AND a.class_id = $%d", len(args))
	}
	if filter.Status != "" {
		args = append(args, filter.Status)
		query += fmt.Sprintf(" AND a.status = $%d", len(args))
	}
	if filter.From != nil {
		args = append(args, *filter.From)
		query += fmt.Sprintf(" AND a.date >= $%d", len(args))
	}
	if filter.To != nil {
		args = append(args, *filter.To)
		query += fmt.Sprintf(" AND a.date <= $%d", len(args))
	}
	query += " ORDER BY a.date DESC, s.full_name ASC"

	rows := make([]models.AttendanceRecapRow, 0)
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("attendance recap: %w", err)
	}
	return rows, nil
}

// SummaryByClass returns each student's attendance percentage for the class in the semester:
// days marked Hadir divided by the distinct meeting dates recorded for the class, times 100.
// Students with no recorded presence are absent from the map; callers treat them as 0.
func (r *AttendanceRepository) SummaryByClass(ctx context.Context, classID, semesterID string) (map[string]float64, error) {
	var meetings int
	const meetingsQuery = `SELECT COUNT(DISTINCT date) FROM attendance WHERE class_id = $1 AND semester_id = $2`
	if err := r.db.GetContext(ctx, &meetings, meetingsQuery, classID, semesterID); err != nil {
		return nil, fmt.Errorf("count meetings: %w", err)
	}
	summary := make(map[string]float64)
	if meetings == 0 {
		return summary, nil
	}

	const presentQuery = `SELECT student_id, COUNT(*) AS present FROM attendance
WHERE class_id = $1 AND semester_id = $2 AND status = $3
GROUP BY student_id`
	var rows []struct {
		StudentID string `db:"student_id"`
		Present   int    `db:"present"`
	}
	if err := r.db.SelectContext(ctx, &rows, presentQuery, classID, semesterID, models.AttendancePresent); err != nil {
		return nil, fmt.Errorf("count presence: %w", err)
	}
	for _, row := range rows {
		summary[row.StudentID] = float64(row.Present) / float64(meetings) * 100
	}
	return summary, nil
}

// PresenceRate returns present and total record counts in [from, to) for a semester.
func (r *AttendanceRepository) PresenceRate(ctx context.Context, semesterID string, from, to time.Time) (present, total int, err error) {
	const query = `SELECT COUNT(*) FILTER (WHERE status = $1) AS present, COUNT(*) AS total
FROM attendance WHERE semester_id = $2 AND date >= $3 AND date < $4`
	var row struct {
		Present int `db:"present"`
		Total   int `db:"total"`
	}
	if err := r.db.GetContext(ctx, &row, query, models.AttendancePresent, semesterID, from, to); err != nil {
		return 0, 0, fmt.Errorf("attendance presence rate: %w", err)
	}
	return row.Present, row.Total, nil
}
