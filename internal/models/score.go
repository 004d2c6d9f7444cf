package models

import "time"

// ScoreCategory identifies one of the three score inputs to the final grade.
type ScoreCategory string

const (
	ScoreFormative ScoreCategory = "FORMATIVE"
	ScoreMidTerm   ScoreCategory = "MID_TERM"
	ScoreFinalTerm ScoreCategory = "FINAL_TERM"
)

// SummativeKind is the exam kind stored for summative scores.
type SummativeKind string

const (
	SummativeMidTerm   SummativeKind = "UTS"
	SummativeFinalTerm SummativeKind = "UAS"
)

// SummativeKind maps mid/final-term categories to their exam kind.
func (c ScoreCategory) SummativeKind() (SummativeKind, bool) {
	switch c {
	case ScoreMidTerm:
		return SummativeMidTerm, true
	case ScoreFinalTerm:
		return SummativeFinalTerm, true
	default:
		return "", false
	}
}

// ScoreSet holds the three category scores for one student. Missing scores are 0.
type ScoreSet struct {
	Formative float64 `json:"formative"`
	MidTerm   float64 `json:"mid_term"`
	FinalTerm float64 `json:"final_term"`
}

// StudentScoreRecord joins a student's scores with their attendance percentage.
type StudentScoreRecord struct {
	StudentID            string   `json:"student_id"`
	Scores               ScoreSet `json:"scores"`
	AttendancePercentage float64  `json:"attendance_percentage"`
}

// FormativeScore is a single formative assessment result for a topic.
type FormativeScore struct {
	ID         string    `db:"id" json:"id"`
	StudentID  string    `db:"student_id" json:"student_id"`
	ClassID    string    `db:"class_id" json:"class_id"`
	SemesterID string    `db:"semester_id" json:"semester_id"`
	Topic      string    `db:"topic" json:"topic"`
	Date       time.Time `db:"date" json:"date"`
	Score      float64   `db:"score" json:"score"`
	Note       string    `db:"note" json:"note"`
	CreatedAt  time.Time `db:"created_at" json:"created_at"`
	UpdatedAt  time.Time `db:"updated_at" json:"updated_at"`
}

// SummativeScore is a mid-term (UTS) or final-term (UAS) exam result.
type SummativeScore struct {
	ID         string        `db:"id" json:"id"`
	StudentID  string        `db:"student_id" json:"student_id"`
	ClassID    string        `db:"class_id" json:"class_id"`
	SemesterID string        `db:"semester_id" json:"semester_id"`
	Kind       SummativeKind `db:"kind" json:"kind"`
	Date       time.Time     `db:"date" json:"date"`
	Score      float64       `db:"score" json:"score"`
	Note       string        `db:"note" json:"note"`
	CreatedAt  time.Time     `db:"created_at" json:"created_at"`
	UpdatedAt  time.Time     `db:"updated_at" json:"updated_at"`
}

// ScoreRosterEntry is a class roster line with the student's recorded score, if any.
type ScoreRosterEntry struct {
	StudentID   string   `db:"student_id" json:"student_id"`
	NISN        string   `db:"nisn" json:"nisn"`
	StudentName string   `db:"student_name" json:"student_name"`
	Score       *float64 `db:"score" json:"score"`
	Note        string   `db:"note" json:"note"`
}

// ScoreRoster is the score entry sheet for a class.
type ScoreRoster struct {
	ClassID    string             `json:"class_id"`
	SemesterID string             `json:"semester_id"`
	Category   ScoreCategory      `json:"category"`
	Topic      string             `json:"topic,omitempty"`
	Entries    []ScoreRosterEntry `json:"entries"`
}

// ScoreEntryInput is a single line of a bulk score save.
type ScoreEntryInput struct {
	StudentID string   `json:"student_id" validate:"required"`
	Score     *float64 `json:"score" validate:"required"`
	Note      string   `json:"note" validate:"omitempty,max=255"`
}

// SaveFormativeRequest stores formative scores for a class and topic.
type SaveFormativeRequest struct {
	ClassID string            `json:"class_id" validate:"required"`
	Topic   string            `json:"topic" validate:"required,max=120"`
	Date    string            `json:"date" validate:"required,datetime=2006-01-02"`
	Entries []ScoreEntryInput `json:"entries" validate:"required,min=1,dive"`
}

// SaveSummativeRequest stores UTS or UAS scores for a class.
type SaveSummativeRequest struct {
	ClassID string            `json:"class_id" validate:"required"`
	Kind    SummativeKind     `json:"kind" validate:"required,oneof=UTS UAS"`
	Date    string            `json:"date" validate:"required,datetime=2006-01-02"`
	Entries []ScoreEntryInput `json:"entries" validate:"required,min=1,dive"`
}

// ScoreBatch is the collaborator-level write for one category. All entries share class, semester,
// topic and date.
type ScoreBatch struct {
	ClassID    string
	SemesterID string
	Category   ScoreCategory
	Topic      string
	Date       time.Time
	Entries    []ScoreEntryInput
}

// UpdateSingleScoreRequest edits one student's score in one category. Topic is required for
// formative scores; SemesterID defaults to the active semester and Date to today.
type UpdateSingleScoreRequest struct {
	StudentID  string        `json:"student_id" validate:"required"`
	Category   ScoreCategory `json:"category" validate:"required,oneof=FORMATIVE MID_TERM FINAL_TERM"`
	Value      *float64      `json:"value" validate:"required"`
	Topic      string        `json:"topic" validate:"required_if=Category FORMATIVE,max=120"`
	Date       string        `json:"date" validate:"omitempty,datetime=2006-01-02"`
	SemesterID string        `json:"semester_id"`
}
