package models

import "time"

// LedgerEntry is one student's row in the grade ledger.
type LedgerEntry struct {
	StudentID            string  `json:"student_id"`
	StudentName          string  `json:"student_name"`
	StudentIdentifier    string  `json:"student_identifier"`
	ClassName            string  `json:"class_name"`
	AttendancePercentage float64 `json:"attendance_percentage"`
	FormativeScore       float64 `json:"formative_score"`
	MidTermScore         float64 `json:"mid_term_score"`
	FinalTermScore       float64 `json:"final_term_score"`
	FinalScore           float64 `json:"final_score"`
	GradeLetter          string  `json:"grade_letter"`
}

// LedgerSummary aggregates final scores. Average, max and min are nil for an empty roster.
type LedgerSummary struct {
	StudentCount      int      `json:"student_count"`
	AverageFinalScore *float64 `json:"average_final_score"`
	MaxFinalScore     *float64 `json:"max_final_score"`
	MinFinalScore     *float64 `json:"min_final_score"`
}

// LedgerReport is the computed ledger for a class and semester. Entries follow roster order.
type LedgerReport struct {
	ClassID       string        `json:"class_id"`
	ClassName     string        `json:"class_name"`
	SemesterID    string        `json:"semester_id"`
	SemesterLabel string        `json:"semester_label"`
	Weights       WeightConfig  `json:"weights"`
	Entries       []LedgerEntry `json:"entries"`
	Summary       LedgerSummary `json:"summary"`
	GeneratedAt   time.Time     `json:"generated_at"`
}

// LedgerSnapshot is an archived ledger row written by the generate operation.
type LedgerSnapshot struct {
	ID                   string    `db:"id" json:"id"`
	StudentID            string    `db:"student_id" json:"student_id"`
	ClassID              string    `db:"class_id" json:"class_id"`
	SemesterID           string    `db:"semester_id" json:"semester_id"`
	AttendancePercentage float64   `db:"attendance_percentage" json:"attendance_percentage"`
	FormativeScore       float64   `db:"formative_score" json:"formative_score"`
	MidTermScore         float64   `db:"mid_term_score" json:"mid_term_score"`
	FinalTermScore       float64   `db:"final_term_score" json:"final_term_score"`
	FinalScore           float64   `db:"final_score" json:"final_score"`
	GradeLetter          string    `db:"grade_letter" json:"grade_letter"`
	GeneratedAt          time.Time `db:"generated_at" json:"generated_at"`
}

// LedgerQuery identifies the ledger to build.
type LedgerQuery struct {
	ClassID    string `form:"classId" json:"class_id" binding:"required" validate:"required"`
	SemesterID string `form:"semesterId" json:"semester_id" binding:"required" validate:"required"`
}

// GenerateLedgerResult reports how many snapshot rows were written.
type GenerateLedgerResult struct {
	ClassID     string    `json:"class_id"`
	SemesterID  string    `json:"semester_id"`
	Generated   int       `json:"generated"`
	GeneratedAt time.Time `json:"generated_at"`
}
