package models

import "time"

// Semester status values.
const (
	SemesterStatusActive   = "Aktif"
	SemesterStatusInactive = "Nonaktif"
)

// Semester terms.
const (
	TermOdd  = "Ganjil"
	TermEven = "Genap"
)

// Defaults applied when a semester is created without thresholds.
const (
	DefaultMinAttendance = 75
	DefaultPassingGrade  = 75
)

// Semester is an academic term. At most one semester is active at a time.
type Semester struct {
	ID            string    `db:"id" json:"id"`
	AcademicYear  string    `db:"academic_year" json:"academic_year"`
	Term          string    `db:"term" json:"term"`
	StartDate     time.Time `db:"start_date" json:"start_date"`
	EndDate       time.Time `db:"end_date" json:"end_date"`
	Status        string    `db:"status" json:"status"`
	MinAttendance int       `db:"min_attendance" json:"min_attendance"`
	PassingGrade  int       `db:"passing_grade" json:"passing_grade"`
	CreatedAt     time.Time `db:"created_at" json:"created_at"`
	UpdatedAt     time.Time `db:"updated_at" json:"updated_at"`
}

// IsActive reports whether the semester is the active one.
func (s Semester) IsActive() bool {
	return s.Status == SemesterStatusActive
}

// Label renders "2024/2025 Ganjil".
func (s Semester) Label() string {
	return s.AcademicYear + " " + s.Term
}

// CreateSemesterRequest is the payload for creating a semester.
type CreateSemesterRequest struct {
	AcademicYear  string `json:"academic_year" validate:"required,max=20"`
	Term          string `json:"term" validate:"required,oneof=Ganjil Genap"`
	StartDate     string `json:"start_date" validate:"required,datetime=2006-01-02"`
	EndDate       string `json:"end_date" validate:"required,datetime=2006-01-02"`
	Status        string `json:"status" validate:"omitempty,oneof=Aktif Nonaktif"`
	MinAttendance *int   `json:"min_attendance" validate:"omitempty,min=0,max=100"`
	PassingGrade  *int   `json:"passing_grade" validate:"omitempty,min=0,max=100"`
}

// UpdateSemesterRequest edits a semester. Nil fields are left unchanged.
type UpdateSemesterRequest struct {
	AcademicYear  *string `json:"academic_year" validate:"omitempty,min=1,max=20"`
	Term          *string `json:"term" validate:"omitempty,oneof=Ganjil Genap"`
	StartDate     *string `json:"start_date" validate:"omitempty,datetime=2006-01-02"`
	EndDate       *string `json:"end_date" validate:"omitempty,datetime=2006-01-02"`
	Status        *string `json:"status" validate:"omitempty,oneof=Aktif Nonaktif"`
	MinAttendance *int    `json:"min_attendance" validate:"omitempty,min=0,max=100"`
	PassingGrade  *int    `json:"passing_grade" validate:"omitempty,min=0,max=100"`
}
