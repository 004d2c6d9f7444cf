package models

import "time"

// AttendanceStatus represents the status for attendance records.
type AttendanceStatus string

const (
	AttendancePresent AttendanceStatus = "Hadir"
	AttendanceSick    AttendanceStatus = "Sakit"
	AttendanceExcused AttendanceStatus = "Izin"
	AttendanceAbsent  AttendanceStatus = "Alpa"
)

// AttendanceStatuses lists every status in display order.
var AttendanceStatuses = []AttendanceStatus{AttendancePresent, AttendanceSick, AttendanceExcused, AttendanceAbsent}

// Valid returns true when the status is a supported value.
func (s AttendanceStatus) Valid() bool {
	switch s {
	case AttendancePresent, AttendanceSick, AttendanceExcused, AttendanceAbsent:
		return true
	default:
		return false
	}
}

// Attendance is one student's daily attendance row.
type Attendance struct {
	ID         string           `db:"id" json:"id"`
	StudentID  string           `db:"student_id" json:"student_id"`
	ClassID    string           `db:"class_id" json:"class_id"`
	SemesterID string           `db:"semester_id" json:"semester_id"`
	Date       time.Time        `db:"date" json:"date"`
	Status     AttendanceStatus `db:"status" json:"status"`
	Note       string           `db:"note" json:"note"`
	CreatedAt  time.Time        `db:"created_at" json:"created_at"`
	UpdatedAt  time.Time        `db:"updated_at" json:"updated_at"`
}

// AttendanceRosterEntry is a roster line for a class on a date. Unrecorded students default to Hadir.
type AttendanceRosterEntry struct {
	StudentID   string           `db:"student_id" json:"student_id"`
	NISN        string           `db:"nisn" json:"nisn"`
	StudentName string           `db:"student_name" json:"student_name"`
	Status      AttendanceStatus `db:"status" json:"status"`
	Note        string           `db:"note" json:"note"`
	Recorded    bool             `db:"recorded" json:"recorded"`
}

// AttendanceRoster is the daily attendance sheet for a class.
type AttendanceRoster struct {
	ClassID    string                  `json:"class_id"`
	SemesterID string                  `json:"semester_id"`
	Date       string                  `json:"date"`
	Entries    []AttendanceRosterEntry `json:"entries"`
}

// AttendanceEntryInput is a single line of a bulk attendance save.
type AttendanceEntryInput struct {
	StudentID string           `json:"student_id" validate:"required"`
	Status    AttendanceStatus `json:"status" validate:"required,oneof=Hadir Sakit Izin Alpa"`
	Note      string           `json:"note" validate:"omitempty,max=255"`
}

// SaveAttendanceRequest upserts attendance for a class on a date.
type SaveAttendanceRequest struct {
	ClassID string                 `json:"class_id" validate:"required"`
	Date    string                 `json:"date" validate:"required,datetime=2006-01-02"`
	Entries []AttendanceEntryInput `json:"entries" validate:"required,min=1,dive"`
}

// AttendanceRecapFilter scopes the attendance recap.
type AttendanceRecapFilter struct {
	ClassID    string
	SemesterID string
	Status     AttendanceStatus
	From       *time.Time
	To         *time.Time
}

// AttendanceRecapRow is a recorded attendance with student and class names.
type AttendanceRecapRow struct {
	Date        time.Time        `db:"date" json:"date"`
	StudentID   string           `db:"student_id" json:"student_id"`
	NISN        string           `db:"nisn" json:"nisn"`
	StudentName string           `db:"student_name" json:"student_name"`
	ClassName   string           `db:"class_name" json:"class_name"`
	Status      AttendanceStatus `db:"status" json:"status"`
	Note        string           `db:"note" json:"note"`
}

// AttendanceRecap groups recap rows with per-status totals.
type AttendanceRecap struct {
	Rows    []AttendanceRecapRow     `json:"rows"`
	Summary map[AttendanceStatus]int `json:"summary"`
	Total   int                      `json:"total"`
}

// SaveResult reports how many rows a bulk save wrote.
type SaveResult struct {
	Saved int `json:"saved"`
}
