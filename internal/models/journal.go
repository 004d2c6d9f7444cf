package models

import "time"

// JournalStatus is the review state of a teaching journal.
type JournalStatus string

const (
	JournalDraft JournalStatus = "Draft"
	JournalFinal JournalStatus = "Final"
)

// DefaultJournalHours is the lesson duration used when none is given.
const DefaultJournalHours = 2

// Journal is a teaching journal (jurnal mengajar) entry for one lesson.
type Journal struct {
	ID            string        `db:"id" json:"id"`
	Date          time.Time     `db:"date" json:"date"`
	ClassID       *string       `db:"class_id" json:"class_id"`
	ClassName     string        `db:"class_name" json:"class_name"`
	Subject       string        `db:"subject" json:"subject"`
	MaterialID    *string       `db:"material_id" json:"material_id"`
	MaterialTitle string        `db:"material_title" json:"material_title"`
	Topic         string        `db:"topic" json:"topic"`
	LessonPeriod  string        `db:"lesson_period" json:"lesson_period"`
	Duration      int           `db:"duration" json:"duration"`
	Objectives    string        `db:"objectives" json:"objectives"`
	Activities    string        `db:"activities" json:"activities"`
	Media         string        `db:"media" json:"media"`
	Assessment    string        `db:"assessment" json:"assessment"`
	Understanding string        `db:"understanding" json:"understanding"`
	Notes         string        `db:"notes" json:"notes"`
	FollowUp      string        `db:"follow_up" json:"follow_up"`
	Status        JournalStatus `db:"status" json:"status"`
	Signed        bool          `db:"signed" json:"signed"`
	SemesterID    *string       `db:"semester_id" json:"semester_id"`
	CreatedAt     time.Time     `db:"created_at" json:"created_at"`
	UpdatedAt     time.Time     `db:"updated_at" json:"updated_at"`
}

// JournalFilter narrows a journal listing. Month and Year apply together.
type JournalFilter struct {
	ClassID  string
	Month    int
	Year     int
	Page     int
	PageSize int
}

// CreateJournalRequest is the payload for recording a lesson.
type CreateJournalRequest struct {
	Date          string        `json:"date" validate:"required,datetime=2006-01-02"`
	ClassID       string        `json:"class_id" validate:"required"`
	Subject       string        `json:"subject" validate:"required,max=100"`
	MaterialID    string        `json:"material_id"`
	Topic         string        `json:"topic" validate:"omitempty,max=200"`
	LessonPeriod  string        `json:"lesson_period" validate:"omitempty,max=20"`
	Duration      *int          `json:"duration" validate:"omitempty,min=1,max=12"`
	Objectives    string        `json:"objectives"`
	Activities    string        `json:"activities"`
	Media         string        `json:"media"`
	Assessment    string        `json:"assessment"`
	Understanding string        `json:"understanding"`
	Notes         string        `json:"notes"`
	FollowUp      string        `json:"follow_up"`
	Status        JournalStatus `json:"status" validate:"omitempty,oneof=Draft Final"`
	Signed        bool          `json:"signed"`
}

// UpdateJournalRequest edits a journal. Nil fields are left unchanged.
type UpdateJournalRequest struct {
	Date          *string        `json:"date" validate:"omitempty,datetime=2006-01-02"`
	ClassID       *string        `json:"class_id" validate:"omitempty,min=1"`
	Subject       *string        `json:"subject" validate:"omitempty,min=1,max=100"`
	MaterialID    *string        `json:"material_id"`
	Topic         *string        `json:"topic" validate:"omitempty,max=200"`
	LessonPeriod  *string        `json:"lesson_period" validate:"omitempty,max=20"`
	Duration      *int           `json:"duration" validate:"omitempty,min=1,max=12"`
	Objectives    *string        `json:"objectives"`
	Activities    *string        `json:"activities"`
	Media         *string        `json:"media"`
	Assessment    *string        `json:"assessment"`
	Understanding *string        `json:"understanding"`
	Notes         *string        `json:"notes"`
	FollowUp      *string        `json:"follow_up"`
	Status        *JournalStatus `json:"status" validate:"omitempty,oneof=Draft Final"`
	Signed        *bool          `json:"signed"`
}
