package models

import "time"

// DefaultClassCapacity is used when a class is created without a capacity.
const DefaultClassCapacity = 36

// Class represents a homeroom class (kelas).
type Class struct {
	ID              string    `db:"id" json:"id"`
	Name            string    `db:"name" json:"name"`
	Level           string    `db:"level" json:"level"`
	Major           string    `db:"major" json:"major"`
	HomeroomTeacher string    `db:"homeroom_teacher" json:"homeroom_teacher"`
	Capacity        int       `db:"capacity" json:"capacity"`
	StudentCount    int       `db:"student_count" json:"student_count"`
	CreatedAt       time.Time `db:"created_at" json:"created_at"`
	UpdatedAt       time.Time `db:"updated_at" json:"updated_at"`
}

// ClassFilter defines filter criteria for listing classes.
type ClassFilter struct {
	Level    string
	Search   string
	Page     int
	PageSize int
}

// CreateClassRequest is the payload for creating a class.
type CreateClassRequest struct {
	Name            string `json:"name" validate:"required,max=50"`
	Level           string `json:"level" validate:"omitempty,max=10"`
	Major           string `json:"major" validate:"omitempty,max=50"`
	HomeroomTeacher string `json:"homeroom_teacher" validate:"omitempty,max=120"`
	Capacity        *int   `json:"capacity" validate:"omitempty,min=1,max=100"`
}

// UpdateClassRequest edits a class. Nil fields are left unchanged.
type UpdateClassRequest struct {
	Name            *string `json:"name" validate:"omitempty,min=1,max=50"`
	Level           *string `json:"level" validate:"omitempty,max=10"`
	Major           *string `json:"major" validate:"omitempty,max=50"`
	HomeroomTeacher *string `json:"homeroom_teacher" validate:"omitempty,max=120"`
	Capacity        *int    `json:"capacity" validate:"omitempty,min=1,max=100"`
}
