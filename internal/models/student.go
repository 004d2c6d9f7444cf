package models

import "time"

// Gender codes as recorded on student registration.
const (
	GenderMale   = "L"
	GenderFemale = "P"
)

// Student represents a learner registered in a class.
type Student struct {
	ID         string     `db:"id" json:"id"`
	NISN       string     `db:"nisn" json:"nisn"`
	FullName   string     `db:"full_name" json:"full_name"`
	ClassID    string     `db:"class_id" json:"class_id"`
	ClassName  string     `db:"class_name" json:"class_name"`
	Gender     string     `db:"gender" json:"gender"`
	BirthPlace string     `db:"birth_place" json:"birth_place"`
	BirthDate  *time.Time `db:"birth_date" json:"birth_date,omitempty"`
	Address    string     `db:"address" json:"address"`
	Phone      string     `db:"phone" json:"phone"`
	Email      string     `db:"email" json:"email"`
	CreatedAt  time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt  time.Time  `db:"updated_at" json:"updated_at"`
}

// StudentFilter encapsulates allowed search parameters for listing students.
type StudentFilter struct {
	Search   string
	ClassID  string
	Gender   string
	Page     int
	PageSize int
}

// CreateStudentRequest is the payload for registering a student.
type CreateStudentRequest struct {
	NISN       string `json:"nisn" validate:"required,max=20"`
	FullName   string `json:"full_name" validate:"required,max=120"`
	ClassID    string `json:"class_id" validate:"required"`
	Gender     string `json:"gender" validate:"omitempty,oneof=L P"`
	BirthPlace string `json:"birth_place" validate:"omitempty,max=80"`
	BirthDate  string `json:"birth_date" validate:"omitempty,datetime=2006-01-02"`
	Address    string `json:"address" validate:"omitempty,max=255"`
	Phone      string `json:"phone" validate:"omitempty,max=20"`
	Email      string `json:"email" validate:"omitempty,email"`
}

// UpdateStudentRequest edits a student. Nil fields are left unchanged.
type UpdateStudentRequest struct {
	NISN       *string `json:"nisn" validate:"omitempty,min=1,max=20"`
	FullName   *string `json:"full_name" validate:"omitempty,min=1,max=120"`
	ClassID    *string `json:"class_id" validate:"omitempty,min=1"`
	Gender     *string `json:"gender" validate:"omitempty,oneof=L P"`
	BirthPlace *string `json:"birth_place" validate:"omitempty,max=80"`
	BirthDate  *string `json:"birth_date" validate:"omitempty,datetime=2006-01-02"`
	Address    *string `json:"address" validate:"omitempty,max=255"`
	Phone      *string `json:"phone" validate:"omitempty,max=20"`
	Email      *string `json:"email" validate:"omitempty,email"`
}
