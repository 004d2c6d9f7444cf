package models

import "time"

// Material defaults.
const (
	DefaultMaterialDifficulty = "Sedang"
	DefaultMaterialHours      = 2
)

// Material is a teaching material (materi) prepared for a class.
type Material struct {
	ID              string    `db:"id" json:"id"`
	Title           string    `db:"title" json:"title"`
	ClassID         *string   `db:"class_id" json:"class_id"`
	ClassName       string    `db:"class_name" json:"class_name"`
	Category        string    `db:"category" json:"category"`
	Description     string    `db:"description" json:"description"`
	BasicCompetency string    `db:"basic_competency" json:"basic_competency"`
	Difficulty      string    `db:"difficulty" json:"difficulty"`
	EstimatedHours  int       `db:"estimated_hours" json:"estimated_hours"`
	CreatedAt       time.Time `db:"created_at" json:"created_at"`
	UpdatedAt       time.Time `db:"updated_at" json:"updated_at"`
}

// MaterialFilter narrows a material listing.
type MaterialFilter struct {
	ClassID  string
	Category string
	Search   string
	Page     int
	PageSize int
}

// CreateMaterialRequest is the payload for creating a material.
type CreateMaterialRequest struct {
	Title           string `json:"title" validate:"required,max=200"`
	ClassID         string `json:"class_id" validate:"required"`
	Category        string `json:"category" validate:"omitempty,max=100"`
	Description     string `json:"description"`
	BasicCompetency string `json:"basic_competency"`
	Difficulty      string `json:"difficulty" validate:"omitempty,oneof=Mudah Sedang Sulit"`
	EstimatedHours  *int   `json:"estimated_hours" validate:"omitempty,min=1,max=40"`
}

// UpdateMaterialRequest edits a material. Nil fields are left unchanged.
type UpdateMaterialRequest struct {
	Title           *string `json:"title" validate:"omitempty,min=1,max=200"`
	ClassID         *string `json:"class_id" validate:"omitempty,min=1"`
	Category        *string `json:"category" validate:"omitempty,max=100"`
	Description     *string `json:"description"`
	BasicCompetency *string `json:"basic_competency"`
	Difficulty      *string `json:"difficulty" validate:"omitempty,oneof=Mudah Sedang Sulit"`
	EstimatedHours  *int    `json:"estimated_hours" validate:"omitempty,min=1,max=40"`
}
