package models

import "time"

// WeightTotal is the sum every persisted weight configuration must reach.
const WeightTotal = 100

// WeightConfig holds the grading-weight percentages.
type WeightConfig struct {
	Formative  int        `db:"formative" json:"formative"`
	MidTerm    int        `db:"mid_term" json:"mid_term"`
	FinalTerm  int        `db:"final_term" json:"final_term"`
	Attendance int        `db:"attendance" json:"attendance"`
	UpdatedAt  *time.Time `db:"updated_at" json:"updated_at,omitempty"`
}

// DefaultWeights returns the 25/25/30/20 configuration used before any weights are saved.
func DefaultWeights() WeightConfig {
	return WeightConfig{Formative: 25, MidTerm: 25, FinalTerm: 30, Attendance: 20}
}

// Total sums the four percentages.
func (w WeightConfig) Total() int {
	return w.Formative + w.MidTerm + w.FinalTerm + w.Attendance
}

// UpdateWeightsRequest replaces the weight configuration. All four fields are required.
type UpdateWeightsRequest struct {
	Formative  *int `json:"formative" validate:"required"`
	MidTerm    *int `json:"mid_term" validate:"required"`
	FinalTerm  *int `json:"final_term" validate:"required"`
	Attendance *int `json:"attendance" validate:"required"`
}
