package service

import "github.com/noah-isme/guru-admin-api/internal/models"

// Letter grade lower bounds, inclusive.
const (
	gradeBoundA = 85
	gradeBoundB = 75
	gradeBoundC = 65
)

// ComputeFinalScore weights the formative, mid-term and final-term scores by their percentages.
// The attendance weight is not applied, so a non-zero attendance weight caps the result below 100.
// Inputs are not clamped and the result is not rounded.
func ComputeFinalScore(scores models.ScoreSet, w models.WeightConfig) float64 {
	return scores.Formative*float64(w.Formative)/100 +
		scores.MidTerm*float64(w.MidTerm)/100 +
		scores.FinalTerm*float64(w.FinalTerm)/100
}

// GradeLetter maps a final score to A (>= 85), B (>= 75), C (>= 65) or D.
func GradeLetter(finalScore float64) string {
	switch {
	case finalScore >= gradeBoundA:
		return "A"
	case finalScore >= gradeBoundB:
		return "B"
	case finalScore >= gradeBoundC:
		return "C"
	default:
		return "D"
	}
}
