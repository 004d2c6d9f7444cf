package service

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/noah-isme/guru-admin-api/internal/models"
)

func TestComputeFinalScore(t *testing.T) {
	score := ComputeFinalScore(models.ScoreSet{Formative: 80, MidTerm: 70, FinalTerm: 90}, models.WeightConfig{Formative: 25, MidTerm: 25, FinalTerm: 50, Attendance: 0})
	assert.Equal(t, 82.5, score)
}

func TestComputeFinalScoreIgnoresAttendanceWeight(t *testing.T) {
	perfect := models.ScoreSet{Formative: 100, MidTerm: 100, FinalTerm: 100}
	assert.Equal(t, 80.0, ComputeFinalScore(perfect, models.DefaultWeights()))
}

func TestComputeFinalScoreMissingScoresCountAsZero(t *testing.T) {
	assert.Equal(t, 0.0, ComputeFinalScore(models.ScoreSet{}, models.DefaultWeights()))
	assert.Equal(t, 27.0, ComputeFinalScore(models.ScoreSet{FinalTerm: 90}, models.DefaultWeights()))
}

func TestComputeFinalScoreDoesNotClamp(t *testing.T) {
	assert.Equal(t, 150.0, ComputeFinalScore(models.ScoreSet{Formative: 150, MidTerm: 150, FinalTerm: 150}, models.WeightConfig{Formative: 50, MidTerm: 25, FinalTerm: 25}))
	assert.Equal(t, -10.0, ComputeFinalScore(models.ScoreSet{Formative: -40}, models.WeightConfig{Formative: 25, Attendance: 75}))
}

func TestGradeLetter(t *testing.T) {
	cases := []struct {
		score  float64
		letter string
	}{
		{100, "A"},
		{85, "A"},
		{84.999, "B"},
		{82.5, "B"},
		{75, "B"},
		{74.99, "C"},
		{65, "C"},
		{64.9, "D"},
		{0, "D"},
		{-5, "D"},
		{130, "A"},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.letter, GradeLetter(tc.score), "score %v", tc.score)
	}
}
