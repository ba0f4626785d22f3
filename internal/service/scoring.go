package service

import (
	"math"

	"skill_assess_backend/internal/model"
)

// Score counts the correct records and converts them to a percentage of
// totalQuestions rounded to two decimals. A zero total scores 0.
func Score(records []model.AnswerRecord, totalQuestions int) (int, float64) {
	correct := 0
	for _, r := range records {
		if r.IsCorrect {
			correct++
		}
	}
	return correct, Percentage(correct, totalQuestions)
}

func Percentage(correct, total int) float64 {
	if total <= 0 {
		return 0
	}
	return math.Round(float64(correct)/float64(total)*100*100) / 100
}

// IsCorrectAnswer compares option labels case-insensitively. An invalid
// selection is never correct.
func IsCorrectAnswer(selected, correct string) bool {
	s := model.NormalizeLabel(selected)
	return s != "" && s == model.NormalizeLabel(correct)
}
