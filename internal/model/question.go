package model

import "strings"

type Difficulty string

const (
	DifficultyEasy   Difficulty = "easy"
	DifficultyMedium Difficulty = "medium"
	DifficultyHard   Difficulty = "hard"
)

// OptionLabels are the four answer labels every question carries.
var OptionLabels = []string{"A", "B", "C", "D"}

// swagger:model Question
type Question struct {
	UUIDBase
	SkillID       string     `gorm:"type:varchar(36);not null;index:idx_questions_skill_active,priority:1" json:"skillId"`
	Text          string     `gorm:"type:text;not null" json:"text"`
	OptionA       string     `gorm:"type:text;not null" json:"optionA"`
	OptionB       string     `gorm:"type:text;not null" json:"optionB"`
	OptionC       string     `gorm:"type:text;not null" json:"optionC"`
	OptionD       string     `gorm:"type:text;not null" json:"optionD"`
	CorrectAnswer string     `gorm:"size:1;not null" json:"-"`
	Difficulty    Difficulty `gorm:"size:10;default:'medium'" json:"difficulty"`
	Points        int        `gorm:"not null" json:"points"`
	IsActive      bool       `gorm:"not null;index:idx_questions_skill_active,priority:2" json:"isActive"`
}

func (Question) TableName() string {
	return "questions"
}

func (q *Question) Options() map[string]string {
	return map[string]string{
		"A": q.OptionA,
		"B": q.OptionB,
		"C": q.OptionC,
		"D": q.OptionD,
	}
}

// NormalizeLabel upper-cases and trims an option label; it returns "" for
// anything that is not one of OptionLabels.
func NormalizeLabel(s string) string {
	s = strings.ToUpper(strings.TrimSpace(s))
	for _, l := range OptionLabels {
		if s == l {
			return s
		}
	}
	return ""
}
