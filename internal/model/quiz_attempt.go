package model

import "time"

// swagger:model QuizAttempt
type QuizAttempt struct {
	UUIDBase
	OwnerID         uint       `gorm:"index;not null" json:"ownerId"`
	SkillID         string     `gorm:"type:varchar(36);index;not null" json:"skillId"`
	TotalQuestions  int        `gorm:"not null" json:"totalQuestions"`
	CorrectAnswers  int        `gorm:"default:0" json:"correctAnswers"`
	ScorePercentage float64    `gorm:"default:0" json:"scorePercentage"`
	TimeTaken       int        `gorm:"default:0" json:"timeTaken"`
	StartedAt       time.Time  `gorm:"not null" json:"startedAt"`
	CompletedAt     *time.Time `gorm:"index" json:"completedAt,omitempty"`
}

func (QuizAttempt) TableName() string {
	return "quiz_attempts"
}

func (a *QuizAttempt) IsCompleted() bool {
	return a.CompletedAt != nil
}
