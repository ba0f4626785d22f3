package model

import (
	"time"

	"gorm.io/gorm"
)

// AnswerRecord is one row of the answer ledger. Rows are insert-only; the
// (attempt_id, question_id) pair is unique.
//
// swagger:model AnswerRecord
type AnswerRecord struct {
	ID             string    `gorm:"primaryKey;type:varchar(36)" json:"id"`
	AttemptID      string    `gorm:"type:varchar(36);not null;uniqueIndex:uq_answer_attempt_question,priority:1" json:"attemptId"`
	QuestionID     string    `gorm:"type:varchar(36);not null;uniqueIndex:uq_answer_attempt_question,priority:2;index" json:"questionId"`
	SelectedAnswer string    `gorm:"size:1;not null" json:"selectedAnswer"`
	IsCorrect      bool      `gorm:"not null" json:"isCorrect"`
	TimeTaken      int       `gorm:"default:0" json:"timeTaken"`
	CreatedAt      time.Time `gorm:"index" json:"createdAt"`
}

func (AnswerRecord) TableName() string {
	return "answer_records"
}

func (r *AnswerRecord) BeforeCreate(tx *gorm.DB) error {
	if r.ID == "" {
		r.ID = GenerateUUID()
	}
	return nil
}
