package repository

import (
	"time"

	"skill_assess_backend/internal/model"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// AnswerRepository is the answer ledger. It only ever inserts.
type AnswerRepository struct {
	DB *gorm.DB
}

func NewAnswerRepository(db *gorm.DB) *AnswerRepository {
	return &AnswerRepository{DB: db}
}

func (r *AnswerRepository) WithTx(tx *gorm.DB) *AnswerRepository {
	return &AnswerRepository{DB: tx}
}

// Insert adds record unless the (attempt, question) pair already exists.
// The uniqueness check and the write are one statement; inserted is false
// when the row was already there.
func (r *AnswerRepository) Insert(record *model.AnswerRecord) (inserted bool, err error) {
	result := r.DB.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "attempt_id"}, {Name: "question_id"}},
		DoNothing: true,
	}).Create(record)
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected == 1, nil
}

func (r *AnswerRepository) ListByAttempt(attemptID string) ([]model.AnswerRecord, error) {
	var records []model.AnswerRecord
	err := r.DB.Where("attempt_id = ?", attemptID).
		Order("created_at ASC, id ASC").
		Find(&records).Error
	return records, err
}

// AnswerDetail is an answer record joined with the question it answers.
type AnswerDetail struct {
	ID             string    `json:"id"`
	QuestionID     string    `json:"questionId"`
	QuestionText   string    `json:"questionText"`
	OptionA        string    `json:"optionA"`
	OptionB        string    `json:"optionB"`
	OptionC        string    `json:"optionC"`
	OptionD        string    `json:"optionD"`
	Difficulty     string    `json:"difficulty"`
	Points         int       `json:"points"`
	SelectedAnswer string    `json:"selectedAnswer"`
	CorrectAnswer  string    `json:"correctAnswer"`
	IsCorrect      bool      `json:"isCorrect"`
	TimeTaken      int       `json:"timeTaken"`
	CreatedAt      time.Time `json:"createdAt"`
}

// ListDetailByAttempt returns the review rows for an attempt. Soft-deleted
// questions are still joined so old attempts stay reviewable.
func (r *AnswerRepository) ListDetailByAttempt(attemptID string) ([]AnswerDetail, error) {
	var details []AnswerDetail
	err := r.DB.Model(&model.AnswerRecord{}).
		Select("answer_records.id, answer_records.question_id, questions.text AS question_text, " +
			"questions.option_a, questions.option_b, questions.option_c, questions.option_d, " +
			"questions.difficulty, questions.points, questions.correct_answer, " +
			"answer_records.selected_answer, answer_records.is_correct, answer_records.time_taken, answer_records.created_at").
		Joins("JOIN questions ON questions.id = answer_records.question_id").
		Where("answer_records.attempt_id = ?", attemptID).
		Order("answer_records.created_at ASC, answer_records.id ASC").
		Scan(&details).Error
	if err != nil {
		return nil, err
	}
	if details == nil {
		details = []AnswerDetail{}
	}
	return details, nil
}
