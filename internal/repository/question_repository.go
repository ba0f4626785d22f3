package repository

import (
	"skill_assess_backend/internal/model"

	"gorm.io/gorm"
)

type QuestionRepository struct {
	DB *gorm.DB
}

func NewQuestionRepository(db *gorm.DB) *QuestionRepository {
	return &QuestionRepository{DB: db}
}

func (r *QuestionRepository) WithTx(tx *gorm.DB) *QuestionRepository {
	return &QuestionRepository{DB: tx}
}

func (r *QuestionRepository) CountActive(skillID string) (int64, error) {
	var count int64
	err := r.DB.Model(&model.Question{}).
		Where("skill_id = ? AND is_active = ?", skillID, true).
		Count(&count).Error
	return count, err
}

func (r *QuestionRepository) ListActive(skillID string) ([]model.Question, error) {
	var questions []model.Question
	err := r.DB.Where("skill_id = ? AND is_active = ?", skillID, true).
		Order("id").
		Find(&questions).Error
	return questions, err
}

func (r *QuestionRepository) FindByID(id string) (*model.Question, error) {
	var q model.Question
	if err := r.DB.Where("id = ?", id).First(&q).Error; err != nil {
		return nil, err
	}
	return &q, nil
}

func (r *QuestionRepository) Create(question *model.Question) error {
	return r.DB.Create(question).Error
}
