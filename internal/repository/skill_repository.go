package repository

import (
	"skill_assess_backend/internal/model"

	"gorm.io/gorm"
)

type SkillRepository struct {
	DB *gorm.DB
}

func NewSkillRepository(db *gorm.DB) *SkillRepository {
	return &SkillRepository{DB: db}
}

func (r *SkillRepository) WithTx(tx *gorm.DB) *SkillRepository {
	return &SkillRepository{DB: tx}
}

func (r *SkillRepository) FindActiveByID(id string) (*model.Skill, error) {
	var s model.Skill
	if err := r.DB.Where("id = ? AND is_active = ?", id, true).First(&s).Error; err != nil {
		return nil, err
	}
	return &s, nil
}

func (r *SkillRepository) ListActive() ([]model.Skill, error) {
	var skills []model.Skill
	err := r.DB.Where("is_active = ?", true).Order("name").Find(&skills).Error
	return skills, err
}

func (r *SkillRepository) Create(skill *model.Skill) error {
	return r.DB.Create(skill).Error
}
