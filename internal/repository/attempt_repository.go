package repository

import (
	"time"

	"skill_assess_backend/internal/model"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type AttemptRepository struct {
	DB *gorm.DB
}

func NewAttemptRepository(db *gorm.DB) *AttemptRepository {
	return &AttemptRepository{DB: db}
}

// WithTx binds the repository to tx (or to a context-scoped session).
func (r *AttemptRepository) WithTx(tx *gorm.DB) *AttemptRepository {
	return &AttemptRepository{DB: tx}
}

func (r *AttemptRepository) Create(attempt *model.QuizAttempt) error {
	return r.DB.Create(attempt).Error
}

func (r *AttemptRepository) FindByID(id string) (*model.QuizAttempt, error) {
	var a model.QuizAttempt
	if err := r.DB.Where("id = ?", id).First(&a).Error; err != nil {
		return nil, err
	}
	return &a, nil
}

// LockForUpdate reads the attempt holding an exclusive row lock until the
// surrounding transaction ends. SQLite ignores the locking clause and relies
// on its single writer instead.
func (r *AttemptRepository) LockForUpdate(id string) (*model.QuizAttempt, error) {
	var a model.QuizAttempt
	err := r.DB.Clauses(clause.Locking{Strength: clause.LockingStrengthUpdate}).
		Where("id = ?", id).First(&a).Error
	if err != nil {
		return nil, err
	}
	return &a, nil
}

// LockForShare reads the attempt holding a shared row lock, so completion
// cannot commit while an answer is being recorded.
func (r *AttemptRepository) LockForShare(id string) (*model.QuizAttempt, error) {
	var a model.QuizAttempt
	err := r.DB.Clauses(clause.Locking{Strength: clause.LockingStrengthShare}).
		Where("id = ?", id).First(&a).Error
	if err != nil {
		return nil, err
	}
	return &a, nil
}

// CompletionResult holds the values frozen onto an attempt at completion.
type CompletionResult struct {
	CorrectAnswers  int
	ScorePercentage float64
	TimeTaken       int
	CompletedAt     time.Time
}

// MarkCompleted transitions an open attempt to completed. It reports false
// when no open attempt with that id existed.
func (r *AttemptRepository) MarkCompleted(id string, res CompletionResult) (bool, error) {
	result := r.DB.Model(&model.QuizAttempt{}).
		Where("id = ? AND completed_at IS NULL", id).
		Updates(map[string]interface{}{
			"correct_answers":  res.CorrectAnswers,
			"score_percentage": res.ScorePercentage,
			"time_taken":       res.TimeTaken,
			"completed_at":     res.CompletedAt,
		})
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected == 1, nil
}

type AttemptFilter struct {
	OwnerID uint
	SkillID string
	// Completed, when set, restricts the listing to completed (true) or
	// open (false) attempts.
	Completed *bool
	Page      int
	Limit     int
}

// AttemptSummary is the read-only projection used by history and admin views.
type AttemptSummary struct {
	ID              string     `json:"id"`
	OwnerID         uint       `json:"ownerId"`
	SkillID         string     `json:"skillId"`
	SkillName       string     `json:"skillName"`
	TotalQuestions  int        `json:"totalQuestions"`
	CorrectAnswers  int        `json:"correctAnswers"`
	ScorePercentage float64    `json:"scorePercentage"`
	TimeTaken       int        `json:"timeTaken"`
	StartedAt       time.Time  `json:"startedAt"`
	CompletedAt     *time.Time `json:"completedAt,omitempty"`
}

func (r *AttemptRepository) ListSummaries(filter AttemptFilter) ([]AttemptSummary, int64, error) {
	query := r.DB.Model(&model.QuizAttempt{})
	if filter.OwnerID != 0 {
		query = query.Where("quiz_attempts.owner_id = ?", filter.OwnerID)
	}
	if filter.SkillID != "" {
		query = query.Where("quiz_attempts.skill_id = ?", filter.SkillID)
	}
	if filter.Completed != nil {
		if *filter.Completed {
			query = query.Where("quiz_attempts.completed_at IS NOT NULL")
		} else {
			query = query.Where("quiz_attempts.completed_at IS NULL")
		}
	}

	query = query.Session(&gorm.Session{})

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var summaries []AttemptSummary
	offset := (filter.Page - 1) * filter.Limit
	err := query.
		Select("quiz_attempts.id, quiz_attempts.owner_id, quiz_attempts.skill_id, skills.name AS skill_name, " +
			"quiz_attempts.total_questions, quiz_attempts.correct_answers, quiz_attempts.score_percentage, " +
			"quiz_attempts.time_taken, quiz_attempts.started_at, quiz_attempts.completed_at").
		Joins("LEFT JOIN skills ON skills.id = quiz_attempts.skill_id").
		Order("quiz_attempts.started_at DESC, quiz_attempts.id DESC").
		Offset(offset).
		Limit(filter.Limit).
		Scan(&summaries).Error
	if err != nil {
		return nil, 0, err
	}
	if summaries == nil {
		summaries = []AttemptSummary{}
	}
	return summaries, total, nil
}
