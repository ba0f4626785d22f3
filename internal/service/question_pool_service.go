package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math/rand/v2"
	"time"

	"skill_assess_backend/internal/config"
	"skill_assess_backend/internal/model"
	"skill_assess_backend/internal/repository"
	"skill_assess_backend/internal/util"
	"skill_assess_backend/pkg/logger"

	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const poolCacheKeyPrefix = "quiz:pool:"

// PoolQuestion is a question as shown to a quiz taker; the correct answer is
// withheld.
type PoolQuestion struct {
	ID         string            `json:"id"`
	Text       string            `json:"text"`
	Options    map[string]string `json:"options"`
	Difficulty model.Difficulty  `json:"difficulty"`
	Points     int               `json:"points"`
}

// AnswerKey is what submission needs to grade one question.
type AnswerKey struct {
	QuestionID    string
	SkillID       string
	CorrectAnswer string
}

type QuestionPoolService struct {
	DB           *gorm.DB
	SkillRepo    *repository.SkillRepository
	QuestionRepo *repository.QuestionRepository
	Redis        *redis.Client
	Cfg          *config.Config
}

func NewQuestionPoolService(db *gorm.DB, skillRepo *repository.SkillRepository, questionRepo *repository.QuestionRepository, rdb *redis.Client, cfg *config.Config) *QuestionPoolService {
	return &QuestionPoolService{
		DB:           db,
		SkillRepo:    skillRepo,
		QuestionRepo: questionRepo,
		Redis:        rdb,
		Cfg:          cfg,
	}
}

func (s *QuestionPoolService) ListActiveSkills(ctx context.Context) ([]model.Skill, error) {
	skills, err := s.SkillRepo.WithTx(s.DB.WithContext(ctx)).ListActive()
	if err != nil {
		return nil, fmt.Errorf("list skills: %w", err)
	}
	return skills, nil
}

func (s *QuestionPoolService) GetActiveSkill(ctx context.Context, skillID string) (*model.Skill, error) {
	skill, err := s.SkillRepo.WithTx(s.DB.WithContext(ctx)).FindActiveByID(skillID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, util.ErrSkillNotFound
		}
		return nil, fmt.Errorf("load skill: %w", err)
	}
	return skill, nil
}

// GetActiveQuestionCount always reads the database; it backs the attempt's
// totalQuestions snapshot.
func (s *QuestionPoolService) GetActiveQuestionCount(ctx context.Context, skillID string) (int, error) {
	count, err := s.QuestionRepo.WithTx(s.DB.WithContext(ctx)).CountActive(skillID)
	if err != nil {
		return 0, fmt.Errorf("count questions: %w", err)
	}
	return int(count), nil
}

func (s *QuestionPoolService) GetCorrectAnswer(ctx context.Context, questionID string) (*AnswerKey, error) {
	q, err := s.QuestionRepo.WithTx(s.DB.WithContext(ctx)).FindByID(questionID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, util.ErrQuestionNotFound
		}
		return nil, fmt.Errorf("load question: %w", err)
	}
	return &AnswerKey{
		QuestionID:    q.ID,
		SkillID:       q.SkillID,
		CorrectAnswer: q.CorrectAnswer,
	}, nil
}

// SampleQuestions returns up to limit active questions of the skill in random
// order. limit <= 0 selects the configured default; larger values are capped.
func (s *QuestionPoolService) SampleQuestions(ctx context.Context, skillID string, limit int) ([]PoolQuestion, error) {
	if _, err := s.GetActiveSkill(ctx, skillID); err != nil {
		return nil, err
	}

	pool, err := s.loadPool(ctx, skillID)
	if err != nil {
		return nil, err
	}

	limit = s.clampLimit(limit)
	sample := make([]PoolQuestion, len(pool))
	copy(sample, pool)
	rand.Shuffle(len(sample), func(i, j int) {
		sample[i], sample[j] = sample[j], sample[i]
	})
	if len(sample) > limit {
		sample = sample[:limit]
	}
	return sample, nil
}

func (s *QuestionPoolService) clampLimit(limit int) int {
	if limit <= 0 {
		return s.Cfg.Quiz.DefaultSampleSize
	}
	if limit > s.Cfg.Quiz.MaxSampleSize {
		return s.Cfg.Quiz.MaxSampleSize
	}
	return limit
}

// loadPool reads the redacted pool through the cache when redis is configured.
// Cache failures fall back to the database.
func (s *QuestionPoolService) loadPool(ctx context.Context, skillID string) ([]PoolQuestion, error) {
	key := poolCacheKeyPrefix + skillID

	if s.Redis != nil {
		val, err := s.Redis.Get(ctx, key).Result()
		switch {
		case err == nil:
			var pool []PoolQuestion
			if err := json.Unmarshal([]byte(val), &pool); err == nil {
				return pool, nil
			}
			logger.Log.Warn("Discarding malformed question pool cache entry", zap.String("skillId", skillID))
		case err != redis.Nil:
			logger.Log.Warn("Question pool cache read failed", zap.String("skillId", skillID), zap.Error(err))
		}
	}

	questions, err := s.QuestionRepo.WithTx(s.DB.WithContext(ctx)).ListActive(skillID)
	if err != nil {
		return nil, fmt.Errorf("list questions: %w", err)
	}
	pool := make([]PoolQuestion, 0, len(questions))
	for i := range questions {
		pool = append(pool, redact(&questions[i]))
	}

	if s.Redis != nil {
		if data, err := json.Marshal(pool); err == nil {
			if err := s.Redis.Set(ctx, key, data, s.cacheTTL()).Err(); err != nil {
				logger.Log.Warn("Question pool cache write failed", zap.String("skillId", skillID), zap.Error(err))
			}
		}
	}
	return pool, nil
}

// InvalidatePool drops the cached pool of a skill.
func (s *QuestionPoolService) InvalidatePool(ctx context.Context, skillID string) error {
	if s.Redis == nil {
		return nil
	}
	return s.Redis.Del(ctx, poolCacheKeyPrefix+skillID).Err()
}

func (s *QuestionPoolService) cacheTTL() time.Duration {
	if s.Cfg.Quiz.PoolCacheTTL <= 0 {
		return 5 * time.Minute
	}
	return s.Cfg.Quiz.PoolCacheTTL
}

func redact(q *model.Question) PoolQuestion {
	return PoolQuestion{
		ID:         q.ID,
		Text:       q.Text,
		Options:    q.Options(),
		Difficulty: q.Difficulty,
		Points:     q.Points,
	}
}
