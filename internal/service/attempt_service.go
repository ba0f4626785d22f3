package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"skill_assess_backend/internal/config"
	"skill_assess_backend/internal/model"
	"skill_assess_backend/internal/repository"
	"skill_assess_backend/internal/util"
	"skill_assess_backend/pkg/logger"
	"skill_assess_backend/pkg/monitoring"
	"skill_assess_backend/pkg/tracing"

	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// QuestionPool is the read side of the question bank used by the lifecycle.
type QuestionPool interface {
	GetActiveSkill(ctx context.Context, skillID string) (*model.Skill, error)
	GetActiveQuestionCount(ctx context.Context, skillID string) (int, error)
	GetCorrectAnswer(ctx context.Context, questionID string) (*AnswerKey, error)
}

type SubmitAnswerRequest struct {
	QuestionID     string `json:"questionId" binding:"required"`
	SelectedAnswer string `json:"selectedAnswer" binding:"required"`
	TimeTaken      int    `json:"timeTaken" binding:"min=0"`
}

type SubmitAnswerResult struct {
	IsCorrect     bool   `json:"isCorrect"`
	CorrectAnswer string `json:"correctAnswer"`
}

type ScoreSummary struct {
	AttemptID       string    `json:"attemptId"`
	TotalQuestions  int       `json:"totalQuestions"`
	CorrectAnswers  int       `json:"correctAnswers"`
	ScorePercentage float64   `json:"scorePercentage"`
	TimeTaken       int       `json:"timeTaken"`
	CompletedAt     time.Time `json:"completedAt"`
}

type AttemptDetail struct {
	Attempt *model.QuizAttempt        `json:"attempt"`
	Answers []repository.AnswerDetail `json:"answers"`
}

// AttemptService drives an attempt from open to completed. Every mutation
// runs in one transaction that re-checks existence, ownership and state.
type AttemptService struct {
	DB          *gorm.DB
	AttemptRepo *repository.AttemptRepository
	AnswerRepo  *repository.AnswerRepository
	Pool        QuestionPool
	Cfg         *config.Config
	Now         func() time.Time
}

func NewAttemptService(db *gorm.DB, attemptRepo *repository.AttemptRepository, answerRepo *repository.AnswerRepository, pool QuestionPool, cfg *config.Config) *AttemptService {
	return &AttemptService{
		DB:          db,
		AttemptRepo: attemptRepo,
		AnswerRepo:  answerRepo,
		Pool:        pool,
		Cfg:         cfg,
		Now:         time.Now,
	}
}

func (s *AttemptService) CreateAttempt(ctx context.Context, ownerID uint, skillID string) (attempt *model.QuizAttempt, err error) {
	ctx, span := tracing.Start(ctx, "AttemptService.CreateAttempt")
	span.SetAttributes(attribute.String("skill.id", skillID), attribute.Int64("owner.id", int64(ownerID)))
	defer func() { tracing.End(span, err) }()
	defer func() { recordRejection(err) }()

	if _, err := s.Pool.GetActiveSkill(ctx, skillID); err != nil {
		return nil, err
	}

	count, err := s.Pool.GetActiveQuestionCount(ctx, skillID)
	if err != nil {
		return nil, err
	}
	if count == 0 {
		return nil, util.ErrSkillEmpty
	}

	attempt = &model.QuizAttempt{
		OwnerID:        ownerID,
		SkillID:        skillID,
		TotalQuestions: count,
		StartedAt:      s.Now(),
	}
	if err := s.AttemptRepo.WithTx(s.DB.WithContext(ctx)).Create(attempt); err != nil {
		return nil, fmt.Errorf("create attempt: %w", err)
	}

	monitoring.AttemptsCreated.Inc()
	logger.Log.Info("Quiz attempt created",
		zap.String("attemptId", attempt.ID),
		zap.Uint("ownerId", ownerID),
		zap.String("skillId", skillID),
		zap.Int("totalQuestions", count),
	)
	return attempt, nil
}

func (s *AttemptService) SubmitAnswer(ctx context.Context, attemptID string, callerID uint, req SubmitAnswerRequest) (result *SubmitAnswerResult, err error) {
	ctx, span := tracing.Start(ctx, "AttemptService.SubmitAnswer")
	span.SetAttributes(attribute.String("attempt.id", attemptID), attribute.String("question.id", req.QuestionID))
	defer func() { tracing.End(span, err) }()
	defer func() { recordRejection(err) }()

	selected := model.NormalizeLabel(req.SelectedAnswer)
	if selected == "" {
		return nil, util.ErrInvalidAnswerLabel
	}
	if req.TimeTaken < 0 {
		return nil, util.ErrInvalidTimeTaken
	}

	// Questions are read-only here, so the key is loaded up front. A missing
	// question is reported only after the attempt guards pass.
	key, keyErr := s.Pool.GetCorrectAnswer(ctx, req.QuestionID)
	if keyErr != nil && !errors.Is(keyErr, util.ErrQuestionNotFound) {
		return nil, keyErr
	}

	err = s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		attempt, err := s.AttemptRepo.WithTx(tx).LockForShare(attemptID)
		if err != nil {
			return attemptLookupError(err)
		}
		if attempt.OwnerID != callerID {
			return util.ErrAttemptNotFound
		}
		if attempt.IsCompleted() {
			return util.ErrAttemptAlreadyCompleted
		}
		if keyErr != nil {
			return keyErr
		}
		if key.SkillID != attempt.SkillID {
			return util.ErrQuestionNotFound
		}

		isCorrect := IsCorrectAnswer(selected, key.CorrectAnswer)
		inserted, err := s.AnswerRepo.WithTx(tx).Insert(&model.AnswerRecord{
			AttemptID:      attemptID,
			QuestionID:     key.QuestionID,
			SelectedAnswer: selected,
			IsCorrect:      isCorrect,
			TimeTaken:      req.TimeTaken,
			CreatedAt:      s.Now(),
		})
		if err != nil {
			return fmt.Errorf("insert answer: %w", err)
		}
		if !inserted {
			return util.ErrDuplicateAnswer
		}

		result = &SubmitAnswerResult{
			IsCorrect:     isCorrect,
			CorrectAnswer: key.CorrectAnswer,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	monitoring.AnswersSubmitted.WithLabelValues(monitoring.AnswerResult(result.IsCorrect)).Inc()
	logger.Log.Debug("Answer recorded",
		zap.String("attemptId", attemptID),
		zap.String("questionId", req.QuestionID),
		zap.Bool("isCorrect", result.IsCorrect),
	)
	return result, nil
}

func (s *AttemptService) CompleteAttempt(ctx context.Context, attemptID string, callerID uint, timeTaken int) (summary *ScoreSummary, err error) {
	ctx, span := tracing.Start(ctx, "AttemptService.CompleteAttempt")
	span.SetAttributes(attribute.String("attempt.id", attemptID))
	defer func() { tracing.End(span, err) }()
	defer func() { recordRejection(err) }()

	if timeTaken < 0 {
		return nil, util.ErrInvalidTimeTaken
	}

	err = s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		attempts := s.AttemptRepo.WithTx(tx)
		attempt, err := attempts.LockForUpdate(attemptID)
		if err != nil {
			return attemptLookupError(err)
		}
		if attempt.OwnerID != callerID {
			return util.ErrAttemptNotFound
		}
		if attempt.IsCompleted() {
			return util.ErrAttemptAlreadyCompleted
		}

		records, err := s.AnswerRepo.WithTx(tx).ListByAttempt(attemptID)
		if err != nil {
			return fmt.Errorf("list answers: %w", err)
		}
		correct, percentage := Score(records, attempt.TotalQuestions)

		now := s.Now()
		elapsed := timeTaken
		if !s.Cfg.Quiz.TrustClientTiming {
			elapsed = int(now.Sub(attempt.StartedAt).Seconds())
			if elapsed < 0 {
				elapsed = 0
			}
		}

		ok, err := attempts.MarkCompleted(attemptID, repository.CompletionResult{
			CorrectAnswers:  correct,
			ScorePercentage: percentage,
			TimeTaken:       elapsed,
			CompletedAt:     now,
		})
		if err != nil {
			return fmt.Errorf("complete attempt: %w", err)
		}
		if !ok {
			return util.ErrAttemptAlreadyCompleted
		}

		summary = &ScoreSummary{
			AttemptID:       attemptID,
			TotalQuestions:  attempt.TotalQuestions,
			CorrectAnswers:  correct,
			ScorePercentage: percentage,
			TimeTaken:       elapsed,
			CompletedAt:     now,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	monitoring.AttemptsCompleted.Inc()
	logger.Log.Info("Quiz attempt completed",
		zap.String("attemptId", attemptID),
		zap.Uint("ownerId", callerID),
		zap.Int("correctAnswers", summary.CorrectAnswers),
		zap.Int("totalQuestions", summary.TotalQuestions),
		zap.Float64("scorePercentage", summary.ScorePercentage),
	)
	return summary, nil
}

// GetAttemptDetail is visible to the owner and to admins.
func (s *AttemptService) GetAttemptDetail(ctx context.Context, attemptID string, callerID uint, callerRole model.UserRole) (detail *AttemptDetail, err error) {
	ctx, span := tracing.Start(ctx, "AttemptService.GetAttemptDetail")
	span.SetAttributes(attribute.String("attempt.id", attemptID))
	defer func() { tracing.End(span, err) }()
	defer func() { recordRejection(err) }()

	err = s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		attempt, err := s.AttemptRepo.WithTx(tx).FindByID(attemptID)
		if err != nil {
			return attemptLookupError(err)
		}
		if attempt.OwnerID != callerID && !callerRole.IsAdmin() {
			return util.ErrForbidden
		}

		answers, err := s.AnswerRepo.WithTx(tx).ListDetailByAttempt(attemptID)
		if err != nil {
			return fmt.Errorf("list answer details: %w", err)
		}
		detail = &AttemptDetail{Attempt: attempt, Answers: answers}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return detail, nil
}

// ListAttempts is the read-only summary projection for history and admin views.
func (s *AttemptService) ListAttempts(ctx context.Context, filter repository.AttemptFilter) ([]repository.AttemptSummary, int64, error) {
	ctx, span := tracing.Start(ctx, "AttemptService.ListAttempts")
	defer span.End()

	filter.Page, filter.Limit = util.NormalizePage(filter.Page, filter.Limit)
	summaries, total, err := s.AttemptRepo.WithTx(s.DB.WithContext(ctx)).ListSummaries(filter)
	if err != nil {
		return nil, 0, fmt.Errorf("list attempts: %w", err)
	}
	return summaries, total, nil
}

func attemptLookupError(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return util.ErrAttemptNotFound
	}
	return fmt.Errorf("load attempt: %w", err)
}

func recordRejection(err error) {
	if err == nil {
		return
	}
	reason := rejectionReason(err)
	if reason == "" {
		return
	}
	monitoring.LifecycleRejections.WithLabelValues(reason).Inc()
	logger.Log.Debug("Lifecycle operation rejected", zap.String("reason", reason), zap.Error(err))
}

func rejectionReason(err error) string {
	switch {
	case util.IsNotFound(err):
		return util.CodeNotFound
	case errors.Is(err, util.ErrForbidden):
		return util.CodeForbidden
	case errors.Is(err, util.ErrAttemptAlreadyCompleted):
		return util.CodeAlreadyCompleted
	case errors.Is(err, util.ErrDuplicateAnswer):
		return util.CodeDuplicateAnswer
	case errors.Is(err, util.ErrSkillEmpty):
		return util.CodeSkillEmpty
	case errors.Is(err, util.ErrInvalidAnswerLabel), errors.Is(err, util.ErrInvalidTimeTaken):
		return util.CodeBadRequest
	}
	return ""
}
