package repository_test

import (
	"testing"
	"time"

	"skill_assess_backend/internal/model"
	"skill_assess_backend/internal/repository"
	"skill_assess_backend/internal/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAnswerInsertNeverOverwrites(t *testing.T) {
	db := testutil.NewDB(t)
	repo := repository.NewAnswerRepository(db)

	inserted, err := repo.Insert(&model.AnswerRecord{AttemptID: "att", QuestionID: "q1", SelectedAnswer: "A", IsCorrect: true, TimeTaken: 3})
	require.NoError(t, err)
	assert.True(t, inserted)

	inserted, err = repo.Insert(&model.AnswerRecord{AttemptID: "att", QuestionID: "q1", SelectedAnswer: "C", IsCorrect: false, TimeTaken: 9})
	require.NoError(t, err)
	assert.False(t, inserted)

	records, err := repo.ListByAttempt("att")
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "A", records[0].SelectedAnswer)
	assert.True(t, records[0].IsCorrect)
	assert.Equal(t, 3, records[0].TimeTaken)
}

func TestMarkCompletedOnlyOnce(t *testing.T) {
	db := testutil.NewDB(t)
	repo := repository.NewAttemptRepository(db)

	attempt := &model.QuizAttempt{OwnerID: 1, SkillID: "s", TotalQuestions: 2, StartedAt: time.Now()}
	require.NoError(t, repo.Create(attempt))

	ok, err := repo.MarkCompleted(attempt.ID, repository.CompletionResult{CorrectAnswers: 1, ScorePercentage: 50, TimeTaken: 10, CompletedAt: time.Now()})
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = repo.MarkCompleted(attempt.ID, repository.CompletionResult{CorrectAnswers: 2, ScorePercentage: 100, TimeTaken: 20, CompletedAt: time.Now()})
	require.NoError(t, err)
	assert.False(t, ok)

	stored, err := repo.FindByID(attempt.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, stored.CorrectAnswers)
	assert.Equal(t, 50.0, stored.ScorePercentage)
	assert.Equal(t, 10, stored.TimeTaken)
	assert.NotNil(t, stored.CompletedAt)
}
