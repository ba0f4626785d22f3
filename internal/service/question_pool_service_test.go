package service

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"skill_assess_backend/internal/model"
	"skill_assess_backend/internal/repository"
	"skill_assess_backend/internal/testutil"
	"skill_assess_backend/internal/util"

	"github.com/go-redis/redis/v8"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func newPoolService(t *testing.T, rdb *redis.Client) (*QuestionPoolService, *gorm.DB) {
	t.Helper()
	db := testutil.NewDB(t)
	cfg := testutil.Config()
	cfg.Quiz.DefaultSampleSize = 4
	cfg.Quiz.MaxSampleSize = 6
	return NewQuestionPoolService(db, repository.NewSkillRepository(db), repository.NewQuestionRepository(db), rdb, cfg), db
}

func TestSampleQuestionsLimits(t *testing.T) {
	svc, db := newPoolService(t, nil)
	ctx := context.Background()
	skill, _ := testutil.SeedSkill(t, db, "pool", 10)

	tests := []struct {
		name  string
		limit int
		want  int
	}{
		{"default", 0, 4},
		{"explicit", 2, 2},
		{"capped", 100, 6},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			qs, err := svc.SampleQuestions(ctx, skill.ID, tt.limit)
			require.NoError(t, err)
			assert.Len(t, qs, tt.want)

			seen := make(map[string]bool)
			for _, q := range qs {
				assert.False(t, seen[q.ID], "duplicate question in sample")
				seen[q.ID] = true
			}
		})
	}
}

func TestSampleQuestionsWithholdsAnswers(t *testing.T) {
	svc, db := newPoolService(t, nil)
	ctx := context.Background()
	skill, qs := testutil.SeedSkill(t, db, "redacted", 3)
	require.NoError(t, db.Model(&qs[2]).Update("is_active", false).Error)

	sample, err := svc.SampleQuestions(ctx, skill.ID, 10)
	require.NoError(t, err)
	require.Len(t, sample, 2)

	for _, q := range sample {
		assert.NotEqual(t, qs[2].ID, q.ID, "inactive questions are never sampled")
		assert.Len(t, q.Options, 4)
	}

	raw, err := json.Marshal(sample)
	require.NoError(t, err)
	assert.NotContains(t, string(raw), "correct")
}

func TestSampleQuestionsUnknownSkill(t *testing.T) {
	svc, _ := newPoolService(t, nil)

	_, err := svc.SampleQuestions(context.Background(), model.GenerateUUID(), 3)
	assert.ErrorIs(t, err, util.ErrSkillNotFound)
}

func TestSampleQuestionsFallsBackWhenCacheDown(t *testing.T) {
	// nothing listens on port 1; every cache call fails fast
	rdb := redis.NewClient(&redis.Options{
		Addr:        "127.0.0.1:1",
		DialTimeout: 100 * time.Millisecond,
		MaxRetries:  -1,
	})
	t.Cleanup(func() { rdb.Close() })

	svc, db := newPoolService(t, rdb)
	skill, _ := testutil.SeedSkill(t, db, "nocache", 3)

	sample, err := svc.SampleQuestions(context.Background(), skill.ID, 3)
	require.NoError(t, err)
	assert.Len(t, sample, 3)
}

func TestGetCorrectAnswer(t *testing.T) {
	svc, db := newPoolService(t, nil)
	ctx := context.Background()
	skill, qs := testutil.SeedSkill(t, db, "keys", 2)

	key, err := svc.GetCorrectAnswer(ctx, qs[1].ID)
	require.NoError(t, err)
	assert.Equal(t, "B", key.CorrectAnswer)
	assert.Equal(t, skill.ID, key.SkillID)

	_, err = svc.GetCorrectAnswer(ctx, model.GenerateUUID())
	assert.ErrorIs(t, err, util.ErrQuestionNotFound)

	count, err := svc.GetActiveQuestionCount(ctx, skill.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, count)
}

func TestListActiveSkills(t *testing.T) {
	svc, db := newPoolService(t, nil)
	_, _ = testutil.SeedSkill(t, db, "beta", 1)
	alpha, _ := testutil.SeedSkill(t, db, "alpha", 1)
	hidden, _ := testutil.SeedSkill(t, db, "hidden", 1)
	require.NoError(t, db.Model(hidden).Update("is_active", false).Error)

	skills, err := svc.ListActiveSkills(context.Background())
	require.NoError(t, err)
	require.Len(t, skills, 2)
	assert.Equal(t, alpha.ID, skills[0].ID)
}
