// Package testutil builds throwaway in-memory databases for tests.
package testutil

import (
	"fmt"
	"testing"
	"time"

	"skill_assess_backend/internal/config"
	"skill_assess_backend/internal/model"
	"skill_assess_backend/pkg/database"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// NewDB opens a migrated in-memory SQLite database limited to one
// connection, so concurrent callers serialize on it.
func NewDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	sqlDB.SetConnMaxLifetime(time.Hour)
	t.Cleanup(func() { sqlDB.Close() })

	require.NoError(t, database.Migrate(db))
	return db
}

// Config returns a valid configuration for tests.
func Config() *config.Config {
	return &config.Config{
		Server:    config.ServerConfig{Port: "0", Mode: "test"},
		Database:  config.DatabaseConfig{Driver: "sqlite", Path: ":memory:"},
		JWT:       config.JWTConfig{Secret: "test-secret-test-secret-test-secret"},
		RateLimit: config.RateLimitConfig{MaxRequests: 10000, WindowMinutes: 1},
		Log:       config.LogConfig{Level: "error"},
		Quiz: config.QuizConfig{
			DefaultSampleSize: 10,
			MaxSampleSize:     50,
			TrustClientTiming: true,
			PoolCacheTTL:      time.Minute,
		},
	}
}

// SeedSkill creates an active skill with n active questions. Question i has
// correct answer OptionLabels[i%4].
func SeedSkill(t *testing.T, db *gorm.DB, name string, n int) (*model.Skill, []model.Question) {
	t.Helper()

	skill := &model.Skill{Name: name, Description: name + " questions", IsActive: true}
	require.NoError(t, db.Create(skill).Error)

	questions := make([]model.Question, 0, n)
	for i := 0; i < n; i++ {
		q := model.Question{
			SkillID:       skill.ID,
			Text:          fmt.Sprintf("%s question %d", name, i+1),
			OptionA:       "option a",
			OptionB:       "option b",
			OptionC:       "option c",
			OptionD:       "option d",
			CorrectAnswer: model.OptionLabels[i%len(model.OptionLabels)],
			Difficulty:    model.DifficultyMedium,
			Points:        1,
			IsActive:      true,
		}
		require.NoError(t, db.Create(&q).Error)
		questions = append(questions, q)
	}
	return skill, questions
}

// WrongAnswer returns a label different from q's correct answer.
func WrongAnswer(q model.Question) string {
	for _, l := range model.OptionLabels {
		if l != q.CorrectAnswer {
			return l
		}
	}
	return ""
}
