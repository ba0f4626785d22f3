package database

import (
	"skill_assess_backend/internal/model"
	"skill_assess_backend/pkg/logger"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

type seedQuestion struct {
	text       string
	options    [4]string
	correct    string
	difficulty model.Difficulty
	points     int
}

var demoSkills = []struct {
	name        string
	description string
	questions   []seedQuestion
}{
	{
		name:        "Go Fundamentals",
		description: "Core language features of Go",
		questions: []seedQuestion{
			{"Which keyword starts a goroutine?", [4]string{"go", "async", "spawn", "thread"}, "A", model.DifficultyEasy, 1},
			{"What is the zero value of a map?", [4]string{"empty map", "nil", "0", "panic"}, "B", model.DifficultyEasy, 1},
			{"Which statement about slices is true?", [4]string{"They are copied by value with their backing array", "They cannot grow", "They share a backing array when resliced", "They are always heap allocated"}, "C", model.DifficultyMedium, 2},
			{"What happens when sending on a closed channel?", [4]string{"The value is dropped", "It blocks forever", "It returns false", "It panics"}, "D", model.DifficultyMedium, 2},
			{"Which type satisfies the error interface?", [4]string{"Any type with Error() string", "Only *errors.errorString", "Any struct", "Types embedding error only"}, "A", model.DifficultyHard, 3},
		},
	},
	{
		name:        "SQL Basics",
		description: "Querying relational databases",
		questions: []seedQuestion{
			{"Which clause filters grouped rows?", [4]string{"WHERE", "HAVING", "ORDER BY", "LIMIT"}, "B", model.DifficultyEasy, 1},
			{"Which join keeps unmatched rows from the left table?", [4]string{"INNER JOIN", "CROSS JOIN", "LEFT JOIN", "SELF JOIN"}, "C", model.DifficultyEasy, 1},
			{"What does a unique index guarantee?", [4]string{"Faster inserts", "Sorted storage", "Non-null values", "No two rows share the indexed value"}, "D", model.DifficultyMedium, 2},
		},
	},
}

// SeedDemo inserts demo skills and questions when the skills table is empty.
func SeedDemo(db *gorm.DB) error {
	var count int64
	if err := db.Model(&model.Skill{}).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return nil
	}

	return db.Transaction(func(tx *gorm.DB) error {
		for _, s := range demoSkills {
			skill := &model.Skill{Name: s.name, Description: s.description, IsActive: true}
			if err := tx.Create(skill).Error; err != nil {
				return err
			}
			for _, q := range s.questions {
				question := &model.Question{
					SkillID:       skill.ID,
					Text:          q.text,
					OptionA:       q.options[0],
					OptionB:       q.options[1],
					OptionC:       q.options[2],
					OptionD:       q.options[3],
					CorrectAnswer: q.correct,
					Difficulty:    q.difficulty,
					Points:        q.points,
					IsActive:      true,
				}
				if err := tx.Create(question).Error; err != nil {
					return err
				}
			}
			logger.Log.Info("Seeded demo skill", zap.String("skill", s.name), zap.Int("questions", len(s.questions)))
		}
		return nil
	})
}
