package util

import "errors"

var (
	ErrSkillNotFound           = errors.New("skill not found")
	ErrSkillEmpty              = errors.New("skill has no active questions")
	ErrQuestionNotFound        = errors.New("question not found")
	ErrAttemptNotFound         = errors.New("attempt not found")
	ErrAttemptAlreadyCompleted = errors.New("attempt already completed")
	ErrDuplicateAnswer         = errors.New("question already answered in this attempt")
	ErrInvalidAnswerLabel      = errors.New("selected answer must be one of A, B, C, D")
	ErrInvalidTimeTaken        = errors.New("time taken must not be negative")
	ErrForbidden               = errors.New("forbidden")
)

// IsNotFound reports whether err is one of the not-found kinds.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrSkillNotFound) ||
		errors.Is(err, ErrQuestionNotFound) ||
		errors.Is(err, ErrAttemptNotFound)
}
