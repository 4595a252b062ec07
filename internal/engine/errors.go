package engine

import (
	"errors"
	"fmt"
)

// ErrNotFound covers unknown attempt, module, course, quiz and certificate
// references. Repositories translate driver-level misses into it.
var ErrNotFound = errors.New("record not found")

// GenerationError means the external question generator failed or returned
// malformed output. No attempt is persisted when it occurs; the caller may
// retry safely.
type GenerationError struct {
	Reason string
	Err    error
}

func (e *GenerationError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("question generation failed: %s: %v", e.Reason, e.Err)
	}
	return fmt.Sprintf("question generation failed: %s", e.Reason)
}

func (e *GenerationError) Unwrap() error { return e.Err }

// ValidationError marks malformed caller input: wrong answers length,
// question index out of range, unknown evidence kind.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
	}
	return e.Reason
}

// AlreadySubmittedError rejects a second submit of a terminal attempt and
// carries the original score so callers can surface it unchanged.
type AlreadySubmittedError struct {
	AttemptID string
	Score     int
}

func (e *AlreadySubmittedError) Error() string {
	return fmt.Sprintf("attempt %s already submitted (score %d)", e.AttemptID, e.Score)
}

// AttemptLimitError applies to bounded-retake instructor quizzes only.
type AttemptLimitError struct {
	QuizID string
	Limit  int
}

func (e *AttemptLimitError) Error() string {
	return fmt.Sprintf("attempt limit of %d reached for quiz %s", e.Limit, e.QuizID)
}
