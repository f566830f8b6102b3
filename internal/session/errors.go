package session

import (
	"errors"
	"fmt"
)

var (
	// ErrEmptyAnswer is returned when a submitted candidate carries no answer.
	ErrEmptyAnswer = errors.New("answer is empty")
	// ErrAlreadyGraded is returned when a graded session is graded again.
	// The stored result is unchanged.
	ErrAlreadyGraded = errors.New("session already graded")
	// ErrNotGraded is returned when results are read before grading.
	ErrNotGraded = errors.New("session not graded yet")
	// ErrNoQuestions is returned when a session is started on an empty quiz.
	ErrNoQuestions = errors.New("quiz has no questions")
)

// UnansweredError reports how many questions have no recorded answer when
// grading is requested without the caller's confirmation to proceed anyway.
type UnansweredError struct {
	Count int
}

func (e *UnansweredError) Error() string {
	return fmt.Sprintf("%d questions unanswered", e.Count)
}
