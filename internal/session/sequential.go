// Package session tracks a single attempt at playing through a quiz, in
// either of the two display modes, and computes the final score. A session
// owns a snapshot of the quiz taken at start time: later edits to the
// document do not affect a running attempt.
//
// Validation failures (empty candidate, grading with gaps, reading results
// too early) come back as errors and leave the session unchanged. Calls that
// are impossible through correct use of the API (submitting twice without
// advancing, advancing before answering, reading past the end) panic,
// because they indicate a caller bug rather than user input.
package session

import (
	"fmt"
	"math/rand/v2"

	"quizforge/internal/grader"
	"quizforge/internal/model"
)

// Phase is the sequential session state.
type Phase int

const (
	// PhaseAwaiting means the current question has no recorded answer yet.
	PhaseAwaiting Phase = iota
	// PhaseAnswered means the current question was answered and the session
	// waits for an advance.
	PhaseAnswered
	// PhaseFinished means every question was answered.
	PhaseFinished
)

// Sequential plays one question at a time: answer, see feedback, advance.
type Sequential struct {
	questions []model.Question
	index     int
	phase     Phase
	score     int
	answers   map[string]grader.Response
	correct   map[string]bool
}

// NewSequential starts a sequential attempt at the given quiz. The question
// order is shuffled when the quiz asks for it.
func NewSequential(doc *model.QuizDocument) (*Sequential, error) {
	qs, err := snapshot(doc)
	if err != nil {
		return nil, err
	}
	return &Sequential{
		questions: qs,
		answers:   make(map[string]grader.Response),
		correct:   make(map[string]bool),
	}, nil
}

func snapshot(doc *model.QuizDocument) ([]model.Question, error) {
	if len(doc.Questions) == 0 {
		return nil, ErrNoQuestions
	}
	qs := make([]model.Question, len(doc.Questions))
	for i := range doc.Questions {
		qs[i] = doc.Questions[i].Clone()
	}
	if doc.Meta.Shuffle {
		rand.Shuffle(len(qs), func(i, j int) {
			qs[i], qs[j] = qs[j], qs[i]
		})
	}
	return qs, nil
}

// Phase returns the current state.
func (s *Sequential) Phase() Phase {
	return s.phase
}

// Index returns the zero-based position of the current question.
func (s *Sequential) Index() int {
	return s.index
}

// Total returns the number of questions in the attempt.
func (s *Sequential) Total() int {
	return len(s.questions)
}

// Questions returns the attempt's questions in play order.
func (s *Sequential) Questions() []model.Question {
	out := make([]model.Question, len(s.questions))
	for i := range s.questions {
		out[i] = s.questions[i].Clone()
	}
	return out
}

// Score returns the number of correct answers so far.
func (s *Sequential) Score() int {
	return s.score
}

// Current returns the question being played. It must not be called on a
// finished session.
func (s *Sequential) Current() model.Question {
	if s.phase == PhaseFinished {
		panic("session: Current called on finished session")
	}
	return s.questions[s.index]
}

// Submit records the candidate answer for the current question and reports
// whether it was correct. An empty candidate is rejected with ErrEmptyAnswer
// and the state is unchanged. Submitting while the current question is
// already answered, or after the session finished, panics.
func (s *Sequential) Submit(r grader.Response) (bool, error) {
	switch s.phase {
	case PhaseAnswered:
		panic(fmt.Sprintf("session: double submit for question %d", s.index))
	case PhaseFinished:
		panic("session: Submit called on finished session")
	}
	if r.Empty() {
		return false, ErrEmptyAnswer
	}
	q := s.questions[s.index]
	ok := grader.Evaluate(q, r)
	s.answers[q.ID] = r
	s.correct[q.ID] = ok
	if ok {
		s.score++
	}
	s.phase = PhaseAnswered
	return ok, nil
}

// Advance moves to the next question, or finishes the session when the
// current question was the last one. It must only be called from the
// answered state.
func (s *Sequential) Advance() {
	if s.phase != PhaseAnswered {
		panic("session: Advance called before an answer was recorded")
	}
	s.index++
	if s.index >= len(s.questions) {
		s.phase = PhaseFinished
		return
	}
	s.phase = PhaseAwaiting
}

// Response returns the answer recorded for a question id, if any. Recorded
// answers are never re-evaluated or overwritten within an attempt.
func (s *Sequential) Response(id string) (grader.Response, bool) {
	r, ok := s.answers[id]
	return r, ok
}

// Correct reports the recorded verdict for a question id.
func (s *Sequential) Correct(id string) (bool, bool) {
	ok, answered := s.correct[id]
	return ok, answered
}

// Restart resets the attempt to its initial state: first question, empty
// answer map, score zero. It succeeds from any state.
func (s *Sequential) Restart() {
	s.index = 0
	s.score = 0
	s.phase = PhaseAwaiting
	s.answers = make(map[string]grader.Response)
	s.correct = make(map[string]bool)
}
