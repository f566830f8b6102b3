package session

import (
	"fmt"

	"quizforge/internal/grader"
	"quizforge/internal/model"
)

// Verdict is the graded outcome of one question in a list attempt.
type Verdict struct {
	QuestionID string `json:"questionId"`
	Answered   bool   `json:"answered"`
	Correct    bool   `json:"correct"`
}

// Result is the final outcome of a graded list attempt. Verdicts follow the
// attempt's question order.
type Result struct {
	Score    int       `json:"score"`
	Total    int       `json:"total"`
	Verdicts []Verdict `json:"verdicts"`
}

// List plays all questions on one page: answers accumulate in any order and
// are graded together in a single pass. Once graded, a list session is
// frozen; grading again returns the stored result with ErrAlreadyGraded.
type List struct {
	questions []model.Question
	answers   map[string]grader.Response
	graded    bool
	result    Result
}

// NewList starts a list attempt at the given quiz. The question order is
// shuffled when the quiz asks for it.
func NewList(doc *model.QuizDocument) (*List, error) {
	qs, err := snapshot(doc)
	if err != nil {
		return nil, err
	}
	return &List{
		questions: qs,
		answers:   make(map[string]grader.Response),
	}, nil
}

// Questions returns the attempt's questions in play order.
func (l *List) Questions() []model.Question {
	out := make([]model.Question, len(l.questions))
	for i := range l.questions {
		out[i] = l.questions[i].Clone()
	}
	return out
}

// Total returns the number of questions in the attempt.
func (l *List) Total() int {
	return len(l.questions)
}

// Graded reports whether the attempt has been graded.
func (l *List) Graded() bool {
	return l.graded
}

// Set records the candidate answer for a question. Setting the same question
// again overwrites the earlier answer. Unknown question ids and writes after
// grading panic.
func (l *List) Set(id string, r grader.Response) {
	if l.graded {
		panic("session: Set called on graded session")
	}
	if _, ok := l.find(id); !ok {
		panic(fmt.Sprintf("session: unknown question id %q", id))
	}
	l.answers[id] = r
}

// Response returns the answer recorded for a question id, if any.
func (l *List) Response(id string) (grader.Response, bool) {
	r, ok := l.answers[id]
	return r, ok
}

// Unanswered counts the questions with no usable answer recorded.
func (l *List) Unanswered() int {
	n := 0
	for _, q := range l.questions {
		if r, ok := l.answers[q.ID]; !ok || r.Empty() {
			n++
		}
	}
	return n
}

// Grade evaluates every question and freezes the attempt. When some
// questions are unanswered and confirmGaps is false, grading is refused with
// an *UnansweredError and the session stays open. Unanswered questions count
// as incorrect. Grading a graded session returns the stored result together
// with ErrAlreadyGraded.
func (l *List) Grade(confirmGaps bool) (Result, error) {
	if l.graded {
		return l.copyResult(), ErrAlreadyGraded
	}
	if n := l.Unanswered(); n > 0 && !confirmGaps {
		return Result{}, &UnansweredError{Count: n}
	}

	res := Result{Total: len(l.questions)}
	for _, q := range l.questions {
		r, ok := l.answers[q.ID]
		v := Verdict{QuestionID: q.ID, Answered: ok && !r.Empty()}
		if v.Answered {
			v.Correct = grader.Evaluate(q, r)
		}
		if v.Correct {
			res.Score++
		}
		res.Verdicts = append(res.Verdicts, v)
	}
	l.result = res
	l.graded = true
	return l.copyResult(), nil
}

// Result returns the stored outcome of a graded session, or ErrNotGraded
// before grading.
func (l *List) Result() (Result, error) {
	if !l.graded {
		return Result{}, ErrNotGraded
	}
	return l.copyResult(), nil
}

// Restart clears all answers and the grading state, keeping the question
// order of the original attempt.
func (l *List) Restart() {
	l.answers = make(map[string]grader.Response)
	l.graded = false
	l.result = Result{}
}

func (l *List) find(id string) (model.Question, bool) {
	for _, q := range l.questions {
		if q.ID == id {
			return q, true
		}
	}
	return model.Question{}, false
}

func (l *List) copyResult() Result {
	out := l.result
	out.Verdicts = append([]Verdict(nil), l.result.Verdicts...)
	return out
}
