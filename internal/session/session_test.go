package session

import (
	"errors"
	"testing"

	"quizforge/internal/grader"
	"quizforge/internal/model"
)

func twoQuestionDoc() *model.QuizDocument {
	return &model.QuizDocument{
		Meta: model.Meta{Title: "Test", DisplayType: model.DisplaySequential},
		Questions: []model.Question{
			{
				ID:      "q1",
				Type:    model.TypeChoice,
				Text:    "Which is the highest mountain in Japan?",
				Choices: []string{"Mt. Fuji", "Mt. Kita", "Mt. Yari", "Mt. Tate"},
				Answer:  0,
			},
			{
				ID:     "q2",
				Type:   model.TypeText,
				Text:   "What is the capital of Japan?",
				Accept: model.AnswerList{"Tokyo", "東京"},
			},
		},
	}
}

func TestSequentialFullRun(t *testing.T) {
	s, err := NewSequential(twoQuestionDoc())
	if err != nil {
		t.Fatalf("NewSequential: %v", err)
	}
	if s.Phase() != PhaseAwaiting || s.Index() != 0 || s.Total() != 2 {
		t.Fatalf("unexpected initial state: phase=%v index=%d total=%d", s.Phase(), s.Index(), s.Total())
	}

	ok, err := s.Submit(grader.Choice(0))
	if err != nil || !ok {
		t.Fatalf("Submit q1 = (%v, %v), want (true, nil)", ok, err)
	}
	if s.Phase() != PhaseAnswered {
		t.Fatalf("phase after submit = %v, want answered", s.Phase())
	}
	s.Advance()
	if s.Phase() != PhaseAwaiting || s.Index() != 1 {
		t.Fatalf("state after advance: phase=%v index=%d", s.Phase(), s.Index())
	}

	ok, err = s.Submit(grader.Text("Osaka"))
	if err != nil || ok {
		t.Fatalf("Submit q2 = (%v, %v), want (false, nil)", ok, err)
	}
	s.Advance()
	if s.Phase() != PhaseFinished {
		t.Fatalf("phase after last advance = %v, want finished", s.Phase())
	}
	if s.Score() != 1 {
		t.Errorf("Score() = %d, want 1", s.Score())
	}

	if correct, answered := s.Correct("q1"); !answered || !correct {
		t.Error("expected q1 recorded as correct")
	}
	if correct, answered := s.Correct("q2"); !answered || correct {
		t.Error("expected q2 recorded as incorrect")
	}
}

func TestSequentialEmptySubmitLeavesStateUnchanged(t *testing.T) {
	s, err := NewSequential(twoQuestionDoc())
	if err != nil {
		t.Fatalf("NewSequential: %v", err)
	}
	if _, err := s.Submit(grader.Text("   ")); !errors.Is(err, ErrEmptyAnswer) {
		t.Fatalf("Submit blank = %v, want ErrEmptyAnswer", err)
	}
	if s.Phase() != PhaseAwaiting || s.Score() != 0 {
		t.Errorf("state changed after rejected submit: phase=%v score=%d", s.Phase(), s.Score())
	}
	if _, ok := s.Response(s.Current().ID); ok {
		t.Error("rejected submit must not record an answer")
	}
}

func TestSequentialDoubleSubmitPanics(t *testing.T) {
	s, _ := NewSequential(twoQuestionDoc())
	if _, err := s.Submit(grader.Choice(1)); err != nil {
		t.Fatalf("Submit: %v", err)
	}
	defer func() {
		if recover() == nil {
			t.Error("expected panic on double submit")
		}
	}()
	s.Submit(grader.Choice(0))
}

func TestSequentialAdvanceBeforeAnswerPanics(t *testing.T) {
	s, _ := NewSequential(twoQuestionDoc())
	defer func() {
		if recover() == nil {
			t.Error("expected panic on advance from awaiting state")
		}
	}()
	s.Advance()
}

func TestSequentialRestart(t *testing.T) {
	s, _ := NewSequential(twoQuestionDoc())
	s.Submit(grader.Choice(0))
	s.Advance()
	s.Submit(grader.Text("Tokyo"))
	s.Advance()
	if s.Phase() != PhaseFinished || s.Score() != 2 {
		t.Fatalf("precondition: phase=%v score=%d", s.Phase(), s.Score())
	}

	s.Restart()
	if s.Phase() != PhaseAwaiting || s.Index() != 0 || s.Score() != 0 {
		t.Errorf("restart did not reset: phase=%v index=%d score=%d", s.Phase(), s.Index(), s.Score())
	}
	if _, ok := s.Response("q1"); ok {
		t.Error("restart did not clear answers")
	}
}

func TestNewSessionEmptyQuiz(t *testing.T) {
	doc := &model.QuizDocument{Meta: model.Meta{Title: "Empty"}}
	if _, err := NewSequential(doc); !errors.Is(err, ErrNoQuestions) {
		t.Errorf("NewSequential = %v, want ErrNoQuestions", err)
	}
	if _, err := NewList(doc); !errors.Is(err, ErrNoQuestions) {
		t.Errorf("NewList = %v, want ErrNoQuestions", err)
	}
}

func TestListGradeComplete(t *testing.T) {
	l, err := NewList(twoQuestionDoc())
	if err != nil {
		t.Fatalf("NewList: %v", err)
	}
	l.Set("q1", grader.Choice(0))
	l.Set("q2", grader.Text("  TOKYO "))

	res, err := l.Grade(false)
	if err != nil {
		t.Fatalf("Grade: %v", err)
	}
	if res.Score != 2 || res.Total != 2 {
		t.Errorf("result = %d/%d, want 2/2", res.Score, res.Total)
	}
	if len(res.Verdicts) != 2 {
		t.Fatalf("verdict count = %d", len(res.Verdicts))
	}
	for _, v := range res.Verdicts {
		if !v.Answered || !v.Correct {
			t.Errorf("verdict %+v, want answered and correct", v)
		}
	}
}

func TestListGradeWithGaps(t *testing.T) {
	l, _ := NewList(twoQuestionDoc())
	l.Set("q1", grader.Choice(0))

	// Without confirmation, grading is refused and the session stays open.
	_, err := l.Grade(false)
	var gaps *UnansweredError
	if !errors.As(err, &gaps) {
		t.Fatalf("Grade = %v, want *UnansweredError", err)
	}
	if gaps.Count != 1 {
		t.Errorf("Count = %d, want 1", gaps.Count)
	}
	if l.Graded() {
		t.Fatal("refused grading must not freeze the session")
	}

	// The gap can still be filled before grading with confirmation.
	l.Set("q2", grader.Text("wrong"))
	res, err := l.Grade(true)
	if err != nil {
		t.Fatalf("Grade: %v", err)
	}
	if res.Score != 1 {
		t.Errorf("Score = %d, want 1", res.Score)
	}
}

func TestListGradeUnansweredCountsIncorrect(t *testing.T) {
	l, _ := NewList(twoQuestionDoc())
	l.Set("q1", grader.Choice(0))

	res, err := l.Grade(true)
	if err != nil {
		t.Fatalf("Grade: %v", err)
	}
	if res.Score != 1 {
		t.Errorf("Score = %d, want 1", res.Score)
	}
	v := res.Verdicts[1]
	if v.QuestionID != "q2" || v.Answered || v.Correct {
		t.Errorf("verdict for gap = %+v, want unanswered incorrect", v)
	}
}

func TestListGradeIsIdempotent(t *testing.T) {
	l, _ := NewList(twoQuestionDoc())
	l.Set("q1", grader.Choice(0))
	l.Set("q2", grader.Text("Tokyo"))

	first, err := l.Grade(false)
	if err != nil {
		t.Fatalf("Grade: %v", err)
	}
	again, err := l.Grade(false)
	if !errors.Is(err, ErrAlreadyGraded) {
		t.Fatalf("second Grade = %v, want ErrAlreadyGraded", err)
	}
	if again.Score != first.Score || again.Total != first.Total {
		t.Errorf("second grade changed the result: %+v vs %+v", again, first)
	}

	stored, err := l.Result()
	if err != nil {
		t.Fatalf("Result: %v", err)
	}
	if stored.Score != first.Score {
		t.Errorf("stored result differs: %+v vs %+v", stored, first)
	}
}

func TestListResultBeforeGrading(t *testing.T) {
	l, _ := NewList(twoQuestionDoc())
	if _, err := l.Result(); !errors.Is(err, ErrNotGraded) {
		t.Errorf("Result = %v, want ErrNotGraded", err)
	}
}

func TestListSetAfterGradingPanics(t *testing.T) {
	l, _ := NewList(twoQuestionDoc())
	if _, err := l.Grade(true); err != nil {
		t.Fatalf("Grade: %v", err)
	}
	defer func() {
		if recover() == nil {
			t.Error("expected panic on Set after grading")
		}
	}()
	l.Set("q1", grader.Choice(0))
}

func TestListSetUnknownIDPanics(t *testing.T) {
	l, _ := NewList(twoQuestionDoc())
	defer func() {
		if recover() == nil {
			t.Error("expected panic on unknown question id")
		}
	}()
	l.Set("nope", grader.Choice(0))
}

func TestListOverwriteLastWins(t *testing.T) {
	l, _ := NewList(twoQuestionDoc())
	l.Set("q2", grader.Text("Osaka"))
	l.Set("q2", grader.Text("Tokyo"))
	l.Set("q1", grader.Choice(0))

	res, err := l.Grade(false)
	if err != nil {
		t.Fatalf("Grade: %v", err)
	}
	if res.Score != 2 {
		t.Errorf("Score = %d, want 2 after overwrite", res.Score)
	}
}

func TestListRestart(t *testing.T) {
	l, _ := NewList(twoQuestionDoc())
	l.Set("q1", grader.Choice(0))
	l.Set("q2", grader.Text("Tokyo"))
	if _, err := l.Grade(false); err != nil {
		t.Fatalf("Grade: %v", err)
	}

	l.Restart()
	if l.Graded() {
		t.Error("restart did not clear the graded flag")
	}
	if l.Unanswered() != 2 {
		t.Errorf("Unanswered() = %d after restart, want 2", l.Unanswered())
	}
}

func TestSessionSnapshotIsolation(t *testing.T) {
	doc := twoQuestionDoc()
	s, _ := NewSequential(doc)

	doc.Questions[0].Text = "changed"
	doc.Questions[0].Choices[0] = "changed"
	if got := s.Current(); got.Text == "changed" || got.Choices[0] == "changed" {
		t.Error("session shares state with the source document")
	}
}

func TestShuffleKeepsAllQuestions(t *testing.T) {
	doc := twoQuestionDoc()
	doc.Meta.Shuffle = true
	for i := 0; i < 5; i++ {
		l, err := NewList(doc)
		if err != nil {
			t.Fatalf("NewList: %v", err)
		}
		seen := map[string]bool{}
		for _, q := range l.Questions() {
			seen[q.ID] = true
		}
		if !seen["q1"] || !seen["q2"] || len(seen) != 2 {
			t.Fatalf("shuffle lost or duplicated questions: %v", seen)
		}
	}
}
