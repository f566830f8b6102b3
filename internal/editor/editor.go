// Package editor performs structural mutation of a quiz document: adding,
// saving, duplicating, deleting and reordering questions. Every operation
// leaves the document structurally valid, including rejected saves.
package editor

import (
	"fmt"
	"strings"

	"github.com/google/uuid"

	"quizforge/internal/model"
)

// CopyMarker is appended to the question text of a duplicated question so
// the author can tell the copy from the source at a glance.
const CopyMarker = " (copy)"

// FieldError reports which required field failed validation on save.
type FieldError struct {
	Field  string
	Reason string
}

func (e *FieldError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Reason)
}

// Editor mutates a quiz document it exclusively owns. Operations are
// synchronous; callers targeting an out-of-range position or an unknown id
// get a panic, since correct use of the API cannot reach those states.
type Editor struct {
	doc *model.QuizDocument
}

// New returns an editor over the given document. The editor takes ownership:
// the caller must not mutate the document directly while editing.
func New(doc *model.QuizDocument) *Editor {
	return &Editor{doc: doc}
}

// Document returns the edited document.
func (e *Editor) Document() *model.QuizDocument {
	return e.doc
}

// Add appends a new question of the given type with editing defaults and
// returns it for immediate editing. Choice questions start with four
// placeholder choices and the first choice marked correct; text questions
// start empty and fail validation until the author fills them in.
func (e *Editor) Add(t model.QuestionType) model.Question {
	q := model.Question{ID: uuid.NewString(), Type: t}
	if t == model.TypeChoice {
		q.Choices = make([]string, model.NumChoices)
		for i := range q.Choices {
			q.Choices[i] = fmt.Sprintf("Choice %d", i+1)
		}
	}
	e.doc.Questions = append(e.doc.Questions, q)
	return q.Clone()
}

// Save validates the edited question and replaces the stored one whole; the
// id is preserved, nothing is merged. A validation failure returns a
// *FieldError naming the offending field and leaves the document unchanged.
// Saving against an id not present in the document panics.
func (e *Editor) Save(id string, edited model.Question) error {
	pos := e.doc.IndexOf(id)
	if pos < 0 {
		panic(fmt.Sprintf("editor: save against unknown question id %q", id))
	}
	if err := validate(edited); err != nil {
		return err
	}
	edited.ID = id
	e.doc.Questions[pos] = edited.Clone()
	return nil
}

func validate(q model.Question) error {
	if strings.TrimSpace(q.Text) == "" {
		return &FieldError{Field: "question", Reason: "question text is required"}
	}
	if !model.ValidImageRef(q.Image) {
		return &FieldError{Field: "image", Reason: "image must be a data: or http(s) URL"}
	}
	for i, img := range q.ChoiceImages {
		if !model.ValidImageRef(img) {
			return &FieldError{Field: fmt.Sprintf("choiceImage%d", i+1), Reason: "image must be a data: or http(s) URL"}
		}
	}
	switch q.Type {
	case model.TypeChoice:
		if len(q.Choices) != model.NumChoices {
			return &FieldError{Field: "choices", Reason: fmt.Sprintf("exactly %d choices are required", model.NumChoices)}
		}
		for i, c := range q.Choices {
			if strings.TrimSpace(c) == "" {
				return &FieldError{Field: fmt.Sprintf("choice%d", i+1), Reason: "choice text is required"}
			}
		}
		if q.Answer < 0 || q.Answer >= model.NumChoices {
			return &FieldError{Field: "answer", Reason: "a correct choice must be selected"}
		}
	case model.TypeText:
		if !hasNonBlank(q.Accept) {
			return &FieldError{Field: "answer", Reason: "at least one acceptable answer is required"}
		}
		for i, a := range q.Accept {
			if strings.TrimSpace(a) == "" {
				return &FieldError{Field: fmt.Sprintf("answer%d", i+1), Reason: "acceptable answers must not be blank"}
			}
		}
	default:
		return &FieldError{Field: "type", Reason: fmt.Sprintf("unknown question type %q", q.Type)}
	}
	return nil
}

func hasNonBlank(a model.AnswerList) bool {
	for _, s := range a {
		if strings.TrimSpace(s) != "" {
			return true
		}
	}
	return false
}

// Duplicate deep-copies the question at pos, gives the copy a fresh id and
// the copy marker, and inserts it immediately after the source. The copy is
// returned; later edits to either question do not affect the other.
func (e *Editor) Duplicate(pos int) model.Question {
	e.mustHave(pos)
	dup := e.doc.Questions[pos].Clone()
	dup.ID = uuid.NewString()
	dup.Text += CopyMarker

	qs := e.doc.Questions
	qs = append(qs, model.Question{})
	copy(qs[pos+2:], qs[pos+1:])
	qs[pos+1] = dup
	e.doc.Questions = qs
	return dup.Clone()
}

// Delete removes the question at pos. Other questions keep their ids.
func (e *Editor) Delete(pos int) {
	e.mustHave(pos)
	e.doc.Questions = append(e.doc.Questions[:pos], e.doc.Questions[pos+1:]...)
}

// MoveUp swaps the question at pos with its predecessor. At the first
// position it is a no-op.
func (e *Editor) MoveUp(pos int) {
	e.mustHave(pos)
	if pos == 0 {
		return
	}
	qs := e.doc.Questions
	qs[pos-1], qs[pos] = qs[pos], qs[pos-1]
}

// MoveDown swaps the question at pos with its successor. At the last
// position it is a no-op.
func (e *Editor) MoveDown(pos int) {
	e.mustHave(pos)
	if pos == len(e.doc.Questions)-1 {
		return
	}
	qs := e.doc.Questions
	qs[pos], qs[pos+1] = qs[pos+1], qs[pos]
}

func (e *Editor) mustHave(pos int) {
	if pos < 0 || pos >= len(e.doc.Questions) {
		panic(fmt.Sprintf("editor: question position %d out of range [0,%d)", pos, len(e.doc.Questions)))
	}
}
