// Package grader decides whether a candidate answer to a single question is
// correct. Evaluation is pure: no state, no side effects, exact normalized
// equality only (no partial credit, no fuzzy matching).
package grader

import (
	"strings"

	"quizforge/internal/model"
)

// ResponseKind discriminates the Response union.
type ResponseKind int

const (
	// KindNone marks an absent response.
	KindNone ResponseKind = iota
	// KindChoice is a selected choice index.
	KindChoice
	// KindText is a free-text answer.
	KindText
)

// Response is a candidate answer to one question. The zero value is the
// absent response, which is never correct.
type Response struct {
	Kind  ResponseKind `json:"kind"`
	Index int          `json:"index,omitempty"`
	Text  string       `json:"text,omitempty"`
}

// Choice returns a response selecting the given choice index.
func Choice(index int) Response {
	return Response{Kind: KindChoice, Index: index}
}

// Text returns a free-text response.
func Text(s string) Response {
	return Response{Kind: KindText, Text: s}
}

// Empty reports whether the response carries no usable answer: absent,
// or free text that is blank after trimming.
func (r Response) Empty() bool {
	switch r.Kind {
	case KindChoice:
		return false
	case KindText:
		return strings.TrimSpace(r.Text) == ""
	default:
		return true
	}
}

// Normalize maps an answer string to its comparison form: surrounding
// whitespace stripped, then lower-cased with the locale-independent mapping.
func Normalize(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// Evaluate reports whether the response answers the question correctly.
// Empty responses and responses of the wrong kind are always incorrect.
func Evaluate(q model.Question, r Response) bool {
	switch q.Type {
	case model.TypeChoice:
		return r.Kind == KindChoice && r.Index == q.Answer
	case model.TypeText:
		if r.Kind != KindText {
			return false
		}
		candidate := Normalize(r.Text)
		if candidate == "" {
			return false
		}
		for _, accept := range q.Accept {
			if Normalize(accept) == candidate {
				return true
			}
		}
		return false
	default:
		return false
	}
}
