package model

import (
	"fmt"
	"strings"
)

// DisplayType controls how a quiz is presented to the player.
type DisplayType string

const (
	// DisplaySequential shows one question at a time with an advance button.
	DisplaySequential DisplayType = "sequential"
	// DisplayList shows every question on one page with a single grade button.
	DisplayList DisplayType = "list"
)

// QuestionType discriminates the Question union.
type QuestionType string

const (
	// TypeChoice is a four-option multiple-choice question.
	TypeChoice QuestionType = "choice"
	// TypeText is a free-text question with one or more acceptable answers.
	TypeText QuestionType = "text"
)

// NumChoices is the fixed number of options on a choice question.
const NumChoices = 4

// Meta holds quiz-wide settings.
type Meta struct {
	Title       string      `json:"title"`
	Shuffle     bool        `json:"shuffle"`
	DisplayType DisplayType `json:"displayType"`
}

// AnswerList is the ordered set of acceptable answers for a text question.
// It is always non-empty for a valid question; the first entry is the
// canonical answer shown to players. A single-string answer in serialized
// form is an AnswerList of length one.
type AnswerList []string

// Canonical returns the answer displayed as "the" correct answer.
func (a AnswerList) Canonical() string {
	if len(a) == 0 {
		return ""
	}
	return a[0]
}

// Alternates returns the acceptable answers beyond the canonical one.
func (a AnswerList) Alternates() []string {
	if len(a) <= 1 {
		return nil
	}
	return a[1:]
}

// Question is one quiz question. Type selects the variant: choice questions
// use Choices/ChoiceImages/Answer, text questions use Accept. Image fields
// hold either a data URL or an http(s) URL; empty means no image.
type Question struct {
	ID           string
	Type         QuestionType
	Text         string
	Image        string
	Choices      []string
	ChoiceImages []string
	Answer       int // index into Choices, choice questions only
	Accept       AnswerList
	Explanation  string
}

// Clone returns a deep copy of the question. Edits to the copy never
// affect the original.
func (q Question) Clone() Question {
	c := q
	if q.Choices != nil {
		c.Choices = append([]string(nil), q.Choices...)
	}
	if q.ChoiceImages != nil {
		c.ChoiceImages = append([]string(nil), q.ChoiceImages...)
	}
	if q.Accept != nil {
		c.Accept = append(AnswerList(nil), q.Accept...)
	}
	return c
}

// Validate checks the per-question invariants.
func (q Question) Validate() error {
	if q.ID == "" {
		return fmt.Errorf("question has no id")
	}
	if strings.TrimSpace(q.Text) == "" {
		return fmt.Errorf("question %s: empty question text", q.ID)
	}
	switch q.Type {
	case TypeChoice:
		if len(q.Choices) != NumChoices {
			return fmt.Errorf("question %s: expected %d choices, got %d", q.ID, NumChoices, len(q.Choices))
		}
		for i, c := range q.Choices {
			if strings.TrimSpace(c) == "" {
				return fmt.Errorf("question %s: choice %d is empty", q.ID, i+1)
			}
		}
		if len(q.ChoiceImages) != 0 && len(q.ChoiceImages) != NumChoices {
			return fmt.Errorf("question %s: expected %d choice images, got %d", q.ID, NumChoices, len(q.ChoiceImages))
		}
		if q.Answer < 0 || q.Answer >= NumChoices {
			return fmt.Errorf("question %s: answer index %d out of range", q.ID, q.Answer)
		}
	case TypeText:
		if len(q.Accept) == 0 {
			return fmt.Errorf("question %s: no acceptable answers", q.ID)
		}
		for i, a := range q.Accept {
			if strings.TrimSpace(a) == "" {
				return fmt.Errorf("question %s: acceptable answer %d is blank", q.ID, i+1)
			}
		}
	default:
		return fmt.Errorf("question %s: unknown type %q", q.ID, q.Type)
	}
	return nil
}

// ValidImageRef reports whether s is an accepted image reference: empty (no
// image), an image data URL, or an http(s) URL. The backend never decodes
// image payloads; it only guards the shape.
func ValidImageRef(s string) bool {
	if s == "" {
		return true
	}
	if strings.HasPrefix(s, "data:image/") {
		return true
	}
	return strings.HasPrefix(s, "http://") || strings.HasPrefix(s, "https://")
}

// QuizDocument is the whole quiz: settings plus an ordered question list.
// Question order is meaningful and mutable; positions are always derived
// from slice order, never stored.
type QuizDocument struct {
	Meta      Meta       `json:"meta"`
	Questions []Question `json:"questions"`
}

// NewDocument returns an empty document with default settings.
func NewDocument(title string) *QuizDocument {
	return &QuizDocument{
		Meta: Meta{
			Title:       title,
			Shuffle:     false,
			DisplayType: DisplaySequential,
		},
	}
}

// IndexOf returns the position of the question with the given id, or -1.
func (d *QuizDocument) IndexOf(id string) int {
	for i := range d.Questions {
		if d.Questions[i].ID == id {
			return i
		}
	}
	return -1
}

// Find returns the question with the given id.
func (d *QuizDocument) Find(id string) (*Question, bool) {
	if i := d.IndexOf(id); i >= 0 {
		return &d.Questions[i], true
	}
	return nil, false
}

// Clone returns a deep copy of the document.
func (d *QuizDocument) Clone() *QuizDocument {
	c := &QuizDocument{Meta: d.Meta}
	if d.Questions != nil {
		c.Questions = make([]Question, len(d.Questions))
		for i := range d.Questions {
			c.Questions[i] = d.Questions[i].Clone()
		}
	}
	return c
}

// ValidateStructure checks the invariants that must hold at all times, even
// while questions are still being drafted: a valid display type and unique,
// non-empty question ids.
func (d *QuizDocument) ValidateStructure() error {
	switch d.Meta.DisplayType {
	case DisplaySequential, DisplayList:
	default:
		return fmt.Errorf("unknown display type %q", d.Meta.DisplayType)
	}
	seen := make(map[string]struct{}, len(d.Questions))
	for i := range d.Questions {
		id := d.Questions[i].ID
		if id == "" {
			return fmt.Errorf("question %d has no id", i)
		}
		if _, dup := seen[id]; dup {
			return fmt.Errorf("duplicate question id %s", id)
		}
		seen[id] = struct{}{}
	}
	return nil
}

// Validate checks the full document: structure plus every question's
// per-type invariants. A playable or exportable quiz must pass this.
func (d *QuizDocument) Validate() error {
	if err := d.ValidateStructure(); err != nil {
		return err
	}
	for i := range d.Questions {
		if err := d.Questions[i].Validate(); err != nil {
			return err
		}
	}
	return nil
}

// SampleDocument returns the starter quiz shown on first run.
func SampleDocument() *QuizDocument {
	return &QuizDocument{
		Meta: Meta{
			Title:       "Sample Quiz",
			Shuffle:     false,
			DisplayType: DisplaySequential,
		},
		Questions: []Question{
			{
				ID:          "q1",
				Type:        TypeChoice,
				Text:        "Which is the highest mountain in Japan?",
				Choices:     []string{"Mt. Fuji", "Mt. Kita", "Mt. Yari", "Mt. Tate"},
				Answer:      0,
				Explanation: "Mt. Fuji is 3776 m tall, the highest in Japan.",
			},
			{
				ID:          "q2",
				Type:        TypeText,
				Text:        "What is the capital of Japan?",
				Accept:      AnswerList{"Tokyo"},
				Explanation: "Tokyo has been the capital of Japan since 1868.",
			},
		},
	}
}
