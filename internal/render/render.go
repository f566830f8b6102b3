// Package render builds presentation-ready view models from a quiz and a
// session. Builders are pure: they read state, localize labels through the
// request context and return plain structs for the JSON API and the export
// templates to serialize.
package render

import (
	"context"
	"math"

	"quizforge/internal/i18n"
	"quizforge/internal/model"
	"quizforge/internal/session"
)

// ChoiceView is one selectable option of a choice question.
type ChoiceView struct {
	Index int    `json:"index"`
	Label string `json:"label"`
	Image string `json:"image,omitempty"`
}

// QuestionView is a single question prepared for display. The correct answer
// is deliberately absent: players receive verdicts, not answer keys.
type QuestionView struct {
	ID       string             `json:"id"`
	Number   int                `json:"number"`
	Total    int                `json:"total"`
	Progress float64            `json:"progress"`
	Label    string             `json:"label"`
	Type     model.QuestionType `json:"type"`
	Text     string             `json:"text"`
	Image    string             `json:"image,omitempty"`
	Choices  []ChoiceView       `json:"choices,omitempty"`
}

// FeedbackView is the per-question feedback shown after a sequential submit.
type FeedbackView struct {
	Correct       bool     `json:"correct"`
	Verdict       string   `json:"verdict"`
	CorrectAnswer string   `json:"correctAnswer"`
	AlsoAccepted  []string `json:"alsoAccepted,omitempty"`
	Explanation   string   `json:"explanation,omitempty"`
}

// ResultRow is the graded outcome of one question on the results screen.
type ResultRow struct {
	Number        int      `json:"number"`
	QuestionID    string   `json:"questionId"`
	Text          string   `json:"text"`
	Answered      bool     `json:"answered"`
	Correct       bool     `json:"correct"`
	Status        string   `json:"status"`
	CorrectAnswer string   `json:"correctAnswer"`
	AlsoAccepted  []string `json:"alsoAccepted,omitempty"`
	Explanation   string   `json:"explanation,omitempty"`
}

// ResultView is the final results screen for either display mode.
type ResultView struct {
	Score   int         `json:"score"`
	Total   int         `json:"total"`
	Percent int         `json:"percent"`
	Message string      `json:"message"`
	Summary string      `json:"summary"`
	Rows    []ResultRow `json:"rows,omitempty"`
}

// Question builds the view for the question at the given zero-based index.
func Question(ctx context.Context, q model.Question, index, total int) QuestionView {
	v := QuestionView{
		ID:       q.ID,
		Number:   index + 1,
		Total:    total,
		Progress: Progress(index, total),
		Label:    i18n.Td(ctx, "ProgressLabel", map[string]any{"Current": index + 1, "Total": total}),
		Type:     q.Type,
		Text:     q.Text,
		Image:    q.Image,
	}
	for i, c := range q.Choices {
		cv := ChoiceView{Index: i, Label: c}
		if i < len(q.ChoiceImages) {
			cv.Image = q.ChoiceImages[i]
		}
		v.Choices = append(v.Choices, cv)
	}
	return v
}

// Progress returns the fraction of questions already passed, in [0, 1].
func Progress(index, total int) float64 {
	if total <= 0 {
		return 0
	}
	return float64(index) / float64(total)
}

// Feedback builds the post-submit feedback for a sequential attempt.
func Feedback(ctx context.Context, q model.Question, correct bool) FeedbackView {
	verdict := "Incorrect"
	if correct {
		verdict = "Correct"
	}
	return FeedbackView{
		Correct:       correct,
		Verdict:       i18n.T(ctx, verdict),
		CorrectAnswer: correctAnswer(q),
		AlsoAccepted:  alsoAccepted(q),
		Explanation:   q.Explanation,
	}
}

func correctAnswer(q model.Question) string {
	if q.Type == model.TypeChoice {
		if q.Answer >= 0 && q.Answer < len(q.Choices) {
			return q.Choices[q.Answer]
		}
		return ""
	}
	return q.Accept.Canonical()
}

// alsoAccepted lists the extra accepted spellings of a text question, so the
// answer key can show them next to the canonical answer.
func alsoAccepted(q model.Question) []string {
	if q.Type != model.TypeText {
		return nil
	}
	return q.Accept.Alternates()
}

// Percent converts a score to a rounded percentage.
func Percent(score, total int) int {
	if total <= 0 {
		return 0
	}
	return int(math.Round(float64(score) / float64(total) * 100))
}

// Message picks the tiered result message for a percentage.
func Message(ctx context.Context, percent int) string {
	switch {
	case percent >= 90:
		return i18n.T(ctx, "ResultExcellent")
	case percent >= 70:
		return i18n.T(ctx, "ResultGood")
	case percent >= 50:
		return i18n.T(ctx, "ResultAlmost")
	default:
		return i18n.T(ctx, "ResultNeedsReview")
	}
}

// SequentialResult builds the results screen for a finished sequential
// attempt from its recorded per-question verdicts.
func SequentialResult(ctx context.Context, s *session.Sequential, questions []model.Question) ResultView {
	v := summary(ctx, s.Score(), s.Total())
	for i, q := range questions {
		correct, answered := s.Correct(q.ID)
		v.Rows = append(v.Rows, row(ctx, q, i, answered, correct))
	}
	return v
}

// ListResult builds the results screen for a graded list attempt.
func ListResult(ctx context.Context, res session.Result, questions []model.Question) ResultView {
	v := summary(ctx, res.Score, res.Total)
	byID := make(map[string]session.Verdict, len(res.Verdicts))
	for _, verdict := range res.Verdicts {
		byID[verdict.QuestionID] = verdict
	}
	for i, q := range questions {
		verdict := byID[q.ID]
		v.Rows = append(v.Rows, row(ctx, q, i, verdict.Answered, verdict.Correct))
	}
	return v
}

func summary(ctx context.Context, score, total int) ResultView {
	pct := Percent(score, total)
	return ResultView{
		Score:   score,
		Total:   total,
		Percent: pct,
		Message: Message(ctx, pct),
		Summary: i18n.Td(ctx, "FinalScore", map[string]any{
			"Score": score, "Total": total, "Percent": pct,
		}),
	}
}

func row(ctx context.Context, q model.Question, index int, answered, correct bool) ResultRow {
	status := "Unanswered"
	switch {
	case correct:
		status = "Correct"
	case answered:
		status = "Incorrect"
	}
	return ResultRow{
		Number:        index + 1,
		QuestionID:    q.ID,
		Text:          q.Text,
		Answered:      answered,
		Correct:       correct,
		Status:        i18n.T(ctx, status),
		CorrectAnswer: correctAnswer(q),
		AlsoAccepted:  alsoAccepted(q),
		Explanation:   q.Explanation,
	}
}
