package llm

import (
	"strings"
	"testing"

	"quizforge/internal/model"
)

func TestBuildDraftSystemPrompt(t *testing.T) {
	t.Run("choice", func(t *testing.T) {
		prompt := buildDraftSystemPrompt(5, model.TypeChoice)
		if !strings.Contains(prompt, "Write exactly 5 questions") {
			t.Error("prompt should state the question count")
		}
		if !strings.Contains(prompt, "answer_index") {
			t.Error("choice prompt should describe answer_index")
		}
		if strings.Contains(prompt, `"answers"`) {
			t.Error("choice prompt should not ask for a free-text answers array")
		}
	})

	t.Run("text", func(t *testing.T) {
		prompt := buildDraftSystemPrompt(3, model.TypeText)
		if !strings.Contains(prompt, "acceptable spelling") {
			t.Error("text prompt should ask for answer variants")
		}
		if strings.Contains(prompt, "answer_index") {
			t.Error("text prompt should not mention answer_index")
		}
	})
}

func TestConvertDraftChoice(t *testing.T) {
	d := draftQuestion{
		Question:    "Which is the highest mountain in Japan?",
		Choices:     []string{"Mt. Fuji", "Mt. Kita", "Mt. Yari", "Mt. Tate"},
		AnswerIndex: 0,
		Explanation: "3776 m.",
	}
	q := convertDraft(d, model.TypeChoice)
	if q.ID == "" {
		t.Error("converted draft has no id")
	}
	if q.Type != model.TypeChoice || q.Answer != 0 || len(q.Choices) != 4 {
		t.Errorf("converted = %+v", q)
	}
	if err := q.Validate(); err != nil {
		t.Errorf("converted draft invalid: %v", err)
	}
}

func TestConvertDraftText(t *testing.T) {
	d := draftQuestion{
		Question: "What is the capital of Japan?",
		Answers:  []string{"東京", " tokyo ", "", "トウキョウ"},
	}
	q := convertDraft(d, model.TypeText)
	want := model.AnswerList{"東京", "tokyo", "トウキョウ"}
	if len(q.Accept) != len(want) {
		t.Fatalf("Accept = %v, want %v", q.Accept, want)
	}
	for i := range want {
		if q.Accept[i] != want[i] {
			t.Errorf("Accept[%d] = %q, want %q", i, q.Accept[i], want[i])
		}
	}
	if err := q.Validate(); err != nil {
		t.Errorf("converted draft invalid: %v", err)
	}
}

func TestConvertDraftInvalidIsCaught(t *testing.T) {
	d := draftQuestion{
		Question:    "Broken",
		Choices:     []string{"a", "b"},
		AnswerIndex: 7,
	}
	q := convertDraft(d, model.TypeChoice)
	if err := q.Validate(); err == nil {
		t.Error("expected validation to reject a malformed draft")
	}
}
