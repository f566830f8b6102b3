// Package llm drafts quiz questions with an OpenAI-compatible endpoint.
// Drafting is optional: the builder works fully without it, and drafts are
// plain editor input the author reviews and saves like hand-written ones.
package llm

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/uuid"
	openai "github.com/sashabaranov/go-openai"

	"quizforge/internal/model"
)

// Client wraps an OpenAI-compatible API client.
type Client struct {
	api   *openai.Client
	model string
}

// New creates a new LLM client.
func New(baseURL, apiKey, modelName string) *Client {
	config := openai.DefaultConfig(apiKey)
	if baseURL != "" {
		config.BaseURL = baseURL
	}
	return &Client{
		api:   openai.NewClientWithConfig(config),
		model: modelName,
	}
}

// Ping verifies the endpoint is reachable and the configured model exists.
func (c *Client) Ping(ctx context.Context) error {
	models, err := c.api.ListModels(ctx)
	if err != nil {
		return fmt.Errorf("list models: %w", err)
	}
	for _, m := range models.Models {
		if m.ID == c.model {
			return nil
		}
	}
	return fmt.Errorf("model %q not available on the endpoint", c.model)
}

// draftResponse is the JSON shape the model is instructed to produce.
type draftResponse struct {
	Questions []draftQuestion `json:"questions"`
}

type draftQuestion struct {
	Question    string   `json:"question"`
	Choices     []string `json:"choices"`
	AnswerIndex int      `json:"answer_index"`
	Answers     []string `json:"answers"`
	Explanation string   `json:"explanation"`
}

// Draft asks the model for count questions of the given type about a topic
// and converts the reply into ready-to-edit questions. Drafts that fail
// validation are dropped with a warning rather than failing the batch.
func (c *Client) Draft(ctx context.Context, topic string, count int, qtype model.QuestionType) ([]model.Question, error) {
	if count < 1 {
		return nil, fmt.Errorf("draft count must be positive, got %d", count)
	}

	resp, err := c.api.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: c.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: buildDraftSystemPrompt(count, qtype)},
			{Role: openai.ChatMessageRoleUser, Content: "TOPIC: " + topic},
		},
		ResponseFormat: &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONObject,
		},
		Temperature: 0.7,
	})
	if err != nil {
		return nil, fmt.Errorf("LLM API call: %w", err)
	}
	if len(resp.Choices) == 0 {
		return nil, fmt.Errorf("LLM returned no choices")
	}

	raw := resp.Choices[0].Message.Content
	slog.Debug("LLM draft response", "raw", raw)

	var parsed draftResponse
	if err := json.Unmarshal([]byte(raw), &parsed); err != nil {
		return nil, fmt.Errorf("parse LLM response: %w (raw: %s)", err, raw)
	}
	if len(parsed.Questions) == 0 {
		return nil, fmt.Errorf("LLM returned no questions")
	}

	var questions []model.Question
	for _, d := range parsed.Questions {
		q := convertDraft(d, qtype)
		if err := q.Validate(); err != nil {
			slog.Warn("dropping invalid draft question", "error", err)
			continue
		}
		questions = append(questions, q)
	}
	if len(questions) == 0 {
		return nil, fmt.Errorf("no usable questions in LLM response")
	}
	return questions, nil
}

func convertDraft(d draftQuestion, qtype model.QuestionType) model.Question {
	q := model.Question{
		ID:          uuid.NewString(),
		Type:        qtype,
		Text:        strings.TrimSpace(d.Question),
		Explanation: strings.TrimSpace(d.Explanation),
	}
	if qtype == model.TypeChoice {
		q.Choices = d.Choices
		q.Answer = d.AnswerIndex
		return q
	}
	for _, a := range d.Answers {
		if s := strings.TrimSpace(a); s != "" {
			q.Accept = append(q.Accept, s)
		}
	}
	return q
}

func buildDraftSystemPrompt(count int, qtype model.QuestionType) string {
	var sb strings.Builder
	sb.WriteString("You are a quiz author. Write quiz questions about the topic the user gives you.\n\n")
	sb.WriteString(fmt.Sprintf("Write exactly %d questions.\n\n", count))

	sb.WriteString("INSTRUCTIONS:\n")
	if qtype == model.TypeChoice {
		sb.WriteString(fmt.Sprintf("- Each question is multiple choice with exactly %d options.\n", model.NumChoices))
		sb.WriteString("- Exactly one option is correct; the rest are plausible but wrong.\n")
		sb.WriteString(fmt.Sprintf("- answer_index is the 0-based index of the correct option (0 to %d).\n", model.NumChoices-1))
	} else {
		sb.WriteString("- Each question is answered with a short free-text answer.\n")
		sb.WriteString("- List every acceptable spelling or variant of the answer in the answers array.\n")
	}
	sb.WriteString("- Keep the explanation to one or two sentences.\n")
	sb.WriteString("- Write in the same language as the topic.\n")

	sb.WriteString("\nRespond ONLY with a JSON object of this shape:\n")
	if qtype == model.TypeChoice {
		sb.WriteString(`{"questions": [{"question": "<text>", "choices": ["<a>", "<b>", "<c>", "<d>"], "answer_index": <0-3>, "explanation": "<why>"}]}`)
	} else {
		sb.WriteString(`{"questions": [{"question": "<text>", "answers": ["<canonical>", "<variant>"], "explanation": "<why>"}]}`)
	}
	sb.WriteString("\n")

	return sb.String()
}
