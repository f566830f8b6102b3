package model

import (
	"encoding/json"
	"fmt"
	"strings"
)

// The wire shape follows the exported bundle format: choice questions carry
// a numeric answer index, text questions carry either a single string or an
// array of acceptable strings. The array form is canonical; the scalar form
// is emitted for single-answer questions so documents round-trip byte-stable.
// Legacy answer2/answer3 sibling fields are accepted on read and folded into
// the answer list; they are never written back.

type questionJSON struct {
	ID           string          `json:"id"`
	Type         QuestionType    `json:"type"`
	Text         string          `json:"question"`
	Image        string          `json:"image,omitempty"`
	Choices      []string        `json:"choices,omitempty"`
	ChoiceImages []string        `json:"choiceImages,omitempty"`
	Answer       json.RawMessage `json:"answer"`
	Answer2      string          `json:"answer2,omitempty"`
	Answer3      string          `json:"answer3,omitempty"`
	Explanation  string          `json:"explanation,omitempty"`
}

// MarshalJSON implements json.Marshaler.
func (q Question) MarshalJSON() ([]byte, error) {
	out := questionJSON{
		ID:           q.ID,
		Type:         q.Type,
		Text:         q.Text,
		Image:        q.Image,
		Choices:      q.Choices,
		ChoiceImages: q.ChoiceImages,
		Explanation:  q.Explanation,
	}
	var answer any
	switch q.Type {
	case TypeText:
		switch len(q.Accept) {
		case 0:
			answer = []string{} // draft with no answers yet
		case 1:
			answer = q.Accept[0]
		default:
			answer = []string(q.Accept)
		}
	default:
		answer = q.Answer
	}
	raw, err := json.Marshal(answer)
	if err != nil {
		return nil, err
	}
	out.Answer = raw
	return json.Marshal(out)
}

// UnmarshalJSON implements json.Unmarshaler.
func (q *Question) UnmarshalJSON(data []byte) error {
	var in questionJSON
	if err := json.Unmarshal(data, &in); err != nil {
		return err
	}
	*q = Question{
		ID:           in.ID,
		Type:         in.Type,
		Text:         in.Text,
		Image:        in.Image,
		Choices:      in.Choices,
		ChoiceImages: in.ChoiceImages,
		Explanation:  in.Explanation,
	}
	switch in.Type {
	case TypeText:
		accept, err := parseAnswerList(in.Answer)
		if err != nil {
			return fmt.Errorf("question %s: %w", in.ID, err)
		}
		for _, extra := range []string{in.Answer2, in.Answer3} {
			if s := strings.TrimSpace(extra); s != "" {
				accept = append(accept, s)
			}
		}
		q.Accept = accept
	default:
		if len(in.Answer) == 0 {
			return fmt.Errorf("question %s: missing answer", in.ID)
		}
		if err := json.Unmarshal(in.Answer, &q.Answer); err != nil {
			return fmt.Errorf("question %s: answer must be a choice index: %w", in.ID, err)
		}
	}
	return nil
}

// parseAnswerList reads a text answer: a plain string, or an array whose
// elements are strings (nested arrays are flattened one level).
func parseAnswerList(raw json.RawMessage) (AnswerList, error) {
	if len(raw) == 0 {
		return nil, fmt.Errorf("missing answer")
	}
	var single string
	if err := json.Unmarshal(raw, &single); err == nil {
		return AnswerList{single}, nil
	}
	var items []json.RawMessage
	if err := json.Unmarshal(raw, &items); err != nil {
		return nil, fmt.Errorf("answer must be a string or an array of strings")
	}
	var list AnswerList
	for _, item := range items {
		var s string
		if err := json.Unmarshal(item, &s); err == nil {
			list = append(list, s)
			continue
		}
		var nested []string
		if err := json.Unmarshal(item, &nested); err != nil {
			return nil, fmt.Errorf("answer entries must be strings")
		}
		list = append(list, nested...)
	}
	return list, nil
}
