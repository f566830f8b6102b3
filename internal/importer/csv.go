// Package importer loads questions from CSV files. The expected columns are
// type, question, choice1..choice4, answer, answer2..answerN and explanation;
// type, question and answer are required. Rows that fail to parse are
// collected with their line numbers instead of aborting the whole file, so
// the caller can show the author what to fix.
package importer

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/google/uuid"

	"quizforge/internal/model"
)

// Mode selects what happens to the questions already in the document.
type Mode int

const (
	// Replace discards the existing questions.
	Replace Mode = iota
	// Append keeps them and adds the imported ones after.
	Append
)

// RowError is a parse failure on one data row.
type RowError struct {
	Line int
	Err  error
}

func (e RowError) Error() string {
	return fmt.Sprintf("line %d: %v", e.Line, e.Err)
}

// Result is the outcome of parsing one CSV file. Questions holds the rows
// that parsed cleanly; Errors the ones that did not.
type Result struct {
	Questions []model.Question
	Errors    []RowError
}

// Summary breaks the imported questions down by kind.
type Summary struct {
	Total       int `json:"total"`
	Choice      int `json:"choice"`
	Text        int `json:"text"`
	MultiAnswer int `json:"multiAnswer"`
	Failed      int `json:"failed"`
}

// Summary tallies the parsed questions.
func (r *Result) Summary() Summary {
	s := Summary{Total: len(r.Questions), Failed: len(r.Errors)}
	for _, q := range r.Questions {
		switch q.Type {
		case model.TypeChoice:
			s.Choice++
		case model.TypeText:
			s.Text++
			if len(q.Accept) > 1 {
				s.MultiAnswer++
			}
		}
	}
	return s
}

var requiredColumns = []string{"type", "question", "answer"}

// Parse reads a CSV file into questions. A missing required column or an
// unreadable file is a hard error; individual bad rows are reported in the
// result with 1-based line numbers (the header is line 1).
func Parse(r io.Reader) (*Result, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if err == io.EOF {
		return nil, fmt.Errorf("csv file is empty")
	}
	if err != nil {
		return nil, fmt.Errorf("read csv header: %w", err)
	}
	cols := make(map[string]int, len(header))
	for i, h := range header {
		cols[strings.ToLower(strings.TrimSpace(h))] = i
	}
	var missing []string
	for _, c := range requiredColumns {
		if _, ok := cols[c]; !ok {
			missing = append(missing, c)
		}
	}
	if len(missing) > 0 {
		return nil, fmt.Errorf("missing required columns: %s", strings.Join(missing, ", "))
	}

	res := &Result{}
	for line := 2; ; line++ {
		record, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			res.Errors = append(res.Errors, RowError{Line: line, Err: err})
			continue
		}
		if blank(record) {
			continue
		}
		row := func(name string) string {
			i, ok := cols[name]
			if !ok || i >= len(record) {
				return ""
			}
			return strings.TrimSpace(record[i])
		}
		q, err := parseRow(row)
		if err != nil {
			res.Errors = append(res.Errors, RowError{Line: line, Err: err})
			continue
		}
		res.Questions = append(res.Questions, q)
	}
	if len(res.Questions) == 0 && len(res.Errors) == 0 {
		return nil, fmt.Errorf("csv file has no question rows")
	}
	return res, nil
}

func parseRow(row func(string) string) (model.Question, error) {
	q := model.Question{
		ID:          uuid.NewString(),
		Text:        row("question"),
		Explanation: row("explanation"),
	}
	switch strings.ToLower(row("type")) {
	case "choice":
		q.Type = model.TypeChoice
	case "text":
		q.Type = model.TypeText
	default:
		return q, fmt.Errorf("unsupported type %q (use choice or text)", row("type"))
	}
	if q.Text == "" {
		return q, fmt.Errorf("question column is empty")
	}

	if q.Type == model.TypeChoice {
		q.Choices = make([]string, model.NumChoices)
		for i := range q.Choices {
			q.Choices[i] = row(fmt.Sprintf("choice%d", i+1))
			if q.Choices[i] == "" {
				return q, fmt.Errorf("choice%d is empty (choice questions need choice1..choice%d)", i+1, model.NumChoices)
			}
		}
		idx, err := strconv.Atoi(row("answer"))
		if err != nil || idx < 0 || idx >= model.NumChoices {
			return q, fmt.Errorf("choice answer must be a number from 0 to %d, got %q", model.NumChoices-1, row("answer"))
		}
		q.Answer = idx
		return q, nil
	}

	if row("answer") == "" {
		return q, fmt.Errorf("text answer column is empty")
	}
	q.Accept = model.AnswerList{row("answer")}
	// answer2, answer3, ... are collected until the first absent column.
	for n := 2; ; n++ {
		alt := row(fmt.Sprintf("answer%d", n))
		if alt == "" {
			break
		}
		q.Accept = append(q.Accept, alt)
	}
	return q, nil
}

func blank(record []string) bool {
	for _, f := range record {
		if strings.TrimSpace(f) != "" {
			return false
		}
	}
	return true
}

// Apply merges imported questions into the document per the chosen mode.
func Apply(doc *model.QuizDocument, questions []model.Question, mode Mode) {
	if mode == Replace {
		doc.Questions = questions
		return
	}
	doc.Questions = append(doc.Questions, questions...)
}

// SampleCSV returns a downloadable example file covering both question
// types, including multi-answer text rows.
func SampleCSV() string {
	return `type,question,choice1,choice2,choice3,choice4,answer,answer2,answer3,explanation
choice,日本で一番高い山は?,富士山,北岳,槍ヶ岳,立山,0,,,富士山は標高3776mで日本一高い山です。
choice,東京タワーの高さは?,333m,444m,555m,666m,0,,,東京タワーは333mです。
text,日本の首都は?,,,,,東京,tokyo,トウキョウ,表記ゆれに対応しています。
text,What is the capital of Japan?,,,,,Tokyo,tokyo,TOKYO,大文字小文字を区別しません。
text,円周率は?,,,,,3.14,3.141592,π,複数の答え方に対応しています。
choice,1+1=?,1,2,3,4,1,,,
`
}
