package importer

import (
	"reflect"
	"strings"
	"testing"

	"quizforge/internal/model"
)

func TestParseSampleCSV(t *testing.T) {
	res, err := Parse(strings.NewReader(SampleCSV()))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if len(res.Errors) != 0 {
		t.Fatalf("sample csv produced errors: %v", res.Errors)
	}

	s := res.Summary()
	if s.Total != 6 || s.Choice != 3 || s.Text != 3 || s.MultiAnswer != 3 {
		t.Errorf("summary = %+v", s)
	}

	for _, q := range res.Questions {
		if err := q.Validate(); err != nil {
			t.Errorf("imported question invalid: %v", err)
		}
	}
}

func TestParseMultiAnswerRow(t *testing.T) {
	in := "type,question,answer,answer2,answer3,explanation\n" +
		"text,日本の首都は?,東京,tokyo,トウキョウ,表記ゆれ対応\n"
	res, err := Parse(strings.NewReader(in))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	q := res.Questions[0]
	want := model.AnswerList{"東京", "tokyo", "トウキョウ"}
	if !reflect.DeepEqual(q.Accept, want) {
		t.Errorf("Accept = %v, want %v", q.Accept, want)
	}
}

func TestParseStopsAlternatesAtFirstBlank(t *testing.T) {
	in := "type,question,answer,answer2,answer3\n" +
		"text,Q,first,,third\n"
	res, err := Parse(strings.NewReader(in))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	want := model.AnswerList{"first"}
	if !reflect.DeepEqual(res.Questions[0].Accept, want) {
		t.Errorf("Accept = %v, want %v", res.Questions[0].Accept, want)
	}
}

func TestParseMissingColumns(t *testing.T) {
	in := "question,choice1\nQ,a\n"
	_, err := Parse(strings.NewReader(in))
	if err == nil || !strings.Contains(err.Error(), "type") || !strings.Contains(err.Error(), "answer") {
		t.Errorf("Parse = %v, want missing-column error naming type and answer", err)
	}
}

func TestParseBadRowsReportLineNumbers(t *testing.T) {
	in := "type,question,choice1,choice2,choice3,choice4,answer\n" +
		"choice,Good,a,b,c,d,2\n" +
		"choice,Bad answer,a,b,c,d,nine\n" +
		"essay,Bad type,,,,,x\n" +
		"choice,Missing choice,a,b,,d,0\n"
	res, err := Parse(strings.NewReader(in))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if len(res.Questions) != 1 {
		t.Errorf("parsed %d questions, want 1", len(res.Questions))
	}
	if len(res.Errors) != 3 {
		t.Fatalf("got %d errors, want 3: %v", len(res.Errors), res.Errors)
	}
	wantLines := []int{3, 4, 5}
	for i, re := range res.Errors {
		if re.Line != wantLines[i] {
			t.Errorf("error %d at line %d, want %d", i, re.Line, wantLines[i])
		}
	}
}

func TestParseQuotedFields(t *testing.T) {
	in := "type,question,answer\n" +
		`text,"What, exactly, is a comma?","it's ""this"""` + "\n"
	res, err := Parse(strings.NewReader(in))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	q := res.Questions[0]
	if q.Text != "What, exactly, is a comma?" {
		t.Errorf("Text = %q", q.Text)
	}
	if q.Accept.Canonical() != `it's "this"` {
		t.Errorf("Answer = %q", q.Accept.Canonical())
	}
}

func TestParseEmptyFile(t *testing.T) {
	if _, err := Parse(strings.NewReader("")); err == nil {
		t.Error("expected error for empty file")
	}
	if _, err := Parse(strings.NewReader("type,question,answer\n")); err == nil {
		t.Error("expected error for header-only file")
	}
}

func TestApply(t *testing.T) {
	imported := []model.Question{{ID: "new1", Type: model.TypeText, Text: "Q", Accept: model.AnswerList{"a"}}}

	doc := model.SampleDocument()
	Apply(doc, imported, Replace)
	if len(doc.Questions) != 1 || doc.Questions[0].ID != "new1" {
		t.Errorf("Replace left %d questions", len(doc.Questions))
	}

	doc = model.SampleDocument()
	before := len(doc.Questions)
	Apply(doc, imported, Append)
	if len(doc.Questions) != before+1 {
		t.Errorf("Append left %d questions, want %d", len(doc.Questions), before+1)
	}
	if doc.Questions[before].ID != "new1" {
		t.Error("Append did not place imported questions last")
	}
}
