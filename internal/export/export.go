// Package export turns a quiz document into a single standalone HTML file:
// the serialized document embedded verbatim, the playback runtime for the
// quiz's display type, and the stylesheet, with no external references. The
// output can be dropped into any page or opened directly in a browser.
package export

import (
	"bytes"
	"embed"
	"encoding/json"
	"fmt"
	"html/template"
	"io"

	"quizforge/internal/model"
)

//go:embed templates
var templateFS embed.FS

var bundleTmpl = template.Must(template.ParseFS(templateFS, "templates/bundle.html.tmpl"))

type bundleData struct {
	Title    string
	QuizData template.JS
	Runtime  template.JS
	Style    template.CSS
}

// WriteBundle writes the standalone HTML bundle for the document. The
// document is validated first; exporting a broken quiz is refused.
func WriteBundle(w io.Writer, doc *model.QuizDocument) error {
	if err := doc.Validate(); err != nil {
		return fmt.Errorf("validate quiz: %w", err)
	}
	if len(doc.Questions) == 0 {
		return fmt.Errorf("quiz has no questions")
	}

	quizJSON, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return fmt.Errorf("serialize quiz: %w", err)
	}

	runtime := "templates/sequential.js"
	if doc.Meta.DisplayType == model.DisplayList {
		runtime = "templates/list.js"
	}
	runtimeJS, err := templateFS.ReadFile(runtime)
	if err != nil {
		return fmt.Errorf("read runtime: %w", err)
	}
	style, err := templateFS.ReadFile("templates/quiz.css")
	if err != nil {
		return fmt.Errorf("read stylesheet: %w", err)
	}

	var buf bytes.Buffer
	err = bundleTmpl.Execute(&buf, bundleData{
		Title:    doc.Meta.Title,
		QuizData: template.JS(quizJSON),
		Runtime:  template.JS(runtimeJS),
		Style:    template.CSS(style),
	})
	if err != nil {
		return fmt.Errorf("render bundle: %w", err)
	}
	_, err = w.Write(buf.Bytes())
	return err
}

// Bundle renders the bundle into memory.
func Bundle(doc *model.QuizDocument) ([]byte, error) {
	var buf bytes.Buffer
	if err := WriteBundle(&buf, doc); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
