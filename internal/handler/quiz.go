package handler

import (
	"fmt"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"quizforge/internal/editor"
	"quizforge/internal/export"
	"quizforge/internal/i18n"
	"quizforge/internal/importer"
	"quizforge/internal/model"
	"quizforge/internal/store"
)

// handleGetState reports the builder state the frontend restores on load:
// which quiz was open last and the preferred UI language.
func (h *Handler) handleGetState(w http.ResponseWriter, r *http.Request) {
	last, err := h.store.LastOpenedQuiz()
	if err != nil {
		respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	lang, err := h.store.GetMetadata(store.MetaDefaultLanguage)
	if err != nil {
		respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	respond(w, http.StatusOK, map[string]string{
		"lastOpenedQuiz":  last,
		"defaultLanguage": lang,
	})
}

func (h *Handler) handleSetState(w http.ResponseWriter, r *http.Request) {
	var req struct {
		DefaultLanguage string `json:"defaultLanguage"`
	}
	if err := decode(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if !i18n.IsSupported(req.DefaultLanguage) {
		respond(w, http.StatusUnprocessableEntity, errorResponse{Error: "unsupported language", Field: "defaultLanguage"})
		return
	}
	if err := h.store.SetMetadata(store.MetaDefaultLanguage, req.DefaultLanguage); err != nil {
		respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	respond(w, http.StatusOK, map[string]bool{"ok": true})
}

func (h *Handler) handleListQuizzes(w http.ResponseWriter, r *http.Request) {
	infos, err := h.store.ListQuizzes()
	if err != nil {
		respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if infos == nil {
		infos = []model.QuizInfo{}
	}
	respond(w, http.StatusOK, infos)
}

func (h *Handler) handleCreateQuiz(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Title  string `json:"title"`
		Sample bool   `json:"sample"`
	}
	if err := decode(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	doc := model.NewDocument(req.Title)
	if req.Sample {
		doc = model.SampleDocument()
		if req.Title != "" {
			doc.Meta.Title = req.Title
		}
	}
	if doc.Meta.Title == "" {
		doc.Meta.Title = "Untitled Quiz"
	}

	id, err := h.store.CreateQuiz(doc)
	if err != nil {
		respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	slog.Info("created quiz", "id", id, "title", doc.Meta.Title)
	respond(w, http.StatusCreated, map[string]any{"id": id, "document": doc})
}

func (h *Handler) handleGetQuiz(w http.ResponseWriter, r *http.Request) {
	id, doc, ok := h.loadQuiz(w, r)
	if !ok {
		return
	}
	_ = h.store.SetLastOpenedQuiz(id)
	respond(w, http.StatusOK, doc)
}

func (h *Handler) handleUpdateMeta(w http.ResponseWriter, r *http.Request) {
	id, doc, ok := h.loadQuiz(w, r)
	if !ok {
		return
	}
	var req model.Meta
	if err := decode(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Title == "" {
		respond(w, http.StatusUnprocessableEntity, errorResponse{Error: "title is required", Field: "title"})
		return
	}
	switch req.DisplayType {
	case model.DisplaySequential, model.DisplayList:
	default:
		respond(w, http.StatusUnprocessableEntity, errorResponse{Error: "unknown display type", Field: "displayType"})
		return
	}

	doc.Meta = req
	if err := h.store.SaveQuiz(id, doc); err != nil {
		respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	respond(w, http.StatusOK, doc.Meta)
}

func (h *Handler) handleDeleteQuiz(w http.ResponseWriter, r *http.Request) {
	id, _, ok := h.loadQuiz(w, r)
	if !ok {
		return
	}
	if err := h.store.DeleteQuiz(id); err != nil {
		respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	slog.Info("deleted quiz", "id", id)
	respond(w, http.StatusOK, map[string]bool{"ok": true})
}

func (h *Handler) handleAddQuestion(w http.ResponseWriter, r *http.Request) {
	id, doc, ok := h.loadQuiz(w, r)
	if !ok {
		return
	}
	var req struct {
		Type model.QuestionType `json:"type"`
	}
	if err := decode(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Type != model.TypeChoice && req.Type != model.TypeText {
		respond(w, http.StatusUnprocessableEntity, errorResponse{Error: "unknown question type", Field: "type"})
		return
	}

	q := editor.New(doc).Add(req.Type)
	if err := h.store.SaveQuiz(id, doc); err != nil {
		respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	respond(w, http.StatusCreated, q)
}

func (h *Handler) handleSaveQuestion(w http.ResponseWriter, r *http.Request) {
	id, doc, ok := h.loadQuiz(w, r)
	if !ok {
		return
	}
	questionID := chi.URLParam(r, "questionID")
	if doc.IndexOf(questionID) < 0 {
		respondError(w, http.StatusNotFound, "question not found")
		return
	}
	var q model.Question
	if err := decode(r, &q); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if err := editor.New(doc).Save(questionID, q); err != nil {
		respondEditError(w, err)
		return
	}
	if err := h.store.SaveQuiz(id, doc); err != nil {
		respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	saved, _ := doc.Find(questionID)
	respond(w, http.StatusOK, saved)
}

func (h *Handler) handleDuplicateQuestion(w http.ResponseWriter, r *http.Request) {
	id, doc, ok := h.loadQuiz(w, r)
	if !ok {
		return
	}
	pos, ok := posParam(w, r, doc)
	if !ok {
		return
	}

	dup := editor.New(doc).Duplicate(pos)
	if err := h.store.SaveQuiz(id, doc); err != nil {
		respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	respond(w, http.StatusCreated, dup)
}

func (h *Handler) handleMoveQuestion(w http.ResponseWriter, r *http.Request) {
	id, doc, ok := h.loadQuiz(w, r)
	if !ok {
		return
	}
	pos, ok := posParam(w, r, doc)
	if !ok {
		return
	}
	var req struct {
		Direction string `json:"direction"`
	}
	if err := decode(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	ed := editor.New(doc)
	switch req.Direction {
	case "up":
		ed.MoveUp(pos)
	case "down":
		ed.MoveDown(pos)
	default:
		respond(w, http.StatusUnprocessableEntity, errorResponse{Error: "direction must be up or down", Field: "direction"})
		return
	}
	if err := h.store.SaveQuiz(id, doc); err != nil {
		respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	respond(w, http.StatusOK, doc)
}

func (h *Handler) handleDeleteQuestion(w http.ResponseWriter, r *http.Request) {
	id, doc, ok := h.loadQuiz(w, r)
	if !ok {
		return
	}
	pos, ok := posParam(w, r, doc)
	if !ok {
		return
	}

	editor.New(doc).Delete(pos)
	if err := h.store.SaveQuiz(id, doc); err != nil {
		respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	respond(w, http.StatusOK, doc)
}

func (h *Handler) handleImportCSV(w http.ResponseWriter, r *http.Request) {
	id, doc, ok := h.loadQuiz(w, r)
	if !ok {
		return
	}
	if err := r.ParseMultipartForm(10 << 20); err != nil {
		respondError(w, http.StatusBadRequest, "file too large")
		return
	}
	file, _, err := r.FormFile("file")
	if err != nil {
		respondError(w, http.StatusBadRequest, "no file uploaded")
		return
	}
	defer file.Close()

	res, err := importer.Parse(file)
	if err != nil {
		respondError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}

	mode := importer.Append
	if r.FormValue("mode") == "replace" {
		mode = importer.Replace
	}
	importer.Apply(doc, res.Questions, mode)
	if err := h.store.SaveQuiz(id, doc); err != nil {
		respondError(w, http.StatusInternalServerError, err.Error())
		return
	}

	rowErrors := make([]string, 0, len(res.Errors))
	for _, re := range res.Errors {
		rowErrors = append(rowErrors, re.Error())
	}
	slog.Info("imported csv", "quiz", id, "imported", len(res.Questions), "failed", len(res.Errors))
	respond(w, http.StatusOK, map[string]any{
		"summary":   res.Summary(),
		"rowErrors": rowErrors,
		"document":  doc,
	})
}

func (h *Handler) handleSampleCSV(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="quiz-sample.csv"`)
	fmt.Fprint(w, importer.SampleCSV())
}

func (h *Handler) handleExportBundle(w http.ResponseWriter, r *http.Request) {
	_, doc, ok := h.loadQuiz(w, r)
	if !ok {
		return
	}
	out, err := export.Bundle(doc)
	if err != nil {
		respondError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="quiz.html"`)
	w.Write(out)
}

func (h *Handler) handleDraft(w http.ResponseWriter, r *http.Request) {
	if h.llm == nil {
		respondError(w, http.StatusServiceUnavailable, "question drafting is not configured")
		return
	}
	var req struct {
		Topic string             `json:"topic"`
		Count int                `json:"count"`
		Type  model.QuestionType `json:"type"`
	}
	if err := decode(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Topic == "" {
		respond(w, http.StatusUnprocessableEntity, errorResponse{Error: "topic is required", Field: "topic"})
		return
	}
	if req.Count < 1 || req.Count > 20 {
		respond(w, http.StatusUnprocessableEntity, errorResponse{Error: "count must be 1 to 20", Field: "count"})
		return
	}
	if req.Type != model.TypeChoice && req.Type != model.TypeText {
		respond(w, http.StatusUnprocessableEntity, errorResponse{Error: "unknown question type", Field: "type"})
		return
	}

	questions, err := h.llm.Draft(r.Context(), req.Topic, req.Count, req.Type)
	if err != nil {
		slog.Error("draft failed", "error", err)
		respondError(w, http.StatusBadGateway, "drafting failed: "+err.Error())
		return
	}
	respond(w, http.StatusOK, questions)
}
