package handler

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"quizforge/internal/grader"
	"quizforge/internal/model"
	"quizforge/internal/render"
	"quizforge/internal/session"
)

// answerRequest is the candidate answer union on the wire: a choice index or
// a free-text string.
type answerRequest struct {
	Choice *int    `json:"choice"`
	Text   *string `json:"text"`
}

func (a answerRequest) response() grader.Response {
	switch {
	case a.Choice != nil:
		return grader.Choice(*a.Choice)
	case a.Text != nil:
		return grader.Text(*a.Text)
	default:
		return grader.Response{}
	}
}

func (h *Handler) handleStartPreview(w http.ResponseWriter, r *http.Request) {
	_, doc, ok := h.loadQuiz(w, r)
	if !ok {
		return
	}
	// A preview plays the quiz as exported, so the full invariants apply.
	if err := doc.Validate(); err != nil {
		respondError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}

	p := &preview{mode: doc.Meta.DisplayType}
	ctx := r.Context()
	id := uuid.NewString()

	switch doc.Meta.DisplayType {
	case model.DisplayList:
		l, err := session.NewList(doc)
		if err != nil {
			respondError(w, http.StatusUnprocessableEntity, err.Error())
			return
		}
		p.list = l
		h.putPreview(id, p)

		questions := l.Questions()
		views := make([]render.QuestionView, len(questions))
		for i, q := range questions {
			views[i] = render.Question(ctx, q, i, len(questions))
		}
		respond(w, http.StatusCreated, map[string]any{
			"sessionId": id,
			"mode":      p.mode,
			"total":     l.Total(),
			"questions": views,
		})
	default:
		s, err := session.NewSequential(doc)
		if err != nil {
			respondError(w, http.StatusUnprocessableEntity, err.Error())
			return
		}
		p.seq = s
		h.putPreview(id, p)

		respond(w, http.StatusCreated, map[string]any{
			"sessionId": id,
			"mode":      p.mode,
			"total":     s.Total(),
			"question":  render.Question(ctx, s.Current(), s.Index(), s.Total()),
		})
	}
}

// loadPreview fetches the preview for the sessionID route parameter.
func (h *Handler) loadPreview(w http.ResponseWriter, r *http.Request) (*preview, bool) {
	p := h.getPreview(chi.URLParam(r, "sessionID"))
	if p == nil {
		respondError(w, http.StatusNotFound, "preview session not found")
		return nil, false
	}
	return p, true
}

func (h *Handler) handlePreviewAnswer(w http.ResponseWriter, r *http.Request) {
	p, ok := h.loadPreview(w, r)
	if !ok {
		return
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.seq == nil {
		respondError(w, http.StatusConflict, "not a sequential session")
		return
	}
	if p.seq.Phase() != session.PhaseAwaiting {
		respondError(w, http.StatusConflict, "current question already answered")
		return
	}
	var req answerRequest
	if err := decode(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	q := p.seq.Current()
	correct, err := p.seq.Submit(req.response())
	if errors.Is(err, session.ErrEmptyAnswer) {
		respond(w, http.StatusUnprocessableEntity, errorResponse{Error: "answer is empty", Field: "answer"})
		return
	}
	if err != nil {
		respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	respond(w, http.StatusOK, map[string]any{
		"feedback": render.Feedback(r.Context(), q, correct),
		"score":    p.seq.Score(),
	})
}

func (h *Handler) handlePreviewAdvance(w http.ResponseWriter, r *http.Request) {
	p, ok := h.loadPreview(w, r)
	if !ok {
		return
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.seq == nil {
		respondError(w, http.StatusConflict, "not a sequential session")
		return
	}
	if p.seq.Phase() != session.PhaseAnswered {
		respondError(w, http.StatusConflict, "nothing to advance from")
		return
	}

	p.seq.Advance()
	if p.seq.Phase() == session.PhaseFinished {
		respond(w, http.StatusOK, map[string]any{
			"finished": true,
			"result":   render.SequentialResult(r.Context(), p.seq, p.seq.Questions()),
		})
		return
	}
	respond(w, http.StatusOK, map[string]any{
		"finished": false,
		"question": render.Question(r.Context(), p.seq.Current(), p.seq.Index(), p.seq.Total()),
	})
}

func (h *Handler) handlePreviewRestart(w http.ResponseWriter, r *http.Request) {
	p, ok := h.loadPreview(w, r)
	if !ok {
		return
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.seq != nil {
		p.seq.Restart()
		respond(w, http.StatusOK, map[string]any{
			"question": render.Question(r.Context(), p.seq.Current(), 0, p.seq.Total()),
		})
		return
	}
	p.list.Restart()
	respond(w, http.StatusOK, map[string]bool{"ok": true})
}

func (h *Handler) handlePreviewSetAnswer(w http.ResponseWriter, r *http.Request) {
	p, ok := h.loadPreview(w, r)
	if !ok {
		return
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.list == nil {
		respondError(w, http.StatusConflict, "not a list session")
		return
	}
	if p.list.Graded() {
		respondError(w, http.StatusConflict, "session already graded")
		return
	}
	// Unknown ids must be rejected before they reach the session.
	questionID := chi.URLParam(r, "questionID")
	known := false
	for _, q := range p.list.Questions() {
		if q.ID == questionID {
			known = true
			break
		}
	}
	if !known {
		respondError(w, http.StatusNotFound, "question not found")
		return
	}
	var req answerRequest
	if err := decode(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	p.list.Set(questionID, req.response())
	respond(w, http.StatusOK, map[string]any{
		"unanswered": p.list.Unanswered(),
	})
}

func (h *Handler) handlePreviewGrade(w http.ResponseWriter, r *http.Request) {
	p, ok := h.loadPreview(w, r)
	if !ok {
		return
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.list == nil {
		respondError(w, http.StatusConflict, "not a list session")
		return
	}
	var req struct {
		ConfirmGaps bool `json:"confirmGaps"`
	}
	if err := decode(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	res, err := p.list.Grade(req.ConfirmGaps)
	var gaps *session.UnansweredError
	switch {
	case errors.As(err, &gaps):
		respond(w, http.StatusConflict, map[string]any{
			"unanswered":           gaps.Count,
			"confirmationRequired": true,
		})
		return
	case errors.Is(err, session.ErrAlreadyGraded):
		respond(w, http.StatusOK, map[string]any{
			"alreadyGraded": true,
			"result":        render.ListResult(r.Context(), res, p.list.Questions()),
		})
		return
	case err != nil:
		respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	respond(w, http.StatusOK, map[string]any{
		"result": render.ListResult(r.Context(), res, p.list.Questions()),
	})
}

func (h *Handler) handlePreviewResult(w http.ResponseWriter, r *http.Request) {
	p, ok := h.loadPreview(w, r)
	if !ok {
		return
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.seq != nil {
		if p.seq.Phase() != session.PhaseFinished {
			respondError(w, http.StatusConflict, "session not finished")
			return
		}
		respond(w, http.StatusOK, render.SequentialResult(r.Context(), p.seq, p.seq.Questions()))
		return
	}
	res, err := p.list.Result()
	if errors.Is(err, session.ErrNotGraded) {
		respondError(w, http.StatusConflict, "session not graded yet")
		return
	}
	if err != nil {
		respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	respond(w, http.StatusOK, render.ListResult(r.Context(), res, p.list.Questions()))
}
