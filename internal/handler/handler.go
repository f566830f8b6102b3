// Package handler exposes the quiz builder as a JSON API: library CRUD,
// question editing, CSV import, bundle export, preview sessions and account
// management. Rendering is the browser's job; handlers exchange view models
// and documents, never markup.
package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"sync"

	"github.com/go-chi/chi/v5"

	"quizforge/internal/editor"
	"quizforge/internal/llm"
	"quizforge/internal/model"
	"quizforge/internal/session"
	"quizforge/internal/store"
)

// Config holds handler settings.
type Config struct {
	BasePath      string
	SecureCookies bool
}

// Handler holds shared dependencies for HTTP handlers.
type Handler struct {
	store  *store.Store
	llm    *llm.Client
	config Config

	mu       sync.Mutex
	previews map[string]*preview
}

// New creates a new Handler. The llm client may be nil; drafting endpoints
// then report the feature as unavailable.
func New(s *store.Store, l *llm.Client, cfg Config) *Handler {
	return &Handler{
		store:    s,
		llm:      l,
		config:   cfg,
		previews: make(map[string]*preview),
	}
}

// Routes registers all HTTP routes.
func (h *Handler) Routes(r chi.Router) {
	r.Post("/api/login", h.handleLogin)
	r.Post("/api/logout", h.handleLogout)

	r.Group(func(r chi.Router) {
		r.Use(h.requireAuth)

		r.Get("/api/state", h.handleGetState)
		r.Put("/api/state", h.handleSetState)

		r.Get("/api/quizzes", h.handleListQuizzes)
		r.Post("/api/quizzes", h.handleCreateQuiz)
		r.Get("/api/quizzes/{quizID}", h.handleGetQuiz)
		r.Put("/api/quizzes/{quizID}/meta", h.handleUpdateMeta)
		r.Delete("/api/quizzes/{quizID}", h.handleDeleteQuiz)

		r.Post("/api/quizzes/{quizID}/questions", h.handleAddQuestion)
		r.Put("/api/quizzes/{quizID}/questions/{questionID}", h.handleSaveQuestion)
		r.Post("/api/quizzes/{quizID}/questions/{pos}/duplicate", h.handleDuplicateQuestion)
		r.Post("/api/quizzes/{quizID}/questions/{pos}/move", h.handleMoveQuestion)
		r.Delete("/api/quizzes/{quizID}/questions/{pos}", h.handleDeleteQuestion)

		r.Post("/api/quizzes/{quizID}/import", h.handleImportCSV)
		r.Get("/api/sample.csv", h.handleSampleCSV)
		r.Get("/api/quizzes/{quizID}/export", h.handleExportBundle)
		r.Post("/api/draft", h.handleDraft)

		r.Post("/api/quizzes/{quizID}/preview", h.handleStartPreview)
		r.Post("/api/preview/{sessionID}/answer", h.handlePreviewAnswer)
		r.Post("/api/preview/{sessionID}/advance", h.handlePreviewAdvance)
		r.Post("/api/preview/{sessionID}/restart", h.handlePreviewRestart)
		r.Put("/api/preview/{sessionID}/answers/{questionID}", h.handlePreviewSetAnswer)
		r.Post("/api/preview/{sessionID}/grade", h.handlePreviewGrade)
		r.Get("/api/preview/{sessionID}/result", h.handlePreviewResult)

		r.Group(func(r chi.Router) {
			r.Use(requireRole(model.RoleAdmin))
			r.Get("/api/users", h.handleListUsers)
			r.Post("/api/users", h.handleCreateUser)
			r.Post("/api/users/{userID}/toggle", h.handleToggleUserActive)
		})
	})
}

// preview is one in-memory playback attempt. Exactly one of seq/list is set,
// matching the quiz's display type at start time. The sessions are not safe
// for concurrent use, so every handler holds mu across its whole
// check-then-act span; two requests racing the same session serialize here.
type preview struct {
	mode model.DisplayType
	mu   sync.Mutex
	seq  *session.Sequential
	list *session.List
}

func (h *Handler) putPreview(id string, p *preview) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.previews[id] = p
}

func (h *Handler) getPreview(id string) *preview {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.previews[id]
}

func respond(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("encode response", "error", err)
	}
}

type errorResponse struct {
	Error string `json:"error"`
	Field string `json:"field,omitempty"`
}

func respondError(w http.ResponseWriter, status int, msg string) {
	respond(w, status, errorResponse{Error: msg})
}

// respondEditError maps editor validation failures to a 422 carrying the
// offending field; anything else is an internal error.
func respondEditError(w http.ResponseWriter, err error) {
	var fe *editor.FieldError
	if errors.As(err, &fe) {
		respond(w, http.StatusUnprocessableEntity, errorResponse{Error: fe.Reason, Field: fe.Field})
		return
	}
	respondError(w, http.StatusInternalServerError, err.Error())
}

func decode(r *http.Request, v any) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	return dec.Decode(v)
}

// loadQuiz fetches the document for the quizID route parameter, writing the
// error response itself when the quiz cannot be loaded.
func (h *Handler) loadQuiz(w http.ResponseWriter, r *http.Request) (string, *model.QuizDocument, bool) {
	id := chi.URLParam(r, "quizID")
	doc, err := h.store.GetQuiz(id)
	if err != nil {
		respondError(w, http.StatusInternalServerError, err.Error())
		return "", nil, false
	}
	if doc == nil {
		respondError(w, http.StatusNotFound, "quiz not found")
		return "", nil, false
	}
	return id, doc, true
}

// posParam parses the pos route parameter and bounds-checks it against the
// document, so editor calls cannot be driven out of range by the client.
func posParam(w http.ResponseWriter, r *http.Request, doc *model.QuizDocument) (int, bool) {
	pos, err := strconv.Atoi(chi.URLParam(r, "pos"))
	if err != nil || pos < 0 || pos >= len(doc.Questions) {
		respondError(w, http.StatusNotFound, "question position out of range")
		return 0, false
	}
	return pos, true
}
