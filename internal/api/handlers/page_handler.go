package handlers

import (
	"bytes"
	"net/http"

	"github.com/sirupsen/logrus"

	"github.com/markdave123-py/Pagewise/internal/api/views"
	"github.com/markdave123-py/Pagewise/internal/services"
)

type PageHandler struct {
	study    *services.StudyService
	renderer *views.Renderer
	maxBytes int64
	logger   *logrus.Logger
}

func NewPageHandler(study *services.StudyService, renderer *views.Renderer, maxBytes int64, logger *logrus.Logger) *PageHandler {
	return &PageHandler{study: study, renderer: renderer, maxBytes: maxBytes, logger: logger}
}

// Index renders the study page for the caller's session.
func (h *PageHandler) Index(w http.ResponseWriter, r *http.Request) {
	sid, ok := sessionID(w, r)
	if !ok {
		return
	}

	sess, err := h.study.TakeMessages(r.Context(), sid)
	if err != nil {
		h.logger.WithError(err).Error("failed to load session")
		http.Error(w, "session unavailable", http.StatusInternalServerError)
		return
	}

	prompts := views.Prompts{
		Summary:    services.DefaultPrompt(services.KindSummary),
		Quiz:       services.DefaultPrompt(services.KindQuiz),
		Flashcards: services.DefaultPrompt(services.KindFlashcards),
	}
	page, err := h.renderer.NewPage(sess, prompts, h.maxBytes)
	if err != nil {
		h.logger.WithError(err).Error("failed to build page")
		http.Error(w, "render failed", http.StatusInternalServerError)
		return
	}

	var buf bytes.Buffer
	if err := h.renderer.Render(&buf, page); err != nil {
		h.logger.WithError(err).Error("failed to render page")
		http.Error(w, "render failed", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = buf.WriteTo(w)
}
