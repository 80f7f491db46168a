package handlers

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/sirupsen/logrus"

	"github.com/markdave123-py/Pagewise/internal/models"
	"github.com/markdave123-py/Pagewise/internal/services"
)

type StudyHandler struct {
	study  *services.StudyService
	logger *logrus.Logger
}

func NewStudyHandler(study *services.StudyService, logger *logrus.Logger) *StudyHandler {
	return &StudyHandler{study: study, logger: logger}
}

type actionRequest struct {
	Prompt string `json:"prompt"`
}

type actionResponse struct {
	Session *models.Session `json:"session"`
	Error   string          `json:"error,omitempty"`
}

// RunForm handles the three buttons of the page. Failures are stored on the
// session and shown after the redirect.
func (h *StudyHandler) RunForm(w http.ResponseWriter, r *http.Request) {
	sid, ok := sessionID(w, r)
	if !ok {
		return
	}
	kind, ok := services.ParseKind(chi.URLParam(r, "kind"))
	if !ok {
		http.NotFound(w, r)
		return
	}

	if _, err := h.study.Run(r.Context(), sid, kind, r.FormValue("prompt")); err != nil {
		h.logger.WithError(err).WithFields(logrus.Fields{"session_id": sid, "action": string(kind)}).Warn("study action failed")
	}
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

// RunAction is the JSON variant of RunForm.
func (h *StudyHandler) RunAction(w http.ResponseWriter, r *http.Request) {
	sid, ok := sessionID(w, r)
	if !ok {
		return
	}
	kind, ok := services.ParseKind(chi.URLParam(r, "kind"))
	if !ok {
		writeError(w, http.StatusNotFound, "unknown action")
		return
	}

	var req actionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		writeError(w, http.StatusBadRequest, "invalid body")
		return
	}

	sess, err := h.study.Run(r.Context(), sid, kind, req.Prompt)
	if err != nil {
		if sess == nil {
			h.logger.WithError(err).Error("study action failed")
			writeError(w, http.StatusInternalServerError, "session unavailable")
			return
		}
		writeJSON(w, actionStatus(err), actionResponse{Session: sess, Error: sess.Error})
		return
	}
	writeJSON(w, http.StatusOK, actionResponse{Session: sess})
}

func (h *StudyHandler) GetSession(w http.ResponseWriter, r *http.Request) {
	sid, ok := sessionID(w, r)
	if !ok {
		return
	}
	sess, err := h.study.Session(r.Context(), sid)
	if err != nil {
		h.logger.WithError(err).Error("failed to load session")
		writeError(w, http.StatusInternalServerError, "session unavailable")
		return
	}
	writeJSON(w, http.StatusOK, sess)
}

func actionStatus(err error) int {
	switch {
	case errors.Is(err, services.ErrNoDocument):
		return http.StatusConflict
	case errors.Is(err, services.ErrFlashcardParse):
		return http.StatusUnprocessableEntity
	default:
		return http.StatusBadGateway
	}
}
