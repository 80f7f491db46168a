package handlers

import (
	"errors"
	"net/http"

	"github.com/sirupsen/logrus"

	"github.com/markdave123-py/Pagewise/internal/models"
	"github.com/markdave123-py/Pagewise/internal/services"
)

type DocumentHandler struct {
	study    *services.StudyService
	docs     *services.DocumentService
	maxBytes int64
	logger   *logrus.Logger
}

// NewDocumentHandler serves uploads; maxBytes bounds the uploaded file.
func NewDocumentHandler(study *services.StudyService, docs *services.DocumentService, maxBytes int64, logger *logrus.Logger) *DocumentHandler {
	return &DocumentHandler{study: study, docs: docs, maxBytes: maxBytes, logger: logger}
}

type uploadResponse struct {
	Document *models.Document `json:"document"`
	Session  *models.Session  `json:"session"`
}

// UploadForm accepts the browser form and redirects back to the page, where
// the outcome is shown as a banner.
func (h *DocumentHandler) UploadForm(w http.ResponseWriter, r *http.Request) {
	sid, ok := sessionID(w, r)
	if !ok {
		return
	}

	if sess, _, err := h.upload(w, r, sid); err != nil {
		h.logger.WithError(err).WithField("session_id", sid).Warn("upload rejected")
		// rejections before the study service saw the file are not on the session yet
		if sess == nil && (errors.Is(err, errInvalidUpload) || errors.Is(err, services.ErrTooLarge)) {
			if err := h.study.SetError(r.Context(), sid, "Upload failed: "+err.Error()); err != nil {
				h.logger.WithError(err).Error("failed to save session")
			}
		}
	}
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

// UploadDocument is the JSON variant of UploadForm.
func (h *DocumentHandler) UploadDocument(w http.ResponseWriter, r *http.Request) {
	sid, ok := sessionID(w, r)
	if !ok {
		return
	}

	sess, doc, err := h.upload(w, r, sid)
	if err != nil {
		writeError(w, uploadStatus(err), err.Error())
		return
	}
	writeJSON(w, http.StatusCreated, uploadResponse{Document: doc, Session: sess})
}

func (h *DocumentHandler) GetDocuments(w http.ResponseWriter, r *http.Request) {
	documents, err := h.docs.List(r.Context())
	if err != nil {
		h.logger.WithError(err).Error("failed to list documents")
		writeError(w, http.StatusInternalServerError, "failed to list documents")
		return
	}
	if documents == nil {
		documents = []models.Document{}
	}
	writeJSON(w, http.StatusOK, documents)
}

// upload stores the multipart "file" field. Bodies cut off by the size limit
// are reported as ErrTooLarge; files just over the limit are caught by the
// document service.
func (h *DocumentHandler) upload(w http.ResponseWriter, r *http.Request, sid string) (*models.Session, *models.Document, error) {
	// leave room for multipart framing around the file
	r.Body = http.MaxBytesReader(w, r.Body, h.maxBytes+1<<20)
	if err := r.ParseMultipartForm(32 << 20); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return nil, nil, services.ErrTooLarge
		}
		return nil, nil, errInvalidUpload
	}
	file, header, err := r.FormFile("file")
	if err != nil {
		return nil, nil, errInvalidUpload
	}
	defer file.Close()

	return h.study.Upload(r.Context(), sid, header.Filename, header.Header.Get("Content-Type"), file)
}

var errInvalidUpload = errors.New("invalid file")

func uploadStatus(err error) int {
	switch {
	case errors.Is(err, errInvalidUpload):
		return http.StatusBadRequest
	case errors.Is(err, services.ErrTooLarge):
		return http.StatusRequestEntityTooLarge
	case errors.Is(err, services.ErrNotPDF), errors.Is(err, services.ErrEmptyFile):
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}
