package services

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/markdave123-py/Pagewise/internal/core"
	"github.com/markdave123-py/Pagewise/internal/models"
)

var (
	ErrNotPDF    = errors.New("only PDF files are accepted")
	ErrEmptyFile = errors.New("uploaded file is empty")
	ErrTooLarge  = errors.New("uploaded file is too large")
)

type DocumentService struct {
	db     core.DbClient
	local  core.ObjectClient
	mirror core.ObjectClient
	pages  core.PageCounter
	limit  int64
	logger *logrus.Logger
}

// NewDocumentService wires the upload path. mirror may be nil and a
// non-positive limit disables the size check.
func NewDocumentService(db core.DbClient, local, mirror core.ObjectClient, pages core.PageCounter, limit int64, logger *logrus.Logger) *DocumentService {
	return &DocumentService{db: db, local: local, mirror: mirror, pages: pages, limit: limit, logger: logger}
}

// Upload accepts any .pdf name and writes the bytes verbatim under the
// original base name. A previous upload with the same name is replaced.
func (s *DocumentService) Upload(ctx context.Context, filename, contentType string, r io.Reader) (*models.Document, error) {
	name := cleanFilename(filename)
	if !strings.HasSuffix(strings.ToLower(name), ".pdf") {
		return nil, ErrNotPDF
	}

	if s.limit > 0 {
		r = io.LimitReader(r, s.limit+1)
	}
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read upload: %w", err)
	}
	if s.limit > 0 && int64(len(data)) > s.limit {
		return nil, ErrTooLarge
	}
	if len(data) == 0 {
		return nil, ErrEmptyFile
	}

	// pdfcpu is stricter than the text extractor, so an unparseable file is
	// still stored and the extraction tool reports what it can read.
	pageCount, err := s.pages.CountPages(ctx, bytes.NewReader(data))
	if err != nil {
		s.logger.WithError(err).WithField("file_name", name).Warn("could not count pages, storing upload anyway")
		pageCount = 0
	}

	if contentType == "" {
		contentType = "application/pdf"
	}

	path, err := s.local.UploadFile(ctx, name, bytes.NewReader(data), contentType)
	if err != nil {
		return nil, fmt.Errorf("store upload: %w", err)
	}

	doc := &models.Document{
		ID:        uuid.NewString(),
		FileName:  name,
		Path:      path,
		PageCount: pageCount,
		Size:      int64(len(data)),
		CreatedAt: time.Now(),
	}

	if s.mirror != nil {
		url, err := s.mirror.UploadFile(ctx, doc.ID+"/"+name, bytes.NewReader(data), contentType)
		if err != nil {
			s.logger.WithError(err).WithField("file_name", name).Warn("mirror upload failed, keeping local copy only")
		} else {
			doc.MirrorURL = url
		}
	}

	if err := s.db.CreateDocument(ctx, doc); err != nil {
		return nil, fmt.Errorf("store document metadata: %w", err)
	}

	s.logger.WithFields(logrus.Fields{
		"document_id": doc.ID,
		"path":        doc.Path,
		"pages":       doc.PageCount,
		"size":        doc.Size,
	}).Info("document uploaded")

	return doc, nil
}

func (s *DocumentService) Get(ctx context.Context, id string) (*models.Document, error) {
	return s.db.GetDocumentByID(ctx, id)
}

func (s *DocumentService) List(ctx context.Context) ([]models.Document, error) {
	return s.db.ListDocuments(ctx)
}

// cleanFilename removes any path components a browser may send.
func cleanFilename(filename string) string {
	filename = strings.ReplaceAll(strings.TrimSpace(filename), `\`, "/")
	return filepath.Base(filename)
}
