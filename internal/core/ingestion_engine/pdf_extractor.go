package ingestion_engine

import (
	"context"
	"fmt"
	"strings"

	"github.com/ledongthuc/pdf"
	"github.com/sirupsen/logrus"

	"github.com/markdave123-py/Pagewise/internal/core"
)

var _ core.TextExtractor = (*PDFExtractor)(nil)

// PDFExtractor reads text page by page with ledongthuc/pdf.
type PDFExtractor struct {
	logger *logrus.Logger
}

func NewPDFExtractor(logger *logrus.Logger) *PDFExtractor {
	return &PDFExtractor{logger: logger}
}

// Extract returns the stripped text of every page joined by newlines.
// Any failure, including a panic inside the PDF reader, yields "".
func (e *PDFExtractor) Extract(ctx context.Context, path string) string {
	text, err := e.extract(ctx, path)
	if err != nil {
		e.logger.WithError(err).WithField("file_path", path).Warn("pdf: text extraction failed")
		return ""
	}
	return text
}

func (e *PDFExtractor) extract(ctx context.Context, path string) (text string, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("pdf reader panic: %v", r)
		}
	}()

	f, r, err := pdf.Open(path)
	if err != nil {
		return "", fmt.Errorf("open pdf: %w", err)
	}
	defer f.Close()

	var sb strings.Builder
	numPages := r.NumPage()
	for i := 1; i <= numPages; i++ {
		if err := ctx.Err(); err != nil {
			return "", err
		}

		page := r.Page(i)
		if page.V.IsNull() {
			continue
		}

		pageText, err := page.GetPlainText(nil)
		if err != nil {
			return "", fmt.Errorf("page %d: %w", i, err)
		}
		if pageText = strings.TrimSpace(pageText); pageText != "" {
			sb.WriteString(pageText)
			sb.WriteString("\n")
		}
	}

	e.logger.WithFields(logrus.Fields{
		"file_path": path,
		"pages":     numPages,
	}).Debug("pdf: text extracted")

	return strings.TrimSpace(sb.String()), nil
}
