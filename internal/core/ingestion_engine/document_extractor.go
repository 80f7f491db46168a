package ingestion_engine

import (
	"context"
	"fmt"
	"os"
	"strings"

	"code.sajari.com/docconv"
	"github.com/sirupsen/logrus"

	"github.com/markdave123-py/Pagewise/internal/core"
)

var _ core.TextExtractor = (*DocconvExtractor)(nil)

// DocconvExtractor implements core.TextExtractor using sajari/docconv.
// PDF conversion shells out to poppler's pdftotext, which must be on PATH.
type DocconvExtractor struct {
	logger *logrus.Logger
}

func NewDocconvExtractor(logger *logrus.Logger) *DocconvExtractor {
	return &DocconvExtractor{logger: logger}
}

// Extract converts the whole document in one pass and normalises it the same
// way PDFExtractor does: lines stripped, blank runs dropped, result trimmed.
func (e *DocconvExtractor) Extract(ctx context.Context, path string) string {
	text, err := e.extract(ctx, path)
	if err != nil {
		e.logger.WithError(err).WithField("file_path", path).Warn("docconv: extraction failed")
		return ""
	}
	return text
}

func (e *DocconvExtractor) extract(ctx context.Context, path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("open: %w", err)
	}
	defer f.Close()

	body, _, err := docconv.ConvertPDF(f)
	if err != nil {
		return "", fmt.Errorf("convert pdf: %w", err)
	}

	if err := ctx.Err(); err != nil {
		return "", err
	}

	lines := strings.Split(body, "\n")
	kept := lines[:0]
	for _, line := range lines {
		if line = strings.TrimSpace(line); line != "" {
			kept = append(kept, line)
		}
	}
	return strings.Join(kept, "\n"), nil
}
