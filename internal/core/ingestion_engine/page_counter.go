package ingestion_engine

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"

	"github.com/markdave123-py/Pagewise/internal/core"
)

var _ core.PageCounter = (*PDFPageCounter)(nil)

// ErrNoPages is returned for documents pdfcpu can parse but that have no pages.
var ErrNoPages = errors.New("pdf has no pages")

// PDFPageCounter checks uploads with pdfcpu before they are accepted.
type PDFPageCounter struct{}

func NewPDFPageCounter() *PDFPageCounter {
	return &PDFPageCounter{}
}

// CountPages parses the document and returns its page count.
func (c *PDFPageCounter) CountPages(ctx context.Context, rs io.ReadSeeker) (n int, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("pdfcpu panic: %v", r)
		}
	}()

	if err := ctx.Err(); err != nil {
		return 0, err
	}

	// pdfcpu mutates the configuration it is given, so each call gets its own.
	conf := model.NewDefaultConfiguration()
	conf.ValidationMode = model.ValidationRelaxed

	n, err = api.PageCount(rs, conf)
	if err != nil {
		return 0, fmt.Errorf("read pdf: %w", err)
	}
	if n == 0 {
		return 0, ErrNoPages
	}
	return n, nil
}
