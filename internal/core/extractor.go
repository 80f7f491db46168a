package core

import (
	"context"
	"io"
)

// TextExtractor turns a document on local disk into plain text.
// Implementations never fail loudly: an empty string means nothing could be extracted.
type TextExtractor interface {
	Extract(ctx context.Context, path string) string
}

// PageCounter validates a PDF and reports its page count.
type PageCounter interface {
	CountPages(ctx context.Context, rs io.ReadSeeker) (int, error)
}
