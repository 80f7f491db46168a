package objectclient

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/markdave123-py/Pagewise/internal/core"
)

var _ core.ObjectClient = (*LocalClient)(nil)

// LocalClient writes objects as plain files under a root directory.
// An existing file with the same key is overwritten.
type LocalClient struct {
	root string
}

func NewLocalClient(root string) (*LocalClient, error) {
	if root == "" {
		return nil, fmt.Errorf("storage directory not set")
	}
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("resolve storage dir: %w", err)
	}
	if err := os.MkdirAll(abs, 0o755); err != nil {
		return nil, fmt.Errorf("create storage dir: %w", err)
	}
	return &LocalClient{root: abs}, nil
}

// Root returns the absolute storage directory.
func (c *LocalClient) Root() string { return c.root }

// UploadFile copies data verbatim to root/key and returns that path.
func (c *LocalClient) UploadFile(ctx context.Context, key string, data io.Reader, contentType string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	path := filepath.Join(c.root, filepath.Base(key))
	f, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("create %s: %w", path, err)
	}

	if _, err := io.Copy(f, data); err != nil {
		_ = f.Close()
		return "", fmt.Errorf("write %s: %w", path, err)
	}
	if err := f.Close(); err != nil {
		return "", fmt.Errorf("close %s: %w", path, err)
	}
	return path, nil
}
