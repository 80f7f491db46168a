package db

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"github.com/markdave123-py/Pagewise/internal/core"
	"github.com/markdave123-py/Pagewise/internal/models"
)

var _ core.DbClient = (*MemoryClient)(nil)

// MemoryClient keeps documents and sessions in process memory. It is the
// default when no DATABASE_URL is configured; state is lost on restart.
type MemoryClient struct {
	mu        sync.RWMutex
	documents map[string]models.Document
	sessions  map[string]models.Session
}

func NewMemoryClient() *MemoryClient {
	return &MemoryClient{
		documents: make(map[string]models.Document),
		sessions:  make(map[string]models.Session),
	}
}

func (c *MemoryClient) CreateDocument(ctx context.Context, doc *models.Document) error {
	if doc == nil {
		return errors.New("nil document")
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, ok := c.documents[doc.ID]; ok {
		return errors.New("document already exists: " + doc.ID)
	}
	d := *doc
	if d.CreatedAt.IsZero() {
		d.CreatedAt = time.Now()
	}
	c.documents[d.ID] = d
	return nil
}

func (c *MemoryClient) GetDocumentByID(ctx context.Context, id string) (*models.Document, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	d, ok := c.documents[id]
	if !ok {
		return nil, nil
	}
	return &d, nil
}

func (c *MemoryClient) ListDocuments(ctx context.Context) ([]models.Document, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	out := make([]models.Document, 0, len(c.documents))
	for _, d := range c.documents {
		out = append(out, d)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (c *MemoryClient) GetSession(ctx context.Context, id string) (*models.Session, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	s, ok := c.sessions[id]
	if !ok {
		return nil, nil
	}
	s.Flashcards = cloneCards(s.Flashcards)
	return &s, nil
}

func (c *MemoryClient) SaveSession(ctx context.Context, s *models.Session) error {
	if s == nil {
		return errors.New("nil session")
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	cp := *s
	cp.Flashcards = cloneCards(s.Flashcards)
	cp.UpdatedAt = time.Now()
	c.sessions[cp.ID] = cp
	return nil
}

func (c *MemoryClient) Close() error { return nil }

func cloneCards(in []models.Flashcard) []models.Flashcard {
	if in == nil {
		return nil
	}
	out := make([]models.Flashcard, len(in))
	for i, fc := range in {
		out[i] = models.Flashcard{Topic: fc.Topic, KeyPoints: append([]string(nil), fc.KeyPoints...)}
	}
	return out
}
