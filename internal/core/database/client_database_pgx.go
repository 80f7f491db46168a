package db

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"

	"github.com/markdave123-py/Pagewise/internal/core"
	"github.com/markdave123-py/Pagewise/internal/models"
)

var _ core.DbClient = (*DatabaseClient)(nil)

type DatabaseClient struct {
	db *sql.DB
}

func NewDatabaseClient(ctx context.Context, databaseURL string) (*DatabaseClient, error) {
	if databaseURL == "" {
		return nil, fmt.Errorf("DATABASE_URL is empty")
	}

	db, err := sql.Open("pgx", databaseURL)
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}

	db.SetMaxOpenConns(20)
	db.SetMaxIdleConns(10)
	db.SetConnMaxLifetime(30 * time.Minute)
	db.SetConnMaxIdleTime(10 * time.Minute)

	pingCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping db: %w", err)
	}

	if err := EnsureBootstrapped(ctx, db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("bootstrap: %w", err)
	}

	return &DatabaseClient{db: db}, nil
}

func (c *DatabaseClient) Close() error {
	if c.db != nil {
		return c.db.Close()
	}
	return nil
}

// Implementing the db interface for Document

func (c *DatabaseClient) CreateDocument(ctx context.Context, doc *models.Document) error {
	if doc == nil {
		return errors.New("nil document")
	}
	const q = `
		INSERT INTO documents
			(id, file_name, path, mirror_url, page_count, size, created_at)
		VALUES
			($1, $2, $3, $4, $5, $6, COALESCE($7, now()))
	`
	_, err := c.db.ExecContext(ctx, q,
		doc.ID, doc.FileName, doc.Path, doc.MirrorURL, doc.PageCount, doc.Size, nullTime(doc.CreatedAt))
	return err
}

func (c *DatabaseClient) GetDocumentByID(ctx context.Context, id string) (*models.Document, error) {
	const q = `
		SELECT id, file_name, path, mirror_url, page_count, size, created_at
		FROM documents
		WHERE id = $1
	`
	var d models.Document
	err := c.db.QueryRowContext(ctx, q, id).Scan(
		&d.ID, &d.FileName, &d.Path, &d.MirrorURL, &d.PageCount, &d.Size, &d.CreatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &d, nil
}

func (c *DatabaseClient) ListDocuments(ctx context.Context) ([]models.Document, error) {
	const q = `
		SELECT id, file_name, path, mirror_url, page_count, size, created_at
		FROM documents
		ORDER BY created_at DESC
	`
	rows, err := c.db.QueryContext(ctx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []models.Document
	for rows.Next() {
		var d models.Document
		if err := rows.Scan(
			&d.ID, &d.FileName, &d.Path, &d.MirrorURL, &d.PageCount, &d.Size, &d.CreatedAt,
		); err != nil {
			return nil, err
		}
		out = append(out, d)
	}
	return out, rows.Err()
}

// Implementing the db interface for Session

func (c *DatabaseClient) GetSession(ctx context.Context, id string) (*models.Session, error) {
	const q = `
		SELECT id, document_path, summary, quiz, flashcards, raw_flashcards, notice, error, updated_at
		FROM sessions
		WHERE id = $1
	`
	var (
		s     models.Session
		cards []byte
	)
	err := c.db.QueryRowContext(ctx, q, id).Scan(
		&s.ID, &s.DocumentPath, &s.Summary, &s.Quiz, &cards, &s.RawFlashcards, &s.Notice, &s.Error, &s.UpdatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	if err := json.Unmarshal(cards, &s.Flashcards); err != nil {
		return nil, fmt.Errorf("decode flashcards: %w", err)
	}
	return &s, nil
}

func (c *DatabaseClient) SaveSession(ctx context.Context, s *models.Session) error {
	if s == nil {
		return errors.New("nil session")
	}
	cards := s.Flashcards
	if cards == nil {
		cards = []models.Flashcard{}
	}
	payload, err := json.Marshal(cards)
	if err != nil {
		return fmt.Errorf("encode flashcards: %w", err)
	}

	const q = `
		INSERT INTO sessions
			(id, document_path, summary, quiz, flashcards, raw_flashcards, notice, error, updated_at)
		VALUES
			($1, $2, $3, $4, $5, $6, $7, $8, now())
		ON CONFLICT (id) DO UPDATE SET
			document_path  = EXCLUDED.document_path,
			summary        = EXCLUDED.summary,
			quiz           = EXCLUDED.quiz,
			flashcards     = EXCLUDED.flashcards,
			raw_flashcards = EXCLUDED.raw_flashcards,
			notice         = EXCLUDED.notice,
			error          = EXCLUDED.error,
			updated_at     = now()
	`
	_, err = c.db.ExecContext(ctx, q,
		s.ID, s.DocumentPath, s.Summary, s.Quiz, string(payload), s.RawFlashcards, s.Notice, s.Error)
	return err
}

func nullTime(t time.Time) any {
	if t.IsZero() {
		return nil
	}
	return t
}
