package models

import (
	"time"
)

// Document represents an uploaded PDF stored on local disk.
type Document struct {
	ID        string    `db:"id" json:"id"`
	FileName  string    `db:"file_name" json:"file_name"`
	Path      string    `db:"path" json:"path"`             // local path handed to the extraction tool
	MirrorURL string    `db:"mirror_url" json:"mirror_url"` // S3 URL when mirroring is enabled
	PageCount int       `db:"page_count" json:"page_count"`
	Size      int64     `db:"size" json:"size"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}

// Flashcard is one topic with its ordered key points.
type Flashcard struct {
	Topic     string   `json:"topic"`
	KeyPoints []string `json:"key_points"`
}

// Session holds everything one browser session has produced so far.
type Session struct {
	ID            string      `db:"id" json:"id"`
	DocumentPath  string      `db:"document_path" json:"document_path"`
	Summary       string      `db:"summary" json:"summary"`
	Quiz          string      `db:"quiz" json:"quiz"`
	Flashcards    []Flashcard `db:"flashcards" json:"flashcards"`
	RawFlashcards string      `db:"raw_flashcards" json:"raw_flashcards,omitempty"` // agent output kept when parsing failed
	Notice        string      `db:"notice" json:"notice,omitempty"`
	Error         string      `db:"error" json:"error,omitempty"`
	UpdatedAt     time.Time   `db:"updated_at" json:"updated_at"`
}

// HasDocument reports whether an upload has been stored for the session.
func (s *Session) HasDocument() bool {
	return s != nil && s.DocumentPath != ""
}

// ResetResults clears all generated content, e.g. after a new upload.
func (s *Session) ResetResults() {
	s.Summary = ""
	s.Quiz = ""
	s.Flashcards = nil
	s.RawFlashcards = ""
}

// ClearMessages drops the one-shot notice and error banners.
func (s *Session) ClearMessages() {
	s.Notice = ""
	s.Error = ""
}
