// Package views renders the single-page study UI.
package views

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"io"
	"path/filepath"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"

	"github.com/markdave123-py/Pagewise/internal/models"
)

//go:embed templates/*.html
var templateFS embed.FS

// MissingTopic is shown on the front of a card whose topic is empty.
const MissingTopic = "N/A"

type Prompts struct {
	Summary    string
	Quiz       string
	Flashcards string
}

type Card struct {
	Topic     string
	KeyPoints []string
}

// Page is everything the index template needs.
type Page struct {
	DocumentName  string
	DocumentPath  string
	HasDocument   bool
	Notice        string
	Error         string
	Prompts       Prompts
	Summary       template.HTML
	Quiz          template.HTML
	Flashcards    []Card
	RawFlashcards string
	MaxUploadMB   int64
}

type Renderer struct {
	index *template.Template
	md    goldmark.Markdown
}

func NewRenderer() (*Renderer, error) {
	index, err := template.ParseFS(templateFS, "templates/index.html")
	if err != nil {
		return nil, fmt.Errorf("parse templates: %w", err)
	}
	return &Renderer{
		index: index,
		// raw HTML in model output is dropped from the rendered markdown
		md: goldmark.New(goldmark.WithExtensions(extension.GFM)),
	}, nil
}

// NewPage builds the view model for a session.
func (r *Renderer) NewPage(sess *models.Session, prompts Prompts, maxUploadBytes int64) (*Page, error) {
	p := &Page{
		HasDocument:   sess.HasDocument(),
		DocumentPath:  sess.DocumentPath,
		Notice:        sess.Notice,
		Error:         sess.Error,
		Prompts:       prompts,
		RawFlashcards: sess.RawFlashcards,
		MaxUploadMB:   maxUploadBytes >> 20,
	}
	if p.HasDocument {
		p.DocumentName = filepath.Base(sess.DocumentPath)
	}

	var err error
	if p.Summary, err = r.Markdown(sess.Summary); err != nil {
		return nil, err
	}
	if p.Quiz, err = r.Markdown(sess.Quiz); err != nil {
		return nil, err
	}
	p.Flashcards = Cards(sess.Flashcards)
	return p, nil
}

// Markdown converts model output to HTML.
func (r *Renderer) Markdown(src string) (template.HTML, error) {
	if src == "" {
		return "", nil
	}
	var buf bytes.Buffer
	if err := r.md.Convert([]byte(src), &buf); err != nil {
		return "", fmt.Errorf("render markdown: %w", err)
	}
	return template.HTML(buf.String()), nil
}

func (r *Renderer) Render(w io.Writer, p *Page) error {
	return r.index.Execute(w, p)
}

// Cards prepares flashcards for display.
func Cards(fs []models.Flashcard) []Card {
	cards := make([]Card, 0, len(fs))
	for _, f := range fs {
		topic := f.Topic
		if topic == "" {
			topic = MissingTopic
		}
		cards = append(cards, Card{Topic: topic, KeyPoints: f.KeyPoints})
	}
	return cards
}
