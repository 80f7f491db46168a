package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/markdave123-py/Pagewise/internal/core"
	"github.com/markdave123-py/Pagewise/internal/core/agent"
	"github.com/markdave123-py/Pagewise/internal/models"
)

var ErrNoDocument = errors.New("no document uploaded")

const (
	noDocumentMessage     = "Please upload a PDF first."
	flashcardParseMessage = "Failed to parse flashcards from agent output. Please try again or refine the prompt."
)

// StudyService owns per-session state and turns user actions into agent runs.
type StudyService struct {
	db     core.DbClient
	docs   *DocumentService
	runner *agent.Runner
	agent  *agent.Agent
	logger *logrus.Logger

	locks *sessionLocks
}

func NewStudyService(db core.DbClient, docs *DocumentService, runner *agent.Runner, a *agent.Agent, logger *logrus.Logger) *StudyService {
	return &StudyService{db: db, docs: docs, runner: runner, agent: a, logger: logger, locks: newSessionLocks()}
}

func (s *StudyService) lock(id string) func() {
	return s.locks.lock(id)
}

// Session returns the stored session, creating an empty one on first use.
func (s *StudyService) Session(ctx context.Context, id string) (*models.Session, error) {
	sess, err := s.db.GetSession(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("load session: %w", err)
	}
	if sess == nil {
		sess = &models.Session{ID: id, UpdatedAt: time.Now()}
	}
	return sess, nil
}

// TakeMessages returns the session as it is and clears its one-shot notice
// and error so they are shown exactly once.
func (s *StudyService) TakeMessages(ctx context.Context, id string) (*models.Session, error) {
	unlock := s.lock(id)
	defer unlock()

	sess, err := s.Session(ctx, id)
	if err != nil {
		return nil, err
	}
	if sess.Notice == "" && sess.Error == "" {
		return sess, nil
	}

	view := *sess
	sess.ClearMessages()
	if err := s.save(ctx, sess); err != nil {
		return nil, err
	}
	return &view, nil
}

// Upload stores the PDF and makes it the session's current document. Earlier
// results are dropped since they describe a different file.
func (s *StudyService) Upload(ctx context.Context, sessionID, filename, contentType string, r io.Reader) (*models.Session, *models.Document, error) {
	unlock := s.lock(sessionID)
	defer unlock()

	sess, err := s.Session(ctx, sessionID)
	if err != nil {
		return nil, nil, err
	}
	sess.ClearMessages()

	doc, err := s.docs.Upload(ctx, filename, contentType, r)
	if err != nil {
		sess.Error = fmt.Sprintf("Upload failed: %v", err)
		if saveErr := s.save(ctx, sess); saveErr != nil {
			s.logger.WithError(saveErr).Error("failed to save session")
		}
		return sess, nil, err
	}

	sess.DocumentPath = doc.Path
	sess.ResetResults()
	sess.Notice = fmt.Sprintf("File saved to %s", doc.Path)

	if err := s.save(ctx, sess); err != nil {
		return nil, nil, err
	}
	return sess, doc, nil
}

// SetError records a message to show with the next page view.
func (s *StudyService) SetError(ctx context.Context, sessionID, msg string) error {
	unlock := s.lock(sessionID)
	defer unlock()

	sess, err := s.Session(ctx, sessionID)
	if err != nil {
		return err
	}
	sess.Notice = ""
	sess.Error = msg
	return s.save(ctx, sess)
}

func (s *StudyService) Summarize(ctx context.Context, sessionID, prompt string) (*models.Session, error) {
	return s.Run(ctx, sessionID, KindSummary, prompt)
}

func (s *StudyService) Quiz(ctx context.Context, sessionID, prompt string) (*models.Session, error) {
	return s.Run(ctx, sessionID, KindQuiz, prompt)
}

func (s *StudyService) Flashcards(ctx context.Context, sessionID, prompt string) (*models.Session, error) {
	return s.Run(ctx, sessionID, KindFlashcards, prompt)
}

// Run performs one study action against the session's document. The session
// is returned even on failure, carrying the message to show the user.
func (s *StudyService) Run(ctx context.Context, sessionID string, kind Kind, prompt string) (*models.Session, error) {
	unlock := s.lock(sessionID)
	defer unlock()

	sess, err := s.Session(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	sess.ClearMessages()

	if !sess.HasDocument() {
		sess.Error = noDocumentMessage
		return sess, s.finish(ctx, sess, ErrNoDocument)
	}

	log := s.logger.WithFields(logrus.Fields{"session_id": sessionID, "action": string(kind)})
	start := time.Now()

	res, err := s.runner.Run(ctx, s.agent, BuildPrompt(kind, prompt, sess.DocumentPath))
	if err != nil {
		log.WithError(err).Error("agent run failed")
		sess.Error = fmt.Sprintf("Error generating %s: %v", kind.Label(), err)
		return sess, s.finish(ctx, sess, err)
	}

	log.WithFields(logrus.Fields{
		"turns":      res.Turns,
		"tool_calls": len(res.ToolCalls),
		"elapsed":    time.Since(start).String(),
	}).Info("agent run finished")

	var runErr error
	switch kind {
	case KindSummary:
		sess.Summary = res.FinalOutput
	case KindQuiz:
		sess.Quiz = res.FinalOutput
	case KindFlashcards:
		cards, err := ParseFlashcards(res.FinalOutput)
		if err != nil {
			log.WithError(err).Warn("flashcard output was not valid JSON")
			sess.Flashcards = nil
			sess.RawFlashcards = res.FinalOutput
			sess.Error = flashcardParseMessage
			runErr = err
		} else {
			sess.Flashcards = cards
			sess.RawFlashcards = ""
		}
	}

	return sess, s.finish(ctx, sess, runErr)
}

// finish persists the session and reports runErr, or the save error if
// there was nothing else to report.
func (s *StudyService) finish(ctx context.Context, sess *models.Session, runErr error) error {
	if err := s.save(ctx, sess); err != nil {
		if runErr != nil {
			s.logger.WithError(err).Error("failed to save session")
			return runErr
		}
		return err
	}
	return runErr
}

func (s *StudyService) save(ctx context.Context, sess *models.Session) error {
	sess.UpdatedAt = time.Now()
	if err := s.db.SaveSession(ctx, sess); err != nil {
		return fmt.Errorf("save session: %w", err)
	}
	return nil
}
