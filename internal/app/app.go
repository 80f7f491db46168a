package app

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/markdave123-py/Pagewise/internal/api/views"
	"github.com/markdave123-py/Pagewise/internal/config"
	"github.com/markdave123-py/Pagewise/internal/core"
	"github.com/markdave123-py/Pagewise/internal/core/agent"
	db "github.com/markdave123-py/Pagewise/internal/core/database"
	"github.com/markdave123-py/Pagewise/internal/core/ingestion_engine"
	"github.com/markdave123-py/Pagewise/internal/core/llm"
	objectclient "github.com/markdave123-py/Pagewise/internal/core/object-client"
	"github.com/markdave123-py/Pagewise/internal/core/tools"
	"github.com/markdave123-py/Pagewise/internal/services"
)

type App struct {
	DBClient     core.DbClient
	ObjectClient *objectclient.LocalClient
	Model        core.LLMProvider
	Documents    *services.DocumentService
	Study        *services.StudyService
	Server       *Server
}

// NewApp connects every collaborator and builds the HTTP server.
func NewApp(ctx context.Context, cfg *config.Config, logger *logrus.Logger) (*App, error) {
	model, err := llm.NewProvider(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("couldn't initialize the %s model, %w", cfg.LLMProvider, err)
	}
	logger.WithFields(logrus.Fields{"provider": cfg.LLMProvider, "model": cfg.GenModel}).Info("Model client initialized.")

	a, err := newApp(ctx, cfg, logger, model)
	if err != nil {
		_ = model.Close()
		return nil, err
	}
	return a, nil
}

func newApp(ctx context.Context, cfg *config.Config, logger *logrus.Logger, model core.LLMProvider) (*App, error) {
	dbClient, err := NewDbClient(ctx, cfg, logger)
	if err != nil {
		return nil, err
	}

	local, err := objectclient.NewLocalClient(cfg.StorageDir)
	if err != nil {
		_ = dbClient.Close()
		return nil, err
	}
	logger.WithField("dir", local.Root()).Info("Upload storage ready.")

	var mirror core.ObjectClient
	if cfg.MirrorEnabled() {
		s3Client, err := objectclient.NewS3Client(ctx, cfg, logger)
		if err != nil {
			_ = dbClient.Close()
			return nil, err
		}
		mirror = s3Client
	}

	summarizer, runner, err := NewAgent(cfg, logger, model)
	if err != nil {
		_ = dbClient.Close()
		return nil, err
	}

	renderer, err := views.NewRenderer()
	if err != nil {
		_ = dbClient.Close()
		return nil, err
	}

	docs := services.NewDocumentService(dbClient, local, mirror, ingestion_engine.NewPDFPageCounter(), cfg.MaxUploadBytes, logger)
	study := services.NewStudyService(dbClient, docs, runner, summarizer, logger)

	return &App{
		DBClient:     dbClient,
		ObjectClient: local,
		Model:        model,
		Documents:    docs,
		Study:        study,
		Server:       NewServer(cfg, logger, docs, study, renderer),
	}, nil
}

// NewDbClient returns Postgres when DATABASE_URL is set, else an in-memory store.
func NewDbClient(ctx context.Context, cfg *config.Config, logger *logrus.Logger) (core.DbClient, error) {
	if cfg.DatabaseURL == "" {
		logger.Info("DATABASE_URL not set, keeping sessions in memory.")
		return db.NewMemoryClient(), nil
	}
	client, err := db.NewDatabaseClient(ctx, cfg.DatabaseURL)
	if err != nil {
		return nil, err
	}
	logger.Info("Database initialized and ready.")
	return client, nil
}

// NewExtractor returns the text extractor selected by EXTRACTOR.
func NewExtractor(cfg *config.Config, logger *logrus.Logger) core.TextExtractor {
	if cfg.Extractor == config.ExtractorDocconv {
		return ingestion_engine.NewDocconvExtractor(logger)
	}
	return ingestion_engine.NewPDFExtractor(logger)
}

// NewAgent binds the model to the PDF extraction tool.
func NewAgent(cfg *config.Config, logger *logrus.Logger, model core.LLMProvider) (*agent.Agent, *agent.Runner, error) {
	tool, err := tools.NewPDFTextExtractor(NewExtractor(cfg, logger))
	if err != nil {
		return nil, nil, fmt.Errorf("build extraction tool: %w", err)
	}
	return agent.NewSummarizerAgent(model, tool), agent.NewRunner(logger, cfg.AgentMaxTurns, cfg.AgentTimeout), nil
}

func (a *App) Close() {
	if a.DBClient != nil {
		_ = a.DBClient.Close()
	}
	if a.Model != nil {
		_ = a.Model.Close()
	}
}
