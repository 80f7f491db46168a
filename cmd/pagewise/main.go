package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/mark3labs/mcp-go/server"
	"github.com/sirupsen/logrus"
	"github.com/urfave/cli/v2"

	"github.com/markdave123-py/Pagewise/internal/app"
	"github.com/markdave123-py/Pagewise/internal/config"
	"github.com/markdave123-py/Pagewise/internal/core/llm"
	"github.com/markdave123-py/Pagewise/internal/core/tools"
	"github.com/markdave123-py/Pagewise/internal/services"
)

// Version is set at build time.
var Version = "dev"

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg := config.LoadConfig()
	logger := config.NewLogger(cfg.LogLevel, os.Stderr)

	if err := newCLI(cfg, logger, os.Stdout).RunContext(ctx, os.Args); err != nil {
		logger.WithError(err).Error("pagewise failed")
		os.Exit(1)
	}
}

func newCLI(cfg *config.Config, logger *logrus.Logger, out io.Writer) *cli.App {
	promptFlag := &cli.StringFlag{
		Name:    "prompt",
		Aliases: []string{"p"},
		Usage:   "instruction for the agent (a default is used when empty)",
	}

	studyCommand := func(kind services.Kind, usage string) *cli.Command {
		return &cli.Command{
			Name:      string(kind),
			Usage:     usage,
			ArgsUsage: "<file.pdf>",
			Flags:     []cli.Flag{promptFlag},
			Action: func(c *cli.Context) error {
				path, err := pdfArg(c)
				if err != nil {
					return err
				}
				return runStudy(c.Context, cfg, logger, out, kind, c.String("prompt"), path)
			},
		}
	}

	return &cli.App{
		Name:      "pagewise",
		Usage:     "Summaries, quizzes and flashcards from PDF documents",
		Version:   Version,
		Writer:    out,
		ErrWriter: os.Stderr,
		Commands: []*cli.Command{
			{
				Name:      "extract",
				Usage:     "Print the text the agent's extraction tool sees",
				ArgsUsage: "<file.pdf>",
				Action: func(c *cli.Context) error {
					path, err := pdfArg(c)
					if err != nil {
						return err
					}
					tool, err := tools.NewPDFTextExtractor(app.NewExtractor(cfg, logger))
					if err != nil {
						return err
					}
					_, err = fmt.Fprintln(out, tool.Run(c.Context, path))
					return err
				},
			},
			studyCommand(services.KindSummary, "Summarize a PDF"),
			studyCommand(services.KindQuiz, "Generate a quiz from a PDF"),
			studyCommand(services.KindFlashcards, "Generate flashcards from a PDF as JSON"),
			{
				Name:  "mcp",
				Usage: "Serve the PDF extraction tool over MCP on stdio",
				Action: func(c *cli.Context) error {
					tool, err := tools.NewPDFTextExtractor(app.NewExtractor(cfg, logger))
					if err != nil {
						return err
					}
					logger.Info("serving pdf_text_extractor over MCP stdio")
					return server.ServeStdio(tools.NewMCPServer("pagewise", Version, logger, tool))
				},
			},
		},
	}
}

func pdfArg(c *cli.Context) (string, error) {
	if c.NArg() != 1 {
		return "", fmt.Errorf("usage: pagewise %s <file.pdf>", c.Command.Name)
	}
	return filepath.Abs(c.Args().First())
}

func runStudy(ctx context.Context, cfg *config.Config, logger *logrus.Logger, out io.Writer, kind services.Kind, prompt, path string) error {
	if err := cfg.Validate(); err != nil {
		return err
	}

	model, err := llm.NewProvider(ctx, cfg)
	if err != nil {
		return fmt.Errorf("couldn't initialize the %s model, %w", cfg.LLMProvider, err)
	}
	defer model.Close()

	summarizer, runner, err := app.NewAgent(cfg, logger, model)
	if err != nil {
		return err
	}

	res, err := runner.Run(ctx, summarizer, services.BuildPrompt(kind, prompt, path))
	if err != nil {
		return fmt.Errorf("generating %s: %w", kind.Label(), err)
	}

	if kind != services.KindFlashcards {
		_, err = fmt.Fprintln(out, res.FinalOutput)
		return err
	}

	cards, err := services.ParseFlashcards(res.FinalOutput)
	if err != nil {
		fmt.Fprintln(out, res.FinalOutput)
		return err
	}
	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	return enc.Encode(cards)
}
