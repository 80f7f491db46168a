package main

import (
	"bytes"
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/markdave123-py/Pagewise/internal/config"
	"github.com/markdave123-py/Pagewise/internal/testutils"
)

func testCLI() (*bytes.Buffer, func(args ...string) error) {
	var out bytes.Buffer
	cfg := &config.Config{Extractor: config.ExtractorPDF}
	app := newCLI(cfg, testutils.CreateTestLogger(), &out)
	return &out, func(args ...string) error {
		return app.RunContext(context.Background(), append([]string{"pagewise"}, args...))
	}
}

func TestExtractCommand(t *testing.T) {
	path := testutils.WritePDF(t, t.TempDir(), "notes.pdf", "Mitochondria make ATP", "Ribosomes build proteins")

	out, run := testCLI()
	require.NoError(t, run("extract", path))

	assert.Contains(t, out.String(), "Mitochondria make ATP")
	assert.Contains(t, out.String(), "Ribosomes build proteins")
}

func TestExtractCommand_MissingFile(t *testing.T) {
	out, run := testCLI()
	require.NoError(t, run("extract", "/does/not/exist.pdf"))

	assert.Equal(t, "File not found at /does/not/exist.pdf\n", out.String())
}

func TestStudyCommand_RequiresOneArgument(t *testing.T) {
	_, run := testCLI()
	err := run("summary")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "usage: pagewise summary <file.pdf>")
}

func TestStudyCommand_InvalidConfig(t *testing.T) {
	path := testutils.WritePDF(t, t.TempDir(), "notes.pdf", "text")

	_, run := testCLI()
	err := run("quiz", "--prompt", "two questions", path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "LLM_PROVIDER")
}
