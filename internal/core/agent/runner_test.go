package agent

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/markdave123-py/Pagewise/internal/core"
	"github.com/markdave123-py/Pagewise/internal/core/ingestion_engine"
	"github.com/markdave123-py/Pagewise/internal/core/tools"
	"github.com/markdave123-py/Pagewise/internal/testutils"
)

func newExtractionTool(t *testing.T) *tools.PDFTextExtractor {
	t.Helper()
	tool, err := tools.NewPDFTextExtractor(ingestion_engine.NewPDFExtractor(testutils.CreateTestLogger()))
	require.NoError(t, err)
	return tool
}

func TestRunner_ToolThenAnswer(t *testing.T) {
	path := testutils.WritePDF(t, t.TempDir(), "cells.pdf", "Mitochondria produce ATP")
	model := &testutils.ScriptedLLM{Responses: []*core.ChatResponse{
		{ToolCalls: []core.ToolCall{{ID: "call_1", Name: tools.PDFTextExtractorName, Args: map[string]any{"file_path": path}}}},
		{Text: "The document says mitochondria produce ATP."},
	}}
	a := NewSummarizerAgent(model, newExtractionTool(t))
	runner := NewRunner(testutils.CreateTestLogger(), 0, time.Minute)

	res, err := runner.Run(context.Background(), a, "Summarize "+path)

	require.NoError(t, err)
	assert.Equal(t, "The document says mitochondria produce ATP.", res.FinalOutput)
	assert.Equal(t, 2, res.Turns)
	require.Len(t, res.ToolCalls, 1)
	assert.Contains(t, res.ToolCalls[0].Output, "Mitochondria produce ATP")

	require.Len(t, model.Requests, 2)
	first := model.Requests[0]
	assert.Equal(t, SummarizerInstructions, first.SystemPrompt)
	require.Len(t, first.Tools, 1)
	assert.Equal(t, tools.PDFTextExtractorName, first.Tools[0].Name)

	second := model.Requests[1].Messages
	require.Len(t, second, 3)
	assert.Equal(t, core.RoleAssistant, second[1].Role)
	assert.Equal(t, core.RoleTool, second[2].Role)
	assert.Equal(t, "call_1", second[2].ToolCallID)
	assert.Contains(t, second[2].Text, "Mitochondria produce ATP")
}

func TestRunner_MissingFileSentinelReachesModel(t *testing.T) {
	model := &testutils.ScriptedLLM{Responses: []*core.ChatResponse{
		{ToolCalls: []core.ToolCall{{ID: "c", Name: tools.PDFTextExtractorName, Args: map[string]any{"file_path": "/nowhere/x.pdf"}}}},
		{Text: "I could not find that file."},
	}}
	runner := NewRunner(testutils.CreateTestLogger(), 5, 0)

	res, err := runner.Run(context.Background(), NewSummarizerAgent(model, newExtractionTool(t)), "Summarize /nowhere/x.pdf")

	require.NoError(t, err)
	assert.Equal(t, "File not found at /nowhere/x.pdf", model.Requests[1].Messages[2].Text)
	assert.Equal(t, "I could not find that file.", res.FinalOutput)
}

func TestRunner_InvalidArgumentsAreReportedToModel(t *testing.T) {
	model := &testutils.ScriptedLLM{Responses: []*core.ChatResponse{
		{ToolCalls: []core.ToolCall{{ID: "c", Name: tools.PDFTextExtractorName, Args: map[string]any{"path": "x"}}}},
		{Text: "done"},
	}}
	runner := NewRunner(testutils.CreateTestLogger(), 5, 0)

	_, err := runner.Run(context.Background(), NewSummarizerAgent(model, newExtractionTool(t)), "go")

	require.NoError(t, err)
	assert.Contains(t, model.Requests[1].Messages[2].Text, "Error:")
}

func TestRunner_ModelErrorPropagates(t *testing.T) {
	boom := errors.New("quota exhausted")
	model := &testutils.ScriptedLLM{Err: boom}
	runner := NewRunner(testutils.CreateTestLogger(), 5, 0)

	_, err := runner.Run(context.Background(), NewSummarizerAgent(model, newExtractionTool(t)), "go")

	require.Error(t, err)
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, 1, model.Calls())
}

func TestRunner_UnknownTool(t *testing.T) {
	model := &testutils.ScriptedLLM{Responses: []*core.ChatResponse{
		{ToolCalls: []core.ToolCall{{ID: "c", Name: "web_search"}}},
	}}
	runner := NewRunner(testutils.CreateTestLogger(), 5, 0)

	_, err := runner.Run(context.Background(), NewSummarizerAgent(model, newExtractionTool(t)), "go")

	assert.ErrorIs(t, err, ErrUnknownTool)
}

func TestRunner_MaxTurns(t *testing.T) {
	loop := &core.ChatResponse{ToolCalls: []core.ToolCall{{ID: "c", Name: tools.PDFTextExtractorName, Args: map[string]any{"file_path": "/x.pdf"}}}}
	model := &testutils.ScriptedLLM{Responses: []*core.ChatResponse{loop}}
	runner := NewRunner(testutils.CreateTestLogger(), 3, 0)

	_, err := runner.Run(context.Background(), NewSummarizerAgent(model, newExtractionTool(t)), "go")

	assert.ErrorIs(t, err, ErrMaxTurnsExceeded)
	assert.Equal(t, 3, model.Calls())
}
