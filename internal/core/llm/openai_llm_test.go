package llm

import (
	"testing"

	"github.com/openai/openai-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/markdave123-py/Pagewise/internal/core"
)

func TestToOpenAIMessages(t *testing.T) {
	msgs := []core.Message{
		{Role: core.RoleUser, Text: "Create a quiz from /tmp/a.pdf"},
		{Role: core.RoleAssistant, ToolCalls: []core.ToolCall{
			{ID: "call_abc", Name: "pdf_text_extractor", Args: map[string]any{"file_path": "/tmp/a.pdf"}},
		}},
		{Role: core.RoleTool, ToolCallID: "call_abc", ToolName: "pdf_text_extractor", Text: "text"},
		{Role: core.RoleAssistant, Text: "Here is your quiz"},
	}

	out := toOpenAIMessages("be helpful", msgs)

	require.Len(t, out, 5)
	assert.NotNil(t, out[0].OfSystem)
	assert.NotNil(t, out[1].OfUser)
	require.NotNil(t, out[2].OfAssistant)
	require.Len(t, out[2].OfAssistant.ToolCalls, 1)
	assert.Equal(t, "call_abc", out[2].OfAssistant.ToolCalls[0].ID)
	assert.JSONEq(t, `{"file_path":"/tmp/a.pdf"}`, out[2].OfAssistant.ToolCalls[0].Function.Arguments)
	require.NotNil(t, out[3].OfTool)
	assert.Equal(t, "call_abc", out[3].OfTool.ToolCallID)
	assert.NotNil(t, out[4].OfAssistant)
}

func TestToOpenAIMessages_NoSystemPrompt(t *testing.T) {
	out := toOpenAIMessages("", []core.Message{{Role: core.RoleUser, Text: "hi"}})
	require.Len(t, out, 1)
	assert.NotNil(t, out[0].OfUser)
}

func TestFromOpenAIMessage(t *testing.T) {
	msg := openai.ChatCompletionMessage{
		Content: "",
		ToolCalls: []openai.ChatCompletionMessageToolCall{
			{ID: "c1", Function: openai.ChatCompletionMessageToolCallFunction{Name: "pdf_text_extractor", Arguments: `{"file_path":"a.pdf"}`}},
			{ID: "c2", Function: openai.ChatCompletionMessageToolCallFunction{Name: "pdf_text_extractor", Arguments: `not json`}},
		},
	}

	out := fromOpenAIMessage(msg)

	require.Len(t, out.ToolCalls, 2)
	assert.Equal(t, "a.pdf", out.ToolCalls[0].Args["file_path"])
	assert.Nil(t, out.ToolCalls[1].Args)
	assert.Equal(t, "c2", out.ToolCalls[1].ID)
}
