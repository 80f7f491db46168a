package core

import "context"

// Role identifies who produced a message in a model conversation.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
	RoleTool      Role = "tool"
)

// ToolSpec describes a callable tool. Parameters is a JSON schema object.
type ToolSpec struct {
	Name        string
	Description string
	Parameters  map[string]any
}

// ToolCall is a model request to run a tool.
type ToolCall struct {
	ID   string
	Name string
	Args map[string]any
}

// Message is one turn of a conversation.
//
// Assistant messages may carry ToolCalls; tool messages carry the result text
// in Text together with the ToolCallID and ToolName they answer.
type Message struct {
	Role       Role
	Text       string
	ToolCalls  []ToolCall
	ToolCallID string
	ToolName   string
}

// ChatRequest is a full, stateless model call.
type ChatRequest struct {
	SystemPrompt string
	Messages     []Message
	Tools        []ToolSpec
}

// ChatResponse is the model's next turn.
type ChatResponse struct {
	Text      string
	ToolCalls []ToolCall
}

// LLMProvider is a text-generation model that can request tool calls.
type LLMProvider interface {
	Chat(ctx context.Context, req *ChatRequest) (*ChatResponse, error)
	Close() error
}
