package llm

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"

	"github.com/markdave123-py/Pagewise/internal/core"
)

type GeminiLLM struct {
	client    *genai.Client
	modelName string
}

func NewGeminiLLM(ctx context.Context, apiKey, modelName string) (*GeminiLLM, error) {
	if apiKey == "" {
		apiKey = os.Getenv("GEMINI_API_KEY")
	}
	cl, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, err
	}
	if modelName == "" {
		modelName = "gemini-2.5-flash"
	}
	return &GeminiLLM{client: cl, modelName: modelName}, nil
}

func (g *GeminiLLM) Close() error {
	if g.client != nil {
		return g.client.Close()
	}
	return nil
}

// Chat replays the conversation into a fresh chat session and sends the
// final message, so each call is independent of the previous one.
func (g *GeminiLLM) Chat(ctx context.Context, req *core.ChatRequest) (*core.ChatResponse, error) {
	m := g.client.GenerativeModel(g.modelName)
	if req.SystemPrompt != "" {
		m.SystemInstruction = &genai.Content{
			Parts: []genai.Part{genai.Text(req.SystemPrompt)},
		}
	}
	if len(req.Tools) > 0 {
		m.Tools = []*genai.Tool{toGenaiTool(req.Tools)}
	}

	contents := toGenaiContents(req.Messages)
	if len(contents) == 0 {
		return nil, errors.New("gemini generate: no messages")
	}

	cs := m.StartChat()
	cs.History = contents[:len(contents)-1]

	resp, err := cs.SendMessage(ctx, contents[len(contents)-1].Parts...)
	if err != nil {
		return nil, fmt.Errorf("gemini generate: %w", err)
	}
	return fromGenaiResponse(resp), nil
}

func toGenaiTool(specs []core.ToolSpec) *genai.Tool {
	decls := make([]*genai.FunctionDeclaration, 0, len(specs))
	for _, s := range specs {
		decls = append(decls, &genai.FunctionDeclaration{
			Name:        s.Name,
			Description: s.Description,
			Parameters:  toGenaiSchema(s.Parameters),
		})
	}
	return &genai.Tool{FunctionDeclarations: decls}
}

// toGenaiSchema converts the subset of JSON schema Gemini understands.
// Keywords such as additionalProperties are dropped.
func toGenaiSchema(m map[string]any) *genai.Schema {
	if m == nil {
		return nil
	}
	s := &genai.Schema{}
	switch m["type"] {
	case "object":
		s.Type = genai.TypeObject
	case "string":
		s.Type = genai.TypeString
	case "integer":
		s.Type = genai.TypeInteger
	case "number":
		s.Type = genai.TypeNumber
	case "boolean":
		s.Type = genai.TypeBoolean
	case "array":
		s.Type = genai.TypeArray
	}
	if d, ok := m["description"].(string); ok {
		s.Description = d
	}
	if props, ok := m["properties"].(map[string]any); ok {
		s.Properties = make(map[string]*genai.Schema, len(props))
		for name, p := range props {
			if pm, ok := p.(map[string]any); ok {
				s.Properties[name] = toGenaiSchema(pm)
			}
		}
	}
	if items, ok := m["items"].(map[string]any); ok {
		s.Items = toGenaiSchema(items)
	}
	s.Required = stringList(m["required"])
	s.Enum = stringList(m["enum"])
	return s
}

func stringList(v any) []string {
	switch vv := v.(type) {
	case []string:
		return vv
	case []any:
		out := make([]string, 0, len(vv))
		for _, x := range vv {
			if str, ok := x.(string); ok {
				out = append(out, str)
			}
		}
		return out
	}
	return nil
}

// toGenaiContents maps messages onto Gemini roles. Consecutive tool results
// are merged into one user turn, which is how Gemini expects parallel
// function responses.
func toGenaiContents(msgs []core.Message) []*genai.Content {
	var out []*genai.Content
	for _, msg := range msgs {
		switch msg.Role {
		case core.RoleAssistant:
			c := &genai.Content{Role: "model"}
			if msg.Text != "" {
				c.Parts = append(c.Parts, genai.Text(msg.Text))
			}
			for _, tc := range msg.ToolCalls {
				c.Parts = append(c.Parts, genai.FunctionCall{Name: tc.Name, Args: tc.Args})
			}
			out = append(out, c)
		case core.RoleTool:
			part := genai.FunctionResponse{
				Name:     msg.ToolName,
				Response: map[string]any{"result": msg.Text},
			}
			if n := len(out); n > 0 && out[n-1].Role == "user" && isFunctionResponses(out[n-1]) {
				out[n-1].Parts = append(out[n-1].Parts, part)
				continue
			}
			out = append(out, &genai.Content{Role: "user", Parts: []genai.Part{part}})
		default:
			out = append(out, &genai.Content{Role: "user", Parts: []genai.Part{genai.Text(msg.Text)}})
		}
	}
	return out
}

func isFunctionResponses(c *genai.Content) bool {
	for _, p := range c.Parts {
		if _, ok := p.(genai.FunctionResponse); !ok {
			return false
		}
	}
	return len(c.Parts) > 0
}

func fromGenaiResponse(resp *genai.GenerateContentResponse) *core.ChatResponse {
	out := &core.ChatResponse{}
	if resp == nil || len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return out
	}

	var b strings.Builder
	for _, p := range resp.Candidates[0].Content.Parts {
		switch v := p.(type) {
		case genai.Text:
			b.WriteString(string(v))
		case genai.FunctionCall:
			out.ToolCalls = append(out.ToolCalls, core.ToolCall{
				ID:   fmt.Sprintf("call_%d", len(out.ToolCalls)+1),
				Name: v.Name,
				Args: v.Args,
			})
		}
	}
	out.Text = b.String()
	return out
}

var _ core.LLMProvider = (*GeminiLLM)(nil)
