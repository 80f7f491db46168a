package llm

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"

	"github.com/markdave123-py/Pagewise/internal/core"
)

// OpenAILLM talks to any OpenAI-compatible chat completions endpoint.
type OpenAILLM struct {
	client openai.Client
	model  string
}

func NewOpenAILLM(apiKey, baseURL, model string) *OpenAILLM {
	var opts []option.RequestOption
	opts = append(opts, option.WithAPIKey(apiKey))
	if baseURL != "" {
		opts = append(opts, option.WithBaseURL(baseURL))
	}
	if model == "" {
		model = "gpt-4o-mini"
	}
	return &OpenAILLM{client: openai.NewClient(opts...), model: model}
}

func (o *OpenAILLM) Close() error { return nil }

func (o *OpenAILLM) Chat(ctx context.Context, req *core.ChatRequest) (*core.ChatResponse, error) {
	if len(req.Messages) == 0 {
		return nil, errors.New("openai generate: no messages")
	}

	params := openai.ChatCompletionNewParams{
		Model:    o.model,
		Messages: toOpenAIMessages(req.SystemPrompt, req.Messages),
	}
	for _, spec := range req.Tools {
		params.Tools = append(params.Tools, openai.ChatCompletionToolParam{
			Function: openai.FunctionDefinitionParam{
				Name:        spec.Name,
				Description: openai.String(spec.Description),
				Parameters:  openai.FunctionParameters(spec.Parameters),
			},
		})
	}

	completion, err := o.client.Chat.Completions.New(ctx, params)
	if err != nil {
		return nil, fmt.Errorf("openai generate: %w", err)
	}
	if len(completion.Choices) == 0 {
		return &core.ChatResponse{}, nil
	}
	return fromOpenAIMessage(completion.Choices[0].Message), nil
}

func toOpenAIMessages(system string, msgs []core.Message) []openai.ChatCompletionMessageParamUnion {
	out := make([]openai.ChatCompletionMessageParamUnion, 0, len(msgs)+1)
	if system != "" {
		out = append(out, openai.SystemMessage(system))
	}
	for _, msg := range msgs {
		switch msg.Role {
		case core.RoleAssistant:
			if len(msg.ToolCalls) == 0 {
				out = append(out, openai.AssistantMessage(msg.Text))
				continue
			}
			asst := openai.ChatCompletionAssistantMessageParam{}
			if msg.Text != "" {
				asst.Content.OfString = openai.String(msg.Text)
			}
			for _, tc := range msg.ToolCalls {
				args, err := json.Marshal(tc.Args)
				if err != nil {
					args = []byte("{}")
				}
				asst.ToolCalls = append(asst.ToolCalls, openai.ChatCompletionMessageToolCallParam{
					ID: tc.ID,
					Function: openai.ChatCompletionMessageToolCallFunctionParam{
						Name:      tc.Name,
						Arguments: string(args),
					},
				})
			}
			out = append(out, openai.ChatCompletionMessageParamUnion{OfAssistant: &asst})
		case core.RoleTool:
			out = append(out, openai.ToolMessage(msg.Text, msg.ToolCallID))
		default:
			out = append(out, openai.UserMessage(msg.Text))
		}
	}
	return out
}

// fromOpenAIMessage keeps tool calls with unparseable arguments; they reach
// the tool with nil args and fail validation there.
func fromOpenAIMessage(msg openai.ChatCompletionMessage) *core.ChatResponse {
	out := &core.ChatResponse{Text: msg.Content}
	for _, tc := range msg.ToolCalls {
		var args map[string]any
		_ = json.Unmarshal([]byte(tc.Function.Arguments), &args)
		out.ToolCalls = append(out.ToolCalls, core.ToolCall{
			ID:   tc.ID,
			Name: tc.Function.Name,
			Args: args,
		})
	}
	return out
}

var _ core.LLMProvider = (*OpenAILLM)(nil)
