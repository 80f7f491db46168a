package testutils

import (
	"context"
	"errors"
	"sync"

	"github.com/markdave123-py/Pagewise/internal/core"
)

var _ core.LLMProvider = (*ScriptedLLM)(nil)

// ScriptedLLM replays canned responses in order and records every request.
type ScriptedLLM struct {
	mu        sync.Mutex
	Responses []*core.ChatResponse
	Err       error
	Requests  []core.ChatRequest
}

// FinalText returns a model that answers every request with text.
func FinalText(text string) *ScriptedLLM {
	return &ScriptedLLM{Responses: []*core.ChatResponse{{Text: text}}}
}

func (s *ScriptedLLM) Chat(ctx context.Context, req *core.ChatRequest) (*core.ChatResponse, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	cp := *req
	cp.Messages = append([]core.Message(nil), req.Messages...)
	s.Requests = append(s.Requests, cp)

	if s.Err != nil {
		return nil, s.Err
	}
	if len(s.Responses) == 0 {
		return nil, errors.New("scripted llm: no responses left")
	}
	resp := s.Responses[0]
	if len(s.Responses) > 1 {
		s.Responses = s.Responses[1:]
	}
	return resp, nil
}

func (s *ScriptedLLM) Close() error { return nil }

// Calls returns how many requests were made.
func (s *ScriptedLLM) Calls() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.Requests)
}
