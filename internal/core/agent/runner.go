package agent

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/markdave123-py/Pagewise/internal/core"
)

// DefaultMaxTurns bounds model round trips in a single run.
const DefaultMaxTurns = 10

var (
	ErrMaxTurnsExceeded = errors.New("agent: max turns exceeded")
	ErrUnknownTool      = errors.New("agent: model called an unknown tool")
)

// ToolInvocation records one tool call made during a run.
type ToolInvocation struct {
	Name   string         `json:"name"`
	Args   map[string]any `json:"args"`
	Output string         `json:"-"`
}

// Result is the outcome of a run.
type Result struct {
	FinalOutput string           `json:"final_output"`
	Turns       int              `json:"turns"`
	ToolCalls   []ToolInvocation `json:"tool_calls"`
}

// Runner drives an agent synchronously.
type Runner struct {
	logger   *logrus.Logger
	maxTurns int
	timeout  time.Duration
}

func NewRunner(logger *logrus.Logger, maxTurns int, timeout time.Duration) *Runner {
	if maxTurns <= 0 {
		maxTurns = DefaultMaxTurns
	}
	return &Runner{logger: logger, maxTurns: maxTurns, timeout: timeout}
}

// Run sends input to the agent's model and executes requested tool calls
// until a turn comes back without any. Model errors are returned wrapped and
// never retried. Tool argument errors are fed back to the model as the tool
// result so it can correct itself.
func (r *Runner) Run(ctx context.Context, a *Agent, input string) (*Result, error) {
	if r.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.timeout)
		defer cancel()
	}

	log := r.logger.WithField("agent", a.Name)
	specs := a.toolSpecs()
	msgs := []core.Message{{Role: core.RoleUser, Text: input}}
	res := &Result{}

	for turn := 1; turn <= r.maxTurns; turn++ {
		res.Turns = turn
		start := time.Now()

		resp, err := a.Model.Chat(ctx, &core.ChatRequest{
			SystemPrompt: a.Instructions,
			Messages:     msgs,
			Tools:        specs,
		})
		if err != nil {
			return nil, fmt.Errorf("agent %q: model call failed: %w", a.Name, err)
		}

		log.WithFields(logrus.Fields{
			"turn":       turn,
			"tool_calls": len(resp.ToolCalls),
			"elapsed":    time.Since(start).String(),
		}).Debug("agent: model turn")

		if len(resp.ToolCalls) == 0 {
			res.FinalOutput = resp.Text
			return res, nil
		}

		msgs = append(msgs, core.Message{Role: core.RoleAssistant, Text: resp.Text, ToolCalls: resp.ToolCalls})

		for _, call := range resp.ToolCalls {
			tool, ok := a.tool(call.Name)
			if !ok {
				return nil, fmt.Errorf("%w: %s", ErrUnknownTool, call.Name)
			}

			out, err := tool.Call(ctx, call.Args)
			if err != nil {
				log.WithError(err).WithField("tool", call.Name).Warn("agent: invalid tool arguments")
				out = fmt.Sprintf("Error: %v", err)
			}

			res.ToolCalls = append(res.ToolCalls, ToolInvocation{Name: call.Name, Args: call.Args, Output: out})
			msgs = append(msgs, core.Message{
				Role:       core.RoleTool,
				Text:       out,
				ToolCallID: call.ID,
				ToolName:   call.Name,
			})
		}
	}

	return nil, fmt.Errorf("%w (%d)", ErrMaxTurnsExceeded, r.maxTurns)
}
