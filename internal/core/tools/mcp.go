package tools

import (
	"context"
	"encoding/json"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"github.com/sirupsen/logrus"
)

// NewMCPServer publishes the given tools over the Model Context Protocol so
// external agents can use the same extraction capability.
func NewMCPServer(name, version string, logger *logrus.Logger, ts ...Tool) *server.MCPServer {
	s := server.NewMCPServer(name, version, server.WithToolCapabilities(false))
	for _, t := range ts {
		s.AddTool(MCPDefinition(t), MCPHandler(t, logger))
	}
	return s
}

// MCPDefinition converts a tool spec into its MCP definition.
func MCPDefinition(t Tool) mcp.Tool {
	spec := t.Spec()
	schema, err := json.Marshal(spec.Parameters)
	if err != nil {
		// parameter maps are static literals
		panic(err)
	}
	return mcp.NewToolWithRawSchema(spec.Name, spec.Description, schema)
}

// MCPHandler adapts Tool.Call to an MCP tool handler. Argument errors are
// reported as tool errors, not protocol errors.
func MCPHandler(t Tool, logger *logrus.Logger) server.ToolHandlerFunc {
	name := t.Spec().Name
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		args := req.GetArguments()
		logger.WithFields(logrus.Fields{"tool": name, "args": args}).Debug("mcp: tool call")

		out, err := t.Call(ctx, args)
		if err != nil {
			logger.WithError(err).WithField("tool", name).Warn("mcp: tool call rejected")
			return mcp.NewToolResultError(err.Error()), nil
		}
		return mcp.NewToolResultText(out), nil
	}
}
