package tools

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"

	"github.com/santhosh-tekuri/jsonschema/v5"

	"github.com/markdave123-py/Pagewise/internal/core"
)

// Tool is a function the agent may call before answering.
type Tool interface {
	Spec() core.ToolSpec
	Call(ctx context.Context, args map[string]any) (string, error)
}

// ArgsValidator checks tool arguments against the tool's parameter schema.
type ArgsValidator struct {
	schema *jsonschema.Schema
}

// NewArgsValidator compiles a JSON schema given as a map.
func NewArgsValidator(name string, schemaMap map[string]any) (*ArgsValidator, error) {
	b, err := json.Marshal(schemaMap)
	if err != nil {
		return nil, fmt.Errorf("marshal schema: %w", err)
	}
	url := name + ".schema.json"
	compiler := jsonschema.NewCompiler()
	if err := compiler.AddResource(url, bytes.NewReader(b)); err != nil {
		return nil, fmt.Errorf("add schema: %w", err)
	}
	schema, err := compiler.Compile(url)
	if err != nil {
		return nil, fmt.Errorf("compile schema: %w", err)
	}
	return &ArgsValidator{schema: schema}, nil
}

// Validate round-trips args through JSON so model-supplied Go values are
// checked exactly as the wire form would be.
func (v *ArgsValidator) Validate(args map[string]any) error {
	if args == nil {
		args = map[string]any{}
	}
	b, err := json.Marshal(args)
	if err != nil {
		return fmt.Errorf("marshal args: %w", err)
	}
	var doc any
	if err := json.Unmarshal(b, &doc); err != nil {
		return fmt.Errorf("unmarshal args: %w", err)
	}
	if err := v.schema.Validate(doc); err != nil {
		return fmt.Errorf("arguments do not match schema: %w", err)
	}
	return nil
}
