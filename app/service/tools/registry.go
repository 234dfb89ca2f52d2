package tools

import (
	"aarogya/app/config"
	"context"
	"encoding/json"
	"log/slog"

	"github.com/samber/do"
	"github.com/tmc/langchaingo/tools"
)

// Entry is a registered tool plus the JSON schema of its input object,
// which the reasoning engine advertises to the model.
type Entry struct {
	tools.Tool
	Schema json.RawMessage
}

type Definition struct {
	Name        string
	Description string
	Schema      json.RawMessage
}

// Registry dispatches tool calls by name. Execution failures never
// escape: the reasoning stream must be able to continue past a broken
// tool, so failures become "no data" payloads.
type Registry struct {
	entries map[string]Entry
	order   []string
}

func NewRegistry(di *do.Injector) (*Registry, error) {
	cfg := do.MustInvoke[*config.Config](di)

	r := &Registry{
		entries: map[string]Entry{},
	}

	r.Register(newFacilityTool(), facilityToolSchema)
	r.Register(newEmergencyNumbersTool(), emergencyNumbersSchema)

	if err := r.registerMCPServers(cfg.Tools.MCP); err != nil {
		// External tool servers are optional, the built-ins are not.
		slog.Error("MCP server registration failed", "error", err)
	}

	return r, nil
}

func (r *Registry) Register(t tools.Tool, schema json.RawMessage) {
	if _, exists := r.entries[t.Name()]; !exists {
		r.order = append(r.order, t.Name())
	}

	r.entries[t.Name()] = Entry{Tool: t, Schema: schema}
}

func (r *Registry) Definitions() []Definition {
	result := make([]Definition, 0, len(r.order))

	for _, name := range r.order {
		e := r.entries[name]
		result = append(result, Definition{
			Name:        name,
			Description: e.Description(),
			Schema:      e.Schema,
		})
	}

	return result
}

// Execute runs a tool and always returns a JSON payload. Unknown names
// and failed executions produce structured "not found" results instead
// of errors.
func (r *Registry) Execute(ctx context.Context, name, input string) json.RawMessage {
	e, ok := r.entries[name]
	if !ok {
		slog.Warn("Unknown tool requested", "tool", name)
		return json.RawMessage(`{"found":false,"error":"tool not found"}`)
	}

	output, err := e.Call(ctx, input)
	if err != nil {
		slog.Warn("Tool execution failed", "tool", name, "error", err)
		return json.RawMessage(`{"found":false,"error":"tool execution failed"}`)
	}

	if !json.Valid([]byte(output)) {
		quoted, _ := json.Marshal(output)
		return quoted
	}

	return json.RawMessage(output)
}
