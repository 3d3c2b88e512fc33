// Package tools defines the tool registry (C8): a pure descriptor type and
// a name-keyed registry, adapted from the teacher's pkg/messaging.Registry
// registration pattern generalized from "messaging provider" to "named
// tool". Nothing here performs I/O; tenant builders (pkg/tenants) construct
// Tools by closing handlers over the process-shared CRM gateway,
// availability engine, and retriever, plus per-tenant static data.
package tools

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/ai2b-pro/toolfleet/pkg/result"
)

// Handler executes one tool call. args is the raw JSON arguments object the
// caller sent; the returned value is marshaled to JSON as the tool's
// result. An error here always means a transport/protocol failure — business
// failures are represented in the returned value via result.Result[T],
// never as a Go error, so they reach the caller as data rather than as a
// tool-call failure.
type Handler func(ctx context.Context, args json.RawMessage) (any, error)

// Tool is a pure descriptor: name, LLM-facing description, JSON Schema for
// its input, and the handler that executes it. Description is generated at
// builder-construction time per tenant, since it enumerates that branch's
// allowed filter values (pkg/catalogue.Keys).
type Tool struct {
	Name        string
	Description string
	InputSchema map[string]any
	Handler     Handler
}

// Registry holds the tools composed for one tenant's MCP host.
type Registry struct {
	tools map[string]Tool
}

// NewRegistry creates an empty tool registry.
func NewRegistry() *Registry {
	return &Registry{tools: make(map[string]Tool)}
}

// Register adds a tool, keyed by its Name.
func (r *Registry) Register(t Tool) {
	r.tools[t.Name] = t
}

// Get returns the tool with the given name.
func (r *Registry) Get(name string) (Tool, error) {
	t, ok := r.tools[name]
	if !ok {
		return Tool{}, fmt.Errorf("tool %q not registered", name)
	}
	return t, nil
}

// All returns every registered tool, in no particular order.
func (r *Registry) All() []Tool {
	out := make([]Tool, 0, len(r.tools))
	for _, t := range r.tools {
		out = append(out, t)
	}
	return out
}

// HandlePlain adapts a function returning a plain value (not wrapped in
// result.Result) into a Handler — for tools like the session-memory stash
// tools whose output is a simple confirmation dict, not a CRM gateway call.
func HandlePlain[In any, Out any](fn func(ctx context.Context, in In) (Out, error)) Handler {
	return func(ctx context.Context, args json.RawMessage) (any, error) {
		var in In
		if len(args) > 0 {
			if err := json.Unmarshal(args, &in); err != nil {
				return nil, fmt.Errorf("decoding tool arguments: %w", err)
			}
		}
		return fn(ctx, in)
	}
}

// Handle adapts a result.Result[Out]-returning business function into a
// Handler: it decodes args into In, calls fn, and always returns the
// Result value itself (never a Go error) so that business failures travel
// to the caller as data per the ok(T)/err(code,msg) contract (C13), not as
// a tool-call failure. A Go error here means args didn't even decode.
func Handle[In any, Out any](fn func(ctx context.Context, in In) result.Result[Out]) Handler {
	return func(ctx context.Context, args json.RawMessage) (any, error) {
		var in In
		if len(args) > 0 {
			if err := json.Unmarshal(args, &in); err != nil {
				return nil, fmt.Errorf("decoding tool arguments: %w", err)
			}
		}
		return fn(ctx, in), nil
	}
}
