// Package toolhost binds one tenant's tool registry onto an MCP server and
// serves it over SSE (C10). It is a pure composition step — no I/O happens
// here beyond what the mcp-go SDK's transport performs once the supervisor
// starts listening.
package toolhost

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/modelcontextprotocol/go-sdk/jsonschema"
	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/ai2b-pro/toolfleet/pkg/tools"
)

// toolNamespace is the wire-visible prefix every tool name is exposed
// under, per spec §6: the wire identifier for "search" is "zena_search".
const toolNamespace = "zena"

// Metrics receives per-call instrumentation. Implemented by
// internal/telemetry so this package doesn't import Prometheus directly.
type Metrics interface {
	ObserveToolCall(tenant, tool string, duration time.Duration, outcome string)
}

// Build assembles an http.Handler serving tenantName's tools over the
// MCP SSE transport. Each registered tool is namespaced as
// "zena_<name>" on the wire; handlers still see their original name.
func Build(tenantName string, registry *tools.Registry, metrics Metrics, logger *slog.Logger) (http.Handler, error) {
	server := mcp.NewServer(&mcp.Implementation{Name: tenantName, Version: "1.0.0"}, nil)

	for _, t := range registry.All() {
		t := t
		schema, err := schemaFromMap(t.InputSchema)
		if err != nil {
			return nil, fmt.Errorf("building input schema for tool %q: %w", t.Name, err)
		}

		mcpTool := &mcp.Tool{
			Name:        toolNamespace + "_" + t.Name,
			Description: t.Description,
			InputSchema: schema,
		}

		mcp.AddTool(server, mcpTool, instrument(tenantName, t, metrics, logger))
	}

	return mcp.NewSSEHandler(func(*http.Request) *mcp.Server { return server }), nil
}

// instrument wraps a tool's Handler with call-count/duration metrics and
// structured logging, closing over the tenant name so every emitted metric
// and log line carries it without threading it through the handler
// signature itself.
func instrument(tenantName string, t tools.Tool, metrics Metrics, logger *slog.Logger) mcp.ToolHandlerFor[map[string]any, any] {
	return func(ctx context.Context, _ *mcp.CallToolRequest, in map[string]any) (*mcp.CallToolResult, any, error) {
		start := time.Now()
		traceID := uuid.NewString()

		args, err := json.Marshal(in)
		if err != nil {
			return nil, nil, fmt.Errorf("re-encoding tool arguments for %q: %w", t.Name, err)
		}

		out, err := t.Handler(ctx, args)
		outcome := "ok"
		if err != nil {
			outcome = "error"
			logger.Error("tool handler failed", "trace_id", traceID, "tenant", tenantName, "tool", t.Name, "error", err)
		} else {
			logger.Debug("tool call completed", "trace_id", traceID, "tenant", tenantName, "tool", t.Name, "duration_ms", time.Since(start).Milliseconds())
		}
		if metrics != nil {
			metrics.ObserveToolCall(tenantName, t.Name, time.Since(start), outcome)
		}
		if err != nil {
			return nil, nil, err
		}
		return nil, out, nil
	}
}

// schemaFromMap converts a tool's loosely-typed JSON Schema description
// into the SDK's typed Schema via a JSON round trip, so tenant builders can
// keep writing schemas as plain map literals.
func schemaFromMap(m map[string]any) (*jsonschema.Schema, error) {
	if m == nil {
		return &jsonschema.Schema{Type: "object"}, nil
	}
	encoded, err := json.Marshal(m)
	if err != nil {
		return nil, err
	}
	var schema jsonschema.Schema
	if err := json.Unmarshal(encoded, &schema); err != nil {
		return nil, err
	}
	return &schema, nil
}
