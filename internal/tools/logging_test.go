package tools

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

func loggedCall(t *testing.T, handler server.ToolHandlerFunc, args map[string]any) map[string]any {
	t.Helper()

	var buf bytes.Buffer
	logger := slog.New(slog.NewJSONHandler(&buf, nil))

	req := mcp.CallToolRequest{}
	req.Params.Name = "list_tickets"
	req.Params.Arguments = args

	wrapped := LoggingMiddleware(logger)(handler)
	wrapped(context.Background(), req)

	var record map[string]any
	if err := json.Unmarshal(buf.Bytes(), &record); err != nil {
		t.Fatalf("log line is not JSON: %v\n%s", err, buf.String())
	}
	return record
}

func TestLoggingMiddlewareSuccess(t *testing.T) {
	handler := func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		return mcp.NewToolResultText("three tickets"), nil
	}
	record := loggedCall(t, handler, map[string]any{"stage": "OPEN"})

	if record["event"] != "tool_call" || record["tool"] != "list_tickets" {
		t.Errorf("wrong event/tool: %v", record)
	}
	if record["status"] != "ok" {
		t.Errorf("got status %v, want ok", record["status"])
	}
	if record["response_bytes"].(float64) <= 0 {
		t.Errorf("got response_bytes %v, want > 0", record["response_bytes"])
	}
	if _, err := uuid.Parse(record["call_id"].(string)); err != nil {
		t.Errorf("call_id %v is not a UUID", record["call_id"])
	}
	if _, ok := record["duration_ms"]; !ok {
		t.Errorf("missing duration_ms: %v", record)
	}
	params := record["params"].(map[string]any)
	if params["stage"] != "OPEN" {
		t.Errorf("params not logged: %v", params)
	}
}

func TestLoggingMiddlewareError(t *testing.T) {
	handler := func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		return nil, errors.New("daktela tickets: status 500")
	}
	record := loggedCall(t, handler, nil)

	if record["status"] != "error" {
		t.Errorf("got status %v, want error", record["status"])
	}
	if record["error"] != "daktela tickets: status 500" {
		t.Errorf("got error %v", record["error"])
	}
	if _, ok := record["response_bytes"]; ok {
		t.Errorf("response_bytes should be absent on error: %v", record)
	}
}

func TestLoggingMiddlewareSanitizesParams(t *testing.T) {
	handler := func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		return mcp.NewToolResultText("ok"), nil
	}
	long := strings.Repeat("x", 250)
	record := loggedCall(t, handler, map[string]any{
		"password": "hunter2",
		"search":   long,
		"take":     50.0,
	})

	params := record["params"].(map[string]any)
	if params["password"] != "***" {
		t.Errorf("password not masked: %v", params["password"])
	}
	want := strings.Repeat("x", 200) + "...(+50 chars)"
	if params["search"] != want {
		t.Errorf("long value not clipped: got %d chars", len(params["search"].(string)))
	}
	if params["take"].(float64) != 50 {
		t.Errorf("non-string param mangled: %v", params["take"])
	}
}

func TestClip(t *testing.T) {
	if got := clip("short"); got != "short" {
		t.Errorf("clip(short) = %q", got)
	}
	// A multi-byte rune straddling the cut must not be split.
	s := strings.Repeat("a", 199) + "ě" + strings.Repeat("b", 10)
	got := clip(s)
	if !utf8.ValidString(got) {
		t.Errorf("clip split a rune: %q", got)
	}
	if !strings.HasSuffix(got, "...(+12 chars)") {
		t.Errorf("missing truncation note: %q", got)
	}
}
