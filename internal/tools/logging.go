package tools

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

// maxLoggedValueLen bounds how much of any single argument or error message
// ends up in a log line.
const maxLoggedValueLen = 200

// LoggingMiddleware returns a ToolHandlerMiddleware that emits one structured
// record per tool call: a call id, the tool name, sanitized arguments, the
// outcome, response size, and elapsed time.
func LoggingMiddleware(logger *slog.Logger) server.ToolHandlerMiddleware {
	return func(next server.ToolHandlerFunc) server.ToolHandlerFunc {
		return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			callID := uuid.NewString()
			start := time.Now()

			result, err := next(ctx, req)

			attrs := []any{
				slog.String("event", "tool_call"),
				slog.String("call_id", callID),
				slog.String("tool", req.Params.Name),
				slog.Any("params", sanitizeParams(req.GetArguments())),
				slog.Int64("duration_ms", time.Since(start).Milliseconds()),
			}
			if err != nil {
				attrs = append(attrs,
					slog.String("status", "error"),
					slog.String("error", clip(err.Error())),
				)
				logger.ErrorContext(ctx, "tool call failed", attrs...)
				return result, err
			}
			attrs = append(attrs,
				slog.String("status", "ok"),
				slog.Int("response_bytes", resultSize(result)),
			)
			logger.InfoContext(ctx, "tool call", attrs...)
			return result, nil
		}
	}
}

// sanitizeParams keeps log lines reasonable: long values are clipped and
// credential material is masked.
func sanitizeParams(params map[string]any) map[string]any {
	sanitized := make(map[string]any, len(params))
	for k, v := range params {
		if k == "password" {
			sanitized[k] = "***"
			continue
		}
		if s, ok := v.(string); ok {
			sanitized[k] = clip(s)
			continue
		}
		sanitized[k] = v
	}
	return sanitized
}

// clip truncates s to maxLoggedValueLen bytes at a rune boundary, noting how
// much was dropped.
func clip(s string) string {
	if len(s) <= maxLoggedValueLen {
		return s
	}
	cut := maxLoggedValueLen
	for cut > 0 && !utf8.RuneStart(s[cut]) {
		cut--
	}
	return fmt.Sprintf("%s...(+%d chars)", s[:cut], len(s)-cut)
}

// resultSize approximates the serialized size of the response content.
func resultSize(result *mcp.CallToolResult) int {
	if result == nil {
		return 0
	}
	raw, err := json.Marshal(result.Content)
	if err != nil {
		return 0
	}
	return len(raw)
}
