package tools

import (
	"context"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/daktela/mcp-daktela/internal/daktela"
	"github.com/daktela/mcp-daktela/internal/format"
)

// registerListRealtimeSessions registers the list_realtime_sessions tool.
func registerListRealtimeSessions(s *server.MCPServer, svc *daktela.Service) {
	s.AddTool(
		mcp.NewTool("list_realtime_sessions",
			mcp.WithDescription("List currently active agent sessions (real-time snapshot). "+
				"Shows which agents are online, their state (Idle/Paused/Session), extension, and pause reason."),
			mcp.WithNumber("skip", mcp.Description(descSkip)),
			mcp.WithNumber("take", mcp.Description("Number of records to return (default: 200).")),
		),
		func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			client, err := svc.ClientFor(ctx)
			if err != nil {
				return nil, err
			}
			args := req.GetArguments()
			skip := optionalInt(args, "skip", 0)
			take := optionalInt(args, "take", 200)

			result, err := client.List(ctx, "realtimeSessions", daktela.ListOptions{Skip: skip, Take: take})
			if err != nil {
				return nil, err
			}
			return mcp.NewToolResultText(format.RealtimeSessionList(result.Data, result.Total, skip)), nil
		},
	)
}
