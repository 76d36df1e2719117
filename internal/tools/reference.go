package tools

import (
	"context"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/daktela/mcp-daktela/internal/daktela"
	"github.com/daktela/mcp-daktela/internal/format"
)

// registerReferenceList registers a plain skip/take listing over a reference
// endpoint, rendered as one name+title line per record. Reference pages with
// no filters applied are the ones the client-side cache serves.
func registerReferenceList(s *server.MCPServer, svc *daktela.Service, name, desc, endpoint, entity string, defaultTake int) {
	s.AddTool(
		mcp.NewTool(name,
			mcp.WithDescription(desc),
			mcp.WithNumber("skip", mcp.Description(descSkip)),
			mcp.WithNumber("take", mcp.Description(fmt.Sprintf("Number of records to return (default: %d).", defaultTake))),
		),
		func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			client, err := svc.ClientFor(ctx)
			if err != nil {
				return nil, err
			}
			args := req.GetArguments()
			skip := optionalInt(args, "skip", 0)
			take := optionalInt(args, "take", defaultTake)

			result, err := client.List(ctx, endpoint, daktela.ListOptions{Skip: skip, Take: take})
			if err != nil {
				return nil, err
			}
			return mcp.NewToolResultText(format.SimpleList(result.Data, result.Total, skip, entity)), nil
		},
	)
}

// registerListQueues registers the list_queues tool.
func registerListQueues(s *server.MCPServer, svc *daktela.Service) {
	registerReferenceList(s, svc, "list_queues",
		"List all queues. The 'name' field of each queue is used as the 'queue' filter in list_activities. "+
			"Queue types include: in (inbound calls), out (outbound calls), email, chat, sms, fbm, wap, vbr, etc.",
		"queues", "queues", maxTakeReference)
}

// registerListUsers registers the list_users tool.
func registerListUsers(s *server.MCPServer, svc *daktela.Service) {
	s.AddTool(
		mcp.NewTool("list_users",
			mcp.WithDescription("List or search agents/users. The 'name' field is the login name, 'title' is the display name. "+
				"NOTE: Most tools (list_tickets, count_tickets, list_activities, etc.) resolve agent names automatically, "+
				"you do NOT need to call list_users first. Use this tool only when you need to browse the user directory "+
				"or look up a specific agent's details."),
			mcp.WithString("search", mcp.Description("Search by agent display name (partial match, e.g. 'John Doe' or 'Hajek').")),
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

			var filters []daktela.Filter
			if v := optionalString(args, "search", ""); v != "" {
				filters = append(filters, daktela.Like("title", v))
			}

			result, err := client.List(ctx, "users", daktela.ListOptions{
				Filters: filters,
				Skip:    skip,
				Take:    take,
			})
			if err != nil {
				return nil, err
			}
			return mcp.NewToolResultText(format.SimpleList(result.Data, result.Total, skip, "users")), nil
		},
	)
}

// registerListGroups registers the list_groups tool.
func registerListGroups(s *server.MCPServer, svc *daktela.Service) {
	registerReferenceList(s, svc, "list_groups",
		"List all groups (used to organize categories, queues, users, or profiles).",
		"groups", "groups", 200)
}

// registerListPauses registers the list_pauses tool.
func registerListPauses(s *server.MCPServer, svc *daktela.Service) {
	registerReferenceList(s, svc, "list_pauses",
		"List all pause types available to agents (break reasons like wrap-up, DND, etc.).",
		"pauses", "pauses", 200)
}

// registerListStatuses registers the list_statuses tool.
func registerListStatuses(s *server.MCPServer, svc *daktela.Service) {
	registerReferenceList(s, svc, "list_statuses",
		"List all ticket/record statuses (reference data with name, title, color).",
		"statuses", "statuses", 200)
}

// registerListTemplates registers the list_templates tool.
func registerListTemplates(s *server.MCPServer, svc *daktela.Service) {
	registerReferenceList(s, svc, "list_templates",
		"List all message templates (for email, SMS, chat, WhatsApp, etc.).",
		"templates", "templates", 200)
}
