package tools

import (
	"context"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/daktela/mcp-daktela/internal/daktela"
	"github.com/daktela/mcp-daktela/internal/format"
)

// registerListActivities registers the list_activities tool.
func registerListActivities(s *server.MCPServer, svc *daktela.Service) {
	s.AddTool(
		mcp.NewTool("list_activities",
			mcp.WithDescription("List activities (calls, emails, chats, etc.) with optional filters. "+
				"Always specify type and/or a date range to keep results focused."),
			mcp.WithString("type", mcp.Description("Filter by activity channel type: CALL (phone), EMAIL, CHAT (web chat), SMS, "+
				"FBM (Facebook Messenger), IGDM (Instagram DM), WAP (WhatsApp), VBR (Viber), CUSTOM.")),
			mcp.WithString("action", mcp.Description("Filter by activity status/action: OPEN (in progress), WAIT (waiting), "+
				"POSTPONE (postponed), CLOSE (closed).")),
			mcp.WithString("queue", mcp.Description("Filter by queue internal name (e.g. '10333'). Use list_queues to find names.")),
			mcp.WithString("ticket", mcp.Description("Filter by ticket ID (numeric, e.g. '787979').")),
			mcp.WithString("user", mcp.Description(descAgentName)),
			mcp.WithString("date_from", mcp.Description("Filter by activity start time on or after this date (YYYY-MM-DD).")),
			mcp.WithString("date_to", mcp.Description("Filter by activity start time on or before this date (YYYY-MM-DD).")),
			mcp.WithString("sort", mcp.Description("Field to sort by. Useful values: time (activity start time), duration, time_close. "+
				"WARNING: only fields that exist on the activities endpoint work, do NOT use 'created' or 'edited' "+
				"(those are ticket fields, not activity fields).")),
			mcp.WithString("sort_dir", mcp.Description(descSortDir)),
			mcp.WithNumber("skip", mcp.Description(descSkip)),
			mcp.WithNumber("take", mcp.Description(descTakeData)),
		),
		func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			client, err := svc.ClientFor(ctx)
			if err != nil {
				return nil, err
			}
			args := req.GetArguments()
			skip := optionalInt(args, "skip", 0)
			take := capTake(optionalInt(args, "take", 50), maxTakeData)
			sort := daktela.ValidatedSort("activities", optionalString(args, "sort", ""))

			user := optionalString(args, "user", "")
			if user != "" {
				user, _, err = resolveUser(ctx, client, user)
				if err != nil {
					return nil, err
				}
			}

			var filters []daktela.Filter
			if v := optionalString(args, "type", ""); v != "" {
				filters = append(filters, daktela.Eq("type", v))
			}
			if v := optionalString(args, "action", ""); v != "" {
				filters = append(filters, daktela.Eq("action", v))
			}
			if v := optionalString(args, "queue", ""); v != "" {
				filters = append(filters, daktela.Eq("queue", v))
			}
			if v := optionalString(args, "ticket", ""); v != "" {
				filters = append(filters, daktela.Eq("ticket", v))
			}
			if user != "" {
				filters = append(filters, daktela.Eq("user", user))
			}
			filters = append(filters, daktela.DateFilters("time",
				optionalString(args, "date_from", ""), optionalString(args, "date_to", ""))...)

			result, err := client.List(ctx, "activities", daktela.ListOptions{
				Filters: filters,
				Skip:    skip,
				Take:    take,
				Sort:    sort,
				SortDir: optionalString(args, "sort_dir", "desc"),
			})
			if err != nil {
				return nil, err
			}
			return mcp.NewToolResultText(format.ActivityList(result.Data, result.Total, skip, client.BaseURL())), nil
		},
	)
}

// registerGetActivity registers the get_activity tool.
func registerGetActivity(s *server.MCPServer, svc *daktela.Service) {
	s.AddTool(
		mcp.NewTool("get_activity",
			mcp.WithDescription("Get full details of a single activity by its ID. Use this when you already know the activity ID. "+
				"Returns the complete activity record including all channel-specific fields."),
			mcp.WithString("name", mcp.Required(),
				mcp.Description("The activity ID (e.g. ACT00123). Always starts with 'ACT' followed by digits.")),
		),
		func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			client, err := svc.ClientFor(ctx)
			if err != nil {
				return nil, err
			}
			name, err := requireString(req.GetArguments(), "name")
			if err != nil {
				return nil, err
			}
			record, err := client.Get(ctx, "activities", name)
			if err != nil {
				return nil, err
			}
			if record == nil {
				return mcp.NewToolResultText(fmt.Sprintf("Activity '%s' not found.", name)), nil
			}
			return mcp.NewToolResultText(format.Activity(record, client.BaseURL(), true)), nil
		},
	)
}
