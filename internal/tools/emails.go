package tools

import (
	"context"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/daktela/mcp-daktela/internal/daktela"
	"github.com/daktela/mcp-daktela/internal/format"
)

// registerListEmails registers the list_emails tool.
func registerListEmails(s *server.MCPServer, svc *daktela.Service) {
	s.AddTool(
		mcp.NewTool("list_emails",
			mcp.WithDescription("List email activities with email-specific fields (subject, address, state). "+
				"Use this instead of list_activities(type='EMAIL') when you need email details."),
			mcp.WithString("queue", mcp.Description("Filter by queue internal name (e.g. '10333'). Use list_queues to find names.")),
			mcp.WithString("user", mcp.Description(descAgentName)),
			mcp.WithString("contact", mcp.Description(descContactID)),
			mcp.WithString("direction", mcp.Description("Filter by direction: in (incoming) or out (outgoing).")),
			mcp.WithString("date_from", mcp.Description("Filter by email start time on or after this date (YYYY-MM-DD).")),
			mcp.WithString("date_to", mcp.Description("Filter by email start time on or before this date (YYYY-MM-DD).")),
			mcp.WithString("sort", mcp.Description("Field to sort by. Useful values: time (email time), duration, wait_time. "+
				"WARNING: only email-specific fields work, do NOT use 'created' or 'edited'.")),
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
			sort := daktela.ValidatedSort("activitiesEmail", optionalString(args, "sort", ""))
			direction := strings.ToLower(optionalString(args, "direction", ""))

			user := optionalString(args, "user", "")
			if user != "" {
				user, _, err = resolveUser(ctx, client, user)
				if err != nil {
					return nil, err
				}
			}

			var filters []daktela.Filter
			if v := optionalString(args, "queue", ""); v != "" {
				filters = append(filters, daktela.Eq("queue", v))
			}
			if user != "" {
				filters = append(filters, daktela.Eq("user", user))
			}
			if v := optionalString(args, "contact", ""); v != "" {
				filters = append(filters, daktela.Eq("contact", v))
			}
			if direction != "" {
				filters = append(filters, daktela.Eq("direction", direction))
			}
			filters = append(filters, daktela.DateFilters("time",
				optionalString(args, "date_from", ""), optionalString(args, "date_to", ""))...)

			result, err := client.List(ctx, "activitiesEmail", daktela.ListOptions{
				Filters: filters,
				Skip:    skip,
				Take:    take,
				Sort:    sort,
				SortDir: optionalString(args, "sort_dir", "desc"),
				// The expanded activities and contact objects run to 221 KB
				// per record; trimmed it is 27 KB. get_email returns everything.
				Fields: []string{
					"name", "queue", "user", "title", "address",
					"direction", "wait_time", "duration", "answered",
					"text", "time", "state",
				},
			})
			if err != nil {
				return nil, err
			}
			return mcp.NewToolResultText(format.EmailList(result.Data, result.Total, skip, client.BaseURL())), nil
		},
	)
}

// registerGetEmail registers the get_email tool.
func registerGetEmail(s *server.MCPServer, svc *daktela.Service) {
	s.AddTool(
		mcp.NewTool("get_email",
			mcp.WithDescription("Get full details of a single email activity by its ID. "+
				"Returns email-specific fields including subject, address, body text, and timing."),
			mcp.WithString("name", mcp.Required(),
				mcp.Description("The email activity ID (e.g. 'ACT00123' or the 'name' field from list_emails).")),
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
			record, err := client.Get(ctx, "activitiesEmail", name)
			if err != nil {
				return nil, err
			}
			if record == nil {
				return mcp.NewToolResultText(fmt.Sprintf("Email '%s' not found.", name)), nil
			}
			return mcp.NewToolResultText(format.Email(record, client.BaseURL(), true)), nil
		},
	)
}
