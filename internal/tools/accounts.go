package tools

import (
	"context"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/daktela/mcp-daktela/internal/daktela"
	"github.com/daktela/mcp-daktela/internal/format"
)

// registerListAccounts registers the list_accounts tool.
func registerListAccounts(s *server.MCPServer, svc *daktela.Service) {
	s.AddTool(
		mcp.NewTool("list_accounts",
			mcp.WithDescription("List accounts (companies/organizations). Contacts belong to accounts."),
			mcp.WithString("user", mcp.Description("Filter by account owner login name (e.g. 'john.doe'). Use list_users to find login names.")),
			mcp.WithString("search", mcp.Description("Search by company name (partial match, e.g. 'Notino' or 'Siemens').")),
			mcp.WithString("date_from", mcp.Description("Filter accounts created on or after this date (YYYY-MM-DD).")),
			mcp.WithString("date_to", mcp.Description("Filter accounts created on or before this date (YYYY-MM-DD).")),
			mcp.WithString("sort", mcp.Description("Field to sort by (default: edited).")),
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
			sort := daktela.ValidatedSort("accounts", optionalString(args, "sort", "edited"))

			user := optionalString(args, "user", "")
			if user != "" {
				user, _, err = resolveUser(ctx, client, user)
				if err != nil {
					return nil, err
				}
			}

			var filters []daktela.Filter
			if user != "" {
				filters = append(filters, daktela.Eq("user", user))
			}
			if v := optionalString(args, "search", ""); v != "" {
				filters = append(filters, daktela.Like("title", v))
			}
			filters = append(filters, daktela.DateFilters("created",
				optionalString(args, "date_from", ""), optionalString(args, "date_to", ""))...)

			result, err := client.List(ctx, "accounts", daktela.ListOptions{
				Filters: filters,
				Skip:    skip,
				Take:    take,
				Sort:    sort,
				SortDir: optionalString(args, "sort_dir", "desc"),
				// A single raw account runs to 98 KB of nested blobs.
				Fields: []string{
					"name", "title", "user", "description", "sla",
					"created", "edited",
				},
			})
			if err != nil {
				return nil, err
			}
			return mcp.NewToolResultText(format.AccountList(result.Data, result.Total, skip)), nil
		},
	)
}

// registerGetAccount registers the get_account tool.
func registerGetAccount(s *server.MCPServer, svc *daktela.Service) {
	s.AddTool(
		mcp.NewTool("get_account",
			mcp.WithDescription("Get full details of a single account by its internal ID."),
			mcp.WithString("name", mcp.Required(),
				mcp.Description("The account internal ID (e.g. 'account_674eda46162a8403430453'). "+
					"Use list_accounts(search='...') to find the ID from a company name.")),
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
			record, err := client.Get(ctx, "accounts", name)
			if err != nil {
				return nil, err
			}
			if record == nil {
				return mcp.NewToolResultText(fmt.Sprintf("Account '%s' not found.", name)), nil
			}
			return mcp.NewToolResultText(format.Account(record, true)), nil
		},
	)
}
