package tools

import (
	"context"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/daktela/mcp-daktela/internal/daktela"
	"github.com/daktela/mcp-daktela/internal/format"
)

// registerListCRMRecords registers the list_crm_records tool.
func registerListCRMRecords(s *server.MCPServer, svc *daktela.Service) {
	s.AddTool(
		mcp.NewTool("list_crm_records",
			mcp.WithDescription("List CRM records (deals, opportunities, or other CRM entities)."),
			mcp.WithString("user", mcp.Description("Filter by owner login name (e.g. 'john.doe'). Use list_users to find login names.")),
			mcp.WithString("contact", mcp.Description(descContactID)),
			mcp.WithString("account", mcp.Description("Filter by account internal ID (e.g. 'account_674eda46162a8403430453'). "+
				"NOT a company name: call list_accounts(search='...') first to find the ID.")),
			mcp.WithString("stage", mcp.Description("Filter by stage: OPEN or CLOSE.")),
			mcp.WithString("date_from", mcp.Description("Filter records created on or after this date (YYYY-MM-DD).")),
			mcp.WithString("date_to", mcp.Description("Filter records created on or before this date (YYYY-MM-DD).")),
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
			sort := daktela.ValidatedSort("crmRecords", optionalString(args, "sort", "edited"))

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
			if v := optionalString(args, "contact", ""); v != "" {
				filters = append(filters, daktela.Eq("contact", v))
			}
			if v := optionalString(args, "account", ""); v != "" {
				filters = append(filters, daktela.Eq("account", v))
			}
			if v := optionalString(args, "stage", ""); v != "" {
				filters = append(filters, daktela.Eq("stage", v))
			}
			filters = append(filters, daktela.DateFilters("created",
				optionalString(args, "date_from", ""), optionalString(args, "date_to", ""))...)

			result, err := client.List(ctx, "crmRecords", daktela.ListOptions{
				Filters: filters,
				Skip:    skip,
				Take:    take,
				Sort:    sort,
				SortDir: optionalString(args, "sort_dir", "desc"),
			})
			if err != nil {
				return nil, err
			}
			return mcp.NewToolResultText(format.CRMRecordList(result.Data, result.Total, skip)), nil
		},
	)
}
