package tools

import (
	"context"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/daktela/mcp-daktela/internal/daktela"
	"github.com/daktela/mcp-daktela/internal/format"
)

// registerListCampaignRecords registers the list_campaign_records tool.
func registerListCampaignRecords(s *server.MCPServer, svc *daktela.Service) {
	s.AddTool(
		mcp.NewTool("list_campaign_records",
			mcp.WithDescription("List campaign records (outbound campaign activity: calls made, results)."),
			mcp.WithString("user", mcp.Description(descAgentName)),
			mcp.WithString("contact", mcp.Description(descContactID)),
			mcp.WithString("date_from", mcp.Description("Filter records created on or after this date (YYYY-MM-DD).")),
			mcp.WithString("date_to", mcp.Description("Filter records created on or before this date (YYYY-MM-DD).")),
			mcp.WithString("sort", mcp.Description("Field to sort by. Useful values: created, edited, nextcall.")),
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
			sort := daktela.ValidatedSort("campaignsRecords", optionalString(args, "sort", ""))

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
			filters = append(filters, daktela.DateFilters("created",
				optionalString(args, "date_from", ""), optionalString(args, "date_to", ""))...)

			result, err := client.List(ctx, "campaignsRecords", daktela.ListOptions{
				Filters: filters,
				Skip:    skip,
				Take:    take,
				Sort:    sort,
				SortDir: optionalString(args, "sort_dir", "desc"),
			})
			if err != nil {
				return nil, err
			}
			return mcp.NewToolResultText(format.CampaignRecordList(result.Data, result.Total, skip)), nil
		},
	)
}

// registerListCampaignTypes registers the list_campaign_types tool.
func registerListCampaignTypes(s *server.MCPServer, svc *daktela.Service) {
	registerReferenceList(s, svc, "list_campaign_types",
		"List all campaign types (reference data for outbound campaigns).",
		"campaignsTypes", "campaign types", 200)
}
