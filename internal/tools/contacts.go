package tools

import (
	"context"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/daktela/mcp-daktela/internal/daktela"
	"github.com/daktela/mcp-daktela/internal/format"
)

// registerListContacts registers the list_contacts tool.
func registerListContacts(s *server.MCPServer, svc *daktela.Service) {
	s.AddTool(
		mcp.NewTool("list_contacts",
			mcp.WithDescription("Search and list contacts. Each contact has firstname, lastname, title (full name), email, phone number."),
			mcp.WithString("search", mcp.Description("Search by full name (partial match, e.g. 'John' or 'Smith'). Searches the 'title' field.")),
			mcp.WithString("account", mcp.Description("Filter by account internal ID (e.g. 'account_674eda46162a8403430453'). "+
				"NOT a company name: call list_accounts(search='...') first to find the ID.")),
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

			var filters []daktela.Filter
			if v := optionalString(args, "search", ""); v != "" {
				filters = append(filters, daktela.Like("title", v))
			}
			if v := optionalString(args, "account", ""); v != "" {
				filters = append(filters, daktela.Eq("account", v))
			}

			result, err := client.List(ctx, "contacts", daktela.ListOptions{
				Filters: filters,
				Skip:    skip,
				Take:    take,
			})
			if err != nil {
				return nil, err
			}
			return mcp.NewToolResultText(format.ContactList(result.Data, result.Total, skip)), nil
		},
	)
}

// registerGetContact registers the get_contact tool.
func registerGetContact(s *server.MCPServer, svc *daktela.Service) {
	s.AddTool(
		mcp.NewTool("get_contact",
			mcp.WithDescription("Get full details of a single contact by its ID. Use this when you already know the contact ID."),
			mcp.WithString("name", mcp.Required(),
				mcp.Description("The contact ID (the 'name' field from list_contacts, e.g. CT00123).")),
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
			record, err := client.Get(ctx, "contacts", name)
			if err != nil {
				return nil, err
			}
			if record == nil {
				return mcp.NewToolResultText(fmt.Sprintf("Contact '%s' not found.", name)), nil
			}
			return mcp.NewToolResultText(format.Contact(record)), nil
		},
	)
}
