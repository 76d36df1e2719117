package tools

import (
	"context"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"golang.org/x/sync/errgroup"

	"github.com/daktela/mcp-daktela/internal/daktela"
	"github.com/daktela/mcp-daktela/internal/format"
)

const (
	descTicketStage = "Ticket lifecycle stage, exact values (case-sensitive): " +
		"'OPEN' = agent actively working on it, 'WAIT' = reply sent, awaiting customer response, " +
		"'CLOSE' = resolved/solved, 'ARCHIVE' = resolved and archived. " +
		"When user says \"open tickets\", use stage='OPEN'."
	descTicketPriority = "Filter by priority: LOW, MEDIUM, HIGH."
	descTicketCategory = "Filter by category internal name (use list_ticket_categories to find valid names)."
	descTicketStatus   = "Filter by workflow status name (e.g. 'S0-Qualify', 'S1-Discovery'). " +
		"Use list_statuses to see available status names. This filters on the ticket's statuses MN relation, " +
		"useful for sales pipeline stages and custom workflows."
	descTicketSort = "Field to sort by. Useful values: edited (default), created, sla_deadtime, " +
		"sla_close_deadline, last_activity."
	descAgentName = "Agent name: either a display name (e.g. 'John Doe') or login name (e.g. 'john.doe'). " +
		"Display names are resolved automatically, you do NOT need to call list_users first."
	descContactID = "Filter by contact internal ID (e.g. 'contact_674eda46162a8403430453'). " +
		"NOT a person's name: call list_contacts(search='...') first to find the ID."
	descSortDir      = "Sort direction: asc or desc (default: desc)."
	descSkip         = "Pagination offset (default: 0)."
	descTakeData     = "Number of records to return (default: 50, max: 200)."
	descIncludeMerge = "Include tickets that were merged into other tickets (default: false)."
)

// registerListTickets registers the list_tickets tool.
func registerListTickets(s *server.MCPServer, svc *daktela.Service) {
	s.AddTool(
		mcp.NewTool("list_tickets",
			mcp.WithDescription("List tickets with optional filters. Returns one page of results."),
			mcp.WithString("category", mcp.Description(descTicketCategory)),
			mcp.WithString("stage", mcp.Description(descTicketStage)),
			mcp.WithString("priority", mcp.Description(descTicketPriority)),
			mcp.WithString("user", mcp.Description(descAgentName)),
			mcp.WithString("contact", mcp.Description(descContactID)),
			mcp.WithString("search", mcp.Description("Full-text search across ticket title and description (partial match).")),
			mcp.WithString("status", mcp.Description(descTicketStatus)),
			mcp.WithString("date_from", mcp.Description("Filter tickets created on or after this date (YYYY-MM-DD).")),
			mcp.WithString("date_to", mcp.Description("Filter tickets created on or before this date (YYYY-MM-DD).")),
			mcp.WithBoolean("include_merged", mcp.Description(descIncludeMerge)),
			mcp.WithString("sort", mcp.Description(descTicketSort)),
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
			sort := daktela.ValidatedSort("tickets", optionalString(args, "sort", "edited"))
			sortDir := optionalString(args, "sort_dir", "desc")

			user := optionalString(args, "user", "")
			resolvedName := ""
			if user != "" {
				user, resolvedName, err = resolveUser(ctx, client, user)
				if err != nil {
					return nil, err
				}
			}

			result, err := client.List(ctx, "tickets", daktela.ListOptions{
				Filters: ticketFilters(ticketFilterParams{
					category:      optionalString(args, "category", ""),
					stage:         optionalString(args, "stage", ""),
					priority:      optionalString(args, "priority", ""),
					user:          user,
					contact:       optionalString(args, "contact", ""),
					search:        optionalString(args, "search", ""),
					status:        optionalString(args, "status", ""),
					includeMerged: optionalBool(args, "include_merged", false),
					dateFrom:      optionalString(args, "date_from", ""),
					dateTo:        optionalString(args, "date_to", ""),
				}),
				Skip:    skip,
				Take:    take,
				Sort:    sort,
				SortDir: sortDir,
			})
			if err != nil {
				return nil, err
			}

			header := ""
			if resolvedName != "" {
				header = fmt.Sprintf("Agent: **%s** (%s)\n\n", resolvedName, user)
			}
			return mcp.NewToolResultText(header + format.TicketList(result.Data, result.Total, skip, client.BaseURL())), nil
		},
	)
}

// registerCountTickets registers the count_tickets tool.
func registerCountTickets(s *server.MCPServer, svc *daktela.Service) {
	s.AddTool(
		mcp.NewTool("count_tickets",
			mcp.WithDescription("Count tickets matching filters. Use this instead of list_tickets when you only need a number."),
			mcp.WithString("category", mcp.Description(descTicketCategory)),
			mcp.WithString("stage", mcp.Description(descTicketStage)),
			mcp.WithString("priority", mcp.Description(descTicketPriority)),
			mcp.WithString("user", mcp.Description(descAgentName)),
			mcp.WithString("contact", mcp.Description(descContactID)),
			mcp.WithString("search", mcp.Description("Full-text search across ticket title and description (partial match).")),
			mcp.WithString("status", mcp.Description(descTicketStatus)),
			mcp.WithString("date_from", mcp.Description("Filter tickets created on or after this date (YYYY-MM-DD).")),
			mcp.WithString("date_to", mcp.Description("Filter tickets created on or before this date (YYYY-MM-DD).")),
			mcp.WithBoolean("include_merged", mcp.Description(descIncludeMerge)),
		),
		func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			client, err := svc.ClientFor(ctx)
			if err != nil {
				return nil, err
			}
			args := req.GetArguments()

			user := optionalString(args, "user", "")
			resolvedName := ""
			if user != "" {
				user, resolvedName, err = resolveUser(ctx, client, user)
				if err != nil {
					return nil, err
				}
			}

			category := optionalString(args, "category", "")
			stage := optionalString(args, "stage", "")
			priority := optionalString(args, "priority", "")
			contact := optionalString(args, "contact", "")
			search := optionalString(args, "search", "")
			status := optionalString(args, "status", "")
			dateFrom := optionalString(args, "date_from", "")
			dateTo := optionalString(args, "date_to", "")

			result, err := client.List(ctx, "tickets", daktela.ListOptions{
				Filters: ticketFilters(ticketFilterParams{
					category:      category,
					stage:         stage,
					priority:      priority,
					user:          user,
					contact:       contact,
					search:        search,
					status:        status,
					includeMerged: optionalBool(args, "include_merged", false),
					dateFrom:      dateFrom,
					dateTo:        dateTo,
				}),
				Take:   1,
				Fields: []string{"name"},
			})
			if err != nil {
				return nil, err
			}

			var parts []string
			if category != "" {
				parts = append(parts, "category="+category)
			}
			if stage != "" {
				parts = append(parts, "stage="+stage)
			}
			if priority != "" {
				parts = append(parts, "priority="+priority)
			}
			if user != "" {
				label := user
				if resolvedName != "" {
					label = fmt.Sprintf("%s (%s)", resolvedName, user)
				}
				parts = append(parts, "user="+label)
			}
			if contact != "" {
				parts = append(parts, "contact="+contact)
			}
			if search != "" {
				parts = append(parts, fmt.Sprintf("search=%q", search))
			}
			if status != "" {
				parts = append(parts, "status="+status)
			}
			if dateFrom != "" {
				parts = append(parts, "from "+dateFrom)
			}
			if dateTo != "" {
				parts = append(parts, "to "+dateTo)
			}

			desc := ""
			if len(parts) > 0 {
				desc = fmt.Sprintf(" matching [%s]", strings.Join(parts, ", "))
			}
			return mcp.NewToolResultText(fmt.Sprintf("Total tickets%s: **%d**", desc, result.Total)), nil
		},
	)
}

// registerGetTicket registers the get_ticket tool.
func registerGetTicket(s *server.MCPServer, svc *daktela.Service) {
	s.AddTool(
		mcp.NewTool("get_ticket",
			mcp.WithDescription("Get full details of a single ticket by its ID. Use this when you already know the ticket ID."),
			mcp.WithString("name", mcp.Required(),
				mcp.Description("The ticket ID (numeric, e.g. 787979). If passed with a prefix like TK00787979, the prefix is stripped automatically.")),
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
			record, err := client.Get(ctx, "tickets", ticketName(name))
			if err != nil {
				return nil, err
			}
			if record == nil {
				return mcp.NewToolResultText(fmt.Sprintf("Ticket '%s' not found.", name)), nil
			}
			return mcp.NewToolResultText(format.Ticket(record, client.BaseURL(), true)), nil
		},
	)
}

// registerGetTicketDetail registers the get_ticket_detail tool.
func registerGetTicketDetail(s *server.MCPServer, svc *daktela.Service) {
	s.AddTool(
		mcp.NewTool("get_ticket_detail",
			mcp.WithDescription("Get a ticket with all its activities and their content in one call. "+
				"This is the recommended tool for analyzing a specific ticket: it returns the ticket details "+
				"plus all linked activities (calls, emails, chats, etc.) with their descriptions and metadata, "+
				"avoiding multiple round-trips."),
			mcp.WithString("name", mcp.Required(),
				mcp.Description("The ticket ID (numeric, e.g. 787979). Prefix like TK00787979 is stripped automatically.")),
			mcp.WithNumber("take", mcp.Description("Max number of activities to include (default: 50, max: 100).")),
		),
		func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			client, err := svc.ClientFor(ctx)
			if err != nil {
				return nil, err
			}
			args := req.GetArguments()
			name, err := requireString(args, "name")
			if err != nil {
				return nil, err
			}
			take := capTake(optionalInt(args, "take", 50), maxTakeDetail)
			cleaned := ticketName(name)

			ticket, err := client.Get(ctx, "tickets", cleaned)
			if err != nil {
				return nil, err
			}
			if ticket == nil {
				return mcp.NewToolResultText(fmt.Sprintf("Ticket '%s' not found.", name)), nil
			}

			activities, err := client.List(ctx, "activities", daktela.ListOptions{
				Filters: []daktela.Filter{daktela.Eq("ticket", cleaned)},
				Take:    take,
				Sort:    "time",
				SortDir: "asc",
			})
			if err != nil {
				return nil, err
			}

			parts := []string{format.Ticket(ticket, client.BaseURL(), true)}
			if len(activities.Data) > 0 {
				parts = append(parts, fmt.Sprintf("\n--- Activities (%d of %d) ---", len(activities.Data), activities.Total))
				for _, act := range activities.Data {
					parts = append(parts, format.Activity(act, client.BaseURL(), true))
				}
			} else {
				parts = append(parts, "\n--- No activities ---")
			}
			if activities.Total > take {
				parts = append(parts, fmt.Sprintf("\n(Showing first %d of %d activities. Use list_activities(ticket='%s', skip=%d) for more.)",
					take, activities.Total, cleaned, take))
			}
			return mcp.NewToolResultText(strings.Join(parts, "\n\n")), nil
		},
	)
}

// registerListAccountTickets registers the list_account_tickets tool.
//
// Tickets link to contacts, not accounts, so the lookup walks
// account -> contacts -> tickets with batched "in" queries.
func registerListAccountTickets(s *server.MCPServer, svc *daktela.Service) {
	s.AddTool(
		mcp.NewTool("list_account_tickets",
			mcp.WithDescription("List tickets for a specific account (company/organization). "+
				"Accepts both a company name (e.g. 'Notino') or an internal account ID. "+
				"The tool resolves the name automatically, you do NOT need to call list_accounts first."),
			mcp.WithString("account", mcp.Required(),
				mcp.Description("Company name (partial match, e.g. 'Notino', 'Siemens') or account ID.")),
			mcp.WithString("stage", mcp.Description("Ticket stage filter (default: 'OPEN'). Values: "+
				"'OPEN' = agent actively working on it (default), 'WAIT' = reply sent, awaiting customer response, "+
				"'CLOSE' = resolved/solved, 'ARCHIVE' = resolved and archived, "+
				"'ALL' = return tickets in any stage (slower for large accounts).")),
			mcp.WithString("priority", mcp.Description(descTicketPriority)),
			mcp.WithString("user", mcp.Description(descAgentName)),
			mcp.WithString("category", mcp.Description(descTicketCategory)),
			mcp.WithString("date_from", mcp.Description("Filter tickets created on or after this date (YYYY-MM-DD).")),
			mcp.WithString("date_to", mcp.Description("Filter tickets created on or before this date (YYYY-MM-DD).")),
			mcp.WithBoolean("include_merged", mcp.Description(descIncludeMerge)),
			mcp.WithString("sort", mcp.Description(descTicketSort)),
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
			account, err := requireString(args, "account")
			if err != nil {
				return nil, err
			}
			skip := optionalInt(args, "skip", 0)
			take := capTake(optionalInt(args, "take", 50), maxTakeData)
			sort := daktela.ValidatedSort("tickets", optionalString(args, "sort", "edited"))
			sortDir := optionalString(args, "sort_dir", "desc")

			// Resolve the account: exact ID first, then fuzzy title search.
			accountID, accountTitle := "", ""
			record, err := client.Get(ctx, "accounts", account)
			if err != nil {
				return nil, err
			}
			if record != nil {
				accountID = stringField(record, "name")
				accountTitle = stringField(record, "title")
			} else {
				search, err := client.List(ctx, "accounts", daktela.ListOptions{
					Filters: []daktela.Filter{daktela.Like("title", account)},
					Take:    1,
				})
				if err != nil {
					return nil, err
				}
				if len(search.Data) == 0 {
					return mcp.NewToolResultText(fmt.Sprintf("No account found matching '%s'.", account)), nil
				}
				accountID = stringField(search.Data[0], "name")
				accountTitle = stringField(search.Data[0], "title")
			}
			if accountTitle == "" {
				accountTitle = accountID
			}

			contacts, err := client.List(ctx, "contacts", daktela.ListOptions{
				Filters: []daktela.Filter{daktela.Eq("account", accountID)},
				Take:    1000,
				Fields:  []string{"name"},
			})
			if err != nil {
				return nil, err
			}
			contactNames := make([]string, 0, len(contacts.Data))
			for _, c := range contacts.Data {
				contactNames = append(contactNames, stringField(c, "name"))
			}
			if len(contactNames) == 0 {
				return mcp.NewToolResultText(fmt.Sprintf(
					"Account: **%s** (%s)\n\nNo contacts found for this account, so no tickets can be retrieved.",
					accountTitle, accountID)), nil
			}

			stage := optionalString(args, "stage", "OPEN")
			if strings.EqualFold(stage, "ALL") {
				stage = ""
			}
			filters := ticketFilters(ticketFilterParams{
				category:      optionalString(args, "category", ""),
				stage:         stage,
				priority:      optionalString(args, "priority", ""),
				user:          optionalString(args, "user", ""),
				includeMerged: optionalBool(args, "include_merged", false),
				dateFrom:      optionalString(args, "date_from", ""),
				dateTo:        optionalString(args, "date_to", ""),
			})

			const batchSize = 50
			const maxBatches = 10
			var batches [][]string
			for i := 0; i < len(contactNames); i += batchSize {
				end := i + batchSize
				if end > len(contactNames) {
					end = len(contactNames)
				}
				batches = append(batches, contactNames[i:end])
			}
			// Cap the fan-out to avoid hammering the API on huge accounts.
			if len(batches) > maxBatches {
				batches = batches[:maxBatches]
			}

			results := make([][]map[string]any, len(batches))
			g, gctx := errgroup.WithContext(ctx)
			g.SetLimit(maxBatches)
			for i, batch := range batches {
				g.Go(func() error {
					page, err := client.List(gctx, "tickets", daktela.ListOptions{
						Filters: append(filters[:len(filters):len(filters)], daktela.In("contact", batch)),
						Take:    1000,
						Sort:    sort,
						SortDir: sortDir,
					})
					if err != nil {
						return err
					}
					results[i] = page.Data
					return nil
				})
			}
			if err := g.Wait(); err != nil {
				return nil, err
			}

			var all []map[string]any
			seen := make(map[string]bool)
			for _, tickets := range results {
				for _, ticket := range tickets {
					id := format.ExtractID(ticket["name"])
					if !seen[id] {
						seen[id] = true
						all = append(all, ticket)
					}
				}
			}

			header := fmt.Sprintf("Account: **%s** (%s)\n\n", accountTitle, accountID)
			page := pageSlice(all, skip, take)
			return mcp.NewToolResultText(header + format.TicketList(page, len(all), skip, client.BaseURL())), nil
		},
	)
}

// registerListTicketCategories registers the list_ticket_categories tool.
func registerListTicketCategories(s *server.MCPServer, svc *daktela.Service) {
	registerReferenceList(s, svc, "list_ticket_categories",
		"List all ticket categories. Call this first to find valid category names for ticket filtering. "+
			"The 'name' field of each category is what you pass as the 'category' parameter in list_tickets/count_tickets.",
		"ticketsCategories", "categories", 200)
}
