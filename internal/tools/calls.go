package tools

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"golang.org/x/sync/errgroup"

	"github.com/daktela/mcp-daktela/internal/daktela"
	"github.com/daktela/mcp-daktela/internal/format"
)

// registerListCalls registers the list_calls tool.
func registerListCalls(s *server.MCPServer, svc *daktela.Service) {
	s.AddTool(
		mcp.NewTool("list_calls",
			mcp.WithDescription("List phone calls with detailed call data (duration, CLID, missed calls, hold time). "+
				"Use this instead of list_activities(type='CALL') when you need call-specific fields."),
			mcp.WithString("queue", mcp.Description("Filter by queue internal name (e.g. '10333'). Use list_queues to find names.")),
			mcp.WithString("user", mcp.Description(descAgentName)),
			mcp.WithString("contact", mcp.Description(descContactID)),
			mcp.WithString("direction", mcp.Description("Filter by call direction: in (incoming), out (outgoing), internal.")),
			mcp.WithBoolean("answered", mcp.Description("Filter by whether the call was answered (true/false).")),
			mcp.WithString("date_from", mcp.Description("Filter by call start time on or after this date (YYYY-MM-DD).")),
			mcp.WithString("date_to", mcp.Description("Filter by call start time on or before this date (YYYY-MM-DD).")),
			mcp.WithString("sort", mcp.Description("Field to sort by. Useful values: call_time, duration, waiting_time, ringing_time. "+
				"WARNING: only call-specific fields work, do NOT use 'created' or 'edited'.")),
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
			sort := daktela.ValidatedSort("activitiesCall", optionalString(args, "sort", ""))

			user := optionalString(args, "user", "")
			if user != "" {
				user, _, err = resolveUser(ctx, client, user)
				if err != nil {
					return nil, err
				}
			}

			var filters []daktela.Filter
			if v := optionalString(args, "queue", ""); v != "" {
				filters = append(filters, daktela.Eq("id_queue", v))
			}
			if user != "" {
				filters = append(filters, daktela.Eq("id_agent", user))
			}
			if v := optionalString(args, "contact", ""); v != "" {
				filters = append(filters, daktela.Eq("contact", v))
			}
			if v := optionalString(args, "direction", ""); v != "" {
				filters = append(filters, daktela.Eq("direction", v))
			}
			if v, ok := args["answered"].(bool); ok {
				filters = append(filters, daktela.Eq("answered", strconv.FormatBool(v)))
			}
			filters = append(filters, daktela.DateFilters("call_time",
				optionalString(args, "date_from", ""), optionalString(args, "date_to", ""))...)

			result, err := client.List(ctx, "activitiesCall", daktela.ListOptions{
				Filters: filters,
				Skip:    skip,
				Take:    take,
				Sort:    sort,
				SortDir: optionalString(args, "sort_dir", "desc"),
				// The expanded activities and contact objects run to 237 KB
				// per record; trimmed to these fields a record is 2.7 KB.
				// get_call returns the full record.
				Fields: []string{
					"id_call", "call_time", "direction", "answered",
					"id_queue", "id_agent", "clid",
					"prefix_clid_name", "did", "waiting_time",
					"ringing_time", "hold_time", "duration",
					"disposition_cause", "disconnection_cause",
					"pressed_key", "missed_call", "missed_call_time",
					"missed_callback", "attempts",
				},
			})
			if err != nil {
				return nil, err
			}
			return mcp.NewToolResultText(format.CallList(result.Data, result.Total, skip, client.BaseURL())), nil
		},
	)
}

// registerGetCall registers the get_call tool.
func registerGetCall(s *server.MCPServer, svc *daktela.Service) {
	s.AddTool(
		mcp.NewTool("get_call",
			mcp.WithDescription("Get full details of a single call by its call ID. Use this when you already know the call ID. "+
				"Returns call-specific fields: CLID, duration, wait/ring/hold times, missed call status, disposition."),
			mcp.WithString("name", mcp.Required(),
				mcp.Description("The call ID (the 'id_call' field from list_calls).")),
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
			record, err := client.Get(ctx, "activitiesCall", name)
			if err != nil {
				return nil, err
			}
			if record == nil {
				return mcp.NewToolResultText(fmt.Sprintf("Call '%s' not found.", name)), nil
			}
			return mcp.NewToolResultText(format.Call(record, client.BaseURL())), nil
		},
	)
}

// registerGetCallTranscript registers the get_call_transcript tool.
func registerGetCallTranscript(s *server.MCPServer, svc *daktela.Service) {
	s.AddTool(
		mcp.NewTool("get_call_transcript",
			mcp.WithDescription("Get the full speech-to-text transcript of a specific call. "+
				"Returns the spoken dialogue between customer and operator as a chronological transcript with timestamps. "+
				"Not all calls have transcripts: missed calls, short calls, and calls on queues without speech-to-text "+
				"will return \"No transcript available\"."),
			mcp.WithString("activity", mcp.Required(),
				mcp.Description("The activity name/ID (e.g. 'activity_699351d84288a407003861'). "+
					"This is the 'Activity' field shown in list_calls/get_call output, "+
					"or the 'name' field from list_activities.")),
		),
		func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			client, err := svc.ClientFor(ctx)
			if err != nil {
				return nil, err
			}
			activity, err := requireString(req.GetArguments(), "activity")
			if err != nil {
				return nil, err
			}
			result, err := client.List(ctx, "activitiesCallTranscripts", daktela.ListOptions{
				Filters: []daktela.Filter{daktela.Eq("activity", activity)},
				Take:    200,
				Sort:    "start",
				SortDir: "asc",
			})
			if err != nil {
				return nil, err
			}
			return mcp.NewToolResultText(format.Transcript(result.Data, activity)), nil
		},
	)
}

// registerListCallTranscripts registers the list_call_transcripts tool.
func registerListCallTranscripts(s *server.MCPServer, svc *daktela.Service) {
	s.AddTool(
		mcp.NewTool("list_call_transcripts",
			mcp.WithDescription("List answered calls with their full speech-to-text transcripts inline. "+
				"This is the primary tool for analyzing call quality, identifying calls requiring management attention, "+
				"detecting escalations, or reviewing agent performance. Each call is returned with its complete dialogue "+
				"(customer + operator). Calls without transcripts are included but marked \"No transcript available\". "+
				"For comprehensive analysis of a date range, paginate using skip: first call with skip=0, then skip=50, "+
				"skip=100, etc. until all calls are covered."),
			mcp.WithString("date_from", mcp.Description("Filter calls on or after this date (YYYY-MM-DD). Recommended: last 7 days.")),
			mcp.WithString("date_to", mcp.Description("Filter calls on or before this date (YYYY-MM-DD).")),
			mcp.WithString("user", mcp.Description(descAgentName)),
			mcp.WithString("queue", mcp.Description("Filter by queue internal name (e.g. '10333'). Use list_queues to find names.")),
			mcp.WithNumber("skip", mcp.Description("Number of calls to skip for pagination (default: 0).")),
			mcp.WithNumber("take", mcp.Description("Number of calls to fetch per page (default: 20, max: 50). "+
				"Each call includes its full transcript, fetched in parallel server-side.")),
		),
		func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			client, err := svc.ClientFor(ctx)
			if err != nil {
				return nil, err
			}
			args := req.GetArguments()
			skip := optionalInt(args, "skip", 0)
			take := capTake(optionalInt(args, "take", 20), 50)

			user := optionalString(args, "user", "")
			if user != "" {
				user, _, err = resolveUser(ctx, client, user)
				if err != nil {
					return nil, err
				}
			}

			filters := []daktela.Filter{daktela.Eq("answered", "true")}
			if v := optionalString(args, "queue", ""); v != "" {
				filters = append(filters, daktela.Eq("id_queue", v))
			}
			if user != "" {
				filters = append(filters, daktela.Eq("id_agent", user))
			}
			filters = append(filters, daktela.DateFilters("call_time",
				optionalString(args, "date_from", ""), optionalString(args, "date_to", ""))...)

			// Lightweight fields only: the expanded contact and agent objects
			// would blow up memory at transcript page sizes.
			calls, err := client.List(ctx, "activitiesCall", daktela.ListOptions{
				Filters: filters,
				Skip:    skip,
				Take:    take,
				Sort:    "call_time",
				SortDir: "desc",
				Fields: []string{
					"id_call", "call_time", "direction", "answered",
					"id_queue", "id_agent", "clid", "duration",
					"activities",
				},
			})
			if err != nil {
				return nil, err
			}
			if len(calls.Data) == 0 {
				return mcp.NewToolResultText("No answered calls found matching the filters."), nil
			}

			activityNames := make([]string, len(calls.Data))
			for i, call := range calls.Data {
				if acts, ok := call["activities"].([]any); ok && len(acts) > 0 {
					activityNames[i] = format.ExtractID(acts[0])
				}
			}

			transcripts := make([][]map[string]any, len(calls.Data))
			g, gctx := errgroup.WithContext(ctx)
			g.SetLimit(5)
			for i, name := range activityNames {
				if name == "" {
					continue
				}
				g.Go(func() error {
					segments, err := client.List(gctx, "activitiesCallTranscripts", daktela.ListOptions{
						Filters: []daktela.Filter{daktela.Eq("activity", name)},
						Take:    200,
						Sort:    "start",
						SortDir: "asc",
						Fields:  []string{"text", "type", "start", "end"},
					})
					if err != nil {
						return err
					}
					transcripts[i] = segments.Data
					return nil
				})
			}
			if err := g.Wait(); err != nil {
				return nil, err
			}

			parts := []string{fmt.Sprintf("Showing %d-%d of %d answered calls with transcripts:\n",
				skip+1, skip+len(calls.Data), calls.Total)}
			for i, call := range calls.Data {
				callText := format.Call(call, client.BaseURL())
				transcriptText := format.Transcript(transcripts[i], activityNames[i])
				parts = append(parts, callText+"\n"+transcriptText)
			}
			out := strings.Join(parts, "\n\n---\n\n")
			if skip+len(calls.Data) < calls.Total {
				out += fmt.Sprintf("\n\n(Use skip=%d to see next page)", skip+len(calls.Data))
			}
			return mcp.NewToolResultText(out), nil
		},
	)
}
