package tools

import (
	"context"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/daktela/mcp-daktela/internal/daktela"
	"github.com/daktela/mcp-daktela/internal/format"
)

// chatChannel describes one messaging channel's endpoint and tool naming.
// Every channel gets the same list/get pair; only the web channel has no
// direction filter (site visitors always initiate).
type chatChannel struct {
	endpoint  string
	listName  string
	getName   string
	entity    string // plural, for list headers ("SMS chats")
	label     string // singular, for not-found messages ("SMS")
	short     string // for the name argument description
	channel   string // rendering hint for format.Chat
	direction bool
	listDesc  string
	getDesc   string
}

var chatChannels = []chatChannel{
	{
		endpoint: "activitiesWeb",
		listName: "list_web_chats", getName: "get_web_chat",
		entity: "web chats", label: "Web chat", short: "web chat",
		channel:  "chat",
		listDesc: "List web chat activities with chat-specific fields (state, disconnection, missed).",
		getDesc:  "Get full details of a single web chat activity by its ID.",
	},
	{
		endpoint: "activitiesSms",
		listName: "list_sms_chats", getName: "get_sms",
		entity: "SMS chats", label: "SMS", short: "SMS",
		channel: "chat", direction: true,
		listDesc: "List SMS activities with SMS-specific fields (sender phone, direction, state).",
		getDesc:  "Get full details of a single SMS activity by its ID.",
	},
	{
		endpoint: "activitiesFbm",
		listName: "list_messenger_chats", getName: "get_messenger_chat",
		entity: "Messenger chats", label: "Messenger chat", short: "Messenger",
		channel: "chat", direction: true,
		listDesc: "List Facebook Messenger activities with channel-specific fields.",
		getDesc:  "Get full details of a single Facebook Messenger activity by its ID.",
	},
	{
		endpoint: "activitiesIgdm",
		listName: "list_instagram_chats", getName: "get_instagram_chat",
		entity: "Instagram chats", label: "Instagram chat", short: "Instagram",
		channel: "instagram", direction: true,
		listDesc: "List Instagram DM activities with channel-specific fields (type: DM/STORY_REPLY/STORY_MENTION).",
		getDesc:  "Get full details of a single Instagram DM activity by its ID.",
	},
	{
		endpoint: "activitiesWap",
		listName: "list_whatsapp_chats", getName: "get_whatsapp_chat",
		entity: "WhatsApp chats", label: "WhatsApp chat", short: "WhatsApp",
		channel: "chat", direction: true,
		listDesc: "List WhatsApp activities with channel-specific fields.",
		getDesc:  "Get full details of a single WhatsApp activity by its ID.",
	},
	{
		endpoint: "activitiesVbr",
		listName: "list_viber_chats", getName: "get_viber_chat",
		entity: "Viber chats", label: "Viber chat", short: "Viber",
		channel: "chat", direction: true,
		listDesc: "List Viber activities with channel-specific fields.",
		getDesc:  "Get full details of a single Viber activity by its ID.",
	},
}

// registerChatTools registers the list/get tool pair for every chat channel.
func registerChatTools(s *server.MCPServer, svc *daktela.Service) {
	for _, ch := range chatChannels {
		registerListChats(s, svc, ch)
		registerGetChat(s, svc, ch)
	}
}

func registerListChats(s *server.MCPServer, svc *daktela.Service, ch chatChannel) {
	opts := []mcp.ToolOption{
		mcp.WithDescription(ch.listDesc),
		mcp.WithString("queue", mcp.Description("Filter by queue internal name (e.g. '10333'). Use list_queues to find names.")),
		mcp.WithString("user", mcp.Description(descAgentName)),
		mcp.WithString("contact", mcp.Description(descContactID)),
	}
	if ch.direction {
		opts = append(opts, mcp.WithString("direction", mcp.Description("Filter by direction: IN or OUT.")))
	}
	opts = append(opts,
		mcp.WithString("date_from", mcp.Description("Filter by activity start time on or after this date (YYYY-MM-DD).")),
		mcp.WithString("date_to", mcp.Description("Filter by activity start time on or before this date (YYYY-MM-DD).")),
		mcp.WithString("sort", mcp.Description("Field to sort by. Useful values: time, duration, wait_time. "+
			"WARNING: only fields that exist on this endpoint work, do NOT use 'created' or 'edited'.")),
		mcp.WithString("sort_dir", mcp.Description(descSortDir)),
		mcp.WithNumber("skip", mcp.Description(descSkip)),
		mcp.WithNumber("take", mcp.Description(descTakeData)),
	)
	s.AddTool(
		mcp.NewTool(ch.listName, opts...),
		func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			client, err := svc.ClientFor(ctx)
			if err != nil {
				return nil, err
			}
			args := req.GetArguments()
			skip := optionalInt(args, "skip", 0)
			take := capTake(optionalInt(args, "take", 50), maxTakeData)
			sort := daktela.ValidatedSort(ch.endpoint, optionalString(args, "sort", ""))

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
			if ch.direction {
				if v := optionalString(args, "direction", ""); v != "" {
					filters = append(filters, daktela.Eq("direction", v))
				}
			}
			filters = append(filters, daktela.DateFilters("time",
				optionalString(args, "date_from", ""), optionalString(args, "date_to", ""))...)

			result, err := client.List(ctx, ch.endpoint, daktela.ListOptions{
				Filters: filters,
				Skip:    skip,
				Take:    take,
				Sort:    sort,
				SortDir: optionalString(args, "sort_dir", "desc"),
			})
			if err != nil {
				return nil, err
			}
			return mcp.NewToolResultText(format.ChatList(result.Data, result.Total, skip, ch.entity, ch.channel, client.BaseURL())), nil
		},
	)
}

func registerGetChat(s *server.MCPServer, svc *daktela.Service, ch chatChannel) {
	s.AddTool(
		mcp.NewTool(ch.getName,
			mcp.WithDescription(ch.getDesc),
			mcp.WithString("name", mcp.Required(),
				mcp.Description(fmt.Sprintf("The %s activity ID (e.g. 'ACT00123' or the 'name' field from %s).", ch.short, ch.listName))),
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
			record, err := client.Get(ctx, ch.endpoint, name)
			if err != nil {
				return nil, err
			}
			if record == nil {
				return mcp.NewToolResultText(fmt.Sprintf("%s '%s' not found.", ch.label, name)), nil
			}
			return mcp.NewToolResultText(format.Chat(record, ch.channel, client.BaseURL())), nil
		},
	)
}
