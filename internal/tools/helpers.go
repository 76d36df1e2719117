package tools

import (
	"context"
	"strings"

	"github.com/daktela/mcp-daktela/internal/daktela"
)

// Hard caps on page sizes. The backend expands nested objects aggressively,
// so an uncapped page can run to hundreds of megabytes.
const (
	maxTakeData      = 200  // tickets, activities, calls, emails, chats, CRM, campaigns
	maxTakeReference = 1000 // users, queues, categories, groups, statuses, pauses, templates
	maxTakeDetail    = 100  // activities inside get_ticket_detail
)

func capTake(take, max int) int {
	if take > max {
		return max
	}
	return take
}

func stringField(record map[string]any, key string) string {
	v, _ := record[key].(string)
	return v
}

// ticketName normalizes a ticket reference like TK00787979 to the plain
// numeric ID the API expects.
func ticketName(name string) string {
	cleaned := strings.TrimLeft(strings.TrimLeft(name, "TKtk"), "0")
	if cleaned == "" {
		return name
	}
	return cleaned
}

// pageSlice returns records[skip : skip+take] with both bounds clamped.
func pageSlice(records []map[string]any, skip, take int) []map[string]any {
	if skip < 0 {
		skip = 0
	}
	if skip > len(records) {
		skip = len(records)
	}
	end := skip + take
	if end < skip {
		end = skip
	}
	if end > len(records) {
		end = len(records)
	}
	return records[skip:end]
}

// resolveUser resolves an agent reference, display name or login name, to
// (login, displayName). It searches by display name first, preferring an
// exact title match over the first partial one, then falls back to a login
// name search. Unmatched input is returned as is so the filter still applies
// verbatim.
func resolveUser(ctx context.Context, client *daktela.Client, input string) (string, string, error) {
	want := strings.ToLower(strings.TrimSpace(input))

	byTitle, err := client.List(ctx, "users", daktela.ListOptions{
		Filters: []daktela.Filter{daktela.Like("title", input)},
		Take:    10,
		Fields:  []string{"name", "title"},
	})
	if err != nil {
		return "", "", err
	}
	if len(byTitle.Data) > 0 {
		for _, u := range byTitle.Data {
			title := stringField(u, "title")
			if strings.ToLower(strings.TrimSpace(title)) == want {
				return stringField(u, "name"), title, nil
			}
		}
		return stringField(byTitle.Data[0], "name"), stringField(byTitle.Data[0], "title"), nil
	}

	byName, err := client.List(ctx, "users", daktela.ListOptions{
		Filters: []daktela.Filter{daktela.Like("name", input)},
		Take:    10,
		Fields:  []string{"name", "title"},
	})
	if err != nil {
		return "", "", err
	}
	if len(byName.Data) > 0 {
		for _, u := range byName.Data {
			name := stringField(u, "name")
			if strings.ToLower(name) == want {
				return name, stringField(u, "title"), nil
			}
		}
		return stringField(byName.Data[0], "name"), stringField(byName.Data[0], "title"), nil
	}

	return input, "", nil
}

// ticketFilterParams collects the filter arguments shared by list_tickets,
// count_tickets, and list_account_tickets. The user field must already be a
// resolved login name.
type ticketFilterParams struct {
	category      string
	stage         string
	priority      string
	user          string
	contact       string
	search        string
	status        string
	includeMerged bool
	dateFrom      string
	dateTo        string
}

func ticketFilters(p ticketFilterParams) []daktela.Filter {
	var filters []daktela.Filter
	if p.category != "" {
		filters = append(filters, daktela.Eq("category", p.category))
	}
	if p.stage != "" {
		filters = append(filters, daktela.Eq("stage", p.stage))
	}
	if p.priority != "" {
		filters = append(filters, daktela.Eq("priority", p.priority))
	}
	if p.user != "" {
		filters = append(filters, daktela.Eq("user", p.user))
	}
	if p.contact != "" {
		filters = append(filters, daktela.Eq("contact", p.contact))
	}
	if p.search != "" {
		filters = append(filters, daktela.Like("title", p.search))
	}
	if p.status != "" {
		filters = append(filters, daktela.Eq("statuses", p.status))
	}
	if !p.includeMerged {
		filters = append(filters, daktela.IsNull("id_merge"))
	}
	return append(filters, daktela.DateFilters("created", p.dateFrom, p.dateTo)...)
}
