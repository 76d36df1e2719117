package tools

import (
	"fmt"
	"net/url"
	"strings"
	"testing"
)

func ticket(name, title string) map[string]any {
	return map[string]any{"name": name, "title": title}
}

func TestListTicketsDefaults(t *testing.T) {
	fake := newFakeDaktela()
	fake.static("tickets", []map[string]any{
		ticket("101", "Printer jam"),
		ticket("102", "VPN down"),
	}, 7)
	s := testServer(t, fake)

	result, err := callTool(t, s, "list_tickets", nil)
	if err != nil {
		t.Fatalf("list_tickets: %v", err)
	}
	text := resultText(t, result)

	if !strings.Contains(text, "Showing 1-2 of 7 tickets.") {
		t.Errorf("missing page header in:\n%s", text)
	}
	if !strings.Contains(text, "Printer jam") || !strings.Contains(text, "VPN down") {
		t.Errorf("missing ticket titles in:\n%s", text)
	}

	queries := fake.listQueries("tickets")
	if len(queries) != 1 {
		t.Fatalf("got %d tickets queries, want 1", len(queries))
	}
	q := queries[0]
	if q.Get("skip") != "0" || q.Get("take") != "50" {
		t.Errorf("got skip=%s take=%s, want 0/50", q.Get("skip"), q.Get("take"))
	}
	if q.Get("sort[0][field]") != "edited" || q.Get("sort[0][dir]") != "desc" {
		t.Errorf("got sort %s %s, want edited desc", q.Get("sort[0][field]"), q.Get("sort[0][dir]"))
	}
	if !hasFilter(q, "id_merge isnull true") {
		t.Errorf("merged tickets not excluded, filters: %v", filterParams(q))
	}
}

func TestListTicketsResolvesAgentByDisplayName(t *testing.T) {
	fake := newFakeDaktela()
	fake.static("users", []map[string]any{
		{"name": "john.doe", "title": "John Doe"},
	}, 1)
	fake.static("tickets", []map[string]any{ticket("101", "Printer jam")}, 1)
	s := testServer(t, fake)

	result, err := callTool(t, s, "list_tickets", map[string]any{"user": "John Doe"})
	if err != nil {
		t.Fatalf("list_tickets: %v", err)
	}
	text := resultText(t, result)

	if !strings.HasPrefix(text, "Agent: **John Doe** (john.doe)\n\n") {
		t.Errorf("missing agent header in:\n%s", text)
	}

	userQueries := fake.listQueries("users")
	if len(userQueries) != 1 {
		t.Fatalf("got %d users queries, want 1", len(userQueries))
	}
	if !hasFilter(userQueries[0], "title like %John Doe%") {
		t.Errorf("user lookup filters: %v", filterParams(userQueries[0]))
	}
	if !hasFilter(fake.listQueries("tickets")[0], "user eq john.doe") {
		t.Errorf("ticket filters: %v", filterParams(fake.listQueries("tickets")[0]))
	}
}

func TestListTicketsPrefersExactTitleMatch(t *testing.T) {
	fake := newFakeDaktela()
	fake.static("users", []map[string]any{
		{"name": "john.doema", "title": "John Doeman"},
		{"name": "john.doe", "title": "John Doe"},
	}, 2)
	fake.static("tickets", nil, 0)
	s := testServer(t, fake)

	result, err := callTool(t, s, "list_tickets", map[string]any{"user": " john doe "})
	if err != nil {
		t.Fatalf("list_tickets: %v", err)
	}
	_ = resultText(t, result)

	if !hasFilter(fake.listQueries("tickets")[0], "user eq john.doe") {
		t.Errorf("exact title match not preferred, filters: %v", filterParams(fake.listQueries("tickets")[0]))
	}
}

func TestListTicketsFallsBackToLoginSearch(t *testing.T) {
	fake := newFakeDaktela()
	fake.lists["users"] = func(q url.Values) ([]map[string]any, int) {
		if hasFilter(q, "title like %jdoe%") {
			return nil, 0
		}
		return []map[string]any{{"name": "jdoe", "title": "Jane Doe"}}, 1
	}
	fake.static("tickets", nil, 0)
	s := testServer(t, fake)

	result, err := callTool(t, s, "list_tickets", map[string]any{"user": "jdoe"})
	if err != nil {
		t.Fatalf("list_tickets: %v", err)
	}
	text := resultText(t, result)

	if !strings.HasPrefix(text, "Agent: **Jane Doe** (jdoe)\n\n") {
		t.Errorf("missing agent header in:\n%s", text)
	}
	userQueries := fake.listQueries("users")
	if len(userQueries) != 2 {
		t.Fatalf("got %d users queries, want title then name lookup", len(userQueries))
	}
	if !hasFilter(userQueries[1], "name like %jdoe%") {
		t.Errorf("fallback lookup filters: %v", filterParams(userQueries[1]))
	}
}

func TestListTicketsKeepsUnresolvedAgent(t *testing.T) {
	fake := newFakeDaktela()
	fake.static("users", nil, 0)
	fake.static("tickets", nil, 0)
	s := testServer(t, fake)

	result, err := callTool(t, s, "list_tickets", map[string]any{"user": "ghost"})
	if err != nil {
		t.Fatalf("list_tickets: %v", err)
	}
	text := resultText(t, result)

	if strings.Contains(text, "Agent:") {
		t.Errorf("unexpected agent header in:\n%s", text)
	}
	if !hasFilter(fake.listQueries("tickets")[0], "user eq ghost") {
		t.Errorf("raw user filter not applied, filters: %v", filterParams(fake.listQueries("tickets")[0]))
	}
}

func TestListTicketsCapsTake(t *testing.T) {
	fake := newFakeDaktela()
	fake.static("tickets", nil, 0)
	s := testServer(t, fake)

	if _, err := callTool(t, s, "list_tickets", map[string]any{"take": 5000}); err != nil {
		t.Fatalf("list_tickets: %v", err)
	}
	if got := fake.listQueries("tickets")[0].Get("take"); got != "200" {
		t.Errorf("got take=%s, want 200", got)
	}
}

func TestCountTickets(t *testing.T) {
	fake := newFakeDaktela()
	fake.static("tickets", []map[string]any{ticket("101", "")}, 42)
	s := testServer(t, fake)

	result, err := callTool(t, s, "count_tickets", map[string]any{
		"stage":  "OPEN",
		"search": "printer",
	})
	if err != nil {
		t.Fatalf("count_tickets: %v", err)
	}
	text := resultText(t, result)

	want := `Total tickets matching [stage=OPEN, search="printer"]: **42**`
	if text != want {
		t.Errorf("got %q, want %q", text, want)
	}

	q := fake.listQueries("tickets")[0]
	if q.Get("take") != "1" || q.Get("fields[0]") != "name" {
		t.Errorf("count should fetch a single name-only record, got take=%s fields[0]=%s",
			q.Get("take"), q.Get("fields[0]"))
	}
}

func TestCountTicketsNoFilters(t *testing.T) {
	fake := newFakeDaktela()
	fake.static("tickets", nil, 13)
	s := testServer(t, fake)

	result, err := callTool(t, s, "count_tickets", nil)
	if err != nil {
		t.Fatalf("count_tickets: %v", err)
	}
	if text := resultText(t, result); text != "Total tickets: **13**" {
		t.Errorf("got %q", text)
	}
}

func TestGetTicketStripsPrefix(t *testing.T) {
	fake := newFakeDaktela()
	fake.record("tickets", "787979", map[string]any{
		"name": "787979", "title": "Broken invoice",
	})
	s := testServer(t, fake)

	result, err := callTool(t, s, "get_ticket", map[string]any{"name": "TK00787979"})
	if err != nil {
		t.Fatalf("get_ticket: %v", err)
	}
	text := resultText(t, result)

	if !strings.Contains(text, "Broken invoice") {
		t.Errorf("ticket not rendered:\n%s", text)
	}
	if !strings.Contains(text, "/tickets/update/787979") {
		t.Errorf("missing UI link in:\n%s", text)
	}
}

func TestGetTicketNotFoundEchoesInput(t *testing.T) {
	fake := newFakeDaktela()
	s := testServer(t, fake)

	result, err := callTool(t, s, "get_ticket", map[string]any{"name": "TK00999"})
	if err != nil {
		t.Fatalf("get_ticket: %v", err)
	}
	if text := resultText(t, result); text != "Ticket 'TK00999' not found." {
		t.Errorf("got %q", text)
	}
}

func TestGetTicketRequiresName(t *testing.T) {
	fake := newFakeDaktela()
	s := testServer(t, fake)

	if _, err := callTool(t, s, "get_ticket", nil); err == nil {
		t.Fatal("expected error for missing name")
	}
}

func TestGetTicketDetail(t *testing.T) {
	fake := newFakeDaktela()
	fake.record("tickets", "123", map[string]any{"name": "123", "title": "Slow laptop"})
	fake.static("activities", []map[string]any{
		{"name": "ACT1", "type": "CALL"},
		{"name": "ACT2", "type": "EMAIL"},
	}, 5)
	s := testServer(t, fake)

	result, err := callTool(t, s, "get_ticket_detail", map[string]any{"name": "TK123", "take": 2})
	if err != nil {
		t.Fatalf("get_ticket_detail: %v", err)
	}
	text := resultText(t, result)

	if !strings.Contains(text, "Slow laptop") {
		t.Errorf("ticket missing in:\n%s", text)
	}
	if !strings.Contains(text, "--- Activities (2 of 5) ---") {
		t.Errorf("activities header missing in:\n%s", text)
	}
	if !strings.Contains(text, "ACT1") || !strings.Contains(text, "ACT2") {
		t.Errorf("activities missing in:\n%s", text)
	}
	hint := "(Showing first 2 of 5 activities. Use list_activities(ticket='123', skip=2) for more.)"
	if !strings.Contains(text, hint) {
		t.Errorf("pagination hint missing in:\n%s", text)
	}

	q := fake.listQueries("activities")[0]
	if !hasFilter(q, "ticket eq 123") {
		t.Errorf("activities filters: %v", filterParams(q))
	}
	if q.Get("sort[0][field]") != "time" || q.Get("sort[0][dir]") != "asc" {
		t.Errorf("activities sorted %s %s, want time asc", q.Get("sort[0][field]"), q.Get("sort[0][dir]"))
	}
}

func TestGetTicketDetailNoActivities(t *testing.T) {
	fake := newFakeDaktela()
	fake.record("tickets", "123", map[string]any{"name": "123", "title": "Quiet ticket"})
	fake.static("activities", nil, 0)
	s := testServer(t, fake)

	result, err := callTool(t, s, "get_ticket_detail", map[string]any{"name": "123"})
	if err != nil {
		t.Fatalf("get_ticket_detail: %v", err)
	}
	text := resultText(t, result)

	if !strings.Contains(text, "--- No activities ---") {
		t.Errorf("missing no-activities marker in:\n%s", text)
	}
	if strings.Contains(text, "Showing first") {
		t.Errorf("unexpected pagination hint in:\n%s", text)
	}
}

func TestListAccountTickets(t *testing.T) {
	fake := newFakeDaktela()
	fake.record("accounts", "acct1", map[string]any{"name": "acct1", "title": "Acme Corp"})

	// 60 contacts force two query batches of 50 and 10.
	contacts := make([]map[string]any, 60)
	for i := range contacts {
		contacts[i] = map[string]any{"name": contactName(i)}
	}
	fake.static("contacts", contacts, 60)

	// The batches overlap on ticket 102 to exercise deduplication.
	fake.lists["tickets"] = func(q url.Values) ([]map[string]any, int) {
		if hasFilter(q, "contact in "+contactName(0)) {
			return []map[string]any{ticket("101", "First"), ticket("102", "Shared")}, 2
		}
		return []map[string]any{ticket("102", "Shared"), ticket("103", "Third")}, 2
	}
	s := testServer(t, fake)

	result, err := callTool(t, s, "list_account_tickets", map[string]any{"account": "acct1"})
	if err != nil {
		t.Fatalf("list_account_tickets: %v", err)
	}
	text := resultText(t, result)

	if !strings.HasPrefix(text, "Account: **Acme Corp** (acct1)\n\n") {
		t.Errorf("missing account header in:\n%s", text)
	}
	if !strings.Contains(text, "Showing 1-3 of 3 tickets.") {
		t.Errorf("overlapping ticket not deduplicated:\n%s", text)
	}
	for _, title := range []string{"First", "Shared", "Third"} {
		if !strings.Contains(text, title) {
			t.Errorf("ticket %q missing in:\n%s", title, text)
		}
	}
	if strings.Count(text, "Shared") != 1 {
		t.Errorf("duplicated ticket in:\n%s", text)
	}

	ticketQueries := fake.listQueries("tickets")
	if len(ticketQueries) != 2 {
		t.Fatalf("got %d ticket queries, want one per contact batch", len(ticketQueries))
	}
	for _, q := range ticketQueries {
		if !hasFilter(q, "stage eq OPEN") {
			t.Errorf("default stage filter missing: %v", filterParams(q))
		}
	}

	contactQuery := fake.listQueries("contacts")[0]
	if !hasFilter(contactQuery, "account eq acct1") {
		t.Errorf("contact filters: %v", filterParams(contactQuery))
	}
}

func TestListAccountTicketsResolvesTitle(t *testing.T) {
	fake := newFakeDaktela()
	fake.static("accounts", []map[string]any{
		{"name": "acct9", "title": "Notino"},
	}, 1)
	fake.static("contacts", []map[string]any{{"name": "c1"}}, 1)
	fake.static("tickets", []map[string]any{ticket("201", "Order stuck")}, 1)
	s := testServer(t, fake)

	result, err := callTool(t, s, "list_account_tickets", map[string]any{
		"account": "Notino",
		"stage":   "all",
	})
	if err != nil {
		t.Fatalf("list_account_tickets: %v", err)
	}
	text := resultText(t, result)

	if !strings.HasPrefix(text, "Account: **Notino** (acct9)\n\n") {
		t.Errorf("missing account header in:\n%s", text)
	}
	if !hasFilter(fake.listQueries("accounts")[0], "title like %Notino%") {
		t.Errorf("account lookup filters: %v", filterParams(fake.listQueries("accounts")[0]))
	}
	if hasFilter(fake.listQueries("tickets")[0], "stage eq OPEN") {
		t.Errorf("stage=all should drop the stage filter: %v", filterParams(fake.listQueries("tickets")[0]))
	}
}

func TestListAccountTicketsNoAccount(t *testing.T) {
	fake := newFakeDaktela()
	fake.static("accounts", nil, 0)
	s := testServer(t, fake)

	result, err := callTool(t, s, "list_account_tickets", map[string]any{"account": "ghost"})
	if err != nil {
		t.Fatalf("list_account_tickets: %v", err)
	}
	if text := resultText(t, result); text != "No account found matching 'ghost'." {
		t.Errorf("got %q", text)
	}
}

func TestListAccountTicketsNoContacts(t *testing.T) {
	fake := newFakeDaktela()
	fake.record("accounts", "acct1", map[string]any{"name": "acct1", "title": "Acme Corp"})
	fake.static("contacts", nil, 0)
	s := testServer(t, fake)

	result, err := callTool(t, s, "list_account_tickets", map[string]any{"account": "acct1"})
	if err != nil {
		t.Fatalf("list_account_tickets: %v", err)
	}
	want := "Account: **Acme Corp** (acct1)\n\nNo contacts found for this account, so no tickets can be retrieved."
	if text := resultText(t, result); text != want {
		t.Errorf("got %q, want %q", text, want)
	}
}

func contactName(i int) string {
	return fmt.Sprintf("contact_%03d", i)
}
