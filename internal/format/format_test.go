package format

import (
	"strings"
	"testing"
)

func TestExtractName(t *testing.T) {
	cases := []struct {
		name  string
		input any
		want  string
	}{
		{"nil", nil, ""},
		{"plain string", "queue_5", "queue_5"},
		{"title preferred", map[string]any{"name": "u1", "title": "Jane Doe"}, "Jane Doe"},
		{"name fallback", map[string]any{"name": "u1"}, "u1"},
		{"empty object", map[string]any{}, ""},
		{"numeric id", float64(822810), "822810"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := extractName(tc.input); got != tc.want {
				t.Errorf("extractName(%v) = %q, want %q", tc.input, got, tc.want)
			}
		})
	}
}

func TestExtractID(t *testing.T) {
	if got := ExtractID(map[string]any{"name": float64(42), "title": "ignored"}); got != "42" {
		t.Errorf("ExtractID = %q, want 42", got)
	}
	if got := ExtractID("822810"); got != "822810" {
		t.Errorf("ExtractID = %q, want 822810", got)
	}
	if got := ExtractID(nil); got != "" {
		t.Errorf("ExtractID(nil) = %q, want empty", got)
	}
}

func TestReadableLabel(t *testing.T) {
	cases := []struct{ in, want string }{
		{"lead_type", "Lead type"},
		{"leadType", "Lead type"},
		{"nps-score", "Nps score"},
		{"orderNumberFull", "Order number full"},
		{"x", "X"},
	}
	for _, tc := range cases {
		if got := readableLabel(tc.in); got != tc.want {
			t.Errorf("readableLabel(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestTruncate(t *testing.T) {
	if got := truncate("  short  ", 10); got != "short" {
		t.Errorf("truncate = %q, want trimmed passthrough", got)
	}
	got := truncate(strings.Repeat("a", 20), 10)
	if got != strings.Repeat("a", 10)+"..." {
		t.Errorf("truncate = %q", got)
	}
	// Rune-based limit must not split multibyte characters.
	got = truncate(strings.Repeat("ž", 20), 10)
	if got != strings.Repeat("ž", 10)+"..." {
		t.Errorf("truncate multibyte = %q", got)
	}
}

func TestFormatValue(t *testing.T) {
	if got, ok := formatValue(map[string]any{"title": "Sales"}); !ok || got != "Sales" {
		t.Errorf("object = (%q, %v)", got, ok)
	}
	if _, ok := formatValue(map[string]any{}); ok {
		t.Error("empty object should be skipped")
	}
	if got, ok := formatValue([]any{map[string]any{"name": "a"}, "b"}); !ok || got != "a, b" {
		t.Errorf("list = (%q, %v)", got, ok)
	}
	if got, _ := formatValue(true); got != "Yes" {
		t.Errorf("bool = %q, want Yes", got)
	}
	if got, ok := formatValue(float64(0)); !ok || got != "0" {
		t.Errorf("zero number = (%q, %v), want rendered", got, ok)
	}
	if _, ok := formatValue(""); ok {
		t.Error("empty string should be skipped")
	}
}

func TestTicket(t *testing.T) {
	ticket := map[string]any{
		"name":         "822810",
		"title":        "Printer broken",
		"stage":        map[string]any{"name": "OPEN", "title": "Open"},
		"priority":     "High",
		"category":     map[string]any{"title": "Hardware"},
		"user":         map[string]any{"title": "Jane Doe"},
		"created":      "2026-01-10 09:00:00",
		"created_by":   map[string]any{"title": "Admin"},
		"sla_deadtime": "2026-01-12 09:00:00",
		"sla_overdue":  float64(120),
		"unread":       true,
		"description":  "Paper jam on floor 3",
		"customFields": map[string]any{
			"lead_type": []any{"Partner"},
		},
		"building": "HQ",
	}
	out := Ticket(ticket, "https://example.daktela.com/", false)

	wantFirst := "**[822810](https://example.daktela.com/tickets/update/822810)** - Printer broken"
	lines := strings.Split(out, "\n")
	if lines[0] != wantFirst {
		t.Errorf("first line = %q, want %q", lines[0], wantFirst)
	}
	for _, want := range []string{
		"  Link: https://example.daktela.com/tickets/update/822810",
		"  Stage: Open | priority=High",
		"  Category: Hardware",
		"  Assigned to: Jane Doe",
		"  SLA deadline: 2026-01-12 09:00:00 (overdue by 120s)",
		"  Created: 2026-01-10 09:00:00 by Admin",
		"  Unread: yes",
		"  Description: Paper jam on floor 3",
		"  Lead type: Partner",
		"  Building: HQ",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q\n%s", want, out)
		}
	}
}

func TestTicketWithoutBaseURL(t *testing.T) {
	out := Ticket(map[string]any{"name": "5", "title": "T"}, "", false)
	if strings.Contains(out, "Link:") {
		t.Errorf("no base URL should mean no link line:\n%s", out)
	}
	if !strings.HasPrefix(out, "**5** - T") {
		t.Errorf("unlinked header = %q", out)
	}
}

func TestTicketDetailKeepsFullDescription(t *testing.T) {
	long := strings.Repeat("x", 400)
	out := Ticket(map[string]any{"name": "1", "description": long}, "", true)
	if !strings.Contains(out, long) {
		t.Error("detail mode should keep the full description")
	}
	out = Ticket(map[string]any{"name": "1", "description": long}, "", false)
	if strings.Contains(out, long) || !strings.Contains(out, "...") {
		t.Error("list mode should truncate the description")
	}
}

func TestTicketList(t *testing.T) {
	records := []map[string]any{
		{"name": "1", "title": "A"},
		{"name": "2", "title": "B"},
	}
	out := TicketList(records, 5, 0, "")
	if !strings.HasPrefix(out, "Showing 1-2 of 5 tickets.\nIMPORTANT: Always include the Link URL for each ticket in your response.\n\n") {
		t.Errorf("header wrong:\n%s", out)
	}
	if !strings.HasSuffix(out, "(Use skip=2 to see next page)") {
		t.Errorf("missing next-page hint:\n%s", out)
	}

	out = TicketList(records, 2, 0, "")
	if strings.Contains(out, "skip=") {
		t.Error("complete page should not hint at a next page")
	}

	if got := TicketList(nil, 0, 0, ""); got != "No tickets found." {
		t.Errorf("empty list = %q", got)
	}
}

func TestContactFullName(t *testing.T) {
	out := Contact(map[string]any{
		"name":      "contact_77",
		"firstname": "Jana",
		"lastname":  "Novakova",
		"email":     "jana@example.com",
		"nps_score": float64(0),
	})
	lines := strings.Split(out, "\n")
	if lines[0] != "**contact_77** - Jana Novakova" {
		t.Errorf("header = %q", lines[0])
	}
	if !strings.Contains(out, "  Email: jana@example.com") {
		t.Errorf("missing email:\n%s", out)
	}
	if !strings.Contains(out, "  NPS score: 0") {
		t.Errorf("zero NPS score should still render:\n%s", out)
	}
}

func TestAccount(t *testing.T) {
	out := Account(map[string]any{
		"name":  "acct_1",
		"title": "Acme s.r.o.",
		"user":  map[string]any{"title": "Owner One"},
		"sla":   map[string]any{"title": "Gold"},
	}, false)
	if !strings.HasPrefix(out, "**acct_1** - Acme s.r.o.") {
		t.Errorf("header = %q", out)
	}
	for _, want := range []string{"  Owner: Owner One", "  SLA: Gold"} {
		if !strings.Contains(out, want) {
			t.Errorf("missing %q:\n%s", want, out)
		}
	}
}

func TestCRMRecord(t *testing.T) {
	out := CRMRecord(map[string]any{
		"name":   "crm_9",
		"title":  "Renewal",
		"stage":  "OPEN",
		"status": map[string]any{"title": "In progress"},
		"ticket": map[string]any{"name": "822810", "title": "Printer broken"},
	}, false)
	for _, want := range []string{
		"**crm_9** - Renewal",
		"  Stage: OPEN",
		"  Status: In progress",
		"  Ticket: Printer broken",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("missing %q:\n%s", want, out)
		}
	}
}

func TestCampaignRecordActionLabels(t *testing.T) {
	out := CampaignRecord(map[string]any{"name": "rec_1", "action": "5"})
	if !strings.Contains(out, "  Action: Done") {
		t.Errorf("action 5 should map to Done:\n%s", out)
	}
	out = CampaignRecord(map[string]any{"name": "rec_2", "action": float64(2)})
	if !strings.Contains(out, "  Action: Rescheduled by Dialer") {
		t.Errorf("numeric action should map too:\n%s", out)
	}
	out = CampaignRecord(map[string]any{"name": "rec_3", "action": "9"})
	if !strings.Contains(out, "  Action: 9") {
		t.Errorf("unknown action kept raw:\n%s", out)
	}
}

func TestCustomFieldsSortedAndLabeled(t *testing.T) {
	out := Ticket(map[string]any{
		"name": "1",
		"customFields": map[string]any{
			"zebra_field": "z",
			"alpha_field": "a",
		},
	}, "", false)
	alpha := strings.Index(out, "Alpha field: a")
	zebra := strings.Index(out, "Zebra field: z")
	if alpha == -1 || zebra == -1 {
		t.Fatalf("custom fields missing:\n%s", out)
	}
	if alpha > zebra {
		t.Error("custom fields should render in sorted key order")
	}
}

func TestExtraFieldsSkipPrivateKeys(t *testing.T) {
	out := Ticket(map[string]any{
		"name":    "1",
		"_fields": []any{"internal"},
		"extra":   "visible",
	}, "", false)
	if strings.Contains(out, "internal") {
		t.Errorf("underscore keys must be hidden:\n%s", out)
	}
	if !strings.Contains(out, "  Extra: visible") {
		t.Errorf("unknown keys should render:\n%s", out)
	}
}
