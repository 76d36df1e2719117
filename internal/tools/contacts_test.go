package tools

import (
	"strings"
	"testing"
)

func TestListContacts(t *testing.T) {
	fake := newFakeDaktela()
	fake.static("contacts", []map[string]any{
		{"name": "contact_1", "title": "Jana Novotna"},
	}, 1)
	s := testServer(t, fake)

	result, err := callTool(t, s, "list_contacts", map[string]any{
		"search":  "Novotna",
		"account": "acct1",
	})
	if err != nil {
		t.Fatalf("list_contacts: %v", err)
	}
	text := resultText(t, result)

	if !strings.Contains(text, "Jana Novotna") {
		t.Errorf("contact not rendered:\n%s", text)
	}

	q := fake.listQueries("contacts")[0]
	if !hasFilter(q, "title like %Novotna%") {
		t.Errorf("filters: %v", filterParams(q))
	}
	if !hasFilter(q, "account eq acct1") {
		t.Errorf("filters: %v", filterParams(q))
	}
}

func TestGetContact(t *testing.T) {
	fake := newFakeDaktela()
	fake.record("contacts", "contact_1", map[string]any{
		"name": "contact_1", "title": "Jana Novotna",
	})
	s := testServer(t, fake)

	result, err := callTool(t, s, "get_contact", map[string]any{"name": "contact_1"})
	if err != nil {
		t.Fatalf("get_contact: %v", err)
	}
	if text := resultText(t, result); !strings.Contains(text, "Jana Novotna") {
		t.Errorf("contact not rendered:\n%s", text)
	}

	missing, err := callTool(t, s, "get_contact", map[string]any{"name": "contact_9"})
	if err != nil {
		t.Fatalf("get_contact: %v", err)
	}
	if text := resultText(t, missing); text != "Contact 'contact_9' not found." {
		t.Errorf("got %q", text)
	}
}
