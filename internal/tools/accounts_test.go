package tools

import (
	"strings"
	"testing"
)

func TestListAccounts(t *testing.T) {
	fake := newFakeDaktela()
	fake.static("users", []map[string]any{
		{"name": "john.doe", "title": "John Doe"},
	}, 1)
	fake.static("accounts", []map[string]any{
		{"name": "acct1", "title": "Acme Corp"},
	}, 9)
	s := testServer(t, fake)

	result, err := callTool(t, s, "list_accounts", map[string]any{
		"user":   "John Doe",
		"search": "Acme",
	})
	if err != nil {
		t.Fatalf("list_accounts: %v", err)
	}
	text := resultText(t, result)

	if !strings.Contains(text, "Showing 1-1 of 9 accounts:") {
		t.Errorf("missing page header in:\n%s", text)
	}
	if !strings.Contains(text, "Acme Corp") {
		t.Errorf("account not rendered:\n%s", text)
	}

	q := fake.listQueries("accounts")[0]
	if !hasFilter(q, "user eq john.doe") {
		t.Errorf("resolved owner filter missing: %v", filterParams(q))
	}
	if !hasFilter(q, "title like %Acme%") {
		t.Errorf("filters: %v", filterParams(q))
	}
	if q.Get("sort[0][field]") != "edited" {
		t.Errorf("got sort %s, want edited", q.Get("sort[0][field]"))
	}
	if q.Get("fields[0]") != "name" || q.Get("fields[6]") != "edited" {
		t.Errorf("field projection wrong: fields[0]=%s fields[6]=%s", q.Get("fields[0]"), q.Get("fields[6]"))
	}
}

func TestGetAccount(t *testing.T) {
	fake := newFakeDaktela()
	fake.record("accounts", "acct1", map[string]any{
		"name": "acct1", "title": "Acme Corp",
	})
	s := testServer(t, fake)

	result, err := callTool(t, s, "get_account", map[string]any{"name": "acct1"})
	if err != nil {
		t.Fatalf("get_account: %v", err)
	}
	if text := resultText(t, result); !strings.Contains(text, "Acme Corp") {
		t.Errorf("account not rendered:\n%s", text)
	}

	missing, err := callTool(t, s, "get_account", map[string]any{"name": "acct9"})
	if err != nil {
		t.Fatalf("get_account: %v", err)
	}
	if text := resultText(t, missing); text != "Account 'acct9' not found." {
		t.Errorf("got %q", text)
	}
}
