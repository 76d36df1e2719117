package format

import (
	"strings"
	"testing"
)

func TestCall(t *testing.T) {
	record := map[string]any{
		"id_call":          "call_123",
		"call_time":        "2026-02-01 10:15:00",
		"direction":        "in",
		"answered":         false,
		"clid":             "+420123456789",
		"prefix_clid_name": "CZ",
		"id_queue":         map[string]any{"title": "Support line"},
		"id_agent":         map[string]any{"title": "Jane Doe"},
		"duration":         float64(185),
		"waiting_time":     float64(12),
		"activities": []any{
			map[string]any{
				"name":   "act_9",
				"ticket": map[string]any{"name": "822810"},
			},
		},
	}
	out := Call(record, "https://example.daktela.com")
	for _, want := range []string{
		"**call_123**",
		"  Activity: act_9",
		"  Ticket: [822810](https://example.daktela.com/tickets/update/822810)",
		"  Time: 2026-02-01 10:15:00",
		"  Direction: in",
		"  Answered: No",
		"  Caller ID: CZ +420123456789",
		"  Queue: Support line",
		"  Agent: Jane Doe",
		"  Duration: 185s",
		"  Wait time: 12s",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("missing %q:\n%s", want, out)
		}
	}
}

func TestCallAcceptsGenericFieldNames(t *testing.T) {
	out := Call(map[string]any{
		"name":      "act_5",
		"queue":     map[string]any{"title": "Sales"},
		"user":      map[string]any{"title": "Bob"},
		"wait_time": float64(3),
	}, "")
	for _, want := range []string{"**act_5**", "  Queue: Sales", "  Agent: Bob", "  Wait time: 3s"} {
		if !strings.Contains(out, want) {
			t.Errorf("missing %q:\n%s", want, out)
		}
	}
}

func TestEmailLinksTicketFromActivities(t *testing.T) {
	out := Email(map[string]any{
		"name":    "email_1",
		"title":   "Invoice overdue",
		"address": "billing@example.com",
		"text":    "Please pay.",
		"activities": []any{
			map[string]any{"ticket": "822810"},
		},
	}, "https://example.daktela.com", false)
	for _, want := range []string{
		"**email_1** - Invoice overdue",
		"  Address: billing@example.com",
		"  Ticket: [822810](https://example.daktela.com/tickets/update/822810)",
		"  Body: Please pay.",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("missing %q:\n%s", want, out)
		}
	}
}

func TestChatTypeOnlyOnInstagram(t *testing.T) {
	record := map[string]any{"name": "chat_1", "type": "story_reply"}
	if out := Chat(record, "instagram", ""); !strings.Contains(out, "  Type: story_reply") {
		t.Errorf("instagram chat should show type:\n%s", out)
	}
	if out := Chat(record, "web", ""); strings.Contains(out, "Type:") {
		t.Errorf("non-instagram chat should hide type:\n%s", out)
	}
}

func TestChatList(t *testing.T) {
	out := ChatList([]map[string]any{{"name": "c1"}}, 3, 0, "WhatsApp chats", "whatsapp", "")
	if !strings.HasPrefix(out, "Showing 1-1 of 3 WhatsApp chats:\n") {
		t.Errorf("header = %q", out)
	}
	if !strings.Contains(out, "(Use skip=1 to see next page)") {
		t.Errorf("missing next-page hint:\n%s", out)
	}
	if got := ChatList(nil, 0, 0, "SMS chats", "sms", ""); got != "No SMS chats found." {
		t.Errorf("empty = %q", got)
	}
}

func TestSimpleRecord(t *testing.T) {
	got := SimpleRecord(map[string]any{
		"name":        "q_10",
		"title":       "Helpdesk",
		"type":        "email",
		"email":       "help@example.com",
		"description": "General inbound queue",
	})
	want := "**q_10** - Helpdesk [email] <help@example.com> (General inbound queue)"
	if got != want {
		t.Errorf("SimpleRecord = %q, want %q", got, want)
	}
}

func TestSimpleListJoinsSingleLines(t *testing.T) {
	records := []map[string]any{{"name": "a"}, {"name": "b"}}
	out := SimpleList(records, 2, 0, "queues")
	if !strings.Contains(out, "**a**\n**b**") {
		t.Errorf("simple list should be newline-joined:\n%s", out)
	}
}

func TestTranscript(t *testing.T) {
	segments := []map[string]any{
		{"start": float64(70), "type": "operator", "text": "How can I help?"},
		{"start": float64(5), "type": "customer", "text": "Hello."},
		{"start": float64(30), "type": "customer", "text": "  "},
	}
	out := Transcript(segments, "act_9")
	lines := strings.Split(out, "\n")
	if lines[0] != "**Transcript** (act_9)" {
		t.Errorf("header = %q", lines[0])
	}
	if len(lines) != 3 {
		t.Fatalf("want 2 dialogue lines (blank segment skipped), got:\n%s", out)
	}
	if lines[1] != "  [0:05] Customer: Hello." {
		t.Errorf("line 1 = %q", lines[1])
	}
	if lines[2] != "  [1:10] Operator: How can I help?" {
		t.Errorf("line 2 = %q", lines[2])
	}
}

func TestTranscriptEdgeCases(t *testing.T) {
	if got := Transcript(nil, ""); got != "No transcript available for this call." {
		t.Errorf("empty = %q", got)
	}
	out := Transcript([]map[string]any{{"start": float64(1), "text": ""}}, "")
	if !strings.Contains(out, "(transcript segments found but no text content)") {
		t.Errorf("blank segments = %q", out)
	}
	if !strings.HasPrefix(out, "**Transcript**\n") {
		t.Errorf("header without activity = %q", out)
	}
}

func TestTranscriptStringOffsets(t *testing.T) {
	out := Transcript([]map[string]any{
		{"start": "65.4", "type": "customer", "text": "Hi"},
	}, "")
	if !strings.Contains(out, "[1:05] Customer: Hi") {
		t.Errorf("string offsets should parse:\n%s", out)
	}
}

func TestRealtimeSession(t *testing.T) {
	out := RealtimeSession(map[string]any{
		"id_agent":     map[string]any{"title": "Jane Doe"},
		"state":        "CALL",
		"exten":        "1001",
		"exten_status": "busy",
		"logintime":    "2026-02-01 08:00:00",
	})
	for _, want := range []string{
		"**Jane Doe**",
		"  State: CALL",
		"  Extension: 1001 (busy)",
		"  Login time: 2026-02-01 08:00:00",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("missing %q:\n%s", want, out)
		}
	}
	if got := RealtimeSessionList(nil, 0, 0); got != "No active sessions found." {
		t.Errorf("empty = %q", got)
	}
}
