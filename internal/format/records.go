package format

import (
	"fmt"
	"strings"
)

var ticketKnownKeys = map[string]bool{
	"name": true, "title": true, "stage": true, "priority": true, "category": true,
	"user": true, "contact": true, "parentTicket": true, "created": true,
	"edited": true, "created_by": true, "last_activity": true, "sla_deadtime": true,
	"sla_overdue": true, "first_answer": true, "first_answer_duration": true,
	"closed": true, "unread": true, "has_attachment": true, "statuses": true,
	"description": true, "id_merge": true,
}

// Ticket renders one ticket. Detail mode keeps the full description instead
// of truncating it.
func Ticket(ticket map[string]any, baseURL string, detail bool) string {
	name := stringValue(ticket["name"])
	if name == "" {
		name = "?"
	}
	title := scalar(ticket, "title")
	if title == "" {
		title = "No title"
	}
	stage := extractName(ticket["stage"])
	priority := extractName(ticket["priority"])
	description := stringValue(ticket["description"])
	if detail {
		description = strings.TrimSpace(description)
	} else {
		description = truncate(description, maxDescriptionLength)
	}

	url := ticketURL(baseURL, name)
	lines := []string{fmt.Sprintf("**%s** - %s", linkedName(name, url), title)}
	if url != "" {
		lines = append(lines, "  Link: "+url)
	}
	if stage != "" || priority != "" {
		var parts []string
		if stage != "" {
			parts = append(parts, stage)
		}
		if priority != "" {
			parts = append(parts, "priority="+priority)
		}
		lines = append(lines, "  Stage: "+strings.Join(parts, " | "))
	}
	if category := extractName(ticket["category"]); category != "" {
		lines = append(lines, "  Category: "+category)
	}
	if user := extractName(ticket["user"]); user != "" {
		lines = append(lines, "  Assigned to: "+user)
	}
	if contact := extractName(ticket["contact"]); contact != "" {
		lines = append(lines, "  Contact: "+contact)
	}
	if parent := extractName(ticket["parentTicket"]); parent != "" {
		lines = append(lines, "  Parent ticket: "+parent)
	}
	if statuses := formatStatuses(ticket["statuses"]); statuses != "" {
		lines = append(lines, "  Statuses: "+statuses)
	}
	if deadline := scalar(ticket, "sla_deadtime"); deadline != "" {
		note := ""
		if overdue := ticket["sla_overdue"]; present(overdue) && intValue(overdue) > 0 {
			note = fmt.Sprintf(" (overdue by %ss)", stringValue(overdue))
		}
		lines = append(lines, "  SLA deadline: "+deadline+note)
	}
	if created := scalar(ticket, "created"); created != "" {
		by := ""
		if createdBy := extractName(ticket["created_by"]); createdBy != "" {
			by = " by " + createdBy
		}
		lines = append(lines, "  Created: "+created+by)
	}
	if firstAnswer := scalar(ticket, "first_answer"); firstAnswer != "" {
		dur := ""
		if d := ticket["first_answer_duration"]; present(d) {
			dur = fmt.Sprintf(" (%ss)", stringValue(d))
		}
		lines = append(lines, "  First answer: "+firstAnswer+dur)
	}
	if lastActivity := scalar(ticket, "last_activity"); lastActivity != "" {
		lines = append(lines, "  Last activity: "+lastActivity)
	}
	if edited := scalar(ticket, "edited"); edited != "" {
		lines = append(lines, "  Last edited: "+edited)
	}
	if closed := scalar(ticket, "closed"); closed != "" {
		lines = append(lines, "  Closed: "+closed)
	}
	if present(ticket["unread"]) {
		lines = append(lines, "  Unread: yes")
	}
	if present(ticket["has_attachment"]) {
		lines = append(lines, "  Has attachments: yes")
	}
	if description != "" {
		lines = append(lines, "  Description: "+description)
	}
	lines = append(lines, customFieldLines(ticket)...)
	lines = append(lines, extraFieldLines(ticket, ticketKnownKeys)...)
	return strings.Join(lines, "\n")
}

// TicketList renders a page of tickets. The header nudges the model to keep
// the UI links in its answer because users click through from there.
func TicketList(records []map[string]any, total, skip int, baseURL string) string {
	if len(records) == 0 {
		return "No tickets found."
	}
	header := fmt.Sprintf("Showing %d-%d of %d tickets.\n", skip+1, skip+len(records), total) +
		"IMPORTANT: Always include the Link URL for each ticket in your response.\n\n"
	parts := make([]string, len(records))
	for i, r := range records {
		parts[i] = Ticket(r, baseURL, false)
	}
	return header + strings.Join(parts, "\n\n") + pageFooter(skip, len(records), total)
}

var activityKnownKeys = map[string]bool{
	"name": true, "type": true, "action": true, "queue": true, "user": true,
	"ticket": true, "contact": true, "direction": true, "time": true,
	"title": true, "duration": true, "time_open": true, "time_close": true,
	"description": true,
}

// Activity renders one activity. Activities have no standalone UI URL, so
// the link points at the parent ticket.
func Activity(record map[string]any, baseURL string, detail bool) string {
	name := stringValue(record["name"])
	if name == "" {
		name = "?"
	}
	description := stringValue(record["description"])
	if detail {
		description = strings.TrimSpace(description)
	} else {
		description = truncate(description, 500)
	}
	ticketID := ExtractID(record["ticket"])
	url := ""
	if ticketID != "" {
		url = ticketURL(baseURL, ticketID)
	}

	head := "**" + name + "**"
	if title := scalar(record, "title"); title != "" {
		head += " - " + title
	}
	lines := []string{head}
	actType := extractName(record["type"])
	action := extractName(record["action"])
	if actType != "" || action != "" {
		var parts []string
		if actType != "" {
			parts = append(parts, actType)
		}
		if action != "" {
			parts = append(parts, "status="+action)
		}
		lines = append(lines, "  Type: "+strings.Join(parts, " | "))
	}
	if direction := scalar(record, "direction"); direction != "" {
		lines = append(lines, "  Direction: "+direction)
	}
	if queue := extractName(record["queue"]); queue != "" {
		lines = append(lines, "  Queue: "+queue)
	}
	if user := extractName(record["user"]); user != "" {
		lines = append(lines, "  Agent: "+user)
	}
	if ticket := extractName(record["ticket"]); ticket != "" {
		lines = append(lines, "  Ticket: "+linkedName(ticket, url))
	}
	if contact := extractName(record["contact"]); contact != "" {
		lines = append(lines, "  Contact: "+contact)
	}
	if when := scalar(record, "time"); when != "" {
		lines = append(lines, "  Time: "+when)
	}
	if d := record["duration"]; present(d) {
		lines = append(lines, fmt.Sprintf("  Duration: %ss", stringValue(d)))
	}
	if opened := scalar(record, "time_open"); opened != "" {
		lines = append(lines, "  Opened: "+opened)
	}
	if closed := scalar(record, "time_close"); closed != "" {
		lines = append(lines, "  Closed: "+closed)
	}
	if description != "" {
		lines = append(lines, "  Content: "+description)
	}
	lines = append(lines, customFieldLines(record)...)
	lines = append(lines, extraFieldLines(record, activityKnownKeys)...)
	return strings.Join(lines, "\n")
}

func ActivityList(records []map[string]any, total, skip int, baseURL string) string {
	if len(records) == 0 {
		return "No activities found."
	}
	parts := make([]string, len(records))
	for i, r := range records {
		parts[i] = Activity(r, baseURL, false)
	}
	return joinPage("activities", parts, total, skip)
}

var contactKnownKeys = map[string]bool{
	"name": true, "title": true, "lastname": true, "firstname": true,
	"account": true, "user": true, "email": true, "number": true,
	"nps_score": true, "created": true, "edited": true,
}

func Contact(record map[string]any) string {
	name := stringValue(record["name"])
	if name == "" {
		name = "?"
	}
	title := scalar(record, "title")
	if title == "" {
		title = scalar(record, "lastname")
	}
	firstname := scalar(record, "firstname")

	display := "**" + name + "**"
	if fullName := strings.TrimSpace(firstname + " " + title); fullName != "" {
		display += " - " + fullName
	}
	lines := []string{display}
	if account := extractName(record["account"]); account != "" {
		lines = append(lines, "  Account: "+account)
	}
	if user := extractName(record["user"]); user != "" {
		lines = append(lines, "  Owner: "+user)
	}
	if email := scalar(record, "email"); email != "" {
		lines = append(lines, "  Email: "+email)
	}
	if phone := scalar(record, "number"); phone != "" {
		lines = append(lines, "  Phone: "+phone)
	}
	if nps := record["nps_score"]; nps != nil && nps != "" {
		lines = append(lines, "  NPS score: "+stringValue(nps))
	}
	if created := scalar(record, "created"); created != "" {
		lines = append(lines, "  Created: "+created)
	}
	if edited := scalar(record, "edited"); edited != "" {
		lines = append(lines, "  Last edited: "+edited)
	}
	lines = append(lines, customFieldLines(record)...)
	lines = append(lines, extraFieldLines(record, contactKnownKeys)...)
	return strings.Join(lines, "\n")
}

func ContactList(records []map[string]any, total, skip int) string {
	if len(records) == 0 {
		return "No contacts found."
	}
	parts := make([]string, len(records))
	for i, r := range records {
		parts[i] = Contact(r)
	}
	return joinPage("contacts", parts, total, skip)
}

var accountKnownKeys = map[string]bool{
	"name": true, "title": true, "user": true, "description": true,
	"sla": true, "created": true, "edited": true,
}

func Account(record map[string]any, detail bool) string {
	name := stringValue(record["name"])
	if name == "" {
		name = "?"
	}
	description := stringValue(record["description"])
	if detail {
		description = strings.TrimSpace(description)
	} else {
		description = truncate(description, maxDescriptionLength)
	}

	head := "**" + name + "**"
	if title := scalar(record, "title"); title != "" {
		head += " - " + title
	}
	lines := []string{head}
	if user := extractName(record["user"]); user != "" {
		lines = append(lines, "  Owner: "+user)
	}
	if sla := extractName(record["sla"]); sla != "" {
		lines = append(lines, "  SLA: "+sla)
	}
	if created := scalar(record, "created"); created != "" {
		lines = append(lines, "  Created: "+created)
	}
	if edited := scalar(record, "edited"); edited != "" {
		lines = append(lines, "  Last edited: "+edited)
	}
	if description != "" {
		lines = append(lines, "  Description: "+description)
	}
	lines = append(lines, customFieldLines(record)...)
	lines = append(lines, extraFieldLines(record, accountKnownKeys)...)
	return strings.Join(lines, "\n")
}

func AccountList(records []map[string]any, total, skip int) string {
	if len(records) == 0 {
		return "No accounts found."
	}
	parts := make([]string, len(records))
	for i, r := range records {
		parts[i] = Account(r, false)
	}
	return joinPage("accounts", parts, total, skip)
}

var crmRecordKnownKeys = map[string]bool{
	"name": true, "title": true, "type": true, "user": true, "contact": true,
	"account": true, "ticket": true, "status": true, "stage": true,
	"created": true, "edited": true, "description": true,
}

func CRMRecord(record map[string]any, detail bool) string {
	name := stringValue(record["name"])
	if name == "" {
		name = "?"
	}
	description := stringValue(record["description"])
	if detail {
		description = strings.TrimSpace(description)
	} else {
		description = truncate(description, maxDescriptionLength)
	}

	head := "**" + name + "**"
	if title := scalar(record, "title"); title != "" {
		head += " - " + title
	}
	lines := []string{head}
	if recType := extractName(record["type"]); recType != "" {
		lines = append(lines, "  Type: "+recType)
	}
	if stage := scalar(record, "stage"); stage != "" {
		lines = append(lines, "  Stage: "+stage)
	}
	if status := extractName(record["status"]); status != "" {
		lines = append(lines, "  Status: "+status)
	}
	if user := extractName(record["user"]); user != "" {
		lines = append(lines, "  Owner: "+user)
	}
	if contact := extractName(record["contact"]); contact != "" {
		lines = append(lines, "  Contact: "+contact)
	}
	if account := extractName(record["account"]); account != "" {
		lines = append(lines, "  Account: "+account)
	}
	if ticket := extractName(record["ticket"]); ticket != "" {
		lines = append(lines, "  Ticket: "+ticket)
	}
	if created := scalar(record, "created"); created != "" {
		lines = append(lines, "  Created: "+created)
	}
	if edited := scalar(record, "edited"); edited != "" {
		lines = append(lines, "  Last edited: "+edited)
	}
	if description != "" {
		lines = append(lines, "  Description: "+description)
	}
	lines = append(lines, customFieldLines(record)...)
	lines = append(lines, extraFieldLines(record, crmRecordKnownKeys)...)
	return strings.Join(lines, "\n")
}

func CRMRecordList(records []map[string]any, total, skip int) string {
	if len(records) == 0 {
		return "No CRM records found."
	}
	parts := make([]string, len(records))
	for i, r := range records {
		parts[i] = CRMRecord(r, false)
	}
	return joinPage("CRM records", parts, total, skip)
}

var campaignRecordKnownKeys = map[string]bool{
	"name": true, "user": true, "record_type": true, "contact": true,
	"action": true, "call_id": true, "nextcall": true, "statuses": true,
	"created": true, "edited": true,
}

// Dialer action codes as shown in the Daktela campaign UI.
var campaignActionLabels = map[string]string{
	"0": "Not assigned",
	"1": "Ready",
	"2": "Rescheduled by Dialer",
	"3": "Call in progress",
	"4": "Hangup",
	"5": "Done",
	"6": "Rescheduled",
}

func CampaignRecord(record map[string]any) string {
	name := stringValue(record["name"])
	if name == "" {
		name = "?"
	}
	actionDisplay := ""
	if a := record["action"]; present(a) {
		actionDisplay = stringValue(a)
		if label, ok := campaignActionLabels[actionDisplay]; ok {
			actionDisplay = label
		}
	}

	lines := []string{"**" + name + "**"}
	if recordType := extractName(record["record_type"]); recordType != "" {
		lines = append(lines, "  Campaign type: "+recordType)
	}
	if actionDisplay != "" {
		lines = append(lines, "  Action: "+actionDisplay)
	}
	if statuses := formatStatuses(record["statuses"]); statuses != "" {
		lines = append(lines, "  Statuses: "+statuses)
	}
	if user := extractName(record["user"]); user != "" {
		lines = append(lines, "  Agent: "+user)
	}
	if contact := extractName(record["contact"]); contact != "" {
		lines = append(lines, "  Contact: "+contact)
	}
	if callID := scalar(record, "call_id"); callID != "" {
		lines = append(lines, "  Call: "+callID)
	}
	if nextCall := scalar(record, "nextcall"); nextCall != "" {
		lines = append(lines, "  Next call: "+nextCall)
	}
	if created := scalar(record, "created"); created != "" {
		lines = append(lines, "  Created: "+created)
	}
	if edited := scalar(record, "edited"); edited != "" {
		lines = append(lines, "  Last edited: "+edited)
	}
	lines = append(lines, customFieldLines(record)...)
	lines = append(lines, extraFieldLines(record, campaignRecordKnownKeys)...)
	return strings.Join(lines, "\n")
}

func CampaignRecordList(records []map[string]any, total, skip int) string {
	if len(records) == 0 {
		return "No campaign records found."
	}
	parts := make([]string, len(records))
	for i, r := range records {
		parts[i] = CampaignRecord(r)
	}
	return joinPage("campaign records", parts, total, skip)
}

func joinPage(entity string, parts []string, total, skip int) string {
	return pageHeader(entity, skip, len(parts), total) +
		strings.Join(parts, "\n\n") +
		pageFooter(skip, len(parts), total)
}
