package format

import (
	"fmt"
	"sort"
	"strings"
)

var callKnownKeys = map[string]bool{
	"id_call": true, "name": true, "call_time": true, "direction": true,
	"answered": true, "id_queue": true, "queue": true, "id_agent": true,
	"user": true, "clid": true, "contact": true, "prefix_clid_name": true,
	"did": true, "waiting_time": true, "wait_time": true, "ringing_time": true,
	"hold_time": true, "duration": true, "disposition_cause": true,
	"disconnection_cause": true, "pressed_key": true, "missed_call": true,
	"missed_call_time": true, "missed_callback": true, "attempts": true,
	"activities": true,
}

// Call renders one call record. The activitiesCall model names its fields
// id_call, id_queue, id_agent, and waiting_time, while the generic activity
// shape uses name, queue, user, and wait_time; both spellings are accepted.
func Call(record map[string]any, baseURL string) string {
	callID := stringValue(record["id_call"])
	if callID == "" {
		callID = stringValue(record["name"])
	}
	if callID == "" {
		callID = "?"
	}
	queueField := record["id_queue"]
	if !present(queueField) {
		queueField = record["queue"]
	}
	userField := record["id_agent"]
	if !present(userField) {
		userField = record["user"]
	}
	waiting := record["waiting_time"]
	if !present(waiting) {
		waiting = record["wait_time"]
	}

	// The first linked activity cross-references get_call_transcript, and
	// its ticket reference gives us a UI link.
	var activityName string
	if acts, ok := record["activities"].([]any); ok && len(acts) > 0 {
		activityName = ExtractID(acts[0])
	}
	ticketID := extractTicketFromActivities(record["activities"])
	url := ""
	if ticketID != "" {
		url = ticketURL(baseURL, ticketID)
	}

	lines := []string{"**" + callID + "**"}
	if activityName != "" {
		lines = append(lines, "  Activity: "+activityName)
	}
	if url != "" {
		lines = append(lines, fmt.Sprintf("  Ticket: [%s](%s)", ticketID, url))
	}
	if callTime := scalar(record, "call_time"); callTime != "" {
		lines = append(lines, "  Time: "+callTime)
	}
	if direction := scalar(record, "direction"); direction != "" {
		lines = append(lines, "  Direction: "+direction)
	}
	if answered, ok := record["answered"]; ok && answered != nil {
		lines = append(lines, "  Answered: "+yesNo(present(answered)))
	}
	if present(record["missed_call"]) {
		lines = append(lines, "  Missed call: Yes")
	}
	if returned := scalar(record, "missed_call_time"); returned != "" {
		lines = append(lines, "  Missed call returned: "+returned)
	}
	if callback := extractName(record["missed_callback"]); callback != "" {
		lines = append(lines, "  Callback call: "+callback)
	}
	if clid := scalar(record, "clid"); clid != "" {
		display := clid
		if prefix := scalar(record, "prefix_clid_name"); prefix != "" {
			display = strings.TrimSpace(prefix + " " + clid)
		}
		lines = append(lines, "  Caller ID: "+display)
	}
	if did := scalar(record, "did"); did != "" {
		lines = append(lines, "  DID: "+did)
	}
	if queue := extractName(queueField); queue != "" {
		lines = append(lines, "  Queue: "+queue)
	}
	if user := extractName(userField); user != "" {
		lines = append(lines, "  Agent: "+user)
	}
	if contact := extractName(record["contact"]); contact != "" {
		lines = append(lines, "  Contact: "+contact)
	}
	if d := record["duration"]; present(d) {
		lines = append(lines, fmt.Sprintf("  Duration: %ss", stringValue(d)))
	}
	if present(waiting) {
		lines = append(lines, fmt.Sprintf("  Wait time: %ss", stringValue(waiting)))
	}
	if ringing := record["ringing_time"]; present(ringing) {
		lines = append(lines, fmt.Sprintf("  Ringing time: %ss", stringValue(ringing)))
	}
	if hold := record["hold_time"]; present(hold) {
		lines = append(lines, fmt.Sprintf("  Hold time: %ss", stringValue(hold)))
	}
	if disposition := scalar(record, "disposition_cause"); disposition != "" {
		lines = append(lines, "  Disposition: "+disposition)
	}
	if disconnection := scalar(record, "disconnection_cause"); disconnection != "" {
		lines = append(lines, "  Disconnection: "+disconnection)
	}
	if key := scalar(record, "pressed_key"); key != "" {
		lines = append(lines, "  Pressed key: "+key)
	}
	if attempts := record["attempts"]; present(attempts) {
		lines = append(lines, "  Failed attempts: "+stringValue(attempts))
	}
	lines = append(lines, customFieldLines(record)...)
	lines = append(lines, extraFieldLines(record, callKnownKeys)...)
	return strings.Join(lines, "\n")
}

func CallList(records []map[string]any, total, skip int, baseURL string) string {
	if len(records) == 0 {
		return "No calls found."
	}
	parts := make([]string, len(records))
	for i, r := range records {
		parts[i] = Call(r, baseURL)
	}
	return joinPage("calls", parts, total, skip)
}

var emailKnownKeys = map[string]bool{
	"name": true, "title": true, "address": true, "direction": true,
	"state": true, "answered": true, "queue": true, "user": true,
	"contact": true, "duration": true, "wait_time": true, "time": true,
	"text": true,
}

func Email(record map[string]any, baseURL string, detail bool) string {
	name := stringValue(record["name"])
	if name == "" {
		name = "?"
	}
	text := stringValue(record["text"])
	if detail {
		text = strings.TrimSpace(text)
	} else {
		text = truncate(text, 500)
	}
	ticketName := extractTicketFromActivities(record["activities"])
	url := ticketURL(baseURL, ticketName)

	head := "**" + name + "**"
	if title := scalar(record, "title"); title != "" {
		head += " - " + title
	}
	lines := []string{head}
	if address := scalar(record, "address"); address != "" {
		lines = append(lines, "  Address: "+address)
	}
	if direction := scalar(record, "direction"); direction != "" {
		lines = append(lines, "  Direction: "+direction)
	}
	if state := scalar(record, "state"); state != "" {
		lines = append(lines, "  State: "+state)
	}
	if answered, ok := record["answered"]; ok && answered != nil {
		lines = append(lines, "  Answered: "+yesNo(present(answered)))
	}
	if queue := extractName(record["queue"]); queue != "" {
		lines = append(lines, "  Queue: "+queue)
	}
	if user := extractName(record["user"]); user != "" {
		lines = append(lines, "  Agent: "+user)
	}
	if contact := extractName(record["contact"]); contact != "" {
		lines = append(lines, "  Contact: "+contact)
	}
	if ticketName != "" {
		lines = append(lines, "  Ticket: "+linkedName(ticketName, url))
	}
	if d := record["duration"]; present(d) {
		lines = append(lines, fmt.Sprintf("  Duration: %ss", stringValue(d)))
	}
	if w := record["wait_time"]; present(w) {
		lines = append(lines, fmt.Sprintf("  Wait time: %ss", stringValue(w)))
	}
	if created := scalar(record, "time"); created != "" {
		lines = append(lines, "  Created: "+created)
	}
	if text != "" {
		lines = append(lines, "  Body: "+text)
	}
	lines = append(lines, customFieldLines(record)...)
	lines = append(lines, extraFieldLines(record, emailKnownKeys)...)
	return strings.Join(lines, "\n")
}

func EmailList(records []map[string]any, total, skip int, baseURL string) string {
	if len(records) == 0 {
		return "No emails found."
	}
	parts := make([]string, len(records))
	for i, r := range records {
		parts[i] = Email(r, baseURL, false)
	}
	return joinPage("emails", parts, total, skip)
}

var chatKnownKeys = map[string]bool{
	"name": true, "title": true, "sender": true, "direction": true,
	"state": true, "answered": true, "queue": true, "user": true,
	"contact": true, "duration": true, "wait_time": true,
	"disconnection": true, "missed": true, "type": true, "time": true,
}

// Chat renders one chat-style activity (web chat, SMS, Messenger, and so
// on). Instagram records carry a type distinguishing DMs from story
// replies, which is meaningless on other channels.
func Chat(record map[string]any, channel, baseURL string) string {
	name := stringValue(record["name"])
	if name == "" {
		name = "?"
	}
	ticketName := extractTicketFromActivities(record["activities"])
	url := ticketURL(baseURL, ticketName)

	head := "**" + name + "**"
	if title := scalar(record, "title"); title != "" {
		head += " - " + title
	}
	lines := []string{head}
	if sender := scalar(record, "sender"); sender != "" {
		lines = append(lines, "  Sender: "+sender)
	}
	if direction := scalar(record, "direction"); direction != "" {
		lines = append(lines, "  Direction: "+direction)
	}
	if state := scalar(record, "state"); state != "" {
		lines = append(lines, "  State: "+state)
	}
	if chatType := scalar(record, "type"); chatType != "" && channel == "instagram" {
		lines = append(lines, "  Type: "+chatType)
	}
	if answered, ok := record["answered"]; ok && answered != nil {
		lines = append(lines, "  Answered: "+yesNo(present(answered)))
	}
	if present(record["missed"]) {
		lines = append(lines, "  Missed: Yes")
	}
	if queue := extractName(record["queue"]); queue != "" {
		lines = append(lines, "  Queue: "+queue)
	}
	if user := extractName(record["user"]); user != "" {
		lines = append(lines, "  Agent: "+user)
	}
	if contact := extractName(record["contact"]); contact != "" {
		lines = append(lines, "  Contact: "+contact)
	}
	if ticketName != "" {
		lines = append(lines, "  Ticket: "+linkedName(ticketName, url))
	}
	if d := record["duration"]; present(d) {
		lines = append(lines, fmt.Sprintf("  Duration: %ss", stringValue(d)))
	}
	if w := record["wait_time"]; present(w) {
		lines = append(lines, fmt.Sprintf("  Wait time: %ss", stringValue(w)))
	}
	if disconnection := scalar(record, "disconnection"); disconnection != "" {
		lines = append(lines, "  Disconnection: "+disconnection)
	}
	if created := scalar(record, "time"); created != "" {
		lines = append(lines, "  Created: "+created)
	}
	lines = append(lines, customFieldLines(record)...)
	lines = append(lines, extraFieldLines(record, chatKnownKeys)...)
	return strings.Join(lines, "\n")
}

func ChatList(records []map[string]any, total, skip int, entity, channel, baseURL string) string {
	if len(records) == 0 {
		return fmt.Sprintf("No %s found.", entity)
	}
	parts := make([]string, len(records))
	for i, r := range records {
		parts[i] = Chat(r, channel, baseURL)
	}
	return joinPage(entity, parts, total, skip)
}

// SimpleRecord renders a reference record (queue, user, category) as a
// single line.
func SimpleRecord(record map[string]any) string {
	name := stringValue(record["name"])
	if name == "" {
		name = "?"
	}
	line := "**" + name + "**"
	if title := scalar(record, "title"); title != "" {
		line += " - " + title
	}
	if recType := scalar(record, "type"); recType != "" {
		line += " [" + recType + "]"
	}
	if email := scalar(record, "email"); email != "" {
		line += " <" + email + ">"
	}
	if description := truncate(stringValue(record["description"]), 100); description != "" {
		line += " (" + description + ")"
	}
	return line
}

func SimpleList(records []map[string]any, total, skip int, entity string) string {
	if len(records) == 0 {
		return fmt.Sprintf("No %s found.", entity)
	}
	parts := make([]string, len(records))
	for i, r := range records {
		parts[i] = SimpleRecord(r)
	}
	return pageHeader(entity, skip, len(parts), total) +
		strings.Join(parts, "\n") +
		pageFooter(skip, len(parts), total)
}

// Transcript renders call transcript segments as a chronological dialogue.
// Segments carry start/end offsets in seconds and a type marking the
// customer side.
func Transcript(segments []map[string]any, activityName string) string {
	if len(segments) == 0 {
		return "No transcript available for this call."
	}
	ordered := make([]map[string]any, len(segments))
	copy(ordered, segments)
	sort.SliceStable(ordered, func(i, j int) bool {
		return floatValue(ordered[i]["start"]) < floatValue(ordered[j]["start"])
	})

	header := "**Transcript**"
	if activityName != "" {
		header = fmt.Sprintf("**Transcript** (%s)", activityName)
	}
	lines := []string{header}
	for _, seg := range ordered {
		start := int(floatValue(seg["start"]))
		timestamp := fmt.Sprintf("%d:%02d", start/60, start%60)
		speaker := "Operator"
		if strings.EqualFold(stringValue(seg["type"]), "customer") {
			speaker = "Customer"
		}
		text := strings.TrimSpace(stringValue(seg["text"]))
		if text != "" {
			lines = append(lines, fmt.Sprintf("  [%s] %s: %s", timestamp, speaker, text))
		}
	}
	if len(lines) == 1 {
		lines = append(lines, "  (transcript segments found but no text content)")
	}
	return strings.Join(lines, "\n")
}

func RealtimeSession(record map[string]any) string {
	agent := extractName(record["id_agent"])
	if agent == "" {
		agent = "?"
	}
	lines := []string{"**" + agent + "**"}
	if state := scalar(record, "state"); state != "" {
		lines = append(lines, "  State: "+state)
	}
	if pause := extractName(record["id_pause"]); pause != "" {
		lines = append(lines, "  Pause: "+pause)
	}
	if onPause := scalar(record, "onpause"); onPause != "" {
		lines = append(lines, "  Pause since: "+onPause)
	}
	if exten := scalar(record, "exten"); exten != "" {
		status := ""
		if extenStatus := scalar(record, "exten_status"); extenStatus != "" {
			status = " (" + extenStatus + ")"
		}
		lines = append(lines, "  Extension: "+exten+status)
	}
	if loginTime := scalar(record, "logintime"); loginTime != "" {
		lines = append(lines, "  Login time: "+loginTime)
	}
	if lastCall := scalar(record, "lastcalltime"); lastCall != "" {
		lines = append(lines, "  Last call: "+lastCall)
	}
	if stateTime := scalar(record, "statetime"); stateTime != "" {
		lines = append(lines, "  In state since: "+stateTime)
	}
	return strings.Join(lines, "\n")
}

func RealtimeSessionList(records []map[string]any, total, skip int) string {
	if len(records) == 0 {
		return "No active sessions found."
	}
	parts := make([]string, len(records))
	for i, r := range records {
		parts[i] = RealtimeSession(r)
	}
	return joinPage("active sessions", parts, total, skip)
}
