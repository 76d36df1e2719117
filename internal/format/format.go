// Package format renders Daktela API records as compact markdown for LLM
// consumption. Records arrive as decoded JSON maps; related objects may be
// plain name strings or nested objects, and numeric fields may be numbers
// or strings depending on the endpoint, so every accessor tolerates both.
package format

import (
	"fmt"
	"regexp"
	"sort"
	"strconv"
	"strings"
)

const maxDescriptionLength = 300

// stringValue renders a scalar JSON value. Integer-valued floats print
// without a decimal point so record IDs and durations stay readable.
func stringValue(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case bool:
		if t {
			return "true"
		}
		return "false"
	default:
		return fmt.Sprint(v)
	}
}

// present reports whether a field holds renderable data. Empty strings,
// zero numbers, and empty collections read as absent.
func present(v any) bool {
	switch t := v.(type) {
	case nil:
		return false
	case string:
		return t != ""
	case float64:
		return t != 0
	case bool:
		return t
	case map[string]any:
		return len(t) > 0
	case []any:
		return len(t) > 0
	}
	return true
}

func intValue(v any) int {
	switch t := v.(type) {
	case float64:
		return int(t)
	case string:
		n, _ := strconv.Atoi(strings.TrimSpace(t))
		return n
	}
	return 0
}

func floatValue(v any) float64 {
	switch t := v.(type) {
	case float64:
		return t
	case string:
		f, _ := strconv.ParseFloat(strings.TrimSpace(t), 64)
		return f
	}
	return 0
}

// scalar returns a record field rendered as a string, or "" when the field
// is missing or empty.
func scalar(record map[string]any, key string) string {
	v := record[key]
	if !present(v) {
		return ""
	}
	return stringValue(v)
}

// extractName pulls a display name from a related-object field, which the
// API returns either as a plain name string or as a nested object. Objects
// prefer their human title over the internal name.
func extractName(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case map[string]any:
		if s := stringValue(t["title"]); s != "" {
			return s
		}
		return stringValue(t["name"])
	default:
		return stringValue(v)
	}
}

// ExtractID pulls the internal name field used for API lookups and URLs,
// unlike extractName which prefers the display title.
func ExtractID(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case float64:
		return stringValue(t)
	case map[string]any:
		return stringValue(t["name"])
	default:
		return ""
	}
}

func truncate(text string, max int) string {
	text = strings.TrimSpace(text)
	if text == "" {
		return ""
	}
	runes := []rune(text)
	if len(runes) <= max {
		return text
	}
	return string(runes[:max]) + "..."
}

func formatStatuses(v any) string {
	if !present(v) {
		return ""
	}
	if list, ok := v.([]any); ok {
		var names []string
		for _, s := range list {
			if n := extractName(s); n != "" {
				names = append(names, n)
			}
		}
		return strings.Join(names, ", ")
	}
	return extractName(v)
}

var camelBoundary = regexp.MustCompile(`([a-z])([A-Z])`)

// readableLabel turns a field key like "lead_type" or "leadType" into
// "Lead type".
func readableLabel(key string) string {
	label := camelBoundary.ReplaceAllString(key, "$1 $2")
	label = strings.ReplaceAll(label, "_", " ")
	label = strings.ReplaceAll(label, "-", " ")
	label = strings.TrimSpace(label)
	if label == "" {
		return key
	}
	return strings.ToUpper(label[:1]) + label[1:]
}

// formatValue renders an arbitrary field value, ok=false when there is
// nothing worth showing.
func formatValue(v any) (string, bool) {
	switch t := v.(type) {
	case nil:
		return "", false
	case string:
		if t == "" {
			return "", false
		}
		return t, true
	case bool:
		if t {
			return "Yes", true
		}
		return "No", true
	case map[string]any:
		if len(t) == 0 {
			return "", false
		}
		name := stringValue(t["title"])
		if name == "" {
			name = stringValue(t["name"])
		}
		if name == "" {
			return "", false
		}
		return name, true
	case []any:
		if len(t) == 0 {
			return "", false
		}
		var items []string
		for _, item := range t {
			if obj, ok := item.(map[string]any); ok {
				if n := extractName(obj); n != "" {
					items = append(items, n)
				}
			} else if item != nil {
				if s := stringValue(item); s != "" {
					items = append(items, s)
				}
			}
		}
		if len(items) == 0 {
			return "", false
		}
		return strings.Join(items, ", "), true
	default:
		return stringValue(v), true
	}
}

// customFieldLines renders the customFields object. Keys are sorted so
// output is stable across calls.
func customFieldLines(record map[string]any) []string {
	custom, ok := record["customFields"].(map[string]any)
	if !ok || len(custom) == 0 {
		return nil
	}
	keys := make([]string, 0, len(custom))
	for k := range custom {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	var lines []string
	for _, key := range keys {
		if display, ok := formatValue(custom[key]); ok {
			lines = append(lines, fmt.Sprintf("  %s: %s", readableLabel(key), display))
		}
	}
	return lines
}

// extraFieldLines renders top-level fields outside the known set, so data
// from API fields we have not explicitly coded for still reaches the LLM.
func extraFieldLines(record map[string]any, known map[string]bool) []string {
	keys := make([]string, 0, len(record))
	for k := range record {
		if known[k] || k == "customFields" || strings.HasPrefix(k, "_") {
			continue
		}
		keys = append(keys, k)
	}
	sort.Strings(keys)
	var lines []string
	for _, key := range keys {
		if display, ok := formatValue(record[key]); ok {
			lines = append(lines, fmt.Sprintf("  %s: %s", readableLabel(key), display))
		}
	}
	return lines
}

// ticketURL builds the web UI address for a ticket. Ticket names are
// numeric IDs and the UI route is tickets/update/{name}.
func ticketURL(baseURL, ticketName string) string {
	if baseURL == "" || ticketName == "" {
		return ""
	}
	return strings.TrimRight(baseURL, "/") + "/tickets/update/" + ticketName
}

// linkedName wraps a record name in a markdown link when a URL exists.
func linkedName(name, url string) string {
	if url != "" {
		return fmt.Sprintf("[%s](%s)", name, url)
	}
	return name
}

// extractTicketFromActivities pulls the ticket numeric ID from the linked
// activities on an email, chat, or call record.
func extractTicketFromActivities(v any) string {
	list, ok := v.([]any)
	if !ok {
		return ""
	}
	for _, item := range list {
		act, ok := item.(map[string]any)
		if !ok {
			continue
		}
		ticket, ok := act["ticket"]
		if !ok || ticket == nil {
			continue
		}
		return ExtractID(ticket)
	}
	return ""
}

func yesNo(b bool) string {
	if b {
		return "Yes"
	}
	return "No"
}

func pageFooter(skip, count, total int) string {
	if skip+count < total {
		return fmt.Sprintf("\n\n(Use skip=%d to see next page)", skip+count)
	}
	return ""
}

func pageHeader(entity string, skip, count, total int) string {
	return fmt.Sprintf("Showing %d-%d of %d %s:\n", skip+1, skip+count, total, entity)
}
