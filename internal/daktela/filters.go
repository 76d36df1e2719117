package daktela

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"
)

// Filter is one field comparison sent to a list endpoint. Value is a string
// for scalar operators and a []string for the "in" operator.
type Filter struct {
	Field    string
	Operator string
	Value    any
}

// Eq matches records whose field equals value.
func Eq(field, value string) Filter { return Filter{field, "eq", value} }

// Like matches records whose field contains value (SQL LIKE).
func Like(field, value string) Filter { return Filter{field, "like", value} }

// In matches records whose field equals any of the values.
func In(field string, values []string) Filter { return Filter{field, "in", values} }

// IsNull matches records whose field is unset.
func IsNull(field string) Filter { return Filter{field, "isnull", "true"} }

// ListOptions control pagination, filtering, ordering, and field selection
// for a list call.
type ListOptions struct {
	Filters []Filter
	Skip    int
	Take    int
	Sort    string
	SortDir string
	Fields  []string
}

// buildQuery renders options as the PHP bracket-notation parameters the API
// expects, e.g. filter[0][field]=stage&filter[0][operator]=eq&filter[0][value]=OPEN.
// The "like" operator is SQL LIKE, so plain values get wrapped in % for
// contains matching.
func buildQuery(opts ListOptions) url.Values {
	q := url.Values{}
	q.Set("skip", strconv.Itoa(opts.Skip))
	q.Set("take", strconv.Itoa(opts.Take))

	for i, f := range opts.Filters {
		prefix := fmt.Sprintf("filter[%d]", i)
		q.Set(prefix+"[field]", f.Field)
		q.Set(prefix+"[operator]", f.Operator)
		switch v := f.Value.(type) {
		case []string:
			for j, item := range v {
				q.Set(fmt.Sprintf("%s[value][%d]", prefix, j), item)
			}
		default:
			value := fmt.Sprint(v)
			if f.Operator == "like" && !strings.Contains(value, "%") {
				value = "%" + value + "%"
			}
			q.Set(prefix+"[value]", value)
		}
	}

	if opts.Sort != "" {
		dir := opts.SortDir
		if dir == "" {
			dir = "desc"
		}
		q.Set("sort[0][field]", opts.Sort)
		q.Set("sort[0][dir]", dir)
	}

	for i, field := range opts.Fields {
		q.Set(fmt.Sprintf("fields[%d]", i), field)
	}
	return q
}

// DateFilters builds a gte/lte pair for a date range. The API expects
// "YYYY-MM-DD HH:MM:SS"; a bare date means midnight, so dateTo without a
// time component would exclude everything that happened during that day.
// A missing time on "to" gets 23:59:59 appended to cover the full day.
func DateFilters(field, from, to string) []Filter {
	var filters []Filter
	if from != "" {
		filters = append(filters, Filter{field, "gte", strings.ReplaceAll(from, "T", " ")})
	}
	if to != "" {
		normalized := strings.ReplaceAll(to, "T", " ")
		if len(normalized) == 10 {
			normalized += " 23:59:59"
		}
		filters = append(filters, Filter{field, "lte", normalized})
	}
	return filters
}

// Sort fields known to exist per endpoint family. Sorting by an unknown
// field makes the API silently return zero rows, so invalid sorts are
// dropped rather than passed through.
var sortFields = map[string]map[string]bool{
	"tickets": set("name", "title", "created", "edited", "last_activity",
		"last_activity_operator", "last_activity_client", "sla_deadtime",
		"sla_close_deadline", "priority", "stage", "first_answer", "closed"),
	"activities":                set("time", "time_close", "duration", "ringing_time"),
	"activitiesCall":            set("call_time", "duration", "waiting_time", "ringing_time"),
	"activitiesEmail":           set("time", "duration", "wait_time"),
	"activitiesWeb":             set("time", "duration", "wait_time"),
	"activitiesSms":             set("time", "duration", "wait_time"),
	"activitiesFbm":             set("time", "duration", "wait_time"),
	"activitiesIgdm":            set("time", "duration", "wait_time"),
	"activitiesWap":             set("time", "duration", "wait_time"),
	"activitiesVbr":             set("time", "duration", "wait_time"),
	"contacts":                  set("created", "edited", "title", "lastname"),
	"accounts":                  set("created", "edited", "title"),
	"crmRecords":                set("created", "edited", "title", "stage"),
	"campaignsRecords":          set("created", "edited", "nextcall"),
	"activitiesCallTranscripts": set("start", "end"),
}

func set(fields ...string) map[string]bool {
	m := make(map[string]bool, len(fields))
	for _, f := range fields {
		m[f] = true
	}
	return m
}

// ValidatedSort returns sort if the endpoint supports it, empty otherwise.
// Endpoints without an allow-list pass any sort through.
func ValidatedSort(endpoint, sort string) string {
	if sort == "" {
		return ""
	}
	allowed, ok := sortFields[endpoint]
	if !ok {
		return sort
	}
	if allowed[sort] {
		return sort
	}
	return ""
}
