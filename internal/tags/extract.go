// Package tags derives structured attributes from free-text campaign tags.
// Both extractions are pure and best-effort: anything that does not match
// yields the zero value, never an error.
package tags

import (
	"regexp"
	"strconv"
	"strings"
	"time"
)

func atoi(s string) int {
	v, _ := strconv.Atoi(s)
	return v
}

var dateRun = regexp.MustCompile(`(\d{2})(\d{2})(\d{4})`)

// Date finds the first 8-digit ddmmyyyy run in the tag and returns it as a
// calendar date. Runs that do not form a real date (e.g. "31132024") are nil.
func Date(tag string) *time.Time {
	m := dateRun.FindStringSubmatch(tag)
	if m == nil {
		return nil
	}
	dd, mm, yyyy := atoi(m[1]), atoi(m[2]), atoi(m[3])
	t := time.Date(yyyy, time.Month(mm), dd, 0, 0, 0, 0, time.UTC)
	// time.Date normalizes overflow (month 13 becomes January), so round-trip
	// the components to reject invalid dates.
	if t.Year() != yyyy || int(t.Month()) != mm || t.Day() != dd {
		return nil
	}
	return &t
}

type teamCode struct {
	code  string
	label string
}

// Ordered: the first code contained in the tag's last segment wins.
var teamCodes = []teamCode{
	{"csativacao", "Cs Ativacao"},
	{"csapp", "Cs App"},
	{"cscdx", "Cs Cdx"},
	{"cscp", "Cs Cp"},
	{"outbound", "Sales"},
	{"csport", "Cs Port"},
}

// Team maps the last underscore-separated segment of the tag to a team label
// by substring containment. Tags without at least one underscore, or whose
// last segment contains no known code, yield "".
func Team(tag string) string {
	parts := strings.Split(strings.ToLower(tag), "_")
	if len(parts) < 2 {
		return ""
	}
	frag := parts[len(parts)-1]
	for _, tc := range teamCodes {
		if strings.Contains(frag, tc.code) {
			return tc.label
		}
	}
	return ""
}
