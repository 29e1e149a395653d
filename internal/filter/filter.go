// Package filter applies one FilterSet consistently across the three tables.
// Filtering never mutates its input; every call returns a fresh slice.
package filter

import (
	"time"

	"github.com/gfranca/leadboard/internal/models"
)

type set map[string]struct{}

func toSet(vals []string) set {
	if len(vals) == 0 {
		return nil
	}
	s := make(set, len(vals))
	for _, v := range vals {
		s[v] = struct{}{}
	}
	return s
}

// nil set means the dimension is unrestricted.
func (s set) allows(v string) bool {
	if s == nil {
		return true
	}
	_, ok := s[v]
	return ok
}

func inRange(d time.Time, f models.FilterSet) bool {
	if !f.From.IsZero() && d.Before(f.From) {
		return false
	}
	if !f.To.IsZero() && d.After(f.To) {
		return false
	}
	if f.BusinessDays && isWeekend(d) {
		return false
	}
	return true
}

func isWeekend(d time.Time) bool {
	wd := d.Weekday()
	return wd == time.Saturday || wd == time.Sunday
}

// EligibleDays counts the calendar days in [from, to] that survive the
// business-days toggle. Used for per-day KPI averages.
func EligibleDays(from, to time.Time, businessOnly bool) int {
	if from.IsZero() || to.IsZero() || to.Before(from) {
		return 0
	}
	n := 0
	for d := from; !d.After(to); d = d.AddDate(0, 0, 1) {
		if businessOnly && isWeekend(d) {
			continue
		}
		n++
	}
	return n
}

// Leads applies the FilterSet to the lead table via its own dimensions.
func Leads(rows []models.Lead, f models.FilterSet) []models.Lead {
	teams := toSet(f.Teams)
	products := toSet(f.Products)
	agreements := toSet(f.Agreements)
	stages := toSet(f.Stages)
	channels := toSet(f.Channels)
	out := make([]models.Lead, 0, len(rows))
	for _, r := range rows {
		if !inRange(r.Date, f) {
			continue
		}
		if !teams.allows(r.Team) || !products.allows(r.Product) ||
			!agreements.allows(r.Agreement) || !stages.allows(r.Stage) ||
			!channels.allows(r.Origin) {
			continue
		}
		out = append(out, r)
	}
	return out
}

// Spend applies the FilterSet to the plain spend table. The stage dimension
// does not exist there and is ignored.
func Spend(rows []models.Spend, f models.FilterSet) []models.Spend {
	teams := toSet(f.Teams)
	products := toSet(f.Products)
	agreements := toSet(f.Agreements)
	channels := toSet(f.Channels)
	out := make([]models.Spend, 0, len(rows))
	for _, r := range rows {
		if !inRange(r.Date, f) {
			continue
		}
		if !teams.allows(r.Team) || !products.allows(r.Product) ||
			!agreements.allows(r.Agreement) || !channels.allows(r.Channel) {
			continue
		}
		out = append(out, r)
	}
	return out
}

// TaggedSpend filters the tagged-spend table by the tag-derived team and by
// date. Campaign tags encode team differently from the plain export, so the
// team filter runs against TagTeam, not a source column. Rows without a date
// cannot be range-checked and pass the date criteria. Emptying a previously
// non-empty table is surfaced as a warning, never an error.
func TaggedSpend(rows []models.TaggedSpend, f models.FilterSet) ([]models.TaggedSpend, []models.Warning) {
	teams := toSet(f.Teams)
	out := make([]models.TaggedSpend, 0, len(rows))
	for _, r := range rows {
		if r.Date != nil && !inRange(*r.Date, f) {
			continue
		}
		if !teams.allows(r.TagTeam) {
			continue
		}
		out = append(out, r)
	}
	var warns []models.Warning
	if len(rows) > 0 && len(out) == 0 {
		warns = append(warns, models.Warnf(models.WarnEmptyResult, "team filter removed every tagged-spend row, check tag/team value compatibility"))
	}
	return out, warns
}
