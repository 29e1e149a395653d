// Package dataset holds the reconciled bundle every chart consumes.
package dataset

import (
	"time"

	"github.com/gfranca/leadboard/internal/models"
)

// Dataset is the assembled output of one pipeline run. Charts receive exactly
// these tables, never the raw uploads. SpendBaseline is the unfiltered spend
// table kept for KPI baseline comparisons.
type Dataset struct {
	Leads         []models.Lead           `json:"leads"`
	Spend         []models.Spend          `json:"spend"`
	SpendBaseline []models.Spend          `json:"spend_baseline"`
	TaggedSpend   []models.TaggedSpend    `json:"tagged_spend,omitempty"`
	Aggregates    []models.SpendAggregate `json:"aggregates"`
	From          time.Time               `json:"from"`
	To            time.Time               `json:"to"`
	BusinessDays  bool                    `json:"business_days"`
	HasTagged     bool                    `json:"has_tagged"`
}

// Assemble bundles the pipeline outputs. No transformation happens here.
func Assemble(leads []models.Lead, spend, baseline []models.Spend, tagged []models.TaggedSpend, hasTagged bool, aggs []models.SpendAggregate, f models.FilterSet) Dataset {
	return Dataset{
		Leads:         leads,
		Spend:         spend,
		SpendBaseline: baseline,
		TaggedSpend:   tagged,
		Aggregates:    aggs,
		From:          f.From,
		To:            f.To,
		BusinessDays:  f.BusinessDays,
		HasTagged:     hasTagged,
	}
}
