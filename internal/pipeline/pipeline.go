// Package pipeline runs the full reconciliation flow for one interaction:
// extract → filter → reconcile → assemble. Each run works on its own copies;
// nothing here mutates the session's retained tables.
package pipeline

import (
	"log/slog"

	"github.com/gfranca/leadboard/internal/dataset"
	"github.com/gfranca/leadboard/internal/filter"
	"github.com/gfranca/leadboard/internal/models"
	"github.com/gfranca/leadboard/internal/reconcile"
	"github.com/gfranca/leadboard/internal/tags"
)

// Tables is a snapshot of one session's normalized uploads.
type Tables struct {
	Leads     []models.Lead
	Spend     []models.Spend
	Tagged    []models.TaggedSpend
	HasTagged bool
}

type Pipeline struct {
	costs  reconcile.UnitCostTable
	policy reconcile.UnknownChannelPolicy
	log    *slog.Logger
}

func New(costs reconcile.UnitCostTable, policy reconcile.UnknownChannelPolicy, log *slog.Logger) *Pipeline {
	return &Pipeline{costs: costs, policy: policy, log: log}
}

// Run executes one synchronous pass over the snapshot and returns the
// assembled dataset plus any non-fatal warnings.
func (p *Pipeline) Run(t Tables, f models.FilterSet) (dataset.Dataset, []models.Warning) {
	var warns []models.Warning

	leads := enrichLeads(t.Leads)
	filteredLeads := filter.Leads(leads, f)
	if len(leads) > 0 && len(filteredLeads) == 0 {
		warns = append(warns, models.Warnf(models.WarnEmptyResult, "filter removed every lead row"))
	}

	filteredSpend := filter.Spend(t.Spend, f)
	if len(t.Spend) > 0 && len(filteredSpend) == 0 {
		warns = append(warns, models.Warnf(models.WarnEmptyResult, "filter removed every spend row"))
	}

	var tagged []models.TaggedSpend
	if t.HasTagged {
		var tw []models.Warning
		tagged, tw = filter.TaggedSpend(enrichTagged(t.Tagged), f)
		warns = append(warns, tw...)
	}

	aggs := reconcile.Aggregate(filteredSpend, p.costs, p.policy)

	for _, w := range warns {
		p.log.Warn("pipeline", slog.String("kind", string(w.Kind)), slog.String("msg", w.Message))
	}
	return dataset.Assemble(filteredLeads, filteredSpend, t.Spend, tagged, t.HasTagged, aggs, f), warns
}

func enrichLeads(rows []models.Lead) []models.Lead {
	out := make([]models.Lead, len(rows))
	copy(out, rows)
	for i := range out {
		if out[i].CampaignTag == "" {
			continue
		}
		out[i].TagDate = tags.Date(out[i].CampaignTag)
		out[i].TagTeam = tags.Team(out[i].CampaignTag)
	}
	return out
}

func enrichTagged(rows []models.TaggedSpend) []models.TaggedSpend {
	out := make([]models.TaggedSpend, len(rows))
	copy(out, rows)
	for i := range out {
		if out[i].Tag == "" {
			continue
		}
		out[i].TagDate = tags.Date(out[i].Tag)
		out[i].TagTeam = tags.Team(out[i].Tag)
	}
	return out
}
