// Package insights derives the ratio metrics and breakdown tables the
// dashboard charts consume. Every function is pure over the assembled
// dataset and never mutates it.
package insights

import (
	"sort"

	"github.com/gfranca/leadboard/internal/dataset"
	"github.com/gfranca/leadboard/internal/filter"
)

// Summary is the KPI strip at the top of the dashboard.
type Summary struct {
	Leads            int     `json:"leads"`
	TotalSpend       float64 `json:"total_spend"`
	CPL              float64 `json:"cpl"`
	EligibleDays     int     `json:"eligible_days"`
	LeadsPerDay      float64 `json:"leads_per_day"`
	SpendPerDay      float64 `json:"spend_per_day"`
	BaselineQuantity int     `json:"baseline_quantity"`
}

// KPISummary computes the headline numbers. Per-day averages use only the
// days eligible under the business-days toggle.
func KPISummary(ds dataset.Dataset) Summary {
	s := Summary{Leads: len(ds.Leads)}
	for _, a := range ds.Aggregates {
		if a.Value != nil {
			s.TotalSpend += *a.Value
		}
	}
	s.TotalSpend = round2(s.TotalSpend)
	s.CPL = round2(safeDiv(s.TotalSpend, float64(s.Leads)))
	s.EligibleDays = filter.EligibleDays(ds.From, ds.To, ds.BusinessDays)
	s.LeadsPerDay = round2(safeDiv(float64(s.Leads), float64(s.EligibleDays)))
	s.SpendPerDay = round2(safeDiv(s.TotalSpend, float64(s.EligibleDays)))
	for _, r := range ds.SpendBaseline {
		s.BaselineQuantity += r.Quantity
	}
	return s
}

// SpendRow is spend totalled per (agreement, product).
type SpendRow struct {
	Agreement string  `json:"agreement"`
	Product   string  `json:"product"`
	Quantity  int     `json:"quantity"`
	Value     float64 `json:"value"`
}

// SpendByAgreementProduct sums the reconciled aggregates across channels and
// returns the top-N pairs by value.
func SpendByAgreementProduct(ds dataset.Dataset, topN int) []SpendRow {
	type key struct{ agreement, product string }
	sums := map[key]*SpendRow{}
	for _, a := range ds.Aggregates {
		k := key{a.Agreement, a.Product}
		row, ok := sums[k]
		if !ok {
			row = &SpendRow{Agreement: a.Agreement, Product: a.Product}
			sums[k] = row
		}
		row.Quantity += a.Quantity
		if a.Value != nil {
			row.Value = round2(row.Value + *a.Value)
		}
	}
	out := make([]SpendRow, 0, len(sums))
	for _, r := range sums {
		out = append(out, *r)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Value != out[j].Value {
			return out[i].Value > out[j].Value
		}
		if out[i].Agreement != out[j].Agreement {
			return out[i].Agreement < out[j].Agreement
		}
		return out[i].Product < out[j].Product
	})
	return clamp(out, topN)
}

// CampaignSpendRow is converted cost totalled per campaign tag.
type CampaignSpendRow struct {
	Tag  string  `json:"tag"`
	Team string  `json:"team,omitempty"`
	Cost float64 `json:"cost"`
}

// SpendByCampaign totals tagged spend per campaign tag, top-N by cost. Used
// by the by-campaign analysis mode; empty when no tagged export was uploaded.
func SpendByCampaign(ds dataset.Dataset, topN int) []CampaignSpendRow {
	sums := map[string]*CampaignSpendRow{}
	for _, t := range ds.TaggedSpend {
		row, ok := sums[t.Tag]
		if !ok {
			row = &CampaignSpendRow{Tag: t.Tag, Team: t.TagTeam}
			sums[t.Tag] = row
		}
		row.Cost = round2(row.Cost + t.Cost)
	}
	out := make([]CampaignSpendRow, 0, len(sums))
	for _, r := range sums {
		out = append(out, *r)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Cost != out[j].Cost {
			return out[i].Cost > out[j].Cost
		}
		return out[i].Tag < out[j].Tag
	})
	return clamp(out, topN)
}

// OriginRow is the lead count per origin channel.
type OriginRow struct {
	Origin string `json:"origin"`
	Leads  int    `json:"leads"`
}

func LeadsByOrigin(ds dataset.Dataset, topN int) []OriginRow {
	counts := map[string]int{}
	for _, l := range ds.Leads {
		counts[l.Origin]++
	}
	out := make([]OriginRow, 0, len(counts))
	for origin, n := range counts {
		out = append(out, OriginRow{Origin: origin, Leads: n})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Leads != out[j].Leads {
			return out[i].Leads > out[j].Leads
		}
		return out[i].Origin < out[j].Origin
	})
	return clamp(out, topN)
}

// AgreementRow is the lead count per agreement.
type AgreementRow struct {
	Agreement string `json:"agreement"`
	Leads     int    `json:"leads"`
}

// LeadsByAgreement counts leads per agreement, top-N largest (or smallest).
func LeadsByAgreement(ds dataset.Dataset, topN int, largest bool) []AgreementRow {
	counts := map[string]int{}
	for _, l := range ds.Leads {
		counts[l.Agreement]++
	}
	out := make([]AgreementRow, 0, len(counts))
	for a, n := range counts {
		out = append(out, AgreementRow{Agreement: a, Leads: n})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Leads != out[j].Leads {
			if largest {
				return out[i].Leads > out[j].Leads
			}
			return out[i].Leads < out[j].Leads
		}
		return out[i].Agreement < out[j].Agreement
	})
	return clamp(out, topN)
}

// FunnelStage is one step of the lead funnel.
type FunnelStage struct {
	Stage string `json:"stage"`
	Leads int    `json:"leads"`
}

// StageFunnel counts leads per pipeline stage, widest step first. The stage
// ordering of the export is positional (a funnel narrows), so descending
// count recovers it.
func StageFunnel(ds dataset.Dataset) []FunnelStage {
	counts := map[string]int{}
	for _, l := range ds.Leads {
		counts[l.Stage]++
	}
	out := make([]FunnelStage, 0, len(counts))
	for stage, n := range counts {
		out = append(out, FunnelStage{Stage: stage, Leads: n})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Leads != out[j].Leads {
			return out[i].Leads > out[j].Leads
		}
		return out[i].Stage < out[j].Stage
	})
	return out
}

// LossRow is the drop-off between consecutive funnel steps.
type LossRow struct {
	Stage   string `json:"stage"`
	Entered int    `json:"entered"`
	Lost    int    `json:"lost"`
}

// LossesByStage reports how many leads each funnel step loses to the next.
func LossesByStage(ds dataset.Dataset) []LossRow {
	funnel := StageFunnel(ds)
	out := make([]LossRow, 0, len(funnel))
	for i, f := range funnel {
		lost := 0
		if i+1 < len(funnel) {
			lost = f.Leads - funnel[i+1].Leads
		}
		out = append(out, LossRow{Stage: f.Stage, Entered: f.Leads, Lost: lost})
	}
	return out
}

// CPLRow is cost per lead for one (agreement, product) pair.
type CPLRow struct {
	Agreement string  `json:"agreement"`
	Product   string  `json:"product"`
	Spend     float64 `json:"spend"`
	Leads     int     `json:"leads"`
	CPL       float64 `json:"cpl"`
}

// CPLByAgreementProduct joins reconciled spend with lead counts per
// (agreement, product). Pairs without leads are skipped (CPL undefined).
// highest selects the worst CPLs first; otherwise the best.
func CPLByAgreementProduct(ds dataset.Dataset, topN int, highest bool) []CPLRow {
	type key struct{ agreement, product string }
	leads := map[key]int{}
	for _, l := range ds.Leads {
		leads[key{l.Agreement, l.Product}]++
	}
	spend := map[key]float64{}
	for _, a := range ds.Aggregates {
		if a.Value != nil {
			k := key{a.Agreement, a.Product}
			spend[k] = round2(spend[k] + *a.Value)
		}
	}
	out := make([]CPLRow, 0, len(spend))
	for k, v := range spend {
		n := leads[k]
		if n == 0 {
			continue
		}
		out = append(out, CPLRow{
			Agreement: k.agreement,
			Product:   k.product,
			Spend:     v,
			Leads:     n,
			CPL:       round2(v / float64(n)),
		})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].CPL != out[j].CPL {
			if highest {
				return out[i].CPL > out[j].CPL
			}
			return out[i].CPL < out[j].CPL
		}
		if out[i].Agreement != out[j].Agreement {
			return out[i].Agreement < out[j].Agreement
		}
		return out[i].Product < out[j].Product
	})
	return clamp(out, topN)
}

// CampaignCPLRow is cost per lead for one campaign tag.
type CampaignCPLRow struct {
	Tag   string  `json:"tag"`
	Cost  float64 `json:"cost"`
	Leads int     `json:"leads"`
	CPL   float64 `json:"cpl"`
}

// CPLByCampaign matches tagged spend to leads carrying the same campaign tag.
func CPLByCampaign(ds dataset.Dataset, topN int, highest bool) []CampaignCPLRow {
	leads := map[string]int{}
	for _, l := range ds.Leads {
		if l.CampaignTag != "" {
			leads[l.CampaignTag]++
		}
	}
	costs := map[string]float64{}
	for _, t := range ds.TaggedSpend {
		costs[t.Tag] = round2(costs[t.Tag] + t.Cost)
	}
	out := make([]CampaignCPLRow, 0, len(costs))
	for tag, cost := range costs {
		n := leads[tag]
		if n == 0 {
			continue
		}
		out = append(out, CampaignCPLRow{Tag: tag, Cost: cost, Leads: n, CPL: round2(cost / float64(n))})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].CPL != out[j].CPL {
			if highest {
				return out[i].CPL > out[j].CPL
			}
			return out[i].CPL < out[j].CPL
		}
		return out[i].Tag < out[j].Tag
	})
	return clamp(out, topN)
}

// ROIRow compares lead commission against reconciled spend per
// (agreement, product).
type ROIRow struct {
	Agreement  string  `json:"agreement"`
	Product    string  `json:"product"`
	Commission float64 `json:"commission"`
	Spend      float64 `json:"spend"`
	ROI        float64 `json:"roi"`
}

// ROIByAgreementProduct ranks (agreement, product) pairs by commission/spend.
// Pairs with zero spend are skipped (ROI undefined).
func ROIByAgreementProduct(ds dataset.Dataset, topN int, best bool) []ROIRow {
	type key struct{ agreement, product string }
	commission := map[key]float64{}
	for _, l := range ds.Leads {
		k := key{l.Agreement, l.Product}
		commission[k] = round2(commission[k] + l.Commission)
	}
	spend := map[key]float64{}
	for _, a := range ds.Aggregates {
		if a.Value != nil {
			k := key{a.Agreement, a.Product}
			spend[k] = round2(spend[k] + *a.Value)
		}
	}
	out := make([]ROIRow, 0, len(spend))
	for k, v := range spend {
		if v == 0 {
			continue
		}
		out = append(out, ROIRow{
			Agreement:  k.agreement,
			Product:    k.product,
			Commission: commission[k],
			Spend:      v,
			ROI:        round2(commission[k] / v),
		})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].ROI != out[j].ROI {
			if best {
				return out[i].ROI > out[j].ROI
			}
			return out[i].ROI < out[j].ROI
		}
		if out[i].Agreement != out[j].Agreement {
			return out[i].Agreement < out[j].Agreement
		}
		return out[i].Product < out[j].Product
	})
	return clamp(out, topN)
}

// ChannelRow compares spend and commission per channel.
type ChannelRow struct {
	Channel    string  `json:"channel"`
	Spend      float64 `json:"spend"`
	Commission float64 `json:"commission"`
	ROI        float64 `json:"roi"`
}

// ChannelBreakdown totals reconciled spend per channel next to the commission
// of the leads originated there.
func ChannelBreakdown(ds dataset.Dataset) []ChannelRow {
	spend := map[string]float64{}
	for _, a := range ds.Aggregates {
		if a.Value != nil {
			spend[a.Channel] = round2(spend[a.Channel] + *a.Value)
		}
	}
	commission := map[string]float64{}
	for _, l := range ds.Leads {
		commission[l.Origin] = round2(commission[l.Origin] + l.Commission)
	}
	channels := map[string]struct{}{}
	for c := range spend {
		channels[c] = struct{}{}
	}
	for c := range commission {
		channels[c] = struct{}{}
	}
	out := make([]ChannelRow, 0, len(channels))
	for c := range channels {
		out = append(out, ChannelRow{
			Channel:    c,
			Spend:      spend[c],
			Commission: commission[c],
			ROI:        round2(safeDiv(commission[c], spend[c])),
		})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Channel < out[j].Channel })
	return out
}

func clamp[T any](rows []T, topN int) []T {
	if topN > 0 && len(rows) > topN {
		return rows[:topN]
	}
	return rows
}

func safeDiv(a, b float64) float64 {
	if b == 0 {
		return 0
	}
	return a / b
}

func round2(f float64) float64 { return float64(int64(f*100+0.5)) / 100 }
