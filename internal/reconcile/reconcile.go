// Package reconcile turns filtered spend rows into monetary aggregates using
// the per-channel unit cost table.
package reconcile

import (
	"fmt"
	"os"
	"sort"

	"gopkg.in/yaml.v3"

	"github.com/gfranca/leadboard/internal/models"
)

// UnitCostTable maps a channel name to its unit price per message.
type UnitCostTable map[string]float64

// DefaultUnitCosts returns the static session pricing.
func DefaultUnitCosts() UnitCostTable {
	return UnitCostTable{
		"SMS":       0.048,
		"RCS":       0.105,
		"HYPERFLOW": 0.047,
		"Whatsapp":  0.046,
	}
}

// LoadUnitCosts reads a channel→price YAML file, e.g.
//
//	SMS: 0.048
//	RCS: 0.105
func LoadUnitCosts(path string) (UnitCostTable, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read unit costs: %w", err)
	}
	var t UnitCostTable
	if err := yaml.Unmarshal(b, &t); err != nil {
		return nil, fmt.Errorf("parse unit costs: %w", err)
	}
	return t, nil
}

// UnknownChannelPolicy decides what happens to aggregates whose channel has no
// unit cost.
type UnknownChannelPolicy string

const (
	// PolicyKeep keeps the row with a nil value.
	PolicyKeep UnknownChannelPolicy = "keep"
	// PolicyDrop removes the row from the result.
	PolicyDrop UnknownChannelPolicy = "drop"
	// PolicyZero values the row at zero.
	PolicyZero UnknownChannelPolicy = "zero"
)

// ParsePolicy validates a configured policy string, defaulting to keep.
func ParsePolicy(s string) (UnknownChannelPolicy, error) {
	switch UnknownChannelPolicy(s) {
	case PolicyKeep, PolicyDrop, PolicyZero:
		return UnknownChannelPolicy(s), nil
	case "":
		return PolicyKeep, nil
	}
	return "", fmt.Errorf("unknown channel policy %q", s)
}

type aggKey struct {
	team, agreement, product, channel string
}

// Aggregate groups spend rows by (team, agreement, product, channel), sums
// quantities and computes value = quantity × unit cost rounded to 2 decimals.
// The result is deterministically ordered.
func Aggregate(rows []models.Spend, costs UnitCostTable, policy UnknownChannelPolicy) []models.SpendAggregate {
	sums := map[aggKey]int{}
	for _, r := range rows {
		k := aggKey{r.Team, r.Agreement, r.Product, r.Channel}
		sums[k] += r.Quantity
	}
	out := make([]models.SpendAggregate, 0, len(sums))
	for k, qty := range sums {
		a := models.SpendAggregate{
			Team:      k.team,
			Agreement: k.agreement,
			Product:   k.product,
			Channel:   k.channel,
			Quantity:  qty,
		}
		cost, ok := costs[k.channel]
		switch {
		case ok:
			v := round2(cost * float64(qty))
			a.Value = &v
		case policy == PolicyDrop:
			continue
		case policy == PolicyZero:
			zero := 0.0
			a.Value = &zero
		}
		out = append(out, a)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Team != out[j].Team {
			return out[i].Team < out[j].Team
		}
		if out[i].Agreement != out[j].Agreement {
			return out[i].Agreement < out[j].Agreement
		}
		if out[i].Product != out[j].Product {
			return out[i].Product < out[j].Product
		}
		return out[i].Channel < out[j].Channel
	})
	return out
}

func round2(f float64) float64 { return float64(int64(f*100+0.5)) / 100 }
