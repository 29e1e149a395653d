package pipeline

import (
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gfranca/leadboard/internal/models"
	"github.com/gfranca/leadboard/internal/reconcile"
)

func testPipeline() *Pipeline {
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	return New(reconcile.DefaultUnitCosts(), reconcile.PolicyKeep, log)
}

func d(n int) time.Time { return time.Date(2024, 3, n, 0, 0, 0, 0, time.UTC) }

func testTables() Tables {
	return Tables{
		Leads: []models.Lead{
			{Team: "A", Product: "p1", Agreement: "c1", Stage: "novo", Origin: "SMS", Date: d(4)},
			{Team: "B", Product: "p1", Agreement: "c1", Stage: "novo", Origin: "RCS", Date: d(5)},
			{Team: "A", Product: "p2", Agreement: "c2", Stage: "pago", Origin: "SMS", Date: d(6), CampaignTag: "conv_06032024_csapp"},
		},
		Spend: []models.Spend{
			{Team: "A", Agreement: "c1", Product: "p1", Channel: "SMS", Date: d(4), Quantity: 1000},
			{Team: "B", Agreement: "c1", Product: "p1", Channel: "RCS", Date: d(5), Quantity: 500},
		},
	}
}

func TestRunFiltersAllTablesByTeam(t *testing.T) {
	f := models.FilterSet{Teams: []string{"A"}, From: d(1), To: d(31)}
	ds, warns := testPipeline().Run(testTables(), f)

	require.Len(t, ds.Leads, 2)
	for _, l := range ds.Leads {
		assert.Equal(t, "A", l.Team)
	}
	require.Len(t, ds.Aggregates, 1)
	assert.Equal(t, "A", ds.Aggregates[0].Team)
	require.NotNil(t, ds.Aggregates[0].Value)
	assert.InDelta(t, 48.00, *ds.Aggregates[0].Value, 1e-9)
	assert.Empty(t, warns)
}

func TestRunKeepsUnfilteredBaseline(t *testing.T) {
	tables := testTables()
	f := models.FilterSet{Teams: []string{"A"}, From: d(1), To: d(31)}
	ds, _ := testPipeline().Run(tables, f)

	assert.Len(t, ds.SpendBaseline, len(tables.Spend))
	assert.Len(t, ds.Spend, 1)
}

func TestRunEnrichesLeadTags(t *testing.T) {
	ds, _ := testPipeline().Run(testTables(), models.FilterSet{From: d(1), To: d(31)})
	var tagged *models.Lead
	for i := range ds.Leads {
		if ds.Leads[i].CampaignTag != "" {
			tagged = &ds.Leads[i]
		}
	}
	require.NotNil(t, tagged)
	assert.Equal(t, "Cs App", tagged.TagTeam)
	require.NotNil(t, tagged.TagDate)
	assert.Equal(t, d(6), *tagged.TagDate)
}

func TestRunDoesNotMutateSnapshot(t *testing.T) {
	tables := testTables()
	testPipeline().Run(tables, models.FilterSet{Teams: []string{"A"}})
	assert.Equal(t, testTables(), tables)
}

func TestRunTaggedSpendFilteredByTagTeam(t *testing.T) {
	tables := testTables()
	tables.HasTagged = true
	tables.Tagged = []models.TaggedSpend{
		{Tag: "conv_06032024_csapp", Cost: 12.5},
		{Tag: "conv_07032024_outbound", Cost: 30},
	}
	f := models.FilterSet{Teams: []string{"Cs App"}, From: d(1), To: d(31)}
	ds, _ := testPipeline().Run(tables, f)

	require.Len(t, ds.TaggedSpend, 1)
	assert.Equal(t, "Cs App", ds.TaggedSpend[0].TagTeam)
	require.NotNil(t, ds.TaggedSpend[0].TagDate)
	assert.Equal(t, d(6), *ds.TaggedSpend[0].TagDate)
}

func TestRunEmptyResultWarnings(t *testing.T) {
	f := models.FilterSet{Teams: []string{"nobody"}, From: d(1), To: d(31)}
	ds, warns := testPipeline().Run(testTables(), f)

	assert.Empty(t, ds.Leads)
	assert.Empty(t, ds.Spend)
	require.Len(t, warns, 2)
	for _, w := range warns {
		assert.Equal(t, models.WarnEmptyResult, w.Kind)
	}
}

func TestRunEmptySnapshot(t *testing.T) {
	ds, warns := testPipeline().Run(Tables{}, models.FilterSet{})
	assert.Empty(t, ds.Leads)
	assert.Empty(t, ds.Aggregates)
	assert.Empty(t, warns)
}
