package insights

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gfranca/leadboard/internal/dataset"
	"github.com/gfranca/leadboard/internal/models"
)

func fp(v float64) *float64 { return &v }

func d(n int) time.Time { return time.Date(2024, 3, n, 0, 0, 0, 0, time.UTC) }

func testDataset() dataset.Dataset {
	return dataset.Dataset{
		Leads: []models.Lead{
			{Team: "A", Product: "p1", Agreement: "c1", Stage: "novo", Origin: "SMS", Date: d(4), Commission: 100},
			{Team: "A", Product: "p1", Agreement: "c1", Stage: "pago", Origin: "SMS", Date: d(5), Commission: 50},
			{Team: "A", Product: "p2", Agreement: "c2", Stage: "novo", Origin: "RCS", Date: d(6)},
			{Team: "A", Product: "p2", Agreement: "c2", Stage: "novo", Origin: "RCS", Date: d(7), CampaignTag: "conv_csapp"},
		},
		Spend: []models.Spend{
			{Team: "A", Agreement: "c1", Product: "p1", Channel: "SMS", Date: d(4), Quantity: 1000},
		},
		SpendBaseline: []models.Spend{
			{Team: "A", Agreement: "c1", Product: "p1", Channel: "SMS", Date: d(4), Quantity: 1000},
			{Team: "B", Agreement: "c1", Product: "p1", Channel: "RCS", Date: d(4), Quantity: 2000},
		},
		Aggregates: []models.SpendAggregate{
			{Team: "A", Agreement: "c1", Product: "p1", Channel: "SMS", Quantity: 1000, Value: fp(48)},
			{Team: "A", Agreement: "c2", Product: "p2", Channel: "RCS", Quantity: 100, Value: fp(10.5)},
			{Team: "A", Agreement: "c2", Product: "p2", Channel: "Pigeon", Quantity: 10, Value: nil},
		},
		From:      d(4),
		To:        d(10),
		HasTagged: true,
		TaggedSpend: []models.TaggedSpend{
			{Tag: "conv_csapp", Cost: 20, TagTeam: "Cs App"},
			{Tag: "conv_outbound", Cost: 5, TagTeam: "Sales"},
		},
	}
}

func TestKPISummary(t *testing.T) {
	s := KPISummary(testDataset())
	assert.Equal(t, 4, s.Leads)
	assert.InDelta(t, 58.5, s.TotalSpend, 1e-9)
	assert.InDelta(t, 14.63, s.CPL, 1e-9)
	assert.Equal(t, 7, s.EligibleDays)
	assert.Equal(t, 3000, s.BaselineQuantity)
}

func TestKPISummaryBusinessDays(t *testing.T) {
	ds := testDataset()
	ds.BusinessDays = true
	s := KPISummary(ds)
	// 2024-03-09/10 are a weekend
	assert.Equal(t, 5, s.EligibleDays)
}

func TestKPISummaryEmptyDataset(t *testing.T) {
	s := KPISummary(dataset.Dataset{})
	assert.Zero(t, s.Leads)
	assert.Zero(t, s.CPL)
	assert.Zero(t, s.LeadsPerDay)
}

func TestSpendByAgreementProduct(t *testing.T) {
	rows := SpendByAgreementProduct(testDataset(), 5)
	require.Len(t, rows, 2)
	assert.Equal(t, "c1", rows[0].Agreement)
	assert.InDelta(t, 48, rows[0].Value, 1e-9)
	// nil-valued aggregate contributes quantity but no value
	assert.Equal(t, 110, rows[1].Quantity)
	assert.InDelta(t, 10.5, rows[1].Value, 1e-9)
}

func TestSpendByAgreementProductTopN(t *testing.T) {
	rows := SpendByAgreementProduct(testDataset(), 1)
	require.Len(t, rows, 1)
	assert.Equal(t, "c1", rows[0].Agreement)
}

func TestSpendByCampaign(t *testing.T) {
	rows := SpendByCampaign(testDataset(), 5)
	require.Len(t, rows, 2)
	assert.Equal(t, "conv_csapp", rows[0].Tag)
	assert.InDelta(t, 20, rows[0].Cost, 1e-9)
}

func TestLeadsByOrigin(t *testing.T) {
	rows := LeadsByOrigin(testDataset(), 5)
	require.Len(t, rows, 2)
	assert.Equal(t, OriginRow{Origin: "RCS", Leads: 2}, rows[0])
	assert.Equal(t, OriginRow{Origin: "SMS", Leads: 2}, rows[1])
}

func TestStageFunnelWidestFirst(t *testing.T) {
	rows := StageFunnel(testDataset())
	require.Len(t, rows, 2)
	assert.Equal(t, FunnelStage{Stage: "novo", Leads: 3}, rows[0])
	assert.Equal(t, FunnelStage{Stage: "pago", Leads: 1}, rows[1])
}

func TestLossesByStage(t *testing.T) {
	rows := LossesByStage(testDataset())
	require.Len(t, rows, 2)
	assert.Equal(t, LossRow{Stage: "novo", Entered: 3, Lost: 2}, rows[0])
	assert.Equal(t, LossRow{Stage: "pago", Entered: 1, Lost: 0}, rows[1])
}

func TestCPLByAgreementProduct(t *testing.T) {
	rows := CPLByAgreementProduct(testDataset(), 5, true)
	require.Len(t, rows, 2)
	// c1/p1: 48 / 2 leads = 24; c2/p2: 10.5 / 2 = 5.25; highest first
	assert.Equal(t, "c1", rows[0].Agreement)
	assert.InDelta(t, 24, rows[0].CPL, 1e-9)
	assert.InDelta(t, 5.25, rows[1].CPL, 1e-9)

	lowest := CPLByAgreementProduct(testDataset(), 5, false)
	assert.Equal(t, "c2", lowest[0].Agreement)
}

func TestCPLByCampaign(t *testing.T) {
	rows := CPLByCampaign(testDataset(), 5, true)
	require.Len(t, rows, 1)
	assert.Equal(t, "conv_csapp", rows[0].Tag)
	assert.Equal(t, 1, rows[0].Leads)
	assert.InDelta(t, 20, rows[0].CPL, 1e-9)
}

func TestROIByAgreementProduct(t *testing.T) {
	rows := ROIByAgreementProduct(testDataset(), 5, true)
	require.Len(t, rows, 2)
	// c1/p1: 150 commission / 48 spend = 3.13
	assert.Equal(t, "c1", rows[0].Agreement)
	assert.InDelta(t, 3.13, rows[0].ROI, 1e-9)
	assert.InDelta(t, 0, rows[1].ROI, 1e-9)
}

func TestChannelBreakdown(t *testing.T) {
	rows := ChannelBreakdown(testDataset())
	require.Len(t, rows, 2)
	assert.Equal(t, "RCS", rows[0].Channel)
	assert.InDelta(t, 10.5, rows[0].Spend, 1e-9)
	assert.Equal(t, "SMS", rows[1].Channel)
	assert.InDelta(t, 150, rows[1].Commission, 1e-9)
	assert.InDelta(t, 3.13, rows[1].ROI, 1e-9)
}

func TestBuildReportModes(t *testing.T) {
	ds := testDataset()
	r := Build(ds, 5, false)
	assert.Empty(t, r.SpendByCampaign)
	assert.NotEmpty(t, r.SpendByAgreement)

	r = Build(ds, 5, true)
	assert.NotEmpty(t, r.SpendByCampaign)
	assert.NotEmpty(t, r.CPLByCampaign)

	ds.HasTagged = false
	r = Build(ds, 5, true)
	assert.Empty(t, r.SpendByCampaign)
}
