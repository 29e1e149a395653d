package insights

import "github.com/gfranca/leadboard/internal/dataset"

// Report bundles every insight table for one dashboard response.
type Report struct {
	Summary          Summary            `json:"summary"`
	SpendByAgreement []SpendRow         `json:"spend_by_agreement_product"`
	SpendByCampaign  []CampaignSpendRow `json:"spend_by_campaign,omitempty"`
	LeadsByOrigin    []OriginRow        `json:"leads_by_origin"`
	LeadsByAgreement []AgreementRow     `json:"leads_by_agreement"`
	Funnel           []FunnelStage      `json:"funnel"`
	Losses           []LossRow          `json:"losses_by_stage"`
	CPL              []CPLRow           `json:"cpl_by_agreement_product"`
	CPLByCampaign    []CampaignCPLRow   `json:"cpl_by_campaign,omitempty"`
	ROI              []ROIRow           `json:"roi_by_agreement_product"`
	Channels         []ChannelRow       `json:"channels"`
}

// Build derives all insight tables from the assembled dataset. byCampaign
// switches the spend/CPL analyses from the reconciled export to the tagged
// campaign costs; it only applies when a tagged export exists.
func Build(ds dataset.Dataset, topN int, byCampaign bool) Report {
	r := Report{
		Summary:          KPISummary(ds),
		SpendByAgreement: SpendByAgreementProduct(ds, topN),
		LeadsByOrigin:    LeadsByOrigin(ds, topN),
		LeadsByAgreement: LeadsByAgreement(ds, topN, true),
		Funnel:           StageFunnel(ds),
		Losses:           LossesByStage(ds),
		CPL:              CPLByAgreementProduct(ds, topN, true),
		ROI:              ROIByAgreementProduct(ds, topN, true),
		Channels:         ChannelBreakdown(ds),
	}
	if byCampaign && ds.HasTagged {
		r.SpendByCampaign = SpendByCampaign(ds, topN)
		r.CPLByCampaign = CPLByCampaign(ds, topN, true)
	}
	return r
}
