package models

import (
	"fmt"
	"time"
)

// Lead is one CRM lead after normalization. Date is always set; the tag-derived
// fields stay nil/empty when the campaign tag does not encode them.
type Lead struct {
	Team        string     `json:"team"`
	Product     string     `json:"product"`
	Agreement   string     `json:"agreement"`
	Stage       string     `json:"stage"`
	Origin      string     `json:"origin"`
	Date        time.Time  `json:"date"`
	CampaignTag string     `json:"campaign_tag,omitempty"`
	Commission  float64    `json:"commission,omitempty"`
	TagDate     *time.Time `json:"tag_date,omitempty"`
	TagTeam     string     `json:"tag_team,omitempty"`
}

// Spend is one per-channel-day row from the plain spend export.
type Spend struct {
	Team      string    `json:"team"`
	Agreement string    `json:"agreement"`
	Product   string    `json:"product"`
	Channel   string    `json:"channel"`
	Date      time.Time `json:"date"`
	Quantity  int       `json:"quantity"`
}

// TaggedSpend is one campaign-tag spend entry. Cost is always finite and
// non-negative after normalization. Date may be nil when the export carries
// no usable date column.
type TaggedSpend struct {
	Tag     string     `json:"tag"`
	Cost    float64    `json:"cost"`
	Date    *time.Time `json:"date,omitempty"`
	TagDate *time.Time `json:"tag_date,omitempty"`
	TagTeam string     `json:"tag_team,omitempty"`
}

// FilterSet is the shared multi-dimensional filter supplied by the UI shell
// on every interaction. An empty slice leaves that dimension unrestricted.
type FilterSet struct {
	Teams        []string  `json:"teams"`
	Products     []string  `json:"products"`
	Agreements   []string  `json:"agreements"`
	Stages       []string  `json:"stages"`
	Channels     []string  `json:"channels"`
	From         time.Time `json:"from"`
	To           time.Time `json:"to"`
	BusinessDays bool      `json:"business_days"`
}

// SpendAggregate is one reconciled row per (team, agreement, product, channel).
// Value is nil when the channel has no unit cost and the keep policy is active.
type SpendAggregate struct {
	Team      string   `json:"team"`
	Agreement string   `json:"agreement"`
	Product   string   `json:"product"`
	Channel   string   `json:"channel"`
	Quantity  int      `json:"quantity"`
	Value     *float64 `json:"value"`
}

// WarningKind classifies the non-fatal faults the pipeline can surface.
type WarningKind string

const (
	WarnMissingColumn    WarningKind = "missing_column"
	WarnMalformedValue   WarningKind = "malformed_value"
	WarnEmptyResult      WarningKind = "empty_result"
	WarnUnrecognizedFile WarningKind = "unrecognized_file"
)

// Warning is a non-fatal fault carried alongside results instead of an error.
// Nothing in the pipeline aborts the session; see the handler layer for the
// only hard failures (file reads).
type Warning struct {
	Kind    WarningKind `json:"kind"`
	Message string      `json:"message"`
}

// Warnf builds a Warning with a formatted message.
func Warnf(kind WarningKind, format string, args ...any) Warning {
	return Warning{Kind: kind, Message: fmt.Sprintf(format, args...)}
}
