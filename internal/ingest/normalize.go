package ingest

import (
	"encoding/csv"
	"fmt"
	"io"
	"math"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/gfranca/leadboard/internal/models"
)

// Column aliases per source export, keyed by canonical field name. Matching is
// case-insensitive on trimmed headers; the first alias present wins.
var (
	leadAliases = map[string][]string{
		"team":       {"equipe"},
		"product":    {"produto"},
		"agreement":  {"convenio_acronimo", "convênio", "convenio"},
		"stage":      {"etapa"},
		"origin":     {"origem", "canal de origem"},
		"date":       {"data", "data de criação", "data de criacao", "create date"},
		"tag":        {"tag_campanha", "tag da campanha"},
		"commission": {"comissao", "comissão"},
	}
	spendAliases = map[string][]string{
		"team":      {"equipe"},
		"agreement": {"convênio", "convenio", "convenio_acronimo"},
		"product":   {"produto"},
		"channel":   {"canal"},
		"date":      {"data"},
		"quantity":  {"quantidade"},
	}
	taggedAliases = map[string][]string{
		"tag":       {"tag"},
		"cost":      {"custo convertido"},
		"date":      {"data"},
		"formatted": {"data formatada"},
	}
)

// TaggedRequired lists the columns the tagged-spend export must carry.
// Absence is a warning, not an abort.
var TaggedRequired = []string{"Tag", "Custo Convertido"}

type columns map[string]int

func (c columns) get(row []string, field string) (string, bool) {
	i, ok := c[field]
	if !ok || i >= len(row) {
		return "", false
	}
	return strings.TrimSpace(row[i]), true
}

func indexColumns(header []string, aliases map[string][]string) columns {
	lowered := make([]string, len(header))
	for i, h := range header {
		lowered[i] = strings.ToLower(strings.TrimSpace(h))
	}
	out := columns{}
	for field, names := range aliases {
		for _, name := range names {
			for i, h := range lowered {
				if h == name {
					out[field] = i
					break
				}
			}
			if _, ok := out[field]; ok {
				break
			}
		}
	}
	return out
}

func readTable(r io.Reader) ([]string, [][]string, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	header, err := cr.Read()
	if err == io.EOF {
		return nil, nil, nil
	}
	if err != nil {
		return nil, nil, fmt.Errorf("read csv header: %w", err)
	}
	var rows [][]string
	for {
		rec, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, nil, fmt.Errorf("read csv row: %w", err)
		}
		rows = append(rows, rec)
	}
	return header, rows, nil
}

var moneyStrip = regexp.MustCompile(`[^0-9,.]`)

// ParseMoney coerces a locale-mixed monetary string to a non-negative float.
// Anything that fails to parse after cleanup is zero, never an error.
func ParseMoney(s string) float64 {
	s = moneyStrip.ReplaceAllString(s, "")
	s = strings.ReplaceAll(s, ",", ".")
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) || v < 0 {
		return 0
	}
	return v
}

// ParseQuantity coerces a unit count to a non-negative integer, zero on failure.
func ParseQuantity(s string) int {
	v, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		// tolerate exports that write counts as "1200.0"
		f, ferr := strconv.ParseFloat(strings.TrimSpace(s), 64)
		if ferr != nil {
			return 0
		}
		v = int(f)
	}
	if v < 0 {
		return 0
	}
	return v
}

var dateLayouts = []string{"2006-01-02", "2006-01-02 15:04:05", "02/01/2006"}

// ParseDate parses the date formats seen across the exports, truncated to day.
func ParseDate(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return day(t), true
		}
	}
	return time.Time{}, false
}

var dayFirstLayouts = []string{"02/01/2006", "02-01-2006", "2/1/2006"}

// ParseDayFirst parses the day-first "Data Formatada" column of the
// tagged-spend export.
func ParseDayFirst(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	for _, layout := range dayFirstLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return day(t), true
		}
	}
	return time.Time{}, false
}

func day(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// Leads normalizes a HubSpot lead export. Rows without a parseable date are
// dropped so the date invariant holds on everything returned.
func Leads(r io.Reader) ([]models.Lead, []models.Warning, error) {
	header, rows, err := readTable(r)
	if err != nil {
		return nil, nil, err
	}
	cols := indexColumns(header, leadAliases)
	var warns []models.Warning
	if _, ok := cols["date"]; !ok {
		warns = append(warns, models.Warnf(models.WarnMissingColumn, "lead export has no date column, all rows dropped"))
		return nil, warns, nil
	}
	out := make([]models.Lead, 0, len(rows))
	dropped := 0
	for _, row := range rows {
		raw, _ := cols.get(row, "date")
		d, ok := ParseDate(raw)
		if !ok {
			dropped++
			continue
		}
		l := models.Lead{Date: d}
		l.Team, _ = cols.get(row, "team")
		l.Product, _ = cols.get(row, "product")
		l.Agreement, _ = cols.get(row, "agreement")
		l.Stage, _ = cols.get(row, "stage")
		l.Origin, _ = cols.get(row, "origin")
		l.CampaignTag, _ = cols.get(row, "tag")
		if v, ok := cols.get(row, "commission"); ok {
			l.Commission = ParseMoney(v)
		}
		out = append(out, l)
	}
	if dropped > 0 {
		warns = append(warns, models.Warnf(models.WarnMalformedValue, "lead export: %d rows with unparseable dates dropped", dropped))
	}
	return out, warns, nil
}

// PlainSpend normalizes the ads/messaging spend export.
func PlainSpend(r io.Reader) ([]models.Spend, []models.Warning, error) {
	header, rows, err := readTable(r)
	if err != nil {
		return nil, nil, err
	}
	cols := indexColumns(header, spendAliases)
	var warns []models.Warning
	if _, ok := cols["date"]; !ok {
		warns = append(warns, models.Warnf(models.WarnMissingColumn, "spend export has no date column, all rows dropped"))
		return nil, warns, nil
	}
	out := make([]models.Spend, 0, len(rows))
	dropped := 0
	for _, row := range rows {
		raw, _ := cols.get(row, "date")
		d, ok := ParseDate(raw)
		if !ok {
			dropped++
			continue
		}
		s := models.Spend{Date: d}
		s.Team, _ = cols.get(row, "team")
		s.Agreement, _ = cols.get(row, "agreement")
		s.Product, _ = cols.get(row, "product")
		s.Channel, _ = cols.get(row, "channel")
		if v, ok := cols.get(row, "quantity"); ok {
			s.Quantity = ParseQuantity(v)
		}
		out = append(out, s)
	}
	if dropped > 0 {
		warns = append(warns, models.Warnf(models.WarnMalformedValue, "spend export: %d rows with unparseable dates dropped", dropped))
	}
	return out, warns, nil
}

// TaggedSpend normalizes the campaign-tag spend export. Missing required
// columns ("Tag", "Custo Convertido") are warnings; dependent fields stay at
// their zero values. When no canonical date column exists, the day-first
// "Data Formatada" column is used; malformed dates stay nil.
func TaggedSpend(r io.Reader) ([]models.TaggedSpend, []models.Warning, error) {
	header, rows, err := readTable(r)
	if err != nil {
		return nil, nil, err
	}
	cols := indexColumns(header, taggedAliases)
	var warns []models.Warning
	if _, ok := cols["tag"]; !ok {
		warns = append(warns, models.Warnf(models.WarnMissingColumn, "column %q not found in tagged-spend export", "Tag"))
	}
	if _, ok := cols["cost"]; !ok {
		warns = append(warns, models.Warnf(models.WarnMissingColumn, "column %q not found in tagged-spend export", "Custo Convertido"))
	}
	_, hasDate := cols["date"]
	_, hasFormatted := cols["formatted"]
	out := make([]models.TaggedSpend, 0, len(rows))
	badDates := 0
	for _, row := range rows {
		var t models.TaggedSpend
		t.Tag, _ = cols.get(row, "tag")
		if v, ok := cols.get(row, "cost"); ok {
			t.Cost = ParseMoney(v)
		}
		switch {
		case hasDate:
			if raw, _ := cols.get(row, "date"); raw != "" {
				if d, ok := ParseDate(raw); ok {
					t.Date = &d
				} else {
					badDates++
				}
			}
		case hasFormatted:
			if raw, _ := cols.get(row, "formatted"); raw != "" {
				if d, ok := ParseDayFirst(raw); ok {
					t.Date = &d
				} else {
					badDates++
				}
			}
		}
		out = append(out, t)
	}
	if badDates > 0 {
		warns = append(warns, models.Warnf(models.WarnMalformedValue, "tagged-spend export: %d dates could not be parsed", badDates))
	}
	return out, warns, nil
}
