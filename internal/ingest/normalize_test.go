package ingest

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gfranca/leadboard/internal/models"
)

func TestParseMoney(t *testing.T) {
	cases := []struct {
		in   string
		want float64
	}{
		{"R$ 99,90", 99.9},
		{"10,5", 10.5},
		{"0.046", 0.046},
		{"1234", 1234},
		{"abc", 0},
		{"", 0},
		{"1.2.3", 0},
		{"R$", 0},
	}
	for _, c := range cases {
		got := ParseMoney(c.in)
		assert.InDelta(t, c.want, got, 1e-9, "input %q", c.in)
		assert.GreaterOrEqual(t, got, 0.0, "input %q", c.in)
	}
}

func TestParseQuantity(t *testing.T) {
	assert.Equal(t, 1000, ParseQuantity("1000"))
	assert.Equal(t, 1200, ParseQuantity("1200.0"))
	assert.Equal(t, 0, ParseQuantity("abc"))
	assert.Equal(t, 0, ParseQuantity("-5"))
	assert.Equal(t, 0, ParseQuantity(""))
}

func TestLeadsNormalization(t *testing.T) {
	csv := strings.Join([]string{
		"equipe,produto,convenio_acronimo,etapa,origem,data,tag_campanha",
		"Cs App,Consignado,INSS,Novo,SMS,2024-03-01,conv_01032024_csapp",
		"Sales,Cartao,GOV,Contato,Whatsapp,01/03/2024,",
		"Sales,Cartao,GOV,Contato,Whatsapp,not-a-date,",
	}, "\n")

	rows, warns, err := Leads(strings.NewReader(csv))
	require.NoError(t, err)
	require.Len(t, rows, 2)

	assert.Equal(t, "Cs App", rows[0].Team)
	assert.Equal(t, "Consignado", rows[0].Product)
	assert.Equal(t, "INSS", rows[0].Agreement)
	assert.Equal(t, "Novo", rows[0].Stage)
	assert.Equal(t, "SMS", rows[0].Origin)
	assert.Equal(t, "conv_01032024_csapp", rows[0].CampaignTag)
	assert.Equal(t, time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC), rows[0].Date)

	// day-first fallback layout
	assert.Equal(t, time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC), rows[1].Date)

	require.Len(t, warns, 1)
	assert.Equal(t, models.WarnMalformedValue, warns[0].Kind)
}

func TestLeadsMissingDateColumn(t *testing.T) {
	csv := "equipe,produto\nCs App,Consignado\n"
	rows, warns, err := Leads(strings.NewReader(csv))
	require.NoError(t, err)
	assert.Empty(t, rows)
	require.Len(t, warns, 1)
	assert.Equal(t, models.WarnMissingColumn, warns[0].Kind)
}

func TestLeadsEmptyFile(t *testing.T) {
	rows, warns, err := Leads(strings.NewReader(""))
	require.NoError(t, err)
	assert.Empty(t, rows)
	assert.Empty(t, warns)
}

func TestPlainSpendNormalization(t *testing.T) {
	csv := strings.Join([]string{
		"Equipe,Convênio,Produto,Canal,data,Quantidade",
		"Cs App,INSS,Consignado,SMS,2024-03-01,1000",
		"Cs App,INSS,Consignado,SMS,2024-03-02,abc",
	}, "\n")

	rows, _, err := PlainSpend(strings.NewReader(csv))
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, 1000, rows[0].Quantity)
	assert.Equal(t, "SMS", rows[0].Channel)
	// malformed quantity coerces to zero, the row survives
	assert.Equal(t, 0, rows[1].Quantity)
}

func TestTaggedSpendNormalization(t *testing.T) {
	csv := strings.Join([]string{
		"Tag,Custo Convertido,Data Formatada",
		`conv_05032024_csapp,"R$ 10,50",05/03/2024`,
		"conv_sem_data_cscp,abc,not-a-date",
	}, "\n")

	rows, warns, err := TaggedSpend(strings.NewReader(csv))
	require.NoError(t, err)
	require.Len(t, rows, 2)

	assert.InDelta(t, 10.5, rows[0].Cost, 1e-9)
	require.NotNil(t, rows[0].Date)
	assert.Equal(t, time.Date(2024, 3, 5, 0, 0, 0, 0, time.UTC), *rows[0].Date)

	assert.Zero(t, rows[1].Cost)
	assert.Nil(t, rows[1].Date)

	require.Len(t, warns, 1)
	assert.Equal(t, models.WarnMalformedValue, warns[0].Kind)
}

func TestTaggedSpendMissingRequiredColumns(t *testing.T) {
	csv := "Tag,Data Formatada\nconv_csapp,05/03/2024\n"
	rows, warns, err := TaggedSpend(strings.NewReader(csv))
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Zero(t, rows[0].Cost)

	require.Len(t, warns, 1)
	assert.Equal(t, models.WarnMissingColumn, warns[0].Kind)
	assert.Contains(t, warns[0].Message, "Custo Convertido")
}
