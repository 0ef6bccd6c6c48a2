// internal/dataset/normalize_test.go
package dataset

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"green-genie/internal/models"
)

func TestParseCSV_StripsBOM(t *testing.T) {
	data := []byte("\uFEFFCompany,Sector\nSolarCo,Renewable Energy\n")

	header, rows, err := parseCSV(data)
	require.NoError(t, err)

	assert.Equal(t, []string{"Company", "Sector"}, header)
	require.Len(t, rows, 1)
	assert.Equal(t, "SolarCo", rows[0][0])
}

func TestParseCSV_RaggedRowsAccepted(t *testing.T) {
	data := []byte("Company,Sector,ESG Score\nSolarCo,Renewable Energy\nWindWorks,Renewable Energy,84,extra\n")

	_, rows, err := parseCSV(data)
	require.NoError(t, err)
	assert.Len(t, rows, 2)
}

func TestParseCSV_EmptyInput(t *testing.T) {
	_, _, err := parseCSV([]byte(""))
	assert.Error(t, err)
}

func TestNormalizeESG_ColumnCandidates(t *testing.T) {
	cases := []struct {
		name   string
		header []string
		row    []string
	}{
		{"canonical", []string{"Company", "Sector", "ESG Score"}, []string{"SolarCo", "Renewable Energy", "91"}},
		{"ticker and industry", []string{"Ticker", "Industry", "esg_score"}, []string{"SolarCo", "Renewable Energy", "91"}},
		{"lowercase", []string{"Name", "sector", "score"}, []string{"SolarCo", "Renewable Energy", "91"}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			recs := normalizeESG(tc.header, [][]string{tc.row})
			require.Len(t, recs, 1)
			assert.Equal(t, "SolarCo", recs[0].Company)
			assert.Equal(t, "Renewable Energy", recs[0].Sector)
			assert.True(t, recs[0].HasScore)
			assert.Equal(t, 91.0, recs[0].ESGScore)
		})
	}
}

func TestNormalizeESG_Fallbacks(t *testing.T) {
	header := []string{"Company", "Sector", "ESG Score"}
	rows := [][]string{
		{"", "Renewable Energy", "91"}, // no company -> row index
		{"WindWorks", "", "84"},        // no sector -> Unknown
		{"AquaPure", "Water Management", "n/a"}, // non-numeric score -> unscored
	}

	recs := normalizeESG(header, rows)
	require.Len(t, recs, 3)

	assert.Equal(t, "0", recs[0].Company)
	assert.Equal(t, "Unknown", recs[1].Sector)
	assert.False(t, recs[2].HasScore)
	assert.Equal(t, 0.0, recs[2].ESGScore)
}

func TestNormalizeESG_NoRecognizedColumns(t *testing.T) {
	header := []string{"foo", "bar"}
	rows := [][]string{{"a", "b"}, {"c", "d"}}

	recs := normalizeESG(header, rows)
	require.Len(t, recs, 2)
	assert.Equal(t, "0", recs[0].Company)
	assert.Equal(t, "Unknown", recs[0].Sector)
	assert.False(t, recs[0].HasScore)
}

func TestDistinctSectors_SortedAndDeduplicated(t *testing.T) {
	esg := []models.ESGRecord{
		{Company: "a", Sector: "Water Management"},
		{Company: "b", Sector: "Clean Technology"},
		{Company: "c", Sector: "Water Management"},
		{Company: "d", Sector: "Unknown"},
	}

	sectors := distinctSectors(esg, nil)
	assert.Equal(t, []string{"Clean Technology", "Water Management"}, sectors)
}

func TestDistinctSectors_FallbackWhenAllUnknown(t *testing.T) {
	esg := []models.ESGRecord{{Company: "a", Sector: "Unknown"}}
	fallback := []string{"Renewable Energy", "Clean Technology"}

	sectors := distinctSectors(esg, fallback)
	assert.Equal(t, []string{"Clean Technology", "Renewable Energy"}, sectors)
}

func TestNormalizeTable_KeepsRawFields(t *testing.T) {
	header := []string{"Company", "2023", "2024"}
	rows := [][]string{{"SolarCo", "10.5", "12.1"}}

	recs := normalizeTable(header, rows)
	require.Len(t, recs, 1)
	assert.Equal(t, "SolarCo", recs[0]["Company"])
	assert.Equal(t, "10.5", recs[0]["2023"])
	assert.Equal(t, "12.1", recs[0]["2024"])
}
