// internal/prompt/composer_test.go
package prompt

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	stderrors "green-genie/internal/common/errors"
	"green-genie/internal/models"
)

func TestCompose_ContainsFreeTextAndSectorsVerbatim(t *testing.T) {
	query := models.UserQuery{
		FreeText: "moderate risk",
		Sectors:  []string{"renewable energy"},
		Risk:     models.RiskMedium,
	}
	recs := []models.Recommendation{
		{Company: "SolarCo", Sector: "renewable energy", ESGScore: 88},
		{Company: "WindWorks", Sector: "renewable energy", ESGScore: 81},
	}

	out, err := Compose(query, recs)
	require.NoError(t, err)

	assert.Contains(t, out, "moderate risk")
	assert.Contains(t, out, "renewable energy")
	assert.Contains(t, out, "SolarCo")
	assert.Contains(t, out, "WindWorks")
}

func TestCompose_EverySectorAppearsVerbatim(t *testing.T) {
	query := models.UserQuery{
		FreeText: "long term growth",
		Sectors:  []string{"Clean Technology", "Water Management", "Sustainable Agriculture"},
		Risk:     models.RiskLow,
	}

	out, err := Compose(query, nil)
	require.NoError(t, err)

	for _, sector := range query.Sectors {
		assert.Contains(t, out, sector)
	}
}

func TestCompose_IsDeterministic(t *testing.T) {
	query := models.UserQuery{
		FreeText: "dividends with a green tilt",
		Sectors:  []string{"Renewable Energy"},
		Risk:     models.RiskHigh,
	}
	recs := []models.Recommendation{
		{Company: "HydroOne", Sector: "Renewable Energy", ESGScore: 72},
	}

	first, err := Compose(query, recs)
	require.NoError(t, err)
	second, err := Compose(query, recs)
	require.NoError(t, err)

	assert.Equal(t, first, second)
}

func TestCompose_EmptyQueryRejected(t *testing.T) {
	cases := []struct {
		name  string
		query models.UserQuery
	}{
		{"no input at all", models.UserQuery{Risk: models.RiskMedium}},
		{"whitespace text", models.UserQuery{FreeText: "   ", Risk: models.RiskMedium}},
		{"blank sectors", models.UserQuery{Sectors: []string{"", "  "}, Risk: models.RiskLow}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			out, err := Compose(tc.query, nil)
			require.Error(t, err)
			assert.Empty(t, out)

			stdErr, ok := err.(*stderrors.StandardError)
			require.True(t, ok)
			assert.Equal(t, stderrors.ErrCodeEmptyQuery, stdErr.Code)
			assert.NotEmpty(t, stdErr.Message)
		})
	}
}

func TestCompose_SectorsOnlyIsValid(t *testing.T) {
	query := models.UserQuery{
		Sectors: []string{"Green Transportation"},
		Risk:    models.RiskMedium,
	}

	out, err := Compose(query, nil)
	require.NoError(t, err)

	assert.Contains(t, out, "Green Transportation")
	assert.Contains(t, out, "Investor notes: N/A")
}

func TestCompose_ESGHintByRisk(t *testing.T) {
	recs := []models.Recommendation{{Company: "SolarCo", Sector: "Renewable Energy"}}

	cases := []struct {
		risk     models.RiskLevel
		wantHint bool
	}{
		{models.RiskLow, true},
		{models.RiskMedium, true},
		{models.RiskHigh, false},
	}

	for _, tc := range cases {
		t.Run(string(tc.risk), func(t *testing.T) {
			out, err := Compose(models.UserQuery{FreeText: "x", Risk: tc.risk}, recs)
			require.NoError(t, err)
			assert.Equal(t, tc.wantHint, strings.Contains(out, "prioritizing higher ESG scores"))
		})
	}
}

func TestCompose_TemplateFraming(t *testing.T) {
	out, err := Compose(models.UserQuery{FreeText: "income", Risk: models.RiskMedium}, nil)
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(out, "You are an investment assistant."))
	assert.Contains(t, out, "Recommended Companies: N/A")
	assert.Contains(t, out, "Sector: All")
	assert.Contains(t, out, "avoid guarantees")
}
