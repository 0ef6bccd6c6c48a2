// internal/prompt/composer.go
package prompt

import (
	"fmt"
	"strings"

	stderrors "green-genie/internal/common/errors"
	"green-genie/internal/models"
)

const instruction = "You are an investment assistant. Explain the recommendations clearly in non-technical language."

const guidance = "Keep it brief (120-180 words), avoid guarantees, and emphasize diversification and due diligence."

// Compose builds the explanation prompt from a user query and the ranked
// picks. The result is deterministic: the same query and picks always yield
// the same string. The user's free text and every selected sector appear
// verbatim. An empty query is rejected here so no external call is issued
// for it anywhere downstream.
func Compose(q models.UserQuery, recs []models.Recommendation) (string, error) {
	if q.IsEmpty() {
		return "", stderrors.NewEmptyQueryError()
	}

	notes := strings.TrimSpace(q.FreeText)
	if notes == "" {
		notes = "N/A"
	}

	sectors := joinSectors(q.Sectors)
	if sectors == "" {
		sectors = "All"
	}

	companies := "N/A"
	if len(recs) > 0 {
		names := make([]string, 0, len(recs))
		for _, r := range recs {
			names = append(names, r.Company)
		}
		companies = strings.Join(names, ", ")
	}

	esgHint := ""
	if len(recs) > 0 && (q.Risk == models.RiskLow || q.Risk == models.RiskMedium) {
		esgHint = " (prioritizing higher ESG scores)"
	}

	var parts []string
	parts = append(parts, instruction)
	parts = append(parts, "")
	parts = append(parts, fmt.Sprintf("Investor notes: %s", notes))
	parts = append(parts, fmt.Sprintf("Sector: %s", sectors))
	parts = append(parts, fmt.Sprintf("Risk tolerance: %s%s", q.Risk, esgHint))
	parts = append(parts, fmt.Sprintf("Recommended Companies: %s", companies))
	parts = append(parts, "")
	parts = append(parts, guidance)

	return strings.Join(parts, "\n"), nil
}

// joinSectors joins non-blank sector tags in their given order.
func joinSectors(sectors []string) string {
	var kept []string
	for _, s := range sectors {
		s = strings.TrimSpace(s)
		if s != "" {
			kept = append(kept, s)
		}
	}
	return strings.Join(kept, ", ")
}
