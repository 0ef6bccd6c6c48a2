// internal/models/query.go
package models

import "strings"

// RiskLevel is the investor's declared risk tolerance.
type RiskLevel string

const (
	RiskLow    RiskLevel = "Low"
	RiskMedium RiskLevel = "Medium"
	RiskHigh   RiskLevel = "High"
)

// RiskLevels is the order shown in the UI (left to right).
var RiskLevels = []RiskLevel{RiskLow, RiskMedium, RiskHigh}

// ParseRiskLevel normalizes a risk string; ok is false for unrecognized values.
func ParseRiskLevel(s string) (RiskLevel, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "low":
		return RiskLow, true
	case "medium":
		return RiskMedium, true
	case "high":
		return RiskHigh, true
	default:
		return "", false
	}
}

// UserQuery is one user turn: free-text goals plus the selected sector tags
// and risk tolerance. Both fields may be blank individually; a query with no
// text and no sectors is rejected before any external call.
type UserQuery struct {
	FreeText string    `json:"text"`
	Sectors  []string  `json:"sectors"`
	Risk     RiskLevel `json:"risk"`
}

// IsEmpty reports whether the query carries no usable input.
func (q UserQuery) IsEmpty() bool {
	if strings.TrimSpace(q.FreeText) != "" {
		return false
	}
	for _, s := range q.Sectors {
		if strings.TrimSpace(s) != "" {
			return false
		}
	}
	return true
}
