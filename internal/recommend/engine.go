// internal/recommend/engine.go
package recommend

import (
	"math/rand"
	"sort"
	"strings"

	"green-genie/internal/models"
)

// Engine ranks ESG records into recommendations. All paths are
// deterministic: the high-risk sample uses a fixed seed so the same inputs
// always produce the same picks.
type Engine struct {
	topN int
	seed int64
}

func NewEngine(topN int, seed int64) *Engine {
	if topN <= 0 {
		topN = 5
	}
	return &Engine{topN: topN, seed: seed}
}

// Recommend filters the ESG table by the selected sectors and applies the
// risk rule. An empty sector set, or one containing "All", keeps every row.
// An empty result is a valid outcome, not an error.
func (e *Engine) Recommend(sectors []string, risk models.RiskLevel, esg []models.ESGRecord) []models.Recommendation {
	rows := filterSectors(esg, sectors)
	if len(rows) == 0 {
		return nil
	}

	switch risk {
	case models.RiskLow:
		return toRecommendations(headByScore(rows, e.topN))
	case models.RiskMedium:
		half := len(rows) / 2
		if half < 1 {
			half = 1
		}
		return toRecommendations(headByScore(rows, half))
	default:
		// High risk and anything unrecognized: deterministic sample.
		return toRecommendations(sample(rows, e.topN, e.seed))
	}
}

// filterSectors keeps rows whose sector matches any selected name,
// ignoring case so dataset and request casing need not agree.
func filterSectors(esg []models.ESGRecord, sectors []string) []models.ESGRecord {
	want := make(map[string]struct{})
	for _, s := range sectors {
		s = strings.TrimSpace(s)
		if s == "" {
			continue
		}
		if strings.EqualFold(s, "All") {
			return esg
		}
		want[strings.ToLower(s)] = struct{}{}
	}
	if len(want) == 0 {
		return esg
	}

	var out []models.ESGRecord
	for _, rec := range esg {
		if _, ok := want[strings.ToLower(rec.Sector)]; ok {
			out = append(out, rec)
		}
	}
	return out
}

// headByScore returns the first n rows of the score-descending ordering.
// Unscored rows sort after every scored row, keeping their input order.
func headByScore(rows []models.ESGRecord, n int) []models.ESGRecord {
	sorted := append([]models.ESGRecord(nil), rows...)
	sort.SliceStable(sorted, func(i, j int) bool {
		a, b := sorted[i], sorted[j]
		if a.HasScore != b.HasScore {
			return a.HasScore
		}
		return a.ESGScore > b.ESGScore
	})

	if n > len(sorted) {
		n = len(sorted)
	}
	return sorted[:n]
}

// sample draws min(n, len(rows)) rows without replacement using a seeded PRNG.
func sample(rows []models.ESGRecord, n int, seed int64) []models.ESGRecord {
	if n > len(rows) {
		n = len(rows)
	}

	rng := rand.New(rand.NewSource(seed))
	perm := rng.Perm(len(rows))

	out := make([]models.ESGRecord, 0, n)
	for _, idx := range perm[:n] {
		out = append(out, rows[idx])
	}
	return out
}

func toRecommendations(rows []models.ESGRecord) []models.Recommendation {
	if len(rows) == 0 {
		return nil
	}
	out := make([]models.Recommendation, 0, len(rows))
	for _, rec := range rows {
		out = append(out, models.Recommendation{
			Company:  rec.Company,
			Sector:   rec.Sector,
			ESGScore: rec.ESGScore,
		})
	}
	return out
}
