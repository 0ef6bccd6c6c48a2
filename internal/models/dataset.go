// internal/models/dataset.go
package models

// DatasetName identifies one of the three tabular inputs.
type DatasetName string

const (
	DatasetHistoricalPrices DatasetName = "historical_prices"
	DatasetBalanceSheets    DatasetName = "balance_sheets"
	DatasetESGRankings      DatasetName = "esg_rankings"
)

// ESGRecord is one normalized row of the ESG rankings table.
// Sector defaults to "Unknown" when the source CSV has no sector column.
type ESGRecord struct {
	Company  string  `json:"company"`
	Sector   string  `json:"sector"`
	ESGScore float64 `json:"esgScore"`
	HasScore bool    `json:"-"`
}

// PriceRecord is one row of the historical prices table. Columns beyond the
// company identifier are kept as raw strings; nothing downstream interprets them.
type PriceRecord struct {
	Company string            `json:"company"`
	Fields  map[string]string `json:"fields"`
}

// BalanceRecord is one row of the balance sheets table.
type BalanceRecord struct {
	Company string            `json:"company"`
	Fields  map[string]string `json:"fields"`
}

// Snapshot is an immutable view of all loaded datasets. A refresh builds a
// new Snapshot and swaps it in whole.
type Snapshot struct {
	Prices  []PriceRecord   `json:"-"`
	Balance []BalanceRecord `json:"-"`
	ESG     []ESGRecord     `json:"esg"`
	Sectors []string        `json:"sectors"` // distinct, sorted
}
