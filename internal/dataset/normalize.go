// internal/dataset/normalize.go
package dataset

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"green-genie/internal/models"
)

// Column candidates, tried in order. Source CSVs are inconsistent about
// naming, so each logical column is picked from the first header that matches.
var (
	companyColumns = []string{"Company", "Company Name", "Stock", "Ticker", "Symbol", "Name"}
	sectorColumns  = []string{"Sector", "sector", "Industry", "industry"}
	scoreColumns   = []string{"ESG Score", "esg_score", "esg", "score"}
)

const unknownSector = "Unknown"

// parseCSV decodes CSV bytes into a header row and data rows. A UTF-8 BOM
// on the first header cell is stripped.
func parseCSV(data []byte) ([]string, [][]string, error) {
	r := csv.NewReader(bytes.NewReader(data))
	r.FieldsPerRecord = -1
	r.TrimLeadingSpace = true

	records, err := r.ReadAll()
	if err != nil {
		return nil, nil, err
	}
	if len(records) == 0 {
		return nil, nil, fmt.Errorf("no rows")
	}

	header := records[0]
	if len(header) > 0 {
		header[0] = strings.TrimPrefix(header[0], "\uFEFF")
	}
	for i := range header {
		header[i] = strings.TrimSpace(header[i])
	}

	return header, records[1:], nil
}

// pickColumn returns the index of the first candidate present in the header, or -1.
func pickColumn(header []string, candidates []string) int {
	for _, c := range candidates {
		for i, h := range header {
			if h == c {
				return i
			}
		}
	}
	return -1
}

func cell(row []string, idx int) string {
	if idx < 0 || idx >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[idx])
}

// normalizeESG maps raw CSV rows into ESGRecords. Rows without a company
// identifier fall back to their row index; missing sectors become "Unknown";
// non-numeric scores are kept but flagged unscored so ranking can skip them.
func normalizeESG(header []string, rows [][]string) []models.ESGRecord {
	companyIdx := pickColumn(header, companyColumns)
	sectorIdx := pickColumn(header, sectorColumns)
	scoreIdx := pickColumn(header, scoreColumns)

	out := make([]models.ESGRecord, 0, len(rows))
	for i, row := range rows {
		rec := models.ESGRecord{
			Company: cell(row, companyIdx),
			Sector:  cell(row, sectorIdx),
		}
		if rec.Company == "" {
			rec.Company = strconv.Itoa(i)
		}
		if rec.Sector == "" {
			rec.Sector = unknownSector
		}
		if raw := cell(row, scoreIdx); raw != "" {
			if score, err := strconv.ParseFloat(raw, 64); err == nil {
				rec.ESGScore = score
				rec.HasScore = true
			}
		}
		out = append(out, rec)
	}
	return out
}

// normalizeTable maps raw CSV rows into company-keyed records, keeping every
// other column as an uninterpreted string field.
func normalizeTable(header []string, rows [][]string) []map[string]string {
	companyIdx := pickColumn(header, companyColumns)

	out := make([]map[string]string, 0, len(rows))
	for i, row := range rows {
		rec := make(map[string]string, len(header))
		for j, h := range header {
			if j == companyIdx || h == "" {
				continue
			}
			rec[h] = cell(row, j)
		}
		company := cell(row, companyIdx)
		if company == "" {
			company = strconv.Itoa(i)
		}
		rec["Company"] = company
		out = append(out, rec)
	}
	return out
}

// distinctSectors returns the sorted set of sectors seen in the ESG table.
// When every row carries the fallback sector the static configured list is
// used instead, mirroring the sector options the UI offered historically.
func distinctSectors(esg []models.ESGRecord, fallback []string) []string {
	set := make(map[string]struct{})
	for _, rec := range esg {
		if rec.Sector != "" && rec.Sector != unknownSector {
			set[rec.Sector] = struct{}{}
		}
	}

	if len(set) == 0 {
		sectors := append([]string(nil), fallback...)
		sort.Strings(sectors)
		return sectors
	}

	sectors := make([]string, 0, len(set))
	for s := range set {
		sectors = append(sectors, s)
	}
	sort.Strings(sectors)
	return sectors
}
