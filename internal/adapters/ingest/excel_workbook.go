package ingest

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"

	"collection-route-service/internal/domain"
)

// Sheet and column names of the planner workbook format.
const (
	depotsSheet = "Depots"
	timesSheet  = "Driving Times"

	colIncluded   = "included"
	colDepot      = "depot designation"
	colDirectCost = "direct shipment cost"
	colDepot1     = "depot 1 designation"
	colDepot2     = "depot 2 designation"
	colMinutes    = "driving time (minutes)"
	colMiles      = "distance (miles)"
)

// ReadWorkbook loads a collection scenario from the planner's Excel
// workbook: a "Depots" sheet (Included, Depot Designation, Direct Shipment
// Cost) and a "Driving Times" sheet (Depot 1/2 Designation, Driving Time
// (minutes), optional Distance (miles)).
//
// The first data row of the Depots sheet is the hub. Driving times are
// treated as undirected: a pair whose reverse direction is absent is
// mirrored with the same time and distance.
func ReadWorkbook(path string) ([]domain.Location, []domain.Edge, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, nil, fmt.Errorf("read workbook: open %q: %w", path, err)
	}
	defer f.Close()

	locations, err := readDepots(f)
	if err != nil {
		return nil, nil, err
	}
	edges, err := readDriveTimes(f)
	if err != nil {
		return nil, nil, err
	}

	return locations, edges, nil
}

// columnIndex maps normalized header names to their column positions.
func columnIndex(header []string) map[string]int {
	idx := make(map[string]int, len(header))
	for i, name := range header {
		idx[strings.ToLower(strings.TrimSpace(name))] = i
	}
	return idx
}

func cell(row []string, i int) string {
	if i < 0 || i >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[i])
}

func parseIncluded(s string) bool {
	switch strings.ToLower(s) {
	case "true", "yes", "y", "1":
		return true
	default:
		return false
	}
}

func readDepots(f *excelize.File) ([]domain.Location, error) {
	rows, err := f.GetRows(depotsSheet)
	if err != nil {
		return nil, fmt.Errorf("read workbook: sheet %q: %w", depotsSheet, err)
	}
	if len(rows) < 2 {
		return nil, fmt.Errorf("read workbook: sheet %q has no data rows", depotsSheet)
	}

	idx := columnIndex(rows[0])
	for _, col := range []string{colIncluded, colDepot, colDirectCost} {
		if _, ok := idx[col]; !ok {
			return nil, fmt.Errorf("read workbook: sheet %q is missing column %q", depotsSheet, col)
		}
	}

	locations := make([]domain.Location, 0, len(rows)-1)
	for i, row := range rows[1:] {
		id := cell(row, idx[colDepot])
		if id == "" {
			return nil, fmt.Errorf("read workbook: sheet %q row %d: empty depot designation", depotsSheet, i+2)
		}

		loc := domain.Location{ID: id, Included: parseIncluded(cell(row, idx[colIncluded]))}
		if i == 0 {
			// The hub is the first listed depot; it is always included and
			// never ships direct.
			loc.Role = domain.RoleHub
			loc.Included = true
		} else {
			costStr := cell(row, idx[colDirectCost])
			cost, err := strconv.ParseFloat(costStr, 64)
			if err != nil {
				return nil, fmt.Errorf("read workbook: sheet %q row %d: direct shipment cost %q: %w", depotsSheet, i+2, costStr, err)
			}
			loc.DirectCost = cost
		}

		locations = append(locations, loc)
	}

	return locations, nil
}

func readDriveTimes(f *excelize.File) ([]domain.Edge, error) {
	rows, err := f.GetRows(timesSheet)
	if err != nil {
		return nil, fmt.Errorf("read workbook: sheet %q: %w", timesSheet, err)
	}
	if len(rows) < 2 {
		return nil, fmt.Errorf("read workbook: sheet %q has no data rows", timesSheet)
	}

	idx := columnIndex(rows[0])
	for _, col := range []string{colDepot1, colDepot2, colMinutes} {
		if _, ok := idx[col]; !ok {
			return nil, fmt.Errorf("read workbook: sheet %q is missing column %q", timesSheet, col)
		}
	}
	milesCol, hasMiles := idx[colMiles]

	edges := make([]domain.Edge, 0, 2*(len(rows)-1))
	have := make(map[string]struct{}, 2*(len(rows)-1))
	for i, row := range rows[1:] {
		from := cell(row, idx[colDepot1])
		to := cell(row, idx[colDepot2])
		if from == "" || to == "" {
			return nil, fmt.Errorf("read workbook: sheet %q row %d: empty designation", timesSheet, i+2)
		}

		minStr := cell(row, idx[colMinutes])
		minutes, err := strconv.ParseFloat(minStr, 64)
		if err != nil {
			return nil, fmt.Errorf("read workbook: sheet %q row %d: driving time %q: %w", timesSheet, i+2, minStr, err)
		}

		e := domain.Edge{From: from, To: to, Minutes: minutes}
		if hasMiles {
			if milesStr := cell(row, milesCol); milesStr != "" {
				miles, err := strconv.ParseFloat(milesStr, 64)
				if err != nil {
					return nil, fmt.Errorf("read workbook: sheet %q row %d: distance %q: %w", timesSheet, i+2, milesStr, err)
				}
				e.Miles = &miles
			}
		}

		edges = append(edges, e)
		have[from+"|"+to] = struct{}{}
	}

	// Mirror pairs the sheet only lists one way.
	for _, e := range edges {
		if _, ok := have[e.To+"|"+e.From]; ok {
			continue
		}
		have[e.To+"|"+e.From] = struct{}{}
		edges = append(edges, domain.Edge{From: e.To, To: e.From, Minutes: e.Minutes, Miles: e.Miles})
	}

	return edges, nil
}
