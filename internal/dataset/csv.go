package dataset

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"
)

// ErrMissingColumn is returned when a required column is absent from the header
var ErrMissingColumn = errors.New("required column missing")

// Column names as they appear in the penguins table.
const (
	ColSpecies         = "species"
	ColIsland          = "island"
	ColBillLengthMM    = "bill_length_mm"
	ColBillDepthMM     = "bill_depth_mm"
	ColFlipperLengthMM = "flipper_length_mm"
	ColBodyMassG       = "body_mass_g"
	ColSex             = "sex"
	ColYear            = "year"
)

var requiredColumns = []string{ColSpecies, ColIsland, ColBillLengthMM, ColBillDepthMM, ColBodyMassG}

// ParseCSV reads penguin records from CSV with a header row.
// Columns are matched by name so their order does not matter and unknown
// columns are skipped. "NA" and empty cells become missing values.
func ParseCSV(r io.Reader) ([]Record, error) {
	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true

	headers, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("read csv header: %w", err)
	}

	index := make(map[string]int, len(headers))
	for i, h := range headers {
		index[strings.ToLower(strings.TrimSpace(h))] = i
	}
	for _, col := range requiredColumns {
		if _, ok := index[col]; !ok {
			return nil, fmt.Errorf("%w: %s", ErrMissingColumn, col)
		}
	}

	var records []Record
	line := 1
	for {
		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		line++
		if err != nil {
			return nil, fmt.Errorf("read csv row %d: %w", line, err)
		}

		cell := func(col string) string {
			i, ok := index[col]
			if !ok || i >= len(row) {
				return ""
			}
			return strings.TrimSpace(row[i])
		}

		rec, err := recordFromCells(cell)
		if err != nil {
			return nil, fmt.Errorf("csv row %d: %w", line, err)
		}
		records = append(records, rec)
	}

	return records, nil
}

// recordFromCells builds a Record from a column lookup shared by the CSV
// and SQL sources, which both deliver cells as text.
func recordFromCells(cell func(col string) string) (Record, error) {
	rec := Record{
		Species: cell(ColSpecies),
		Island:  cell(ColIsland),
		Sex:     missingText(cell(ColSex)),
	}

	floats := []struct {
		col string
		dst *float64
	}{
		{ColBillLengthMM, &rec.BillLengthMM},
		{ColBillDepthMM, &rec.BillDepthMM},
		{ColFlipperLengthMM, &rec.FlipperLengthMM},
		{ColBodyMassG, &rec.BodyMassG},
	}
	for _, f := range floats {
		v, err := parseMeasure(cell(f.col))
		if err != nil {
			return Record{}, fmt.Errorf("column %s: %w", f.col, err)
		}
		*f.dst = v
	}

	if y := missingText(cell(ColYear)); y != "" {
		year, err := strconv.Atoi(y)
		if err != nil {
			return Record{}, fmt.Errorf("column %s: %w", ColYear, err)
		}
		rec.Year = year
	}

	return rec, nil
}

func parseMeasure(s string) (float64, error) {
	if missingText(s) == "" {
		return math.NaN(), nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, err
	}
	// ParseFloat accepts "Inf" and "NaN"; neither is a measurement
	if math.IsInf(v, 0) {
		return math.NaN(), nil
	}
	return v, nil
}

// missingText normalizes the R-style "NA" marker to empty.
func missingText(s string) string {
	if strings.EqualFold(s, "NA") {
		return ""
	}
	return s
}
