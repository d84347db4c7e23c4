package filter

import (
	"encoding/json"
	"fmt"
	"math"

	"github.com/dreamware/penguins/internal/dataset"
)

// NoData is how an undefined mean is rendered for display.
const NoData = "N/A"

// TableColumns are the display columns of the data table, in order.
var TableColumns = []string{
	dataset.ColSpecies,
	dataset.ColIsland,
	dataset.ColBillLengthMM,
	dataset.ColBillDepthMM,
	dataset.ColBodyMassG,
}

// Measure is a numeric display cell. NaN means missing and encodes as JSON null.
type Measure float64

// Valid reports whether the measure carries a value
func (m Measure) Valid() bool { return !math.IsNaN(float64(m)) }

func (m Measure) MarshalJSON() ([]byte, error) {
	if !m.Valid() {
		return []byte("null"), nil
	}
	return json.Marshal(float64(m))
}

func (m *Measure) UnmarshalJSON(b []byte) error {
	if string(b) == "null" {
		*m = Measure(math.NaN())
		return nil
	}
	var f float64
	if err := json.Unmarshal(b, &f); err != nil {
		return err
	}
	*m = Measure(f)
	return nil
}

// Mean is an arithmetic mean that may be undefined.
// Valid is false when no record contributed a value.
type Mean struct {
	Value float64
	Valid bool
}

// Format renders the mean with one decimal and a unit, or NoData.
func (m Mean) Format(unit string) string {
	if !m.Valid {
		return NoData
	}
	if unit == "" {
		return fmt.Sprintf("%.1f", m.Value)
	}
	return fmt.Sprintf("%.1f %s", m.Value, unit)
}

func (m Mean) String() string { return m.Format("") }

func (m Mean) MarshalJSON() ([]byte, error) {
	if !m.Valid {
		return []byte("null"), nil
	}
	return json.Marshal(m.Value)
}

func (m *Mean) UnmarshalJSON(b []byte) error {
	if string(b) == "null" {
		*m = Mean{}
		return nil
	}
	var f float64
	if err := json.Unmarshal(b, &f); err != nil {
		return err
	}
	*m = Mean{Value: f, Valid: true}
	return nil
}

// TableRow is a record projected onto TableColumns.
type TableRow struct {
	Species      string  `json:"species"`
	Island       string  `json:"island"`
	BillLengthMM Measure `json:"bill_length_mm"`
	BillDepthMM  Measure `json:"bill_depth_mm"`
	BodyMassG    Measure `json:"body_mass_g"`
}

// ScatterPoint is a record projected for the bill length vs depth plot.
// Points with a missing coordinate are kept so the plot and the table
// always describe the same records.
type ScatterPoint struct {
	BillLengthMM Measure `json:"bill_length_mm"`
	BillDepthMM  Measure `json:"bill_depth_mm"`
	Species      string  `json:"species"`
}

// MeanOf averages field over the view, skipping missing values.
func MeanOf(v *View, field func(dataset.Record) float64) Mean {
	var sum float64
	var n int
	for i := 0; i < v.Len(); i++ {
		x := field(v.At(i))
		if dataset.Missing(x) {
			continue
		}
		sum += x
		n++
	}
	if n == 0 {
		return Mean{}
	}
	return Mean{Value: sum / float64(n), Valid: true}
}

// RowsOf projects the view onto the table columns
func RowsOf(v *View) []TableRow {
	rows := make([]TableRow, v.Len())
	for i := range rows {
		r := v.At(i)
		rows[i] = TableRow{
			Species:      r.Species,
			Island:       r.Island,
			BillLengthMM: Measure(r.BillLengthMM),
			BillDepthMM:  Measure(r.BillDepthMM),
			BodyMassG:    Measure(r.BodyMassG),
		}
	}
	return rows
}

// PointsOf projects the view for plotting
func PointsOf(v *View) []ScatterPoint {
	points := make([]ScatterPoint, v.Len())
	for i := range points {
		r := v.At(i)
		points[i] = ScatterPoint{
			BillLengthMM: Measure(r.BillLengthMM),
			BillDepthMM:  Measure(r.BillDepthMM),
			Species:      r.Species,
		}
	}
	return points
}

func billLength(r dataset.Record) float64 { return r.BillLengthMM }
func billDepth(r dataset.Record) float64  { return r.BillDepthMM }
