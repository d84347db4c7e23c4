package dataset

import (
	"errors"
	"math"
)

// ErrEmptyDataset is returned when a source yields no records
var ErrEmptyDataset = errors.New("dataset has no records")

// Record is one penguin observation.
// Numeric fields hold NaN when the source marks the value as missing.
type Record struct {
	Species         string  // Species category, e.g. "Adelie"
	Island          string  // Island category, e.g. "Torgersen"
	Sex             string  // "male", "female" or empty when unknown
	BillLengthMM    float64 // Bill length in millimetres
	BillDepthMM     float64 // Bill depth in millimetres
	FlipperLengthMM float64 // Flipper length in millimetres
	BodyMassG       float64 // Body mass in grams
	Year            int     // Observation year, 0 when unknown
}

// Missing reports whether a numeric field value is absent.
func Missing(v float64) bool {
	return math.IsNaN(v)
}

// Dataset is the immutable table loaded once at startup.
// All methods are safe for concurrent use because nothing mutates after New.
type Dataset struct {
	records []Record // Owned copy, never modified
	species []string // Distinct species in first-seen order
	minMass float64
	maxMass float64
}

// New builds a Dataset from records.
// The slice is copied so later changes by the caller cannot leak in.
func New(records []Record) (*Dataset, error) {
	if len(records) == 0 {
		return nil, ErrEmptyDataset
	}

	ds := &Dataset{
		records: make([]Record, len(records)),
		minMass: math.NaN(),
		maxMass: math.NaN(),
	}
	copy(ds.records, records)

	seen := make(map[string]bool)
	for _, r := range ds.records {
		if !seen[r.Species] {
			seen[r.Species] = true
			ds.species = append(ds.species, r.Species)
		}
		if Missing(r.BodyMassG) {
			continue
		}
		if Missing(ds.minMass) || r.BodyMassG < ds.minMass {
			ds.minMass = r.BodyMassG
		}
		if Missing(ds.maxMass) || r.BodyMassG > ds.maxMass {
			ds.maxMass = r.BodyMassG
		}
	}

	return ds, nil
}

// Len returns the number of records
func (d *Dataset) Len() int { return len(d.records) }

// At returns the record at index i by value.
// Out of range indices panic like a slice access would.
func (d *Dataset) At(i int) Record { return d.records[i] }

// Records returns a copy of all records in load order
func (d *Dataset) Records() []Record {
	out := make([]Record, len(d.records))
	copy(out, d.records)
	return out
}

// Species returns the distinct species in first-seen order
func (d *Dataset) Species() []string {
	return append([]string(nil), d.species...)
}

// MassRange returns the smallest and largest known body mass.
// Both are NaN when no record carries a mass.
func (d *Dataset) MassRange() (min, max float64) {
	return d.minMass, d.maxMass
}
