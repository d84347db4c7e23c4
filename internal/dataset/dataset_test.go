package dataset

import (
	"errors"
	"math"
	"strings"
	"testing"
)

// TestDataset tests construction and read access of the immutable table
func TestDataset(t *testing.T) {
	t.Run("empty input is rejected", func(t *testing.T) {
		_, err := New(nil)
		if !errors.Is(err, ErrEmptyDataset) {
			t.Errorf("Expected ErrEmptyDataset, got %v", err)
		}
	})

	t.Run("records are copied on construction", func(t *testing.T) {
		in := []Record{{Species: "Adelie", BodyMassG: 3200}}
		ds, err := New(in)
		if err != nil {
			t.Fatalf("New failed: %v", err)
		}

		in[0].Species = "Gentoo"
		if got := ds.At(0).Species; got != "Adelie" {
			t.Errorf("Expected Adelie after caller mutation, got %s", got)
		}
	})

	t.Run("Records returns a copy", func(t *testing.T) {
		ds, _ := New([]Record{{Species: "Adelie"}})

		out := ds.Records()
		out[0].Species = "Gentoo"
		if got := ds.At(0).Species; got != "Adelie" {
			t.Errorf("Expected Adelie after mutating Records() result, got %s", got)
		}
	})

	t.Run("species in first-seen order", func(t *testing.T) {
		ds, _ := New([]Record{
			{Species: "Gentoo"},
			{Species: "Adelie"},
			{Species: "Gentoo"},
			{Species: "Chinstrap"},
		})

		got := strings.Join(ds.Species(), ",")
		if got != "Gentoo,Adelie,Chinstrap" {
			t.Errorf("Expected Gentoo,Adelie,Chinstrap, got %s", got)
		}
	})

	t.Run("mass range skips missing values", func(t *testing.T) {
		ds, _ := New([]Record{
			{Species: "Adelie", BodyMassG: 3700},
			{Species: "Adelie", BodyMassG: math.NaN()},
			{Species: "Gentoo", BodyMassG: 5400},
			{Species: "Chinstrap", BodyMassG: 3200},
		})

		min, max := ds.MassRange()
		if min != 3200 || max != 5400 {
			t.Errorf("Expected range [3200, 5400], got [%v, %v]", min, max)
		}
	})

	t.Run("mass range without any mass", func(t *testing.T) {
		ds, _ := New([]Record{{Species: "Adelie", BodyMassG: math.NaN()}})

		min, max := ds.MassRange()
		if !Missing(min) || !Missing(max) {
			t.Errorf("Expected NaN range, got [%v, %v]", min, max)
		}
	})
}

// TestParseCSV tests the CSV reader shared by the file, embedded and S3 sources
func TestParseCSV(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantLen int
		wantErr error
		check   func(t *testing.T, recs []Record)
	}{
		{
			name: "columns matched by name",
			input: "island,species,body_mass_g,bill_depth_mm,bill_length_mm\n" +
				"Biscoe,Gentoo,5400,15.0,48.0\n",
			wantLen: 1,
			check: func(t *testing.T, recs []Record) {
				r := recs[0]
				if r.Species != "Gentoo" || r.Island != "Biscoe" {
					t.Errorf("Unexpected categories: %+v", r)
				}
				if r.BodyMassG != 5400 || r.BillDepthMM != 15 || r.BillLengthMM != 48 {
					t.Errorf("Unexpected measures: %+v", r)
				}
				if !Missing(r.FlipperLengthMM) {
					t.Errorf("Expected absent flipper column to be missing, got %v", r.FlipperLengthMM)
				}
			},
		},
		{
			name: "NA and empty cells are missing",
			input: "species,island,bill_length_mm,bill_depth_mm,body_mass_g,sex,year\n" +
				"Adelie,Torgersen,NA,,NA,NA,2007\n",
			wantLen: 1,
			check: func(t *testing.T, recs []Record) {
				r := recs[0]
				if !Missing(r.BillLengthMM) || !Missing(r.BillDepthMM) || !Missing(r.BodyMassG) {
					t.Errorf("Expected missing measures, got %+v", r)
				}
				if r.Sex != "" {
					t.Errorf("Expected empty sex for NA, got %q", r.Sex)
				}
				if r.Year != 2007 {
					t.Errorf("Expected year 2007, got %d", r.Year)
				}
			},
		},
		{
			name: "infinite cells are missing",
			input: "species,island,bill_length_mm,bill_depth_mm,body_mass_g\n" +
				"Gentoo,Biscoe,Inf,-inf,5400\n",
			wantLen: 1,
			check: func(t *testing.T, recs []Record) {
				r := recs[0]
				if !Missing(r.BillLengthMM) || !Missing(r.BillDepthMM) {
					t.Errorf("Expected infinite bills to be missing, got %+v", r)
				}
				if r.BodyMassG != 5400 {
					t.Errorf("Expected mass 5400, got %v", r.BodyMassG)
				}
			},
		},
		{
			name:    "missing required column",
			input:   "species,island,bill_length_mm,bill_depth_mm\nAdelie,Dream,1,2\n",
			wantErr: ErrMissingColumn,
		},
		{
			name:    "header only",
			input:   "species,island,bill_length_mm,bill_depth_mm,body_mass_g\n",
			wantLen: 0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			recs, err := ParseCSV(strings.NewReader(tt.input))
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("Expected error %v, got %v", tt.wantErr, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("ParseCSV failed: %v", err)
			}
			if len(recs) != tt.wantLen {
				t.Fatalf("Expected %d records, got %d", tt.wantLen, len(recs))
			}
			if tt.check != nil {
				tt.check(t, recs)
			}
		})
	}

	t.Run("malformed number reports the row", func(t *testing.T) {
		input := "species,island,bill_length_mm,bill_depth_mm,body_mass_g\n" +
			"Adelie,Dream,39.1,18.7,3750\n" +
			"Adelie,Dream,heavy,18.7,3750\n"

		_, err := ParseCSV(strings.NewReader(input))
		if err == nil {
			t.Fatal("Expected error for non-numeric cell")
		}
		if !strings.Contains(err.Error(), "row 3") || !strings.Contains(err.Error(), ColBillLengthMM) {
			t.Errorf("Expected row and column in error, got %v", err)
		}
	})
}
