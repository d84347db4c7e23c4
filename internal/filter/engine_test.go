package filter

import (
	"math"
	"sync"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dreamware/penguins/internal/dataset"
)

// threePenguins is the worked example: Adelie 3200g, Gentoo 5400g, Chinstrap 3700g.
func threePenguins(t *testing.T) *dataset.Dataset {
	t.Helper()
	ds, err := dataset.New([]dataset.Record{
		{Species: "Adelie", Island: "Torgersen", BillLengthMM: 39, BillDepthMM: 18, BodyMassG: 3200},
		{Species: "Gentoo", Island: "Biscoe", BillLengthMM: 48, BillDepthMM: 15, BodyMassG: 5400},
		{Species: "Chinstrap", Island: "Dream", BillLengthMM: 47, BillDepthMM: 19, BodyMassG: 3700},
	})
	require.NoError(t, err)
	return ds
}

func TestEngineWorkedExamples(t *testing.T) {
	ds := threePenguins(t)

	t.Run("two species under 4000g", func(t *testing.T) {
		e := NewEngine(ds, NewParams([]string{"Adelie", "Chinstrap"}, 4000))

		assert.Equal(t, 2, e.Count())
		assert.Equal(t, []string{"Adelie", "Chinstrap"}, speciesOf(e.View()))
		assert.Equal(t, Mean{Value: 43, Valid: true}, e.MeanBillLength())
		assert.Equal(t, Mean{Value: 18.5, Valid: true}, e.MeanBillDepth())
		assert.Equal(t, "43.0 mm", e.MeanBillLength().Format("mm"))
	})

	t.Run("empty species selection", func(t *testing.T) {
		e := NewEngine(ds, NewParams(nil, 1e9))

		assert.Equal(t, 0, e.Count())
		assert.False(t, e.MeanBillLength().Valid)
		assert.False(t, e.MeanBillDepth().Valid)
		assert.Equal(t, NoData, e.MeanBillDepth().Format("mm"))
		assert.Empty(t, e.TableRows())
		assert.NotNil(t, e.TableRows(), "empty rows should still be a slice")
		assert.Empty(t, e.ScatterData())
	})

	t.Run("mass below every record", func(t *testing.T) {
		e := NewEngine(ds, NewParams([]string{"Adelie", "Gentoo", "Chinstrap"}, 2000))

		assert.Equal(t, 0, e.Count())
		assert.Equal(t, 0, e.View().Len())
	})

	t.Run("threshold is strict", func(t *testing.T) {
		e := NewEngine(ds, NewParams([]string{"Adelie"}, 3200))
		assert.Equal(t, 0, e.Count())

		e.SetMaxMass(3200.5)
		assert.Equal(t, 1, e.Count())
	})

	t.Run("negative mass is legal", func(t *testing.T) {
		e := NewEngine(ds, NewParams([]string{"Adelie"}, -1))
		assert.Equal(t, 0, e.Count())
	})
}

func TestEngineMemoization(t *testing.T) {
	ds := threePenguins(t)
	e := NewEngine(ds, NewParams([]string{"Adelie", "Chinstrap"}, 4000))

	first := e.View()
	second := e.View()
	require.Same(t, first, second, "repeated reads must return the cached view")

	stats := e.Stats()
	assert.Equal(t, uint64(1), stats.ViewComputes)
	assert.Equal(t, uint64(1), stats.ViewHits)

	e.Count()
	e.Count()
	e.MeanBillLength()
	e.MeanBillLength()

	stats = e.Stats()
	assert.Equal(t, uint64(1), stats.ViewComputes, "derived reads reuse the cached view")
	assert.Equal(t, uint64(2), stats.DerivedComputes)
	assert.Equal(t, uint64(2), stats.DerivedHits)

	e.SetMaxMass(2000)
	assert.NotSame(t, first, e.View())

	stats = e.Stats()
	assert.Equal(t, uint64(2), stats.ViewComputes)
	assert.Equal(t, uint64(1), stats.Invalidations)
	assert.Equal(t, 0, e.Count())
}

func TestEngineInvalidatesOnEveryUpdate(t *testing.T) {
	e := NewEngine(threePenguins(t), NewParams([]string{"Adelie"}, 4000))
	before := e.View()

	e.SetSpecies([]string{"Adelie"})

	assert.NotSame(t, before, e.View(), "an update with an equal value still invalidates")
	assert.Equal(t, uint64(2), e.Stats().ViewComputes)
}

func TestEngineDerivedCachesFollowView(t *testing.T) {
	e := NewEngine(threePenguins(t), NewParams([]string{"Gentoo"}, 6000))

	var kinds []string
	e.onRecompute = func(kind string) { kinds = append(kinds, kind) }

	e.TableRows()
	e.TableRows()
	e.ScatterData()
	e.SetSpecies([]string{"Adelie"})
	e.ScatterData()

	want := []string{KindView, KindTableRows, KindScatter, KindView, KindScatter}
	if diff := cmp.Diff(want, kinds); diff != "" {
		t.Errorf("recompute sequence mismatch (-want +got):\n%s", diff)
	}
}

func TestEngineProjections(t *testing.T) {
	e := NewEngine(threePenguins(t), NewParams([]string{"Gentoo", "Adelie"}, 6000))

	wantRows := []TableRow{
		{Species: "Adelie", Island: "Torgersen", BillLengthMM: 39, BillDepthMM: 18, BodyMassG: 3200},
		{Species: "Gentoo", Island: "Biscoe", BillLengthMM: 48, BillDepthMM: 15, BodyMassG: 5400},
	}
	if diff := cmp.Diff(wantRows, e.TableRows()); diff != "" {
		t.Errorf("table rows mismatch (-want +got):\n%s", diff)
	}

	wantPoints := []ScatterPoint{
		{BillLengthMM: 39, BillDepthMM: 18, Species: "Adelie"},
		{BillLengthMM: 48, BillDepthMM: 15, Species: "Gentoo"},
	}
	if diff := cmp.Diff(wantPoints, e.ScatterData()); diff != "" {
		t.Errorf("scatter mismatch (-want +got):\n%s", diff)
	}

	rows := e.TableRows()
	rows[0].Species = "Emperor"
	assert.Equal(t, "Adelie", e.TableRows()[0].Species, "callers must not be able to mutate the cache")
}

func TestEngineMissingMeasurements(t *testing.T) {
	ds, err := dataset.New([]dataset.Record{
		{Species: "Adelie", BillLengthMM: 40, BillDepthMM: math.NaN(), BodyMassG: 3000},
		{Species: "Adelie", BillLengthMM: math.NaN(), BillDepthMM: math.NaN(), BodyMassG: 3100},
		{Species: "Adelie", BillLengthMM: 40, BillDepthMM: 18, BodyMassG: math.NaN()},
	})
	require.NoError(t, err)

	e := NewEngine(ds, NewParams([]string{"Adelie"}, 1e9))

	assert.Equal(t, 2, e.Count(), "record without mass never passes the threshold")
	assert.Equal(t, Mean{Value: 40, Valid: true}, e.MeanBillLength())
	assert.False(t, e.MeanBillDepth().Valid, "no depth in the view means undefined")
	assert.Len(t, e.ScatterData(), 2, "points with missing coordinates are kept")
	assert.False(t, e.ScatterData()[1].BillLengthMM.Valid())
}

func TestEngineParamsAreCopies(t *testing.T) {
	e := NewEngine(threePenguins(t), NewParams([]string{"Adelie", "Gentoo"}, 6000))

	p := e.Params()
	p.Species[0] = "Emperor"

	assert.Equal(t, []string{"Adelie", "Gentoo"}, e.Params().Species)
}

func TestEngineSetReplacesBoth(t *testing.T) {
	e := NewEngine(threePenguins(t), NewParams(nil, 0))

	e.Set(NewParams([]string{"Gentoo", "Chinstrap"}, 4000))

	assert.Equal(t, 1, e.Count())
	assert.Equal(t, uint64(1), e.Stats().Invalidations)
}

func TestEngineConcurrentReads(t *testing.T) {
	e := NewEngine(threePenguins(t), NewParams([]string{"Adelie", "Chinstrap"}, 4000))

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				_ = e.Count()
				_ = e.TableRows()
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, uint64(1), e.Stats().ViewComputes)
	assert.Equal(t, 2, e.Count())
}

func TestEngineUpdatesReturnParams(t *testing.T) {
	e := NewEngine(threePenguins(t), NewParams([]string{"Adelie"}, 6000))

	p := e.SetSpecies([]string{"Gentoo", "Adelie", "Gentoo"})
	assert.Equal(t, []string{"Adelie", "Gentoo"}, p.Species)
	assert.Equal(t, 6000.0, p.MaxMass)

	p = e.SetMaxMass(4000)
	assert.Equal(t, []string{"Adelie", "Gentoo"}, p.Species)
	assert.Equal(t, 4000.0, p.MaxMass)

	// The returned value is a copy
	p.Species[0] = "Chinstrap"
	assert.Equal(t, []string{"Adelie", "Gentoo"}, e.Params().Species)
}

func TestEngineSnapshotUnderConcurrentUpdates(t *testing.T) {
	ds := threePenguins(t)
	e := NewEngine(ds, NewParams([]string{"Adelie"}, 6000))

	stop := make(chan struct{})
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		selections := [][]string{{"Adelie"}, {"Adelie", "Chinstrap"}}
		for i := 0; ; i++ {
			select {
			case <-stop:
				return
			default:
				e.SetSpecies(selections[i%2])
			}
		}
	}()

	for i := 0; i < 20000; i++ {
		snap := e.Snapshot()
		v := Apply(ds, snap.Params)
		if snap.Count != v.Len() {
			t.Fatalf("count %d does not match %s", snap.Count, snap.Params.Key())
		}
		if want := MeanOf(v, billLength); snap.MeanBillLength != want {
			t.Fatalf("count=%d mean_bill_length=%v, want %v for %s",
				snap.Count, snap.MeanBillLength.Value, want.Value, snap.Params.Key())
		}
		if want := MeanOf(v, billDepth); snap.MeanBillDepth != want {
			t.Fatalf("count=%d mean_bill_depth=%v, want %v for %s",
				snap.Count, snap.MeanBillDepth.Value, want.Value, snap.Params.Key())
		}
	}
	close(stop)
	wg.Wait()
}

func speciesOf(v *View) []string {
	out := make([]string, v.Len())
	for i := range out {
		out[i] = v.At(i).Species
	}
	return out
}
