// Package filter implements the reactive core of the dashboard: one session's
// filter parameters, the filtered view derived from them, and the summary
// values derived from the view.
//
// # Overview
//
// The dependency graph is deliberately tiny:
//
//	 SetSpecies / SetMaxMass
//	           │ invalidate (generation++)
//	           ▼
//	┌─────────────────────┐
//	│       Params        │  selected species, max mass
//	└─────────────────────┘
//	           │ Apply (lazy, once per generation)
//	           ▼
//	┌─────────────────────┐
//	│        View         │  indices into the shared Dataset
//	└─────────────────────┘
//	           │ derive (lazy, once per generation)
//	  ┌────────┼─────────┬──────────┬──────────┐
//	  ▼        ▼         ▼          ▼          ▼
//	Count  MeanBill   MeanBill   TableRows  ScatterData
//	        Length     Depth
//
// Every parameter update bumps a generation counter. Each cached value
// remembers the generation it was computed for and is recomputed on the
// first read where the generations differ. Nothing is computed eagerly.
//
// # Filtering rules
//
// A record is in the view when its species is selected and its body mass is
// strictly less than MaxMass. Records keep their dataset order. An empty
// selection, a negative mass or a mass below every record are all legal and
// produce an empty view. Records with a missing mass never match.
//
// # Empty views
//
// An empty view is not an error: Count is 0, TableRows and ScatterData are
// empty slices, and both means are returned with Valid set to false. Callers
// render an invalid mean with Mean.Format, which yields NoData.
//
// # Observing the cache
//
// Stats exposes atomic counters for view and derived computations and cache
// hits. Tests use them to check that repeated reads do not recompute, and the
// server feeds WithRecomputeHook into Prometheus.
//
// # Example
//
//	eng := filter.NewEngine(ds, filter.NewParams([]string{"Adelie", "Gentoo"}, 6000))
//	eng.SetMaxMass(4000)
//	fmt.Println(eng.Count(), eng.MeanBillLength().Format("mm"))
package filter
