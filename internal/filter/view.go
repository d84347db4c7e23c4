package filter

import (
	"github.com/dreamware/penguins/internal/dataset"
)

// View is the subset of a dataset matching one Params value.
// It holds indices into the dataset rather than copies of the records and
// is immutable once built, so a cached View can be handed out freely.
type View struct {
	ds      *dataset.Dataset
	params  Params
	indices []int
}

// Apply filters ds by p in a single pass, preserving dataset order.
// Species membership and the mass threshold are checked per record; since
// both predicates are pure their order does not matter.
func Apply(ds *dataset.Dataset, p Params) *View {
	p = NewParams(p.Species, p.MaxMass)

	n := ds.Len()
	indices := make([]int, 0, n)
	if len(p.Species) > 0 {
		for i := 0; i < n; i++ {
			if p.Match(ds.At(i)) {
				indices = append(indices, i)
			}
		}
	}

	return &View{ds: ds, params: p, indices: indices}
}

// Len returns the number of matching records
func (v *View) Len() int { return len(v.indices) }

// At returns the i-th matching record
func (v *View) At(i int) dataset.Record { return v.ds.At(v.indices[i]) }

// Params returns the parameters the view was computed for
func (v *View) Params() Params { return v.params.clone() }

// Indices returns the dataset positions of the matching records
func (v *View) Indices() []int {
	return append([]int(nil), v.indices...)
}

// Records returns copies of the matching records in dataset order
func (v *View) Records() []dataset.Record {
	out := make([]dataset.Record, len(v.indices))
	for i, idx := range v.indices {
		out[i] = v.ds.At(idx)
	}
	return out
}
