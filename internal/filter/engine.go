package filter

import (
	"sync"
	"sync/atomic"

	"github.com/dreamware/penguins/internal/dataset"
)

// Kinds of cached values, reported to the recompute hook.
const (
	KindView           = "view"
	KindCount          = "count"
	KindMeanBillLength = "mean_bill_length"
	KindMeanBillDepth  = "mean_bill_depth"
	KindTableRows      = "table_rows"
	KindScatter        = "scatter"
)

// Stats counts cache activity so callers can observe memoization
type Stats struct {
	ViewComputes    uint64 // Filter passes over the dataset
	ViewHits        uint64 // View reads served from cache
	DerivedComputes uint64 // Derived values computed from a view
	DerivedHits     uint64 // Derived reads served from cache
	Invalidations   uint64 // Parameter updates
}

// Option configures an Engine.
type Option func(*Engine)

// WithRecomputeHook registers fn to be called with the kind of value each
// time one is recomputed. fn runs with the engine lock held and must not
// call back into the engine.
func WithRecomputeHook(fn func(kind string)) Option {
	return func(e *Engine) { e.onRecompute = fn }
}

// memo caches one derived value for a single generation of the parameters.
type memo[T any] struct {
	gen   uint64
	valid bool
	value T
}

// Engine holds one session's filter parameters and the values derived from
// them. The View is a pure function of the dataset and the parameters; it is
// recomputed lazily on the first read after a parameter change and at most
// once per change. Each derived value is cached the same way against the
// View it was computed from.
//
// Engine methods are safe for concurrent use, but an Engine is meant to be
// owned by a single session. Two sessions must never share one.
type Engine struct {
	ds          *dataset.Dataset
	onRecompute func(kind string)

	mu         sync.Mutex // Protects everything below
	params     Params
	generation uint64 // Bumped on every parameter update
	view       memo[*View]
	count      memo[int]
	meanLength memo[Mean]
	meanDepth  memo[Mean]
	rows       memo[[]TableRow]
	points     memo[[]ScatterPoint]

	stats Stats // Updated atomically
}

// NewEngine creates an engine over ds starting from p.
// ds is shared, never modified, and must outlive the engine.
func NewEngine(ds *dataset.Dataset, p Params, opts ...Option) *Engine {
	e := &Engine{
		ds:     ds,
		params: NewParams(p.Species, p.MaxMass),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Dataset returns the dataset the engine filters
func (e *Engine) Dataset() *dataset.Dataset { return e.ds }

// Params returns the current parameters
func (e *Engine) Params() Params {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.params.clone()
}

// SetSpecies replaces the species selection and invalidates every cached
// value, even if the selection did not change. It returns the parameters
// now in effect.
func (e *Engine) SetSpecies(species []string) Params {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.params = NewParams(species, e.params.MaxMass)
	e.invalidate()
	return e.params.clone()
}

// SetMaxMass replaces the mass threshold and invalidates every cached value.
func (e *Engine) SetMaxMass(maxMass float64) Params {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.params.MaxMass = maxMass
	e.invalidate()
	return e.params.clone()
}

// Set replaces both parameters with a single invalidation.
func (e *Engine) Set(p Params) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.params = NewParams(p.Species, p.MaxMass)
	e.invalidate()
}

// invalidate must be called with mu held. Bumping the generation is enough
// to make every memo stale; the old values are dropped so they can be freed.
func (e *Engine) invalidate() {
	e.generation++
	e.view = memo[*View]{}
	e.count = memo[int]{}
	e.meanLength = memo[Mean]{}
	e.meanDepth = memo[Mean]{}
	e.rows = memo[[]TableRow]{}
	e.points = memo[[]ScatterPoint]{}
	atomic.AddUint64(&e.stats.Invalidations, 1)
}

// View returns the filtered view for the current parameters.
// Repeated calls without an intervening update return the same *View.
func (e *Engine) View() *View {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.viewLocked()
}

func (e *Engine) viewLocked() *View {
	if e.view.valid && e.view.gen == e.generation {
		atomic.AddUint64(&e.stats.ViewHits, 1)
		return e.view.value
	}
	v := Apply(e.ds, e.params)
	e.view = memo[*View]{gen: e.generation, valid: true, value: v}
	atomic.AddUint64(&e.stats.ViewComputes, 1)
	e.recomputed(KindView)
	return v
}

// derive serves m from cache or computes it from the current view.
// Must be called with mu held.
func derive[T any](e *Engine, m *memo[T], kind string, compute func(*View) T) T {
	if m.valid && m.gen == e.generation {
		atomic.AddUint64(&e.stats.DerivedHits, 1)
		return m.value
	}
	v := e.viewLocked()
	*m = memo[T]{gen: e.generation, valid: true, value: compute(v)}
	atomic.AddUint64(&e.stats.DerivedComputes, 1)
	e.recomputed(kind)
	return m.value
}

func (e *Engine) recomputed(kind string) {
	if e.onRecompute != nil {
		e.onRecompute(kind)
	}
}

// Count returns the number of records in the view
func (e *Engine) Count() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.countLocked()
}

// MeanBillLength returns the mean bill length over the view.
// The result is not Valid when the view has no bill lengths.
func (e *Engine) MeanBillLength() Mean {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.meanLengthLocked()
}

// MeanBillDepth returns the mean bill depth over the view.
func (e *Engine) MeanBillDepth() Mean {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.meanDepthLocked()
}

// Snapshot holds the parameters and the scalar values derived from them,
// all read under one lock.
type Snapshot struct {
	Params         Params
	Count          int
	MeanBillLength Mean
	MeanBillDepth  Mean
}

// Snapshot returns the count and both means for a single parameter value.
// Unlike separate Count and Mean calls, an update from another goroutine
// cannot land between the reads.
func (e *Engine) Snapshot() Snapshot {
	e.mu.Lock()
	defer e.mu.Unlock()
	return Snapshot{
		Params:         e.params.clone(),
		Count:          e.countLocked(),
		MeanBillLength: e.meanLengthLocked(),
		MeanBillDepth:  e.meanDepthLocked(),
	}
}

func (e *Engine) countLocked() int {
	return derive(e, &e.count, KindCount, (*View).Len)
}

func (e *Engine) meanLengthLocked() Mean {
	return derive(e, &e.meanLength, KindMeanBillLength, func(v *View) Mean {
		return MeanOf(v, billLength)
	})
}

func (e *Engine) meanDepthLocked() Mean {
	return derive(e, &e.meanDepth, KindMeanBillDepth, func(v *View) Mean {
		return MeanOf(v, billDepth)
	})
}

// TableRows returns the view projected onto TableColumns.
// The slice is a copy; the cached rows are never exposed.
func (e *Engine) TableRows() []TableRow {
	e.mu.Lock()
	defer e.mu.Unlock()
	rows := derive(e, &e.rows, KindTableRows, RowsOf)
	out := make([]TableRow, len(rows))
	copy(out, rows)
	return out
}

// ScatterData returns the view projected for plotting, as a copy.
func (e *Engine) ScatterData() []ScatterPoint {
	e.mu.Lock()
	defer e.mu.Unlock()
	points := derive(e, &e.points, KindScatter, PointsOf)
	out := make([]ScatterPoint, len(points))
	copy(out, points)
	return out
}

// Stats returns a snapshot of the cache counters
func (e *Engine) Stats() Stats {
	return Stats{
		ViewComputes:    atomic.LoadUint64(&e.stats.ViewComputes),
		ViewHits:        atomic.LoadUint64(&e.stats.ViewHits),
		DerivedComputes: atomic.LoadUint64(&e.stats.DerivedComputes),
		DerivedHits:     atomic.LoadUint64(&e.stats.DerivedHits),
		Invalidations:   atomic.LoadUint64(&e.stats.Invalidations),
	}
}
