package filter

import (
	"sort"
	"strconv"
	"strings"

	"github.com/dreamware/penguins/internal/dataset"
)

// Params is the filter state driven by the two sidebar controls.
// The zero value selects nothing.
type Params struct {
	Species []string // Selected species, sorted and without duplicates
	MaxMass float64  // Records must weigh strictly less than this
}

// NewParams normalizes the species selection so equal selections compare
// equal regardless of order or repetition. No other validation happens: an
// empty selection or a negative mass is legal and simply matches nothing.
func NewParams(species []string, maxMass float64) Params {
	set := make(map[string]struct{}, len(species))
	norm := make([]string, 0, len(species))
	for _, s := range species {
		if _, dup := set[s]; dup {
			continue
		}
		set[s] = struct{}{}
		norm = append(norm, s)
	}
	sort.Strings(norm)
	return Params{Species: norm, MaxMass: maxMass}
}

// Has reports whether species is selected
func (p Params) Has(species string) bool {
	i := sort.SearchStrings(p.Species, species)
	return i < len(p.Species) && p.Species[i] == species
}

// Match reports whether r passes both predicates.
// A missing mass never matches because NaN < x is false.
func (p Params) Match(r dataset.Record) bool {
	return p.Has(r.Species) && r.BodyMassG < p.MaxMass
}

// Key is a canonical string for the parameter value
func (p Params) Key() string {
	return strings.Join(p.Species, "|") + "<" + strconv.FormatFloat(p.MaxMass, 'g', -1, 64)
}

func (p Params) clone() Params {
	return Params{Species: append([]string(nil), p.Species...), MaxMass: p.MaxMass}
}
