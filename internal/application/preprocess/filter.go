package preprocess

import (
	"github.com/turtacn/BioCatalysis-Toolkit/internal/domain/molecule"
	"github.com/turtacn/BioCatalysis-Toolkit/internal/domain/reaction"
	"github.com/turtacn/BioCatalysis-Toolkit/pkg/errors"
)

// ---------------------------------------------------------------------------
// Filter engine
// ---------------------------------------------------------------------------

// FilterReason names why a record was rejected.
type FilterReason string

const (
	ReasonNoEnzyme    FilterReason = "no-enzyme"
	ReasonPattern     FilterReason = "pattern"
	ReasonMolecule    FilterReason = "molecule"
	ReasonPrecursor   FilterReason = "precursor"
	ReasonAtomCount   FilterReason = "atom-count"
	ReasonMaxProducts FilterReason = "max-products"
)

var reasonCodes = map[FilterReason]errors.ErrorCode{
	ReasonNoEnzyme:    errors.ErrCodeFilterEmptyEnzyme,
	ReasonPattern:     errors.ErrCodeFilterPatternMatched,
	ReasonMolecule:    errors.ErrCodeFilterMoleculeMatched,
	ReasonPrecursor:   errors.ErrCodeFilterMoleculeMatched,
	ReasonAtomCount:   errors.ErrCodeFilterAtomCount,
	ReasonMaxProducts: errors.ErrCodeFilterMaxProducts,
}

// Rejection records a filtered record.  It is an outcome, not a failure.
type Rejection struct {
	Reason FilterReason
	Detail string
}

// Code maps the reason onto its FILTER_00x code.
func (r *Rejection) Code() errors.ErrorCode { return reasonCodes[r.Reason] }

func (r *Rejection) String() string {
	if r.Detail == "" {
		return string(r.Reason)
	}
	return string(r.Reason) + ": " + r.Detail
}

// FilterOptions configures a Filter.
type FilterOptions struct {
	Mode             ExclusionMode
	RemovePrecursors bool
	MinAtomCount     int
	AtomCountScope   AtomCountScope
}

// Filter applies structural exclusion rules.  It holds no mutable state and
// may be shared across workers.
type Filter struct {
	opts      FilterOptions
	patterns  []*molecule.Pattern
	molecules map[string]bool
}

// NewFilter builds a Filter from compiled patterns and canonical molecules.
func NewFilter(opts FilterOptions, patterns []*molecule.Pattern, molecules []*molecule.Molecule) *Filter {
	set := make(map[string]bool, len(molecules))
	for _, m := range molecules {
		set[m.SMILES()] = true
	}
	if opts.Mode == "" {
		opts.Mode = ExclusionDropRecord
	}
	if opts.AtomCountScope == "" {
		opts.AtomCountScope = AtomCountProducts
	}
	return &Filter{opts: opts, patterns: patterns, molecules: set}
}

// Apply runs the rules in order: enzyme presence, pattern exclusion,
// molecule exclusion, precursor removal, minimum atom count.  It returns the
// possibly reduced record, or a Rejection.  None of the rules look at the EC
// level, so a record is kept or dropped identically for every level.
func (f *Filter) Apply(r reaction.Record) (reaction.Record, *Rejection) {
	if r.EC().IsZero() {
		return reaction.Record{}, &Rejection{Reason: ReasonNoEnzyme}
	}

	var rej *Rejection
	if r, rej = f.exclude(r); rej != nil {
		return reaction.Record{}, rej
	}

	if f.opts.RemovePrecursors {
		reactants := map[string]bool{}
		for _, m := range r.Reactants() {
			reactants[m.SMILES()] = true
		}
		kept := keep(r.Products(), func(m *molecule.Molecule) bool { return !reactants[m.SMILES()] })
		if len(kept) == 0 {
			return reaction.Record{}, &Rejection{Reason: ReasonPrecursor, Detail: "every product is also a reactant"}
		}
		r, _ = r.WithProducts(kept)
	}

	if f.opts.MinAtomCount > 0 {
		large := func(m *molecule.Molecule) bool { return m.HeavyAtomCount() >= f.opts.MinAtomCount }
		products := keep(r.Products(), large)
		if len(products) == 0 {
			return reaction.Record{}, &Rejection{Reason: ReasonAtomCount, Detail: "no product left"}
		}
		r, _ = r.WithProducts(products)
		if f.opts.AtomCountScope == AtomCountBoth {
			reactants := keep(r.Reactants(), large)
			if len(reactants) == 0 {
				return reaction.Record{}, &Rejection{Reason: ReasonAtomCount, Detail: "no reactant left"}
			}
			r, _ = r.WithReactants(reactants)
		}
	}
	return r, nil
}

func (f *Filter) exclude(r reaction.Record) (reaction.Record, *Rejection) {
	if len(f.patterns) == 0 && len(f.molecules) == 0 {
		return r, nil
	}
	if f.opts.Mode == ExclusionStripProducts {
		return f.stripProducts(r)
	}

	all := append(r.Reactants(), r.Products()...)
	for _, p := range f.patterns {
		for _, m := range all {
			if p.MatchedBy(m) {
				return r, &Rejection{Reason: ReasonPattern, Detail: p.String()}
			}
		}
	}
	for _, m := range all {
		if f.molecules[m.SMILES()] {
			return r, &Rejection{Reason: ReasonMolecule, Detail: m.SMILES()}
		}
	}
	return r, nil
}

// stripProducts removes excluded products pattern by pattern, stopping as
// soon as a single product is left.  Molecule exclusions apply last.
func (f *Filter) stripProducts(r reaction.Record) (reaction.Record, *Rejection) {
	products := r.Products()
	if len(products) == 1 {
		return r, nil
	}
	for _, p := range f.patterns {
		products = keep(products, func(m *molecule.Molecule) bool { return !p.MatchedBy(m) })
		if len(products) <= 1 {
			break
		}
	}
	if len(products) > 1 {
		products = keep(products, func(m *molecule.Molecule) bool { return !f.molecules[m.SMILES()] })
	}
	if len(products) == 0 {
		return r, &Rejection{Reason: ReasonPattern, Detail: "every product excluded"}
	}
	out, _ := r.WithProducts(products)
	return out, nil
}

func keep(ms []*molecule.Molecule, pred func(*molecule.Molecule) bool) []*molecule.Molecule {
	out := make([]*molecule.Molecule, 0, len(ms))
	for _, m := range ms {
		if pred(m) {
			out = append(out, m)
		}
	}
	return out
}

//Personal.AI order the ending
