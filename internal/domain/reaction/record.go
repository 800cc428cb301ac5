// Package reaction models enzymatic reaction records: an unordered set of
// reactant structures, an enzyme classification code and an unordered set of
// product structures, plus the provenance of the record.  Records are values
// and every transformation yields a new record.
package reaction

import (
	"sort"
	"strings"

	"github.com/turtacn/BioCatalysis-Toolkit/internal/domain/molecule"
	"github.com/turtacn/BioCatalysis-Toolkit/pkg/errors"
)

// ─────────────────────────────────────────────────────────────────────────────
// Record
// ─────────────────────────────────────────────────────────────────────────────

// Record is one enzymatic reaction.  Both sides are kept sorted by canonical
// SMILES with duplicates removed.
type Record struct {
	reactants []*molecule.Molecule
	products  []*molecule.Molecule
	ec        EnzymeCode
	source    string
}

// NewRecord assembles a record.  An empty side is a parse failure.
func NewRecord(reactants, products []*molecule.Molecule, ec EnzymeCode, source string) (Record, error) {
	r := Record{
		reactants: normalizeSide(reactants),
		products:  normalizeSide(products),
		ec:        ec,
		source:    source,
	}
	if len(r.reactants) == 0 {
		return Record{}, errors.New(errors.CodeReactionEmptySide, "reaction has no reactants")
	}
	if len(r.products) == 0 {
		return Record{}, errors.New(errors.CodeReactionEmptySide, "reaction has no products")
	}
	return r, nil
}

// normalizeSide sorts by canonical SMILES and collapses duplicates.
func normalizeSide(ms []*molecule.Molecule) []*molecule.Molecule {
	out := make([]*molecule.Molecule, 0, len(ms))
	for _, m := range ms {
		if m != nil {
			out = append(out, m)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].SMILES() < out[j].SMILES() })
	uniq := out[:0]
	for i, m := range out {
		if i > 0 && m.SMILES() == uniq[len(uniq)-1].SMILES() {
			continue
		}
		uniq = append(uniq, m)
	}
	return uniq
}

// Reactants returns the reactant set in canonical order.
func (r Record) Reactants() []*molecule.Molecule {
	return append([]*molecule.Molecule(nil), r.reactants...)
}

// Products returns the product set in canonical order.
func (r Record) Products() []*molecule.Molecule {
	return append([]*molecule.Molecule(nil), r.products...)
}

// EC returns the enzyme code.
func (r Record) EC() EnzymeCode { return r.ec }

// Source returns the provenance tag.
func (r Record) Source() string { return r.source }

// ReactantKey is the dot-joined sorted reactant side.
func (r Record) ReactantKey() string { return sideKey(r.reactants) }

// ProductKey is the dot-joined sorted product side.
func (r Record) ProductKey() string { return sideKey(r.products) }

func sideKey(ms []*molecule.Molecule) string {
	parts := make([]string, len(ms))
	for i, m := range ms {
		parts[i] = m.SMILES()
	}
	return strings.Join(parts, ".")
}

// String renders "reactants|ec>>products", omitting "|ec" when no code is
// present.
func (r Record) String() string {
	var b strings.Builder
	b.WriteString(r.ReactantKey())
	if !r.ec.IsZero() {
		b.WriteByte('|')
		b.WriteString(r.ec.String())
	}
	b.WriteString(">>")
	b.WriteString(r.ProductKey())
	return b.String()
}

// Key identifies a record for deduplication.  Source is not part of it.
func (r Record) Key() string { return r.String() }

// SplitKey is shared by a record and its reverse so that both land in the
// same partition.
func (r Record) SplitKey() string {
	a, b := r.ReactantKey(), r.ProductKey()
	if b < a {
		a, b = b, a
	}
	return r.ec.String() + "|" + a + "|" + b
}

// WithEC returns a copy carrying ec.
func (r Record) WithEC(ec EnzymeCode) Record {
	r.ec = ec
	return r
}

// WithProducts returns a copy with a new product side.
func (r Record) WithProducts(products []*molecule.Molecule) (Record, error) {
	return NewRecord(r.reactants, products, r.ec, r.source)
}

// WithReactants returns a copy with a new reactant side.
func (r Record) WithReactants(reactants []*molecule.Molecule) (Record, error) {
	return NewRecord(reactants, r.products, r.ec, r.source)
}

// Reverse swaps the two sides, keeping the code and source.  It reports
// false when both sides are the same set, since the reverse would be the
// record itself.
func (r Record) Reverse() (Record, bool) {
	if r.ReactantKey() == r.ProductKey() {
		return Record{}, false
	}
	return Record{
		reactants: r.products,
		products:  r.reactants,
		ec:        r.ec,
		source:    r.source,
	}, true
}

// SameReaction compares structures and code, ignoring source.
func (r Record) SameReaction(o Record) bool {
	return r.Key() == o.Key()
}

//Personal.AI order the ending
