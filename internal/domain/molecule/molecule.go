// Package molecule implements the structure layer of the toolkit: a SMILES
// parser producing a molecular graph, aromaticity and ring perception, a
// canonical SMILES writer, a SMARTS subset for substructure queries and a
// caching Normalizer used by the preprocessing and scoring pipelines.
//
// Two spellings of the same structure (atom order, ring-closure numbering,
// kekulé versus aromatic form, explicit hydrogens) canonicalise to the same
// string, which is what every equality check in the toolkit relies on.
package molecule

import (
	stderrors "errors"
	"fmt"

	"github.com/turtacn/BioCatalysis-Toolkit/pkg/errors"
)

// ─────────────────────────────────────────────────────────────────────────────
// Molecule value
// ─────────────────────────────────────────────────────────────────────────────

// Molecule is an immutable parsed structure together with its canonical
// SMILES.  Two molecules are equal exactly when their canonical strings are.
type Molecule struct {
	smiles     string
	heavyAtoms int
	graph      *Graph
}

// SMILES returns the canonical SMILES.
func (m *Molecule) SMILES() string { return m.smiles }

// String implements fmt.Stringer.
func (m *Molecule) String() string { return m.smiles }

// HeavyAtomCount returns the number of non-hydrogen atoms.
func (m *Molecule) HeavyAtomCount() int { return m.heavyAtoms }

// RingCount returns the number of rings in the structure.
func (m *Molecule) RingCount() int { return m.graph.RingCount() }

// Equal reports structural identity.
func (m *Molecule) Equal(other *Molecule) bool {
	if m == nil || other == nil {
		return m == other
	}
	return m.smiles == other.smiles
}

// Parse parses and canonicalises a SMILES string.  Errors carry the
// MOL_001 or MOL_002 code.
func Parse(smiles string, isomeric bool) (*Molecule, error) {
	g, err := ParseSMILES(smiles)
	if err != nil {
		return nil, wrapParseError(err, smiles)
	}
	return &Molecule{
		smiles:     g.CanonicalSMILES(isomeric),
		heavyAtoms: g.HeavyAtomCount(),
		graph:      g,
	}, nil
}

// Canonicalize returns the canonical SMILES of a structure.
func Canonicalize(smiles string, isomeric bool) (string, error) {
	m, err := Parse(smiles, isomeric)
	if err != nil {
		return "", err
	}
	return m.smiles, nil
}

// CompileQuery compiles a SMARTS exclusion or search pattern, returning a
// configuration-class error on failure.
func CompileQuery(smarts string) (*Pattern, error) {
	p, err := CompilePattern(smarts)
	if err != nil {
		return nil, errors.Wrap(err, errors.CodePatternInvalid, fmt.Sprintf("invalid pattern %q", smarts))
	}
	return p, nil
}

func wrapParseError(err error, smiles string) error {
	code := errors.CodeMoleculeInvalidSMILES
	if stderrors.Is(err, ErrValence) {
		code = errors.ErrCodeMoleculeValenceViolation
	}
	return errors.Wrap(err, code, fmt.Sprintf("invalid SMILES %q", smiles))
}

//Personal.AI order the ending
