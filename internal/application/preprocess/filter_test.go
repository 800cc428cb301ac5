package preprocess

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/turtacn/BioCatalysis-Toolkit/internal/domain/molecule"
	"github.com/turtacn/BioCatalysis-Toolkit/pkg/errors"
)

func TestFilter_NoEnzyme(t *testing.T) {
	f := NewFilter(FilterOptions{}, nil, nil)
	_, rej := f.Apply(record(t, "CCCCO>>CC(=O)O"))
	require.NotNil(t, rej)
	assert.Equal(t, ReasonNoEnzyme, rej.Reason)
	assert.Equal(t, errors.ErrCodeFilterEmptyEnzyme, rej.Code())
}

func TestFilter_PatternDropsRecord(t *testing.T) {
	f := NewFilter(FilterOptions{}, []*molecule.Pattern{molecule.MustCompilePattern("P(=O)(O)O")}, nil)

	_, rej := f.Apply(record(t, "CCCCO.OP(=O)(O)O|3.1.3.1>>CC(=O)O"))
	require.NotNil(t, rej)
	assert.Equal(t, ReasonPattern, rej.Reason)
	assert.Equal(t, "pattern: P(=O)(O)O", rej.String())

	r, rej := f.Apply(record(t, "CCCCO|1.1.1.1>>CCCC=O"))
	assert.Nil(t, rej)
	assert.Equal(t, "CCCCO", r.ReactantKey())
}

func TestFilter_MoleculeDropsRecord(t *testing.T) {
	f := NewFilter(FilterOptions{}, nil, []*molecule.Molecule{mol(t, "OC1CCCCC1")})

	_, rej := f.Apply(record(t, "CC(=O)O.C1CCCCC1O|3.1.1.1>>CCCCO"))
	require.NotNil(t, rej)
	assert.Equal(t, ReasonMolecule, rej.Reason)
	assert.Equal(t, errors.ErrCodeFilterMoleculeMatched, rej.Code())
}

func TestFilter_StripProducts(t *testing.T) {
	opts := FilterOptions{Mode: ExclusionStripProducts}
	f := NewFilter(opts, []*molecule.Pattern{molecule.MustCompilePattern("C1CCCCC1")}, []*molecule.Molecule{mol(t, "CCCCO")})

	r, rej := f.Apply(record(t, "CC(=O)OC1CCCCC1|3.1.1.1>>CC(=O)O.OC1CCCCC1"))
	require.Nil(t, rej)
	assert.Equal(t, "CC(=O)O", r.ProductKey())

	// A single product is never stripped.
	r, rej = f.Apply(record(t, "CC(=O)O|1.1.1.1>>OC1CCCCC1"))
	require.Nil(t, rej)
	assert.Equal(t, "OC1CCCCC1", r.ProductKey())

	// Molecule exclusions act after patterns.
	r, rej = f.Apply(record(t, "CC(=O)OCCCC|3.1.1.1>>CC(=O)O.CCCCO"))
	require.Nil(t, rej)
	assert.Equal(t, "CC(=O)O", r.ProductKey())

	// Reactants are untouched.
	r, rej = f.Apply(record(t, "OC1CCCCC1|1.1.1.1>>CC(=O)O.CCCCO"))
	require.Nil(t, rej)
	assert.Contains(t, r.ReactantKey(), "C1CCCCC1")

	_, rej = f.Apply(record(t, "CCCCO|1.1.1.1>>OC1CCCCC1.NC1CCCCC1"))
	require.NotNil(t, rej)
	assert.Equal(t, ReasonPattern, rej.Reason)
}

func TestFilter_Precursors(t *testing.T) {
	f := NewFilter(FilterOptions{RemovePrecursors: true}, nil, nil)

	r, rej := f.Apply(record(t, "CCCCO.OC1CCCCC1|1.1.1.1>>CCCC=O.OC1CCCCC1"))
	require.Nil(t, rej)
	assert.Equal(t, "CCCC=O", r.ProductKey())

	_, rej = f.Apply(record(t, "CCCCO.OC1CCCCC1|1.1.1.1>>OC1CCCCC1"))
	require.NotNil(t, rej)
	assert.Equal(t, ReasonPrecursor, rej.Reason)

	off := NewFilter(FilterOptions{}, nil, nil)
	r, rej = off.Apply(record(t, "CCCCO.OC1CCCCC1|1.1.1.1>>OC1CCCCC1"))
	require.Nil(t, rej)
	assert.Equal(t, "OC1CCCCC1", r.ProductKey())
}

func TestFilter_MinAtomCount(t *testing.T) {
	f := NewFilter(FilterOptions{MinAtomCount: 4}, nil, nil)

	// Small products are removed, small reactants stay.
	r, rej := f.Apply(record(t, "CC(N)=O.O|3.5.1.4>>CC(=O)O.N"))
	require.Nil(t, rej)
	assert.Equal(t, "CC(N)=O.O|3.5.1.4>>CC(=O)O", r.String())

	_, rej = f.Apply(record(t, "CCCCO|1.1.1.1>>O.N"))
	require.NotNil(t, rej)
	assert.Equal(t, ReasonAtomCount, rej.Reason)
	assert.Equal(t, errors.ErrCodeFilterAtomCount, rej.Code())

	both := NewFilter(FilterOptions{MinAtomCount: 4, AtomCountScope: AtomCountBoth}, nil, nil)
	r, rej = both.Apply(record(t, "CC(N)=O.O|3.5.1.4>>CC(=O)O.N"))
	require.Nil(t, rej)
	assert.Equal(t, "CC(N)=O|3.5.1.4>>CC(=O)O", r.String())

	_, rej = both.Apply(record(t, "CCO.O|1.1.1.1>>CCCC=O"))
	require.NotNil(t, rej)
	assert.Equal(t, "atom-count: no reactant left", rej.String())
}

func TestFilter_KeepsEnzymeCode(t *testing.T) {
	f := NewFilter(FilterOptions{MinAtomCount: 4, RemovePrecursors: true}, nil, nil)
	r, rej := f.Apply(record(t, "CC(N)=O.O|3.5.1.4>>CC(=O)O.N"))
	require.Nil(t, rej)
	assert.Equal(t, "3.5.1.4", r.EC().String())
}

func TestFilter_IndependentOfLevel(t *testing.T) {
	f := NewFilter(FilterOptions{MinAtomCount: 4}, []*molecule.Pattern{molecule.MustCompilePattern("[N+]")}, nil)
	lines := []string{
		"C[N+](C)(C)CCO|3.1.1.7>>CC(=O)O",
		"CC(N)=O.O|3.5.1.4>>CC(=O)O",
		"CCCCO|1.1.1.1>>O",
	}
	for _, line := range lines {
		full := record(t, line)
		_, want := f.Apply(full)
		for level := 1; level <= 4; level++ {
			_, got := f.Apply(full.WithEC(full.EC().Truncate(level)))
			assert.Equal(t, want == nil, got == nil, "%s at level %d", line, level)
		}
	}
}

//Personal.AI order the ending
