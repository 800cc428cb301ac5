package molecule

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseSMILES_Atoms(t *testing.T) {
	g, err := ParseSMILES("CCO")
	require.NoError(t, err)
	require.Len(t, g.Atoms, 3)
	assert.Equal(t, []int{3, 2, 1}, []int{g.Atoms[0].HCount, g.Atoms[1].HCount, g.Atoms[2].HCount})
	assert.Equal(t, 8, g.Atoms[2].Number)
	assert.Len(t, g.Bonds, 2)
}

func TestParseSMILES_BracketAtoms(t *testing.T) {
	tests := []struct {
		smiles  string
		number  int
		charge  int
		hcount  int
		isotope int
		chiral  Chirality
		class   int
	}{
		{"[NH4+]", 7, 1, 4, 0, ChiralNone, 0},
		{"[13CH4]", 6, 0, 4, 13, ChiralNone, 0},
		{"[O-2]", 8, -2, 0, 0, ChiralNone, 0},
		{"[Fe++]", 26, 2, 0, 0, ChiralNone, 0},
		{"[C@@H](F)(Cl)Br", 6, 0, 1, 0, ChiralCW, 0},
		{"[C@TH1H](F)(Cl)Br", 6, 0, 1, 0, ChiralCCW, 0},
		{"[CH3:7]C", 6, 0, 3, 0, ChiralNone, 7},
		{"[se]1cccc1", 34, 0, 0, 0, ChiralNone, 0},
	}
	for _, tt := range tests {
		t.Run(tt.smiles, func(t *testing.T) {
			g, err := ParseSMILES(tt.smiles)
			require.NoError(t, err)
			a := g.Atoms[0]
			assert.Equal(t, tt.number, a.Number)
			assert.Equal(t, tt.charge, a.Charge)
			assert.Equal(t, tt.hcount, a.HCount)
			assert.Equal(t, tt.isotope, a.Isotope)
			assert.Equal(t, tt.chiral, a.Chiral)
			assert.Equal(t, tt.class, a.Class)
		})
	}
}

func TestParseSMILES_RingClosures(t *testing.T) {
	for _, s := range []string{"C1CCCCC1", "C%10CCCCC%10", "C%(123)CCCCC%(123)", "C=1CCCCC=1"} {
		g, err := ParseSMILES(s)
		require.NoError(t, err, s)
		assert.Len(t, g.Atoms, 6, s)
		assert.Len(t, g.Bonds, 6, s)
		assert.Equal(t, 1, g.RingCount(), s)
		for _, b := range g.Bonds {
			assert.True(t, b.InRing, s)
		}
	}
}

func TestParseSMILES_ExplicitHydrogensFolded(t *testing.T) {
	g, err := ParseSMILES("[H]C([H])([H])[H]")
	require.NoError(t, err)
	require.Len(t, g.Atoms, 1)
	assert.Equal(t, 4, g.Atoms[0].HCount)
	assert.Empty(t, g.Bonds)

	g, err = ParseSMILES("[H][H]")
	require.NoError(t, err)
	assert.Len(t, g.Atoms, 2, "molecular hydrogen keeps both atoms")
}

func TestParseSMILES_KekuleBecomesAromatic(t *testing.T) {
	for _, s := range []string{"C1=CC=CC=C1", "C1=CNC=C1", "C1=COC=C1", "O=C1C=CC=CN1", "C1=CC=C2C=CC=CC2=C1"} {
		g, err := ParseSMILES(s)
		require.NoError(t, err, s)
		for i, a := range g.Atoms {
			if g.inRing(i) {
				assert.True(t, a.Aromatic, "%s atom %d", s, i)
			}
		}
	}
}

func TestParseSMILES_NonAromaticRingsStayKekule(t *testing.T) {
	for _, s := range []string{"C1=CCC=C1", "O=C1C=CC(=O)C=C1", "C1=CC=CC=CC=C1"} {
		g, err := ParseSMILES(s)
		require.NoError(t, err, s)
		for _, a := range g.Atoms {
			assert.False(t, a.Aromatic, s)
		}
	}
}

func TestParseSMILES_BiphenylLinkIsSingle(t *testing.T) {
	g, err := ParseSMILES("c1ccccc1c1ccccc1")
	require.NoError(t, err)
	link := g.bondBetween(5, 6)
	require.GreaterOrEqual(t, link, 0)
	assert.Equal(t, BondSingle, g.Bonds[link].Order)
	assert.False(t, g.Bonds[link].InRing)
}

func TestParseSMILES_DoubleBondStereo(t *testing.T) {
	trans, err := ParseSMILES("F/C=C/F")
	require.NoError(t, err)
	require.Len(t, trans.stereo, 1)
	assert.False(t, trans.stereo[0].cis)

	cis, err := ParseSMILES("F/C=C\\F")
	require.NoError(t, err)
	require.Len(t, cis.stereo, 1)
	assert.True(t, cis.stereo[0].cis)

	plain, err := ParseSMILES("FC=CF")
	require.NoError(t, err)
	assert.Empty(t, plain.stereo)
}

func TestParseSMILES_Errors(t *testing.T) {
	tests := []struct {
		smiles string
		want   error
	}{
		{"", ErrEmptySMILES},
		{"   ", ErrEmptySMILES},
		{"C(C", ErrUnbalancedParentheses},
		{"C)C", ErrUnbalancedParentheses},
		{"(C)C", ErrUnbalancedParentheses},
		{"C1CC", ErrUnmatchedRingClosure},
		{"C11", ErrUnmatchedRingClosure},
		{"C1C1", ErrDuplicateBond},
		{"C==C", ErrUnexpectedCharacter},
		{"CC=", ErrDanglingBond},
		{"=C", ErrDanglingBond},
		{"[CH3", ErrUnclosedBracket},
		{"[Xx]", ErrUnknownElement},
		{"CC(=O)OH", ErrUnexpectedCharacter},
		{"C(=C)(=C)=C", ErrValence},
		{"cc", ErrAromaticOutsideRing},
		{"C^C", ErrUnexpectedCharacter},
	}
	for _, tt := range tests {
		t.Run(tt.smiles, func(t *testing.T) {
			_, err := ParseSMILES(tt.smiles)
			require.Error(t, err)
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestHeavyAtomCount(t *testing.T) {
	tests := map[string]int{
		"O":             1,
		"CC(=O)O":       4,
		"[H]OC":         2,
		"c1ccccc1":      6,
		"[Na+].[Cl-]":   2,
		"[2H]C([2H])=O": 2,
	}
	for s, want := range tests {
		g, err := ParseSMILES(s)
		require.NoError(t, err, s)
		assert.Equal(t, want, g.HeavyAtomCount(), s)
	}
}

//Personal.AI order the ending
