package molecule

// ---------------------------------------------------------------------------
// Molecular graph
// ---------------------------------------------------------------------------

// BondOrder enumerates the bond types expressible in SMILES.
type BondOrder int

const (
	BondSingle BondOrder = iota + 1
	BondDouble
	BondTriple
	BondQuadruple
	BondAromatic
)

// valenceContribution returns how much the bond adds to an atom's valence sum.
func (o BondOrder) valenceContribution() int {
	switch o {
	case BondDouble:
		return 2
	case BondTriple:
		return 3
	case BondQuadruple:
		return 4
	default:
		return 1
	}
}

// BondDir is the '/' or '\' marker of a single bond adjacent to a double bond.
type BondDir int8

const (
	DirNone BondDir = iota
	DirUp           // '/'
	DirDown         // '\'
)

// Chirality is the tetrahedral tag of an atom relative to its written
// neighbour order.
type Chirality int8

const (
	ChiralNone Chirality = iota
	ChiralCCW            // @
	ChiralCW             // @@
)

func (c Chirality) invert() Chirality {
	switch c {
	case ChiralCCW:
		return ChiralCW
	case ChiralCW:
		return ChiralCCW
	default:
		return ChiralNone
	}
}

// hydrogenRef marks the implicit hydrogen slot in a neighbour order list.
const hydrogenRef = -1

// Atom is a heavy atom (or an explicit hydrogen before hydrogen folding).
type Atom struct {
	Number   int // atomic number, 0 for '*'
	Aromatic bool
	Isotope  int
	Charge   int
	HCount   int // total attached hydrogens
	Chiral   Chirality
	Class    int

	bracket  bool
	nbrOrder []int
}

// Symbol returns the element symbol of the atom.
func (a Atom) Symbol() string { return symbolFor(a.Number) }

// Bond joins atoms A and B; A is the atom written first.
type Bond struct {
	A, B   int
	Order  BondOrder
	Dir    BondDir
	InRing bool

	explicit    bool
	ringClosure bool
}

// Other returns the partner of atom i across the bond.
func (b Bond) Other(i int) int {
	if b.A == i {
		return b.B
	}
	return b.A
}

type adjEntry struct {
	atom int
	bond int
}

// doubleBondStereo records the geometry of a double bond relative to one
// reference neighbour on each end.
type doubleBondStereo struct {
	bond       int
	begin, end int // the double-bond atoms
	refBegin   int
	refEnd     int
	cis        bool
}

// Graph is a parsed molecular graph.  Graphs are built by ParseSMILES and
// treated as immutable by everything outside this package.
type Graph struct {
	Atoms []Atom
	Bonds []Bond

	adj       [][]adjEntry
	stereo    []doubleBondStereo
	ringSizes [][]int // smallest rings per atom, filled by perceiveRings
	rings     [][]int
}

func (g *Graph) addAtom(a Atom) int {
	g.Atoms = append(g.Atoms, a)
	g.adj = append(g.adj, nil)
	return len(g.Atoms) - 1
}

func (g *Graph) addBond(b Bond) int {
	idx := len(g.Bonds)
	g.Bonds = append(g.Bonds, b)
	g.adj[b.A] = append(g.adj[b.A], adjEntry{atom: b.B, bond: idx})
	g.adj[b.B] = append(g.adj[b.B], adjEntry{atom: b.A, bond: idx})
	return idx
}

// bondBetween returns the bond index joining i and j, or -1.
func (g *Graph) bondBetween(i, j int) int {
	for _, e := range g.adj[i] {
		if e.atom == j {
			return e.bond
		}
	}
	return -1
}

// Degree returns the number of explicit (heavy) neighbours of atom i.
func (g *Graph) Degree(i int) int { return len(g.adj[i]) }

// Neighbors returns the neighbour atom indices of atom i.
func (g *Graph) Neighbors(i int) []int {
	out := make([]int, len(g.adj[i]))
	for k, e := range g.adj[i] {
		out[k] = e.atom
	}
	return out
}

// valenceSum returns the sum of bond order contributions at atom i.
func (g *Graph) valenceSum(i int) int {
	sum := 0
	for _, e := range g.adj[i] {
		sum += g.Bonds[e.bond].Order.valenceContribution()
	}
	return sum
}

// HeavyAtomCount returns the number of atoms heavier than hydrogen.
func (g *Graph) HeavyAtomCount() int {
	n := 0
	for _, a := range g.Atoms {
		if a.Number > 1 {
			n++
		}
	}
	return n
}

// inRing reports whether atom i has at least one ring bond.
func (g *Graph) inRing(i int) bool {
	for _, e := range g.adj[i] {
		if g.Bonds[e.bond].InRing {
			return true
		}
	}
	return false
}

// ringBondCount returns the number of ring bonds at atom i.
func (g *Graph) ringBondCount(i int) int {
	n := 0
	for _, e := range g.adj[i] {
		if g.Bonds[e.bond].InRing {
			n++
		}
	}
	return n
}

// components returns the connected components as lists of atom indices.
func (g *Graph) components() [][]int {
	seen := make([]bool, len(g.Atoms))
	var out [][]int
	for start := range g.Atoms {
		if seen[start] {
			continue
		}
		var comp []int
		stack := []int{start}
		seen[start] = true
		for len(stack) > 0 {
			u := stack[len(stack)-1]
			stack = stack[:len(stack)-1]
			comp = append(comp, u)
			for _, e := range g.adj[u] {
				if !seen[e.atom] {
					seen[e.atom] = true
					stack = append(stack, e.atom)
				}
			}
		}
		out = append(out, comp)
	}
	return out
}

//Personal.AI order the ending
