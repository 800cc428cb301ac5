package molecule

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
)

// ---------------------------------------------------------------------------
// Canonical SMILES writer
// ---------------------------------------------------------------------------

// CanonicalSMILES renders the graph as a canonical SMILES string.  With
// isomeric false, isotopes, tetrahedral tags and double-bond geometry are
// omitted and do not influence atom ranking.
func (g *Graph) CanonicalSMILES(isomeric bool) string {
	h := g.clone()
	if !isomeric {
		for i := range h.Atoms {
			h.Atoms[i].Isotope = 0
			h.Atoms[i].Chiral = ChiralNone
		}
		h.stereo = nil
	}
	symmetry := symmetryClasses(h)

	// Equivalent starting choices give the same string unless stereo tags
	// break the symmetry, in which case the smallest rendering wins.
	candidates := firstTieCandidates(symmetry)
	if !h.hasStereo() || len(candidates) < 2 {
		return h.render(canonicalRanks(h, symmetry, -1), symmetry)
	}
	best := ""
	for _, c := range candidates {
		s := h.render(canonicalRanks(h, symmetry, c), symmetry)
		if best == "" || s < best {
			best = s
		}
	}
	return best
}

func (g *Graph) hasStereo() bool {
	if len(g.stereo) > 0 {
		return true
	}
	for _, a := range g.Atoms {
		if a.Chiral != ChiralNone {
			return true
		}
	}
	return false
}

func (g *Graph) render(ranks, symmetry []int) string {
	w := newSMILESWriter(g, ranks, symmetry)

	comps := g.components()
	starts := make([]int, 0, len(comps))
	for _, comp := range comps {
		start := comp[0]
		for _, a := range comp {
			if ranks[a] < ranks[start] {
				start = a
			}
		}
		starts = append(starts, start)
		w.build(start, -1)
	}
	w.assignChirality()
	w.assignBondDirections()

	parts := make([]string, 0, len(starts))
	for _, s := range starts {
		var sb strings.Builder
		w.inUse = map[int]bool{}
		w.emit(&sb, s)
		parts = append(parts, sb.String())
	}
	sort.Strings(parts)
	return strings.Join(parts, ".")
}

func (g *Graph) clone() *Graph {
	c := &Graph{
		Atoms:     make([]Atom, len(g.Atoms)),
		Bonds:     append([]Bond(nil), g.Bonds...),
		adj:       g.adj,
		stereo:    append([]doubleBondStereo(nil), g.stereo...),
		ringSizes: g.ringSizes,
		rings:     g.rings,
	}
	for i, a := range g.Atoms {
		a.nbrOrder = append([]int(nil), a.nbrOrder...)
		c.Atoms[i] = a
	}
	return c
}

type smilesWriter struct {
	g        *Graph
	ranks    []int
	symmetry []int

	visited   []bool
	usedBond  []bool
	parent    []int
	children  [][]int
	ringBonds [][]int // ring-closure bonds per atom in the order they are written
	chiral    []Chirality
	dirs      map[int]BondDir
	digits    map[int]int
	inUse     map[int]bool
	order     []int
	counter   int
}

func newSMILESWriter(g *Graph, ranks, symmetry []int) *smilesWriter {
	n := len(g.Atoms)
	w := &smilesWriter{
		g:         g,
		ranks:     ranks,
		symmetry:  symmetry,
		visited:   make([]bool, n),
		usedBond:  make([]bool, len(g.Bonds)),
		parent:    make([]int, n),
		children:  make([][]int, n),
		ringBonds: make([][]int, n),
		chiral:    make([]Chirality, n),
		dirs:      map[int]BondDir{},
		digits:    map[int]int{},
		order:     make([]int, n),
	}
	return w
}

// build lays out the depth-first spanning tree, visiting neighbours in rank
// order.  Back edges become ring closures opened at the ancestor.
func (w *smilesWriter) build(u, parent int) {
	w.visited[u] = true
	w.parent[u] = parent
	w.order[u] = w.counter
	w.counter++

	nbrs := append([]adjEntry(nil), w.g.adj[u]...)
	sort.Slice(nbrs, func(i, j int) bool { return w.ranks[nbrs[i].atom] < w.ranks[nbrs[j].atom] })
	for _, e := range nbrs {
		if w.usedBond[e.bond] {
			continue
		}
		w.usedBond[e.bond] = true
		if w.visited[e.atom] {
			w.ringBonds[e.atom] = append(w.ringBonds[e.atom], e.bond)
			w.ringBonds[u] = append(w.ringBonds[u], e.bond)
			continue
		}
		w.children[u] = append(w.children[u], e.atom)
		w.build(e.atom, u)
	}
}

// outputOrder lists the neighbours of u in the order the writer emits them,
// with hydrogenRef standing for the implicit hydrogen.
func (w *smilesWriter) outputOrder(u int) []int {
	var out []int
	if w.parent[u] >= 0 {
		out = append(out, w.parent[u])
	}
	if w.g.Atoms[u].HCount == 1 {
		out = append(out, hydrogenRef)
	}
	for _, bi := range w.ringBonds[u] {
		out = append(out, w.g.Bonds[bi].Other(u))
	}
	return append(out, w.children[u]...)
}

// assignChirality re-expresses each tetrahedral tag relative to the output
// neighbour order, dropping tags on atoms that cannot be stereocentres.
func (w *smilesWriter) assignChirality() {
	for u, a := range w.g.Atoms {
		if a.Chiral == ChiralNone || !w.isStereocentre(u) {
			continue
		}
		odd, ok := permutationParity(a.nbrOrder, w.outputOrder(u))
		if !ok {
			continue
		}
		if odd {
			w.chiral[u] = a.Chiral.invert()
		} else {
			w.chiral[u] = a.Chiral
		}
	}
}

func (w *smilesWriter) isStereocentre(u int) bool {
	a := w.g.Atoms[u]
	if a.HCount > 1 {
		return false
	}
	total := len(w.g.adj[u]) + a.HCount
	switch total {
	case 4:
	case 3:
		if a.HCount > 0 || (a.Number != 7 && a.Number != 15 && a.Number != 16 && a.Number != 34) {
			return false
		}
	default:
		return false
	}
	seen := map[int]bool{}
	for _, e := range w.g.adj[u] {
		c := w.symmetry[e.atom]
		if seen[c] {
			return false
		}
		seen[c] = true
	}
	return true
}

// permutationParity reports whether to is an odd permutation of from.
func permutationParity(from, to []int) (odd bool, ok bool) {
	if len(from) != len(to) {
		return false, false
	}
	pos := make(map[int]int, len(from))
	for i, v := range from {
		pos[v] = i
	}
	perm := make([]int, len(to))
	for k, v := range to {
		p, found := pos[v]
		if !found {
			return false, false
		}
		perm[k] = p
	}
	inversions := 0
	for i := 0; i < len(perm); i++ {
		for j := i + 1; j < len(perm); j++ {
			if perm[i] > perm[j] {
				inversions++
			}
		}
	}
	return inversions%2 == 1, true
}

// assignBondDirections writes '/' and '\' markers for every stereo double
// bond, in output order, reusing markers already placed by earlier bonds.
func (w *smilesWriter) assignBondDirections() {
	stereo := append([]doubleBondStereo(nil), w.g.stereo...)
	sort.Slice(stereo, func(i, j int) bool {
		return w.firstWritten(stereo[i]) < w.firstWritten(stereo[j])
	})
	for _, s := range stereo {
		if !w.stereoEndValid(s.begin, s.end) || !w.stereoEndValid(s.end, s.begin) {
			continue
		}
		refBegin, okb := w.treeReference(s.begin, s.end)
		refEnd, oke := w.treeReference(s.end, s.begin)
		if !okb || !oke {
			continue
		}
		cis := s.cis
		if refBegin != s.refBegin {
			cis = !cis
		}
		if refEnd != s.refEnd {
			cis = !cis
		}

		bBegin := w.g.bondBetween(s.begin, refBegin)
		bEnd := w.g.bondBetween(s.end, refEnd)
		firstBegin := w.firstAtomOf(bBegin)
		firstEnd := w.firstAtomOf(bEnd)

		var upBegin bool
		if d, ok := w.dirs[bBegin]; ok {
			upBegin = (d == DirUp) == (firstBegin == s.begin)
		} else {
			upBegin = firstBegin == s.begin
			w.dirs[bBegin] = dirFor(upBegin, firstBegin, s.begin)
		}
		upEnd := upBegin
		if !cis {
			upEnd = !upBegin
		}
		if _, ok := w.dirs[bEnd]; !ok {
			w.dirs[bEnd] = dirFor(upEnd, firstEnd, s.end)
		}
	}
}

func (w *smilesWriter) firstWritten(s doubleBondStereo) int {
	return min(w.order[s.begin], w.order[s.end])
}

// stereoEndValid rejects a double-bond end whose two substituents are
// symmetry equivalent.
func (w *smilesWriter) stereoEndValid(center, partner int) bool {
	var others []int
	for _, e := range w.g.adj[center] {
		if e.atom != partner {
			others = append(others, e.atom)
		}
	}
	switch len(others) {
	case 1:
		return w.g.Atoms[center].HCount <= 1
	case 2:
		return w.symmetry[others[0]] != w.symmetry[others[1]]
	default:
		return false
	}
}

// treeReference picks the first neighbour of center, other than partner, that
// is joined by a tree bond in output order.
func (w *smilesWriter) treeReference(center, partner int) (int, bool) {
	for _, v := range w.outputOrder(center) {
		if v == hydrogenRef || v == partner {
			continue
		}
		if w.parent[v] == center || w.parent[center] == v {
			return v, true
		}
	}
	return -1, false
}

func (w *smilesWriter) firstAtomOf(bond int) int {
	b := w.g.Bonds[bond]
	if w.parent[b.B] == b.A {
		return b.A
	}
	return b.B
}

// dirFor returns the marker to write on a bond first written at first so that
// the substituent lies above (up) or below the double bond at center.
func dirFor(up bool, first, center int) BondDir {
	if (first == center) == up {
		return DirUp
	}
	return DirDown
}

func (w *smilesWriter) emit(sb *strings.Builder, u int) {
	sb.WriteString(w.atomSymbol(u))

	var freed []int
	for _, bi := range w.ringBonds[u] {
		if d, ok := w.digits[bi]; ok {
			sb.WriteString(ringLabel(d))
			freed = append(freed, d)
			continue
		}
		d := w.allocDigit()
		w.digits[bi] = d
		sb.WriteString(w.bondSymbol(bi))
		sb.WriteString(ringLabel(d))
	}
	for _, d := range freed {
		delete(w.inUse, d)
	}

	kids := w.children[u]
	for k, v := range kids {
		bi := w.g.bondBetween(u, v)
		if k < len(kids)-1 {
			sb.WriteByte('(')
			sb.WriteString(w.bondSymbol(bi))
			w.emit(sb, v)
			sb.WriteByte(')')
			continue
		}
		sb.WriteString(w.bondSymbol(bi))
		w.emit(sb, v)
	}
}

func (w *smilesWriter) allocDigit() int {
	for d := 1; ; d++ {
		if !w.inUse[d] {
			w.inUse[d] = true
			return d
		}
	}
}

func ringLabel(d int) string {
	switch {
	case d < 10:
		return strconv.Itoa(d)
	case d < 100:
		return "%" + strconv.Itoa(d)
	default:
		return "%(" + strconv.Itoa(d) + ")"
	}
}

func (w *smilesWriter) bondSymbol(bi int) string {
	b := w.g.Bonds[bi]
	if d, ok := w.dirs[bi]; ok && b.Order == BondSingle {
		if d == DirUp {
			return "/"
		}
		return "\\"
	}
	switch b.Order {
	case BondDouble:
		return "="
	case BondTriple:
		return "#"
	case BondQuadruple:
		return "$"
	case BondAromatic:
		if !w.g.Atoms[b.A].Aromatic || !w.g.Atoms[b.B].Aromatic {
			return ":"
		}
		return ""
	default:
		if w.g.Atoms[b.A].Aromatic && w.g.Atoms[b.B].Aromatic {
			return "-"
		}
		return ""
	}
}

func (w *smilesWriter) atomSymbol(u int) string {
	a := w.g.Atoms[u]
	chiral := w.chiral[u]
	sym := a.Symbol()
	if a.Aromatic {
		sym = strings.ToLower(sym)
	}

	plain := a.Charge == 0 && a.Isotope == 0 && chiral == ChiralNone && a.Class == 0
	if a.Number == 0 && plain && a.HCount == 0 {
		return "*"
	}
	if _, organic := organicValences[a.Number]; organic && plain && (!a.Aromatic || aromaticOrganic[a.Number]) {
		if h, ok := implicitHydrogens(a.Number, a.Aromatic, w.g.valenceSum(u)); ok && h == a.HCount {
			return sym
		}
	}

	var sb strings.Builder
	sb.WriteByte('[')
	if a.Isotope > 0 {
		sb.WriteString(strconv.Itoa(a.Isotope))
	}
	sb.WriteString(sym)
	switch chiral {
	case ChiralCCW:
		sb.WriteString("@")
	case ChiralCW:
		sb.WriteString("@@")
	}
	if a.HCount > 0 {
		sb.WriteByte('H')
		if a.HCount > 1 {
			sb.WriteString(strconv.Itoa(a.HCount))
		}
	}
	switch {
	case a.Charge == 1:
		sb.WriteByte('+')
	case a.Charge == -1:
		sb.WriteByte('-')
	case a.Charge > 1:
		fmt.Fprintf(&sb, "+%d", a.Charge)
	case a.Charge < -1:
		fmt.Fprintf(&sb, "-%d", -a.Charge)
	}
	if a.Class > 0 {
		fmt.Fprintf(&sb, ":%d", a.Class)
	}
	sb.WriteByte(']')
	return sb.String()
}

//Personal.AI order the ending
