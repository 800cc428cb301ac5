package molecule

// ---------------------------------------------------------------------------
// Substructure matching
// ---------------------------------------------------------------------------

// Matches reports whether the pattern occurs in g.  Query atoms map to
// distinct target atoms; disconnected query components may land anywhere.
func (p *Pattern) Matches(g *Graph) bool {
	if g == nil || len(p.atoms) > len(g.Atoms) {
		return false
	}
	return p.search(g, -1)
}

// MatchedBy reports whether the pattern occurs in the molecule.
func (p *Pattern) MatchedBy(m *Molecule) bool {
	if m == nil {
		return false
	}
	return p.Matches(m.graph)
}

// matchAt reports whether the pattern matches with its first atom anchored
// on target atom anchor.
func (p *Pattern) matchAt(g *Graph, anchor int) bool {
	if len(p.atoms) > len(g.Atoms) {
		return false
	}
	return p.search(g, anchor)
}

type matchState struct {
	p       *Pattern
	g       *Graph
	mapping []int
	used    []bool
}

func (p *Pattern) search(g *Graph, anchor int) bool {
	st := &matchState{
		p:       p,
		g:       g,
		mapping: make([]int, len(p.atoms)),
		used:    make([]bool, len(g.Atoms)),
	}
	for i := range st.mapping {
		st.mapping[i] = -1
	}
	return st.extend(0, anchor)
}

func (st *matchState) extend(k, anchor int) bool {
	if k == len(st.p.order) {
		return true
	}
	q := st.p.order[k]

	var candidates []int
	switch {
	case k == 0 && anchor >= 0:
		candidates = []int{anchor}
	case st.p.parent[q] >= 0:
		candidates = st.g.Neighbors(st.mapping[st.p.parent[q]])
	default:
		candidates = make([]int, len(st.g.Atoms))
		for i := range candidates {
			candidates[i] = i
		}
	}

	for _, t := range candidates {
		if st.used[t] || !st.p.atoms[q](atomRef{g: st.g, i: t}) || !st.bondsAgree(q, t) {
			continue
		}
		st.mapping[q] = t
		st.used[t] = true
		if st.extend(k+1, anchor) {
			return true
		}
		st.mapping[q] = -1
		st.used[t] = false
	}
	return false
}

// bondsAgree checks every query bond between q and an already mapped atom.
func (st *matchState) bondsAgree(q, t int) bool {
	for _, bi := range st.p.adj[q] {
		qb := st.p.bonds[bi]
		other := qb.a
		if other == q {
			other = qb.b
		}
		mt := st.mapping[other]
		if mt < 0 {
			continue
		}
		tb := st.g.bondBetween(t, mt)
		if tb < 0 || !qb.match(st.g.Bonds[tb]) {
			return false
		}
	}
	return true
}

//Personal.AI order the ending
