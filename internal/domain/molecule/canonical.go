package molecule

import (
	"slices"
	"sort"
)

// ---------------------------------------------------------------------------
// Canonical ranking
// ---------------------------------------------------------------------------

// atomInvariant is the initial colouring of an atom.  Degree comes first so
// that terminal atoms rank lowest and canonical strings start at a chain end.
func (g *Graph) atomInvariant(i int) []int {
	a := g.Atoms[i]
	return []int{
		len(g.adj[i]),
		a.Number,
		a.Isotope,
		a.Charge,
		a.HCount,
		boolInt(a.Aromatic),
		boolInt(g.inRing(i)),
	}
}

func boolInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

// symmetryClasses returns the refined invariant partition of the atoms.
// Atoms sharing a class are constitutionally equivalent.
func symmetryClasses(g *Graph) []int {
	invariants := make([][]int, len(g.Atoms))
	for i := range invariants {
		invariants[i] = g.atomInvariant(i)
	}
	return g.refine(denseRank(invariants))
}

// firstTieCandidates lists the atoms of the lowest tied symmetry class, or
// nil when every atom is already distinguished.
func firstTieCandidates(symmetry []int) []int {
	tie := lowestTiedRank(symmetry)
	if tie < 0 {
		return nil
	}
	var out []int
	for i, r := range symmetry {
		if r == tie {
			out = append(out, i)
		}
	}
	return out
}

// canonicalRanks turns the symmetry classes into a total order by repeatedly
// promoting one atom of the lowest tied class and refining again.  first, when
// non-negative, is the atom promoted at the first tie; later ties promote the
// lowest-indexed candidate.
func canonicalRanks(g *Graph, symmetry []int, first int) []int {
	n := len(g.Atoms)
	ranks := append([]int(nil), symmetry...)
	for distinct(ranks) < n {
		tie := lowestTiedRank(ranks)
		chosen := -1
		if first >= 0 && ranks[first] == tie {
			chosen = first
		} else {
			for i, r := range ranks {
				if r == tie {
					chosen = i
					break
				}
			}
		}
		first = -1
		keys := make([][]int, n)
		for i, r := range ranks {
			if i == chosen {
				keys[i] = []int{r * 2}
			} else {
				keys[i] = []int{r*2 + 1}
			}
		}
		ranks = g.refine(denseRank(keys))
	}
	return ranks
}

// refine splits rank classes by the sorted ranks of neighbouring atoms and the
// orders of the bonds reaching them until the partition stops changing.
func (g *Graph) refine(ranks []int) []int {
	n := len(ranks)
	for {
		count := distinct(ranks)
		sigs := make([][]int, n)
		for i := 0; i < n; i++ {
			nb := make([]int, 0, len(g.adj[i]))
			for _, e := range g.adj[i] {
				nb = append(nb, ranks[e.atom]*8+int(g.Bonds[e.bond].Order))
			}
			sort.Ints(nb)
			sigs[i] = append([]int{ranks[i]}, nb...)
		}
		next := denseRank(sigs)
		if distinct(next) == count {
			return next
		}
		ranks = next
	}
}

// denseRank assigns 0-based ranks by lexicographic key order; equal keys
// share a rank.
func denseRank(keys [][]int) []int {
	idx := make([]int, len(keys))
	for i := range idx {
		idx[i] = i
	}
	sort.SliceStable(idx, func(a, b int) bool {
		return slices.Compare(keys[idx[a]], keys[idx[b]]) < 0
	})
	ranks := make([]int, len(keys))
	r := 0
	for k, i := range idx {
		if k > 0 && slices.Compare(keys[idx[k-1]], keys[i]) != 0 {
			r++
		}
		ranks[i] = r
	}
	return ranks
}

func distinct(ranks []int) int {
	seen := make(map[int]struct{}, len(ranks))
	for _, r := range ranks {
		seen[r] = struct{}{}
	}
	return len(seen)
}

func lowestTiedRank(ranks []int) int {
	counts := map[int]int{}
	for _, r := range ranks {
		counts[r]++
	}
	best := -1
	for r, c := range counts {
		if c > 1 && (best < 0 || r < best) {
			best = r
		}
	}
	return best
}

//Personal.AI order the ending
