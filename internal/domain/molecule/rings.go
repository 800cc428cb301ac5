package molecule

import (
	"sort"
	"strconv"
	"strings"
)

// ---------------------------------------------------------------------------
// Ring perception
// ---------------------------------------------------------------------------

// perceiveRings marks ring bonds (every bond that is not a bridge) and
// collects the smallest rings they belong to.
func (g *Graph) perceiveRings() {
	n := len(g.Atoms)
	bridge := make([]bool, len(g.Bonds))
	disc := make([]int, n)
	low := make([]int, n)
	for i := range disc {
		disc[i] = -1
	}
	timer := 0

	var dfs func(u, parentBond int)
	dfs = func(u, parentBond int) {
		disc[u] = timer
		low[u] = timer
		timer++
		for _, e := range g.adj[u] {
			if e.bond == parentBond {
				continue
			}
			if disc[e.atom] < 0 {
				dfs(e.atom, e.bond)
				low[u] = min(low[u], low[e.atom])
				if low[e.atom] > disc[u] {
					bridge[e.bond] = true
				}
			} else {
				low[u] = min(low[u], disc[e.atom])
			}
		}
	}
	for i := 0; i < n; i++ {
		if disc[i] < 0 {
			dfs(i, -1)
		}
	}
	for i := range g.Bonds {
		g.Bonds[i].InRing = !bridge[i]
	}

	g.rings = g.cycleBasis()
	g.ringSizes = make([][]int, n)
	for _, ring := range g.rings {
		for _, a := range ring {
			g.ringSizes[a] = append(g.ringSizes[a], len(ring))
		}
	}
	for i := range g.ringSizes {
		sort.Ints(g.ringSizes[i])
	}
}

// cycleBasis returns the smallest ring through every ring bond, with
// duplicates removed.  For fused systems this yields each individual ring
// rather than the envelope.  Each ring lists its atoms in path order.
func (g *Graph) cycleBasis() [][]int {
	var rings [][]int
	keys := map[string]bool{}
	for bi, b := range g.Bonds {
		if !b.InRing {
			continue
		}
		path := g.shortestPath(b.A, b.B, bi)
		if len(path) < 3 {
			continue
		}
		key := ringKey(path)
		if keys[key] {
			continue
		}
		keys[key] = true
		rings = append(rings, path)
	}
	sort.SliceStable(rings, func(i, j int) bool { return len(rings[i]) < len(rings[j]) })
	return rings
}

// shortestPath finds the shortest path from a to b that avoids bond skip.
func (g *Graph) shortestPath(a, b, skip int) []int {
	prev := make([]int, len(g.Atoms))
	for i := range prev {
		prev[i] = -2
	}
	prev[a] = -1
	queue := []int{a}
	for len(queue) > 0 {
		u := queue[0]
		queue = queue[1:]
		if u == b {
			break
		}
		for _, e := range g.adj[u] {
			if e.bond == skip || prev[e.atom] != -2 {
				continue
			}
			prev[e.atom] = u
			queue = append(queue, e.atom)
		}
	}
	if prev[b] == -2 {
		return nil
	}
	var path []int
	for v := b; v != -1; v = prev[v] {
		path = append(path, v)
	}
	return path
}

func ringKey(ring []int) string {
	sorted := append([]int(nil), ring...)
	sort.Ints(sorted)
	parts := make([]string, len(sorted))
	for i, v := range sorted {
		parts[i] = strconv.Itoa(v)
	}
	return strings.Join(parts, ",")
}

// inRingOfSize reports whether atom i belongs to a basis ring of the given size.
func (g *Graph) inRingOfSize(i, size int) bool {
	for _, s := range g.ringSizes[i] {
		if s == size {
			return true
		}
	}
	return false
}

// RingCount returns the number of rings in the cycle basis.
func (g *Graph) RingCount() int { return len(g.rings) }

//Personal.AI order the ending
