package molecule

// ---------------------------------------------------------------------------
// Aromaticity perception
// ---------------------------------------------------------------------------

// perceiveAromaticity converts kekulé rings that satisfy the 4n+2 electron
// rule into aromatic form.  Rings are revisited until no further ring changes
// so that fused systems become aromatic once a neighbouring ring has.
func (g *Graph) perceiveAromaticity() {
	done := make([]bool, len(g.rings))
	for ri, ring := range g.rings {
		done[ri] = g.ringFullyAromatic(ring)
	}
	for changed := true; changed; {
		changed = false
		for ri, ring := range g.rings {
			if done[ri] || !g.ringIsAromatic(ring) {
				continue
			}
			g.markAromatic(ring)
			done[ri] = true
			changed = true
		}
	}
}

func (g *Graph) ringFullyAromatic(ring []int) bool {
	for k, u := range ring {
		if !g.Atoms[u].Aromatic {
			return false
		}
		v := ring[(k+1)%len(ring)]
		if g.Bonds[g.bondBetween(u, v)].Order != BondAromatic {
			return false
		}
	}
	return true
}

// ringIsAromatic counts the pi electrons each ring atom donates and applies
// Hückel's rule.  Any atom that cannot take part disqualifies the ring.
func (g *Graph) ringIsAromatic(ring []int) bool {
	size := len(ring)
	if size < 5 || size > 7 {
		return false
	}
	electrons := 0
	for k, u := range ring {
		a := g.Atoms[u]
		if !aromaticCapable[a.Number] {
			return false
		}
		prev := g.Bonds[g.bondBetween(u, ring[(k-1+size)%size])]
		next := g.Bonds[g.bondBetween(u, ring[(k+1)%size])]
		if prev.Order == BondTriple || next.Order == BondTriple ||
			prev.Order == BondQuadruple || next.Order == BondQuadruple {
			return false
		}

		switch {
		case a.Aromatic:
			electrons += aromaticDonation(a, g.Degree(u))
		case prev.Order == BondDouble || next.Order == BondDouble:
			electrons++
		case prev.Order == BondAromatic || next.Order == BondAromatic:
			electrons++
		default:
			d, ok := g.nonDoubleDonation(u, ring[(k-1+size)%size], ring[(k+1)%size])
			if !ok {
				return false
			}
			electrons += d
		}
	}
	return electrons%4 == 2
}

// aromaticDonation is the contribution of an atom that was already aromatic.
func aromaticDonation(a Atom, degree int) int {
	switch a.Number {
	case 8, 16, 34:
		if degree == 2 && a.Charge == 0 {
			return 2
		}
		return 1
	case 7, 15:
		if a.HCount > 0 || (degree == 3 && a.Charge == 0) {
			return 2
		}
		return 1
	default:
		return 1
	}
}

// nonDoubleDonation handles ring atoms with no double bond inside the ring.
func (g *Graph) nonDoubleDonation(u, ringPrev, ringNext int) (int, bool) {
	a := g.Atoms[u]
	for _, e := range g.adj[u] {
		if e.atom == ringPrev || e.atom == ringNext {
			continue
		}
		if g.Bonds[e.bond].Order != BondDouble {
			continue
		}
		partner := g.Atoms[e.atom]
		if partner.Aromatic {
			return 1, true
		}
		if a.Number == 6 && (partner.Number == 7 || partner.Number == 8 || partner.Number == 16) {
			return 0, true
		}
		return 0, false
	}

	sum := g.valenceSum(u)
	switch a.Number {
	case 7, 15:
		if a.Charge == 0 && sum+a.HCount == 3 {
			return 2, true
		}
	case 8, 16, 34:
		if a.Charge == 0 && sum == 2 {
			return 2, true
		}
	case 6:
		if a.Charge == -1 {
			return 2, true
		}
		if a.Charge == 1 {
			return 0, true
		}
	}
	return 0, false
}

func (g *Graph) markAromatic(ring []int) {
	for k, u := range ring {
		v := ring[(k+1)%len(ring)]
		g.Bonds[g.bondBetween(u, v)].Order = BondAromatic
		g.Atoms[u].Aromatic = true
	}
}

//Personal.AI order the ending
