package molecule

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// ---------------------------------------------------------------------------
// Parse errors
// ---------------------------------------------------------------------------

var (
	ErrEmptySMILES           = errors.New("empty SMILES")
	ErrUnbalancedParentheses = errors.New("unbalanced parentheses")
	ErrUnmatchedRingClosure  = errors.New("unmatched ring closure")
	ErrUnexpectedCharacter   = errors.New("unexpected character")
	ErrUnclosedBracket       = errors.New("unclosed bracket atom")
	ErrUnknownElement        = errors.New("unknown element")
	ErrDanglingBond          = errors.New("dangling bond")
	ErrDuplicateBond         = errors.New("duplicate bond")
	ErrValence               = errors.New("valence exceeded")
	ErrAromaticOutsideRing   = errors.New("aromatic atom outside ring")
)

// ---------------------------------------------------------------------------
// SMILES parser
// ---------------------------------------------------------------------------

// ringPlaceholder marks a neighbour slot reserved by an open ring bond.
const ringPlaceholder = -2

type bondSpec struct {
	order    BondOrder
	dir      BondDir
	explicit bool
}

type ringOpening struct {
	atom int
	bond bondSpec
	slot int
}

type smilesParser struct {
	src        string
	pos        int
	g          *Graph
	prev       int
	branches   []int
	pending    bondSpec
	hasPending bool
	rings      map[int]ringOpening
}

// ParseSMILES parses a SMILES string into a molecular graph.  Explicit
// hydrogens are folded into their heavy neighbours, ring bonds are
// perceived, kekulé rings are converted to aromatic form and directional
// bond markers are turned into double-bond geometry.
func ParseSMILES(smiles string) (*Graph, error) {
	s := strings.TrimSpace(smiles)
	if s == "" {
		return nil, ErrEmptySMILES
	}
	p := &smilesParser{src: s, g: &Graph{}, prev: -1, rings: map[int]ringOpening{}}
	if err := p.parse(); err != nil {
		return nil, err
	}
	if err := p.g.finish(); err != nil {
		return nil, err
	}
	return p.g, nil
}

func (p *smilesParser) errorf(base error, format string, args ...interface{}) error {
	return fmt.Errorf("%w at position %d: %s", base, p.pos, fmt.Sprintf(format, args...))
}

func (p *smilesParser) parse() error {
	for p.pos < len(p.src) {
		c := p.src[p.pos]
		switch {
		case c == '(':
			if p.prev < 0 {
				return p.errorf(ErrUnbalancedParentheses, "branch without preceding atom")
			}
			p.branches = append(p.branches, p.prev)
			p.pos++
		case c == ')':
			if len(p.branches) == 0 {
				return p.errorf(ErrUnbalancedParentheses, "unexpected ')'")
			}
			if p.hasPending {
				return p.errorf(ErrDanglingBond, "bond before ')'")
			}
			p.prev = p.branches[len(p.branches)-1]
			p.branches = p.branches[:len(p.branches)-1]
			p.pos++
		case c == '.':
			if p.hasPending {
				return p.errorf(ErrDanglingBond, "bond before '.'")
			}
			if len(p.branches) > 0 {
				return p.errorf(ErrUnbalancedParentheses, "'.' inside branch")
			}
			p.prev = -1
			p.pos++
		case strings.IndexByte("-=#$:/\\", c) >= 0:
			if p.hasPending {
				return p.errorf(ErrUnexpectedCharacter, "consecutive bond symbols")
			}
			if p.prev < 0 {
				return p.errorf(ErrDanglingBond, "bond without preceding atom")
			}
			p.pending = bondFromSymbol(c)
			p.hasPending = true
			p.pos++
		case c >= '0' && c <= '9' || c == '%':
			num, err := p.readRingNumber()
			if err != nil {
				return err
			}
			if err := p.ringBond(num); err != nil {
				return err
			}
		case c == '[':
			atom, err := p.readBracketAtom()
			if err != nil {
				return err
			}
			if err := p.attach(atom); err != nil {
				return err
			}
		default:
			atom, ok := p.readOrganicAtom()
			if !ok {
				return p.errorf(ErrUnexpectedCharacter, "%q", c)
			}
			if err := p.attach(atom); err != nil {
				return err
			}
		}
	}

	switch {
	case len(p.branches) > 0:
		return p.errorf(ErrUnbalancedParentheses, "unclosed branch")
	case len(p.rings) > 0:
		return p.errorf(ErrUnmatchedRingClosure, "%d ring bond(s) left open", len(p.rings))
	case p.hasPending:
		return p.errorf(ErrDanglingBond, "trailing bond symbol")
	case len(p.g.Atoms) == 0:
		return ErrEmptySMILES
	}
	return nil
}

func bondFromSymbol(c byte) bondSpec {
	switch c {
	case '=':
		return bondSpec{order: BondDouble, explicit: true}
	case '#':
		return bondSpec{order: BondTriple, explicit: true}
	case '$':
		return bondSpec{order: BondQuadruple, explicit: true}
	case ':':
		return bondSpec{order: BondAromatic, explicit: true}
	case '/':
		return bondSpec{order: BondSingle, dir: DirUp, explicit: true}
	case '\\':
		return bondSpec{order: BondSingle, dir: DirDown, explicit: true}
	default:
		return bondSpec{order: BondSingle, explicit: true}
	}
}

func (p *smilesParser) takePending() bondSpec {
	spec := p.pending
	p.pending = bondSpec{}
	p.hasPending = false
	return spec
}

// resolveOrder applies the implicit-bond rule: unmarked bonds between two
// aromatic atoms are aromatic, all others single.
func (p *smilesParser) resolveOrder(spec bondSpec, a, b int) BondOrder {
	if spec.explicit {
		return spec.order
	}
	if p.g.Atoms[a].Aromatic && p.g.Atoms[b].Aromatic {
		return BondAromatic
	}
	return BondSingle
}

func (p *smilesParser) attach(atom Atom) error {
	idx := p.g.addAtom(atom)
	if p.prev >= 0 {
		spec := p.takePending()
		order := p.resolveOrder(spec, p.prev, idx)
		p.g.addBond(Bond{A: p.prev, B: idx, Order: order, Dir: spec.dir, explicit: spec.explicit})
		p.g.Atoms[p.prev].nbrOrder = append(p.g.Atoms[p.prev].nbrOrder, idx)
		p.g.Atoms[idx].nbrOrder = append(p.g.Atoms[idx].nbrOrder, p.prev)
	}
	if atom.bracket && atom.HCount == 1 {
		p.g.Atoms[idx].nbrOrder = append(p.g.Atoms[idx].nbrOrder, hydrogenRef)
	}
	p.prev = idx
	return nil
}

func (p *smilesParser) readRingNumber() (int, error) {
	c := p.src[p.pos]
	if c != '%' {
		p.pos++
		return int(c - '0'), nil
	}
	p.pos++
	if p.pos < len(p.src) && p.src[p.pos] == '(' {
		end := strings.IndexByte(p.src[p.pos:], ')')
		if end < 0 {
			return 0, p.errorf(ErrUnmatchedRingClosure, "unterminated %%(...) ring number")
		}
		num, err := strconv.Atoi(p.src[p.pos+1 : p.pos+end])
		if err != nil {
			return 0, p.errorf(ErrUnmatchedRingClosure, "bad ring number")
		}
		p.pos += end + 1
		return num, nil
	}
	if p.pos+2 > len(p.src) {
		return 0, p.errorf(ErrUnmatchedRingClosure, "truncated %% ring number")
	}
	num, err := strconv.Atoi(p.src[p.pos : p.pos+2])
	if err != nil {
		return 0, p.errorf(ErrUnmatchedRingClosure, "bad ring number")
	}
	p.pos += 2
	return num, nil
}

func (p *smilesParser) ringBond(num int) error {
	if p.prev < 0 {
		return p.errorf(ErrUnmatchedRingClosure, "ring bond without atom")
	}
	spec := p.takePending()
	open, ok := p.rings[num]
	if !ok {
		slot := len(p.g.Atoms[p.prev].nbrOrder)
		p.g.Atoms[p.prev].nbrOrder = append(p.g.Atoms[p.prev].nbrOrder, ringPlaceholder)
		p.rings[num] = ringOpening{atom: p.prev, bond: spec, slot: slot}
		return nil
	}
	delete(p.rings, num)
	if open.atom == p.prev {
		return p.errorf(ErrUnmatchedRingClosure, "ring %d closes on its own atom", num)
	}
	if p.g.bondBetween(open.atom, p.prev) >= 0 {
		return p.errorf(ErrDuplicateBond, "ring %d duplicates an existing bond", num)
	}
	merged := open.bond
	if spec.explicit {
		if merged.explicit && merged.order != spec.order {
			return p.errorf(ErrUnmatchedRingClosure, "conflicting bond orders on ring %d", num)
		}
		merged = spec
	}
	order := p.resolveOrder(merged, open.atom, p.prev)
	p.g.addBond(Bond{A: open.atom, B: p.prev, Order: order, explicit: merged.explicit, ringClosure: true})
	p.g.Atoms[open.atom].nbrOrder[open.slot] = p.prev
	p.g.Atoms[p.prev].nbrOrder = append(p.g.Atoms[p.prev].nbrOrder, open.atom)
	return nil
}

func (p *smilesParser) readOrganicAtom() (Atom, bool) {
	c := p.src[p.pos]
	next := byte(0)
	if p.pos+1 < len(p.src) {
		next = p.src[p.pos+1]
	}
	switch c {
	case '*':
		p.pos++
		return Atom{Number: 0}, true
	case 'B':
		if next == 'r' {
			p.pos += 2
			return Atom{Number: 35}, true
		}
		p.pos++
		return Atom{Number: 5}, true
	case 'C':
		if next == 'l' {
			p.pos += 2
			return Atom{Number: 17}, true
		}
		p.pos++
		return Atom{Number: 6}, true
	case 'N', 'O', 'P', 'S', 'F', 'I':
		p.pos++
		return Atom{Number: atomicNumberMap[string(c)]}, true
	case 'b', 'c', 'n', 'o', 'p', 's':
		p.pos++
		return Atom{Number: atomicNumberMap[strings.ToUpper(string(c))], Aromatic: true}, true
	}
	return Atom{}, false
}

func (p *smilesParser) readBracketAtom() (Atom, error) {
	end := strings.IndexByte(p.src[p.pos:], ']')
	if end < 0 {
		return Atom{}, p.errorf(ErrUnclosedBracket, "missing ']'")
	}
	content := p.src[p.pos+1 : p.pos+end]
	atom, err := parseBracketAtom(content)
	if err != nil {
		return Atom{}, p.errorf(err, "[%s]", content)
	}
	p.pos += end + 1
	return atom, nil
}

var chiralClasses = map[string]bool{"TH": true, "AL": true, "SP": true, "TB": true, "OH": true}

// parseBracketAtom parses the content inside [...]:
// isotope? symbol chirality? hcount? charge? class?
func parseBracketAtom(content string) (Atom, error) {
	a := Atom{bracket: true}
	i := 0
	n := len(content)

	start := i
	for i < n && isDigit(content[i]) {
		i++
	}
	if i > start {
		a.Isotope, _ = strconv.Atoi(content[start:i])
	}
	if i >= n {
		return a, ErrUnknownElement
	}

	switch c := content[i]; {
	case c == '*':
		a.Number = 0
		i++
	case isUpper(c):
		sym := content[i : i+1]
		if i+1 < n && isLower(content[i+1]) {
			if num := lookupAtomicNumber(content[i : i+2]); num >= 0 {
				sym = content[i : i+2]
			}
		}
		num := lookupAtomicNumber(sym)
		if num < 0 {
			return a, ErrUnknownElement
		}
		a.Number = num
		i += len(sym)
	case isLower(c):
		matched := false
		if i+1 < n && isLower(content[i+1]) {
			two := strings.ToUpper(content[i:i+1]) + content[i+1:i+2]
			if num := lookupAtomicNumber(two); num >= 0 && aromaticCapable[num] {
				a.Number, a.Aromatic, matched = num, true, true
				i += 2
			}
		}
		if !matched {
			num := lookupAtomicNumber(strings.ToUpper(content[i : i+1]))
			if num < 0 || !aromaticCapable[num] {
				return a, ErrUnknownElement
			}
			a.Number, a.Aromatic = num, true
			i++
		}
	default:
		return a, ErrUnknownElement
	}

	if i < n && content[i] == '@' {
		i++
		a.Chiral = ChiralCCW
		switch {
		case i < n && content[i] == '@':
			a.Chiral = ChiralCW
			i++
		case i+1 < n && chiralClasses[content[i:i+2]]:
			class := content[i : i+2]
			i += 2
			start := i
			for i < n && isDigit(content[i]) {
				i++
			}
			num, _ := strconv.Atoi(content[start:i])
			switch {
			case class == "TH" && num == 1:
				a.Chiral = ChiralCCW
			case class == "TH" && num == 2:
				a.Chiral = ChiralCW
			default:
				a.Chiral = ChiralNone
			}
		}
	}

	if i < n && content[i] == 'H' {
		i++
		a.HCount = 1
		start := i
		for i < n && isDigit(content[i]) {
			i++
		}
		if i > start {
			a.HCount, _ = strconv.Atoi(content[start:i])
		}
	}

	if i < n && (content[i] == '+' || content[i] == '-') {
		sign := 1
		if content[i] == '-' {
			sign = -1
		}
		ch := content[i]
		i++
		start := i
		for i < n && isDigit(content[i]) {
			i++
		}
		if i > start {
			v, _ := strconv.Atoi(content[start:i])
			a.Charge = sign * v
		} else {
			count := 1
			for i < n && content[i] == ch {
				count++
				i++
			}
			a.Charge = sign * count
		}
	}

	if i < n && content[i] == ':' {
		i++
		start := i
		for i < n && isDigit(content[i]) {
			i++
		}
		a.Class, _ = strconv.Atoi(content[start:i])
	}

	if i != n {
		return a, ErrUnexpectedCharacter
	}
	return a, nil
}

func isDigit(c byte) bool { return c >= '0' && c <= '9' }
func isUpper(c byte) bool { return c >= 'A' && c <= 'Z' }
func isLower(c byte) bool { return c >= 'a' && c <= 'z' }

// ---------------------------------------------------------------------------
// Post-parse perception
// ---------------------------------------------------------------------------

// finish completes the graph after tokenisation.  Steps run in a fixed order
// because each depends on the previous one.
func (g *Graph) finish() error {
	for i := range g.Atoms {
		a := &g.Atoms[i]
		if a.bracket || a.Number == 0 {
			continue
		}
		h, ok := implicitHydrogens(a.Number, a.Aromatic, g.valenceSum(i))
		if !ok {
			return fmt.Errorf("%w: %s with bond order sum %d", ErrValence, a.Symbol(), g.valenceSum(i))
		}
		a.HCount = h
	}

	g.foldHydrogens()
	g.perceiveRings()

	for i := range g.Bonds {
		b := &g.Bonds[i]
		if b.Order == BondAromatic && !b.InRing && !b.explicit {
			b.Order = BondSingle
		}
	}
	for i, a := range g.Atoms {
		if a.Aromatic && !g.inRing(i) {
			return fmt.Errorf("%w: %s", ErrAromaticOutsideRing, strings.ToLower(a.Symbol()))
		}
	}

	g.perceiveAromaticity()
	g.extractDoubleBondStereo()
	return nil
}

// foldHydrogens removes plain explicit hydrogen atoms and adds them to the
// hydrogen count of their heavy neighbour.
func (g *Graph) foldHydrogens() {
	remove := make([]bool, len(g.Atoms))
	folded := false
	for i, a := range g.Atoms {
		if a.Number != 1 || a.Isotope != 0 || a.Charge != 0 || a.Class != 0 || a.HCount != 0 {
			continue
		}
		if len(g.adj[i]) != 1 {
			continue
		}
		e := g.adj[i][0]
		if g.Atoms[e.atom].Number == 1 || g.Bonds[e.bond].Order != BondSingle {
			continue
		}
		remove[i] = true
		folded = true
		nb := &g.Atoms[e.atom]
		nb.HCount++
		for k, ref := range nb.nbrOrder {
			if ref == i {
				nb.nbrOrder[k] = hydrogenRef
			}
		}
	}
	if !folded {
		return
	}

	newIndex := make([]int, len(g.Atoms))
	atoms := make([]Atom, 0, len(g.Atoms))
	for i, a := range g.Atoms {
		if remove[i] {
			newIndex[i] = -1
			continue
		}
		newIndex[i] = len(atoms)
		atoms = append(atoms, a)
	}
	for i := range atoms {
		order := atoms[i].nbrOrder[:0:0]
		for _, ref := range atoms[i].nbrOrder {
			if ref >= 0 {
				ref = newIndex[ref]
			}
			order = append(order, ref)
		}
		atoms[i].nbrOrder = order
	}
	old := g.Bonds
	g.Atoms = nil
	g.adj = nil
	g.Bonds = nil
	for _, a := range atoms {
		g.addAtom(a)
	}
	for _, b := range old {
		if remove[b.A] || remove[b.B] {
			continue
		}
		b.A, b.B = newIndex[b.A], newIndex[b.B]
		g.addBond(b)
	}
}

// extractDoubleBondStereo converts '/' and '\' markers into explicit
// cis/trans records on acyclic double bonds, then clears the markers.
func (g *Graph) extractDoubleBondStereo() {
	for bi, b := range g.Bonds {
		if b.Order != BondDouble || b.InRing {
			continue
		}
		ra, oka := g.directionalNeighbor(b.A, b.B)
		rb, okb := g.directionalNeighbor(b.B, b.A)
		if !oka || !okb {
			continue
		}
		g.stereo = append(g.stereo, doubleBondStereo{
			bond:     bi,
			begin:    b.A,
			end:      b.B,
			refBegin: ra,
			refEnd:   rb,
			cis:      g.refIsUp(ra, b.A) == g.refIsUp(rb, b.B),
		})
	}
	for i := range g.Bonds {
		g.Bonds[i].Dir = DirNone
	}
}

func (g *Graph) directionalNeighbor(center, partner int) (int, bool) {
	for _, e := range g.adj[center] {
		b := g.Bonds[e.bond]
		if e.atom != partner && b.Dir != DirNone && !b.ringClosure && b.Order == BondSingle {
			return e.atom, true
		}
	}
	return -1, false
}

// refIsUp reports whether ref sits "above" center according to the written
// direction of the bond joining them.
func (g *Graph) refIsUp(ref, center int) bool {
	b := g.Bonds[g.bondBetween(center, ref)]
	up := b.Dir == DirUp
	if b.A == center {
		return up
	}
	return !up
}

//Personal.AI order the ending
