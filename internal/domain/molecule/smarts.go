package molecule

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// ErrInvalidPattern is returned when a SMARTS pattern cannot be compiled.
var ErrInvalidPattern = errors.New("invalid SMARTS pattern")

// ---------------------------------------------------------------------------
// Logical expressions
// ---------------------------------------------------------------------------

type predicate[T any] func(T) bool

func allOf[T any](a, b predicate[T]) predicate[T] { return func(x T) bool { return a(x) && b(x) } }
func anyOf[T any](a, b predicate[T]) predicate[T] { return func(x T) bool { return a(x) || b(x) } }
func negate[T any](a predicate[T]) predicate[T]   { return func(x T) bool { return !a(x) } }

// atomRef addresses one atom of a target graph.
type atomRef struct {
	g *Graph
	i int
}

// parseLowAnd handles ';', the loosest operator.  Precedence from tight to
// loose is '!', '&' (or juxtaposition), ',', ';'.
func parseLowAnd[T any](s *smartsParser, atEnd func() bool, prim func() (predicate[T], error)) (predicate[T], error) {
	left, err := parseOr(s, atEnd, prim)
	if err != nil {
		return nil, err
	}
	for !atEnd() && s.peek() == ';' {
		s.pos++
		right, err := parseOr(s, atEnd, prim)
		if err != nil {
			return nil, err
		}
		left = allOf(left, right)
	}
	return left, nil
}

func parseOr[T any](s *smartsParser, atEnd func() bool, prim func() (predicate[T], error)) (predicate[T], error) {
	left, err := parseHighAnd(s, atEnd, prim)
	if err != nil {
		return nil, err
	}
	for !atEnd() && s.peek() == ',' {
		s.pos++
		right, err := parseHighAnd(s, atEnd, prim)
		if err != nil {
			return nil, err
		}
		left = anyOf(left, right)
	}
	return left, nil
}

func parseHighAnd[T any](s *smartsParser, atEnd func() bool, prim func() (predicate[T], error)) (predicate[T], error) {
	left, err := parseNot(s, atEnd, prim)
	if err != nil {
		return nil, err
	}
	for !atEnd() {
		c := s.peek()
		if c == ',' || c == ';' {
			break
		}
		if c == '&' {
			s.pos++
		}
		right, err := parseNot(s, atEnd, prim)
		if err != nil {
			return nil, err
		}
		left = allOf(left, right)
	}
	return left, nil
}

func parseNot[T any](s *smartsParser, atEnd func() bool, prim func() (predicate[T], error)) (predicate[T], error) {
	if atEnd() {
		return nil, s.errorf("empty expression")
	}
	if s.peek() == '!' {
		s.pos++
		inner, err := parseNot(s, atEnd, prim)
		if err != nil {
			return nil, err
		}
		return negate(inner), nil
	}
	return prim()
}

// ---------------------------------------------------------------------------
// Pattern
// ---------------------------------------------------------------------------

type queryBond struct {
	a, b  int
	match predicate[Bond]
}

// Pattern is a compiled SMARTS query.  It is safe for concurrent use.
type Pattern struct {
	source string
	atoms  []predicate[atomRef]
	bonds  []queryBond
	adj    [][]int // query bond indices per query atom
	order  []int   // match order: depth first from atom 0
	parent []int   // query atom through which each atom is reached, -1 for roots
}

// CompilePattern parses a SMARTS string.
func CompilePattern(smarts string) (*Pattern, error) {
	s := strings.TrimSpace(smarts)
	if s == "" {
		return nil, fmt.Errorf("%w: empty pattern", ErrInvalidPattern)
	}
	p := &smartsParser{src: s, rings: map[int]smartsRing{}, prev: -1}
	if err := p.parse(); err != nil {
		return nil, err
	}
	p.pat.source = s
	p.pat.plan()
	return &p.pat, nil
}

// MustCompilePattern is like CompilePattern but panics on error.
func MustCompilePattern(smarts string) *Pattern {
	p, err := CompilePattern(smarts)
	if err != nil {
		panic(err)
	}
	return p
}

// String returns the source SMARTS.
func (p *Pattern) String() string { return p.source }

// AtomCount returns the number of query atoms.
func (p *Pattern) AtomCount() int { return len(p.atoms) }

func (p *Pattern) plan() {
	n := len(p.atoms)
	p.parent = make([]int, n)
	seen := make([]bool, n)
	for root := 0; root < n; root++ {
		if seen[root] {
			continue
		}
		p.parent[root] = -1
		stack := []int{root}
		seen[root] = true
		for len(stack) > 0 {
			u := stack[len(stack)-1]
			stack = stack[:len(stack)-1]
			p.order = append(p.order, u)
			for k := len(p.adj[u]) - 1; k >= 0; k-- {
				qb := p.bonds[p.adj[u][k]]
				v := qb.a
				if v == u {
					v = qb.b
				}
				if !seen[v] {
					seen[v] = true
					p.parent[v] = u
					stack = append(stack, v)
				}
			}
		}
	}
}

// ---------------------------------------------------------------------------
// SMARTS parser
// ---------------------------------------------------------------------------

type smartsRing struct {
	atom  int
	match predicate[Bond]
}

type smartsParser struct {
	src      string
	pos      int
	pat      Pattern
	prev     int
	branches []int
	pending  predicate[Bond]
	rings    map[int]smartsRing
}

func (s *smartsParser) peek() byte { return s.src[s.pos] }

func (s *smartsParser) errorf(format string, args ...interface{}) error {
	return fmt.Errorf("%w at position %d: %s", ErrInvalidPattern, s.pos, fmt.Sprintf(format, args...))
}

const smartsBondChars = "-=#$:~@/\\!&,;"

func (s *smartsParser) parse() error {
	for s.pos < len(s.src) {
		c := s.src[s.pos]
		switch {
		case c == '(':
			if s.prev < 0 {
				return s.errorf("branch without preceding atom")
			}
			s.branches = append(s.branches, s.prev)
			s.pos++
		case c == ')':
			if len(s.branches) == 0 || s.pending != nil {
				return s.errorf("unbalanced ')'")
			}
			s.prev = s.branches[len(s.branches)-1]
			s.branches = s.branches[:len(s.branches)-1]
			s.pos++
		case c == '.':
			if s.pending != nil || len(s.branches) > 0 {
				return s.errorf("misplaced '.'")
			}
			s.prev = -1
			s.pos++
		case strings.IndexByte(smartsBondChars, c) >= 0:
			if s.pending != nil || s.prev < 0 {
				return s.errorf("misplaced bond %q", c)
			}
			atEnd := func() bool {
				return s.pos >= len(s.src) || strings.IndexByte(smartsBondChars, s.src[s.pos]) < 0
			}
			expr, err := parseLowAnd(s, atEnd, s.bondPrimitive)
			if err != nil {
				return err
			}
			s.pending = expr
		case isDigit(c) || c == '%':
			if err := s.ringBond(); err != nil {
				return err
			}
		case c == '[':
			s.pos++
			atEnd := func() bool { return s.pos >= len(s.src) || s.src[s.pos] == ']' }
			expr, err := parseLowAnd(s, atEnd, s.atomPrimitive)
			if err != nil {
				return err
			}
			if s.pos >= len(s.src) {
				return s.errorf("missing ']'")
			}
			s.pos++
			s.addAtom(expr)
		default:
			expr, ok := s.organicAtom()
			if !ok {
				return s.errorf("unexpected %q", c)
			}
			s.addAtom(expr)
		}
	}
	if len(s.branches) > 0 || len(s.rings) > 0 || s.pending != nil {
		return s.errorf("unterminated pattern")
	}
	if len(s.pat.atoms) == 0 {
		return s.errorf("no atoms")
	}
	return nil
}

func (s *smartsParser) addBond(a, b int, match predicate[Bond]) {
	if match == nil {
		match = func(bd Bond) bool { return bd.Order == BondSingle || bd.Order == BondAromatic }
	}
	idx := len(s.pat.bonds)
	s.pat.bonds = append(s.pat.bonds, queryBond{a: a, b: b, match: match})
	s.pat.adj[a] = append(s.pat.adj[a], idx)
	s.pat.adj[b] = append(s.pat.adj[b], idx)
}

func (s *smartsParser) addAtom(expr predicate[atomRef]) {
	idx := len(s.pat.atoms)
	s.pat.atoms = append(s.pat.atoms, expr)
	s.pat.adj = append(s.pat.adj, nil)
	if s.prev >= 0 {
		s.addBond(s.prev, idx, s.pending)
	}
	s.pending = nil
	s.prev = idx
}

func (s *smartsParser) ringBond() error {
	if s.prev < 0 {
		return s.errorf("ring bond without atom")
	}
	var num int
	if s.src[s.pos] == '%' {
		if s.pos+3 > len(s.src) {
			return s.errorf("truncated ring number")
		}
		n, err := strconv.Atoi(s.src[s.pos+1 : s.pos+3])
		if err != nil {
			return s.errorf("bad ring number")
		}
		num = n
		s.pos += 3
	} else {
		num = int(s.src[s.pos] - '0')
		s.pos++
	}
	bond := s.pending
	s.pending = nil
	open, ok := s.rings[num]
	if !ok {
		s.rings[num] = smartsRing{atom: s.prev, match: bond}
		return nil
	}
	delete(s.rings, num)
	if open.atom == s.prev {
		return s.errorf("ring %d closes on its own atom", num)
	}
	if bond == nil {
		bond = open.match
	}
	s.addBond(open.atom, s.prev, bond)
	return nil
}

func elementIs(number int, aromatic bool) predicate[atomRef] {
	return func(r atomRef) bool {
		a := r.g.Atoms[r.i]
		return a.Number == number && a.Aromatic == aromatic
	}
}

func (s *smartsParser) organicAtom() (predicate[atomRef], bool) {
	c := s.src[s.pos]
	next := byte(0)
	if s.pos+1 < len(s.src) {
		next = s.src[s.pos+1]
	}
	switch c {
	case '*':
		s.pos++
		return func(atomRef) bool { return true }, true
	case 'a':
		s.pos++
		return func(r atomRef) bool { return r.g.Atoms[r.i].Aromatic }, true
	case 'A':
		s.pos++
		return func(r atomRef) bool { return !r.g.Atoms[r.i].Aromatic }, true
	case 'B':
		if next == 'r' {
			s.pos += 2
			return elementIs(35, false), true
		}
		s.pos++
		return elementIs(5, false), true
	case 'C':
		if next == 'l' {
			s.pos += 2
			return elementIs(17, false), true
		}
		s.pos++
		return elementIs(6, false), true
	case 'N', 'O', 'S', 'P', 'F', 'I':
		s.pos++
		return elementIs(atomicNumberMap[string(c)], false), true
	case 'b', 'c', 'n', 'o', 's', 'p':
		s.pos++
		return elementIs(atomicNumberMap[strings.ToUpper(string(c))], true), true
	}
	return nil, false
}

func (s *smartsParser) readNumber() (int, bool) {
	start := s.pos
	for s.pos < len(s.src) && isDigit(s.src[s.pos]) {
		s.pos++
	}
	if s.pos == start {
		return 0, false
	}
	n, _ := strconv.Atoi(s.src[start:s.pos])
	return n, true
}

func (s *smartsParser) numberOr(def int) int {
	if n, ok := s.readNumber(); ok {
		return n
	}
	return def
}

// hydrogenElement reports whether an 'H' at the current position names the
// element rather than a hydrogen count: it must open the bracket, optionally
// after an isotope.
func (s *smartsParser) hydrogenElement() bool {
	k := s.pos - 1
	for k >= 0 && isDigit(s.src[k]) {
		k--
	}
	return k >= 0 && s.src[k] == '['
}

func (s *smartsParser) atomPrimitive() (predicate[atomRef], error) {
	c := s.peek()
	switch {
	case c == '*':
		s.pos++
		return func(atomRef) bool { return true }, nil
	case c == 'a':
		s.pos++
		return func(r atomRef) bool { return r.g.Atoms[r.i].Aromatic }, nil
	case c == 'A':
		s.pos++
		return func(r atomRef) bool { return !r.g.Atoms[r.i].Aromatic }, nil
	case c == '#':
		s.pos++
		n, ok := s.readNumber()
		if !ok {
			return nil, s.errorf("'#' without atomic number")
		}
		return func(r atomRef) bool { return r.g.Atoms[r.i].Number == n }, nil
	case c == 'D':
		s.pos++
		n := s.numberOr(1)
		return func(r atomRef) bool { return r.g.Degree(r.i) == n }, nil
	case c == 'X':
		s.pos++
		n := s.numberOr(1)
		return func(r atomRef) bool { return r.g.Degree(r.i)+r.g.Atoms[r.i].HCount == n }, nil
	case c == 'H' && s.hydrogenElement():
		s.pos++
		return func(r atomRef) bool { return r.g.Atoms[r.i].Number == 1 }, nil
	case c == 'H' || c == 'h':
		s.pos++
		n := s.numberOr(1)
		return func(r atomRef) bool { return r.g.Atoms[r.i].HCount == n }, nil
	case c == 'R':
		s.pos++
		n, ok := s.readNumber()
		switch {
		case !ok:
			return func(r atomRef) bool { return r.g.inRing(r.i) }, nil
		case n == 0:
			return func(r atomRef) bool { return !r.g.inRing(r.i) }, nil
		default:
			return func(r atomRef) bool { return len(r.g.ringSizes[r.i]) == n }, nil
		}
	case c == 'r':
		s.pos++
		n, ok := s.readNumber()
		switch {
		case !ok:
			return func(r atomRef) bool { return r.g.inRing(r.i) }, nil
		case n == 0:
			return func(r atomRef) bool { return !r.g.inRing(r.i) }, nil
		default:
			return func(r atomRef) bool { return r.g.inRingOfSize(r.i, n) }, nil
		}
	case c == 'v':
		s.pos++
		n := s.numberOr(1)
		return func(r atomRef) bool { return r.g.valenceSum(r.i)+r.g.Atoms[r.i].HCount == n }, nil
	case c == 'x':
		s.pos++
		n, ok := s.readNumber()
		if !ok {
			return func(r atomRef) bool { return r.g.ringBondCount(r.i) > 0 }, nil
		}
		return func(r atomRef) bool { return r.g.ringBondCount(r.i) == n }, nil
	case c == '+' || c == '-':
		s.pos++
		sign := 1
		if c == '-' {
			sign = -1
		}
		n, ok := s.readNumber()
		if !ok {
			n = 1
			for s.pos < len(s.src) && s.src[s.pos] == c {
				n++
				s.pos++
			}
		}
		charge := sign * n
		return func(r atomRef) bool { return r.g.Atoms[r.i].Charge == charge }, nil
	case isDigit(c):
		n, _ := s.readNumber()
		return func(r atomRef) bool { return r.g.Atoms[r.i].Isotope == n }, nil
	case c == '@':
		for s.pos < len(s.src) && (s.src[s.pos] == '@' || s.src[s.pos] == '?') {
			s.pos++
		}
		return func(atomRef) bool { return true }, nil
	case c == ':':
		s.pos++
		s.numberOr(0)
		return func(atomRef) bool { return true }, nil
	case c == '$':
		return s.recursive()
	case isUpper(c):
		sym := s.src[s.pos : s.pos+1]
		if s.pos+1 < len(s.src) && isLower(s.src[s.pos+1]) {
			if n := lookupAtomicNumber(s.src[s.pos : s.pos+2]); n >= 0 {
				sym = s.src[s.pos : s.pos+2]
			}
		}
		n := lookupAtomicNumber(sym)
		if n < 0 {
			return nil, s.errorf("unknown element %q", sym)
		}
		s.pos += len(sym)
		return elementIs(n, false), nil
	case isLower(c):
		if s.pos+1 < len(s.src) && isLower(s.src[s.pos+1]) {
			two := strings.ToUpper(s.src[s.pos:s.pos+1]) + s.src[s.pos+1:s.pos+2]
			if n := lookupAtomicNumber(two); n >= 0 && aromaticCapable[n] {
				s.pos += 2
				return elementIs(n, true), nil
			}
		}
		n := lookupAtomicNumber(strings.ToUpper(s.src[s.pos : s.pos+1]))
		if n < 0 || !aromaticCapable[n] {
			return nil, s.errorf("unknown aromatic element %q", c)
		}
		s.pos++
		return elementIs(n, true), nil
	}
	return nil, s.errorf("unexpected %q in atom expression", c)
}

// recursive compiles a $(...) environment; the first atom of the inner
// pattern is anchored on the atom being tested.
func (s *smartsParser) recursive() (predicate[atomRef], error) {
	if s.pos+1 >= len(s.src) || s.src[s.pos+1] != '(' {
		return nil, s.errorf("'$' must be followed by '('")
	}
	depth := 0
	start := s.pos + 2
	for k := s.pos + 1; k < len(s.src); k++ {
		switch s.src[k] {
		case '(':
			depth++
		case ')':
			depth--
			if depth == 0 {
				inner, err := CompilePattern(s.src[start:k])
				if err != nil {
					return nil, err
				}
				s.pos = k + 1
				return func(r atomRef) bool { return inner.matchAt(r.g, r.i) }, nil
			}
		}
	}
	return nil, s.errorf("unterminated $(")
}

func (s *smartsParser) bondPrimitive() (predicate[Bond], error) {
	c := s.peek()
	s.pos++
	switch c {
	case '-', '/', '\\':
		return func(b Bond) bool { return b.Order == BondSingle }, nil
	case '=':
		return func(b Bond) bool { return b.Order == BondDouble }, nil
	case '#':
		return func(b Bond) bool { return b.Order == BondTriple }, nil
	case '$':
		return func(b Bond) bool { return b.Order == BondQuadruple }, nil
	case ':':
		return func(b Bond) bool { return b.Order == BondAromatic }, nil
	case '~':
		return func(Bond) bool { return true }, nil
	case '@':
		return func(b Bond) bool { return b.InRing }, nil
	}
	s.pos--
	return nil, s.errorf("unexpected %q in bond expression", c)
}

//Personal.AI order the ending
