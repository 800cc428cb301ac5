package molecule

// ---------------------------------------------------------------------------
// Element tables
// ---------------------------------------------------------------------------

// elementSymbols lists element symbols indexed by atomic number.
var elementSymbols = []string{
	"*",
	"H", "He",
	"Li", "Be", "B", "C", "N", "O", "F", "Ne",
	"Na", "Mg", "Al", "Si", "P", "S", "Cl", "Ar",
	"K", "Ca", "Sc", "Ti", "V", "Cr", "Mn", "Fe", "Co", "Ni", "Cu", "Zn",
	"Ga", "Ge", "As", "Se", "Br", "Kr",
	"Rb", "Sr", "Y", "Zr", "Nb", "Mo", "Tc", "Ru", "Rh", "Pd", "Ag", "Cd",
	"In", "Sn", "Sb", "Te", "I", "Xe",
	"Cs", "Ba", "La", "Ce", "Pr", "Nd", "Pm", "Sm", "Eu", "Gd", "Tb", "Dy",
	"Ho", "Er", "Tm", "Yb", "Lu", "Hf", "Ta", "W", "Re", "Os", "Ir", "Pt",
	"Au", "Hg", "Tl", "Pb", "Bi", "Po", "At", "Rn",
	"Fr", "Ra", "Ac", "Th", "Pa", "U", "Np", "Pu", "Am", "Cm", "Bk", "Cf",
	"Es", "Fm", "Md", "No", "Lr", "Rf", "Db", "Sg", "Bh", "Hs", "Mt", "Ds",
	"Rg", "Cn", "Nh", "Fl", "Mc", "Lv", "Ts", "Og",
}

// atomicNumberMap maps element symbols to atomic numbers.
var atomicNumberMap = func() map[string]int {
	m := make(map[string]int, len(elementSymbols))
	for i, s := range elementSymbols {
		m[s] = i
	}
	return m
}()

// organicValences holds the allowed valences of the SMILES organic subset,
// lowest first.  Atoms outside this table must be written in brackets.
var organicValences = map[int][]int{
	5:  {3},       // B
	6:  {4},       // C
	7:  {3, 5},    // N
	8:  {2},       // O
	9:  {1},       // F
	15: {3, 5},    // P
	16: {2, 4, 6}, // S
	17: {1},       // Cl
	35: {1},       // Br
	53: {1},       // I
}

// aromaticCapable lists the elements that may carry a lowercase aromatic symbol.
var aromaticCapable = map[int]bool{
	5: true, 6: true, 7: true, 8: true, 15: true, 16: true, 33: true, 34: true, 52: true,
}

// aromaticOrganic lists the lowercase symbols allowed outside brackets.
var aromaticOrganic = map[int]bool{
	5: true, 6: true, 7: true, 8: true, 15: true, 16: true,
}

// lookupAtomicNumber returns the atomic number for a symbol, or -1 if unknown.
func lookupAtomicNumber(symbol string) int {
	if n, ok := atomicNumberMap[symbol]; ok {
		return n
	}
	return -1
}

// symbolFor returns the element symbol for an atomic number.
func symbolFor(number int) string {
	if number < 0 || number >= len(elementSymbols) {
		return "*"
	}
	return elementSymbols[number]
}

// implicitHydrogens returns the implicit hydrogen count of an organic-subset
// atom given the sum of its explicit bond orders (aromatic bonds count one).
// ok is false when the bond order sum exceeds every allowed valence.
func implicitHydrogens(number int, aromatic bool, bondSum int) (h int, ok bool) {
	valences, known := organicValences[number]
	if !known {
		return 0, true
	}
	maxValence := valences[len(valences)-1]
	if bondSum > maxValence {
		return 0, false
	}
	if aromatic {
		h = valences[0] - bondSum - 1
		if h < 0 {
			h = 0
		}
		return h, true
	}
	for _, v := range valences {
		if v >= bondSum {
			return v - bondSum, true
		}
	}
	return 0, true
}

//Personal.AI order the ending
