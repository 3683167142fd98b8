// Package periodic provides the element reference data used by the
// coordinate codec and the species consistency validator: symbol/atomic
// number lookups and canonical (most abundant) isotope mass numbers for
// elements 1–118.
package periodic

// element pairs an atomic number with the mass number of the element's most
// abundant isotope.  For elements with no stable isotope the most stable
// nuclide is used, matching the convention of quantum-chemistry element
// tables.
type element struct {
	number       int
	mostAbundant int
}

var bySymbol = map[string]element{
	"H": {1, 1}, "He": {2, 4}, "Li": {3, 7}, "Be": {4, 9}, "B": {5, 11},
	"C": {6, 12}, "N": {7, 14}, "O": {8, 16}, "F": {9, 19}, "Ne": {10, 20},
	"Na": {11, 23}, "Mg": {12, 24}, "Al": {13, 27}, "Si": {14, 28}, "P": {15, 31},
	"S": {16, 32}, "Cl": {17, 35}, "Ar": {18, 40}, "K": {19, 39}, "Ca": {20, 40},
	"Sc": {21, 45}, "Ti": {22, 48}, "V": {23, 51}, "Cr": {24, 52}, "Mn": {25, 55},
	"Fe": {26, 56}, "Co": {27, 59}, "Ni": {28, 58}, "Cu": {29, 63}, "Zn": {30, 64},
	"Ga": {31, 69}, "Ge": {32, 74}, "As": {33, 75}, "Se": {34, 80}, "Br": {35, 79},
	"Kr": {36, 84}, "Rb": {37, 85}, "Sr": {38, 88}, "Y": {39, 89}, "Zr": {40, 90},
	"Nb": {41, 93}, "Mo": {42, 98}, "Tc": {43, 98}, "Ru": {44, 102}, "Rh": {45, 103},
	"Pd": {46, 106}, "Ag": {47, 107}, "Cd": {48, 114}, "In": {49, 115}, "Sn": {50, 120},
	"Sb": {51, 121}, "Te": {52, 130}, "I": {53, 127}, "Xe": {54, 132}, "Cs": {55, 133},
	"Ba": {56, 138}, "La": {57, 139}, "Ce": {58, 140}, "Pr": {59, 141}, "Nd": {60, 142},
	"Pm": {61, 145}, "Sm": {62, 152}, "Eu": {63, 153}, "Gd": {64, 158}, "Tb": {65, 159},
	"Dy": {66, 164}, "Ho": {67, 165}, "Er": {68, 166}, "Tm": {69, 169}, "Yb": {70, 174},
	"Lu": {71, 175}, "Hf": {72, 180}, "Ta": {73, 181}, "W": {74, 184}, "Re": {75, 187},
	"Os": {76, 192}, "Ir": {77, 193}, "Pt": {78, 195}, "Au": {79, 197}, "Hg": {80, 202},
	"Tl": {81, 205}, "Pb": {82, 208}, "Bi": {83, 209}, "Po": {84, 209}, "At": {85, 210},
	"Rn": {86, 222}, "Fr": {87, 223}, "Ra": {88, 226}, "Ac": {89, 227}, "Th": {90, 232},
	"Pa": {91, 231}, "U": {92, 238}, "Np": {93, 237}, "Pu": {94, 244}, "Am": {95, 243},
	"Cm": {96, 247}, "Bk": {97, 247}, "Cf": {98, 251}, "Es": {99, 252}, "Fm": {100, 257},
	"Md": {101, 258}, "No": {102, 259}, "Lr": {103, 262}, "Rf": {104, 267}, "Db": {105, 268},
	"Sg": {106, 271}, "Bh": {107, 272}, "Hs": {108, 270}, "Mt": {109, 276}, "Ds": {110, 281},
	"Rg": {111, 280}, "Cn": {112, 285}, "Nh": {113, 284}, "Fl": {114, 289}, "Mc": {115, 288},
	"Lv": {116, 293}, "Ts": {117, 294}, "Og": {118, 294},
}

var byNumber = func() map[int]string {
	m := make(map[int]string, len(bySymbol))
	for sym, el := range bySymbol {
		m[el.number] = sym
	}
	return m
}()

// IsElement reports whether symbol is a recognized periodic-table symbol.
// Lookups are case-sensitive on the canonical capitalization ("Cl", not "CL").
func IsElement(symbol string) bool {
	_, ok := bySymbol[symbol]
	return ok
}

// SymbolToNumber returns the atomic number for a canonical element symbol.
func SymbolToNumber(symbol string) (int, bool) {
	el, ok := bySymbol[symbol]
	if !ok {
		return 0, false
	}
	return el.number, true
}

// NumberToSymbol returns the canonical symbol for an atomic number in 1–118.
func NumberToSymbol(z int) (string, bool) {
	sym, ok := byNumber[z]
	return sym, ok
}

// MostAbundantIsotope returns the canonical default mass number for the
// element: the most abundant isotope, or the most stable nuclide for
// elements with no stable isotope.
func MostAbundantIsotope(symbol string) (int, bool) {
	el, ok := bySymbol[symbol]
	if !ok {
		return 0, false
	}
	return el.mostAbundant, true
}

// IsPlausibleIsotope reports whether mass number a is physically possible
// for the element: at least one nucleon per proton and no heavier than the
// 4Z+4 bound, which covers every observed nuclide.
func IsPlausibleIsotope(symbol string, a int) bool {
	el, ok := bySymbol[symbol]
	if !ok {
		return false
	}
	return a >= el.number && a <= 4*el.number+4
}
