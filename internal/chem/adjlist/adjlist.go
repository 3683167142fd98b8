// Package adjlist parses and validates RMG-style adjacency lists: the
// graph-form molecular structure encoding atoms, bonds, electron counts, and
// spin multiplicity.  The identifier resolution pipeline uses it to check
// resolved graphs and to reconcile the embedded multiplicity header with a
// declared value.
package adjlist

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/tckdb/tckdb-go/internal/chem/periodic"
	"github.com/tckdb/tckdb-go/pkg/errors"
)

// bondOrders enumerates the recognized bond-order tokens: single, double,
// triple, quadruple, and benzene (aromatic).
var bondOrders = map[string]bool{"S": true, "D": true, "T": true, "Q": true, "B": true}

// Atom is a single entry of an adjacency list.
type Atom struct {
	// Index is the 1-based atom index as written in the list.
	Index int

	// Symbol is the element symbol.
	Symbol string

	// Unpaired, LonePairs, and Charge are the electron bookkeeping fields
	// (u, p, and c annotations).
	Unpaired  int
	LonePairs int
	Charge    int

	// Bonds maps a partner atom index to its bond-order token.
	Bonds map[int]string
}

// Graph is a parsed adjacency list.
type Graph struct {
	// HeaderMultiplicity is the value of the optional "multiplicity N"
	// header line, or 0 when the header is absent.
	HeaderMultiplicity int

	// Atoms holds the atom entries in written order.
	Atoms []Atom
}

// Multiplicity returns the graph's intrinsic spin multiplicity: the header
// value when present, otherwise one plus the total number of unpaired
// electrons.
func (g *Graph) Multiplicity() int {
	if g.HeaderMultiplicity > 0 {
		return g.HeaderMultiplicity
	}
	unpaired := 0
	for _, a := range g.Atoms {
		unpaired += a.Unpaired
	}
	return unpaired + 1
}

// Parse reads an adjacency list.  The accepted form is an optional
// "multiplicity N" header followed by one line per atom:
//
//	multiplicity 2
//	1 C u1 p0 c0 {2,S} {3,S} {4,S}
//	2 H u0 p0 c0 {1,S}
//	...
//
// Parse validates that atom indices are unique and sequential from 1, that
// element symbols are recognized, that bond partners exist, and that every
// bond is declared symmetrically with a matching order token.
func Parse(text string) (*Graph, error) {
	g := &Graph{}
	var lines []string
	for _, line := range strings.Split(text, "\n") {
		if strings.TrimSpace(line) != "" {
			lines = append(lines, strings.TrimSpace(line))
		}
	}
	if len(lines) == 0 {
		return nil, errors.New(errors.ErrCodeAdjlistFormat, "adjacency list is empty")
	}

	start := 0
	if strings.HasPrefix(lines[0], "multiplicity") {
		fields := strings.Fields(lines[0])
		if len(fields) != 2 {
			return nil, errors.Newf(errors.ErrCodeAdjlistFormat,
				"malformed multiplicity header %q", lines[0])
		}
		m, err := strconv.Atoi(fields[1])
		if err != nil || m < 1 {
			return nil, errors.Newf(errors.ErrCodeAdjlistFormat,
				"malformed multiplicity header %q", lines[0])
		}
		g.HeaderMultiplicity = m
		start = 1
	}

	seen := make(map[int]bool)
	for _, line := range lines[start:] {
		atom, err := parseAtomLine(line)
		if err != nil {
			return nil, err
		}
		if seen[atom.Index] {
			return nil, errors.Newf(errors.ErrCodeAdjlistFormat,
				"duplicate atom index %d", atom.Index)
		}
		seen[atom.Index] = true
		g.Atoms = append(g.Atoms, atom)
	}
	if len(g.Atoms) == 0 {
		return nil, errors.New(errors.ErrCodeAdjlistFormat, "adjacency list has no atoms")
	}

	for i := 1; i <= len(g.Atoms); i++ {
		if !seen[i] {
			return nil, errors.Newf(errors.ErrCodeAdjlistFormat,
				"atom indices must be sequential from 1, missing %d", i)
		}
	}

	if err := checkBondSymmetry(g); err != nil {
		return nil, err
	}
	return g, nil
}

func parseAtomLine(line string) (Atom, error) {
	atom := Atom{Bonds: make(map[int]string)}
	fields := strings.Fields(line)
	if len(fields) < 2 {
		return atom, errors.Newf(errors.ErrCodeAdjlistFormat, "malformed atom line %q", line)
	}

	idx, err := strconv.Atoi(fields[0])
	if err != nil || idx < 1 {
		return atom, errors.Newf(errors.ErrCodeAdjlistFormat,
			"invalid atom index %q in line %q", fields[0], line)
	}
	atom.Index = idx

	// An optional "*k" reaction-site label may precede the element symbol.
	pos := 1
	if strings.HasPrefix(fields[pos], "*") {
		pos++
		if pos >= len(fields) {
			return atom, errors.Newf(errors.ErrCodeAdjlistFormat, "malformed atom line %q", line)
		}
	}
	symbol := fields[pos]
	if i := strings.IndexByte(symbol, 'i'); i > 0 {
		// Isotope labels like "Ci13" carry the mass number after the symbol.
		symbol = symbol[:i]
	}
	if !periodic.IsElement(symbol) {
		return atom, errors.Newf(errors.ErrCodeAdjlistFormat,
			"unrecognized element %q in line %q", fields[pos], line)
	}
	atom.Symbol = symbol

	for _, field := range fields[pos+1:] {
		switch {
		case strings.HasPrefix(field, "u"):
			if atom.Unpaired, err = strconv.Atoi(field[1:]); err != nil || atom.Unpaired < 0 {
				return atom, errors.Newf(errors.ErrCodeAdjlistFormat,
					"invalid unpaired-electron count %q in line %q", field, line)
			}
		case strings.HasPrefix(field, "p"):
			if atom.LonePairs, err = strconv.Atoi(field[1:]); err != nil || atom.LonePairs < 0 {
				return atom, errors.Newf(errors.ErrCodeAdjlistFormat,
					"invalid lone-pair count %q in line %q", field, line)
			}
		case strings.HasPrefix(field, "c"):
			if atom.Charge, err = strconv.Atoi(strings.TrimPrefix(field[1:], "+")); err != nil {
				return atom, errors.Newf(errors.ErrCodeAdjlistFormat,
					"invalid charge %q in line %q", field, line)
			}
		case strings.HasPrefix(field, "{"):
			partner, order, err := parseBond(field)
			if err != nil {
				return atom, errors.Wrap(err, errors.ErrCodeAdjlistFormat,
					fmt.Sprintf("invalid bond in line %q", line))
			}
			atom.Bonds[partner] = order
		default:
			return atom, errors.Newf(errors.ErrCodeAdjlistFormat,
				"unrecognized token %q in line %q", field, line)
		}
	}
	return atom, nil
}

func parseBond(field string) (int, string, error) {
	inner := strings.TrimSuffix(strings.TrimPrefix(field, "{"), "}")
	parts := strings.Split(inner, ",")
	if len(parts) != 2 {
		return 0, "", fmt.Errorf("expected {partner,order}, got %q", field)
	}
	partner, err := strconv.Atoi(strings.TrimSpace(parts[0]))
	if err != nil || partner < 1 {
		return 0, "", fmt.Errorf("invalid bond partner in %q", field)
	}
	order := strings.TrimSpace(parts[1])
	if !bondOrders[order] {
		return 0, "", fmt.Errorf("unrecognized bond order %q in %q", order, field)
	}
	return partner, order, nil
}

func checkBondSymmetry(g *Graph) error {
	byIndex := make(map[int]Atom, len(g.Atoms))
	for _, a := range g.Atoms {
		byIndex[a.Index] = a
	}
	for _, a := range g.Atoms {
		for partner, order := range a.Bonds {
			if partner == a.Index {
				return errors.Newf(errors.ErrCodeAdjlistFormat,
					"atom %d is bonded to itself", a.Index)
			}
			b, ok := byIndex[partner]
			if !ok {
				return errors.Newf(errors.ErrCodeAdjlistFormat,
					"atom %d is bonded to nonexistent atom %d", a.Index, partner)
			}
			back, ok := b.Bonds[a.Index]
			if !ok {
				return errors.Newf(errors.ErrCodeAdjlistFormat,
					"bond %d-%d is not declared symmetrically", a.Index, partner)
			}
			if back != order {
				return errors.Newf(errors.ErrCodeAdjlistFormat,
					"bond %d-%d has conflicting orders %s and %s", a.Index, partner, order, back)
			}
		}
	}
	return nil
}

// RewriteMultiplicity returns the adjacency list text with its multiplicity
// header replaced (or prepended) so that it declares the given value.  The
// atom lines are preserved byte for byte.
func RewriteMultiplicity(text string, multiplicity int) string {
	lines := strings.Split(text, "\n")
	for i, line := range lines {
		if strings.TrimSpace(line) == "" {
			continue
		}
		if strings.HasPrefix(strings.TrimSpace(line), "multiplicity") {
			lines = append(lines[:i], lines[i+1:]...)
		}
		break
	}
	body := strings.TrimLeft(strings.Join(lines, "\n"), "\n")
	return fmt.Sprintf("multiplicity %d\n%s", multiplicity, body)
}
