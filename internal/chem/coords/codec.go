// Package coords implements the coordinate codec: bidirectional conversion
// between the structured atomic-coordinate record and the plain-text
// coordinate block, with optional Gaussian-style per-atom isotope annotation.
package coords

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/tckdb/tckdb-go/internal/chem/periodic"
	"github.com/tckdb/tckdb-go/pkg/errors"
	"github.com/tckdb/tckdb-go/pkg/types/species"
)

// IsotopeStyle selects how non-default isotopes are annotated by Format.
type IsotopeStyle string

const (
	// IsotopeNone suppresses all isotope annotation regardless of mismatch.
	IsotopeNone IsotopeStyle = ""

	// IsotopeGaussian emits Gaussian-style "Symbol(Iso=N)" annotations for
	// atoms whose isotope differs from the element's most abundant one.
	IsotopeGaussian IsotopeStyle = "gaussian"
)

// Parse converts a text coordinate block into a structured record.  Two
// layouts are accepted:
//
//   - a 6-column numeric layout (index, atomic number, unused, x, y, z),
//     chosen when every non-blank line splits into exactly 6 tokens; isotopes
//     are not representable in this form and default per element;
//   - a 4-column symbol layout "Symbol[(Iso=N)]  x  y  z", where an isotope
//     suffix sets that atom's isotope explicitly.
//
// Commas are treated as whitespace before splitting.  A wrong token count, an
// unrecognized element, or a non-numeric coordinate yields a format error.
func Parse(text string) (*species.Coordinates, error) {
	text = strings.ReplaceAll(text, ",", " ")

	var lines []string
	for _, line := range strings.Split(text, "\n") {
		if strings.TrimSpace(line) != "" {
			lines = append(lines, line)
		}
	}

	rec := &species.Coordinates{}

	if allSixColumns(lines) {
		for _, line := range lines {
			fields := strings.Fields(line)
			z, err := strconv.Atoi(fields[1])
			if err != nil {
				return nil, errors.Newf(errors.ErrCodeCoordFormat,
					"expected an atomic number in column 2, got %q in line %q", fields[1], line)
			}
			symbol, ok := periodic.NumberToSymbol(z)
			if !ok {
				return nil, errors.Newf(errors.ErrCodeCoordFormat,
					"unrecognized atomic number %d in line %q", z, line)
			}
			coord, err := parseTriple(fields[3], fields[4], fields[5])
			if err != nil {
				return nil, errors.Wrap(err, errors.ErrCodeCoordFormat,
					fmt.Sprintf("non-numeric coordinate in line %q", line))
			}
			defaultA, _ := periodic.MostAbundantIsotope(symbol)
			rec.Symbols = append(rec.Symbols, symbol)
			rec.Isotopes = append(rec.Isotopes, defaultA)
			rec.Coords = append(rec.Coords, coord)
		}
		return rec, nil
	}

	for _, line := range lines {
		fields := strings.Fields(line)
		if len(fields) != 4 {
			return nil, errors.Newf(errors.ErrCodeCoordFormat,
				"expected 4 elements in each line, got %d in line %q", len(fields), line)
		}
		symbol, isotope, err := parseSymbolToken(fields[0])
		if err != nil {
			return nil, err
		}
		coord, err := parseTriple(fields[1], fields[2], fields[3])
		if err != nil {
			return nil, errors.Wrap(err, errors.ErrCodeCoordFormat,
				fmt.Sprintf("non-numeric coordinate in line %q", line))
		}
		rec.Symbols = append(rec.Symbols, symbol)
		rec.Isotopes = append(rec.Isotopes, isotope)
		rec.Coords = append(rec.Coords, coord)
	}
	return rec, nil
}

// allSixColumns reports whether every line splits into exactly 6 tokens.
// Vacuously true for an empty block, which parses to an empty record.
func allSixColumns(lines []string) bool {
	for _, line := range lines {
		if len(strings.Fields(line)) != 6 {
			return false
		}
	}
	return true
}

// parseSymbolToken splits "Symbol" or "Symbol(Iso=N)" into the element
// symbol and the atom's isotope mass number.
func parseSymbolToken(token string) (string, int, error) {
	symbol := token
	isotope := 0
	if i := strings.Index(strings.ToLower(token), "(iso="); i >= 0 {
		raw := strings.TrimSuffix(token[i+len("(iso="):], ")")
		a, err := strconv.Atoi(strings.TrimSpace(raw))
		if err != nil || a <= 0 {
			return "", 0, errors.Newf(errors.ErrCodeCoordFormat,
				"invalid isotope annotation %q", token)
		}
		symbol = token[:i]
		isotope = a
	}
	if !periodic.IsElement(symbol) {
		return "", 0, errors.Newf(errors.ErrCodeCoordFormat,
			"unrecognized element symbol %q", symbol)
	}
	if isotope == 0 {
		isotope, _ = periodic.MostAbundantIsotope(symbol)
	}
	return symbol, isotope, nil
}

func parseTriple(xs, ys, zs string) ([3]float64, error) {
	var out [3]float64
	for i, s := range []string{xs, ys, zs} {
		v, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return out, fmt.Errorf("parsing %q: %w", s, err)
		}
		out[i] = v
	}
	return out, nil
}

// Format converts a structured record into the canonical text block: one
// line per atom, symbol left-padded to a fixed column width followed by the
// three coordinates at 8-decimal precision in 14-character fields.
//
// When style is IsotopeGaussian, atoms whose isotope differs from the
// element's most abundant one are written as "Symbol(Iso=N)" padded to 14
// columns.  IsotopeNone suppresses all annotation.  Any other style is
// rejected.
func Format(rec *species.Coordinates, style IsotopeStyle) (string, error) {
	if rec == nil {
		return "", errors.New(errors.ErrCodeCoordFormat, "coordinate record is nil")
	}
	if style != IsotopeNone && style != IsotopeGaussian {
		return "", errors.Newf(errors.ErrCodeCoordFormat,
			"unrecognized isotope style %q, supported styles are [%s]", style, IsotopeGaussian)
	}
	if len(rec.Isotopes) != len(rec.Symbols) || len(rec.Coords) != len(rec.Symbols) {
		return "", errors.Newf(errors.ErrCodeCoordFormat,
			"got different lengths for symbols, isotopes, and coords: %d, %d, and %d",
			len(rec.Symbols), len(rec.Isotopes), len(rec.Coords))
	}

	rows := make([]string, 0, len(rec.Symbols))
	for i, symbol := range rec.Symbols {
		defaultA, ok := periodic.MostAbundantIsotope(symbol)
		if !ok {
			return "", errors.Newf(errors.ErrCodeCoordFormat,
				"unrecognized element symbol %q", symbol)
		}
		var row string
		if style == IsotopeGaussian && rec.Isotopes[i] != defaultA {
			row = fmt.Sprintf("%-14s", fmt.Sprintf("%s(Iso=%d)", symbol, rec.Isotopes[i]))
		} else {
			row = fmt.Sprintf("%-4s", symbol)
		}
		c := rec.Coords[i]
		row += fmt.Sprintf("%14.8f%14.8f%14.8f", c[0], c[1], c[2])
		rows = append(rows, row)
	}
	return strings.Join(rows, "\n"), nil
}

// BackfillIsotopes fills an absent or empty isotope sequence with each
// element's most abundant isotope, mutating the record in place.  Applying
// it twice yields the same record as applying it once.
func BackfillIsotopes(rec *species.Coordinates) error {
	if rec == nil || len(rec.Isotopes) != 0 || len(rec.Symbols) == 0 {
		return nil
	}
	isotopes := make([]int, len(rec.Symbols))
	for i, symbol := range rec.Symbols {
		a, ok := periodic.MostAbundantIsotope(symbol)
		if !ok {
			return errors.Newf(errors.ErrCodeCoordFormat,
				"unrecognized element symbol %q", symbol)
		}
		isotopes[i] = a
	}
	rec.Isotopes = isotopes
	return nil
}

// Validate checks the structural invariants of a record: parallel sequences
// of equal length, recognized element symbols, physically plausible isotopes,
// and finite coordinate values.
func Validate(rec *species.Coordinates) error {
	if rec == nil {
		return errors.New(errors.ErrCodeCoordFormat, "coordinate record is nil")
	}
	if len(rec.Symbols) == 0 {
		return errors.New(errors.ErrCodeCoordFormat, "coordinate record has no atoms")
	}
	if len(rec.Isotopes) != len(rec.Symbols) || len(rec.Coords) != len(rec.Symbols) {
		return errors.Newf(errors.ErrCodeCoordFormat,
			"got different lengths for symbols, isotopes, and coords: %d, %d, and %d",
			len(rec.Symbols), len(rec.Isotopes), len(rec.Coords))
	}
	for i, symbol := range rec.Symbols {
		if !periodic.IsElement(symbol) {
			return errors.Newf(errors.ErrCodeCoordFormat,
				"unrecognized element symbol %q at atom %d", symbol, i+1)
		}
		if !periodic.IsPlausibleIsotope(symbol, rec.Isotopes[i]) {
			return errors.Newf(errors.ErrCodeCoordFormat,
				"isotope %d is not a physically valid isotope of %s (atom %d)",
				rec.Isotopes[i], symbol, i+1)
		}
		for _, v := range rec.Coords[i] {
			if math.IsNaN(v) || math.IsInf(v, 0) {
				return errors.Newf(errors.ErrCodeCoordFormat,
					"non-finite coordinate value at atom %d", i+1)
			}
		}
	}
	return nil
}
