// Package species defines all species-domain Data Transfer Objects and
// request/response structures used across every layer of the TCKDB backend.
// No domain logic lives here — only plain data types that are safe to import
// from any layer without creating circular dependencies.
package species

import (
	"encoding/json"
	"fmt"

	"github.com/tckdb/tckdb-go/pkg/types/common"
)

// ─────────────────────────────────────────────────────────────────────────────
// Coordinates — structured Cartesian geometry
// ─────────────────────────────────────────────────────────────────────────────

// Coordinates is the structured atomic-coordinate record: three parallel
// ordered sequences of equal length N (N = atom count).  Isotopes may be
// omitted on input; the resolution pass back-fills each element's most
// abundant isotope before validation.
type Coordinates struct {
	// Symbols holds one periodic-table element symbol per atom.
	Symbols []string `json:"symbols"`

	// Isotopes holds one mass number per atom.  Empty on input means
	// "use each element's most abundant isotope".
	Isotopes []int `json:"isotopes,omitempty"`

	// Coords holds one (x, y, z) triple per atom, in Ångström.
	Coords [][3]float64 `json:"coords"`
}

// AtomCount returns the number of atoms described by the record.
func (c *Coordinates) AtomCount() int {
	if c == nil {
		return 0
	}
	return len(c.Symbols)
}

// Clone returns a deep copy, so that normalization of one candidate never
// mutates another record sharing the same backing arrays.
func (c *Coordinates) Clone() *Coordinates {
	if c == nil {
		return nil
	}
	out := &Coordinates{
		Symbols: append([]string(nil), c.Symbols...),
		Coords:  append([][3]float64(nil), c.Coords...),
	}
	if c.Isotopes != nil {
		out.Isotopes = append([]int(nil), c.Isotopes...)
	}
	return out
}

// ─────────────────────────────────────────────────────────────────────────────
// Fragment orientation
// ─────────────────────────────────────────────────────────────────────────────

// Orientation describes the placement of one fragment relative to the first:
// a center-of-mass vector plus three orientation angles.  A species with K
// fragments carries exactly K−1 orientation entries.
type Orientation struct {
	// CM is the center-of-mass translation vector (3 components).
	CM []float64 `json:"cm"`

	// X, Y, Z are the rotation angles about the respective axes.
	X float64 `json:"x"`
	Y float64 `json:"y"`
	Z float64 `json:"z"`
}

// UnmarshalJSON enforces the fixed key vocabulary {cm, x, y, z}: extra or
// missing keys and non-scalar angle values are rejected at decode time.
func (o *Orientation) UnmarshalJSON(data []byte) error {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	if len(raw) != 4 {
		return fmt.Errorf("fragment orientation requires exactly the keys cm, x, y, and z, got %d keys", len(raw))
	}
	for _, key := range []string{"cm", "x", "y", "z"} {
		if _, ok := raw[key]; !ok {
			return fmt.Errorf("fragment orientation is missing the %q key", key)
		}
	}
	if err := json.Unmarshal(raw["cm"], &o.CM); err != nil {
		return fmt.Errorf("fragment orientation cm must be a vector: %w", err)
	}
	for key, dest := range map[string]*float64{"x": &o.X, "y": &o.Y, "z": &o.Z} {
		if err := json.Unmarshal(raw[key], dest); err != nil {
			return fmt.Errorf("fragment orientation %s must be a scalar: %w", key, err)
		}
	}
	return nil
}

// ─────────────────────────────────────────────────────────────────────────────
// Chirality
// ─────────────────────────────────────────────────────────────────────────────

// ChiralityEntry maps one stereocenter (one atom index for an atom center,
// two for a double bond) to its stereo-descriptor token.  Atom indices are
// 1-based into the coordinate record.
type ChiralityEntry struct {
	Atoms    []int  `json:"atoms"`
	Notation string `json:"notation"`
}

// ─────────────────────────────────────────────────────────────────────────────
// Job bookkeeping
// ─────────────────────────────────────────────────────────────────────────────

// UnconvergedJob reports an electronic-structure job that failed to converge.
// Keys are restricted to {job type, issue, troubleshooting, comment, path};
// "job type" and "path" are mandatory.
type UnconvergedJob map[string]string

// ScanPath associates a set of torsion quadruples (1-based atom indices)
// with the path to the corresponding rotor-scan log file.
type ScanPath struct {
	Torsions [][4]int `json:"torsions"`
	Path     string   `json:"path"`
}

// ─────────────────────────────────────────────────────────────────────────────
// Identifier set
// ─────────────────────────────────────────────────────────────────────────────

// IdentifierSet holds the four optional, mutually-informing molecular
// descriptors.  At least one of SMILES, InChI, or Graph must be resolvable by
// the end of the identifier resolution pipeline.
type IdentifierSet struct {
	// SMILES is the linear connectivity encoding.
	SMILES string `json:"smiles,omitempty"`

	// InChI is the IUPAC International Chemical Identifier.
	InChI string `json:"inchi,omitempty"`

	// InChIKey is the 27-character hashed InChI, derived from InChI when absent.
	InChIKey string `json:"inchi_key,omitempty"`

	// Graph is the adjacency-list structure encoding atoms, bonds, and spin
	// multiplicity.
	Graph string `json:"graph,omitempty"`
}

// ─────────────────────────────────────────────────────────────────────────────
// Requests / responses
// ─────────────────────────────────────────────────────────────────────────────

// CreateRequest is the submission payload for a new species record.  The
// reviewed/approved/retracted fields are server-owned: any client-supplied
// value is rejected, which is why they appear here as pointers.
type CreateRequest struct {
	Label string `json:"label,omitempty"`

	Charge       int `json:"charge"`
	Multiplicity int `json:"multiplicity"`

	SMILES   string `json:"smiles,omitempty"`
	InChI    string `json:"inchi,omitempty"`
	InChIKey string `json:"inchi_key,omitempty"`
	Graph    string `json:"graph,omitempty"`

	ElectronicState string `json:"electronic_state,omitempty"`

	Coordinates *Coordinates `json:"coordinates"`

	Fragments           [][]int          `json:"fragments,omitempty"`
	FragmentOrientation []Orientation    `json:"fragment_orientation,omitempty"`
	Chirality           []ChiralityEntry `json:"chirality,omitempty"`
	ConformationMethod  string           `json:"conformation_method,omitempty"`

	IsWell      bool `json:"is_well"`
	IsGlobalMin bool `json:"is_global_min,omitempty"`
	IsTS        bool `json:"is_ts,omitempty"`

	GlobalMinGeometry *Coordinates   `json:"global_min_geometry,omitempty"`
	IRCTrajectories   [][]Coordinates `json:"irc_trajectories,omitempty"`

	OptPath   string     `json:"opt_path,omitempty"`
	FreqPath  string     `json:"freq_path,omitempty"`
	SPPath    string     `json:"sp_path,omitempty"`
	ScanPaths []ScanPath `json:"scan_paths,omitempty"`
	IRCPaths  []string   `json:"irc_paths,omitempty"`

	UnconvergedJobs []UnconvergedJob `json:"unconverged_jobs,omitempty"`

	Extras        common.Metadata   `json:"extras,omitempty"`
	ReviewerFlags map[string]string `json:"reviewer_flags,omitempty"`

	// Server-owned fields; must be absent in client submissions.
	Reviewed  *bool   `json:"reviewed,omitempty"`
	Approved  *bool   `json:"approved,omitempty"`
	Retracted *string `json:"retracted,omitempty"`
}

// DTO is the canonical species representation returned to clients.
type DTO struct {
	common.BaseEntity

	Label string `json:"label,omitempty"`

	Charge       int `json:"charge"`
	Multiplicity int `json:"multiplicity"`

	IdentifierSet

	ElectronicState string `json:"electronic_state"`

	Coordinates *Coordinates `json:"coordinates"`

	Fragments           [][]int          `json:"fragments,omitempty"`
	FragmentOrientation []Orientation    `json:"fragment_orientation,omitempty"`
	Chirality           []ChiralityEntry `json:"chirality,omitempty"`
	ConformationMethod  string           `json:"conformation_method,omitempty"`

	IsWell      bool `json:"is_well"`
	IsGlobalMin bool `json:"is_global_min,omitempty"`
	IsTS        bool `json:"is_ts"`

	GlobalMinGeometry *Coordinates    `json:"global_min_geometry,omitempty"`
	IRCTrajectories   [][]Coordinates `json:"irc_trajectories,omitempty"`

	OptPath   string     `json:"opt_path,omitempty"`
	FreqPath  string     `json:"freq_path,omitempty"`
	SPPath    string     `json:"sp_path,omitempty"`
	ScanPaths []ScanPath `json:"scan_paths,omitempty"`
	IRCPaths  []string   `json:"irc_paths,omitempty"`

	UnconvergedJobs []UnconvergedJob `json:"unconverged_jobs,omitempty"`

	Extras        common.Metadata   `json:"extras,omitempty"`
	ReviewerFlags map[string]string `json:"reviewer_flags"`

	// Server-owned lifecycle fields.
	Reviewed  bool    `json:"reviewed"`
	Approved  bool    `json:"approved"`
	Retracted string  `json:"retracted,omitempty"`
	Timestamp float64 `json:"timestamp"`
}

// ValidationReport is the dry-run response: the record is accepted when
// Violations is empty.
type ValidationReport struct {
	Valid      bool                    `json:"valid"`
	Violations []common.FieldViolation `json:"violations"`

	// Resolved echoes the enriched identifier set when resolution succeeded.
	Resolved *IdentifierSet `json:"resolved,omitempty"`
}

// ListResponse is the paginated species listing payload.
type ListResponse = common.PageResponse[DTO]
