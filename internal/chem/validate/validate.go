// Package validate implements the species consistency checks: a pure
// normalization pass that back-fills derivable values in place, followed by a
// pure validation pass that reports every cross-field rule violation at once.
// Neither pass touches the network or the database.
package validate

import (
	stderrors "errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/tckdb/tckdb-go/internal/chem/coords"
	"github.com/tckdb/tckdb-go/internal/chem/periodic"
	"github.com/tckdb/tckdb-go/pkg/errors"
	"github.com/tckdb/tckdb-go/pkg/types/common"
	"github.com/tckdb/tckdb-go/pkg/types/species"
)

const (
	// DefaultElectronicState is assumed for ground-state species that do not
	// declare an electronic state.
	DefaultElectronicState = "X"

	minCharge       = -10
	maxCharge       = 10
	maxMultiplicity = 10
)

// Normalize back-fills derivable values on the candidate in place: default
// isotopes on every geometry (primary, global minimum, and IRC frames), the
// default electronic state, and removal of a trivial single-fragment list.
// Normalize never fails; anything it cannot fix is reported by Validate.
func Normalize(req *species.CreateRequest) {
	if req == nil {
		return
	}
	coords.BackfillIsotopes(req.Coordinates)
	coords.BackfillIsotopes(req.GlobalMinGeometry)
	for ti := range req.IRCTrajectories {
		for fi := range req.IRCTrajectories[ti] {
			coords.BackfillIsotopes(&req.IRCTrajectories[ti][fi])
		}
	}
	if len(req.Fragments) == 1 {
		req.Fragments = nil
	}
	if strings.TrimSpace(req.ElectronicState) == "" {
		req.ElectronicState = DefaultElectronicState
	}
}

// Validate runs every consistency rule against the normalized candidate and
// returns one violation per failing rule.  An empty result means the record
// is acceptable.  Checks are independent; a violation in one field never
// masks violations in another.
func Validate(req *species.CreateRequest) []common.FieldViolation {
	v := &collector{label: req.Label}

	checkServerOwned(req, v)
	checkChargeAndMultiplicity(req, v)
	checkDescriptors(req, v)
	checkCoordinates(req, v)

	atoms := req.Coordinates.AtomCount()
	checkFragments(req, atoms, v)
	checkChirality(req, atoms, v)
	checkConformationMethod(req, atoms, v)
	checkGlobalMinGeometry(req, v)
	checkIRCTrajectories(req, v)
	checkPaths(req, atoms, v)
	checkScanPaths(req, atoms, v)
	checkUnconvergedJobs(req, v)

	return v.violations
}

// AsError folds a non-empty violation list into a single transportable error.
func AsError(label string, violations []common.FieldViolation) *errors.AppError {
	if len(violations) == 0 {
		return nil
	}
	msgs := make([]string, len(violations))
	for i, violation := range violations {
		msgs[i] = fmt.Sprintf("%s: %s", violation.Field, violation.Message)
	}
	return errors.Newf(errors.ErrCodeSpeciesInvalid,
		"species %q failed validation with %d violation(s)", label, len(violations)).
		WithDetail(strings.Join(msgs, "; "))
}

type collector struct {
	label      string
	violations []common.FieldViolation
}

func (c *collector) add(field, format string, args ...interface{}) {
	c.violations = append(c.violations, common.FieldViolation{
		Field:   field,
		Label:   c.label,
		Message: fmt.Sprintf(format, args...),
	})
}

// ─────────────────────────────────────────────────────────────────────────────
// Individual rules
// ─────────────────────────────────────────────────────────────────────────────

func checkServerOwned(req *species.CreateRequest, v *collector) {
	if req.Reviewed != nil {
		v.add("reviewed", "the reviewed flag is assigned by the server and must not be submitted")
	}
	if req.Approved != nil {
		v.add("approved", "the approved flag is assigned by the server and must not be submitted")
	}
	if req.Retracted != nil {
		v.add("retracted", "the retracted field is assigned by the server and must not be submitted")
	}
}

func checkChargeAndMultiplicity(req *species.CreateRequest, v *collector) {
	if req.Charge < minCharge || req.Charge > maxCharge {
		v.add("charge", "charge %d is outside the supported range [%d, %d]",
			req.Charge, minCharge, maxCharge)
	}
	if req.Multiplicity < 1 || req.Multiplicity > maxMultiplicity {
		v.add("multiplicity", "multiplicity %d is outside the supported range [1, %d]",
			req.Multiplicity, maxMultiplicity)
	}
}

var (
	smilesRe   = regexp.MustCompile(`^[A-Za-z0-9@+\-\[\]\(\)\\/%=#$.~*:]+$`)
	inchiKeyRe = regexp.MustCompile(`^[A-Z]{14}-[A-Z]{10}-[A-Z]$`)
)

func balanced(s string, open, closing rune) bool {
	depth := 0
	for _, r := range s {
		switch r {
		case open:
			depth++
		case closing:
			depth--
			if depth < 0 {
				return false
			}
		}
	}
	return depth == 0
}

func checkDescriptors(req *species.CreateRequest, v *collector) {
	if req.SMILES != "" {
		if !smilesRe.MatchString(req.SMILES) {
			v.add("smiles", "SMILES %q contains characters outside the SMILES alphabet", req.SMILES)
		} else if !balanced(req.SMILES, '[', ']') || !balanced(req.SMILES, '(', ')') {
			v.add("smiles", "SMILES %q has unbalanced brackets", req.SMILES)
		}
	}
	if req.InChI != "" && !strings.HasPrefix(req.InChI, "InChI=1") {
		v.add("inchi", "InChI %q does not start with the InChI=1 version prefix", req.InChI)
	}
	if req.InChIKey != "" && !inchiKeyRe.MatchString(req.InChIKey) {
		v.add("inchi_key", "InChIKey %q is not a 27-character hashed InChI", req.InChIKey)
	}
}

func checkCoordinates(req *species.CreateRequest, v *collector) {
	if req.Coordinates == nil {
		v.add("coordinates", "a coordinate record is required")
		return
	}
	if err := coords.Validate(req.Coordinates); err != nil {
		v.add("coordinates", "%s", errorMessage(err))
	}
}

func checkFragments(req *species.CreateRequest, atoms int, v *collector) {
	if len(req.Fragments) == 0 {
		if len(req.FragmentOrientation) > 0 {
			v.add("fragment_orientation",
				"fragment orientation was given for a species without fragments")
		}
		return
	}

	seen := make(map[int]bool)
	ok := true
	for fi, frag := range req.Fragments {
		if len(frag) == 0 {
			v.add("fragments", "fragment %d is empty", fi+1)
			ok = false
		}
		for _, idx := range frag {
			if idx < 1 || idx > atoms {
				v.add("fragments", "atom index %d in fragment %d is outside 1..%d", idx, fi+1, atoms)
				ok = false
				continue
			}
			if seen[idx] {
				v.add("fragments", "atom index %d appears in more than one fragment", idx)
				ok = false
			}
			seen[idx] = true
		}
	}
	if ok && len(seen) != atoms {
		v.add("fragments", "fragments cover %d of %d atoms", len(seen), atoms)
	}

	if want := len(req.Fragments) - 1; len(req.FragmentOrientation) != want {
		v.add("fragment_orientation",
			"expected %d orientation entries for %d fragments, got %d",
			want, len(req.Fragments), len(req.FragmentOrientation))
	}
	for oi, orient := range req.FragmentOrientation {
		if len(orient.CM) != 3 {
			v.add("fragment_orientation",
				"orientation entry %d has a %d-component cm vector, expected 3", oi+1, len(orient.CM))
		}
	}
}

var stereoTokens = map[string]bool{"R": true, "S": true, "NR": true, "NS": true, "E": true, "Z": true}

func checkChirality(req *species.CreateRequest, atoms int, v *collector) {
	used := make(map[int]bool)
	for ei, entry := range req.Chirality {
		if !stereoTokens[entry.Notation] {
			v.add("chirality", "entry %d uses unrecognized stereo descriptor %q", ei+1, entry.Notation)
			continue
		}

		valid := true
		for _, idx := range entry.Atoms {
			if idx < 1 || idx > atoms {
				v.add("chirality", "entry %d references atom index %d outside 1..%d", ei+1, idx, atoms)
				valid = false
				continue
			}
			if used[idx] {
				v.add("chirality", "atom index %d appears in more than one chirality entry", idx)
				valid = false
			}
			used[idx] = true
		}
		if !valid {
			continue
		}

		switch len(entry.Atoms) {
		case 1:
			if entry.Notation == "E" || entry.Notation == "Z" {
				v.add("chirality", "entry %d: descriptor %q requires two atoms of a double bond",
					ei+1, entry.Notation)
				continue
			}
			checkStereocenterElement(req, ei, entry, v)
		case 2:
			if entry.Notation != "E" && entry.Notation != "Z" {
				v.add("chirality", "entry %d: descriptor %q applies to a single stereocenter, not a bond",
					ei+1, entry.Notation)
			}
		default:
			v.add("chirality", "entry %d references %d atoms, expected 1 or 2", ei+1, len(entry.Atoms))
		}
	}
}

// chiralElements are the elements accepted as atom stereocenters.
var chiralElements = map[string]bool{"C": true, "Si": true, "N": true, "P": true, "S": true}

func checkStereocenterElement(req *species.CreateRequest, ei int, entry species.ChiralityEntry, v *collector) {
	if req.Coordinates == nil || entry.Atoms[0] > len(req.Coordinates.Symbols) {
		return
	}
	symbol := req.Coordinates.Symbols[entry.Atoms[0]-1]
	if !periodic.IsElement(symbol) {
		return
	}
	if !chiralElements[symbol] {
		v.add("chirality", "entry %d: %s is not an accepted stereocenter element", ei+1, symbol)
		return
	}
	isNitrogen := symbol == "N"
	hasNPrefix := entry.Notation == "NR" || entry.Notation == "NS"
	if isNitrogen && !hasNPrefix {
		v.add("chirality", "entry %d: nitrogen stereocenters use the NR/NS descriptors", ei+1)
	}
	if !isNitrogen && hasNPrefix {
		v.add("chirality", "entry %d: the NR/NS descriptors apply only to nitrogen stereocenters", ei+1)
	}
}

func checkConformationMethod(req *species.CreateRequest, atoms int, v *collector) {
	if atoms >= 4 && strings.TrimSpace(req.ConformationMethod) == "" {
		v.add("conformation_method",
			"a conformation method is required for species with 4 or more atoms")
	}
}

func checkGlobalMinGeometry(req *species.CreateRequest, v *collector) {
	if req.GlobalMinGeometry == nil {
		return
	}
	if err := coords.Validate(req.GlobalMinGeometry); err != nil {
		v.add("global_min_geometry", "%s", errorMessage(err))
	}
}

func checkIRCTrajectories(req *species.CreateRequest, v *collector) {
	if req.IsTS {
		if len(req.IRCTrajectories) == 0 {
			v.add("irc_trajectories",
				"IRC trajectories are required for a transition-state species")
			return
		}
	} else if len(req.IRCTrajectories) > 0 {
		v.add("irc_trajectories",
			"IRC trajectories were given for a species that is not a transition state")
	}
	for ti, frames := range req.IRCTrajectories {
		if len(frames) == 0 {
			v.add("irc_trajectories", "IRC trajectory %d has no frames", ti+1)
		}
		for fi := range frames {
			if err := coords.Validate(&frames[fi]); err != nil {
				v.add("irc_trajectories", "trajectory %d frame %d: %s", ti+1, fi+1, errorMessage(err))
			}
		}
	}
}

func checkPaths(req *species.CreateRequest, atoms int, v *collector) {
	if atoms > 1 {
		if strings.TrimSpace(req.OptPath) == "" {
			v.add("opt_path", "an optimization log path is required for species with more than one atom")
		}
		if strings.TrimSpace(req.FreqPath) == "" {
			v.add("freq_path", "a frequency log path is required for species with more than one atom")
		}
	}
	if len(req.IRCTrajectories) > 0 {
		switch len(req.IRCPaths) {
		case 0:
			v.add("irc_paths", "IRC log paths are required when IRC trajectories are given")
		case 1, 2:
		default:
			v.add("irc_paths", "expected 1 or 2 IRC log paths, got %d", len(req.IRCPaths))
		}
	}
}

func checkScanPaths(req *species.CreateRequest, atoms int, v *collector) {
	for si, scan := range req.ScanPaths {
		if strings.TrimSpace(scan.Path) == "" {
			v.add("scan_paths", "scan entry %d has no log path", si+1)
		}
		if len(scan.Torsions) == 0 {
			v.add("scan_paths", "scan entry %d has no torsions", si+1)
		}
		for _, torsion := range scan.Torsions {
			for _, idx := range torsion {
				if idx < 1 || idx > atoms {
					v.add("scan_paths",
						"scan entry %d references atom index %d outside 1..%d", si+1, idx, atoms)
				}
			}
		}
	}
}

var (
	unconvergedKeys = map[string]bool{
		"job type": true, "issue": true, "troubleshooting": true, "comment": true, "path": true,
	}
	jobTypes = map[string]bool{"opt": true, "freq": true, "scan": true, "irc": true, "sp": true}
)

func checkUnconvergedJobs(req *species.CreateRequest, v *collector) {
	for ji, job := range req.UnconvergedJobs {
		for key := range job {
			if !unconvergedKeys[key] {
				v.add("unconverged_jobs", "entry %d has unrecognized key %q", ji+1, key)
			}
		}
		jobType, ok := job["job type"]
		if !ok {
			v.add("unconverged_jobs", "entry %d is missing the job type", ji+1)
		} else if !jobTypes[strings.ToLower(jobType)] {
			v.add("unconverged_jobs", "entry %d has unrecognized job type %q", ji+1, jobType)
		}
		if strings.TrimSpace(job["path"]) == "" {
			v.add("unconverged_jobs", "entry %d is missing the log file path", ji+1)
		}
	}
}

// errorMessage strips the error-code prefix from an AppError so violations
// read as plain field messages.
func errorMessage(err error) string {
	var ae *errors.AppError
	if stderrors.As(err, &ae) {
		if ae.Detail != "" {
			return ae.Message + ": " + ae.Detail
		}
		return ae.Message
	}
	return err.Error()
}
