package validate

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tckdb/tckdb-go/pkg/errors"
	"github.com/tckdb/tckdb-go/pkg/types/common"
	"github.com/tckdb/tckdb-go/pkg/types/species"
)

func methylamine() *species.CreateRequest {
	return &species.CreateRequest{
		Label:        "CH3NH2",
		Charge:       0,
		Multiplicity: 1,
		SMILES:       "CN",
		InChI:        "InChI=1S/CH5N/c1-2/h2H2,1H3",
		InChIKey:     "BAVYZALUXZFZLV-UHFFFAOYSA-N",
		Coordinates: &species.Coordinates{
			Symbols: []string{"C", "N", "H", "H", "H", "H", "H"},
			Coords: [][3]float64{
				{0.6616, 0.0000, -0.0045},
				{-0.7519, 0.0000, 0.0853},
				{1.0156, -0.0001, -1.0380},
				{1.0764, 0.8827, 0.4938},
				{1.0764, -0.8826, 0.4942},
				{-1.1590, 0.8174, -0.3469},
				{-1.1589, -0.8174, -0.3468},
			},
		},
		ConformationMethod: "ARC v1.1.0",
		IsWell:             true,
		OptPath:            "path/to/opt.out",
		FreqPath:           "path/to/freq.out",
	}
}

func fields(violations []common.FieldViolation) []string {
	out := make([]string, len(violations))
	for i, v := range violations {
		out[i] = v.Field
	}
	return out
}

func TestValidAcceptedSpecies(t *testing.T) {
	req := methylamine()
	Normalize(req)
	assert.Empty(t, Validate(req))
}

func TestNormalize(t *testing.T) {
	t.Run("isotope backfill on all geometries", func(t *testing.T) {
		req := methylamine()
		req.GlobalMinGeometry = req.Coordinates.Clone()
		Normalize(req)
		assert.Equal(t, []int{12, 14, 1, 1, 1, 1, 1}, req.Coordinates.Isotopes)
		assert.Equal(t, []int{12, 14, 1, 1, 1, 1, 1}, req.GlobalMinGeometry.Isotopes)
	})

	t.Run("single-fragment list is cleared", func(t *testing.T) {
		req := methylamine()
		req.Fragments = [][]int{{1, 2, 3, 4, 5, 6, 7}}
		Normalize(req)
		assert.Nil(t, req.Fragments)
	})

	t.Run("electronic state defaults to the ground state", func(t *testing.T) {
		req := methylamine()
		Normalize(req)
		assert.Equal(t, "X", req.ElectronicState)

		req = methylamine()
		req.ElectronicState = "A"
		Normalize(req)
		assert.Equal(t, "A", req.ElectronicState)
	})
}

func TestServerOwnedFields(t *testing.T) {
	req := methylamine()
	yes := true
	reason := "dup"
	req.Reviewed = &yes
	req.Approved = &yes
	req.Retracted = &reason
	Normalize(req)
	got := fields(Validate(req))
	assert.Contains(t, got, "reviewed")
	assert.Contains(t, got, "approved")
	assert.Contains(t, got, "retracted")
}

func TestChargeAndMultiplicityRanges(t *testing.T) {
	req := methylamine()
	req.Charge = 11
	req.Multiplicity = 0
	Normalize(req)
	got := fields(Validate(req))
	assert.Contains(t, got, "charge")
	assert.Contains(t, got, "multiplicity")
}

func TestDescriptorFormats(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*species.CreateRequest)
		field  string
	}{
		{"smiles charset", func(r *species.CreateRequest) { r.SMILES = "C!N" }, "smiles"},
		{"smiles unbalanced", func(r *species.CreateRequest) { r.SMILES = "C[NH2" }, "smiles"},
		{"inchi prefix", func(r *species.CreateRequest) { r.InChI = "1S/CH5N" }, "inchi"},
		{"inchi key shape", func(r *species.CreateRequest) { r.InChIKey = "BAVYZALUXZFZLV" }, "inchi_key"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := methylamine()
			tt.mutate(req)
			Normalize(req)
			assert.Contains(t, fields(Validate(req)), tt.field)
		})
	}
}

func TestCoordinateRules(t *testing.T) {
	t.Run("missing record", func(t *testing.T) {
		req := methylamine()
		req.Coordinates = nil
		Normalize(req)
		assert.Contains(t, fields(Validate(req)), "coordinates")
	})

	t.Run("length mismatch", func(t *testing.T) {
		req := methylamine()
		req.Coordinates.Isotopes = []int{12, 14}
		Normalize(req)
		assert.Contains(t, fields(Validate(req)), "coordinates")
	})

	t.Run("implausible isotope", func(t *testing.T) {
		req := methylamine()
		req.Coordinates.Isotopes = []int{99, 14, 1, 1, 1, 1, 1}
		Normalize(req)
		assert.Contains(t, fields(Validate(req)), "coordinates")
	})
}

func TestFragmentRules(t *testing.T) {
	t.Run("valid partition", func(t *testing.T) {
		req := methylamine()
		req.Fragments = [][]int{{1, 3, 4, 5}, {2, 6, 7}}
		req.FragmentOrientation = []species.Orientation{{CM: []float64{1, 0, 0}, X: 0, Y: 0, Z: 0}}
		Normalize(req)
		assert.Empty(t, Validate(req))
	})

	t.Run("reused atom index", func(t *testing.T) {
		req := methylamine()
		req.Fragments = [][]int{{1, 2, 3}, {3, 4, 5, 6, 7}}
		req.FragmentOrientation = []species.Orientation{{CM: []float64{1, 0, 0}}}
		Normalize(req)
		assert.Contains(t, fields(Validate(req)), "fragments")
	})

	t.Run("incomplete coverage", func(t *testing.T) {
		req := methylamine()
		req.Fragments = [][]int{{1, 2, 3}, {4, 5, 6}}
		req.FragmentOrientation = []species.Orientation{{CM: []float64{1, 0, 0}}}
		Normalize(req)
		assert.Contains(t, fields(Validate(req)), "fragments")
	})

	t.Run("orientation count", func(t *testing.T) {
		req := methylamine()
		req.Fragments = [][]int{{1, 3, 4, 5}, {2, 6, 7}}
		Normalize(req)
		assert.Contains(t, fields(Validate(req)), "fragment_orientation")
	})

	t.Run("orientation without fragments", func(t *testing.T) {
		req := methylamine()
		req.FragmentOrientation = []species.Orientation{{CM: []float64{1, 0, 0}}}
		Normalize(req)
		assert.Contains(t, fields(Validate(req)), "fragment_orientation")
	})

	t.Run("cm vector length", func(t *testing.T) {
		req := methylamine()
		req.Fragments = [][]int{{1, 3, 4, 5}, {2, 6, 7}}
		req.FragmentOrientation = []species.Orientation{{CM: []float64{1, 0}}}
		Normalize(req)
		assert.Contains(t, fields(Validate(req)), "fragment_orientation")
	})
}

func TestChiralityRules(t *testing.T) {
	t.Run("valid entries", func(t *testing.T) {
		req := methylamine()
		req.Chirality = []species.ChiralityEntry{
			{Atoms: []int{1}, Notation: "R"},
			{Atoms: []int{2}, Notation: "NS"},
		}
		Normalize(req)
		assert.Empty(t, Validate(req))
	})

	tests := []struct {
		name    string
		entries []species.ChiralityEntry
	}{
		{"unknown token", []species.ChiralityEntry{{Atoms: []int{1}, Notation: "Q"}}},
		{"index out of range", []species.ChiralityEntry{{Atoms: []int{9}, Notation: "R"}}},
		{"index reuse", []species.ChiralityEntry{
			{Atoms: []int{1}, Notation: "R"},
			{Atoms: []int{1}, Notation: "S"},
		}},
		{"EZ needs two atoms", []species.ChiralityEntry{{Atoms: []int{1}, Notation: "E"}}},
		{"RS needs one atom", []species.ChiralityEntry{{Atoms: []int{1, 2}, Notation: "R"}}},
		{"nitrogen needs N descriptors", []species.ChiralityEntry{{Atoms: []int{2}, Notation: "R"}}},
		{"carbon rejects N descriptors", []species.ChiralityEntry{{Atoms: []int{1}, Notation: "NR"}}},
		{"hydrogen is not a stereocenter", []species.ChiralityEntry{{Atoms: []int{3}, Notation: "R"}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := methylamine()
			req.Chirality = tt.entries
			Normalize(req)
			assert.Contains(t, fields(Validate(req)), "chirality")
		})
	}
}

func TestConformationMethodRule(t *testing.T) {
	req := methylamine()
	req.ConformationMethod = ""
	Normalize(req)
	assert.Contains(t, fields(Validate(req)), "conformation_method")

	// Below four atoms the method is optional.
	small := &species.CreateRequest{
		Label:        "OH",
		Multiplicity: 2,
		SMILES:       "[OH]",
		Coordinates: &species.Coordinates{
			Symbols: []string{"O", "H"},
			Coords:  [][3]float64{{0, 0, 0}, {0, 0, 0.97}},
		},
		OptPath:  "path/to/opt.out",
		FreqPath: "path/to/freq.out",
	}
	Normalize(small)
	assert.Empty(t, Validate(small))
}

func TestGlobalMinGeometryRule(t *testing.T) {
	req := methylamine()
	req.GlobalMinGeometry = &species.Coordinates{
		Symbols: []string{"C", "Xx"},
		Coords:  [][3]float64{{0, 0, 0}, {1, 0, 0}},
	}
	Normalize(req)
	assert.Contains(t, fields(Validate(req)), "global_min_geometry")
}

func TestIRCTrajectoryRules(t *testing.T) {
	frame := func() species.Coordinates {
		c := methylamine().Coordinates.Clone()
		return *c
	}

	t.Run("required for a transition state", func(t *testing.T) {
		req := methylamine()
		req.IsTS = true
		Normalize(req)
		assert.Contains(t, fields(Validate(req)), "irc_trajectories")
	})

	t.Run("forbidden for a well", func(t *testing.T) {
		req := methylamine()
		req.IRCTrajectories = [][]species.Coordinates{{frame()}}
		req.IRCPaths = []string{"path/to/irc.out"}
		Normalize(req)
		assert.Contains(t, fields(Validate(req)), "irc_trajectories")
	})

	t.Run("accepted transition state", func(t *testing.T) {
		req := methylamine()
		req.IsTS = true
		req.IRCTrajectories = [][]species.Coordinates{{frame(), frame()}, {frame(), frame()}}
		req.IRCPaths = []string{"path/to/irc_f.out", "path/to/irc_r.out"}
		Normalize(req)
		assert.Empty(t, Validate(req))
	})

	t.Run("irc paths required and bounded", func(t *testing.T) {
		req := methylamine()
		req.IsTS = true
		req.IRCTrajectories = [][]species.Coordinates{{frame()}}
		Normalize(req)
		assert.Contains(t, fields(Validate(req)), "irc_paths")

		req.IRCPaths = []string{"a", "b", "c"}
		assert.Contains(t, fields(Validate(req)), "irc_paths")
	})
}

func TestPathRules(t *testing.T) {
	req := methylamine()
	req.OptPath = ""
	req.FreqPath = ""
	Normalize(req)
	got := fields(Validate(req))
	assert.Contains(t, got, "opt_path")
	assert.Contains(t, got, "freq_path")

	// A single atom needs no optimization or frequency jobs.
	atom := &species.CreateRequest{
		Label:        "H",
		Multiplicity: 2,
		SMILES:       "[H]",
		Coordinates: &species.Coordinates{
			Symbols: []string{"H"},
			Coords:  [][3]float64{{0, 0, 0}},
		},
	}
	Normalize(atom)
	assert.Empty(t, Validate(atom))
}

func TestScanPathRules(t *testing.T) {
	req := methylamine()
	req.ScanPaths = []species.ScanPath{
		{Torsions: [][4]int{{3, 1, 2, 6}}, Path: "path/to/scan.out"},
	}
	Normalize(req)
	assert.Empty(t, Validate(req))

	req.ScanPaths = []species.ScanPath{
		{Torsions: [][4]int{{3, 1, 2, 9}}, Path: ""},
	}
	got := fields(Validate(req))
	assert.Contains(t, got, "scan_paths")
}

func TestUnconvergedJobRules(t *testing.T) {
	t.Run("valid entry", func(t *testing.T) {
		req := methylamine()
		req.UnconvergedJobs = []species.UnconvergedJob{{
			"job type": "opt",
			"issue":    "SCF oscillation",
			"path":     "path/to/failed_opt.out",
		}}
		Normalize(req)
		assert.Empty(t, Validate(req))
	})

	tests := []struct {
		name string
		job  species.UnconvergedJob
	}{
		{"unknown key", species.UnconvergedJob{"job type": "opt", "path": "p", "severity": "high"}},
		{"missing job type", species.UnconvergedJob{"path": "p"}},
		{"unknown job type", species.UnconvergedJob{"job type": "td-dft", "path": "p"}},
		{"missing path", species.UnconvergedJob{"job type": "opt"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := methylamine()
			req.UnconvergedJobs = []species.UnconvergedJob{tt.job}
			Normalize(req)
			assert.Contains(t, fields(Validate(req)), "unconverged_jobs")
		})
	}
}

func TestViolationsCarryTheLabel(t *testing.T) {
	req := methylamine()
	req.Multiplicity = 0
	Normalize(req)
	violations := Validate(req)
	require.NotEmpty(t, violations)
	for _, v := range violations {
		assert.Equal(t, "CH3NH2", v.Label)
	}
}

func TestAsError(t *testing.T) {
	assert.Nil(t, AsError("x", nil))

	violations := []common.FieldViolation{
		{Field: "charge", Label: "x", Message: "out of range"},
		{Field: "smiles", Label: "x", Message: "bad charset"},
	}
	err := AsError("x", violations)
	require.NotNil(t, err)
	assert.Equal(t, errors.ErrCodeSpeciesInvalid, err.Code)
	assert.Contains(t, err.Detail, "charge: out of range")
	assert.Contains(t, err.Detail, "smiles: bad charset")
}
