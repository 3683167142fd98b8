package species

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tckdb/tckdb-go/pkg/errors"
	stypes "github.com/tckdb/tckdb-go/pkg/types/species"
)

func sampleRequest() *stypes.CreateRequest {
	return &stypes.CreateRequest{
		Label:           "CH3NH2",
		Charge:          0,
		Multiplicity:    1,
		ElectronicState: "X",
		Coordinates: &stypes.Coordinates{
			Symbols:  []string{"C", "N", "H", "H", "H", "H", "H"},
			Isotopes: []int{12, 14, 1, 1, 1, 1, 1},
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

func sampleIdentifiers() stypes.IdentifierSet {
	return stypes.IdentifierSet{
		SMILES:   "CN",
		InChI:    "InChI=1S/CH5N/c1-2/h2H2,1H3",
		InChIKey: "BAVYZALUXZFZLV-UHFFFAOYSA-N",
	}
}

func TestNewSpecies(t *testing.T) {
	sp := NewSpecies(sampleRequest(), sampleIdentifiers())

	require.NoError(t, sp.ID.Validate())
	assert.Equal(t, 1, sp.Version)
	assert.Equal(t, "CH3NH2", sp.Label)
	assert.Equal(t, "BAVYZALUXZFZLV-UHFFFAOYSA-N", sp.Identifiers.InChIKey)
	assert.False(t, sp.Reviewed)
	assert.False(t, sp.Approved)
	assert.False(t, sp.IsRetracted())
	assert.Greater(t, sp.Timestamp, 0.0)
	assert.Equal(t, 7, sp.AtomCount())

	events := sp.Events()
	require.Len(t, events, 1)
	assert.Equal(t, "species.accepted", events[0].EventType())

	sp.ClearEvents()
	assert.Empty(t, sp.Events())
}

func TestSpecies_Review(t *testing.T) {
	sp := NewSpecies(sampleRequest(), sampleIdentifiers())
	sp.ClearEvents()

	require.NoError(t, sp.Review(true))
	assert.True(t, sp.Reviewed)
	assert.True(t, sp.Approved)
	assert.Equal(t, 2, sp.Version)

	events := sp.Events()
	require.Len(t, events, 1)
	assert.Equal(t, "species.reviewed", events[0].EventType())
}

func TestSpecies_Retract(t *testing.T) {
	sp := NewSpecies(sampleRequest(), sampleIdentifiers())
	sp.ClearEvents()

	require.NoError(t, sp.Retract("duplicate of another record"))
	assert.True(t, sp.IsRetracted())
	assert.Equal(t, "duplicate of another record", sp.Retracted)

	// Second retraction must not overwrite the original reason.
	err := sp.Retract("different reason")
	assert.True(t, errors.IsCode(err, errors.ErrCodeSpeciesRetracted))
	assert.Equal(t, "duplicate of another record", sp.Retracted)

	// A retracted record cannot be reviewed.
	err = sp.Review(true)
	assert.True(t, errors.IsCode(err, errors.ErrCodeSpeciesRetracted))
}

func TestSpecies_RetractEmptyReason(t *testing.T) {
	sp := NewSpecies(sampleRequest(), sampleIdentifiers())
	err := sp.Retract("")
	assert.True(t, errors.IsCode(err, errors.ErrCodeBadRequest))
}

func TestSpecies_ToDTO(t *testing.T) {
	sp := NewSpecies(sampleRequest(), sampleIdentifiers())
	dto := sp.ToDTO()

	assert.Equal(t, sp.ID, dto.ID)
	assert.Equal(t, "CN", dto.SMILES)
	assert.Equal(t, "X", dto.ElectronicState)
	assert.Equal(t, sp.Timestamp, dto.Timestamp)
	assert.NotNil(t, dto.ReviewerFlags)
}

func TestSpecies_LogPaths(t *testing.T) {
	req := sampleRequest()
	req.ScanPaths = []stypes.ScanPath{
		{Torsions: [][4]int{{3, 1, 2, 6}}, Path: "path/to/scan.out"},
	}
	req.IRCPaths = []string{"path/to/irc_f.out"}
	req.UnconvergedJobs = []stypes.UnconvergedJob{
		{"job type": "opt", "path": "path/to/failed_opt.out"},
	}

	sp := NewSpecies(req, sampleIdentifiers())
	assert.Equal(t, []string{
		"path/to/opt.out",
		"path/to/freq.out",
		"path/to/scan.out",
		"path/to/irc_f.out",
		"path/to/failed_opt.out",
	}, sp.LogPaths())
}
