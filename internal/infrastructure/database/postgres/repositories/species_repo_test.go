package repositories

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tckdb/tckdb-go/internal/domain/species"
	"github.com/tckdb/tckdb-go/pkg/types/common"
	stypes "github.com/tckdb/tckdb-go/pkg/types/species"
)

func sampleSpecies() *species.Species {
	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	return &species.Species{
		BaseEntity: common.BaseEntity{
			ID:        common.NewID(),
			CreatedAt: now,
			UpdatedAt: now,
			Version:   1,
		},
		Label:        "CH3NH2",
		Charge:       0,
		Multiplicity: 1,
		Identifiers: stypes.IdentifierSet{
			SMILES:   "CN",
			InChI:    "InChI=1S/CH5N/c1-2/h2H2,1H3",
			InChIKey: "BAVYZALUXZFZLV-UHFFFAOYSA-N",
		},
		ElectronicState: "X",
		Coordinates: &stypes.Coordinates{
			Symbols:  []string{"C", "N"},
			Isotopes: []int{12, 14},
			Coords:   [][3]float64{{0, 0, 0}, {1.47, 0, 0}},
		},
		IsWell:    true,
		OptPath:   "path/to/opt.out",
		FreqPath:  "path/to/freq.out",
		Timestamp: 1714564800.0,
	}
}

func TestEncodeSpecies(t *testing.T) {
	sp := sampleSpecies()
	args, err := encodeSpecies(sp)
	require.NoError(t, err)

	// One argument per column in the INSERT statement.
	require.Len(t, args, 34)

	assert.Equal(t, sp.ID, args[0])
	assert.Equal(t, "CH3NH2", args[1])
	assert.Equal(t, "CN", args[4])
	assert.Equal(t, "BAVYZALUXZFZLV-UHFFFAOYSA-N", args[6])

	// Coordinates serialize as JSON.
	var coords stypes.Coordinates
	require.NoError(t, json.Unmarshal(args[9].([]byte), &coords))
	assert.Equal(t, []string{"C", "N"}, coords.Symbols)

	assert.Equal(t, sp.Version, args[33])
}

func TestBuildListFilter_Default(t *testing.T) {
	where, args := buildListFilter(species.ListFilter{})
	assert.Equal(t, "WHERE retracted = ''", where)
	assert.Empty(t, args)
}

func TestBuildListFilter_AllFilters(t *testing.T) {
	isTS := true
	where, args := buildListFilter(species.ListFilter{
		Label:    "NH2",
		InChIKey: "BAVYZALUXZFZLV-UHFFFAOYSA-N",
		IsTS:     &isTS,
	})

	assert.Equal(t,
		"WHERE retracted = '' AND LOWER(label) LIKE $1 AND inchi_key = $2 AND is_ts = $3",
		where)
	require.Len(t, args, 3)
	assert.Equal(t, "%nh2%", args[0])
	assert.Equal(t, "BAVYZALUXZFZLV-UHFFFAOYSA-N", args[1])
	assert.Equal(t, true, args[2])
}

func TestBuildListFilter_IncludeRetracted(t *testing.T) {
	where, args := buildListFilter(species.ListFilter{IncludeRetracted: true})
	assert.Empty(t, where)
	assert.Empty(t, args)
}
