package adjlist

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tckdb/tckdb-go/pkg/errors"
)

const methylRadical = `multiplicity 2
1 C u1 p0 c0 {2,S} {3,S} {4,S}
2 H u0 p0 c0 {1,S}
3 H u0 p0 c0 {1,S}
4 H u0 p0 c0 {1,S}`

const methane = `1 C u0 p0 c0 {2,S} {3,S} {4,S} {5,S}
2 H u0 p0 c0 {1,S}
3 H u0 p0 c0 {1,S}
4 H u0 p0 c0 {1,S}
5 H u0 p0 c0 {1,S}`

func TestParseWithHeader(t *testing.T) {
	g, err := Parse(methylRadical)
	require.NoError(t, err)
	assert.Equal(t, 2, g.HeaderMultiplicity)
	require.Len(t, g.Atoms, 4)
	assert.Equal(t, "C", g.Atoms[0].Symbol)
	assert.Equal(t, 1, g.Atoms[0].Unpaired)
	assert.Equal(t, map[int]string{2: "S", 3: "S", 4: "S"}, g.Atoms[0].Bonds)
	assert.Equal(t, map[int]string{1: "S"}, g.Atoms[1].Bonds)
}

func TestParseWithoutHeader(t *testing.T) {
	g, err := Parse(methane)
	require.NoError(t, err)
	assert.Equal(t, 0, g.HeaderMultiplicity)
	assert.Len(t, g.Atoms, 5)
}

func TestMultiplicity(t *testing.T) {
	t.Run("header value wins", func(t *testing.T) {
		g, err := Parse(methylRadical)
		require.NoError(t, err)
		assert.Equal(t, 2, g.Multiplicity())
	})

	t.Run("derived from unpaired electrons", func(t *testing.T) {
		g, err := Parse(methane)
		require.NoError(t, err)
		assert.Equal(t, 1, g.Multiplicity())

		// Triplet oxygen: two unpaired electrons, no header.
		g, err = Parse(`1 O u1 p2 c0 {2,S}
2 O u1 p2 c0 {1,S}`)
		require.NoError(t, err)
		assert.Equal(t, 3, g.Multiplicity())
	})
}

func TestParseChargeAndLonePairs(t *testing.T) {
	g, err := Parse(`1 N u0 p0 c+1 {2,S} {3,S} {4,S} {5,S}
2 H u0 p0 c0 {1,S}
3 H u0 p0 c0 {1,S}
4 H u0 p0 c0 {1,S}
5 H u0 p0 c0 {1,S}`)
	require.NoError(t, err)
	assert.Equal(t, 1, g.Atoms[0].Charge)

	g, err = Parse(`1 O u0 p3 c-1 {2,S}
2 H u0 p0 c0 {1,S}`)
	require.NoError(t, err)
	assert.Equal(t, -1, g.Atoms[0].Charge)
	assert.Equal(t, 3, g.Atoms[0].LonePairs)
}

func TestParseErrors(t *testing.T) {
	tests := []struct {
		name string
		text string
	}{
		{"empty", "  \n  "},
		{"header only", "multiplicity 2"},
		{"bad header", "multiplicity two\n1 H u0 p0 c0"},
		{"unknown element", "1 Xx u0 p0 c0"},
		{"duplicate index", "1 H u0 p0 c0 {2,S}\n1 H u0 p0 c0 {1,S}"},
		{"gap in indices", "1 H u0 p0 c0 {3,S}\n3 H u0 p0 c0 {1,S}"},
		{"bond to missing atom", "1 C u0 p0 c0 {2,S}"},
		{"asymmetric bond", "1 C u0 p0 c0 {2,S}\n2 O u0 p2 c0"},
		{"conflicting bond orders", "1 C u0 p0 c0 {2,S}\n2 O u0 p2 c0 {1,D}"},
		{"self bond", "1 C u0 p0 c0 {1,S}"},
		{"bad bond order", "1 C u0 p0 c0 {2,X}\n2 C u0 p0 c0 {1,X}"},
		{"bad unpaired count", "1 C ux p0 c0"},
		{"stray token", "1 C u0 p0 c0 banana"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse(tt.text)
			require.Error(t, err)
			assert.True(t, errors.IsCode(err, errors.ErrCodeAdjlistFormat))
		})
	}
}

func TestParseIsotopeAndSiteLabels(t *testing.T) {
	g, err := Parse(`1 *1 Ci13 u0 p0 c0 {2,S}
2 H u0 p0 c0 {1,S}`)
	require.NoError(t, err)
	assert.Equal(t, "C", g.Atoms[0].Symbol)
}

func TestRewriteMultiplicity(t *testing.T) {
	t.Run("replaces existing header", func(t *testing.T) {
		out := RewriteMultiplicity(methylRadical, 4)
		assert.True(t, strings.HasPrefix(out, "multiplicity 4\n"))
		assert.Equal(t, 1, strings.Count(out, "multiplicity"))

		g, err := Parse(out)
		require.NoError(t, err)
		assert.Equal(t, 4, g.Multiplicity())
	})

	t.Run("prepends when absent", func(t *testing.T) {
		out := RewriteMultiplicity(methane, 3)
		assert.True(t, strings.HasPrefix(out, "multiplicity 3\n1 C"))
	})

	t.Run("atom lines preserved", func(t *testing.T) {
		out := RewriteMultiplicity(methylRadical, 2)
		assert.Contains(t, out, "1 C u1 p0 c0 {2,S} {3,S} {4,S}")
	})
}
