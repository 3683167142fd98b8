package cli

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	stypes "github.com/tckdb/tckdb-go/pkg/types/species"
)

func runCommand(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	cmd := NewRootCommand()
	var out, errOut bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), errOut.String(), err
}

func writeTempFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestRootCommand_CommandTree(t *testing.T) {
	root := NewRootCommand()

	var names []string
	for _, c := range root.Commands() {
		names = append(names, c.Name())
	}
	assert.Contains(t, names, "validate")
	assert.Contains(t, names, "resolve")
	assert.Contains(t, names, "coords")
	assert.Contains(t, names, "migrate")
	assert.Contains(t, names, "events")
	assert.Contains(t, names, "logs")
}

func TestRootCommand_UnknownCommand(t *testing.T) {
	_, _, err := runCommand(t, "frobnicate")
	assert.Error(t, err)
}

func TestCoordsParse(t *testing.T) {
	path := writeTempFile(t, "water.txt",
		"O 0.0 0.0 0.0\nH 0.0 0.0 0.9584\nH 0.9293 0.0 -0.2396\n")

	out, _, err := runCommand(t, "coords", "parse", path)
	require.NoError(t, err)

	var rec stypes.Coordinates
	require.NoError(t, json.Unmarshal([]byte(out), &rec))
	assert.Equal(t, []string{"O", "H", "H"}, rec.Symbols)
	assert.Equal(t, []int{16, 1, 1}, rec.Isotopes)
}

func TestCoordsParse_BadInput(t *testing.T) {
	path := writeTempFile(t, "bad.txt", "Zz 0 0 0\n")

	_, _, err := runCommand(t, "coords", "parse", path)
	assert.Error(t, err)
}

func TestCoordsFormat_RoundTrip(t *testing.T) {
	rec := stypes.Coordinates{
		Symbols:  []string{"C", "O"},
		Isotopes: []int{13, 16},
		Coords:   [][3]float64{{0, 0, 0}, {0, 0, 1.128}},
	}
	data, err := json.Marshal(rec)
	require.NoError(t, err)
	path := writeTempFile(t, "co.json", string(data))

	out, _, err := runCommand(t, "coords", "format", path, "--isotopes", "gaussian")
	require.NoError(t, err)
	assert.Contains(t, out, "C(Iso=13)")
	assert.Contains(t, out, "1.12800000")
}

func TestValidate_AcceptsCleanRecord(t *testing.T) {
	record := `{
		"label": "water",
		"charge": 0,
		"multiplicity": 1,
		"smiles": "O",
		"inchi": "InChI=1S/H2O/h1H2",
		"is_well": true,
		"coordinates": {
			"symbols": ["O", "H", "H"],
			"coords": [[0,0,0],[0,0,0.9584],[0.9293,0,-0.2396]]
		}
	}`
	path := writeTempFile(t, "water.json", record)

	out, _, err := runCommand(t, "validate", path)
	require.NoError(t, err)

	var report stypes.ValidationReport
	require.NoError(t, json.Unmarshal([]byte(out), &report))
	assert.True(t, report.Valid)
	require.NotNil(t, report.Resolved)
	assert.Equal(t, "O", report.Resolved.SMILES)
}

func TestValidate_RejectsServerOwnedFields(t *testing.T) {
	record := `{
		"label": "water",
		"multiplicity": 1,
		"smiles": "O",
		"inchi": "InChI=1S/H2O/h1H2",
		"reviewed": true,
		"coordinates": {
			"symbols": ["O", "H", "H"],
			"coords": [[0,0,0],[0,0,0.9584],[0.9293,0,-0.2396]]
		}
	}`
	path := writeTempFile(t, "reviewed.json", record)

	out, _, err := runCommand(t, "validate", path)
	require.Error(t, err)

	var report stypes.ValidationReport
	require.NoError(t, json.Unmarshal([]byte(out), &report))
	assert.False(t, report.Valid)

	fields := make([]string, len(report.Violations))
	for i, v := range report.Violations {
		fields[i] = v.Field
	}
	assert.Contains(t, fields, "reviewed")
}

func TestResolve_PassthroughWithoutOracle(t *testing.T) {
	out, _, err := runCommand(t, "resolve",
		"--smiles", "O", "--inchi", "InChI=1S/H2O/h1H2", "--multiplicity", "1")
	require.NoError(t, err)

	var ids stypes.IdentifierSet
	require.NoError(t, json.Unmarshal([]byte(out), &ids))
	assert.Equal(t, "O", ids.SMILES)
	assert.Equal(t, "InChI=1S/H2O/h1H2", ids.InChI)
}

func TestMigrateForce_RejectsBadVersion(t *testing.T) {
	_, _, err := runCommand(t, "migrate", "force", "not-a-number")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid version")
}
