package postgres

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRollbackMigration_RejectsNonPositiveSteps(t *testing.T) {
	err := RollbackMigration("postgres://localhost/tckdb", "file://migrations", 0)
	assert.ErrorContains(t, err, "steps must be greater than 0")

	err = RollbackMigration("postgres://localhost/tckdb", "file://migrations", -3)
	assert.ErrorContains(t, err, "steps must be greater than 0")
}

func TestRunMigrations_BadSourcePath(t *testing.T) {
	err := RunMigrations("postgres://localhost/tckdb", "file://does/not/exist")
	assert.ErrorContains(t, err, "failed to create migrate instance")
}

func TestMigrationStatus_BadSourcePath(t *testing.T) {
	_, _, err := MigrationStatus("postgres://localhost/tckdb", "file://does/not/exist")
	assert.ErrorContains(t, err, "failed to create migrate instance")
}
