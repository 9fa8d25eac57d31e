package database

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMigrations_Ordered(t *testing.T) {
	files, err := Migrations()
	require.NoError(t, err)
	require.NotEmpty(t, files)
	assert.Equal(t, "0001_init.sql", files[0])
	assert.IsIncreasing(t, files)
}

func TestMigrations_LegacyStatusesRewritten(t *testing.T) {
	content, err := migrationsFS.ReadFile("migrations/0002_project_legacy_status.sql")
	require.NoError(t, err)
	for _, legacy := range []string{"planning", "contracts_signed", "preparation", "ready", "in_progress"} {
		assert.Contains(t, string(content), "'"+legacy+"'")
	}
}
