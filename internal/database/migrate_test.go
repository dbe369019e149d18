package database

import (
	"io/fs"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oszuidwest/zwfm-mixdown/internal/config"
)

func TestMigrationFiles_ArePaired(t *testing.T) {
	entries, err := fs.ReadDir(migrationFiles, "migrations")
	require.NoError(t, err)
	require.NotEmpty(t, entries)

	ups, downs := map[string]bool{}, map[string]bool{}
	for _, e := range entries {
		name := e.Name()
		switch {
		case strings.HasSuffix(name, ".up.sql"):
			ups[strings.TrimSuffix(name, ".up.sql")] = true
		case strings.HasSuffix(name, ".down.sql"):
			downs[strings.TrimSuffix(name, ".down.sql")] = true
		default:
			t.Errorf("unexpected file %s", name)
		}

		data, err := fs.ReadFile(migrationFiles, "migrations/"+name)
		require.NoError(t, err)
		// The mysql driver runs without multiStatements; one statement per file.
		assert.Equal(t, 1, strings.Count(string(data), ";"), name)
	}
	assert.Equal(t, ups, downs)
}

func TestDSN(t *testing.T) {
	dsn := DSN(config.DatabaseConfig{Host: "db", Port: 3307, User: "u", Password: "p", Database: "mixdown"})
	assert.Equal(t, "u:p@tcp(db:3307)/mixdown?charset=utf8mb4&parseTime=True&loc=UTC", dsn)
}
