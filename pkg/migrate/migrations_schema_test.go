package migrate_test

import (
	"io/fs"
	"testing"

	"github.com/groupcollect/groupcollect-backend/pkg/migrate"
	"github.com/stretchr/testify/require"
)

func TestInitSchemaMigrationContainsTables(t *testing.T) {
	matches, err := fs.Glob(migrate.Migrations(), "*_init_schema.sql")
	require.NoError(t, err)
	require.NotEmpty(t, matches, "no init schema migration found")

	data, err := fs.ReadFile(migrate.Migrations(), matches[0])
	require.NoError(t, err)
	content := string(data)

	checks := []string{
		"CREATE TABLE IF NOT EXISTS users",
		"CONSTRAINT users_username_key UNIQUE (username)",
		"CREATE TABLE IF NOT EXISTS profiles",
		"CONSTRAINT profiles_user_id_key UNIQUE (user_id)",
		"CREATE TABLE IF NOT EXISTS collects",
		"raised_amount numeric(12,2) NOT NULL DEFAULT 0",
		"activated_at timestamptz",
		"CREATE TABLE IF NOT EXISTS payments",
		"amount numeric(10,2) NOT NULL CHECK (amount > 0)",
		"CREATE TABLE IF NOT EXISTS comments",
		"CREATE TABLE IF NOT EXISTS notifications",
		"recipients text[] NOT NULL",
		"DROP TABLE IF EXISTS collects;",
	}
	for _, sub := range checks {
		require.Contains(t, content, sub)
	}
}

func TestValidateDirAcceptsRepoMigrations(t *testing.T) {
	require.NoError(t, migrate.ValidateDir("migrations"))
}
