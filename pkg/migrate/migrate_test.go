package migrate

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"testing/fstest"
	"time"

	"github.com/stretchr/testify/require"
)

const validMigration = `-- +goose Up
-- +goose StatementBegin
CREATE TABLE t (id int);
-- +goose StatementEnd

-- +goose Down
DROP TABLE t;
`

func TestEmbeddedMigrationsAreValid(t *testing.T) {
	require.NoError(t, ValidateFS(Migrations()))
}

func TestValidateFSRejectsBadFiles(t *testing.T) {
	cases := map[string]fstest.MapFS{
		"bad name": {
			"init.sql": {Data: []byte(validMigration)},
		},
		"duplicate version": {
			"20240101000000_a.sql": {Data: []byte(validMigration)},
			"20240101000000_b.sql": {Data: []byte(validMigration)},
		},
		"missing down": {
			"20240101000000_a.sql": {Data: []byte("-- +goose Up\nSELECT 1;\n")},
		},
		"unbalanced statement": {
			"20240101000000_a.sql": {Data: []byte("-- +goose Up\n-- +goose StatementBegin\nSELECT 1;\n-- +goose Down\n")},
		},
		"empty": {},
	}
	for name, fsys := range cases {
		require.Error(t, ValidateFS(fsys), name)
	}

	ok := fstest.MapFS{
		"20240101000000_a.sql": {Data: []byte(validMigration)},
		"README.md":            {Data: []byte("ignored")},
	}
	require.NoError(t, ValidateFS(ok))
}

func TestCreateSQLMigration(t *testing.T) {
	dir := t.TempDir()
	now := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)

	path, err := createAt(dir, "  Add Collect Tags!! ", now)
	require.NoError(t, err)
	require.Equal(t, filepath.Join(dir, "20240601120000_add_collect_tags.sql"), path)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	require.True(t, strings.HasPrefix(string(data), "-- +goose Up"))
	require.NoError(t, ValidateDir(dir))

	_, err = createAt(dir, "add collect tags", now)
	require.Error(t, err, "existing file must not be overwritten")

	_, err = createAt(dir, "!!!", now)
	require.Error(t, err)
}

func TestMigrationSlug(t *testing.T) {
	require.Equal(t, "payments_index", migrationSlug("Payments  Index"))
	require.Equal(t, "a_b", migrationSlug("__a--b__"))
	require.Empty(t, migrationSlug("  "))
}
