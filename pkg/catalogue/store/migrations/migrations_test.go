package migrations

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// These checks stay off a live database entirely: they only confirm the
// embedded SQL pairs are present and superficially well-formed, which is
// what RunMigrations actually depends on at startup.
func TestFS_ContainsUpAndDownMigration(t *testing.T) {
	t.Parallel()

	entries, err := FS.ReadDir(".")
	require.NoError(t, err)

	var names []string
	for _, e := range entries {
		names = append(names, e.Name())
	}

	assert.Contains(t, names, "0001_init.up.sql")
	assert.Contains(t, names, "0001_init.down.sql")
}

func TestFS_UpMigrationCreatesEveryTable(t *testing.T) {
	t.Parallel()

	b, err := FS.ReadFile("0001_init.up.sql")
	require.NoError(t, err)
	sql := string(b)

	for _, table := range []string{
		"users", "groups", "user_group_memberships", "folders",
		"folder_owners", "folder_validators", "folder_group_permissions",
		"permission_requests", "tasks", "audit_events", "admin_notifications",
	} {
		assert.Contains(t, sql, "CREATE TABLE IF NOT EXISTS "+table, "missing CREATE TABLE for %s", table)
	}
}

func TestFS_DownMigrationDropsEveryTable(t *testing.T) {
	t.Parallel()

	b, err := FS.ReadFile("0001_init.down.sql")
	require.NoError(t, err)
	sql := strings.ToUpper(string(b))

	for _, table := range []string{
		"USERS", "GROUPS", "USER_GROUP_MEMBERSHIPS", "FOLDERS",
		"FOLDER_OWNERS", "FOLDER_VALIDATORS", "FOLDER_GROUP_PERMISSIONS",
		"PERMISSION_REQUESTS", "TASKS", "AUDIT_EVENTS", "ADMIN_NOTIFICATIONS",
	} {
		assert.Contains(t, sql, table, "missing DROP TABLE for %s", table)
	}
}
