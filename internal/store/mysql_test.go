package store

import (
	"context"
	"os"
	"testing"

	"github.com/stretchr/testify/require"
)

// newTestDB connects to MYSQL_TEST_DSN and empties every table.
// The DSN must carry parseTime=true.
func newTestDB(t *testing.T) *MYSQLStore {
	t.Helper()
	dsn := os.Getenv("MYSQL_TEST_DSN")
	if dsn == "" {
		t.Skip("MYSQL_TEST_DSN is not set")
	}
	db, err := New(context.Background(), Config{
		DSN:         dsn,
		Automigrate: true,
	})
	require.NoError(t, err)
	t.Cleanup(db.Close)

	ctx := context.Background()
	_, err = db.db.ExecContext(ctx, "SET FOREIGN_KEY_CHECKS = 0")
	require.NoError(t, err)
	for _, table := range []string{"general_tag", "tag", "general_media", "media", "work_project", "post", "project", "work", "general_section", "admins"} {
		_, err = db.db.ExecContext(ctx, "DELETE FROM "+table)
		require.NoError(t, err)
	}
	_, err = db.db.ExecContext(ctx, "SET FOREIGN_KEY_CHECKS = 1")
	require.NoError(t, err)
	_, err = db.db.ExecContext(ctx, "UPDATE preferences SET enable_images = TRUE, enable_3d = FALSE WHERE id = 1")
	require.NoError(t, err)

	return db
}
