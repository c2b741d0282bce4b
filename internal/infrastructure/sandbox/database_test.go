package sandbox

import (
	"context"
	"database/sql"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const expectedVersion = 2

func openDB(t *testing.T, path string) *sql.DB {
	t.Helper()
	db, err := sql.Open("sqlite3", path)
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func countRows(t *testing.T, db *sql.DB, query string, args ...any) int {
	t.Helper()
	var n int
	require.NoError(t, db.QueryRow(query, args...).Scan(&n))
	return n
}

func TestInit_FreshDatabase(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "sandbox.db")

	require.NoError(t, Init(ctx, path, false))
	assert.True(t, Exists(path))

	db := openDB(t, path)
	version, err := Version(ctx, db)
	require.NoError(t, err)
	assert.Equal(t, int64(expectedVersion), version)

	assert.Equal(t, 5, countRows(t, db, "SELECT COUNT(*) FROM wp_posts WHERE post_type = 'shop_order'"))
	assert.Equal(t, 1, countRows(t, db, "SELECT COUNT(*) FROM wp_posts WHERE post_type = 'shop_order_refund'"))
	assert.Equal(t, 11, countRows(t, db, "SELECT COUNT(*) FROM wp_woocommerce_order_items"))
	assert.Equal(t, 0, countRows(t, db, "SELECT COUNT(*) FROM wp_comments"))
}

func TestInit_Idempotent(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "sandbox.db")

	require.NoError(t, Init(ctx, path, false))
	require.NoError(t, Init(ctx, path, false))

	db := openDB(t, path)
	assert.Equal(t, 5, countRows(t, db, "SELECT COUNT(*) FROM wp_posts WHERE post_type = 'shop_order'"),
		"seeds should not be applied twice")
}

func TestInit_ForceResetsData(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "sandbox.db")
	require.NoError(t, Init(ctx, path, false))

	db := openDB(t, path)
	_, err := db.Exec("UPDATE wp_posts SET post_status = 'wc-failed' WHERE ID = 1001")
	require.NoError(t, err)
	require.NoError(t, db.Close())

	require.NoError(t, Init(ctx, path, true))

	db = openDB(t, path)
	var st string
	require.NoError(t, db.QueryRow("SELECT post_status FROM wp_posts WHERE ID = 1001").Scan(&st))
	assert.Equal(t, "wc-processing", st)
}

func TestInit_ForceWithoutExistingFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "new.db")
	require.NoError(t, Init(context.Background(), path, true))

	_, err := os.Stat(path)
	assert.NoError(t, err)
}

func TestExists(t *testing.T) {
	assert.False(t, Exists(filepath.Join(t.TempDir(), "missing.db")))
}
