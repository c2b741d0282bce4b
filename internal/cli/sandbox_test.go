package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"net"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/eshaffer321/wooctl/internal/adapters/store/wpdb"
	"github.com/eshaffer321/wooctl/internal/infrastructure/sandbox"
)

func wpdbConfig(path string) string {
	return fmt.Sprintf(`
store:
  driver: wpdb
  timezone: UTC
  wpdb:
    sql_driver: sqlite3
    dsn: %s
sandbox:
  database_path: %s
observability:
  logging:
    level: error
`, path, path)
}

// initSandbox runs `sandbox init` and returns the database path
func initSandbox(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "sandbox.db")

	res := runWith(t, OpenStore, restConfig, "sandbox", "init", "--db", path)
	require.Equal(t, 0, res.code, res.stderr)
	assert.Equal(t, "Success: Sandbox database ready at "+path+"\n", res.stdout)
	return path
}

func TestSandboxInit_DefaultPathFromConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "from-config.db")

	res := runWith(t, OpenStore, wpdbConfig(path), "sandbox", "init")

	require.Equal(t, 0, res.code, res.stderr)
	assert.True(t, sandbox.Exists(path))
}

func TestSandboxInit_Force(t *testing.T) {
	path := initSandbox(t)
	cfg := wpdbConfig(path)

	res := runWith(t, OpenStore, cfg, "update-order", "1004", "failed")
	require.Equal(t, 0, res.code, res.stderr)

	res = runWith(t, OpenStore, cfg, "sandbox", "init", "--db", path, "--force")
	require.Equal(t, 0, res.code, res.stderr)

	res = runWith(t, OpenStore, cfg, "update-order", "1004", "pending")
	require.Equal(t, 0, res.code, res.stderr)
	assert.Equal(t, "Success: Order status was already pending\n", res.stdout, "seed data restored")
}

func TestWPDB_EndToEnd(t *testing.T) {
	path := initSandbox(t)
	cfg := wpdbConfig(path)

	res := runWith(t, OpenStore, cfg, "order", "list", "--format=json")
	require.Equal(t, 0, res.code, res.stderr)
	var rows []map[string]any
	require.NoError(t, json.Unmarshal([]byte(res.stdout), &rows), res.stdout)
	var ids []float64
	for _, r := range rows {
		ids = append(ids, r["id"].(float64))
	}
	assert.Equal(t, []float64{1005, 1004, 1003, 1002, 1001}, ids)

	res = runWith(t, OpenStore, cfg, "update-order", "1001", "completed")
	require.Equal(t, 0, res.code, res.stderr)
	assert.Equal(t, "Success: Status of order #1001 is now completed\n", res.stdout)

	res = runWith(t, OpenStore, cfg, "order", "1001")
	require.Equal(t, 0, res.code, res.stderr)
	var detail map[string]any
	require.NoError(t, json.Unmarshal([]byte(res.stdout), &detail))
	assert.Equal(t, "completed", detail["status"].(map[string]any)["code"])
}

func TestWPDB_InvalidConfig(t *testing.T) {
	cfg := `
store:
  driver: wpdb
  wpdb:
    sql_driver: postgres
observability:
  logging:
    level: error
`
	res := runWith(t, OpenStore, cfg, "order", "1001")

	assert.Equal(t, 1, res.code)
	assert.Contains(t, res.stderr, "Error: invalid configuration")
	assert.Contains(t, res.stderr, "store.wpdb.sql_driver must be mysql or sqlite3")
	assert.Contains(t, res.stderr, "store.wpdb.dsn is required")
}

func TestREST_EndToEndAgainstSandboxServer(t *testing.T) {
	path := initSandbox(t)

	st, err := wpdb.Open(context.Background(), wpdb.Config{
		Driver: wpdb.DriverSQLite,
		DSN:    path,
	}, testLogger())
	require.NoError(t, err)
	t.Cleanup(func() { _ = st.Close() })

	srv := httptest.NewServer(sandbox.NewServer(st, sandbox.ServerConfig{
		ConsumerKey:    "ck_test",
		ConsumerSecret: "cs_test",
	}, testLogger()).Handler())
	t.Cleanup(srv.Close)

	cfg := fmt.Sprintf(`
store:
  driver: rest
  rest:
    url: %s
    consumer_key: ck_test
    consumer_secret: cs_test
    retry_max: 0
observability:
  logging:
    level: error
`, srv.URL)

	res := runWith(t, OpenStore, cfg, "order", "1002")
	require.Equal(t, 0, res.code, res.stderr)
	var detail map[string]any
	require.NoError(t, json.Unmarshal([]byte(res.stdout), &detail))
	assert.EqualValues(t, 1002, detail["order_id"])
	refunds := detail["refunds"].([]any)
	require.Len(t, refunds, 1)

	res = runWith(t, OpenStore, cfg, "order", "list", "--type=on-hold", "--format=json")
	require.Equal(t, 0, res.code, res.stderr)
	var rows []map[string]any
	require.NoError(t, json.Unmarshal([]byte(res.stdout), &rows))
	require.Len(t, rows, 1)
	assert.EqualValues(t, 1003, rows[0]["id"])
	assert.Equal(t, "N/A", rows[0]["payment_id"], "stripe is not registered in the sandbox")

	res = runWith(t, OpenStore, cfg, "update-order", "1003", "processing")
	require.Equal(t, 0, res.code, res.stderr)
	assert.Equal(t, "Success: Status of order #1003 is now processing\n", res.stdout)

	res = runWith(t, OpenStore, cfg, "update-order", "1020", "processing")
	assert.Equal(t, 1, res.code)
	assert.Contains(t, res.stderr, "Error: Order not found")
}

func TestSandboxServe_RequiresInit(t *testing.T) {
	path := filepath.Join(t.TempDir(), "missing.db")

	res := runWith(t, OpenStore, restConfig, "sandbox", "serve", "--db", path, "--addr", "127.0.0.1:0")

	assert.Equal(t, 1, res.code)
	assert.Contains(t, res.stderr, "run `wooctl sandbox init` first")
}

func TestSandboxServe_StopsOnCancel(t *testing.T) {
	path := initSandbox(t)

	app, _, stderr := newTestApp(OpenStore)
	ctx, cancel := context.WithCancel(context.Background())
	time.AfterFunc(200*time.Millisecond, cancel)

	code := app.Execute(ctx, []string{
		"--config", writeConfig(t, restConfig),
		"sandbox", "serve", "--db", path, "--addr", "127.0.0.1:0",
	})

	assert.Equal(t, 0, code, stderr.String())
}

func TestServeUntilDone_ReturnsWhenServeFails(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	require.NoError(t, ln.Close())

	errCh := make(chan error, 1)
	go func() {
		errCh <- serveUntilDone(context.Background(), &http.Server{}, ln, testLogger())
	}()

	select {
	case err := <-errCh:
		require.Error(t, err)
		assert.Contains(t, err.Error(), "sandbox server failed")
	case <-time.After(5 * time.Second):
		t.Fatal("serveUntilDone did not return after Serve failed")
	}
}

func TestServeUntilDone_StopsOnCancel(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	errCh := make(chan error, 1)
	go func() {
		errCh <- serveUntilDone(ctx, &http.Server{Handler: http.NotFoundHandler()}, ln, testLogger())
	}()
	cancel()

	select {
	case err := <-errCh:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("serveUntilDone did not return after cancel")
	}
}
