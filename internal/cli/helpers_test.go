package cli

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/eshaffer321/wooctl/internal/adapters/store"
	"github.com/eshaffer321/wooctl/internal/infrastructure/config"
)

var testNow = time.Date(2024, time.April, 1, 12, 0, 0, 0, time.UTC)

const restConfig = `
store:
  driver: rest
  timezone: UTC
  rest:
    url: http://127.0.0.1:1
observability:
  logging:
    level: error
`

type runResult struct {
	stdout string
	stderr string
	code   int
}

// writeConfig writes a config file into a temp dir and returns its path
func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

// openerFor returns a StoreOpener that hands out st and counts calls
func openerFor(st store.Store, calls *int) StoreOpener {
	return func(context.Context, *config.Config, *slog.Logger, string) (store.Store, error) {
		if calls != nil {
			*calls++
		}
		return st, nil
	}
}

func newTestApp(opener StoreOpener) (*App, *bytes.Buffer, *bytes.Buffer) {
	var stdout, stderr bytes.Buffer
	app := &App{
		Stdout:    &stdout,
		Stderr:    &stderr,
		OpenStore: opener,
		Now:       func() time.Time { return testNow },
	}
	return app, &stdout, &stderr
}

// run executes args against st with the REST test config
func run(t *testing.T, st store.Store, args ...string) runResult {
	t.Helper()
	return runWith(t, openerFor(st, nil), restConfig, args...)
}

func runWith(t *testing.T, opener StoreOpener, cfg string, args ...string) runResult {
	t.Helper()
	app, stdout, stderr := newTestApp(opener)
	full := append([]string{"--config", writeConfig(t, cfg)}, args...)
	code := app.Execute(context.Background(), full)
	return runResult{stdout: stdout.String(), stderr: stderr.String(), code: code}
}

// mockFixture holds two orders: a processing card-less bank transfer with a
// shipping line, and a completed order paid with an unregistered gateway
func mockFixture() *store.MockStore {
	m := store.NewMockStore()
	m.AddOrder(&store.Order{
		ID:            1001,
		Status:        "processing",
		Created:       time.Date(2024, time.March, 1, 9, 15, 0, 0, time.UTC),
		CustomerID:    12,
		PaymentMethod: "bacs",
		Total:         decimal.RequireFromString("59.4"),
		ShippingLines: []store.ShippingLine{{
			ID:          102,
			MethodTitle: "Flat rate",
			MethodID:    "flat_rate",
			Total:       decimal.RequireFromString("4.50"),
		}},
	})
	m.AddOrder(&store.Order{
		ID:            1002,
		Status:        "completed",
		Created:       time.Date(2024, time.March, 5, 14, 30, 0, 0, time.UTC),
		PaymentMethod: "stripe",
		Total:         decimal.NewFromInt(20),
	})
	m.AddOrder(&store.Order{ID: 1020, RecordType: "page"})
	m.AddGateway(store.Gateway{ID: "bacs", Title: "Direct bank transfer", Enabled: true})
	return m
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}
