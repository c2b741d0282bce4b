package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestLoadFromYAML(t *testing.T) {
	path := writeConfig(t, `
store:
  driver: wpdb
  timezone: Europe/London
  price_decimals: 3
  wpdb:
    sql_driver: sqlite3
    dsn: shop.db
    table_prefix: shop_
    extra_statuses:
      - code: wc-shipped
        label: Shipped
sandbox:
  addr: ":9000"
  allow_origins: ["http://localhost:5173"]
observability:
  logging:
    level: debug
    format: json
    file: wooctl.log
    max_size_mb: 5
`)

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, DriverWPDB, cfg.Store.Driver)
	assert.Equal(t, 3, cfg.Store.PriceDecimals)
	assert.Equal(t, "sqlite3", cfg.Store.WPDB.SQLDriver)
	assert.Equal(t, "shop_", cfg.Store.WPDB.TablePrefix)
	require.Len(t, cfg.Store.WPDB.ExtraStatuses, 1)
	assert.Equal(t, "Shipped", cfg.Store.WPDB.ExtraStatuses[0].Label)
	assert.Equal(t, ":9000", cfg.Sandbox.Addr)
	assert.Equal(t, DefaultSandboxDB, cfg.Sandbox.DatabasePath)
	assert.Equal(t, []string{"http://localhost:5173"}, cfg.Sandbox.AllowOrigins)
	assert.Equal(t, "json", cfg.Observability.Logging.Format)
	assert.Equal(t, 5, cfg.Observability.Logging.MaxSizeMB)
	assert.NoError(t, cfg.Validate())
}

func TestLoad_AppliesDefaults(t *testing.T) {
	cfg, err := Load(writeConfig(t, "store:\n  rest:\n    url: https://shop.example.com\n"))
	require.NoError(t, err)

	assert.Equal(t, DriverREST, cfg.Store.Driver)
	assert.Equal(t, DefaultTimezone, cfg.Store.Timezone)
	assert.Equal(t, DefaultPriceDecimals, cfg.Store.PriceDecimals)
	assert.Equal(t, DefaultPageSize, cfg.Store.REST.PageSize)
	assert.Equal(t, DefaultRetryMax, cfg.Store.REST.RetryMax)
	assert.Equal(t, "info", cfg.Observability.Logging.Level)
	assert.Equal(t, "text", cfg.Observability.Logging.Format)
	assert.NoError(t, cfg.Validate())
}

func TestLoad_KeepsExplicitZero(t *testing.T) {
	cfg, err := Load(writeConfig(t, `
store:
  price_decimals: 0
  rest:
    url: https://shop.example.jp
    retry_max: 0
`))
	require.NoError(t, err)

	assert.Equal(t, 0, cfg.Store.PriceDecimals, "zero-decimal currencies")
	assert.Equal(t, 0, cfg.Store.REST.RetryMax, "retries disabled")
}

func TestLoad_NegativeFallsBackToDefaults(t *testing.T) {
	cfg, err := Load(writeConfig(t, "store:\n  price_decimals: -1\n  rest:\n    retry_max: -2\n"))
	require.NoError(t, err)

	assert.Equal(t, DefaultPriceDecimals, cfg.Store.PriceDecimals)
	assert.Equal(t, DefaultRetryMax, cfg.Store.REST.RetryMax)
}

func TestLoad_InvalidYAML(t *testing.T) {
	_, err := Load(writeConfig(t, "store: [unclosed"))
	assert.Error(t, err)
}

func TestLoadFromEnv(t *testing.T) {
	t.Setenv("WOO_STORE_DRIVER", "wpdb")
	t.Setenv("WOO_DB_DRIVER", "sqlite3")
	t.Setenv("WOO_DB_DSN", "env.db")
	t.Setenv("WOO_TIMEZONE", "America/New_York")
	t.Setenv("WOO_SANDBOX_DB", "env-sandbox.db")
	t.Setenv("LOG_FILE", "/tmp/wooctl.log")

	cfg := LoadFromEnv()
	assert.Equal(t, DriverWPDB, cfg.Store.Driver)
	assert.Equal(t, "sqlite3", cfg.Store.WPDB.SQLDriver)
	assert.Equal(t, "env.db", cfg.Store.WPDB.DSN)
	assert.Equal(t, "env-sandbox.db", cfg.Sandbox.DatabasePath)
	assert.Equal(t, "/tmp/wooctl.log", cfg.Observability.Logging.File)

	loc, err := cfg.Store.Location()
	require.NoError(t, err)
	assert.Equal(t, "America/New_York", loc.String())
}

func TestLoadFromEnv_Defaults(t *testing.T) {
	for _, key := range []string{"WOO_STORE_DRIVER", "WOO_URL", "WOO_TIMEZONE", "WOO_SANDBOX_DB", "LOG_LEVEL"} {
		t.Setenv(key, "")
	}

	cfg := LoadFromEnv()
	assert.Equal(t, DriverREST, cfg.Store.Driver)
	assert.Equal(t, DefaultTimezone, cfg.Store.Timezone)
	assert.Equal(t, DefaultSandboxDB, cfg.Sandbox.DatabasePath)
	assert.Equal(t, "info", cfg.Observability.Logging.Level)
	assert.ErrorContains(t, cfg.Validate(), "store.rest.url is required")
}

func TestLoadOrEnv_FallbackToEnv(t *testing.T) {
	t.Setenv("WOO_URL", "https://fallback.example.com")

	cfg := LoadOrEnv_WithPath("nonexistent.yaml")
	assert.NotNil(t, cfg)
	assert.Equal(t, "https://fallback.example.com", cfg.Store.REST.URL)
}

func TestEnvVarExpansion(t *testing.T) {
	t.Setenv("TEST_WOO_KEY", "ck_expanded")
	t.Setenv("TEST_WOO_SECRET", "cs_expanded")

	cfg, err := Load(writeConfig(t, `
store:
  rest:
    url: https://shop.example.com
    consumer_key: "${TEST_WOO_KEY}"
    consumer_secret: "${TEST_WOO_SECRET}"
`))
	require.NoError(t, err)
	assert.Equal(t, "ck_expanded", cfg.Store.REST.ConsumerKey)
	assert.Equal(t, "cs_expanded", cfg.Store.REST.ConsumerSecret)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{
			name:   "valid rest",
			mutate: func(c *Config) {},
		},
		{
			name:    "unknown driver",
			mutate:  func(c *Config) { c.Store.Driver = "graphql" },
			wantErr: "store.driver must be",
		},
		{
			name:    "bad timezone",
			mutate:  func(c *Config) { c.Store.Timezone = "Mars/Olympus" },
			wantErr: "invalid store.timezone",
		},
		{
			name:    "bad timeout",
			mutate:  func(c *Config) { c.Store.REST.Timeout = "soon" },
			wantErr: "invalid store.rest.timeout",
		},
		{
			name: "wpdb without dsn",
			mutate: func(c *Config) {
				c.Store.Driver = DriverWPDB
				c.Store.WPDB.DSN = ""
			},
			wantErr: "store.wpdb.dsn is required",
		},
		{
			name: "wpdb bad sql driver",
			mutate: func(c *Config) {
				c.Store.Driver = DriverWPDB
				c.Store.WPDB.DSN = "x"
				c.Store.WPDB.SQLDriver = "postgres"
			},
			wantErr: "sql_driver must be",
		},
		{
			name: "extra status without code",
			mutate: func(c *Config) {
				c.Store.Driver = DriverWPDB
				c.Store.WPDB.DSN = "x"
				c.Store.WPDB.ExtraStatuses = []StatusConfig{{Label: "Shipped"}}
			},
			wantErr: "need a code",
		},
		{
			name:    "bad log format",
			mutate:  func(c *Config) { c.Observability.Logging.Format = "xml" },
			wantErr: "logging.format",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := &Config{Store: StoreConfig{REST: RESTConfig{URL: "https://shop.example.com"}}}
			cfg.applyDefaults()
			tt.mutate(cfg)

			err := cfg.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			assert.ErrorContains(t, err, tt.wantErr)
		})
	}
}

func TestTimeoutDuration(t *testing.T) {
	d, err := RESTConfig{Timeout: "15s"}.TimeoutDuration()
	require.NoError(t, err)
	assert.Equal(t, 15*time.Second, d)

	d, err = RESTConfig{}.TimeoutDuration()
	require.NoError(t, err)
	assert.Equal(t, 30*time.Second, d)
}

func TestGetAPIKey(t *testing.T) {
	cfg := &Config{}
	t.Setenv("WC_CONSUMER_KEY", "ck_from_env")

	assert.Equal(t, "ck_config", cfg.GetAPIKey("ck_config", "WC_CONSUMER_KEY"))
	assert.Equal(t, "ck_from_env", cfg.GetAPIKey("", "WOO_MISSING_KEY", "WC_CONSUMER_KEY"))
	assert.Empty(t, cfg.GetAPIKey("", "WOO_MISSING_KEY"))
}
