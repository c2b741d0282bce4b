// Package config provides centralized configuration management.
//
// Configuration can be loaded from:
//  1. YAML file (config.yaml)
//  2. Environment variables (fallback)
//
// Example usage:
//
//	cfg := config.LoadOrEnv()
//	loc, err := cfg.Store.Location()
//	url := cfg.Store.REST.URL
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Store drivers
const (
	DriverREST = "rest"
	DriverWPDB = "wpdb"
)

// Config represents the entire application configuration
type Config struct {
	Store         StoreConfig         `yaml:"store"`
	Sandbox       SandboxConfig       `yaml:"sandbox"`
	Observability ObservabilityConfig `yaml:"observability"`
}

// StoreConfig selects and configures the WooCommerce store backend
type StoreConfig struct {
	Driver        string     `yaml:"driver"`   // rest or wpdb
	Timezone      string     `yaml:"timezone"` // IANA name of the store's timezone
	PriceDecimals int        `yaml:"price_decimals"`
	REST          RESTConfig `yaml:"rest"`
	WPDB          WPDBConfig `yaml:"wpdb"`
}

// RESTConfig holds WooCommerce REST API settings
type RESTConfig struct {
	URL            string `yaml:"url"`
	ConsumerKey    string `yaml:"consumer_key"`
	ConsumerSecret string `yaml:"consumer_secret"`
	Timeout        string `yaml:"timeout"`
	RetryMax       int    `yaml:"retry_max"`
	PageSize       int    `yaml:"page_size"`
}

// WPDBConfig holds direct database settings
type WPDBConfig struct {
	SQLDriver     string         `yaml:"sql_driver"` // mysql or sqlite3
	DSN           string         `yaml:"dsn"`
	TablePrefix   string         `yaml:"table_prefix"`
	ExtraStatuses []StatusConfig `yaml:"extra_statuses"`
}

// StatusConfig declares a status registered by a plugin
type StatusConfig struct {
	Code  string `yaml:"code"`
	Label string `yaml:"label"`
}

// SandboxConfig holds settings for the local sandbox store
type SandboxConfig struct {
	DatabasePath   string   `yaml:"database_path"`
	Addr           string   `yaml:"addr"`
	ConsumerKey    string   `yaml:"consumer_key"`
	ConsumerSecret string   `yaml:"consumer_secret"`
	AllowOrigins   []string `yaml:"allow_origins"`
}

// ObservabilityConfig holds observability settings
type ObservabilityConfig struct {
	Logging LoggingConfig `yaml:"logging"`
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	Level      string `yaml:"level"`
	Format     string `yaml:"format"` // text or json
	File       string `yaml:"file"`   // optional rotating log file
	MaxSizeMB  int    `yaml:"max_size_mb"`
	MaxBackups int    `yaml:"max_backups"`
	MaxAgeDays int    `yaml:"max_age_days"`
}

// Defaults
const (
	DefaultTimezone      = "UTC"
	DefaultPriceDecimals = 2
	DefaultTimeout       = "30s"
	DefaultRetryMax      = 3
	DefaultPageSize      = 100
	DefaultTablePrefix   = "wp_"
	DefaultSandboxDB     = "wooctl-sandbox.db"
	DefaultSandboxAddr   = ":8089"
)

// Load reads and parses the config file
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	// Expand environment variables (e.g., ${WOO_CONSUMER_SECRET})
	expanded := os.ExpandEnv(string(data))

	// Settings where zero is a valid choice are defaulted before decoding,
	// so an explicit 0 in the file is kept
	cfg := Config{
		Store: StoreConfig{
			PriceDecimals: DefaultPriceDecimals,
			REST:          RESTConfig{RetryMax: DefaultRetryMax},
		},
	}
	if err := yaml.Unmarshal([]byte(expanded), &cfg); err != nil {
		return nil, err
	}

	cfg.applyDefaults()
	return &cfg, nil
}

// LoadFromEnv loads configuration from environment variables only
func LoadFromEnv() *Config {
	cfg := &Config{
		Store: StoreConfig{
			Driver:        getEnv("WOO_STORE_DRIVER", DriverREST),
			Timezone:      getEnv("WOO_TIMEZONE", DefaultTimezone),
			PriceDecimals: getEnvInt("WOO_PRICE_DECIMALS", DefaultPriceDecimals),
			REST: RESTConfig{
				URL:            os.Getenv("WOO_URL"),
				ConsumerKey:    os.Getenv("WOO_CONSUMER_KEY"),
				ConsumerSecret: os.Getenv("WOO_CONSUMER_SECRET"),
				Timeout:        getEnv("WOO_TIMEOUT", DefaultTimeout),
				RetryMax:       getEnvInt("WOO_RETRY_MAX", DefaultRetryMax),
				PageSize:       getEnvInt("WOO_PAGE_SIZE", DefaultPageSize),
			},
			WPDB: WPDBConfig{
				SQLDriver:   getEnv("WOO_DB_DRIVER", "mysql"),
				DSN:         os.Getenv("WOO_DB_DSN"),
				TablePrefix: getEnv("WOO_TABLE_PREFIX", DefaultTablePrefix),
			},
		},
		Sandbox: SandboxConfig{
			DatabasePath: getEnv("WOO_SANDBOX_DB", DefaultSandboxDB),
			Addr:         getEnv("WOO_SANDBOX_ADDR", DefaultSandboxAddr),
		},
		Observability: ObservabilityConfig{
			Logging: LoggingConfig{
				Level:  getEnv("LOG_LEVEL", "info"),
				Format: getEnv("LOG_FORMAT", "text"),
				File:   os.Getenv("LOG_FILE"),
			},
		},
	}
	cfg.applyDefaults()
	return cfg
}

// LoadOrEnv tries to load from config.yaml, falls back to environment variables
func LoadOrEnv() *Config {
	return LoadOrEnv_WithPath("config.yaml")
}

// LoadOrEnv_WithPath tries to load from specified path, falls back to environment variables
func LoadOrEnv_WithPath(path string) *Config {
	if cfg, err := Load(path); err == nil {
		return cfg
	}
	return LoadFromEnv()
}

func (c *Config) applyDefaults() {
	s := &c.Store
	if s.Driver == "" {
		s.Driver = DriverREST
	}
	if s.Timezone == "" {
		s.Timezone = DefaultTimezone
	}
	if s.PriceDecimals < 0 {
		s.PriceDecimals = DefaultPriceDecimals
	}
	if s.REST.RetryMax < 0 {
		s.REST.RetryMax = DefaultRetryMax
	}
	if s.REST.Timeout == "" {
		s.REST.Timeout = DefaultTimeout
	}
	if s.REST.PageSize <= 0 {
		s.REST.PageSize = DefaultPageSize
	}
	if s.WPDB.SQLDriver == "" {
		s.WPDB.SQLDriver = "mysql"
	}
	if s.WPDB.TablePrefix == "" {
		s.WPDB.TablePrefix = DefaultTablePrefix
	}
	if c.Sandbox.DatabasePath == "" {
		c.Sandbox.DatabasePath = DefaultSandboxDB
	}
	if c.Sandbox.Addr == "" {
		c.Sandbox.Addr = DefaultSandboxAddr
	}
	if c.Observability.Logging.Level == "" {
		c.Observability.Logging.Level = "info"
	}
	if c.Observability.Logging.Format == "" {
		c.Observability.Logging.Format = "text"
	}
}

// Validate reports every missing or malformed value the selected driver needs
func (c *Config) Validate() error {
	var errs []error

	if _, err := c.Store.Location(); err != nil {
		errs = append(errs, err)
	}

	switch c.Store.Driver {
	case DriverREST:
		if c.Store.REST.URL == "" {
			errs = append(errs, errors.New("store.rest.url is required (or set WOO_URL)"))
		}
		if _, err := c.Store.REST.TimeoutDuration(); err != nil {
			errs = append(errs, err)
		}
	case DriverWPDB:
		switch c.Store.WPDB.SQLDriver {
		case "mysql", "sqlite3":
		default:
			errs = append(errs, fmt.Errorf("store.wpdb.sql_driver must be mysql or sqlite3, got %q", c.Store.WPDB.SQLDriver))
		}
		if c.Store.WPDB.DSN == "" {
			errs = append(errs, errors.New("store.wpdb.dsn is required (or set WOO_DB_DSN)"))
		}
		for _, st := range c.Store.WPDB.ExtraStatuses {
			if strings.TrimSpace(st.Code) == "" {
				errs = append(errs, errors.New("store.wpdb.extra_statuses entries need a code"))
				break
			}
		}
	default:
		errs = append(errs, fmt.Errorf("store.driver must be %s or %s, got %q", DriverREST, DriverWPDB, c.Store.Driver))
	}

	switch c.Observability.Logging.Format {
	case "text", "json":
	default:
		errs = append(errs, fmt.Errorf("observability.logging.format must be text or json, got %q", c.Observability.Logging.Format))
	}

	return errors.Join(errs...)
}

// Location resolves the store timezone
func (s StoreConfig) Location() (*time.Location, error) {
	name := s.Timezone
	if name == "" {
		name = DefaultTimezone
	}
	loc, err := time.LoadLocation(name)
	if err != nil {
		return nil, fmt.Errorf("invalid store.timezone %q: %w", name, err)
	}
	return loc, nil
}

// TimeoutDuration parses the REST timeout
func (r RESTConfig) TimeoutDuration() (time.Duration, error) {
	if r.Timeout == "" {
		return 30 * time.Second, nil
	}
	d, err := time.ParseDuration(r.Timeout)
	if err != nil {
		return 0, fmt.Errorf("invalid store.rest.timeout %q: %w", r.Timeout, err)
	}
	return d, nil
}

// getEnv retrieves an environment variable with a fallback default
func getEnv(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

// getEnvInt retrieves an integer environment variable with a fallback default
func getEnvInt(key string, fallback int) int {
	if val := os.Getenv(key); val != "" {
		var result int
		if _, err := fmt.Sscanf(val, "%d", &result); err == nil {
			return result
		}
	}
	return fallback
}

// GetAPIKey retrieves a credential from config first, then tries multiple environment variable names
// Usage: GetAPIKey(cfg.Store.REST.ConsumerKey, "WOO_CONSUMER_KEY", "WC_CONSUMER_KEY")
func (c *Config) GetAPIKey(configValue string, envVarNames ...string) string {
	// First, try the config value
	if configValue != "" {
		return configValue
	}

	// Then try each environment variable in order
	for _, envVar := range envVarNames {
		if val := os.Getenv(envVar); val != "" {
			return val
		}
	}

	return ""
}
