// Package config provides Viper-based configuration loading for the companion.
package config

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Storage backend identifiers.
const (
	BackendFile     = "file"
	BackendBadger   = "badger"
	BackendSQLite   = "sqlite"
	BackendPostgres = "postgres"
	BackendMemory   = "memory"
)

// Catalog batch policies.
const (
	BatchAllOrNothing = "all_or_nothing"
	BatchKeepPartial  = "keep_partial"
)

// StorageConfig selects where persisted documents live.
type StorageConfig struct {
	// Backend is one of "file", "badger", "sqlite", "postgres", or "memory".
	Backend string `mapstructure:"backend"`
	// Path is the directory (file, badger) or database file (sqlite).
	Path string `mapstructure:"path"`
	// CollectionDocument is the document name for the collection store.
	CollectionDocument string `mapstructure:"collection_document"`
	// ProfileDocument is the document name for the profile store.
	ProfileDocument string `mapstructure:"profile_document"`
}

// DatabaseConfig holds PostgreSQL connection settings for the postgres backend.
type DatabaseConfig struct {
	Host            string        `mapstructure:"host"`
	Port            int           `mapstructure:"port"`
	User            string        `mapstructure:"user"`
	Password        string        `mapstructure:"password"`
	Name            string        `mapstructure:"name"`
	SSLMode         string        `mapstructure:"sslmode"`
	MaxConns        int32         `mapstructure:"max_conns"`
	MinConns        int32         `mapstructure:"min_conns"`
	MaxConnLifetime time.Duration `mapstructure:"max_conn_lifetime"`
}

// DSN returns the PostgreSQL connection string.
//
// Precondition: Host, Port, User, and Name must be non-empty.
// Postcondition: Returns a valid PostgreSQL DSN string.
func (d DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		d.User, d.Password, d.Host, d.Port, d.Name, d.SSLMode,
	)
}

// CatalogConfig holds settings for the remote catalog client.
type CatalogConfig struct {
	// BaseURL is the REST API root, e.g. "https://pokeapi.co/api/v2".
	BaseURL string `mapstructure:"base_url"`
	// ArtworkURL is the prefix for derived artwork images; "<id>.png" is appended.
	ArtworkURL string `mapstructure:"artwork_url"`
	// Timeout bounds each HTTP request.
	Timeout time.Duration `mapstructure:"timeout"`
	// RatePerSecond limits outgoing requests; 0 disables limiting.
	RatePerSecond float64 `mapstructure:"rate_per_second"`
	// Burst is the limiter burst size.
	Burst int `mapstructure:"burst"`
	// MaxConcurrency caps in-flight requests within one batch; 0 means unbounded.
	MaxConcurrency int `mapstructure:"max_concurrency"`
	// BatchPolicy is "all_or_nothing" or "keep_partial".
	BatchPolicy string `mapstructure:"batch_policy"`
	// UserAgent is sent on every request.
	UserAgent string `mapstructure:"user_agent"`
}

// LoggingConfig holds structured logging settings.
type LoggingConfig struct {
	// Level is the minimum log level: "debug", "info", "warn", "error".
	Level string `mapstructure:"level"`
	// Format is the log output format: "json" or "console".
	Format string `mapstructure:"format"`
}

// MetricsConfig controls Prometheus exposition.
type MetricsConfig struct {
	// Addr is the listen address for /metrics; empty disables the endpoint.
	Addr string `mapstructure:"addr"`
}

// Config is the top-level application configuration.
type Config struct {
	Storage  StorageConfig  `mapstructure:"storage"`
	Database DatabaseConfig `mapstructure:"database"`
	Catalog  CatalogConfig  `mapstructure:"catalog"`
	Logging  LoggingConfig  `mapstructure:"logging"`
	Metrics  MetricsConfig  `mapstructure:"metrics"`
}

// Validate checks all configuration invariants.
//
// Postcondition: Returns nil if configuration is valid, or an error describing all violations.
func (c Config) Validate() error {
	var errs []string

	if err := validateStorage(c.Storage); err != nil {
		errs = append(errs, err.Error())
	}
	if c.Storage.Backend == BackendPostgres {
		if err := validateDatabase(c.Database); err != nil {
			errs = append(errs, err.Error())
		}
	}
	if err := validateCatalog(c.Catalog); err != nil {
		errs = append(errs, err.Error())
	}
	if err := validateLogging(c.Logging); err != nil {
		errs = append(errs, err.Error())
	}

	if len(errs) > 0 {
		return fmt.Errorf("configuration validation failed: %s", strings.Join(errs, "; "))
	}
	return nil
}

func validateStorage(s StorageConfig) error {
	var errs []string
	validBackends := map[string]bool{
		BackendFile: true, BackendBadger: true, BackendSQLite: true,
		BackendPostgres: true, BackendMemory: true,
	}
	if !validBackends[s.Backend] {
		errs = append(errs, fmt.Sprintf("storage.backend must be one of [file, badger, sqlite, postgres, memory], got %q", s.Backend))
	}
	needsPath := s.Backend == BackendFile || s.Backend == BackendBadger || s.Backend == BackendSQLite
	if needsPath && s.Path == "" {
		errs = append(errs, fmt.Sprintf("storage.path must not be empty for backend %q", s.Backend))
	}
	if s.CollectionDocument == "" {
		errs = append(errs, "storage.collection_document must not be empty")
	}
	if s.ProfileDocument == "" {
		errs = append(errs, "storage.profile_document must not be empty")
	}
	if s.CollectionDocument != "" && s.CollectionDocument == s.ProfileDocument {
		errs = append(errs, "storage.collection_document and storage.profile_document must differ")
	}
	if len(errs) > 0 {
		return fmt.Errorf("%s", strings.Join(errs, "; "))
	}
	return nil
}

func validateDatabase(d DatabaseConfig) error {
	var errs []string
	if d.Host == "" {
		errs = append(errs, "database.host must not be empty")
	}
	if d.Port < 1 || d.Port > 65535 {
		errs = append(errs, fmt.Sprintf("database.port must be 1-65535, got %d", d.Port))
	}
	if d.User == "" {
		errs = append(errs, "database.user must not be empty")
	}
	if d.Name == "" {
		errs = append(errs, "database.name must not be empty")
	}
	validSSL := map[string]bool{"disable": true, "require": true, "verify-ca": true, "verify-full": true}
	if !validSSL[d.SSLMode] {
		errs = append(errs, fmt.Sprintf("database.sslmode must be one of [disable, require, verify-ca, verify-full], got %q", d.SSLMode))
	}
	if d.MaxConns < 1 {
		errs = append(errs, fmt.Sprintf("database.max_conns must be >= 1, got %d", d.MaxConns))
	}
	if d.MinConns < 0 {
		errs = append(errs, fmt.Sprintf("database.min_conns must be >= 0, got %d", d.MinConns))
	}
	if d.MinConns > d.MaxConns {
		errs = append(errs, "database.min_conns must not exceed database.max_conns")
	}
	if len(errs) > 0 {
		return fmt.Errorf("%s", strings.Join(errs, "; "))
	}
	return nil
}

func validateCatalog(c CatalogConfig) error {
	var errs []string
	if u, err := url.Parse(c.BaseURL); err != nil || u.Scheme == "" || u.Host == "" {
		errs = append(errs, fmt.Sprintf("catalog.base_url must be an absolute URL, got %q", c.BaseURL))
	}
	if c.Timeout <= 0 {
		errs = append(errs, "catalog.timeout must be positive")
	}
	if c.RatePerSecond < 0 {
		errs = append(errs, "catalog.rate_per_second must not be negative")
	}
	if c.RatePerSecond > 0 && c.Burst < 1 {
		errs = append(errs, fmt.Sprintf("catalog.burst must be >= 1 when rate limiting, got %d", c.Burst))
	}
	if c.MaxConcurrency < 0 {
		errs = append(errs, "catalog.max_concurrency must not be negative")
	}
	if c.BatchPolicy != BatchAllOrNothing && c.BatchPolicy != BatchKeepPartial {
		errs = append(errs, fmt.Sprintf("catalog.batch_policy must be one of [all_or_nothing, keep_partial], got %q", c.BatchPolicy))
	}
	if len(errs) > 0 {
		return fmt.Errorf("%s", strings.Join(errs, "; "))
	}
	return nil
}

func validateLogging(l LoggingConfig) error {
	validLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLevels[l.Level] {
		return fmt.Errorf("logging.level must be one of [debug, info, warn, error], got %q", l.Level)
	}
	validFormats := map[string]bool{"json": true, "console": true}
	if !validFormats[l.Format] {
		return fmt.Errorf("logging.format must be one of [json, console], got %q", l.Format)
	}
	return nil
}

func newViper() *viper.Viper {
	v := viper.New()

	// Environment variable overrides with DEX_ prefix
	v.SetEnvPrefix("DEX")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)
	return v
}

// Load reads configuration from the given file path, applies environment variable
// overrides, and validates the result.
//
// Precondition: path must be a valid file path to a YAML configuration file.
// Postcondition: Returns a valid Config or a non-nil error.
func Load(path string) (Config, error) {
	if path == "" {
		return Config{}, errors.New("config path must not be empty")
	}
	v := newViper()
	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil {
		return Config{}, fmt.Errorf("reading config file: %w", err)
	}
	return LoadFromViper(v)
}

// LoadDefaults builds a Config from defaults and DEX_ environment overrides only.
//
// Postcondition: Returns a valid Config or a non-nil error.
func LoadDefaults() (Config, error) {
	return LoadFromViper(newViper())
}

// LoadFromViper builds a Config from an already-configured Viper instance.
//
// Precondition: v must be non-nil and have configuration values set.
// Postcondition: Returns a valid Config or a non-nil error.
func LoadFromViper(v *viper.Viper) (Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("unmarshalling config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("storage.backend", BackendFile)
	v.SetDefault("storage.path", ".dexcompanion")
	v.SetDefault("storage.collection_document", "poke-companion-storage")
	v.SetDefault("storage.profile_document", "poke-companion-user")

	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", 5432)
	v.SetDefault("database.user", "dex")
	v.SetDefault("database.password", "dex")
	v.SetDefault("database.name", "dex")
	v.SetDefault("database.sslmode", "disable")
	v.SetDefault("database.max_conns", 4)
	v.SetDefault("database.min_conns", 1)
	v.SetDefault("database.max_conn_lifetime", "1h")

	v.SetDefault("catalog.base_url", "https://pokeapi.co/api/v2")
	v.SetDefault("catalog.artwork_url", "https://raw.githubusercontent.com/PokeAPI/sprites/master/sprites/pokemon/other/official-artwork/")
	v.SetDefault("catalog.timeout", "15s")
	v.SetDefault("catalog.rate_per_second", 20)
	v.SetDefault("catalog.burst", 10)
	v.SetDefault("catalog.max_concurrency", 16)
	v.SetDefault("catalog.batch_policy", BatchAllOrNothing)
	v.SetDefault("catalog.user_agent", "dexcompanion/1.0")

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "console")

	v.SetDefault("metrics.addr", "")
}
