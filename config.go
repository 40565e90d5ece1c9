package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"net"
	"os"
	"path/filepath"
	"time"

	"github.com/caarlos0/env/v7"
	"github.com/hjson/hjson-go/v4"
	"github.com/joho/godotenv"
)

const (
	DefaultListen                             = "127.0.0.1:8000"
	DefaultRequestTimeout                     = 30 * time.Second
	DefaultShutdownTimeout                    = 10 * time.Second
	DefaultHTTPTimeout                        = 10 * time.Second
	DefaultUpdateEvery                        = 24 * time.Hour
	DefaultRateLimitInterval                  = 100 * time.Millisecond
	DefaultRateLimitBurst                     = 10
	DefaultCacheSize                          = 1024
	DefaultCacheTTL                           = 10 * time.Minute
	DefaultCircuitBreakerOpenThreshold        = 5
	DefaultCircuitBreakerHalfOpenTimeout      = time.Minute
	DefaultCircuitBreakerResetFailuresTimeout = 20 * time.Second

	DatabaseDriverSQLite   = "sqlite"
	DatabaseDriverPostgres = "postgres"
)

type duration struct {
	time.Duration
}

func (d *duration) UnmarshalJSON(b []byte) error {
	var v interface{}

	if err := json.Unmarshal(b, &v); err != nil {
		return fmt.Errorf("cannot unmarshal duration: %w", err)
	}

	vv, ok := v.(string)
	if !ok {
		return fmt.Errorf("incorrect duration: %v", v)
	}

	dur, err := time.ParseDuration(vv)
	if err != nil {
		return fmt.Errorf("cannot parse duration: %w", err)
	}

	d.Duration = dur

	return nil
}

// configSecrets are never stored in a config file, they come from
// environment only.
type configSecrets struct {
	IPStackAccessKey  string `env:"IPSTACK_ACCESS_KEY"`
	MaxmindLicenseKey string `env:"MAXMIND_LICENSE_KEY"`
	DatabaseDSN       string `env:"GEOLOCATIONS_DATABASE_DSN"`
	BasicAuthPassword string `env:"GEOLOCATIONS_BASIC_AUTH_PASSWORD"`
}

type config struct {
	Listen          string          `json:"listen"`
	RootDirectory   string          `json:"root_directory"`
	RequestTimeout  duration        `json:"request_timeout"`
	ShutdownTimeout duration        `json:"shutdown_timeout"`
	BasicAuth       configBasicAuth `json:"basic_auth"`
	Database        configDatabase  `json:"database"`
	IPStack         configIPStack   `json:"ipstack"`
	Maxmind         configMaxmind   `json:"maxmind"`

	secrets configSecrets
}

func (c config) GetListen() string {
	if c.Listen != "" {
		return c.Listen
	}

	return DefaultListen
}

func (c config) GetRootDirectory() string {
	if c.RootDirectory != "" {
		return c.RootDirectory
	}

	return filepath.Join(os.TempDir(), "geolocations")
}

func (c config) GetRequestTimeout() time.Duration {
	if c.RequestTimeout.Duration == 0 {
		return DefaultRequestTimeout
	}

	return c.RequestTimeout.Duration
}

func (c config) GetShutdownTimeout() time.Duration {
	if c.ShutdownTimeout.Duration == 0 {
		return DefaultShutdownTimeout
	}

	return c.ShutdownTimeout.Duration
}

func (c config) GetBasicAuthUser() string {
	return c.BasicAuth.User
}

func (c config) GetBasicAuthPassword() string {
	return c.secrets.BasicAuthPassword
}

func (c config) GetDatabaseDriver() string {
	if c.Database.Driver != "" {
		return c.Database.Driver
	}

	return DatabaseDriverSQLite
}

// GetDatabaseDSN returns DSN from environment, then from config file.
// SQLite database is created in a root directory by default.
func (c config) GetDatabaseDSN() string {
	switch {
	case c.secrets.DatabaseDSN != "":
		return c.secrets.DatabaseDSN
	case c.Database.DSN != "":
		return c.Database.DSN
	case c.GetDatabaseDriver() == DatabaseDriverSQLite:
		return filepath.Join(c.GetRootDirectory(), "geolocations.sqlite3")
	}

	return ""
}

func (c config) GetIPStackAccessKey() string {
	return c.secrets.IPStackAccessKey
}

func (c config) GetMaxmindLicenseKey() string {
	return c.secrets.MaxmindLicenseKey
}

type configBasicAuth struct {
	User string `json:"user"`
}

type configDatabase struct {
	Driver string `json:"driver"`
	DSN    string `json:"dsn"`
}

type configHTTPClient struct {
	Timeout                            duration `json:"timeout"`
	RateLimitInterval                  duration `json:"rate_limit_interval"`
	RateLimitBurst                     uint     `json:"rate_limit_burst"`
	CircuitBreakerOpenThreshold        uint32   `json:"circuit_breaker_open_threshold"`
	CircuitBreakerHalfOpenTimeout      duration `json:"circuit_breaker_half_open_timeout"`
	CircuitBreakerResetFailuresTimeout duration `json:"circuit_breaker_reset_failures_timeout"`
}

func (c configHTTPClient) GetTimeout() time.Duration {
	if c.Timeout.Duration == 0 {
		return DefaultHTTPTimeout
	}

	return c.Timeout.Duration
}

func (c configHTTPClient) GetRateLimitInterval() time.Duration {
	if c.RateLimitInterval.Duration == 0 {
		return DefaultRateLimitInterval
	}

	return c.RateLimitInterval.Duration
}

func (c configHTTPClient) GetRateLimitBurst() int {
	if c.RateLimitBurst == 0 {
		return DefaultRateLimitBurst
	}

	return int(c.RateLimitBurst)
}

func (c configHTTPClient) GetCircuitBreakerOpenThreshold() uint32 {
	if c.CircuitBreakerOpenThreshold == 0 {
		return DefaultCircuitBreakerOpenThreshold
	}

	return c.CircuitBreakerOpenThreshold
}

func (c configHTTPClient) GetCircuitBreakerHalfOpenTimeout() time.Duration {
	if c.CircuitBreakerHalfOpenTimeout.Duration == 0 {
		return DefaultCircuitBreakerHalfOpenTimeout
	}

	return c.CircuitBreakerHalfOpenTimeout.Duration
}

func (c configHTTPClient) GetCircuitBreakerResetFailuresTimeout() time.Duration {
	if c.CircuitBreakerResetFailuresTimeout.Duration == 0 {
		return DefaultCircuitBreakerResetFailuresTimeout
	}

	return c.CircuitBreakerResetFailuresTimeout.Duration
}

type configIPStack struct {
	configHTTPClient

	Secure    bool     `json:"secure"`
	CacheSize uint     `json:"cache_size"`
	CacheTTL  duration `json:"cache_ttl"`
}

func (c configIPStack) GetCacheSize() uint {
	if c.CacheSize == 0 {
		return DefaultCacheSize
	}

	return c.CacheSize
}

func (c configIPStack) GetCacheTTL() time.Duration {
	if c.CacheTTL.Duration == 0 {
		return DefaultCacheTTL
	}

	return c.CacheTTL.Duration
}

type configMaxmind struct {
	configHTTPClient

	Directory   string   `json:"directory"`
	UpdateEvery duration `json:"update_every"`
}

func (c configMaxmind) GetDirectory() string {
	if c.Directory != "" {
		return c.Directory
	}

	return "maxmind"
}

func (c configMaxmind) GetUpdateEvery() time.Duration {
	if c.UpdateEvery.Duration == 0 {
		return DefaultUpdateEvery
	}

	return c.UpdateEvery.Duration
}

// loadDotEnv populates environment from .env file in a current
// directory if it exists. Variables which are already set win.
func loadDotEnv() error {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("cannot load .env file: %w", err)
	}

	return nil
}

func parseConfig(reader io.Reader) (*config, error) {
	content, err := io.ReadAll(reader)
	if err != nil {
		return nil, fmt.Errorf("cannot read file: %w", err)
	}

	conf := config{}
	rawMap := map[string]interface{}{}

	if err := hjson.Unmarshal(content, &rawMap); err != nil {
		return nil, fmt.Errorf("cannot parse hjson: %w", err)
	}

	rawBytes, err := json.Marshal(rawMap)
	if err != nil {
		return nil, fmt.Errorf("cannot convert hjson: %w", err)
	}

	if err := json.Unmarshal(rawBytes, &conf); err != nil {
		return nil, fmt.Errorf("incorrect config: %w", err)
	}

	if err := env.Parse(&conf.secrets); err != nil {
		return nil, fmt.Errorf("cannot read environment: %w", err)
	}

	if _, _, err := net.SplitHostPort(conf.GetListen()); err != nil {
		return nil, fmt.Errorf("incorrect host:port for listen: %w", err)
	}

	conf.RootDirectory, err = filepath.Abs(conf.GetRootDirectory())
	if err != nil {
		return nil, fmt.Errorf("incorrect root directory: %w", err)
	}

	switch conf.GetDatabaseDriver() {
	case DatabaseDriverSQLite, DatabaseDriverPostgres:
	default:
		return nil, fmt.Errorf("unsupported database driver %s", conf.GetDatabaseDriver())
	}

	if conf.GetDatabaseDSN() == "" {
		return nil, errors.New("database dsn is not defined")
	}

	if conf.GetBasicAuthUser() != "" && conf.GetBasicAuthPassword() == "" {
		return nil, errors.New("basic auth password is not defined")
	}

	return &conf, nil
}
