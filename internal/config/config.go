package config

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"runtime"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds the placecache API configuration.
type Config struct {
	HTTP     HTTPConfig     `yaml:"http"`
	Database DatabaseConfig `yaml:"database"`
	Records  RecordsConfig  `yaml:"records"`
	Geo      GeoConfig      `yaml:"geo"`
	Upstream UpstreamConfig `yaml:"upstream"`
	Cache    CacheConfig    `yaml:"cache"`
	Auth     AuthConfig     `yaml:"auth"`
	Events   EventsConfig   `yaml:"events"`
	Storage  StorageConfig  `yaml:"storage"`
	Logging  LoggingConfig  `yaml:"logging"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level string `yaml:"level"` // debug, info, warn, error (default: determined by env)
}

// AuthConfig holds caller authentication settings.
// An empty JWTSecret disables token validation (local development only).
type AuthConfig struct {
	JWTSecret   string `yaml:"jwt_secret"`
	CheckActive bool   `yaml:"check_active"`
}

// HTTPConfig holds HTTP server settings.
type HTTPConfig struct {
	Port            int      `yaml:"port"`
	ReadTimeoutSec  int      `yaml:"read_timeout_sec"`
	WriteTimeoutSec int      `yaml:"write_timeout_sec"`
	ShutdownSec     int      `yaml:"shutdown_timeout_sec"`
	CORSOrigins     []string `yaml:"cors_allowed_origins"`
}

// DatabaseConfig holds the Redis connection settings.
type DatabaseConfig struct {
	Driver           string   `yaml:"driver"` // redis (default); informational, rueidis speaks to any RESP server
	Addrs            []string `yaml:"addrs"`
	Username         string   `yaml:"username"`
	Password         string   `yaml:"password"`
	DB               int      `yaml:"db"`
	ReadinessTimeout int      `yaml:"readiness_timeout_sec"`
}

// RecordsConfig selects the durable place record store.
type RecordsConfig struct {
	Backend  string         `yaml:"backend"` // redis (default), mongo, postgres
	Mongo    MongoConfig    `yaml:"mongo"`
	Postgres PostgresConfig `yaml:"postgres"`
}

// MongoConfig holds MongoDB settings.
type MongoConfig struct {
	URI        string `yaml:"uri"`
	Database   string `yaml:"database"`
	Collection string `yaml:"collection"`
}

// PostgresConfig holds PostgreSQL settings.
type PostgresConfig struct {
	DSN   string `yaml:"dsn"`
	Table string `yaml:"table"`
}

// GeoConfig holds geo index and nearby search settings.
type GeoConfig struct {
	Backend         string        `yaml:"backend"` // redis (default), elastic
	Elastic         ElasticConfig `yaml:"elastic"`
	DefaultRadiusKm float64       `yaml:"default_radius_km"`
	MaxRadiusKm     float64       `yaml:"max_radius_km"`
	OverFetchFactor int           `yaml:"over_fetch_factor"`
	MaxCandidates   int           `yaml:"max_candidates"`
	DefaultPageSize int           `yaml:"default_page_size"`
	MaxPageSize     int           `yaml:"max_page_size"`
}

// ElasticConfig holds Elasticsearch settings.
type ElasticConfig struct {
	URLs  []string `yaml:"urls"`
	Index string   `yaml:"index"`
	Sniff bool     `yaml:"sniff"`
}

// UpstreamConfig holds place details provider settings.
type UpstreamConfig struct {
	APIKey          string  `yaml:"api_key"`
	BaseURL         string  `yaml:"base_url"`
	TimeoutSec      int     `yaml:"timeout_sec"`
	RatePerSec      float64 `yaml:"rate_per_sec"` // 0 = unlimited
	Burst           int     `yaml:"burst"`
	DefaultLanguage string  `yaml:"default_language"`
}

// CacheConfig holds record freshness settings.
type CacheConfig struct {
	StaleAfterHours int `yaml:"stale_after_hours"`
}

// StaleAfter returns the staleness window as a duration.
func (c CacheConfig) StaleAfter() time.Duration {
	return time.Duration(c.StaleAfterHours) * time.Hour
}

// EventsConfig selects the view event sink.
type EventsConfig struct {
	Sink       string     `yaml:"sink"` // redis (default), nats
	Stream     string     `yaml:"stream"`
	MaxLen     int64      `yaml:"max_len"`
	TimeoutSec int        `yaml:"timeout_sec"`
	NATS       NATSConfig `yaml:"nats"`
}

// NATSConfig holds NATS connection settings.
type NATSConfig struct {
	URL              string `yaml:"url"`
	Subject          string `yaml:"subject"`
	MaxReconnects    int    `yaml:"max_reconnects"`
	ReconnectWaitSec int    `yaml:"reconnect_wait_sec"`
}

// StorageConfig holds storage settings.
type StorageConfig struct {
	KeyPrefix string `yaml:"key_prefix"`
}

// Load reads configuration from a YAML file by environment name (local, dev, prod).
func Load(env string) (Config, error) {
	configPath := findConfigPath(env)

	data, err := os.ReadFile(filepath.Clean(configPath))
	if err != nil {
		return Config{}, fmt.Errorf("failed to read config %s: %w", configPath, err)
	}

	// Substitute env variables of the form ${VAR}
	data = expandEnvVars(data)

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("failed to parse config: %w", err)
	}

	cfg.ApplyDefaults()

	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}

// GetEnv returns the current environment from the ENV variable, defaulting to "local".
func GetEnv() string {
	if env := os.Getenv("ENV"); env != "" {
		return env
	}
	return "local"
}

// ApplyDefaults fills empty fields with default values.
func (c *Config) ApplyDefaults() {
	if c.HTTP.ReadTimeoutSec <= 0 {
		c.HTTP.ReadTimeoutSec = 10
	}
	if c.HTTP.WriteTimeoutSec <= 0 {
		c.HTTP.WriteTimeoutSec = 15
	}
	if c.HTTP.ShutdownSec <= 0 {
		c.HTTP.ShutdownSec = 10
	}
	if c.Database.Driver == "" {
		c.Database.Driver = "redis"
	}
	if c.Database.ReadinessTimeout <= 0 {
		c.Database.ReadinessTimeout = 10
	}
	c.applyRecordDefaults()
	c.applyGeoDefaults()
	c.applyUpstreamDefaults()
	if c.Cache.StaleAfterHours <= 0 {
		c.Cache.StaleAfterHours = 7 * 24
	}
	c.applyEventDefaults()
	if c.Storage.KeyPrefix == "" {
		c.Storage.KeyPrefix = "placecache:"
	}
}

func (c *Config) applyRecordDefaults() {
	if c.Records.Backend == "" {
		c.Records.Backend = "redis"
	}
	if c.Records.Mongo.Database == "" {
		c.Records.Mongo.Database = "placecache"
	}
	if c.Records.Mongo.Collection == "" {
		c.Records.Mongo.Collection = "places"
	}
	if c.Records.Postgres.Table == "" {
		c.Records.Postgres.Table = "places"
	}
}

func (c *Config) applyGeoDefaults() {
	if c.Geo.Backend == "" {
		c.Geo.Backend = "redis"
	}
	if c.Geo.Elastic.Index == "" {
		c.Geo.Elastic.Index = "places_geo"
	}
	if c.Geo.DefaultRadiusKm <= 0 {
		c.Geo.DefaultRadiusKm = 10
	}
	if c.Geo.MaxRadiusKm <= 0 {
		c.Geo.MaxRadiusKm = 50
	}
	if c.Geo.OverFetchFactor <= 0 {
		c.Geo.OverFetchFactor = 3
	}
	if c.Geo.MaxCandidates <= 0 {
		c.Geo.MaxCandidates = 500
	}
	if c.Geo.DefaultPageSize <= 0 {
		c.Geo.DefaultPageSize = 50
	}
	if c.Geo.MaxPageSize <= 0 {
		c.Geo.MaxPageSize = 100
	}
}

func (c *Config) applyUpstreamDefaults() {
	if c.Upstream.BaseURL == "" {
		c.Upstream.BaseURL = "https://maps.googleapis.com/maps/api/place"
	}
	if c.Upstream.TimeoutSec <= 0 {
		c.Upstream.TimeoutSec = 10
	}
	if c.Upstream.RatePerSec > 0 && c.Upstream.Burst <= 0 {
		c.Upstream.Burst = int(c.Upstream.RatePerSec)
		if c.Upstream.Burst < 1 {
			c.Upstream.Burst = 1
		}
	}
	if c.Upstream.DefaultLanguage == "" {
		c.Upstream.DefaultLanguage = "pt-BR"
	}
}

func (c *Config) applyEventDefaults() {
	if c.Events.Sink == "" {
		c.Events.Sink = "redis"
	}
	if c.Events.Stream == "" {
		c.Events.Stream = "views"
	}
	if c.Events.MaxLen <= 0 {
		c.Events.MaxLen = 100000
	}
	if c.Events.TimeoutSec <= 0 {
		c.Events.TimeoutSec = 5
	}
	if c.Events.NATS.Subject == "" {
		c.Events.NATS.Subject = "placecache.views"
	}
	if c.Events.NATS.MaxReconnects == 0 {
		c.Events.NATS.MaxReconnects = -1
	}
	if c.Events.NATS.ReconnectWaitSec <= 0 {
		c.Events.NATS.ReconnectWaitSec = 2
	}
}

// Validate checks the configuration for correctness.
func (c *Config) Validate() error {
	if c.HTTP.Port <= 0 || c.HTTP.Port > 65535 {
		return fmt.Errorf("http.port must be between 1 and 65535, got %d", c.HTTP.Port)
	}
	if len(c.Database.Addrs) == 0 {
		return fmt.Errorf("database.addrs is required")
	}
	switch c.Records.Backend {
	case "redis":
	case "mongo":
		if c.Records.Mongo.URI == "" {
			return fmt.Errorf("records.mongo.uri is required for the mongo backend")
		}
	case "postgres":
		if c.Records.Postgres.DSN == "" {
			return fmt.Errorf("records.postgres.dsn is required for the postgres backend")
		}
	default:
		return fmt.Errorf(`records.backend must be "redis", "mongo" or "postgres", got %q`, c.Records.Backend)
	}
	switch c.Geo.Backend {
	case "redis":
	case "elastic":
		if len(c.Geo.Elastic.URLs) == 0 {
			return fmt.Errorf("geo.elastic.urls is required for the elastic backend")
		}
	default:
		return fmt.Errorf(`geo.backend must be "redis" or "elastic", got %q`, c.Geo.Backend)
	}
	if c.Geo.DefaultRadiusKm > c.Geo.MaxRadiusKm {
		return fmt.Errorf("geo.default_radius_km (%g) exceeds geo.max_radius_km (%g)",
			c.Geo.DefaultRadiusKm, c.Geo.MaxRadiusKm)
	}
	if c.Geo.DefaultPageSize > c.Geo.MaxPageSize {
		return fmt.Errorf("geo.default_page_size (%d) exceeds geo.max_page_size (%d)",
			c.Geo.DefaultPageSize, c.Geo.MaxPageSize)
	}
	switch c.Events.Sink {
	case "redis":
	case "nats":
		if c.Events.NATS.URL == "" {
			return fmt.Errorf("events.nats.url is required for the nats sink")
		}
	default:
		return fmt.Errorf(`events.sink must be "redis" or "nats", got %q`, c.Events.Sink)
	}
	return nil
}

// findConfigPath locates the config file.
func findConfigPath(env string) string {
	filename := fmt.Sprintf("%s.yaml", env)

	// 1. Check ./config/
	if path := filepath.Join("config", filename); fileExists(path) {
		return path
	}

	// 2. Check relative to the source file
	_, b, _, _ := runtime.Caller(0)
	projectRoot := filepath.Dir(filepath.Dir(filepath.Dir(b))) // internal/config -> project root
	if path := filepath.Join(projectRoot, "config", filename); fileExists(path) {
		return path
	}

	// 3. Fallback to ./config/
	return filepath.Join("config", filename)
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// expandEnvVars replaces ${VAR} and ${VAR:-default} with environment variable values.
var envVarRegex = regexp.MustCompile(`\$\{([^}]+)\}`)

func expandEnvVars(data []byte) []byte {
	return envVarRegex.ReplaceAllFunc(data, func(match []byte) []byte {
		expr := string(match[2 : len(match)-1]) // strip ${ and }
		varName, defaultVal, hasDefault := strings.Cut(expr, ":-")
		val := os.Getenv(varName)
		if val == "" && hasDefault {
			val = defaultVal
		}
		return []byte(val)
	})
}
