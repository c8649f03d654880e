package config

import (
	"fmt"

	"github.com/kelseyhightower/envconfig"
	"github.com/kevindenney/regattaflow-weather/pkg/errors"
)

const (
	maxPortNumber      = 65535
	maxCacheTTLMinutes = 1440
	minHorizonHours    = 6
	maxHorizonHours    = 240
	maxRedisDB         = 15
)

// Config represents the application configuration structure
type Config struct {
	Server   ServerConfig   `split_words:"true"`
	Database DatabaseConfig `split_words:"true"`
	Provider ProviderConfig `split_words:"true"`
	Cache    CacheConfig    `split_words:"true"`
	Forecast ForecastConfig `split_words:"true"`
	LogLevel string         `envconfig:"LOG_LEVEL" default:"info"`
}

type ServerConfig struct {
	Port int `envconfig:"SERVER_PORT" default:"8080"`
}

// DatabaseConfig configures the venue registry store. The sqlite driver is
// used for local development and tests, postgres for deployments.
type DatabaseConfig struct {
	Driver     string `envconfig:"DB_DRIVER" default:"sqlite"`
	Host       string `envconfig:"DB_HOST" default:"localhost"`
	Port       int    `envconfig:"DB_PORT" default:"5432"`
	User       string `envconfig:"DB_USER" default:"postgres"`
	Password   string `envconfig:"DB_PASSWORD" default:"postgres"`
	Name       string `envconfig:"DB_NAME" default:"regattaflow"`
	SSLMode    string `envconfig:"DB_SSL_MODE" default:"disable"`
	SQLitePath string `envconfig:"DB_SQLITE_PATH" default:"regattaflow.db"`
}

func (c DatabaseConfig) GetDSN() string {
	if c.Driver == "sqlite" {
		return c.SQLitePath
	}
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.Name, c.SSLMode)
}

// ProviderConfig configures the live marine-weather provider
type ProviderConfig struct {
	APIKey                 string `envconfig:"STORMGLASS_API_KEY"`
	BaseURL                string `envconfig:"STORMGLASS_BASE_URL" default:"https://api.stormglass.io/v2"`
	TimeoutSeconds         int    `envconfig:"PROVIDER_TIMEOUT_SECONDS" default:"10"`
	BreakerMaxFailures     int    `envconfig:"PROVIDER_BREAKER_MAX_FAILURES" default:"5"`
	BreakerCooldownSeconds int    `envconfig:"PROVIDER_BREAKER_COOLDOWN_SECONDS" default:"60"`
}

// CacheType represents the type of cache to use
type CacheType int

const (
	CacheTypeUnknown CacheType = iota
	CacheTypeMemory
	CacheTypeRedis
)

// String returns the string representation of cache type
func (c CacheType) String() string {
	switch c {
	case CacheTypeMemory:
		return "memory"
	case CacheTypeRedis:
		return "redis"
	default:
		return "unknown"
	}
}

// IsValid checks if the cache type is valid
func (c CacheType) IsValid() bool {
	return c == CacheTypeMemory || c == CacheTypeRedis
}

// CacheTypeFromString converts string to CacheType enum
func CacheTypeFromString(s string) CacheType {
	switch s {
	case "memory":
		return CacheTypeMemory
	case "redis":
		return CacheTypeRedis
	default:
		return CacheTypeUnknown
	}
}

// UnmarshalText implements encoding.TextUnmarshaler for envconfig
func (c *CacheType) UnmarshalText(text []byte) error {
	*c = CacheTypeFromString(string(text))
	return nil
}

// MarshalText implements encoding.TextMarshaler for envconfig
func (c CacheType) MarshalText() ([]byte, error) {
	return []byte(c.String()), nil
}

type CacheConfig struct {
	Type       CacheType   `envconfig:"CACHE_TYPE" default:"memory"`
	TTLMinutes int         `envconfig:"FORECAST_CACHE_TTL_MINUTES" default:"30"`
	Redis      RedisConfig `split_words:"true"`
}

type RedisConfig struct {
	Addr         string `envconfig:"REDIS_ADDR" default:"localhost:6379"`
	Password     string `envconfig:"REDIS_PASSWORD" default:""`
	DB           int    `envconfig:"REDIS_DB" default:"0"`
	DialTimeout  int    `envconfig:"REDIS_DIAL_TIMEOUT" default:"5"`
	ReadTimeout  int    `envconfig:"REDIS_READ_TIMEOUT" default:"3"`
	WriteTimeout int    `envconfig:"REDIS_WRITE_TIMEOUT" default:"3"`
}

// ForecastConfig configures aggregation defaults
type ForecastConfig struct {
	DefaultHorizonHours int `envconfig:"FORECAST_DEFAULT_HORIZON_HOURS" default:"72"`
}

// LoadConfig reads configuration from environment variables
func LoadConfig() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, errors.NewConfigurationError("failed to process environment variables", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Validate checks configuration invariants that envconfig defaults cannot enforce
func (c *Config) Validate() error {
	if c.Server.Port <= 0 || c.Server.Port > maxPortNumber {
		return errors.NewConfigurationError(
			fmt.Sprintf("invalid server port: %d", c.Server.Port), nil)
	}

	if c.Database.Driver != "sqlite" && c.Database.Driver != "postgres" {
		return errors.NewConfigurationError(
			fmt.Sprintf("unsupported database driver: %s", c.Database.Driver), nil)
	}

	if !c.Cache.Type.IsValid() {
		return errors.NewConfigurationError("invalid cache type, must be memory or redis", nil)
	}

	if c.Cache.TTLMinutes <= 0 || c.Cache.TTLMinutes > maxCacheTTLMinutes {
		return errors.NewConfigurationError(
			fmt.Sprintf("cache TTL must be in (0, %d] minutes", maxCacheTTLMinutes), nil)
	}

	if c.Cache.Redis.DB < 0 || c.Cache.Redis.DB > maxRedisDB {
		return errors.NewConfigurationError(
			fmt.Sprintf("redis DB must be in [0, %d]", maxRedisDB), nil)
	}

	if c.Forecast.DefaultHorizonHours < minHorizonHours || c.Forecast.DefaultHorizonHours > maxHorizonHours {
		return errors.NewConfigurationError(
			fmt.Sprintf("default forecast horizon must be in [%d, %d] hours", minHorizonHours, maxHorizonHours), nil)
	}

	if c.Provider.TimeoutSeconds <= 0 {
		return errors.NewConfigurationError("provider timeout must be positive", nil)
	}

	return nil
}
