package config

import (
	"fmt"
	"slices"
	"time"

	"github.com/ratemystudyspots/studyspots/internal/repository/breaker"
	"github.com/ratemystudyspots/studyspots/pkg/database"
	pkgconfig "github.com/ratemystudyspots/studyspots/pkg/config"
	pkgkafka "github.com/ratemystudyspots/studyspots/pkg/kafka"
	"github.com/ratemystudyspots/studyspots/pkg/tracing"
)

// ServiceName identifies the service in logs, metrics and traces.
const ServiceName = "studyspots"

// Review store backends.
const (
	StoreMemory   = "memory"
	StoreRedis    = "redis"
	StorePostgres = "postgres"
)

// Config holds all configuration for the study-spot service.
type Config struct {
	Environment string `env:"ENVIRONMENT" envDefault:"development"`
	LogLevel    string `env:"LOG_LEVEL" envDefault:"info"`

	// HTTP server
	HTTPPort int `env:"HTTP_PORT" envDefault:"8080"`

	// Catalog file; empty uses the embedded catalog
	CatalogPath string `env:"CATALOG_PATH"`

	// Directory aggregation fan-out
	DirectoryConcurrency int `env:"DIRECTORY_CONCURRENCY" envDefault:"8"`

	// Cache-Control max-age of catalog-only endpoints, in seconds
	DirectoryCacheMaxAge int `env:"DIRECTORY_CACHE_MAX_AGE" envDefault:"300"`

	// Review store selection (memory, redis or postgres)
	ReviewStore string `env:"REVIEW_STORE" envDefault:"memory"`

	// Redis
	RedisHost     string `env:"REDIS_HOST" envDefault:"localhost"`
	RedisPort     int    `env:"REDIS_PORT" envDefault:"6379"`
	RedisPassword string `env:"REDIS_PASSWORD"`
	RedisDB       int    `env:"REDIS_DB" envDefault:"0"`

	// PostgreSQL
	PostgresHost string `env:"POSTGRES_HOST" envDefault:"localhost"`
	PostgresPort int    `env:"POSTGRES_PORT" envDefault:"5432"`
	PostgresUser string `env:"POSTGRES_USER" envDefault:"studyspots"`
	PostgresPass string `env:"POSTGRES_PASSWORD" envDefault:"studyspots"`
	PostgresDB   string `env:"POSTGRES_DB" envDefault:"studyspots"`
	PostgresSSL  string `env:"POSTGRES_SSL_MODE" envDefault:"disable"`

	// Database pool
	DBMaxConns            int32 `env:"DB_MAX_CONNS" envDefault:"10"`
	DBMinConns            int32 `env:"DB_MIN_CONNS" envDefault:"2"`
	DBMaxConnLifetimeMins int   `env:"DB_MAX_CONN_LIFETIME_MINUTES" envDefault:"60"`
	DBMaxConnIdleTimeMins int   `env:"DB_MAX_CONN_IDLE_TIME_MINUTES" envDefault:"30"`

	// Review store circuit breaker
	StoreBreakerEnabled      bool          `env:"STORE_BREAKER_ENABLED" envDefault:"true"`
	StoreBreakerTimeout      time.Duration `env:"STORE_BREAKER_TIMEOUT" envDefault:"30s"`
	StoreBreakerFailureRatio float64       `env:"STORE_BREAKER_FAILURE_RATIO" envDefault:"0.5"`
	StoreBreakerMinRequests  uint32        `env:"STORE_BREAKER_MIN_REQUESTS" envDefault:"5"`

	// Kafka
	KafkaEnabled bool     `env:"KAFKA_ENABLED" envDefault:"false"`
	KafkaBrokers []string `env:"KAFKA_BROKERS" envDefault:"localhost:9092" envSeparator:","`

	// OpenTelemetry
	OTELEnabled    bool    `env:"OTEL_ENABLED" envDefault:"false"`
	OTELEndpoint   string  `env:"OTEL_EXPORTER_OTLP_ENDPOINT" envDefault:"localhost:4318"`
	OTELSampleRate float64 `env:"OTEL_SAMPLE_RATE" envDefault:"1.0"`

	// Pprof debug endpoints (IP allowlist in CIDR notation)
	PprofAllowedCIDRs []string `env:"PPROF_ALLOWED_CIDRS" envDefault:"10.0.0.0/8,172.16.0.0/12,192.168.0.0/16,127.0.0.0/8,::1/128" envSeparator:","`

	// CORS
	CORSAllowedOrigins []string `env:"CORS_ALLOWED_ORIGINS" envDefault:"http://localhost:3000" envSeparator:","`

	// Slow query logging
	SlowQueryThresholdMs int `env:"LOG_SLOW_QUERY_MS" envDefault:"500"`
}

// Load reads configuration from environment variables.
func Load() (*Config, error) {
	return load()
}

// LoadFrom reads configuration from the given variables. It is used by tests
// and tools that must not depend on the process environment.
func LoadFrom(environ map[string]string) (*Config, error) {
	return load(pkgconfig.WithEnvironment(environ))
}

func load(opts ...pkgconfig.Option) (*Config, error) {
	cfg, err := pkgconfig.Parse[Config](opts...)
	if err != nil {
		return nil, fmt.Errorf("load studyspots config: %w", err)
	}
	return cfg, nil
}

// Validate checks invariants the env tags cannot express.
func (c *Config) Validate() error {
	if c.HTTPPort < 1 || c.HTTPPort > 65535 {
		return fmt.Errorf("invalid HTTP port: %d", c.HTTPPort)
	}
	if !slices.Contains([]string{StoreMemory, StoreRedis, StorePostgres}, c.ReviewStore) {
		return fmt.Errorf("REVIEW_STORE must be one of memory, redis, postgres, got %q", c.ReviewStore)
	}
	if c.DirectoryConcurrency < 1 {
		return fmt.Errorf("DIRECTORY_CONCURRENCY must be positive, got %d", c.DirectoryConcurrency)
	}
	if c.ReviewStore == StorePostgres && c.PostgresHost == "" {
		return fmt.Errorf("POSTGRES_HOST is required")
	}
	if c.ReviewStore == StoreRedis && c.RedisHost == "" {
		return fmt.Errorf("REDIS_HOST is required")
	}
	if c.KafkaEnabled && len(c.KafkaBrokers) == 0 {
		return fmt.Errorf("KAFKA_BROKERS is required when KAFKA_ENABLED is set")
	}
	if c.StoreBreakerFailureRatio <= 0 || c.StoreBreakerFailureRatio > 1.0 {
		return fmt.Errorf("STORE_BREAKER_FAILURE_RATIO must be in (0, 1], got %f", c.StoreBreakerFailureRatio)
	}
	if c.OTELSampleRate < 0 || c.OTELSampleRate > 1.0 {
		return fmt.Errorf("OTEL_SAMPLE_RATE must be between 0.0 and 1.0, got %f", c.OTELSampleRate)
	}
	return nil
}

// Postgres returns the connection settings of the Postgres review store.
func (c *Config) Postgres() database.PostgresConfig {
	return database.PostgresConfig{
		Host:            c.PostgresHost,
		Port:            c.PostgresPort,
		User:            c.PostgresUser,
		Password:        c.PostgresPass,
		DBName:          c.PostgresDB,
		SSLMode:         c.PostgresSSL,
		MaxConns:        c.DBMaxConns,
		MinConns:        c.DBMinConns,
		MaxConnLifetime: time.Duration(c.DBMaxConnLifetimeMins) * time.Minute,
		MaxConnIdleTime: time.Duration(c.DBMaxConnIdleTimeMins) * time.Minute,
	}
}

// Redis returns the connection settings of the Redis review store.
func (c *Config) Redis() database.RedisConfig {
	cfg := database.DefaultRedisConfig()
	cfg.Host = c.RedisHost
	cfg.Port = c.RedisPort
	cfg.Password = c.RedisPassword
	cfg.DB = c.RedisDB
	return cfg
}

// Breaker returns the circuit breaker settings of the review store.
func (c *Config) Breaker() breaker.Config {
	cfg := breaker.DefaultConfig("review-store-" + c.ReviewStore)
	cfg.Timeout = c.StoreBreakerTimeout
	cfg.FailureRatio = c.StoreBreakerFailureRatio
	cfg.MinRequests = c.StoreBreakerMinRequests
	return cfg
}

// Kafka returns the producer settings.
func (c *Config) Kafka() pkgkafka.ProducerConfig {
	return pkgkafka.DefaultProducerConfig(c.KafkaBrokers)
}

// Tracing returns the OpenTelemetry settings.
func (c *Config) Tracing() tracing.Config {
	cfg := tracing.DefaultConfig(ServiceName)
	cfg.Environment = c.Environment
	cfg.OTLPEndpoint = c.OTELEndpoint
	cfg.SampleRate = c.OTELSampleRate
	cfg.Enabled = c.OTELEnabled
	return cfg
}

// SlowQueryThreshold returns the duration above which queries are logged.
func (c *Config) SlowQueryThreshold() time.Duration {
	return time.Duration(c.SlowQueryThresholdMs) * time.Millisecond
}
