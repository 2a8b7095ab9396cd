package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Server     ServerConfig     `mapstructure:"server"`
	Database   DatabaseConfig   `mapstructure:"database"`
	Redis      RedisConfig      `mapstructure:"redis"`
	Neo4j      Neo4jConfig      `mapstructure:"neo4j"`
	Kafka      KafkaConfig      `mapstructure:"kafka"`
	Logging    LoggingConfig    `mapstructure:"logging"`
	Storefront StorefrontConfig `mapstructure:"storefront"`
	Ranking    RankingConfig    `mapstructure:"ranking"`
	Recorder   RecorderConfig   `mapstructure:"recorder"`
	Security   SecurityConfig   `mapstructure:"security"`
}

type ServerConfig struct {
	Port string `mapstructure:"port"`
	Mode string `mapstructure:"mode"`
}

type DatabaseConfig struct {
	URL            string        `mapstructure:"url"`
	MaxConnections int           `mapstructure:"max_connections"`
	MaxIdleTime    time.Duration `mapstructure:"max_idle_time"`
	MaxLifetime    time.Duration `mapstructure:"max_lifetime"`
	ConnectTimeout time.Duration `mapstructure:"connect_timeout"`
	CatalogTable   string        `mapstructure:"catalog_table"`
}

type RedisConfig struct {
	Sessions RedisInstanceConfig `mapstructure:"sessions"`
}

type RedisInstanceConfig struct {
	URL        string        `mapstructure:"url"`
	MaxRetries int           `mapstructure:"max_retries"`
	PoolSize   int           `mapstructure:"pool_size"`
	Timeout    time.Duration `mapstructure:"timeout"`
	TTL        time.Duration `mapstructure:"ttl"`
}

type Neo4jConfig struct {
	URL      string `mapstructure:"url"`
	Username string `mapstructure:"username"`
	Password string `mapstructure:"password"`
}

type KafkaConfig struct {
	Brokers []string `mapstructure:"brokers"`
	Topics  struct {
		UserInteractions string `mapstructure:"user_interactions"`
	} `mapstructure:"topics"`
}

type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// StorefrontConfig holds the constants of the browsing experience.
type StorefrontConfig struct {
	TrendingLimit      int    `mapstructure:"trending_limit"`
	DefaultUserID      int64  `mapstructure:"default_user_id"`
	TitleDisplayLength int    `mapstructure:"title_display_length"`
	Currency           string `mapstructure:"currency"`
}

type RankingConfig struct {
	URL             string        `mapstructure:"url"`
	Timeout         time.Duration `mapstructure:"timeout"`
	MaxResults      int           `mapstructure:"max_results"`
	BreakerFailures uint32        `mapstructure:"breaker_failures"`
	BreakerTimeout  time.Duration `mapstructure:"breaker_timeout"`
}

type RecorderConfig struct {
	Sinks      []string `mapstructure:"sinks"`
	Async      bool     `mapstructure:"async"`
	BufferSize int      `mapstructure:"buffer_size"`
	Table      string   `mapstructure:"table"`
}

type SecurityConfig struct {
	CORS CORSConfig `mapstructure:"cors"`
}

type CORSConfig struct {
	AllowedOrigins []string `mapstructure:"allowed_origins"`
	AllowedMethods []string `mapstructure:"allowed_methods"`
	AllowedHeaders []string `mapstructure:"allowed_headers"`
}

func Load() (*Config, error) {
	v := viper.New()
	v.SetConfigName("app")
	v.SetConfigType("yaml")
	v.AddConfigPath("./config")
	v.AddConfigPath(".")

	setDefaults(v)

	// Environment variable overrides
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	if err := v.ReadInConfig(); err != nil {
		// Config file is optional, continue with env vars and defaults
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, err
		}
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, err
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}

	return &config, nil
}

var ErrInvalidDefaultUser = errors.New("storefront.default_user_id must be positive")

// Validate rejects settings the storefront cannot run with.
func (c *Config) Validate() error {
	if c.Storefront.DefaultUserID <= 0 {
		return fmt.Errorf("invalid configuration: %w (got %d)", ErrInvalidDefaultUser, c.Storefront.DefaultUserID)
	}
	return nil
}

func setDefaults(v *viper.Viper) {
	// Server defaults
	v.SetDefault("server.port", "8080")
	v.SetDefault("server.mode", "development")

	// Database defaults
	v.SetDefault("database.url", "")
	v.SetDefault("database.max_connections", 25)
	v.SetDefault("database.max_idle_time", "15m")
	v.SetDefault("database.max_lifetime", "1h")
	v.SetDefault("database.connect_timeout", "10s")
	v.SetDefault("database.catalog_table", "product_table")

	// Redis defaults
	v.SetDefault("redis.sessions.url", "")
	v.SetDefault("redis.sessions.max_retries", 3)
	v.SetDefault("redis.sessions.pool_size", 10)
	v.SetDefault("redis.sessions.timeout", "5s")
	v.SetDefault("redis.sessions.ttl", "24h")

	// Neo4j defaults
	v.SetDefault("neo4j.url", "")
	v.SetDefault("neo4j.username", "neo4j")
	v.SetDefault("neo4j.password", "")

	// Kafka defaults
	v.SetDefault("kafka.brokers", []string{})
	v.SetDefault("kafka.topics.user_interactions", "user-interactions")

	// Logging defaults
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "text")

	// Storefront defaults
	v.SetDefault("storefront.trending_limit", 6)
	v.SetDefault("storefront.default_user_id", 1)
	v.SetDefault("storefront.title_display_length", 50)
	v.SetDefault("storefront.currency", "INR")

	// Ranking defaults
	v.SetDefault("ranking.url", "")
	v.SetDefault("ranking.timeout", "5s")
	v.SetDefault("ranking.max_results", 20)
	v.SetDefault("ranking.breaker_failures", 5)
	v.SetDefault("ranking.breaker_timeout", "30s")

	// Recorder defaults
	v.SetDefault("recorder.sinks", []string{"log"})
	v.SetDefault("recorder.async", false)
	v.SetDefault("recorder.buffer_size", 1000)
	v.SetDefault("recorder.table", "user_interactions")

	// Security defaults
	v.SetDefault("security.cors.allowed_origins", []string{"*"})
	v.SetDefault("security.cors.allowed_methods", []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"})
	v.SetDefault("security.cors.allowed_headers", []string{"*"})
}
