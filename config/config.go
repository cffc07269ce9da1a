package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all configuration for the application
type Config struct {
	Server    ServerConfig
	Database  DatabaseConfig
	Cache     CacheConfig
	Matching  MatchingConfig
	RateLimit RateLimitConfig
	Logging   LoggingConfig
}

// ServerConfig holds server-related configuration
type ServerConfig struct {
	Port           string   `mapstructure:"port"`
	Environment    string   `mapstructure:"environment"`
	AllowedOrigins []string `mapstructure:"allowed_origins"`
}

// DatabaseConfig holds the listing/catalog store configuration
type DatabaseConfig struct {
	URL          string `mapstructure:"url"`
	MaxOpenConns int    `mapstructure:"max_open_conns"`
}

// CacheConfig holds cache TTLs for search results and the vendor dictionary
type CacheConfig struct {
	SearchTTL time.Duration `mapstructure:"search_ttl"`
	VendorTTL time.Duration `mapstructure:"vendor_ttl"`
}

// MatchingConfig holds the scorer weights and filter tunables
type MatchingConfig struct {
	NameWeight      float64 `mapstructure:"name_weight"`
	TypeWeight      float64 `mapstructure:"type_weight"`
	VariationWeight float64 `mapstructure:"variation_weight"`
	VendorWeight    float64 `mapstructure:"vendor_weight"`
	VolumeWeight    float64 `mapstructure:"volume_weight"`

	FilterPolicy             string  `mapstructure:"filter_policy"`
	Threshold                float64 `mapstructure:"threshold"`
	ExcludeStandardVariation bool    `mapstructure:"exclude_standard_variation"`
	BatchConcurrency         int     `mapstructure:"batch_concurrency"`
}

// RateLimitConfig holds rate limiting configuration
type RateLimitConfig struct {
	PerIP int `mapstructure:"per_ip"`
}

// LoggingConfig holds log level and file rotation settings
type LoggingConfig struct {
	Level string `mapstructure:"level"`
	File  string `mapstructure:"file"`
}

// Load loads configuration from environment variables and config files
func Load() (*Config, error) {
	v := viper.New()

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")
	v.AddConfigPath("/etc/pricescope/")

	v.SetEnvPrefix("PRICESCOPE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	// Config file is optional - env vars and defaults cover everything
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("unable to decode config: %w", err)
	}

	if err := validate(&config); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &config, nil
}

// setDefaults sets default configuration values
func setDefaults(v *viper.Viper) {
	// Server defaults
	v.SetDefault("server.port", "8080")
	v.SetDefault("server.environment", "development")
	v.SetDefault("server.allowed_origins", []string{"http://localhost:3000"})

	// Database defaults; the URL has no usable default but registering the
	// key lets the env override reach Unmarshal
	v.SetDefault("database.url", "")
	v.SetDefault("database.max_open_conns", 10)

	// Cache defaults
	v.SetDefault("cache.search_ttl", "1h")
	v.SetDefault("cache.vendor_ttl", "24h")

	// Matching defaults: the balanced weight profile
	v.SetDefault("matching.name_weight", 0.35)
	v.SetDefault("matching.type_weight", 0.25)
	v.SetDefault("matching.variation_weight", 0.20)
	v.SetDefault("matching.vendor_weight", 0.15)
	v.SetDefault("matching.volume_weight", 0.05)
	v.SetDefault("matching.filter_policy", "absolute")
	v.SetDefault("matching.threshold", 0.7)
	v.SetDefault("matching.exclude_standard_variation", false)
	v.SetDefault("matching.batch_concurrency", 4)

	// Rate limit defaults
	v.SetDefault("ratelimit.per_ip", 100)

	// Logging defaults
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.file", "logs/pricescope.log")
}

// validate validates the configuration
func validate(config *Config) error {
	if config.Database.URL == "" {
		return fmt.Errorf("database URL is required (set PRICESCOPE_DATABASE_URL)")
	}

	switch config.Matching.FilterPolicy {
	case "absolute", "relative", "adaptive":
	default:
		return fmt.Errorf("filter policy must be 'absolute', 'relative' or 'adaptive', got: %s", config.Matching.FilterPolicy)
	}

	if config.Matching.Threshold <= 0 || config.Matching.Threshold >= 1 {
		return fmt.Errorf("matching threshold must be in (0, 1), got: %v", config.Matching.Threshold)
	}

	return nil
}
