package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Search modes
const (
	ModeModel     = "model"
	ModeHeuristic = "heuristic"
)

// Config holds all configuration for the application
type Config struct {
	Server    ServerConfig
	Mongo     MongoConfig
	LLM       LLMConfig
	Cache     CacheConfig
	RateLimit RateLimitConfig
	Search    SearchConfig
	Log       LogConfig
}

// ServerConfig holds server-related configuration
type ServerConfig struct {
	Port           string   `mapstructure:"port"`
	Environment    string   `mapstructure:"environment"`
	AllowedOrigins []string `mapstructure:"allowed_origins"`
}

// MongoConfig holds catalog store configuration
type MongoConfig struct {
	URI        string        `mapstructure:"uri"`
	Database   string        `mapstructure:"database"`
	Collection string        `mapstructure:"collection"`
	Timeout    time.Duration `mapstructure:"timeout"`
}

// LLMConfig holds language model configuration
type LLMConfig struct {
	APIKey            string        `mapstructure:"api_key"`
	BaseURL           string        `mapstructure:"base_url"`
	FilterModel       string        `mapstructure:"filter_model"`
	RankModel         string        `mapstructure:"rank_model"`
	Timeout           time.Duration `mapstructure:"timeout"`
	MaxRetries        int           `mapstructure:"max_retries"`
	RequestsPerSecond float64       `mapstructure:"requests_per_second"`
	Burst             int           `mapstructure:"burst"`
}

// CacheConfig holds cache-related configuration
type CacheConfig struct {
	Type     string        `mapstructure:"type"` // "memory" or "redis"
	RedisURL string        `mapstructure:"redis_url"`
	TTL      time.Duration `mapstructure:"ttl"`
}

// RateLimitConfig holds rate limiting configuration
type RateLimitConfig struct {
	PerIP int `mapstructure:"per_ip"` // requests per minute
}

// SearchConfig holds pipeline limits and the active mode
type SearchConfig struct {
	Mode           string `mapstructure:"mode"`
	RetrieveLimit  int    `mapstructure:"retrieve_limit"`
	DisplayLimit   int    `mapstructure:"display_limit"`
	RankCandidates int    `mapstructure:"rank_candidates"`
	TopK           int    `mapstructure:"top_k"`
}

// LogConfig holds logging configuration
type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// Load loads configuration from .env, config files and environment variables
func Load() (*Config, error) {
	// .env is optional; real environment variables win over it
	_ = godotenv.Load()

	v := viper.New()

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")
	v.AddConfigPath("/etc/jibsearch/")

	// mongo.uri is read from JIBSEARCH_MONGO_URI
	v.SetEnvPrefix("JIBSEARCH")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

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

// setDefaults sets default configuration values. Every key needs a default so
// AutomaticEnv can bind it during Unmarshal.
func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", "8000")
	v.SetDefault("server.environment", "development")
	v.SetDefault("server.allowed_origins", []string{"http://localhost:3000"})

	v.SetDefault("mongo.uri", "")
	v.SetDefault("mongo.database", "dashboard-scrape-dev")
	v.SetDefault("mongo.collection", "productjibscrapes")
	v.SetDefault("mongo.timeout", "10s")

	v.SetDefault("llm.api_key", "")
	v.SetDefault("llm.base_url", "")
	v.SetDefault("llm.filter_model", "gpt-4o-mini")
	v.SetDefault("llm.rank_model", "gpt-4o")
	v.SetDefault("llm.timeout", "30s")
	v.SetDefault("llm.max_retries", 1)
	v.SetDefault("llm.requests_per_second", 5.0)
	v.SetDefault("llm.burst", 10)

	v.SetDefault("cache.type", "memory")
	v.SetDefault("cache.redis_url", "")
	v.SetDefault("cache.ttl", "1h")

	v.SetDefault("ratelimit.per_ip", 60)

	v.SetDefault("search.mode", ModeModel)
	v.SetDefault("search.retrieve_limit", 50)
	v.SetDefault("search.display_limit", 20)
	v.SetDefault("search.rank_candidates", 20)
	v.SetDefault("search.top_k", 5)

	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")
}

// validate validates the configuration
func validate(config *Config) error {
	if config.Mongo.URI == "" {
		return fmt.Errorf("MongoDB URI is required (set JIBSEARCH_MONGO_URI)")
	}

	if config.Cache.Type != "memory" && config.Cache.Type != "redis" {
		return fmt.Errorf("cache type must be 'memory' or 'redis', got: %s", config.Cache.Type)
	}

	if config.Cache.Type == "redis" && config.Cache.RedisURL == "" {
		return fmt.Errorf("Redis URL is required when cache type is 'redis'")
	}

	if config.Search.Mode != ModeModel && config.Search.Mode != ModeHeuristic {
		return fmt.Errorf("search mode must be '%s' or '%s', got: %s", ModeModel, ModeHeuristic, config.Search.Mode)
	}

	if config.Search.RetrieveLimit <= 0 || config.Search.DisplayLimit <= 0 ||
		config.Search.RankCandidates <= 0 || config.Search.TopK <= 0 {
		return fmt.Errorf("search limits must be positive")
	}

	if config.LLM.MaxRetries < 0 {
		return fmt.Errorf("llm max_retries must not be negative, got: %d", config.LLM.MaxRetries)
	}

	return nil
}

// ModelConfigured reports whether a language model API key is present
func (c *Config) ModelConfigured() bool {
	return c.LLM.APIKey != ""
}
