// Package config loads and validates pipeline configuration via Viper.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config captures all configuration knobs loaded via Viper.
type Config struct {
	Pipeline PipelineConfig `mapstructure:"pipeline"`
	Fetch    FetchConfig    `mapstructure:"fetch"`
	Career   CareerConfig   `mapstructure:"career"`
	Sources  SourcesConfig  `mapstructure:"sources"`
	API      APIConfig      `mapstructure:"api"`
	Logging  LoggingConfig  `mapstructure:"logging"`
}

// PipelineConfig governs where pipeline output lands.
type PipelineConfig struct {
	DataDir string `mapstructure:"data_dir"`
}

// FetchConfig controls the shared HTTP session used by all collectors.
type FetchConfig struct {
	UserAgent      string `mapstructure:"user_agent"`
	TimeoutSeconds int    `mapstructure:"timeout_seconds"`
}

// Timeout returns the per-request timeout for collector fetches.
func (c FetchConfig) Timeout() time.Duration {
	return time.Duration(c.TimeoutSeconds) * time.Second
}

// CareerConfig controls the careers-page enrichment step.
type CareerConfig struct {
	MaxConcurrency   int     `mapstructure:"max_concurrency"`
	RateLimitSeconds float64 `mapstructure:"rate_limit_seconds"`
	TimeoutSeconds   int     `mapstructure:"timeout_seconds"`
}

// Timeout returns the per-request timeout for career resolution fetches.
func (c CareerConfig) Timeout() time.Duration {
	return time.Duration(c.TimeoutSeconds) * time.Second
}

// MinDelay returns the per-host minimum request spacing for the
// career resolver, independent of collector rate limits.
func (c CareerConfig) MinDelay() time.Duration {
	return time.Duration(c.RateLimitSeconds * float64(time.Second))
}

// SourcesConfig toggles and tunes the individual collectors.
type SourcesConfig struct {
	Wikipedia       WikipediaConfig  `mapstructure:"wikipedia"`
	WikipediaGlobal WikipediaConfig  `mapstructure:"wikipedia_global"`
	EUStartups      EUStartupsConfig `mapstructure:"eu_startups"`
}

// WikipediaConfig tunes a Wikipedia list-page collector.
type WikipediaConfig struct {
	Enabled          bool    `mapstructure:"enabled"`
	ListURL          string  `mapstructure:"list_url"`
	EuropeOnly       bool    `mapstructure:"europe_only"`
	RateLimitSeconds float64 `mapstructure:"rate_limit_seconds"`
}

// MinDelay returns the per-host minimum request spacing.
func (c WikipediaConfig) MinDelay() time.Duration {
	return time.Duration(c.RateLimitSeconds * float64(time.Second))
}

// EUStartupsConfig tunes the EU-Startups directory collector.
type EUStartupsConfig struct {
	Enabled          bool    `mapstructure:"enabled"`
	DirectoryURL     string  `mapstructure:"directory_url"`
	MaxCategoryPages int     `mapstructure:"max_category_pages"`
	MaxCompanies     int     `mapstructure:"max_companies"`
	RateLimitSeconds float64 `mapstructure:"rate_limit_seconds"`
}

// MinDelay returns the per-host minimum request spacing.
func (c EUStartupsConfig) MinDelay() time.Duration {
	return time.Duration(c.RateLimitSeconds * float64(time.Second))
}

// APIConfig controls the query API server.
type APIConfig struct {
	Port int `mapstructure:"port"`
}

// LoggingConfig toggles zap development features.
type LoggingConfig struct {
	Development bool `mapstructure:"development"`
}

// Load builds a Config from disk and environment. An empty path skips
// the config file and uses defaults plus environment overrides.
func Load(path string) (Config, error) {
	v := viper.New()
	v.SetEnvPrefix("OJB")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("pipeline.data_dir", "data")

	v.SetDefault("fetch.user_agent",
		"OpenJobBoardEU/1.0 (+https://github.com/artenis/openjobboard)")
	v.SetDefault("fetch.timeout_seconds", 20)

	v.SetDefault("career.max_concurrency", 8)
	v.SetDefault("career.rate_limit_seconds", 1.0)
	v.SetDefault("career.timeout_seconds", 12)

	v.SetDefault("sources.wikipedia.enabled", true)
	v.SetDefault("sources.wikipedia.list_url",
		"https://en.wikipedia.org/wiki/List_of_largest_companies_in_Europe_by_revenue")
	v.SetDefault("sources.wikipedia.europe_only", false)
	v.SetDefault("sources.wikipedia.rate_limit_seconds", 0.35)

	v.SetDefault("sources.wikipedia_global.enabled", true)
	v.SetDefault("sources.wikipedia_global.list_url",
		"https://en.wikipedia.org/wiki/List_of_largest_companies_by_revenue")
	v.SetDefault("sources.wikipedia_global.europe_only", true)
	v.SetDefault("sources.wikipedia_global.rate_limit_seconds", 0.35)

	v.SetDefault("sources.eu_startups.enabled", true)
	v.SetDefault("sources.eu_startups.directory_url", "https://www.eu-startups.com/directory/")
	v.SetDefault("sources.eu_startups.max_category_pages", 8)
	v.SetDefault("sources.eu_startups.max_companies", 60)
	v.SetDefault("sources.eu_startups.rate_limit_seconds", 1.5)

	v.SetDefault("api.port", 8080)

	v.SetDefault("logging.development", true)
}

// Validate enforces required values and reasonable limits.
func (c Config) Validate() error {
	if c.Pipeline.DataDir == "" {
		return fmt.Errorf("pipeline.data_dir must be set")
	}
	if c.Fetch.UserAgent == "" {
		return fmt.Errorf("fetch.user_agent must be set")
	}
	if c.Fetch.TimeoutSeconds <= 0 {
		return fmt.Errorf("fetch.timeout_seconds must be > 0")
	}
	if c.Career.MaxConcurrency <= 0 {
		return fmt.Errorf("career.max_concurrency must be > 0")
	}
	if c.Career.RateLimitSeconds < 0 {
		return fmt.Errorf("career.rate_limit_seconds must be >= 0")
	}
	if c.Career.TimeoutSeconds <= 0 {
		return fmt.Errorf("career.timeout_seconds must be > 0")
	}
	if c.API.Port <= 0 {
		return fmt.Errorf("api.port must be > 0")
	}
	return nil
}
