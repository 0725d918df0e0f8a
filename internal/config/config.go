package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// Config defines configuration for the sfdump CLI.
type Config struct {
	InstanceURL string         `yaml:"instance_url"`
	APIVersion  string         `yaml:"api_version"`
	AccessToken string         `yaml:"access_token"`
	OutDir      string         `yaml:"out_dir"`
	Workers     int            `yaml:"workers"`
	Where       string         `yaml:"where"`
	Order       string         `yaml:"order"`
	Chunk       ChunkConfig    `yaml:"chunk"`
	Retry       RetryConfig    `yaml:"retry"`
	Backfill    BackfillConfig `yaml:"backfill"`
	Log         LogConfig      `yaml:"log"`
}

// ChunkConfig selects one partition of the candidate set for this process.
// Values are kept as raw strings: invalid input deliberately disables
// partitioning instead of failing the run, so that a misconfigured worker
// exports everything rather than silently exporting nothing.
type ChunkConfig struct {
	Total string `yaml:"total"`
	Index string `yaml:"index"`
}

// RetryConfig defines API retry behavior for server errors.
type RetryConfig struct {
	Attempts   int           `yaml:"attempts"`
	Backoff    time.Duration `yaml:"backoff"`
	MaxBackoff time.Duration `yaml:"max_backoff"`
}

// BackfillConfig defines backfill pass behavior.
type BackfillConfig struct {
	Workers int `yaml:"workers"`
}

// LogConfig defines logging behavior.
type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// Default returns a Config with sensible defaults.
func Default() Config {
	return Config{
		APIVersion: "v59.0",
		OutDir:     "./export",
		Workers:    8,
		Retry: RetryConfig{
			Attempts:   5,
			Backoff:    time.Second,
			MaxBackoff: 30 * time.Second,
		},
		Backfill: BackfillConfig{
			Workers: 16,
		},
		Log: LogConfig{
			Level:  "info",
			Format: "text",
		},
	}
}

// yamlConfig is used for YAML unmarshaling with string durations.
type yamlConfig struct {
	InstanceURL string          `yaml:"instance_url"`
	APIVersion  string          `yaml:"api_version"`
	AccessToken string          `yaml:"access_token"`
	OutDir      string          `yaml:"out_dir"`
	Workers     int             `yaml:"workers"`
	Where       string          `yaml:"where"`
	Order       string          `yaml:"order"`
	Chunk       ChunkConfig     `yaml:"chunk"`
	Retry       yamlRetryConfig `yaml:"retry"`
	Backfill    BackfillConfig  `yaml:"backfill"`
	Log         LogConfig       `yaml:"log"`
}

type yamlRetryConfig struct {
	Attempts   int    `yaml:"attempts"`
	Backoff    string `yaml:"backoff"`
	MaxBackoff string `yaml:"max_backoff"`
}

// LoadFromFile loads configuration from a YAML file on top of defaults.
func LoadFromFile(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("read config file: %w", err)
	}

	var yc yamlConfig
	if err := yaml.Unmarshal(data, &yc); err != nil {
		return Config{}, fmt.Errorf("parse config file: %w", err)
	}

	cfg := Default()

	if yc.InstanceURL != "" {
		cfg.InstanceURL = yc.InstanceURL
	}
	if yc.APIVersion != "" {
		cfg.APIVersion = yc.APIVersion
	}
	if yc.AccessToken != "" {
		cfg.AccessToken = yc.AccessToken
	}
	if yc.OutDir != "" {
		cfg.OutDir = yc.OutDir
	}
	if yc.Workers != 0 {
		cfg.Workers = yc.Workers
	}
	cfg.Where = yc.Where
	cfg.Order = yc.Order
	cfg.Chunk = yc.Chunk
	if yc.Retry.Attempts != 0 {
		cfg.Retry.Attempts = yc.Retry.Attempts
	}
	if yc.Retry.Backoff != "" {
		d, err := time.ParseDuration(yc.Retry.Backoff)
		if err != nil {
			return Config{}, fmt.Errorf("parse retry.backoff: %w", err)
		}
		cfg.Retry.Backoff = d
	}
	if yc.Retry.MaxBackoff != "" {
		d, err := time.ParseDuration(yc.Retry.MaxBackoff)
		if err != nil {
			return Config{}, fmt.Errorf("parse retry.max_backoff: %w", err)
		}
		cfg.Retry.MaxBackoff = d
	}
	if yc.Backfill.Workers != 0 {
		cfg.Backfill.Workers = yc.Backfill.Workers
	}
	if yc.Log.Level != "" {
		cfg.Log.Level = yc.Log.Level
	}
	if yc.Log.Format != "" {
		cfg.Log.Format = yc.Log.Format
	}

	return cfg, nil
}

// LoadFromEnv overlays configuration from environment variables.
// Variables use the SFDUMP_ prefix.
func (c *Config) LoadFromEnv() error {
	if v := os.Getenv("SFDUMP_INSTANCE_URL"); v != "" {
		c.InstanceURL = v
	}
	if v := os.Getenv("SFDUMP_API_VERSION"); v != "" {
		c.APIVersion = v
	}
	if v := os.Getenv("SFDUMP_ACCESS_TOKEN"); v != "" {
		c.AccessToken = v
	}
	if v := os.Getenv("SFDUMP_OUT_DIR"); v != "" {
		c.OutDir = v
	}
	if v := os.Getenv("SFDUMP_WORKERS"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("parse SFDUMP_WORKERS: %w", err)
		}
		c.Workers = n
	}
	if v := os.Getenv("SFDUMP_FILES_WHERE"); v != "" {
		c.Where = v
	}
	if v := os.Getenv("SFDUMP_FILES_ORDER"); v != "" {
		c.Order = v
	}
	// Chunk values stay raw: validation happens in the partitioner, where
	// bad input degrades to no-partitioning instead of aborting.
	if v := os.Getenv("SFDUMP_FILES_CHUNK_TOTAL"); v != "" {
		c.Chunk.Total = v
	}
	if v := os.Getenv("SFDUMP_FILES_CHUNK_INDEX"); v != "" {
		c.Chunk.Index = v
	}
	if v := os.Getenv("SFDUMP_RETRY_ATTEMPTS"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("parse SFDUMP_RETRY_ATTEMPTS: %w", err)
		}
		c.Retry.Attempts = n
	}
	if v := os.Getenv("SFDUMP_RETRY_BACKOFF"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("parse SFDUMP_RETRY_BACKOFF: %w", err)
		}
		c.Retry.Backoff = d
	}
	if v := os.Getenv("SFDUMP_RETRY_MAX_BACKOFF"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("parse SFDUMP_RETRY_MAX_BACKOFF: %w", err)
		}
		c.Retry.MaxBackoff = d
	}
	if v := os.Getenv("SFDUMP_BACKFILL_WORKERS"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("parse SFDUMP_BACKFILL_WORKERS: %w", err)
		}
		c.Backfill.Workers = n
	}
	if v := os.Getenv("SFDUMP_LOG_LEVEL"); v != "" {
		c.Log.Level = v
	}
	if v := os.Getenv("SFDUMP_LOG_FORMAT"); v != "" {
		c.Log.Format = v
	}

	return nil
}

// Validate checks the fields every networked command needs.
func (c *Config) Validate() error {
	if c.InstanceURL == "" {
		return errors.New("config: instance_url is required")
	}
	if c.AccessToken == "" {
		return errors.New("config: access_token is required")
	}
	if c.OutDir == "" {
		return errors.New("config: out_dir is required")
	}
	if c.Workers <= 0 {
		return errors.New("config: workers must be positive")
	}
	return nil
}
