package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config defines configuration for the beerscape CLI.
type Config struct {
	Endpoint        string        `yaml:"endpoint"`
	Bucket          string        `yaml:"bucket"`
	Extension       string        `yaml:"extension"`
	UserAgent       string        `yaml:"user_agent"`
	Goal            int           `yaml:"goal"`
	MinID           uint64        `yaml:"min_id"`
	MaxID           uint64        `yaml:"max_id"`
	BatchSize       int           `yaml:"batch_size"`
	Timeout         time.Duration `yaml:"timeout"`
	Pause           time.Duration `yaml:"pause"`
	MaxResourceSize int64         `yaml:"max_resource_size"`
	Progress        bool          `yaml:"progress"`
	MetricsAddr     string        `yaml:"metrics_addr"`
}

// Default returns a Config with sensible defaults.
func Default() Config {
	return Config{
		Extension:       "bsmx",
		Goal:            10000,
		MinID:           1,
		MaxID:           4000000,
		BatchSize:       10,
		Timeout:         10 * time.Second,
		Pause:           100 * time.Millisecond,
		MaxResourceSize: 32 * 1024 * 1024,
	}
}

// yamlConfig is used for YAML unmarshaling with string durations.
type yamlConfig struct {
	Endpoint        string `yaml:"endpoint"`
	Bucket          string `yaml:"bucket"`
	Extension       string `yaml:"extension"`
	UserAgent       string `yaml:"user_agent"`
	Goal            int    `yaml:"goal"`
	MinID           uint64 `yaml:"min_id"`
	MaxID           uint64 `yaml:"max_id"`
	BatchSize       int    `yaml:"batch_size"`
	Timeout         string `yaml:"timeout"`
	Pause           string `yaml:"pause"`
	MaxResourceSize int64  `yaml:"max_resource_size"`
	Progress        bool   `yaml:"progress"`
	MetricsAddr     string `yaml:"metrics_addr"`
}

// LoadFromFile loads configuration from a YAML file, on top of defaults.
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

	if yc.Endpoint != "" {
		cfg.Endpoint = yc.Endpoint
	}
	if yc.Bucket != "" {
		cfg.Bucket = yc.Bucket
	}
	if yc.Extension != "" {
		cfg.Extension = yc.Extension
	}
	if yc.UserAgent != "" {
		cfg.UserAgent = yc.UserAgent
	}
	if yc.Goal != 0 {
		cfg.Goal = yc.Goal
	}
	if yc.MinID != 0 {
		cfg.MinID = yc.MinID
	}
	if yc.MaxID != 0 {
		cfg.MaxID = yc.MaxID
	}
	if yc.BatchSize != 0 {
		cfg.BatchSize = yc.BatchSize
	}
	if yc.Timeout != "" {
		d, err := time.ParseDuration(yc.Timeout)
		if err != nil {
			return Config{}, fmt.Errorf("parse timeout: %w", err)
		}
		cfg.Timeout = d
	}
	if yc.Pause != "" {
		d, err := time.ParseDuration(yc.Pause)
		if err != nil {
			return Config{}, fmt.Errorf("parse pause: %w", err)
		}
		cfg.Pause = d
	}
	if yc.MaxResourceSize != 0 {
		cfg.MaxResourceSize = yc.MaxResourceSize
	}
	cfg.Progress = yc.Progress
	if yc.MetricsAddr != "" {
		cfg.MetricsAddr = yc.MetricsAddr
	}

	return cfg, nil
}

// LoadFromEnv loads configuration from environment variables.
// Environment variables use the BEERSCAPE_ prefix.
func (c *Config) LoadFromEnv() error {
	if v := os.Getenv("BEERSCAPE_ENDPOINT"); v != "" {
		c.Endpoint = v
	}
	if v := os.Getenv("BEERSCAPE_BUCKET"); v != "" {
		c.Bucket = v
	}
	if v := os.Getenv("BEERSCAPE_EXTENSION"); v != "" {
		c.Extension = v
	}
	if v := os.Getenv("BEERSCAPE_USER_AGENT"); v != "" {
		c.UserAgent = v
	}
	if v := os.Getenv("BEERSCAPE_GOAL"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("parse BEERSCAPE_GOAL: %w", err)
		}
		c.Goal = n
	}
	if v := os.Getenv("BEERSCAPE_MIN_ID"); v != "" {
		n, err := strconv.ParseUint(v, 10, 64)
		if err != nil {
			return fmt.Errorf("parse BEERSCAPE_MIN_ID: %w", err)
		}
		c.MinID = n
	}
	if v := os.Getenv("BEERSCAPE_MAX_ID"); v != "" {
		n, err := strconv.ParseUint(v, 10, 64)
		if err != nil {
			return fmt.Errorf("parse BEERSCAPE_MAX_ID: %w", err)
		}
		c.MaxID = n
	}
	if v := os.Getenv("BEERSCAPE_BATCH_SIZE"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("parse BEERSCAPE_BATCH_SIZE: %w", err)
		}
		c.BatchSize = n
	}
	if v := os.Getenv("BEERSCAPE_TIMEOUT"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("parse BEERSCAPE_TIMEOUT: %w", err)
		}
		c.Timeout = d
	}
	if v := os.Getenv("BEERSCAPE_PAUSE"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("parse BEERSCAPE_PAUSE: %w", err)
		}
		c.Pause = d
	}
	if v := os.Getenv("BEERSCAPE_PROGRESS"); v != "" {
		c.Progress = v == "true" || v == "1"
	}
	if v := os.Getenv("BEERSCAPE_METRICS_ADDR"); v != "" {
		c.MetricsAddr = v
	}

	return nil
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	if c.Endpoint == "" {
		return errors.New("config: endpoint is required")
	}
	if !strings.Contains(c.Endpoint, "%d") {
		return errors.New("config: endpoint must contain a %d identifier placeholder")
	}
	if c.Bucket == "" {
		return errors.New("config: bucket is required")
	}
	if c.Goal <= 0 {
		return errors.New("config: goal must be positive")
	}
	if c.BatchSize <= 0 {
		return errors.New("config: batch_size must be positive")
	}
	if c.MinID > c.MaxID {
		return errors.New("config: min_id must not exceed max_id")
	}
	if c.MaxID-c.MinID+1 < uint64(c.Goal) {
		return errors.New("config: identifier range is smaller than the goal")
	}
	if c.Timeout <= 0 {
		return errors.New("config: timeout must be positive")
	}
	return nil
}

// Merge merges override values into c, returning a new Config.
// Zero values in override are ignored.
func (c Config) Merge(override Config) Config {
	if override.Endpoint != "" {
		c.Endpoint = override.Endpoint
	}
	if override.Bucket != "" {
		c.Bucket = override.Bucket
	}
	if override.Extension != "" {
		c.Extension = override.Extension
	}
	if override.UserAgent != "" {
		c.UserAgent = override.UserAgent
	}
	if override.Goal != 0 {
		c.Goal = override.Goal
	}
	if override.MinID != 0 {
		c.MinID = override.MinID
	}
	if override.MaxID != 0 {
		c.MaxID = override.MaxID
	}
	if override.BatchSize != 0 {
		c.BatchSize = override.BatchSize
	}
	if override.Timeout != 0 {
		c.Timeout = override.Timeout
	}
	if override.Pause != 0 {
		c.Pause = override.Pause
	}
	if override.MaxResourceSize != 0 {
		c.MaxResourceSize = override.MaxResourceSize
	}
	if override.Progress {
		c.Progress = override.Progress
	}
	if override.MetricsAddr != "" {
		c.MetricsAddr = override.MetricsAddr
	}
	return c
}
