package config

import (
	"fmt"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"
)

const (
	DefaultDatabasePath  = "~/.cortexmap/cortexmap.db"
	DefaultDriver        = "sqlite"
	DefaultAddr          = "127.0.0.1:1357"
	DefaultAllowedOrigin = "http://localhost:1430"
	DefaultLogLevel      = "info"
)

// Environment variables read by Load
const (
	EnvDatabase      = "CORTEXMAP_DB"
	EnvDriver        = "CORTEXMAP_DRIVER"
	EnvAddr          = "CORTEXMAP_ADDR"
	EnvAllowedOrigin = "CORTEXMAP_ORIGIN"
	EnvLogLevel      = "CORTEXMAP_LOG_LEVEL"
	EnvLinearHistory = "CORTEXMAP_LINEAR_HISTORY"
	EnvConfigFile    = "CORTEXMAP_CONFIG"
)

// Config holds the settings shared by every binary
type Config struct {
	Database      string `yaml:"database"`
	Driver        string `yaml:"driver"`
	Addr          string `yaml:"addr"`
	AllowedOrigin string `yaml:"allowed_origin"`
	LogLevel      string `yaml:"log_level"`
	LinearHistory bool   `yaml:"linear_history"`
}

// Default returns the built-in settings
func Default() Config {
	return Config{
		Database:      DefaultDatabasePath,
		Driver:        DefaultDriver,
		Addr:          DefaultAddr,
		AllowedOrigin: DefaultAllowedOrigin,
		LogLevel:      DefaultLogLevel,
	}
}

// Load resolves the configuration: defaults, then the YAML file at path
// (or CORTEXMAP_CONFIG when path is empty), then environment variables.
func Load(path string) (Config, error) {
	cfg := Default()

	if path == "" {
		path = os.Getenv(EnvConfigFile)
	}
	if path != "" {
		if err := cfg.mergeFile(path); err != nil {
			return Config{}, err
		}
	}

	if err := cfg.mergeEnv(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c *Config) mergeFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config file: %w", err)
	}

	var file Config
	if err := yaml.Unmarshal(data, &file); err != nil {
		return fmt.Errorf("failed to parse config file %s: %w", path, err)
	}

	if file.Database != "" {
		c.Database = file.Database
	}
	if file.Driver != "" {
		c.Driver = file.Driver
	}
	if file.Addr != "" {
		c.Addr = file.Addr
	}
	if file.AllowedOrigin != "" {
		c.AllowedOrigin = file.AllowedOrigin
	}
	if file.LogLevel != "" {
		c.LogLevel = file.LogLevel
	}
	if file.LinearHistory {
		c.LinearHistory = true
	}
	return nil
}

func (c *Config) mergeEnv() error {
	if env := os.Getenv(EnvDatabase); env != "" {
		c.Database = env
	}
	if env := os.Getenv(EnvDriver); env != "" {
		c.Driver = env
	}
	if env := os.Getenv(EnvAddr); env != "" {
		c.Addr = env
	}
	if env := os.Getenv(EnvAllowedOrigin); env != "" {
		c.AllowedOrigin = env
	}
	if env := os.Getenv(EnvLogLevel); env != "" {
		c.LogLevel = env
	}
	if env := os.Getenv(EnvLinearHistory); env != "" {
		linear, err := strconv.ParseBool(env)
		if err != nil {
			return fmt.Errorf("invalid %s: %w", EnvLinearHistory, err)
		}
		c.LinearHistory = linear
	}
	return nil
}

// WithDatabase returns a copy of c using path as the database when path is
// not empty. Command-line flags take precedence over every other source.
func (c Config) WithDatabase(path string) Config {
	if path != "" {
		c.Database = path
	}
	return c
}
