// Package config handles Bifrost configuration via environment variables
// and an optional YAML file.
//
// Configuration is loaded from environment variables using LoadFromEnv()
// and can be validated with Validate() before use. A YAML file loaded with
// LoadFile() provides the same settings for deployments that prefer
// checked-in configuration; environment variables win when both are set.
//
// Example Usage:
//
//	cfg := config.LoadFromEnv()
//	if err := cfg.Validate(); err != nil {
//		log.Fatalf("Invalid config: %v", err)
//	}
//
//	fmt.Printf("Database: %s\n", cfg.Connection.URI)
//
// Environment Variables:
//
// Driver-compatible:
//   - NEO4J_URI="bolt://localhost:7687"
//   - NEO4J_AUTH="username/password" or "none"
//   - NEO4J_DATABASE="neo4j"
//
// Bifrost-specific:
//   - BIFROST_MAX_CONNECTIONS=100
//   - BIFROST_QUERY_TIMEOUT=30s
//   - BIFROST_DISK_STORAGE_DIR="./data/properties"
//   - BIFROST_DISK_STORAGE_SYNC=true
//   - BIFROST_LOG_LEVEL=info
package config

import (
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds all Bifrost configuration.
//
// Use LoadFromEnv() to create a Config from environment variables, or
// LoadFile() to read a YAML file with environment overrides applied on top.
type Config struct {
	// Connection settings for the graph database.
	Connection ConnectionConfig `yaml:"connection"`

	// DiskStorage settings for the on-disk property store.
	DiskStorage DiskStorageConfig `yaml:"disk_storage"`

	// Logging settings.
	Logging LoggingConfig `yaml:"logging"`
}

// ConnectionConfig holds graph database connection settings.
type ConnectionConfig struct {
	// URI of the bolt endpoint, e.g. "bolt://localhost:7687"
	URI string `yaml:"uri"`
	// Database name; empty selects the server default
	Database string `yaml:"database"`
	// Username for basic auth; empty disables auth
	Username string `yaml:"username"`
	// Password for basic auth
	Password string `yaml:"password"`
	// MaxConnections in the driver pool
	MaxConnections int `yaml:"max_connections"`
	// QueryTimeout applied per statement
	QueryTimeout time.Duration `yaml:"query_timeout"`
}

// DiskStorageConfig holds settings for the side property store.
type DiskStorageConfig struct {
	// Enabled controls whether a store is opened at startup
	Enabled bool `yaml:"enabled"`
	// DataDir is the directory holding the store files
	DataDir string `yaml:"data_dir"`
	// SyncWrites forces an fsync per write
	SyncWrites bool `yaml:"sync_writes"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	// Level is one of debug, info, warn, error
	Level string `yaml:"level"`
	// Format is "text" or "json"
	Format string `yaml:"format"`
}

// LoadFromEnv builds a Config from environment variables with defaults
// applied where a variable is not set.
//
// Example:
//
//	os.Setenv("NEO4J_URI", "bolt://graph:7687")
//	os.Setenv("NEO4J_AUTH", "admin/s3cret")
//
//	cfg := config.LoadFromEnv()
//	// cfg.Connection.URI == "bolt://graph:7687"
//	// cfg.Connection.Username == "admin"
func LoadFromEnv() *Config {
	cfg := defaults()
	applyEnv(cfg)
	return cfg
}

// LoadFile reads a YAML configuration file and applies environment
// variables on top, so a deployment can check in a base file and still
// override single values per environment.
func LoadFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: read %s: %w", path, err)
	}
	cfg := defaults()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("config: parse %s: %w", path, err)
	}
	applyEnv(cfg)
	return cfg, nil
}

func defaults() *Config {
	return &Config{
		Connection: ConnectionConfig{
			URI:            "bolt://localhost:7687",
			MaxConnections: 100,
			QueryTimeout:   30 * time.Second,
		},
		DiskStorage: DiskStorageConfig{
			DataDir: "./data/properties",
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "text",
		},
	}
}

func applyEnv(cfg *Config) {
	cfg.Connection.URI = getEnv("NEO4J_URI", cfg.Connection.URI)
	cfg.Connection.Database = getEnv("NEO4J_DATABASE", cfg.Connection.Database)

	// NEO4J_AUTH format: "username/password" or "none"
	if authStr := os.Getenv("NEO4J_AUTH"); authStr != "" {
		if authStr == "none" {
			cfg.Connection.Username = ""
			cfg.Connection.Password = ""
		} else if parts := strings.SplitN(authStr, "/", 2); len(parts) == 2 {
			cfg.Connection.Username = parts[0]
			cfg.Connection.Password = parts[1]
		} else {
			cfg.Connection.Password = authStr
		}
	}

	cfg.Connection.MaxConnections = getEnvInt("BIFROST_MAX_CONNECTIONS", cfg.Connection.MaxConnections)
	cfg.Connection.QueryTimeout = getEnvDuration("BIFROST_QUERY_TIMEOUT", cfg.Connection.QueryTimeout)

	cfg.DiskStorage.Enabled = getEnvBool("BIFROST_DISK_STORAGE_ENABLED", cfg.DiskStorage.Enabled)
	cfg.DiskStorage.DataDir = getEnv("BIFROST_DISK_STORAGE_DIR", cfg.DiskStorage.DataDir)
	cfg.DiskStorage.SyncWrites = getEnvBool("BIFROST_DISK_STORAGE_SYNC", cfg.DiskStorage.SyncWrites)

	cfg.Logging.Level = getEnv("BIFROST_LOG_LEVEL", cfg.Logging.Level)
	cfg.Logging.Format = getEnv("BIFROST_LOG_FORMAT", cfg.Logging.Format)
}

// Validate checks the configuration for startup-blocking problems.
//
// Returns nil if configuration is valid, or an error describing the problem.
func (c *Config) Validate() error {
	if c.Connection.URI == "" {
		return fmt.Errorf("connection uri is required")
	}
	u, err := url.Parse(c.Connection.URI)
	if err != nil {
		return fmt.Errorf("invalid connection uri %q: %w", c.Connection.URI, err)
	}
	switch u.Scheme {
	case "bolt", "bolt+s", "bolt+ssc", "neo4j", "neo4j+s", "neo4j+ssc":
	default:
		return fmt.Errorf("unsupported connection uri scheme %q", u.Scheme)
	}

	if c.Connection.MaxConnections <= 0 {
		return fmt.Errorf("invalid max connections: %d", c.Connection.MaxConnections)
	}

	if c.DiskStorage.Enabled && c.DiskStorage.DataDir == "" {
		return fmt.Errorf("disk storage enabled but no data dir provided")
	}

	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("invalid log level %q", c.Logging.Level)
	}

	return nil
}

// String returns a safe string representation of the Config.
//
// The password is NOT included in the output, making this safe for logging.
func (c *Config) String() string {
	return fmt.Sprintf(
		"Config{URI: %s, Database: %s, User: %s, DiskStorage: %v, LogLevel: %s}",
		c.Connection.URI,
		c.Connection.Database,
		c.Connection.Username,
		c.DiskStorage.Enabled,
		c.Logging.Level,
	)
}

// Helper functions for environment variable parsing

func getEnv(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}

func getEnvInt(key string, defaultVal int) int {
	if val := os.Getenv(key); val != "" {
		if i, err := strconv.Atoi(val); err == nil {
			return i
		}
	}
	return defaultVal
}

func getEnvBool(key string, defaultVal bool) bool {
	if val := os.Getenv(key); val != "" {
		val = strings.ToLower(val)
		return val == "true" || val == "1" || val == "yes" || val == "on"
	}
	return defaultVal
}

func getEnvDuration(key string, defaultVal time.Duration) time.Duration {
	if val := os.Getenv(key); val != "" {
		if d, err := time.ParseDuration(val); err == nil {
			return d
		}
		if secs, err := strconv.Atoi(val); err == nil {
			return time.Duration(secs) * time.Second
		}
	}
	return defaultVal
}
