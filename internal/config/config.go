package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config holds all configuration for the application
type Config struct {
	Server    ServerConfig    `yaml:"server"`
	Dataset   DatasetConfig   `yaml:"dataset"`
	Redis     RedisConfig     `yaml:"redis"`
	Dashboard DashboardConfig `yaml:"dashboard"`
}

// ServerConfig holds HTTP listener settings
type ServerConfig struct {
	Host string `yaml:"host"`
	Port int    `yaml:"port"`
}

// GetHost returns the server host, with container detection
func (c ServerConfig) GetHost() string {
	// In a container, listen on all interfaces
	if os.Getenv("ECS_CONTAINER_METADATA_URI") != "" || os.Getenv("AWS_EXECUTION_ENV") != "" {
		return "0.0.0.0"
	}
	if host := os.Getenv("SERVER_HOST"); host != "" {
		return host
	}
	return c.Host
}

// DatasetConfig selects and configures the table source.
// Source is one of "csv", "postgres", "s3".
type DatasetConfig struct {
	Source      string `yaml:"source"`
	Dir         string `yaml:"dir"`
	DatabaseURL string `yaml:"database_url"`
	S3Bucket    string `yaml:"s3_bucket"`
	S3Region    string `yaml:"s3_region"`
	S3Prefix    string `yaml:"s3_prefix"`
}

// RedisConfig holds the optional dashboard payload cache settings
type RedisConfig struct {
	Enabled    bool   `yaml:"enabled"`
	Addr       string `yaml:"addr"`
	Password   string `yaml:"password"`
	DB         int    `yaml:"db"`
	TTLSeconds int    `yaml:"ttl_seconds"`
}

// DashboardConfig holds dashboard rendering defaults
type DashboardConfig struct {
	DefaultYear   int `yaml:"default_year"`
	TopCategories int `yaml:"top_categories"`
}

// Load reads and parses the configuration file
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}

	// Set defaults
	if cfg.Server.Port == 0 {
		cfg.Server.Port = 8080
	}
	if cfg.Server.Host == "" {
		cfg.Server.Host = "localhost"
	}
	if cfg.Dataset.Source == "" {
		cfg.Dataset.Source = "csv"
	}
	if cfg.Dataset.Dir == "" {
		cfg.Dataset.Dir = "ecommerce_data"
	}
	if cfg.Dataset.S3Region == "" {
		cfg.Dataset.S3Region = "us-west-2"
	}
	if cfg.Redis.Addr == "" {
		cfg.Redis.Addr = "localhost:6379"
	}
	if cfg.Redis.TTLSeconds == 0 {
		cfg.Redis.TTLSeconds = 300
	}
	if cfg.Dashboard.TopCategories == 0 {
		cfg.Dashboard.TopCategories = 10
	}

	switch cfg.Dataset.Source {
	case "csv", "postgres", "s3":
	default:
		return nil, fmt.Errorf("dataset.source must be csv, postgres, or s3, got %q", cfg.Dataset.Source)
	}

	return &cfg, nil
}

// LoadFromEnv loads configuration with environment variable overrides.
// It automatically loads a .env file (if present) before reading env vars,
// so secrets can live in .env locally and in real env vars in production.
func LoadFromEnv(path string) (*Config, error) {
	// Load .env file if it exists (no error if missing)
	_ = godotenv.Load()

	cfg, err := Load(path)
	if err != nil {
		return nil, err
	}

	if v := os.Getenv("DATASET_SOURCE"); v != "" {
		switch v {
		case "csv", "postgres", "s3":
			cfg.Dataset.Source = v
		default:
			return nil, fmt.Errorf("DATASET_SOURCE must be csv, postgres, or s3, got %q", v)
		}
	}
	if v := os.Getenv("DATASET_DIR"); v != "" {
		cfg.Dataset.Dir = v
	}
	if v := os.Getenv("DATABASE_URL"); v != "" {
		cfg.Dataset.DatabaseURL = v
	}
	if v := os.Getenv("DATASET_S3_BUCKET"); v != "" {
		cfg.Dataset.S3Bucket = v
	}
	if v := os.Getenv("DATASET_S3_REGION"); v != "" {
		cfg.Dataset.S3Region = v
	}
	if v := os.Getenv("DATASET_S3_PREFIX"); v != "" {
		cfg.Dataset.S3Prefix = v
	}
	if v := os.Getenv("REDIS_ADDR"); v != "" {
		cfg.Redis.Addr = v
		cfg.Redis.Enabled = true
	}
	if v := os.Getenv("REDIS_PASSWORD"); v != "" {
		cfg.Redis.Password = v
	}
	if v := os.Getenv("SERVER_PORT"); v != "" {
		port, err := strconv.Atoi(v)
		if err != nil {
			return nil, fmt.Errorf("SERVER_PORT: %w", err)
		}
		cfg.Server.Port = port
	}

	return cfg, nil
}
