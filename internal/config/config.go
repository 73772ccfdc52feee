package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// Cloud backend names accepted in cloud.backend.
const (
	BackendNone     = "none"
	BackendSQLite   = "sqlite"
	BackendPostgres = "postgres"
	BackendRedis    = "redis"
	BackendHTTP     = "http"
)

type Config struct {
	Server    ServerConfig    `yaml:"server"`
	Data      DataConfig      `yaml:"data"`
	Autosave  AutosaveConfig  `yaml:"autosave"`
	Cloud     CloudConfig     `yaml:"cloud"`
	Auth      AuthConfig      `yaml:"auth"`
	Tailscale TailscaleConfig `yaml:"tailscale"`
	Logging   LoggingConfig   `yaml:"logging"`
}

type ServerConfig struct {
	Host string `yaml:"host"`
	Port int    `yaml:"port"`
}

type DataConfig struct {
	Dir  string `yaml:"dir"`
	File string `yaml:"file"`
}

// Path returns the location of the local data file.
func (d DataConfig) Path() string {
	return filepath.Join(d.Dir, d.File)
}

// ExportPath returns where the CSV export is written.
func (d DataConfig) ExportPath() string {
	return filepath.Join(d.Dir, "workouts.csv")
}

// PreferencesPath returns the location of the preferences file.
func (d DataConfig) PreferencesPath() string {
	return filepath.Join(d.Dir, "preferences.yaml")
}

type AutosaveConfig struct {
	Debounce time.Duration `yaml:"debounce"`
}

type CloudConfig struct {
	Backend    string         `yaml:"backend"`
	Namespace  string         `yaml:"namespace"`
	Key        string         `yaml:"key"`
	SQLitePath string         `yaml:"sqlite_path"`
	Database   DatabaseConfig `yaml:"database"`
	Redis      RedisConfig    `yaml:"redis"`
	URL        string         `yaml:"url"`
	APIKey     string         `yaml:"api_key"`
}

type DatabaseConfig struct {
	Host       string `yaml:"host"`
	Port       int    `yaml:"port"`
	Name       string `yaml:"name"`
	User       string `yaml:"user"`
	Password   string `yaml:"password"`
	SSLMode    string `yaml:"sslmode"`
	Migrations string `yaml:"migrations"`
}

type RedisConfig struct {
	Addr     string `yaml:"addr"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
}

type AuthConfig struct {
	APIKey string `yaml:"api_key"`
}

type TailscaleConfig struct {
	Enabled  bool   `yaml:"enabled"`
	Hostname string `yaml:"hostname"`
	StateDir string `yaml:"state_dir"`
}

type LoggingConfig struct {
	Level string `yaml:"level"`
	File  string `yaml:"file"`
	JSON  bool   `yaml:"json"`
}

// DSN returns a PostgreSQL connection string.
func (d DatabaseConfig) DSN() string {
	sslmode := d.SSLMode
	if sslmode == "" {
		sslmode = "disable"
	}
	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=%s",
		d.User, d.Password, d.Host, d.Port, d.Name, sslmode)
}

// Default returns the configuration used for values the file leaves out.
func Default() *Config {
	return &Config{
		Server:   ServerConfig{Host: "127.0.0.1", Port: 8080},
		Data:     DataConfig{Dir: "./data", File: "workout-data.json"},
		Autosave: AutosaveConfig{Debounce: time.Second},
		Cloud: CloudConfig{
			Backend:    BackendNone,
			Namespace:  "liftlog",
			Key:        "workoutPayload",
			SQLitePath: "./data/cloud.db",
			Database:   DatabaseConfig{Port: 5432, Migrations: "migrations"},
		},
		Tailscale: TailscaleConfig{Hostname: "liftlog", StateDir: "./data/tsnet"},
		Logging:   LoggingConfig{Level: "info"},
	}
}

// Load reads config from a YAML file, then applies environment variable overrides.
// Env vars use the prefix LIFTLOG_ and underscore-separated paths:
//
//	LIFTLOG_SERVER_HOST, LIFTLOG_SERVER_PORT, LIFTLOG_DATA_DIR,
//	LIFTLOG_AUTOSAVE_DEBOUNCE, LIFTLOG_CLOUD_BACKEND, LIFTLOG_CLOUD_URL,
//	LIFTLOG_DB_HOST, LIFTLOG_DB_PORT, LIFTLOG_DB_NAME,
//	LIFTLOG_DB_USER, LIFTLOG_DB_PASSWORD, LIFTLOG_DB_SSLMODE,
//	LIFTLOG_REDIS_ADDR, LIFTLOG_REDIS_PASSWORD,
//	LIFTLOG_AUTH_API_KEY, LIFTLOG_LOG_LEVEL
func Load(path string) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}

	applyEnvOverrides(cfg)

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("config validation: %w", err)
	}

	return cfg, nil
}

func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("LIFTLOG_SERVER_HOST"); v != "" {
		cfg.Server.Host = v
	}
	if v := os.Getenv("LIFTLOG_SERVER_PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			cfg.Server.Port = port
		}
	}
	if v := os.Getenv("LIFTLOG_DATA_DIR"); v != "" {
		cfg.Data.Dir = v
	}
	if v := os.Getenv("LIFTLOG_AUTOSAVE_DEBOUNCE"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			cfg.Autosave.Debounce = d
		}
	}
	if v := os.Getenv("LIFTLOG_CLOUD_BACKEND"); v != "" {
		cfg.Cloud.Backend = v
	}
	if v := os.Getenv("LIFTLOG_CLOUD_URL"); v != "" {
		cfg.Cloud.URL = v
	}
	if v := os.Getenv("LIFTLOG_DB_HOST"); v != "" {
		cfg.Cloud.Database.Host = v
	}
	if v := os.Getenv("LIFTLOG_DB_PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			cfg.Cloud.Database.Port = port
		}
	}
	if v := os.Getenv("LIFTLOG_DB_NAME"); v != "" {
		cfg.Cloud.Database.Name = v
	}
	if v := os.Getenv("LIFTLOG_DB_USER"); v != "" {
		cfg.Cloud.Database.User = v
	}
	if v := os.Getenv("LIFTLOG_DB_PASSWORD"); v != "" {
		cfg.Cloud.Database.Password = v
	}
	if v := os.Getenv("LIFTLOG_DB_SSLMODE"); v != "" {
		cfg.Cloud.Database.SSLMode = v
	}
	if v := os.Getenv("LIFTLOG_REDIS_ADDR"); v != "" {
		cfg.Cloud.Redis.Addr = v
	}
	if v := os.Getenv("LIFTLOG_REDIS_PASSWORD"); v != "" {
		cfg.Cloud.Redis.Password = v
	}
	if v := os.Getenv("LIFTLOG_AUTH_API_KEY"); v != "" {
		cfg.Auth.APIKey = v
	}
	if v := os.Getenv("LIFTLOG_LOG_LEVEL"); v != "" {
		cfg.Logging.Level = v
	}
}

func (c *Config) validate() error {
	if c.Server.Port == 0 {
		return fmt.Errorf("server.port is required")
	}
	if c.Data.Dir == "" || c.Data.File == "" {
		return fmt.Errorf("data.dir and data.file are required")
	}
	if c.Autosave.Debounce <= 0 {
		return fmt.Errorf("autosave.debounce must be positive")
	}
	if c.Auth.APIKey == "" {
		return fmt.Errorf("auth.api_key is required")
	}
	if c.Cloud.Key == "" {
		return fmt.Errorf("cloud.key is required")
	}
	return c.Cloud.validate()
}

func (c CloudConfig) validate() error {
	switch c.Backend {
	case BackendNone:
	case BackendSQLite:
		if c.SQLitePath == "" {
			return fmt.Errorf("cloud.sqlite_path is required")
		}
	case BackendPostgres:
		if c.Database.Host == "" {
			return fmt.Errorf("cloud.database.host is required")
		}
		if c.Database.Port == 0 {
			return fmt.Errorf("cloud.database.port is required")
		}
		if c.Database.Name == "" {
			return fmt.Errorf("cloud.database.name is required")
		}
		if c.Database.User == "" {
			return fmt.Errorf("cloud.database.user is required")
		}
	case BackendRedis:
		if c.Redis.Addr == "" {
			return fmt.Errorf("cloud.redis.addr is required")
		}
	case BackendHTTP:
		if c.URL == "" {
			return fmt.Errorf("cloud.url is required")
		}
	default:
		return fmt.Errorf("unknown cloud.backend %q", c.Backend)
	}
	return nil
}
