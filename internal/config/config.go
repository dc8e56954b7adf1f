package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/sgsgita/moderation-backend/pkg/logger"
	"gopkg.in/yaml.v3"
)

// Config holds the full service configuration, loaded from
// configs/config.{APP_ENV}.yaml with environment-variable overrides
// for secrets.
type Config struct {
	Server        ServerConfig        `yaml:"server"`
	Database      DatabaseConfig      `yaml:"database"`
	Redis         RedisConfig         `yaml:"redis"`
	JWT           JWTConfig           `yaml:"jwt"`
	CORS          CORSConfig          `yaml:"cors"`
	Queue         QueueConfig         `yaml:"queue"`
	RateLimit     RateLimitConfig     `yaml:"rate_limit"`
	Elasticsearch ElasticsearchConfig `yaml:"elasticsearch"`
	Storage       StorageConfig       `yaml:"storage"`
	Analytics     AnalyticsConfig     `yaml:"analytics"`
}

// ServerConfig holds HTTP server settings
type ServerConfig struct {
	Port int    `yaml:"port"`
	Env  string `yaml:"env"`
}

// DatabaseConfig holds MySQL connection settings
type DatabaseConfig struct {
	Host            string `yaml:"host"`
	Port            int    `yaml:"port"`
	User            string `yaml:"user"`
	Password        string `yaml:"password"`
	Name            string `yaml:"name"`
	MaxIdleConns    int    `yaml:"max_idle_conns"`
	MaxOpenConns    int    `yaml:"max_open_conns"`
	ConnMaxLifetime int    `yaml:"conn_max_lifetime"`
}

// RedisConfig holds Redis connection settings
type RedisConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
	PoolSize int    `yaml:"pool_size"`
}

// JWTConfig holds token signing settings (durations in seconds)
type JWTConfig struct {
	Secret    string `yaml:"secret"`
	ExpiresIn int    `yaml:"expires_in"`
	RefreshIn int    `yaml:"refresh_in"`
}

// CORSConfig holds allowed origins (comma-separated)
type CORSConfig struct {
	AllowOrigins string `yaml:"allow_origins"`
}

// QueueConfig holds moderation queue tuning knobs
type QueueConfig struct {
	DefaultPerPage int `yaml:"default_per_page"`
	MaxPerPage     int `yaml:"max_per_page"`
	ExportLimit    int `yaml:"export_limit"`
	// IngestAPIKey authenticates the content service on the enqueue endpoint
	IngestAPIKey string `yaml:"ingest_api_key"`
}

// RateLimitConfig holds request throttling settings
type RateLimitConfig struct {
	RequestsPerMinute int `yaml:"requests_per_minute"`
}

// ElasticsearchConfig holds optional search-index settings
type ElasticsearchConfig struct {
	Enabled   bool     `yaml:"enabled"`
	Addresses []string `yaml:"addresses"`
	Username  string   `yaml:"username"`
	Password  string   `yaml:"password"`
}

// StorageConfig holds optional S3-compatible storage settings for export archives
type StorageConfig struct {
	Enabled         bool   `yaml:"enabled"`
	Endpoint        string `yaml:"endpoint"`
	Region          string `yaml:"region"`
	AccessKeyID     string `yaml:"access_key_id"`
	SecretAccessKey string `yaml:"secret_access_key"`
	Bucket          string `yaml:"bucket"`
	CDNURL          string `yaml:"cdn_url"`
	BasePath        string `yaml:"base_path"`
	ForcePathStyle  bool   `yaml:"force_path_style"`
}

// AnalyticsConfig holds optional ClickHouse settings for the decision event sink
type AnalyticsConfig struct {
	Enabled  bool   `yaml:"enabled"`
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	Database string `yaml:"database"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
}

// Load reads the YAML config at path and applies environment overrides.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config %s: %w", path, err)
	}

	cfg := &Config{}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}

	cfg.applyEnvOverrides()
	cfg.applyDefaults()

	if cfg.JWT.Secret == "" {
		return nil, fmt.Errorf("config: jwt secret is required (set JWT_SECRET)")
	}

	return cfg, nil
}

// applyEnvOverrides lets deployment environments override secrets and
// endpoints without editing the YAML files.
func (c *Config) applyEnvOverrides() {
	overrideString(&c.Database.Host, "DB_HOST")
	overrideInt(&c.Database.Port, "DB_PORT")
	overrideString(&c.Database.User, "DB_USER")
	overrideString(&c.Database.Password, "DB_PASSWORD")
	overrideString(&c.Database.Name, "DB_NAME")
	overrideString(&c.Redis.Host, "REDIS_HOST")
	overrideInt(&c.Redis.Port, "REDIS_PORT")
	overrideString(&c.Redis.Password, "REDIS_PASSWORD")
	overrideString(&c.JWT.Secret, "JWT_SECRET")
	overrideString(&c.Queue.IngestAPIKey, "INGEST_API_KEY")
	overrideString(&c.Storage.AccessKeyID, "S3_ACCESS_KEY_ID")
	overrideString(&c.Storage.SecretAccessKey, "S3_SECRET_ACCESS_KEY")
	overrideString(&c.Elasticsearch.Password, "ES_PASSWORD")
	overrideString(&c.Analytics.Password, "CLICKHOUSE_PASSWORD")
	overrideInt(&c.Server.Port, "PORT")
}

func (c *Config) applyDefaults() {
	if c.Server.Port == 0 {
		c.Server.Port = 8080
	}
	if c.Database.MaxIdleConns == 0 {
		c.Database.MaxIdleConns = 10
	}
	if c.Database.MaxOpenConns == 0 {
		c.Database.MaxOpenConns = 100
	}
	if c.Database.ConnMaxLifetime == 0 {
		c.Database.ConnMaxLifetime = 300
	}
	if c.Redis.PoolSize == 0 {
		c.Redis.PoolSize = 10
	}
	if c.JWT.ExpiresIn == 0 {
		c.JWT.ExpiresIn = 3600
	}
	if c.JWT.RefreshIn == 0 {
		c.JWT.RefreshIn = 604800
	}
	if c.Queue.DefaultPerPage == 0 {
		c.Queue.DefaultPerPage = 20
	}
	if c.Queue.MaxPerPage == 0 {
		c.Queue.MaxPerPage = 100
	}
	if c.Queue.ExportLimit == 0 {
		c.Queue.ExportLimit = 10000
	}
	if c.RateLimit.RequestsPerMinute == 0 {
		c.RateLimit.RequestsPerMinute = 120
	}
}

func overrideString(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}

func overrideInt(dst *int, key string) {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			*dst = n
		}
	}
}

// GetDSN builds the MySQL DSN
func (d *DatabaseConfig) GetDSN() string {
	return fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?charset=utf8mb4&parseTime=True&loc=Local",
		d.User, d.Password, d.Host, d.Port, d.Name)
}

// IsDevelopment reports whether the service runs in a development environment
func (c *Config) IsDevelopment() bool {
	return c.Server.Env == "" || c.Server.Env == "development" || c.Server.Env == "dev" || c.Server.Env == "local"
}

// LogResolved logs the effective configuration with secrets masked.
func LogResolved(c *Config) {
	logger.Info("config: server port=%d env=%s", c.Server.Port, c.Server.Env)
	logger.Info("config: database %s@%s:%d/%s (pool idle=%d open=%d)",
		c.Database.User, c.Database.Host, c.Database.Port, c.Database.Name,
		c.Database.MaxIdleConns, c.Database.MaxOpenConns)
	logger.Info("config: redis %s:%d db=%d", c.Redis.Host, c.Redis.Port, c.Redis.DB)
	logger.Info("config: queue per_page default=%d max=%d export_limit=%d",
		c.Queue.DefaultPerPage, c.Queue.MaxPerPage, c.Queue.ExportLimit)
	logger.Info("config: elasticsearch enabled=%v storage enabled=%v analytics enabled=%v",
		c.Elasticsearch.Enabled, c.Storage.Enabled, c.Analytics.Enabled)
}
