package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Storage drivers
const (
	StorageS3    = "s3"
	StorageMinIO = "minio"
)

// Config holds all configuration for the application
type Config struct {
	Server     ServerConfig     `yaml:"server"`
	Database   DatabaseConfig   `yaml:"database"`
	Storage    StorageConfig    `yaml:"storage"`
	JWT        JWTConfig        `yaml:"jwt"`
	Log        LogConfig        `yaml:"log"`
	Push       PushConfig       `yaml:"push"`
	Tracing    TracingConfig    `yaml:"tracing"`
	Moderation ModerationConfig `yaml:"moderation"`
}

// ServerConfig holds server configuration
type ServerConfig struct {
	Port            int           `yaml:"port"`
	Host            string        `yaml:"host"`
	ReadTimeout     time.Duration `yaml:"read_timeout"`
	WriteTimeout    time.Duration `yaml:"write_timeout"`
	IdleTimeout     time.Duration `yaml:"idle_timeout"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
}

// DatabaseConfig holds database configuration
type DatabaseConfig struct {
	Host            string        `yaml:"host"`
	Port            int           `yaml:"port"`
	User            string        `yaml:"user"`
	Password        string        `yaml:"password"`
	DBName          string        `yaml:"dbname"`
	SSLMode         string        `yaml:"sslmode"`
	MaxConns        int32         `yaml:"max_conns"`
	MinConns        int32         `yaml:"min_conns"`
	MaxConnLifetime time.Duration `yaml:"max_conn_lifetime"`
	MaxConnIdleTime time.Duration `yaml:"max_conn_idle_time"`
}

// StorageConfig holds object storage configuration
type StorageConfig struct {
	Driver       string        `yaml:"driver"`
	Region       string        `yaml:"region"`
	Bucket       string        `yaml:"bucket"`
	AccessKey    string        `yaml:"access_key"`
	SecretKey    string        `yaml:"secret_key"`
	Endpoint     string        `yaml:"endpoint"`
	UseSSL       bool          `yaml:"use_ssl"`
	UsePathStyle bool          `yaml:"use_path_style"`
	ViewURLTTL   time.Duration `yaml:"view_url_ttl"`
}

// JWTConfig holds JWT configuration
type JWTConfig struct {
	Secret string        `yaml:"secret"`
	TTL    time.Duration `yaml:"ttl"`
}

// LogConfig holds logging configuration
type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"` // console or json
}

// PushConfig holds APNs configuration
type PushConfig struct {
	Enabled    bool   `yaml:"enabled"`
	KeyPath    string `yaml:"key_path"`
	KeyID      string `yaml:"key_id"`
	TeamID     string `yaml:"team_id"`
	Topic      string `yaml:"topic"`
	Production bool   `yaml:"production"`
}

// TracingConfig holds OpenTelemetry configuration
type TracingConfig struct {
	Enabled     bool    `yaml:"enabled"`
	Protocol    string  `yaml:"protocol"` // grpc or http/protobuf
	Endpoint    string  `yaml:"endpoint"`
	Insecure    bool    `yaml:"insecure"`
	ServiceName string  `yaml:"service_name"`
	SampleRatio float64 `yaml:"sample_ratio"`
}

// ModerationConfig holds moderation and safety limits
type ModerationConfig struct {
	ModeratorEmails    []string `yaml:"moderator_emails"`
	MaxPhotosPerUser   int      `yaml:"max_photos_per_user"`
	AutoSuspendReports int      `yaml:"auto_suspend_reports"`
}

// Load reads configuration from a YAML file and applies environment
// overrides. A missing file is not an error; defaults and env still apply.
func Load(path string) (*Config, error) {
	var cfg Config

	data, err := os.ReadFile(path)
	switch {
	case errors.Is(err, fs.ErrNotExist):
	case err != nil:
		return nil, fmt.Errorf("failed to read config file: %w", err)
	default:
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config file: %w", err)
		}
	}

	cfg.applyEnv()
	cfg.applyDefaults()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) applyEnv() {
	c.Server.Host = getEnv("PULSE_SERVER_HOST", c.Server.Host)
	c.Server.Port = getEnvInt("PULSE_SERVER_PORT", c.Server.Port)

	c.Database.Host = getEnv("PULSE_DB_HOST", c.Database.Host)
	c.Database.Port = getEnvInt("PULSE_DB_PORT", c.Database.Port)
	c.Database.User = getEnv("PULSE_DB_USER", c.Database.User)
	c.Database.Password = getEnv("PULSE_DB_PASSWORD", c.Database.Password)
	c.Database.DBName = getEnv("PULSE_DB_NAME", c.Database.DBName)
	c.Database.SSLMode = getEnv("PULSE_DB_SSLMODE", c.Database.SSLMode)

	c.Storage.Driver = getEnv("PULSE_STORAGE_DRIVER", c.Storage.Driver)
	c.Storage.Bucket = getEnv("PULSE_S3_BUCKET", c.Storage.Bucket)
	c.Storage.Endpoint = getEnv("PULSE_STORAGE_ENDPOINT", c.Storage.Endpoint)
	c.Storage.AccessKey = getEnv("PULSE_STORAGE_ACCESS_KEY", c.Storage.AccessKey)
	c.Storage.SecretKey = getEnv("PULSE_STORAGE_SECRET_KEY", c.Storage.SecretKey)
	c.Storage.UseSSL = getEnvBool("PULSE_STORAGE_USE_SSL", c.Storage.UseSSL)

	c.JWT.Secret = getEnv("PULSE_JWT_SECRET", c.JWT.Secret)

	c.Log.Level = getEnv("PULSE_LOG_LEVEL", c.Log.Level)
	c.Log.Format = getEnv("PULSE_LOG_FORMAT", c.Log.Format)

	c.Push.Enabled = getEnvBool("PULSE_PUSH_ENABLED", c.Push.Enabled)
	c.Tracing.Enabled = getEnvBool("PULSE_TRACING_ENABLED", c.Tracing.Enabled)
	c.Tracing.Endpoint = getEnv("PULSE_TRACING_ENDPOINT", c.Tracing.Endpoint)
}

func (c *Config) applyDefaults() {
	if c.Server.Port == 0 {
		c.Server.Port = 8080
	}
	if c.Server.ReadTimeout == 0 {
		c.Server.ReadTimeout = 15 * time.Second
	}
	if c.Server.WriteTimeout == 0 {
		c.Server.WriteTimeout = 15 * time.Second
	}
	if c.Server.IdleTimeout == 0 {
		c.Server.IdleTimeout = 60 * time.Second
	}
	if c.Server.ShutdownTimeout == 0 {
		c.Server.ShutdownTimeout = 15 * time.Second
	}

	if c.Database.Port == 0 {
		c.Database.Port = 5432
	}
	if c.Database.SSLMode == "" {
		c.Database.SSLMode = "disable"
	}
	if c.Database.MaxConns == 0 {
		c.Database.MaxConns = 10
	}
	if c.Database.MaxConnLifetime == 0 {
		c.Database.MaxConnLifetime = time.Hour
	}
	if c.Database.MaxConnIdleTime == 0 {
		c.Database.MaxConnIdleTime = 30 * time.Minute
	}

	if c.Storage.Driver == "" {
		c.Storage.Driver = StorageS3
	}
	if c.Storage.Region == "" {
		c.Storage.Region = "us-east-1"
	}
	if c.Storage.ViewURLTTL == 0 {
		c.Storage.ViewURLTTL = time.Hour
	}

	if c.JWT.TTL == 0 {
		c.JWT.TTL = 72 * time.Hour
	}

	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
	if c.Log.Format == "" {
		c.Log.Format = "console"
	}

	if c.Tracing.Protocol == "" {
		c.Tracing.Protocol = "grpc"
	}
	if c.Tracing.ServiceName == "" {
		c.Tracing.ServiceName = "pulse-backend"
	}
	if c.Tracing.SampleRatio == 0 {
		c.Tracing.SampleRatio = 1.0
	}

	if c.Moderation.MaxPhotosPerUser == 0 {
		c.Moderation.MaxPhotosPerUser = 6
	}
	if c.Moderation.AutoSuspendReports == 0 {
		c.Moderation.AutoSuspendReports = 5
	}
	for i, email := range c.Moderation.ModeratorEmails {
		c.Moderation.ModeratorEmails[i] = strings.ToLower(strings.TrimSpace(email))
	}
}

// Validate checks that required settings are present
func (c *Config) Validate() error {
	if c.JWT.Secret == "" {
		return fmt.Errorf("jwt secret is required")
	}
	if c.Server.Port <= 0 {
		return fmt.Errorf("invalid server port %d", c.Server.Port)
	}
	switch c.Storage.Driver {
	case StorageS3, StorageMinIO:
	default:
		return fmt.Errorf("unknown storage driver %q", c.Storage.Driver)
	}
	if c.Push.Enabled && (c.Push.KeyPath == "" || c.Push.KeyID == "" || c.Push.TeamID == "") {
		return fmt.Errorf("push is enabled but key_path, key_id or team_id is missing")
	}
	return nil
}

// IsModerator reports whether the email is configured as a moderator
func (c *ModerationConfig) IsModerator(email string) bool {
	email = strings.ToLower(email)
	for _, e := range c.ModeratorEmails {
		if e == email {
			return true
		}
	}
	return false
}

// DSN returns the PostgreSQL connection string
func (c *DatabaseConfig) DSN() string {
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.DBName, c.SSLMode)
}

// Addr returns the listen address
func (c *ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getEnvBool(key string, def bool) bool {
	if v := os.Getenv(key); v != "" {
		b, err := strconv.ParseBool(v)
		if err == nil {
			return b
		}
	}
	return def
}

func getEnvInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		i, err := strconv.Atoi(v)
		if err == nil {
			return i
		}
	}
	return def
}
