// Package config loads service configuration from config.toml and
// DEATL_-prefixed environment variables.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all application configuration
type Config struct {
	App        AppConfig
	Log        LogConfig
	Database   DatabaseConfig
	Redis      RedisConfig
	JWT        JWTConfig
	CardSource CardSourceConfig
	Storage    StorageConfig
	Reconcile  ReconcileConfig
	Telemetry  TelemetryConfig
}

// AppConfig holds application-specific settings
type AppConfig struct {
	Name string
	Env  string // development, production
	Port string
}

// LogConfig holds logging configuration
type LogConfig struct {
	Level  string // debug, info, warn, error
	Format string // json, console
	Output string // stdout, stderr, or file path
}

// DatabaseConfig holds database connection settings
type DatabaseConfig struct {
	Host            string
	Port            int
	User            string
	Password        string
	DBName          string
	SSLMode         string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime int // in minutes
	ConnMaxIdleTime int // in minutes
}

// DSN returns the PostgreSQL connection string
func (c *DatabaseConfig) DSN() string {
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.DBName, c.SSLMode)
}

// RedisConfig holds the sync-guard store settings
type RedisConfig struct {
	Host     string
	Port     int
	Password string
	DB       int
}

// Addr returns the host:port address for the Redis client
func (c *RedisConfig) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// JWTConfig holds bearer-token verification settings
type JWTConfig struct {
	Secret  string
	Issuer  string
	Enabled bool // false disables auth entirely (development only)
}

// CardSourceConfig holds the external task-board API settings
type CardSourceConfig struct {
	BaseURL string
	APIKey  string
	Token   string
	Timeout time.Duration
}

// StorageConfig holds the S3-compatible object store used for files too
// large for a direct board upload
type StorageConfig struct {
	Endpoint      string
	Region        string
	Bucket        string
	AccessKey     string
	SecretKey     string
	UsePathStyle  bool
	PublicBaseURL string
}

// ReconcileConfig tunes board reconciliation
type ReconcileConfig struct {
	GuardTTL           time.Duration
	CategoryKeyword    string
	CommentsCategoryID string
	ActivityCategoryID string
}

// TelemetryConfig holds tracing settings
type TelemetryConfig struct {
	Enabled           bool
	CollectorEndpoint string
	SamplingRatio     float64
	Insecure          bool
}

// Load reads config.toml (working directory or ./config) and applies
// DEATL_-prefixed environment overrides, e.g. DEATL_DATABASE_HOST.
func Load() (*Config, error) {
	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("toml")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")

	v.SetEnvPrefix("DEATL")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	applyDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		// No file is fine: defaults plus environment carry development.
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func applyDefaults(v *viper.Viper) {
	v.SetDefault("app.name", "deatl-backend")
	v.SetDefault("app.env", "development")
	v.SetDefault("app.port", "8080")

	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "console")
	v.SetDefault("log.output", "stdout")

	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", 5432)
	v.SetDefault("database.user", "deatl")
	v.SetDefault("database.password", "")
	v.SetDefault("database.dbname", "deatl")
	v.SetDefault("database.sslmode", "disable")
	v.SetDefault("database.maxopenconns", 25)
	v.SetDefault("database.maxidleconns", 5)
	v.SetDefault("database.connmaxlifetime", 30)
	v.SetDefault("database.connmaxidletime", 10)

	v.SetDefault("redis.host", "localhost")
	v.SetDefault("redis.port", 6379)
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)

	v.SetDefault("jwt.enabled", true)
	v.SetDefault("jwt.secret", "")
	v.SetDefault("jwt.issuer", "deatl-backend")

	v.SetDefault("cardsource.baseurl", "https://api.trello.com/1")
	v.SetDefault("cardsource.apikey", "")
	v.SetDefault("cardsource.token", "")
	v.SetDefault("cardsource.timeout", 15*time.Second)

	v.SetDefault("storage.endpoint", "")
	v.SetDefault("storage.region", "us-east-1")
	v.SetDefault("storage.bucket", "deatl-files")
	v.SetDefault("storage.accesskey", "")
	v.SetDefault("storage.secretkey", "")
	v.SetDefault("storage.usepathstyle", true)
	v.SetDefault("storage.publicbaseurl", "")

	v.SetDefault("reconcile.guardttl", 5*time.Minute)
	v.SetDefault("reconcile.categorykeyword", "trello")
	v.SetDefault("reconcile.commentscategoryid", "cat-comments")
	v.SetDefault("reconcile.activitycategoryid", "cat-activity")

	v.SetDefault("telemetry.enabled", false)
	v.SetDefault("telemetry.collectorendpoint", "localhost:4317")
	v.SetDefault("telemetry.samplingratio", 1.0)
	v.SetDefault("telemetry.insecure", true)
}

// IsProduction reports whether the service runs with the production profile
func (c *Config) IsProduction() bool {
	return c.App.Env == "production"
}

// validate rejects configurations that must never reach production
func (c *Config) validate() error {
	if !c.IsProduction() {
		return nil
	}
	if !c.JWT.Enabled {
		return errors.New("config: jwt must be enabled in production")
	}
	if c.JWT.Secret == "" {
		return errors.New("config: jwt.secret is required in production")
	}
	if c.Database.Password == "" {
		return errors.New("config: database.password is required in production")
	}
	if c.CardSource.APIKey == "" || c.CardSource.Token == "" {
		return errors.New("config: cardsource credentials are required in production")
	}
	return nil
}
