package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all application configuration
type Config struct {
	App         AppConfig
	Database    DatabaseConfig
	Redis       RedisConfig
	JWT         JWTConfig
	Log         LogConfig
	Credentials CredentialsConfig
	Sync        SyncConfig
	Amazon      AmazonConfig
	Walmart     WalmartConfig
	Telemetry   TelemetryConfig
}

// AppConfig holds application-specific settings
type AppConfig struct {
	Name string
	Env  string
	Port string
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

// RedisConfig holds Redis connection settings
type RedisConfig struct {
	Enabled  bool
	Host     string
	Port     int
	Password string
	DB       int
}

// JWTConfig holds JWT verification settings for the coarse role check
type JWTConfig struct {
	Secret string
	Issuer string
}

// LogConfig holds logging configuration
type LogConfig struct {
	Level  string // debug, info, warn, error
	Format string // json, console
	Output string // stdout, stderr, or file path
}

// CredentialSource selects the backing store credentials are resolved from
type CredentialSource string

const (
	CredentialSourceEnv      CredentialSource = "env"
	CredentialSourceDatabase CredentialSource = "database"
	CredentialSourceSSM      CredentialSource = "ssm"
)

// IsValid returns true if the source kind is supported
func (s CredentialSource) IsValid() bool {
	switch s {
	case CredentialSourceEnv, CredentialSourceDatabase, CredentialSourceSSM:
		return true
	default:
		return false
	}
}

// CredentialsConfig holds credential resolution settings
type CredentialsConfig struct {
	Source    CredentialSource // env, database, ssm
	CacheTTL  time.Duration    // resolved-set cache TTL
	SSMPrefix string           // parameter path prefix, e.g. /marketplace-sync
	AWSRegion string
}

// SyncConfig holds catalog sync settings
type SyncConfig struct {
	PageInterval   time.Duration // minimum spacing between catalog pages
	AmazonPageSize int
	WalmartLimit   int
	BatchSize      int // product store batch-upsert chunk size
}

// AmazonConfig holds Amazon SP-API endpoint settings
type AmazonConfig struct {
	AuthURL        string
	APIBaseURL     string
	TimeoutSeconds int
}

// WalmartConfig holds Walmart Marketplace API endpoint settings
type WalmartConfig struct {
	APIBaseURL     string
	TimeoutSeconds int
}

// TelemetryConfig holds OpenTelemetry configuration
type TelemetryConfig struct {
	Enabled           bool
	CollectorEndpoint string
	ServiceName       string
	Insecure          bool
}

// Load loads configuration from TOML file and environment variables.
// Priority (highest to lowest):
// 1. Environment variables with MKSYNC_ prefix (e.g. MKSYNC_DATABASE_PASSWORD)
// 2. config.toml
// 3. Built-in defaults
func Load() (*Config, error) {
	v := viper.New()

	v.SetConfigName("config")
	v.SetConfigType("toml")
	v.AddConfigPath(".")
	v.AddConfigPath("/app")

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
		// Config file not found is OK, we'll use defaults and env vars
	}

	v.SetEnvPrefix("MKSYNC")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	cfg := &Config{
		App: AppConfig{
			Name: v.GetString("app.name"),
			Env:  v.GetString("app.env"),
			Port: v.GetString("app.port"),
		},
		Database: DatabaseConfig{
			Host:            v.GetString("database.host"),
			Port:            v.GetInt("database.port"),
			User:            v.GetString("database.user"),
			Password:        v.GetString("database.password"),
			DBName:          v.GetString("database.dbname"),
			SSLMode:         v.GetString("database.sslmode"),
			MaxOpenConns:    v.GetInt("database.max_open_conns"),
			MaxIdleConns:    v.GetInt("database.max_idle_conns"),
			ConnMaxLifetime: v.GetInt("database.conn_max_lifetime"),
			ConnMaxIdleTime: v.GetInt("database.conn_max_idle_time"),
		},
		Redis: RedisConfig{
			Enabled:  v.GetBool("redis.enabled"),
			Host:     v.GetString("redis.host"),
			Port:     v.GetInt("redis.port"),
			Password: v.GetString("redis.password"),
			DB:       v.GetInt("redis.db"),
		},
		JWT: JWTConfig{
			Secret: v.GetString("jwt.secret"),
			Issuer: v.GetString("jwt.issuer"),
		},
		Log: LogConfig{
			Level:  v.GetString("log.level"),
			Format: v.GetString("log.format"),
			Output: v.GetString("log.output"),
		},
		Credentials: CredentialsConfig{
			Source:    CredentialSource(v.GetString("credentials.source")),
			CacheTTL:  v.GetDuration("credentials.cache_ttl"),
			SSMPrefix: v.GetString("credentials.ssm_prefix"),
			AWSRegion: v.GetString("credentials.aws_region"),
		},
		Sync: SyncConfig{
			PageInterval:   v.GetDuration("sync.page_interval"),
			AmazonPageSize: v.GetInt("sync.amazon_page_size"),
			WalmartLimit:   v.GetInt("sync.walmart_limit"),
			BatchSize:      v.GetInt("sync.batch_size"),
		},
		Amazon: AmazonConfig{
			AuthURL:        v.GetString("amazon.auth_url"),
			APIBaseURL:     v.GetString("amazon.api_base_url"),
			TimeoutSeconds: v.GetInt("amazon.timeout_seconds"),
		},
		Walmart: WalmartConfig{
			APIBaseURL:     v.GetString("walmart.api_base_url"),
			TimeoutSeconds: v.GetInt("walmart.timeout_seconds"),
		},
		Telemetry: TelemetryConfig{
			Enabled:           v.GetBool("telemetry.enabled"),
			CollectorEndpoint: v.GetString("telemetry.collector_endpoint"),
			ServiceName:       v.GetString("telemetry.service_name"),
			Insecure:          v.GetBool("telemetry.insecure"),
		},
	}

	applyDefaults(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// applyDefaults fills zero values with sensible defaults
func applyDefaults(cfg *Config) {
	if cfg.App.Name == "" {
		cfg.App.Name = "marketplace-sync"
	}
	if cfg.App.Env == "" {
		cfg.App.Env = "development"
	}
	if cfg.App.Port == "" {
		cfg.App.Port = "8080"
	}

	if cfg.Database.Host == "" {
		cfg.Database.Host = "localhost"
	}
	if cfg.Database.Port == 0 {
		cfg.Database.Port = 5432
	}
	if cfg.Database.User == "" {
		cfg.Database.User = "postgres"
	}
	if cfg.Database.DBName == "" {
		cfg.Database.DBName = "marketplace_sync"
	}
	if cfg.Database.SSLMode == "" {
		cfg.Database.SSLMode = "disable"
	}
	if cfg.Database.MaxOpenConns == 0 {
		cfg.Database.MaxOpenConns = 25
	}
	if cfg.Database.MaxIdleConns == 0 {
		cfg.Database.MaxIdleConns = 5
	}
	if cfg.Database.ConnMaxLifetime == 0 {
		cfg.Database.ConnMaxLifetime = 30
	}
	if cfg.Database.ConnMaxIdleTime == 0 {
		cfg.Database.ConnMaxIdleTime = 10
	}

	if cfg.Redis.Host == "" {
		cfg.Redis.Host = "localhost"
	}
	if cfg.Redis.Port == 0 {
		cfg.Redis.Port = 6379
	}

	if cfg.Log.Level == "" {
		cfg.Log.Level = "info"
	}
	if cfg.Log.Format == "" {
		if cfg.App.Env == "production" {
			cfg.Log.Format = "json"
		} else {
			cfg.Log.Format = "console"
		}
	}
	if cfg.Log.Output == "" {
		cfg.Log.Output = "stdout"
	}

	if cfg.Credentials.Source == "" {
		cfg.Credentials.Source = CredentialSourceSSM
	}
	if cfg.Credentials.CacheTTL == 0 {
		cfg.Credentials.CacheTTL = 5 * time.Minute
	}
	if cfg.Credentials.SSMPrefix == "" {
		cfg.Credentials.SSMPrefix = "/marketplace-sync"
	}
	if cfg.Credentials.AWSRegion == "" {
		cfg.Credentials.AWSRegion = "us-east-1"
	}

	if cfg.Sync.PageInterval == 0 {
		cfg.Sync.PageInterval = time.Second
	}
	if cfg.Sync.AmazonPageSize == 0 {
		cfg.Sync.AmazonPageSize = 20
	}
	if cfg.Sync.WalmartLimit == 0 {
		cfg.Sync.WalmartLimit = 50
	}
	if cfg.Sync.BatchSize == 0 {
		cfg.Sync.BatchSize = 25
	}

	if cfg.Amazon.AuthURL == "" {
		cfg.Amazon.AuthURL = "https://api.amazon.com/auth/o2/token"
	}
	if cfg.Amazon.APIBaseURL == "" {
		cfg.Amazon.APIBaseURL = "https://sellingpartnerapi-na.amazon.com"
	}
	if cfg.Amazon.TimeoutSeconds == 0 {
		cfg.Amazon.TimeoutSeconds = 30
	}

	if cfg.Walmart.APIBaseURL == "" {
		cfg.Walmart.APIBaseURL = "https://marketplace.walmartapis.com"
	}
	if cfg.Walmart.TimeoutSeconds == 0 {
		cfg.Walmart.TimeoutSeconds = 30
	}

	if cfg.Telemetry.ServiceName == "" {
		cfg.Telemetry.ServiceName = cfg.App.Name
	}
}

// Validate checks configuration consistency
func (c *Config) Validate() error {
	if !c.Credentials.Source.IsValid() {
		return fmt.Errorf("invalid credentials.source %q (want env, database or ssm)", c.Credentials.Source)
	}
	for name, raw := range map[string]string{
		"amazon.auth_url":     c.Amazon.AuthURL,
		"amazon.api_base_url": c.Amazon.APIBaseURL,
		"walmart.api_base_url": c.Walmart.APIBaseURL,
	} {
		if _, err := url.ParseRequestURI(raw); err != nil {
			return fmt.Errorf("invalid %s: %w", name, err)
		}
	}
	if c.App.Env == "production" && c.JWT.Secret == "" {
		return fmt.Errorf("jwt.secret is required in production")
	}
	return nil
}

// DSN returns the PostgreSQL connection string
func (c *DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.DBName, c.SSLMode,
	)
}

// Addr returns the Redis host:port address
func (c *RedisConfig) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}
