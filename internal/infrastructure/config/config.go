package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/pms/backend/internal/domain/tenant"
	"github.com/spf13/viper"
)

// Config holds all application configuration
type Config struct {
	App       AppConfig
	Database  DatabaseConfig
	Directory DirectoryConfig
	Sync      SyncConfig
	Redis     RedisConfig
	Log       LogConfig
	HTTP      HTTPConfig
}

// AppConfig holds application-specific settings
type AppConfig struct {
	Name string
	Env  string
	Port string
}

// DatabaseConfig holds the process-wide credentials used to open tenant
// databases. Host, User and Secret are the three settings the connection
// builder requires; the database name itself comes from the tenant directory.
type DatabaseConfig struct {
	Host    string
	Port    int
	User    string
	Secret  string
	SSLMode string
}

// DirectoryConfig holds the connection settings for the central tenant
// directory database, the only resource shared across the whole process.
type DirectoryConfig struct {
	DSN string
}

// SyncConfig holds process defaults for the partner synchronization queue.
// Tenants may override the first six via the directory.
type SyncConfig struct {
	EnableQueueMode        bool
	EnableBackgroundWorker bool
	WorkerIntervalSeconds  int
	WorkerBatchSize        int
	UseMiddleware          bool
	DefaultPartner         string
	MaxAttempts            int
	DedupEnabled           bool
	DedupTTL               time.Duration
}

// RedisConfig holds Redis connection settings for the dedup guard
type RedisConfig struct {
	Host     string
	Port     int
	Password string
	DB       int
}

// LogConfig holds logging configuration
type LogConfig struct {
	Level  string // debug, info, warn, error
	Format string // json, console
	Output string // stdout, stderr, or file path
}

// HTTPConfig holds HTTP server configuration
type HTTPConfig struct {
	ReadTimeout    time.Duration
	WriteTimeout   time.Duration
	IdleTimeout    time.Duration
	MaxHeaderBytes int
}

// Load loads configuration from TOML file and environment variables
// Priority (highest to lowest):
// 1. Environment variables with PMS_ prefix (e.g., PMS_DATABASE_SECRET)
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

	v.SetEnvPrefix("PMS")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	cfg := &Config{
		App: AppConfig{
			Name: v.GetString("app.name"),
			Env:  v.GetString("app.env"),
			Port: v.GetString("app.port"),
		},
		Database: DatabaseConfig{
			Host:    v.GetString("database.host"),
			Port:    v.GetInt("database.port"),
			User:    v.GetString("database.user"),
			Secret:  v.GetString("database.secret"),
			SSLMode: v.GetString("database.sslmode"),
		},
		Directory: DirectoryConfig{
			DSN: v.GetString("directory.dsn"),
		},
		Sync: SyncConfig{
			EnableQueueMode:        v.GetBool("sync.enable_queue_mode"),
			EnableBackgroundWorker: v.GetBool("sync.enable_background_worker"),
			WorkerIntervalSeconds:  v.GetInt("sync.worker_interval_seconds"),
			WorkerBatchSize:        v.GetInt("sync.worker_batch_size"),
			UseMiddleware:          v.GetBool("sync.use_middleware"),
			DefaultPartner:         v.GetString("sync.default_partner"),
			MaxAttempts:            v.GetInt("sync.max_attempts"),
			DedupEnabled:           v.GetBool("sync.dedup_enabled"),
			DedupTTL:               v.GetDuration("sync.dedup_ttl"),
		},
		Redis: RedisConfig{
			Host:     v.GetString("redis.host"),
			Port:     v.GetInt("redis.port"),
			Password: v.GetString("redis.password"),
			DB:       v.GetInt("redis.db"),
		},
		Log: LogConfig{
			Level:  v.GetString("log.level"),
			Format: v.GetString("log.format"),
			Output: v.GetString("log.output"),
		},
		HTTP: HTTPConfig{
			ReadTimeout:    v.GetDuration("http.read_timeout"),
			WriteTimeout:   v.GetDuration("http.write_timeout"),
			IdleTimeout:    v.GetDuration("http.idle_timeout"),
			MaxHeaderBytes: v.GetInt("http.max_header_bytes"),
		},
	}

	applyDefaults(cfg)

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// applyDefaults sets default values for any empty config fields
func applyDefaults(cfg *Config) {
	if cfg.App.Name == "" {
		cfg.App.Name = "pms-backend"
	}
	if cfg.App.Env == "" {
		cfg.App.Env = "development"
	}
	if cfg.App.Port == "" {
		cfg.App.Port = "8080"
	}
	if cfg.Database.Port == 0 {
		cfg.Database.Port = 5432
	}
	if cfg.Database.SSLMode == "" {
		cfg.Database.SSLMode = "disable"
	}
	if cfg.Sync.WorkerIntervalSeconds == 0 {
		cfg.Sync.WorkerIntervalSeconds = 180
	}
	if cfg.Sync.WorkerBatchSize == 0 {
		cfg.Sync.WorkerBatchSize = 50
	}
	if cfg.Sync.MaxAttempts == 0 {
		cfg.Sync.MaxAttempts = 5
	}
	if cfg.Sync.DedupTTL == 0 {
		cfg.Sync.DedupTTL = 24 * time.Hour
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
		cfg.Log.Format = "console"
	}
	if cfg.Log.Output == "" {
		cfg.Log.Output = "stdout"
	}
	if cfg.HTTP.ReadTimeout == 0 {
		cfg.HTTP.ReadTimeout = 15 * time.Second
	}
	if cfg.HTTP.WriteTimeout == 0 {
		cfg.HTTP.WriteTimeout = 15 * time.Second
	}
	if cfg.HTTP.IdleTimeout == 0 {
		cfg.HTTP.IdleTimeout = 60 * time.Second
	}
	if cfg.HTTP.MaxHeaderBytes == 0 {
		cfg.HTTP.MaxHeaderBytes = 1 << 20 // 1MB
	}
}

// validate performs validation on the configuration
func (c *Config) validate() error {
	if c.Sync.WorkerIntervalSeconds < int(tenant.MinWorkerInterval/time.Second) {
		return fmt.Errorf("sync.worker_interval_seconds must be at least %d", int(tenant.MinWorkerInterval/time.Second))
	}
	if c.Sync.WorkerBatchSize < tenant.MinWorkerBatchSize {
		return fmt.Errorf("sync.worker_batch_size must be at least %d", tenant.MinWorkerBatchSize)
	}
	if c.Sync.MaxAttempts < 1 {
		return fmt.Errorf("sync.max_attempts must be at least 1")
	}

	if c.App.Env == "production" {
		if c.Database.Secret == "" {
			return fmt.Errorf("database.secret is required in production")
		}
		if c.Database.SSLMode == "disable" {
			return fmt.Errorf("database.sslmode cannot be 'disable' in production")
		}
	}

	return nil
}

// QueueDefaults returns the process-wide default queue settings that tenant
// overrides are merged over.
func (c *SyncConfig) QueueDefaults() tenant.QueueSettings {
	return tenant.QueueSettings{
		EnableQueueMode:        c.EnableQueueMode,
		EnableBackgroundWorker: c.EnableBackgroundWorker,
		WorkerIntervalSeconds:  c.WorkerIntervalSeconds,
		WorkerBatchSize:        c.WorkerBatchSize,
		UseMiddleware:          c.UseMiddleware,
		DefaultPartner:         c.DefaultPartner,
	}
}

// TenantDSN returns the connection string for one tenant database built from
// the process credentials and the tenant's database target.
func (d *DatabaseConfig) TenantDSN(database string) string {
	u := url.URL{
		Scheme: "postgres",
		User:   url.UserPassword(d.User, d.Secret),
		Host:   fmt.Sprintf("%s:%d", d.Host, d.Port),
		Path:   database,
	}
	q := u.Query()
	q.Set("sslmode", d.SSLMode)
	u.RawQuery = q.Encode()
	return u.String()
}

// RedisAddr returns the host:port address for the Redis client
func (r *RedisConfig) RedisAddr() string {
	return fmt.Sprintf("%s:%d", r.Host, r.Port)
}
