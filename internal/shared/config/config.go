package config

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// defaultJWTSecret is only acceptable outside release mode
const defaultJWTSecret = "your-super-secret-jwt-key"

// Config holds all configuration for our application
type Config struct {
	// Server configuration
	Port           string
	GinMode        string
	APIVersion     string
	APIPrefix      string
	ReadTimeout    time.Duration
	WriteTimeout   time.Duration
	IdleTimeout    time.Duration
	MaxHeaderBytes int

	Database  DatabaseConfig
	Redis     RedisConfig
	JWT       JWTConfig
	RateLimit RateLimitConfig

	// LOG_LEVEL is read directly by pkg/logger; kept here for /status and docs
	LogLevel string

	// External services
	Payment PaymentConfig
	Kafka   KafkaConfig
	Email   EmailConfig

	Jobs JobConfig
}

type DatabaseConfig struct {
	Host     string
	Port     string
	Name     string
	User     string
	Password string
	SSLMode  string
	DSN      string

	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
}

type RedisConfig struct {
	Host     string
	Port     string
	Password string
	DB       int
	Addr     string
	PoolSize int

	CacheTTL       time.Duration
	IdempotencyTTL time.Duration
}

// JWTConfig holds token signing settings. Expiries are read as seconds.
type JWTConfig struct {
	Secret           string
	JWTExpiresIn     time.Duration
	RefreshExpiresIn time.Duration
}

// RateLimitConfig holds the per-class request budgets for one window
type RateLimitConfig struct {
	Enabled                 bool          `json:"enabled"`
	WindowDuration          time.Duration `json:"window_duration"`
	DefaultRequests         int           `json:"default_requests"`
	PublicRequests          int           `json:"public_requests"`
	AuthRequests            int           `json:"auth_requests"`
	BookingRequests         int           `json:"booking_requests"`
	BookingCriticalRequests int           `json:"booking_critical_requests"`
	AdminRequests           int           `json:"admin_requests"`
	UserRequests            int           `json:"user_requests"`
	HealthRequests          int           `json:"health_requests"`
	WhitelistedIPs          []string      `json:"whitelisted_ips"`
}

// PaymentConfig holds payment gateway credentials
type PaymentConfig struct {
	KeyID     string
	KeySecret string
	BaseURL   string
	Currency  string
	Timeout   time.Duration
}

// KafkaConfig holds booking event streaming configuration
type KafkaConfig struct {
	Enabled       bool
	Brokers       []string
	BookingTopic  string
	ConsumerGroup string
}

type EmailConfig struct {
	SMTPHost     string
	SMTPPort     int
	SMTPUsername string
	SMTPPassword string
	FromEmail    string
	FromName     string
}

// JobConfig holds background job settings
type JobConfig struct {
	CompletionInterval time.Duration
	CompletionBatch    int
}

// Load reads configuration from the environment. Unset or unparseable
// variables fall back to development defaults.
func Load() *Config {
	cfg := &Config{
		Port:           envString("PORT", "8080"),
		GinMode:        envString("GIN_MODE", "debug"),
		APIVersion:     envString("API_VERSION", "v1"),
		APIPrefix:      envString("API_PREFIX", "/api"),
		ReadTimeout:    envDuration("READ_TIMEOUT", 15*time.Second),
		WriteTimeout:   envDuration("WRITE_TIMEOUT", 15*time.Second),
		IdleTimeout:    envDuration("IDLE_TIMEOUT", 60*time.Second),
		MaxHeaderBytes: envInt("MAX_HEADER_BYTES", 1<<20),

		Database: DatabaseConfig{
			Host:     envString("DB_HOST", "localhost"),
			Port:     envString("DB_PORT", "5432"),
			Name:     envString("DB_NAME", "wanderly_db"),
			User:     envString("DB_USER", "wanderly_user"),
			Password: envString("DB_PASSWORD", "wanderly_password"),
			SSLMode:  envString("DB_SSLMODE", "disable"),

			MaxOpenConns:    envInt("DB_MAX_OPEN_CONNS", 50),
			MaxIdleConns:    envInt("DB_MAX_IDLE_CONNS", 10),
			ConnMaxLifetime: envDuration("DB_CONN_MAX_LIFETIME", time.Hour),
		},

		Redis: RedisConfig{
			Host:     envString("REDIS_HOST", "localhost"),
			Port:     envString("REDIS_PORT", "6379"),
			Password: envString("REDIS_PASSWORD", ""),
			DB:       envInt("REDIS_DB", 0),
			PoolSize: envInt("REDIS_POOL_SIZE", 10),

			CacheTTL:       envDuration("REDIS_CACHE_TTL", 10*time.Minute),
			IdempotencyTTL: envDuration("REDIS_IDEMPOTENCY_TTL", 24*time.Hour),
		},

		JWT: JWTConfig{
			Secret:           envString("JWT_SECRET", defaultJWTSecret),
			JWTExpiresIn:     envSeconds("JWT_EXPIRES_IN", 15*time.Minute),
			RefreshExpiresIn: envSeconds("JWT_REFRESH_EXPIRES_IN", 24*time.Hour),
		},

		RateLimit: RateLimitConfig{
			Enabled:                 envBool("RATE_LIMIT_ENABLED", true),
			WindowDuration:          envDuration("RATE_LIMIT_WINDOW_DURATION", time.Minute),
			DefaultRequests:         envInt("RATE_LIMIT_DEFAULT_REQUESTS", 60),
			PublicRequests:          envInt("RATE_LIMIT_PUBLIC_REQUESTS", 100),
			AuthRequests:            envInt("RATE_LIMIT_AUTH_REQUESTS", 10),
			BookingRequests:         envInt("RATE_LIMIT_BOOKING_REQUESTS", 30),
			BookingCriticalRequests: envInt("RATE_LIMIT_BOOKING_CRITICAL_REQUESTS", 10),
			AdminRequests:           envInt("RATE_LIMIT_ADMIN_REQUESTS", 200),
			UserRequests:            envInt("RATE_LIMIT_USER_REQUESTS", 60),
			HealthRequests:          envInt("RATE_LIMIT_HEALTH_REQUESTS", 300),
			WhitelistedIPs:          envList("RATE_LIMIT_WHITELISTED_IPS", []string{}),
		},

		LogLevel: envString("LOG_LEVEL", "debug"),

		Payment: PaymentConfig{
			KeyID:     envString("PAYMENT_KEY_ID", ""),
			KeySecret: envString("PAYMENT_KEY_SECRET", ""),
			BaseURL:   envString("PAYMENT_BASE_URL", "https://api.razorpay.com"),
			Currency:  envString("PAYMENT_CURRENCY", "INR"),
			Timeout:   envDuration("PAYMENT_TIMEOUT", 10*time.Second),
		},

		Kafka: KafkaConfig{
			Enabled:       envBool("KAFKA_ENABLED", false),
			Brokers:       envList("KAFKA_BROKERS", []string{"localhost:9092"}),
			BookingTopic:  envString("KAFKA_BOOKING_TOPIC", "booking-events"),
			ConsumerGroup: envString("KAFKA_CONSUMER_GROUP", "wanderly-booking-notifiers"),
		},

		Email: EmailConfig{
			SMTPHost:     envString("SMTP_HOST", ""),
			SMTPPort:     envInt("SMTP_PORT", 587),
			SMTPUsername: envString("SMTP_USERNAME", ""),
			SMTPPassword: envString("SMTP_PASSWORD", ""),
			FromEmail:    envString("FROM_EMAIL", "noreply@wanderly.app"),
			FromName:     envString("SMTP_FROM_NAME", "Wanderly"),
		},

		Jobs: JobConfig{
			CompletionInterval: envDuration("BOOKING_COMPLETION_INTERVAL", 15*time.Minute),
			CompletionBatch:    envInt("BOOKING_COMPLETION_BATCH", 500),
		},
	}

	cfg.Database.DSN = cfg.Database.dsn()
	cfg.Redis.Addr = cfg.Redis.Host + ":" + cfg.Redis.Port

	return cfg
}

// Validate reports settings that must be set before serving real traffic.
// Development mode only checks values that would break the process.
func (c *Config) Validate() error {
	var errs []error

	if c.JWT.JWTExpiresIn <= 0 || c.JWT.RefreshExpiresIn <= 0 {
		errs = append(errs, errors.New("JWT expiries must be positive"))
	}
	if c.Kafka.Enabled && len(c.Kafka.Brokers) == 0 {
		errs = append(errs, errors.New("KAFKA_BROKERS is required when KAFKA_ENABLED is set"))
	}

	if c.IsProduction() {
		if c.JWT.Secret == defaultJWTSecret || len(c.JWT.Secret) < 32 {
			errs = append(errs, errors.New("JWT_SECRET must be set to at least 32 characters"))
		}
		if c.Payment.KeyID == "" || c.Payment.KeySecret == "" {
			errs = append(errs, errors.New("PAYMENT_KEY_ID and PAYMENT_KEY_SECRET are required"))
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("invalid configuration: %w", errors.Join(errs...))
	}
	return nil
}

func (d DatabaseConfig) dsn() string {
	parts := []string{
		"host=" + d.Host,
		"port=" + d.Port,
		"user=" + d.User,
		"password=" + d.Password,
		"dbname=" + d.Name,
		"sslmode=" + d.SSLMode,
	}
	return strings.Join(parts, " ")
}

func (c *Config) IsProduction() bool {
	return c.GinMode == "release"
}

func (c *Config) IsDevelopment() bool {
	return c.GinMode == "debug"
}

// GetServerAddress returns the listen address
func (c *Config) GetServerAddress() string {
	return ":" + c.Port
}

// GetAPIBasePath returns the prefix every API route is mounted under, e.g. /api/v1
func (c *Config) GetAPIBasePath() string {
	return c.APIPrefix + "/" + c.APIVersion
}

// SMTPConfigured reports whether outbound email can be delivered
func (c *Config) SMTPConfigured() bool {
	return c.Email.SMTPHost != "" && c.Email.SMTPUsername != ""
}
