package utils

import (
	"errors"
	"io/fs"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	App      AppConfig
	Server   ServerConfig
	Database DatabaseConfig
	Redis    RedisConfig
	Auth     AuthConfig
	JWT      JWTConfig
	Email    EmailConfig
	OTP      OTPConfig
	Stripe   StripeConfig
	Metrics  MetricsConfig
}

type AppConfig struct {
	Name       string
	Port       string
	Debug      bool
	LogPath    string
	Timezone   string
	CORSOrigin string
}

type ServerConfig struct {
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	IdleTimeout     time.Duration
	ShutdownTimeout time.Duration
}

type DatabaseConfig struct {
	Host     string
	Port     string
	Name     string
	User     string
	Password string
	MaxConns int32
}

type RedisConfig struct {
	Addr     string
	User     string
	Password string
	CacheTTL time.Duration
}

// Enabled reports whether a Redis address was configured.
func (c RedisConfig) Enabled() bool {
	return c.Addr != ""
}

type AuthConfig struct {
	SessionExpiryHours int
}

type JWTConfig struct {
	Secret      string
	ExpiryHours int
}

type EmailConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	From     string
}

type OTPConfig struct {
	ExpiryMinutes int
	Length        int
}

type StripeConfig struct {
	SecretKey     string
	WebhookSecret string
	Currency      string
	SuccessURL    string
	CancelURL     string
}

type MetricsConfig struct {
	Enabled bool
	Path    string
}

// LoadConfig reads the optional env file at path and overlays process environment.
func LoadConfig(path string) (*Config, error) {
	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("env")

	// Set defaults
	v.SetDefault("APP_NAME", "phone-repair")
	v.SetDefault("PORT", "8080")
	v.SetDefault("DEBUG", false)
	v.SetDefault("LOG_PATH", "logs/")
	v.SetDefault("TIMEZONE", "Europe/Athens")
	v.SetDefault("CORS_ORIGIN", "*")
	v.SetDefault("SERVER_READ_TIMEOUT", "10s")
	v.SetDefault("SERVER_WRITE_TIMEOUT", "15s")
	v.SetDefault("SERVER_IDLE_TIMEOUT", "60s")
	v.SetDefault("SHUTDOWN_TIMEOUT", "15s")
	v.SetDefault("DB_HOST", "localhost")
	v.SetDefault("DB_PORT", "5432")
	v.SetDefault("DB_MAX_CONNS", 10)
	v.SetDefault("CACHE_TTL_SECONDS", 60)
	v.SetDefault("SESSION_EXPIRY_HOURS", 24)
	v.SetDefault("JWT_EXPIRY_HOURS", 12)
	v.SetDefault("SMTP_PORT", 587)
	v.SetDefault("EMAIL_FROM", "no-reply@phone-repair.local")
	v.SetDefault("OTP_EXPIRY_MINUTES", 10)
	v.SetDefault("OTP_LENGTH", 6)
	v.SetDefault("STRIPE_CURRENCY", "eur")
	v.SetDefault("STRIPE_SUCCESS_URL", "http://localhost:3000/checkout/success")
	v.SetDefault("STRIPE_CANCEL_URL", "http://localhost:3000/checkout/cancel")
	v.SetDefault("METRICS_ENABLED", true)
	v.SetDefault("METRICS_PATH", "/metrics")

	if err := v.ReadInConfig(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, err
	}

	v.AutomaticEnv()

	config := &Config{
		App: AppConfig{
			Name:       v.GetString("APP_NAME"),
			Port:       v.GetString("PORT"),
			Debug:      v.GetBool("DEBUG"),
			LogPath:    v.GetString("LOG_PATH"),
			Timezone:   v.GetString("TIMEZONE"),
			CORSOrigin: v.GetString("CORS_ORIGIN"),
		},
		Server: ServerConfig{
			ReadTimeout:     v.GetDuration("SERVER_READ_TIMEOUT"),
			WriteTimeout:    v.GetDuration("SERVER_WRITE_TIMEOUT"),
			IdleTimeout:     v.GetDuration("SERVER_IDLE_TIMEOUT"),
			ShutdownTimeout: v.GetDuration("SHUTDOWN_TIMEOUT"),
		},
		Database: DatabaseConfig{
			Host:     v.GetString("DB_HOST"),
			Port:     v.GetString("DB_PORT"),
			Name:     v.GetString("DB_NAME"),
			User:     v.GetString("DB_USER"),
			Password: v.GetString("DB_PASS"),
			MaxConns: v.GetInt32("DB_MAX_CONNS"),
		},
		Redis: RedisConfig{
			Addr:     v.GetString("REDIS_ADDR"),
			User:     v.GetString("REDIS_USER"),
			Password: v.GetString("REDIS_PASS"),
			CacheTTL: time.Duration(v.GetInt("CACHE_TTL_SECONDS")) * time.Second,
		},
		Auth: AuthConfig{
			SessionExpiryHours: v.GetInt("SESSION_EXPIRY_HOURS"),
		},
		JWT: JWTConfig{
			Secret:      v.GetString("JWT_SECRET"),
			ExpiryHours: v.GetInt("JWT_EXPIRY_HOURS"),
		},
		Email: EmailConfig{
			Host:     v.GetString("SMTP_HOST"),
			Port:     v.GetInt("SMTP_PORT"),
			User:     v.GetString("SMTP_USER"),
			Password: v.GetString("SMTP_PASS"),
			From:     v.GetString("EMAIL_FROM"),
		},
		OTP: OTPConfig{
			ExpiryMinutes: v.GetInt("OTP_EXPIRY_MINUTES"),
			Length:        v.GetInt("OTP_LENGTH"),
		},
		Stripe: StripeConfig{
			SecretKey:     v.GetString("STRIPE_SECRET_KEY"),
			WebhookSecret: v.GetString("STRIPE_WEBHOOK_SECRET"),
			Currency:      v.GetString("STRIPE_CURRENCY"),
			SuccessURL:    v.GetString("STRIPE_SUCCESS_URL"),
			CancelURL:     v.GetString("STRIPE_CANCEL_URL"),
		},
		Metrics: MetricsConfig{
			Enabled: v.GetBool("METRICS_ENABLED"),
			Path:    v.GetString("METRICS_PATH"),
		},
	}

	return config, nil
}

// Location resolves the configured timezone, falling back to UTC.
func (c *Config) Location() *time.Location {
	loc, err := time.LoadLocation(c.App.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}
