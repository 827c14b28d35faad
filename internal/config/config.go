package config

import (
	"time"

	"github.com/spf13/viper"
)

type AuthMode string

const (
	AuthModeNone  AuthMode = "none"  // No authentication required (development only)
	AuthModeLocal AuthMode = "local" // Local user database with sessions
)

type (
	Config struct {
		HTTP
		Database
		UI
		Global
		Auth
		OverdueSweep
	}

	HTTP struct {
		Port int32
		Host string
	}
	Database struct {
		Path string
	}
	UI struct {
		TemplatesPath string
		StaticPath    string
	}
	Global struct {
		ShutdownTimeoutInSeconds int
	}
	Auth struct {
		Mode            AuthMode
		SessionSecret   string
		SessionLifetime time.Duration
		BcryptCost      int
		SecureCookies   bool // Set to false for local dev without HTTPS

		// Rate limiting configuration
		MaxLoginAttempts int           // Max failed attempts before lockout (default: 5)
		RateLimitWindow  time.Duration // Time window for counting attempts (default: 15m)
		LockoutDuration  time.Duration // How long to lock out (default: 30m)
	}
	OverdueSweep struct {
		Enabled  bool
		Schedule string // Cron format: "0 * * * *" = hourly
	}
)

func NewConfig() *Config {
	v := viper.New()
	v.AutomaticEnv()
	v.SetDefault("port", 8190)
	v.SetDefault("host", "0.0.0.0")
	v.SetDefault("shutdown_timeout_in_seconds", 2)
	v.SetDefault("database_path", DefaultDatabasePath)
	v.SetDefault("templates_path", "./templates")
	v.SetDefault("static_path", "./static")

	// Auth defaults
	v.SetDefault("auth_mode", "local")
	v.SetDefault("auth_session_secret", "")      // Auto-generated if empty
	v.SetDefault("auth_session_lifetime", "24h") // 24 hours
	v.SetDefault("auth_bcrypt_cost", 12)         // bcrypt cost factor
	v.SetDefault("auth_secure_cookies", true)    // HTTPS-only cookies
	v.SetDefault("auth_max_login_attempts", 5)
	v.SetDefault("auth_rate_limit_window", "15m")
	v.SetDefault("auth_lockout_duration", "30m")

	// Overdue sweep defaults
	v.SetDefault("overdue_sweep_enabled", true)
	v.SetDefault("overdue_sweep_schedule", "0 * * * *") // Hourly at :00

	return &Config{
		HTTP: HTTP{
			Port: v.GetInt32("PORT"),
			Host: v.GetString("HOST"),
		},
		Database: Database{
			Path: v.GetString("DATABASE_PATH"),
		},
		UI: UI{
			TemplatesPath: v.GetString("TEMPLATES_PATH"),
			StaticPath:    v.GetString("STATIC_PATH"),
		},
		Global: Global{
			ShutdownTimeoutInSeconds: v.GetInt("SHUTDOWN_TIMEOUT_IN_SECONDS"),
		},
		Auth: Auth{
			Mode:             AuthMode(v.GetString("AUTH_MODE")),
			SessionSecret:    v.GetString("AUTH_SESSION_SECRET"),
			SessionLifetime:  v.GetDuration("AUTH_SESSION_LIFETIME"),
			BcryptCost:       v.GetInt("AUTH_BCRYPT_COST"),
			SecureCookies:    v.GetBool("AUTH_SECURE_COOKIES"),
			MaxLoginAttempts: v.GetInt("AUTH_MAX_LOGIN_ATTEMPTS"),
			RateLimitWindow:  v.GetDuration("AUTH_RATE_LIMIT_WINDOW"),
			LockoutDuration:  v.GetDuration("AUTH_LOCKOUT_DURATION"),
		},
		OverdueSweep: OverdueSweep{
			Enabled:  v.GetBool("OVERDUE_SWEEP_ENABLED"),
			Schedule: v.GetString("OVERDUE_SWEEP_SCHEDULE"),
		},
	}
}
