package config

import (
	"os"
	"time"
)

type Config struct {
	// Database
	DBHost     string
	DBPort     string
	DBUser     string
	DBPassword string
	DBName     string
	DBSSLMode  string

	// Token secrets. The two secrets are independent and never derived
	// from each other: access tokens and the JWT part of refresh tokens
	// are signed with different keys.
	AccessTokenSecret  string
	RefreshTokenSecret string

	AccessTokenTTL  time.Duration
	RefreshTokenTTL time.Duration

	// Two-factor and verification flows
	TwoFactorTokenTTL  time.Duration // temporary login token
	LoginOTPTTL        time.Duration // OTP sent during 2FA login
	SetupOTPTTL        time.Duration // OTP for 2FA setup and channel verification
	PasswordResetTTL   time.Duration

	// Google Sign-In
	GoogleClientID string

	// Mail
	SMTPHost string
	SMTPPort string
	SMTPUser string
	SMTPPass string
	MailFrom string

	// Redis (rate limiting)
	RedisAddr     string
	RedisPassword string

	// RabbitMQ (domain events), optional
	AMQPURL string

	// Server
	Port        string
	CORSOrigins string

	// system_logs retention window
	LogRetention time.Duration
}

func Load() *Config {
	return &Config{
		DBHost:     getEnv("DB_HOST", "localhost"),
		DBPort:     getEnv("DB_PORT", "5432"),
		DBUser:     getEnv("DB_USER", "postgres"),
		DBPassword: getEnv("DB_PASSWORD", ""),
		DBName:     getEnv("DB_NAME", "lunamarket"),
		DBSSLMode:  getEnv("DB_SSLMODE", "disable"),

		AccessTokenSecret:  getEnv("ACCESS_TOKEN_SECRET", ""),
		RefreshTokenSecret: getEnv("REFRESH_TOKEN_SECRET", ""),

		AccessTokenTTL:  parseDuration(getEnv("ACCESS_TOKEN_TTL", "30m"), 30*time.Minute),
		RefreshTokenTTL: parseDuration(getEnv("REFRESH_TOKEN_TTL", "2160h"), 2160*time.Hour),

		TwoFactorTokenTTL: parseDuration(getEnv("TWO_FACTOR_TOKEN_TTL", "10m"), 10*time.Minute),
		LoginOTPTTL:       parseDuration(getEnv("LOGIN_OTP_TTL", "10m"), 10*time.Minute),
		SetupOTPTTL:       parseDuration(getEnv("SETUP_OTP_TTL", "1h"), time.Hour),
		PasswordResetTTL:  parseDuration(getEnv("PASSWORD_RESET_TTL", "1h"), time.Hour),

		GoogleClientID: getEnv("GOOGLE_CLIENT_ID", ""),

		SMTPHost: getEnv("SMTP_HOST", ""),
		SMTPPort: getEnv("SMTP_PORT", "587"),
		SMTPUser: getEnv("SMTP_USER", ""),
		SMTPPass: getEnv("SMTP_PASS", ""),
		MailFrom: getEnv("MAIL_FROM", "no-reply@lunamarket.app"),

		RedisAddr:     getEnv("REDIS_ADDR", ""),
		RedisPassword: getEnv("REDIS_PASSWORD", ""),

		AMQPURL: getEnv("AMQP_URL", ""),

		Port:        getEnv("PORT", "8080"),
		CORSOrigins: getEnv("CORS_ORIGINS", "*"),

		LogRetention: parseDuration(getEnv("LOG_RETENTION", "720h"), 720*time.Hour),
	}
}

func (c *Config) DSN() string {
	return "host=" + c.DBHost +
		" user=" + c.DBUser +
		" password=" + c.DBPassword +
		" dbname=" + c.DBName +
		" port=" + c.DBPort +
		" sslmode=" + c.DBSSLMode +
		" TimeZone=UTC"
}

func getEnv(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

func parseDuration(s string, fallback time.Duration) time.Duration {
	d, err := time.ParseDuration(s)
	if err != nil {
		return fallback
	}
	return d
}
