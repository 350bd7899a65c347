// Weddingbook - Wedding Service Booking Backend
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/weddingbook

// Package config loads Weddingbook configuration.
//
// Loading order (Koanf v2):
//  1. Defaults: built-in values from defaultConfig()
//  2. Config file: optional YAML (CONFIG_PATH or the default search paths)
//  3. Environment variables: override any setting through an explicit mapping
//
// Config is immutable after Load() and safe for concurrent reads.
package config

import (
	"time"
)

// Config holds all application configuration.
type Config struct {
	Server     ServerConfig     `koanf:"server"`
	Database   DatabaseConfig   `koanf:"database"`
	Security   SecurityConfig   `koanf:"security"`
	Logging    LoggingConfig    `koanf:"logging"`
	Queue      QueueConfig      `koanf:"queue"`
	Mail       MailConfig       `koanf:"mail"`
	Payments   PaymentsConfig   `koanf:"payments"`
	Storage    StorageConfig    `koanf:"storage"`
	Supervisor SupervisorConfig `koanf:"supervisor"`
}

// ServerConfig holds HTTP server settings.
//
// Environment Variables:
//   - HTTP_PORT: listen port (default: 8080)
//   - HTTP_HOST: bind address (default: 0.0.0.0)
//   - SERVER_TIMEOUT: read/write timeout (default: 30s)
//   - PUBLIC_URL: base URL used in email links (default: http://localhost:3000)
type ServerConfig struct {
	Port        int           `koanf:"port"`
	Host        string        `koanf:"host"`
	Timeout     time.Duration `koanf:"timeout"`
	PublicURL   string        `koanf:"public_url"`
	Environment string        `koanf:"environment"`
	MaxUpload   int64         `koanf:"max_upload_bytes"`
}

// DatabaseConfig configures the BadgerDB document store.
// An empty Path (or InMemory) keeps everything in memory, which is what
// tests and local demos use.
type DatabaseConfig struct {
	Path      string `koanf:"path"`
	InMemory  bool   `koanf:"in_memory"`
	SeedDemo  bool   `koanf:"seed_demo"`
	SyncWrite bool   `koanf:"sync_writes"`
}

// SecurityConfig holds authentication and request limiting settings.
type SecurityConfig struct {
	// JWTSecret signs access and password-reset tokens. At least 32 bytes.
	JWTSecret string `koanf:"jwt_secret"`

	// TokenTTL is the lifetime of an access token.
	TokenTTL time.Duration `koanf:"token_ttl"`

	// ResetTokenTTL is the lifetime of a password-reset link.
	ResetTokenTTL time.Duration `koanf:"reset_token_ttl"`

	// OTPTTL is the lifetime of an email verification code.
	OTPTTL time.Duration `koanf:"otp_ttl"`

	// AdminEmail is promoted to the admin role on registration.
	AdminEmail string `koanf:"admin_email"`

	RateLimitReqs     int           `koanf:"rate_limit_requests"`
	RateLimitWindow   time.Duration `koanf:"rate_limit_window"`
	RateLimitDisabled bool          `koanf:"rate_limit_disabled"`

	// AuthRateLimitReqs applies to login, registration and password reset.
	AuthRateLimitReqs int `koanf:"auth_rate_limit_requests"`

	// AccountEmailsPerHour caps OTP and reset emails per account.
	AccountEmailsPerHour int `koanf:"account_emails_per_hour"`

	CORSOrigins []string `koanf:"cors_origins"`
}

// LoggingConfig holds zerolog settings.
type LoggingConfig struct {
	Level  string `koanf:"level"`
	Format string `koanf:"format"`
	Caller bool   `koanf:"caller"`
}

// QueueConfig controls the transactional email queue.
//
// Environment Variables:
//   - EMAIL_QUEUE_RETRY_DELAY: base for linear backoff (default: 2s)
//   - EMAIL_QUEUE_PACING: pause after every processed job (default: 500ms)
//   - EMAIL_QUEUE_SEND_TIMEOUT: upper bound on one delivery (default: 30s)
type QueueConfig struct {
	RetryDelay      time.Duration `koanf:"retry_delay"`
	Pacing          time.Duration `koanf:"pacing"`
	SendTimeout     time.Duration `koanf:"send_timeout"`
	DefaultPriority int           `koanf:"default_priority"`
	MaxAttempts     int           `koanf:"max_attempts"`
}

// MailConfig selects and configures the outbound mail transport.
//
// Transport is one of:
//   - "smtp": STARTTLS SMTP with XOAUTH2 when OAuth client settings are present,
//     otherwise PLAIN auth with Username/Password
//   - "ses": Amazon SES v2
//   - "log": write messages to the log (development)
type MailConfig struct {
	Transport string `koanf:"transport"`
	From      string `koanf:"from"`
	FromName  string `koanf:"from_name"`

	SMTPHost string `koanf:"smtp_host"`
	SMTPPort int    `koanf:"smtp_port"`
	Username string `koanf:"username"`
	Password string `koanf:"password"`

	OAuthClientID     string `koanf:"oauth_client_id"`
	OAuthClientSecret string `koanf:"oauth_client_secret"`
	OAuthRefreshToken string `koanf:"oauth_refresh_token"`
	OAuthTokenURL     string `koanf:"oauth_token_url"`

	SESRegion string `koanf:"ses_region"`
}

// UsesOAuth reports whether SMTP should authenticate with XOAUTH2.
func (m MailConfig) UsesOAuth() bool {
	return m.OAuthClientID != "" && m.OAuthRefreshToken != ""
}

// PaymentsConfig configures the Stripe checkout integration.
type PaymentsConfig struct {
	StripeSecretKey     string `koanf:"stripe_secret_key"`
	StripeWebhookSecret string `koanf:"stripe_webhook_secret"`
	Currency            string `koanf:"currency"`
	SuccessURL          string `koanf:"success_url"`
	CancelURL           string `koanf:"cancel_url"`
}

// Enabled reports whether online payments are configured.
func (p PaymentsConfig) Enabled() bool {
	return p.StripeSecretKey != ""
}

// StorageConfig configures the image object store. With no bucket set,
// uploads are rejected and deletes are no-ops.
type StorageConfig struct {
	Bucket        string `koanf:"bucket"`
	Region        string `koanf:"region"`
	Endpoint      string `koanf:"endpoint"`
	PublicBaseURL string `koanf:"public_base_url"`
	UsePathStyle  bool   `koanf:"use_path_style"`
}

// SupervisorConfig mirrors suture.Spec tuning.
type SupervisorConfig struct {
	FailureThreshold float64       `koanf:"failure_threshold"`
	FailureDecay     float64       `koanf:"failure_decay"`
	FailureBackoff   time.Duration `koanf:"failure_backoff"`
	ShutdownTimeout  time.Duration `koanf:"shutdown_timeout"`
}

// IsProduction reports whether the server runs with production checks.
func (c *Config) IsProduction() bool {
	return c.Server.Environment == "production"
}

// Load is the entry point used by cmd/server.
func Load() (*Config, error) {
	return LoadWithKoanf()
}
