// Weddingbook - Wedding Service Booking Backend
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/weddingbook

package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"
)

// DefaultConfigPaths are searched in order; the first existing file wins.
var DefaultConfigPaths = []string{
	"config.yaml",
	"config.yml",
	"/etc/weddingbook/config.yaml",
}

// ConfigPathEnvVar overrides the config file location.
const ConfigPathEnvVar = "CONFIG_PATH"

func defaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Port:        8080,
			Host:        "0.0.0.0",
			Timeout:     30 * time.Second,
			PublicURL:   "http://localhost:3000",
			Environment: "development",
			MaxUpload:   5 << 20,
		},
		Database: DatabaseConfig{
			Path: "/data/weddingbook",
		},
		Security: SecurityConfig{
			TokenTTL:             7 * 24 * time.Hour,
			ResetTokenTTL:        15 * time.Minute,
			OTPTTL:               10 * time.Minute,
			RateLimitReqs:        100,
			RateLimitWindow:      time.Minute,
			AuthRateLimitReqs:    10,
			AccountEmailsPerHour: 5,
			CORSOrigins:          []string{"*"},
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
		},
		Queue: QueueConfig{
			RetryDelay:      2 * time.Second,
			Pacing:          500 * time.Millisecond,
			SendTimeout:     30 * time.Second,
			DefaultPriority: 5,
			MaxAttempts:     3,
		},
		Mail: MailConfig{
			Transport:     "log",
			FromName:      "Weddingbook",
			SMTPHost:      "smtp.gmail.com",
			SMTPPort:      587,
			OAuthTokenURL: "https://oauth2.googleapis.com/token",
			SESRegion:     "us-east-1",
		},
		Payments: PaymentsConfig{
			Currency:   "usd",
			SuccessURL: "http://localhost:3000/payment/success?session_id={CHECKOUT_SESSION_ID}",
			CancelURL:  "http://localhost:3000/payment/cancel",
		},
		Storage: StorageConfig{
			Region: "us-east-1",
		},
		Supervisor: SupervisorConfig{
			FailureThreshold: 5,
			FailureDecay:     30,
			FailureBackoff:   15 * time.Second,
			ShutdownTimeout:  10 * time.Second,
		},
	}
}

// LoadWithKoanf loads defaults, then the optional YAML file, then environment
// variables, and validates the result.
func LoadWithKoanf() (*Config, error) {
	k := koanf.New(".")

	if err := k.Load(structs.Provider(defaultConfig(), "koanf"), nil); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	if configPath := findConfigFile(); configPath != "" {
		if err := k.Load(file.Provider(configPath), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", configPath, err)
		}
	}

	if err := k.Load(env.Provider("", ".", envTransformFunc), nil); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}

	if err := processSliceFields(k); err != nil {
		return nil, fmt.Errorf("failed to process slice fields: %w", err)
	}

	cfg := &Config{}
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal configuration: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}
	return cfg, nil
}

func findConfigFile() string {
	if envPath := os.Getenv(ConfigPathEnvVar); envPath != "" {
		if _, err := os.Stat(envPath); err == nil {
			return envPath
		}
	}
	for _, path := range DefaultConfigPaths {
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}
	return ""
}

var sliceConfigPaths = []string{
	"security.cors_origins",
}

// processSliceFields splits comma-separated env values for slice fields.
func processSliceFields(k *koanf.Koanf) error {
	for _, path := range sliceConfigPaths {
		strVal, ok := k.Get(path).(string)
		if !ok || strVal == "" {
			continue
		}
		parts := strings.Split(strVal, ",")
		trimmed := make([]string, 0, len(parts))
		for _, p := range parts {
			if p = strings.TrimSpace(p); p != "" {
				trimmed = append(trimmed, p)
			}
		}
		if err := k.Set(path, trimmed); err != nil {
			return fmt.Errorf("failed to set %s: %w", path, err)
		}
	}
	return nil
}

// envMappings maps lowercased environment variable names to koanf paths.
// Variables not listed here are ignored.
var envMappings = map[string]string{
	"http_port":        "server.port",
	"http_host":        "server.host",
	"server_timeout":   "server.timeout",
	"public_url":       "server.public_url",
	"environment":      "server.environment",
	"max_upload_bytes": "server.max_upload_bytes",

	"badger_path":      "database.path",
	"badger_in_memory": "database.in_memory",
	"seed_demo_data":   "database.seed_demo",
	"badger_sync":      "database.sync_writes",

	"jwt_secret":               "security.jwt_secret",
	"token_ttl":                "security.token_ttl",
	"reset_token_ttl":          "security.reset_token_ttl",
	"otp_ttl":                  "security.otp_ttl",
	"admin_email":              "security.admin_email",
	"rate_limit_requests":      "security.rate_limit_requests",
	"rate_limit_window":        "security.rate_limit_window",
	"disable_rate_limit":       "security.rate_limit_disabled",
	"auth_rate_limit_requests": "security.auth_rate_limit_requests",
	"account_emails_per_hour":  "security.account_emails_per_hour",
	"cors_origins":             "security.cors_origins",

	"log_level":  "logging.level",
	"log_format": "logging.format",
	"log_caller": "logging.caller",

	"email_queue_retry_delay":      "queue.retry_delay",
	"email_queue_pacing":           "queue.pacing",
	"email_queue_send_timeout":     "queue.send_timeout",
	"email_queue_default_priority": "queue.default_priority",
	"email_queue_max_attempts":     "queue.max_attempts",

	"mail_transport":           "mail.transport",
	"mail_from":                "mail.from",
	"mail_from_name":           "mail.from_name",
	"smtp_host":                "mail.smtp_host",
	"smtp_port":                "mail.smtp_port",
	"smtp_username":            "mail.username",
	"smtp_password":            "mail.password",
	"mail_oauth_client_id":     "mail.oauth_client_id",
	"mail_oauth_client_secret": "mail.oauth_client_secret",
	"mail_oauth_refresh_token": "mail.oauth_refresh_token",
	"mail_oauth_token_url":     "mail.oauth_token_url",
	"ses_region":               "mail.ses_region",

	"stripe_secret_key":     "payments.stripe_secret_key",
	"stripe_webhook_secret": "payments.stripe_webhook_secret",
	"payment_currency":      "payments.currency",
	"payment_success_url":   "payments.success_url",
	"payment_cancel_url":    "payments.cancel_url",

	"s3_bucket":          "storage.bucket",
	"s3_region":          "storage.region",
	"s3_endpoint":        "storage.endpoint",
	"s3_public_base_url": "storage.public_base_url",
	"s3_use_path_style":  "storage.use_path_style",

	"supervisor_failure_threshold": "supervisor.failure_threshold",
	"supervisor_failure_decay":     "supervisor.failure_decay",
	"supervisor_failure_backoff":   "supervisor.failure_backoff",
	"supervisor_shutdown_timeout":  "supervisor.shutdown_timeout",
}

// envTransformFunc maps an environment variable to its koanf path.
// Returning "" tells koanf to skip the variable.
//
//   - HTTP_PORT -> server.port
//   - STRIPE_SECRET_KEY -> payments.stripe_secret_key
func envTransformFunc(key string) string {
	return envMappings[strings.ToLower(key)]
}
