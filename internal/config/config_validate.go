// Weddingbook - Wedding Service Booking Backend
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/weddingbook

package config

import (
	"fmt"
	"strings"
)

const minJWTSecretLength = 32

// Validate checks that required configuration is present and valid.
func (c *Config) Validate() error {
	if err := c.validateServer(); err != nil {
		return err
	}
	if err := c.validateSecurity(); err != nil {
		return err
	}
	if err := c.validateQueue(); err != nil {
		return err
	}
	if err := c.validateMail(); err != nil {
		return err
	}
	if err := c.validatePayments(); err != nil {
		return err
	}
	return c.validateLogging()
}

func (c *Config) validateServer() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("HTTP_PORT must be between 1 and 65535, got %d", c.Server.Port)
	}
	if c.Server.Timeout <= 0 {
		return fmt.Errorf("SERVER_TIMEOUT must be positive")
	}
	if c.Server.MaxUpload <= 0 {
		return fmt.Errorf("MAX_UPLOAD_BYTES must be positive")
	}
	return nil
}

func (c *Config) validateSecurity() error {
	if len(c.Security.JWTSecret) < minJWTSecretLength {
		return fmt.Errorf("JWT_SECRET must be at least %d characters", minJWTSecretLength)
	}
	if c.Security.TokenTTL <= 0 || c.Security.ResetTokenTTL <= 0 || c.Security.OTPTTL <= 0 {
		return fmt.Errorf("TOKEN_TTL, RESET_TOKEN_TTL and OTP_TTL must be positive")
	}
	if !c.Security.RateLimitDisabled && (c.Security.RateLimitReqs <= 0 || c.Security.RateLimitWindow <= 0) {
		return fmt.Errorf("RATE_LIMIT_REQUESTS and RATE_LIMIT_WINDOW must be positive unless DISABLE_RATE_LIMIT=true")
	}
	if c.Security.AccountEmailsPerHour <= 0 {
		return fmt.Errorf("ACCOUNT_EMAILS_PER_HOUR must be positive")
	}
	if c.IsProduction() {
		for _, o := range c.Security.CORSOrigins {
			if o == "*" {
				return fmt.Errorf("CORS_ORIGINS must not contain '*' in production")
			}
		}
	}
	return nil
}

func (c *Config) validateQueue() error {
	if c.Queue.RetryDelay <= 0 {
		return fmt.Errorf("EMAIL_QUEUE_RETRY_DELAY must be positive")
	}
	if c.Queue.Pacing < 0 {
		return fmt.Errorf("EMAIL_QUEUE_PACING must not be negative")
	}
	if c.Queue.SendTimeout <= 0 {
		return fmt.Errorf("EMAIL_QUEUE_SEND_TIMEOUT must be positive")
	}
	if c.Queue.MaxAttempts < 1 {
		return fmt.Errorf("EMAIL_QUEUE_MAX_ATTEMPTS must be at least 1")
	}
	return nil
}

func (c *Config) validateMail() error {
	switch c.Mail.Transport {
	case "log":
		return nil
	case "smtp":
		if c.Mail.SMTPHost == "" || c.Mail.SMTPPort <= 0 {
			return fmt.Errorf("SMTP_HOST and SMTP_PORT are required when MAIL_TRANSPORT=smtp")
		}
		if c.Mail.From == "" {
			return fmt.Errorf("MAIL_FROM is required when MAIL_TRANSPORT=smtp")
		}
		if !c.Mail.UsesOAuth() && c.Mail.Username == "" {
			return fmt.Errorf("either MAIL_OAUTH_* or SMTP_USERNAME is required when MAIL_TRANSPORT=smtp")
		}
		if c.Mail.UsesOAuth() && c.Mail.OAuthClientSecret == "" {
			return fmt.Errorf("MAIL_OAUTH_CLIENT_SECRET is required with MAIL_OAUTH_CLIENT_ID")
		}
		return nil
	case "ses":
		if c.Mail.From == "" {
			return fmt.Errorf("MAIL_FROM is required when MAIL_TRANSPORT=ses")
		}
		return nil
	default:
		return fmt.Errorf("MAIL_TRANSPORT must be one of smtp, ses, log; got %q", c.Mail.Transport)
	}
}

func (c *Config) validatePayments() error {
	if !c.Payments.Enabled() {
		return nil
	}
	if c.Payments.StripeWebhookSecret == "" {
		return fmt.Errorf("STRIPE_WEBHOOK_SECRET is required when STRIPE_SECRET_KEY is set")
	}
	if len(c.Payments.Currency) != 3 {
		return fmt.Errorf("PAYMENT_CURRENCY must be a 3-letter ISO code, got %q", c.Payments.Currency)
	}
	return nil
}

func (c *Config) validateLogging() error {
	switch strings.ToLower(c.Logging.Level) {
	case "trace", "debug", "info", "warn", "warning", "error":
	default:
		return fmt.Errorf("LOG_LEVEL must be one of trace, debug, info, warn, error; got %q", c.Logging.Level)
	}
	if c.Logging.Format != "json" && c.Logging.Format != "console" {
		return fmt.Errorf("LOG_FORMAT must be json or console, got %q", c.Logging.Format)
	}
	return nil
}
