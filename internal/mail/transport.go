// Weddingbook - Wedding Service Booking Backend
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/weddingbook

// Package mail renders and delivers transactional email.
//
// The Dispatcher implements emailqueue.Mailer: it renders a subject plus
// HTML and plain text bodies for each job kind and hands the message to a
// Transport. Transports:
//   - SMTP: STARTTLS with XOAUTH2 (refresh-token flow) or PLAIN auth
//   - SES: Amazon SES v2 SendEmail
//   - Log: writes the message to the logger (development)
//
// Every transport built by NewTransport is wrapped in a circuit breaker so
// a failing provider is rejected quickly; the queue still retries.
package mail

import (
	"context"
	"errors"
	"fmt"
	netmail "net/mail"
	"strings"

	"github.com/rs/zerolog"

	"github.com/tomtom215/weddingbook/internal/breaker"
	"github.com/tomtom215/weddingbook/internal/config"
)

// Message is a rendered email ready for delivery.
type Message struct {
	To       string
	Subject  string
	HTMLBody string
	TextBody string
}

// Transport delivers a rendered message.
type Transport interface {
	Name() string
	Send(ctx context.Context, msg Message) error
}

// Sender identifies the From header.
type Sender struct {
	Address string
	Name    string
}

func (s Sender) String() string {
	if s.Name == "" {
		return s.Address
	}
	return (&netmail.Address{Name: s.Name, Address: s.Address}).String()
}

// ValidateAddress rejects anything net/mail cannot parse as a bare address.
func ValidateAddress(addr string) error {
	if strings.TrimSpace(addr) == "" {
		return errors.New("email address is empty")
	}
	parsed, err := netmail.ParseAddress(addr)
	if err != nil {
		return fmt.Errorf("invalid email address %q: %w", addr, err)
	}
	if parsed.Address != addr {
		return fmt.Errorf("invalid email address %q", addr)
	}
	return nil
}

// NewTransport builds the configured transport behind a circuit breaker.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func NewTransport(ctx context.Context, cfg *config.MailConfig, logger zerolog.Logger) (Transport, error) {
	sender := Sender{Address: cfg.From, Name: cfg.FromName}

	var t Transport
	switch cfg.Transport {
	case "smtp":
		t = NewSMTPTransport(ctx, cfg, sender)
	case "ses":
		ses, err := NewSESTransport(ctx, cfg.SESRegion, sender)
		if err != nil {
			return nil, err
		}
		t = ses
	case "log", "":
		t = NewLogTransport(logger)
	default:
		return nil, fmt.Errorf("unknown mail transport %q", cfg.Transport)
	}
	return NewBreakerTransport(t, breaker.DefaultSettings()), nil
}

// BreakerTransport guards another transport with a circuit breaker.
type BreakerTransport struct {
	next Transport
	cb   *breaker.Breaker[struct{}]
}

// NewBreakerTransport wraps next. Address errors do not count as provider
// failures.
func NewBreakerTransport(next Transport, s breaker.Settings) *BreakerTransport {
	s.IsSuccessful = func(err error) bool {
		return err == nil || isPermanent(err)
	}
	return &BreakerTransport{
		next: next,
		cb:   breaker.New[struct{}]("mail-"+next.Name(), s),
	}
}

func (b *BreakerTransport) Name() string { return b.next.Name() }

func (b *BreakerTransport) Send(ctx context.Context, msg Message) error {
	_, err := b.cb.Execute(func() (struct{}, error) {
		return struct{}{}, b.next.Send(ctx, msg)
	})
	return err
}

// State exposes the breaker state for health reporting.
func (b *BreakerTransport) State() string { return b.cb.State() }

// permanentError marks failures that retrying cannot fix.
type permanentError struct{ err error }

func (e *permanentError) Error() string { return e.err.Error() }
func (e *permanentError) Unwrap() error { return e.err }

func permanent(err error) error {
	if err == nil {
		return nil
	}
	return &permanentError{err: err}
}

func isPermanent(err error) bool {
	var pe *permanentError
	return errors.As(err, &pe)
}
