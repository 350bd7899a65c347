// Weddingbook - Wedding Service Booking Backend
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/weddingbook

package emailqueue

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/tomtom215/weddingbook/internal/models"
)

// JobType names the kind of transactional email a job sends.
type JobType string

const (
	TypeOrderConfirmation JobType = "order-confirmation"
	TypePasswordReset     JobType = "password-reset"
	TypeVerificationOTP   JobType = "verification-otp"
)

// Status is the lifecycle state of a job.
type Status string

const (
	StatusWaiting    Status = "waiting"
	StatusProcessing Status = "processing"
	StatusCompleted  Status = "completed"
	StatusFailed     Status = "failed"
	StatusRetrying   Status = "retrying"
)

// Payload is the closed set of job payloads. Only the types below
// implement it.
type Payload interface {
	Type() JobType
	Recipient() string
	isPayload()
}

// OrderConfirmation is sent when an order is confirmed by cash choice or
// by a completed online payment.
type OrderConfirmation struct {
	To    string       `json:"to"`
	Name  string       `json:"name"`
	Order models.Order `json:"order"`
}

func (OrderConfirmation) Type() JobType       { return TypeOrderConfirmation }
func (p OrderConfirmation) Recipient() string { return p.To }
func (OrderConfirmation) isPayload()          {}

// PasswordReset carries a signed, expiring reset link.
type PasswordReset struct {
	To        string        `json:"to"`
	Name      string        `json:"name"`
	ResetURL  string        `json:"resetUrl"`
	ExpiresIn time.Duration `json:"expiresIn"`
}

func (PasswordReset) Type() JobType       { return TypePasswordReset }
func (p PasswordReset) Recipient() string { return p.To }
func (PasswordReset) isPayload()          {}

// VerificationOTP carries a one-time email verification code.
type VerificationOTP struct {
	To        string        `json:"to"`
	Name      string        `json:"name"`
	Code      string        `json:"code"`
	ExpiresIn time.Duration `json:"expiresIn"`
}

func (VerificationOTP) Type() JobType       { return TypeVerificationOTP }
func (p VerificationOTP) Recipient() string { return p.To }
func (VerificationOTP) isPayload()          {}

// Job is one queued email. Only the worker mutates a job after Enqueue.
type Job struct {
	ID          string
	Type        JobType
	Payload     Payload
	Priority    int
	Attempts    int
	MaxAttempts int
	Delay       time.Duration
	CreatedAt   time.Time
	Status      Status
	LastError   string

	// seq orders jobs of equal priority; it is reassigned whenever the
	// job goes back to the tail.
	seq        uint64
	timerArmed bool
	timer      *time.Timer
}

// Option adjusts a job at enqueue time.
type Option func(*Job)

// WithPriority sets the priority; lower numbers drain first.
func WithPriority(p int) Option {
	return func(j *Job) { j.Priority = p }
}

// WithMaxAttempts bounds delivery attempts. Values below 1 are ignored.
func WithMaxAttempts(n int) Option {
	return func(j *Job) {
		if n >= 1 {
			j.MaxAttempts = n
		}
	}
}

// WithDelay holds the job back for d before its first attempt.
func WithDelay(d time.Duration) Option {
	return func(j *Job) {
		if d > 0 {
			j.Delay = d
		}
	}
}

// newJobID combines creation time with random bits.
func newJobID(now time.Time) string {
	return fmt.Sprintf("%d-%s", now.UnixMilli(), uuid.NewString()[:8])
}
