// Weddingbook - Wedding Service Booking Backend
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/weddingbook

package auth

import (
	"context"
	"crypto/rand"
	"fmt"
	"math/big"
	"net/url"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"

	"github.com/tomtom215/weddingbook/internal/config"
	"github.com/tomtom215/weddingbook/internal/emailqueue"
	"github.com/tomtom215/weddingbook/internal/models"
	"github.com/tomtom215/weddingbook/internal/store"
	"github.com/tomtom215/weddingbook/internal/validation"
)

// Account emails jump ahead of order confirmations.
const accountEmailPriority = 1

// verifyAttemptsPerHour bounds OTP guesses per account.
const verifyAttemptsPerHour = 10

// Enqueuer accepts email jobs. *emailqueue.Queue implements it.
type Enqueuer interface {
	Enqueue(payload emailqueue.Payload, opts ...emailqueue.Option) (string, error)
}

// RegisterRequest is the body of POST /auth/register.
type RegisterRequest struct {
	Name     string `json:"name" validate:"required,max=100"`
	Email    string `json:"email" validate:"required,email,max=254"`
	Password string `json:"password" validate:"required,min=8,password"`
}

// VerifyRequest is the body of POST /auth/verify-email.
type VerifyRequest struct {
	Email string `json:"email" validate:"required,email"`
	OTP   string `json:"otp" validate:"required,otp"`
}

// EmailRequest is the body of resend-otp and forgot-password.
type EmailRequest struct {
	Email string `json:"email" validate:"required,email"`
}

// LoginRequest is the body of POST /auth/login.
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,password"`
}

// ResetPasswordRequest is the body of POST /auth/reset-password.
type ResetPasswordRequest struct {
	Token    string `json:"token" validate:"required"`
	Password string `json:"password" validate:"required,min=8,password"`
}

// Session is returned by login and verification.
type Session struct {
	Token     string       `json:"token"`
	ExpiresAt time.Time    `json:"expiresAt"`
	User      *models.User `json:"user"`
}

var (
	errBadCredentials = models.NewAuthenticationError("invalid email or password")
	errBadOTP         = models.NewValidationError("invalid or expired verification code")
	errBadResetToken  = models.NewAuthenticationError("invalid or expired reset link")
)

// Accounts implements registration, email verification, login and
// password reset.
type Accounts struct {
	store      *store.Store
	jwt        *JWTManager
	queue      Enqueuer
	emails     *Throttle
	attempts   *Throttle
	adminEmail string
	otpTTL     time.Duration
	publicURL  string
	cost       int
	logger     zerolog.Logger

	// dummyHash keeps login timing similar for unknown emails.
	dummyHash []byte
}

// NewAccounts wires the account flows.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func NewAccounts(st *store.Store, jwtManager *JWTManager, queue Enqueuer, cfg *config.Config, logger zerolog.Logger) *Accounts {
	a := &Accounts{
		store:      st,
		jwt:        jwtManager,
		queue:      queue,
		emails:     NewThrottle(cfg.Security.AccountEmailsPerHour, time.Hour),
		attempts:   NewThrottle(verifyAttemptsPerHour, time.Hour),
		adminEmail: store.NormalizeEmail(cfg.Security.AdminEmail),
		otpTTL:     cfg.Security.OTPTTL,
		publicURL:  strings.TrimRight(cfg.Server.PublicURL, "/"),
		cost:       bcrypt.DefaultCost,
		logger:     logger.With().Str("component", "accounts").Logger(),
	}
	a.dummyHash, _ = bcrypt.GenerateFromPassword([]byte("not-a-real-password"), a.cost)
	return a
}

// SetHashCost overrides the bcrypt cost. Tests use bcrypt.MinCost.
func (a *Accounts) SetHashCost(cost int) {
	a.cost = cost
	a.dummyHash, _ = bcrypt.GenerateFromPassword([]byte("not-a-real-password"), cost)
}

// Register creates an unverified account and emails a verification code.
func (a *Accounts) Register(ctx context.Context, req *RegisterRequest) (*models.User, error) {
	if verr := validation.ValidateStruct(req); verr != nil {
		return nil, verr
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), a.cost)
	if err != nil {
		return nil, models.NewInternalError(fmt.Errorf("hash password: %w", err))
	}
	code, codeHash, err := a.newOTP()
	if err != nil {
		return nil, models.NewInternalError(err)
	}

	now := time.Now().UTC()
	email := store.NormalizeEmail(req.Email)
	role := models.RoleUser
	if a.adminEmail != "" && email == a.adminEmail {
		role = models.RoleAdmin
	}
	u := &models.User{
		ID:                store.NewID(),
		Name:              strings.TrimSpace(req.Name),
		Email:             email,
		PasswordHash:      string(hash),
		Role:              role,
		CreatedAt:         now,
		OTPHash:           codeHash,
		OTPExpiresAt:      now.Add(a.otpTTL),
		PasswordChangedAt: now,
	}
	if err := a.store.CreateUser(ctx, u); err != nil {
		return nil, err
	}
	a.logger.Info().Str("user_id", u.ID).Str("role", role).Msg("account registered")

	a.emails.Allow(email)
	a.sendOTP(u, code)
	return u, nil
}

// VerifyEmail checks the code and logs the user in. Verifying an already
// verified account just logs in.
func (a *Accounts) VerifyEmail(ctx context.Context, req *VerifyRequest) (*Session, error) {
	if verr := validation.ValidateStruct(req); verr != nil {
		return nil, verr
	}
	email := store.NormalizeEmail(req.Email)
	if !a.attempts.Allow(email) {
		return nil, models.NewRateLimitError("too many verification attempts, try again later")
	}
	existing, err := a.store.GetUserByEmail(ctx, email)
	if models.KindOf(err) == models.KindNotFound {
		return nil, errBadOTP
	}
	if err != nil {
		return nil, err
	}

	u, err := a.store.UpdateUser(ctx, existing.ID, func(u *models.User) error {
		if u.Verified {
			return nil
		}
		if u.OTPHash == "" || time.Now().After(u.OTPExpiresAt) {
			return errBadOTP
		}
		if bcrypt.CompareHashAndPassword([]byte(u.OTPHash), []byte(req.OTP)) != nil {
			return errBadOTP
		}
		u.Verified = true
		u.OTPHash = ""
		u.OTPExpiresAt = time.Time{}
		return nil
	})
	if err != nil {
		return nil, err
	}
	a.attempts.Reset(email)
	a.logger.Info().Str("user_id", u.ID).Msg("email verified")
	return a.session(u)
}

// ResendOTP issues a fresh code. Unknown and already verified emails are
// accepted silently so the endpoint does not reveal which accounts exist.
func (a *Accounts) ResendOTP(ctx context.Context, req *EmailRequest) error {
	if verr := validation.ValidateStruct(req); verr != nil {
		return verr
	}
	email := store.NormalizeEmail(req.Email)
	existing, err := a.store.GetUserByEmail(ctx, email)
	if models.KindOf(err) == models.KindNotFound {
		return nil
	}
	if err != nil {
		return err
	}
	if existing.Verified {
		return nil
	}
	if !a.emails.Allow(email) {
		return models.NewRateLimitError("too many verification emails, try again later")
	}
	code, codeHash, err := a.newOTP()
	if err != nil {
		return models.NewInternalError(err)
	}
	u, err := a.store.UpdateUser(ctx, existing.ID, func(u *models.User) error {
		u.OTPHash = codeHash
		u.OTPExpiresAt = time.Now().UTC().Add(a.otpTTL)
		return nil
	})
	if err != nil {
		return err
	}
	a.sendOTP(u, code)
	return nil
}

// Login requires a verified email.
func (a *Accounts) Login(ctx context.Context, req *LoginRequest) (*Session, error) {
	if verr := validation.ValidateStruct(req); verr != nil {
		return nil, verr
	}
	u, err := a.store.GetUserByEmail(ctx, req.Email)
	if models.KindOf(err) == models.KindNotFound {
		_ = bcrypt.CompareHashAndPassword(a.dummyHash, []byte(req.Password))
		return nil, errBadCredentials
	}
	if err != nil {
		return nil, err
	}
	if bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(req.Password)) != nil {
		a.logger.Warn().Str("user_id", u.ID).Msg("failed login")
		return nil, errBadCredentials
	}
	if !u.Verified {
		return nil, models.NewAuthorizationError("email address is not verified")
	}
	return a.session(u)
}

// ForgotPassword emails a reset link. It reports success for unknown
// emails and when the account is throttled.
func (a *Accounts) ForgotPassword(ctx context.Context, req *EmailRequest) error {
	if verr := validation.ValidateStruct(req); verr != nil {
		return verr
	}
	email := store.NormalizeEmail(req.Email)
	u, err := a.store.GetUserByEmail(ctx, email)
	if models.KindOf(err) == models.KindNotFound {
		a.logger.Debug().Msg("password reset requested for unknown email")
		return nil
	}
	if err != nil {
		return err
	}
	if !a.emails.Allow(email) {
		a.logger.Warn().Str("user_id", u.ID).Msg("password reset throttled")
		return nil
	}
	token, err := a.jwt.GenerateResetToken(u)
	if err != nil {
		return models.NewInternalError(err)
	}
	jobID, err := a.queue.Enqueue(emailqueue.PasswordReset{
		To:        u.Email,
		Name:      u.Name,
		ResetURL:  a.publicURL + "/reset-password?token=" + url.QueryEscape(token),
		ExpiresIn: a.jwt.ResetTTL(),
	}, emailqueue.WithPriority(accountEmailPriority))
	if err != nil {
		a.logger.Error().Err(err).Str("user_id", u.ID).Msg("failed to enqueue password reset email")
		return nil
	}
	a.logger.Info().Str("user_id", u.ID).Str("job_id", jobID).Msg("password reset email enqueued")
	return nil
}

// ResetPassword sets a new password. Each token works once: changing the
// password moves the version it was bound to.
func (a *Accounts) ResetPassword(ctx context.Context, req *ResetPasswordRequest) error {
	if verr := validation.ValidateStruct(req); verr != nil {
		return verr
	}
	claims, err := a.jwt.ValidateResetToken(req.Token)
	if err != nil {
		a.logger.Debug().Err(err).Msg("reset token rejected")
		return errBadResetToken
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), a.cost)
	if err != nil {
		return models.NewInternalError(fmt.Errorf("hash password: %w", err))
	}
	_, err = a.store.UpdateUser(ctx, claims.Subject, func(u *models.User) error {
		if passwordVersion(u) != claims.PasswordVersion {
			return errBadResetToken
		}
		u.PasswordHash = string(hash)
		u.PasswordChangedAt = time.Now().UTC()
		return nil
	})
	if models.KindOf(err) == models.KindNotFound {
		return errBadResetToken
	}
	if err != nil {
		return err
	}
	a.logger.Info().Str("user_id", claims.Subject).Msg("password reset")
	return nil
}

// Me returns the account behind an access token.
func (a *Accounts) Me(ctx context.Context, userID string) (*models.User, error) {
	return a.store.GetUser(ctx, userID)
}

func (a *Accounts) session(u *models.User) (*Session, error) {
	token, expires, err := a.jwt.GenerateToken(u)
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	return &Session{Token: token, ExpiresAt: expires, User: u}, nil
}

func (a *Accounts) sendOTP(u *models.User, code string) {
	jobID, err := a.queue.Enqueue(emailqueue.VerificationOTP{
		To:        u.Email,
		Name:      u.Name,
		Code:      code,
		ExpiresIn: a.otpTTL,
	}, emailqueue.WithPriority(accountEmailPriority))
	if err != nil {
		a.logger.Error().Err(err).Str("user_id", u.ID).Msg("failed to enqueue verification email")
		return
	}
	a.logger.Debug().Str("user_id", u.ID).Str("job_id", jobID).Msg("verification email enqueued")
}

// newOTP returns a six digit code and its bcrypt hash.
func (a *Accounts) newOTP() (string, string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(1_000_000))
	if err != nil {
		return "", "", fmt.Errorf("generate otp: %w", err)
	}
	code := fmt.Sprintf("%06d", n.Int64())
	hash, err := bcrypt.GenerateFromPassword([]byte(code), a.cost)
	if err != nil {
		return "", "", fmt.Errorf("hash otp: %w", err)
	}
	return code, string(hash), nil
}

// Serve periodically drops idle throttle entries. It implements
// suture.Service.
func (a *Accounts) Serve(ctx context.Context) error {
	ticker := time.NewTicker(10 * time.Minute)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			n := a.emails.Cleanup() + a.attempts.Cleanup()
			if n > 0 {
				a.logger.Debug().Int("removed", n).Msg("throttle cleanup")
			}
		}
	}
}

func (a *Accounts) String() string {
	return "account-throttle"
}
