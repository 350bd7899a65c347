// Weddingbook - Wedding Service Booking Backend
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/weddingbook

package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/tomtom215/weddingbook/internal/config"
	"github.com/tomtom215/weddingbook/internal/models"
)

// Token audiences. A reset link is never accepted as an access token and
// the other way round.
const (
	audienceAccess = "weddingbook-api"
	audienceReset  = "weddingbook-password-reset"
)

// Claims are carried by access tokens.
type Claims struct {
	UserID string `json:"uid"`
	Email  string `json:"email"`
	Role   string `json:"role"`
	jwt.RegisteredClaims
}

// ResetClaims are carried by password-reset tokens. PasswordVersion pins
// the token to the password it was issued against, so a token stops
// working once any reset succeeds.
type ResetClaims struct {
	PasswordVersion int64 `json:"pwv"`
	jwt.RegisteredClaims
}

// JWTManager signs and verifies HS256 tokens.
type JWTManager struct {
	secret   []byte
	tokenTTL time.Duration
	resetTTL time.Duration
}

// NewJWTManager requires a secret; config validation enforces its length.
func NewJWTManager(cfg *config.SecurityConfig) (*JWTManager, error) {
	if cfg.JWTSecret == "" {
		return nil, fmt.Errorf("JWT_SECRET is required but was empty")
	}
	return &JWTManager{
		secret:   []byte(cfg.JWTSecret),
		tokenTTL: cfg.TokenTTL,
		resetTTL: cfg.ResetTokenTTL,
	}, nil
}

// ResetTTL is how long reset links stay valid.
func (m *JWTManager) ResetTTL() time.Duration { return m.resetTTL }

// GenerateToken issues an access token for u.
func (m *JWTManager) GenerateToken(u *models.User) (string, time.Time, error) {
	now := time.Now()
	expires := now.Add(m.tokenTTL)
	claims := &Claims{
		UserID: u.ID,
		Email:  u.Email,
		Role:   u.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   u.ID,
			Audience:  jwt.ClaimStrings{audienceAccess},
			ExpiresAt: jwt.NewNumericDate(expires),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(m.secret)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("failed to sign token: %w", err)
	}
	return signed, expires, nil
}

// ValidateToken verifies an access token.
func (m *JWTManager) ValidateToken(tokenString string) (*Claims, error) {
	claims := &Claims{}
	if err := m.parse(tokenString, claims, audienceAccess); err != nil {
		return nil, err
	}
	if claims.UserID == "" {
		return nil, errors.New("invalid token claims")
	}
	return claims, nil
}

// GenerateResetToken issues a password-reset token for u.
func (m *JWTManager) GenerateResetToken(u *models.User) (string, error) {
	now := time.Now()
	claims := &ResetClaims{
		PasswordVersion: passwordVersion(u),
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   u.ID,
			Audience:  jwt.ClaimStrings{audienceReset},
			ExpiresAt: jwt.NewNumericDate(now.Add(m.resetTTL)),
			IssuedAt:  jwt.NewNumericDate(now),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(m.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign reset token: %w", err)
	}
	return signed, nil
}

// ValidateResetToken verifies a reset token's signature, audience and
// expiry. The password version is checked by the caller.
func (m *JWTManager) ValidateResetToken(tokenString string) (*ResetClaims, error) {
	claims := &ResetClaims{}
	if err := m.parse(tokenString, claims, audienceReset); err != nil {
		return nil, err
	}
	if claims.Subject == "" {
		return nil, errors.New("invalid reset token claims")
	}
	return claims, nil
}

func (m *JWTManager) parse(tokenString string, claims jwt.Claims, audience string) error {
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return m.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithAudience(audience),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		return fmt.Errorf("failed to parse token: %w", err)
	}
	if !token.Valid {
		return errors.New("invalid token")
	}
	return nil
}

func passwordVersion(u *models.User) int64 {
	if u.PasswordChangedAt.IsZero() {
		return 0
	}
	return u.PasswordChangedAt.UnixNano()
}
