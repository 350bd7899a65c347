// Weddingbook - Wedding Service Booking Backend
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/weddingbook

package models

import "time"

// Role constants. These align with the Casbin policy in internal/authz.
const (
	RoleUser  = "user"
	RoleAdmin = "admin"
)

// User is a customer or administrator account.
type User struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	Role         string    `json:"role"`
	Verified     bool      `json:"verified"`
	CreatedAt    time.Time `json:"createdAt"`

	// OTPHash is the bcrypt hash of the pending verification code.
	OTPHash      string    `json:"-"`
	OTPExpiresAt time.Time `json:"-"`

	// PasswordChangedAt invalidates reset tokens issued before it.
	PasswordChangedAt time.Time `json:"-"`
}
