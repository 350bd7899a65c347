// Weddingbook - Wedding Service Booking Backend
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/weddingbook

/*
Package auth implements customer accounts and request authentication.

# Accounts

Accounts covers the whole account lifecycle:

  - Register stores a bcrypt hash and emails a six digit code
  - VerifyEmail checks the code and returns a session
  - Login refuses unverified accounts
  - ForgotPassword and ResetPassword use a signed, single-use link

Codes are stored hashed. OTP and reset emails go through the email queue
and are capped per account with a Throttle; ForgotPassword answers the same
way whether or not the address is known.

# Tokens

JWTManager signs HS256 tokens. Access and reset tokens carry different
audiences. A reset token also pins the password version it was issued
for, so it dies when any reset succeeds.

# Middleware

Middleware.Authenticate accepts "Authorization: Bearer <token>" or the
HttpOnly "token" cookie set at login. A malformed Authorization header is
rejected even when a valid cookie is present. Handlers read the result
with ClaimsFromContext.
*/
package auth
