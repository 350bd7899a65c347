// Weddingbook - Wedding Service Booking Backend
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/weddingbook

package mail

import (
	"context"

	"github.com/rs/zerolog"
)

// LogTransport writes messages to the log instead of sending them. The
// text body is included so OTP codes and reset links are usable locally.
type LogTransport struct {
	logger zerolog.Logger
}

//nolint:gocritic // logger passed by value is acceptable for zerolog
func NewLogTransport(logger zerolog.Logger) *LogTransport {
	return &LogTransport{logger: logger.With().Str("component", "mail").Logger()}
}

func (t *LogTransport) Name() string { return "log" }

func (t *LogTransport) Send(_ context.Context, msg Message) error {
	if err := ValidateAddress(msg.To); err != nil {
		return permanent(err)
	}
	t.logger.Info().
		Str("to", msg.To).
		Str("subject", msg.Subject).
		Str("body", msg.TextBody).
		Msg("email (log transport)")
	return nil
}
