// Weddingbook - Wedding Service Booking Backend
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/weddingbook

package mail

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"mime"
	"mime/quotedprintable"
	"net"
	"net/smtp"
	"net/textproto"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/oauth2"

	"github.com/tomtom215/weddingbook/internal/config"
)

// SMTPTransport delivers over SMTP with mandatory STARTTLS.
type SMTPTransport struct {
	host     string
	port     int
	username string
	password string
	sender   Sender
	tokens   oauth2.TokenSource
	timeout  time.Duration

	// dial is replaced in tests.
	dial func(ctx context.Context, addr string) (net.Conn, error)
	// tlsConfig is replaced in tests.
	tlsConfig *tls.Config
}

// NewSMTPTransport builds an SMTP transport. When OAuth client settings are
// present it authenticates with XOAUTH2 using a refresh-token source;
// otherwise it falls back to PLAIN with the configured password.
func NewSMTPTransport(ctx context.Context, cfg *config.MailConfig, sender Sender) *SMTPTransport {
	t := &SMTPTransport{
		host:     cfg.SMTPHost,
		port:     cfg.SMTPPort,
		username: cfg.Username,
		password: cfg.Password,
		sender:   sender,
		timeout:  30 * time.Second,
		tlsConfig: &tls.Config{
			ServerName: cfg.SMTPHost,
			MinVersion: tls.VersionTLS12,
		},
	}
	if t.port == 0 {
		t.port = 587
	}
	if cfg.UsesOAuth() {
		oc := &oauth2.Config{
			ClientID:     cfg.OAuthClientID,
			ClientSecret: cfg.OAuthClientSecret,
			Endpoint:     oauth2.Endpoint{TokenURL: cfg.OAuthTokenURL},
		}
		// The config's source caches and refreshes the access token.
		t.tokens = oc.TokenSource(ctx, &oauth2.Token{RefreshToken: cfg.OAuthRefreshToken})
	}
	dialer := &net.Dialer{Timeout: t.timeout}
	t.dial = func(ctx context.Context, addr string) (net.Conn, error) {
		return dialer.DialContext(ctx, "tcp", addr)
	}
	return t
}

func (t *SMTPTransport) Name() string { return "smtp" }

// Send delivers msg. 5xx replies are permanent; everything else is
// transient and left to the queue's retry.
func (t *SMTPTransport) Send(ctx context.Context, msg Message) error {
	if err := ValidateAddress(msg.To); err != nil {
		return permanent(err)
	}
	body, err := buildMIME(t.sender, msg, time.Now())
	if err != nil {
		return permanent(err)
	}
	if err := t.send(ctx, msg.To, body); err != nil {
		return classifySMTPError(err)
	}
	return nil
}

func (t *SMTPTransport) send(ctx context.Context, to string, body []byte) error {
	addr := net.JoinHostPort(t.host, strconv.Itoa(t.port))

	conn, err := t.dial(ctx, addr)
	if err != nil {
		return fmt.Errorf("failed to connect to SMTP server: %w", err)
	}
	defer func() { _ = conn.Close() }() //nolint:errcheck // best effort cleanup

	// Bound the whole exchange by the caller's deadline.
	if deadline, ok := ctx.Deadline(); ok {
		_ = conn.SetDeadline(deadline) //nolint:errcheck // deadline is advisory
	}

	client, err := smtp.NewClient(conn, t.host)
	if err != nil {
		return fmt.Errorf("failed to create SMTP client: %w", err)
	}
	defer func() { _ = client.Close() }() //nolint:errcheck // best effort cleanup

	if ok, _ := client.Extension("STARTTLS"); !ok {
		return permanent(errors.New("SMTP server does not offer STARTTLS"))
	}
	if err := client.StartTLS(t.tlsConfig); err != nil {
		return fmt.Errorf("failed to start TLS: %w", err)
	}

	auth, err := t.auth()
	if err != nil {
		return err
	}
	if auth != nil {
		if err := client.Auth(auth); err != nil {
			return fmt.Errorf("SMTP authentication failed: %w", err)
		}
	}

	if err := client.Mail(t.sender.Address); err != nil {
		return fmt.Errorf("failed to set sender: %w", err)
	}
	if err := client.Rcpt(to); err != nil {
		return fmt.Errorf("failed to set recipient: %w", err)
	}

	w, err := client.Data()
	if err != nil {
		return fmt.Errorf("failed to start message: %w", err)
	}
	if _, err := w.Write(body); err != nil {
		return fmt.Errorf("failed to write message: %w", err)
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("failed to close message: %w", err)
	}

	// The message is accepted once DATA closes.
	_ = client.Quit() //nolint:errcheck // message already accepted
	return nil
}

func (t *SMTPTransport) auth() (smtp.Auth, error) {
	if t.tokens != nil {
		tok, err := t.tokens.Token()
		if err != nil {
			return nil, fmt.Errorf("failed to refresh SMTP OAuth token: %w", err)
		}
		return &xoauth2Auth{username: t.username, token: tok.AccessToken}, nil
	}
	if t.username != "" && t.password != "" {
		return smtp.PlainAuth("", t.username, t.password, t.host), nil
	}
	return nil, nil
}

// xoauth2Auth implements the SASL XOAUTH2 mechanism used by Gmail and
// Microsoft 365.
type xoauth2Auth struct {
	username string
	token    string
}

func (a *xoauth2Auth) Start(_ *smtp.ServerInfo) (string, []byte, error) {
	return "XOAUTH2", []byte("user=" + a.username + "\x01auth=Bearer " + a.token + "\x01\x01"), nil
}

func (a *xoauth2Auth) Next(_ []byte, more bool) ([]byte, error) {
	if more {
		// The server sends a JSON error challenge; an empty reply ends the
		// exchange so the real error code surfaces.
		return []byte{}, nil
	}
	return nil, nil
}

// classifySMTPError marks 5xx replies permanent.
func classifySMTPError(err error) error {
	var tpErr *textproto.Error
	if errors.As(err, &tpErr) && tpErr.Code >= 500 && tpErr.Code < 600 {
		return permanent(err)
	}
	return err
}

// buildMIME renders a multipart/alternative message with quoted-printable
// parts.
func buildMIME(from Sender, msg Message, now time.Time) ([]byte, error) {
	var b strings.Builder

	boundary := "wb-" + strings.ReplaceAll(uuid.NewString(), "-", "")
	writeHeader := func(k, v string) {
		b.WriteString(k)
		b.WriteString(": ")
		b.WriteString(v)
		b.WriteString("\r\n")
	}

	writeHeader("From", from.String())
	writeHeader("To", msg.To)
	writeHeader("Subject", mime.QEncoding.Encode("utf-8", msg.Subject))
	writeHeader("Date", now.Format(time.RFC1123Z))
	writeHeader("Message-ID", fmt.Sprintf("<%s@%s>", uuid.NewString(), domainOf(from.Address)))
	writeHeader("MIME-Version", "1.0")
	writeHeader("Content-Type", fmt.Sprintf("multipart/alternative; boundary=%q", boundary))
	b.WriteString("\r\n")

	parts := []struct {
		contentType string
		body        string
	}{
		{"text/plain; charset=UTF-8", msg.TextBody},
		{"text/html; charset=UTF-8", msg.HTMLBody},
	}
	for _, p := range parts {
		if p.body == "" {
			continue
		}
		b.WriteString("--" + boundary + "\r\n")
		writeHeader("Content-Type", p.contentType)
		writeHeader("Content-Transfer-Encoding", "quoted-printable")
		b.WriteString("\r\n")

		qp := quotedprintable.NewWriter(&b)
		if _, err := qp.Write([]byte(p.body)); err != nil {
			return nil, err
		}
		if err := qp.Close(); err != nil {
			return nil, err
		}
		b.WriteString("\r\n")
	}
	b.WriteString("--" + boundary + "--\r\n")

	return []byte(b.String()), nil
}

func domainOf(addr string) string {
	if i := strings.LastIndexByte(addr, '@'); i >= 0 && i < len(addr)-1 {
		return addr[i+1:]
	}
	return "localhost"
}
