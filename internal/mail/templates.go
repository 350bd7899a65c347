// Weddingbook - Wedding Service Booking Backend
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/weddingbook

package mail

import (
	"bytes"
	"fmt"
	htmltemplate "html/template"
	texttemplate "text/template"
	"time"
)

// Each email kind has an HTML body, a plain text body and a subject.
// Templates are parsed once at start-up; a parse error is a programming
// error and panics.

var funcs = map[string]any{
	"money": func(v float64) string {
		return fmt.Sprintf("%.2f", v)
	},
	"date": func(t *time.Time) string {
		if t == nil {
			return ""
		}
		return t.Format("Jan 2, 2006")
	},
	"minutes": func(d time.Duration) int {
		return int(d.Round(time.Minute) / time.Minute)
	},
}

const layoutHTML = `{{define "layout"}}<!DOCTYPE html>
<html><body style="font-family: Georgia, serif; color: #333; max-width: 600px; margin: 0 auto;">
<h2 style="color: #8b5a7c;">{{.Brand}}</h2>
{{template "content" .}}
<p style="color: #999; font-size: 12px;">You received this email because of activity on your {{.Brand}} account.</p>
</body></html>{{end}}`

const orderHTML = `{{define "content"}}
<p>Hi {{.Name}},</p>
<p>Your order <strong>{{.Order.ID}}</strong> is confirmed.</p>
<table style="width: 100%; border-collapse: collapse;">
{{range .Order.Items}}<tr><td>{{.Name}}{{if .BookedFrom}} ({{date .BookedFrom}}{{if .BookedTill}} to {{date .BookedTill}}{{end}}){{end}}</td><td>x{{.Quantity}}</td><td style="text-align: right;">{{money .Price}}</td></tr>
{{end}}</table>
<p>Total: <strong>{{money .Order.TotalAmount}}</strong></p>
{{if eq (print .Order.PaymentType) "cash_after_service"}}<p>You chose to pay in cash after the service.</p>
{{else}}<p>Paid: {{money .Order.PaidAmount}}. Remaining: {{money .Order.RemainingAmount}}.</p>
{{end}}{{end}}`

const orderText = `Hi {{.Name}},

Your order {{.Order.ID}} is confirmed.
{{range .Order.Items}}
- {{.Name}} x{{.Quantity}}: {{money .Price}}{{if .BookedFrom}} ({{date .BookedFrom}}{{if .BookedTill}} to {{date .BookedTill}}{{end}}){{end}}{{end}}

Total: {{money .Order.TotalAmount}}
{{if eq (print .Order.PaymentType) "cash_after_service"}}You chose to pay in cash after the service.{{else}}Paid: {{money .Order.PaidAmount}}. Remaining: {{money .Order.RemainingAmount}}.{{end}}
`

const resetHTML = `{{define "content"}}
<p>Hi {{.Name}},</p>
<p>We received a request to reset your password. The link below is valid for {{minutes .ExpiresIn}} minutes.</p>
<p><a href="{{.ResetURL}}" style="background: #8b5a7c; color: #fff; padding: 10px 16px; text-decoration: none;">Reset password</a></p>
<p>If you did not ask for this, ignore this email.</p>
{{end}}`

const resetText = `Hi {{.Name}},

We received a request to reset your password. This link is valid for {{minutes .ExpiresIn}} minutes:

{{.ResetURL}}

If you did not ask for this, ignore this email.
`

const otpHTML = `{{define "content"}}
<p>Hi {{.Name}},</p>
<p>Your verification code is</p>
<p style="font-size: 28px; letter-spacing: 6px;"><strong>{{.Code}}</strong></p>
<p>It expires in {{minutes .ExpiresIn}} minutes.</p>
{{end}}`

const otpText = `Hi {{.Name}},

Your verification code is {{.Code}}. It expires in {{minutes .ExpiresIn}} minutes.
`

// kindTemplates holds the parsed pair for one email kind.
type kindTemplates struct {
	subject string
	html    *htmltemplate.Template
	text    *texttemplate.Template
}

func mustKind(name, subject, html, text string) kindTemplates {
	h := htmltemplate.Must(htmltemplate.New(name).Funcs(funcs).Parse(layoutHTML))
	h = htmltemplate.Must(h.Parse(html))
	return kindTemplates{
		subject: subject,
		html:    h,
		text:    texttemplate.Must(texttemplate.New(name).Funcs(funcs).Parse(text)),
	}
}

var (
	orderTemplates = mustKind("order-confirmation", "Your booking is confirmed", orderHTML, orderText)
	resetTemplates = mustKind("password-reset", "Reset your password", resetHTML, resetText)
	otpTemplates   = mustKind("verification-otp", "Your verification code", otpHTML, otpText)
)

// render executes both bodies against data.
func (k kindTemplates) render(to string, data any) (Message, error) {
	var h, t bytes.Buffer
	if err := k.html.ExecuteTemplate(&h, "layout", data); err != nil {
		return Message{}, fmt.Errorf("render %s html: %w", k.html.Name(), err)
	}
	if err := k.text.Execute(&t, data); err != nil {
		return Message{}, fmt.Errorf("render %s text: %w", k.text.Name(), err)
	}
	return Message{To: to, Subject: k.subject, HTMLBody: h.String(), TextBody: t.String()}, nil
}
