// Package mailer delivers transactional email: verification codes and
// password reset links. Delivery is synchronous; the caller decides how to
// surface a failure (OTP issuance treats it as a hard error so the client
// knows no code is coming).
package mailer

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"log"
	"net/smtp"
	"strings"
)

var (
	ErrHostPortRequired = errors.New("smtp host and port are required")
	ErrNoRecipient      = errors.New("no recipient provided")
)

// Message is one outbound email. When both bodies are set the message goes
// out as multipart/alternative.
type Message struct {
	To       string
	Subject  string
	TextBody string
	HTMLBody string
}

// Mailer abstracts the delivery mechanism so handlers can be tested
// without a mail server.
type Mailer interface {
	Send(ctx context.Context, msg Message) error
}

// SMTPMailer sends mail through a plain SMTP relay with optional AUTH.
type SMTPMailer struct {
	addr string
	from string
	auth smtp.Auth
}

// SMTPConfig configures the relay connection.
type SMTPConfig struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
}

func NewSMTP(cfg SMTPConfig) (*SMTPMailer, error) {
	if cfg.Host == "" || cfg.Port == 0 {
		return nil, ErrHostPortRequired
	}
	var auth smtp.Auth
	if cfg.Username != "" && cfg.Password != "" {
		auth = smtp.PlainAuth("", cfg.Username, cfg.Password, cfg.Host)
	}
	return &SMTPMailer{
		addr: fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
		from: cfg.From,
		auth: auth,
	}, nil
}

// Send delivers the message. It checks the context before dialing but the
// SMTP exchange itself is not cancellable; net/smtp offers no hook for it.
func (m *SMTPMailer) Send(ctx context.Context, msg Message) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if msg.To == "" {
		return ErrNoRecipient
	}

	body, contentType := buildBody(msg)

	var sb strings.Builder
	fmt.Fprintf(&sb, "From: %s\r\n", m.from)
	fmt.Fprintf(&sb, "To: %s\r\n", msg.To)
	fmt.Fprintf(&sb, "Subject: %s\r\n", msg.Subject)
	sb.WriteString("MIME-Version: 1.0\r\n")
	fmt.Fprintf(&sb, "Content-Type: %s\r\n\r\n", contentType)
	sb.WriteString(body)

	return smtp.SendMail(m.addr, m.auth, m.from, []string{msg.To}, []byte(sb.String()))
}

func buildBody(msg Message) (body, contentType string) {
	if msg.HTMLBody != "" && msg.TextBody != "" {
		boundary := multipartBoundary()
		var sb strings.Builder
		sb.WriteString("This is a multipart message in MIME format.\r\n")
		fmt.Fprintf(&sb, "--%s\r\n", boundary)
		sb.WriteString("Content-Type: text/plain; charset=UTF-8\r\n\r\n")
		sb.WriteString(msg.TextBody)
		sb.WriteString("\r\n")
		fmt.Fprintf(&sb, "--%s\r\n", boundary)
		sb.WriteString("Content-Type: text/html; charset=UTF-8\r\n\r\n")
		sb.WriteString(msg.HTMLBody)
		sb.WriteString("\r\n")
		fmt.Fprintf(&sb, "--%s--", boundary)
		return sb.String(), fmt.Sprintf("multipart/alternative; boundary=%s", boundary)
	}
	if msg.HTMLBody != "" {
		return msg.HTMLBody, "text/html; charset=UTF-8"
	}
	return msg.TextBody, "text/plain; charset=UTF-8"
}

func multipartBoundary() string {
	var b [12]byte
	if _, err := rand.Read(b[:]); err != nil {
		return "aslboq-boundary-fallback"
	}
	return "aslboq-boundary-" + hex.EncodeToString(b[:])
}

// LogMailer writes delivery metadata to the process log instead of
// sending. Used when no SMTP relay is configured, typically local
// development. The body is withheld: verification codes travel in it and
// must never reach the log, even if this fallback activates in production
// because SMTP_HOST went missing.
type LogMailer struct{}

func (LogMailer) Send(_ context.Context, msg Message) error {
	log.Printf("mail (not sent, no SMTP configured): to=%s subject=%q body_bytes=%d",
		msg.To, msg.Subject, len(msg.TextBody)+len(msg.HTMLBody))
	return nil
}
