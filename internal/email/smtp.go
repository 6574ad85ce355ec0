// Package email entrega códigos MFA por SMTP. Es el colaborador de transporte
// del factor: el core sólo ve la interfaz CodeSender.
package email

import (
	"context"
	"crypto/tls"
	"fmt"
	"time"

	mail "github.com/go-mail/mail"

	"github.com/dropDatabas3/authgate/internal/multifactor"
	"github.com/dropDatabas3/authgate/internal/session"
)

// RecipientFunc resuelve el destinatario para el request en curso.
type RecipientFunc func(ctx context.Context) (string, error)

// SessionRecipient resuelve el destinatario desde el principal guardado en la
// sesión. Alcanza con que el principal serialice un campo "email".
func SessionRecipient() RecipientFunc {
	return func(ctx context.Context) (string, error) {
		sess, ok := session.FromContext(ctx)
		if !ok {
			return "", fmt.Errorf("email: no session in context")
		}
		var principal struct {
			Email string `json:"email"`
		}
		if err := session.AuthenticatedPrincipal(sess, &principal); err != nil {
			return "", fmt.Errorf("email: no principal in session: %w", err)
		}
		if principal.Email == "" {
			return "", fmt.Errorf("email: principal has no email")
		}
		return principal.Email, nil
	}
}

// SMTPConfig configura el envío.
type SMTPConfig struct {
	Host               string
	Port               int
	From               string
	User               string
	Pass               string
	TLSMode            string // "auto" | "starttls" | "ssl" | "none"
	InsecureSkipVerify bool   // sólo dev
	Subject            string
}

// SMTPSender implementa multifactor.CodeSender contra un servidor SMTP.
type SMTPSender struct {
	cfg       SMTPConfig
	recipient RecipientFunc
}

// NewSMTPSender crea el sender con el resolver de destinatario inyectado.
func NewSMTPSender(cfg SMTPConfig, recipient RecipientFunc) *SMTPSender {
	if cfg.Subject == "" {
		cfg.Subject = "Your login code"
	}
	if cfg.TLSMode == "" {
		cfg.TLSMode = "auto"
	}
	return &SMTPSender{cfg: cfg, recipient: recipient}
}

func (s *SMTPSender) SendCode(ctx context.Context, code multifactor.RandomCode) error {
	to, err := s.recipient(ctx)
	if err != nil {
		return err
	}
	minutes := int(time.Until(code.ValidUntil).Minutes()) + 1

	m := mail.NewMessage()
	m.SetHeader("From", s.cfg.From)
	m.SetHeader("To", to)
	m.SetHeader("Subject", s.cfg.Subject)
	m.SetBody("text/plain", fmt.Sprintf(
		"Your one-time login code is %s. It is valid for %d minutes.",
		code.Value, minutes,
	))
	m.AddAlternative("text/html", fmt.Sprintf(
		"<p>Your one-time login code is <b>%s</b>.</p><p>It is valid for %d minutes.</p>",
		code.Value, minutes,
	))

	d := mail.NewDialer(s.cfg.Host, s.cfg.Port, s.cfg.User, s.cfg.Pass)
	d.TLSConfig = &tls.Config{
		ServerName:         s.cfg.Host,
		InsecureSkipVerify: s.cfg.InsecureSkipVerify,
	}
	switch s.cfg.TLSMode {
	case "ssl":
		d.SSL = true
	case "none":
		d.TLSConfig = &tls.Config{InsecureSkipVerify: s.cfg.InsecureSkipVerify}
	default:
		// "auto"/"starttls": go-mail negocia STARTTLS si el server lo ofrece
	}

	if err := d.DialAndSend(m); err != nil {
		return fmt.Errorf("smtp send: %w", err)
	}
	return nil
}
