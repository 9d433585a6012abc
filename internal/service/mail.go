package service

import (
	"context"
	"errors"
	"fmt"
	"html"
	"time"

	"go.uber.org/zap"
	"gopkg.in/gomail.v2"
)

// Mailer delivers magic links
type Mailer interface {
	SendMagicLink(ctx context.Context, to, link string, ttl time.Duration) error
}

type SMTPConfig struct {
	Host          string
	Port          int
	Username      string
	Password      string
	SenderAddress string
}

type SMTPMailer struct {
	cfg SMTPConfig
	d   *gomail.Dialer
}

func NewSMTPMailer(cfg SMTPConfig) *SMTPMailer {
	return &SMTPMailer{
		cfg: cfg,
		d:   gomail.NewDialer(cfg.Host, cfg.Port, cfg.Username, cfg.Password),
	}
}

func (s *SMTPMailer) SendMagicLink(_ context.Context, to, link string, ttl time.Duration) error {
	if to == s.cfg.SenderAddress {
		return errors.New("invalid email address")
	}

	m := gomail.NewMessage()
	m.SetHeader("From", s.cfg.SenderAddress)
	m.SetHeader("To", to)
	m.SetHeader("Subject", "Tu enlace de acceso a Claude Code en Español")
	m.SetBody("text/html", magicLinkBody(link, ttl))

	if err := s.d.DialAndSend(m); err != nil {
		return fmt.Errorf("failed to send magic link email, %w", err)
	}

	return nil
}

func magicLinkBody(link string, ttl time.Duration) string {
	return fmt.Sprintf(`<p>¡Hola!</p>
<p>Haz clic <a href="%s">aquí</a> para acceder a Claude Code en Español.</p>
<p>Este enlace caduca en %d minutos y solo se puede usar una vez.</p>
<p>Si no has solicitado este email, puedes ignorarlo.</p>`, html.EscapeString(link), int(ttl.Minutes()))
}

// LogMailer is used when mail is disabled, the link ends up in the logs
type LogMailer struct{}

func (LogMailer) SendMagicLink(_ context.Context, to, link string, ttl time.Duration) error {
	zap.L().Info("Mail disabled, magic link not sent",
		zap.String("to", to),
		zap.String("link", link),
		zap.Duration("ttl", ttl))

	return nil
}
