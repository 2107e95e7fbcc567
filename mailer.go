package accounts

import (
	"context"
	"fmt"
	"net/smtp"
	"strings"
)

// SMTPMailer sends mail through a plain-auth SMTP relay
type SMTPMailer struct {
	host     string
	port     string
	username string
	password string
	from     string
	logger   Logger
}

var _ Mailer = (*SMTPMailer)(nil)

func NewSMTPMailer(host, port, username, password, from string) *SMTPMailer {
	if from == "" {
		from = username
	}
	return &SMTPMailer{
		host:     host,
		port:     port,
		username: username,
		password: password,
		from:     from,
		logger:   defLogger{},
	}
}

func (m *SMTPMailer) WithLogger(logger Logger) *SMTPMailer {
	if logger != nil {
		m.logger = logger
	}
	return m
}

func (m *SMTPMailer) Send(ctx context.Context, to, subject, body string) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
	}

	auth := smtp.PlainAuth("", m.username, m.password, m.host)
	addr := fmt.Sprintf("%s:%s", m.host, m.port)

	message := strings.Join([]string{
		fmt.Sprintf("From: %s", m.from),
		fmt.Sprintf("To: %s", to),
		fmt.Sprintf("Subject: %s", subject),
		"",
		body,
	}, "\r\n")

	if err := smtp.SendMail(addr, auth, m.from, []string{to}, []byte(message)); err != nil {
		m.logger.Error("SMTPMailer send error", "to", to, "error", err)
		return err
	}

	return nil
}

// logMailer prints the notification instead of delivering it. Used when
// SMTP is not configured, typically local development.
type logMailer struct {
	logger Logger
}

var _ Mailer = logMailer{}

func (m logMailer) Send(_ context.Context, to, subject, body string) error {
	m.logger.Info("mail notification", "to", to, "subject", subject, "body", body)
	return nil
}
