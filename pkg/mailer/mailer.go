package mailer

import (
	"context"
	"fmt"

	"gopkg.in/gomail.v2"
)

// Message is a single outbound HTML email.
type Message struct {
	To      string
	Subject string
	HTML    string
}

//go:generate mockgen -source=mailer.go -destination=mocks/mailer_mock.go -package=mocks Mailer
type Mailer interface {
	Send(ctx context.Context, msg Message) error
}

type Options struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
}

type smtpMailer struct {
	dialer *gomail.Dialer
	from   string
}

func NewSMTPMailer(opts Options) Mailer {
	from := opts.From
	if from == "" {
		from = opts.Username
	}

	return &smtpMailer{
		dialer: gomail.NewDialer(opts.Host, opts.Port, opts.Username, opts.Password),
		from:   from,
	}
}

func (m *smtpMailer) Send(ctx context.Context, msg Message) error {
	if msg.To == "" {
		return fmt.Errorf("mailer: empty recipient")
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	message := gomail.NewMessage()
	message.SetHeader("From", m.from)
	message.SetHeader("To", msg.To)
	message.SetHeader("Subject", msg.Subject)
	message.SetBody("text/html", msg.HTML)

	if err := m.dialer.DialAndSend(message); err != nil {
		return fmt.Errorf("failed to send email to %s: %w", msg.To, err)
	}
	return nil
}
