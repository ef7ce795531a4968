package notify

import (
	"context"
	"fmt"

	"github.com/sony/gobreaker/v2"
	gomail "gopkg.in/gomail.v2"
)

// Message is one outbound e-mail.
type Message struct {
	To      string
	Subject string
	Body    string
}

// Mailer delivers a message. Implementations report transport failures as
// errors; they never touch order state.
type Mailer interface {
	Send(ctx context.Context, msg Message) error
}

// SMTPMailer sends through an SMTP relay. The circuit breaker keeps a dead
// relay from stalling every webhook and admin action behind dial timeouts.
type SMTPMailer struct {
	dialer  *gomail.Dialer
	from    string
	breaker *gobreaker.CircuitBreaker[struct{}]
}

func NewSMTPMailer(host string, port int, username, password, from string) *SMTPMailer {
	return &SMTPMailer{
		dialer: gomail.NewDialer(host, port, username, password),
		from:   from,
		breaker: gobreaker.NewCircuitBreaker[struct{}](gobreaker.Settings{
			Name: "smtp",
		}),
	}
}

func (m *SMTPMailer) Send(ctx context.Context, msg Message) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	mail := gomail.NewMessage()
	mail.SetHeader("From", m.from)
	mail.SetHeader("To", msg.To)
	mail.SetHeader("Subject", msg.Subject)
	mail.SetBody("text/plain", msg.Body)

	_, err := m.breaker.Execute(func() (struct{}, error) {
		return struct{}{}, m.dialer.DialAndSend(mail)
	})
	if err != nil {
		return fmt.Errorf("smtp send to %s failed: %w", msg.To, err)
	}
	return nil
}
