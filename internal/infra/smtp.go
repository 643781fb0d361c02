package infra

import (
	"bytes"
	"fmt"
	"net/smtp"

	"siso/internal/config"

	"github.com/jordan-wright/email"
)

// Mailer sends report mails over SMTP. Every send goes through the breaker
// so an unreachable server fails fast instead of stalling workers.
type Mailer struct {
	host     string
	user     string
	password string
	addr     string
	breaker  *Breaker
	send     func(e *email.Email, addr string, a smtp.Auth) error
}

func NewMailer(cfg *config.Config, breaker *Breaker) *Mailer {
	if breaker == nil {
		breaker = NewBreaker(BreakerConfig{})
	}
	return &Mailer{
		host:     cfg.SMTPHost,
		user:     cfg.SMTPUser,
		password: cfg.SMTPPassword,
		addr:     fmt.Sprintf("%s:%d", cfg.SMTPHost, cfg.SMTPPort),
		breaker:  breaker,
		send:     func(e *email.Email, addr string, a smtp.Auth) error { return e.Send(addr, a) },
	}
}

// SendRelatorio mails a PDF attachment held in memory.
func (m *Mailer) SendRelatorio(to, subject, body, filename string, pdf []byte) error {
	e := email.NewEmail()
	e.From = m.user
	e.To = []string{to}
	e.Subject = subject
	e.Text = []byte(body)
	if _, err := e.Attach(bytes.NewReader(pdf), filename, "application/pdf"); err != nil {
		return fmt.Errorf("mailer: attach PDF: %w", err)
	}

	var auth smtp.Auth
	if m.user != "" {
		auth = smtp.PlainAuth("", m.user, m.password, m.host)
	}
	return m.breaker.Do(func() error { return m.send(e, m.addr, auth) })
}

// BreakerState is exposed for the health endpoint.
func (m *Mailer) BreakerState() BreakerState { return m.breaker.State() }
