package infra

import (
	"errors"
	"fmt"
	"net/smtp"

	"inventorypos/internal/config"

	"github.com/jordan-wright/email"
)

// ErrMailerDisabled is returned when no SMTP host is configured.
var ErrMailerDisabled = errors.New("mailer: smtp not configured")

// Message is one outgoing e-mail. Attachment is a file path and may be empty.
type Message struct {
	To         string
	Subject    string
	Body       string
	Attachment string
}

// Mailer sends e-mail over SMTP through a circuit breaker, so a dead mail
// server fails fast instead of stalling every worker.
type Mailer struct {
	host     string
	user     string
	password string
	from     string
	addr     string
	breaker  *CircuitBreaker
	send     func(e *email.Email, addr string, auth smtp.Auth) error
}

func NewMailer(cfg *config.Config) *Mailer {
	return &Mailer{
		host:     cfg.SMTPHost,
		user:     cfg.SMTPUser,
		password: cfg.SMTPPassword,
		from:     fmt.Sprintf("%s <%s>", cfg.StoreName, cfg.SMTPUser),
		addr:     fmt.Sprintf("%s:%d", cfg.SMTPHost, cfg.SMTPPort),
		breaker:  NewCircuitBreaker(DefaultCBConfig()),
		send: func(e *email.Email, addr string, auth smtp.Auth) error {
			return e.Send(addr, auth)
		},
	}
}

// Enabled reports whether an SMTP host is configured.
func (m *Mailer) Enabled() bool { return m != nil && m.host != "" }

// BreakerState exposes the circuit state for the health endpoint.
func (m *Mailer) BreakerState() CBState { return m.breaker.State() }

// Send delivers msg, attaching the file at msg.Attachment when set.
func (m *Mailer) Send(msg Message) error {
	if !m.Enabled() {
		return ErrMailerDisabled
	}
	e := email.NewEmail()
	e.From = m.from
	e.To = []string{msg.To}
	e.Subject = msg.Subject
	e.Text = []byte(msg.Body)

	if msg.Attachment != "" {
		if _, err := e.AttachFile(msg.Attachment); err != nil {
			return fmt.Errorf("mailer: attach %s: %w", msg.Attachment, err)
		}
	}

	var auth smtp.Auth
	if m.user != "" {
		auth = smtp.PlainAuth("", m.user, m.password, m.host)
	}
	return m.breaker.Execute(func() error {
		return m.send(e, m.addr, auth)
	})
}
