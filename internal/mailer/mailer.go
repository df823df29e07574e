package mailer

import (
	"fmt"
	"strings"

	"gopkg.in/gomail.v2"
)

// Config holds the SMTP transport settings for a run.
type Config struct {
	Host     string
	Port     int
	SSL      bool // implicit TLS; STARTTLS is negotiated opportunistically otherwise
	From     string
	Password string
}

// Message is one outgoing email: plain-text body plus an optional single
// attachment, addressed to every recipient in one To header.
type Message struct {
	To             []string
	Subject        string
	Body           string
	AttachmentPath string
}

// Mailer composes and sends messages over SMTP.
type Mailer struct {
	cfg Config

	// sendFn performs the actual delivery; tests swap it to capture the
	// composed message instead of dialing.
	sendFn func(*gomail.Message) error
}

func New(cfg Config) *Mailer {
	m := &Mailer{cfg: cfg}
	m.sendFn = m.dialAndSend
	return m
}

// Send delivers one message. A failure affects only this message; callers
// keep processing subsequent records.
func (m *Mailer) Send(msg Message) error {
	if len(msg.To) == 0 {
		return fmt.Errorf("no recipients")
	}

	gm := gomail.NewMessage()
	gm.SetHeader("From", m.cfg.From)
	gm.SetHeader("To", msg.To...)
	gm.SetHeader("Subject", msg.Subject)
	gm.SetBody("text/plain", msg.Body)
	if msg.AttachmentPath != "" {
		gm.Attach(msg.AttachmentPath)
	}

	if err := m.sendFn(gm); err != nil {
		return fmt.Errorf("sending to %s: %w", strings.Join(msg.To, ", "), err)
	}
	return nil
}

func (m *Mailer) dialAndSend(gm *gomail.Message) error {
	d := gomail.NewDialer(m.cfg.Host, m.cfg.Port, m.cfg.From, m.cfg.Password)
	d.SSL = m.cfg.SSL
	return d.DialAndSend(gm)
}
