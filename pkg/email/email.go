package email

import (
	"fmt"
	"net/smtp"
	"strings"
)

// Message is a plain text email.
type Message struct {
	To      string
	ReplyTo string
	Subject string
	Body    string
}

// SendFunc matches smtp.SendMail so tests can capture outgoing mail.
type SendFunc func(addr string, a smtp.Auth, from string, to []string, msg []byte) error

// SMTPMailer sends plain text email through an SMTP relay.
type SMTPMailer struct {
	Host     string
	Port     string
	User     string
	Password string
	From     string

	send SendFunc
}

// NewSMTPMailer creates a mailer. When user is empty the sender address is used
// for authentication.
func NewSMTPMailer(host, port, user, password, from string) *SMTPMailer {
	if user == "" {
		user = from
	}
	return &SMTPMailer{Host: host, Port: port, User: user, Password: password, From: from, send: smtp.SendMail}
}

// WithSendFunc replaces the transport.
func (m *SMTPMailer) WithSendFunc(fn SendFunc) *SMTPMailer {
	m.send = fn
	return m
}

// Send delivers msg and returns a short receipt describing the relay used.
func (m *SMTPMailer) Send(msg Message) (string, error) {
	if m.Host == "" || m.From == "" {
		return "", fmt.Errorf("smtp relay not configured")
	}

	var b strings.Builder
	b.WriteString("From: " + m.From + "\r\n")
	b.WriteString("To: " + msg.To + "\r\n")
	if msg.ReplyTo != "" {
		b.WriteString("Reply-To: " + sanitizeHeader(msg.ReplyTo) + "\r\n")
	}
	b.WriteString("Subject: " + sanitizeHeader(msg.Subject) + "\r\n")
	b.WriteString("Content-Type: text/plain; charset=UTF-8\r\n")
	b.WriteString("\r\n" + msg.Body + "\r\n")

	auth := smtp.PlainAuth("", m.User, m.Password, m.Host)
	address := m.Host + ":" + m.Port

	if err := m.send(address, auth, m.From, []string{msg.To}, []byte(b.String())); err != nil {
		return "", fmt.Errorf("failed to send email: %w", err)
	}
	return "queued via " + address, nil
}

func sanitizeHeader(v string) string {
	return strings.NewReplacer("\r", " ", "\n", " ").Replace(v)
}
