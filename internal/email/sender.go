package email

import (
	"bytes"
	"fmt"
	"html/template"
	"os"

	"gopkg.in/gomail.v2"
)

// Message is one outbound email.
type Message struct {
	To       []string
	Subject  string
	HTMLBody string
	TextBody string
}

// Sender is the email delivery channel.
type Sender interface {
	Send(msg *Message) error
	SendTemplate(to []string, subject, templateName string, data any) error
}

type Config struct {
	Host      string
	Port      int
	Username  string
	Password  string
	FromEmail string
	FromName  string
	// TemplatesDir holds *.html templates; optional.
	TemplatesDir string
}

func (c Config) Validate() error {
	if c.Host == "" {
		return fmt.Errorf("SMTP host is required")
	}
	if c.Port <= 0 || c.Port > 65535 {
		return fmt.Errorf("invalid SMTP port: %d", c.Port)
	}
	if c.FromEmail == "" {
		return fmt.Errorf("from address is required")
	}
	return nil
}

// SMTPSender delivers mail through gomail.
type SMTPSender struct {
	config    Config
	dialer    *gomail.Dialer
	templates *template.Template
}

func NewSMTPSender(config Config) (Sender, error) {
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid email config: %w", err)
	}

	s := &SMTPSender{
		config: config,
		dialer: gomail.NewDialer(config.Host, config.Port, config.Username, config.Password),
	}

	if config.TemplatesDir != "" {
		if _, err := os.Stat(config.TemplatesDir); err == nil {
			tmpl, err := template.ParseGlob(config.TemplatesDir + "/*.html")
			if err != nil {
				return nil, fmt.Errorf("failed to parse email templates: %w", err)
			}
			s.templates = tmpl
		}
	}

	return s, nil
}

func (s *SMTPSender) Send(msg *Message) error {
	if len(msg.To) == 0 {
		return fmt.Errorf("no recipients specified")
	}

	m := gomail.NewMessage()
	m.SetAddressHeader("From", s.config.FromEmail, s.config.FromName)
	m.SetHeader("To", msg.To...)
	m.SetHeader("Subject", msg.Subject)

	if msg.TextBody != "" {
		m.SetBody("text/plain", msg.TextBody)
		if msg.HTMLBody != "" {
			m.AddAlternative("text/html", msg.HTMLBody)
		}
	} else {
		m.SetBody("text/html", msg.HTMLBody)
	}

	return s.dialer.DialAndSend(m)
}

func (s *SMTPSender) SendTemplate(to []string, subject, templateName string, data any) error {
	if s.templates == nil {
		return fmt.Errorf("no email templates configured")
	}

	var buf bytes.Buffer
	if err := s.templates.ExecuteTemplate(&buf, templateName, data); err != nil {
		return fmt.Errorf("failed to render template %q: %w", templateName, err)
	}

	return s.Send(&Message{
		To:       to,
		Subject:  subject,
		HTMLBody: buf.String(),
	})
}
