package notifier

import (
	"context"
	"fmt"
	"strings"
	"text/template"

	gomail "gopkg.in/mail.v2"
)

const smtpBodyTemplate = `An error has been observed by the access-request engine.

Error type:  {{.ErrorType}}
Service:     {{.ServiceName}}
Occurrences: {{.Count}} (first seen {{.FirstSeen}})
Last seen:   {{.LastSeen}}

{{.Message}}
`

// SMTPConfig configures the SMTP delivery channel.
type SMTPConfig struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
	To       []string
}

// SMTPChannel delivers notifications by email via gopkg.in/mail.v2.
type SMTPChannel struct {
	cfg    SMTPConfig
	dialer *gomail.Dialer
	body   *template.Template
}

// NewSMTPChannel constructs an SMTPChannel.
func NewSMTPChannel(cfg SMTPConfig) *SMTPChannel {
	return &SMTPChannel{
		cfg:    cfg,
		dialer: gomail.NewDialer(cfg.Host, cfg.Port, cfg.Username, cfg.Password),
		body:   template.Must(template.New("smtp-notification").Parse(smtpBodyTemplate)),
	}
}

// Send implements Channel.
func (c *SMTPChannel) Send(ctx context.Context, n Notification) error {
	var body strings.Builder
	if err := c.body.Execute(&body, n); err != nil {
		return fmt.Errorf("render notification body: %w", err)
	}

	m := gomail.NewMessage()
	m.SetHeader("From", c.cfg.From)
	m.SetHeader("To", c.cfg.To...)
	m.SetHeader("Subject", fmt.Sprintf("[access-request-engine] %s in %s", n.ErrorType, n.ServiceName))
	m.SetBody("text/plain", body.String())

	if err := c.dialer.DialAndSend(m); err != nil {
		return fmt.Errorf("smtp send: %w", err)
	}
	return nil
}
