// utils/email.go
package utils

import (
	"fmt"
	"html"
	"net/http"
	"strings"

	"github.com/keighl/postmark"
	"github.com/pkg/errors"
	"github.com/sendgrid/sendgrid-go"
	"github.com/sendgrid/sendgrid-go/helpers/mail"
	"github.com/sirupsen/logrus"

	"go-storefront/payment"
)

// Mail providers selectable with MAIL_PROVIDER
const (
	MailProviderPostmark = "postmark"
	MailProviderSendgrid = "sendgrid"
	MailProviderNone     = "none"
)

// Mailer sends a single email
type Mailer interface {
	SendEmail(toEmail, subject, htmlContent string) error
}

// PostmarkMailer sends email using Postmark
type PostmarkMailer struct {
	client *postmark.Client
	from   string
}

// NewPostmarkMailer returns a Postmark-backed Mailer
func NewPostmarkMailer(apiToken, from string) *PostmarkMailer {
	return &PostmarkMailer{
		client: postmark.NewClient(apiToken, ""),
		from:   from,
	}
}

func (m *PostmarkMailer) SendEmail(toEmail, subject, htmlContent string) error {
	_, err := m.client.SendEmail(postmark.Email{
		From:     m.from,
		To:       toEmail,
		Subject:  subject,
		HtmlBody: htmlContent,
		TextBody: htmlContent,
	})
	if err != nil {
		return errors.Wrap(err, "postmark: send email")
	}
	return nil
}

// SendgridMailer sends email using SendGrid
type SendgridMailer struct {
	from string
	send func(*mail.SGMailV3) (int, string, error)
}

// NewSendgridMailer returns a SendGrid-backed Mailer
func NewSendgridMailer(apiKey, from string) *SendgridMailer {
	client := sendgrid.NewSendClient(apiKey)
	return &SendgridMailer{
		from: from,
		send: func(msg *mail.SGMailV3) (int, string, error) {
			resp, err := client.Send(msg)
			if err != nil {
				return 0, "", err
			}
			return resp.StatusCode, resp.Body, nil
		},
	}
}

func (m *SendgridMailer) SendEmail(toEmail, subject, htmlContent string) error {
	msg := mail.NewSingleEmail(
		mail.NewEmail("", m.from),
		subject,
		mail.NewEmail("", toEmail),
		htmlContent,
		htmlContent,
	)
	status, body, err := m.send(msg)
	if err != nil {
		return errors.Wrap(err, "sendgrid: send email")
	}
	if status < http.StatusOK || status >= http.StatusMultipleChoices {
		return errors.Errorf("sendgrid: status %d: %s", status, body)
	}
	return nil
}

// LogMailer only logs what would have been sent
type LogMailer struct {
	Log logrus.FieldLogger
}

func (m LogMailer) SendEmail(toEmail, subject, _ string) error {
	m.Log.WithFields(logrus.Fields{"to": toEmail, "subject": subject}).Info("email not sent, no mail provider configured")
	return nil
}

// NewMailer picks the provider named in cfg. Without credentials it falls
// back to LogMailer.
func NewMailer(cfg Config, logger logrus.FieldLogger) (Mailer, error) {
	switch cfg.MailProvider {
	case MailProviderPostmark:
		if cfg.PostmarkAPIToken == "" {
			return nil, errors.New("POSTMARK_API_TOKEN is not set")
		}
		return NewPostmarkMailer(cfg.PostmarkAPIToken, cfg.EmailSender), nil
	case MailProviderSendgrid:
		if cfg.SendgridAPIKey == "" {
			return nil, errors.New("SENDGRID_API_KEY is not set")
		}
		return NewSendgridMailer(cfg.SendgridAPIKey, cfg.EmailSender), nil
	case "", MailProviderNone:
		switch {
		case cfg.PostmarkAPIToken != "":
			return NewPostmarkMailer(cfg.PostmarkAPIToken, cfg.EmailSender), nil
		case cfg.SendgridAPIKey != "":
			return NewSendgridMailer(cfg.SendgridAPIKey, cfg.EmailSender), nil
		}
		return LogMailer{Log: logger}, nil
	}
	return nil, errors.Errorf("unknown mail provider %q", cfg.MailProvider)
}

// SendOrderConfirmationEmail sends the receipt for a paid checkout session
func SendOrderConfirmationEmail(m Mailer, details payment.SessionDetails) error {
	if details.CustomerEmail == "" {
		return errors.Errorf("session %s has no customer email", details.ID)
	}
	subject := "Order Confirmation"
	htmlContent := fmt.Sprintf(
		"<strong>Dear Customer,</strong><br><br>Thank you for your purchase! Your order (ref: %s) has been placed successfully.<br><br>Total Amount: <strong>%s %s</strong><br><br>Thank you for shopping with us!",
		html.EscapeString(details.ID),
		details.AmountTotal.StringFixed(2),
		html.EscapeString(strings.ToUpper(details.Currency)),
	)
	return m.SendEmail(details.CustomerEmail, subject, htmlContent)
}
