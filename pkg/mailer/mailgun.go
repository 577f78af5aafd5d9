package mailer

import (
	"context"
	"time"

	mg "github.com/mailgun/mailgun-go/v4"
	"github.com/samber/oops"
)

// Sender delivers a single composed message.
type Sender interface {
	Send(ctx context.Context, job EmailJob) error
}

// Mailgun wraps Mailgun client configuration.
type Mailgun struct {
	Domain  string
	Sender  string
	Timeout time.Duration
	client  *mg.MailgunImpl
}

func NewMailgun(domain, apiKey, sender string) *Mailgun {
	return &Mailgun{
		Domain:  domain,
		Sender:  sender,
		Timeout: 10 * time.Second,
		client:  mg.NewMailgun(domain, apiKey),
	}
}

// Send sends job via Mailgun. HTML is optional; Text is always set.
func (m *Mailgun) Send(ctx context.Context, job EmailJob) error {
	msg := m.client.NewMessage(m.Sender, job.Subject, job.Text, job.To)
	if job.HTML != "" {
		msg.SetHtml(job.HTML)
	}
	c, cancel := context.WithTimeout(ctx, m.Timeout)
	defer cancel()
	if _, _, err := m.client.Send(c, msg); err != nil {
		return oops.Code("MAILGUN_SEND").With("domain", m.Domain).With("template", job.Template).Wrap(err)
	}
	return nil
}

// SetAPIBase points the client at another Mailgun region or a test server.
func (m *Mailgun) SetAPIBase(url string) {
	m.client.SetAPIBase(url)
}
