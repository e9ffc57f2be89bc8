package notify

import (
	"context"
	"fmt"

	"github.com/sendgrid/rest"
	"github.com/sendgrid/sendgrid-go"
	"github.com/sendgrid/sendgrid-go/helpers/mail"
)

// mailSender is the part of *sendgrid.Client the email channel uses.
type mailSender interface {
	SendWithContext(ctx context.Context, email *mail.SGMailV3) (*rest.Response, error)
}

// EmailChannel sends notifications through SendGrid.
type EmailChannel struct {
	client mailSender
	from   *mail.Email
}

func NewEmailChannel(apiKey, fromAddress, fromName string) *EmailChannel {
	return newEmailChannel(sendgrid.NewSendClient(apiKey), fromAddress, fromName)
}

func newEmailChannel(client mailSender, fromAddress, fromName string) *EmailChannel {
	return &EmailChannel{client: client, from: mail.NewEmail(fromName, fromAddress)}
}

func (c *EmailChannel) Name() string { return "sendgrid" }

func (c *EmailChannel) Send(ctx context.Context, msg Message) error {
	if msg.Email == "" {
		return ErrSkipped
	}

	to := mail.NewEmail(msg.Name, msg.Email)
	html := fmt.Sprintf("<html><body><h2>%s</h2><p>%s</p></body></html>", msg.Title, msg.Body)
	message := mail.NewSingleEmail(c.from, msg.Title, to, msg.Body, html)

	resp, err := c.client.SendWithContext(ctx, message)
	if err != nil {
		return fmt.Errorf("failed to send email: %w", err)
	}
	if resp.StatusCode >= 400 {
		return fmt.Errorf("sendgrid error: status %d, body: %s", resp.StatusCode, resp.Body)
	}
	return nil
}
