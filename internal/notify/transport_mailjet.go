package notify

import (
	"context"
	"fmt"

	"github.com/mailjet/mailjet-apiv3-go"
)

// MailjetTransport sends through the Mailjet v3.1 Send API.
type MailjetTransport struct {
	client *mailjet.Client
}

func NewMailjetTransport(apiKey, secretKey string) *MailjetTransport {
	return &MailjetTransport{client: mailjet.NewMailjetClient(apiKey, secretKey)}
}

// Send issues one request.  The client does not take a context; ctx is
// only checked before the call.
func (t *MailjetTransport) Send(ctx context.Context, msg Message) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	res, err := t.client.SendMailV31(toMailjetMessages(msg))
	if err != nil {
		return "", fmt.Errorf("mailjet: %w", err)
	}
	if len(res.ResultsV31) == 0 {
		return "", fmt.Errorf("mailjet: empty response")
	}
	r := res.ResultsV31[0]
	if r.Status != "success" {
		return "", fmt.Errorf("mailjet: status %q", r.Status)
	}
	if len(r.To) > 0 {
		return r.To[0].MessageUUID, nil
	}
	return "", nil
}

func toMailjetMessages(msg Message) *mailjet.MessagesV31 {
	to := make(mailjet.RecipientsV31, 0, len(msg.To))
	for _, a := range msg.To {
		to = append(to, mailjet.RecipientV31{Email: a.Email, Name: a.Name})
	}
	info := mailjet.InfoMessagesV31{
		From:     &mailjet.RecipientV31{Email: msg.From.Email, Name: msg.From.Name},
		To:       &to,
		Subject:  msg.Subject,
		HTMLPart: msg.HTML,
		TextPart: msg.Text,
	}
	if msg.ReplyTo != nil {
		info.ReplyTo = &mailjet.RecipientV31{Email: msg.ReplyTo.Email, Name: msg.ReplyTo.Name}
	}
	return &mailjet.MessagesV31{Info: []mailjet.InfoMessagesV31{info}}
}
