package notify

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/oklog/ulid/v2"
	"github.com/wneessen/go-mail"
)

// SMTPConfig configures SMTPTransport.  Secure selects implicit TLS
// (usually port 465); otherwise the server's STARTTLS offer is used.
type SMTPConfig struct {
	Host     string
	Port     int
	Secure   bool
	User     string
	Password string
	Timeout  time.Duration
}

// SMTPTransport sends mail through an authenticated SMTP relay.
type SMTPTransport struct {
	cfg SMTPConfig
}

func NewSMTPTransport(cfg SMTPConfig) *SMTPTransport {
	if cfg.Timeout <= 0 {
		cfg.Timeout = 15 * time.Second
	}
	return &SMTPTransport{cfg: cfg}
}

// Send dials the relay, delivers msg and hangs up.  Cancelling ctx aborts
// the dial or the transaction in flight.
func (t *SMTPTransport) Send(ctx context.Context, msg Message) (string, error) {
	if len(msg.To) == 0 {
		return "", fmt.Errorf("smtp: no recipients")
	}
	id := messageID(msg.From.Email)
	m, err := buildMessage(msg, id, time.Now())
	if err != nil {
		return "", fmt.Errorf("smtp: %w", err)
	}
	c, err := mail.NewClient(t.cfg.Host, t.clientOptions()...)
	if err != nil {
		return "", fmt.Errorf("smtp: %w", err)
	}
	if err := c.DialAndSendWithContext(ctx, m); err != nil {
		return "", fmt.Errorf("smtp: %w", err)
	}
	return id, nil
}

func (t *SMTPTransport) clientOptions() []mail.Option {
	opts := []mail.Option{
		mail.WithPort(t.cfg.Port),
		mail.WithTimeout(t.cfg.Timeout),
	}
	if t.cfg.Secure {
		opts = append(opts, mail.WithSSL())
	} else {
		opts = append(opts, mail.WithTLSPolicy(mail.TLSOpportunistic))
	}
	if t.cfg.User != "" {
		opts = append(opts,
			mail.WithSMTPAuth(mail.SMTPAuthPlain),
			mail.WithUsername(t.cfg.User),
			mail.WithPassword(t.cfg.Password),
		)
	}
	return opts
}

// messageID returns an RFC 5322 Message-ID in the sender's domain.
func messageID(from string) string {
	domain := "localhost"
	if i := strings.LastIndexByte(from, '@'); i >= 0 && i < len(from)-1 {
		domain = from[i+1:]
	}
	return "<" + ulid.Make().String() + "@" + domain + ">"
}

// buildMessage renders msg as an HTML message, with a plain-text
// alternative when Text is set.
func buildMessage(msg Message, id string, now time.Time) (*mail.Msg, error) {
	m := mail.NewMsg()
	if err := m.FromFormat(sanitizeHeader(msg.From.Name), msg.From.Email); err != nil {
		return nil, fmt.Errorf("from: %w", err)
	}
	for _, a := range msg.To {
		if err := m.AddToFormat(sanitizeHeader(a.Name), a.Email); err != nil {
			return nil, fmt.Errorf("to: %w", err)
		}
	}
	if msg.ReplyTo != nil {
		if err := m.ReplyToFormat(sanitizeHeader(msg.ReplyTo.Name), msg.ReplyTo.Email); err != nil {
			return nil, fmt.Errorf("reply-to: %w", err)
		}
	}
	m.Subject(sanitizeHeader(msg.Subject))
	m.SetDateWithValue(now)
	m.SetMessageIDWithValue(strings.Trim(id, "<>"))
	m.SetBodyString(mail.TypeTextHTML, msg.HTML)
	if msg.Text != "" {
		m.AddAlternativeString(mail.TypeTextPlain, msg.Text)
	}
	return m, nil
}

// sanitizeHeader strips CR and LF so user input cannot inject headers.
func sanitizeHeader(v string) string {
	return strings.NewReplacer("\r", "", "\n", "").Replace(v)
}
