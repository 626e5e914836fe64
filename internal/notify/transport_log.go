package notify

import (
	"context"
	"log/slog"

	"github.com/oklog/ulid/v2"
)

// LogTransport writes messages to the logger instead of sending them.  It
// is the default when no mail server is configured.
type LogTransport struct {
	log *slog.Logger
}

func NewLogTransport(log *slog.Logger) *LogTransport {
	if log == nil {
		log = slog.Default()
	}
	return &LogTransport{log: log}
}

func (t *LogTransport) Send(ctx context.Context, msg Message) (string, error) {
	id := ulid.Make().String()
	to := make([]string, 0, len(msg.To))
	for _, a := range msg.To {
		to = append(to, a.Email)
	}
	attrs := []any{"message_id", id, "from", msg.From.Email, "to", to, "subject", msg.Subject, "html_bytes", len(msg.HTML)}
	if msg.ReplyTo != nil {
		attrs = append(attrs, "reply_to", msg.ReplyTo.Email)
	}
	t.log.InfoContext(ctx, "notify.log_transport.message", attrs...)
	return id, nil
}
