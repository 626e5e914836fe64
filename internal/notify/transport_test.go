package notify

import (
	"bytes"
	"context"
	"log/slog"
	"strings"
	"testing"
	"time"
)

func TestBuildMessage(t *testing.T) {
	msg := Message{
		From:    Address{Name: "SIRI", Email: "bookings@siri.test"},
		To:      []Address{{Email: "inbox@siri.test"}},
		ReplyTo: &Address{Name: "Ana", Email: "ana@example.com"},
		Subject: "New Reservation: Ana\r\nBcc: evil@x - 2025-06-01",
		HTML:    "<p>hello</p>",
	}
	m, err := buildMessage(msg, "<id@siri.test>", time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC))
	if err != nil {
		t.Fatal(err)
	}
	var buf bytes.Buffer
	if _, err := m.WriteTo(&buf); err != nil {
		t.Fatal(err)
	}
	s := buf.String()
	for _, want := range []string{
		`"SIRI" <bookings@siri.test>`,
		"<inbox@siri.test>",
		"Reply-To: ",
		`"Ana" <ana@example.com>`,
		"Message-ID: <id@siri.test>\r\n",
		"Content-Type: text/html; charset=UTF-8",
		"<p>hello</p>",
	} {
		if !strings.Contains(s, want) {
			t.Errorf("message missing %q:\n%s", want, s)
		}
	}
	if strings.Contains(s, "\r\nBcc:") {
		t.Fatal("header injection through subject")
	}
	if strings.Contains(s, "multipart/alternative") {
		t.Fatal("no alternative part without Text")
	}
}

func TestBuildMessageTextAlternative(t *testing.T) {
	msg := Message{
		From:    Address{Email: "bookings@siri.test"},
		To:      []Address{{Name: "Ana", Email: "ana@example.com"}},
		Subject: "Reservation Confirmed",
		HTML:    "<p>see you</p>",
		Text:    "see you",
	}
	m, err := buildMessage(msg, "<id@siri.test>", time.Now())
	if err != nil {
		t.Fatal(err)
	}
	var buf bytes.Buffer
	if _, err := m.WriteTo(&buf); err != nil {
		t.Fatal(err)
	}
	s := buf.String()
	if !strings.Contains(s, "multipart/alternative") || !strings.Contains(s, "text/plain") {
		t.Fatalf("expected html + text parts:\n%s", s)
	}
}

func TestBuildMessageRejectsBadAddress(t *testing.T) {
	msg := Message{From: Address{Email: "bookings@siri.test"}, To: []Address{{Email: "not an address"}}}
	if _, err := buildMessage(msg, "<id@siri.test>", time.Now()); err == nil {
		t.Fatal("expected error for invalid recipient")
	}
}

func TestSMTPTransportHonoursCancel(t *testing.T) {
	tr := NewSMTPTransport(SMTPConfig{Host: "127.0.0.1", Port: 1, Timeout: time.Second})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	msg := Message{From: Address{Email: "bookings@siri.test"}, To: []Address{{Email: "ana@example.com"}}, HTML: "x"}
	if _, err := tr.Send(ctx, msg); err == nil {
		t.Fatal("expected error with cancelled context")
	}
}

func TestMessageID(t *testing.T) {
	id := messageID("bookings@siri.test")
	if !strings.HasPrefix(id, "<") || !strings.HasSuffix(id, "@siri.test>") {
		t.Fatalf("messageID = %q", id)
	}
	if got := messageID("nobody"); !strings.HasSuffix(got, "@localhost>") {
		t.Fatalf("messageID without domain = %q", got)
	}
}

func TestToMailjetMessages(t *testing.T) {
	msg := Message{
		From:    Address{Name: "SIRI", Email: "bookings@siri.test"},
		To:      []Address{{Name: "Ana", Email: "ana@example.com"}},
		ReplyTo: &Address{Email: "staff@siri.test"},
		Subject: "s", HTML: "<p>h</p>", Text: "h",
	}
	got := toMailjetMessages(msg)
	if len(got.Info) != 1 {
		t.Fatalf("info len = %d", len(got.Info))
	}
	info := got.Info[0]
	if info.From.Email != "bookings@siri.test" || info.Subject != "s" || info.HTMLPart != "<p>h</p>" || info.TextPart != "h" {
		t.Fatalf("unexpected info: %+v", info)
	}
	if info.To == nil || len(*info.To) != 1 || (*info.To)[0].Email != "ana@example.com" {
		t.Fatalf("unexpected recipients: %+v", info.To)
	}
	if info.ReplyTo == nil || info.ReplyTo.Email != "staff@siri.test" {
		t.Fatalf("unexpected reply-to: %+v", info.ReplyTo)
	}
}

func TestLogTransport(t *testing.T) {
	var sb strings.Builder
	lt := NewLogTransport(slog.New(slog.NewJSONHandler(&sb, nil)))
	id, err := lt.Send(context.Background(), Message{To: []Address{{Email: "a@b.c"}}, Subject: "hi"})
	if err != nil || id == "" {
		t.Fatalf("Send = %q, %v", id, err)
	}
	if !strings.Contains(sb.String(), `"subject":"hi"`) {
		t.Fatalf("log line missing subject: %s", sb.String())
	}
}
