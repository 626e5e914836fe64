// Package notify renders and sends the reservation emails.  Sending goes
// through a Transport so the SMTP, Mailjet and log backends are
// interchangeable.  Dispatch is a single attempt; failures are reported in
// the Result and never retried.
package notify

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/iliyamo/siri-restaurant/internal/model"
)

// Address is a mailbox with an optional display name.
type Address struct {
	Name  string
	Email string
}

func (a Address) String() string {
	if a.Name == "" {
		return a.Email
	}
	return fmt.Sprintf("%q <%s>", a.Name, a.Email)
}

// Message is a rendered email ready for a Transport.
type Message struct {
	From    Address
	To      []Address
	ReplyTo *Address
	Subject string
	HTML    string
	Text    string
}

// Transport delivers one message and returns the provider's message id.
type Transport interface {
	Send(ctx context.Context, msg Message) (string, error)
}

// Outcome classifies a dispatch attempt.
type Outcome int

const (
	Delivered Outcome = iota
	DispatchFailed
)

func (o Outcome) String() string {
	if o == Delivered {
		return "delivered"
	}
	return "dispatch_failed"
}

// Kinds of notification, used in errors, logs and metrics.
const (
	KindNewReservation = "new_reservation"
	KindStatusUpdate   = "status_update"
)

// Result is what a dispatch produced.  Err is a *DispatchError when
// Outcome is DispatchFailed.
type Result struct {
	Outcome   Outcome
	Kind      string
	MessageID string
	Err       error
}

func (r Result) Delivered() bool { return r.Outcome == Delivered }

// DispatchError wraps a transport or rendering failure.
type DispatchError struct {
	Kind string
	To   string
	Err  error
}

func (e *DispatchError) Error() string {
	return fmt.Sprintf("notify: %s to %s: %v", e.Kind, e.To, e.Err)
}

func (e *DispatchError) Unwrap() error { return e.Err }

// ErrNoNotification is the cause when a status has no guest email.
var ErrNoNotification = errors.New("status has no notification")

// Restaurant holds the contact details printed in guest emails.
type Restaurant struct {
	Name    string
	Address string
	Phone   string
	Email   string
}

// Dispatcher renders the two reservation emails and hands them to a
// Transport.  It is safe for concurrent use when its Transport is.
type Dispatcher struct {
	transport  Transport
	from       Address
	inbox      string
	restaurant Restaurant
}

func NewDispatcher(t Transport, from Address, inbox string, r Restaurant) *Dispatcher {
	return &Dispatcher{transport: t, from: from, inbox: inbox, restaurant: r}
}

// NewReservation tells the restaurant inbox about a fresh request.  Reply-To
// is the guest so staff can answer directly.
func (d *Dispatcher) NewReservation(ctx context.Context, r model.Reservation) Result {
	html, err := renderNewReservation(newReservationView(r, d.restaurant))
	if err != nil {
		return failed(KindNewReservation, d.inbox, err)
	}
	msg := Message{
		From:    Address{Name: "SIRI Restaurant Reservations", Email: d.from.Email},
		To:      []Address{{Email: d.inbox}},
		ReplyTo: &Address{Name: r.Name, Email: r.Email},
		Subject: fmt.Sprintf("New Reservation: %s - %s at %s", r.Name, r.Date, r.Time),
		HTML:    html,
	}
	return d.send(ctx, KindNewReservation, msg)
}

// StatusUpdate tells the guest their reservation was accepted or
// cancelled.  Alternative times are only shown for a cancellation and only
// after blank entries are dropped.
func (d *Dispatcher) StatusUpdate(ctx context.Context, r model.Reservation, status model.ReservationStatus, alternativeTimes []string) Result {
	if !status.Notifies() {
		return failed(KindStatusUpdate, r.Email, fmt.Errorf("%w: %q", ErrNoNotification, status))
	}
	var alts []string
	if status == model.StatusCancelled {
		alts = FilterAlternativeTimes(alternativeTimes)
	}
	v := statusView(r, status, alts, d.restaurant)
	html, err := renderStatusUpdate(v)
	if err != nil {
		return failed(KindStatusUpdate, r.Email, err)
	}
	msg := Message{
		From:    d.from,
		To:      []Address{{Name: r.Name, Email: r.Email}},
		Subject: fmt.Sprintf("Reservation %s: %s at %s - SIRI Restaurant", v.StatusText, shortDate(r.Date), r.Time),
		HTML:    html,
	}
	return d.send(ctx, KindStatusUpdate, msg)
}

func (d *Dispatcher) send(ctx context.Context, kind string, msg Message) Result {
	to := ""
	if len(msg.To) > 0 {
		to = msg.To[0].Email
	}
	id, err := d.transport.Send(ctx, msg)
	if err != nil {
		return failed(kind, to, err)
	}
	return Result{Outcome: Delivered, Kind: kind, MessageID: id}
}

func failed(kind, to string, err error) Result {
	return Result{Outcome: DispatchFailed, Kind: kind, Err: &DispatchError{Kind: kind, To: to, Err: err}}
}

// FilterAlternativeTimes trims every entry and drops the blank ones,
// keeping order.  The result is nil when nothing survives.
func FilterAlternativeTimes(times []string) []string {
	var out []string
	for _, t := range times {
		if t = strings.TrimSpace(t); t != "" {
			out = append(out, t)
		}
	}
	return out
}
