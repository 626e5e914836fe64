package service

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/iliyamo/siri-restaurant/internal/metrics"
	"github.com/iliyamo/siri-restaurant/internal/model"
	"github.com/iliyamo/siri-restaurant/internal/notify"
	"github.com/iliyamo/siri-restaurant/internal/queue"
	"github.com/iliyamo/siri-restaurant/internal/repository"
)

// ReservationStore is the persistence the workflow needs.  Single-row
// lookups return sql.ErrNoRows when nothing matches.
type ReservationStore interface {
	Create(ctx context.Context, r *model.Reservation) error
	GetByID(ctx context.Context, id uint64) (*model.Reservation, error)
	UpdateStatus(ctx context.Context, id uint64, status model.ReservationStatus, at time.Time) error
	CountByStatus(ctx context.Context, status model.ReservationStatus) (int, error)
	List(ctx context.Context, f repository.ReservationFilter) ([]model.Reservation, error)
	Delete(ctx context.Context, id uint64) error
}

// Notifier sends the reservation emails.  Implemented by *notify.Dispatcher.
type Notifier interface {
	NewReservation(ctx context.Context, r model.Reservation) notify.Result
	StatusUpdate(ctx context.Context, r model.Reservation, status model.ReservationStatus, alternativeTimes []string) notify.Result
}

// EventPublisher receives the audit events.  Implemented by *queue.Publisher.
type EventPublisher interface {
	Publish(ctx context.Context, ev queue.ReservationEvent) error
}

// ReservationInput is the public intake payload.
type ReservationInput struct {
	Name    string     `json:"name" validate:"required,max=255"`
	Email   string     `json:"email" validate:"required,max=255"`
	Phone   string     `json:"phone" validate:"required,max=255"`
	Date    string     `json:"date" validate:"required,max=255"`
	Time    string     `json:"time" validate:"required,max=255"`
	Guests  FlexString `json:"guests" validate:"required,max=255"`
	Message *string    `json:"message" validate:"omitempty,max=5000"`
}

// StatusInput is the admin status-update payload.
type StatusInput struct {
	Status           string   `json:"status"`
	AlternativeTimes []string `json:"alternativeTimes"`
}

type ReservationDeps struct {
	Store    ReservationStore
	Notifier Notifier
	Events   EventPublisher // optional
	Metrics  *metrics.Metrics
	Logger   *slog.Logger
	Now      func() time.Time
}

// ReservationService implements intake, the status workflow and the admin
// views.  Requests run concurrently and take no locks; the last status
// write wins.
type ReservationService struct {
	store    ReservationStore
	notifier Notifier
	events   EventPublisher
	metrics  *metrics.Metrics
	log      *slog.Logger
	now      func() time.Time
}

func NewReservationService(d ReservationDeps) *ReservationService {
	if d.Store == nil || d.Notifier == nil {
		panic("nil dependency passed to NewReservationService")
	}
	if d.Logger == nil {
		d.Logger = slog.Default()
	}
	if d.Now == nil {
		d.Now = time.Now
	}
	return &ReservationService{
		store: d.Store, notifier: d.Notifier, events: d.Events,
		metrics: d.Metrics, log: d.Logger, now: d.Now,
	}
}

// Submit validates and persists a new reservation, then notifies the
// restaurant.  The notification outcome never affects the result.
func (s *ReservationService) Submit(ctx context.Context, in ReservationInput) (*model.Reservation, error) {
	if err := checkStruct(in, CodeMissingRequiredFields,
		"Missing required fields. Required: name, email, phone, date, time, guests", nil); err != nil {
		return nil, err
	}
	in.Name = strings.TrimSpace(in.Name)
	in.Email = strings.ToLower(strings.TrimSpace(in.Email))
	in.Phone = strings.TrimSpace(in.Phone)
	in.Date = strings.TrimSpace(in.Date)
	in.Time = strings.TrimSpace(in.Time)
	in.Guests = FlexString(strings.TrimSpace(string(in.Guests)))
	if in.Message != nil {
		m := strings.TrimSpace(*in.Message)
		in.Message = &m
	}
	if err := checkStruct(in, CodeEmptyRequiredFields, "Required fields cannot be empty",
		map[string]string{"max": CodeFieldTooLong}); err != nil {
		return nil, err
	}

	var msg *string
	if in.Message != nil && *in.Message != "" {
		msg = in.Message
	}

	now := s.now().UTC()
	r := &model.Reservation{
		Name: in.Name, Email: in.Email, Phone: in.Phone,
		Date: in.Date, Time: in.Time, Guests: string(in.Guests),
		Message: msg, Status: model.StatusPending,
		CreatedAt: now, UpdatedAt: now,
	}
	if err := s.store.Create(ctx, r); err != nil {
		return nil, err
	}
	s.metrics.ReservationCreated()
	s.log.InfoContext(ctx, "reservation.created", "reservation_id", r.ID, "date", r.Date, "time", r.Time, "guests", r.Guests)

	s.record(ctx, r.ID, s.notifier.NewReservation(ctx, *r))
	s.publish(ctx, queue.NewReservationEvent(queue.EventReservationCreated, *r, now))
	return r, nil
}

// UpdateStatus writes the new status of reservation id and, for accepted
// or cancelled, emails the guest.  Any valid status may be written from any
// other, including itself; a dispatch failure is logged and the updated
// record is still returned.
func (s *ReservationService) UpdateStatus(ctx context.Context, id uint64, in StatusInput) (*model.Reservation, error) {
	if in.Status == "" {
		return nil, &ValidationError{Code: CodeMissingStatus, Message: "Status field is required"}
	}
	status := model.ReservationStatus(in.Status)
	if !status.Valid() {
		return nil, &ValidationError{Code: CodeInvalidStatus, Message: "Invalid status value. Must be one of: pending, accepted, cancelled"}
	}

	r, err := s.store.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrReservationNotFound
		}
		return nil, err
	}

	now := s.now().UTC()
	if err := s.store.UpdateStatus(ctx, id, status, now); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			// deleted between the lookup and the write
			return nil, ErrReservationNotFound
		}
		return nil, err
	}
	previous := r.Status
	r.Status = status
	r.UpdatedAt = now
	s.metrics.StatusUpdated(string(status))
	s.log.InfoContext(ctx, "reservation.status.updated", "reservation_id", id, "from", previous, "to", status)

	ev := queue.NewReservationEvent(queue.EventReservationStatusChanged, *r, now)
	if status.Notifies() {
		var alts []string
		if status == model.StatusCancelled {
			alts = notify.FilterAlternativeTimes(in.AlternativeTimes)
		}
		res := s.notifier.StatusUpdate(ctx, *r, status, alts)
		s.record(ctx, id, res)
		ev.Notification = res.Outcome.String()
	}
	s.publish(ctx, ev)
	return r, nil
}

// PendingCount returns how many reservations await a decision.
func (s *ReservationService) PendingCount(ctx context.Context) (int, error) {
	return s.store.CountByStatus(ctx, model.StatusPending)
}

// List returns reservations newest first, optionally restricted to one
// status.
func (s *ReservationService) List(ctx context.Context, status string) ([]model.Reservation, error) {
	st := model.ReservationStatus(status)
	if st != "" && !st.Valid() {
		return nil, &ValidationError{Code: CodeInvalidStatus, Message: "Invalid status value. Must be one of: pending, accepted, cancelled"}
	}
	return s.store.List(ctx, repository.ReservationFilter{Status: st})
}

func (s *ReservationService) Get(ctx context.Context, id uint64) (*model.Reservation, error) {
	r, err := s.store.GetByID(ctx, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrReservationNotFound
	}
	return r, err
}

// Delete removes a reservation without any notification.
func (s *ReservationService) Delete(ctx context.Context, id uint64) error {
	err := s.store.Delete(ctx, id)
	if errors.Is(err, sql.ErrNoRows) {
		return ErrReservationNotFound
	}
	if err == nil {
		s.log.InfoContext(ctx, "reservation.deleted", "reservation_id", id)
	}
	return err
}

// record logs and counts a dispatch result.
func (s *ReservationService) record(ctx context.Context, id uint64, res notify.Result) {
	s.metrics.Dispatch(res.Kind, res.Delivered())
	if !res.Delivered() {
		s.log.ErrorContext(ctx, "notify.dispatch.failed", "reservation_id", id, "kind", res.Kind, "err", res.Err)
		return
	}
	s.log.InfoContext(ctx, "notify.dispatch.delivered", "reservation_id", id, "kind", res.Kind, "message_id", res.MessageID)
}

// publish hands ev to the broker with a short deadline; failures are only
// logged.
func (s *ReservationService) publish(ctx context.Context, ev queue.ReservationEvent) {
	if s.events == nil {
		return
	}
	pctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 3*time.Second)
	defer cancel()
	err := s.events.Publish(pctx, ev)
	s.metrics.EventPublished(ev.Type, err)
	if err != nil {
		s.log.WarnContext(ctx, "reservation.event.publish_failed", "type", ev.Type, "reservation_id", ev.ReservationID, "err", err)
	}
}
