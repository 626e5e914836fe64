package repository

import (
	"context"
	"database/sql"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/iliyamo/siri-restaurant/internal/model"
)

// ReservationRepo provides the persistence operations behind the intake
// and admin workflow.  All timestamps are stored in UTC.
type ReservationRepo struct {
	db *sqlx.DB
}

// NewReservationRepo returns a new ReservationRepo bound to the given database.
func NewReservationRepo(db *sqlx.DB) *ReservationRepo { return &ReservationRepo{db: db} }

const reservationColumns = "id, name, email, phone, date, time, guests, message, status, created_at, updated_at"

// ReservationFilter narrows List.  An empty Status lists every reservation.
type ReservationFilter struct {
	Status model.ReservationStatus
	Limit  int
	Offset int
}

// Create inserts res and populates its generated ID.  Status and both
// timestamps must already be set by the caller.
func (r *ReservationRepo) Create(ctx context.Context, res *model.Reservation) error {
	const q = `INSERT INTO reservations (name, email, phone, date, time, guests, message, status, created_at, updated_at)
	           VALUES (:name, :email, :phone, :date, :time, :guests, :message, :status, :created_at, :updated_at)`
	result, err := r.db.NamedExecContext(ctx, q, res)
	if err != nil {
		return err
	}
	id, err := result.LastInsertId()
	if err != nil {
		return err
	}
	res.ID = uint64(id)
	return nil
}

// GetByID returns sql.ErrNoRows when no reservation has the id.
func (r *ReservationRepo) GetByID(ctx context.Context, id uint64) (*model.Reservation, error) {
	var res model.Reservation
	if err := r.db.GetContext(ctx, &res,
		"SELECT "+reservationColumns+" FROM reservations WHERE id = ?", id); err != nil {
		return nil, err
	}
	return &res, nil
}

// UpdateStatus overwrites status and updated_at.  No source-status guard is
// applied; the last write wins.  It returns sql.ErrNoRows when the row is
// gone (the DSN sets clientFoundRows, so matched rows are counted).
func (r *ReservationRepo) UpdateStatus(ctx context.Context, id uint64, status model.ReservationStatus, at time.Time) error {
	res, err := r.db.ExecContext(ctx,
		"UPDATE reservations SET status = ?, updated_at = ? WHERE id = ?", status, at, id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// CountByStatus returns the number of reservations in status.
func (r *ReservationRepo) CountByStatus(ctx context.Context, status model.ReservationStatus) (int, error) {
	var n int
	err := r.db.GetContext(ctx, &n, "SELECT COUNT(*) FROM reservations WHERE status = ?", status)
	return n, err
}

// List returns reservations newest first.  Ties on created_at are broken by
// id so the order is stable.
func (r *ReservationRepo) List(ctx context.Context, f ReservationFilter) ([]model.Reservation, error) {
	where := []string{}
	args := []any{}
	if f.Status != "" {
		where = append(where, "status = ?")
		args = append(args, f.Status)
	}
	cond := "1=1"
	if len(where) > 0 {
		cond = strings.Join(where, " AND ")
	}
	q := "SELECT " + reservationColumns + " FROM reservations WHERE " + cond +
		" ORDER BY created_at DESC, id DESC"
	if f.Limit > 0 {
		q += " LIMIT ? OFFSET ?"
		args = append(args, f.Limit, f.Offset)
	}
	out := []model.Reservation{}
	if err := r.db.SelectContext(ctx, &out, q, args...); err != nil {
		return nil, err
	}
	return out, nil
}

// Delete removes a reservation, returning sql.ErrNoRows when none matched.
func (r *ReservationRepo) Delete(ctx context.Context, id uint64) error {
	res, err := r.db.ExecContext(ctx, "DELETE FROM reservations WHERE id = ?", id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return sql.ErrNoRows
	}
	return nil
}
