package repository

import (
	"context"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/iliyamo/siri-restaurant/internal/model"
)

// SessionRepo persists admin sessions keyed by the SHA-256 of the token.
type SessionRepo struct{ DB *sqlx.DB }

func NewSessionRepo(db *sqlx.DB) *SessionRepo { return &SessionRepo{DB: db} }

// Create inserts a session row and returns it with its id.
func (r *SessionRepo) Create(ctx context.Context, s model.Session) (model.Session, error) {
	now := time.Now().UTC()
	s.CreatedAt, s.UpdatedAt = now, now
	res, err := r.DB.NamedExecContext(ctx,
		`INSERT INTO sessions (token_hash, user_id, expires_at, ip_address, user_agent, created_at, updated_at)
		 VALUES (:token_hash, :user_id, :expires_at, :ip_address, :user_agent, :created_at, :updated_at)`, s)
	if err != nil {
		if isDuplicateKey(err) {
			return model.Session{}, ErrConflict
		}
		return model.Session{}, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return model.Session{}, err
	}
	s.ID = uint64(id)
	return s, nil
}

// GetByHash returns the session for tokenHash regardless of expiry; the
// caller decides whether it is still active.
func (r *SessionRepo) GetByHash(ctx context.Context, tokenHash string) (model.Session, error) {
	var s model.Session
	err := r.DB.GetContext(ctx, &s,
		`SELECT id, token_hash, user_id, expires_at, ip_address, user_agent, created_at, updated_at
		 FROM sessions WHERE token_hash=? LIMIT 1`, tokenHash)
	return s, err
}

// DeleteByHash removes a session.  Deleting an unknown hash is not an error.
func (r *SessionRepo) DeleteByHash(ctx context.Context, tokenHash string) error {
	_, err := r.DB.ExecContext(ctx, "DELETE FROM sessions WHERE token_hash=?", tokenHash)
	return err
}

// DeleteExpired removes sessions whose expiry is at or before now and
// returns how many were removed.
func (r *SessionRepo) DeleteExpired(ctx context.Context, now time.Time) (int64, error) {
	res, err := r.DB.ExecContext(ctx, "DELETE FROM sessions WHERE expires_at <= ?", now)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}
