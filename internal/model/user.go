package model

import "time"

// User is an admin account that can sign in to the dashboard.  The json
// encoding never includes the password hash.
type User struct {
	ID           uint64    `db:"id" json:"id"`
	Name         string    `db:"name" json:"name"`
	Email        string    `db:"email" json:"email"`
	PasswordHash string    `db:"password_hash" json:"-"`
	CreatedAt    time.Time `db:"created_at" json:"createdAt"`
	UpdatedAt    time.Time `db:"updated_at" json:"updatedAt"`
}

// Session models a row in the `sessions` table.  The plain token is never
// stored; only its SHA‑256 hash.
type Session struct {
	ID        uint64    `db:"id" json:"id"`
	TokenHash string    `db:"token_hash" json:"-"`
	UserID    uint64    `db:"user_id" json:"userId"`
	ExpiresAt time.Time `db:"expires_at" json:"expiresAt"`
	IPAddress *string   `db:"ip_address" json:"ipAddress,omitempty"`
	UserAgent *string   `db:"user_agent" json:"userAgent,omitempty"`
	CreatedAt time.Time `db:"created_at" json:"createdAt"`
	UpdatedAt time.Time `db:"updated_at" json:"updatedAt"`
}

// ActiveAt reports whether the session is still usable at now.  A session
// whose expiry equals now is already expired.
func (s Session) ActiveAt(now time.Time) bool {
	return s.ExpiresAt.After(now)
}
