// Package repository holds the SQL data access for reservations, accounts
// and the CMS tables.  Every repository works on a *sqlx.DB and returns
// sql.ErrNoRows (unwrapped) when a single-row lookup finds nothing, so the
// callers can use errors.Is without importing driver types.
package repository

import (
	"errors"
	"strings"
)

// ErrConflict is returned when a write cannot be performed because of
// conflicting state, such as a unique key that is already taken.
// Handlers should translate this into an HTTP 409 response.
var ErrConflict = errors.New("conflict")

// ErrEmailExists is returned by UserRepo.Create for a duplicate email.
var ErrEmailExists = errors.New("email already exists")

// isDuplicateKey reports whether err is MySQL error 1062.
func isDuplicateKey(err error) bool {
	return err != nil && strings.Contains(strings.ToLower(err.Error()), "1062")
}

// clampLimit bounds a page size to [1, max] using def for non-positive
// input.
func clampLimit(limit, def, max int) int {
	if limit <= 0 {
		return def
	}
	if limit > max {
		return max
	}
	return limit
}

func likePattern(s string) string {
	return "%" + strings.ToLower(s) + "%"
}
