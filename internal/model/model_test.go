package model

import (
	"encoding/json"
	"strings"
	"testing"
	"time"
)

func TestReservationStatus(t *testing.T) {
	tests := []struct {
		status   ReservationStatus
		valid    bool
		notifies bool
	}{
		{StatusPending, true, false},
		{StatusAccepted, true, true},
		{StatusCancelled, true, true},
		{"confirmed", false, false},
		{"", false, false},
		{"ACCEPTED", false, false},
	}
	for _, tt := range tests {
		if got := tt.status.Valid(); got != tt.valid {
			t.Errorf("%q.Valid() = %v, want %v", tt.status, got, tt.valid)
		}
		if got := tt.status.Notifies(); got != tt.notifies {
			t.Errorf("%q.Notifies() = %v, want %v", tt.status, got, tt.notifies)
		}
	}
}

func TestSessionActiveAt(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	s := Session{ExpiresAt: now}
	if s.ActiveAt(now) {
		t.Error("session expiring exactly now must be inactive")
	}
	if !s.ActiveAt(now.Add(-time.Nanosecond)) {
		t.Error("session must be active before its expiry")
	}
}

func TestUserJSONOmitsPasswordHash(t *testing.T) {
	b, err := json.Marshal(User{ID: 1, Email: "a@b.c", PasswordHash: "secret-hash"})
	if err != nil {
		t.Fatal(err)
	}
	if strings.Contains(string(b), "secret-hash") {
		t.Fatalf("password hash leaked: %s", b)
	}
}
