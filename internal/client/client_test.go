package client

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/iliyamo/siri-restaurant/internal/model"
)

func newServer(t *testing.T, h http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	c, err := New(srv.URL, StaticToken("tok"))
	if err != nil {
		t.Fatal(err)
	}
	return c
}

func TestNewRejectsRelativeURL(t *testing.T) {
	if _, err := New("/api", nil); err == nil {
		t.Fatal("relative base url must fail")
	}
}

func TestPendingCountSendsBearer(t *testing.T) {
	c := newServer(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/reservations/pending-count" || r.Header.Get("Authorization") != "Bearer tok" {
			w.WriteHeader(http.StatusUnauthorized)
			_, _ = w.Write([]byte(`{"error":"Unauthorized","code":"UNAUTHORIZED"}`))
			return
		}
		_, _ = w.Write([]byte(`{"count":4}`))
	})
	n, err := c.PendingCount(context.Background())
	if err != nil || n != 4 {
		t.Fatalf("count = %d, err = %v", n, err)
	}
}

func TestAPIErrorsAreTyped(t *testing.T) {
	c := newServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"error":"Unauthorized","code":"UNAUTHORIZED"}`))
	})
	_, err := c.PendingCount(context.Background())
	if !IsUnauthorized(err) {
		t.Fatalf("err = %v", err)
	}
	var ae *APIError
	if !errors.As(err, &ae) || ae.Code != "UNAUTHORIZED" || ae.Message != "Unauthorized" {
		t.Fatalf("api error = %+v", ae)
	}
}

func TestListAndUpdateStatus(t *testing.T) {
	var gotBody map[string]any
	c := newServer(t, func(w http.ResponseWriter, r *http.Request) {
		switch {
		case r.Method == http.MethodGet && r.URL.Path == "/api/reservations":
			if r.URL.Query().Get("status") != "pending" {
				t.Errorf("status filter = %q", r.URL.RawQuery)
			}
			_, _ = w.Write([]byte(`[{"id":2,"status":"pending"},{"id":1,"status":"pending"}]`))
		case r.Method == http.MethodPut && r.URL.Path == "/api/reservations/2":
			_ = json.NewDecoder(r.Body).Decode(&gotBody)
			_, _ = w.Write([]byte(`{"id":2,"status":"cancelled"}`))
		default:
			http.NotFound(w, r)
		}
	})
	list, err := c.List(context.Background(), model.StatusPending)
	if err != nil || len(list) != 2 || list[0].ID != 2 {
		t.Fatalf("list = %+v, err = %v", list, err)
	}
	r, err := c.UpdateStatus(context.Background(), 2, model.StatusCancelled, []string{"6:30 PM"})
	if err != nil || r.Status != model.StatusCancelled {
		t.Fatalf("update = %+v, err = %v", r, err)
	}
	if gotBody["status"] != "cancelled" {
		t.Fatalf("body = %v", gotBody)
	}
	if alts, _ := gotBody["alternativeTimes"].([]any); len(alts) != 1 || alts[0] != "6:30 PM" {
		t.Fatalf("alternatives = %v", gotBody["alternativeTimes"])
	}
}

func TestPollPendingCountStopsOnCancel(t *testing.T) {
	var calls atomic.Int32
	c := newServer(t, func(w http.ResponseWriter, r *http.Request) {
		n := calls.Add(1)
		if n == 2 {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		_ = json.NewEncoder(w).Encode(map[string]int32{"count": n})
	})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	var mu sync.Mutex
	var counts []int
	var errs int
	done := make(chan error, 1)
	go func() {
		done <- c.PollPendingCount(ctx, 5*time.Millisecond, func(n int) {
			mu.Lock()
			counts = append(counts, n)
			if len(counts) == 2 {
				cancel()
			}
			mu.Unlock()
		}, func(error) {
			mu.Lock()
			errs++
			mu.Unlock()
		})
	}()

	select {
	case err := <-done:
		if !errors.Is(err, context.Canceled) {
			t.Fatalf("err = %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("poller did not stop")
	}
	mu.Lock()
	defer mu.Unlock()
	if len(counts) != 2 || counts[0] != 1 || counts[1] != 3 || errs != 1 {
		t.Fatalf("counts = %v errs = %d", counts, errs)
	}
}

func TestSignInProviderCachesToken(t *testing.T) {
	var signIns atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		signIns.Add(1)
		_ = json.NewEncoder(w).Encode(map[string]any{"token": "t1", "expiresAt": time.Now().Add(time.Hour)})
	}))
	defer srv.Close()

	p := &SignInProvider{BaseURL: srv.URL, Email: "a@b.co", Password: "secret123"}
	for i := 0; i < 3; i++ {
		tok, err := p.Token(context.Background())
		if err != nil || tok != "t1" {
			t.Fatalf("token = %q, err = %v", tok, err)
		}
	}
	if signIns.Load() != 1 {
		t.Fatalf("sign-ins = %d", signIns.Load())
	}
	p.Forget()
	_, _ = p.Token(context.Background())
	if signIns.Load() != 2 {
		t.Fatalf("sign-ins after forget = %d", signIns.Load())
	}
}
