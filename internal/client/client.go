// Package client is the typed HTTP client used by admin tooling to read
// the reservation inbox and decide reservations.  Credentials come from an
// injected CredentialProvider on every call; the client keeps no global
// session state.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/iliyamo/siri-restaurant/internal/model"
)

// CredentialProvider supplies the bearer token for a request.
type CredentialProvider interface {
	Token(ctx context.Context) (string, error)
}

// StaticToken is a CredentialProvider for a token obtained out of band.
type StaticToken string

func (t StaticToken) Token(context.Context) (string, error) {
	if t == "" {
		return "", errors.New("client: empty token")
	}
	return string(t), nil
}

// APIError is a non-2xx answer from the server.
type APIError struct {
	Status  int
	Code    string
	Message string
}

func (e *APIError) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("api: %d %s: %s", e.Status, e.Code, e.Message)
	}
	return fmt.Sprintf("api: %d: %s", e.Status, e.Message)
}

// IsUnauthorized reports whether err is a 401 from the server.
func IsUnauthorized(err error) bool {
	var ae *APIError
	return errors.As(err, &ae) && ae.Status == http.StatusUnauthorized
}

type Client struct {
	base  *url.URL
	http  *http.Client
	creds CredentialProvider
}

type Option func(*Client)

// WithHTTPClient replaces the default client (10s timeout).
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.http = hc }
}

func New(baseURL string, creds CredentialProvider, opts ...Option) (*Client, error) {
	u, err := url.Parse(strings.TrimRight(baseURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("client: base url: %w", err)
	}
	if u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("client: base url %q must be absolute", baseURL)
	}
	c := &Client{base: u, http: &http.Client{Timeout: 10 * time.Second}, creds: creds}
	for _, o := range opts {
		o(c)
	}
	return c, nil
}

// PendingCount returns the number of reservations awaiting a decision.
func (c *Client) PendingCount(ctx context.Context) (int, error) {
	var out struct {
		Count int `json:"count"`
	}
	if err := c.do(ctx, http.MethodGet, "/api/reservations/pending-count", nil, nil, &out); err != nil {
		return 0, err
	}
	return out.Count, nil
}

// List returns reservations newest first; status "" means all.
func (c *Client) List(ctx context.Context, status model.ReservationStatus) ([]model.Reservation, error) {
	q := url.Values{}
	if status != "" {
		q.Set("status", string(status))
	}
	var out []model.Reservation
	if err := c.do(ctx, http.MethodGet, "/api/reservations", q, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// UpdateStatus sets the status of reservation id.  alternativeTimes are
// only meaningful when cancelling.
func (c *Client) UpdateStatus(ctx context.Context, id uint64, status model.ReservationStatus, alternativeTimes []string) (*model.Reservation, error) {
	body := struct {
		Status           model.ReservationStatus `json:"status"`
		AlternativeTimes []string                `json:"alternativeTimes,omitempty"`
	}{status, alternativeTimes}
	var out model.Reservation
	path := "/api/reservations/" + strconv.FormatUint(id, 10)
	if err := c.do(ctx, http.MethodPut, path, nil, body, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// PollPendingCount fetches the pending count immediately and then every
// interval until ctx is cancelled, which is the only way it returns.
// onCount receives every successful read; onErr (optional) every failure.
// Polls never overlap.
func (c *Client) PollPendingCount(ctx context.Context, interval time.Duration, onCount func(int), onErr func(error)) error {
	if interval <= 0 {
		interval = 30 * time.Second
	}
	tick := time.NewTicker(interval)
	defer tick.Stop()
	for {
		n, err := c.PendingCount(ctx)
		switch {
		case ctx.Err() != nil:
			return ctx.Err()
		case err != nil:
			if onErr != nil {
				onErr(err)
			}
		default:
			onCount(n)
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-tick.C:
		}
	}
}

func (c *Client) do(ctx context.Context, method, path string, q url.Values, in, out any) error {
	u := *c.base
	u.Path = strings.TrimRight(u.Path, "/") + path
	u.RawQuery = q.Encode()

	var body io.Reader
	if in != nil {
		b, err := json.Marshal(in)
		if err != nil {
			return err
		}
		body = bytes.NewReader(b)
	}
	req, err := http.NewRequestWithContext(ctx, method, u.String(), body)
	if err != nil {
		return err
	}
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")
	if c.creds != nil {
		tok, err := c.creds.Token(ctx)
		if err != nil {
			return fmt.Errorf("client: credentials: %w", err)
		}
		req.Header.Set("Authorization", "Bearer "+tok)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer func() { _ = resp.Body.Close() }()
	raw, err := io.ReadAll(io.LimitReader(resp.Body, 4<<20))
	if err != nil {
		return err
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		ae := &APIError{Status: resp.StatusCode, Message: strings.TrimSpace(string(raw))}
		var eb struct {
			Error string `json:"error"`
			Code  string `json:"code"`
		}
		if json.Unmarshal(raw, &eb) == nil && eb.Error != "" {
			ae.Code, ae.Message = eb.Code, eb.Error
		}
		return ae
	}
	if out == nil || len(raw) == 0 {
		return nil
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("client: decode %s %s: %w", method, path, err)
	}
	return nil
}
