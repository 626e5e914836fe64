package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sync"
	"time"
)

// SignInProvider signs in with email and password and reuses the session
// token until shortly before it expires.
type SignInProvider struct {
	BaseURL  string
	Email    string
	Password string
	HTTP     *http.Client

	mu  sync.Mutex
	tok string
	exp time.Time
	now func() time.Time
}

// Token returns the cached token or signs in again.
func (p *SignInProvider) Token(ctx context.Context) (string, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	now := time.Now
	if p.now != nil {
		now = p.now
	}
	if p.tok != "" && now().Add(time.Minute).Before(p.exp) {
		return p.tok, nil
	}

	b, _ := json.Marshal(map[string]string{"email": p.Email, "password": p.Password})
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.BaseURL+"/api/auth/sign-in/email", bytes.NewReader(b))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")
	hc := p.HTTP
	if hc == nil {
		hc = &http.Client{Timeout: 10 * time.Second}
	}
	resp, err := hc.Do(req)
	if err != nil {
		return "", err
	}
	defer func() { _ = resp.Body.Close() }()
	if resp.StatusCode != http.StatusOK {
		return "", &APIError{Status: resp.StatusCode, Message: "sign-in failed"}
	}
	var out struct {
		Token     string    `json:"token"`
		ExpiresAt time.Time `json:"expiresAt"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", fmt.Errorf("client: decode sign-in: %w", err)
	}
	p.tok, p.exp = out.Token, out.ExpiresAt
	return p.tok, nil
}

// Forget drops the cached token, forcing a sign-in on the next call.
func (p *SignInProvider) Forget() {
	p.mu.Lock()
	p.tok = ""
	p.mu.Unlock()
}
