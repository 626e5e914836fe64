package config

import (
	"testing"
	"time"
)

func TestLoadRateLimitConfig_Clamps(t *testing.T) {
	t.Setenv("RATE_LIMIT_CAPACITY", "0")
	t.Setenv("RATE_LIMIT_REFILL_TOKENS", "-3")
	t.Setenv("RATE_LIMIT_REFILL_INTERVAL", "2s")
	t.Setenv("RATE_LIMIT_TTL", "1s")

	cfg := LoadRateLimitConfig()
	if cfg.Capacity != 1 {
		t.Errorf("Capacity = %d, want 1", cfg.Capacity)
	}
	if cfg.RefillTokens != 1 {
		t.Errorf("RefillTokens = %d, want 1", cfg.RefillTokens)
	}
	if cfg.TTL != 10*time.Second {
		t.Errorf("TTL = %s, want 10s", cfg.TTL)
	}
}

func TestLoadRateLimitConfig_BurstAndEvery(t *testing.T) {
	t.Setenv("RATE_LIMIT_BURST", "25")
	t.Setenv("RATE_LIMIT_REFILL_TOKENS", "4")
	t.Setenv("RATE_LIMIT_REFILL_EVERY", "500ms")

	cfg := LoadRateLimitConfig()
	if cfg.Capacity != 25 {
		t.Errorf("Capacity = %d, want 25", cfg.Capacity)
	}
	if cfg.RefillTokens != 1 || cfg.RefillInterval != 500*time.Millisecond {
		t.Errorf("refill = %d every %s, want 1 every 500ms", cfg.RefillTokens, cfg.RefillInterval)
	}
}

func TestLoadMailConfig_TransportSelection(t *testing.T) {
	tests := []struct {
		name      string
		transport string
		user      string
		want      string
	}{
		{name: "no credentials falls back to log", want: "log"},
		{name: "credentials select smtp", user: "res@example.com", want: "smtp"},
		{name: "explicit transport wins", transport: "Mailjet", user: "res@example.com", want: "mailjet"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("MAIL_TRANSPORT", tt.transport)
			t.Setenv("EMAIL_USER", tt.user)
			t.Setenv("EMAIL_FROM", "")

			cfg := LoadMailConfig()
			if cfg.Transport != tt.want {
				t.Errorf("Transport = %q, want %q", cfg.Transport, tt.want)
			}
			if cfg.FromAddress != tt.user {
				t.Errorf("FromAddress = %q, want %q", cfg.FromAddress, tt.user)
			}
			if cfg.Port != 587 || cfg.Host != "smtp.gmail.com" {
				t.Errorf("unexpected default host/port %s:%d", cfg.Host, cfg.Port)
			}
		})
	}
}

func TestLoadCacheConfig_Methods(t *testing.T) {
	t.Setenv("CACHE_METHODS", " get, head ,,")
	cfg := LoadCacheConfig()
	if !cfg.Methods["GET"] || !cfg.Methods["HEAD"] || len(cfg.Methods) != 2 {
		t.Fatalf("Methods = %v, want GET and HEAD", cfg.Methods)
	}
}

func TestLoadRedisConfig_HostPortWins(t *testing.T) {
	t.Setenv("REDIS_ADDR", "cache:6380")
	t.Setenv("REDIS_HOST", "redis")
	t.Setenv("REDIS_PORT", "6379")
	if got := LoadRedisConfig().Addr; got != "redis:6379" {
		t.Fatalf("Addr = %q, want redis:6379", got)
	}
}
