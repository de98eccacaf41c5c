package transport

import (
	"testing"
	"time"
)

func TestConfigWithDefaults(t *testing.T) {
	cfg := Config{Addr: "127.0.0.1:7070"}.WithDefaults()
	if cfg.ConnectTimeout != 5*time.Second {
		t.Fatalf("connect timeout: %v", cfg.ConnectTimeout)
	}
	if cfg.HandshakeTimeout != 5*time.Second {
		t.Fatalf("handshake timeout: %v", cfg.HandshakeTimeout)
	}
	if cfg.Backoff.InitialDelay != 250*time.Millisecond {
		t.Fatalf("backoff initial: %v", cfg.Backoff.InitialDelay)
	}
	if cfg.Backoff.Multiplier != 2.0 {
		t.Fatalf("backoff multiplier: %v", cfg.Backoff.Multiplier)
	}
	if !cfg.Backoff.Jitter {
		t.Fatalf("expected jitter enabled by default")
	}
	if cfg.Limits.MaxPayloadBytes != 8*1024*1024 {
		t.Fatalf("payload limit: %d", cfg.Limits.MaxPayloadBytes)
	}
	if cfg.ClientName != "sundial-go" {
		t.Fatalf("client name: %q", cfg.ClientName)
	}
}

func TestConfigWithDefaultsKeepsExplicitValues(t *testing.T) {
	in := Config{
		Addr:             "db.internal:7070",
		ClientName:       "ingest",
		ConnectTimeout:   time.Second,
		HandshakeTimeout: 2 * time.Second,
		Backoff: BackoffConfig{
			InitialDelay: 10 * time.Millisecond,
			Multiplier:   3,
			MaxDelay:     100 * time.Millisecond,
		},
		Limits: Limits{MaxPayloadBytes: 1024},
	}
	cfg := in.WithDefaults()
	if cfg.ClientName != "ingest" || cfg.ConnectTimeout != time.Second || cfg.HandshakeTimeout != 2*time.Second {
		t.Fatalf("explicit values overwritten: %+v", cfg)
	}
	if cfg.Backoff != in.Backoff {
		t.Fatalf("backoff overwritten: %+v", cfg.Backoff)
	}
	if cfg.Limits.MaxPayloadBytes != 1024 {
		t.Fatalf("limits overwritten: %+v", cfg.Limits)
	}
}

func TestConfigValidate(t *testing.T) {
	missing := Config{}.WithDefaults()
	if err := missing.Validate(); err == nil {
		t.Fatalf("expected error for missing addr")
	}

	malformed := Config{Addr: "not a hostport"}.WithDefaults()
	if err := malformed.Validate(); err == nil {
		t.Fatalf("expected error for malformed addr")
	}

	good := Config{Addr: "127.0.0.1:7070"}.WithDefaults()
	if err := good.Validate(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}
