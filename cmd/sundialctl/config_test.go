package main

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestLoadClientConfigOverrides(t *testing.T) {
	path := writeConfig(t, `
addr = "tsdb.internal:7474"
client_name = "ops-box"
connect_timeout = "2s"
handshake_timeout = "750ms"
max_connect_attempts = 3
call_timeout = "1.5s"
wait_margin = "250ms"
tls_enabled = true
tls_server_name = "tsdb.internal"
tls_ca_file = "/etc/sundial/ca.crt"
`)

	cfg, err := loadClientConfig(path)
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	if cfg.Transport.Addr != "tsdb.internal:7474" {
		t.Fatalf("unexpected addr: %q", cfg.Transport.Addr)
	}
	if cfg.Transport.ClientName != "ops-box" {
		t.Fatalf("unexpected client name: %q", cfg.Transport.ClientName)
	}
	if cfg.Transport.ConnectTimeout != 2*time.Second {
		t.Fatalf("unexpected connect timeout: %v", cfg.Transport.ConnectTimeout)
	}
	if cfg.Transport.HandshakeTimeout != 750*time.Millisecond {
		t.Fatalf("unexpected handshake timeout: %v", cfg.Transport.HandshakeTimeout)
	}
	if cfg.Transport.MaxConnectAttempts != 3 {
		t.Fatalf("unexpected max attempts: %d", cfg.Transport.MaxConnectAttempts)
	}
	if cfg.CallTimeout != 1500*time.Millisecond {
		t.Fatalf("unexpected call timeout: %v", cfg.CallTimeout)
	}
	if cfg.WaitMargin != 250*time.Millisecond {
		t.Fatalf("unexpected wait margin: %v", cfg.WaitMargin)
	}
	if !cfg.Transport.TLS.Enabled {
		t.Fatalf("expected tls enabled")
	}
	if cfg.Transport.TLS.ServerName != "tsdb.internal" {
		t.Fatalf("unexpected tls server name: %q", cfg.Transport.TLS.ServerName)
	}
	if cfg.Transport.TLS.CAFile != "/etc/sundial/ca.crt" {
		t.Fatalf("unexpected tls ca file: %q", cfg.Transport.TLS.CAFile)
	}
	if cfg.Transport.TLS.InsecureSkipVerify {
		t.Fatalf("expected verification left on")
	}
}

func TestLoadClientConfigKeepsDefaults(t *testing.T) {
	path := writeConfig(t, `
addr = "127.0.0.1:7474"
`)

	cfg, err := loadClientConfig(path)
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	def := defaultCtlConfig()
	if cfg.Transport.ConnectTimeout != def.Transport.ConnectTimeout {
		t.Fatalf("connect timeout changed: %v", cfg.Transport.ConnectTimeout)
	}
	if cfg.Transport.ClientName != "sundialctl" {
		t.Fatalf("unexpected client name: %q", cfg.Transport.ClientName)
	}
	if cfg.CallTimeout != 0 {
		t.Fatalf("unexpected call timeout: %v", cfg.CallTimeout)
	}
}

func TestLoadClientConfigMillisFallback(t *testing.T) {
	path := writeConfig(t, `
connect_timeout_ms = 1200
call_timeout_ms = 300
`)

	cfg, err := loadClientConfig(path)
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	if cfg.Transport.ConnectTimeout != 1200*time.Millisecond {
		t.Fatalf("unexpected connect timeout: %v", cfg.Transport.ConnectTimeout)
	}
	if cfg.CallTimeout != 300*time.Millisecond {
		t.Fatalf("unexpected call timeout: %v", cfg.CallTimeout)
	}
}

func TestLoadClientConfigBadDuration(t *testing.T) {
	path := writeConfig(t, `
call_timeout = "soon"
`)

	if _, err := loadClientConfig(path); err == nil {
		t.Fatalf("expected parse error")
	}
}

func TestLoadClientConfigMissingFile(t *testing.T) {
	if _, err := loadClientConfig(filepath.Join(t.TempDir(), "absent.toml")); err == nil {
		t.Fatalf("expected load error")
	}
}
