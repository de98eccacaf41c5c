package main

import (
	"fmt"
	"strings"
	"time"

	"github.com/BurntSushi/toml"

	"github.com/sundialdb/sundial-go/transport"
)

// sundialctl config.toml key mapping to client runtime settings.
type fileConfig struct {
	Addr                string `toml:"addr"`
	ClientName          string `toml:"client_name"`
	ConnectTimeout      string `toml:"connect_timeout"`
	ConnectTimeoutMS    int64  `toml:"connect_timeout_ms"`
	HandshakeTimeout    string `toml:"handshake_timeout"`
	HandshakeTimeoutMS  int64  `toml:"handshake_timeout_ms"`
	MaxConnectAttempts  int    `toml:"max_connect_attempts"`
	CallTimeout         string `toml:"call_timeout"`
	CallTimeoutMS       int64  `toml:"call_timeout_ms"`
	WaitMargin          string `toml:"wait_margin"`
	TLSEnabled          bool   `toml:"tls_enabled"`
	TLSServerName       string `toml:"tls_server_name"`
	TLSCAFile           string `toml:"tls_ca_file"`
	TLSInsecureSkip     bool   `toml:"tls_insecure_skip_verify"`
}

// ctlConfig is everything sundialctl needs to reach a server and shape
// its requests.
type ctlConfig struct {
	Transport   transport.Config
	CallTimeout time.Duration
	WaitMargin  time.Duration
}

func defaultCtlConfig() ctlConfig {
	cfg := transport.DefaultConfig()
	cfg.ClientName = "sundialctl"
	return ctlConfig{Transport: cfg}
}

// loadClientConfig overlays config.toml onto defaults. Every key is
// optional; durations accept Go duration strings with _ms integer
// fallbacks.
func loadClientConfig(path string) (ctlConfig, error) {
	cfg := defaultCtlConfig()

	var raw fileConfig
	meta, err := toml.DecodeFile(path, &raw)
	if err != nil {
		return ctlConfig{}, fmt.Errorf("load sundial config: %w", err)
	}

	if meta.IsDefined("addr") {
		cfg.Transport.Addr = strings.TrimSpace(raw.Addr)
	}
	if meta.IsDefined("client_name") {
		cfg.Transport.ClientName = strings.TrimSpace(raw.ClientName)
	}

	if meta.IsDefined("connect_timeout") {
		d, err := parseConfigDuration("connect_timeout", raw.ConnectTimeout)
		if err != nil {
			return ctlConfig{}, err
		}
		cfg.Transport.ConnectTimeout = d
	}
	if meta.IsDefined("connect_timeout_ms") {
		cfg.Transport.ConnectTimeout = time.Duration(raw.ConnectTimeoutMS) * time.Millisecond
	}

	if meta.IsDefined("handshake_timeout") {
		d, err := parseConfigDuration("handshake_timeout", raw.HandshakeTimeout)
		if err != nil {
			return ctlConfig{}, err
		}
		cfg.Transport.HandshakeTimeout = d
	}
	if meta.IsDefined("handshake_timeout_ms") {
		cfg.Transport.HandshakeTimeout = time.Duration(raw.HandshakeTimeoutMS) * time.Millisecond
	}

	if meta.IsDefined("max_connect_attempts") {
		cfg.Transport.MaxConnectAttempts = raw.MaxConnectAttempts
	}

	if meta.IsDefined("call_timeout") {
		d, err := parseConfigDuration("call_timeout", raw.CallTimeout)
		if err != nil {
			return ctlConfig{}, err
		}
		cfg.CallTimeout = d
	}
	if meta.IsDefined("call_timeout_ms") {
		cfg.CallTimeout = time.Duration(raw.CallTimeoutMS) * time.Millisecond
	}

	if meta.IsDefined("wait_margin") {
		d, err := parseConfigDuration("wait_margin", raw.WaitMargin)
		if err != nil {
			return ctlConfig{}, err
		}
		cfg.WaitMargin = d
	}

	if meta.IsDefined("tls_enabled") {
		cfg.Transport.TLS.Enabled = raw.TLSEnabled
	}
	if meta.IsDefined("tls_server_name") {
		cfg.Transport.TLS.ServerName = strings.TrimSpace(raw.TLSServerName)
	}
	if meta.IsDefined("tls_ca_file") {
		cfg.Transport.TLS.CAFile = strings.TrimSpace(raw.TLSCAFile)
	}
	if meta.IsDefined("tls_insecure_skip_verify") {
		cfg.Transport.TLS.InsecureSkipVerify = raw.TLSInsecureSkip
	}

	return cfg, nil
}

func parseConfigDuration(key string, value string) (time.Duration, error) {
	d, err := time.ParseDuration(strings.TrimSpace(value))
	if err != nil {
		return 0, fmt.Errorf("parse %s: %w", key, err)
	}
	return d, nil
}
