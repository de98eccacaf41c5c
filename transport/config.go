package transport

import (
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
)

var validate = validator.New()

// TLSConfig controls optional TLS on the client connection.
type TLSConfig struct {
	Enabled            bool
	ServerName         string
	CAFile             string
	InsecureSkipVerify bool
}

// Config carries everything Dial needs to establish a session.
type Config struct {
	Addr               string         `validate:"required,hostname_port"`
	ClientName         string         `validate:"-"`
	ConnectTimeout     time.Duration  `validate:"min=0"`
	HandshakeTimeout   time.Duration  `validate:"min=0"`
	MaxConnectAttempts int            `validate:"min=0"`
	Backoff            BackoffConfig  `validate:"-"`
	Limits             Limits         `validate:"-"`
	TLS                TLSConfig      `validate:"-"`
	Logger             zerolog.Logger `validate:"-"`
}

// DefaultConfig returns the reliability defaults for a client session.
func DefaultConfig() Config {
	return Config{
		ClientName:       "sundial-go",
		ConnectTimeout:   5 * time.Second,
		HandshakeTimeout: 5 * time.Second,
		Backoff: BackoffConfig{
			InitialDelay: 250 * time.Millisecond,
			Multiplier:   2.0,
			MaxDelay:     5 * time.Second,
			Jitter:       true,
		},
		Limits: DefaultLimits(),
	}
}

// WithDefaults fills unset fields from DefaultConfig. Addr and TLS are
// never defaulted.
func (c Config) WithDefaults() Config {
	def := DefaultConfig()
	if strings.TrimSpace(c.ClientName) == "" {
		c.ClientName = def.ClientName
	}
	if c.ConnectTimeout <= 0 {
		c.ConnectTimeout = def.ConnectTimeout
	}
	if c.HandshakeTimeout <= 0 {
		c.HandshakeTimeout = def.HandshakeTimeout
	}
	if c.Backoff == (BackoffConfig{}) {
		c.Backoff = def.Backoff
	} else {
		if c.Backoff.InitialDelay <= 0 {
			c.Backoff.InitialDelay = def.Backoff.InitialDelay
		}
		if c.Backoff.Multiplier < 1.0 {
			c.Backoff.Multiplier = def.Backoff.Multiplier
		}
		if c.Backoff.MaxDelay <= 0 {
			c.Backoff.MaxDelay = def.Backoff.MaxDelay
		}
	}
	if c.Limits.MaxPayloadBytes == 0 {
		c.Limits = def.Limits
	}
	return c
}

// Validate checks the config shape. Call after WithDefaults.
func (c Config) Validate() error {
	return validate.Struct(c)
}
