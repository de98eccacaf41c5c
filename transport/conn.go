package transport

import (
	"bufio"
	"context"
	"crypto/tls"
	"crypto/x509"
	"errors"
	"fmt"
	"math/rand"
	"net"
	"os"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/sundialdb/sundial-go/wire"
)

var (
	ErrHandshakeRejected = errors.New("transport: handshake rejected")
	ErrClosed            = errors.New("transport: connection closed")
	ErrStreamDesync      = errors.New("transport: response id does not match request")
)

// Conn is one established Sundial session: a TCP (optionally TLS)
// connection that has completed the hello/welcome handshake. Methods
// are safe for concurrent use; Call serializes callers because the
// protocol allows a single outstanding request per connection.
type Conn struct {
	cfg Config
	log zerolog.Logger

	conn   net.Conn
	reader *bufio.Reader

	clientID string
	serverID string

	nextMessageID atomic.Uint64

	mu     sync.Mutex
	closed bool
}

// Dial connects to cfg.Addr, retrying with backoff, and completes the
// handshake. A rejected handshake is terminal and is not retried; a
// failed dial or dropped handshake retries until MaxConnectAttempts
// (zero means unlimited) or ctx ends.
func Dial(ctx context.Context, cfg Config) (*Conn, error) {
	cfg = cfg.WithDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	c := &Conn{
		cfg:      cfg,
		log:      cfg.Logger.With().Str("component", "transport").Str("addr", cfg.Addr).Logger(),
		clientID: uuid.NewString(),
	}
	rng := rand.New(rand.NewSource(time.Now().UnixNano()))

	var attempt int
	for {
		attempt++
		err := c.connect(ctx)
		if err == nil {
			c.log.Debug().Str("server_id", c.serverID).Int("attempt", attempt).Msg("session established")
			return c, nil
		}
		c.log.Warn().Err(err).Int("attempt", attempt).Msg("dial failed")
		if errors.Is(err, ErrHandshakeRejected) || !c.shouldRetry(attempt) {
			return nil, err
		}
		if err := sleepBackoff(ctx, c.cfg.Backoff, attempt, rng); err != nil {
			return nil, err
		}
	}
}

func (c *Conn) connect(ctx context.Context) error {
	conn, err := c.dial(ctx)
	if err != nil {
		return err
	}
	reader := bufio.NewReader(conn)
	if err := c.handshake(conn, reader); err != nil {
		_ = conn.Close()
		return err
	}
	c.conn = conn
	c.reader = reader
	return nil
}

func (c *Conn) dial(ctx context.Context) (net.Conn, error) {
	dialer := net.Dialer{Timeout: c.cfg.ConnectTimeout}
	rawConn, err := dialer.DialContext(ctx, "tcp", c.cfg.Addr)
	if err != nil {
		return nil, err
	}
	if !c.cfg.TLS.Enabled {
		return rawConn, nil
	}

	tlsCfg, err := c.clientTLSConfig()
	if err != nil {
		_ = rawConn.Close()
		return nil, err
	}
	conn := tls.Client(rawConn, tlsCfg)
	handshakeCtx, cancel := context.WithTimeout(ctx, c.cfg.HandshakeTimeout)
	defer cancel()
	if err := conn.HandshakeContext(handshakeCtx); err != nil {
		_ = rawConn.Close()
		return nil, err
	}
	return conn, nil
}

func (c *Conn) clientTLSConfig() (*tls.Config, error) {
	cfg := &tls.Config{
		MinVersion:         tls.VersionTLS12,
		InsecureSkipVerify: c.cfg.TLS.InsecureSkipVerify,
	}

	serverName := strings.TrimSpace(c.cfg.TLS.ServerName)
	if serverName == "" {
		host, _, err := net.SplitHostPort(c.cfg.Addr)
		if err != nil {
			return nil, err
		}
		serverName = host
	}
	cfg.ServerName = serverName

	if caPath := strings.TrimSpace(c.cfg.TLS.CAFile); caPath != "" {
		caPEM, err := os.ReadFile(caPath)
		if err != nil {
			return nil, err
		}
		pool := x509.NewCertPool()
		if ok := pool.AppendCertsFromPEM(caPEM); !ok {
			return nil, fmt.Errorf("transport: parse tls ca bundle: %s", caPath)
		}
		cfg.RootCAs = pool
	}
	return cfg, nil
}

func (c *Conn) handshake(conn net.Conn, reader *bufio.Reader) error {
	_ = conn.SetDeadline(time.Now().Add(c.cfg.HandshakeTimeout))
	hello := Hello{
		ClientID:     c.clientID,
		ClientName:   c.cfg.ClientName,
		ProtoVersion: ProtoVersion,
	}
	if err := WriteHello(conn, hello); err != nil {
		return err
	}
	welcome, err := ReadWelcome(reader)
	if err != nil {
		return err
	}
	if welcome.Status != WelcomeStatusAccepted {
		return fmt.Errorf("%w: code=%d message=%q", ErrHandshakeRejected, welcome.Code, welcome.Message)
	}
	_ = conn.SetDeadline(time.Time{})
	c.serverID = welcome.ServerID
	c.nextMessageID.Store(uint64(time.Now().UnixNano()))
	return nil
}

func (c *Conn) shouldRetry(attempt int) bool {
	if c.cfg.MaxConnectAttempts <= 0 {
		return true
	}
	return attempt < c.cfg.MaxConnectAttempts
}

// Call sends one request and blocks until its response arrives. There
// is no client-side timeout beyond ctx's deadline: protocol timeouts
// are enforced by the server, and the default is to wait as long as it
// takes. A ctx cancellation without a deadline is only observed before
// the request is written, not mid-read.
func (c *Conn) Call(ctx context.Context, req *wire.Message) (*wire.Message, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return nil, ErrClosed
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	payload, err := wire.EncodePayload(req.Fields)
	if err != nil {
		return nil, err
	}

	id := c.nextMessageID.Add(1)
	fr := Frame{
		Header: Header{
			MessageID:   id,
			MessageType: uint32(req.Type),
		},
		Payload: payload,
	}

	start := time.Now()
	if err := c.setWriteDeadline(ctx); err != nil {
		return nil, err
	}
	if err := WriteFrame(c.conn, fr, c.cfg.Limits); err != nil {
		return nil, err
	}

	if err := c.setReadDeadline(ctx); err != nil {
		return nil, err
	}
	resp, err := ReadFrame(c.reader, c.cfg.Limits)
	if err != nil {
		return nil, err
	}
	if resp.Header.MessageID != id {
		// Framing alignment is lost for good; close so later calls
		// cannot read stale bytes as their own response.
		c.closed = true
		_ = c.conn.Close()
		return nil, fmt.Errorf("%w: sent=%d got=%d", ErrStreamDesync, id, resp.Header.MessageID)
	}

	fields, err := wire.DecodePayload(resp.Payload)
	if err != nil {
		return nil, err
	}

	c.log.Debug().
		Uint64("message_id", id).
		Stringer("request", req.Type).
		Uint32("response_type", resp.Header.MessageType).
		Dur("elapsed", time.Since(start)).
		Msg("call complete")
	return &wire.Message{Type: wire.MessageType(resp.Header.MessageType), Fields: fields}, nil
}

// Close shuts the connection down. It is idempotent. A call in flight
// holds the connection lock, so Close takes effect when it returns.
func (c *Conn) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return nil
	}
	c.closed = true
	if c.conn == nil {
		return nil
	}
	return c.conn.Close()
}

// ClientID returns the UUID sent in the hello.
func (c *Conn) ClientID() string {
	return c.clientID
}

// ServerID returns the identity the server announced in its welcome.
func (c *Conn) ServerID() string {
	return c.serverID
}

// RemoteAddr returns the peer address, or empty before connect.
func (c *Conn) RemoteAddr() string {
	if c.conn == nil {
		return ""
	}
	return c.conn.RemoteAddr().String()
}

func (c *Conn) setWriteDeadline(ctx context.Context) error {
	deadline := time.Time{}
	if d, ok := ctx.Deadline(); ok {
		deadline = d
	}
	return c.conn.SetWriteDeadline(deadline)
}

func (c *Conn) setReadDeadline(ctx context.Context) error {
	deadline := time.Time{}
	if d, ok := ctx.Deadline(); ok {
		deadline = d
	}
	return c.conn.SetReadDeadline(deadline)
}
