package sundial

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/sundialdb/sundial-go/wire"
)

// Cell is re-exported so callers building rows and keys do not need to
// import the wire package directly.
type Cell = wire.Cell

// Record is an ordered tuple of cells.
type Record = wire.Record

// Conn is the transport the client issues requests over. *transport.Conn
// satisfies it; tests substitute scripted implementations.
type Conn interface {
	Call(ctx context.Context, req *wire.Message) (*wire.Message, error)
}

// Config carries client behaviour that is not per-request.
type Config struct {
	// Logger receives per-request debug events. The zero value
	// discards everything.
	Logger zerolog.Logger

	// WaitMargin, when positive, bounds how long a request with a
	// protocol timeout may wait for its reply: the client waits the
	// request's timeout plus this margin before abandoning the call.
	// Zero means the client waits indefinitely unless the caller's
	// context says otherwise.
	WaitMargin time.Duration
}

// Client issues Sundial operations over a single connection. Methods
// are safe for concurrent use when the underlying Conn is.
type Client struct {
	conn Conn
	cfg  Config
	log  zerolog.Logger
}

// NewClient wraps an established connection.
func NewClient(conn Conn, cfg Config) (*Client, error) {
	if conn == nil {
		return nil, ErrNilConn
	}
	return &Client{
		conn: conn,
		cfg:  cfg,
		log:  cfg.Logger.With().Str("component", "client").Logger(),
	}, nil
}
