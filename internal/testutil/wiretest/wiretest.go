// Package wiretest runs an in-process Sundial endpoint for tests. It
// speaks the real handshake and framing, so tests exercise the same
// bytes a production server would see.
package wiretest

import (
	"bufio"
	"net"
	"sync"
	"testing"

	"github.com/sundialdb/sundial-go/transport"
	"github.com/sundialdb/sundial-go/wire"
)

// Handler answers one decoded request.
type Handler func(req *wire.Message) *wire.Message

// Server accepts every connection, answers the handshake, and feeds
// each request frame through its handler. Replies echo the request's
// message id and carry the response flag.
type Server struct {
	tb      testing.TB
	ln      net.Listener
	welcome transport.Welcome
	handler Handler
	limits  transport.Limits

	mu       sync.Mutex
	received []*wire.Message
}

// Start listens on a loopback port and serves until the test ends.
// handler must not be nil.
func Start(tb testing.TB, handler Handler) *Server {
	tb.Helper()
	return start(tb, transport.Welcome{
		Status:       transport.WelcomeStatusAccepted,
		ServerID:     "wiretest",
		ProtoVersion: transport.ProtoVersion,
	}, handler)
}

// StartRejecting serves a server that turns every handshake away.
func StartRejecting(tb testing.TB, code uint32, message string) *Server {
	tb.Helper()
	return start(tb, transport.Welcome{
		Status:       transport.WelcomeStatusRejected,
		Code:         code,
		Message:      message,
		ProtoVersion: transport.ProtoVersion,
	}, nil)
}

func start(tb testing.TB, welcome transport.Welcome, handler Handler) *Server {
	tb.Helper()
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		tb.Fatalf("wiretest: listen: %v", err)
	}
	s := &Server{
		tb:      tb,
		ln:      ln,
		welcome: welcome,
		handler: handler,
		limits:  transport.DefaultLimits(),
	}
	go s.acceptLoop()
	tb.Cleanup(func() { _ = ln.Close() })
	return s
}

// Addr is the host:port the server listens on.
func (s *Server) Addr() string {
	return s.ln.Addr().String()
}

// Received returns a copy of every request decoded so far, in arrival
// order across all connections.
func (s *Server) Received() []*wire.Message {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]*wire.Message, len(s.received))
	copy(out, s.received)
	return out
}

func (s *Server) acceptLoop() {
	for {
		conn, err := s.ln.Accept()
		if err != nil {
			return
		}
		go s.serve(conn)
	}
}

func (s *Server) serve(conn net.Conn) {
	defer conn.Close()

	r := bufio.NewReader(conn)
	if _, err := transport.ReadHello(r); err != nil {
		return
	}
	if err := transport.WriteWelcome(conn, s.welcome); err != nil {
		return
	}
	if s.welcome.Status != transport.WelcomeStatusAccepted {
		return
	}

	for {
		fr, err := transport.ReadFrame(r, s.limits)
		if err != nil {
			return
		}
		fields, err := wire.DecodePayload(fr.Payload)
		if err != nil {
			s.tb.Errorf("wiretest: undecodable request payload: %v", err)
			return
		}
		req := &wire.Message{Type: wire.MessageType(fr.Header.MessageType), Fields: fields}

		s.mu.Lock()
		s.received = append(s.received, req)
		s.mu.Unlock()

		resp := s.handler(req)
		if resp == nil {
			return
		}
		payload, err := wire.EncodePayload(resp.Fields)
		if err != nil {
			s.tb.Errorf("wiretest: encode reply: %v", err)
			return
		}
		flags := transport.FlagResponse
		if resp.Type == wire.MsgError {
			flags |= transport.FlagError
		}
		out := transport.Frame{
			Header: transport.Header{
				MessageID:   fr.Header.MessageID,
				MessageType: uint32(resp.Type),
				Flags:       flags,
			},
			Payload: payload,
		}
		if err := transport.WriteFrame(conn, out, s.limits); err != nil {
			return
		}
	}
}

// ErrorReply builds a server error message with the given code.
func ErrorReply(code uint32, message string) *wire.Message {
	return &wire.Message{
		Type: wire.MsgError,
		Fields: []wire.Field{
			wire.NewFieldUint32(wire.FieldErrCode, code),
			wire.NewFieldString(wire.FieldErrMessage, message),
		},
	}
}
