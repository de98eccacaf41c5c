package transport

import (
	"bufio"
	"context"
	"errors"
	"net"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/sundialdb/sundial-go/wire"
)

// serveOnce accepts a single connection on a loopback listener and
// hands it to fn on its own goroutine.
func serveOnce(t *testing.T, fn func(conn net.Conn, r *bufio.Reader)) string {
	t.Helper()
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	t.Cleanup(func() { _ = ln.Close() })
	go func() {
		conn, err := ln.Accept()
		if err != nil {
			return
		}
		defer conn.Close()
		fn(conn, bufio.NewReader(conn))
	}()
	return ln.Addr().String()
}

// acceptHello consumes the hello line and answers with an accepting
// welcome. It must only report failures with t.Errorf: it runs off the
// test goroutine.
func acceptHello(t *testing.T, conn net.Conn, r *bufio.Reader) bool {
	if _, err := ReadHello(r); err != nil {
		t.Errorf("read hello: %v", err)
		return false
	}
	welcome := Welcome{Status: WelcomeStatusAccepted, ServerID: "fake-1", ProtoVersion: ProtoVersion}
	if err := WriteWelcome(conn, welcome); err != nil {
		t.Errorf("write welcome: %v", err)
		return false
	}
	return true
}

func testConfig(addr string) Config {
	return Config{
		Addr:               addr,
		Logger:             zerolog.Nop(),
		MaxConnectAttempts: 1,
		ConnectTimeout:     2 * time.Second,
		HandshakeTimeout:   2 * time.Second,
	}
}

func TestDialAndCallRoundTrip(t *testing.T) {
	addr := serveOnce(t, func(conn net.Conn, r *bufio.Reader) {
		if !acceptHello(t, conn, r) {
			return
		}
		fr, err := ReadFrame(r, DefaultLimits())
		if err != nil {
			t.Errorf("read frame: %v", err)
			return
		}
		if wire.MessageType(fr.Header.MessageType) != wire.MsgGet {
			t.Errorf("unexpected request type: %d", fr.Header.MessageType)
			return
		}
		if _, err := wire.DecodePayload(fr.Payload); err != nil {
			t.Errorf("decode payload: %v", err)
			return
		}
		resp := Frame{Header: Header{
			MessageID:   fr.Header.MessageID,
			MessageType: uint32(wire.MsgGetResp),
			Flags:       FlagResponse,
		}}
		if err := WriteFrame(conn, resp, DefaultLimits()); err != nil {
			t.Errorf("write frame: %v", err)
		}
	})

	c, err := Dial(context.Background(), testConfig(addr))
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer c.Close()

	if c.ServerID() != "fake-1" {
		t.Fatalf("server id: %q", c.ServerID())
	}
	if c.ClientID() == "" {
		t.Fatalf("client id empty")
	}

	req := &wire.Message{Type: wire.MsgGet, Fields: []wire.Field{
		wire.NewFieldString(wire.FieldTable, "metrics"),
		wire.NewFieldBytes(wire.FieldKey, []byte{0, 0}),
	}}
	reply, err := c.Call(context.Background(), req)
	if err != nil {
		t.Fatalf("call: %v", err)
	}
	if reply.Type != wire.MsgGetResp {
		t.Fatalf("unexpected reply type: %v", reply.Type)
	}
}

func TestDialHandshakeRejectedIsTerminal(t *testing.T) {
	addr := serveOnce(t, func(conn net.Conn, r *bufio.Reader) {
		if _, err := ReadHello(r); err != nil {
			t.Errorf("read hello: %v", err)
			return
		}
		_ = WriteWelcome(conn, Welcome{Status: WelcomeStatusRejected, Code: 7, Message: "no capacity"})
	})

	cfg := testConfig(addr)
	cfg.MaxConnectAttempts = 5
	cfg.Backoff = BackoffConfig{InitialDelay: 10 * time.Millisecond, Multiplier: 2, MaxDelay: 50 * time.Millisecond}

	_, err := Dial(context.Background(), cfg)
	if !errors.Is(err, ErrHandshakeRejected) {
		t.Fatalf("want ErrHandshakeRejected, got %v", err)
	}
}

func TestDialGivesUpAfterMaxAttempts(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	addr := ln.Addr().String()
	_ = ln.Close()

	cfg := testConfig(addr)
	cfg.MaxConnectAttempts = 2
	cfg.Backoff = BackoffConfig{InitialDelay: 5 * time.Millisecond, Multiplier: 2, MaxDelay: 10 * time.Millisecond}

	if _, err := Dial(context.Background(), cfg); err == nil {
		t.Fatalf("expected dial error")
	}
}

func TestCallStreamDesyncClosesConn(t *testing.T) {
	addr := serveOnce(t, func(conn net.Conn, r *bufio.Reader) {
		if !acceptHello(t, conn, r) {
			return
		}
		fr, err := ReadFrame(r, DefaultLimits())
		if err != nil {
			t.Errorf("read frame: %v", err)
			return
		}
		resp := Frame{Header: Header{
			MessageID:   fr.Header.MessageID + 1,
			MessageType: uint32(wire.MsgDeleteResp),
			Flags:       FlagResponse,
		}}
		if err := WriteFrame(conn, resp, DefaultLimits()); err != nil {
			t.Errorf("write frame: %v", err)
		}
	})

	c, err := Dial(context.Background(), testConfig(addr))
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer c.Close()

	req := &wire.Message{Type: wire.MsgDelete, Fields: []wire.Field{
		wire.NewFieldString(wire.FieldTable, "metrics"),
		wire.NewFieldBytes(wire.FieldKey, []byte{0, 0}),
	}}
	if _, err := c.Call(context.Background(), req); !errors.Is(err, ErrStreamDesync) {
		t.Fatalf("want ErrStreamDesync, got %v", err)
	}
	if _, err := c.Call(context.Background(), req); !errors.Is(err, ErrClosed) {
		t.Fatalf("want ErrClosed after desync, got %v", err)
	}
}

func TestCallAfterClose(t *testing.T) {
	addr := serveOnce(t, func(conn net.Conn, r *bufio.Reader) {
		acceptHello(t, conn, r)
	})

	c, err := Dial(context.Background(), testConfig(addr))
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	if err := c.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}
	if err := c.Close(); err != nil {
		t.Fatalf("second close: %v", err)
	}
	req := &wire.Message{Type: wire.MsgListKeys, Fields: []wire.Field{
		wire.NewFieldString(wire.FieldTable, "metrics"),
	}}
	if _, err := c.Call(context.Background(), req); !errors.Is(err, ErrClosed) {
		t.Fatalf("want ErrClosed, got %v", err)
	}
}

func TestCallHonorsContextDeadline(t *testing.T) {
	addr := serveOnce(t, func(conn net.Conn, r *bufio.Reader) {
		if !acceptHello(t, conn, r) {
			return
		}
		if _, err := ReadFrame(r, DefaultLimits()); err != nil {
			return
		}
		// Never reply; the client deadline has to fire.
		time.Sleep(2 * time.Second)
	})

	c, err := Dial(context.Background(), testConfig(addr))
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer c.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()

	req := &wire.Message{Type: wire.MsgListKeys, Fields: []wire.Field{
		wire.NewFieldString(wire.FieldTable, "metrics"),
	}}
	start := time.Now()
	if _, err := c.Call(ctx, req); err == nil {
		t.Fatalf("expected deadline error")
	}
	if time.Since(start) > time.Second {
		t.Fatalf("call did not respect deadline, took %v", time.Since(start))
	}
}
