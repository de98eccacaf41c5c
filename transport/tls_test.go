package transport

import (
	"bufio"
	"context"
	"crypto/tls"
	"net"
	"testing"

	"github.com/sundialdb/sundial-go/internal/testutil/tlstest"
	"github.com/sundialdb/sundial-go/wire"
)

// serveTLSOnce is serveOnce behind a TLS listener.
func serveTLSOnce(t *testing.T, cert tls.Certificate, fn func(conn net.Conn, r *bufio.Reader)) string {
	t.Helper()
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	tlsLn := tls.NewListener(ln, &tls.Config{Certificates: []tls.Certificate{cert}})
	t.Cleanup(func() { _ = tlsLn.Close() })
	go func() {
		conn, err := tlsLn.Accept()
		if err != nil {
			return
		}
		defer conn.Close()
		fn(conn, bufio.NewReader(conn))
	}()
	return ln.Addr().String()
}

func TestDialOverTLS(t *testing.T) {
	ca := tlstest.NewAuthority(t, t.TempDir())
	cert := ca.ServerCertificate(t, "sundial.test", []net.IP{net.ParseIP("127.0.0.1")})

	addr := serveTLSOnce(t, cert, func(conn net.Conn, r *bufio.Reader) {
		if !acceptHello(t, conn, r) {
			return
		}
		fr, err := ReadFrame(r, DefaultLimits())
		if err != nil {
			t.Errorf("read frame: %v", err)
			return
		}
		resp := Frame{Header: Header{
			MessageID:   fr.Header.MessageID,
			MessageType: uint32(wire.MsgListKeysResp),
			Flags:       FlagResponse,
		}}
		payload, err := wire.EncodePayload([]wire.Field{wire.NewFieldBool(wire.FieldDone, true)})
		if err != nil {
			t.Errorf("encode payload: %v", err)
			return
		}
		resp.Payload = payload
		if err := WriteFrame(conn, resp, DefaultLimits()); err != nil {
			t.Errorf("write frame: %v", err)
		}
	})

	cfg := testConfig(addr)
	cfg.TLS = TLSConfig{Enabled: true, ServerName: "sundial.test", CAFile: ca.CAFile()}

	c, err := Dial(context.Background(), cfg)
	if err != nil {
		t.Fatalf("dial over tls: %v", err)
	}
	defer c.Close()

	req := &wire.Message{Type: wire.MsgListKeys, Fields: []wire.Field{
		wire.NewFieldString(wire.FieldTable, "metrics"),
	}}
	reply, err := c.Call(context.Background(), req)
	if err != nil {
		t.Fatalf("call over tls: %v", err)
	}
	if reply.Type != wire.MsgListKeysResp {
		t.Fatalf("unexpected reply type: %v", reply.Type)
	}
	done, err := reply.Bool(wire.FieldDone)
	if err != nil || !done {
		t.Fatalf("done flag = %v, %v", done, err)
	}
}

func TestDialTLSRejectsUnknownAuthority(t *testing.T) {
	ca := tlstest.NewAuthority(t, t.TempDir())
	cert := ca.ServerCertificate(t, "sundial.test", []net.IP{net.ParseIP("127.0.0.1")})

	addr := serveTLSOnce(t, cert, func(conn net.Conn, r *bufio.Reader) {})

	// A second authority the server's cert does not chain to.
	other := tlstest.NewAuthority(t, t.TempDir())
	cfg := testConfig(addr)
	cfg.TLS = TLSConfig{Enabled: true, ServerName: "sundial.test", CAFile: other.CAFile()}

	if _, err := Dial(context.Background(), cfg); err == nil {
		t.Fatalf("expected certificate verification failure")
	}
}
