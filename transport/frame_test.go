package transport

import (
	"bytes"
	"errors"
	"io"
	"testing"
)

func TestFrameRoundTrip(t *testing.T) {
	var buf bytes.Buffer
	in := Frame{
		Header:  Header{MessageID: 42, MessageType: 5, Flags: FlagResponse},
		Payload: []byte{1, 2, 3},
	}
	if err := WriteFrame(&buf, in, DefaultLimits()); err != nil {
		t.Fatalf("write: %v", err)
	}
	out, err := ReadFrame(&buf, DefaultLimits())
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if out.Header.Magic != Magic || out.Header.Version != ProtoVersion {
		t.Fatalf("header not stamped: %+v", out.Header)
	}
	if out.Header.MessageID != 42 || out.Header.MessageType != 5 || out.Header.Flags != FlagResponse {
		t.Fatalf("header mismatch: %+v", out.Header)
	}
	if !bytes.Equal(out.Payload, []byte{1, 2, 3}) {
		t.Fatalf("payload mismatch: %v", out.Payload)
	}
}

func TestFrameEmptyPayloadRoundTrip(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteFrame(&buf, Frame{Header: Header{MessageID: 7}}, DefaultLimits()); err != nil {
		t.Fatalf("write: %v", err)
	}
	out, err := ReadFrame(&buf, DefaultLimits())
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if out.Header.PayloadLen != 0 || len(out.Payload) != 0 {
		t.Fatalf("unexpected payload: %+v", out)
	}
}

func TestReadFrameBadMagic(t *testing.T) {
	h := Header{Magic: 0xDEADBEEF, Version: ProtoVersion, HeaderLen: FixedHeaderLen}
	r := bytes.NewReader(EncodeHeader(h))
	if _, err := ReadFrame(r, DefaultLimits()); !errors.Is(err, ErrBadMagic) {
		t.Fatalf("want ErrBadMagic, got %v", err)
	}
}

func TestReadFrameUnsupportedVersion(t *testing.T) {
	h := Header{Magic: Magic, Version: 9, HeaderLen: FixedHeaderLen}
	r := bytes.NewReader(EncodeHeader(h))
	if _, err := ReadFrame(r, DefaultLimits()); !errors.Is(err, ErrUnsupportedVersion) {
		t.Fatalf("want ErrUnsupportedVersion, got %v", err)
	}
}

func TestReadFrameHeaderLenMismatch(t *testing.T) {
	h := Header{Magic: Magic, Version: ProtoVersion, HeaderLen: 40}
	r := bytes.NewReader(EncodeHeader(h))
	if _, err := ReadFrame(r, DefaultLimits()); !errors.Is(err, ErrHeaderLenMismatch) {
		t.Fatalf("want ErrHeaderLenMismatch, got %v", err)
	}
}

func TestReadFramePayloadTooLarge(t *testing.T) {
	h := Header{Magic: Magic, Version: ProtoVersion, HeaderLen: FixedHeaderLen, PayloadLen: 1024}
	r := bytes.NewReader(EncodeHeader(h))
	if _, err := ReadFrame(r, Limits{MaxPayloadBytes: 16}); !errors.Is(err, ErrPayloadTooLarge) {
		t.Fatalf("want ErrPayloadTooLarge, got %v", err)
	}
}

func TestReadFrameShortHeader(t *testing.T) {
	r := bytes.NewReader([]byte{0x53, 0x55})
	if _, err := ReadFrame(r, DefaultLimits()); !errors.Is(err, ErrShortHeader) {
		t.Fatalf("want ErrShortHeader, got %v", err)
	}
}

func TestWriteFramePayloadTooLarge(t *testing.T) {
	f := Frame{Payload: make([]byte, 32)}
	if err := WriteFrame(io.Discard, f, Limits{MaxPayloadBytes: 16}); !errors.Is(err, ErrPayloadTooLarge) {
		t.Fatalf("want ErrPayloadTooLarge, got %v", err)
	}
}
