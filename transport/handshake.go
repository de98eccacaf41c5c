package transport

import (
	"bufio"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"
)

const (
	controlTypeHello   = "sundial.hello"
	controlTypeWelcome = "sundial.welcome"

	WelcomeStatusAccepted = "accepted"
	WelcomeStatusRejected = "rejected"
)

var (
	ErrInvalidHello    = errors.New("transport: invalid hello")
	ErrInvalidWelcome  = errors.New("transport: invalid welcome")
	ErrControlTooLarge = errors.New("transport: control message too large")
)

// Hello is the client->server session-open payload, sent as one JSON
// line before binary framing starts.
type Hello struct {
	ClientID     string `json:"client_id"`
	ClientName   string `json:"client_name"`
	ProtoVersion uint16 `json:"proto_version"`
}

func (h Hello) Validate() error {
	if strings.TrimSpace(h.ClientID) == "" {
		return fmt.Errorf("%w: missing client_id", ErrInvalidHello)
	}
	if h.ProtoVersion == 0 {
		return fmt.Errorf("%w: missing proto_version", ErrInvalidHello)
	}
	return nil
}

// Welcome is the server->client handshake response.
type Welcome struct {
	Status       string `json:"status"`
	Code         uint32 `json:"code"`
	Message      string `json:"message"`
	ServerID     string `json:"server_id"`
	ProtoVersion uint16 `json:"proto_version"`
}

func (w Welcome) Validate() error {
	status := strings.TrimSpace(w.Status)
	if status != WelcomeStatusAccepted && status != WelcomeStatusRejected {
		return fmt.Errorf("%w: invalid status %q", ErrInvalidWelcome, w.Status)
	}
	if status == WelcomeStatusAccepted && strings.TrimSpace(w.ServerID) == "" {
		return fmt.Errorf("%w: missing server_id", ErrInvalidWelcome)
	}
	return nil
}

type controlEnvelope struct {
	Type    string   `json:"type"`
	Hello   *Hello   `json:"hello,omitempty"`
	Welcome *Welcome `json:"welcome,omitempty"`
}

func WriteHello(w io.Writer, hello Hello) error {
	if err := hello.Validate(); err != nil {
		return err
	}
	return writeControlEnvelope(w, controlEnvelope{
		Type:  controlTypeHello,
		Hello: &hello,
	})
}

func ReadHello(r *bufio.Reader) (Hello, error) {
	env, err := readControlEnvelope(r)
	if err != nil {
		return Hello{}, err
	}
	if env.Type != controlTypeHello || env.Hello == nil {
		return Hello{}, fmt.Errorf("%w: unexpected control type", ErrInvalidHello)
	}
	if err := env.Hello.Validate(); err != nil {
		return Hello{}, err
	}
	return *env.Hello, nil
}

func WriteWelcome(w io.Writer, welcome Welcome) error {
	if err := welcome.Validate(); err != nil {
		return err
	}
	return writeControlEnvelope(w, controlEnvelope{
		Type:    controlTypeWelcome,
		Welcome: &welcome,
	})
}

func ReadWelcome(r *bufio.Reader) (Welcome, error) {
	env, err := readControlEnvelope(r)
	if err != nil {
		return Welcome{}, err
	}
	if env.Type != controlTypeWelcome || env.Welcome == nil {
		return Welcome{}, fmt.Errorf("%w: unexpected control type", ErrInvalidWelcome)
	}
	if err := env.Welcome.Validate(); err != nil {
		return Welcome{}, err
	}
	return *env.Welcome, nil
}

func writeControlEnvelope(w io.Writer, env controlEnvelope) error {
	payload, err := json.Marshal(env)
	if err != nil {
		return err
	}
	payload = append(payload, '\n')
	if _, err := w.Write(payload); err != nil {
		return err
	}
	return nil
}

func readControlEnvelope(r *bufio.Reader) (controlEnvelope, error) {
	line, err := r.ReadBytes('\n')
	if err != nil {
		return controlEnvelope{}, err
	}
	if len(line) > 128*1024 {
		return controlEnvelope{}, ErrControlTooLarge
	}
	var env controlEnvelope
	if err := json.Unmarshal(line, &env); err != nil {
		return controlEnvelope{}, err
	}
	return env, nil
}
