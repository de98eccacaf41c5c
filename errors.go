package sundial

import (
	"errors"
	"fmt"

	"github.com/sundialdb/sundial-go/wire"
)

// ErrNilConn is returned by NewClient when no connection is supplied.
var ErrNilConn = errors.New("sundial: nil connection")

// ServerError is a failure reported by the server itself: the request
// arrived and was understood, and the server chose to reject it.
type ServerError struct {
	Code    uint32
	Message string
}

func (e ServerError) Error() string {
	return fmt.Sprintf("sundial: server error %d: %s", e.Code, e.Message)
}

// NotFound reports whether the server rejected the request because the
// addressed record does not exist.
func (e ServerError) NotFound() bool {
	return e.Code == wire.CodeNotFound
}

// Timeout reports whether the server gave up after the protocol
// timeout elapsed.
func (e ServerError) Timeout() bool {
	return e.Code == wire.CodeTimeout
}
