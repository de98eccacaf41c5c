package wire

import (
	"errors"
	"fmt"
)

// ErrCellTypeMismatch is returned by Cell accessors when the cell holds
// a different variant than the one requested.
var ErrCellTypeMismatch = errors.New("wire: cell type mismatch")

// EncodingError reports a value that cannot be represented on the wire.
// It always indicates bad input on the client side; nothing has been
// sent when it is returned.
type EncodingError struct {
	Reason string
}

func (e EncodingError) Error() string {
	return "wire: encode: " + e.Reason
}

// DecodingError reports a payload that violates the wire contract:
// truncated values, unknown tags, or a required field that is missing
// or mistyped.
type DecodingError struct {
	Reason string
}

func (e DecodingError) Error() string {
	return "wire: decode: " + e.Reason
}

func encodingErrf(format string, args ...any) error {
	return EncodingError{Reason: fmt.Sprintf(format, args...)}
}

func decodingErrf(format string, args ...any) error {
	return DecodingError{Reason: fmt.Sprintf(format, args...)}
}
