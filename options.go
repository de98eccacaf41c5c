package sundial

import (
	"math"
	"time"

	"github.com/sundialdb/sundial-go/wire"
)

// Options tunes a single key-addressed request. A nil *Options is valid
// and means "server defaults, no vclock".
type Options struct {
	// Timeout is the protocol timeout the server should enforce for
	// this request. Zero or negative means the server's default.
	Timeout time.Duration

	// Vclock is an opaque causal context from an earlier Get, passed
	// back verbatim on Delete. The client never inspects it.
	Vclock []byte
}

// timeoutMS converts the timeout to wire milliseconds. Sub-millisecond
// positive values round up to 1 so a requested timeout is never silently
// dropped.
func (o *Options) timeoutMS() (uint32, bool) {
	if o == nil || o.Timeout <= 0 {
		return 0, false
	}
	ms := o.Timeout.Milliseconds()
	if ms <= 0 {
		ms = 1
	}
	if ms > math.MaxUint32 {
		ms = math.MaxUint32
	}
	return uint32(ms), true
}

func (o *Options) timeout() time.Duration {
	if o == nil || o.Timeout <= 0 {
		return 0
	}
	return o.Timeout
}

func (o *Options) vclock() []byte {
	if o == nil {
		return nil
	}
	return o.Vclock
}

// PutOptions tunes a Put. Column names are accepted for forward
// compatibility but not transmitted: the server derives table shape
// from row arity.
type PutOptions struct {
	Columns []string
}

// Param is one named query parameter.
type Param struct {
	Name  string
	Value wire.Cell
}

// NewParam builds a Param, coercing value the same way Key does.
func NewParam(name string, value any) (Param, error) {
	c, err := wire.NewCell(value)
	if err != nil {
		return Param{}, err
	}
	return Param{Name: name, Value: c}, nil
}

// Key builds a record from Go values, coercing each one to its cell
// type. Supported values are nil, Cell, bool, integers, floats, string,
// []byte, and time.Time.
func Key(values ...any) (Record, error) {
	rec := make(Record, 0, len(values))
	for _, v := range values {
		c, err := wire.NewCell(v)
		if err != nil {
			return nil, err
		}
		rec = append(rec, c)
	}
	return rec, nil
}

// Row is Key under a name that reads better at Put call sites.
func Row(values ...any) (Record, error) {
	return Key(values...)
}
