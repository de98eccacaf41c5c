package sundial

import (
	"context"
	"errors"

	"github.com/sundialdb/sundial-go/wire"
)

// GetResult is the outcome of a point lookup. A key that does not exist
// yields the zero GetResult and no error; check len(Rows) to tell the
// two apart from an empty stored value.
type GetResult struct {
	Columns []string
	Rows    []wire.Record

	// Vclock is the causal context of the returned value, to be passed
	// back on a later Delete.
	Vclock []byte
}

func buildGet(table string, key wire.Record, opts *Options) (*wire.Message, error) {
	kb, err := wire.EncodeRecord(key)
	if err != nil {
		return nil, err
	}
	req := &wire.Message{Type: wire.MsgGet}
	req.SetField(wire.NewFieldString(wire.FieldTable, table))
	req.SetField(wire.NewFieldBytes(wire.FieldKey, kb))
	if ms, ok := opts.timeoutMS(); ok {
		req.SetField(wire.NewFieldUint32(wire.FieldTimeout, ms))
	}
	return req, nil
}

func interpretGet(reply *wire.Message) (GetResult, error) {
	reply, err := interpretReply(reply, wire.MsgGetResp)
	if err != nil {
		var se ServerError
		if errors.As(err, &se) && se.NotFound() {
			return GetResult{}, nil
		}
		return GetResult{}, err
	}
	columns, rows, err := decodeTabular(reply)
	if err != nil {
		return GetResult{}, err
	}
	res := GetResult{Columns: columns, Rows: rows}
	if _, ok := reply.Field(wire.FieldVclock); ok {
		res.Vclock, err = reply.Bytes(wire.FieldVclock)
		if err != nil {
			return GetResult{}, err
		}
	}
	return res, nil
}

// Get fetches the rows stored under key. A missing key is not an error:
// the result simply has no rows.
func (c *Client) Get(ctx context.Context, table string, key wire.Record, opts *Options) (GetResult, error) {
	req, err := buildGet(table, key, opts)
	if err != nil {
		return GetResult{}, err
	}
	reply, err := c.call(ctx, "get", req, opts.timeout())
	if err != nil {
		return GetResult{}, err
	}
	return interpretGet(reply)
}
