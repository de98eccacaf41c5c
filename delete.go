package sundial

import (
	"context"

	"github.com/sundialdb/sundial-go/wire"
)

func buildDelete(table string, key wire.Record, opts *Options) (*wire.Message, error) {
	kb, err := wire.EncodeRecord(key)
	if err != nil {
		return nil, err
	}
	req := &wire.Message{Type: wire.MsgDelete}
	req.SetField(wire.NewFieldString(wire.FieldTable, table))
	req.SetField(wire.NewFieldBytes(wire.FieldKey, kb))
	if vc := opts.vclock(); len(vc) > 0 {
		req.SetField(wire.NewFieldBytes(wire.FieldVclock, vc))
	}
	if ms, ok := opts.timeoutMS(); ok {
		req.SetField(wire.NewFieldUint32(wire.FieldTimeout, ms))
	}
	return req, nil
}

func interpretDelete(reply *wire.Message) error {
	_, err := interpretReply(reply, wire.MsgDeleteResp)
	return err
}

// Delete removes the rows stored under key. Unlike Get, deleting a key
// that does not exist surfaces the server's not-found error; use
// ServerError.NotFound to detect it. A vclock from a prior Get rides
// along untouched when opts carries one.
func (c *Client) Delete(ctx context.Context, table string, key wire.Record, opts *Options) error {
	req, err := buildDelete(table, key, opts)
	if err != nil {
		return err
	}
	reply, err := c.call(ctx, "delete", req, opts.timeout())
	if err != nil {
		return err
	}
	return interpretDelete(reply)
}
