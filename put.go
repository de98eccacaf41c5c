package sundial

import (
	"context"

	"github.com/sundialdb/sundial-go/wire"
)

func buildPut(table string, rows []wire.Record) (*wire.Message, error) {
	rb, err := wire.EncodeRows(rows)
	if err != nil {
		return nil, err
	}
	req := &wire.Message{Type: wire.MsgPut}
	req.SetField(wire.NewFieldString(wire.FieldTable, table))
	req.SetField(wire.NewFieldBytes(wire.FieldRows, rb))
	return req, nil
}

func interpretPut(reply *wire.Message) error {
	_, err := interpretReply(reply, wire.MsgPutResp)
	return err
}

// Put writes a batch of rows to a table. Every row must have the same
// arity; the server treats the first row as authoritative and rejects
// mismatched batches. opts is accepted for forward compatibility, the
// column names it may carry are not transmitted.
func (c *Client) Put(ctx context.Context, table string, rows []wire.Record, opts *PutOptions) error {
	_ = opts
	req, err := buildPut(table, rows)
	if err != nil {
		return err
	}
	reply, err := c.call(ctx, "put", req, 0)
	if err != nil {
		return err
	}
	return interpretPut(reply)
}
