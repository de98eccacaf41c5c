package sundial

import (
	"context"

	"github.com/sundialdb/sundial-go/internal/observability"
	"github.com/sundialdb/sundial-go/wire"
)

func buildListKeys(table string, opts *Options) *wire.Message {
	req := &wire.Message{Type: wire.MsgListKeys}
	req.SetField(wire.NewFieldString(wire.FieldTable, table))
	if ms, ok := opts.timeoutMS(); ok {
		req.SetField(wire.NewFieldUint32(wire.FieldTimeout, ms))
	}
	return req
}

type listKeysChunk struct {
	keys   []wire.Record
	done   bool
	cursor []byte
}

func interpretListKeysChunk(reply *wire.Message) (listKeysChunk, error) {
	reply, err := interpretReply(reply, wire.MsgListKeysResp)
	if err != nil {
		return listKeysChunk{}, err
	}
	done, err := reply.Bool(wire.FieldDone)
	if err != nil {
		return listKeysChunk{}, err
	}
	chunk := listKeysChunk{done: done}
	if _, ok := reply.Field(wire.FieldKeys); ok {
		b, err := reply.Bytes(wire.FieldKeys)
		if err != nil {
			return listKeysChunk{}, err
		}
		chunk.keys, err = wire.DecodeRows(b)
		if err != nil {
			return listKeysChunk{}, err
		}
	}
	if _, ok := reply.Field(wire.FieldCursor); ok {
		b, err := reply.Bytes(wire.FieldCursor)
		if err != nil {
			return listKeysChunk{}, err
		}
		chunk.cursor = b
	}
	return chunk, nil
}

// ListKeys streams every key in a table, driving the server's chunked
// replies until one arrives with its done flag set, and returns the
// keys accumulated across all chunks. Any failure mid-stream discards
// the keys collected so far. Servers that paginate by cursor get it
// echoed back; servers that track position themselves get the identical
// request resent.
func (c *Client) ListKeys(ctx context.Context, table string, opts *Options) ([]wire.Record, error) {
	req := buildListKeys(table, opts)
	keys := make([]wire.Record, 0)
	for {
		reply, err := c.call(ctx, "list_keys", req, opts.timeout())
		if err != nil {
			return nil, err
		}
		chunk, err := interpretListKeysChunk(reply)
		if err != nil {
			return nil, err
		}
		observability.RecordListKeysChunk()
		keys = append(keys, chunk.keys...)
		if chunk.done {
			return keys, nil
		}
		if len(chunk.cursor) > 0 {
			req.SetField(wire.NewFieldBytes(wire.FieldCursor, chunk.cursor))
		}
	}
}
