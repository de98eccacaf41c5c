package sundial

import (
	"context"

	"github.com/sundialdb/sundial-go/wire"
)

// QueryResult is the tabular output of a query. Rows is never nil; a
// query with no matches yields an empty slice.
type QueryResult struct {
	Columns []string
	Rows    []wire.Record
}

func buildQuery(text string, params []Param) (*wire.Message, error) {
	req := &wire.Message{Type: wire.MsgQuery}
	req.SetField(wire.NewFieldString(wire.FieldQueryText, text))
	if len(params) > 0 {
		names := make([]string, 0, len(params))
		values := make(wire.Record, 0, len(params))
		for _, p := range params {
			names = append(names, p.Name)
			values = append(values, p.Value)
		}
		nb, err := wire.EncodeColumns(names)
		if err != nil {
			return nil, err
		}
		vb, err := wire.EncodeRecord(values)
		if err != nil {
			return nil, err
		}
		req.SetField(wire.NewFieldBytes(wire.FieldParamNames, nb))
		req.SetField(wire.NewFieldBytes(wire.FieldParamValues, vb))
	}
	return req, nil
}

// decodeTabular pulls the optional columns and rows fields shared by
// query and get replies. An absent field is fine, a mistyped one is not.
func decodeTabular(reply *wire.Message) ([]string, []wire.Record, error) {
	var columns []string
	if _, ok := reply.Field(wire.FieldColumns); ok {
		b, err := reply.Bytes(wire.FieldColumns)
		if err != nil {
			return nil, nil, err
		}
		columns, err = wire.DecodeColumns(b)
		if err != nil {
			return nil, nil, err
		}
	}
	rows := make([]wire.Record, 0)
	if _, ok := reply.Field(wire.FieldRows); ok {
		b, err := reply.Bytes(wire.FieldRows)
		if err != nil {
			return nil, nil, err
		}
		rows, err = wire.DecodeRows(b)
		if err != nil {
			return nil, nil, err
		}
	}
	return columns, rows, nil
}

func interpretQuery(reply *wire.Message) (QueryResult, error) {
	reply, err := interpretReply(reply, wire.MsgQueryResp)
	if err != nil {
		return QueryResult{}, err
	}
	columns, rows, err := decodeTabular(reply)
	if err != nil {
		return QueryResult{}, err
	}
	return QueryResult{Columns: columns, Rows: rows}, nil
}

// Query runs a query with optional named parameters. Queries carry no
// protocol timeout; bound the wait with the context if needed.
func (c *Client) Query(ctx context.Context, text string, params []Param) (QueryResult, error) {
	req, err := buildQuery(text, params)
	if err != nil {
		return QueryResult{}, err
	}
	reply, err := c.call(ctx, "query", req, 0)
	if err != nil {
		return QueryResult{}, err
	}
	return interpretQuery(reply)
}
