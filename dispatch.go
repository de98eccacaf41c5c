package sundial

import (
	"context"
	"time"

	"github.com/sundialdb/sundial-go/internal/observability"
	"github.com/sundialdb/sundial-go/wire"
)

// call sends one request and waits for its reply. The wait is unbounded
// by default; a positive WaitMargin combined with a per-request timeout
// caps it at timeout+margin. Errors from the transport are returned as
// they are, the caller decides whether the connection is still usable.
func (c *Client) call(ctx context.Context, op string, req *wire.Message, timeout time.Duration) (*wire.Message, error) {
	if c.cfg.WaitMargin > 0 && timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout+c.cfg.WaitMargin)
		defer cancel()
	}

	start := time.Now()
	reply, err := c.conn.Call(ctx, req)
	elapsed := time.Since(start)
	if err != nil {
		observability.RecordRequest(op, observability.OutcomeTransportError, elapsed)
		c.log.Debug().Str("op", op).Err(err).Dur("elapsed", elapsed).Msg("request failed in transport")
		return nil, err
	}

	observability.RecordRequest(op, replyOutcome(reply), elapsed)
	c.log.Debug().Str("op", op).Str("reply", reply.Type.String()).Dur("elapsed", elapsed).Msg("request complete")
	return reply, nil
}

// replyOutcome classifies a reply for metrics before any per-operation
// normalization happens, so a not-found Get still counts as not_found.
func replyOutcome(reply *wire.Message) string {
	if reply.Type != wire.MsgError {
		return observability.OutcomeOK
	}
	if code, err := reply.Uint32(wire.FieldErrCode); err == nil && code == wire.CodeNotFound {
		return observability.OutcomeNotFound
	}
	return observability.OutcomeServerError
}

// interpretReply checks a reply against the expected response type.
// Server-reported failures come back as ServerError; a reply of any
// other unexpected type is a decode failure.
func interpretReply(reply *wire.Message, want wire.MessageType) (*wire.Message, error) {
	if reply.Type == wire.MsgError {
		if err := wire.Validate(reply); err != nil {
			return nil, err
		}
		code, err := reply.Uint32(wire.FieldErrCode)
		if err != nil {
			return nil, err
		}
		msg, err := reply.String(wire.FieldErrMessage)
		if err != nil {
			return nil, err
		}
		return nil, ServerError{Code: code, Message: msg}
	}
	if reply.Type != want {
		return nil, wire.DecodingError{Reason: "unexpected reply type " + reply.Type.String() + ", want " + want.String()}
	}
	if err := wire.Validate(reply); err != nil {
		return nil, err
	}
	return reply, nil
}
