// Package sundial is a client driver for the Sundial time-series
// database. Rows and keys are built from typed cells; a Client issues
// the protocol operations over one persistent transport connection.
//
// A client wraps an established transport connection:
//
//	conn, err := transport.Dial(ctx, transport.Config{Addr: "db:7070"})
//	if err != nil {
//		return err
//	}
//	defer conn.Close()
//
//	db, err := sundial.NewClient(conn, sundial.Config{})
//	if err != nil {
//		return err
//	}
//	key, err := sundial.Key("sensor-a")
//	if err != nil {
//		return err
//	}
//	res, err := db.Get(ctx, "metrics", key, nil)
//
// Server rejections surface as ServerError and malformed replies as
// wire.DecodingError; connection failures pass through untouched. A get
// for an absent key is a success with an empty result.
package sundial
