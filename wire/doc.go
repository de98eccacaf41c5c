// Package wire implements the binary protocol spoken by Sundial
// servers: typed cells, record and row-set blobs, and the TLV message
// payloads that carry them. Framing and connection handling live in
// package transport; this package only concerns itself with bytes.
package wire
