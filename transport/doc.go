// Package transport maintains the persistent connection a Sundial
// client speaks over: TCP dial with backoff, optional TLS, the JSON
// hello/welcome handshake, and the fixed-header binary framing that
// carries wire messages. One request is outstanding per connection at
// a time; Call serializes concurrent callers.
package transport
