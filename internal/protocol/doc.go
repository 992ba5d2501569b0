// Package protocol implements the JSON wire format shared with the UI server.
//
// Every frame is an envelope {"type": kind, "data": payload}. Inbound kinds
// carry registry events (state, add, remove, change), the model hash, and
// heartbeats (ping, pong). Outbound frames are ping and action.
//
// Decode never panics on hostile input: malformed envelopes, unknown kinds,
// bad payloads, empty component ids and oversized frames all return an error
// wrapping ErrMalformed.
package protocol
