// Package signaling contains the websocket surface for joining, chat sends,
// and call signaling relay.
//
// The relay forwards offers, answers and ICE candidates between identities
// without keeping per-call state; call correctness is owned entirely by the
// two endpoints.
package signaling
