// Package cluster defines the pluggable boundary a ShardRegion or router
// would cross to reach actors hosted on another process — never exercised
// locally, since actorkit itself only runs single-node, but specified so a
// real transport (gRPC, NATS, raw TCP) can be dropped in later without
// touching actor/router/sharding (spec.md §4.8's "single node only for
// now" and Open Questions).
package cluster

import (
	"context"
	"errors"

	"github.com/sony/gobreaker"
)

// ErrUnreachable is returned by Transport implementations (and by
// NullTransport always) when a remote node cannot be reached.
var ErrUnreachable = errors.New("cluster: remote node unreachable")

// Codec serializes and deserializes messages crossing a Transport. Message
// types must be registered with the codec before they can cross the wire.
type Codec interface {
	Encode(message interface{}) ([]byte, error)
	Decode(data []byte, messageType string) (interface{}, error)
}

// Transport delivers an already-encoded message to a remote node address.
// Implementations are expected to wrap their dial/send path with a circuit
// breaker so a partitioned node fails fast instead of blocking every
// Send call behind a dial timeout.
type Transport interface {
	Send(ctx context.Context, address string, payload []byte) error
}

// NullTransport is the default Transport: it always fails, because
// actorkit ships with no real network backend. It exists so code depending
// on Transport (a future multi-node ShardRegion, for instance) has
// something concrete to wire against today; swapping in a real
// implementation (gRPC, NATS) requires no changes outside this package.
//
// The gobreaker.CircuitBreaker is real and engaged on every call: three
// consecutive failures trip it open for gobreaker's default open-state
// timeout (60 seconds, since Settings.Timeout is left zero), during which
// Send fails immediately with the breaker's own error instead of paying for a
// connection attempt that was always going to fail.
type NullTransport struct {
	breaker *gobreaker.CircuitBreaker[struct{}]
}

// NewNullTransport builds a NullTransport with a breaker named for logs.
func NewNullTransport(name string) *NullTransport {
	settings := gobreaker.Settings{
		Name: name,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 3
		},
	}
	return &NullTransport{breaker: gobreaker.NewCircuitBreaker[struct{}](settings)}
}

// Send always fails; see NullTransport's doc comment.
func (t *NullTransport) Send(ctx context.Context, address string, payload []byte) error {
	_, err := t.breaker.Execute(func() (struct{}, error) {
		return struct{}{}, ErrUnreachable
	})
	return err
}
