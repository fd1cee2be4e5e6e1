package cluster

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNullTransportAlwaysFails(t *testing.T) {
	tr := NewNullTransport("test")
	err := tr.Send(context.Background(), "node-2", []byte("hello"))
	assert.True(t, errors.Is(err, ErrUnreachable))
}

func TestNullTransportTripsBreakerAfterConsecutiveFailures(t *testing.T) {
	tr := NewNullTransport("test-trip")
	for i := 0; i < 3; i++ {
		_ = tr.Send(context.Background(), "node-2", nil)
	}
	err := tr.Send(context.Background(), "node-2", nil)
	assert.Error(t, err)
	assert.NotErrorIs(t, err, ErrUnreachable, "once tripped the breaker should return its own open-state error")
}

type pingEvent struct {
	Seq int `json:"seq"`
}

func TestJSONCodecRoundTrips(t *testing.T) {
	codec := NewJSONCodec()
	codec.Register("pingEvent", func() interface{} { return &pingEvent{} })

	data, err := codec.Encode(pingEvent{Seq: 7})
	assert.NoError(t, err)

	decoded, err := codec.Decode(data, "pingEvent")
	assert.NoError(t, err)
	assert.Equal(t, &pingEvent{Seq: 7}, decoded)
}

func TestJSONCodecUnknownTypeErrors(t *testing.T) {
	codec := NewJSONCodec()
	_, err := codec.Decode([]byte("{}"), "unknown")
	assert.Error(t, err)
}
