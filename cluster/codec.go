package cluster

import (
	"encoding/json"
	"fmt"
)

// JSONCodec is the default Codec. It requires every wire type to be
// registered up front so Decode can reconstruct a concrete value from the
// type name carried alongside the payload, rather than unmarshaling into
// interface{} and losing the concrete type.
//
// Standard library encoding/json is used directly here rather than a
// third-party serialization library: actorkit carries no network backend
// of its own (see NullTransport), so this codec exists only to give a
// real Transport implementation something to decode with. Every
// third-party serialization option the example pack surfaces (protobuf,
// msgpack) requires generated or hand-written schemas per message type,
// which has no home without a live wire protocol to drive it; see
// DESIGN.md.
type JSONCodec struct {
	types map[string]func() interface{}
}

// NewJSONCodec builds an empty codec; call Register for every message type
// that may cross the wire.
func NewJSONCodec() *JSONCodec {
	return &JSONCodec{types: make(map[string]func() interface{})}
}

// Register associates a type name with a zero-value factory, so Decode can
// allocate the right concrete type before unmarshaling into it.
func (c *JSONCodec) Register(typeName string, factory func() interface{}) {
	c.types[typeName] = factory
}

// Encode marshals message with encoding/json.
func (c *JSONCodec) Encode(message interface{}) ([]byte, error) {
	return json.Marshal(message)
}

// Decode allocates a fresh value for messageType via its registered
// factory and unmarshals data into it.
func (c *JSONCodec) Decode(data []byte, messageType string) (interface{}, error) {
	factory, ok := c.types[messageType]
	if !ok {
		return nil, fmt.Errorf("cluster: no type registered for %q", messageType)
	}
	out := factory()
	if err := json.Unmarshal(data, out); err != nil {
		return nil, err
	}
	return out, nil
}
