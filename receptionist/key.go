// Package receptionist implements the system-wide ServiceKey → actor refs
// registry of spec.md §4.5: a discovery mechanism actors use to find each
// other (and routers use to build group-routed pools) without hardcoding
// paths.
package receptionist

import (
	"fmt"
	"reflect"
)

// Key is the type-erased face of ServiceKey[M], so the receptionist's
// internal registry can be a single map keyed by Key rather than one map
// per message type. Equality is by (message_type_tag, string_id) per
// spec.md §3.
type Key interface {
	ID() string
	MessageType() reflect.Type
	String() string
}

// ServiceKey[M] pairs a string id with the static message type M a
// registered actor accepts, per spec.md §3. Producers and consumers obtain
// type-parameterized keys so mismatches are caught at the Go type-checker
// level wherever possible, per spec.md §4.2's typed-messaging contract.
type ServiceKey[M any] struct {
	id string
}

// NewServiceKey constructs a ServiceKey[M] with the given string id.
func NewServiceKey[M any](id string) ServiceKey[M] {
	return ServiceKey[M]{id: id}
}

func (k ServiceKey[M]) ID() string { return k.id }

func (k ServiceKey[M]) MessageType() reflect.Type {
	return reflect.TypeOf((*M)(nil)).Elem()
}

func (k ServiceKey[M]) String() string {
	return fmt.Sprintf("%s[%s]", k.id, k.MessageType())
}
