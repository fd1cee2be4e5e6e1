package actor

import (
	"reflect"
	"sync"
)

// DeadLetter is the well-known event published on the EventStream whenever
// an envelope cannot be delivered (spec.md §6 "Dead-letter stream (OUT)").
type DeadLetter struct {
	Message       interface{}
	Sender        PID
	RecipientPath Path
	Reason        string
}

// EventStream is the process-wide (but system-scoped — see spec.md §9 on
// avoiding module-global singletons) publish/subscribe bus of component
// 4.9. Handlers are registered per concrete event type. Dispatch can run
// synchronously on the publisher's goroutine, where delivery to handlers of
// a given type happens in publication order, or be fanned out to a
// goroutine per handler, where no delivery order is guaranteed; the async
// argument of NewEventStream selects the mode, and a System always builds
// its stream in synchronous mode — mirroring
// the sync/async toggle of 6d1dd373_thushan-olla__pkg-eventbus design this
// is grounded on, simplified to the teacher's sync.RWMutex-protected map
// idiom rather than a lock-free structure, since actorkit's event volume
// is bounded by dead letters and user-registered bridges, not hot-path
// message traffic.
type EventStream struct {
	async bool

	mu       sync.RWMutex
	handlers map[reflect.Type][]*subscription
	seq      uint64
}

type subscription struct {
	id      uint64
	handler func(event interface{})
}

// Subscription is a cancellable handle returned by EventStream.Subscribe.
type Subscription struct {
	eventType reflect.Type
	id        uint64
	bus       *EventStream
}

// Unsubscribe removes the handler. Idempotent.
func (s Subscription) Unsubscribe() {
	s.bus.mu.Lock()
	defer s.bus.mu.Unlock()
	subs := s.bus.handlers[s.eventType]
	for i, sub := range subs {
		if sub.id == s.id {
			s.bus.handlers[s.eventType] = append(subs[:i], subs[i+1:]...)
			return
		}
	}
}

// NewEventStream creates an EventStream. async selects whether each
// handler is invoked on its own goroutine (true) or synchronously on the
// publisher's goroutine in registration order (false).
func NewEventStream(async bool) *EventStream {
	return &EventStream{
		async:    async,
		handlers: make(map[reflect.Type][]*subscription),
	}
}

// Subscribe registers handler for every event whose concrete type matches
// a sample value of the same type as zeroValueSample (typically passed as
// e.g. DeadLetter{}).
func (es *EventStream) Subscribe(zeroValueSample interface{}, handler func(event interface{})) Subscription {
	t := reflect.TypeOf(zeroValueSample)
	es.mu.Lock()
	defer es.mu.Unlock()
	es.seq++
	sub := &subscription{id: es.seq, handler: handler}
	es.handlers[t] = append(es.handlers[t], sub)
	return Subscription{eventType: t, id: sub.id, bus: es}
}

// Publish delivers event to every handler currently subscribed to its
// concrete type, in subscription order.
func (es *EventStream) Publish(event interface{}) {
	t := reflect.TypeOf(event)
	es.mu.RLock()
	subs := make([]*subscription, len(es.handlers[t]))
	copy(subs, es.handlers[t])
	es.mu.RUnlock()

	for _, sub := range subs {
		if es.async {
			go sub.handler(event)
		} else {
			sub.handler(event)
		}
	}
}
