package actor

import "time"

// MetricsHooks is the OUT interface of spec.md §6: an embedding host (e.g.
// the ByteBuddy-instrumented agent this kernel is decoupled from) supplies
// an implementation to observe actor lifecycle and mailbox timing without
// the kernel depending on any particular metrics backend. A nil hook field
// is always tolerated; implementations must not block the dispatcher, so
// every call site here is a plain, non-blocking method call, made from the
// sending goroutine for OnEnvelopeEnqueued and from the worker goroutine
// for the others — a slow implementation is the implementer's problem,
// not the kernel's, exactly as spec.md §6 requires.
type MetricsHooks struct {
	OnActorCreated     func(path Path)
	OnActorTerminated  func(path Path)
	OnEnvelopeEnqueued func(path Path, msgType string)
	OnEnvelopeDequeued func(path Path, msgType string, waitNanos int64)
	OnReceiveComplete  func(path Path, msgType string, processNanos int64, err error)
}

func (m *MetricsHooks) actorCreated(path Path) {
	if m != nil && m.OnActorCreated != nil {
		m.OnActorCreated(path)
	}
}

func (m *MetricsHooks) actorTerminated(path Path) {
	if m != nil && m.OnActorTerminated != nil {
		m.OnActorTerminated(path)
	}
}

func (m *MetricsHooks) envelopeEnqueued(path Path, msgType string) {
	if m != nil && m.OnEnvelopeEnqueued != nil {
		m.OnEnvelopeEnqueued(path, msgType)
	}
}

func (m *MetricsHooks) envelopeDequeued(path Path, msgType string, enqueuedAt time.Time) {
	if m != nil && m.OnEnvelopeDequeued != nil {
		m.OnEnvelopeDequeued(path, msgType, time.Since(enqueuedAt).Nanoseconds())
	}
}

func (m *MetricsHooks) receiveComplete(path Path, msgType string, start time.Time, err error) {
	if m != nil && m.OnReceiveComplete != nil {
		m.OnReceiveComplete(path, msgType, time.Since(start).Nanoseconds(), err)
	}
}
