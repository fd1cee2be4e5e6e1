package actor

import (
	"reflect"
	"time"
)

// Envelope is the triple (message, sender, enqueue_time) of spec.md §3. The
// enqueue timestamp lives on the envelope itself rather than in a global
// weak map keyed by envelope identity — the simplification spec.md §9
// calls for in its "weak references" design note.
type Envelope struct {
	Message     interface{}
	Sender      PID
	EnqueuedAt  time.Time
}

// ReceiveTimeout is delivered to an actor's own Receive, as an ordinary
// user message, after Context.SetReceiveTimeout's duration has elapsed
// with no other user message arriving. It travels the normal user lane
// rather than the system lane, so a busy actor's pending work is never
// preempted by its own idle timer.
type ReceiveTimeout struct{}

// systemMessage is the marker interface for envelopes that must travel in
// the priority lane ahead of user messages within a drain step (spec.md
// §4.1, §4.3 "Ordering guarantees").
type systemMessage interface {
	isSystemMessage()
}

type startMsg struct{}

func (startMsg) isSystemMessage() {}

type watchMsg struct{ watcher PID }

func (watchMsg) isSystemMessage() {}

type unwatchMsg struct{ watcher PID }

func (unwatchMsg) isSystemMessage() {}

type stopMsg struct{}

func (stopMsg) isSystemMessage() {}

// Terminated is delivered to watchers, and to a parent for each terminated
// child, as a system message.
type Terminated struct{ Who PID }

func (Terminated) isSystemMessage() {}

type childFailureMsg struct {
	who     PID
	cause   error
	msgType reflect.Type
}

func (childFailureMsg) isSystemMessage() {}

type restartMsg struct{ cause error }

func (restartMsg) isSystemMessage() {}
