package actor

import "reflect"

// Signal is the tagged-variant replacement for the inheritance-based signal
// handling of the source system (spec.md §9): PreStart, PostStop,
// PreRestart, ChildTerminated and Terminated are concrete struct types
// implementing this empty marker interface, and OnSignal type-switches on
// them.
type Signal interface{ isSignal() }

type PreStart struct{}

func (PreStart) isSignal() {}

type PostStop struct{}

func (PostStop) isSignal() {}

type PreRestart struct{ Cause error }

func (PreRestart) isSignal() {}

type ChildTerminated struct{ Who PID }

func (ChildTerminated) isSignal() {}

// TerminatedSignal is delivered to a watcher when a watched PID reaches
// Stopped (spec.md §4.3 watch semantics). Named distinctly from the
// envelope-level Terminated system message it is derived from, since a
// behavior's OnSignal deals in Signal values, not raw envelopes.
type TerminatedSignal struct{ Who PID }

func (TerminatedSignal) isSignal() {}

// directiveKind is the result of Receive/OnSignal: spec.md §4.2 enumerates
// same, unhandled, replace(new_behavior), stopped.
type directiveKind int

const (
	dSame directiveKind = iota
	dUnhandled
	dReplace
	dStopped
)

// Directive is the value a behavior's Receive or OnSignal function returns.
type Directive struct {
	kind directiveKind
	next Behavior
}

// Same keeps the current behavior unchanged.
func Same() Directive { return Directive{kind: dSame} }

// Unhandled marks the message as not handled by this behavior; the cell
// dead-letters it (or, for an unhandled Terminated signal specifically,
// raises a DeathPactViolationError per spec.md §4.3).
func Unhandled() Directive { return Directive{kind: dUnhandled} }

// ReplaceWith swaps in a new behavior for subsequent messages.
func ReplaceWith(b Behavior) Directive { return Directive{kind: dReplace, next: b} }

// StoppedDirective requests the cell stop itself after this message.
func StoppedDirective() Directive { return Directive{kind: dStopped} }

// Behavior is the pair (receive, on_signal) of spec.md §4.2, optionally
// produced once per incarnation by a Setup function that observes the
// ActorContext — mirroring the teacher's Producer func() Actor, generalized
// so the constructor sees ctx (spawn/watch/schedule/self) as spec.md §4.2
// requires and so behaviors are plain composable values rather than an
// interface hierarchy (spec.md §9).
type Behavior struct {
	setup    func(ctx Context) Behavior
	receive  func(ctx Context, msg interface{}) Directive
	onSignal func(ctx Context, sig Signal) Directive
}

// Setup evaluates f once per incarnation, producing the actual initial
// Behavior: when the cell first runs, and again after every restart.
func Setup(f func(ctx Context) Behavior) Behavior {
	return Behavior{setup: f}
}

// ReceiveMessage builds a Behavior from a plain message handler with no
// signal handling (unhandled signals are ignored, except Terminated, which
// triggers the death-pact rule).
func ReceiveMessage(f func(ctx Context, msg interface{}) Directive) Behavior {
	return Behavior{receive: f}
}

// WithSignal attaches (or replaces) the signal handler on a Behavior,
// letting a supervisor behavior intercept specific signal types before
// delegating to a wrapped child behavior — composition instead of
// subclassing, per spec.md §9.
func (b Behavior) WithSignal(f func(ctx Context, sig Signal) Directive) Behavior {
	b.onSignal = f
	return b
}

func (b Behavior) isSetup() bool { return b.setup != nil }

func (b Behavior) isZero() bool { return b.setup == nil && b.receive == nil && b.onSignal == nil }

func typeName(v interface{}) string {
	if v == nil {
		return "<nil>"
	}
	t := reflect.TypeOf(v)
	return t.String()
}
