package actor

import (
	"fmt"
	"reflect"
)

// DuplicateNameError is returned synchronously to a caller of Spawn or
// Context.Spawn when the requested name is already held by a live sibling.
type DuplicateNameError struct {
	Parent Path
	Name   string
}

func (e *DuplicateNameError) Error() string {
	return fmt.Sprintf("actorkit: duplicate name %q under %s", e.Name, e.Parent)
}

// AskTimeoutError is returned by Ask when no reply arrives within the
// requested deadline.
type AskTimeoutError struct {
	Target Path
}

func (e *AskTimeoutError) Error() string {
	return fmt.Sprintf("actorkit: ask timed out waiting for reply from %s", e.Target)
}

// DeliveryFailureError describes an envelope that could not be delivered:
// mailbox closed, target path unresolved, or message type rejected at
// enqueue time. Per spec.md §7 this is never surfaced to tell's caller; it
// is only carried on the DeadLetter event.
type DeliveryFailureError struct {
	Recipient Path
	Reason    string
}

func (e *DeliveryFailureError) Error() string {
	return fmt.Sprintf("actorkit: delivery failure to %s: %s", e.Recipient, e.Reason)
}

// RestartBudgetExceededError is raised internally when a child exceeds its
// restart budget: the child stops, and the error is sent unwrapped to its
// parent, which then fails with it under the parent's own supervision.
type RestartBudgetExceededError struct {
	Who         Path
	MaxRetries  int
	WithinLast  string
}

func (e *RestartBudgetExceededError) Error() string {
	return fmt.Sprintf("actorkit: %s exceeded restart budget (%d within %s)", e.Who, e.MaxRetries, e.WithinLast)
}

// DeathPactViolationError is raised when a cell receives Terminated but
// does not handle it in OnSignal; per spec.md §4.3 this is itself subject
// to normal supervision.
type DeathPactViolationError struct {
	Watcher    Path
	Terminated Path
}

func (e *DeathPactViolationError) Error() string {
	return fmt.Sprintf("actorkit: %s did not handle Terminated(%s) (death pact)", e.Watcher, e.Terminated)
}

// ShutdownInProgressError is returned quickly for operations attempted after
// the system's root guardian has begun stopping.
type ShutdownInProgressError struct{}

func (e *ShutdownInProgressError) Error() string {
	return "actorkit: system is shutting down"
}

// BehaviorException wraps a panic or returned error from a behavior's
// Receive/OnSignal, carrying the triggering message type and cause chain as
// required by spec.md §7. It is never delivered to the sender; it is
// consumed entirely by supervision.
type BehaviorException struct {
	Who         PID
	MessageType reflect.Type
	Cause       error
	Stack       []byte
}

func (e *BehaviorException) Error() string {
	return fmt.Sprintf("actorkit: %s failed handling %s: %v", e.Who, e.MessageType, e.Cause)
}

func (e *BehaviorException) Unwrap() error { return e.Cause }
