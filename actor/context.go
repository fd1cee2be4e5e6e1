package actor

import (
	"sync"
	"time"
)

// CancelFunc cancels a scheduled timer. Cancellation is cooperative: it
// prevents the envelope from being enqueued if it has not fired yet, but
// once enqueued the message runs regardless (spec.md §5).
type CancelFunc func()

// SpawnOption configures a child spawned via Context.Spawn.
type SpawnOption func(*spawnOptions)

type spawnOptions struct {
	supervision    *Supervision
	mailboxCapacity int
}

// WithSupervision attaches the strategy a parent applies to this specific
// child's failures, per spec.md §4.3 ("Strategy is attached at spawn time
// per child").
func WithSupervision(s Supervision) SpawnOption {
	return func(o *spawnOptions) { o.supervision = &s }
}

// WithMailboxCapacity bounds the child's mailbox; 0 (the default) is
// unbounded.
func WithMailboxCapacity(capacity int) SpawnOption {
	return func(o *spawnOptions) { o.mailboxCapacity = capacity }
}

// Context is what a behavior sees while handling a message or signal:
// spec.md §4.2's "setup(ctx → behavior) ... giving the behavior access to
// the ActorContext (spawn, watch, schedule, self)".
type Context interface {
	// Self is the PID of the actor processing the current message.
	Self() PID
	// Sender is the PID of the actor that sent the current message, the
	// zero PID if the message originated outside the actor system.
	Sender() PID
	// Message is the payload currently being processed.
	Message() interface{}
	// System returns the owning actor system.
	System() *System
	// Parent is this cell's parent, the zero PID for guardians.
	Parent() PID
	// Children lists this cell's currently live children.
	Children() []PID

	// Spawn creates a child of the current actor and returns its PID, or
	// DuplicateNameError if name collides with a live sibling.
	Spawn(behavior Behavior, name string, opts ...SpawnOption) (PID, error)

	// Tell sends message to target as this actor (Sender() will report
	// Self() to the recipient).
	Tell(target PID, message interface{})
	// Forward re-sends the message currently being processed to target,
	// preserving the original sender.
	Forward(target PID)
	// Respond replies to Sender(), a no-op (dead-lettered) if there is no
	// sender.
	Respond(message interface{})

	// Watch installs a one-shot Terminated notification for target.
	Watch(target PID)
	// Unwatch removes a previously installed watch. Idempotent.
	Unwatch(target PID)

	// Stop asynchronously stops target (commonly Self()).
	Stop(target PID)

	// ScheduleOnce delivers message to Self() after d.
	ScheduleOnce(d time.Duration, message interface{}) CancelFunc
	// SchedulePeriodically delivers message to Self() every interval,
	// starting after the first interval elapses.
	SchedulePeriodically(interval time.Duration, message interface{}) CancelFunc

	// SetReceiveTimeout arms a recurring ReceiveTimeout{} message after d
	// of no user message being received; d<=0 disarms it. The default is
	// disarmed.
	SetReceiveTimeout(d time.Duration)
}

// actorContext is the concrete Context implementation bound to one message
// invocation on one cell.
type actorContext struct {
	cell    *cell
	sender  PID
	message interface{}
}

func (c *actorContext) Self() PID             { return c.cell.selfPID() }
func (c *actorContext) Sender() PID           { return c.sender }
func (c *actorContext) Message() interface{}  { return c.message }
func (c *actorContext) System() *System       { return c.cell.system }
func (c *actorContext) Parent() PID {
	if c.cell.parent == nil {
		return PID{}
	}
	return c.cell.parent.selfPID()
}

func (c *actorContext) Children() []PID {
	c.cell.mu.Lock()
	defer c.cell.mu.Unlock()
	out := make([]PID, 0, len(c.cell.children))
	for _, ch := range c.cell.children {
		out = append(out, ch.selfPID())
	}
	return out
}

func (c *actorContext) Spawn(behavior Behavior, name string, opts ...SpawnOption) (PID, error) {
	return c.cell.system.spawnChild(c.cell, behavior, name, opts...)
}

func (c *actorContext) Tell(target PID, message interface{}) {
	c.cell.system.Tell(target, message, c.Self())
}

func (c *actorContext) Forward(target PID) {
	c.cell.system.Tell(target, c.message, c.sender)
}

func (c *actorContext) Respond(message interface{}) {
	if c.sender.IsZero() {
		c.cell.system.publishDeadLetter(message, c.Self(), Path{}, "respond with no sender")
		return
	}
	c.cell.system.Tell(c.sender, message, c.Self())
}

func (c *actorContext) Watch(target PID) {
	c.cell.system.watch(c.cell, target)
}

func (c *actorContext) Unwatch(target PID) {
	c.cell.system.unwatch(c.cell, target)
}

func (c *actorContext) Stop(target PID) {
	c.cell.system.Stop(target)
}

func (c *actorContext) ScheduleOnce(d time.Duration, message interface{}) CancelFunc {
	self := c.Self()
	sys := c.cell.system
	timer := time.AfterFunc(d, func() {
		sys.Tell(self, message, self)
	})
	return c.cell.trackCancel(func() { timer.Stop() })
}

func (c *actorContext) SetReceiveTimeout(d time.Duration) {
	c.cell.setReceiveTimeout(d)
}

func (c *actorContext) SchedulePeriodically(interval time.Duration, message interface{}) CancelFunc {
	self := c.Self()
	sys := c.cell.system
	ticker := time.NewTicker(interval)
	done := make(chan struct{})
	go func() {
		for {
			select {
			case <-ticker.C:
				sys.Tell(self, message, self)
			case <-done:
				return
			}
		}
	}()
	var once sync.Once
	cancel := func() {
		once.Do(func() {
			ticker.Stop()
			close(done)
		})
	}
	// Tracked on the cell so a caller that discards the handle (sharding's
	// idle sweep) still has its ticker torn down when the actor stops,
	// instead of leaking the goroutine above forever.
	return c.cell.trackCancel(cancel)
}
