package actor

import (
	"fmt"
	"reflect"
	"runtime/debug"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
)

// lifecycleState is the cell state machine of spec.md §3/§4.3.
type lifecycleState int32

const (
	Created lifecycleState = iota
	Starting
	Running
	Restarting
	Stopping
	Stopped
)

// cell is the unexported ActorCell of spec.md §3: identity, mailbox
// reference, behavior stack, parent/children links, supervision policy,
// watch sets, lifecycle state machine and restart statistics — grounded on
// protoactor-go's actorContext/actorContextExtras split
// (23864176_ypdxcn-protoactor-go__actor-actor_context.go.go), adapted to
// this kernel's CAS-scheduled dispatcher instead of one goroutine per actor.
type cell struct {
	system *System
	path   Path
	parent *cell

	mailbox *Mailbox

	uidMu sync.RWMutex
	uid   string

	mu       sync.Mutex
	children map[string]*cell
	watching map[string]PID // PIDs we watch
	watchedBy map[string]PID // PIDs watching us

	lifecycle atomic.Int32

	initial Behavior // the behavior/setup given to Spawn
	current Behavior // the live behavior for the current incarnation

	supervision Supervision
	restartCount int
	windowStart  time.Time

	recCounter int32 // P1 serial-execution guard: incremented/decremented around Receive

	rtMu       sync.Mutex
	rtDuration time.Duration
	rtTimer    *time.Timer

	timersMu sync.Mutex
	timers   []CancelFunc
}

func newCell(system *System, path Path, parent *cell, initial Behavior, supervision Supervision, mailboxCapacity int) *cell {
	c := &cell{
		system:    system,
		path:      path,
		parent:    parent,
		mailbox:   newMailbox(mailboxCapacity),
		children:  make(map[string]*cell),
		watching:  make(map[string]PID),
		watchedBy: make(map[string]PID),
		initial:   initial,
		supervision: supervision,
	}
	c.uid = uuid.NewString()
	c.lifecycle.Store(int32(Created))
	return c
}

func (c *cell) selfPID() PID {
	c.uidMu.RLock()
	defer c.uidMu.RUnlock()
	return PID{Path: c.path, uid: c.uid}
}

func (c *cell) currentUid() string {
	c.uidMu.RLock()
	defer c.uidMu.RUnlock()
	return c.uid
}

func (c *cell) state() lifecycleState {
	return lifecycleState(c.lifecycle.Load())
}

func (c *cell) isStopped() bool {
	return c.state() == Stopped
}

func (c *cell) metricsHooks() *MetricsHooks {
	return c.system.metrics
}

// invoke is called by the dispatcher with one envelope at a time; the
// run-to-completion invariant (P1) is guaranteed by the dispatcher never
// calling invoke concurrently for the same cell.
func (c *cell) invoke(env Envelope) {
	n := atomic.AddInt32(&c.recCounter, 1)
	defer atomic.AddInt32(&c.recCounter, -1)
	if n > 1 {
		// Should be unreachable given the dispatcher's CAS protocol; panic
		// loudly so P1 violations are caught by tests rather than silently
		// corrupting actor state.
		panic("actorkit: concurrent invoke on the same cell (P1 violation)")
	}

	c.metricsHooks().envelopeDequeued(c.path, messageTypeName(env.Message), env.EnqueuedAt)
	start := time.Now()
	var recvErr error

	switch msg := env.Message.(type) {
	case startMsg:
		recvErr = c.start()
	case watchMsg:
		c.handleWatch(msg.watcher)
	case unwatchMsg:
		c.handleUnwatch(msg.watcher)
	case stopMsg:
		c.beginStop()
	case Terminated:
		c.handleTerminatedEnvelope(msg)
	case childFailureMsg:
		c.handleChildFailure(msg)
	case restartMsg:
		recvErr = c.performRestart(msg.cause)
	default:
		recvErr = c.deliverUser(env)
	}

	c.metricsHooks().receiveComplete(c.path, messageTypeName(env.Message), start, recvErr)
}

// start runs the Starting -> Running transition: evaluate Setup (if any)
// and emit PreStart.
func (c *cell) start() (err error) {
	c.lifecycle.Store(int32(Starting))
	defer func() {
		if r := recover(); r != nil {
			err = panicToError(r)
			c.system.metrics.actorCreated(c.path) // created even if it died immediately; terminated below
			c.fail(err, reflect.TypeOf(PreStart{}))
		}
	}()

	ctx := &actorContext{cell: c}
	if c.initial.isSetup() {
		c.current = c.initial.setup(ctx)
	} else {
		c.current = c.initial
	}
	c.lifecycle.Store(int32(Running))
	c.system.metrics.actorCreated(c.path)
	c.invokeSignalChecked(PreStart{})
	return nil
}

func (c *cell) deliverUser(env Envelope) error {
	st := c.state()
	if st == Stopping || st == Stopped {
		c.system.publishDeadLetter(env.Message, env.Sender, c.path, "actor is stopping")
		return nil
	}
	ctx := &actorContext{cell: c, sender: env.Sender, message: env.Message}
	d, err := c.safeReceive(ctx, env.Message)
	c.resetReceiveTimeout()
	if err != nil {
		c.fail(err, reflect.TypeOf(env.Message))
		return err
	}
	c.applyDirective(d, env)
	return nil
}

// setReceiveTimeout arms (or, for d<=0, disarms) the idle timer behind
// Context.SetReceiveTimeout: a ReceiveTimeout{} message is delivered to
// self after d of no user message, and rearmed after every subsequent user
// message including ReceiveTimeout{} itself — the same recurring-while-idle
// behavior protoactor-go's actorContextExtras implements.
func (c *cell) setReceiveTimeout(d time.Duration) {
	c.rtMu.Lock()
	defer c.rtMu.Unlock()
	c.rtDuration = d
	c.armReceiveTimeoutLocked()
}

func (c *cell) resetReceiveTimeout() {
	c.rtMu.Lock()
	defer c.rtMu.Unlock()
	if c.rtDuration > 0 {
		c.armReceiveTimeoutLocked()
	}
}

func (c *cell) armReceiveTimeoutLocked() {
	if c.rtTimer != nil {
		c.rtTimer.Stop()
		c.rtTimer = nil
	}
	if c.rtDuration <= 0 {
		return
	}
	self := c.selfPID()
	sys := c.system
	c.rtTimer = time.AfterFunc(c.rtDuration, func() {
		sys.Tell(self, ReceiveTimeout{}, self)
	})
}

func (c *cell) stopReceiveTimeout() {
	c.rtMu.Lock()
	defer c.rtMu.Unlock()
	if c.rtTimer != nil {
		c.rtTimer.Stop()
		c.rtTimer = nil
	}
}

// trackCancel registers a CancelFunc returned by Context.ScheduleOnce or
// Context.SchedulePeriodically so it is invoked when the cell stops, even if
// the caller discards the handle (sharding's idle sweep does exactly this).
// Without this, a periodic ticker would keep Tell-ing into a closed mailbox
// forever: a leaked goroutine plus a steady stream of dead letters. If the
// cell has already stopped, cancel runs immediately instead of being queued.
func (c *cell) trackCancel(cancel CancelFunc) CancelFunc {
	c.timersMu.Lock()
	if c.isStopped() {
		c.timersMu.Unlock()
		cancel()
		return cancel
	}
	c.timers = append(c.timers, cancel)
	c.timersMu.Unlock()
	return cancel
}

func (c *cell) cancelTimers() {
	c.timersMu.Lock()
	timers := c.timers
	c.timers = nil
	c.timersMu.Unlock()
	for _, cancel := range timers {
		cancel()
	}
}

func (c *cell) safeReceive(ctx Context, msg interface{}) (d Directive, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = panicToError(r)
		}
	}()
	if c.current.receive == nil {
		return Unhandled(), nil
	}
	return c.current.receive(ctx, msg), nil
}

func (c *cell) applyDirective(d Directive, env Envelope) {
	switch d.kind {
	case dSame:
	case dReplace:
		c.current = d.next
	case dStopped:
		c.beginStop()
	case dUnhandled:
		c.system.publishDeadLetter(env.Message, env.Sender, c.path, "unhandled message")
	}
}

// invokeSignal calls OnSignal, recovering panics into a BehaviorException
// routed through supervision, and returns the directive for signals whose
// caller needs it (Terminated's death-pact check).
func (c *cell) invokeSignal(sig Signal) Directive {
	if c.current.onSignal == nil {
		return Unhandled()
	}
	ctx := &actorContext{cell: c, message: sig}
	var d Directive
	var err error
	func() {
		defer func() {
			if r := recover(); r != nil {
				err = panicToError(r)
			}
		}()
		d = c.current.onSignal(ctx, sig)
	}()
	if err != nil {
		c.fail(err, reflect.TypeOf(sig))
		return Same()
	}
	return d
}

// invokeSignalChecked is used where an Unhandled result has no special
// meaning beyond "ignore" (PreStart, PostStop, PreRestart, ChildTerminated).
func (c *cell) invokeSignalChecked(sig Signal) {
	c.invokeSignal(sig)
}

func panicToError(r interface{}) error {
	if err, ok := r.(error); ok {
		return err
	}
	return &BehaviorException{Cause: fmt.Errorf("%v\n%s", r, debug.Stack())}
}

// --- watch ---

func (c *cell) handleWatch(watcher PID) {
	if c.state() >= Stopping {
		c.system.tellSystem(watcher, Terminated{Who: c.selfPID()})
		return
	}
	c.mu.Lock()
	c.watchedBy[watcher.String()] = watcher
	c.mu.Unlock()
}

func (c *cell) handleUnwatch(watcher PID) {
	c.mu.Lock()
	delete(c.watchedBy, watcher.String())
	c.mu.Unlock()
}

func (c *cell) handleTerminatedEnvelope(msg Terminated) {
	name := msg.Who.Path.Name()
	c.mu.Lock()
	child, isChild := c.children[name]
	if isChild && child.currentUid() == msg.Who.uid {
		delete(c.children, name)
	} else {
		isChild = false
	}
	c.mu.Unlock()

	if isChild {
		c.invokeSignalChecked(ChildTerminated{Who: msg.Who})
		switch c.state() {
		case Restarting:
			c.tryFinishRestart()
		case Stopping:
			c.tryFinalizeStop()
		}
		return
	}

	// Not a child: this is a watch notification.
	c.mu.Lock()
	watched := false
	for k, w := range c.watching {
		if w.Path.String() == msg.Who.Path.String() {
			delete(c.watching, k)
			watched = true
		}
	}
	c.mu.Unlock()
	if !watched {
		// Unwatch already removed this watch; the notification is stale.
		return
	}

	d := c.invokeSignal(TerminatedSignal{Who: msg.Who})
	if d.kind == dUnhandled {
		c.fail(&DeathPactViolationError{Watcher: c.path, Terminated: msg.Who.Path}, reflect.TypeOf(TerminatedSignal{}))
		return
	}
	c.applyDirective(d, Envelope{Message: msg.Who})
}

// --- failure & supervision ---

func (c *cell) handleChildFailure(msg childFailureMsg) {
	// A child escalated to us: apply our own supervision as if we ourselves
	// had failed (spec.md §4.3 Escalate: "the parent itself fails").
	c.fail(msg.cause, msg.msgType)
}

func (c *cell) fail(err error, msgType reflect.Type) {
	switch err.(type) {
	case *DeathPactViolationError, *RestartBudgetExceededError, *BehaviorException:
	default:
		err = &BehaviorException{Who: c.selfPID(), MessageType: msgType, Cause: err}
	}
	switch c.supervision.Kind {
	case Resume:
		return
	case StopStrategy:
		c.beginStop()
	case Escalate:
		if c.parent != nil {
			c.parent.system.tellSystemFailure(c.parent, c.selfPID(), err, msgType)
		} else {
			c.beginStop()
		}
	case RestartStrategy:
		c.recordFailureAndMaybeRestart(err, msgType)
	}
}

func (c *cell) recordFailureAndMaybeRestart(cause error, msgType reflect.Type) {
	now := time.Now()
	if c.supervision.unbounded() || c.windowStart.IsZero() || now.Sub(c.windowStart) > c.supervision.Window {
		c.windowStart = now
		c.restartCount = 0
	}
	c.restartCount++

	if !c.supervision.unbounded() && c.restartCount > c.supervision.MaxRetries {
		budgetErr := &RestartBudgetExceededError{Who: c.path, MaxRetries: c.supervision.MaxRetries, WithinLast: c.supervision.Window.String()}
		if c.parent != nil {
			c.parent.system.tellSystemFailure(c.parent, c.selfPID(), budgetErr, msgType)
		}
		c.beginStop()
		return
	}

	c.system.tellSystemRestart(c, cause)
}

// performRestart begins a restart: emit PreRestart, stop children, and wait
// (via handleTerminatedEnvelope) for them all to finish before rebuilding.
func (c *cell) performRestart(cause error) error {
	c.lifecycle.Store(int32(Restarting))
	c.invokeSignalChecked(PreRestart{Cause: cause})
	c.stopAllChildren()
	c.tryFinishRestart()
	return nil
}

func (c *cell) tryFinishRestart() {
	c.mu.Lock()
	empty := len(c.children) == 0
	c.mu.Unlock()
	if !empty || c.state() != Restarting {
		return
	}
	c.finishRestart()
}

func (c *cell) finishRestart() {
	c.uidMu.Lock()
	c.uid = uuid.NewString()
	c.uidMu.Unlock()

	ctx := &actorContext{cell: c}
	if c.initial.isSetup() {
		c.current = c.initial.setup(ctx)
	} else {
		c.current = c.initial
	}
	c.lifecycle.Store(int32(Running))
}

// --- stop ---

func (c *cell) stopAllChildren() {
	c.mu.Lock()
	kids := make([]*cell, 0, len(c.children))
	for _, ch := range c.children {
		kids = append(kids, ch)
	}
	c.mu.Unlock()
	for _, ch := range kids {
		c.system.Stop(ch.selfPID())
	}
}

func (c *cell) beginStop() {
	if c.state() >= Stopping {
		return
	}
	c.lifecycle.Store(int32(Stopping))
	c.stopAllChildren()
	c.tryFinalizeStop()
}

func (c *cell) tryFinalizeStop() {
	c.mu.Lock()
	empty := len(c.children) == 0
	c.mu.Unlock()
	if !empty || c.state() != Stopping {
		return
	}
	c.finalizeStop()
}

func (c *cell) finalizeStop() {
	c.lifecycle.Store(int32(Stopped))
	c.stopReceiveTimeout()
	c.cancelTimers()
	c.invokeSignalChecked(PostStop{})
	dropped := c.mailbox.close()
	for _, env := range dropped {
		if w, ok := env.Message.(watchMsg); ok {
			// A watch that arrived too late to be handled still gets its answer.
			c.system.tellSystem(w.watcher, Terminated{Who: c.selfPID()})
			continue
		}
		c.system.publishDeadLetter(env.Message, env.Sender, c.path, "actor stopped")
	}

	c.mu.Lock()
	watchers := make([]PID, 0, len(c.watchedBy))
	for _, w := range c.watchedBy {
		watchers = append(watchers, w)
	}
	watching := make([]PID, 0, len(c.watching))
	for _, w := range c.watching {
		watching = append(watching, w)
	}
	c.mu.Unlock()

	self := c.selfPID()
	for _, w := range watchers {
		c.system.tellSystem(w, Terminated{Who: self})
	}
	for _, w := range watching {
		c.system.tellSystem(w, unwatchMsg{watcher: self})
	}
	if c.parent != nil {
		c.system.tellSystem(c.parent.selfPID(), Terminated{Who: self})
	}

	c.system.unregister(c.path)
	c.system.metrics.actorTerminated(c.path)
}

