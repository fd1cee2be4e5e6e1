package actor

import (
	"fmt"
	"reflect"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
)

// System is the actor registry interface (IN) of spec.md §6: the
// embeddable root that collaborators (Spring-style DI, CLI apps, tests)
// use to spawn named actors and obtain refs by name. Global state that the
// source language keeps as module-level singletons — the receptionist, the
// dead-letter stream, the topic registry — instead lives on System, so
// multiple independent systems can coexist in one process (spec.md §9).
type System struct {
	name   string
	cfg    Config
	events *EventStream
	metrics *MetricsHooks

	dispatcher *Dispatcher

	mu       sync.RWMutex
	registry map[string]*cell

	userGuardian   *cell
	systemGuardian *cell

	stopping atomic.Bool
}

// NewSystem constructs a System with its user and system guardians already
// started, and a dispatcher sized per cfg.
func NewSystem(name string, cfg Config, metrics *MetricsHooks) *System {
	s := &System{
		name:     name,
		cfg:      cfg,
		events:   NewEventStream(false),
		metrics:  metrics,
		registry: make(map[string]*cell),
	}
	s.dispatcher = NewDispatcher(cfg.WorkerThreads, cfg.DefaultThroughput)

	guardianBehavior := ReceiveMessage(func(ctx Context, msg interface{}) Directive {
		return Unhandled()
	})

	s.userGuardian = newCell(s, RootPath(name), nil, guardianBehavior, cfg.DefaultSupervision, 0)
	s.register(s.userGuardian)
	s.dispatcher.Enqueue(s.userGuardian, Envelope{Message: startMsg{}, EnqueuedAt: time.Now()}, true)

	s.systemGuardian = newCell(s, SystemRootPath(name), nil, guardianBehavior, cfg.DefaultSupervision, 0)
	s.register(s.systemGuardian)
	s.dispatcher.Enqueue(s.systemGuardian, Envelope{Message: startMsg{}, EnqueuedAt: time.Now()}, true)

	return s
}

// Name is the system's identifying prefix used in every Path's String().
func (s *System) Name() string { return s.name }

// Config returns the system's effective configuration.
func (s *System) Config() Config { return s.cfg }

// Events is the process-wide (system-scoped) event bus of component 4.9,
// also the home of the dead-letter stream (spec.md §6).
func (s *System) Events() *EventStream { return s.events }

// Guardian returns the PID of the user guardian, the implicit parent of
// every top-level actor spawned via Spawn or GetOrSpawn.
func (s *System) Guardian() PID { return s.userGuardian.selfPID() }

// SystemGuardian returns the PID of the internal guardian that owns
// system-level actors (ask's ephemeral reply actors).
func (s *System) SystemGuardian() PID { return s.systemGuardian.selfPID() }

func (s *System) register(c *cell) {
	s.mu.Lock()
	s.registry[c.path.String()] = c
	s.mu.Unlock()
}

func (s *System) unregister(p Path) {
	s.mu.Lock()
	delete(s.registry, p.String())
	s.mu.Unlock()
}

func (s *System) cellFor(pid PID) (*cell, bool) {
	s.mu.RLock()
	c, ok := s.registry[pid.Path.String()]
	s.mu.RUnlock()
	if !ok {
		return nil, false
	}
	if c.currentUid() != pid.uid {
		return nil, false
	}
	return c, true
}

// Spawn creates a named top-level actor under the user guardian, mirroring
// the "Actor registry interface (IN)" of spec.md §6: spawn(name, behavior).
// A collision with a live sibling returns *DuplicateNameError.
func (s *System) Spawn(behavior Behavior, name string, opts ...SpawnOption) (PID, error) {
	return s.spawnChild(s.userGuardian, behavior, name, opts...)
}

// GetOrSpawn returns the existing top-level actor named name if one is
// alive, otherwise spawns a fresh one from factory — the registry
// interface's get_or_spawn(name, behavior_factory).
func (s *System) GetOrSpawn(name string, factory func() Behavior, opts ...SpawnOption) (PID, error) {
	s.userGuardian.mu.Lock()
	if existing, ok := s.userGuardian.children[name]; ok && existing.state() != Stopped {
		pid := existing.selfPID()
		s.userGuardian.mu.Unlock()
		return pid, nil
	}
	s.userGuardian.mu.Unlock()
	return s.Spawn(factory(), name, opts...)
}

func (s *System) spawnChild(parent *cell, behavior Behavior, name string, opts ...SpawnOption) (PID, error) {
	if s.stopping.Load() {
		return PID{}, &ShutdownInProgressError{}
	}

	o := &spawnOptions{}
	for _, opt := range opts {
		opt(o)
	}
	supervision := s.cfg.DefaultSupervision
	if o.supervision != nil {
		supervision = *o.supervision
	}

	parent.mu.Lock()
	if existing, exists := parent.children[name]; exists && existing.state() != Stopped {
		parent.mu.Unlock()
		return PID{}, &DuplicateNameError{Parent: parent.path, Name: name}
	}
	child := newCell(s, parent.path.Child(name), parent, behavior, supervision, o.mailboxCapacity)
	parent.children[name] = child
	parent.mu.Unlock()

	s.register(child)
	s.dispatcher.Enqueue(child, Envelope{Message: startMsg{}, EnqueuedAt: time.Now()}, true)
	return child.selfPID(), nil
}

// Tell delivers message to target asynchronously. Undeliverable envelopes
// (unknown path, stale incarnation, closed mailbox) become a DeadLetter
// event rather than an error to the caller (spec.md §7).
func (s *System) Tell(target PID, message interface{}, sender PID) {
	c, ok := s.cellFor(target)
	if !ok {
		s.publishDeadLetter(message, sender, target.Path, "actor not found")
		return
	}
	res := s.dispatcher.Enqueue(c, Envelope{Message: message, Sender: sender, EnqueuedAt: time.Now()}, false)
	if res == Closed {
		s.publishDeadLetter(message, sender, target.Path, "mailbox closed")
	}
}

func (s *System) tellSystem(target PID, message interface{}) {
	c, ok := s.cellFor(target)
	if !ok {
		return
	}
	s.dispatcher.Enqueue(c, Envelope{Message: message, EnqueuedAt: time.Now()}, true)
}

func (s *System) tellSystemFailure(parent *cell, who PID, cause error, msgType reflect.Type) {
	s.dispatcher.Enqueue(parent, Envelope{Message: childFailureMsg{who: who, cause: cause, msgType: msgType}, EnqueuedAt: time.Now()}, true)
}

func (s *System) tellSystemRestart(c *cell, cause error) {
	s.dispatcher.Enqueue(c, Envelope{Message: restartMsg{cause: cause}, EnqueuedAt: time.Now()}, true)
}

func (s *System) watch(watcher *cell, target PID) {
	watcher.mu.Lock()
	watcher.watching[target.String()] = target
	watcher.mu.Unlock()
	c, ok := s.cellFor(target)
	if !ok || s.dispatcher.Enqueue(c, Envelope{Message: watchMsg{watcher: watcher.selfPID()}, EnqueuedAt: time.Now()}, true) == Closed {
		// The target is already gone: answer at once, as handleWatch does
		// for a target that is stopping.
		s.tellSystem(watcher.selfPID(), Terminated{Who: target})
	}
}

func (s *System) unwatch(watcher *cell, target PID) {
	watcher.mu.Lock()
	delete(watcher.watching, target.String())
	watcher.mu.Unlock()
	s.tellSystem(target, unwatchMsg{watcher: watcher.selfPID()})
}

// Stop asynchronously stops target; watch target for Terminated to
// synchronize on completion (spec.md §5).
func (s *System) Stop(target PID) {
	c, ok := s.cellFor(target)
	if !ok {
		return
	}
	s.dispatcher.Enqueue(c, Envelope{Message: stopMsg{}, EnqueuedAt: time.Now()}, true)
}

func (s *System) publishDeadLetter(message interface{}, sender PID, recipient Path, reason string) {
	if s.cfg.DeadLetterLogLevel != LogOff {
		fmt.Printf("actorkit: dead letter to %s (%s): %T\n", recipient, reason, message)
	}
	s.events.Publish(DeadLetter{Message: message, Sender: sender, RecipientPath: recipient, Reason: reason})
}

// Ask implements the request/response pattern of spec.md §4.4: an
// ephemeral one-shot actor is spawned under the system guardian, the
// factory-built message is sent to target with the ephemeral as sender,
// and the first reply (or timeout) completes the call. At-most-one reply
// is honored; further replies arrive after the ephemeral has already
// stopped and are dead-lettered by the normal mailbox-closed path.
func (s *System) Ask(target PID, timeout time.Duration, factory func(replyTo PID) interface{}) (interface{}, error) {
	if timeout <= 0 {
		timeout = s.cfg.AskDefaultTimeout
	}

	resultCh := make(chan interface{}, 1)
	var once sync.Once
	behavior := ReceiveMessage(func(ctx Context, msg interface{}) Directive {
		once.Do(func() { resultCh <- msg })
		return StoppedDirective()
	})

	replyPID, err := s.spawnChild(s.systemGuardian, behavior, "temp-"+uuid.NewString())
	if err != nil {
		return nil, err
	}

	s.Tell(target, factory(replyPID), replyPID)

	timer := time.NewTimer(timeout)
	defer timer.Stop()
	select {
	case res := <-resultCh:
		s.Stop(replyPID)
		return res, nil
	case <-timer.C:
		s.Stop(replyPID)
		return nil, &AskTimeoutError{Target: target.Path}
	}
}

// Shutdown cascades a stop to both guardians and waits up to timeout for
// every cell to reach Stopped before tearing down the dispatcher's worker
// pool — the same poll-for-drain idiom bollywood/engine.go's Shutdown uses,
// generalized with a real deadline bound (spec.md §5 "Termination of the
// system").
func (s *System) Shutdown(timeout time.Duration) {
	if !s.stopping.CompareAndSwap(false, true) {
		return
	}

	s.Stop(s.userGuardian.selfPID())
	s.Stop(s.systemGuardian.selfPID())

	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if s.userGuardian.isStopped() && s.systemGuardian.isStopped() {
			break
		}
		time.Sleep(10 * time.Millisecond)
	}

	s.dispatcher.Shutdown()
}
