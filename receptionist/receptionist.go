package receptionist

import (
	"time"

	"github.com/google/uuid"

	"github.com/lguibr/actorkit/actor"
)

// Name is the well-known name the receptionist is spawned under, as a
// top-level actor beneath the user guardian — consistent with spec.md §9's
// instruction to keep this process-wide state inside the system record
// rather than a module-global singleton.
const Name = "receptionist"

// Receptionist is a typed façade over the internal registry actor. Its
// methods are safe to call concurrently from any goroutine: Register and
// Deregister are fire-and-forget tells, Find is a request/response over
// Ask, and Subscribe installs a standing push subscription.
type Receptionist struct {
	system *actor.System
	pid    actor.PID
}

// New spawns the receptionist as a top-level actor under system's user
// guardian and returns a handle to it. One Receptionist per System, typically created once at
// startup and shared.
func New(system *actor.System) *Receptionist {
	st := newState()

	behave := actor.Setup(func(ctx actor.Context) actor.Behavior {
		return actor.ReceiveMessage(func(ctx actor.Context, msg interface{}) actor.Directive {
			switch m := msg.(type) {
			case registerMsg:
				if st.register(m.key, m.ref) {
					ctx.Watch(m.ref)
					notifySubscribers(ctx, st, m.key)
				}
			case deregisterMsg:
				if st.deregister(m.key, m.ref) {
					notifySubscribers(ctx, st, m.key)
				}
			case findMsg:
				ctx.Tell(m.replyTo, st.listing(m.key))
			case subscribeMsg:
				st.addSubscriber(m.key, m.subscriber)
				ctx.Tell(m.subscriber, st.listing(m.key))
			default:
				return actor.Unhandled()
			}
			return actor.Same()
		}).WithSignal(func(ctx actor.Context, sig actor.Signal) actor.Directive {
			t, ok := sig.(actor.TerminatedSignal)
			if !ok {
				return actor.Unhandled()
			}
			for _, k := range st.deregisterRef(t.Who) {
				notifySubscribersByKeyString(ctx, st, k)
			}
			return actor.Same()
		})
	})

	pid, err := system.Spawn(behave, Name, actor.WithSupervision(actor.Supervision{Kind: actor.Resume}))
	if err != nil {
		// Name collisions here would mean New was called twice on the same
		// system; treat the existing instance as authoritative.
		pid, _ = system.GetOrSpawn(Name, func() actor.Behavior { return behave }, actor.WithSupervision(actor.Supervision{Kind: actor.Resume}))
	}
	return &Receptionist{system: system, pid: pid}
}

func notifySubscribers(ctx actor.Context, st *state, key Key) {
	notifySubscribersByKeyString(ctx, st, key.String())
}

func notifySubscribersByKeyString(ctx actor.Context, st *state, k string) {
	key, ok := st.byKey[k]
	if !ok {
		return
	}
	listing := st.listing(key)
	for _, sub := range st.subscribersFor(k) {
		ctx.Tell(sub, listing)
	}
}

// Register adds ref under key. Watch on ref is installed automatically so
// it is removed from the listing once it terminates (spec.md §4.5).
func (r *Receptionist) Register(key Key, ref actor.PID) {
	r.system.Tell(r.pid, registerMsg{key: key, ref: ref}, actor.PID{})
}

// Deregister removes ref from key's set.
func (r *Receptionist) Deregister(key Key, ref actor.PID) {
	r.system.Tell(r.pid, deregisterMsg{key: key, ref: ref}, actor.PID{})
}

// Find returns the current listing for key.
func (r *Receptionist) Find(key Key, timeout time.Duration) (Listing, error) {
	res, err := r.system.Ask(r.pid, timeout, func(replyTo actor.PID) interface{} {
		return findMsg{key: key, replyTo: replyTo}
	})
	if err != nil {
		return Listing{}, err
	}
	return res.(Listing), nil
}

// Subscribe delivers the current listing to subscriber immediately, and a
// fresh Listing value to its mailbox on every subsequent change, in the
// order changes were applied (spec.md §4.5).
func (r *Receptionist) Subscribe(key Key, subscriber actor.PID) {
	r.system.Tell(r.pid, subscribeMsg{key: key, subscriber: subscriber}, actor.PID{})
}

// SubscribeFunc adapts a plain Go callback into an actor that forwards
// every Listing it receives to callback, then installs that adapter as a
// subscriber. This is the "send-to-actor" adapter pattern spec.md §4.9
// describes for bridging non-actor code into the system.
func (r *Receptionist) SubscribeFunc(key Key, callback func(Listing)) (actor.PID, error) {
	adapter := actor.ReceiveMessage(func(ctx actor.Context, msg interface{}) actor.Directive {
		if l, ok := msg.(Listing); ok {
			callback(l)
		}
		return actor.Same()
	})
	pid, err := r.system.Spawn(adapter, "receptionist-subscriber-"+key.ID()+"-"+uuid.NewString())
	if err != nil {
		return actor.PID{}, err
	}
	r.Subscribe(key, pid)
	return pid, nil
}
