// Package pubsub implements the named topic registry of spec.md §4.7: a
// get_or_create(name) idempotent lookup over actors that fan a published
// message out to every current subscriber, pruning subscribers
// automatically when they terminate.
package pubsub

import "github.com/lguibr/actorkit/actor"

const topicNamePrefix = "topic-"

// Topic is a handle to one named topic actor. Two Topic values obtained via
// GetOrCreate with the same name on the same System refer to the same
// underlying actor.
type Topic struct {
	system *actor.System
	pid    actor.PID
	name   string
}

// GetOrCreate returns the topic named name, spawning it on first use.
// stopWhenEmpty controls whether the topic actor stops itself once its
// subscriber set becomes empty; GetOrCreate uses only this argument and
// does not read Config.TopicStopWhenEmpty. A stopped topic is replaced only
// by a later GetOrCreate call; Subscribe and Publish on a handle to a
// stopped topic are dead-lettered.
func GetOrCreate(system *actor.System, name string, stopWhenEmpty bool) (*Topic, error) {
	pid, err := system.GetOrSpawn(topicNamePrefix+name, func() actor.Behavior {
		return newTopicBehavior(stopWhenEmpty)
	}, actor.WithSupervision(actor.Supervision{Kind: actor.Resume}))
	if err != nil {
		return nil, err
	}
	return &Topic{system: system, pid: pid, name: name}, nil
}

func newTopicBehavior(stopWhenEmpty bool) actor.Behavior {
	return actor.Setup(func(ctx actor.Context) actor.Behavior {
		subs := make(map[string]actor.PID)

		stopIfEmpty := func(ctx actor.Context) {
			if stopWhenEmpty && len(subs) == 0 {
				ctx.Stop(ctx.Self())
			}
		}

		return actor.ReceiveMessage(func(ctx actor.Context, msg interface{}) actor.Directive {
			switch m := msg.(type) {
			case subscribeMsg:
				if _, exists := subs[m.subscriber.String()]; !exists {
					subs[m.subscriber.String()] = m.subscriber
					ctx.Watch(m.subscriber)
				}
			case unsubscribeMsg:
				if _, exists := subs[m.subscriber.String()]; exists {
					delete(subs, m.subscriber.String())
					ctx.Unwatch(m.subscriber)
					stopIfEmpty(ctx)
				}
			case publishMsg:
				for _, sub := range subs {
					ctx.Tell(sub, m.message)
				}
			default:
				return actor.Unhandled()
			}
			return actor.Same()
		}).WithSignal(func(ctx actor.Context, sig actor.Signal) actor.Directive {
			t, ok := sig.(actor.TerminatedSignal)
			if !ok {
				return actor.Unhandled()
			}
			if _, exists := subs[t.Who.String()]; exists {
				delete(subs, t.Who.String())
				stopIfEmpty(ctx)
			}
			return actor.Same()
		})
	})
}

// Name is the topic's registry name (without the internal actor prefix).
func (t *Topic) Name() string { return t.name }

// PID is the underlying topic actor's address.
func (t *Topic) PID() actor.PID { return t.pid }

// Subscribe adds subscriber to the topic. The order in which subscribers
// receive a given Publish call's message is not defined.
func (t *Topic) Subscribe(subscriber actor.PID) {
	t.system.Tell(t.pid, subscribeMsg{subscriber: subscriber}, actor.PID{})
}

// Unsubscribe removes subscriber. A subscriber that simply terminates is
// pruned automatically via watch, so explicit Unsubscribe is only needed
// to stop receiving while still alive.
func (t *Topic) Unsubscribe(subscriber actor.PID) {
	t.system.Tell(t.pid, unsubscribeMsg{subscriber: subscriber}, actor.PID{})
}

// Publish fans message out to every current subscriber.
func (t *Topic) Publish(message interface{}) {
	t.system.Tell(t.pid, publishMsg{message: message}, actor.PID{})
}
