package router

import (
	"fmt"
	"math/rand"

	"github.com/lguibr/actorkit/actor"
)

// PoolConfig configures a Pool router.
type PoolConfig struct {
	Size         int
	Strategy     Strategy
	VirtualNodes int // only meaningful for ConsistentHash; defaults to DefaultVirtualNodes
	Supervision  actor.Supervision
}

// Pool is a router that owns and supervises a fixed-size set of worker
// actors it spawned itself, replacing any that terminate one-for-one
// (spec.md §4.6).
type Pool struct {
	PID actor.PID
}

// NewPool spawns cfg.Size workers from factory under name, and a router
// actor in front of them that dispatches incoming messages per cfg.Strategy.
func NewPool(system *actor.System, name string, factory func() actor.Behavior, cfg PoolConfig) (*Pool, error) {
	if cfg.Size <= 0 {
		cfg.Size = 1
	}
	if cfg.VirtualNodes <= 0 {
		cfg.VirtualNodes = DefaultVirtualNodes
	}

	behave := actor.Setup(func(ctx actor.Context) actor.Behavior {
		workers := make([]actor.PID, cfg.Size)
		slot := make(map[string]int, cfg.Size)
		ring := newHashRing(cfg.VirtualNodes)
		for i := 0; i < cfg.Size; i++ {
			childName := fmt.Sprintf("worker-%d", i)
			pid, err := ctx.Spawn(factory(), childName, actor.WithSupervision(cfg.Supervision))
			if err != nil {
				continue
			}
			ctx.Watch(pid)
			workers[i] = pid
			slot[childName] = i
			ring.add(pid)
		}
		idx := 0

		return actor.ReceiveMessage(func(ctx actor.Context, msg interface{}) actor.Directive {
			return dispatch(ctx, workers, ring, cfg.Strategy, &idx)
		}).WithSignal(func(ctx actor.Context, sig actor.Signal) actor.Directive {
			ct, ok := sig.(actor.ChildTerminated)
			if !ok {
				return actor.Unhandled()
			}
			i, known := slot[ct.Who.Path.Name()]
			if !known {
				return actor.Same()
			}
			replacement, err := ctx.Spawn(factory(), ct.Who.Path.Name(), actor.WithSupervision(cfg.Supervision))
			if err != nil {
				return actor.Same()
			}
			ctx.Watch(replacement)
			ring.replace(workers[i], replacement)
			workers[i] = replacement
			return actor.Same()
		})
	})

	pid, err := system.Spawn(behave, name, actor.WithSupervision(actor.Supervision{Kind: actor.Resume}))
	if err != nil {
		return nil, err
	}
	return &Pool{PID: pid}, nil
}

// dispatch picks a worker (or broadcasts) per strategy. Returns Unhandled
// when there is no eligible worker, so the cell machinery dead-letters the
// message exactly once rather than silently dropping it.
func dispatch(ctx actor.Context, workers []actor.PID, ring *hashRing, strategy Strategy, idx *int) actor.Directive {
	live := liveOf(workers)
	if len(live) == 0 {
		return actor.Unhandled()
	}
	switch strategy {
	case RoundRobin:
		w := live[*idx%len(live)]
		*idx++
		ctx.Forward(w)
	case Random:
		w := live[rand.Intn(len(live))]
		ctx.Forward(w)
	case Broadcast:
		msg, sender := ctx.Message(), ctx.Sender()
		for _, w := range live {
			ctx.System().Tell(w, msg, sender)
		}
	case ConsistentHash:
		hk, ok := ctx.Message().(HashKeyed)
		if !ok {
			return actor.Unhandled()
		}
		w, ok := ring.route(hk.HashKey())
		if !ok {
			return actor.Unhandled()
		}
		ctx.Forward(w)
	default:
		return actor.Unhandled()
	}
	return actor.Same()
}

func liveOf(workers []actor.PID) []actor.PID {
	out := make([]actor.PID, 0, len(workers))
	for _, w := range workers {
		if !w.IsZero() {
			out = append(out, w)
		}
	}
	return out
}
