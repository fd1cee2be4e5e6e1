package router

import (
	"github.com/lguibr/actorkit/actor"
	"github.com/lguibr/actorkit/receptionist"
)

// GroupConfig configures a Group router.
type GroupConfig struct {
	Strategy     Strategy
	VirtualNodes int
}

// Group is a router that does not own its workers: it subscribes to a
// receptionist ServiceKey and routes among whatever refs are currently
// registered under it, updating as the listing changes (spec.md §4.6).
type Group struct {
	PID actor.PID
}

// NewGroup spawns a router actor under name that routes to the listing for
// key, refreshed via recept.Subscribe.
func NewGroup(system *actor.System, recept *receptionist.Receptionist, key receptionist.Key, name string, cfg GroupConfig) (*Group, error) {
	if cfg.VirtualNodes <= 0 {
		cfg.VirtualNodes = DefaultVirtualNodes
	}

	behave := actor.Setup(func(ctx actor.Context) actor.Behavior {
		var current []actor.PID
		ring := newHashRing(cfg.VirtualNodes)
		idx := 0
		recept.Subscribe(key, ctx.Self())

		return actor.ReceiveMessage(func(ctx actor.Context, msg interface{}) actor.Directive {
			if listing, ok := msg.(receptionist.Listing); ok {
				current = listing.Refs
				ring = newHashRing(cfg.VirtualNodes)
				for _, r := range current {
					ring.add(r)
				}
				return actor.Same()
			}
			return dispatch(ctx, current, ring, cfg.Strategy, &idx)
		})
	})

	pid, err := system.Spawn(behave, name, actor.WithSupervision(actor.Supervision{Kind: actor.Resume}))
	if err != nil {
		return nil, err
	}
	return &Group{PID: pid}, nil
}
