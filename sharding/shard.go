package sharding

import (
	"time"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/lguibr/actorkit/actor"
)

// newShardBehavior builds the single-threaded actor that owns every entity
// living in one shard: lazy spawn on first message, idle-timeout
// passivation, LRU-bounded concurrent entity count, and buffered delivery
// for entities mid-passivation (spec.md §4.8).
func newShardBehavior(factory func(entityID string) actor.Behavior, supervision actor.Supervision, cfg Config) actor.Behavior {
	return actor.Setup(func(ctx actor.Context) actor.Behavior {
		entities := make(map[string]*entityEntry)
		lastActive := make(map[string]time.Time)

		var evicted []string
		var cache *lru.Cache[string, struct{}]
		if cfg.MaxActiveEntitiesPerShard > 0 {
			cache, _ = lru.NewWithEvict[string, struct{}](cfg.MaxActiveEntitiesPerShard, func(key string, _ struct{}) {
				evicted = append(evicted, key)
			})
		}

		if cfg.IdleTimeout > 0 && cfg.IdleCheckInterval > 0 {
			ctx.SchedulePeriodically(cfg.IdleCheckInterval, sweepMsg{})
		}

		spawnEntity := func(ctx actor.Context, entityID string) *entityEntry {
			pid, err := ctx.Spawn(factory(entityID), entityID, actor.WithSupervision(supervision))
			if err != nil {
				return nil
			}
			ctx.Watch(pid)
			entry := &entityEntry{pid: pid, state: entityRunning}
			entities[entityID] = entry
			lastActive[entityID] = time.Now()
			if cache != nil {
				cache.Add(entityID, struct{}{})
			}
			return entry
		}

		passivate := func(ctx actor.Context, entityID string) {
			entry, ok := entities[entityID]
			if !ok || entry.state == entityPassivating {
				return
			}
			entry.state = entityPassivating
			ctx.System().Tell(entry.pid, Passivate{}, ctx.Self())
		}

		drainEvictions := func(ctx actor.Context) {
			for _, id := range evicted {
				passivate(ctx, id)
			}
			evicted = nil
		}

		return actor.ReceiveMessage(func(ctx actor.Context, msg interface{}) actor.Directive {
			switch m := msg.(type) {
			case entityEnvelope:
				entry, exists := entities[m.entityID]
				switch {
				case !exists:
					entry = spawnEntity(ctx, m.entityID)
					if entry == nil {
						return actor.Unhandled()
					}
					ctx.System().Tell(entry.pid, m.payload, m.sender)
					drainEvictions(ctx)
				case entry.state == entityRunning:
					ctx.System().Tell(entry.pid, m.payload, m.sender)
					lastActive[m.entityID] = time.Now()
					if cache != nil {
						cache.Get(m.entityID)
					}
				case entry.state == entityPassivating:
					entry.buffered = bufferAppend(entry.buffered, bufferedMessage{payload: m.payload, sender: m.sender}, cfg)
				}
			case sweepMsg:
				now := time.Now()
				for id, entry := range entities {
					if entry.state == entityRunning && now.Sub(lastActive[id]) >= cfg.IdleTimeout {
						passivate(ctx, id)
					}
				}
			default:
				return actor.Unhandled()
			}
			return actor.Same()
		}).WithSignal(func(ctx actor.Context, sig actor.Signal) actor.Directive {
			// The shard both parents and watches each entity, so every entity
			// stop arrives twice; the ChildTerminated copy is the one acted on.
			if _, ok := sig.(actor.TerminatedSignal); ok {
				return actor.Same()
			}
			ct, ok := sig.(actor.ChildTerminated)
			if !ok {
				return actor.Unhandled()
			}
			entityID := ct.Who.Path.Name()
			entry, exists := entities[entityID]
			if !exists {
				return actor.Same()
			}
			delete(entities, entityID)
			delete(lastActive, entityID)
			if cache != nil {
				cache.Remove(entityID)
			}
			if len(entry.buffered) > 0 {
				fresh := spawnEntity(ctx, entityID)
				if fresh != nil {
					for _, bm := range entry.buffered {
						ctx.System().Tell(fresh.pid, bm.payload, bm.sender)
					}
					drainEvictions(ctx)
				}
			}
			return actor.Same()
		})
	})
}

func bufferAppend(buf []bufferedMessage, msg bufferedMessage, cfg Config) []bufferedMessage {
	if cfg.BufferLimit <= 0 || len(buf) < cfg.BufferLimit {
		return append(buf, msg)
	}
	switch cfg.OverflowPolicy {
	case DropNewest:
		return buf
	default: // DropOldest
		return append(buf[1:], msg)
	}
}
