package sharding

import (
	"github.com/lguibr/actorkit/actor"
)

const shardNamePrefix = "shard-"

// ShardRegion is the entry point entity messages are sent through. It
// never holds entities itself; it only resolves a message's shard via the
// MessageExtractor and forwards it into that shard's actor, spawning the
// shard lazily on first use (spec.md §4.8, single-node: no cross-node
// rebalancing, see DESIGN.md).
type ShardRegion struct {
	system      *actor.System
	extractor   MessageExtractor
	factory     func(entityID string) actor.Behavior
	supervision actor.Supervision
	cfg         Config
}

// NewShardRegion builds a region that spawns entities from factory,
// supervised per supervision, and governed by cfg's passivation policy.
func NewShardRegion(system *actor.System, extractor MessageExtractor, factory func(entityID string) actor.Behavior, supervision actor.Supervision, cfg Config) *ShardRegion {
	return &ShardRegion{system: system, extractor: extractor, factory: factory, supervision: supervision, cfg: cfg}
}

// Tell routes message to the entity the extractor resolves it to, as
// sender. The entity is spawned on demand if it is not already running.
func (r *ShardRegion) Tell(message interface{}, sender actor.PID) error {
	shardID := r.extractor.ShardID(message)
	entityID := r.extractor.EntityID(message)

	shardPID, err := r.system.GetOrSpawn(shardNamePrefix+shardID, func() actor.Behavior {
		return newShardBehavior(r.factory, r.supervision, r.cfg)
	})
	if err != nil {
		return err
	}

	r.system.Tell(shardPID, entityEnvelope{entityID: entityID, payload: message, sender: sender}, sender)
	return nil
}
