package sharding

import "github.com/lguibr/actorkit/actor"

// entityEnvelope carries a user message routed to a specific entity,
// addressed by the id the region's MessageExtractor computed.
type entityEnvelope struct {
	entityID string
	payload  interface{}
	sender   actor.PID
}

// Passivate is delivered to an entity actor's own Receive as advance notice
// that its shard intends to stop it. A well-behaved entity returns
// actor.StoppedDirective() once it has finished any cleanup; until it
// does, the shard keeps routing new messages for it into a buffer rather
// than delivering them to an actor already on its way out.
type Passivate struct{}

type sweepMsg struct{}
