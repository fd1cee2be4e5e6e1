package sharding

import "github.com/lguibr/actorkit/actor"

// entityState tracks one entity's position in the lifecycle spec.md §4.8
// describes: Missing (no entry exists yet) -> Spawning is folded into
// Running here since actorkit's Spawn is synchronous -> Running ->
// Passivating (Passivate sent, awaiting self-stop) -> Stopped (folded back
// into Missing by deleting the entry once ChildTerminated arrives).
type entityState int

const (
	entityRunning entityState = iota
	entityPassivating
)

type bufferedMessage struct {
	payload interface{}
	sender  actor.PID
}

type entityEntry struct {
	pid      actor.PID
	state    entityState
	buffered []bufferedMessage
}
