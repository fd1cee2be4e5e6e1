// Package router implements the pool and group routers of spec.md §4.6:
// load-distributing actors front-ending either a supervised worker pool or
// a receptionist-backed group.
package router

// Strategy selects how a router picks among its current workers.
type Strategy int

const (
	RoundRobin Strategy = iota
	Random
	Broadcast
	ConsistentHash
)

// HashKeyed is implemented by messages routed under the ConsistentHash
// strategy; HashKey() is the value hashed onto the ring.
type HashKeyed interface {
	HashKey() string
}

// DefaultVirtualNodes is the V=40 default of spec.md §4.6.
const DefaultVirtualNodes = 40
