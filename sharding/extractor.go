// Package sharding implements location-transparent entity actors
// distributed across shards (spec.md §4.8): messages are routed by a
// MessageExtractor to a shard, which lazily spawns and passivates the
// entity actors living within it.
package sharding

// MessageExtractor maps an incoming message to the shard and entity it
// belongs to. ShardID groups many entities under one shard actor so the
// number of top-level actors stays bounded regardless of entity count.
type MessageExtractor interface {
	EntityID(message interface{}) string
	ShardID(message interface{}) string
}
