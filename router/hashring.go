package router

import (
	"hash/fnv"
	"sort"

	"github.com/lguibr/actorkit/actor"
)

// hashRing is a consistent-hash ring with DefaultVirtualNodes (or a
// caller-supplied count) virtual points per worker, so that removing or
// replacing one worker only reshuffles its own share of keys rather than
// the whole keyspace (spec.md §4.6).
type hashRing struct {
	virtualNodes int
	nodes        []ringNode
}

type ringNode struct {
	hash   uint64
	worker actor.PID
}

func newHashRing(virtualNodes int) *hashRing {
	if virtualNodes <= 0 {
		virtualNodes = DefaultVirtualNodes
	}
	return &hashRing{virtualNodes: virtualNodes}
}

func (r *hashRing) add(w actor.PID) {
	for i := 0; i < r.virtualNodes; i++ {
		r.nodes = append(r.nodes, ringNode{hash: virtualHash(w, i), worker: w})
	}
	r.sort()
}

func (r *hashRing) remove(w actor.PID) {
	filtered := r.nodes[:0]
	for _, n := range r.nodes {
		if !n.worker.Equal(w) {
			filtered = append(filtered, n)
		}
	}
	r.nodes = filtered
}

// replace removes old's virtual nodes and inserts new's in their place, so
// a router can maintain ring continuity across a one-for-one restart.
func (r *hashRing) replace(old, next actor.PID) {
	r.remove(old)
	r.add(next)
}

func (r *hashRing) sort() {
	sort.Slice(r.nodes, func(i, j int) bool {
		if r.nodes[i].hash == r.nodes[j].hash {
			return r.nodes[i].worker.Path.String() < r.nodes[j].worker.Path.String()
		}
		return r.nodes[i].hash < r.nodes[j].hash
	})
}

// route returns the worker owning key's position on the ring: the first
// node at or after hash(key), wrapping to the first node if key hashes
// past every node.
func (r *hashRing) route(key string) (actor.PID, bool) {
	if len(r.nodes) == 0 {
		return actor.PID{}, false
	}
	h := hashString(key)
	idx := sort.Search(len(r.nodes), func(i int) bool { return r.nodes[i].hash >= h })
	if idx == len(r.nodes) {
		idx = 0
	}
	return r.nodes[idx].worker, true
}

func virtualHash(w actor.PID, replica int) uint64 {
	h := fnv.New64a()
	h.Write([]byte(w.Path.String()))
	h.Write([]byte{byte(replica), byte(replica >> 8)})
	return h.Sum64()
}

func hashString(s string) uint64 {
	h := fnv.New64a()
	h.Write([]byte(s))
	return h.Sum64()
}
