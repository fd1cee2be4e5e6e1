package receptionist

import "github.com/lguibr/actorkit/actor"

// state is the receptionist's plain, single-threaded registry. It is only
// ever touched from inside the receptionist actor's Receive/OnSignal calls,
// so it needs no locking of its own — the same run-to-completion guarantee
// (P1) that protects every other actor's state protects this one.
type state struct {
	refs        map[string][]actor.PID // key.String() -> refs
	generation  map[string]uint64
	subscribers map[string][]actor.PID
	byKey       map[string]Key
}

func newState() *state {
	return &state{
		refs:        make(map[string][]actor.PID),
		generation:  make(map[string]uint64),
		subscribers: make(map[string][]actor.PID),
		byKey:       make(map[string]Key),
	}
}

func (s *state) register(key Key, ref actor.PID) (changed bool) {
	k := key.String()
	s.byKey[k] = key
	for _, r := range s.refs[k] {
		if r.Equal(ref) {
			return false
		}
	}
	s.refs[k] = append(s.refs[k], ref)
	s.generation[k]++
	return true
}

// deregister removes ref from key's set. Returns whether the set actually
// changed (spec.md §4.5: "publish listing (even if unchanged? — only on
// actual change)").
func (s *state) deregister(key Key, ref actor.PID) bool {
	k := key.String()
	return s.removeRefFromKey(k, ref)
}

// deregisterRef removes ref from every key it is registered under (used
// when the receptionist observes the ref's Terminated signal).
func (s *state) deregisterRef(ref actor.PID) []string {
	var changedKeys []string
	for k := range s.refs {
		if s.removeRefFromKey(k, ref) {
			changedKeys = append(changedKeys, k)
		}
	}
	return changedKeys
}

func (s *state) removeRefFromKey(k string, ref actor.PID) bool {
	refs := s.refs[k]
	for i, r := range refs {
		if r.Equal(ref) {
			s.refs[k] = append(refs[:i], refs[i+1:]...)
			s.generation[k]++
			return true
		}
	}
	return false
}

func (s *state) listing(key Key) Listing {
	k := key.String()
	refs := make([]actor.PID, len(s.refs[k]))
	copy(refs, s.refs[k])
	return Listing{Key: key, Refs: refs, Generation: s.generation[k]}
}

func (s *state) addSubscriber(key Key, subscriber actor.PID) {
	k := key.String()
	s.byKey[k] = key
	for _, sub := range s.subscribers[k] {
		if sub.Equal(subscriber) {
			return
		}
	}
	s.subscribers[k] = append(s.subscribers[k], subscriber)
}

func (s *state) subscribersFor(k string) []actor.PID {
	out := make([]actor.PID, len(s.subscribers[k]))
	copy(out, s.subscribers[k])
	return out
}
