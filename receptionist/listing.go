package receptionist

import "github.com/lguibr/actorkit/actor"

// Listing is the immutable snapshot `(service_key, set_of_refs,
// generation_counter)` of spec.md §3. Generation increases monotonically
// per key on every actual change; identical successive listings are
// coalesced rather than re-published (spec.md §4.5).
type Listing struct {
	Key        Key
	Refs       []actor.PID
	Generation uint64
}

// Contains reports whether ref is present in the listing.
func (l Listing) Contains(ref actor.PID) bool {
	for _, r := range l.Refs {
		if r.Equal(ref) {
			return true
		}
	}
	return false
}
