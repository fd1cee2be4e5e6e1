package actor

import "fmt"

// PID (Process ID) is the opaque, addressable handle to a living or
// once-living actor. Equality is by path + incarnation uid: a restarted
// actor keeps its path but is a different PID for watch/equality purposes.
// Each incarnation's uid is a fresh random UUID: uids differ across
// restarts, but they are not ordered, so a later incarnation's uid does not
// compare greater than an earlier one's.
type PID struct {
	Path Path
	uid  string
}

// NewPID constructs a PID for path with the given incarnation uid. Exported
// for cluster.Transport implementations that need to reconstruct remote
// PIDs from wire data; local code obtains PIDs exclusively from Spawn/Ask.
func NewPID(path Path, uid string) PID {
	return PID{Path: path, uid: uid}
}

// Uid is this incarnation's unique id, freshly generated on every spawn and
// restart.
func (p PID) Uid() string { return p.uid }

// Equal compares both path and incarnation uid.
func (p PID) Equal(o PID) bool {
	return p.Path.String() == o.Path.String() && p.uid == o.uid
}

// String renders "path#uid" for logs and dead-letter records.
func (p PID) String() string {
	return fmt.Sprintf("%s#%s", p.Path.String(), p.uid)
}

// IsZero reports whether p is the zero PID (used as the "no sender"
// marker for envelopes sent from outside the actor system).
func (p PID) IsZero() bool {
	return p.uid == "" && len(p.Path.segments) == 0
}
