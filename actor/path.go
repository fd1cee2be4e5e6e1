package actor

import "strings"

// Path is a hierarchical, slash-separated address rooted at a system name,
// e.g. "mySystem://user/room-1/paddle-2". Paths are unique within a system
// at any given moment; a name may be reused once its previous holder has
// reached the Stopped state.
type Path struct {
	system   string
	segments []string
}

// RootPath builds the path of the user guardian for the named system.
func RootPath(system string) Path {
	return Path{system: system, segments: []string{"user"}}
}

// SystemRootPath builds the path of the system guardian, the parent of
// ask's ephemeral reply actors. Each of those is a direct child named
// "temp-<uuid>"; there is no separate "temp" segment in their paths.
func SystemRootPath(system string) Path {
	return Path{system: system, segments: []string{"system"}}
}

// Child returns the path of a named child of p.
func (p Path) Child(name string) Path {
	segs := make([]string, len(p.segments)+1)
	copy(segs, p.segments)
	segs[len(p.segments)] = name
	return Path{system: p.system, segments: segs}
}

// Name is the last segment of the path.
func (p Path) Name() string {
	if len(p.segments) == 0 {
		return ""
	}
	return p.segments[len(p.segments)-1]
}

// Segments returns a copy of the path's ordered segments, excluding the
// system name.
func (p Path) Segments() []string {
	out := make([]string, len(p.segments))
	copy(out, p.segments)
	return out
}

// String renders the path as "system://seg/seg/seg".
func (p Path) String() string {
	return p.system + "://" + strings.Join(p.segments, "/")
}

// IsChildOf reports whether p is a direct child of parent.
func (p Path) IsChildOf(parent Path) bool {
	if len(p.segments) != len(parent.segments)+1 {
		return false
	}
	for i, s := range parent.segments {
		if p.segments[i] != s {
			return false
		}
	}
	return true
}
