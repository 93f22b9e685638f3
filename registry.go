package logtree

import (
	"strings"
	"sync/atomic"
)

// DefaultResolveLevel is returned for names with no configured ancestor,
// root included. Initialize seeds the root entry with it when the supplied
// config leaves the root unset.
const DefaultResolveLevel = WarnLevel

// Registry maps dot-separated logger names to configured minimum levels and
// resolves the effective level for any name via longest-ancestor match.
//
// The mapping is stored as an immutable snapshot behind an atomic pointer:
// resolution on the hot logging path is lock-free, and Replace swaps the
// whole mapping at once so concurrent resolves observe either the old or the
// new configuration in full, never a mix.
type Registry struct {
	snapshot atomic.Pointer[map[string]Level]
}

// NewRegistry returns a registry with only the root entry configured at
// DefaultResolveLevel, so every name resolves even before Initialize runs.
func NewRegistry() *Registry {
	r := &Registry{}
	r.Replace(nil)
	return r
}

// Replace installs levels as the complete new configuration, discarding the
// prior mapping. The map is copied; the caller keeps ownership of its
// argument. A root entry ("") is seeded if absent so resolution never misses.
func (r *Registry) Replace(levels map[string]Level) {
	snap := make(map[string]Level, len(levels)+1)
	for name, lv := range levels {
		snap[name] = lv
	}
	if _, ok := snap[""]; !ok {
		snap[""] = DefaultResolveLevel
	}
	r.snapshot.Store(&snap)
}

// ResolveLevel returns the effective minimum level for name.
//
// The name is treated as a dot-hierarchy: "a.b.c" is checked first, then
// "a.b", then "a", then the root. The first configured prefix wins. This is
// a trie lookup flattened onto the map snapshot: each step trims the last
// dot-separated segment, so the walk is O(depth) and allocates nothing
// beyond the prefix substrings, which share the backing array of name.
func (r *Registry) ResolveLevel(name string) Level {
	snap := *r.snapshot.Load()

	for cur := name; ; {
		if lv, ok := snap[cur]; ok {
			return lv
		}
		if cur == "" {
			break
		}
		if dot := strings.LastIndexByte(cur, '.'); dot >= 0 {
			cur = cur[:dot]
		} else {
			cur = ""
		}
	}

	// Unreachable while Replace seeds the root, kept as a hard floor.
	return DefaultResolveLevel
}
