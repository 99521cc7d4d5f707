package group

import "github.com/hupe1980/hybridgo/model"

// Arena interns group keys into dense integer handles. Handles are stable
// for the arena's lifetime and index per-group collection state directly,
// so group state never uses mutable values as map keys.
type Arena struct {
	handles map[model.GroupKey]int
	keys    []model.GroupKey
}

// NewArena creates an empty arena.
func NewArena() *Arena {
	return &Arena{handles: make(map[model.GroupKey]int)}
}

// Intern returns the handle of key, allocating the next handle on first
// sight. seen reports whether the key was already interned.
func (a *Arena) Intern(key model.GroupKey) (handle int, seen bool) {
	if h, ok := a.handles[key]; ok {
		return h, true
	}
	h := len(a.keys)
	a.handles[key] = h
	a.keys = append(a.keys, key)
	return h, false
}

// Key returns the key interned under handle.
func (a *Arena) Key(handle int) model.GroupKey { return a.keys[handle] }

// Len returns the number of interned keys.
func (a *Arena) Len() int { return len(a.keys) }
