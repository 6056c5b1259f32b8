// Package runtimecfg holds the process-wide flags and ignore list
// readers take lock-free snapshots; writers serialize on a mutex and publish a new snapshot
package runtimecfg

import (
	"slices"
	"sync"
	"sync/atomic"

	"meitanbot/internal/core/event"
)

// Snapshot is an immutable view of the runtime configuration
type Snapshot struct {
	SelfID         event.UserID
	OwnerID        event.UserID
	IgnoreOwner    bool
	PostingEnabled bool

	ignore map[event.UserID]struct{}
}

// Ignored reports whether posts by id are dropped; the bot itself always is
func (s *Snapshot) Ignored(id event.UserID) bool {
	if id == s.SelfID {
		return true
	}
	_, ok := s.ignore[id]
	return ok
}

// IgnoredIDs returns the ignore list in ascending order
func (s *Snapshot) IgnoredIDs() []event.UserID {
	out := make([]event.UserID, 0, len(s.ignore))
	for id := range s.ignore {
		out = append(out, id)
	}
	slices.Sort(out)
	return out
}

// IsOwner reports whether id is the owner
func (s *Snapshot) IsOwner(id event.UserID) bool { return id == s.OwnerID }

// Options seeds a Config
type Options struct {
	SelfID         event.UserID
	OwnerID        event.UserID
	IgnoreOwner    bool
	PostingEnabled bool
	Ignored        []event.UserID
}

// Config is the single-writer many-reader holder
type Config struct {
	mu  sync.Mutex
	cur atomic.Pointer[Snapshot]
}

// New builds a Config; the self id is always part of the ignore list
func New(o Options) *Config {
	s := &Snapshot{
		SelfID:         o.SelfID,
		OwnerID:        o.OwnerID,
		IgnoreOwner:    o.IgnoreOwner,
		PostingEnabled: o.PostingEnabled,
		ignore:         make(map[event.UserID]struct{}, len(o.Ignored)+1),
	}
	for _, id := range o.Ignored {
		s.ignore[id] = struct{}{}
	}
	s.ignore[o.SelfID] = struct{}{}
	c := &Config{}
	c.cur.Store(s)
	return c
}

// Snapshot returns the current view; callers must not mutate it
func (c *Config) Snapshot() *Snapshot { return c.cur.Load() }

// update copies the current snapshot, applies fn and publishes the result
func (c *Config) update(fn func(s *Snapshot) bool) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	old := c.cur.Load()
	next := *old
	next.ignore = make(map[event.UserID]struct{}, len(old.ignore)+1)
	for id := range old.ignore {
		next.ignore[id] = struct{}{}
	}
	if !fn(&next) {
		return false
	}
	c.cur.Store(&next)
	return true
}

// SetIgnoreOwner sets the flag and returns the new value
func (c *Config) SetIgnoreOwner(v bool) bool {
	c.update(func(s *Snapshot) bool { s.IgnoreOwner = v; return true })
	return v
}

// SetPostingEnabled sets the flag and returns the new value
func (c *Config) SetPostingEnabled(v bool) bool {
	c.update(func(s *Snapshot) bool { s.PostingEnabled = v; return true })
	return v
}

// Ignore adds id to the ignore list; the owner cannot be ignored this way
// it reports whether the list changed
func (c *Config) Ignore(id event.UserID) bool {
	return c.update(func(s *Snapshot) bool {
		if id == s.OwnerID {
			return false
		}
		if _, ok := s.ignore[id]; ok {
			return false
		}
		s.ignore[id] = struct{}{}
		return true
	})
}

// Unignore removes id from the ignore list; the self id stays
// it reports whether the list changed
func (c *Config) Unignore(id event.UserID) bool {
	return c.update(func(s *Snapshot) bool {
		if id == s.SelfID {
			return false
		}
		if _, ok := s.ignore[id]; !ok {
			return false
		}
		delete(s.ignore, id)
		return true
	})
}
