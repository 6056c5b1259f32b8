package domain

import (
	"slices"

	"meitanbot/internal/core/event"
)

// Set is an unordered id set
type Set map[event.UserID]struct{}

// Add unions ids into s
func (s Set) Add(ids ...event.UserID) {
	for _, id := range ids {
		s[id] = struct{}{}
	}
}

// Plan is what one pass should do
type Plan struct {
	Follow []event.UserID
	Remove []event.UserID
}

// Diff computes followers minus following and following minus followers
// self never appears in either list; results are sorted so passes are reproducible
func Diff(followers, following Set, self event.UserID) Plan {
	var p Plan
	for id := range followers {
		if _, ok := following[id]; !ok && id != self {
			p.Follow = append(p.Follow, id)
		}
	}
	for id := range following {
		if _, ok := followers[id]; !ok && id != self {
			p.Remove = append(p.Remove, id)
		}
	}
	slices.Sort(p.Follow)
	slices.Sort(p.Remove)
	return p
}
