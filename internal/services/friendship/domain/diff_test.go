package domain

import (
	"slices"
	"testing"

	"meitanbot/internal/core/event"
)

func set(ids ...event.UserID) Set {
	s := Set{}
	s.Add(ids...)
	return s
}

func TestDiff(t *testing.T) {
	cases := []struct {
		name       string
		followers  Set
		following  Set
		wantFollow []event.UserID
		wantRemove []event.UserID
	}{
		{"both ways", set(1, 2, 3), set(2, 3, 4), []event.UserID{1}, []event.UserID{4}},
		{"in sync", set(1, 2), set(2, 1), nil, nil},
		{"self skipped", set(9, 5), set(), []event.UserID{5}, nil},
		{"empty", set(), set(), nil, nil},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			p := Diff(c.followers, c.following, 9)
			if !slices.Equal(p.Follow, c.wantFollow) || !slices.Equal(p.Remove, c.wantRemove) {
				t.Fatalf("plan = %+v, want follow %v remove %v", p, c.wantFollow, c.wantRemove)
			}
		})
	}
}
