package queue

import (
	"meitanbot/internal/core/event"
	"meitanbot/internal/core/intent"
)

// Set is the fixed topology between the stream and the workers
// Posts feed classification, Events feed the friendship service, Messages feed commands,
// and each actionable intent kind gets its own reply queue
type Set struct {
	Posts    *Queue[event.Post]
	Events   *Queue[event.Follow]
	Messages *Queue[event.DirectMessage]

	replies map[intent.Kind]*Queue[intent.Intent]
}

// NewSet builds every queue
func NewSet() *Set {
	s := &Set{
		Posts:    New[event.Post]("posts"),
		Events:   New[event.Follow]("events"),
		Messages: New[event.DirectMessage]("messages"),
		replies:  make(map[intent.Kind]*Queue[intent.Intent]),
	}
	for _, k := range intent.Actionable() {
		s.replies[k] = New[intent.Intent]("reply." + k.String())
	}
	return s
}

// Reply returns the queue for kind, nil for Ignore
func (s *Set) Reply(k intent.Kind) *Queue[intent.Intent] { return s.replies[k] }

// Dispatch pushes in onto its kind's queue; Ignore intents are dropped and report false
func (s *Set) Dispatch(in intent.Intent) bool {
	q := s.replies[in.Kind]
	if q == nil {
		return false
	}
	return q.Push(in) == nil
}

// Depths reports queue lengths by name
func (s *Set) Depths() map[string]int {
	out := map[string]int{
		s.Posts.Name():    s.Posts.Len(),
		s.Events.Name():   s.Events.Len(),
		s.Messages.Name(): s.Messages.Len(),
	}
	for _, q := range s.replies {
		out[q.Name()] = q.Len()
	}
	return out
}

// Close closes every queue
func (s *Set) Close() {
	s.Posts.Close()
	s.Events.Close()
	s.Messages.Close()
	for _, q := range s.replies {
		q.Close()
	}
}
