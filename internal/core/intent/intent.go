// Package intent defines the classifier's decision about how to respond to a post
package intent

import (
	"fmt"

	"meitanbot/internal/core/event"
)

// Kind tags the Intent variant
type Kind uint8

const (
	// Ignore means no action; Reason says why
	Ignore Kind = iota
	ReplyMeitan
	ReplyMention
	ReplyCSharp
	ReplyMorning
	ReplySleeping
	ReplyDeparture
	ReplyReturning
	ReplyNullpo
	ReplyMetaphor
	ReplyWeather
	ReplyTimetable
	Retweet
)

var names = [...]string{
	Ignore:         "ignore",
	ReplyMeitan:    "meitan",
	ReplyMention:   "mention",
	ReplyCSharp:    "csharp",
	ReplyMorning:   "morning",
	ReplySleeping:  "sleeping",
	ReplyDeparture: "departure",
	ReplyReturning: "returning",
	ReplyNullpo:    "nullpo",
	ReplyMetaphor:  "metaphor",
	ReplyWeather:   "weather",
	ReplyTimetable: "timetable",
	Retweet:        "retweet",
}

// String is the stable name used for queues, phrase files, logs and metrics
func (k Kind) String() string {
	if int(k) < len(names) {
		return names[k]
	}
	return fmt.Sprintf("kind(%d)", uint8(k))
}

// ParseKind maps a name back to its Kind
func ParseKind(s string) (Kind, bool) {
	for i, n := range names {
		if n == s {
			return Kind(i), true
		}
	}
	return Ignore, false
}

// Actionable lists every kind that a worker consumes, in declaration order
func Actionable() []Kind {
	out := make([]Kind, 0, len(names)-1)
	for k := ReplyMeitan; k <= Retweet; k++ {
		out = append(out, k)
	}
	return out
}

// Canned reports whether the reply body is picked from a phrase list
func (k Kind) Canned() bool { return k >= ReplyMeitan && k <= ReplyNullpo }

// Period and ahead-day bounds accepted by the structured commands
const (
	MinAheadDays = 0
	MaxAheadDays = 2
	MinPeriod    = 1
	MaxPeriod    = 6
)

// Intent is a tagged variant; only the payload fields of its Kind are meaningful
type Intent struct {
	Kind       Kind
	PostID     int64
	AuthorID   event.UserID
	ScreenName string
	Text       string

	// Word is the captured word for ReplyMetaphor
	Word string
	// AheadDays is 0 today, 1 tomorrow, 2 the day after, for ReplyWeather
	AheadDays int
	// Period is the class period for ReplyTimetable
	Period int
	// Reason explains an Ignore
	Reason string
}

func from(p event.Post, k Kind) Intent {
	return Intent{
		Kind:       k,
		PostID:     p.ID,
		AuthorID:   p.Author.ID,
		ScreenName: p.Author.ScreenName,
		Text:       p.Text,
	}
}

// New builds a payload-free intent for p
func New(p event.Post, k Kind) Intent { return from(p, k) }

// Ignored builds an Ignore intent carrying reason
func Ignored(p event.Post, reason string) Intent {
	in := from(p, Ignore)
	in.Reason = reason
	return in
}

// Metaphor builds a ReplyMetaphor intent
func Metaphor(p event.Post, word string) Intent {
	in := from(p, ReplyMetaphor)
	in.Word = word
	return in
}

// Weather builds a ReplyWeather intent; ahead must be within [0,2]
func Weather(p event.Post, ahead int) (Intent, error) {
	if ahead < MinAheadDays || ahead > MaxAheadDays {
		return Intent{}, fmt.Errorf("intent: ahead days %d out of range", ahead)
	}
	in := from(p, ReplyWeather)
	in.AheadDays = ahead
	return in, nil
}

// Timetable builds a ReplyTimetable intent; period must be within [1,6]
func Timetable(p event.Post, period int) (Intent, error) {
	if period < MinPeriod || period > MaxPeriod {
		return Intent{}, fmt.Errorf("intent: period %d out of range", period)
	}
	in := from(p, ReplyTimetable)
	in.Period = period
	return in, nil
}

// Is reports whether any intent in list has kind k
func Is(list []Intent, k Kind) bool {
	for _, in := range list {
		if in.Kind == k {
			return true
		}
	}
	return false
}
