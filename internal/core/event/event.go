// Package event holds the records received from the platform stream
// values are immutable once built and are handed between stages by value
package event

import (
	"strconv"
	"time"
)

// UserID is a platform user id; ids exceed int32 so they are always 64 bit
type UserID int64

// String renders the id in base 10
func (id UserID) String() string { return strconv.FormatInt(int64(id), 10) }

// ParseUserID parses a base 10 user id
func ParseUserID(s string) (UserID, error) {
	v, err := strconv.ParseInt(s, 10, 64)
	return UserID(v), err
}

// Kind discriminates the Event union
type Kind uint8

const (
	// KindUnknown is a decoded record we do not route (friends list preamble, deletes, limits)
	KindUnknown Kind = iota
	// KindPost is a status update
	KindPost
	// KindFollow is a follow event
	KindFollow
	// KindUnfollow is an unfollow event
	KindUnfollow
	// KindDirectMessage is a direct message
	KindDirectMessage
)

func (k Kind) String() string {
	switch k {
	case KindPost:
		return "post"
	case KindFollow:
		return "follow"
	case KindUnfollow:
		return "unfollow"
	case KindDirectMessage:
		return "direct_message"
	default:
		return "unknown"
	}
}

// User identifies an account
type User struct {
	ID         UserID
	ScreenName string
}

// Post is a status seen on the stream
type Post struct {
	ID        int64
	Author    User
	Text      string
	Retweet   bool
	CreatedAt time.Time
}

// Follow is a follow or unfollow event; Source acted on Target
type Follow struct {
	Kind   Kind
	Source User
	Target User
}

// DirectMessage is a private message addressed to the bot
type DirectMessage struct {
	ID     int64
	Sender User
	Text   string
}

// Event is the routed form of one decoded record
// exactly one of Post, Follow or Message is set, matching Kind
type Event struct {
	Kind    Kind
	Post    Post
	Follow  Follow
	Message DirectMessage
}
