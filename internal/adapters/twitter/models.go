package twitter

import "meitanbot/internal/core/event"

// Status is the subset of a posted status the bot reads back
type Status struct {
	ID   int64  `json:"id"`
	Text string `json:"text"`
}

// User is the subset of a user object the bot reads back
type User struct {
	ID         int64  `json:"id"`
	ScreenName string `json:"screen_name"`
}

// IDPage is one cursor page of follower or friend ids
type IDPage struct {
	IDs        []event.UserID `json:"ids"`
	NextCursor int64          `json:"next_cursor"`
}

// DirectMessage is the subset of a sent message the bot reads back
type DirectMessage struct {
	ID int64 `json:"id"`
}
