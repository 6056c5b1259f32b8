package event

import (
	"encoding/json"
	"strings"
	"time"
)

// CreatedAtLayout is the timestamp layout used by the v1.1 payloads
const CreatedAtLayout = time.RubyDate

type wireUser struct {
	ID         int64  `json:"id"`
	ScreenName string `json:"screen_name"`
}

type wireStatus struct {
	ID              int64           `json:"id"`
	Text            *string         `json:"text"`
	FullText        string          `json:"full_text"`
	CreatedAt       string          `json:"created_at"`
	User            *wireUser       `json:"user"`
	RetweetedStatus json.RawMessage `json:"retweeted_status"`
}

type wireDM struct {
	ID       int64     `json:"id"`
	Text     string    `json:"text"`
	SenderID int64     `json:"sender_id"`
	Sender   *wireUser `json:"sender"`
}

// Record is one decoded stream frame
type Record struct {
	wireStatus
	Event         string    `json:"event"`
	Source        *wireUser `json:"source"`
	Target        *wireUser `json:"target"`
	DirectMessage *wireDM   `json:"direct_message"`
}

// ParseRecord decodes a single frame
func ParseRecord(b []byte) (Record, error) {
	var r Record
	err := json.Unmarshal(b, &r)
	return r, err
}

func (u *wireUser) user() User {
	if u == nil {
		return User{}
	}
	return User{ID: UserID(u.ID), ScreenName: u.ScreenName}
}

// Route classifies a record by the fields it carries
// text wins over event, event wins over direct_message
func (r Record) Route() Event {
	switch {
	case r.Text != nil && r.User != nil:
		text := *r.Text
		if r.FullText != "" {
			text = r.FullText
		}
		created, _ := time.Parse(CreatedAtLayout, r.CreatedAt)
		return Event{Kind: KindPost, Post: Post{
			ID:        r.ID,
			Author:    r.User.user(),
			Text:      text,
			Retweet:   len(r.RetweetedStatus) > 0 && string(r.RetweetedStatus) != "null",
			CreatedAt: created,
		}}
	case r.Event != "":
		var k Kind
		switch strings.ToLower(r.Event) {
		case "follow":
			k = KindFollow
		case "unfollow":
			k = KindUnfollow
		default:
			return Event{Kind: KindUnknown}
		}
		return Event{Kind: k, Follow: Follow{Kind: k, Source: r.Source.user(), Target: r.Target.user()}}
	case r.DirectMessage != nil:
		dm := r.DirectMessage
		sender := dm.Sender.user()
		if sender.ID == 0 {
			sender.ID = UserID(dm.SenderID)
		}
		return Event{Kind: KindDirectMessage, Message: DirectMessage{
			ID:     dm.ID,
			Sender: sender,
			Text:   strings.TrimSpace(dm.Text),
		}}
	}
	return Event{Kind: KindUnknown}
}
