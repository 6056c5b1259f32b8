package twitter

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"strconv"

	"meitanbot/internal/core/event"
	perr "meitanbot/internal/platform/errors"
)

// FirstCursor starts a paginated id listing; a next cursor of EndCursor ends it
const (
	FirstCursor int64 = -1
	EndCursor   int64 = 0
)

func (c *Client) call(ctx context.Context, method, path string, params url.Values, out any) error {
	resp, err := c.Do(ctx, method, path, params)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := resp.Body.Close(); cerr != nil {
			c.log.Error().Err(cerr).Str("path", path).Msg("twitter close body failed")
		}
	}()
	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	b, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return perr.Wrapf(err, perr.ErrorCodeUnavailable, "twitter read %s", path)
	}
	if err := json.Unmarshal(b, out); err != nil {
		return perr.Wrapf(err, perr.ErrorCodeJSON, "twitter decode %s", path)
	}
	return nil
}

func userParam(id event.UserID) url.Values { return url.Values{"user_id": {id.String()}} }

// Post publishes a status
func (c *Client) Post(ctx context.Context, text string) (Status, error) {
	var st Status
	err := c.call(ctx, http.MethodPost, "/1.1/statuses/update.json", url.Values{"status": {text}}, &st)
	return st, err
}

// Reply publishes a status in reply to inReplyTo; text must already carry the @handle
func (c *Client) Reply(ctx context.Context, text string, inReplyTo int64) (Status, error) {
	var st Status
	err := c.call(ctx, http.MethodPost, "/1.1/statuses/update.json", url.Values{
		"status":                {text},
		"in_reply_to_status_id": {strconv.FormatInt(inReplyTo, 10)},
	}, &st)
	return st, err
}

// Retweet reshares a status
func (c *Client) Retweet(ctx context.Context, id int64) (Status, error) {
	var st Status
	err := c.call(ctx, http.MethodPost, idPath("/1.1/statuses/retweet/%d.json", id), url.Values{}, &st)
	return st, err
}

// SendDirectMessage sends text to a user
func (c *Client) SendDirectMessage(ctx context.Context, text string, to event.UserID) error {
	p := userParam(to)
	p.Set("text", text)
	return c.call(ctx, http.MethodPost, "/1.1/direct_messages/new.json", p, &DirectMessage{})
}

// Follow follows a user
func (c *Client) Follow(ctx context.Context, id event.UserID) error {
	return c.call(ctx, http.MethodPost, "/1.1/friendships/create.json", userParam(id), &User{})
}

// Unfollow stops following a user
func (c *Client) Unfollow(ctx context.Context, id event.UserID) error {
	return c.call(ctx, http.MethodPost, "/1.1/friendships/destroy.json", userParam(id), &User{})
}

// FollowerIDs returns one page of follower ids and the next cursor
func (c *Client) FollowerIDs(ctx context.Context, cursor int64) ([]event.UserID, int64, error) {
	return c.idPage(ctx, "/1.1/followers/ids.json", cursor)
}

// FollowingIDs returns one page of followed ids and the next cursor
func (c *Client) FollowingIDs(ctx context.Context, cursor int64) ([]event.UserID, int64, error) {
	return c.idPage(ctx, "/1.1/friends/ids.json", cursor)
}

func (c *Client) idPage(ctx context.Context, path string, cursor int64) ([]event.UserID, int64, error) {
	p := url.Values{"cursor": {strconv.FormatInt(cursor, 10)}}
	if c.opts.ScreenName != "" {
		p.Set("screen_name", c.opts.ScreenName)
	}
	var page IDPage
	if err := c.call(ctx, http.MethodGet, path, p, &page); err != nil {
		return nil, 0, err
	}
	return page.IDs, page.NextCursor, nil
}

// LookupUserID resolves a handle (with or without the leading @) to an id
func (c *Client) LookupUserID(ctx context.Context, screenName string) (event.UserID, error) {
	if len(screenName) > 0 && screenName[0] == '@' {
		screenName = screenName[1:]
	}
	if screenName == "" {
		return 0, perr.InvalidArgf("empty screen name")
	}
	var u User
	if err := c.call(ctx, http.MethodGet, "/1.1/users/show.json", url.Values{"screen_name": {screenName}}, &u); err != nil {
		return 0, err
	}
	return event.UserID(u.ID), nil
}
