package stream

import (
	"context"
	"io"
	"net/http"
	"net/url"

	"meitanbot/internal/core/version"
	perr "meitanbot/internal/platform/errors"
)

// DefaultURL is the user stream endpoint
const DefaultURL = "https://userstream.twitter.com/1.1/user.json"

// Transport opens the streaming response; the client must already sign requests
type Transport struct {
	Client    *http.Client
	URL       string
	Track     string
	UserAgent string
}

// Open issues the long lived GET and returns the body for incremental reads
// non-200 responses are closed and mapped to a perr code
func (t Transport) Open(ctx context.Context) (io.ReadCloser, error) {
	u := t.URL
	if u == "" {
		u = DefaultURL
	}
	q := url.Values{"with": {"user"}}
	if t.Track != "" {
		q.Set("track", t.Track)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u+"?"+q.Encode(), nil)
	if err != nil {
		return nil, perr.Wrapf(err, perr.ErrorCodeConfig, "stream: bad url %q", u)
	}
	ua := t.UserAgent
	if ua == "" {
		ua = version.UserAgent()
	}
	req.Header.Set("User-Agent", ua)

	hc := t.Client
	if hc == nil {
		hc = http.DefaultClient
	}
	resp, err := hc.Do(req)
	if err != nil {
		return nil, perr.Wrapf(err, perr.ErrorCodeUnavailable, "stream: connect")
	}
	if resp.StatusCode != http.StatusOK {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 512))
		_ = resp.Body.Close()
		return nil, perr.Newf(perr.CodeFromHTTPStatus(resp.StatusCode), "stream: status %d", resp.StatusCode)
	}
	return resp.Body, nil
}
