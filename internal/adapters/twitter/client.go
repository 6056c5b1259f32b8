// Package twitter is the outbound REST client: posting, replying, retweeting,
// direct messages and the friendship endpoints, all signed with OAuth 1.0a
package twitter

import (
	"context"
	"net/http"
	"net/url"
	"strings"
	"time"

	"meitanbot/internal/core/version"
	perr "meitanbot/internal/platform/errors"
	"meitanbot/internal/platform/logger"

	"golang.org/x/time/rate"
)

const (
	baseURLDefault   = "https://api.twitter.com"
	defaultTimeout   = 15 * time.Second
	defaultMaxRetry  = 3
	defaultRetryBase = 500 * time.Millisecond
	defaultRate      = 1.0
	defaultBurst     = 5
)

// Options configures the Client
type Options struct {
	BaseURL   string
	UserAgent string
	Timeout   time.Duration

	// ScreenName is the bot's own handle, used by the id list endpoints
	ScreenName string

	// Retry config for transient server responses
	MaxRetries int
	RetryBase  time.Duration

	// outbound pacing shared by every caller of this client
	RatePerSecond float64
	Burst         int
}

// Client is a minimal REST client with pacing and retry on transient errors
type Client struct {
	http    *http.Client
	opts    Options
	limiter *rate.Limiter
	log     logger.Logger
	now     func() time.Time
	sleep   func(context.Context, time.Duration) error
}

// NewClient creates a new Client with sane defaults
// hc must already sign requests (see Credentials.HTTPClient)
func NewClient(hc *http.Client, o Options) *Client {
	if o.BaseURL == "" {
		o.BaseURL = baseURLDefault
	}
	o.BaseURL = strings.TrimRight(o.BaseURL, "/")
	if o.UserAgent == "" {
		o.UserAgent = version.UserAgent()
	}
	if o.Timeout <= 0 {
		o.Timeout = defaultTimeout
	}
	if o.MaxRetries < 0 {
		o.MaxRetries = 0
	} else if o.MaxRetries == 0 {
		o.MaxRetries = defaultMaxRetry
	}
	if o.RetryBase <= 0 {
		o.RetryBase = defaultRetryBase
	}
	if o.RatePerSecond <= 0 {
		o.RatePerSecond = defaultRate
	}
	if o.Burst <= 0 {
		o.Burst = defaultBurst
	}
	if hc == nil {
		hc = &http.Client{}
	}
	// copy so the timeout does not leak into the stream client sharing the transport
	c := *hc
	c.Timeout = o.Timeout
	return &Client{
		http:    &c,
		opts:    o,
		limiter: rate.NewLimiter(rate.Limit(o.RatePerSecond), o.Burst),
		log:     *logger.Named("twitter"),
		now:     time.Now,
		sleep:   waitCtx,
	}
}

// Do issues a request with pacing and retries
// GETs retry on transport errors and 502/503/504; POSTs only on 502/503/504
// since a failed POST may still have been applied
func (c *Client) Do(ctx context.Context, method, path string, params url.Values) (*http.Response, error) {
	attempts := 0
	for {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, perr.Wrapf(err, perr.ErrorCodeUnavailable, "twitter rate wait")
		}

		req, err := c.newRequest(ctx, method, path, params)
		if err != nil {
			return nil, perr.Wrapf(err, perr.ErrorCodeUnknown, "twitter new request failed")
		}

		start := c.now()
		resp, err := c.http.Do(req)
		lat := c.now().Sub(start)

		if err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			if method != http.MethodGet || !c.shouldRetry(attempts) {
				return nil, perr.Wrapf(err, perr.ErrorCodeUnavailable, "twitter %s %s failed", method, path)
			}
			back := c.backoff(attempts)
			c.log.Warn().Err(err).Dur("retry_in", back).Int("attempt", attempts).Msg("twitter transport error retrying")
			if err := c.sleep(ctx, back); err != nil {
				return nil, err
			}
			attempts++
			continue
		}

		rem, reset := parseRateHeaders(resp.Header)
		c.log.Debug().
			Str("method", method).
			Str("path", path).
			Int("status", resp.StatusCode).
			Int("attempt", attempts).
			Dur("latency", lat).
			Int("rate_remaining", rem).
			Time("rate_reset", reset).
			Msg("twitter http response")

		switch resp.StatusCode {
		case http.StatusOK, http.StatusCreated, http.StatusAccepted:
			return resp, nil
		case http.StatusBadGateway, http.StatusServiceUnavailable, http.StatusGatewayTimeout:
			if !c.shouldRetry(attempts) {
				return nil, statusError(method, path, resp.StatusCode, readTail(resp.Body))
			}
			back := c.backoff(attempts)
			c.log.Warn().Dur("retry_in", back).Int("attempt", attempts).Int("status", resp.StatusCode).
				Msg("twitter transient error retrying")
			_ = drainAndClose(resp.Body)
			if err := c.sleep(ctx, back); err != nil {
				return nil, err
			}
			attempts++
			continue
		default:
			// 403 and 429 are the caller's policy decision, never retried here
			return nil, statusError(method, path, resp.StatusCode, readTail(resp.Body))
		}
	}
}

// waitCtx sleeps for d or until ctx is done
func waitCtx(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

func (c *Client) newRequest(ctx context.Context, method, path string, params url.Values) (*http.Request, error) {
	u := c.opts.BaseURL + path
	var (
		req *http.Request
		err error
	)
	if method == http.MethodGet {
		if len(params) > 0 {
			u += "?" + params.Encode()
		}
		req, err = http.NewRequestWithContext(ctx, method, u, nil)
	} else {
		req, err = http.NewRequestWithContext(ctx, method, u, strings.NewReader(params.Encode()))
		if err == nil {
			req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
		}
	}
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", c.opts.UserAgent)
	req.Header.Set("Accept", "application/json")
	return req, nil
}

func (c *Client) backoff(attempt int) time.Duration {
	d := c.opts.RetryBase << uint(attempt)
	if limit := 30 * time.Second; d > limit || d <= 0 {
		return limit
	}
	return d
}

func (c *Client) shouldRetry(attempt int) bool {
	return attempt < c.opts.MaxRetries
}
