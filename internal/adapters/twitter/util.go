package twitter

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	perr "meitanbot/internal/platform/errors"
)

// StatusError wraps non-2xx responses from the platform
type StatusError struct {
	Status int
	Body   string
	Err    error
}

// Error interface
func (e *StatusError) Error() string { return e.Err.Error() }

// Unwrap interface
func (e *StatusError) Unwrap() error { return e.Err }

// HTTPStatus interface
func (e *StatusError) HTTPStatus() int { return e.Status }

func statusError(method, path string, status int, body string) error {
	code := perr.CodeFromHTTPStatus(status)
	return &StatusError{
		Status: status,
		Body:   body,
		Err:    perr.Newf(code, "twitter %s %s: status %d", method, path, status),
	}
}

// IsForbidden reports a 403: duplicate status or a hidden rate limit
func IsForbidden(err error) bool {
	var se *StatusError
	if errors.As(err, &se) {
		return se.Status == http.StatusForbidden
	}
	return perr.IsCode(err, perr.ErrorCodeForbidden)
}

// IsRateLimited reports a 429
func IsRateLimited(err error) bool {
	var se *StatusError
	return errors.As(err, &se) && se.Status == http.StatusTooManyRequests
}

// IsTransient reports a 5xx
func IsTransient(err error) bool {
	var se *StatusError
	return errors.As(err, &se) && se.Status >= 500
}

func parseRateHeaders(h http.Header) (remaining int, reset time.Time) {
	remaining = -1
	if s := h.Get("X-Rate-Limit-Remaining"); s != "" {
		remaining = atoi(s)
	}
	if sec := atoi(h.Get("X-Rate-Limit-Reset")); sec > 0 {
		reset = time.Unix(int64(sec), 0).UTC()
	}
	return remaining, reset
}

func atoi(s string) int {
	i, _ := strconv.Atoi(s)
	return i
}

func drainAndClose(rc io.ReadCloser) error {
	_, _ = io.Copy(io.Discard, io.LimitReader(rc, 512))
	return rc.Close()
}

func readTail(rc io.ReadCloser) string {
	body, _ := io.ReadAll(io.LimitReader(rc, 2048))
	_ = rc.Close()
	return string(body)
}

func idPath(format string, id int64) string { return fmt.Sprintf(format, id) }
