package httpkit

import (
	"net/http"
	"time"

	"meitanbot/internal/platform/net/middleware"
)

// StackOptions tunes the admin middleware stack
type StackOptions struct {
	Token       string
	Operator    string
	CORSOrigins []string
	Timeout     time.Duration
}

// CommonStack returns the baseline admin middleware slice
// order matters: request id before the access log, recovery before everything that can panic
func CommonStack(o StackOptions) []func(http.Handler) http.Handler {
	timeout := o.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	stack := []func(http.Handler) http.Handler{
		// tracing / correlation
		middleware.RequestID(),
		middleware.RealIP(),

		// observability
		middleware.AccessLogZerolog(middleware.AccessLogOptions{}),

		// safety
		middleware.RecoverJSON,

		// cache / freshness
		middleware.NoCache(),
		middleware.Heartbeat("/health"),
		middleware.StripSlashes(),
		middleware.Timeout(timeout),
	}
	if len(o.CORSOrigins) > 0 {
		stack = append(stack, middleware.CORS(middleware.CORSOptions{AllowedOrigins: o.CORSOrigins}))
	}
	return stack
}

// Auth wires the admin bearer token guard
func Auth(o StackOptions) func(http.Handler) http.Handler {
	op := o.Operator
	if op == "" {
		op = "admin"
	}
	return middleware.BearerToken(o.Token, op)
}
