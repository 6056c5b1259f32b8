package middleware

import (
	"crypto/subtle"
	"net/http"
	"strings"

	perr "meitanbot/internal/platform/errors"
	phttp "meitanbot/internal/platform/net/http"
	pnet "meitanbot/internal/platform/net"
)

// BearerToken guards mutating admin routes with a shared static token
// an empty token disables the check, which is only sane on loopback
func BearerToken(token, operator string) func(http.Handler) http.Handler {
	want := []byte(token)
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if token == "" {
				next.ServeHTTP(w, r)
				return
			}
			got, ok := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer ")
			if !ok || subtle.ConstantTimeCompare([]byte(strings.TrimSpace(got)), want) != 1 {
				status, env := phttp.ErrorEnvelope(
					perr.New(perr.ErrorCodeUnauthorized, "missing or invalid admin token"),
					pnet.RequestID(r.Context()),
				)
				phttp.JSON(w, status, env)
				return
			}
			next.ServeHTTP(w, r.WithContext(pnet.WithOperator(r.Context(), operator)))
		})
	}
}
