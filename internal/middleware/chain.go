// Package middleware groups the HTTP middleware used by the server. The
// concrete middleware live in the trace, ratelimit and security subpackages.
package middleware

import "net/http"

type Middleware func(http.Handler) http.Handler

// Chain applies mws so that the first one is outermost.
func Chain(mws ...Middleware) Middleware {
	return func(final http.Handler) http.Handler {
		for i := len(mws) - 1; i >= 0; i-- {
			final = mws[i](final)
		}
		return final
	}
}
