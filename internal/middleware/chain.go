// Package middleware provides the HTTP middleware used by the service:
// request tracing, same-origin CORS, security headers, and per-IP rate
// limiting, composed via Chain.
package middleware

import "net/http"

// Middleware wraps an http.HandlerFunc and returns a new one.
type Middleware func(http.HandlerFunc) http.HandlerFunc

// Chain composes middlewares in onion order: Chain(m1, m2, ..., mn) runs
// m1 → m2 → ... → mn → handler → mn → ... → m2 → m1, so the first argument
// is the outermost layer. With no middlewares it returns the handler as-is.
func Chain(middlewares ...Middleware) Middleware {
	return func(final http.HandlerFunc) http.HandlerFunc {
		for i := len(middlewares) - 1; i >= 0; i-- {
			final = middlewares[i](final)
		}
		return final
	}
}
