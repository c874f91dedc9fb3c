// Package httpmiddleware provides the HTTP hygiene layer: panic recovery,
// request ids, request logging, CORS, and rate limiting.
package httpmiddleware

import "net/http"

// Middleware decorates an http.Handler.
type Middleware func(http.Handler) http.Handler

// Wrap applies middlewares to h. The first middleware listed becomes the
// outermost on the request path.
func Wrap(h http.Handler, mws ...Middleware) http.Handler {
	for i := len(mws) - 1; i >= 0; i-- {
		h = mws[i](h)
	}
	return h
}
