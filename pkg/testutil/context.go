package testutil

import (
	"net/http"
	"time"

	"crowdsale/pkg/domain"
	"crowdsale/pkg/requestcontext"
)

// WithCaller attaches an authenticated caller address to the request, as the
// auth middleware would.
func WithCaller(req *http.Request, addr domain.Address) *http.Request {
	return req.WithContext(requestcontext.WithCaller(req.Context(), addr))
}

// WithTime pins the request clock so handlers observe a fixed now.
func WithTime(req *http.Request, t time.Time) *http.Request {
	return req.WithContext(requestcontext.WithTime(req.Context(), t))
}
