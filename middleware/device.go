package middleware

import (
	"context"
	"net"
	"net/http"
)

// WithDeviceInfo stores the client IP in the context. Sessions and
// access tokens are bound to it.
func WithDeviceInfo(h http.Handler) http.Handler {
	fn := func(w http.ResponseWriter, r *http.Request) {
		ip, _, err := net.SplitHostPort(r.RemoteAddr)
		if err != nil {
			ip = r.RemoteAddr
		}
		ctx := context.WithValue(r.Context(), "deviceIP", ip)
		h.ServeHTTP(w, r.WithContext(ctx))
	}
	return http.HandlerFunc(fn)
}
