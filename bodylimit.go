package jsonapi

import (
	"net/http"

	"go.uber.org/zap"
)

// BodyLimit returns middleware that limits the maximum request body size.
// A request declaring a larger Content-Length is answered with a 413
// envelope written with the serving router's codec; a body that turns out
// larger while being read fails with the same response from the router.
func BodyLimit(maxBytes int64) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.ContentLength > maxBytes {
				s := SettingsFrom(r)
				s.Logger.Debug("request body too large",
					zap.String("path", r.URL.Path),
					zap.String("request_id", GetRequestID(r)),
					zap.Int64("content_length", r.ContentLength),
					zap.Int64("limit", maxBytes),
				)
				writeResponse(w, r, TooLarge(nil), s)
				return
			}
			if r.Body != nil {
				r.Body = http.MaxBytesReader(w, r.Body, maxBytes)
			}
			next.ServeHTTP(w, r)
		})
	}
}
