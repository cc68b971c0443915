package jsonapi

import (
	"slices"
	"strings"

	"github.com/samber/lo"
)

// RequireMethod rejects requests whose method is not in methods with a 405.
// Methods are matched exactly, so they must be upper case.
//
// For POST, PUT and PATCH the body is decoded as JSON and stored under the
// lowercased method name ("post", "put", "patch"); an empty body is stored as
// an empty object. A body that fails to decode is answered with 400
// "Invalid JSON <METHOD>", including the decode error under body.exception in
// debug mode.
func RequireMethod(methods []string, opts ...GuardOption) Guard {
	cfg := newGuardConfig(opts)
	allowed := slices.Clone(methods)

	return func(req *Request, next Handler) (*Response, error) {
		method := req.Method()
		if !lo.Contains(allowed, method) {
			return MethodNotAllowed(nil), nil
		}
		if !lo.Contains(bodyMethods, method) {
			return next(req)
		}

		var payload any
		if body := req.RawBody(); len(body) > 0 {
			if err := req.Codec().Unmarshal(body, &payload); err != nil {
				message := "Invalid JSON " + method
				if cfg.debugFor(req) {
					return Invalid(message, Body{"exception": err.Error()}), nil
				}
				return Invalid(message, nil), nil
			}
		} else {
			payload = map[string]any{}
		}

		req.Set(strings.ToLower(method), payload)
		return next(req)
	}
}
