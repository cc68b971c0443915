package jsonapi

import (
	"context"
	"net/http"
)

type contextKey[T any] struct{}

// SetValue stores a typed value in the request context. For use in middleware.
func SetValue[T any](r *http.Request, val T) *http.Request {
	ctx := context.WithValue(r.Context(), contextKey[T]{}, val)
	return r.WithContext(ctx)
}

// GetValue retrieves a typed value from the request context.
func GetValue[T any](ctx context.Context) (T, bool) {
	val, ok := ctx.Value(contextKey[T]{}).(T)
	return val, ok
}

// User is the authenticated principal attached to a request by the host's
// authentication middleware.
type User interface {
	IsAuthenticated() bool
}

// Identity is a User with a stable identifier. RateLimit keys authenticated
// identities by their ID rather than by address.
type Identity interface {
	User
	UserID() string
}

// WithUser attaches u to the request context.
func WithUser(r *http.Request, u User) *http.Request {
	return SetValue[User](r, u)
}

// UserFrom returns the user attached to ctx.
func UserFrom(ctx context.Context) (User, bool) {
	return GetValue[User](ctx)
}
