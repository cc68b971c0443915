package jsonapi

import "github.com/cockroachdb/errors"

// Configuration errors returned up the guard chain.
var (
	// ErrNoValidator is returned when a form factory yields no validator for
	// the request method.
	ErrNoValidator = errors.New("no validator for request")
	// ErrMissingPayload is returned when Form runs for a body method before
	// RequireMethod parsed the body.
	ErrMissingPayload = errors.New("request payload not parsed")
)

func panicError(rec any) error {
	if err, ok := rec.(error); ok {
		return errors.Wrap(err, "panic")
	}
	return errors.Newf("panic: %v", rec)
}
