package jsonapi

import (
	"net/http"
)

// Middleware is the standard middleware signature compatible with the entire
// Go middleware ecosystem. Middleware wraps the router; guards wrap handlers.
type Middleware func(next http.Handler) http.Handler

// Recovery converts errors returned by the rest of the chain, and panics
// raised in it, into a 500 envelope. Detail is revealed only in debug mode.
// Failures are logged with the request method, path, id, query and values
// unless WithLogging(false) is given.
func Recovery(opts ...GuardOption) Guard {
	cfg := newGuardConfig(opts)

	return func(req *Request, next Handler) (resp *Response, err error) {
		defer func() {
			rec := recover()
			if rec == nil {
				return
			}
			if rec == http.ErrAbortHandler {
				panic(rec)
			}
			resp, err = recoverResponse(req, cfg, panicError(rec)), nil
		}()

		resp, err = next(req)
		if err != nil {
			return recoverResponse(req, cfg, err), nil
		}
		return resp, nil
	}
}

func recoverResponse(req *Request, cfg guardConfig, err error) *Response {
	return Exception(err, ExceptionOptions{
		Debug:  cfg.debugFor(req),
		Log:    cfg.logging,
		Logger: req.Logger(),
		Fields: req.logFields(),
	})
}
