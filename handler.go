package jsonapi

import (
	"net/http"

	"github.com/cockroachdb/errors"
	"go.uber.org/zap"
)

// Handler is the terminal stage of a request. Returned errors propagate
// through the guards; only Recovery turns them into an envelope.
type Handler func(req *Request) (*Response, error)

// Guard is a pipeline stage. It either returns its own response or calls
// next.
type Guard func(req *Request, next Handler) (*Response, error)

// Chain wraps h with guards. The first guard is the outermost.
func Chain(h Handler, guards ...Guard) Handler {
	for i := len(guards) - 1; i >= 0; i-- {
		g, next := guards[i], h
		h = func(req *Request) (*Response, error) {
			return g(req, next)
		}
	}
	return h
}

// ServeHTTP serves h with default settings.
func (h Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	serve(w, r, h, Settings{}.withDefaults())
}

// serve runs h and writes its response. Errors that escape every guard are
// logged and answered with a plain 500.
func serve(w http.ResponseWriter, r *http.Request, h Handler, s Settings) {
	req, err := NewRequest(r, s)
	if err != nil {
		writeResponse(w, r, bodyErrorResponse(err), s)
		return
	}

	resp, err := h(req)
	if err != nil {
		s.Logger.Error("unhandled error", append(req.logFields(), zap.Error(err))...)
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}
	if resp == nil {
		w.WriteHeader(http.StatusNoContent)
		return
	}

	writeResponse(w, r, resp, s)
}

func writeResponse(w http.ResponseWriter, r *http.Request, resp *Response, s Settings) {
	if err := resp.Write(w, s.Codec); err != nil {
		s.Logger.Error("write response",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Int("status", resp.Status),
			zap.Error(err),
		)
	}
}

func bodyErrorResponse(err error) *Response {
	var maxErr *http.MaxBytesError
	if errors.As(err, &maxErr) {
		return TooLarge(nil)
	}
	return BadRequest(nil)
}
