package jsonapi

import (
	"fmt"
	"net/http"

	"go.uber.org/zap"
)

// Body holds the fields placed under the envelope's "body" key.
type Body map[string]any

// Envelope is the standard response shape.
type Envelope struct {
	OK      bool   `json:"ok"`
	Message string `json:"message,omitempty"`
	Body    Body   `json:"body,omitempty"`
}

// Response is an envelope with its HTTP status and headers. It is encoded
// when written, using the serving router's codec.
type Response struct {
	Status   int
	Header   http.Header
	Envelope Envelope
}

// Write encodes the response with c and writes it to w. If the envelope
// cannot be encoded, a plain 500 is written instead and the error returned.
func (r *Response) Write(w http.ResponseWriter, c *Codec) error {
	if c == nil {
		c = DefaultCodec
	}
	b, err := c.Marshal(r.Envelope)
	if err != nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return err
	}

	for k, vs := range r.Header {
		for _, v := range vs {
			w.Header().Add(k, v)
		}
	}
	w.Header().Set("Content-Type", c.ContentType())
	w.WriteHeader(r.Status)
	_, err = w.Write(b)
	return err
}

// Build returns a response with the given status, ok flag, optional message
// and optional body fields.
func Build(status int, ok bool, message string, body Body) *Response {
	if len(body) == 0 {
		body = nil
	}
	return &Response{
		Status: status,
		Header: http.Header{"Content-Type": []string{ContentType}},
		Envelope: Envelope{
			OK:      ok,
			Message: message,
			Body:    body,
		},
	}
}

// OK returns a 200 response.
func OK(message string, body Body) *Response {
	return Build(http.StatusOK, true, message, body)
}

// Error returns a response with the given status and ok=false.
func Error(status int, message string, body Body) *Response {
	return Build(status, false, message, body)
}

// BadRequest returns 400 "Bad Request".
func BadRequest(body Body) *Response {
	return Error(http.StatusBadRequest, "Bad Request", body)
}

// Unauthorized returns 401 "Unauthorized".
func Unauthorized(body Body) *Response {
	return Error(http.StatusUnauthorized, "Unauthorized", body)
}

// Forbidden returns 403 "Forbidden".
func Forbidden(body Body) *Response {
	return Error(http.StatusForbidden, "Forbidden", body)
}

// NotFound returns 404 "Not Found".
func NotFound(body Body) *Response {
	return Error(http.StatusNotFound, "Not Found", body)
}

// MethodNotAllowed returns 405 "Method Not Supported".
func MethodNotAllowed(body Body) *Response {
	return Error(http.StatusMethodNotAllowed, "Method Not Supported", body)
}

// TooLarge returns 413 "Request Entity Too Large".
func TooLarge(body Body) *Response {
	return Error(http.StatusRequestEntityTooLarge, "Request Entity Too Large", body)
}

// TooManyRequests returns 429 "Too Many Requests".
func TooManyRequests(body Body) *Response {
	return Error(http.StatusTooManyRequests, "Too Many Requests", body)
}

// Invalid returns a 400 with a custom message.
func Invalid(message string, body Body) *Response {
	return Error(http.StatusBadRequest, message, body)
}

// InvalidForm returns 400 "Invalid Form" with the validator's errors under
// body.errors.
func InvalidForm(v Validator) *Response {
	return Invalid("Invalid Form", Body{"errors": v.Errors()})
}

// ExceptionOptions controls how Exception reports a failure.
type ExceptionOptions struct {
	// Debug reveals the failure text in the message.
	Debug bool
	// Log records the failure before responding.
	Log bool
	// Logger defaults to zap.L().
	Logger *zap.Logger
	// Fields are extra context logged with the failure.
	Fields []zap.Field
}

// Exception returns 500. The message is "Internal Server Error" unless
// opts.Debug is set, in which case it carries the failure text.
func Exception(err error, opts ExceptionOptions) *Response {
	if opts.Log {
		logger := opts.Logger
		if logger == nil {
			logger = zap.L()
		}
		fields := append(opts.Fields[:len(opts.Fields):len(opts.Fields)], zap.Error(err))
		logger.Error("returning internal server error", fields...)
	}

	if opts.Debug {
		return Error(http.StatusInternalServerError, fmt.Sprintf("DEBUG: %v", err), nil)
	}
	return Error(http.StatusInternalServerError, "Internal Server Error", nil)
}
