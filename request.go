package jsonapi

import (
	"context"
	"io"
	"maps"
	"net/http"
	"strings"

	"github.com/cockroachdb/errors"
	"go.uber.org/zap"
)

// FormKey is the request value key under which Form stores a valid validator.
const FormKey = "form"

// Settings are the process-wide switches a request is served with.
type Settings struct {
	// Debug reveals failure detail in 500 and invalid-JSON responses.
	Debug bool
	// Logger defaults to zap.L().
	Logger *zap.Logger
	// Codec defaults to DefaultCodec.
	Codec *Codec
}

func (s Settings) withDefaults() Settings {
	if s.Logger == nil {
		s.Logger = zap.L()
	}
	if s.Codec == nil {
		s.Codec = DefaultCodec
	}
	return s
}

// SettingsFrom returns the settings of the router serving r, or the defaults
// when r did not come through a Router.
func SettingsFrom(r *http.Request) Settings {
	s, _ := GetValue[Settings](r.Context())
	return s.withDefaults()
}

// Request is the per-request value passed through guards to the handler.
// Guards accumulate parsed payloads ("post", "put", "patch") and the valid
// validator ("form") as request values.
type Request struct {
	HTTP *http.Request

	settings Settings
	body     []byte
	values   map[string]any
}

// NewRequest reads the body of r and wraps it with the given settings.
func NewRequest(r *http.Request, s Settings) (*Request, error) {
	var body []byte
	if r.Body != nil {
		b, err := io.ReadAll(r.Body)
		if err != nil {
			return nil, errors.Wrap(err, "read request body")
		}
		body = b
	}
	return &Request{
		HTTP:     r,
		settings: s.withDefaults(),
		body:     body,
		values:   make(map[string]any),
	}, nil
}

// Method returns the HTTP method.
func (r *Request) Method() string { return r.HTTP.Method }

// Context returns the request context.
func (r *Request) Context() context.Context { return r.HTTP.Context() }

// RawBody returns the request body as read. It may be empty.
func (r *Request) RawBody() []byte { return r.body }

// Query returns the query parameters, one value per key. When a key repeats,
// the last value wins.
func (r *Request) Query() map[string]any {
	q := r.HTTP.URL.Query()
	out := make(map[string]any, len(q))
	for k, vs := range q {
		if len(vs) > 0 {
			out[k] = vs[len(vs)-1]
		}
	}
	return out
}

// Debug reports whether the request is served in debug mode.
func (r *Request) Debug() bool { return r.settings.Debug }

// Logger returns the logger of the serving router.
func (r *Request) Logger() *zap.Logger { return r.settings.Logger }

// Codec returns the codec of the serving router.
func (r *Request) Codec() *Codec { return r.settings.Codec }

// User returns the user attached to the request context, if any.
func (r *Request) User() User {
	u, _ := UserFrom(r.Context())
	return u
}

// Set stores a request value.
func (r *Request) Set(key string, v any) { r.values[key] = v }

// Value returns a request value.
func (r *Request) Value(key string) (any, bool) {
	v, ok := r.values[key]
	return v, ok
}

// Take returns a request value and removes it.
func (r *Request) Take(key string) (any, bool) {
	v, ok := r.values[key]
	delete(r.values, key)
	return v, ok
}

// Values returns a copy of all request values.
func (r *Request) Values() map[string]any { return maps.Clone(r.values) }

// Payload returns the JSON payload RequireMethod parsed for the current
// method.
func (r *Request) Payload() (any, bool) {
	return r.Value(strings.ToLower(r.Method()))
}

// Form returns the validator stored by the Form guard. It is absent for
// methods the guard does not cover.
func (r *Request) Form() (Validator, bool) {
	v, ok := r.values[FormKey].(Validator)
	return v, ok
}

// Exception returns a 500 response for err using the request's debug flag
// and logger.
func (r *Request) Exception(err error) *Response {
	return Exception(err, ExceptionOptions{
		Debug:  r.Debug(),
		Log:    true,
		Logger: r.Logger(),
		Fields: r.logFields(),
	})
}

func (r *Request) logFields() []zap.Field {
	fields := []zap.Field{
		zap.String("method", r.Method()),
		zap.String("path", r.HTTP.URL.Path),
		zap.Any("query", r.Query()),
		zap.Any("values", r.values),
	}
	if id := GetRequestID(r.HTTP); id != "" {
		fields = append(fields, zap.String("request_id", id))
	}
	return fields
}
