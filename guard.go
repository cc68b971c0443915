package jsonapi

import (
	"net/http"
	"slices"
)

// bodyMethods are the methods whose bodies RequireMethod parses as JSON.
var bodyMethods = []string{http.MethodPost, http.MethodPut, http.MethodPatch}

// GuardOption configures a guard. Options a guard does not use are ignored.
type GuardOption func(*guardConfig)

type guardConfig struct {
	debug        *bool
	logging      bool
	loginURL     string
	authenticate func(*Request) bool
	methods      []string
	extra        func(*Request) map[string]any
}

func newGuardConfig(opts []GuardOption) guardConfig {
	c := guardConfig{
		logging: true,
		methods: slices.Clone(bodyMethods),
	}
	for _, opt := range opts {
		opt(&c)
	}
	return c
}

// debugFor returns the configured debug flag, falling back to the request's
// settings.
func (c guardConfig) debugFor(req *Request) bool {
	if c.debug != nil {
		return *c.debug
	}
	return req.Debug()
}

// WithDebug overrides the router's debug flag for one guard.
func WithDebug(debug bool) GuardOption {
	return func(c *guardConfig) {
		c.debug = &debug
	}
}

// WithLogging controls whether Recovery logs the failures it converts.
// Default: true.
func WithLogging(enabled bool) GuardOption {
	return func(c *guardConfig) {
		c.logging = enabled
	}
}

// WithLoginURL sets the login_url hint LoginRequired returns with 401s.
func WithLoginURL(url string) GuardOption {
	return func(c *guardConfig) {
		c.loginURL = url
	}
}

// WithAuthenticator replaces LoginRequired's authentication predicate.
func WithAuthenticator(fn func(*Request) bool) GuardOption {
	return func(c *guardConfig) {
		c.authenticate = fn
	}
}

// WithFormMethods sets the methods Form validates. Default: POST, PUT, PATCH.
func WithFormMethods(methods ...string) GuardOption {
	return func(c *guardConfig) {
		c.methods = methods
	}
}

// WithExtra merges fields derived from the request into the data Form
// validates.
func WithExtra(fn func(*Request) map[string]any) GuardOption {
	return func(c *guardConfig) {
		c.extra = fn
	}
}
