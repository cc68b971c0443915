package jsonapi

import (
	"context"
	"net/http"
	"slices"
	"sync"
	"time"

	"github.com/cockroachdb/errors"
	"go.uber.org/zap"
)

// Route describes a registered pattern.
type Route struct {
	Pattern string
	// Raw is set for plain http.Handler routes that bypass the envelope
	// pipeline.
	Raw bool
}

// Router holds routes, middleware, guards and settings. It implements
// http.Handler.
type Router struct {
	mux        *http.ServeMux
	middleware []Middleware
	guards     []Guard
	settings   Settings
	routes     []Route

	mu sync.Mutex
}

// RouterOption configures a Router.
type RouterOption func(*Router)

// WithSettings replaces the router settings.
func WithSettings(s Settings) RouterOption {
	return func(r *Router) {
		r.settings = s
	}
}

// WithDebugMode sets the process debug flag guards and Exception use by
// default.
func WithDebugMode(debug bool) RouterOption {
	return func(r *Router) {
		r.settings.Debug = debug
	}
}

// WithLogger sets the logger handed to requests.
func WithLogger(l *zap.Logger) RouterOption {
	return func(r *Router) {
		r.settings.Logger = l
	}
}

// WithCodec sets the JSON codec used to decode bodies and encode envelopes.
func WithCodec(c *Codec) RouterOption {
	return func(r *Router) {
		r.settings.Codec = c
	}
}

// WithGuards adds guards applied, outermost, to every handler registered on
// the router.
func WithGuards(guards ...Guard) RouterOption {
	return func(r *Router) {
		r.guards = append(r.guards, guards...)
	}
}

// New creates a new Router with the given options.
func New(opts ...RouterOption) *Router {
	r := &Router{
		mux: http.NewServeMux(),
	}
	for _, opt := range opts {
		opt(r)
	}
	r.settings = r.settings.withDefaults()
	return r
}

// Use adds middleware to the router. Middleware is applied in the order added.
func (r *Router) Use(mw ...Middleware) {
	r.middleware = append(r.middleware, mw...)
}

// Settings returns the settings requests are served with.
func (r *Router) Settings() Settings { return r.settings }

// Handle registers h for pattern (http.ServeMux syntax, e.g. "GET /items/{id}")
// wrapped in the router guards followed by guards.
func (r *Router) Handle(pattern string, h Handler, guards ...Guard) {
	r.addRoute(Route{Pattern: pattern}, r.guarded(h, slices.Concat(r.guards, guards)))
}

// Raw registers a plain http.Handler. It passes through router middleware
// only.
func (r *Router) Raw(pattern string, h http.Handler) {
	r.addRoute(Route{Pattern: pattern, Raw: true}, h)
}

// Routes returns the registered routes in registration order.
func (r *Router) Routes() []Route {
	r.mu.Lock()
	defer r.mu.Unlock()
	return slices.Clone(r.routes)
}

// ServeHTTP implements http.Handler. The router settings are attached to the
// request context for middleware; see SettingsFrom.
func (r *Router) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	handler := http.Handler(r.mux)
	for i := len(r.middleware) - 1; i >= 0; i-- {
		handler = r.middleware[i](handler)
	}
	handler.ServeHTTP(w, SetValue(req, r.settings))
}

// ListenAndServe starts an HTTP server on the given address.
// It blocks until the context is cancelled, then shuts down gracefully.
func (r *Router) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()

	r.settings.Logger.Info("listening", zap.String("addr", addr))

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return errors.Wrap(err, "listen")
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 30*time.Second)
		defer cancel()
		return errors.Wrap(srv.Shutdown(shutdownCtx), "shutdown")
	}
}

// guarded adapts h, wrapped in guards, to http.Handler.
func (r *Router) guarded(h Handler, guards []Guard) http.Handler {
	chained := Chain(h, guards...)
	s := r.settings
	return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		serve(w, req, chained, s)
	})
}

func (r *Router) addRoute(route Route, h http.Handler) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.mux.Handle(route.Pattern, h)
	r.routes = append(r.routes, route)
}
