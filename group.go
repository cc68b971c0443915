package jsonapi

import (
	"net/http"
	"slices"
)

// Group is a collection of routes under a shared prefix with shared
// middleware and guards.
type Group struct {
	router     *Router
	prefix     string
	middleware []Middleware
	guards     []Guard
}

// GroupOption configures a Group.
type GroupOption func(*Group)

// WithGroupMiddleware adds middleware to the group.
func WithGroupMiddleware(mw ...Middleware) GroupOption {
	return func(g *Group) {
		g.middleware = append(g.middleware, mw...)
	}
}

// WithGroupGuards adds guards applied after the router guards to every
// handler in the group.
func WithGroupGuards(guards ...Guard) GroupOption {
	return func(g *Group) {
		g.guards = append(g.guards, guards...)
	}
}

// Group creates a new route group with the given prefix and options.
func (r *Router) Group(prefix string, opts ...GroupOption) *Group {
	g := &Group{
		router: r,
		prefix: prefix,
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Handle registers h under the group prefix. A pattern may start with a
// method ("GET /items"); the prefix is inserted before the path.
func (g *Group) Handle(pattern string, h Handler, guards ...Guard) {
	handler := g.router.guarded(h, slices.Concat(g.router.guards, g.guards, guards))
	g.router.addRoute(Route{Pattern: g.pattern(pattern)}, g.wrap(handler))
}

// Raw registers a plain http.Handler under the group prefix.
func (g *Group) Raw(pattern string, h http.Handler) {
	g.router.addRoute(Route{Pattern: g.pattern(pattern), Raw: true}, g.wrap(h))
}

func (g *Group) pattern(p string) string {
	for i := 0; i < len(p); i++ {
		if p[i] == ' ' {
			return p[:i+1] + g.prefix + p[i+1:]
		}
		if p[i] == '/' {
			break
		}
	}
	return g.prefix + p
}

func (g *Group) wrap(h http.Handler) http.Handler {
	for i := len(g.middleware) - 1; i >= 0; i-- {
		h = g.middleware[i](h)
	}
	return h
}
