package jsonapi

import (
	"net/http"
	"net/http/pprof"
)

// Pprof mounts the runtime profiling endpoints under prefix (default
// "/debug/pprof") as raw routes. Mount it only in debug mode.
func (r *Router) Pprof(prefix string) {
	if prefix == "" {
		prefix = "/debug/pprof"
	}

	r.Raw("GET "+prefix+"/", http.HandlerFunc(pprof.Index))
	r.Raw("GET "+prefix+"/cmdline", http.HandlerFunc(pprof.Cmdline))
	r.Raw("GET "+prefix+"/profile", http.HandlerFunc(pprof.Profile))
	r.Raw("GET "+prefix+"/symbol", http.HandlerFunc(pprof.Symbol))
	r.Raw("GET "+prefix+"/trace", http.HandlerFunc(pprof.Trace))
	for _, name := range []string{"goroutine", "heap", "allocs", "block", "mutex", "threadcreate"} {
		r.Raw("GET "+prefix+"/"+name, pprof.Handler(name))
	}
}
