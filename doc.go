// Package jsonapi is a small convenience layer over net/http for JSON APIs.
// Every response is a standard envelope:
//
//	{"ok": true, "message": "Welcome", "body": {"user": {...}}}
//
// where message is present only when non-empty and body only when at least
// one body field was supplied.
//
// Handlers receive a *Request and return a *Response built with the envelope
// helpers:
//
//	func home(req *jsonapi.Request) (*jsonapi.Response, error) {
//	    return jsonapi.OK("Welcome", nil), nil
//	}
//
// Guards wrap handlers and either short-circuit with an envelope or pass the
// request on. They compose outer to inner in the order given:
//
//	r := jsonapi.New(jsonapi.WithDebugMode(cfg.Debug))
//	r.Handle("/reports", reports,
//	    jsonapi.Recovery(),
//	    jsonapi.LoginRequired(jsonapi.WithLoginURL("/login")),
//	    jsonapi.RequireMethod([]string{http.MethodGet, http.MethodPost}),
//	    jsonapi.Form(form.Factory[ReportForm]()),
//	)
//
// RequireMethod decodes POST, PUT and PATCH bodies as JSON and stores the
// result on the request under the lowercased method name; Form validates that
// payload (or the query string for other methods) and stores the valid
// validator under "form".
//
// Serializing domain values into plain maps lives in the serial package.
package jsonapi
