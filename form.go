package jsonapi

import (
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/samber/lo"
)

// Form validates request input with a validator from factory. It must run
// inside RequireMethod so the body has already been parsed.
//
// For POST, PUT and PATCH the input is the parsed payload, which is removed
// from the request values; for other methods it is the query string. Fields
// from WithExtra are merged in. A valid validator is stored under FormKey and
// the handler runs; an invalid one is answered with InvalidForm and the
// handler never runs. Methods outside WithFormMethods pass through with no
// FormKey value at all.
func Form(factory FormFactory, opts ...GuardOption) Guard {
	cfg := newGuardConfig(opts)

	return func(req *Request, next Handler) (*Response, error) {
		if !lo.Contains(cfg.methods, req.Method()) {
			return next(req)
		}

		data, resp, err := formInput(req)
		if err != nil || resp != nil {
			return resp, err
		}
		if cfg.extra != nil {
			for k, v := range cfg.extra(req) {
				data[k] = v
			}
		}

		v, err := factory.resolve(req, data)
		if err != nil {
			return nil, err
		}
		if !v.Valid() {
			return InvalidForm(v), nil
		}

		req.Set(FormKey, v)
		return next(req)
	}
}

func formInput(req *Request) (map[string]any, *Response, error) {
	method := req.Method()
	if !lo.Contains(bodyMethods, method) {
		return req.Query(), nil, nil
	}

	payload, ok := req.Take(strings.ToLower(method))
	if !ok {
		return nil, nil, errors.Wrapf(ErrMissingPayload, "method %s", method)
	}
	data, ok := payload.(map[string]any)
	if !ok {
		return nil, Invalid("Invalid Form", Body{
			"errors": map[string][]string{"__all__": {"Expected a JSON object."}},
		}), nil
	}
	return data, nil, nil
}
