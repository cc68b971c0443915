package jsonapi

import "github.com/cockroachdb/errors"

// Validator checks a data mapping. A valid validator exposes cleaned data;
// an invalid one exposes per-field error messages.
type Validator interface {
	Valid() bool
	CleanedData() map[string]any
	Errors() map[string][]string
}

type factoryKind int

const (
	factoryFixed factoryKind = iota + 1
	factoryPerRequest
	factoryPerMethod
)

// FormFactory produces the validator for a request. Build one with Fixed,
// PerRequest or PerMethod.
type FormFactory struct {
	kind       factoryKind
	fixed      func(data map[string]any) Validator
	perRequest func(req *Request, data map[string]any) Validator
	perMethod  func(req *Request, data map[string]any) map[string]Validator
}

// Fixed constructs the validator from the data alone.
func Fixed(fn func(data map[string]any) Validator) FormFactory {
	return FormFactory{kind: factoryFixed, fixed: fn}
}

// PerRequest constructs the validator from the request and the data.
func PerRequest(fn func(req *Request, data map[string]any) Validator) FormFactory {
	return FormFactory{kind: factoryPerRequest, perRequest: fn}
}

// PerMethod returns validators keyed by HTTP method; the one for the request
// method is used.
func PerMethod(fn func(req *Request, data map[string]any) map[string]Validator) FormFactory {
	return FormFactory{kind: factoryPerMethod, perMethod: fn}
}

func (f FormFactory) resolve(req *Request, data map[string]any) (Validator, error) {
	var v Validator

	switch f.kind {
	case factoryFixed:
		v = f.fixed(data)
	case factoryPerRequest:
		v = f.perRequest(req, data)
	case factoryPerMethod:
		validators := f.perMethod(req, data)
		found, ok := validators[req.Method()]
		if !ok {
			return nil, errors.Wrapf(ErrNoValidator, "method %s", req.Method())
		}
		v = found
	default:
		return nil, errors.Wrap(ErrNoValidator, "zero form factory")
	}

	if v == nil {
		return nil, errors.Wrapf(ErrNoValidator, "method %s", req.Method())
	}
	return v, nil
}
