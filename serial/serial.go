package serial

import (
	"fmt"
	"maps"
	"reflect"

	"github.com/cockroachdb/errors"
)

// Map is a serialized value.
type Map = map[string]any

// Kwargs are caller-supplied arguments passed through to serializer
// functions. Each call receives its own copy.
type Kwargs = map[string]any

// Mode names a serialization variant. The empty mode is the default.
type Mode string

// Func serializes v, whose dynamic type is the registered type.
type Func func(v any, kw Kwargs) (Map, error)

// ErrNoSerializer matches every *NoSerializerError.
var ErrNoSerializer = errors.New("no serializer registered")

// NoSerializerError reports a value whose (type, mode) has no registration.
type NoSerializerError struct {
	Type reflect.Type
	Mode Mode
}

func (e *NoSerializerError) Error() string {
	return fmt.Sprintf("no serializer registered for %v in mode %q", e.Type, e.Mode)
}

// Is reports whether target is ErrNoSerializer.
func (e *NoSerializerError) Is(target error) bool {
	return target == ErrNoSerializer
}

type key struct {
	typ  reflect.Type
	mode Mode
}

// Registry maps (type, mode) pairs to serializer functions. Register at
// startup; lookups take no locks.
type Registry struct {
	funcs map[key]Func
	debug bool
}

// Option configures a Registry.
type Option func(*Registry)

// WithDebug sets the default for the debug fields Model adds.
func WithDebug(debug bool) Option {
	return func(r *Registry) {
		r.debug = debug
	}
}

// NewRegistry returns an empty registry.
func NewRegistry(opts ...Option) *Registry {
	r := &Registry{funcs: make(map[key]Func)}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Register records fn as the serializer for T in mode, replacing any
// earlier registration.
func Register[T any](r *Registry, mode Mode, fn func(v T, kw Kwargs) (Map, error)) {
	r.RegisterType(reflect.TypeFor[T](), mode, func(v any, kw Kwargs) (Map, error) {
		return fn(v.(T), kw)
	})
}

// RegisterType records fn as the serializer for t in mode, replacing any
// earlier registration.
func (r *Registry) RegisterType(t reflect.Type, mode Mode, fn Func) {
	r.funcs[key{typ: t, mode: mode}] = fn
}

// Serialize serializes a slice or array element by element into a []Map,
// and anything else into a single Map. Each element is resolved by its own
// dynamic type.
func (r *Registry) Serialize(items any, mode Mode, kw Kwargs) (any, error) {
	rv := reflect.ValueOf(items)
	if rv.Kind() == reflect.Slice || rv.Kind() == reflect.Array {
		return r.many(rv, mode, kw)
	}
	return r.One(items, mode, kw)
}

// One serializes a single value.
func (r *Registry) One(v any, mode Mode, kw Kwargs) (Map, error) {
	fn, err := r.lookup(reflect.TypeOf(v), mode)
	if err != nil {
		return nil, err
	}
	return fn(v, maps.Clone(kw))
}

// Many serializes each element of a slice or array in order. The first
// failure aborts.
func (r *Registry) Many(items any, mode Mode, kw Kwargs) ([]Map, error) {
	rv := reflect.ValueOf(items)
	if rv.Kind() != reflect.Slice && rv.Kind() != reflect.Array {
		return nil, errors.Newf("serial: Many needs a slice or array, got %T", items)
	}
	return r.many(rv, mode, kw)
}

func (r *Registry) many(rv reflect.Value, mode Mode, kw Kwargs) ([]Map, error) {
	out := make([]Map, 0, rv.Len())
	for i := range rv.Len() {
		m, err := r.One(rv.Index(i).Interface(), mode, kw)
		if err != nil {
			return nil, errors.Wrapf(err, "item %d", i)
		}
		out = append(out, m)
	}
	return out, nil
}

func (r *Registry) lookup(t reflect.Type, mode Mode) (Func, error) {
	fn, ok := r.funcs[key{typ: t, mode: mode}]
	if !ok {
		return nil, errors.WithStack(&NoSerializerError{Type: t, Mode: mode})
	}
	return fn, nil
}
