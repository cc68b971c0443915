package serial

import (
	"reflect"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/cockroachdb/errors"
)

var errorType = reflect.TypeFor[error]()

// Fields reads the named attributes of obj into a Map keyed by those names.
//
// A name resolves, in order, to a method with no arguments, then to a struct
// field matched by json tag, Go name or exported Go name ("title" finds
// Title). Methods and func-typed fields are called and their result used; a
// call may return a value or a value and an error. Unknown names are an
// error.
func Fields(obj any, names ...string) (Map, error) {
	v := reflect.ValueOf(obj)
	if !v.IsValid() {
		return nil, errors.New("serial: fields of nil value")
	}

	out := make(Map, len(names))
	for _, name := range names {
		val, err := attribute(v, name)
		if err != nil {
			return nil, err
		}
		out[name] = val
	}
	return out, nil
}

func attribute(v reflect.Value, name string) (any, error) {
	s := v
	for s.Kind() == reflect.Pointer || s.Kind() == reflect.Interface {
		if s.IsNil() {
			return nil, errors.Newf("serial: attribute %q of nil %s", name, v.Type())
		}
		s = s.Elem()
	}

	for _, candidate := range []string{name, exported(name)} {
		if m := v.MethodByName(candidate); m.IsValid() {
			return invoke(m, name)
		}
	}

	if s.Kind() != reflect.Struct {
		return nil, errors.Newf("serial: %s has no attribute %q", v.Type(), name)
	}

	sf, ok := lookupField(s.Type(), name)
	if !ok {
		return nil, errors.Newf("serial: %s has no attribute %q", v.Type(), name)
	}
	f, err := s.FieldByIndexErr(sf.Index)
	if err != nil {
		return nil, errors.Wrapf(err, "serial: attribute %q", name)
	}
	if f.Kind() == reflect.Func {
		if f.IsNil() {
			return nil, nil
		}
		return invoke(f, name)
	}
	return f.Interface(), nil
}

func lookupField(t reflect.Type, name string) (reflect.StructField, bool) {
	var byName reflect.StructField
	found := false
	for _, sf := range reflect.VisibleFields(t) {
		if !sf.IsExported() || sf.Anonymous {
			continue
		}
		if tag := jsonName(sf); tag != "" && tag == name {
			return sf, true
		}
		if !found && (sf.Name == name || sf.Name == exported(name)) {
			byName, found = sf, true
		}
	}
	return byName, found
}

func invoke(fn reflect.Value, name string) (any, error) {
	t := fn.Type()
	if t.NumIn() != 0 {
		return nil, errors.Newf("serial: attribute %q takes arguments", name)
	}

	out := fn.Call(nil)
	switch {
	case t.NumOut() == 1:
		return out[0].Interface(), nil
	case t.NumOut() == 2 && t.Out(1).Implements(errorType):
		if err, _ := out[1].Interface().(error); err != nil {
			return nil, errors.Wrapf(err, "serial: attribute %q", name)
		}
		return out[0].Interface(), nil
	default:
		return nil, errors.Newf("serial: attribute %q returns %d values", name, t.NumOut())
	}
}

// jsonName returns the json tag name of sf, or "" when untagged.
func jsonName(sf reflect.StructField) string {
	tag, _, _ := strings.Cut(sf.Tag.Get("json"), ",")
	if tag == "-" {
		return ""
	}
	return tag
}

func exported(name string) string {
	r, size := utf8.DecodeRuneInString(name)
	if r == utf8.RuneError {
		return name
	}
	return string(unicode.ToUpper(r)) + name[size:]
}
