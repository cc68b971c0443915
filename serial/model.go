package serial

import (
	"path"
	"reflect"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/samber/lo"
)

// Debug field keys added by Model in debug mode.
const (
	DebugPKKey    = "_debug_pk"
	DebugModelKey = "_debug_model"
)

// PrimaryKeyer is implemented by models with a primary key other than an ID
// field.
type PrimaryKeyer interface {
	PK() any
}

// Model serializes a struct. With no names it uses every exported field
// except those whose name contains "password". In debug mode the result
// also carries the primary key and the model label ("package.Type").
func Model(obj any, debug bool, names ...string) (Map, error) {
	if len(names) == 0 {
		discovered, err := FieldNames(obj)
		if err != nil {
			return nil, err
		}
		names = discovered
	}

	out, err := Fields(obj, names...)
	if err != nil {
		return nil, err
	}
	if debug {
		out[DebugPKKey] = primaryKey(obj)
		out[DebugModelKey] = modelLabel(reflect.TypeOf(obj))
	}
	return out, nil
}

// Model is Model with the registry's debug default.
func (r *Registry) Model(obj any, names ...string) (Map, error) {
	return Model(obj, r.debug, names...)
}

// FieldNames lists the serializable field names of a struct: the json tag
// name, else the Go name, skipping json:"-" fields and any name containing
// "password".
func FieldNames(obj any) ([]string, error) {
	t := reflect.TypeOf(obj)
	for t != nil && t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	if t == nil || t.Kind() != reflect.Struct {
		return nil, errors.Newf("serial: model must be a struct, got %T", obj)
	}

	fields := lo.Filter(reflect.VisibleFields(t), func(sf reflect.StructField, _ int) bool {
		return sf.IsExported() && !sf.Anonymous && sf.Tag.Get("json") != "-"
	})
	fields = lo.Reject(fields, func(sf reflect.StructField, _ int) bool {
		return isSecret(sf.Name) || isSecret(jsonName(sf))
	})
	return lo.Map(fields, func(sf reflect.StructField, _ int) string {
		if name := jsonName(sf); name != "" {
			return name
		}
		return sf.Name
	}), nil
}

func isSecret(name string) bool {
	return strings.Contains(strings.ToLower(name), "password")
}

func primaryKey(obj any) any {
	if pk, ok := obj.(PrimaryKeyer); ok {
		return pk.PK()
	}
	id, err := attribute(reflect.ValueOf(obj), "ID")
	if err != nil {
		return nil
	}
	return id
}

func modelLabel(t reflect.Type) string {
	for t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	return path.Base(t.PkgPath()) + "." + t.Name()
}
