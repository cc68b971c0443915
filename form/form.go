// Package form is a tag-driven implementation of jsonapi.Validator.
//
// A form is a struct whose exported fields describe the accepted input:
//
//	type ReportForm struct {
//		Title string   `form:"title,required" minLength:"3"`
//		Score float64  `form:"score" minimum:"0" maximum:"100"`
//		Tags  []string `form:"tags" maxItems:"5"`
//	}
//
// Input values are coerced to the field types, so "42" fills an int field.
// The field name is taken from the form tag, then the json tag, then the Go
// name. If *T implements Cleaner, Clean runs after every field passed.
package form

import (
	"reflect"
	"strings"

	"github.com/cockroachdb/errors"

	"github.com/bjaus/jsonapi"
)

// NonFieldErrors is the error key for failures not tied to one field.
const NonFieldErrors = "__all__"

// Error messages.
const (
	MsgRequired = "This field is required."
	MsgInteger  = "Enter a whole number."
	MsgNumber   = "Enter a number."
	MsgBoolean  = "Enter a valid boolean."
	MsgInvalid  = "Enter a valid value."
)

// Cleaner is implemented by forms with cross-field rules.
type Cleaner interface {
	Clean() error
}

// FieldError is returned from Clean to attach a message to one field.
type FieldError struct {
	Field   string
	Message string
}

func (e *FieldError) Error() string { return e.Field + ": " + e.Message }

// Form validates a data mapping against T. It implements jsonapi.Validator.
type Form[T any] struct {
	data    map[string]any
	value   T
	cleaned map[string]any
	errors  map[string][]string
}

var _ jsonapi.Validator = (*Form[struct{}])(nil)

// New validates data against T.
func New[T any](data map[string]any) *Form[T] {
	f := &Form[T]{
		data:   data,
		errors: make(map[string][]string),
	}
	f.validate()
	return f
}

// Factory returns a jsonapi.FormFactory building a Form[T] from the request
// data.
func Factory[T any]() jsonapi.FormFactory {
	return jsonapi.Fixed(func(data map[string]any) jsonapi.Validator {
		return New[T](data)
	})
}

// Valid reports whether the data passed every check.
func (f *Form[T]) Valid() bool { return len(f.errors) == 0 }

// Value returns the populated T. Fields that failed are left at their zero
// value.
func (f *Form[T]) Value() T { return f.value }

// CleanedData returns the coerced values keyed by field name, or nil when
// the form is invalid. Optional fields that were not supplied map to nil.
func (f *Form[T]) CleanedData() map[string]any {
	if !f.Valid() {
		return nil
	}
	return f.cleaned
}

// Errors returns the messages per field name.
func (f *Form[T]) Errors() map[string][]string { return f.errors }

// Data returns the input as given.
func (f *Form[T]) Data() map[string]any { return f.data }

func (f *Form[T]) addError(field, msg string) {
	f.errors[field] = append(f.errors[field], msg)
}

func (f *Form[T]) validate() {
	rv := reflect.ValueOf(&f.value).Elem()
	if rv.Kind() != reflect.Struct {
		f.addError(NonFieldErrors, MsgInvalid)
		return
	}

	specs := fieldSpecs(rv.Type())
	for _, spec := range specs {
		raw, ok := f.data[spec.name]
		if !ok || isEmpty(raw) {
			if spec.required {
				f.addError(spec.name, MsgRequired)
			}
			continue
		}

		fv := rv.FieldByIndex(spec.index)
		if msg := coerce(raw, fv); msg != "" {
			f.addError(spec.name, msg)
			continue
		}
		for _, msg := range checkConstraints(spec.field, fv) {
			f.addError(spec.name, msg)
		}
	}

	if !f.Valid() {
		return
	}
	if c, ok := any(&f.value).(Cleaner); ok {
		if err := c.Clean(); err != nil {
			var fe *FieldError
			if errors.As(err, &fe) {
				f.addError(fe.Field, fe.Message)
			} else {
				f.addError(NonFieldErrors, err.Error())
			}
			return
		}
	}

	f.cleaned = make(map[string]any, len(specs))
	for _, spec := range specs {
		if raw, ok := f.data[spec.name]; !ok || isEmpty(raw) {
			f.cleaned[spec.name] = nil
			continue
		}
		f.cleaned[spec.name] = rv.FieldByIndex(spec.index).Interface()
	}
}

type fieldSpec struct {
	name     string
	required bool
	index    []int
	field    reflect.StructField
}

func fieldSpecs(t reflect.Type) []fieldSpec {
	var specs []fieldSpec
	for _, sf := range reflect.VisibleFields(t) {
		if !sf.IsExported() || sf.Anonymous || throughPointer(t, sf.Index) {
			continue
		}
		name, opts, _ := strings.Cut(sf.Tag.Get("form"), ",")
		if name == "-" {
			continue
		}
		if name == "" {
			name, _, _ = strings.Cut(sf.Tag.Get("json"), ",")
			if name == "-" {
				continue
			}
		}
		if name == "" {
			name = sf.Name
		}
		specs = append(specs, fieldSpec{
			name:     name,
			required: hasOption(opts, "required") || sf.Tag.Get("required") == "true",
			index:    sf.Index,
			field:    sf,
		})
	}
	return specs
}

// throughPointer reports whether the field at index is promoted through an
// embedded pointer, which is nil in a fresh form.
func throughPointer(t reflect.Type, index []int) bool {
	for _, i := range index[:len(index)-1] {
		t = t.Field(i).Type
		if t.Kind() == reflect.Pointer {
			return true
		}
	}
	return false
}

func hasOption(opts, want string) bool {
	for opt := range strings.SplitSeq(opts, ",") {
		if strings.TrimSpace(opt) == want {
			return true
		}
	}
	return false
}

func isEmpty(v any) bool {
	switch x := v.(type) {
	case nil:
		return true
	case string:
		return x == ""
	case []any:
		return len(x) == 0
	default:
		return false
	}
}
