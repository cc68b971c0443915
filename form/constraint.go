package form

import (
	"fmt"
	"reflect"
	"regexp"
	"strconv"
	"strings"
	"sync"
	"unicode/utf8"

	"github.com/samber/lo"
)

var patterns sync.Map // string -> *regexp.Regexp

// checkConstraints checks the constraint tags of f against its decoded value
// and returns one message per violation.
func checkConstraints(f reflect.StructField, fv reflect.Value) []string {
	var msgs []string

	// minLength / maxLength / pattern / enum: strings.
	if fv.Kind() == reflect.String {
		val := fv.String()
		length := utf8.RuneCountInString(val)
		if n, ok := intTag(f, "minLength"); ok && length < n {
			msgs = append(msgs, fmt.Sprintf("Ensure this value has at least %d characters (it has %d).", n, length))
		}
		if n, ok := intTag(f, "maxLength"); ok && length > n {
			msgs = append(msgs, fmt.Sprintf("Ensure this value has at most %d characters (it has %d).", n, length))
		}
		if tag := f.Tag.Get("pattern"); tag != "" {
			if re := compile(tag); re != nil && !re.MatchString(val) {
				msgs = append(msgs, MsgInvalid)
			}
		}
		if tag := f.Tag.Get("enum"); tag != "" {
			if !lo.Contains(strings.Split(tag, ","), val) {
				msgs = append(msgs, fmt.Sprintf("Select a valid choice. %s is not one of the available choices.", val))
			}
		}
	}

	// minimum / maximum: numeric types.
	if isIntKind(fv.Kind()) || isFloatKind(fv.Kind()) {
		val := toFloat64(fv)
		if tag := f.Tag.Get("minimum"); tag != "" {
			if lower, err := strconv.ParseFloat(tag, 64); err == nil && val < lower {
				msgs = append(msgs, fmt.Sprintf("Ensure this value is greater than or equal to %s.", tag))
			}
		}
		if tag := f.Tag.Get("maximum"); tag != "" {
			if upper, err := strconv.ParseFloat(tag, 64); err == nil && val > upper {
				msgs = append(msgs, fmt.Sprintf("Ensure this value is less than or equal to %s.", tag))
			}
		}
	}

	// minItems / maxItems: slices.
	if fv.Kind() == reflect.Slice {
		length := fv.Len()
		if n, ok := intTag(f, "minItems"); ok && length < n {
			msgs = append(msgs, fmt.Sprintf("Ensure this list has at least %d items.", n))
		}
		if n, ok := intTag(f, "maxItems"); ok && length > n {
			msgs = append(msgs, fmt.Sprintf("Ensure this list has at most %d items.", n))
		}
	}

	return msgs
}

func intTag(f reflect.StructField, name string) (int, bool) {
	tag := f.Tag.Get(name)
	if tag == "" {
		return 0, false
	}
	n, err := strconv.Atoi(tag)
	return n, err == nil
}

func compile(expr string) *regexp.Regexp {
	if re, ok := patterns.Load(expr); ok {
		return re.(*regexp.Regexp)
	}
	re, err := regexp.Compile(expr)
	if err != nil {
		return nil
	}
	patterns.Store(expr, re)
	return re
}

func toFloat64(v reflect.Value) float64 {
	//exhaustive:ignore
	switch v.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return float64(v.Int())
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return float64(v.Uint())
	default: // float32, float64
		return v.Float()
	}
}
