package form

import (
	"encoding/json"
	"fmt"
	"math"
	"math/big"
	"reflect"
	"time"

	"github.com/mitchellh/mapstructure"
)

// coerce decodes raw into fv, returning a message when it does not fit.
func coerce(raw any, fv reflect.Value) string {
	kind := fv.Kind()
	if isIntKind(kind) {
		n, msg := integer(raw)
		if msg != "" {
			return msg
		}
		if n != nil {
			if msg := checkRange(n, fv.Type()); msg != "" {
				return msg
			}
			raw = n.String()
		}
	}
	if isFloatKind(kind) {
		if _, ok := raw.(bool); ok {
			return MsgNumber
		}
	}

	target := reflect.New(fv.Type())
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		WeaklyTypedInput: true,
		Result:           target.Interface(),
		DecodeHook: mapstructure.ComposeDecodeHookFunc(
			mapstructure.StringToTimeDurationHookFunc(),
			mapstructure.StringToTimeHookFunc(time.RFC3339),
			mapstructure.StringToSliceHookFunc(","),
		),
	})
	if err != nil {
		return MsgInvalid
	}
	if err := dec.Decode(raw); err != nil {
		return kindMessage(kind)
	}
	if isFloatKind(kind) && math.IsInf(target.Elem().Float(), 0) {
		return MsgNumber
	}

	fv.Set(target.Elem())
	return ""
}

// integer returns the exact integer raw holds. A nil result with no message
// leaves the value to the decoder.
func integer(raw any) (*big.Int, string) {
	switch x := raw.(type) {
	case bool:
		return nil, MsgInteger
	case float64:
		return integralFloat(x)
	case json.Number:
		if n, ok := new(big.Int).SetString(string(x), 10); ok {
			return n, ""
		}
		f, err := x.Float64()
		if err != nil {
			return nil, MsgInteger
		}
		return integralFloat(f)
	}

	rv := reflect.ValueOf(raw)
	switch {
	case rv.CanInt():
		return big.NewInt(rv.Int()), ""
	case rv.CanUint():
		return new(big.Int).SetUint64(rv.Uint()), ""
	default:
		return nil, ""
	}
}

func integralFloat(f float64) (*big.Int, string) {
	if math.IsInf(f, 0) || math.IsNaN(f) || f != math.Trunc(f) {
		return nil, MsgInteger
	}
	n, _ := big.NewFloat(f).Int(nil)
	return n, ""
}

// checkRange rejects n when it does not fit the integer type t.
func checkRange(n *big.Int, t reflect.Type) string {
	bits := uint(t.Bits())

	low, high := new(big.Int), new(big.Int)
	if isUintKind(t.Kind()) {
		high.Lsh(big.NewInt(1), bits).Sub(high, big.NewInt(1))
	} else {
		high.Lsh(big.NewInt(1), bits-1).Sub(high, big.NewInt(1))
		low.Neg(high).Sub(low, big.NewInt(1))
	}

	switch {
	case n.Cmp(low) < 0:
		return fmt.Sprintf("Ensure this value is greater than or equal to %d.", low)
	case n.Cmp(high) > 0:
		return fmt.Sprintf("Ensure this value is less than or equal to %d.", high)
	default:
		return ""
	}
}

func kindMessage(k reflect.Kind) string {
	switch {
	case isIntKind(k):
		return MsgInteger
	case isFloatKind(k):
		return MsgNumber
	case k == reflect.Bool:
		return MsgBoolean
	default:
		return MsgInvalid
	}
}

func isIntKind(k reflect.Kind) bool {
	//exhaustive:ignore
	switch k {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return true
	default:
		return isUintKind(k)
	}
}

func isUintKind(k reflect.Kind) bool {
	//exhaustive:ignore
	switch k {
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		return true
	default:
		return false
	}
}

func isFloatKind(k reflect.Kind) bool {
	return k == reflect.Float32 || k == reflect.Float64
}
