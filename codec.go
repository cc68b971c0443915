package jsonapi

import (
	"io"
	"reflect"
	"time"
	"unsafe"

	jsoniter "github.com/json-iterator/go"
	"github.com/modern-go/reflect2"
	"github.com/shopspring/decimal"
)

// ContentType is the content type of every envelope response.
const ContentType = "application/json; charset=utf-8"

// Codec encodes and decodes JSON. Types with a registered encoder hook are
// converted by the hook before being written, which is how values such as
// time.Time and decimal.Decimal get their wire representation.
type Codec struct {
	api   jsoniter.API
	hooks map[reflect.Type]func(any) any
}

// CodecOption configures a Codec.
type CodecOption func(*Codec)

// WithTypeEncoder registers a hook that converts values of type T into
// another value before encoding. The hook must not return a T.
func WithTypeEncoder[T any](fn func(T) any) CodecOption {
	return func(c *Codec) {
		c.hooks[reflect.TypeFor[T]()] = func(v any) any {
			return fn(v.(T))
		}
	}
}

// DefaultCodec is used when no codec is configured.
var DefaultCodec = NewCodec()

// NewCodec creates a Codec with the default time and decimal encoders plus
// any additional hooks.
func NewCodec(opts ...CodecOption) *Codec {
	c := &Codec{
		hooks: make(map[reflect.Type]func(any) any),
	}
	WithTypeEncoder(encodeTime)(c)
	WithTypeEncoder(encodeDecimal)(c)
	for _, opt := range opts {
		opt(c)
	}

	c.api = jsoniter.Config{
		EscapeHTML:             true,
		SortMapKeys:            true,
		ValidateJsonRawMessage: true,
		UseNumber:              true,
	}.Froze()
	c.api.RegisterExtension(&hookExtension{hooks: c.hooks})
	return c
}

// ContentType returns the content type written with encoded values.
func (c *Codec) ContentType() string { return ContentType }

// Marshal encodes v.
func (c *Codec) Marshal(v any) ([]byte, error) {
	return c.api.Marshal(v)
}

// Unmarshal decodes data into v. Trailing data after the first value is an
// error. Numbers decoded into an interface value are json.Number, so integers
// keep their exact digits.
func (c *Codec) Unmarshal(data []byte, v any) error {
	return c.api.Unmarshal(data, v)
}

// Encode writes the encoding of v to w, followed by a newline.
func (c *Codec) Encode(w io.Writer, v any) error {
	return c.api.NewEncoder(w).Encode(v)
}

// Decode reads the next JSON value from r into v.
func (c *Codec) Decode(r io.Reader, v any) error {
	return c.api.NewDecoder(r).Decode(v)
}

// encodeTime renders times as ISO 8601 with millisecond precision, "Z" for
// UTC, and no fraction when the sub-second part is zero.
func encodeTime(t time.Time) any {
	if t.Nanosecond() == 0 {
		return t.Format("2006-01-02T15:04:05Z07:00")
	}
	return t.Format("2006-01-02T15:04:05.000Z07:00")
}

func encodeDecimal(d decimal.Decimal) any {
	return d.String()
}

type hookExtension struct {
	jsoniter.DummyExtension
	hooks map[reflect.Type]func(any) any
}

func (e *hookExtension) CreateEncoder(typ reflect2.Type) jsoniter.ValEncoder {
	fn, ok := e.hooks[typ.Type1()]
	if !ok {
		return nil
	}
	return &hookEncoder{typ: typ.Type1(), fn: fn}
}

type hookEncoder struct {
	typ reflect.Type
	fn  func(any) any
}

func (h *hookEncoder) IsEmpty(ptr unsafe.Pointer) bool {
	return reflect.NewAt(h.typ, ptr).Elem().IsZero()
}

func (h *hookEncoder) Encode(ptr unsafe.Pointer, stream *jsoniter.Stream) {
	v := reflect.NewAt(h.typ, ptr).Elem().Interface()
	stream.WriteVal(h.fn(v))
}
