package form_test

import (
	"encoding/json"
	"testing"

	"github.com/cockroachdb/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bjaus/jsonapi/form"
)

type reportForm struct {
	Title  string   `form:"title,required" minLength:"3" maxLength:"20"`
	Score  float64  `form:"score" minimum:"0" maximum:"100"`
	Pages  int      `json:"pages"`
	Public bool     `form:"public"`
	Kind   string   `form:"kind" enum:"draft,final"`
	Code   string   `form:"code" pattern:"^[A-Z]{2}$"`
	Tags   []string `form:"tags" maxItems:"2"`
	Secret string   `form:"-"`
}

func TestForm_valid(t *testing.T) {
	t.Parallel()

	f := form.New[reportForm](map[string]any{
		"title":  "Quarterly",
		"score":  float64(88),
		"pages":  "12",
		"public": "true",
		"tags":   []any{"a", "b"},
		"extra":  "ignored",
		"Secret": "nope",
	})

	require.True(t, f.Valid(), f.Errors())
	assert.Empty(t, f.Errors())
	assert.Equal(t, map[string]any{
		"title":  "Quarterly",
		"score":  float64(88),
		"pages":  12,
		"public": true,
		"kind":   nil,
		"code":   nil,
		"tags":   []string{"a", "b"},
	}, f.CleanedData())

	v := f.Value()
	assert.Equal(t, "Quarterly", v.Title)
	assert.Equal(t, 12, v.Pages)
	assert.Empty(t, v.Secret)
}

func TestForm_errors(t *testing.T) {
	t.Parallel()

	tests := map[string]struct {
		data  map[string]any
		field string
		want  string
	}{
		"missing required": {
			data:  map[string]any{},
			field: "title",
			want:  form.MsgRequired,
		},
		"blank required": {
			data:  map[string]any{"title": ""},
			field: "title",
			want:  form.MsgRequired,
		},
		"too short": {
			data:  map[string]any{"title": "ab"},
			field: "title",
			want:  "Ensure this value has at least 3 characters (it has 2).",
		},
		"fractional int": {
			data:  map[string]any{"title": "abc", "pages": 1.5},
			field: "pages",
			want:  form.MsgInteger,
		},
		"non-numeric int": {
			data:  map[string]any{"title": "abc", "pages": "many"},
			field: "pages",
			want:  form.MsgInteger,
		},
		"non-numeric float": {
			data:  map[string]any{"title": "abc", "score": "high"},
			field: "score",
			want:  form.MsgNumber,
		},
		"above maximum": {
			data:  map[string]any{"title": "abc", "score": 101.0},
			field: "score",
			want:  "Ensure this value is less than or equal to 100.",
		},
		"bad boolean": {
			data:  map[string]any{"title": "abc", "public": "maybe"},
			field: "public",
			want:  form.MsgBoolean,
		},
		"not in enum": {
			data:  map[string]any{"title": "abc", "kind": "other"},
			field: "kind",
			want:  "Select a valid choice. other is not one of the available choices.",
		},
		"pattern mismatch": {
			data:  map[string]any{"title": "abc", "code": "abc"},
			field: "code",
			want:  form.MsgInvalid,
		},
		"too many items": {
			data:  map[string]any{"title": "abc", "tags": []any{"a", "b", "c"}},
			field: "tags",
			want:  "Ensure this list has at most 2 items.",
		},
	}

	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			f := form.New[reportForm](tc.data)
			require.False(t, f.Valid())
			assert.Equal(t, []string{tc.want}, f.Errors()[tc.field])
			assert.Nil(t, f.CleanedData())
		})
	}
}

type rangeForm struct {
	Low  int `form:"low,required"`
	High int `form:"high,required"`
}

func (f *rangeForm) Clean() error {
	if f.Low > f.High {
		return &form.FieldError{Field: "high", Message: "Must not be below low."}
	}
	if f.Low == f.High {
		return errors.New("Range is empty.")
	}
	return nil
}

func TestForm_Clean(t *testing.T) {
	t.Parallel()

	tests := map[string]struct {
		data       map[string]any
		wantValid  bool
		wantErrors map[string][]string
	}{
		"valid range": {
			data:       map[string]any{"low": "1", "high": "5"},
			wantValid:  true,
			wantErrors: map[string][]string{},
		},
		"field error": {
			data:       map[string]any{"low": 5.0, "high": 1.0},
			wantErrors: map[string][]string{"high": {"Must not be below low."}},
		},
		"non-field error": {
			data:       map[string]any{"low": 2.0, "high": 2.0},
			wantErrors: map[string][]string{form.NonFieldErrors: {"Range is empty."}},
		},
		"clean skipped when fields fail": {
			data:       map[string]any{"low": 2.0},
			wantErrors: map[string][]string{"high": {form.MsgRequired}},
		},
	}

	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			f := form.New[rangeForm](tc.data)
			assert.Equal(t, tc.wantValid, f.Valid())
			assert.Equal(t, tc.wantErrors, f.Errors())
		})
	}
}

type countForm struct {
	Small int8  `form:"small"`
	Count uint  `form:"count"`
	Big   int64 `form:"big"`
}

func TestForm_integer_range(t *testing.T) {
	t.Parallel()

	tests := map[string]struct {
		data       map[string]any
		wantErrors map[string][]string
		want       countForm
	}{
		"in range": {
			data:       map[string]any{"small": 127.0, "count": json.Number("42"), "big": -5.0},
			wantErrors: map[string][]string{},
			want:       countForm{Small: 127, Count: 42, Big: -5},
		},
		"large integer kept exact": {
			data:       map[string]any{"big": json.Number("9007199254740993")},
			wantErrors: map[string][]string{},
			want:       countForm{Big: 9007199254740993},
		},
		"int8 overflow": {
			data:       map[string]any{"small": 300.0},
			wantErrors: map[string][]string{"small": {"Ensure this value is less than or equal to 127."}},
		},
		"int8 underflow": {
			data:       map[string]any{"small": json.Number("-129")},
			wantErrors: map[string][]string{"small": {"Ensure this value is greater than or equal to -128."}},
		},
		"negative uint": {
			data:       map[string]any{"count": -1.0},
			wantErrors: map[string][]string{"count": {"Ensure this value is greater than or equal to 0."}},
		},
		"int64 overflow": {
			data:       map[string]any{"big": json.Number("300000000000000000000")},
			wantErrors: map[string][]string{"big": {"Ensure this value is less than or equal to 9223372036854775807."}},
		},
		"exponent form": {
			data:       map[string]any{"count": json.Number("1e3")},
			wantErrors: map[string][]string{},
			want:       countForm{Count: 1000},
		},
		"fraction": {
			data:       map[string]any{"count": json.Number("1.5")},
			wantErrors: map[string][]string{"count": {form.MsgInteger}},
		},
		"bool": {
			data:       map[string]any{"small": true},
			wantErrors: map[string][]string{"small": {form.MsgInteger}},
		},
	}

	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			f := form.New[countForm](tc.data)
			assert.Equal(t, tc.wantErrors, f.Errors())
			if len(tc.wantErrors) == 0 {
				require.True(t, f.Valid())
				assert.Equal(t, tc.want, f.Value())
			}
		})
	}
}

func TestForm_Data(t *testing.T) {
	t.Parallel()

	data := map[string]any{"title": "Hello"}
	f := form.New[reportForm](data)
	assert.Equal(t, data, f.Data())
}

func TestForm_non_struct(t *testing.T) {
	t.Parallel()

	f := form.New[string](map[string]any{})
	assert.False(t, f.Valid())
	assert.Contains(t, f.Errors(), form.NonFieldErrors)
}
