package jsonapi_test

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/bjaus/jsonapi"
)

func TestEnvelopeHelpers(t *testing.T) {
	t.Parallel()

	tests := map[string]struct {
		resp       *jsonapi.Response
		wantStatus int
		wantJSON   string
	}{
		"ok bare": {
			resp:       jsonapi.OK("", nil),
			wantStatus: http.StatusOK,
			wantJSON:   `{"ok":true}`,
		},
		"ok with message and body": {
			resp:       jsonapi.OK("Welcome", jsonapi.Body{"user": "ann", "count": 2}),
			wantStatus: http.StatusOK,
			wantJSON:   `{"ok":true,"message":"Welcome","body":{"count":2,"user":"ann"}}`,
		},
		"empty body omitted": {
			resp:       jsonapi.OK("hi", jsonapi.Body{}),
			wantStatus: http.StatusOK,
			wantJSON:   `{"ok":true,"message":"hi"}`,
		},
		"error custom status": {
			resp:       jsonapi.Error(http.StatusConflict, "Taken", nil),
			wantStatus: http.StatusConflict,
			wantJSON:   `{"ok":false,"message":"Taken"}`,
		},
		"bad request": {
			resp:       jsonapi.BadRequest(nil),
			wantStatus: http.StatusBadRequest,
			wantJSON:   `{"ok":false,"message":"Bad Request"}`,
		},
		"unauthorized with body": {
			resp:       jsonapi.Unauthorized(jsonapi.Body{"login_url": "/login"}),
			wantStatus: http.StatusUnauthorized,
			wantJSON:   `{"ok":false,"message":"Unauthorized","body":{"login_url":"/login"}}`,
		},
		"forbidden": {
			resp:       jsonapi.Forbidden(nil),
			wantStatus: http.StatusForbidden,
			wantJSON:   `{"ok":false,"message":"Forbidden"}`,
		},
		"not found": {
			resp:       jsonapi.NotFound(nil),
			wantStatus: http.StatusNotFound,
			wantJSON:   `{"ok":false,"message":"Not Found"}`,
		},
		"method not allowed": {
			resp:       jsonapi.MethodNotAllowed(nil),
			wantStatus: http.StatusMethodNotAllowed,
			wantJSON:   `{"ok":false,"message":"Method Not Supported"}`,
		},
		"invalid": {
			resp:       jsonapi.Invalid("Invalid JSON POST", nil),
			wantStatus: http.StatusBadRequest,
			wantJSON:   `{"ok":false,"message":"Invalid JSON POST"}`,
		},
		"too large": {
			resp:       jsonapi.TooLarge(nil),
			wantStatus: http.StatusRequestEntityTooLarge,
			wantJSON:   `{"ok":false,"message":"Request Entity Too Large"}`,
		},
		"too many requests": {
			resp:       jsonapi.TooManyRequests(nil),
			wantStatus: http.StatusTooManyRequests,
			wantJSON:   `{"ok":false,"message":"Too Many Requests"}`,
		},
	}

	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			rec := httptest.NewRecorder()
			require.NoError(t, tc.resp.Write(rec, nil))

			assert.Equal(t, tc.wantStatus, rec.Code)
			assert.Equal(t, jsonapi.ContentType, rec.Header().Get("Content-Type"))
			assert.JSONEq(t, tc.wantJSON, rec.Body.String())
		})
	}
}

type stubValidator struct {
	valid   bool
	cleaned map[string]any
	errs    map[string][]string
}

func (s *stubValidator) Valid() bool                 { return s.valid }
func (s *stubValidator) CleanedData() map[string]any { return s.cleaned }
func (s *stubValidator) Errors() map[string][]string { return s.errs }

func TestInvalidForm(t *testing.T) {
	t.Parallel()

	resp := jsonapi.InvalidForm(&stubValidator{errs: map[string][]string{"title": {"This field is required."}}})

	rec := httptest.NewRecorder()
	require.NoError(t, resp.Write(rec, nil))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.JSONEq(t, `{"ok":false,"message":"Invalid Form","body":{"errors":{"title":["This field is required."]}}}`, rec.Body.String())
}

func TestException(t *testing.T) {
	t.Parallel()

	tests := map[string]struct {
		opts        func(*zap.Logger) jsonapi.ExceptionOptions
		wantMessage string
		wantLogs    int
	}{
		"quiet": {
			opts: func(l *zap.Logger) jsonapi.ExceptionOptions {
				return jsonapi.ExceptionOptions{Logger: l}
			},
			wantMessage: "Internal Server Error",
			wantLogs:    0,
		},
		"debug": {
			opts: func(l *zap.Logger) jsonapi.ExceptionOptions {
				return jsonapi.ExceptionOptions{Debug: true, Logger: l}
			},
			wantMessage: "DEBUG: disk full",
			wantLogs:    0,
		},
		"logged": {
			opts: func(l *zap.Logger) jsonapi.ExceptionOptions {
				return jsonapi.ExceptionOptions{Log: true, Logger: l, Fields: []zap.Field{zap.String("path", "/x")}}
			},
			wantMessage: "Internal Server Error",
			wantLogs:    1,
		},
	}

	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			core, logs := observer.New(zapcore.DebugLevel)
			resp := jsonapi.Exception(errors.New("disk full"), tc.opts(zap.New(core)))

			assert.Equal(t, http.StatusInternalServerError, resp.Status)
			assert.False(t, resp.Envelope.OK)
			assert.Equal(t, tc.wantMessage, resp.Envelope.Message)
			assert.Nil(t, resp.Envelope.Body)
			require.Equal(t, tc.wantLogs, logs.Len())

			if tc.wantLogs > 0 {
				entry := logs.All()[0]
				assert.Equal(t, "returning internal server error", entry.Message)
				assert.Equal(t, "/x", entry.ContextMap()["path"])
				assert.Equal(t, "disk full", entry.ContextMap()["error"])
			}
		})
	}
}
