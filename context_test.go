package jsonapi_test

import (
	"context"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bjaus/jsonapi"
)

func TestSetValueGetValue_roundTrip(t *testing.T) {
	t.Parallel()

	type tenant string

	r, err := http.NewRequestWithContext(context.Background(), http.MethodGet, "/test", nil)
	require.NoError(t, err)

	r = jsonapi.SetValue[tenant](r, "acme")

	val, ok := jsonapi.GetValue[tenant](r.Context())
	assert.True(t, ok)
	assert.Equal(t, tenant("acme"), val)

	_, ok = jsonapi.GetValue[string](r.Context())
	assert.False(t, ok)
}

func TestUserFrom(t *testing.T) {
	t.Parallel()

	r, err := http.NewRequestWithContext(context.Background(), http.MethodGet, "/", nil)
	require.NoError(t, err)

	_, ok := jsonapi.UserFrom(r.Context())
	assert.False(t, ok)

	r = jsonapi.WithUser(r, user{name: "ann", active: true})
	u, ok := jsonapi.UserFrom(r.Context())
	require.True(t, ok)
	assert.True(t, u.IsAuthenticated())
}

func TestPanicError(t *testing.T) {
	t.Parallel()

	cause := context.Canceled
	assert.ErrorIs(t, jsonapi.PanicError(cause), context.Canceled)
	assert.EqualError(t, jsonapi.PanicError(42), "panic: 42")
	assert.Equal(t, []string{http.MethodPost, http.MethodPut, http.MethodPatch}, jsonapi.BodyMethods)
}
