package main

import (
	"net/http"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/bjaus/jsonapi"
	"github.com/bjaus/jsonapi/apitest"
)

func newTestClient(t *testing.T, debug bool) *apitest.Client {
	t.Helper()

	cfg := jsonapi.DefaultConfig()
	cfg.Debug = debug
	return apitest.NewClient(t, newRouter(cfg, zap.NewNop(), prometheus.NewRegistry(), newStore()))
}

func as(user string) http.Header {
	return http.Header{"X-User": []string{user}}
}

func TestSample_home(t *testing.T) {
	t.Parallel()

	c := newTestClient(t, false)

	resp := c.Get(t, "/")
	assert.Equal(t, http.StatusOK, resp.Status)
	assert.True(t, resp.OK())
	msg, _ := resp.Message()
	assert.Equal(t, "Welcome", msg)
	assert.False(t, resp.Has("body"))
	assert.Len(t, resp.Headers.Get("X-Request-ID"), 20)
}

func TestSample_reports_flow(t *testing.T) {
	t.Parallel()

	c := newTestClient(t, true)

	resp := c.Get(t, "/reports")
	assert.Equal(t, http.StatusUnauthorized, resp.Status)
	body, _ := resp.Body()
	assert.Equal(t, "/login", body["login_url"])

	resp = c.Post(t, "/reports", `{"title":"Q3 review","score":"88.5","edit_password":"x"}`, as("ann"))
	require.Equal(t, http.StatusCreated, resp.Status, string(resp.Raw))
	body, _ = resp.Body()
	report, _ := body["report"].(map[string]any)
	assert.Equal(t, "Q3 review", report["title"])
	assert.Equal(t, "ann", report["owner"])
	assert.Equal(t, "88.5", report["score"])
	assert.Equal(t, true, report["mine"])
	assert.Equal(t, "main.Report", report["_debug_model"])
	assert.Equal(t, report["id"], report["_debug_pk"])
	assert.NotContains(t, report, "edit_password")

	resp = c.Post(t, "/reports", `{"title":"Q"}`, as("ann"))
	assert.Equal(t, http.StatusBadRequest, resp.Status)
	msg, _ := resp.Message()
	assert.Equal(t, "Invalid Form", msg)

	resp = c.Post(t, "/reports", `{"title":`, as("ann"))
	assert.Equal(t, http.StatusBadRequest, resp.Status)
	msg, _ = resp.Message()
	assert.Equal(t, "Invalid JSON POST", msg)
	body, _ = resp.Body()
	assert.Contains(t, body, "exception")

	c.Post(t, "/reports", `{"title":"Second","score":10}`, as("ann"))
	c.Post(t, "/reports", `{"title":"Other"}`, as("bob"))

	resp = c.Get(t, "/reports?limit=1", as("ann"))
	require.Equal(t, http.StatusOK, resp.Status)
	body, _ = resp.Body()
	list, _ := body["reports"].([]any)
	require.Len(t, list, 1)
	first, _ := list[0].(map[string]any)
	assert.Equal(t, "Q3 review (88.5)", first["summary"])
	assert.NotContains(t, first, "owner")

	resp = c.Get(t, "/reports?limit=zero", as("ann"))
	assert.Equal(t, http.StatusBadRequest, resp.Status)

	resp = c.Get(t, "/reports/all", as("bob"))
	require.Equal(t, http.StatusOK, resp.Status)
	body, _ = resp.Body()
	assert.EqualValues(t, 3, body["count"])

	resp = c.Do(t, http.MethodDelete, "/reports", "", as("ann"))
	assert.Equal(t, http.StatusMethodNotAllowed, resp.Status)
}

func TestSample_me(t *testing.T) {
	t.Parallel()

	c := newTestClient(t, false)

	resp := c.Get(t, "/me", as("carol"))
	require.Equal(t, http.StatusOK, resp.Status)
	body, _ := resp.Body()
	assert.Equal(t, "carol", body["user"])
}

func TestSample_metrics(t *testing.T) {
	t.Parallel()

	c := newTestClient(t, false)
	c.Get(t, "/")

	resp := c.Get(t, "/metrics")
	assert.Equal(t, http.StatusOK, resp.Status)
	assert.Contains(t, string(resp.Raw), `jsonapi_responses_total{method="GET",status="200"} 1`)
}

func TestSample_pprof_only_in_debug(t *testing.T) {
	t.Parallel()

	assert.Equal(t, http.StatusOK, newTestClient(t, true).Get(t, "/debug/pprof/cmdline").Status)
	assert.Equal(t, http.StatusNotFound, newTestClient(t, false).Get(t, "/debug/pprof/cmdline").Status)
}
